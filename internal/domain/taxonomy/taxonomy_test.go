package taxonomy_test

import (
	"testing"

	"github.com/entraide/matchd/internal/domain/taxonomy"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDefaultTable(t *testing.T) {
	Convey("Given the default cluster table", t, func() {
		table := taxonomy.New()

		Convey("Skills in the same cluster should be related", func() {
			So(table.Related("bricolage", "réparation"), ShouldBeTrue)
			So(table.Related("bricolage", "maintenance"), ShouldBeTrue)
			So(table.Related("plomberie", "outils"), ShouldBeTrue)
			So(table.Related("jardinage", "tonte"), ShouldBeTrue)
			So(table.Related("cuisine", "baking"), ShouldBeTrue)
		})

		Convey("Skills in different clusters should not be related", func() {
			So(table.Related("plomberie", "jardinage"), ShouldBeFalse)
			So(table.Related("cooking", "driving"), ShouldBeFalse)
			So(table.Related("ménage", "tutoring"), ShouldBeFalse)
		})

		Convey("Identical names should always be related", func() {
			So(table.Related("plomberie", "plomberie"), ShouldBeTrue)
			So(table.Related("unknown-skill", "unknown-skill"), ShouldBeTrue)
		})

		Convey("Lookups should be case-insensitive and trimmed", func() {
			So(table.Related(" Bricolage ", "RÉPARATION"), ShouldBeTrue)
		})

		Convey("Substrings of a member should not match", func() {
			// "brico" is a substring of "bricolage" but not a member.
			So(table.Related("brico", "réparation"), ShouldBeFalse)
		})

		Convey("Empty names should never be related", func() {
			So(table.Related("", "plomberie"), ShouldBeFalse)
			So(table.Related("plomberie", "  "), ShouldBeFalse)
		})

		Convey("Clusters should report membership", func() {
			So(table.Clusters("plomberie"), ShouldContain, "home-repair")
			So(table.Clusters("no-such-skill"), ShouldBeEmpty)
		})
	})
}

func TestCustomClusters(t *testing.T) {
	Convey("Given a caller-supplied table", t, func() {
		table := taxonomy.New(taxonomy.WithClusters(map[string][]string{
			"petcare": {"dog walking", "pet sitting", "grooming"},
		}))

		Convey("Then only the supplied clusters should exist", func() {
			So(table.Related("dog walking", "grooming"), ShouldBeTrue)
			So(table.Related("bricolage", "réparation"), ShouldBeFalse)
		})
	})

	Convey("Given additional clusters merged into the defaults", t, func() {
		table := taxonomy.New(taxonomy.WithAdditionalClusters(map[string][]string{
			"home-repair": {"serrurerie"},
			"petcare":     {"dog walking", "pet sitting"},
		}))

		Convey("Then both default and merged members should resolve", func() {
			So(table.Related("serrurerie", "plomberie"), ShouldBeTrue)
			So(table.Related("dog walking", "pet sitting"), ShouldBeTrue)
			So(table.Related("bricolage", "réparation"), ShouldBeTrue)
		})
	})
}
