package dedupe_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/entraide/matchd/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSeenAndRecord(t *testing.T) {
	Convey("Given an in-memory deduper", t, func() {
		ctx := context.Background()
		d := dedupe.NewMemory()

		Convey("A fresh key should record and a repeat should hit", func() {
			So(d.SeenAndRecord(ctx, "u1|t1|4.9"), ShouldBeFalse)
			So(d.SeenAndRecord(ctx, "u1|t1|4.9"), ShouldBeTrue)
			So(d.Size(), ShouldEqual, 1)
		})

		Convey("Distinct keys should not collide", func() {
			So(d.SeenAndRecord(ctx, "u1|t1|4.9"), ShouldBeFalse)
			So(d.SeenAndRecord(ctx, "u1|t2|4.9"), ShouldBeFalse)
			So(d.SeenAndRecord(ctx, "u1|t1|3.2"), ShouldBeFalse)
			So(d.Size(), ShouldEqual, 3)
		})

		Convey("Unrecord should allow the key to be stored again", func() {
			So(d.SeenAndRecord(ctx, "u1|t1|4.9"), ShouldBeFalse)
			d.Unrecord(ctx, "u1|t1|4.9")
			So(d.Size(), ShouldEqual, 0)
			So(d.SeenAndRecord(ctx, "u1|t1|4.9"), ShouldBeFalse)
		})

		Convey("Unrecord of an unknown key should be a no-op", func() {
			d.Unrecord(ctx, "missing")
			So(d.Size(), ShouldEqual, 0)
		})
	})
}

func TestBoundedEviction(t *testing.T) {
	Convey("Given a deduper bounded to 3 keys", t, func() {
		ctx := context.Background()
		d := dedupe.NewMemory(dedupe.WithMaxSize(3))

		Convey("Filling past the bound should evict the oldest key", func() {
			for i := 0; i < 4; i++ {
				So(d.SeenAndRecord(ctx, fmt.Sprintf("k%d", i)), ShouldBeFalse)
			}
			So(d.Size(), ShouldEqual, 3)
			// k0 was evicted and records again as new.
			So(d.SeenAndRecord(ctx, "k0"), ShouldBeFalse)
			// k3 is still tracked.
			So(d.SeenAndRecord(ctx, "k3"), ShouldBeTrue)
		})

		Convey("Unrecorded keys should not count against the bound", func() {
			So(d.SeenAndRecord(ctx, "a"), ShouldBeFalse)
			d.Unrecord(ctx, "a")
			So(d.SeenAndRecord(ctx, "b"), ShouldBeFalse)
			So(d.SeenAndRecord(ctx, "c"), ShouldBeFalse)
			So(d.SeenAndRecord(ctx, "d"), ShouldBeFalse)
			So(d.SeenAndRecord(ctx, "b"), ShouldBeTrue)
			So(d.SeenAndRecord(ctx, "c"), ShouldBeTrue)
			So(d.SeenAndRecord(ctx, "d"), ShouldBeTrue)
		})
	})

	Convey("Given an unbounded deduper", t, func() {
		ctx := context.Background()
		d := dedupe.NewMemory(dedupe.WithMaxSize(0))

		Convey("It should keep every key", func() {
			for i := 0; i < 100; i++ {
				So(d.SeenAndRecord(ctx, fmt.Sprintf("k%d", i)), ShouldBeFalse)
			}
			So(d.Size(), ShouldEqual, 100)
			So(d.SeenAndRecord(ctx, "k0"), ShouldBeTrue)
		})
	})
}
