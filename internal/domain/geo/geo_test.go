package geo_test

import (
	"math"
	"testing"

	"github.com/entraide/matchd/internal/domain/geo"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDistanceKm(t *testing.T) {
	Convey("Given pairs of coordinates", t, func() {
		Convey("When both points are identical", func() {
			d := geo.DistanceKm(48.8566, 2.3522, 48.8566, 2.3522)

			Convey("Then the distance should be zero", func() {
				So(d, ShouldEqual, 0)
			})
		})

		Convey("When measuring Paris to Lyon", func() {
			// Paris (48.8566, 2.3522) to Lyon (45.7640, 4.8357) is ~392 km.
			d := geo.DistanceKm(48.8566, 2.3522, 45.7640, 4.8357)

			Convey("Then the distance should be close to the known value", func() {
				So(d, ShouldBeGreaterThan, 380)
				So(d, ShouldBeLessThan, 400)
			})
		})

		Convey("When swapping the endpoints", func() {
			d1 := geo.DistanceKm(48.8566, 2.3522, 43.2965, 5.3698)
			d2 := geo.DistanceKm(43.2965, 5.3698, 48.8566, 2.3522)

			Convey("Then the distance should be symmetric", func() {
				So(d1, ShouldAlmostEqual, d2, 1e-9)
			})
		})

		Convey("When moving the second point further away on the same bearing", func() {
			near := geo.DistanceKm(48.0, 2.0, 48.1, 2.0)
			far := geo.DistanceKm(48.0, 2.0, 48.5, 2.0)

			Convey("Then the distance should grow", func() {
				So(far, ShouldBeGreaterThan, near)
			})
		})

		Convey("When a coordinate is not finite", func() {
			Convey("Then DistanceKm should panic", func() {
				So(func() { geo.DistanceKm(math.NaN(), 0, 0, 0) }, ShouldPanic)
				So(func() { geo.DistanceKm(0, math.Inf(1), 0, 0) }, ShouldPanic)
				So(func() { geo.DistanceKm(0, 0, math.Inf(-1), 0) }, ShouldPanic)
			})
		})
	})
}

func TestPoint(t *testing.T) {
	Convey("Given points", t, func() {
		Convey("A finite point should be valid", func() {
			So(geo.Point{Lat: 48.8566, Lon: 2.3522}.Valid(), ShouldBeTrue)
		})

		Convey("A non-finite point should be invalid", func() {
			So(geo.Point{Lat: math.NaN(), Lon: 0}.Valid(), ShouldBeFalse)
			So(geo.Point{Lat: 0, Lon: math.Inf(1)}.Valid(), ShouldBeFalse)
		})

		Convey("Distance should agree with DistanceKm", func() {
			a := geo.Point{Lat: 48.8566, Lon: 2.3522}
			b := geo.Point{Lat: 45.7640, Lon: 4.8357}
			So(geo.Distance(a, b), ShouldAlmostEqual, geo.DistanceKm(a.Lat, a.Lon, b.Lat, b.Lon), 1e-9)
		})
	})
}
