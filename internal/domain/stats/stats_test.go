package stats_test

import (
	"math"
	"testing"

	"github.com/okian/pecounsel/internal/domain/event"
	"github.com/okian/pecounsel/internal/domain/stats"
	. "github.com/smartystreets/goconvey/convey"
)

func definition(k event.Key) event.Definition {
	d, ok := event.Default().Lookup(k)
	if !ok {
		panic("unknown event " + string(k))
	}
	return d
}

func TestFilterOutliers(t *testing.T) {
	Convey("Given standing long jump records with gross outliers", t, func() {
		def := definition(event.StandingLongJump)
		raw := []float64{180, 190, 200, 210, 220, 900, 10}

		Convey("When filtering", func() {
			kept := stats.FilterOutliers(def, raw)

			Convey("Then values outside the IQR fences are dropped", func() {
				So(kept, ShouldResemble, []float64{180, 190, 200, 210, 220})
			})

			Convey("And filtering the output again changes nothing", func() {
				So(stats.FilterOutliers(def, kept), ShouldResemble, kept)
			})
		})
	})

	Convey("Given 10m dash records with a misentered unit", t, func() {
		def := definition(event.Dash10m)
		raw := []float64{7.5, 8, 8.2, 8.4, 25, 19.5}

		Convey("Then the sentinel and IQR both apply", func() {
			So(stats.FilterOutliers(def, raw), ShouldResemble, []float64{7.5, 8, 8.2, 8.4})
		})
	})

	Convey("Given front bend records spread past the physiological bounds", t, func() {
		def := definition(event.FrontBend)
		raw := []float64{-40, 0, 10, 20, 30, 70}

		Convey("Then the window is the intersection with the fixed bounds", func() {
			w, ok := stats.Window(def, raw)
			So(ok, ShouldBeTrue)
			So(w.Min, ShouldEqual, -20)
			So(w.Max, ShouldEqual, 50)

			for _, v := range stats.FilterOutliers(def, raw) {
				So(v, ShouldBeBetweenOrEqual, w.Min, w.Max)
			}
		})
	})

	Convey("Given no records", t, func() {
		def := definition(event.GripStrength)

		Convey("Then the result is empty rather than an error", func() {
			kept := stats.FilterOutliers(def, nil)
			So(kept, ShouldNotBeNil)
			So(kept, ShouldBeEmpty)

			_, ok := stats.Window(def, nil)
			So(ok, ShouldBeFalse)
		})
	})
}

func TestDescribe(t *testing.T) {
	Convey("Given a score list", t, func() {
		values := []float64{2, 4, 4, 4, 5, 5, 7, 9}

		Convey("When describing it", func() {
			s, err := stats.Describe(values)
			So(err, ShouldBeNil)

			Convey("Then mean is sum/n and std uses the population variance", func() {
				So(s.Count, ShouldEqual, 8)
				So(s.Mean, ShouldEqual, 5)
				So(s.Std, ShouldEqual, 2)
				So(s.Min, ShouldEqual, 2)
				So(s.Max, ShouldEqual, 9)
			})

			Convey("Then all reported percentiles are present", func() {
				So(len(s.Percentiles), ShouldEqual, len(stats.ReportedPercentiles))
				median, ok := s.Percentile(50)
				So(ok, ShouldBeTrue)
				So(median, ShouldEqual, 4.5)
			})
		})
	})

	Convey("Given an empty list", t, func() {
		_, err := stats.Describe(nil)

		Convey("Then it reports no data", func() {
			So(err, ShouldEqual, stats.ErrNoData)
		})
	})

	Convey("Given raw values with outliers", t, func() {
		def := definition(event.StandingLongJump)
		s, kept, err := stats.Analyze(def, []float64{180, 190, 200, 210, 220, 900, 10})

		Convey("Then statistics are computed over the trimmed set", func() {
			So(err, ShouldBeNil)
			So(len(kept), ShouldEqual, 5)
			So(s.Mean, ShouldEqual, 200)
			So(s.Std, ShouldAlmostEqual, math.Sqrt(200), 1e-9)
		})
	})
}

func TestPercentile(t *testing.T) {
	Convey("Given sorted lists", t, func() {
		Convey("Then the median of an odd list is the middle element", func() {
			So(stats.Percentile([]float64{1, 2, 3, 4, 5}, 50), ShouldEqual, 3)
		})

		Convey("Then the median of an even list averages the middle pair", func() {
			So(stats.Percentile([]float64{1, 2, 3, 4}, 50), ShouldEqual, 2.5)
		})

		Convey("Then other positions interpolate between ranks", func() {
			values := []float64{10, 20, 30, 40, 50}
			So(stats.Percentile(values, 25), ShouldEqual, 20)
			So(stats.Percentile(values, 90), ShouldAlmostEqual, 46, 1e-9)
			So(stats.Percentile(values, 0), ShouldEqual, 10)
			So(stats.Percentile(values, 100), ShouldEqual, 50)
		})

		Convey("Then unsorted input is ordered ascending first", func() {
			So(stats.Percentile([]float64{50, 10, 40, 20, 30}, 25), ShouldEqual, 20)
		})
	})
}

func TestHistogram(t *testing.T) {
	Convey("Given integer-valued records in a narrow range", t, func() {
		bins := stats.Histogram([]float64{1, 2, 2, 3}, 0)

		Convey("Then each integer gets its own bin", func() {
			So(len(bins), ShouldEqual, 3)
			So(bins[0], ShouldResemble, stats.Bin{Label: "1", Start: 1, Count: 1})
			So(bins[1].Count, ShouldEqual, 2)
			So(bins[2].Label, ShouldEqual, "3")
		})
	})

	Convey("Given integer-valued records in a medium range", t, func() {
		bins := stats.Histogram([]float64{0, 40}, 0)

		Convey("Then bins are five wide and the maximum lands in the last bin", func() {
			So(len(bins), ShouldEqual, 8)
			So(bins[1].Start, ShouldEqual, 5)
			So(bins[0].Count, ShouldEqual, 1)
			So(bins[7].Count, ShouldEqual, 1)
		})
	})

	Convey("Given decimal records", t, func() {
		bins := stats.Histogram([]float64{1.0, 1.5, 2.0}, 2)

		Convey("Then the requested number of equal bins is used", func() {
			So(len(bins), ShouldEqual, 2)
			So(bins[0].Label, ShouldEqual, "1.0")
			So(bins[1].Label, ShouldEqual, "1.5")
			So(bins[0].Count, ShouldEqual, 1)
			So(bins[1].Count, ShouldEqual, 2)
		})
	})

	Convey("Given no records", t, func() {
		So(stats.Histogram(nil, 10), ShouldBeEmpty)
	})
}
