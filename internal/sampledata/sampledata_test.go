package sampledata_test

import (
	"context"
	"errors"
	"os"
	"strconv"
	"testing"

	"github.com/okian/pecounsel/internal/adapters/source"
	"github.com/okian/pecounsel/internal/domain/dataset"
	"github.com/okian/pecounsel/internal/domain/event"
	"github.com/okian/pecounsel/internal/domain/scoring"
	"github.com/okian/pecounsel/internal/sampledata"
	"github.com/okian/pecounsel/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func region(t *testing.T, code string) dataset.Region {
	t.Helper()
	r, err := dataset.FindRegion(dataset.DefaultRegions(), code)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestGenerator(t *testing.T) {
	jeju := region(t, "jeju")

	Convey("Given a generator without irregular cells", t, func() {
		cfg := &sampledata.Config{}
		rows := sampledata.NewGenerator(cfg, 7, 0).Region(jeju, 200)

		Convey("Then the same seed yields the same rows", func() {
			again := sampledata.NewGenerator(cfg, 7, 0).Region(jeju, 200)
			So(again, ShouldResemble, rows)
		})

		Convey("Then another stream yields different rows", func() {
			other := sampledata.NewGenerator(cfg, 7, 1).Region(jeju, 200)
			So(other, ShouldNotResemble, rows)
		})

		Convey("Then every row has a gender and every region column", func() {
			So(rows, ShouldHaveLength, 200)
			for _, row := range rows {
				So(row["성별"], ShouldBeIn, "남", "여")
				So(row, ShouldHaveLength, len(jeju.Columns)+1)
			}
		})

		Convey("Then every value is a number inside the event bounds", func() {
			reg := event.Default()
			for _, row := range rows {
				for k, col := range jeju.Columns {
					def, _ := reg.Lookup(k)
					var v float64
					switch x := row[col].(type) {
					case float64:
						v = x
					case string:
						f, err := strconv.ParseFloat(x, 64)
						So(err, ShouldBeNil)
						v = f
					}
					So(v, ShouldBeBetweenOrEqual, def.Bounds.Min, def.Bounds.Max)
				}
			}
		})
	})

	Convey("Given a generator where every cell is malformed", t, func() {
		cfg := &sampledata.Config{MalformedRate: 1}
		rows := sampledata.NewGenerator(cfg, 1, 0).Region(jeju, 20)

		Convey("Then ingesting keeps no rows", func() {
			raw := make([]any, len(rows))
			for i, r := range rows {
				raw[i] = r
			}
			recs, rep := dataset.Ingest(jeju, raw)
			So(recs, ShouldBeEmpty)
			So(rep.Discarded, ShouldEqual, 20)
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given an output directory", t, func() {
		dir := t.TempDir()
		regions := []dataset.Region{region(t, "jeju"), region(t, "seoul")}
		cfg := &sampledata.Config{
			OutDir:        dir,
			Rows:          100,
			Seed:          3,
			Regions:       regions,
			MalformedRate: 0.05,
			OutlierRate:   0.02,
			WithConfig:    true,
		}

		Convey("When sample data is written", func() {
			stats, err := sampledata.Run(context.Background(), cfg)
			So(err, ShouldBeNil)
			So(stats.Regions, ShouldEqual, 2)
			So(stats.Rows, ShouldEqual, 200)
			So(stats.Files, ShouldResemble, []string{"jeju.json", "scoring_table.json", "seoul.json", "universities.json"})

			Convey("Then the loader reads every source", func() {
				bundle, rep, err := source.NewLoader(os.DirFS(dir), source.WithRegions(regions)).Load(context.Background())
				So(err, ShouldBeNil)
				So(rep.Degraded, ShouldBeFalse)
				So(bundle.Records["jeju"], ShouldNotBeEmpty)
				So(bundle.Records["seoul"], ShouldNotBeEmpty)
				So(bundle.Universities, ShouldHaveLength, 4)

				_, unresolved := scoring.NewTables(event.Default(), *bundle.Tables)
				So(unresolved, ShouldBeEmpty)
			})
		})

		Convey("Then a non-positive row count is rejected", func() {
			cfg.Rows = 0
			_, err := sampledata.Run(context.Background(), cfg)
			So(errors.Is(err, sampledata.ErrInvalidConfig), ShouldBeTrue)
		})

		Convey("Then rates above one are rejected", func() {
			cfg.MalformedRate, cfg.OutlierRate = 0.8, 0.5
			_, err := sampledata.Run(context.Background(), cfg)
			So(errors.Is(err, sampledata.ErrInvalidConfig), ShouldBeTrue)
		})
	})
}

func TestSampleScoringTables(t *testing.T) {
	Convey("Given the sample scoring tables", t, func() {
		raw := sampledata.SampleScoringTables()

		Convey("Then lower-is-better events run from slow to fast", func() {
			rows := raw.Universities["한국체육대학교"]["남"]["10m 달리기"]
			So(rows, ShouldHaveLength, 11)
			So(rows[0].Record, ShouldEqual, 12)
			So(rows[0].Score, ShouldEqual, 0)
			So(rows[10].Record, ShouldEqual, 8)
			So(rows[10].Score, ShouldEqual, 100)
		})
	})
}
