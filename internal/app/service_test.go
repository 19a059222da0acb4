package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"testing/fstest"

	service "github.com/okian/pecounsel/internal/app"
	"github.com/okian/pecounsel/internal/adapters/repository"
	"github.com/okian/pecounsel/internal/career"
	"github.com/okian/pecounsel/internal/domain/admission"
	"github.com/okian/pecounsel/internal/domain/dataset"
	"github.com/okian/pecounsel/internal/domain/event"
	"github.com/okian/pecounsel/internal/domain/model"
	"github.com/okian/pecounsel/internal/domain/scoring"
	"github.com/okian/pecounsel/internal/domain/standing"
	"github.com/okian/pecounsel/internal/domain/stats"
	"github.com/okian/pecounsel/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

const jejuJSON = `[
	{"성별":"남","제자리멀리뛰기":200,"배근력":140},
	{"성별":"남","제자리멀리뛰기":220,"배근력":150},
	{"성별":"남","제자리멀리뛰기":240},
	{"성별":"남","제자리멀리뛰기":260},
	{"성별":"남","제자리멀리뛰기":280},
	{"성별":"여","제자리멀리뛰기":160},
	{"성별":"여","제자리멀리뛰기":170},
	{"성별":"여","제자리멀리뛰기":180},
	{"성별":"여","제자리멀리뛰기":190}
]`

const universitiesJSON = `[
	{"name":"한체대","region":"서울","avg_score":300,"expected_score":350,"safe_score":450,
	 "recruitment":{"2025":30,"2026":28},"competition":{"2024":4.1,"2025":5.2}},
	{"name":"가대","region":"경기","avg_score":350,"expected_score":380,"safe_score":420,
	 "required_events":{"male":["standing_long_jump"],"female":["standing_long_jump"]}}
]`

const scoringJSON = `{"universities":{"한체대":{"male":{
	"제자리멀리뛰기":[{"record":200,"score":0},{"record":300,"score":100}],
	"배근력":[{"record":100,"score":0},{"record":200,"score":100}]
}}}}`

func dataFS() fstest.MapFS {
	return fstest.MapFS{
		"jeju.json":          {Data: []byte(jejuJSON)},
		"universities.json":  {Data: []byte(universitiesJSON)},
		"scoring_table.json": {Data: []byte(scoringJSON)},
	}
}

func careerFS() fstest.MapFS {
	return fstest.MapFS{
		career.GuideFile: {Data: []byte("학과,진로,필요자격증,초봉/연봉,주요 취업처,준비전략\n" +
			"체육교육과,체육교사,생활스포츠지도사,3000만원,중고등학교,임용\n")},
		career.CertificateFile: {Data: []byte("자격증명,자격증 분류,발급/관리기관\n" +
			"생활스포츠지도사 2급,국가,국민체육진흥공단\n")},
	}
}

func jejuOnly(t *testing.T) []dataset.Region {
	t.Helper()
	r, err := dataset.FindRegion(dataset.DefaultRegions(), "jeju")
	if err != nil {
		t.Fatal(err)
	}
	return []dataset.Region{r}
}

func started(t *testing.T, opts ...service.Option) *service.Service {
	t.Helper()
	base := []service.Option{
		service.WithDataFS(dataFS()),
		service.WithCareerFS(careerFS()),
		service.WithRegions(jejuOnly(t)),
	}
	svc := service.New(append(base, opts...)...)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	return svc
}

func TestService_Start(t *testing.T) {
	Convey("Given a service without a data source", t, func() {
		svc := service.New()

		Convey("Then start fails", func() {
			err := svc.Start(context.Background())
			So(errors.Is(err, service.ErrNoDataSource), ShouldBeTrue)
			So(svc.GetStats()["started"], ShouldEqual, false)
		})
	})

	Convey("Given a complete data directory", t, func() {
		svc := started(t)
		defer svc.Stop()

		Convey("Then every source is loaded", func() {
			r := svc.LoadReport()
			So(r.Sources.Degraded, ShouldBeFalse)
			So(r.Sources.Loaded, ShouldResemble, []string{"jeju", "scoring_table.json", "universities.json"})
			So(r.Ingest, ShouldHaveLength, 1)
			So(r.Ingest[0].Kept, ShouldEqual, 9)
			So(r.CareerAvailable, ShouldBeTrue)
			So(r.ProfileRestored, ShouldBeFalse)
		})

		Convey("Then the stats describe the session", func() {
			st := svc.GetStats()
			So(st["started"], ShouldEqual, true)
			So(st["totalRecords"], ShouldEqual, 9)
			So(st["universities"], ShouldEqual, 2)
			So(st["scoringTables"], ShouldEqual, 1)
		})

		Convey("When stopping the service", func() {
			svc.Stop()

			Convey("Then it should be marked as stopped", func() {
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})
	})

	Convey("Given a data directory with missing sources", t, func() {
		svc := service.New(
			service.WithDataFS(fstest.MapFS{"jeju.json": {Data: []byte(jejuJSON)}}),
			service.WithRegions(jejuOnly(t)),
		)
		defer svc.Stop()

		Convey("Then the service starts degraded", func() {
			So(svc.Start(context.Background()), ShouldBeNil)
			r := svc.LoadReport()
			So(r.Sources.Degraded, ShouldBeTrue)
			So(r.Sources.Failed, ShouldHaveLength, 2)
			So(r.CareerAvailable, ShouldBeFalse)

			us, err := svc.Universities()
			So(err, ShouldBeNil)
			So(us, ShouldBeEmpty)
			So(svc.Majors(), ShouldBeEmpty)
		})
	})
}

func TestService_Statistics(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service before start", t, func() {
		_, err := service.New().Statistics(ctx, "standing_long_jump", model.FilterAll)
		So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
	})

	Convey("Given a started service", t, func() {
		svc := started(t)
		defer svc.Stop()

		Convey("When summarising the male standing long jump", func() {
			st, err := svc.Statistics(ctx, "standing_long_jump", model.FilterMale)

			Convey("Then the population is summarised", func() {
				So(err, ShouldBeNil)
				So(st.Summary.Count, ShouldEqual, 5)
				So(st.Summary.Mean, ShouldEqual, 240)
				So(st.Summary.Min, ShouldEqual, 200)
				So(st.Histogram, ShouldNotBeEmpty)
			})
		})

		Convey("Then display names resolve like keys", func() {
			st, err := svc.Statistics(ctx, "제자리멀리뛰기", model.FilterAll)
			So(err, ShouldBeNil)
			So(st.Summary.Count, ShouldEqual, 9)
		})

		Convey("Then an event without records has no data", func() {
			_, err := svc.Statistics(ctx, "long_run", model.FilterAll)
			So(errors.Is(err, stats.ErrNoData), ShouldBeTrue)
		})

		Convey("Then unknown events are rejected", func() {
			_, err := svc.Statistics(ctx, "팔굽혀펴기", model.FilterAll)
			So(errors.Is(err, service.ErrUnknownEvent), ShouldBeTrue)
		})

		Convey("When comparing genders", func() {
			cmp, err := svc.Compare(ctx, "standing_long_jump")

			Convey("Then both sides are present", func() {
				So(err, ShouldBeNil)
				So(cmp.Male.Summary.Count, ShouldEqual, 5)
				So(cmp.Female.Summary.Count, ShouldEqual, 4)
			})
		})

		Convey("When comparing an event only men recorded", func() {
			cmp, err := svc.Compare(ctx, "grip_strength")

			Convey("Then the female side is empty", func() {
				So(err, ShouldBeNil)
				So(cmp.Male, ShouldNotBeNil)
				So(cmp.Female, ShouldBeNil)
			})
		})

		Convey("When analysing a 250cm jump among men", func() {
			a, err := svc.Analyze(ctx, "standing_long_jump", 250, model.FilterMale)

			Convey("Then the standing and the top-ten gap are reported", func() {
				So(err, ShouldBeNil)
				So(a.Standing.Better, ShouldEqual, 2)
				So(a.Standing.UpperPercent, ShouldEqual, 60)
				So(a.Standing.Grade, ShouldEqual, standing.Average)
				So(a.TopTen, ShouldEqual, 280)
				So(a.GapToTopTen, ShouldEqual, -30)
			})
		})

		Convey("Then a non-positive candidate score is rejected", func() {
			_, err := svc.Analyze(ctx, "standing_long_jump", 0, model.FilterAll)
			So(errors.Is(err, service.ErrInvalidInput), ShouldBeTrue)
		})
	})
}

func TestService_Counsel(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service", t, func() {
		svc := started(t)
		defer svc.Stop()

		Convey("Then counseling an empty profile reports missing fields", func() {
			_, err := svc.Counsel(ctx)
			So(errors.Is(err, admission.ErrIncompleteProfile), ShouldBeTrue)
			var ipe *admission.IncompleteProfileError
			So(errors.As(err, &ipe), ShouldBeTrue)
			So(ipe.Missing, ShouldResemble, []string{"name", "gender", "academic_score"})
		})

		Convey("Then invalid profile input is rejected", func() {
			_, err := svc.SaveStudentInfo(ctx, " ", model.Male)
			So(errors.Is(err, service.ErrInvalidInput), ShouldBeTrue)
			_, err = svc.SaveStudentInfo(ctx, "김민수", model.Unknown)
			So(errors.Is(err, service.ErrInvalidInput), ShouldBeTrue)
			_, err = svc.SaveAcademicScore(ctx, 0)
			So(errors.Is(err, service.ErrInvalidInput), ShouldBeTrue)
			_, err = svc.SaveSportsScores(ctx, map[string]float64{"팔굽혀펴기": 30})
			So(errors.Is(err, service.ErrUnknownEvent), ShouldBeTrue)
			_, err = svc.SaveSportsScores(ctx, map[string]float64{"grip_strength": -1})
			So(errors.Is(err, service.ErrInvalidInput), ShouldBeTrue)
			_, err = svc.SaveSportsScores(ctx, map[string]float64{})
			So(errors.Is(err, service.ErrInvalidInput), ShouldBeTrue)
		})

		Convey("When the student info and academic score are saved", func() {
			_, err := svc.SaveStudentInfo(ctx, "김민수", model.Male)
			So(err, ShouldBeNil)
			_, err = svc.SaveAcademicScore(ctx, 300)
			So(err, ShouldBeNil)

			Convey("Then counseling needs at least one event", func() {
				_, err := svc.Counsel(ctx)
				So(errors.Is(err, admission.ErrNoEvents), ShouldBeTrue)
			})

			Convey("When athletic records are saved", func() {
				p, err := svc.SaveSportsScores(ctx, map[string]float64{"제자리멀리뛰기": 250, "grip_strength": 150})
				So(err, ShouldBeNil)
				So(p.SportsScores, ShouldResemble, map[event.Key]float64{event.StandingLongJump: 250, event.GripStrength: 150})

				report, err := svc.Counsel(ctx)

				Convey("Then every university is assessed and sorted", func() {
					So(err, ShouldBeNil)
					So(report.All, ShouldHaveLength, 2)
					So(report.Eligible, ShouldHaveLength, 2)

					first := report.All[0]
					So(first.Name, ShouldEqual, "한체대")
					So(first.Method, ShouldEqual, scoring.MethodTable)
					So(first.AthleticScore, ShouldEqual, 100)
					So(first.TotalScore, ShouldEqual, 400)
					So(first.Tier, ShouldEqual, admission.Expected)
					So(first.Recruitment, ShouldEqual, 28)
					So(first.CompetitionYear, ShouldEqual, "2025")

					second := report.All[1]
					So(second.Name, ShouldEqual, "가대")
					So(second.Method, ShouldEqual, scoring.MethodBasic)
					So(second.AthleticScore, ShouldEqual, 75)
					So(second.Tier, ShouldEqual, admission.Average)
				})
			})
		})
	})
}

func TestService_ProfilePersistence(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "counseling.db")

	open := func() repository.ProfileStore {
		store, err := repository.OpenSQLiteProfileStore(ctx, path)
		if err != nil {
			t.Fatalf("open profile store: %v", err)
		}
		return store
	}

	Convey("Given a profile saved in one session", t, func() {
		first := started(t, service.WithProfileStore(open()))
		_, err := first.SaveStudentInfo(ctx, "이서연", model.Female)
		So(err, ShouldBeNil)
		_, err = first.SaveAcademicScore(ctx, 280.5)
		So(err, ShouldBeNil)
		first.Stop()

		Convey("When a new session starts on the same store", func() {
			second := started(t, service.WithProfileStore(open()))
			defer second.Stop()

			Convey("Then the profile is restored", func() {
				So(second.LoadReport().ProfileRestored, ShouldBeTrue)
				p := second.Profile()
				So(p.Name, ShouldEqual, "이서연")
				So(p.Gender, ShouldEqual, model.Female)
				So(*p.AcademicScore, ShouldEqual, 280.5)
			})
		})
	})

	Convey("Given a stored profile with a score for an unknown event", t, func() {
		store := repository.NewMemoryProfileStore()
		So(store.Save(ctx, model.StudentProfile{
			Name:   "김민수",
			Gender: model.Male,
			SportsScores: map[event.Key]float64{
				event.StandingLongJump: 250,
				event.Key("push_up"):   30,
			},
		}), ShouldBeNil)

		Convey("When the session starts", func() {
			svc := started(t, service.WithProfileStore(store))
			defer svc.Stop()

			Convey("Then only known events are restored", func() {
				So(svc.LoadReport().ProfileRestored, ShouldBeTrue)
				So(svc.Profile().SportsScores, ShouldResemble, map[event.Key]float64{event.StandingLongJump: 250})
			})
		})
	})
}

func TestService_Careers(t *testing.T) {
	Convey("Given a started service with career references", t, func() {
		svc := started(t)
		defer svc.Stop()

		Convey("Then majors and careers are served", func() {
			So(svc.Majors(), ShouldResemble, []string{"체육교육과"})

			careers, err := svc.Careers("체육교육과")
			So(err, ShouldBeNil)
			So(careers, ShouldHaveLength, 1)

			d, err := svc.Career("체육교육과", "체육교사")
			So(err, ShouldBeNil)
			So(d.Certificates, ShouldHaveLength, 1)
			So(d.Certificates[0].Detail, ShouldNotBeNil)
		})

		Convey("Then certificates list the careers requiring them", func() {
			So(svc.Certificates(), ShouldHaveLength, 1)
			cc, err := svc.Certificate("생활스포츠지도사 2급")
			So(err, ShouldBeNil)
			So(cc.Careers, ShouldBeEmpty)

			_, err = svc.Certificate("없음")
			So(errors.Is(err, career.ErrNotFound), ShouldBeTrue)
		})
	})
}
