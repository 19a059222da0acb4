package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/okian/pecounsel/internal/adapters/http/api"
	service "github.com/okian/pecounsel/internal/app"
	"github.com/okian/pecounsel/internal/career"
	"github.com/okian/pecounsel/internal/domain/dataset"
	"github.com/okian/pecounsel/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func newHandler(t *testing.T) http.Handler {
	t.Helper()
	jeju, err := dataset.FindRegion(dataset.DefaultRegions(), "jeju")
	if err != nil {
		t.Fatal(err)
	}
	svc := service.New(
		service.WithRegions([]dataset.Region{jeju}),
		service.WithDataFS(fstest.MapFS{
			"jeju.json": {Data: []byte(`[
				{"성별":"남","제자리멀리뛰기":200},{"성별":"남","제자리멀리뛰기":220},
				{"성별":"남","제자리멀리뛰기":240},{"성별":"여","제자리멀리뛰기":170}
			]`)},
			"universities.json": {Data: []byte(`[
				{"name":"가대","region":"경기","avg_score":300,"expected_score":330,"safe_score":360,
				 "required_events":{"male":["standing_long_jump","grip_strength"]}}
			]`)},
		}),
		service.WithCareerFS(fstest.MapFS{
			career.GuideFile:       {Data: []byte("학과,진로,필요자격증\n체육교육과,체육교사,생활스포츠지도사\n")},
			career.CertificateFile: {Data: []byte("자격증명,난이도\n생활스포츠지도사,중\n")},
		}),
	)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(svc.Stop)
	return api.NewServer(svc, api.WithCORSOrigins([]string{"http://localhost:3000"})).Handler()
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(w *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return out
}

func TestHealthAndStatus(t *testing.T) {
	Convey("Given the API handler", t, func() {
		h := newHandler(t)

		Convey("Then /healthz answers ok with a request id", func() {
			w := do(h, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get(api.RequestIDHeader), ShouldNotBeEmpty)
		})

		Convey("Then a valid caller request id is echoed", func() {
			req := httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody)
			req.Header.Set(api.RequestIDHeader, "7f1c4f5e-3b8a-4d7e-9a51-1c2b3d4e5f60")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			So(w.Header().Get(api.RequestIDHeader), ShouldEqual, "7f1c4f5e-3b8a-4d7e-9a51-1c2b3d4e5f60")
		})

		Convey("Then /metrics serves prometheus text", func() {
			_ = do(h, http.MethodGet, "/healthz", "")
			w := do(h, http.MethodGet, "/metrics", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "pecounsel_counseling_http_requests_total")
		})

		Convey("Then /status reports the degraded load", func() {
			w := do(h, http.MethodGet, "/status", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			body := decode(w)
			sources := body["sources"].(map[string]any)
			So(sources["degraded"], ShouldEqual, true)
		})

		Convey("Then /stats reports the record count", func() {
			w := do(h, http.MethodGet, "/stats", "")
			So(decode(w)["totalRecords"], ShouldEqual, 4)
		})

		Convey("Then a browser preflight from an allowed origin passes", func() {
			req := httptest.NewRequest(http.MethodOptions, "/profile", http.NoBody)
			req.Header.Set("Origin", "http://localhost:3000")
			req.Header.Set("Access-Control-Request-Method", http.MethodPut)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "http://localhost:3000")
		})
	})
}

func TestEventRoutes(t *testing.T) {
	Convey("Given the API handler", t, func() {
		h := newHandler(t)

		Convey("Then the event list is served", func() {
			w := do(h, http.MethodGet, "/events", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var defs []map[string]any
			So(json.Unmarshal(w.Body.Bytes(), &defs), ShouldBeNil)
			So(defs, ShouldHaveLength, 10)
		})

		Convey("Then statistics are filtered by gender", func() {
			w := do(h, http.MethodGet, "/events/standing_long_jump/statistics?gender=male", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			summary := decode(w)["summary"].(map[string]any)
			So(summary["count"], ShouldEqual, 3)
			So(summary["mean"], ShouldEqual, 220)
		})

		Convey("Then display names work in the path", func() {
			w := do(h, http.MethodGet, "/events/"+url.PathEscape("제자리멀리뛰기")+"/statistics", "")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then an event without records is no data", func() {
			w := do(h, http.MethodGet, "/events/long_run/statistics", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(decode(w)["code"], ShouldEqual, "no_data")
		})

		Convey("Then an unknown event is not found", func() {
			w := do(h, http.MethodGet, "/events/push_up/statistics", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(decode(w)["code"], ShouldEqual, "unknown_event")
		})

		Convey("Then an invalid gender is a bad request", func() {
			w := do(h, http.MethodGet, "/events/standing_long_jump/statistics?gender=x", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Then both genders are compared", func() {
			w := do(h, http.MethodGet, "/events/standing_long_jump/compare", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			body := decode(w)
			So(body["male"], ShouldNotBeNil)
			So(body["female"], ShouldNotBeNil)
		})

		Convey("Then a candidate is analysed", func() {
			w := do(h, http.MethodGet, "/events/standing_long_jump/analysis?score=230&gender=male", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			st := decode(w)["standing"].(map[string]any)
			So(st["better"], ShouldEqual, 1)
			So(st["grade"], ShouldEqual, "average")
		})

		Convey("Then a missing score is a bad request", func() {
			w := do(h, http.MethodGet, "/events/standing_long_jump/analysis", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestProfileAndCounseling(t *testing.T) {
	Convey("Given the API handler", t, func() {
		h := newHandler(t)

		Convey("Then an empty profile lists what is missing", func() {
			w := do(h, http.MethodGet, "/profile", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode(w)["missing"], ShouldResemble, []any{"name", "gender", "academic_score"})
		})

		Convey("Then counseling an empty profile is unprocessable", func() {
			w := do(h, http.MethodGet, "/counseling", "")
			So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
			body := decode(w)
			So(body["code"], ShouldEqual, "incomplete_profile")
			So(body["missing"], ShouldHaveLength, 3)
		})

		Convey("Then malformed bodies are rejected", func() {
			w := do(h, http.MethodPut, "/profile", "{")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the whole profile is saved", func() {
			So(do(h, http.MethodPut, "/profile", `{"name":"김민수","gender":"남"}`).Code, ShouldEqual, http.StatusOK)
			So(do(h, http.MethodPut, "/profile/academic", `{"academicScore":250}`).Code, ShouldEqual, http.StatusOK)

			Convey("Then counseling without events is unprocessable", func() {
				w := do(h, http.MethodGet, "/counseling", "")
				So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
				So(decode(w)["code"], ShouldEqual, "no_events")
			})

			Convey("Then invalid athletic records are rejected", func() {
				w := do(h, http.MethodPut, "/profile/sports", `{"sportsScores":{"standing_long_jump":-5}}`)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})

			Convey("When athletic records are saved", func() {
				w := do(h, http.MethodPut, "/profile/sports", `{"sportsScores":{"standing_long_jump":250}}`)
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decode(w)["missing"], ShouldBeEmpty)

				Convey("Then the university is assessed but not eligible", func() {
					w := do(h, http.MethodGet, "/counseling", "")
					So(w.Code, ShouldEqual, http.StatusOK)
					body := decode(w)
					So(body["eligible"], ShouldBeEmpty)
					all := body["all"].([]any)
					So(all, ShouldHaveLength, 1)
					a := all[0].(map[string]any)
					So(a["athletic_score"], ShouldEqual, 50)
					So(a["total_score"], ShouldEqual, 300)
					So(a["tier"], ShouldEqual, "average")
					So(a["missing_names"], ShouldResemble, []any{"배근력"})
				})
			})
		})

		Convey("Then universities are listed", func() {
			w := do(h, http.MethodGet, "/universities", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var us []map[string]any
			So(json.Unmarshal(w.Body.Bytes(), &us), ShouldBeNil)
			So(us, ShouldHaveLength, 1)
		})
	})
}

func TestCareerRoutes(t *testing.T) {
	Convey("Given the API handler", t, func() {
		h := newHandler(t)
		major := url.PathEscape("체육교육과")

		Convey("Then majors and careers are served", func() {
			So(do(h, http.MethodGet, "/careers/majors", "").Body.String(), ShouldContainSubstring, "체육교육과")
			So(do(h, http.MethodGet, "/careers/majors/"+major, "").Code, ShouldEqual, http.StatusOK)

			w := do(h, http.MethodGet, "/careers/majors/"+major+"/"+url.PathEscape("체육교사"), "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "생활스포츠지도사")
		})

		Convey("Then unknown careers are not found", func() {
			w := do(h, http.MethodGet, "/careers/majors/"+url.PathEscape("무용과"), "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(decode(w)["code"], ShouldEqual, "not_found")
		})

		Convey("Then certificates are served", func() {
			So(do(h, http.MethodGet, "/careers/certificates", "").Code, ShouldEqual, http.StatusOK)
			w := do(h, http.MethodGet, "/careers/certificates/"+url.PathEscape("생활스포츠지도사"), "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode(w)["careers"], ShouldHaveLength, 1)
		})
	})
}
