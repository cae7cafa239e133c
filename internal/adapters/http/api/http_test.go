package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/staffwise/internal/adapters/http/api"
	service "github.com/okian/staffwise/internal/app"
	"github.com/okian/staffwise/internal/domain/types"
	"github.com/okian/staffwise/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

// Mock implementations for testing
type mockRecommender struct {
	resp     types.Response
	err      error
	batchErr error
	gotID    int64
	gotBatch []int64
}

func (m *mockRecommender) Recommend(_ context.Context, projectID int64) (types.Response, error) {
	m.gotID = projectID
	if m.err != nil {
		return types.Empty(), m.err
	}
	return m.resp, nil
}

func (m *mockRecommender) RecommendBatch(_ context.Context, projectIDs []int64) ([]types.ProjectResponse, error) {
	m.gotBatch = projectIDs
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	out := make([]types.ProjectResponse, 0, len(projectIDs))
	for _, id := range projectIDs {
		out = append(out, types.ProjectResponse{ProjectID: id, Recommendations: m.resp.Recommendations})
	}
	return out, nil
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func sampleResponse() types.Response {
	return types.Response{Recommendations: []types.Recommendation{{
		ExperienceLevel:         "intermediate",
		RequiredSkills:          []string{"python", "sql"},
		PreferredAssignmentType: "Full-Time",
		RecommendedEmployees: []types.RecommendedEmployee{{
			EmployeeID:          "B",
			UserID:              "u-B",
			AssignmentType:      "Full-Time",
			AssignedHours:       40,
			AllocationPercent:   100,
			TotalAvailableHours: 40,
		}},
	}}}
}

func newMux(deps api.Dependencies, opts ...api.Option) (*api.Server, *http.ServeMux) {
	opts = append([]api.Option{api.WithLogger(logger.Nop())}, opts...)
	server := api.NewServer(deps, &mockStatsProvider{stats: map[string]interface{}{"served": 3}}, opts...)
	mux := http.NewServeMux()
	server.Register(context.Background(), mux)
	return server, mux
}

func serve(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestServer_Register(t *testing.T) {
	Convey("Given a new API server", t, func() {
		_, mux := newMux(&mockRecommender{resp: sampleResponse()}, api.WithServiceName("staffwise"))

		Convey("Then the health endpoint reports the service", func() {
			w := serve(mux, http.MethodGet, "/health", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"status":"healthy"`)
			So(w.Body.String(), ShouldContainSubstring, `"service":"staffwise"`)
		})

		Convey("And the metrics endpoint serves Prometheus text", func() {
			_ = serve(mux, http.MethodGet, "/health", "")
			w := serve(mux, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "http_requests_total")
		})

		Convey("And the stats endpoint is accessible", func() {
			w := serve(mux, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"served":3`)
		})

		Convey("And stats rejects other methods", func() {
			w := serve(mux, http.MethodPost, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("And registering on a nil mux panics", func() {
			server := api.NewServer(&mockRecommender{}, &mockStatsProvider{}, api.WithLogger(logger.Nop()))
			So(func() { server.Register(context.Background(), nil) }, ShouldPanic)
		})
	})
}

func TestRecommendHandler(t *testing.T) {
	Convey("Given the recommendation routes", t, func() {
		deps := &mockRecommender{resp: sampleResponse()}
		_, mux := newMux(deps)

		Convey("When posting a valid project id", func() {
			w := serve(mux, http.MethodPost, "/api/recommendations/42", "")

			Convey("Then the response carries the recommendations", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.gotID, ShouldEqual, 42)
				So(w.Header().Get("Content-Type"), ShouldEqual, "application/json; charset=utf-8")
				So(w.Body.String(), ShouldEqual,
					`{"recommendations":[{"experience_level":"intermediate","required_skills":["python","sql"],"preferred_assignment_type":"Full-Time","recommended_employees":[{"employee_id":"B","user_id":"u-B","assignment_type":"Full-Time","assigned_hours":40,"allocation_percent":100.0,"total_available_hours":40}]}]}`+"\n")
			})
		})

		Convey("When using GET", func() {
			w := serve(mux, http.MethodGet, "/api/recommendations/7", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.gotID, ShouldEqual, 7)
		})

		Convey("When the project id is not a number", func() {
			w := serve(mux, http.MethodPost, "/api/recommendations/abc", "")

			Convey("Then it returns bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				var body map[string]string
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(body["code"], ShouldEqual, "bad_request")
				So(body["message"], ShouldContainSubstring, "invalid project id")
			})
		})

		Convey("When the method is not allowed", func() {
			w := serve(mux, http.MethodDelete, "/api/recommendations/1", "")
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})

		Convey("When the request is cancelled", func() {
			deps.err = fmt.Errorf("recommend project 1: %w", context.Canceled)
			w := serve(mux, http.MethodPost, "/api/recommendations/1", "")
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
		})

		Convey("When the service fails unexpectedly", func() {
			deps.err = errors.New("boom")
			w := serve(mux, http.MethodPost, "/api/recommendations/1", "")
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
		})
	})
}

func TestBatchHandler(t *testing.T) {
	Convey("Given the batch route", t, func() {
		deps := &mockRecommender{resp: sampleResponse()}
		_, mux := newMux(deps)

		Convey("When posting project ids", func() {
			w := serve(mux, http.MethodPost, "/api/recommendations/batch", `{"project_ids":[3,1]}`)

			Convey("Then results follow the input order", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.gotBatch, ShouldResemble, []int64{3, 1})
				var body types.BatchResponse
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(len(body.Results), ShouldEqual, 2)
				So(body.Results[0].ProjectID, ShouldEqual, int64(3))
				So(body.Results[1].ProjectID, ShouldEqual, int64(1))
			})
		})

		Convey("When the body is not JSON", func() {
			w := serve(mux, http.MethodPost, "/api/recommendations/batch", `{`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the batch is empty", func() {
			deps.batchErr = service.ErrEmptyBatch
			w := serve(mux, http.MethodPost, "/api/recommendations/batch", `{"project_ids":[]}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the queue is full", func() {
			deps.batchErr = fmt.Errorf("%w: queue is full", service.ErrBackpressure)
			w := serve(mux, http.MethodPost, "/api/recommendations/batch", `{"project_ids":[1]}`)

			Convey("Then it returns too many requests", func() {
				So(w.Code, ShouldEqual, http.StatusTooManyRequests)
				So(w.Body.String(), ShouldContainSubstring, `"code":"backpressure"`)
			})
		})

		Convey("When the service is not started", func() {
			deps.batchErr = service.ErrNotStarted
			w := serve(mux, http.MethodPost, "/api/recommendations/batch", `{"project_ids":[1]}`)
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
		})
	})
}

func TestMiddleware(t *testing.T) {
	Convey("Given the wrapped handler", t, func() {
		server, mux := newMux(&mockRecommender{resp: types.Empty()}, api.WithAllowedOrigins([]string{"http://localhost:3000"}))
		h := server.Handler(mux)

		Convey("When the client sends no request id", func() {
			w := serve(h, http.MethodGet, "/health", "")

			Convey("Then one is generated", func() {
				So(len(w.Header().Get(api.HeaderRequestID)), ShouldEqual, 36)
			})
		})

		Convey("When the client sends a request id", func() {
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			req.Header.Set(api.HeaderRequestID, "abc-123")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			Convey("Then it is echoed", func() {
				So(w.Header().Get(api.HeaderRequestID), ShouldEqual, "abc-123")
			})
		})

		Convey("When an allowed origin sends a preflight", func() {
			req := httptest.NewRequest(http.MethodOptions, "/api/recommendations/1", nil)
			req.Header.Set("Origin", "http://localhost:3000")
			req.Header.Set("Access-Control-Request-Method", "POST")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			Convey("Then it is answered directly", func() {
				So(w.Code, ShouldEqual, http.StatusNoContent)
				So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "http://localhost:3000")
			})
		})

		Convey("When an unknown origin calls", func() {
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			req.Header.Set("Origin", "http://evil.example")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			Convey("Then no CORS headers are set", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Access-Control-Allow-Origin"), ShouldBeEmpty)
			})
		})
	})

	Convey("Given a wildcard origin list", t, func() {
		h := api.CORSMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}), []string{"*"})
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://app.example")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "https://app.example")
	})
}
