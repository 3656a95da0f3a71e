package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/trip-planner/internal/api"
	"github.com/eugenenazirov/trip-planner/internal/compare"
	"github.com/eugenenazirov/trip-planner/internal/storage"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := zaptest.NewLogger(t)
	store := storage.NewMemoryStorage()
	handler, err := api.NewHandler(store, compare.New(logger))
	if err != nil {
		t.Fatalf("NewHandler returned error: %v", err)
	}
	return api.NewRouter(handler, logger)
}

func performRequest(t *testing.T, handler http.Handler, method, target string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestIntegrationFlow(t *testing.T) {
	handler := newRouter(t)
	jsonHeaders := map[string]string{"Content-Type": "application/json"}

	rec := performRequest(t, handler, http.MethodGet, "/api/health", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from health, got %d", rec.Code)
	}

	rec = performRequest(t, handler, http.MethodPost, "/api/plan", []byte(`{"algorithm":"greedy"}`), jsonHeaders)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 before items are stored, got %d", rec.Code)
	}

	itemsPayload, _ := json.Marshal(map[string]any{
		"items": map[string]int{"A": 5, "B": 4, "C": 3, "D": 3, "E": 3, "F": 2},
	})
	rec = performRequest(t, handler, http.MethodPut, "/api/items", itemsPayload, jsonHeaders)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from items update, got %d: %s", rec.Code, rec.Body.String())
	}

	var plan struct {
		Algorithm string `json:"algorithm"`
		TripCount int    `json:"tripCount"`
	}
	rec = performRequest(t, handler, http.MethodPost, "/api/plan", []byte(`{"algorithm":"exhaustive","capacity":10}`), jsonHeaders)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from plan, got %d: %s", rec.Code, rec.Body.String())
	}
	if err := json.NewDecoder(rec.Body).Decode(&plan); err != nil {
		t.Fatalf("decode plan response: %v", err)
	}
	if plan.Algorithm != "exhaustive" || plan.TripCount != 2 {
		t.Fatalf("unexpected plan %+v", plan)
	}

	var report struct {
		Results []struct {
			Solver    string `json:"solver"`
			TripCount int    `json:"tripCount"`
		} `json:"results"`
	}
	rec = performRequest(t, handler, http.MethodPost, "/api/compare", []byte(`{"capacity":10}`), jsonHeaders)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from compare, got %d: %s", rec.Code, rec.Body.String())
	}
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatalf("decode compare response: %v", err)
	}
	if len(report.Results) != 2 {
		t.Fatalf("expected 2 results, got %+v", report.Results)
	}
	if report.Results[0].Solver != "greedy" || report.Results[0].TripCount != 3 {
		t.Fatalf("unexpected greedy result %+v", report.Results[0])
	}
	if report.Results[1].Solver != "exhaustive" || report.Results[1].TripCount != 2 {
		t.Fatalf("unexpected exhaustive result %+v", report.Results[1])
	}

	rec = performRequest(t, handler, http.MethodPost, "/api/plan", []byte(`{"algorithm":"greedy","capacity":4}`), jsonHeaders)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for unplaceable item, got %d", rec.Code)
	}
}
