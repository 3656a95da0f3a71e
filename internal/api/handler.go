package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/eugenenazirov/trip-planner/internal/compare"
	"github.com/eugenenazirov/trip-planner/internal/metrics"
	"github.com/eugenenazirov/trip-planner/internal/planner"
	"github.com/eugenenazirov/trip-planner/internal/storage"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

// Handler wires the item store, solvers and comparison harness into HTTP handlers.
type Handler struct {
	storage storage.ItemStore
	solvers map[string]planner.Solver
	harness *compare.Harness
	metrics *metrics.Metrics

	validate   *validator.Validate
	translator ut.Translator

	capacity      int
	searchTimeout time.Duration
	clock         func() time.Time

	mu             sync.RWMutex
	itemsUpdatedAt time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithSolvers replaces the solvers reachable through POST /api/plan.
func WithSolvers(solvers ...planner.Solver) HandlerOption {
	return func(h *Handler) {
		h.solvers = make(map[string]planner.Solver, len(solvers))
		for _, s := range solvers {
			h.solvers[s.Name()] = s
		}
	}
}

// WithDefaultCapacity sets the capacity used when a request does not name one.
func WithDefaultCapacity(capacity int) HandlerOption {
	return func(h *Handler) {
		h.capacity = capacity
	}
}

// WithSearchTimeout bounds the time a single plan or comparison may take.
func WithSearchTimeout(timeout time.Duration) HandlerOption {
	return func(h *Handler) {
		h.searchTimeout = timeout
	}
}

// WithMetrics records solver runs served by POST /api/plan.
func WithMetrics(m *metrics.Metrics) HandlerOption {
	return func(h *Handler) {
		h.metrics = m
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(store storage.ItemStore, harness *compare.Harness, opts ...HandlerOption) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, fmt.Errorf("register validator translations: %w", err)
	}

	h := &Handler{
		storage:       store,
		harness:       harness,
		validate:      validate,
		translator:    trans,
		capacity:      10,
		searchTimeout: 30 * time.Second,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	WithSolvers(planner.NewGreedy(), planner.NewExhaustive())(h)
	for _, opt := range opts {
		opt(h)
	}
	h.itemsUpdatedAt = h.clock()
	return h, nil
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetItems(w http.ResponseWriter, r *http.Request) {
	_ = r
	items, err := h.storage.GetItems()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	resp := itemsResponse{
		Items:       items,
		TotalWeight: items.TotalWeight(),
		Capacity:    h.capacity,
		UpdatedAt:   h.currentItemsUpdatedAt(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handlePutItems(w http.ResponseWriter, r *http.Request) {
	var req itemsRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.storage.SetItems(req.Items); err != nil {
		if errors.Is(err, storage.ErrInvalidItems) {
			writeError(w, http.StatusBadRequest, "Invalid items", err.Error())
			return
		}
		writeInternalError(w, err)
		return
	}

	h.markItemsUpdated()

	items, err := h.storage.GetItems()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	resp := itemsResponse{
		Items:       items,
		TotalWeight: items.TotalWeight(),
		Capacity:    h.capacity,
		UpdatedAt:   h.currentItemsUpdatedAt(),
		Message:     "Items updated successfully",
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handlePlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if !h.decode(w, r, &req) {
		return
	}

	solver, ok := h.solvers[req.Algorithm]
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid request", fmt.Sprintf("algorithm %q is not available", req.Algorithm))
		return
	}

	items, ok := h.resolveItems(w, req.Items)
	if !ok {
		return
	}
	capacity := h.resolveCapacity(req.Capacity)

	ctx, cancel := context.WithTimeout(r.Context(), h.searchTimeout)
	defer cancel()

	start := time.Now()
	solution, err := solver.Plan(ctx, items, capacity)
	elapsed := time.Since(start)
	h.metrics.ObserveSolve(solver.Name(), elapsed, solution.Len(), err)

	if err != nil {
		writeSolverError(w, err)
		return
	}

	resp := planResponse{
		Algorithm:         solver.Name(),
		Capacity:          capacity,
		Trips:             toTripResponses(items, solution),
		TripCount:         solution.Len(),
		CalculationTimeMs: milliseconds(elapsed),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if !h.decode(w, r, &req) {
		return
	}

	items, ok := h.resolveItems(w, req.Items)
	if !ok {
		return
	}
	capacity := h.resolveCapacity(req.Capacity)

	ctx, cancel := context.WithTimeout(r.Context(), h.searchTimeout)
	defer cancel()

	report, err := h.harness.Run(ctx, items, capacity)
	if err != nil {
		writeSolverError(w, err)
		return
	}

	resp := compareResponse{
		Capacity: report.Capacity,
		Items:    report.Items,
		Results:  make([]compareResult, 0, len(report.Results)),
		DeltaMs:  milliseconds(report.Delta()),
	}
	for _, res := range report.Results {
		resp.Results = append(resp.Results, compareResult{
			Solver:            res.Solver,
			TripCount:         res.Trips,
			Trips:             toTripResponses(items, res.Solution),
			CalculationTimeMs: milliseconds(res.Elapsed),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// decode parses and validates a JSON body, writing a 400 response on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", h.describeValidation(err))
		return false
	}
	return true
}

func (h *Handler) describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fe.Translate(h.translator))
	}
	return strings.Join(msgs, "; ")
}

// resolveItems prefers the items sent with the request and falls back to the
// stored set.
func (h *Handler) resolveItems(w http.ResponseWriter, requested map[string]int) (planner.Items, bool) {
	if len(requested) > 0 {
		items, err := planner.Normalize(requested)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid items", err.Error())
			return nil, false
		}
		return items, true
	}

	items, err := h.storage.GetItems()
	if err != nil {
		writeInternalError(w, err)
		return nil, false
	}
	if len(items) == 0 {
		writeError(w, http.StatusBadRequest, "No items", "no items are stored; send items with the request or PUT /api/items first")
		return nil, false
	}
	return items, true
}

func (h *Handler) resolveCapacity(requested *int) int {
	if requested != nil {
		return *requested
	}
	return h.capacity
}

func (h *Handler) currentItemsUpdatedAt() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.itemsUpdatedAt
}

func (h *Handler) markItemsUpdated() {
	h.mu.Lock()
	h.itemsUpdatedAt = h.clock()
	h.mu.Unlock()
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

func writeSolverError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, planner.ErrInvalidCapacity), errors.Is(err, planner.ErrInvalidWeight), errors.Is(err, planner.ErrInvalidName):
		writeError(w, http.StatusBadRequest, "Invalid request", err.Error())
	case errors.Is(err, planner.ErrUnplaceableItem):
		writeError(w, http.StatusUnprocessableEntity, "Item cannot be placed", err.Error(),
			"Raise the capacity or remove items heavier than it")
	case errors.Is(err, planner.ErrSearchBudgetExceeded):
		writeError(w, http.StatusUnprocessableEntity, "Search budget exceeded", err.Error(),
			"Use the greedy algorithm or plan fewer items at once")
	default:
		writeInternalError(w, err)
	}
}

func toTripResponses(items planner.Items, solution planner.Solution) []tripResponse {
	trips := make([]tripResponse, len(solution))
	for i, trip := range solution {
		trips[i] = tripResponse{
			Items:  trip,
			Weight: trip.Weight(items),
		}
	}
	return trips
}

func milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

type itemsRequest struct {
	Items map[string]int `json:"items" validate:"required,min=1,max=1000,dive,keys,required,endkeys,gte=0"`
}

type planRequest struct {
	Algorithm string         `json:"algorithm" validate:"required"`
	Capacity  *int           `json:"capacity" validate:"omitempty,gte=0"`
	Items     map[string]int `json:"items" validate:"omitempty,max=1000,dive,keys,required,endkeys,gte=0"`
}

type compareRequest struct {
	Capacity *int           `json:"capacity" validate:"omitempty,gte=0"`
	Items    map[string]int `json:"items" validate:"omitempty,max=1000,dive,keys,required,endkeys,gte=0"`
}

type tripResponse struct {
	Items  []string `json:"items"`
	Weight int      `json:"weight"`
}

type planResponse struct {
	Algorithm         string         `json:"algorithm"`
	Capacity          int            `json:"capacity"`
	Trips             []tripResponse `json:"trips"`
	TripCount         int            `json:"tripCount"`
	CalculationTimeMs float64        `json:"calculationTimeMs"`
}

type compareResult struct {
	Solver            string         `json:"solver"`
	TripCount         int            `json:"tripCount"`
	Trips             []tripResponse `json:"trips"`
	CalculationTimeMs float64        `json:"calculationTimeMs"`
}

type compareResponse struct {
	Capacity int             `json:"capacity"`
	Items    int             `json:"items"`
	Results  []compareResult `json:"results"`
	DeltaMs  float64         `json:"deltaMs"`
}

type itemsResponse struct {
	Items       planner.Items `json:"items"`
	TotalWeight int           `json:"totalWeight"`
	Capacity    int           `json:"capacity"`
	UpdatedAt   time.Time     `json:"updatedAt"`
	Message     string        `json:"message,omitempty"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
