package handlers

import (
	"encoding/json"
	"html/template"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	httpContracts "github.com/sawpanic/selicinsights/internal/http"
	"github.com/sawpanic/selicinsights/internal/persistence"
	"github.com/sawpanic/selicinsights/internal/series"
	"github.com/sawpanic/selicinsights/internal/source"
)

// RequestIDKey is the context key under which the server stores the request id.
type RequestIDKey struct{}

// DataStore is the read side of source.Store.
type DataStore interface {
	Snapshot() (series.Dataset, time.Time)
	SourceName() string
	Source() source.Source
}

// degradable is implemented by sources that can fall back to stale data.
type degradable interface {
	Degraded() bool
	BreakerState() string
}

// Deps are the collaborators of the handlers.
type Deps struct {
	Store    DataStore
	DBHealth persistence.RepositoryHealth
	Clients  func() int
	Version  string
	Now      func() time.Time
}

// Handlers manages all HTTP endpoint handlers
type Handlers struct {
	store    DataStore
	dbHealth persistence.RepositoryHealth
	clients  func() int
	version  string
	now      func() time.Time
	started  time.Time
	pages    *template.Template
}

// NewHandlers creates a new handlers instance
func NewHandlers(deps Deps) (*Handlers, error) {
	pages, err := parsePages()
	if err != nil {
		return nil, err
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Clients == nil {
		deps.Clients = func() int { return 0 }
	}
	return &Handlers{
		store:    deps.Store,
		dbHealth: deps.DBHealth,
		clients:  deps.Clients,
		version:  deps.Version,
		now:      deps.Now,
		started:  deps.Now(),
		pages:    pages,
	}, nil
}

// window returns the data set filtered by the request's range parameter.
func (h *Handlers) window(r *http.Request) (series.Dataset, series.Range) {
	rng := series.ParseRange(r.URL.Query().Get("range"))
	ds, _ := h.store.Snapshot()
	return ds.Filter(rng, h.now()), rng
}

// writeJSON writes JSON response with proper error handling
func (h *Handlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes standardized error response
func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	requestID, _ := r.Context().Value(RequestIDKey{}).(string)
	if requestID == "" {
		requestID = "unknown"
	}

	errorResp := httpContracts.ErrorResponse{
		Error:     http.StatusText(status),
		Message:   message,
		Code:      code,
		RequestID: requestID,
		Timestamp: h.now().UTC(),
	}

	h.writeJSON(w, status, errorResp)
}

// NotFound handles 404 responses
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	h.writeError(w, r, http.StatusNotFound, "endpoint_not_found",
		"The requested endpoint does not exist")
}

// MethodNotAllowed handles 405 responses; the service is read-only.
func (h *Handlers) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", "GET")
	h.writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed",
		"Only GET requests are supported")
}

// TooManyRequests handles requests rejected by the rate limiter.
func (h *Handlers) TooManyRequests(w http.ResponseWriter, r *http.Request) {
	h.writeError(w, r, http.StatusTooManyRequests, "rate_limited",
		"Too many requests, slow down")
}
