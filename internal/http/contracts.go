package http

import (
	"time"

	"github.com/sawpanic/selicinsights/internal/analysis"
	"github.com/sawpanic/selicinsights/internal/chart"
	"github.com/sawpanic/selicinsights/internal/persistence"
	"github.com/sawpanic/selicinsights/internal/series"
	"github.com/sawpanic/selicinsights/internal/snippet"
	"github.com/sawpanic/selicinsights/internal/table"
)

// RangeInfo echoes the resolved time range of a request
type RangeInfo struct {
	Key   series.Range `json:"key"`
	Label string       `json:"label"`
}

// SeriesResponse is the range-filtered raw data set
type SeriesResponse struct {
	Range        RangeInfo            `json:"range"`
	Count        int                  `json:"count"`
	Observations []series.Observation `json:"observations"`
	Generated    time.Time            `json:"generated"`
}

// CorrelationResponse represents the Pearson matrix over the selected range
type CorrelationResponse struct {
	Range     RangeInfo         `json:"range"`
	Fields    []FieldInfo       `json:"fields"`
	Matrix    [][]analysis.Cell `json:"matrix"`
	Count     int               `json:"count"`
	Generated time.Time         `json:"generated"`
}

// FieldInfo describes one indicator column
type FieldInfo struct {
	Key   series.Field `json:"key"`
	Label string       `json:"label"`
	Unit  string       `json:"unit"`
}

// TableResponse is one page of the searchable data table
type TableResponse struct {
	Range      RangeInfo      `json:"range"`
	Query      string         `json:"query,omitempty"`
	Rows       []table.Row    `json:"rows"`
	Pagination PaginationInfo `json:"pagination"`
	Summary    string         `json:"summary,omitempty"`
	Generated  time.Time      `json:"generated"`
}

// PaginationInfo represents pagination metadata
type PaginationInfo struct {
	Total      int  `json:"total"`
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// ChartsResponse holds the three dashboard line charts
type ChartsResponse struct {
	Range     RangeInfo          `json:"range"`
	Charts    []chart.TimeSeries `json:"charts"`
	Generated time.Time          `json:"generated"`
}

// ReturnsResponse is the fixed-income comparison for the selected range
type ReturnsResponse struct {
	Range      RangeInfo           `json:"range"`
	Comparison analysis.Comparison `json:"comparison"`
	Generated  time.Time           `json:"generated"`
}

// SnippetResponse wraps the analysis code
type SnippetResponse struct {
	snippet.Snippet
	DownloadURL string `json:"download_url"`
}

// HealthResponse represents the system health status
type HealthResponse struct {
	Status    string                   `json:"status"` // "healthy", "degraded", "unhealthy"
	Timestamp time.Time                `json:"timestamp"`
	Uptime    string                   `json:"uptime"`
	Version   string                   `json:"version"`
	Source    SourceHealth             `json:"source"`
	Database  *persistence.HealthCheck `json:"database,omitempty"`
	Stream    StreamHealth             `json:"stream"`
}

// SourceHealth reports the data set currently served
type SourceHealth struct {
	Name     string    `json:"name"`
	Records  int       `json:"records"`
	LoadedAt time.Time `json:"loaded_at"`
	Degraded bool      `json:"degraded"`
	Breaker  string    `json:"breaker,omitempty"`
}

// StreamHealth reports live-update clients
type StreamHealth struct {
	Clients int `json:"clients"`
}

// Snapshot is pushed to WebSocket clients whenever the data set changes
type Snapshot struct {
	Source      string              `json:"source"`
	Records     int                 `json:"records"`
	Latest      *series.Observation `json:"latest,omitempty"`
	Correlation [][]analysis.Cell   `json:"correlation"`
	Generated   time.Time           `json:"generated"`
}

// ErrorResponse represents API error responses
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Code      string    `json:"code"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Fields lists every indicator in display order.
func Fields() []FieldInfo {
	out := make([]FieldInfo, 0, len(series.Fields))
	for _, f := range series.Fields {
		out = append(out, FieldInfo{Key: f, Label: f.Label(), Unit: f.Unit()})
	}
	return out
}

// NewRangeInfo describes r.
func NewRangeInfo(r series.Range) RangeInfo {
	return RangeInfo{Key: r, Label: r.Label()}
}

// NewPaginationInfo converts a table page into the pagination contract.
func NewPaginationInfo(p table.Page) PaginationInfo {
	return PaginationInfo{
		Total:      p.Total,
		Page:       p.Page,
		PageSize:   p.PerPage,
		TotalPages: p.TotalPages,
		HasNext:    p.HasNext,
		HasPrev:    p.HasPrev,
	}
}

// NewSnapshot builds the live-update payload for ds.
func NewSnapshot(sourceName string, ds series.Dataset, now time.Time) Snapshot {
	snap := Snapshot{
		Source:      sourceName,
		Records:     len(ds),
		Correlation: analysis.Correlate(ds).Rows(),
		Generated:   now.UTC(),
	}
	if latest, ok := ds.Latest(); ok {
		snap.Latest = &latest
	}
	return snap
}
