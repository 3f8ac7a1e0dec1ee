package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/sawpanic/selicinsights/internal/analysis"
	"github.com/sawpanic/selicinsights/internal/chart"
	httpContracts "github.com/sawpanic/selicinsights/internal/http"
	"github.com/sawpanic/selicinsights/internal/snippet"
	"github.com/sawpanic/selicinsights/internal/table"
)

// Series handles GET /api/series
func (h *Handlers) Series(w http.ResponseWriter, r *http.Request) {
	ds, rng := h.window(r)
	h.writeJSON(w, http.StatusOK, httpContracts.SeriesResponse{
		Range:        httpContracts.NewRangeInfo(rng),
		Count:        len(ds),
		Observations: ds,
		Generated:    h.now().UTC(),
	})
}

// Correlation handles GET /api/correlation
func (h *Handlers) Correlation(w http.ResponseWriter, r *http.Request) {
	ds, rng := h.window(r)
	h.writeJSON(w, http.StatusOK, httpContracts.CorrelationResponse{
		Range:     httpContracts.NewRangeInfo(rng),
		Fields:    httpContracts.Fields(),
		Matrix:    analysis.Correlate(ds).Rows(),
		Count:     len(ds),
		Generated: h.now().UTC(),
	})
}

// parsePage reads the page query parameter; absent means the first page.
func parsePage(r *http.Request) (int, error) {
	pageStr := r.URL.Query().Get("page")
	if pageStr == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		return 0, fmt.Errorf("%w: %q", table.ErrInvalidPage, pageStr)
	}
	return page, nil
}

// Table handles GET /api/table with search and pagination
func (h *Handlers) Table(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid_page", err.Error())
		return
	}

	ds, rng := h.window(r)
	query := r.URL.Query().Get("q")
	result, err := table.Paginate(table.Search(ds, query), page, table.DefaultPerPage)
	if err != nil {
		if errors.Is(err, table.ErrInvalidPage) {
			h.writeError(w, r, http.StatusBadRequest, "invalid_page", err.Error())
			return
		}
		h.writeError(w, r, http.StatusInternalServerError, "table_failed", err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, httpContracts.TableResponse{
		Range:      httpContracts.NewRangeInfo(rng),
		Query:      query,
		Rows:       result.Rows,
		Pagination: httpContracts.NewPaginationInfo(result),
		Summary:    result.Summary,
		Generated:  h.now().UTC(),
	})
}

// Charts handles GET /api/charts
func (h *Handlers) Charts(w http.ResponseWriter, r *http.Request) {
	ds, rng := h.window(r)
	h.writeJSON(w, http.StatusOK, httpContracts.ChartsResponse{
		Range:     httpContracts.NewRangeInfo(rng),
		Charts:    chart.Dashboard(ds),
		Generated: h.now().UTC(),
	})
}

// Returns handles GET /api/returns
func (h *Handlers) Returns(w http.ResponseWriter, r *http.Request) {
	ds, rng := h.window(r)
	h.writeJSON(w, http.StatusOK, httpContracts.ReturnsResponse{
		Range:      httpContracts.NewRangeInfo(rng),
		Comparison: analysis.CompareInvestments(ds),
		Generated:  h.now().UTC(),
	})
}

// Snippet handles GET /api/snippet
func (h *Handlers) Snippet(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, httpContracts.SnippetResponse{
		Snippet:     snippet.Get(),
		DownloadURL: "/snippet.py",
	})
}

// SnippetSource handles GET /snippet.py
func (h *Handlers) SnippetSource(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename=%q`, snippet.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(snippet.Code()))
}

// ExportCSV handles GET /api/export.csv. Search terms are not applied.
func (h *Handlers) ExportCSV(w http.ResponseWriter, r *http.Request) {
	ds, rng := h.window(r)

	var buf bytes.Buffer
	if err := table.WriteCSV(&buf, ds); err != nil {
		log.Error().Err(err).Str("range", string(rng)).Msg("CSV export failed")
		h.writeError(w, r, http.StatusInternalServerError, "export_failed", "Failed to build CSV export")
		return
	}

	w.Header().Set("Content-Type", table.CSVContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, table.CSVFilename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
