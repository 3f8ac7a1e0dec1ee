package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpContracts "github.com/sawpanic/selicinsights/internal/http"
	"github.com/sawpanic/selicinsights/internal/persistence"
	"github.com/sawpanic/selicinsights/internal/snippet"
	"github.com/sawpanic/selicinsights/internal/source"
	"github.com/sawpanic/selicinsights/internal/table"
)

var fixedNow = time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)

func newTestHandlers(t *testing.T, dbHealth persistence.RepositoryHealth) *Handlers {
	t.Helper()
	store := source.NewStore(source.Embedded{}, nil)
	_, err := store.Refresh(context.Background())
	require.NoError(t, err)

	h, err := NewHandlers(Deps{
		Store:    store,
		DBHealth: dbHealth,
		Clients:  func() int { return 2 },
		Version:  "test",
		Now:      func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return h
}

func serve(h http.HandlerFunc, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestSeries(t *testing.T) {
	h := newTestHandlers(t, nil)

	rr := serve(h.Series, "/api/series?range=all")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	resp := decode[httpContracts.SeriesResponse](t, rr)
	assert.Equal(t, 26, resp.Count)
	assert.Len(t, resp.Observations, 26)
	assert.Equal(t, "Todo o Período", resp.Range.Label)
}

func TestSeries_DefaultRangeIsFiveYears(t *testing.T) {
	h := newTestHandlers(t, nil)

	resp := decode[httpContracts.SeriesResponse](t, serve(h.Series, "/api/series"))
	assert.Equal(t, "5years", string(resp.Range.Key))
	assert.Equal(t, 20, resp.Count)
	assert.Equal(t, "2019-07-01", resp.Observations[0].Date.Format("2006-01-02"))
}

func TestCorrelation(t *testing.T) {
	h := newTestHandlers(t, nil)

	resp := decode[httpContracts.CorrelationResponse](t, serve(h.Correlation, "/api/correlation?range=all"))
	require.Len(t, resp.Matrix, 4)
	require.Len(t, resp.Fields, 4)
	for i, row := range resp.Matrix {
		require.Len(t, row, 4)
		assert.Equal(t, "1.00", row[i].Display)
		for j := range row {
			assert.InDelta(t, row[j].Value, resp.Matrix[j][i].Value, 1e-12)
		}
	}
}

func TestCorrelation_EmptyWindow(t *testing.T) {
	h := newTestHandlers(t, nil)
	h.now = func() time.Time { return time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC) }

	resp := decode[httpContracts.CorrelationResponse](t, serve(h.Correlation, "/api/correlation?range=1year"))
	assert.Equal(t, 0, resp.Count)
	for _, row := range resp.Matrix {
		for _, c := range row {
			assert.Equal(t, 0.0, c.Value)
			assert.Equal(t, "neutral", string(c.Band))
		}
	}
}

func TestTable(t *testing.T) {
	h := newTestHandlers(t, nil)

	resp := decode[httpContracts.TableResponse](t, serve(h.Table, "/api/table?range=all"))
	require.Len(t, resp.Rows, 10)
	assert.Equal(t, "01/04/2024", resp.Rows[0].Date, "newest first")
	assert.Equal(t, 26, resp.Pagination.Total)
	assert.Equal(t, 3, resp.Pagination.TotalPages)
	assert.True(t, resp.Pagination.HasNext)
	assert.False(t, resp.Pagination.HasPrev)
	assert.Equal(t, "Mostrando 1 a 10 de 26 registros", resp.Summary)
}

func TestTable_PageClampedToLast(t *testing.T) {
	h := newTestHandlers(t, nil)

	resp := decode[httpContracts.TableResponse](t, serve(h.Table, "/api/table?range=all&page=99"))
	assert.Equal(t, 3, resp.Pagination.Page)
	assert.Len(t, resp.Rows, 6)
	assert.Equal(t, "Mostrando 21 a 26 de 26 registros", resp.Summary)
}

func TestTable_Search(t *testing.T) {
	h := newTestHandlers(t, nil)

	resp := decode[httpContracts.TableResponse](t, serve(h.Table, "/api/table?range=all&q=2020"))
	require.Len(t, resp.Rows, 4)
	assert.Equal(t, "01/10/2020", resp.Rows[0].Date)
	assert.Empty(t, resp.Summary, "single page has no summary")

	resp = decode[httpContracts.TableResponse](t, serve(h.Table, "/api/table?range=all&q=-10.9"))
	require.Len(t, resp.Rows, 1)
	assert.Equal(t, "-10.90", resp.Rows[0].PIB)

	resp = decode[httpContracts.TableResponse](t, serve(h.Table, "/api/table?range=all&q=zzz"))
	assert.Empty(t, resp.Rows)
	assert.Equal(t, table.EmptyMessage, resp.Summary)

	// the term is matched as typed, surrounding spaces included
	resp = decode[httpContracts.TableResponse](t, serve(h.Table, "/api/table?range=all&q=2020%20"))
	assert.Empty(t, resp.Rows)
	assert.Equal(t, table.EmptyMessage, resp.Summary)
}

func TestTable_InvalidPage(t *testing.T) {
	h := newTestHandlers(t, nil)

	for _, page := range []string{"abc", "0", "-1"} {
		rr := serve(h.Table, "/api/table?page="+page)
		assert.Equal(t, http.StatusBadRequest, rr.Code, page)

		resp := decode[httpContracts.ErrorResponse](t, rr)
		assert.Equal(t, "invalid_page", resp.Code)
		assert.Equal(t, "unknown", resp.RequestID)
	}
}

func TestCharts(t *testing.T) {
	h := newTestHandlers(t, nil)

	resp := decode[httpContracts.ChartsResponse](t, serve(h.Charts, "/api/charts?range=1year"))
	require.Len(t, resp.Charts, 3)
	assert.Equal(t, "Taxa SELIC ao longo do tempo", resp.Charts[0].Title)
	assert.Equal(t, "#2563eb", resp.Charts[0].Stroke)
	assert.Len(t, resp.Charts[0].Points, 4)
}

func TestReturns(t *testing.T) {
	h := newTestHandlers(t, nil)

	resp := decode[httpContracts.ReturnsResponse](t, serve(h.Returns, "/api/returns?range=all"))
	cmp := resp.Comparison
	assert.Equal(t, 10.75, cmp.Selic)
	assert.Equal(t, 3.93, cmp.Inflation)
	require.Len(t, cmp.Investments, 6)
	assert.Equal(t, "Tesouro Selic", cmp.Investments[0].Name)
	assert.Equal(t, "favorable", string(cmp.Scenario))
}

func TestSnippet(t *testing.T) {
	h := newTestHandlers(t, nil)

	resp := decode[httpContracts.SnippetResponse](t, serve(h.Snippet, "/api/snippet"))
	assert.Equal(t, snippet.Code(), resp.Code)
	assert.Equal(t, "python", resp.Language)
	assert.Equal(t, "/snippet.py", resp.DownloadURL)

	rr := serve(h.SnippetSource, "/snippet.py")
	assert.Equal(t, "text/plain; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Equal(t, snippet.Code(), rr.Body.String())
}

func TestExportCSV(t *testing.T) {
	h := newTestHandlers(t, nil)

	rr := serve(h.ExportCSV, "/api/export.csv?range=all&q=2020")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, table.CSVContentType, rr.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="dados_economicos.csv"`, rr.Header().Get("Content-Disposition"))

	lines := strings.Split(strings.TrimRight(rr.Body.String(), "\n"), "\n")
	require.Len(t, lines, 27, "search is not applied to the export")
	assert.Equal(t, "Data,SELIC (%),IPCA (%),PIB (%),Câmbio", lines[0])
	assert.Equal(t, "01/01/2018,7.00,2.86,1.32,3.24", lines[1])
}

type stubHealth struct{ check persistence.HealthCheck }

func (s stubHealth) Health(context.Context) persistence.HealthCheck { return s.check }
func (s stubHealth) Ping(context.Context) error                     { return nil }
func (s stubHealth) Stats(context.Context) map[string]interface{}   { return nil }

func TestHealth(t *testing.T) {
	h := newTestHandlers(t, nil)

	rr := serve(h.Health, "/health")
	require.Equal(t, http.StatusOK, rr.Code)

	resp := decode[httpContracts.HealthResponse](t, rr)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "embedded", resp.Source.Name)
	assert.Equal(t, 26, resp.Source.Records)
	assert.Equal(t, 2, resp.Stream.Clients)
	assert.Nil(t, resp.Database)
}

func TestHealth_DatabaseDown(t *testing.T) {
	h := newTestHandlers(t, stubHealth{check: persistence.HealthCheck{
		Healthy: false,
		Errors:  []string{"ping failed: connection refused"},
	}})

	resp := decode[httpContracts.HealthResponse](t, serve(h.Health, "/health"))
	assert.Equal(t, "degraded", resp.Status)
	require.NotNil(t, resp.Database)
	assert.False(t, resp.Database.Healthy)
}

func TestNotFound(t *testing.T) {
	h := newTestHandlers(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	req = req.WithContext(context.WithValue(req.Context(), RequestIDKey{}, "abcd1234"))
	rr := httptest.NewRecorder()
	h.NotFound(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	resp := decode[httpContracts.ErrorResponse](t, rr)
	assert.Equal(t, "endpoint_not_found", resp.Code)
	assert.Equal(t, "abcd1234", resp.RequestID)
	assert.Equal(t, "Not Found", resp.Error)
}

func TestDashboard(t *testing.T) {
	h := newTestHandlers(t, nil)

	rr := serve(h.Dashboard, "/")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))

	body := rr.Body.String()
	assert.Contains(t, body, "Correlação entre Variáveis")
	assert.Contains(t, body, "Taxa SELIC ao longo do tempo")
	assert.Equal(t, 3, strings.Count(body, "<svg"))
	assert.Contains(t, body, "Mostrando 1 a 10 de 20 registros")
	assert.Contains(t, body, `<option value="5years" selected>`)
	assert.Contains(t, body, "/api/export.csv?range=5years")
	assert.Contains(t, body, "Tesouro Selic")
	assert.Contains(t, body, "Conclusões Práticas")
	assert.Contains(t, body, "&copy; 2024")
}

func TestDashboard_EmptyRange(t *testing.T) {
	h := newTestHandlers(t, nil)
	h.now = func() time.Time { return time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC) }

	body := serve(h.Dashboard, "/?range=1year").Body.String()
	assert.Contains(t, body, "Nenhum dado encontrado")
	assert.Contains(t, body, "Sem dados no período")
}

func TestDashboard_InvalidPage(t *testing.T) {
	h := newTestHandlers(t, nil)

	rr := serve(h.Dashboard, "/?page=x")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCodePage(t *testing.T) {
	h := newTestHandlers(t, nil)

	rr := serve(h.Code, "/code")
	require.Equal(t, http.StatusOK, rr.Code)

	body := rr.Body.String()
	assert.Contains(t, body, "Copiar código")
	assert.Contains(t, body, "import pandas as pd")
	assert.Contains(t, body, "-&gt; pd.DataFrame", "code is HTML-escaped")
	assert.Contains(t, body, "Acesse o Google Colab")
}
