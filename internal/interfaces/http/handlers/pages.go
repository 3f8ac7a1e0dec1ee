package handlers

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/sawpanic/selicinsights/internal/analysis"
	"github.com/sawpanic/selicinsights/internal/chart"
	httpContracts "github.com/sawpanic/selicinsights/internal/http"
	"github.com/sawpanic/selicinsights/internal/series"
	"github.com/sawpanic/selicinsights/internal/snippet"
	"github.com/sawpanic/selicinsights/internal/table"
)

//go:embed templates/*.html
var templateFS embed.FS

func parsePages() (*template.Template, error) {
	t, err := template.New("pages").ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse page templates: %w", err)
	}
	return t, nil
}

type rangeOption struct {
	Key      series.Range
	Label    string
	Selected bool
}

type chartView struct {
	Title string
	SVG   template.HTML
}

type barView struct {
	Name       string
	Return     string
	RealReturn string
	Style      template.CSS
}

type pageView struct {
	Tab       string
	Year      int
	Links     []snippet.Link
	Range     series.Range
	Ranges    []rangeOption
	Charts    []chartView
	Fields    []httpContracts.FieldInfo
	Matrix    [][]analysis.Cell
	Query     string
	Table     table.Page
	PrevURL   string
	NextURL   string
	ExportURL string
	Selic     string
	Inflation string
	Bars      []barView
	Scenario  analysis.Scenario
	Message   string
	Snippet   snippet.Snippet
}

// Dashboard handles GET /
func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid_page", err.Error())
		return
	}

	ds, rng := h.window(r)
	query := r.URL.Query().Get("q")
	tp, err := table.Paginate(table.Search(ds, query), page, table.DefaultPerPage)
	if err != nil {
		if errors.Is(err, table.ErrInvalidPage) {
			h.writeError(w, r, http.StatusBadRequest, "invalid_page", err.Error())
			return
		}
		h.writeError(w, r, http.StatusInternalServerError, "table_failed", err.Error())
		return
	}

	view := h.baseView("dashboard", rng)
	view.Matrix = analysis.Correlate(ds).Rows()
	view.Fields = httpContracts.Fields()
	view.Query = query
	view.Table = tp
	view.ExportURL = "/api/export.csv?" + url.Values{"range": {string(rng)}}.Encode()
	if tp.HasPrev {
		view.PrevURL = dashboardURL(rng, query, tp.Page-1)
	}
	if tp.HasNext {
		view.NextURL = dashboardURL(rng, query, tp.Page+1)
	}

	for _, ts := range chart.Dashboard(ds) {
		view.Charts = append(view.Charts, chartView{
			Title: ts.Title,
			SVG:   template.HTML(chart.RenderSVG(ts, chart.DefaultLayout)),
		})
	}

	cmp := analysis.CompareInvestments(ds)
	view.Selic = series.FormatFixed2(cmp.Selic)
	view.Inflation = series.FormatFixed2(cmp.Inflation)
	view.Scenario = cmp.Scenario
	view.Message = cmp.Message
	view.Bars = bars(cmp.Investments)

	h.render(w, "dashboard.html", view)
}

// Code handles GET /code
func (h *Handlers) Code(w http.ResponseWriter, r *http.Request) {
	view := h.baseView("code", series.ParseRange(r.URL.Query().Get("range")))
	view.Snippet = snippet.Get()
	h.render(w, "code.html", view)
}

func (h *Handlers) baseView(tab string, rng series.Range) pageView {
	v := pageView{
		Tab:   tab,
		Year:  h.now().Year(),
		Links: []snippet.Link{snippet.ColabLink, snippet.SGSAPILink},
		Range: rng,
	}
	for _, r := range series.Ranges {
		v.Ranges = append(v.Ranges, rangeOption{Key: r, Label: r.Label(), Selected: r == rng})
	}
	return v
}

func (h *Handlers) render(w http.ResponseWriter, name string, view pageView) {
	var buf bytes.Buffer
	if err := h.pages.ExecuteTemplate(&buf, name, view); err != nil {
		log.Error().Err(err).Str("template", name).Msg("Failed to render page")
		http.Error(w, "template rendering failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func dashboardURL(rng series.Range, query string, page int) string {
	v := url.Values{}
	v.Set("range", string(rng))
	if query != "" {
		v.Set("q", query)
	}
	v.Set("page", strconv.Itoa(page))
	return "/?" + v.Encode()
}

// bars scales each product against the best gross return.
func bars(inv []analysis.Investment) []barView {
	top := 0.0
	for _, i := range inv {
		if i.Return > top {
			top = i.Return
		}
	}
	out := make([]barView, 0, len(inv))
	for _, i := range inv {
		width := 0.0
		if top > 0 && i.Return > 0 {
			width = i.Return / top * 100
		}
		out = append(out, barView{
			Name:       i.Name,
			Return:     series.FormatFixed2(i.Return),
			RealReturn: series.FormatFixed2(i.RealReturn),
			Style:      template.CSS(fmt.Sprintf("width: %.1f%%; background: %s", width, i.Color)),
		})
	}
	return out
}
