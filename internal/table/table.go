// Package table implements the searchable, paginated data table and its CSV export.
package table

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sawpanic/selicinsights/internal/series"
)

// DefaultPerPage is the number of rows shown per table page.
const DefaultPerPage = 10

// EmptyMessage is shown when no row matches the search.
const EmptyMessage = "Nenhum dado encontrado"

// ErrInvalidPage is returned for page numbers below 1.
var ErrInvalidPage = errors.New("page must be a positive integer")

// Row is an observation formatted for display.
type Row struct {
	Date       string `json:"date"`
	SelicAnual string `json:"selic_anual"`
	IPCA       string `json:"ipca"`
	PIB        string `json:"pib"`
	Cambio     string `json:"cambio"`
}

// FormatRow renders o the way the table and CSV show it.
func FormatRow(o series.Observation) Row {
	return Row{
		Date:       series.FormatDateBR(o.Date),
		SelicAnual: series.FormatFixed2(o.SelicAnual),
		IPCA:       series.FormatFixed2(o.IPCA),
		PIB:        series.FormatFixed2(o.PIB),
		Cambio:     series.FormatFixed2(o.Cambio),
	}
}

// Search returns the observations matching term, newest first. Matching is a
// case-insensitive substring test against the dd/mm/yyyy date and the plain
// decimal form of each value.
func Search(ds series.Dataset, term string) series.Dataset {
	needle := strings.ToLower(term)
	out := make(series.Dataset, 0, len(ds))
	for _, o := range ds {
		if matches(o, needle) {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

func matches(o series.Observation, needle string) bool {
	if strings.Contains(series.FormatDateBR(o.Date), needle) {
		return true
	}
	for _, f := range series.Fields {
		if strings.Contains(series.FormatPlain(o.Value(f)), needle) {
			return true
		}
	}
	return false
}

// Page is one page of the table.
type Page struct {
	Rows       []Row  `json:"rows"`
	Page       int    `json:"page"`
	PerPage    int    `json:"per_page"`
	Total      int    `json:"total"`
	TotalPages int    `json:"total_pages"`
	HasPrev    bool   `json:"has_prev"`
	HasNext    bool   `json:"has_next"`
	From       int    `json:"from"`
	To         int    `json:"to"`
	Summary    string `json:"summary,omitempty"`
}

// Paginate slices ds into pages of perPage rows. Requests past the last page
// are clamped to it; perPage <= 0 selects DefaultPerPage.
func Paginate(ds series.Dataset, page, perPage int) (Page, error) {
	if page < 1 {
		return Page{}, fmt.Errorf("%w: %d", ErrInvalidPage, page)
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}

	total := len(ds)
	totalPages := (total + perPage - 1) / perPage
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}
	if totalPages == 0 {
		page = 1
	}

	start := (page - 1) * perPage
	end := start + perPage
	if end > total {
		end = total
	}

	p := Page{
		Rows:       make([]Row, 0, end-start),
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
	}
	for _, o := range ds[start:end] {
		p.Rows = append(p.Rows, FormatRow(o))
	}
	if total > 0 {
		p.From, p.To = start+1, end
	}

	switch {
	case total == 0:
		p.Summary = EmptyMessage
	case totalPages > 1:
		p.Summary = fmt.Sprintf("Mostrando %d a %d de %d registros", p.From, p.To, total)
	}
	return p, nil
}
