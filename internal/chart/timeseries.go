// Package chart builds the line-chart configuration for the dashboard and
// renders it as inline SVG.
package chart

import (
	"github.com/sawpanic/selicinsights/internal/series"
)

// Point is one plotted observation with its preformatted labels.
type Point struct {
	Date    string  `json:"date"`
	Tick    string  `json:"tick"`
	Tooltip string  `json:"tooltip"`
	Value   float64 `json:"value"`
	Display string  `json:"display"`
}

// TimeSeries is the configuration of one line chart.
type TimeSeries struct {
	Key    series.Field `json:"key"`
	Name   string       `json:"name"`
	Title  string       `json:"title"`
	Stroke string       `json:"stroke"`
	Unit   string       `json:"unit"`
	Points []Point      `json:"points"`
}

type chartDef struct {
	field  series.Field
	title  string
	stroke string
}

// Dashboard charts in display order.
var dashboardCharts = []chartDef{
	{series.FieldSelic, "Taxa SELIC ao longo do tempo", "#2563eb"},
	{series.FieldPIB, "PIB (Variação Percentual)", "#16a34a"},
	{series.FieldIPCA, "IPCA (Inflação)", "#dc2626"},
}

// Build returns the chart for field f over ds.
func Build(ds series.Dataset, f series.Field, title, stroke string) TimeSeries {
	unit := f.Unit()
	ts := TimeSeries{
		Key:    f,
		Name:   f.Label(),
		Title:  title,
		Stroke: stroke,
		Unit:   unit,
		Points: make([]Point, 0, len(ds)),
	}
	for _, o := range ds {
		v := o.Value(f)
		ts.Points = append(ts.Points, Point{
			Date:    o.Date.Format(series.DateLayout),
			Tick:    series.FormatMonthYear(o.Date),
			Tooltip: series.FormatMonthBR(o.Date),
			Value:   v,
			Display: series.FormatFixed2(v) + unit,
		})
	}
	return ts
}

// Dashboard returns the SELIC, PIB and IPCA charts.
func Dashboard(ds series.Dataset) []TimeSeries {
	out := make([]TimeSeries, 0, len(dashboardCharts))
	for _, s := range dashboardCharts {
		out = append(out, Build(ds, s.field, s.title, s.stroke))
	}
	return out
}

// Bounds returns the minimum and maximum plotted value. An empty chart
// reports (0, 0).
func (ts TimeSeries) Bounds() (lo, hi float64) {
	for i, p := range ts.Points {
		if i == 0 || p.Value < lo {
			lo = p.Value
		}
		if i == 0 || p.Value > hi {
			hi = p.Value
		}
	}
	return lo, hi
}
