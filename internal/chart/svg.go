package chart

import (
	"fmt"
	"html"
	"strings"

	"github.com/sawpanic/selicinsights/internal/series"
)

// Layout controls the SVG canvas.
type Layout struct {
	Width, Height            int
	Top, Right, Bottom, Left int
	YTicks                   int
}

// DefaultLayout mirrors the dashboard card size.
var DefaultLayout = Layout{
	Width: 560, Height: 300,
	Top: 5, Right: 20, Bottom: 50, Left: 50,
	YTicks: 5,
}

// RenderSVG draws ts as a line chart with a dashed grid, axis ticks and dots.
func RenderSVG(ts TimeSeries, l Layout) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" class="chart" role="img" aria-label="%s">`,
		l.Width, l.Height, html.EscapeString(ts.Name))

	plotW := float64(l.Width - l.Left - l.Right)
	plotH := float64(l.Height - l.Top - l.Bottom)
	if len(ts.Points) == 0 || plotW <= 0 || plotH <= 0 {
		fmt.Fprintf(&b, `<text x="%d" y="%d" text-anchor="middle" class="empty">%s</text></svg>`,
			l.Width/2, l.Height/2, "Sem dados no período")
		return b.String()
	}

	lo, hi := ts.Bounds()
	if hi == lo {
		lo, hi = lo-1, hi+1
	}
	x := func(i int) float64 {
		if len(ts.Points) == 1 {
			return float64(l.Left) + plotW/2
		}
		return float64(l.Left) + plotW*float64(i)/float64(len(ts.Points)-1)
	}
	y := func(v float64) float64 {
		return float64(l.Top) + plotH*(hi-v)/(hi-lo)
	}

	ticks := l.YTicks
	if ticks < 2 {
		ticks = 2
	}
	for i := 0; i < ticks; i++ {
		v := lo + (hi-lo)*float64(i)/float64(ticks-1)
		yy := y(v)
		fmt.Fprintf(&b, `<line x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="#e5e7eb" stroke-dasharray="3 3"/>`,
			l.Left, yy, l.Width-l.Right, yy)
		fmt.Fprintf(&b, `<text x="%d" y="%.1f" text-anchor="end" font-size="12">%s%s</text>`,
			l.Left-6, yy+4, series.FormatPlain(roundTick(v)), html.EscapeString(ts.Unit))
	}

	pts := make([]string, len(ts.Points))
	for i, p := range ts.Points {
		pts[i] = fmt.Sprintf("%.1f,%.1f", x(i), y(p.Value))
	}
	fmt.Fprintf(&b, `<polyline fill="none" stroke="%s" stroke-width="2" points="%s"/>`,
		html.EscapeString(ts.Stroke), strings.Join(pts, " "))

	for i, p := range ts.Points {
		fmt.Fprintf(&b, `<circle cx="%.1f" cy="%.1f" r="2" fill="%s"><title>%s: %s</title></circle>`,
			x(i), y(p.Value), html.EscapeString(ts.Stroke), html.EscapeString(p.Tooltip), html.EscapeString(p.Display))
		fmt.Fprintf(&b, `<text x="%.1f" y="%d" font-size="12" text-anchor="end" transform="rotate(-45 %.1f %d)">%s</text>`,
			x(i), l.Height-l.Bottom+16, x(i), l.Height-l.Bottom+16, html.EscapeString(p.Tick))
	}

	b.WriteString(`</svg>`)
	return b.String()
}

func roundTick(v float64) float64 {
	const scale = 100
	if v < 0 {
		return float64(int64(v*scale-0.5)) / scale
	}
	return float64(int64(v*scale+0.5)) / scale
}
