package series

import "time"

// Range selects how far back the dashboard looks.
type Range string

const (
	RangeOneYear    Range = "1year"
	RangeThreeYears Range = "3years"
	RangeFiveYears  Range = "5years"
	RangeAll        Range = "all"

	DefaultRange = RangeFiveYears
)

// Ranges lists the selectable ranges in menu order.
var Ranges = []Range{RangeOneYear, RangeThreeYears, RangeFiveYears, RangeAll}

var rangeLabels = map[Range]string{
	RangeOneYear:    "Último Ano",
	RangeThreeYears: "Últimos 3 Anos",
	RangeFiveYears:  "Últimos 5 Anos",
	RangeAll:        "Todo o Período",
}

var rangeYears = map[Range]int{
	RangeOneYear:    1,
	RangeThreeYears: 3,
	RangeFiveYears:  5,
}

// ParseRange maps a query value onto a Range. Empty input yields the
// dashboard default; anything unrecognised covers the whole period.
func ParseRange(s string) Range {
	if s == "" {
		return DefaultRange
	}
	r := Range(s)
	if _, ok := rangeLabels[r]; ok {
		return r
	}
	return RangeAll
}

// Label is the Portuguese menu text for r.
func (r Range) Label() string {
	if l, ok := rangeLabels[r]; ok {
		return l
	}
	return rangeLabels[RangeAll]
}

// Cutoff returns now minus the range's years. ok is false for RangeAll.
func (r Range) Cutoff(now time.Time) (time.Time, bool) {
	years, ok := rangeYears[r]
	if !ok {
		return time.Time{}, false
	}
	return now.AddDate(-years, 0, 0), true
}
