package series

import (
	"fmt"
	"strconv"
	"time"
)

var monthsBR = [...]string{"jan.", "fev.", "mar.", "abr.", "mai.", "jun.", "jul.", "ago.", "set.", "out.", "nov.", "dez."}

// FormatDateBR renders t as dd/mm/yyyy.
func FormatDateBR(t time.Time) string {
	return t.UTC().Format("02/01/2006")
}

// FormatMonthYear renders the short axis label M/YYYY.
func FormatMonthYear(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%d/%d", int(t.Month()), t.Year())
}

// FormatMonthBR renders a tooltip label such as "abr. de 2024".
func FormatMonthBR(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%s de %d", monthsBR[t.Month()-1], t.Year())
}

// FormatFixed2 renders v with exactly two decimals.
func FormatFixed2(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// FormatPlain renders v in its shortest exact decimal form, e.g. 7 or -10.9.
func FormatPlain(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
