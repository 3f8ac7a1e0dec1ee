package table

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/sawpanic/selicinsights/internal/series"
)

const (
	// CSVFilename is the suggested download name for the export.
	CSVFilename = "dados_economicos.csv"
	// CSVContentType is sent with the export.
	CSVContentType = "text/csv;charset=utf-8"
)

// CSVHeader is the first record of every export.
var CSVHeader = []string{"Data", "SELIC (%)", "IPCA (%)", "PIB (%)", "Câmbio"}

// WriteCSV writes ds in its given order with two-decimal values.
func WriteCSV(w io.Writer, ds series.Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, o := range ds {
		r := FormatRow(o)
		if err := cw.Write([]string{r.Date, r.SelicAnual, r.IPCA, r.PIB, r.Cambio}); err != nil {
			return fmt.Errorf("write csv row %s: %w", r.Date, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
