package table

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/selicinsights/internal/series"
)

func TestSearch(t *testing.T) {
	ds := series.Sample()

	tests := []struct {
		name  string
		term  string
		count int
		first string
	}{
		{"empty term keeps all newest first", "", 26, "01/04/2024"},
		{"year in date", "2020", 4, "01/10/2020"},
		{"negative growth", "-10.9", 1, "01/04/2020"},
		{"selic plateau", "13.75", 3, "01/04/2023"},
		{"no match", "xyz", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Search(ds, tt.term)
			require.Len(t, got, tt.count)
			if tt.count > 0 {
				assert.Equal(t, tt.first, series.FormatDateBR(got[0].Date))
			}
		})
	}
}

func TestSearchDoesNotMutateInput(t *testing.T) {
	ds := series.Sample()
	_ = Search(ds, "")
	assert.Equal(t, "01/01/2018", series.FormatDateBR(ds[0].Date))
}

func TestPaginate(t *testing.T) {
	ds := Search(series.Sample(), "")

	p, err := Paginate(ds, 1, DefaultPerPage)
	require.NoError(t, err)
	assert.Len(t, p.Rows, 10)
	assert.Equal(t, 3, p.TotalPages)
	assert.False(t, p.HasPrev)
	assert.True(t, p.HasNext)
	assert.Equal(t, "Mostrando 1 a 10 de 26 registros", p.Summary)
	assert.Equal(t, Row{Date: "01/04/2024", SelicAnual: "10.75", IPCA: "3.93", PIB: "2.30", Cambio: "5.08"}, p.Rows[0])

	p, err = Paginate(ds, 3, 0)
	require.NoError(t, err)
	assert.Len(t, p.Rows, 6)
	assert.True(t, p.HasPrev)
	assert.False(t, p.HasNext)
	assert.Equal(t, "Mostrando 21 a 26 de 26 registros", p.Summary)
}

func TestPaginateClampsPastLastPage(t *testing.T) {
	p, err := Paginate(series.Sample(), 9, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Page)
	assert.Len(t, p.Rows, 6)
}

func TestPaginateSinglePageHasNoSummary(t *testing.T) {
	p, err := Paginate(series.Sample()[:4], 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, p.TotalPages)
	assert.Empty(t, p.Summary)
	assert.Equal(t, 1, p.From)
	assert.Equal(t, 4, p.To)
}

func TestPaginateEmpty(t *testing.T) {
	p, err := Paginate(nil, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, p.Rows)
	assert.Equal(t, 0, p.TotalPages)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, EmptyMessage, p.Summary)
}

func TestPaginateInvalidPage(t *testing.T) {
	_, err := Paginate(series.Sample(), 0, 10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidPage))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, series.Sample()[:2]))

	want := strings.Join([]string{
		"Data,SELIC (%),IPCA (%),PIB (%),Câmbio",
		"01/01/2018,7.00,2.86,1.32,3.24",
		"01/04/2018,6.50,2.76,1.56,3.41",
	}, "\n") + "\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteCSVEmptyStillHasHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "Data,SELIC (%),IPCA (%),PIB (%),Câmbio\n", buf.String())
}
