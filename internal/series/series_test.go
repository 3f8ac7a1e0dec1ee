package series

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestSample(t *testing.T) {
	ds := Sample()
	require.Len(t, ds, 26)

	assert.Equal(t, date("2018-01-01"), ds[0].Date)
	assert.Equal(t, 7.00, ds[0].SelicAnual)

	last, ok := ds.Latest()
	require.True(t, ok)
	assert.Equal(t, date("2024-04-01"), last.Date)
	assert.Equal(t, 10.75, last.SelicAnual)
	assert.Equal(t, 3.93, last.IPCA)
	assert.Equal(t, 2.3, last.PIB)
	assert.Equal(t, 5.08, last.Cambio)

	for i := 1; i < len(ds); i++ {
		assert.True(t, ds[i-1].Date.Before(ds[i].Date), "sample must be ascending at %d", i)
	}
}

func TestSampleReturnsCopy(t *testing.T) {
	a := Sample()
	a[0].SelicAnual = 99
	b := Sample()
	assert.Equal(t, 7.00, b[0].SelicAnual)
}

func TestFilter(t *testing.T) {
	ds := Sample()
	now := date("2024-06-15")

	tests := []struct {
		r     Range
		count int
		first string
	}{
		{RangeOneYear, 4, "2023-07-01"},
		{RangeThreeYears, 12, "2021-07-01"},
		{RangeFiveYears, 20, "2019-07-01"},
		{RangeAll, 26, "2018-01-01"},
	}
	for _, tt := range tests {
		t.Run(string(tt.r), func(t *testing.T) {
			got := ds.Filter(tt.r, now)
			require.Len(t, got, tt.count)
			assert.Equal(t, date(tt.first), got[0].Date)
		})
	}
}

func TestFilterCutoffIsInclusive(t *testing.T) {
	got := Sample().Filter(RangeOneYear, date("2024-04-01"))
	require.Len(t, got, 5)
	assert.Equal(t, date("2023-04-01"), got[0].Date)
}

func TestFilterPastEndOfData(t *testing.T) {
	got := Sample().Filter(RangeOneYear, date("2026-10-17"))
	assert.Empty(t, got)
	_, ok := got.Latest()
	assert.False(t, ok)
}

func TestParseRange(t *testing.T) {
	assert.Equal(t, RangeFiveYears, ParseRange(""))
	assert.Equal(t, RangeOneYear, ParseRange("1year"))
	assert.Equal(t, RangeThreeYears, ParseRange("3years"))
	assert.Equal(t, RangeAll, ParseRange("all"))
	assert.Equal(t, RangeAll, ParseRange("10years"))
	assert.Equal(t, "Todo o Período", Range("bogus").Label())
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode(strings.NewReader(""))
	assert.True(t, errors.Is(err, ErrEmptyDataset))

	_, err = Decode(strings.NewReader("observations: []\n"))
	assert.True(t, errors.Is(err, ErrEmptyDataset))

	_, err = Decode(strings.NewReader(`observations:
  - {date: "2018-13-01", selic_anual: 1, ipca: 1, pib: 1, cambio: 1}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid date")
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, Sample()))

	got, err := Decode(&buf)
	require.NoError(t, err)
	if diff := cmp.Diff(Sample(), got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, got.Equal(Sample()))
}

func TestValues(t *testing.T) {
	ds := Sample()[:3]
	assert.Equal(t, []float64{1.32, 1.56, 1.33}, ds.Values(FieldPIB))
	assert.Equal(t, 0.0, ds[0].Value(Field("nope")))
}

func TestFieldMetadata(t *testing.T) {
	assert.Equal(t, "Câmbio", FieldCambio.Label())
	assert.Equal(t, "", FieldCambio.Unit())
	assert.Equal(t, "%", FieldIPCA.Unit())

	f, err := ParseField("pib")
	require.NoError(t, err)
	assert.Equal(t, FieldPIB, f)

	_, err = ParseField("gdp")
	assert.Error(t, err)
}

func TestFormatting(t *testing.T) {
	d := date("2018-04-01")
	assert.Equal(t, "01/04/2018", FormatDateBR(d))
	assert.Equal(t, "4/2018", FormatMonthYear(d))
	assert.Equal(t, "abr. de 2018", FormatMonthBR(d))

	assert.Equal(t, "7.00", FormatFixed2(7))
	assert.Equal(t, "-0.34", FormatFixed2(-0.34))
	assert.Equal(t, "7", FormatPlain(7.00))
	assert.Equal(t, "-10.9", FormatPlain(-10.9))
	assert.Equal(t, "10.06", FormatPlain(10.06))
}
