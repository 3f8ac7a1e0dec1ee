package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/selicinsights/internal/analysis"
	"github.com/sawpanic/selicinsights/internal/series"
	"github.com/sawpanic/selicinsights/internal/snippet"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "SELIC Insights v1.0.0\n", out)
}

func TestExportCmd_Stdout(t *testing.T) {
	out, err := execute(t, "export", "--range=all", "--out=-")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 27)
	assert.Equal(t, "Data,SELIC (%),IPCA (%),PIB (%),Câmbio", lines[0])
	assert.Equal(t, "01/04/2024,10.75,3.93,2.30,5.08", lines[26])
}

func TestExportCmd_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	_, err := execute(t, "export", "--range=all", "--out", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Data,SELIC (%)"))
}

func TestExportCmd_FileSource(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "economic.yaml")
	require.NoError(t, os.WriteFile(data, []byte(`observations:
  - {date: "2024-01-01", selic_anual: 11.75, ipca: 4.51, pib: 2.5, cambio: 4.97}
`), 0o600))

	out, err := execute(t, "export", "--range=all", "--out=-", "--data-file", data)
	require.NoError(t, err)
	assert.Equal(t, "Data,SELIC (%),IPCA (%),PIB (%),Câmbio\n01/01/2024,11.75,4.51,2.50,4.97\n", out)
}

func TestCorrelateCmd(t *testing.T) {
	out, err := execute(t, "correlate", "--range=all")
	require.NoError(t, err)
	assert.Contains(t, out, "Todo o Período, 26 registros")
	assert.Contains(t, out, "Câmbio")
	assert.Equal(t, 4, strings.Count(out, "1.00"))
}

func TestReturnsCmd(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printReturns(&buf, analysis.CompareInvestments(series.Sample())))

	out := buf.String()
	assert.Contains(t, out, "SELIC 10.75% | IPCA 3.93%")
	assert.Contains(t, out, "Tesouro Selic")
	assert.Contains(t, out, "Cenário Favorável")
}

func TestSnippetCmd(t *testing.T) {
	out, err := execute(t, "snippet")
	require.NoError(t, err)
	assert.Equal(t, snippet.Code(), out)
}

func TestSeedCmd_RequiresDatabase(t *testing.T) {
	t.Setenv("PG_ENABLED", "")
	t.Setenv("PG_DSN", "")
	_, err := execute(t, "seed")
	assert.ErrorContains(t, err, "seed requires a database")
}

func TestInvalidConfig(t *testing.T) {
	_, err := execute(t, "correlate", "--source=s3")
	assert.ErrorContains(t, err, "unknown source kind")
}

func TestConfigCmd_MasksCredentials(t *testing.T) {
	out, err := execute(t, "config", "--pg-dsn", "postgres://app:hunter2@db:5432/selic", "--redis-addr", "cache:6379")
	require.NoError(t, err)

	assert.Contains(t, out, "[REDACTED]")
	assert.NotContains(t, out, "hunter2")
	assert.Contains(t, out, "cache:6379")
	assert.Contains(t, out, "kind: embedded")
}
