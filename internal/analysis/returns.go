package analysis

import (
	"sort"

	"github.com/sawpanic/selicinsights/internal/series"
)

// Scenario describes whether the policy rate is above inflation.
type Scenario string

const (
	ScenarioFavorable Scenario = "favorable"
	ScenarioAttention Scenario = "attention"
)

var scenarioMessages = map[Scenario]string{
	ScenarioFavorable: "Cenário Favorável: A taxa SELIC está acima da inflação, proporcionando retornos reais positivos.",
	ScenarioAttention: "Cenário de Atenção: A inflação está acima da taxa SELIC, afetando o retorno real dos investimentos.",
}

// Message is the Portuguese notice shown below the comparison chart.
func (s Scenario) Message() string { return scenarioMessages[s] }

// Investment is one fixed-income product with its estimated annual returns.
type Investment struct {
	Name       string  `json:"name"`
	Return     float64 `json:"return"`
	RealReturn float64 `json:"real_return"`
	Color      string  `json:"color"`
}

// Comparison is the full investment panel for one data window.
type Comparison struct {
	Selic       float64      `json:"selic"`
	Inflation   float64      `json:"inflation"`
	Investments []Investment `json:"investments"`
	Scenario    Scenario     `json:"scenario"`
	Message     string       `json:"message"`
}

const (
	poupancaThreshold = 8.5
	poupancaFloor     = 4.55
	ipcaPlusSpread    = 4.5
)

// CompareInvestments estimates annual returns of common Brazilian fixed-income
// products from the latest observation in ds. Results are ordered by gross
// return, highest first. An empty window is treated as zero rates.
func CompareInvestments(ds series.Dataset) Comparison {
	latest, _ := ds.Latest()
	selic, ipca := latest.SelicAnual, latest.IPCA

	poupanca := poupancaFloor
	if selic > poupancaThreshold {
		poupanca = 0.5 + selic*0.7
	}

	inv := []Investment{
		{Name: "Tesouro Selic", Return: selic * 0.95, Color: "#3b82f6"},
		{Name: "Tesouro IPCA+", Return: ipca + ipcaPlusSpread, Color: "#22c55e"},
		{Name: "Tesouro Prefixado", Return: selic * 0.90, Color: "#eab308"},
		{Name: "Poupança", Return: poupanca, Color: "#f97316"},
		{Name: "CDB", Return: selic * 0.9, Color: "#8b5cf6"},
		{Name: "LCI/LCA", Return: selic * 0.85, Color: "#ec4899"},
	}
	sort.SliceStable(inv, func(i, j int) bool { return inv[i].Return > inv[j].Return })
	for i := range inv {
		inv[i].RealReturn = inv[i].Return - ipca
	}

	scenario := ScenarioFavorable
	if ipca > selic {
		scenario = ScenarioAttention
	}

	return Comparison{
		Selic:       selic,
		Inflation:   ipca,
		Investments: inv,
		Scenario:    scenario,
		Message:     scenario.Message(),
	}
}
