// Package snippet exposes the read-only analysis notebook code offered for
// execution in Google Colab.
package snippet

import _ "embed"

//go:embed assets/analysis.py
var code string

// Filename is the download name of the snippet.
const Filename = "analise_selic_pib_ipca.py"

// Link is an external resource referenced by the dashboard.
type Link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

var (
	ColabLink  = Link{Label: "Abrir no Google Colab", URL: "https://colab.research.google.com/"}
	SGSAPILink = Link{Label: "SGS API", URL: "https://github.com/bcb-sgs/sgs-api"}
)

var steps = []string{
	"Acesse o Google Colab",
	"Crie um novo notebook",
	"Cole o código acima",
	"Execute as células para realizar a análise",
	"Personalize os parâmetros conforme necessário para sua pesquisa",
}

// Snippet bundles the code with its usage instructions.
type Snippet struct {
	Language string   `json:"language"`
	Filename string   `json:"filename"`
	Code     string   `json:"code"`
	Steps    []string `json:"steps"`
	Links    []Link   `json:"links"`
}

// Code returns the Python source verbatim.
func Code() string { return code }

// Get returns the snippet with instructions and links.
func Get() Snippet {
	return Snippet{
		Language: "python",
		Filename: Filename,
		Code:     code,
		Steps:    append([]string(nil), steps...),
		Links:    []Link{ColabLink, SGSAPILink},
	}
}
