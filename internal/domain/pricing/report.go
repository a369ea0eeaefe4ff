package pricing

import (
	"strconv"
	"strings"
	"time"
)

const (
	reportTitle      = "RELATÓRIO DE PREDIÇÃO DE PREÇO"
	reportRuleWidth  = 40
	reportDateLayout = "2006-01-02"
)

// ReportFileName is the download name of a report generated at t.
func ReportFileName(t time.Time) string {
	return "relatorio_preco_casa_" + t.Format(reportDateLayout) + ".txt"
}

// Report renders p as the plain-text report offered for download. Attributes
// are listed in positional order with their contribution, so the listed
// contributions plus the intercept add up to the raw price. Everything shown
// comes from p, whichever model produced it.
func (m Model) Report(p Prediction) string {
	heavy := strings.Repeat("=", reportRuleWidth)
	light := strings.Repeat("-", reportRuleWidth)

	var b strings.Builder
	b.WriteString(reportTitle + "\n")
	b.WriteString(heavy + "\n\n")
	b.WriteString("Preço Recomendado: " + FormatCurrency(p.Price) + "\n\n")
	b.WriteString("Características Analisadas:\n")
	b.WriteString(light + "\n")

	for i, a := range p.Attributes {
		b.WriteString(a.Label + ": " + strconv.FormatFloat(p.Values[i], 'f', -1, 64) + " " + a.Unit + "\n")
		b.WriteString("  └─ Contribuição: " + FormatCurrency(p.Contributions[i]) + "\n")
	}

	b.WriteString("\n" + light + "\n")
	b.WriteString("Intercepto (base): " + FormatCurrency(p.Intercept) + "\n")
	return b.String()
}
