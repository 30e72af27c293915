package pipeline

import "go-sales-cockpit/internal/model"

// SafeDivision divides two counts, defining division by zero as 0. Every
// funnel ratio goes through here so an empty stage never breaks the chain.
func SafeDivision(numerator, denominator int64) float64 {
	if denominator == 0 {
		return 0
	}
	return float64(numerator) / float64(denominator)
}

// ComputeRates derives the funnel conversion chain for one set of counts.
// No rounding happens here; display formatting is the renderer's concern.
func ComputeRates(c model.Counts) model.Rates {
	return model.Rates{
		Visualizacao: SafeDivision(c.LeadsVisualizado, c.QtdLeads),
		Convite:      SafeDivision(c.ConviteEnviado, c.QtdLeads),
		Confirmacao:  SafeDivision(c.ConviteConfirmado, c.ConviteEnviado),
		Presenca:     SafeDivision(c.Presenca, c.ConviteConfirmado),
		Testdrive:    SafeDivision(c.Testdrive, c.Presenca),
		Venda:        SafeDivision(c.Venda, c.Testdrive),
	}
}

// EnrichRates fills the derived rates on every row of the dataset.
func EnrichRates(ds *Dataset) {
	for i := range ds.Rows {
		ds.Rows[i].Rates = ComputeRates(ds.Rows[i].Counts)
	}
}
