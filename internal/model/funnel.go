package model

import "strconv"

// MetricColumns is the canonical order of the ten funnel metrics. Every view
// (granular or aggregated) serializes counts in exactly this order.
var MetricColumns = []string{
	"qtd_vendedores",
	"qtd_leads",
	"leads_visualizado",
	"convite_enviado",
	"convite_pendente_confirmacao",
	"convite_declinado_confirmacao",
	"convite_confirmado",
	"presenca",
	"testdrive",
	"venda",
}

// RateColumns is the canonical order of the derived funnel conversion rates.
var RateColumns = []string{
	"visualizacao_rate",
	"convite_rate",
	"confirmacao_rate",
	"presenca_rate",
	"testdrive_rate",
	"venda_rate",
}

// Counts holds the ten funnel metrics for one row at any granularity.
type Counts struct {
	QtdVendedores               int64 `json:"qtd_vendedores"`
	QtdLeads                    int64 `json:"qtd_leads"`
	LeadsVisualizado            int64 `json:"leads_visualizado"`
	ConviteEnviado              int64 `json:"convite_enviado"`
	ConvitePendenteConfirmacao  int64 `json:"convite_pendente_confirmacao"`
	ConviteDeclinadoConfirmacao int64 `json:"convite_declinado_confirmacao"`
	ConviteConfirmado           int64 `json:"convite_confirmado"`
	Presenca                    int64 `json:"presenca"`
	Testdrive                   int64 `json:"testdrive"`
	Venda                       int64 `json:"venda"`
}

// Add sums another set of counts into c. Integer summation only, so roll-ups
// stay exact.
func (c *Counts) Add(o Counts) {
	c.QtdVendedores += o.QtdVendedores
	c.QtdLeads += o.QtdLeads
	c.LeadsVisualizado += o.LeadsVisualizado
	c.ConviteEnviado += o.ConviteEnviado
	c.ConvitePendenteConfirmacao += o.ConvitePendenteConfirmacao
	c.ConviteDeclinadoConfirmacao += o.ConviteDeclinadoConfirmacao
	c.ConviteConfirmado += o.ConviteConfirmado
	c.Presenca += o.Presenca
	c.Testdrive += o.Testdrive
	c.Venda += o.Venda
}

// Metric returns a count by its column name.
func (c Counts) Metric(name string) int64 {
	switch name {
	case "qtd_vendedores":
		return c.QtdVendedores
	case "qtd_leads":
		return c.QtdLeads
	case "leads_visualizado":
		return c.LeadsVisualizado
	case "convite_enviado":
		return c.ConviteEnviado
	case "convite_pendente_confirmacao":
		return c.ConvitePendenteConfirmacao
	case "convite_declinado_confirmacao":
		return c.ConviteDeclinadoConfirmacao
	case "convite_confirmado":
		return c.ConviteConfirmado
	case "presenca":
		return c.Presenca
	case "testdrive":
		return c.Testdrive
	case "venda":
		return c.Venda
	}
	return 0
}

// Rates holds the derived funnel conversion chain for one aggregated row.
// Values are unrounded; display rounding is the renderer's concern.
type Rates struct {
	Visualizacao float64 `json:"visualizacao_rate"`
	Convite      float64 `json:"convite_rate"`
	Confirmacao  float64 `json:"confirmacao_rate"`
	Presenca     float64 `json:"presenca_rate"`
	Testdrive    float64 `json:"testdrive_rate"`
	Venda        float64 `json:"venda_rate"`
}

// Rate returns a derived rate by its column name.
func (r Rates) Rate(name string) float64 {
	switch name {
	case "visualizacao_rate":
		return r.Visualizacao
	case "convite_rate":
		return r.Convite
	case "confirmacao_rate":
		return r.Confirmacao
	case "presenca_rate":
		return r.Presenca
	case "testdrive_rate":
		return r.Testdrive
	case "venda_rate":
		return r.Venda
	}
	return 0
}

// FunnelRecord is one granular extraction row: the funnel of a single
// salesperson at a single dealer. The (pdv, prospector_id) pair is unique in
// the extraction output.
type FunnelRecord struct {
	Rid           string `json:"rid"`
	Sid           string `json:"sid"`
	Grupo         string `json:"grupo"`
	Marca         string `json:"marca"`
	PDV           string `json:"pdv"`
	ProspectorID  int64  `json:"prospector_id"`
	NomeComercial string `json:"nome_comercial"`
	Counts
}

// IdentColumns is the order of identification columns in the granular view.
var IdentColumns = []string{"rid", "sid", "grupo", "marca", "pdv", "prospector_id", "nome_comercial"}

// Ident returns an identification value by its column name.
func (f FunnelRecord) Ident(name string) string {
	switch name {
	case "rid":
		return f.Rid
	case "sid":
		return f.Sid
	case "grupo":
		return f.Grupo
	case "marca":
		return f.Marca
	case "pdv":
		return f.PDV
	case "nome_comercial":
		return f.NomeComercial
	case "prospector_id":
		return strconv.FormatInt(f.ProspectorID, 10)
	}
	return ""
}
