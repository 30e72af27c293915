package report

import (
	"testing"

	"go-sales-cockpit/internal/model"
	"go-sales-cockpit/internal/pipeline"
	"go-sales-cockpit/internal/registry"
)

func fixtureDatasets() []pipeline.Dataset {
	records := []model.FunnelRecord{
		{
			Rid: "1", Sid: "10", Grupo: "G1", Marca: "Vex", PDV: "Alpha Motors",
			ProspectorID: 1, NomeComercial: "Ana",
			Counts: model.Counts{
				QtdVendedores: 1, QtdLeads: 600, LeadsVisualizado: 540,
				ConviteEnviado: 300, ConvitePendenteConfirmacao: 180,
				ConviteDeclinadoConfirmacao: 30, ConviteConfirmado: 90,
				Presenca: 72, Testdrive: 30, Venda: 12,
			},
		},
		{
			Rid: "2", Sid: "20", Grupo: "G2", Marca: "Nordia", PDV: "Beta Motors",
			ProspectorID: 2, NomeComercial: "Bruno",
			Counts: model.Counts{
				QtdVendedores: 1, QtdLeads: 400, LeadsVisualizado: 360,
				ConviteEnviado: 200, ConvitePendenteConfirmacao: 120,
				ConviteDeclinadoConfirmacao: 20, ConviteConfirmado: 60,
				Presenca: 48, Testdrive: 20, Venda: 8,
			},
		},
	}
	levels := append([]pipeline.Level{pipeline.LevelVendedor}, pipeline.Levels...)
	return pipeline.RollupAll(records, levels)
}

func fixtureEvent(t *testing.T) (registry.Event, model.DateWindow) {
	t.Helper()
	window, err := model.ParseWindow("2026-02-01", "2026-02-28")
	if err != nil {
		t.Fatalf("parse window: %v", err)
	}
	return registry.Event{Database: "dexp_liquida", Name: "Liquida Fevereiro"}, window
}

func TestBuildContextNacional(t *testing.T) {
	ev, window := fixtureEvent(t)
	ctx, table, err := BuildContext(fixtureDatasets(), ev, window, "Nacional", "")
	if err != nil {
		t.Fatalf("build context: %v", err)
	}

	want := map[string]string{
		"{{nome_evento}}":        "Liquida Fevereiro",
		"{{data_inicio}}":        "01/02/2026",
		"{{data_fim}}":           "28/02/2026",
		"{{tipo_visao}}":         "Nacional",
		"{{total_contatos}}":     "1.000",
		"{{total_nao_vistos}}":   "100",
		"{{total_enviados}}":     "500",
		"{{total_confirmados}}":  "150",
		"{{total_declinados}}":   "50",
		"{{total_sem_resposta}}": "300",
		"{{total_vendedores}}":   "2",
		"{{total_presencas}}":    "120",
		"{{total_vendas}}":       "20",

		"{{perc_enviados_confirmados}}":  "30,00",
		"{{perc_confirmados_presencas}}": "80,00",
		"{{perc_presencas_vendas}}":      "16,67",
	}
	for key, wantVal := range want {
		if got := ctx[key]; got != wantVal {
			t.Fatalf("%s = %q, want %q", key, got, wantVal)
		}
	}

	if table.Category != "Região" || len(table.Rows) != 2 {
		t.Fatalf("table = %s with %d rows, want Região with 2", table.Category, len(table.Rows))
	}
}

func TestBuildContextRegionalFiltered(t *testing.T) {
	ev, window := fixtureEvent(t)
	ctx, table, err := BuildContext(fixtureDatasets(), ev, window, "Regional", "1")
	if err != nil {
		t.Fatalf("build context: %v", err)
	}

	if ctx["{{tipo_visao}}"] != "Regional - 1" {
		t.Fatalf("tipo_visao = %q", ctx["{{tipo_visao}}"])
	}
	if ctx["{{total_contatos}}"] != "600" {
		t.Fatalf("total_contatos = %q, want region-1 totals", ctx["{{total_contatos}}"])
	}
	if table.Category != "Setor" || len(table.Rows) != 1 {
		t.Fatalf("table = %s with %d rows, want Setor with 1", table.Category, len(table.Rows))
	}
	if table.Rows[0].Keys["sid"] != "10" {
		t.Fatalf("filtered sector = %q, want 10", table.Rows[0].Keys["sid"])
	}
}

func TestBuildContextPDVTable(t *testing.T) {
	ev, window := fixtureEvent(t)
	_, table, err := BuildContext(fixtureDatasets(), ev, window, "Por PDV", "Alpha Motors")
	if err != nil {
		t.Fatalf("build context: %v", err)
	}
	if table.Category != "Vendedor" || len(table.Rows) != 1 {
		t.Fatalf("table = %s with %d rows, want Vendedor with 1", table.Category, len(table.Rows))
	}
	if table.Rows[0].Keys["nome_comercial"] != "Ana" {
		t.Fatalf("salesperson = %q, want Ana", table.Rows[0].Keys["nome_comercial"])
	}
}

func TestBuildContextUnknownFilter(t *testing.T) {
	ev, window := fixtureEvent(t)
	if _, _, err := BuildContext(fixtureDatasets(), ev, window, "Por Marca", "Inexistente"); err == nil {
		t.Fatal("expected error for unknown filter value")
	}
}

func TestBuildContextUnknownView(t *testing.T) {
	ev, window := fixtureEvent(t)
	if _, _, err := BuildContext(fixtureDatasets(), ev, window, "Por Planeta", ""); err == nil {
		t.Fatal("expected error for unknown view type")
	}
}

func TestOptions(t *testing.T) {
	datasets := fixtureDatasets()

	opts, err := Options("Regional", datasets)
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if len(opts) != 2 || opts[0] != "1" || opts[1] != "2" {
		t.Fatalf("regional options = %v, want [1 2]", opts)
	}

	if _, err := Options("Nacional", datasets); err == nil {
		t.Fatal("Nacional must not expose filter options")
	}
}
