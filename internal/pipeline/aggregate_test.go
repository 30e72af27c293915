package pipeline

import (
	"errors"
	"testing"

	"go-sales-cockpit/internal/model"
)

// Two dealers in the same region, three salespeople. The fixture covers every
// grouping axis without being symmetric, so a wrong key shows up in totals.
func sampleRecords() []model.FunnelRecord {
	return []model.FunnelRecord{
		{
			Rid: "1", Sid: "10", Grupo: "G1", Marca: "Vex", PDV: "Alpha Motors",
			ProspectorID: 1, NomeComercial: "Ana",
			Counts: model.Counts{QtdVendedores: 1, QtdLeads: 10, LeadsVisualizado: 8, ConviteEnviado: 6, ConviteConfirmado: 3, Presenca: 2, Venda: 1},
		},
		{
			Rid: "1", Sid: "10", Grupo: "G1", Marca: "Vex", PDV: "Alpha Motors",
			ProspectorID: 2, NomeComercial: "Bruno",
			Counts: model.Counts{QtdVendedores: 1, QtdLeads: 4, LeadsVisualizado: 1, ConviteEnviado: 1},
		},
		{
			Rid: "1", Sid: "20", Grupo: "G2", Marca: "Nordia", PDV: "Beta Motors",
			ProspectorID: 3, NomeComercial: "Clara",
			Counts: model.Counts{QtdVendedores: 1, QtdLeads: 7, LeadsVisualizado: 7, ConviteEnviado: 5, ConviteConfirmado: 4, Presenca: 3, Testdrive: 2, Venda: 2},
		},
	}
}

func findLevel(t *testing.T, datasets []Dataset, name string) Dataset {
	t.Helper()
	for _, ds := range datasets {
		if ds.Level.Name == name {
			return ds
		}
	}
	t.Fatalf("level %q missing from datasets", name)
	return Dataset{}
}

func TestRollupDealerLevel(t *testing.T) {
	ds := Rollup(sampleRecords(), Levels[0])

	if len(ds.Rows) != 2 {
		t.Fatalf("expected 2 dealer rows, got %d", len(ds.Rows))
	}
	alpha := ds.Rows[0]
	if alpha.Keys["pdv"] != "Alpha Motors" {
		t.Fatalf("expected Alpha Motors first, got %q", alpha.Keys["pdv"])
	}
	if alpha.QtdVendedores != 2 {
		t.Fatalf("alpha qtd_vendedores = %d, want 2", alpha.QtdVendedores)
	}
	if alpha.QtdLeads != 14 || alpha.LeadsVisualizado != 9 || alpha.ConviteEnviado != 7 {
		t.Fatalf("alpha lead metrics = %d/%d/%d, want 14/9/7",
			alpha.QtdLeads, alpha.LeadsVisualizado, alpha.ConviteEnviado)
	}
}

func TestRollupNationalSingleRow(t *testing.T) {
	ds := Rollup(sampleRecords(), Levels[5])

	if len(ds.Rows) != 1 {
		t.Fatalf("national level must collapse to one row, got %d", len(ds.Rows))
	}
	total := ds.Rows[0]
	if total.QtdVendedores != 3 || total.QtdLeads != 21 || total.Counts.Venda != 3 {
		t.Fatalf("national totals = %d vendedores, %d leads, %d vendas; want 3/21/3",
			total.QtdVendedores, total.QtdLeads, total.Counts.Venda)
	}
}

func TestRollupVendedorPassthrough(t *testing.T) {
	records := sampleRecords()
	ds := Rollup(records, LevelVendedor)

	if len(ds.Rows) != len(records) {
		t.Fatalf("vendedor level must keep one row per salesperson, got %d of %d",
			len(ds.Rows), len(records))
	}
	for _, row := range ds.Rows {
		if row.QtdVendedores != 1 {
			t.Fatalf("salesperson row %q has qtd_vendedores %d", row.Keys["nome_comercial"], row.QtdVendedores)
		}
	}
}

func TestRollupAllConservation(t *testing.T) {
	records := sampleRecords()
	levels := append([]Level{LevelVendedor}, Levels...)
	datasets := RollupAll(records, levels)

	if len(datasets) != len(levels) {
		t.Fatalf("expected %d datasets, got %d", len(levels), len(datasets))
	}
	if err := VerifyRollup(records, datasets); err != nil {
		t.Fatalf("conservation check failed: %v", err)
	}
}

func TestVerifyRollupDetectsLoss(t *testing.T) {
	records := sampleRecords()
	datasets := RollupAll(records, Levels)

	broken := findLevel(t, datasets, "regional")
	broken.Rows[0].Counts.Venda++

	err := VerifyRollup(records, datasets)
	if err == nil {
		t.Fatal("expected a rollup error after corrupting a level")
	}
	var re *RollupError
	if !errors.As(err, &re) {
		t.Fatalf("expected *RollupError, got %T", err)
	}
	if re.Level != "regional" || re.Metric != "venda" {
		t.Fatalf("rollup error names %s/%s, want regional/venda", re.Level, re.Metric)
	}
}

// Levels are independent functions of the granular base: reordering the input
// must not change any level's output.
func TestRollupOrderIndependence(t *testing.T) {
	records := sampleRecords()
	reversed := make([]model.FunnelRecord, len(records))
	for i, r := range records {
		reversed[len(records)-1-i] = r
	}

	for _, level := range Levels {
		a := Rollup(records, level)
		b := Rollup(reversed, level)
		if len(a.Rows) != len(b.Rows) {
			t.Fatalf("level %s row count differs: %d vs %d", level.Name, len(a.Rows), len(b.Rows))
		}
		for i := range a.Rows {
			if a.Rows[i].Counts != b.Rows[i].Counts {
				t.Fatalf("level %s row %d differs between input orders", level.Name, i)
			}
		}
	}
}
