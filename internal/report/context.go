// Package report prepares the data an external document renderer consumes:
// the placeholder token map substituted into the DOCX template and the
// attention-point table for the selected view. Rendering itself (DOCX
// assembly, PDF conversion) is outside this system.
package report

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"go-sales-cockpit/internal/model"
	"go-sales-cockpit/internal/pipeline"
	"go-sales-cockpit/internal/registry"
)

// ViewTypes lists the report views, in menu order.
func ViewTypes() []string {
	return []string{"Nacional", "Regional", "Por Setor", "Por Grupo", "Por Marca", "Por PDV"}
}

// viewLevel maps a view type to the aggregation level backing it.
var viewLevel = map[string]string{
	"Nacional":  "nacional",
	"Regional":  "regional",
	"Por Setor": "setor",
	"Por Grupo": "grupo",
	"Por Marca": "marca",
	"Por PDV":   "pdv",
}

// Table is the detail table of the report: one row per item of the category
// under the selected view.
type Table struct {
	Category string         `json:"category"` // column heading, e.g. "Região"
	IDColumn string         `json:"idColumn"`
	Rows     []pipeline.Row `json:"rows"`
}

// ptBR formats numbers the way the rendered document expects: thousands
// grouped with dots, decimals with a comma.
var ptBR = message.NewPrinter(language.BrazilianPortuguese)

// Options returns the filterable items for a view type, e.g. every region id
// for the Regional view.
func Options(view string, datasets []pipeline.Dataset) ([]string, error) {
	levelName, ok := viewLevel[view]
	if !ok || view == "Nacional" {
		return nil, fmt.Errorf("view %q has no specific options", view)
	}
	ds, err := findDataset(datasets, levelName)
	if err != nil {
		return nil, err
	}
	opts := make([]string, 0, len(ds.Rows))
	for _, row := range ds.Rows {
		opts = append(opts, row.Keys[ds.Level.IDColumn])
	}
	return opts, nil
}

// BuildContext computes the placeholder map and detail table for one view.
// filter narrows the view to a specific item; empty means the accumulated
// view, which reads totals from the national level.
func BuildContext(datasets []pipeline.Dataset, ev registry.Event, window model.DateWindow, view, filter string) (map[string]string, Table, error) {
	levelName, ok := viewLevel[view]
	if !ok {
		return nil, Table{}, fmt.Errorf("unknown view type %q", view)
	}

	totals, title, err := selectTotals(datasets, view, levelName, filter)
	if err != nil {
		return nil, Table{}, err
	}

	table, err := selectTable(datasets, view, filter)
	if err != nil {
		return nil, Table{}, err
	}

	enviados := totals.ConviteEnviado
	confirmados := totals.ConviteConfirmado
	declinados := totals.ConviteDeclinadoConfirmacao
	presencas := totals.Presenca
	testdrives := totals.Testdrive
	vendas := totals.Venda

	ctx := map[string]string{
		"{{nome_evento}}":     ev.Name,
		"{{data_inicio}}":     window.StartBR(),
		"{{data_fim}}":        window.EndBR(),
		"{{tipo_visao}}":      title,
		"{{categoria_visao}}": table.Category,

		"{{total_contatos}}":       groupInt(totals.QtdLeads),
		"{{total_nao_vistos}}":     groupInt(totals.QtdLeads - totals.LeadsVisualizado),
		"{{total_enviados}}":       groupInt(enviados),
		"{{total_envio_pendente}}": groupInt(totals.QtdLeads - enviados),
		"{{total_confirmados}}":    groupInt(confirmados),
		"{{total_declinados}}":     groupInt(declinados),
		"{{total_sem_resposta}}":   groupInt(enviados - confirmados - declinados),
		"{{total_vendedores}}":     groupInt(totals.QtdVendedores),
		"{{total_presencas}}":      groupInt(presencas),
		"{{total_testdrives}}":     groupInt(testdrives),
		"{{total_vendas}}":         groupInt(vendas),

		"{{perc_enviados_confirmados}}":  percent(confirmados, enviados),
		"{{perc_confirmados_presencas}}": percent(presencas, confirmados),
		"{{perc_presencas_testdrives}}":  percent(testdrives, presencas),
		"{{perc_presencas_vendas}}":      percent(vendas, presencas),
		"{{perc_testdrives_vendas}}":     percent(vendas, testdrives),
	}
	return ctx, table, nil
}

// selectTotals picks the row whose counts feed the headline metrics, plus the
// report title. Accumulated views read from the national level.
func selectTotals(datasets []pipeline.Dataset, view, levelName, filter string) (model.Counts, string, error) {
	simple := strings.TrimPrefix(view, "Por ")
	if filter == "" {
		nacional, err := findDataset(datasets, "nacional")
		if err != nil {
			return model.Counts{}, "", err
		}
		if len(nacional.Rows) == 0 {
			return model.Counts{}, "", fmt.Errorf("national dataset has no rows")
		}
		title := simple + " (Acumulado)"
		if view == "Nacional" {
			title = "Nacional"
		}
		return nacional.Rows[0].Counts, title, nil
	}

	ds, err := findDataset(datasets, levelName)
	if err != nil {
		return model.Counts{}, "", err
	}
	for _, row := range ds.Rows {
		if row.Keys[ds.Level.IDColumn] == filter {
			return row.Counts, simple + " - " + filter, nil
		}
	}
	return model.Counts{}, "", fmt.Errorf("no data for view %q with filter %q", view, filter)
}

// selectTable picks the detail table rows for the view, mirroring the
// rendered document layout: Nacional drills into regions, Regional into
// sectors, the category views into dealers, and Por PDV into salespeople.
func selectTable(datasets []pipeline.Dataset, view, filter string) (Table, error) {
	switch view {
	case "Nacional":
		ds, err := findDataset(datasets, "regional")
		if err != nil {
			return Table{}, err
		}
		return Table{Category: "Região", IDColumn: "rid", Rows: ds.Rows}, nil

	case "Regional":
		setor, err := findDataset(datasets, "setor")
		if err != nil {
			return Table{}, err
		}
		if filter == "" {
			return Table{Category: "Setor", IDColumn: "sid", Rows: setor.Rows}, nil
		}
		pdv, err := findDataset(datasets, "pdv")
		if err != nil {
			return Table{}, err
		}
		inRegion := map[string]bool{}
		for _, row := range pdv.Rows {
			if row.Keys["rid"] == filter {
				inRegion[row.Keys["sid"]] = true
			}
		}
		var rows []pipeline.Row
		for _, row := range setor.Rows {
			if inRegion[row.Keys["sid"]] {
				rows = append(rows, row)
			}
		}
		return Table{Category: "Setor", IDColumn: "sid", Rows: rows}, nil

	case "Por Setor", "Por Grupo", "Por Marca":
		ds, err := findDataset(datasets, "pdv")
		if err != nil {
			return Table{}, err
		}
		// sid, grupo and marca are context columns on every pdv row.
		col := viewLevel[view]
		if view == "Por Setor" {
			col = "sid"
		}
		rows := ds.Rows
		if filter != "" {
			rows = nil
			for _, row := range ds.Rows {
				if row.Keys[col] == filter {
					rows = append(rows, row)
				}
			}
		}
		return Table{Category: "PDV", IDColumn: "pdv", Rows: rows}, nil

	case "Por PDV":
		ds, err := findDataset(datasets, "vendedor")
		if err != nil {
			return Table{}, err
		}
		rows := ds.Rows
		if filter != "" {
			rows = nil
			for _, row := range ds.Rows {
				if row.Keys["pdv"] == filter {
					rows = append(rows, row)
				}
			}
		}
		return Table{Category: "Vendedor", IDColumn: "nome_comercial", Rows: rows}, nil
	}
	return Table{}, fmt.Errorf("unknown view type %q", view)
}

func findDataset(datasets []pipeline.Dataset, levelName string) (pipeline.Dataset, error) {
	for _, ds := range datasets {
		if ds.Level.Name == levelName {
			return ds, nil
		}
	}
	return pipeline.Dataset{}, fmt.Errorf("dataset for level %q not present", levelName)
}

func groupInt(v int64) string {
	return ptBR.Sprintf("%d", v)
}

func percent(numerator, denominator int64) string {
	return ptBR.Sprintf("%.2f", pipeline.SafeDivision(numerator, denominator)*100)
}
