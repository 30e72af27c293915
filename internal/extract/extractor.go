package extract

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"regexp"

	"go-sales-cockpit/internal/model"
)

// funnelQuery produces one row per (dealer, salesperson) at the most granular
// level. Two independent date axes are bound as parameters: leads count toward
// lead-level metrics only when their registration date falls in the window,
// while presence/test-drive/sale activities are filtered by the activity's own
// date, regardless of the parent lead's registration date.
//
// The base table is prospector, LEFT JOINed against the two grouped
// sub-aggregations, so a salesperson with zero leads still appears with every
// metric coerced to 0.
//
// %[1]s is the dealer master database, %[2]s the event database. Both are
// validated against the registry allow-list before substitution; the date
// bounds are bound parameters (registration axis first, activity axis second).
const funnelQuery = `
SELECT
    d.rid,
    d.sid,
    d.grupo,
    d.marca,
    d.nome AS pdv,
    p.id   AS prospector_id,
    p.nome_comercial,
    1 AS qtd_vendedores,
    COALESCE(ld.qtd_leads, 0)                     AS qtd_leads,
    COALESCE(ld.leads_visualizado, 0)             AS leads_visualizado,
    COALESCE(ld.convite_enviado, 0)               AS convite_enviado,
    COALESCE(ld.convite_pendente_confirmacao, 0)  AS convite_pendente_confirmacao,
    COALESCE(ld.convite_declinado_confirmacao, 0) AS convite_declinado_confirmacao,
    COALESCE(ld.convite_confirmado, 0)            AS convite_confirmado,
    COALESCE(atv.presenca, 0)                     AS presenca,
    COALESCE(atv.testdrive, 0)                    AS testdrive,
    COALESCE(atv.venda, 0)                        AS venda
FROM %[2]s.prospector p
JOIN %[2]s.pdv_evento pe ON pe.pdv_id = p.pdv_id
JOIN %[1]s.pdv d         ON d.id = p.pdv_id
LEFT JOIN (
    SELECT
        l.prospector_id,
        COUNT(*) AS qtd_leads,
        SUM(CASE WHEN l.visualizado = 1 THEN 1 ELSE 0 END) AS leads_visualizado,
        SUM(CASE WHEN l.convite_enviado = 1 THEN 1 ELSE 0 END) AS convite_enviado,
        SUM(CASE WHEN l.convite_enviado = 1 AND l.convite_status = 'pendente'  THEN 1 ELSE 0 END) AS convite_pendente_confirmacao,
        SUM(CASE WHEN l.convite_enviado = 1 AND l.convite_status = 'declinado' THEN 1 ELSE 0 END) AS convite_declinado_confirmacao,
        SUM(CASE WHEN l.convite_enviado = 1 AND l.convite_status = 'confirmado' THEN 1 ELSE 0 END) AS convite_confirmado
    FROM %[2]s.leads l
    WHERE DATE(l.data_cadastro) BETWEEN ? AND ?
    GROUP BY l.prospector_id
) ld ON ld.prospector_id = p.id
LEFT JOIN (
    SELECT
        l.prospector_id,
        SUM(CASE WHEN a.tipo = 'presenca'  THEN 1 ELSE 0 END) AS presenca,
        SUM(CASE WHEN a.tipo = 'testdrive' THEN 1 ELSE 0 END) AS testdrive,
        SUM(CASE WHEN a.tipo = 'venda'     THEN 1 ELSE 0 END) AS venda
    FROM %[2]s.atividade a
    JOIN %[2]s.leads l ON l.id = a.lead_id
    WHERE DATE(a.data_atividade) BETWEEN ? AND ?
    GROUP BY l.prospector_id
) atv ON atv.prospector_id = p.id
WHERE p.id > 0 AND p.nome_comercial IS NOT NULL AND TRIM(p.nome_comercial) <> ''
`

// identPattern is the shape of a substitutable database identifier. The
// registry allow-list decides which names are valid; this guards the
// substitution itself.
var identPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Extractor runs the granular funnel query against the relational source.
type Extractor struct {
	db       *sql.DB
	masterDB string
	log      *slog.Logger
}

// New builds an Extractor. masterDB is the dealer master database name.
func New(db *sql.DB, masterDB string, log *slog.Logger) (*Extractor, error) {
	if !identPattern.MatchString(masterDB) {
		return nil, fmt.Errorf("invalid master database identifier %q", masterDB)
	}
	return &Extractor{db: db, masterDB: masterDB, log: log}, nil
}

// Extract returns one FunnelRecord per (dealer, salesperson) for the event
// database and inclusive date window. The connection is scoped to this call
// and released on every path. Zero rows yield ErrEmptyResult.
func (e *Extractor) Extract(ctx context.Context, eventDB string, window model.DateWindow) ([]model.FunnelRecord, error) {
	if !identPattern.MatchString(eventDB) {
		return nil, &QueryError{Err: fmt.Errorf("invalid event database identifier %q", eventDB)}
	}

	conn, err := e.db.Conn(ctx)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}
	defer conn.Close()

	if err := conn.PingContext(ctx); err != nil {
		return nil, &ConnectionError{Err: err}
	}

	query := fmt.Sprintf(funnelQuery, e.masterDB, eventDB)
	rows, err := conn.QueryContext(ctx, query,
		window.StartISO(), window.EndISO(), // registration-date axis
		window.StartISO(), window.EndISO(), // activity-date axis
	)
	if err != nil {
		return nil, &QueryError{Err: err}
	}
	defer rows.Close()

	var records []model.FunnelRecord
	for rows.Next() {
		var r model.FunnelRecord
		if err := rows.Scan(
			&r.Rid, &r.Sid, &r.Grupo, &r.Marca, &r.PDV,
			&r.ProspectorID, &r.NomeComercial,
			&r.QtdVendedores, &r.QtdLeads, &r.LeadsVisualizado,
			&r.ConviteEnviado, &r.ConvitePendenteConfirmacao,
			&r.ConviteDeclinadoConfirmacao, &r.ConviteConfirmado,
			&r.Presenca, &r.Testdrive, &r.Venda,
		); err != nil {
			return nil, &QueryError{Err: err}
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{Err: err}
	}

	if len(records) == 0 {
		return nil, ErrEmptyResult
	}

	e.log.Info("extraction complete",
		slog.String("event_db", eventDB),
		slog.String("start", window.StartISO()),
		slog.String("end", window.EndISO()),
		slog.Int("records", len(records)))
	return records, nil
}
