package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/prospectar/leadscan/internal/model"
)

// Pool abstracts the pgx pool so tests can substitute pgxmock.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS leads (
	id                BIGSERIAL PRIMARY KEY,
	name              TEXT NOT NULL,
	address           TEXT NOT NULL DEFAULT '',
	city              TEXT NOT NULL DEFAULT '',
	province          TEXT NOT NULL DEFAULT '',
	phone             TEXT NOT NULL DEFAULT '',
	website           TEXT NOT NULL DEFAULT '',
	gmb_url           TEXT NOT NULL DEFAULT '',
	place_id          TEXT UNIQUE,
	rating            DOUBLE PRECISION NOT NULL DEFAULT 0,
	reviews_count     INTEGER NOT NULL DEFAULT 0,
	photos_count      INTEGER NOT NULL DEFAULT 0,
	email             TEXT NOT NULL DEFAULT '',
	whatsapp          TEXT NOT NULL DEFAULT '',
	opportunity_score INTEGER NOT NULL DEFAULT 100,
	is_analyzed       BOOLEAN NOT NULL DEFAULT FALSE,
	is_exported       BOOLEAN NOT NULL DEFAULT FALSE,
	crm_contact_id    TEXT NOT NULL DEFAULT '',
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	analyzed_at       TIMESTAMPTZ,
	exported_at       TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS tech_stacks (
	lead_id     BIGINT PRIMARY KEY REFERENCES leads(id) ON DELETE CASCADE,
	data        JSONB NOT NULL,
	analyzed_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS scrape_jobs (
	id            TEXT PRIMARY KEY,
	keyword       TEXT NOT NULL,
	city          TEXT NOT NULL,
	province      TEXT NOT NULL DEFAULT '',
	status        TEXT NOT NULL DEFAULT 'pending',
	leads_found   INTEGER NOT NULL DEFAULT 0,
	error_message TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	started_at    TIMESTAMPTZ,
	completed_at  TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_leads_score ON leads(opportunity_score);
CREATE INDEX IF NOT EXISTS idx_leads_city ON leads(city);
CREATE INDEX IF NOT EXISTS idx_leads_analyzed ON leads(is_analyzed);
CREATE INDEX IF NOT EXISTS idx_jobs_status ON scrape_jobs(status);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) UpsertLead(ctx context.Context, lead *model.Lead) (int64, bool, error) {
	if lead.PlaceID != "" {
		var id int64
		err := s.pool.QueryRow(ctx,
			`SELECT id FROM leads WHERE place_id = $1`, lead.PlaceID,
		).Scan(&id)
		if err == nil {
			return id, false, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return 0, false, eris.Wrap(err, "postgres: lookup lead")
		}
	}

	now := time.Now().UTC()
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO leads (name, address, city, province, phone, website, gmb_url, place_id,
			rating, reviews_count, photos_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`,
		lead.Name, lead.Address, lead.City, lead.Province, lead.Phone, lead.Website,
		lead.GMBURL, nullIfEmpty(lead.PlaceID), lead.Rating, lead.Reviews, lead.Photos, now, now,
	).Scan(&id)
	if err != nil {
		return 0, false, eris.Wrap(err, "postgres: insert lead")
	}
	return id, true, nil
}

func scanPgLead(row pgx.Row) (*model.Lead, error) {
	var lead model.Lead
	var placeID *string
	var analyzedAt, exportedAt *time.Time
	err := row.Scan(
		&lead.ID, &lead.Name, &lead.Address, &lead.City, &lead.Province,
		&lead.Phone, &lead.Website, &lead.GMBURL, &placeID,
		&lead.Rating, &lead.Reviews, &lead.Photos, &lead.Email, &lead.WhatsApp,
		&lead.OpportunityScore, &lead.IsAnalyzed, &lead.IsExported, &lead.CRMContactID,
		&lead.CreatedAt, &lead.UpdatedAt, &analyzedAt, &exportedAt,
	)
	if err != nil {
		return nil, err
	}
	if placeID != nil {
		lead.PlaceID = *placeID
	}
	lead.AnalyzedAt = analyzedAt
	lead.ExportedAt = exportedAt
	return &lead, nil
}

const pgLeadColumns = `id, name, address, city, province, phone, website, gmb_url,
	place_id, rating, reviews_count, photos_count, email, whatsapp,
	opportunity_score, is_analyzed, is_exported, crm_contact_id,
	created_at, updated_at, analyzed_at, exported_at`

func (s *PostgresStore) GetLead(ctx context.Context, id int64) (*model.Lead, error) {
	lead, err := scanPgLead(s.pool.QueryRow(ctx,
		`SELECT `+pgLeadColumns+` FROM leads WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Errorf("postgres: lead %d not found", id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get lead")
	}

	var data []byte
	err = s.pool.QueryRow(ctx,
		`SELECT data FROM tech_stacks WHERE lead_id = $1`, id,
	).Scan(&data)
	if err == nil {
		var stack model.TechStack
		if jerr := json.Unmarshal(data, &stack); jerr == nil {
			lead.TechStack = &stack
		}
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrap(err, "postgres: get tech stack")
	}

	return lead, nil
}

// buildPgLeadWhere renders the filter as a WHERE clause with $n args.
func buildPgLeadWhere(filter model.LeadFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, vals ...any) {
		for _, v := range vals {
			args = append(args, v)
			cond = strings.Replace(cond, "?", fmt.Sprintf("$%d", len(args)), 1)
		}
		conds = append(conds, cond)
	}

	if filter.City != "" {
		add("city = ?", filter.City)
	}
	if filter.Province != "" {
		add("province = ?", filter.Province)
	}
	if filter.MinScore != nil {
		add("opportunity_score >= ?", *filter.MinScore)
	}
	if filter.MaxScore != nil {
		add("opportunity_score <= ?", *filter.MaxScore)
	}
	if filter.IsAnalyzed != nil {
		add("is_analyzed = ?", *filter.IsAnalyzed)
	}
	if filter.IsExported != nil {
		add("is_exported = ?", *filter.IsExported)
	}
	if filter.HasWebsite != nil {
		if *filter.HasWebsite {
			conds = append(conds, "website != ''")
		} else {
			conds = append(conds, "website = ''")
		}
	}
	if filter.HasEmail != nil {
		if *filter.HasEmail {
			conds = append(conds, "email != ''")
		} else {
			conds = append(conds, "email = ''")
		}
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		add("(name ILIKE ? OR address ILIKE ? OR email ILIKE ?)", like, like, like)
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (s *PostgresStore) ListLeads(ctx context.Context, filter model.LeadFilter) ([]model.Lead, int, error) {
	where, args := buildPgLeadWhere(filter)

	var total int
	if err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM leads`+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, eris.Wrap(err, "postgres: count leads")
	}

	order := " ORDER BY " + sortColumn(filter.SortBy)
	if filter.SortDesc {
		order += " DESC"
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT ` + pgLeadColumns + ` FROM leads` + where + order +
		fmt.Sprintf(" LIMIT %d OFFSET %d", limit, filter.Offset)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, eris.Wrap(err, "postgres: list leads")
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		lead, err := scanPgLead(rows)
		if err != nil {
			return nil, 0, eris.Wrap(err, "postgres: scan lead")
		}
		leads = append(leads, *lead)
	}
	return leads, total, eris.Wrap(rows.Err(), "postgres: iterate leads")
}

func (s *PostgresStore) ListUnanalyzed(ctx context.Context, limit int) ([]model.Lead, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+pgLeadColumns+` FROM leads
		WHERE is_analyzed = FALSE AND website != ''
		ORDER BY created_at LIMIT $1`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list unanalyzed")
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		lead, err := scanPgLead(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan lead")
		}
		leads = append(leads, *lead)
	}
	return leads, eris.Wrap(rows.Err(), "postgres: iterate leads")
}

func (s *PostgresStore) SaveAnalysis(ctx context.Context, leadID int64, stack *model.TechStack, info *model.ContactInfo, score int) error {
	data, err := json.Marshal(stack)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal tech stack")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`INSERT INTO tech_stacks (lead_id, data, analyzed_at) VALUES ($1, $2, $3)
		ON CONFLICT (lead_id) DO UPDATE SET data = EXCLUDED.data, analyzed_at = EXCLUDED.analyzed_at`,
		leadID, data, stack.AnalyzedAt,
	); err != nil {
		return eris.Wrap(err, "postgres: save tech stack")
	}

	email, whatsapp := "", ""
	if info != nil {
		email = info.PrimaryEmail
		whatsapp = info.WhatsApp
	}
	if _, err := tx.Exec(ctx,
		`UPDATE leads SET opportunity_score = $1, is_analyzed = TRUE, analyzed_at = $2,
			email = CASE WHEN $3 != '' THEN $3 ELSE email END,
			whatsapp = CASE WHEN $4 != '' THEN $4 ELSE whatsapp END,
			updated_at = $5
		WHERE id = $6`,
		score, stack.AnalyzedAt, email, whatsapp, time.Now().UTC(), leadID,
	); err != nil {
		return eris.Wrap(err, "postgres: update lead analysis")
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit analysis")
}

func (s *PostgresStore) MarkExported(ctx context.Context, leadID int64, crmContactID string) error {
	now := time.Now().UTC()
	_, err := s.pool.Exec(ctx,
		`UPDATE leads SET is_exported = TRUE, crm_contact_id = $1, exported_at = $2, updated_at = $3 WHERE id = $4`,
		crmContactID, now, now, leadID)
	return eris.Wrap(err, "postgres: mark exported")
}

func (s *PostgresStore) DeleteLead(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return eris.Wrap(err, "postgres: delete lead")
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: lead %d not found", id)
	}
	return nil
}

func (s *PostgresStore) CreateJob(ctx context.Context, job *model.ScrapeJob) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO scrape_jobs (id, keyword, city, province, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		job.ID, job.Keyword, job.City, job.Province, job.Status, job.CreatedAt)
	return eris.Wrap(err, "postgres: insert job")
}

func (s *PostgresStore) UpdateJob(ctx context.Context, job *model.ScrapeJob) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE scrape_jobs SET keyword = $1, status = $2, leads_found = $3, error_message = $4,
			started_at = $5, completed_at = $6 WHERE id = $7`,
		job.Keyword, job.Status, job.LeadsFound, job.Error,
		job.StartedAt, job.CompletedAt, job.ID)
	return eris.Wrap(err, "postgres: update job")
}

func (s *PostgresStore) GetJob(ctx context.Context, id string) (*model.ScrapeJob, error) {
	var job model.ScrapeJob
	err := s.pool.QueryRow(ctx,
		`SELECT id, keyword, city, province, status, leads_found, error_message,
			created_at, started_at, completed_at
		FROM scrape_jobs WHERE id = $1`, id,
	).Scan(&job.ID, &job.Keyword, &job.City, &job.Province, &job.Status,
		&job.LeadsFound, &job.Error, &job.CreatedAt, &job.StartedAt, &job.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Errorf("postgres: job %s not found", id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get job")
	}
	return &job, nil
}

func (s *PostgresStore) ListJobs(ctx context.Context, limit int) ([]model.ScrapeJob, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, keyword, city, province, status, leads_found, error_message,
			created_at, started_at, completed_at
		FROM scrape_jobs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list jobs")
	}
	defer rows.Close()

	var jobs []model.ScrapeJob
	for rows.Next() {
		var job model.ScrapeJob
		if err := rows.Scan(&job.ID, &job.Keyword, &job.City, &job.Province, &job.Status,
			&job.LeadsFound, &job.Error, &job.CreatedAt, &job.StartedAt, &job.CompletedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan job")
		}
		jobs = append(jobs, job)
	}
	return jobs, eris.Wrap(rows.Err(), "postgres: iterate jobs")
}

func (s *PostgresStore) Stats(ctx context.Context) (*model.Stats, error) {
	stats := &model.Stats{
		LeadsByCity:  map[string]int{},
		LeadsByRange: map[string]int{},
	}

	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*),
			COUNT(*) FILTER (WHERE is_analyzed),
			COUNT(*) FILTER (WHERE is_exported),
			COALESCE(AVG(opportunity_score), 0)
		FROM leads`,
	).Scan(&stats.TotalLeads, &stats.AnalyzedLeads, &stats.ExportedLeads, &stats.AvgScore)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: stats totals")
	}

	rows, err := s.pool.Query(ctx,
		`SELECT city, COUNT(*) FROM leads GROUP BY city ORDER BY COUNT(*) DESC`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: stats by city")
	}
	defer rows.Close()
	for rows.Next() {
		var city string
		var count int
		if err := rows.Scan(&city, &count); err != nil {
			return nil, eris.Wrap(err, "postgres: scan city stat")
		}
		if city == "" {
			city = "Unknown"
		}
		stats.LeadsByCity[city] = count
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate city stats")
	}

	rangeRows, err := s.pool.Query(ctx,
		`SELECT CASE
			WHEN opportunity_score >= 80 THEN '80-100 (Hot)'
			WHEN opportunity_score >= 60 THEN '60-79 (Warm)'
			WHEN opportunity_score >= 40 THEN '40-59 (Medium)'
			WHEN opportunity_score >= 20 THEN '20-39 (Cool)'
			ELSE '0-19 (Cold)'
		END, COUNT(*)
		FROM leads GROUP BY 1`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: stats by range")
	}
	defer rangeRows.Close()
	for rangeRows.Next() {
		var label string
		var count int
		if err := rangeRows.Scan(&label, &count); err != nil {
			return nil, eris.Wrap(err, "postgres: scan range stat")
		}
		stats.LeadsByRange[label] = count
	}
	return stats, eris.Wrap(rangeRows.Err(), "postgres: iterate range stats")
}
