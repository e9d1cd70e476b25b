package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/prospectar/leadscan/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS leads (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	name              TEXT NOT NULL,
	address           TEXT NOT NULL DEFAULT '',
	city              TEXT NOT NULL DEFAULT '',
	province          TEXT NOT NULL DEFAULT '',
	phone             TEXT NOT NULL DEFAULT '',
	website           TEXT NOT NULL DEFAULT '',
	gmb_url           TEXT NOT NULL DEFAULT '',
	place_id          TEXT,
	rating            REAL NOT NULL DEFAULT 0,
	reviews_count     INTEGER NOT NULL DEFAULT 0,
	photos_count      INTEGER NOT NULL DEFAULT 0,
	email             TEXT NOT NULL DEFAULT '',
	whatsapp          TEXT NOT NULL DEFAULT '',
	opportunity_score INTEGER NOT NULL DEFAULT 100,
	is_analyzed       INTEGER NOT NULL DEFAULT 0,
	is_exported       INTEGER NOT NULL DEFAULT 0,
	crm_contact_id    TEXT NOT NULL DEFAULT '',
	created_at        DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at        DATETIME NOT NULL DEFAULT (datetime('now')),
	analyzed_at       DATETIME,
	exported_at       DATETIME,
	UNIQUE(place_id)
);

CREATE TABLE IF NOT EXISTS tech_stacks (
	lead_id     INTEGER PRIMARY KEY REFERENCES leads(id) ON DELETE CASCADE,
	data        TEXT NOT NULL,
	analyzed_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS scrape_jobs (
	id            TEXT PRIMARY KEY,
	keyword       TEXT NOT NULL,
	city          TEXT NOT NULL,
	province      TEXT NOT NULL DEFAULT '',
	status        TEXT NOT NULL DEFAULT 'pending',
	leads_found   INTEGER NOT NULL DEFAULT 0,
	error_message TEXT NOT NULL DEFAULT '',
	created_at    DATETIME NOT NULL DEFAULT (datetime('now')),
	started_at    DATETIME,
	completed_at  DATETIME
);

CREATE INDEX IF NOT EXISTS idx_leads_score ON leads(opportunity_score);
CREATE INDEX IF NOT EXISTS idx_leads_city ON leads(city);
CREATE INDEX IF NOT EXISTS idx_leads_analyzed ON leads(is_analyzed);
CREATE INDEX IF NOT EXISTS idx_jobs_status ON scrape_jobs(status);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// UpsertLead inserts a lead, deduplicating by place ID. Returns the
// lead's ID and whether a new row was created.
func (s *SQLiteStore) UpsertLead(ctx context.Context, lead *model.Lead) (int64, bool, error) {
	if lead.PlaceID != "" {
		var id int64
		err := s.db.QueryRowContext(ctx,
			`SELECT id FROM leads WHERE place_id = ?`, lead.PlaceID,
		).Scan(&id)
		if err == nil {
			return id, false, nil
		}
		if err != sql.ErrNoRows {
			return 0, false, eris.Wrap(err, "sqlite: lookup lead")
		}
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO leads (name, address, city, province, phone, website, gmb_url, place_id,
			rating, reviews_count, photos_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		lead.Name, lead.Address, lead.City, lead.Province, lead.Phone, lead.Website,
		lead.GMBURL, nullIfEmpty(lead.PlaceID), lead.Rating, lead.Reviews, lead.Photos, now, now,
	)
	if err != nil {
		return 0, false, eris.Wrap(err, "sqlite: insert lead")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, false, eris.Wrap(err, "sqlite: last insert id")
	}
	return id, true, nil
}

const leadColumns = `id, name, address, city, province, phone, website, gmb_url,
	COALESCE(place_id, ''), rating, reviews_count, photos_count, email, whatsapp,
	opportunity_score, is_analyzed, is_exported, crm_contact_id,
	created_at, updated_at, analyzed_at, exported_at`

func scanLead(row interface{ Scan(...any) error }) (*model.Lead, error) {
	var lead model.Lead
	var analyzedAt, exportedAt sql.NullTime
	err := row.Scan(
		&lead.ID, &lead.Name, &lead.Address, &lead.City, &lead.Province,
		&lead.Phone, &lead.Website, &lead.GMBURL, &lead.PlaceID,
		&lead.Rating, &lead.Reviews, &lead.Photos, &lead.Email, &lead.WhatsApp,
		&lead.OpportunityScore, &lead.IsAnalyzed, &lead.IsExported, &lead.CRMContactID,
		&lead.CreatedAt, &lead.UpdatedAt, &analyzedAt, &exportedAt,
	)
	if err != nil {
		return nil, err
	}
	if analyzedAt.Valid {
		lead.AnalyzedAt = &analyzedAt.Time
	}
	if exportedAt.Valid {
		lead.ExportedAt = &exportedAt.Time
	}
	return &lead, nil
}

func (s *SQLiteStore) GetLead(ctx context.Context, id int64) (*model.Lead, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE id = ?`, id)
	lead, err := scanLead(row)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("sqlite: lead %d not found", id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get lead")
	}

	var data string
	err = s.db.QueryRowContext(ctx,
		`SELECT data FROM tech_stacks WHERE lead_id = ?`, id,
	).Scan(&data)
	if err == nil {
		var stack model.TechStack
		if jerr := json.Unmarshal([]byte(data), &stack); jerr == nil {
			lead.TechStack = &stack
		}
	} else if err != sql.ErrNoRows {
		return nil, eris.Wrap(err, "sqlite: get tech stack")
	}

	return lead, nil
}

// buildLeadWhere renders the filter as a WHERE clause with ? args.
func buildLeadWhere(filter model.LeadFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if filter.City != "" {
		conds = append(conds, "city = ?")
		args = append(args, filter.City)
	}
	if filter.Province != "" {
		conds = append(conds, "province = ?")
		args = append(args, filter.Province)
	}
	if filter.MinScore != nil {
		conds = append(conds, "opportunity_score >= ?")
		args = append(args, *filter.MinScore)
	}
	if filter.MaxScore != nil {
		conds = append(conds, "opportunity_score <= ?")
		args = append(args, *filter.MaxScore)
	}
	if filter.IsAnalyzed != nil {
		conds = append(conds, "is_analyzed = ?")
		args = append(args, *filter.IsAnalyzed)
	}
	if filter.IsExported != nil {
		conds = append(conds, "is_exported = ?")
		args = append(args, *filter.IsExported)
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
		conds = append(conds, "(name LIKE ? OR address LIKE ? OR email LIKE ?)")
		like := "%" + filter.Search + "%"
		args = append(args, like, like, like)
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (s *SQLiteStore) ListLeads(ctx context.Context, filter model.LeadFilter) ([]model.Lead, int, error) {
	where, args := buildLeadWhere(filter)

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM leads`+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, eris.Wrap(err, "sqlite: count leads")
	}

	order := " ORDER BY " + sortColumn(filter.SortBy)
	if filter.SortDesc {
		order += " DESC"
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT ` + leadColumns + ` FROM leads` + where + order +
		fmt.Sprintf(" LIMIT %d OFFSET %d", limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, eris.Wrap(err, "sqlite: list leads")
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, 0, eris.Wrap(err, "sqlite: scan lead")
		}
		leads = append(leads, *lead)
	}
	return leads, total, eris.Wrap(rows.Err(), "sqlite: iterate leads")
}

func (s *SQLiteStore) ListUnanalyzed(ctx context.Context, limit int) ([]model.Lead, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+leadColumns+` FROM leads
		WHERE is_analyzed = 0 AND website != ''
		ORDER BY created_at LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list unanalyzed")
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan lead")
		}
		leads = append(leads, *lead)
	}
	return leads, eris.Wrap(rows.Err(), "sqlite: iterate leads")
}

func (s *SQLiteStore) SaveAnalysis(ctx context.Context, leadID int64, stack *model.TechStack, info *model.ContactInfo, score int) error {
	data, err := json.Marshal(stack)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal tech stack")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer func() { _ = tx.Rollback() }()

	// Full replacement: the vector is a value, not a patch target.
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO tech_stacks (lead_id, data, analyzed_at) VALUES (?, ?, ?)
		ON CONFLICT(lead_id) DO UPDATE SET data = excluded.data, analyzed_at = excluded.analyzed_at`,
		leadID, string(data), stack.AnalyzedAt,
	); err != nil {
		return eris.Wrap(err, "sqlite: save tech stack")
	}

	email, whatsapp := "", ""
	if info != nil {
		email = info.PrimaryEmail
		whatsapp = info.WhatsApp
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE leads SET opportunity_score = ?, is_analyzed = 1, analyzed_at = ?,
			email = CASE WHEN ? != '' THEN ? ELSE email END,
			whatsapp = CASE WHEN ? != '' THEN ? ELSE whatsapp END,
			updated_at = ?
		WHERE id = ?`,
		score, stack.AnalyzedAt, email, email, whatsapp, whatsapp, time.Now().UTC(), leadID,
	); err != nil {
		return eris.Wrap(err, "sqlite: update lead analysis")
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit analysis")
}

func (s *SQLiteStore) MarkExported(ctx context.Context, leadID int64, crmContactID string) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`UPDATE leads SET is_exported = 1, crm_contact_id = ?, exported_at = ?, updated_at = ? WHERE id = ?`,
		crmContactID, now, now, leadID)
	return eris.Wrap(err, "sqlite: mark exported")
}

func (s *SQLiteStore) DeleteLead(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM leads WHERE id = ?`, id)
	if err != nil {
		return eris.Wrap(err, "sqlite: delete lead")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return eris.Errorf("sqlite: lead %d not found", id)
	}
	return nil
}

func (s *SQLiteStore) CreateJob(ctx context.Context, job *model.ScrapeJob) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scrape_jobs (id, keyword, city, province, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		job.ID, job.Keyword, job.City, job.Province, job.Status, job.CreatedAt)
	return eris.Wrap(err, "sqlite: insert job")
}

func (s *SQLiteStore) UpdateJob(ctx context.Context, job *model.ScrapeJob) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE scrape_jobs SET keyword = ?, status = ?, leads_found = ?, error_message = ?,
			started_at = ?, completed_at = ? WHERE id = ?`,
		job.Keyword, job.Status, job.LeadsFound, job.Error,
		nullTime(job.StartedAt), nullTime(job.CompletedAt), job.ID)
	return eris.Wrap(err, "sqlite: update job")
}

func (s *SQLiteStore) GetJob(ctx context.Context, id string) (*model.ScrapeJob, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, keyword, city, province, status, leads_found, error_message,
			created_at, started_at, completed_at
		FROM scrape_jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("sqlite: job %s not found", id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get job")
	}
	return job, nil
}

func (s *SQLiteStore) ListJobs(ctx context.Context, limit int) ([]model.ScrapeJob, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, keyword, city, province, status, leads_found, error_message,
			created_at, started_at, completed_at
		FROM scrape_jobs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list jobs")
	}
	defer rows.Close()

	var jobs []model.ScrapeJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan job")
		}
		jobs = append(jobs, *job)
	}
	return jobs, eris.Wrap(rows.Err(), "sqlite: iterate jobs")
}

func scanJob(row interface{ Scan(...any) error }) (*model.ScrapeJob, error) {
	var job model.ScrapeJob
	var startedAt, completedAt sql.NullTime
	err := row.Scan(
		&job.ID, &job.Keyword, &job.City, &job.Province, &job.Status,
		&job.LeadsFound, &job.Error, &job.CreatedAt, &startedAt, &completedAt,
	)
	if err != nil {
		return nil, err
	}
	if startedAt.Valid {
		job.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		job.CompletedAt = &completedAt.Time
	}
	return &job, nil
}

func (s *SQLiteStore) Stats(ctx context.Context) (*model.Stats, error) {
	stats := &model.Stats{
		LeadsByCity:  map[string]int{},
		LeadsByRange: map[string]int{},
	}

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
			COALESCE(SUM(is_analyzed), 0),
			COALESCE(SUM(is_exported), 0),
			COALESCE(AVG(opportunity_score), 0)
		FROM leads`,
	).Scan(&stats.TotalLeads, &stats.AnalyzedLeads, &stats.ExportedLeads, &stats.AvgScore)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: stats totals")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT city, COUNT(*) FROM leads GROUP BY city ORDER BY COUNT(*) DESC`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: stats by city")
	}
	defer rows.Close()
	for rows.Next() {
		var city string
		var count int
		if err := rows.Scan(&city, &count); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan city stat")
		}
		if city == "" {
			city = "Unknown"
		}
		stats.LeadsByCity[city] = count
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate city stats")
	}

	scoreRows, err := s.db.QueryContext(ctx, `SELECT opportunity_score FROM leads`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: stats scores")
	}
	defer scoreRows.Close()
	for scoreRows.Next() {
		var score int
		if err := scoreRows.Scan(&score); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan score")
		}
		stats.LeadsByRange[scoreRangeLabel(score)]++
	}
	return stats, eris.Wrap(scoreRows.Err(), "sqlite: iterate scores")
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
