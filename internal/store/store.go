// Package store persists leads, their analyzed tech stacks, and
// discovery jobs. Two backends: SQLite for single-operator use and
// Postgres for shared deployments.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/prospectar/leadscan/internal/config"
	"github.com/prospectar/leadscan/internal/model"
)

// Store defines the persistence interface for the lead pipeline.
type Store interface {
	// Leads
	UpsertLead(ctx context.Context, lead *model.Lead) (int64, bool, error)
	GetLead(ctx context.Context, id int64) (*model.Lead, error)
	ListLeads(ctx context.Context, filter model.LeadFilter) ([]model.Lead, int, error)
	ListUnanalyzed(ctx context.Context, limit int) ([]model.Lead, error)
	// SaveAnalysis replaces the lead's tech stack wholesale and
	// updates its score and contact fields. Re-analysis never merges.
	SaveAnalysis(ctx context.Context, leadID int64, stack *model.TechStack, info *model.ContactInfo, score int) error
	MarkExported(ctx context.Context, leadID int64, crmContactID string) error
	DeleteLead(ctx context.Context, id int64) error

	// Discovery jobs
	CreateJob(ctx context.Context, job *model.ScrapeJob) error
	UpdateJob(ctx context.Context, job *model.ScrapeJob) error
	GetJob(ctx context.Context, id string) (*model.ScrapeJob, error)
	ListJobs(ctx context.Context, limit int) ([]model.ScrapeJob, error)

	// Aggregates
	Stats(ctx context.Context) (*model.Stats, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// New creates a Store for the configured driver.
func New(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "sqlite", "":
		return NewSQLite(cfg.DatabaseURL)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}

// sortColumn whitelists sortable columns; anything else falls back to
// opportunity score.
func sortColumn(f model.SortField) string {
	switch f {
	case model.SortByName, model.SortByCreatedAt, model.SortByRating, model.SortByScore:
		return string(f)
	default:
		return string(model.SortByScore)
	}
}

// scoreRangeLabel buckets a score for the stats breakdown.
func scoreRangeLabel(score int) string {
	switch {
	case score >= 80:
		return "80-100 (Hot)"
	case score >= 60:
		return "60-79 (Warm)"
	case score >= 40:
		return "40-59 (Medium)"
	case score >= 20:
		return "20-39 (Cool)"
	default:
		return "0-19 (Cold)"
	}
}
