// Package discovery finds real-estate businesses on Google Maps and
// loads them into the store as leads, tracked per scrape job.
package discovery

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/prospectar/leadscan/internal/model"
	"github.com/prospectar/leadscan/internal/store"
	"github.com/prospectar/leadscan/pkg/serpapi"
)

// Runner executes scrape jobs against SerpAPI.
type Runner struct {
	search serpapi.Client
	store  store.Store
}

// NewRunner creates a Runner.
func NewRunner(search serpapi.Client, st store.Store) *Runner {
	return &Runner{search: search, store: st}
}

// StartJob records a pending job for a city search. The keyword field
// stores the whole keyword list joined for display; an empty keyword
// means the default keyword set.
func (r *Runner) StartJob(ctx context.Context, city, keyword string) (*model.ScrapeJob, error) {
	job := &model.ScrapeJob{
		ID:        uuid.NewString(),
		Keyword:   keyword,
		City:      city,
		Status:    model.JobStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if cityData, ok := serpapi.LookupCity(city); ok {
		job.Province = cityData.Province
	}
	if err := r.store.CreateJob(ctx, job); err != nil {
		return nil, eris.Wrap(err, "discovery: create job")
	}
	return job, nil
}

// Run executes a job to completion: every keyword is searched, results
// are deduplicated against the store by place ID, and the job row
// tracks progress. The returned error reflects the job outcome.
func (r *Runner) Run(ctx context.Context, job *model.ScrapeJob) error {
	now := time.Now().UTC()
	job.Status = model.JobStatusRunning
	job.StartedAt = &now
	if err := r.store.UpdateJob(ctx, job); err != nil {
		return eris.Wrap(err, "discovery: mark running")
	}

	keywords := serpapi.RealEstateKeywords
	if job.Keyword != "" {
		keywords = []string{job.Keyword}
	}

	results, err := r.search.SearchAllKeywords(ctx, job.City, keywords, 20)
	if err != nil {
		return r.fail(ctx, job, err)
	}

	var inserted int
	for _, biz := range results {
		lead := &model.Lead{
			Name:     biz.Name,
			Address:  biz.Address,
			City:     biz.City,
			Province: biz.Province,
			Phone:    biz.Phone,
			Website:  biz.Website,
			GMBURL:   biz.GMBURL,
			PlaceID:  biz.PlaceID,
			Rating:   biz.Rating,
			Reviews:  biz.Reviews,
			Photos:   biz.Photos,
		}
		_, created, err := r.store.UpsertLead(ctx, lead)
		if err != nil {
			return r.fail(ctx, job, eris.Wrapf(err, "discovery: upsert %q", biz.Name))
		}
		if created {
			inserted++
		}
	}

	done := time.Now().UTC()
	job.Status = model.JobStatusCompleted
	job.LeadsFound = inserted
	job.CompletedAt = &done
	if err := r.store.UpdateJob(ctx, job); err != nil {
		return eris.Wrap(err, "discovery: mark completed")
	}

	zap.L().Info("discovery job completed",
		zap.String("job_id", job.ID),
		zap.String("city", job.City),
		zap.Int("results", len(results)),
		zap.Int("new_leads", inserted))
	return nil
}

// Discover is the one-shot path: create a job, run it, return it.
func (r *Runner) Discover(ctx context.Context, city, keyword string) (*model.ScrapeJob, error) {
	job, err := r.StartJob(ctx, city, keyword)
	if err != nil {
		return nil, err
	}
	if err := r.Run(ctx, job); err != nil {
		return job, err
	}
	return job, nil
}

func (r *Runner) fail(ctx context.Context, job *model.ScrapeJob, cause error) error {
	done := time.Now().UTC()
	job.Status = model.JobStatusFailed
	job.Error = cause.Error()
	job.CompletedAt = &done
	if err := r.store.UpdateJob(ctx, job); err != nil {
		zap.L().Error("failed to record job failure",
			zap.String("job_id", job.ID),
			zap.Error(err))
	}
	return cause
}
