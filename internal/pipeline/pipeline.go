// Package pipeline runs the full per-lead analysis: fetch the website,
// detect the tech stack, mine contacts, score the opportunity, and
// persist the result.
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/prospectar/leadscan/internal/config"
	"github.com/prospectar/leadscan/internal/contact"
	"github.com/prospectar/leadscan/internal/model"
	"github.com/prospectar/leadscan/internal/scoring"
	"github.com/prospectar/leadscan/internal/store"
	"github.com/prospectar/leadscan/internal/techstack"
	"github.com/prospectar/leadscan/internal/webfetch"
)

// Result is the outcome of analyzing one lead or ad-hoc URL.
type Result struct {
	Stack   *model.TechStack
	Contact *model.ContactInfo
	Score   int
	Summary scoring.Summary
}

// Pipeline wires the analyzer, extractor, and scorer together.
type Pipeline struct {
	analyzer  *techstack.Analyzer
	extractor *contact.Extractor
	weights   config.ScoreWeights
	store     store.Store
	batchSize int
}

// New builds a Pipeline from configuration. The store may be nil for
// ad-hoc analysis that never persists.
func New(cfg *config.Config, st store.Store) *Pipeline {
	fetcher := webfetch.NewClient(
		webfetch.WithTimeout(time.Duration(cfg.Analyzer.TimeoutSecs)*time.Second),
		webfetch.WithUserAgent(cfg.Analyzer.UserAgent),
		webfetch.WithAcceptLanguage(cfg.Analyzer.AcceptLanguage),
	)
	return &Pipeline{
		analyzer:  techstack.NewAnalyzer(fetcher),
		extractor: contact.NewExtractor(fetcher, cfg.Analyzer.MaxContactPages),
		weights:   cfg.Score,
		store:     st,
		batchSize: cfg.Batch.MaxConcurrent,
	}
}

// AnalyzeURL inspects a single website without touching the store.
func (p *Pipeline) AnalyzeURL(ctx context.Context, url string) *Result {
	stack := p.analyzer.Analyze(ctx, url)

	var info *model.ContactInfo
	if stack.HasWebsite {
		info = p.extractor.Extract(ctx, url)
	} else {
		info = &model.ContactInfo{Emails: []string{}, Phones: []string{}}
	}

	score := scoring.Score(stack, p.weights)
	return &Result{
		Stack:   stack,
		Contact: info,
		Score:   score,
		Summary: scoring.GapSummary(stack),
	}
}

// AnalyzeLead analyzes a stored lead's website and persists the result.
func (p *Pipeline) AnalyzeLead(ctx context.Context, lead *model.Lead) (*Result, error) {
	if lead.Website == "" {
		return nil, eris.Errorf("pipeline: lead %d has no website", lead.ID)
	}

	result := p.AnalyzeURL(ctx, lead.Website)
	if err := p.store.SaveAnalysis(ctx, lead.ID, result.Stack, result.Contact, result.Score); err != nil {
		return nil, eris.Wrapf(err, "pipeline: save lead %d", lead.ID)
	}

	zap.L().Info("lead analyzed",
		zap.Int64("lead_id", lead.ID),
		zap.String("website", lead.Website),
		zap.Int("score", result.Score),
		zap.Int("gaps", result.Summary.GapCount))
	return result, nil
}

// AnalyzeBatch fans the unanalyzed backlog out over a bounded worker
// group. Each lead is independent; one failure does not stop the rest.
func (p *Pipeline) AnalyzeBatch(ctx context.Context, limit int) (analyzed, failed int, err error) {
	leads, err := p.store.ListUnanalyzed(ctx, limit)
	if err != nil {
		return 0, 0, eris.Wrap(err, "pipeline: list unanalyzed")
	}
	if len(leads) == 0 {
		return 0, 0, nil
	}

	concurrency := p.batchSize
	if concurrency <= 0 {
		concurrency = 4
	}

	results := make([]error, len(leads))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i := range leads {
		i := i
		g.Go(func() error {
			_, aerr := p.AnalyzeLead(gctx, &leads[i])
			results[i] = aerr
			if aerr != nil {
				zap.L().Warn("lead analysis failed",
					zap.Int64("lead_id", leads[i].ID),
					zap.Error(aerr))
			}
			return nil
		})
	}
	if werr := g.Wait(); werr != nil {
		return 0, 0, eris.Wrap(werr, "pipeline: batch")
	}

	for _, r := range results {
		if r != nil {
			failed++
		} else {
			analyzed++
		}
	}
	return analyzed, failed, nil
}
