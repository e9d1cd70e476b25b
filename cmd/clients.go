package main

import (
	"github.com/prospectar/leadscan/internal/export"
	"github.com/prospectar/leadscan/internal/store"
	"github.com/prospectar/leadscan/pkg/gohighlevel"
	"github.com/prospectar/leadscan/pkg/serpapi"
)

// initSearch builds the SerpAPI client from config. Errors out when
// the key is missing so discovery commands fail fast.
func initSearch() (serpapi.Client, error) {
	opts := []serpapi.Option{
		serpapi.WithRateLimit(cfg.SerpAPI.RatePerSec),
	}
	if cfg.SerpAPI.BaseURL != "" {
		opts = append(opts, serpapi.WithBaseURL(cfg.SerpAPI.BaseURL))
	}
	return serpapi.NewClient(cfg.SerpAPI.Key, opts...)
}

// initExporter builds the CRM exporter from config.
func initExporter(st store.Store) (*export.Exporter, error) {
	opts := []gohighlevel.Option{
		gohighlevel.WithRateLimit(cfg.GoHighLevel.RatePerSec),
	}
	if cfg.GoHighLevel.BaseURL != "" {
		opts = append(opts, gohighlevel.WithBaseURL(cfg.GoHighLevel.BaseURL))
	}
	if cfg.GoHighLevel.WorkflowID != "" {
		opts = append(opts, gohighlevel.WithWorkflow(cfg.GoHighLevel.WorkflowID))
	}
	crm, err := gohighlevel.NewClient(cfg.GoHighLevel.APIKey, cfg.GoHighLevel.LocationID, opts...)
	if err != nil {
		return nil, err
	}
	return export.New(crm, st, cfg.Export.MinScore), nil
}
