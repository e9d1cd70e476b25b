// Package server exposes the lead pipeline over HTTP: lead CRUD and
// analysis, discovery jobs, stats, and CRM export.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/prospectar/leadscan/internal/discovery"
	"github.com/prospectar/leadscan/internal/export"
	"github.com/prospectar/leadscan/internal/model"
	"github.com/prospectar/leadscan/internal/pipeline"
	"github.com/prospectar/leadscan/internal/store"
	"github.com/prospectar/leadscan/pkg/serpapi"
)

// Server holds the wired components behind the HTTP API. Discovery
// and exporter are optional; their routes answer 503 when the
// credentials were not configured.
type Server struct {
	store    store.Store
	pipeline *pipeline.Pipeline
	runner   *discovery.Runner
	exporter *export.Exporter
}

// New creates a Server.
func New(st store.Store, p *pipeline.Pipeline, runner *discovery.Runner, exporter *export.Exporter) *Server {
	return &Server{store: st, pipeline: p, runner: runner, exporter: exporter}
}

// Routes builds the chi router for the API.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/leads", func(r chi.Router) {
			r.Get("/", s.handleListLeads)
			r.Post("/", s.handleCreateLead)
			r.Post("/analyze/batch", s.handleAnalyzeBatch)
			r.Post("/export/ghl", s.handleExportGHL)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetLead)
				r.Delete("/", s.handleDeleteLead)
				r.Post("/analyze", s.handleAnalyzeLead)
			})
		})

		r.Route("/scraping", func(r chi.Router) {
			r.Post("/start", s.handleStartScraping)
			r.Get("/jobs", s.handleListJobs)
			r.Get("/jobs/{id}", s.handleGetJob)
			r.Get("/cities", s.handleListCities)
			r.Get("/keywords", s.handleListKeywords)
		})

		r.Route("/stats", func(r chi.Router) {
			r.Get("/", s.handleStats)
			r.Get("/top-opportunities", s.handleTopOpportunities)
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("response encode failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// leadListResponse is the paginated lead listing envelope.
type leadListResponse struct {
	Leads []model.Lead `json:"leads"`
	Total int          `json:"total"`
	Page  int          `json:"page"`
	Size  int          `json:"page_size"`
}

func (s *Server) handleListLeads(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := model.LeadFilter{
		City:     q.Get("city"),
		Province: q.Get("province"),
		Search:   q.Get("search"),
		SortBy:   model.SortField(q.Get("sort_by")),
		SortDesc: q.Get("sort_desc") != "false",
	}
	if v, err := strconv.Atoi(q.Get("min_score")); err == nil {
		filter.MinScore = &v
	}
	if v, err := strconv.Atoi(q.Get("max_score")); err == nil {
		filter.MaxScore = &v
	}
	for param, dst := range map[string]**bool{
		"is_analyzed": &filter.IsAnalyzed,
		"is_exported": &filter.IsExported,
		"has_website": &filter.HasWebsite,
		"has_email":   &filter.HasEmail,
	} {
		if v, err := strconv.ParseBool(q.Get(param)); err == nil {
			b := v
			*dst = &b
		}
	}

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	size, _ := strconv.Atoi(q.Get("page_size"))
	if size < 1 || size > 100 {
		size = 20
	}
	filter.Limit = size
	filter.Offset = (page - 1) * size

	leads, total, err := s.store.ListLeads(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if leads == nil {
		leads = []model.Lead{}
	}
	writeJSON(w, http.StatusOK, leadListResponse{Leads: leads, Total: total, Page: page, Size: size})
}

func (s *Server) handleCreateLead(w http.ResponseWriter, r *http.Request) {
	var lead model.Lead
	if err := json.NewDecoder(r.Body).Decode(&lead); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if lead.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	id, created, err := s.store.UpsertLead(r.Context(), &lead)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !created {
		writeError(w, http.StatusBadRequest, "Lead with this place_id already exists")
		return
	}

	stored, err := s.store.GetLead(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

func (s *Server) leadFromPath(w http.ResponseWriter, r *http.Request) (*model.Lead, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid lead id")
		return nil, false
	}
	lead, err := s.store.GetLead(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "Lead not found")
		return nil, false
	}
	return lead, true
}

func (s *Server) handleGetLead(w http.ResponseWriter, r *http.Request) {
	lead, ok := s.leadFromPath(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func (s *Server) handleDeleteLead(w http.ResponseWriter, r *http.Request) {
	lead, ok := s.leadFromPath(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteLead(r.Context(), lead.ID); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleAnalyzeLead(w http.ResponseWriter, r *http.Request) {
	lead, ok := s.leadFromPath(w, r)
	if !ok {
		return
	}
	if lead.Website == "" {
		writeError(w, http.StatusBadRequest, "Lead has no website to analyze")
		return
	}

	if _, err := s.pipeline.AnalyzeLead(r.Context(), lead); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	refreshed, err := s.store.GetLead(r.Context(), lead.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, refreshed)
}

func (s *Server) handleAnalyzeBatch(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 100
	}

	// The batch can take minutes; run it detached from the request.
	go func() {
		analyzed, failed, err := s.pipeline.AnalyzeBatch(context.Background(), limit)
		if err != nil {
			zap.L().Error("batch analysis failed", zap.Error(err))
			return
		}
		zap.L().Info("batch analysis finished",
			zap.Int("analyzed", analyzed),
			zap.Int("failed", failed))
	}()

	writeJSON(w, http.StatusAccepted, map[string]any{
		"status": "accepted",
		"limit":  limit,
	})
}

func (s *Server) handleExportGHL(w http.ResponseWriter, r *http.Request) {
	if s.exporter == nil {
		writeError(w, http.StatusServiceUnavailable, "CRM export is not configured")
		return
	}
	exported, failed, err := s.exporter.ExportBatch(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"exported": exported,
		"failed":   failed,
	})
}

func (s *Server) handleStartScraping(w http.ResponseWriter, r *http.Request) {
	if s.runner == nil {
		writeError(w, http.StatusServiceUnavailable, "discovery is not configured")
		return
	}

	var req struct {
		City    string `json:"city"`
		Keyword string `json:"keyword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.City == "" {
		writeError(w, http.StatusBadRequest, "city is required")
		return
	}

	job, err := s.runner.StartJob(r.Context(), req.City, req.Keyword)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	go func() {
		if err := s.runner.Run(context.Background(), job); err != nil {
			zap.L().Error("scrape job failed",
				zap.String("job_id", job.ID),
				zap.Error(err))
		}
	}()

	writeJSON(w, http.StatusAccepted, job)
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	jobs, err := s.store.ListJobs(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if jobs == nil {
		jobs = []model.ScrapeJob{}
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.store.GetJob(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Scraping job not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleListCities(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"cities": serpapi.AvailableCities()})
}

func (s *Server) handleListKeywords(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"keywords": serpapi.RealEstateKeywords})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleTopOpportunities(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 10
	}

	analyzed := true
	leads, _, err := s.store.ListLeads(r.Context(), model.LeadFilter{
		IsAnalyzed: &analyzed,
		SortBy:     model.SortByScore,
		SortDesc:   true,
		Limit:      limit,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if leads == nil {
		leads = []model.Lead{}
	}
	writeJSON(w, http.StatusOK, leads)
}
