// Package export pushes analyzed leads into the Go High Level CRM,
// tagging each contact with its technology gaps and score category.
package export

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/prospectar/leadscan/internal/model"
	"github.com/prospectar/leadscan/internal/scoring"
	"github.com/prospectar/leadscan/internal/store"
	"github.com/prospectar/leadscan/pkg/gohighlevel"
)

// Exporter syncs leads to the CRM and records the export in the store.
type Exporter struct {
	crm      gohighlevel.Client
	store    store.Store
	minScore int
}

// New creates an Exporter. minScore is the floor for batch exports.
func New(crm gohighlevel.Client, st store.Store, minScore int) *Exporter {
	return &Exporter{crm: crm, store: st, minScore: minScore}
}

// BuildContact turns a lead into a CRM contact payload. Gap tags come
// from the lead's analyzed tech stack; an unanalyzed lead gets only
// the category tag.
func BuildContact(lead *model.Lead) gohighlevel.Contact {
	tags := []string{}
	if lead.TechStack != nil {
		tags = append(tags, scoring.GapSummary(lead.TechStack).GapTags...)
	}
	tags = append(tags, fmt.Sprintf("score-%s", scoring.Categorize(lead.OpportunityScore)))

	email := lead.Email
	phone := lead.Phone
	if phone == "" {
		phone = lead.WhatsApp
	}

	return gohighlevel.Contact{
		Name:    lead.Name,
		Email:   email,
		Phone:   phone,
		Address: lead.Address,
		City:    lead.City,
		State:   lead.Province,
		Website: lead.Website,
		Tags:    tags,
		CustomFields: map[string]string{
			"opportunity_score": strconv.Itoa(lead.OpportunityScore),
			"gmb_url":           lead.GMBURL,
			"rating":            ratingField(lead.Rating),
			"reviews_count":     countField(lead.Reviews),
			"score_category":    string(scoring.Categorize(lead.OpportunityScore)),
		},
	}
}

func ratingField(rating float64) string {
	if rating == 0 {
		return ""
	}
	return strconv.FormatFloat(rating, 'f', -1, 64)
}

func countField(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

// ExportLead pushes one lead to the CRM and marks it exported.
func (e *Exporter) ExportLead(ctx context.Context, lead *model.Lead) (string, error) {
	contactID, err := e.crm.CreateContact(ctx, BuildContact(lead))
	if err != nil {
		return "", eris.Wrapf(err, "export: lead %d", lead.ID)
	}
	if err := e.store.MarkExported(ctx, lead.ID, contactID); err != nil {
		return "", eris.Wrapf(err, "export: mark lead %d", lead.ID)
	}
	zap.L().Info("lead exported",
		zap.Int64("lead_id", lead.ID),
		zap.String("contact_id", contactID),
		zap.Int("score", lead.OpportunityScore))
	return contactID, nil
}

// ExportBatch exports every analyzed, not yet exported lead at or
// above the configured score floor. Individual failures are logged
// and skipped; the counts report what actually happened.
func (e *Exporter) ExportBatch(ctx context.Context) (exported, failed int, err error) {
	analyzed := true
	notExported := false
	leads, _, err := e.store.ListLeads(ctx, model.LeadFilter{
		MinScore:   &e.minScore,
		IsAnalyzed: &analyzed,
		IsExported: &notExported,
		SortBy:     model.SortByScore,
		SortDesc:   true,
		Limit:      1000,
	})
	if err != nil {
		return 0, 0, eris.Wrap(err, "export: list leads")
	}

	for i := range leads {
		if ctx.Err() != nil {
			return exported, failed, eris.Wrap(ctx.Err(), "export: batch cancelled")
		}
		// The listing omits tech stacks; reload for gap tags.
		lead, err := e.store.GetLead(ctx, leads[i].ID)
		if err != nil {
			failed++
			zap.L().Warn("lead reload failed",
				zap.Int64("lead_id", leads[i].ID),
				zap.Error(err))
			continue
		}
		if _, err := e.ExportLead(ctx, lead); err != nil {
			failed++
			zap.L().Warn("lead export failed",
				zap.Int64("lead_id", lead.ID),
				zap.Error(err))
			continue
		}
		exported++
	}
	return exported, failed, nil
}
