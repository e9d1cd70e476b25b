// Package scoring converts a feature vector into an opportunity
// score and a gap summary. Higher score = more gaps = better sales
// target.
package scoring

import (
	"github.com/prospectar/leadscan/internal/config"
	"github.com/prospectar/leadscan/internal/model"
)

// Category buckets a score for display labeling.
type Category string

const (
	CategoryHot    Category = "hot"
	CategoryWarm   Category = "warm"
	CategoryMedium Category = "medium"
	CategoryCool   Category = "cool"
	CategoryCold   Category = "cold"
)

// Score computes the opportunity score for a feature vector: start at
// 100 and subtract the configured weight for every scored feature the
// site already has. The clamp is a correctness requirement, not a
// nicety: weights are independently configurable and may sum past 100.
func Score(stack *model.TechStack, weights config.ScoreWeights) int {
	score := 100

	if stack.HasWebsite {
		score -= weights.Website
	}
	if stack.HasSSL {
		score -= weights.SSL
	}
	if stack.HasChatWidget {
		score -= weights.Chat
	}
	if stack.HasWhatsAppButton {
		score -= weights.WhatsApp
	}
	if stack.HasContactForm {
		score -= weights.Form
	}
	if stack.HasFacebook {
		score -= weights.Facebook
	}
	if stack.HasInstagram {
		score -= weights.Instagram
	}
	if stack.HasLinkedIn {
		score -= weights.LinkedIn
	}
	if stack.HasGoogleAnalytics {
		score -= weights.Analytics
	}
	if stack.HasFacebookPixel {
		score -= weights.Pixel
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// Entry is one line of the gap summary.
type Entry struct {
	Label string `json:"label"`
	Key   string `json:"key"`
	Tag   string `json:"tag,omitempty"`
}

// Summary is the derived gap view over a feature vector. GapTags is
// the literal ordered tag list handed to the CRM exporter.
type Summary struct {
	Gaps     []Entry  `json:"gaps"`
	Has      []Entry  `json:"has"`
	GapCount int      `json:"gap_count"`
	HasCount int      `json:"has_count"`
	GapTags  []string `json:"gap_tags"`
}

// check is one item in the fixed 12-feature checklist: the ten scored
// features plus CRM and blog, which are informational only.
type check struct {
	key     string
	label   string
	tag     string
	present func(*model.TechStack) bool
}

var checklist = []check{
	{"has_website", "Website propio", "sin-web", func(s *model.TechStack) bool { return s.HasWebsite }},
	{"has_ssl", "Certificado SSL", "sin-ssl", func(s *model.TechStack) bool { return s.HasSSL }},
	{"has_chat_widget", "Chat widget", "sin-chat", func(s *model.TechStack) bool { return s.HasChatWidget }},
	{"has_whatsapp_button", "Botón WhatsApp", "sin-whatsapp", func(s *model.TechStack) bool { return s.HasWhatsAppButton }},
	{"has_contact_form", "Formulario de contacto", "sin-form", func(s *model.TechStack) bool { return s.HasContactForm }},
	{"has_facebook", "Página de Facebook", "sin-facebook", func(s *model.TechStack) bool { return s.HasFacebook }},
	{"has_instagram", "Cuenta Instagram", "sin-instagram", func(s *model.TechStack) bool { return s.HasInstagram }},
	{"has_linkedin", "Perfil LinkedIn", "sin-linkedin", func(s *model.TechStack) bool { return s.HasLinkedIn }},
	{"has_google_analytics", "Google Analytics", "sin-analytics", func(s *model.TechStack) bool { return s.HasGoogleAnalytics }},
	{"has_facebook_pixel", "Facebook Pixel", "sin-pixel", func(s *model.TechStack) bool { return s.HasFacebookPixel }},
	{"has_crm_forms", "CRM integrado", "sin-crm", func(s *model.TechStack) bool { return s.HasCRMForms }},
	{"has_blog", "Blog/Contenido", "sin-blog", func(s *model.TechStack) bool { return s.HasBlog }},
}

// GapSummary walks the fixed checklist and splits it into present and
// missing features. GapCount+HasCount always equals the checklist size.
func GapSummary(stack *model.TechStack) Summary {
	summary := Summary{
		Gaps:    []Entry{},
		Has:     []Entry{},
		GapTags: []string{},
	}

	for _, c := range checklist {
		if c.present(stack) {
			summary.Has = append(summary.Has, Entry{Label: c.label, Key: c.key})
		} else {
			summary.Gaps = append(summary.Gaps, Entry{Label: c.label, Key: c.key, Tag: c.tag})
			summary.GapTags = append(summary.GapTags, c.tag)
		}
	}

	summary.GapCount = len(summary.Gaps)
	summary.HasCount = len(summary.Has)
	return summary
}

// Categorize buckets a score by threshold.
func Categorize(score int) Category {
	switch {
	case score >= 80:
		return CategoryHot
	case score >= 60:
		return CategoryWarm
	case score >= 40:
		return CategoryMedium
	case score >= 20:
		return CategoryCool
	default:
		return CategoryCold
	}
}

// Label returns the display label for a score's category.
func Label(score int) string {
	switch Categorize(score) {
	case CategoryHot:
		return "🔥 Alta Oportunidad"
	case CategoryWarm:
		return "🌡️ Buena Oportunidad"
	case CategoryMedium:
		return "📊 Oportunidad Media"
	case CategoryCool:
		return "❄️ Oportunidad Baja"
	default:
		return "🧊 Ya tienen casi todo"
	}
}
