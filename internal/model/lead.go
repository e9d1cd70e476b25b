package model

import "time"

// Lead represents a real-estate business discovered via maps search.
type Lead struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Address  string  `json:"address,omitempty"`
	City     string  `json:"city,omitempty"`
	Province string  `json:"province,omitempty"`
	Phone    string  `json:"phone,omitempty"`
	Website  string  `json:"website,omitempty"`
	GMBURL   string  `json:"gmb_url,omitempty"`
	PlaceID  string  `json:"place_id,omitempty"`
	Rating   float64 `json:"rating,omitempty"`
	Reviews  int     `json:"reviews_count,omitempty"`
	Photos   int     `json:"photos_count,omitempty"`

	// Extracted contact info (best candidates from ContactInfo).
	Email    string `json:"email,omitempty"`
	WhatsApp string `json:"whatsapp,omitempty"`

	OpportunityScore int    `json:"opportunity_score"`
	IsAnalyzed       bool   `json:"is_analyzed"`
	IsExported       bool   `json:"is_exported"`
	CRMContactID     string `json:"crm_contact_id,omitempty"`

	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	AnalyzedAt *time.Time `json:"analyzed_at,omitempty"`
	ExportedAt *time.Time `json:"exported_at,omitempty"`

	TechStack *TechStack `json:"tech_stack,omitempty"`
}

// SortField is a whitelisted lead sort column.
type SortField string

const (
	SortByScore     SortField = "opportunity_score"
	SortByName      SortField = "name"
	SortByCreatedAt SortField = "created_at"
	SortByRating    SortField = "rating"
)

// LeadFilter specifies criteria for listing leads.
type LeadFilter struct {
	City       string    `json:"city,omitempty"`
	Province   string    `json:"province,omitempty"`
	MinScore   *int      `json:"min_score,omitempty"`
	MaxScore   *int      `json:"max_score,omitempty"`
	IsAnalyzed *bool     `json:"is_analyzed,omitempty"`
	IsExported *bool     `json:"is_exported,omitempty"`
	HasWebsite *bool     `json:"has_website,omitempty"`
	HasEmail   *bool     `json:"has_email,omitempty"`
	Search     string    `json:"search,omitempty"`
	SortBy     SortField `json:"sort_by,omitempty"`
	SortDesc   bool      `json:"sort_desc,omitempty"`
	Limit      int       `json:"limit,omitempty"`
	Offset     int       `json:"offset,omitempty"`
}

// Stats holds dashboard aggregates over the lead table.
type Stats struct {
	TotalLeads    int            `json:"total_leads"`
	AnalyzedLeads int            `json:"analyzed_leads"`
	ExportedLeads int            `json:"exported_leads"`
	AvgScore      float64        `json:"avg_opportunity_score"`
	LeadsByCity   map[string]int `json:"leads_by_city"`
	LeadsByRange  map[string]int `json:"leads_by_score_range"`
}
