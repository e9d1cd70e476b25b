package model

import "time"

// TechStack is the feature vector produced by analyzing one website.
// Every boolean defaults to false; provider/URL fields are only set
// when their paired boolean is true. HasWebsite=false means the fetch
// failed, not that a reachable host lacks a homepage.
type TechStack struct {
	HasWebsite bool `json:"has_website"`
	HasSSL     bool `json:"has_ssl"`

	HasChatWidget bool   `json:"has_chat_widget"`
	ChatProvider  string `json:"chat_provider,omitempty"`

	HasContactForm    bool `json:"has_contact_form"`
	HasWhatsAppButton bool `json:"has_whatsapp_button"`

	HasFacebook  bool   `json:"has_facebook"`
	FacebookURL  string `json:"facebook_url,omitempty"`
	HasInstagram bool   `json:"has_instagram"`
	InstagramURL string `json:"instagram_url,omitempty"`
	HasLinkedIn  bool   `json:"has_linkedin"`
	LinkedInURL  string `json:"linkedin_url,omitempty"`

	HasGoogleAnalytics  bool `json:"has_google_analytics"`
	HasGoogleTagManager bool `json:"has_google_tag_manager"`
	HasFacebookPixel    bool `json:"has_facebook_pixel"`

	HasCRMForms bool   `json:"has_crm_forms"`
	CRMProvider string `json:"crm_provider,omitempty"`
	HasBlog     bool   `json:"has_blog"`

	// DetectionDetails carries diagnostics, e.g. the transport error
	// message when the fetch failed.
	DetectionDetails map[string]string `json:"detection_details,omitempty"`

	AnalyzedAt time.Time `json:"analyzed_at"`
}

// ContactInfo holds contact identifiers mined from a website.
// Emails and Phones preserve document order; Primary* are the best
// candidates for outreach.
type ContactInfo struct {
	Emails       []string `json:"emails"`
	Phones       []string `json:"phones"`
	WhatsApp     string   `json:"whatsapp,omitempty"`
	PrimaryEmail string   `json:"primary_email,omitempty"`
	PrimaryPhone string   `json:"primary_phone,omitempty"`
}
