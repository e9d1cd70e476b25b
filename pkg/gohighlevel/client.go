// Package gohighlevel is a thin client for the Go High Level REST v1
// contacts API, used to push qualified leads into the CRM.
package gohighlevel

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://rest.gohighlevel.com/v1"

// Contact is the payload for creating or updating a CRM contact.
type Contact struct {
	Name         string
	Email        string
	Phone        string
	Address      string
	City         string
	State        string
	Country      string
	Website      string
	Tags         []string
	CustomFields map[string]string
}

// ContactRecord is a contact as returned by the API.
type ContactRecord struct {
	ID    string   `json:"id"`
	Name  string   `json:"contactName"`
	Email string   `json:"email"`
	Phone string   `json:"phone"`
	Tags  []string `json:"tags"`
}

// Client performs Go High Level contact operations.
type Client interface {
	// CreateContact creates a contact and returns its ID. When the
	// contact already exists (409) it falls back to lookup by email or
	// phone, refreshes the tags, and returns the existing ID.
	CreateContact(ctx context.Context, contact Contact) (string, error)
	// TriggerWorkflow enrolls a contact in a workflow. Failures are
	// reported as false, never as an error.
	TriggerWorkflow(ctx context.Context, contactID, workflowID string) bool
	AddTags(ctx context.Context, contactID string, tags []string) bool
	GetContacts(ctx context.Context, limit, skip int) ([]ContactRecord, error)
	DeleteContact(ctx context.Context, contactID string) error
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithWorkflow sets a workflow every created contact is enrolled in.
func WithWorkflow(workflowID string) Option {
	return func(c *httpClient) {
		c.workflowID = workflowID
	}
}

// WithRateLimit sets a per-second limit on outgoing API calls.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		}
	}
}

type httpClient struct {
	apiKey     string
	locationID string
	workflowID string
	baseURL    string
	http       *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a Go High Level client. API key and location ID
// are both required.
func NewClient(apiKey, locationID string, opts ...Option) (Client, error) {
	if apiKey == "" {
		return nil, eris.New("ghl: api key is required")
	}
	if locationID == "" {
		return nil, eris.New("ghl: location id is required")
	}
	c := &httpClient{
		apiKey:     apiKey,
		locationID: locationID,
		baseURL:    defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

func (c *httpClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

func (c *httpClient) do(ctx context.Context, method, path string, query url.Values, body any) (*http.Response, []byte, error) {
	if err := c.wait(ctx); err != nil {
		return nil, nil, eris.Wrap(err, "ghl: rate limit")
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, nil, eris.Wrap(err, "ghl: marshal request")
		}
		reader = bytes.NewReader(data)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, nil, eris.Wrap(err, "ghl: create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, eris.Wrap(err, "ghl: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, eris.Wrap(err, "ghl: read response")
	}
	return resp, data, nil
}

type createContactRequest struct {
	LocationID  string            `json:"locationId"`
	FirstName   string            `json:"firstName"`
	LastName    string            `json:"lastName"`
	Name        string            `json:"name"`
	Email       string            `json:"email,omitempty"`
	Phone       string            `json:"phone,omitempty"`
	Address1    string            `json:"address1,omitempty"`
	City        string            `json:"city,omitempty"`
	State       string            `json:"state,omitempty"`
	Country     string            `json:"country,omitempty"`
	Website     string            `json:"website,omitempty"`
	Tags        []string          `json:"tags"`
	Source      string            `json:"source"`
	CustomField map[string]string `json:"customField,omitempty"`
}

type contactEnvelope struct {
	Contact struct {
		ID string `json:"id"`
	} `json:"contact"`
}

func (c *httpClient) CreateContact(ctx context.Context, contact Contact) (string, error) {
	country := contact.Country
	if country == "" {
		country = "Argentina"
	}
	payload := createContactRequest{
		LocationID:  c.locationID,
		FirstName:   firstName(contact.Name),
		LastName:    lastName(contact.Name),
		Name:        contact.Name,
		Email:       contact.Email,
		Phone:       contact.Phone,
		Address1:    contact.Address,
		City:        contact.City,
		State:       contact.State,
		Country:     country,
		Website:     contact.Website,
		Tags:        contact.Tags,
		Source:      "Lead Scraper",
		CustomField: contact.CustomFields,
	}
	if payload.Tags == nil {
		payload.Tags = []string{}
	}

	resp, body, err := c.do(ctx, http.MethodPost, "/contacts/", nil, payload)
	if err != nil {
		return "", err
	}

	switch resp.StatusCode {
	case http.StatusOK:
		var env contactEnvelope
		if err := json.Unmarshal(body, &env); err != nil {
			return "", eris.Wrap(err, "ghl: decode contact")
		}
		id := env.Contact.ID
		if c.workflowID != "" && id != "" {
			if !c.TriggerWorkflow(ctx, id, c.workflowID) {
				zap.L().Warn("workflow enrollment failed",
					zap.String("contact_id", id),
					zap.String("workflow_id", c.workflowID))
			}
		}
		return id, nil
	case http.StatusConflict:
		return c.updateExisting(ctx, contact)
	default:
		return "", eris.Errorf("ghl: create contact status %d: %s", resp.StatusCode, body)
	}
}

// updateExisting resolves a duplicate by looking the contact up and
// refreshing its tags.
func (c *httpClient) updateExisting(ctx context.Context, contact Contact) (string, error) {
	query := url.Values{}
	query.Set("locationId", c.locationID)
	switch {
	case contact.Email != "":
		query.Set("email", contact.Email)
	case contact.Phone != "":
		query.Set("phone", contact.Phone)
	default:
		return "", eris.New("ghl: duplicate contact has no email or phone to look up")
	}

	resp, body, err := c.do(ctx, http.MethodGet, "/contacts/lookup", query, nil)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", eris.Errorf("ghl: lookup status %d: %s", resp.StatusCode, body)
	}

	var result struct {
		Contacts []ContactRecord `json:"contacts"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", eris.Wrap(err, "ghl: decode lookup")
	}
	if len(result.Contacts) == 0 {
		return "", eris.New("ghl: duplicate contact not found by lookup")
	}

	id := result.Contacts[0].ID
	if len(contact.Tags) > 0 && !c.AddTags(ctx, id, contact.Tags) {
		zap.L().Warn("tag refresh failed", zap.String("contact_id", id))
	}
	return id, nil
}

func (c *httpClient) TriggerWorkflow(ctx context.Context, contactID, workflowID string) bool {
	resp, _, err := c.do(ctx, http.MethodPost, "/contacts/"+contactID+"/workflow/"+workflowID, nil, nil)
	if err != nil {
		return false
	}
	return resp.StatusCode == http.StatusOK
}

func (c *httpClient) AddTags(ctx context.Context, contactID string, tags []string) bool {
	resp, _, err := c.do(ctx, http.MethodPost, "/contacts/"+contactID+"/tags", nil, map[string][]string{"tags": tags})
	if err != nil {
		return false
	}
	return resp.StatusCode == http.StatusOK
}

func (c *httpClient) GetContacts(ctx context.Context, limit, skip int) ([]ContactRecord, error) {
	query := url.Values{}
	query.Set("locationId", c.locationID)
	query.Set("limit", strconv.Itoa(limit))
	query.Set("skip", strconv.Itoa(skip))

	resp, body, err := c.do(ctx, http.MethodGet, "/contacts/", query, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("ghl: get contacts status %d: %s", resp.StatusCode, body)
	}

	var result struct {
		Contacts []ContactRecord `json:"contacts"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "ghl: decode contacts")
	}
	return result.Contacts, nil
}

func (c *httpClient) DeleteContact(ctx context.Context, contactID string) error {
	resp, body, err := c.do(ctx, http.MethodDelete, "/contacts/"+contactID, nil, nil)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("ghl: delete contact status %d: %s", resp.StatusCode, body)
	}
	return nil
}

func firstName(full string) string {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

func lastName(full string) string {
	parts := strings.Fields(full)
	if len(parts) < 2 {
		return ""
	}
	return strings.Join(parts[1:], " ")
}
