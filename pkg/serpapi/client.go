package serpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://serpapi.com/search.json"

// Business is one Google Maps local result, normalized.
type Business struct {
	Name     string  `json:"name"`
	Address  string  `json:"address"`
	City     string  `json:"city"`
	Province string  `json:"province"`
	Phone    string  `json:"phone"`
	Website  string  `json:"website"`
	GMBURL   string  `json:"gmb_url"`
	PlaceID  string  `json:"place_id"`
	Rating   float64 `json:"rating"`
	Reviews  int     `json:"reviews_count"`
	Photos   int     `json:"photos_count"`
}

// Client performs Google Maps local searches via SerpAPI.
type Client interface {
	Search(ctx context.Context, keyword, city string, limit int) ([]Business, error)
	SearchAllKeywords(ctx context.Context, city string, keywords []string, limitPerKeyword int) ([]Business, error)
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

// WithRateLimit sets a per-second limit on outgoing API calls.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		}
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a SerpAPI client. The API key is required.
func NewClient(apiKey string, opts ...Option) (Client, error) {
	if apiKey == "" {
		return nil, eris.New("serpapi: api key is required")
	}
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
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

type searchResponse struct {
	LocalResults []localResult `json:"local_results"`
	Error        string        `json:"error"`
}

type localResult struct {
	Title         string  `json:"title"`
	Address       string  `json:"address"`
	Phone         string  `json:"phone"`
	Website       string  `json:"website"`
	PlaceID       string  `json:"place_id"`
	PlaceIDSearch string  `json:"place_id_search"`
	Rating        float64 `json:"rating"`
	Reviews       int     `json:"reviews"`
	PhotosCount   int     `json:"photos_count"`
}

// Search queries Google Maps for one keyword in an Argentine city.
// Known cities anchor the search to their coordinates.
func (c *httpClient) Search(ctx context.Context, keyword, city string, limit int) ([]Business, error) {
	if err := c.wait(ctx); err != nil {
		return nil, eris.Wrap(err, "serpapi: rate limit")
	}

	query := fmt.Sprintf("%s %s Argentina", keyword, city)
	params := url.Values{}
	params.Set("engine", "google_maps")
	params.Set("q", query)
	params.Set("type", "search")
	params.Set("api_key", c.apiKey)
	params.Set("hl", "es")
	params.Set("gl", "ar")

	cityData, known := LookupCity(city)
	if known {
		params.Set("ll", fmt.Sprintf("@%g,%g,14z", cityData.Lat, cityData.Lng))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "serpapi: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "serpapi: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "serpapi: read response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("serpapi: unexpected status %d: %s", resp.StatusCode, body)
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, eris.Wrap(err, "serpapi: decode response")
	}
	if parsed.Error != "" {
		return nil, eris.Errorf("serpapi: api error: %s", parsed.Error)
	}

	results := parsed.LocalResults
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	businesses := make([]Business, 0, len(results))
	for _, r := range results {
		b := Business{
			Name:    r.Title,
			Address: r.Address,
			City:    city,
			Phone:   r.Phone,
			Website: r.Website,
			GMBURL:  r.PlaceIDSearch,
			PlaceID: r.PlaceID,
			Rating:  r.Rating,
			Reviews: r.Reviews,
			Photos:  r.PhotosCount,
		}
		if known {
			b.Province = cityData.Province
		}
		businesses = append(businesses, b)
	}
	return businesses, nil
}

// SearchAllKeywords runs every keyword against a city and dedups the
// combined results by place ID. Per-keyword failures are logged and
// skipped so one bad query does not sink the run.
func (c *httpClient) SearchAllKeywords(ctx context.Context, city string, keywords []string, limitPerKeyword int) ([]Business, error) {
	if len(keywords) == 0 {
		keywords = RealEstateKeywords
	}

	seen := map[string]struct{}{}
	var all []Business
	for _, keyword := range keywords {
		results, err := c.Search(ctx, keyword, city, limitPerKeyword)
		if err != nil {
			if ctx.Err() != nil {
				return all, eris.Wrap(ctx.Err(), "serpapi: search cancelled")
			}
			zap.L().Warn("keyword search failed",
				zap.String("keyword", keyword),
				zap.String("city", city),
				zap.Error(err))
			continue
		}
		for _, b := range results {
			if b.PlaceID == "" {
				continue
			}
			if _, dup := seen[b.PlaceID]; dup {
				continue
			}
			seen[b.PlaceID] = struct{}{}
			all = append(all, b)
		}
	}
	return all, nil
}
