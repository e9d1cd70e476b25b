package serpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api key")
}

func TestSearchParsesLocalResults(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		assert.Equal(t, "google_maps", r.URL.Query().Get("engine"))
		assert.Equal(t, "es", r.URL.Query().Get("hl"))
		assert.Equal(t, "ar", r.URL.Query().Get("gl"))
		assert.Equal(t, "@-32.9442,-60.6505,14z", r.URL.Query().Get("ll"))
		fmt.Fprint(w, `{"local_results":[
			{"title":"Inmobiliaria Norte","address":"Calle 1","phone":"+54 341 1234567",
			 "website":"https://norte.example.com","place_id":"p1","place_id_search":"https://maps.example/p1",
			 "rating":4.5,"reviews":120,"photos_count":8},
			{"title":"Sin Web SRL","place_id":"p2"}
		]}`)
	}))
	defer srv.Close()

	c, err := NewClient("test-key", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	results, err := c.Search(context.Background(), "inmobiliaria", "Rosario", 20)
	require.NoError(t, err)
	assert.Equal(t, "inmobiliaria Rosario Argentina", gotQuery)
	require.Len(t, results, 2)
	assert.Equal(t, "Inmobiliaria Norte", results[0].Name)
	assert.Equal(t, "p1", results[0].PlaceID)
	assert.Equal(t, "Santa Fe", results[0].Province)
	assert.Equal(t, "Rosario", results[0].City)
	assert.Equal(t, 4.5, results[0].Rating)
	assert.Empty(t, results[1].Website)
}

func TestSearchUnknownCityOmitsCoordinates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("ll"))
		fmt.Fprint(w, `{"local_results":[]}`)
	}))
	defer srv.Close()

	c, err := NewClient("test-key", WithBaseURL(srv.URL))
	require.NoError(t, err)
	results, err := c.Search(context.Background(), "propiedades", "Villa Inventada", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchRespectsLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"local_results":[
			{"title":"A","place_id":"a"},{"title":"B","place_id":"b"},{"title":"C","place_id":"c"}
		]}`)
	}))
	defer srv.Close()

	c, err := NewClient("test-key", WithBaseURL(srv.URL))
	require.NoError(t, err)
	results, err := c.Search(context.Background(), "inmobiliaria", "Salta", 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearchAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"error":"Invalid API key"}`)
	}))
	defer srv.Close()

	c, err := NewClient("bad-key", WithBaseURL(srv.URL))
	require.NoError(t, err)
	_, err = c.Search(context.Background(), "inmobiliaria", "Salta", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid API key")
}

func TestSearchNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c, err := NewClient("test-key", WithBaseURL(srv.URL))
	require.NoError(t, err)
	_, err = c.Search(context.Background(), "inmobiliaria", "Salta", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestSearchAllKeywordsDedupsByPlaceID(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		// Every keyword returns the same business plus one unique entry.
		fmt.Fprintf(w, `{"local_results":[
			{"title":"Shared","place_id":"shared"},
			{"title":"Unique %d","place_id":"unique-%d"},
			{"title":"No Place ID"}
		]}`, calls, calls)
	}))
	defer srv.Close()

	c, err := NewClient("test-key", WithBaseURL(srv.URL))
	require.NoError(t, err)

	results, err := c.SearchAllKeywords(context.Background(), "Rosario", []string{"inmobiliaria", "propiedades"}, 20)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	// shared appears once, each unique once, placeless results dropped
	require.Len(t, results, 3)
	assert.Equal(t, "Shared", results[0].Name)
}

func TestSearchAllKeywordsSkipsFailedKeyword(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"local_results":[{"title":"Survivor","place_id":"s1"}]}`)
	}))
	defer srv.Close()

	c, err := NewClient("test-key", WithBaseURL(srv.URL))
	require.NoError(t, err)

	results, err := c.SearchAllKeywords(context.Background(), "Salta", []string{"a", "b"}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Survivor", results[0].Name)
}

func TestLookupCityFoldsAccents(t *testing.T) {
	city, ok := LookupCity("Córdoba")
	require.True(t, ok)
	assert.Equal(t, "Córdoba", city.Province)

	city, ok = LookupCity("neuquén")
	require.True(t, ok)
	assert.Equal(t, "Neuquén", city.Province)

	_, ok = LookupCity("Montevideo")
	assert.False(t, ok)
}

func TestAvailableCities(t *testing.T) {
	cities := AvailableCities()
	assert.Len(t, cities, len(ArgentinaCities))
	assert.Contains(t, cities, "Ushuaia")
}
