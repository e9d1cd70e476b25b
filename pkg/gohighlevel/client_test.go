package gohighlevel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient("", "loc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api key")

	_, err = NewClient("key", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "location id")
}

func TestCreateContact(t *testing.T) {
	var gotPayload createContactRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "/contacts/", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		fmt.Fprint(w, `{"contact":{"id":"contact-1"}}`)
	}))
	defer srv.Close()

	c, err := NewClient("test-key", "loc-1", WithBaseURL(srv.URL))
	require.NoError(t, err)

	id, err := c.CreateContact(context.Background(), Contact{
		Name:  "Inmobiliaria San Martín",
		Email: "info@sanmartin.example.com",
		City:  "Rosario",
		Tags:  []string{"sin-chat", "warm-lead"},
		CustomFields: map[string]string{
			"opportunity_score": "65",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "contact-1", id)
	assert.Equal(t, "loc-1", gotPayload.LocationID)
	assert.Equal(t, "Inmobiliaria", gotPayload.FirstName)
	assert.Equal(t, "San Martín", gotPayload.LastName)
	assert.Equal(t, "Argentina", gotPayload.Country)
	assert.Equal(t, "Lead Scraper", gotPayload.Source)
	assert.Equal(t, []string{"sin-chat", "warm-lead"}, gotPayload.Tags)
	assert.Equal(t, "65", gotPayload.CustomField["opportunity_score"])
}

func TestCreateContactTriggersWorkflow(t *testing.T) {
	var workflowPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/contacts/" {
			fmt.Fprint(w, `{"contact":{"id":"contact-2"}}`)
			return
		}
		workflowPath = r.URL.Path
	}))
	defer srv.Close()

	c, err := NewClient("test-key", "loc-1", WithBaseURL(srv.URL), WithWorkflow("wf-9"))
	require.NoError(t, err)

	id, err := c.CreateContact(context.Background(), Contact{Name: "Solo"})
	require.NoError(t, err)
	assert.Equal(t, "contact-2", id)
	assert.Equal(t, "/contacts/contact-2/workflow/wf-9", workflowPath)
}

func TestCreateContactConflictFallsBackToLookup(t *testing.T) {
	var taggedContact string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/contacts/":
			w.WriteHeader(http.StatusConflict)
		case r.URL.Path == "/contacts/lookup":
			assert.Equal(t, "dup@example.com", r.URL.Query().Get("email"))
			assert.Equal(t, "loc-1", r.URL.Query().Get("locationId"))
			fmt.Fprint(w, `{"contacts":[{"id":"existing-1"}]}`)
		case r.URL.Path == "/contacts/existing-1/tags":
			taggedContact = "existing-1"
			fmt.Fprint(w, `{}`)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	c, err := NewClient("test-key", "loc-1", WithBaseURL(srv.URL))
	require.NoError(t, err)

	id, err := c.CreateContact(context.Background(), Contact{
		Name:  "Duplicado SRL",
		Email: "dup@example.com",
		Tags:  []string{"sin-web"},
	})
	require.NoError(t, err)
	assert.Equal(t, "existing-1", id)
	assert.Equal(t, "existing-1", taggedContact)
}

func TestCreateContactConflictWithoutIdentifiers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	c, err := NewClient("test-key", "loc-1", WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = c.CreateContact(context.Background(), Contact{Name: "Anon"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no email or phone")
}

func TestCreateContactServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	c, err := NewClient("test-key", "loc-1", WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = c.CreateContact(context.Background(), Contact{Name: "Broken"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
}

func TestTriggerWorkflowSwallowsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := NewClient("test-key", "loc-1", WithBaseURL(srv.URL))
	require.NoError(t, err)

	assert.False(t, c.TriggerWorkflow(context.Background(), "c1", "wf1"))
}

func TestGetContacts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "25", r.URL.Query().Get("limit"))
		assert.Equal(t, "50", r.URL.Query().Get("skip"))
		fmt.Fprint(w, `{"contacts":[{"id":"a","contactName":"A"},{"id":"b","contactName":"B"}]}`)
	}))
	defer srv.Close()

	c, err := NewClient("test-key", "loc-1", WithBaseURL(srv.URL))
	require.NoError(t, err)

	contacts, err := c.GetContacts(context.Background(), 25, 50)
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	assert.Equal(t, "A", contacts[0].Name)
}

func TestDeleteContact(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/contacts/gone", r.URL.Path)
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	c, err := NewClient("test-key", "loc-1", WithBaseURL(srv.URL))
	require.NoError(t, err)
	require.NoError(t, c.DeleteContact(context.Background(), "gone"))
}

func TestNameSplitting(t *testing.T) {
	assert.Equal(t, "Inmobiliaria", firstName("Inmobiliaria Del Sur SA"))
	assert.Equal(t, "Del Sur SA", lastName("Inmobiliaria Del Sur SA"))
	assert.Equal(t, "Solo", firstName("Solo"))
	assert.Empty(t, lastName("Solo"))
	assert.Empty(t, firstName("  "))
}
