package export

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prospectar/leadscan/internal/model"
	"github.com/prospectar/leadscan/internal/store"
	"github.com/prospectar/leadscan/pkg/gohighlevel"
)

// fakeCRM records created contacts and can fail selectively.
type fakeCRM struct {
	created  []gohighlevel.Contact
	nextID   int
	failName string
}

func (f *fakeCRM) CreateContact(_ context.Context, c gohighlevel.Contact) (string, error) {
	if c.Name == f.failName {
		return "", assert.AnError
	}
	f.created = append(f.created, c)
	f.nextID++
	return fmt.Sprintf("ghl-%d", f.nextID), nil
}

func (f *fakeCRM) TriggerWorkflow(context.Context, string, string) bool { return true }
func (f *fakeCRM) AddTags(context.Context, string, []string) bool       { return true }
func (f *fakeCRM) GetContacts(context.Context, int, int) ([]gohighlevel.ContactRecord, error) {
	return nil, nil
}
func (f *fakeCRM) DeleteContact(context.Context, string) error { return nil }

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	s, err := store.NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestBuildContactIncludesGapAndCategoryTags(t *testing.T) {
	lead := &model.Lead{
		Name:             "Inmobiliaria Sin Nada",
		City:             "Rosario",
		Province:         "Santa Fe",
		Website:          "https://nada.example.com",
		Email:            "info@nada.example.com",
		OpportunityScore: 85,
		Rating:           4.2,
		Reviews:          31,
		TechStack: &model.TechStack{
			HasWebsite: true,
			HasSSL:     true,
		},
	}

	contact := BuildContact(lead)
	assert.Equal(t, "Inmobiliaria Sin Nada", contact.Name)
	assert.Equal(t, "info@nada.example.com", contact.Email)
	// Everything except website and SSL is missing.
	assert.Contains(t, contact.Tags, "sin-chat")
	assert.Contains(t, contact.Tags, "sin-whatsapp")
	assert.Contains(t, contact.Tags, "sin-blog")
	assert.NotContains(t, contact.Tags, "sin-web")
	assert.NotContains(t, contact.Tags, "sin-ssl")
	// Category tag always goes last.
	assert.Equal(t, "score-hot", contact.Tags[len(contact.Tags)-1])
	assert.Equal(t, "85", contact.CustomFields["opportunity_score"])
	assert.Equal(t, "hot", contact.CustomFields["score_category"])
	assert.Equal(t, "4.2", contact.CustomFields["rating"])
	assert.Equal(t, "31", contact.CustomFields["reviews_count"])
}

func TestBuildContactWhatsAppFallbackPhone(t *testing.T) {
	lead := &model.Lead{Name: "WA Only", WhatsApp: "+5493411234567", OpportunityScore: 50}
	contact := BuildContact(lead)
	assert.Equal(t, "+5493411234567", contact.Phone)
}

func TestBuildContactUnanalyzedLead(t *testing.T) {
	lead := &model.Lead{Name: "Raw", OpportunityScore: 100}
	contact := BuildContact(lead)
	assert.Equal(t, []string{"score-hot"}, contact.Tags)
	assert.Empty(t, contact.CustomFields["rating"])
}

func TestExportLeadMarksStore(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	id, _, err := st.UpsertLead(ctx, &model.Lead{Name: "Exportable", PlaceID: "e1"})
	require.NoError(t, err)
	lead, err := st.GetLead(ctx, id)
	require.NoError(t, err)

	crm := &fakeCRM{}
	e := New(crm, st, 60)
	contactID, err := e.ExportLead(ctx, lead)
	require.NoError(t, err)
	require.NotEmpty(t, contactID)

	stored, err := st.GetLead(ctx, id)
	require.NoError(t, err)
	assert.True(t, stored.IsExported)
	assert.Equal(t, contactID, stored.CRMContactID)
}

func TestExportBatchRespectsFloorAndSkipsFailures(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	stack := &model.TechStack{HasWebsite: true, AnalyzedAt: time.Now().UTC()}
	seed := []struct {
		name  string
		score int
	}{
		{"Hot", 90},
		{"Borderline", 60},
		{"Low", 30},
		{"Failing", 95},
	}
	for _, sp := range seed {
		id, _, err := st.UpsertLead(ctx, &model.Lead{Name: sp.name, PlaceID: sp.name, Website: "https://x.example.com"})
		require.NoError(t, err)
		require.NoError(t, st.SaveAnalysis(ctx, id, stack, nil, sp.score))
	}

	crm := &fakeCRM{failName: "Failing"}
	e := New(crm, st, 60)

	exported, failed, err := e.ExportBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, exported)
	assert.Equal(t, 1, failed)

	names := make([]string, len(crm.created))
	for i, c := range crm.created {
		names[i] = c.Name
	}
	assert.ElementsMatch(t, []string{"Hot", "Borderline"}, names)

	// A second run finds nothing left above the floor.
	exported, failed, err = e.ExportBatch(ctx)
	require.NoError(t, err)
	assert.Zero(t, exported)
	assert.Equal(t, 1, failed) // the failing lead is retried
}

func TestExportBatchIncludesGapTags(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	id, _, err := st.UpsertLead(ctx, &model.Lead{Name: "Gappy", PlaceID: "g1", Website: "https://g.example.com"})
	require.NoError(t, err)
	stack := &model.TechStack{HasWebsite: true, AnalyzedAt: time.Now().UTC()}
	require.NoError(t, st.SaveAnalysis(ctx, id, stack, nil, 70))

	crm := &fakeCRM{}
	e := New(crm, st, 60)
	_, _, err = e.ExportBatch(ctx)
	require.NoError(t, err)
	require.Len(t, crm.created, 1)
	assert.Contains(t, crm.created[0].Tags, "sin-ssl")
}
