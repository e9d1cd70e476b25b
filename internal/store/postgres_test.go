package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prospectar/leadscan/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresUpsertLead_ExistingPlaceID(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id FROM leads WHERE place_id = \$1`).
		WithArgs("place-1").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(42)))

	id, created, err := s.UpsertLead(context.Background(), &model.Lead{Name: "Dup", PlaceID: "place-1"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, int64(42), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpsertLead_Insert(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id FROM leads WHERE place_id = \$1`).
		WithArgs("place-new").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`INSERT INTO leads`).
		WithArgs("Fresh", "", "", "", "", "", "", pgxmock.AnyArg(),
			float64(0), 0, 0, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))

	id, created, err := s.UpsertLead(context.Background(), &model.Lead{Name: "Fresh", PlaceID: "place-new"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, int64(7), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetLead_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT (.+) FROM leads WHERE id = \$1`).
		WithArgs(int64(99)).
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetLead(context.Background(), 99)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresMarkExported(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE leads SET is_exported = TRUE`).
		WithArgs("ghl-1", pgxmock.AnyArg(), pgxmock.AnyArg(), int64(5)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := s.MarkExported(context.Background(), 5, "ghl-1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSaveAnalysis_TxCommit(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	analyzedAt := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO tech_stacks`).
		WithArgs(int64(3), pgxmock.AnyArg(), analyzedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`UPDATE leads SET opportunity_score = \$1`).
		WithArgs(70, analyzedAt, "a@b.com", "", pgxmock.AnyArg(), int64(3)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()
	mock.ExpectRollback()

	stack := &model.TechStack{HasWebsite: true, AnalyzedAt: analyzedAt}
	info := &model.ContactInfo{PrimaryEmail: "a@b.com"}
	err := s.SaveAnalysis(context.Background(), 3, stack, info, 70)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSaveAnalysis_RollbackOnError(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO tech_stacks`).
		WithArgs(int64(3), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	stack := &model.TechStack{AnalyzedAt: time.Now().UTC()}
	err := s.SaveAnalysis(context.Background(), 3, stack, nil, 0)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreateJob(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	createdAt := time.Now().UTC()
	mock.ExpectExec(`INSERT INTO scrape_jobs`).
		WithArgs("j-1", "inmobiliaria", "Rosario", "", model.JobStatusPending, createdAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	job := &model.ScrapeJob{
		ID:        "j-1",
		Keyword:   "inmobiliaria",
		City:      "Rosario",
		Status:    model.JobStatusPending,
		CreatedAt: createdAt,
	}
	require.NoError(t, s.CreateJob(context.Background(), job))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetJob_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT (.+) FROM scrape_jobs WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetJob(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStats(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\),`).
		WillReturnRows(pgxmock.NewRows([]string{"count", "analyzed", "exported", "avg"}).
			AddRow(3, 2, 1, 61.5))
	mock.ExpectQuery(`SELECT city, COUNT\(\*\) FROM leads GROUP BY city`).
		WillReturnRows(pgxmock.NewRows([]string{"city", "count"}).
			AddRow("Rosario", 2).
			AddRow("", 1))
	mock.ExpectQuery(`SELECT CASE`).
		WillReturnRows(pgxmock.NewRows([]string{"label", "count"}).
			AddRow("80-100 (Hot)", 1).
			AddRow("40-59 (Medium)", 2))

	stats, err := s.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalLeads)
	assert.Equal(t, 2, stats.AnalyzedLeads)
	assert.Equal(t, 1, stats.ExportedLeads)
	assert.InDelta(t, 61.5, stats.AvgScore, 0.001)
	assert.Equal(t, 2, stats.LeadsByCity["Rosario"])
	assert.Equal(t, 1, stats.LeadsByCity["Unknown"])
	assert.Equal(t, 2, stats.LeadsByRange["40-59 (Medium)"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBuildPgLeadWhere(t *testing.T) {
	minScore := 40
	analyzed := true
	where, args := buildPgLeadWhere(model.LeadFilter{
		City:       "Rosario",
		MinScore:   &minScore,
		IsAnalyzed: &analyzed,
		Search:     "prop",
	})
	assert.Equal(t,
		" WHERE city = $1 AND opportunity_score >= $2 AND is_analyzed = $3 AND (name ILIKE $4 OR address ILIKE $5 OR email ILIKE $6)",
		where)
	assert.Equal(t, []any{"Rosario", 40, true, "%prop%", "%prop%", "%prop%"}, args)

	where, args = buildPgLeadWhere(model.LeadFilter{})
	assert.Empty(t, where)
	assert.Empty(t, args)
}
