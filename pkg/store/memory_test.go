package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecochain/ecochain/pkg/ecoerrors"
	"github.com/ecochain/ecochain/pkg/models"
)

func TestDataSourceOwnerScoping(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()

	require.NoError(t, mem.DataSources().Insert(ctx, &models.DataSource{
		ID: "src-1", OwnerID: "owner-1", Name: "Mine", Type: models.SourceTypeAPI,
	}))

	t.Run("get by another owner is not found", func(t *testing.T) {
		_, err := mem.DataSources().Get(ctx, "owner-2", "src-1")
		require.Error(t, err)
		assert.True(t, ecoerrors.IsType(err, ecoerrors.ErrorTypeNotFound))
	})

	t.Run("delete by another owner is not found", func(t *testing.T) {
		err := mem.DataSources().Delete(ctx, "owner-2", "src-1")
		require.Error(t, err)
		assert.True(t, ecoerrors.IsType(err, ecoerrors.ErrorTypeNotFound))
	})

	t.Run("list only returns the owner's sources", func(t *testing.T) {
		mine, err := mem.DataSources().List(ctx, "owner-1")
		require.NoError(t, err)
		assert.Len(t, mine, 1)

		theirs, err := mem.DataSources().List(ctx, "owner-2")
		require.NoError(t, err)
		assert.Empty(t, theirs)
	})

	t.Run("reads do not alias stored state", func(t *testing.T) {
		ds, err := mem.DataSources().Get(ctx, "owner-1", "src-1")
		require.NoError(t, err)
		ds.Name = "mutated"

		again, err := mem.DataSources().Get(ctx, "owner-1", "src-1")
		require.NoError(t, err)
		assert.Equal(t, "Mine", again.Name)
	})
}

func TestDataSourceListDue(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	now := time.Now()

	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	require.NoError(t, mem.DataSources().Insert(ctx, &models.DataSource{
		ID: "due", OwnerID: "owner-1", Type: models.SourceTypeAPI,
		Schedule: models.Schedule{Enabled: true, Frequency: models.FrequencyDaily, Time: "00:00"},
		NextSync: &past,
	}))
	require.NoError(t, mem.DataSources().Insert(ctx, &models.DataSource{
		ID: "later", OwnerID: "owner-2", Type: models.SourceTypeAPI,
		Schedule: models.Schedule{Enabled: true, Frequency: models.FrequencyDaily, Time: "00:00"},
		NextSync: &future,
	}))
	require.NoError(t, mem.DataSources().Insert(ctx, &models.DataSource{
		ID: "disabled", OwnerID: "owner-1", Type: models.SourceTypeAPI,
	}))

	due, err := mem.DataSources().ListDue(ctx, now)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "due", due[0].ID)
}

func TestRecordFilters(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()

	insert := func(id string, date time.Time, scope int, source string) {
		require.NoError(t, mem.Records().Insert(ctx, &models.EmissionRecord{
			ID: id, OwnerID: "owner-1", Date: date, Scope: scope, Source: source, Value: 1,
		}))
	}
	jan := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	jun := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	insert("r1", jan, 1, "grid")
	insert("r2", jun, 2, "fleet")

	t.Run("by date range", func(t *testing.T) {
		from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
		recs, err := mem.Records().List(ctx, "owner-1", RecordFilter{From: &from})
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, "r2", recs[0].ID)
	})

	t.Run("by scope", func(t *testing.T) {
		recs, err := mem.Records().List(ctx, "owner-1", RecordFilter{Scope: 1})
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, "r1", recs[0].ID)
	})

	t.Run("by source", func(t *testing.T) {
		recs, err := mem.Records().List(ctx, "owner-1", RecordFilter{Source: "fleet"})
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, "r2", recs[0].ID)
	})

	t.Run("sorted by date", func(t *testing.T) {
		recs, err := mem.Records().List(ctx, "owner-1", RecordFilter{})
		require.NoError(t, err)
		require.Len(t, recs, 2)
		assert.True(t, recs[0].Date.Before(recs[1].Date))
	})
}

func TestUserTokens(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	require.NoError(t, mem.SeedDemo(ctx))

	user, err := mem.Users().GetByToken(ctx, "dev-admin-token")
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", user.Email)

	_, err = mem.Users().GetByToken(ctx, "nope")
	require.Error(t, err)
	assert.True(t, ecoerrors.IsType(err, ecoerrors.ErrorTypeAuthentication))
}
