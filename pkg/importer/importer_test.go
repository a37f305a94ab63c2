package importer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecochain/ecochain/pkg/store"
)

func TestImportBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes and persists valid records", func(t *testing.T) {
		mem := store.NewMemory()
		im := New(mem.Records())

		res, err := im.ImportBatch(ctx, "owner-1", Provenance{From: "postgres", ImportID: "src-1"}, []map[string]any{
			{
				"date":           "2025-06-01",
				"source":         "fleet-diesel",
				"value":          "120.5",
				"emissionFactor": 2.68,
				"unit":           "L",
				"scope":          float64(1),
				"tags":           "fleet, diesel",
			},
		})
		require.NoError(t, err)
		assert.Equal(t, Result{Total: 1, Imported: 1, Failed: 0}, res)

		recs, err := mem.Records().List(ctx, "owner-1", store.RecordFilter{})
		require.NoError(t, err)
		require.Len(t, recs, 1)

		rec := recs[0]
		assert.Equal(t, "fleet-diesel", rec.Source)
		assert.Equal(t, 120.5, rec.Value)
		assert.Equal(t, "L", rec.Unit)
		assert.Equal(t, 1, rec.Scope)
		assert.InDelta(t, 120.5*2.68, rec.TotalCO2e, 1e-9)
		assert.Equal(t, []string{"fleet", "diesel"}, rec.Tags)
		assert.Equal(t, "postgres", rec.ImportedFrom)
		assert.Equal(t, "src-1", rec.ImportID)
		assert.NotEmpty(t, rec.ID)
	})

	t.Run("applies defaults for optional fields", func(t *testing.T) {
		mem := store.NewMemory()
		im := New(mem.Records())

		res, err := im.ImportBatch(ctx, "owner-1", Provenance{From: "csv", ImportID: "job-1"}, []map[string]any{
			{"date": "2025-06-01", "source": "grid", "value": 42.0},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, res.Imported)

		recs, err := mem.Records().List(ctx, "owner-1", store.RecordFilter{})
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, "kg", recs[0].Unit)
		assert.Equal(t, 1, recs[0].Scope)
		assert.Zero(t, recs[0].EmissionFactor)
		assert.Zero(t, recs[0].TotalCO2e)
	})

	t.Run("counts invalid records without aborting", func(t *testing.T) {
		mem := store.NewMemory()
		im := New(mem.Records())

		res, err := im.ImportBatch(ctx, "owner-1", Provenance{From: "api", ImportID: "src-2"}, []map[string]any{
			{"date": "2025-06-01", "source": "grid", "value": 10.0},
			{"source": "grid", "value": 10.0},                           // missing date
			{"date": "2025-06-01", "value": 10.0},                       // missing source
			{"date": "2025-06-01", "source": "grid"},                    // missing value
			{"date": "2025-06-01", "source": "grid", "value": "banana"}, // unparseable value
			{},
		})
		require.NoError(t, err)
		assert.Equal(t, Result{Total: 6, Imported: 1, Failed: 5}, res)

		recs, err := mem.Records().List(ctx, "owner-1", store.RecordFilter{})
		require.NoError(t, err)
		assert.Len(t, recs, 1)
	})

	t.Run("rejects falsy required fields", func(t *testing.T) {
		mem := store.NewMemory()
		im := New(mem.Records())

		res, err := im.ImportBatch(ctx, "owner-1", Provenance{From: "api", ImportID: "src-4"}, []map[string]any{
			{"date": "2025-06-01", "source": "grid", "value": 0.0},
			{"date": "2025-06-01", "source": "", "value": 10.0},
			{"date": "", "source": "grid", "value": 10.0},
			{"date": "2025-06-01", "source": "grid", "value": "0"}, // non-empty string is present
		})
		require.NoError(t, err)
		assert.Equal(t, Result{Total: 4, Imported: 1, Failed: 3}, res)

		recs, err := mem.Records().List(ctx, "owner-1", store.RecordFilter{})
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Zero(t, recs[0].Value)
	})

	t.Run("accepts tags as a list", func(t *testing.T) {
		mem := store.NewMemory()
		im := New(mem.Records())

		_, err := im.ImportBatch(ctx, "owner-1", Provenance{From: "json", ImportID: "job-2"}, []map[string]any{
			{"date": "2025-06-01", "source": "grid", "value": 1.0, "tags": []any{"a", " b ", ""}},
		})
		require.NoError(t, err)

		recs, err := mem.Records().List(ctx, "owner-1", store.RecordFilter{})
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, []string{"a", "b"}, recs[0].Tags)
	})

	t.Run("parses several date layouts", func(t *testing.T) {
		mem := store.NewMemory()
		im := New(mem.Records())

		res, err := im.ImportBatch(ctx, "owner-1", Provenance{From: "mysql", ImportID: "src-3"}, []map[string]any{
			{"date": "2025-06-01T10:30:00Z", "source": "grid", "value": 1.0},
			{"date": "2025-06-01 10:30:00", "source": "grid", "value": 1.0},
			{"date": time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), "source": "grid", "value": 1.0},
		})
		require.NoError(t, err)
		assert.Equal(t, 3, res.Imported)
	})
}
