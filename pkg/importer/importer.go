// Package importer converts loosely typed source rows into canonical emission
// records and persists them. It is shared by the sync orchestrator and the
// bulk file import endpoints.
package importer

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ecochain/ecochain/pkg/ecoerrors"
	"github.com/ecochain/ecochain/pkg/logger"
	"github.com/ecochain/ecochain/pkg/metrics"
	"github.com/ecochain/ecochain/pkg/models"
	"github.com/ecochain/ecochain/pkg/store"
)

// Provenance records which import path produced a batch and the id of the
// originating data source or import job.
type Provenance struct {
	From     string
	ImportID string
}

// Result summarizes one batch import. Total == Imported + Failed.
type Result struct {
	Total    int `json:"totalRecords"`
	Imported int `json:"importedRecords"`
	Failed   int `json:"failedRecords"`
}

// Importer validates, normalizes and persists emission record batches.
type Importer struct {
	records store.RecordStore
	logger  *zap.Logger
}

// New creates an importer backed by the given record store.
func New(records store.RecordStore) *Importer {
	return &Importer{
		records: records,
		logger:  logger.With(zap.String("component", "importer")),
	}
}

// ImportBatch normalizes each raw record and inserts the valid ones for
// ownerID. A record that fails validation is counted and skipped; only a
// store failure aborts the batch.
func (im *Importer) ImportBatch(ctx context.Context, ownerID string, prov Provenance, raw []map[string]any) (Result, error) {
	res := Result{Total: len(raw)}
	origin := prov.From
	if origin == "" {
		origin = "manual"
	}

	for i, entry := range raw {
		rec, err := im.normalize(ownerID, prov, entry)
		if err != nil {
			res.Failed++
			metrics.RecordsRejected.WithLabelValues(origin).Inc()
			im.logger.Warn("skipping invalid record",
				zap.Int("index", i),
				zap.String("importId", prov.ImportID),
				zap.Error(err))
			continue
		}

		if err := im.records.Insert(ctx, rec); err != nil {
			return res, ecoerrors.Wrap(err, ecoerrors.ErrorTypeInternal, "failed to persist record")
		}
		res.Imported++
		metrics.RecordsImported.WithLabelValues(origin).Inc()
	}

	return res, nil
}

// ImportOne normalizes and persists a single record, for the manual entry
// path. Unlike ImportBatch, a validation failure is returned to the caller.
func (im *Importer) ImportOne(ctx context.Context, ownerID string, prov Provenance, entry map[string]any) (*models.EmissionRecord, error) {
	origin := prov.From
	if origin == "" {
		origin = "manual"
	}

	rec, err := im.normalize(ownerID, prov, entry)
	if err != nil {
		metrics.RecordsRejected.WithLabelValues(origin).Inc()
		return nil, err
	}
	if err := im.records.Insert(ctx, rec); err != nil {
		return nil, ecoerrors.Wrap(err, ecoerrors.ErrorTypeInternal, "failed to persist record")
	}
	metrics.RecordsImported.WithLabelValues(origin).Inc()
	return rec, nil
}

func (im *Importer) normalize(ownerID string, prov Provenance, entry map[string]any) (*models.EmissionRecord, error) {
	rawDate := entry["date"]
	rawSource := entry["source"]
	rawValue := entry["value"]
	if falsy(rawDate) || falsy(rawSource) || falsy(rawValue) {
		return nil, ecoerrors.New(ecoerrors.ErrorTypeValidation, "record is missing date, source or value")
	}

	date, err := toTime(rawDate)
	if err != nil {
		return nil, ecoerrors.Wrap(err, ecoerrors.ErrorTypeValidation, "invalid date")
	}
	value, err := toFloat(rawValue)
	if err != nil {
		return nil, ecoerrors.Wrap(err, ecoerrors.ErrorTypeValidation, "invalid value")
	}

	factor := 0.0
	if v, ok := entry["emissionFactor"]; ok && v != nil {
		if factor, err = toFloat(v); err != nil {
			return nil, ecoerrors.Wrap(err, ecoerrors.ErrorTypeValidation, "invalid emissionFactor")
		}
	}

	unit := "kg"
	if v, ok := entry["unit"]; ok {
		if s := strings.TrimSpace(toString(v)); s != "" {
			unit = s
		}
	}

	scope := 1
	if v, ok := entry["scope"]; ok && v != nil {
		n, err := toFloat(v)
		if err != nil {
			return nil, ecoerrors.Wrap(err, ecoerrors.ErrorTypeValidation, "invalid scope")
		}
		scope = int(n)
	}

	now := time.Now().UTC()
	return &models.EmissionRecord{
		ID:             uuid.NewString(),
		OwnerID:        ownerID,
		Date:           date,
		Source:         toString(rawSource),
		Value:          value,
		Unit:           unit,
		Scope:          scope,
		EmissionFactor: factor,
		TotalCO2e:      value * factor,
		Notes:          toString(entry["notes"]),
		Tags:           toTags(entry["tags"]),
		ImportedFrom:   prov.From,
		ImportID:       prov.ImportID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// falsy reports whether a required field counts as absent: nil, the empty
// string, numeric zero or false. A non-empty string like "0" is present;
// coercion decides what it means.
func falsy(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case float64:
		return t == 0
	case float32:
		return t == 0
	case int:
		return t == 0
	case int32:
		return t == 0
	case int64:
		return t == 0
	default:
		return false
	}
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(n), 64)
	default:
		return 0, fmt.Errorf("cannot convert %T to number", v)
	}
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
}

func toTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed, nil
			}
		}
		return time.Time{}, fmt.Errorf("unparseable date %q", s)
	default:
		return time.Time{}, fmt.Errorf("cannot convert %T to date", v)
	}
}

func toString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// toTags accepts either a list of values or a comma-separated string.
func toTags(v any) []string {
	var parts []string
	switch t := v.(type) {
	case nil:
		return nil
	case []string:
		parts = t
	case []any:
		for _, item := range t {
			parts = append(parts, toString(item))
		}
	case string:
		parts = strings.Split(t, ",")
	default:
		parts = []string{toString(v)}
	}

	var tags []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}
