package api

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ecochain/ecochain/pkg/ecoerrors"
	"github.com/ecochain/ecochain/pkg/importer"
	"github.com/ecochain/ecochain/pkg/store"
)

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	filter, err := recordFilterFrom(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	recs, err := s.store.Records().List(r.Context(), userFrom(r).ID, filter)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, recs)
}

// handleCreateRecord is the manual entry path. It runs the same
// normalization as every other import path; a validation failure is a 400.
func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	var entry map[string]any
	if err := decodeBody(r, &entry); err != nil {
		respondError(w, r, err)
		return
	}

	rec, err := s.importer.ImportOne(r.Context(), userFrom(r).ID, importer.Provenance{From: "manual"}, entry)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, rec)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Records().Delete(r.Context(), userFrom(r).ID, chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, "Record deleted successfully")
}

// recordSummary is the dashboard aggregation over one owner's records.
type recordSummary struct {
	TotalCO2e    float64            `json:"totalCo2e"`
	RecordCount  int                `json:"recordCount"`
	ByScope      map[string]float64 `json:"byScope"`
	BySource     map[string]float64 `json:"bySource"`
	MonthlyTrend []monthlyCO2e      `json:"monthlyTrend"`
}

type monthlyCO2e struct {
	Month string  `json:"month"` // "2025-06"
	CO2e  float64 `json:"co2e"`
}

func (s *Server) handleRecordSummary(w http.ResponseWriter, r *http.Request) {
	filter, err := recordFilterFrom(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	recs, err := s.store.Records().List(r.Context(), userFrom(r).ID, filter)
	if err != nil {
		respondError(w, r, err)
		return
	}

	summary := recordSummary{
		RecordCount: len(recs),
		ByScope:     make(map[string]float64),
		BySource:    make(map[string]float64),
	}
	byMonth := make(map[string]float64)
	for _, rec := range recs {
		summary.TotalCO2e += rec.TotalCO2e
		summary.ByScope[strconv.Itoa(rec.Scope)] += rec.TotalCO2e
		summary.BySource[rec.Source] += rec.TotalCO2e
		byMonth[rec.Date.Format("2006-01")] += rec.TotalCO2e
	}

	summary.MonthlyTrend = make([]monthlyCO2e, 0, len(byMonth))
	for month, co2e := range byMonth {
		summary.MonthlyTrend = append(summary.MonthlyTrend, monthlyCO2e{Month: month, CO2e: co2e})
	}
	sort.Slice(summary.MonthlyTrend, func(i, j int) bool {
		return summary.MonthlyTrend[i].Month < summary.MonthlyTrend[j].Month
	})

	respondData(w, http.StatusOK, summary)
}

func recordFilterFrom(r *http.Request) (store.RecordFilter, error) {
	var filter store.RecordFilter
	q := r.URL.Query()

	if v := q.Get("from"); v != "" {
		t, err := parseDateParam(v)
		if err != nil {
			return filter, err
		}
		filter.From = &t
	}
	if v := q.Get("to"); v != "" {
		t, err := parseDateParam(v)
		if err != nil {
			return filter, err
		}
		filter.To = &t
	}
	if v := q.Get("scope"); v != "" {
		scope, err := strconv.Atoi(v)
		if err != nil {
			return filter, ecoerrors.Newf(ecoerrors.ErrorTypeValidation, "invalid scope %q", v)
		}
		filter.Scope = scope
	}
	filter.Source = q.Get("source")

	return filter, nil
}

func parseDateParam(v string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ecoerrors.Newf(ecoerrors.ErrorTypeValidation, "invalid date %q", v)
}
