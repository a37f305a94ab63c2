package api

import (
	"encoding/csv"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	gojson "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/ecochain/ecochain/pkg/ecoerrors"
	"github.com/ecochain/ecochain/pkg/importer"
	"github.com/ecochain/ecochain/pkg/models"
)

const maxUploadBytes = 10 << 20 // 10 MiB

type createImportRequest struct {
	Type     string `json:"type"`
	Filename string `json:"filename"`
}

func (s *Server) handleListImports(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.store.ImportJobs().List(r.Context(), userFrom(r).ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, jobs)
}

func (s *Server) handleCreateImport(w http.ResponseWriter, r *http.Request) {
	var req createImportRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	typ := models.ImportType(req.Type)
	if !models.ValidImportType(typ) {
		respondError(w, r, ecoerrors.Newf(ecoerrors.ErrorTypeValidation, "invalid import type %q", req.Type))
		return
	}

	now := time.Now().UTC()
	job := &models.ImportJob{
		ID:        uuid.NewString(),
		OwnerID:   userFrom(r).ID,
		Type:      typ,
		Filename:  req.Filename,
		Status:    models.ImportPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.ImportJobs().Insert(r.Context(), job); err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, job)
}

func (s *Server) handleGetImport(w http.ResponseWriter, r *http.Request) {
	job, err := s.store.ImportJobs().Get(r.Context(), userFrom(r).ID, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, job)
}

// handleUploadImport receives the file for a pending job, parses it and runs
// the batch through the importer, updating the job's counters as it goes.
func (s *Server) handleUploadImport(w http.ResponseWriter, r *http.Request) {
	ownerID := userFrom(r).ID
	job, err := s.store.ImportJobs().Get(r.Context(), ownerID, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	if job.Status != models.ImportPending {
		respondError(w, r, ecoerrors.Newf(ecoerrors.ErrorTypeConflict, "import job is %s", job.Status))
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, r, ecoerrors.Wrap(err, ecoerrors.ErrorTypeValidation, "invalid multipart body"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, ecoerrors.Wrap(err, ecoerrors.ErrorTypeValidation, "file field is required"))
		return
	}
	defer file.Close()
	if job.Filename == "" {
		job.Filename = header.Filename
	}

	job.Status = models.ImportProcessing
	job.UpdatedAt = time.Now().UTC()
	if err := s.store.ImportJobs().Update(r.Context(), job); err != nil {
		respondError(w, r, err)
		return
	}

	entries, err := parseImportFile(job.Type, file)
	if err != nil {
		job.Status = models.ImportFailed
		job.ErrorLog = err.Error()
		job.UpdatedAt = time.Now().UTC()
		if uerr := s.store.ImportJobs().Update(r.Context(), job); uerr != nil {
			respondError(w, r, uerr)
			return
		}
		respondError(w, r, err)
		return
	}

	res, err := s.importer.ImportBatch(r.Context(), ownerID, importer.Provenance{
		From:     string(job.Type),
		ImportID: job.ID,
	}, entries)

	job.TotalRecords = res.Total
	job.ImportedRecords = res.Imported
	job.FailedRecords = res.Failed
	job.Progress = 100
	job.UpdatedAt = time.Now().UTC()
	if err != nil {
		job.Status = models.ImportFailed
		job.ErrorLog = err.Error()
	} else {
		job.Status = models.ImportCompleted
	}
	if uerr := s.store.ImportJobs().Update(r.Context(), job); uerr != nil {
		respondError(w, r, uerr)
		return
	}
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, job)
}

const csvTemplate = "date,source,value,unit,scope,emissionFactor,notes,tags\n" +
	"2025-06-01,Fleet Diesel,120.5,L,1,2.68,,\"fleet, diesel\"\n"

var jsonTemplate = []map[string]any{{
	"date":           "2025-06-01",
	"source":         "Fleet Diesel",
	"value":          120.5,
	"unit":           "L",
	"scope":          1,
	"emissionFactor": 2.68,
	"notes":          "",
	"tags":           []string{"fleet", "diesel"},
}}

func (s *Server) handleImportTemplate(w http.ResponseWriter, r *http.Request) {
	switch models.ImportType(chi.URLParam(r, "type")) {
	case models.ImportTypeCSV:
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="emissions-template.csv"`)
		_, _ = w.Write([]byte(csvTemplate))
	case models.ImportTypeJSON:
		respondData(w, http.StatusOK, jsonTemplate)
	default:
		respondError(w, r, ecoerrors.Newf(ecoerrors.ErrorTypeValidation, "invalid import type %q", chi.URLParam(r, "type")))
	}
}

func parseImportFile(typ models.ImportType, file io.Reader) ([]map[string]any, error) {
	switch typ {
	case models.ImportTypeCSV:
		return parseCSV(file)
	case models.ImportTypeJSON:
		var entries []map[string]any
		if err := gojson.NewDecoder(file).Decode(&entries); err != nil {
			return nil, ecoerrors.Wrap(err, ecoerrors.ErrorTypeValidation, "failed to parse JSON file")
		}
		return entries, nil
	default:
		return nil, ecoerrors.Newf(ecoerrors.ErrorTypeValidation, "invalid import type %q", typ)
	}
}

// parseCSV reads a header-keyed CSV file into loose records. Every cell is a
// string; the importer handles numeric and date coercion.
func parseCSV(file io.Reader) ([]map[string]any, error) {
	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, ecoerrors.Wrap(err, ecoerrors.ErrorTypeValidation, "failed to read CSV header")
	}

	var entries []map[string]any
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, ecoerrors.Wrap(err, ecoerrors.ErrorTypeValidation, "failed to read CSV row")
		}
		entry := make(map[string]any, len(header))
		for i, col := range header {
			if i < len(row) && row[i] != "" {
				entry[col] = row[i]
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
