package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	srcconfig "github.com/ecochain/ecochain/pkg/connector/config"
	"github.com/ecochain/ecochain/pkg/ecoerrors"
	"github.com/ecochain/ecochain/pkg/models"
	"github.com/ecochain/ecochain/pkg/schedule"
)

type createIntegrationRequest struct {
	Name        string           `json:"name"`
	Type        string           `json:"type"`
	Description string           `json:"description"`
	Config      map[string]any   `json:"config"`
	Schedule    *models.Schedule `json:"schedule"`
}

type updateIntegrationRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Config      map[string]any   `json:"config"`
	Schedule    *models.Schedule `json:"schedule"`
	Status      *string          `json:"status"`
}

func (s *Server) handleListIntegrations(w http.ResponseWriter, r *http.Request) {
	sources, err := s.store.DataSources().List(r.Context(), userFrom(r).ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	// The list view omits configuration entirely; secrets never leave here.
	for _, ds := range sources {
		ds.Config = nil
	}
	respondData(w, http.StatusOK, sources)
}

func (s *Server) handleCreateIntegration(w http.ResponseWriter, r *http.Request) {
	var req createIntegrationRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	if req.Name == "" {
		respondError(w, r, ecoerrors.New(ecoerrors.ErrorTypeValidation, "name is required"))
		return
	}
	typ := models.SourceType(req.Type)
	if !models.ValidSourceType(typ) {
		respondError(w, r, ecoerrors.Newf(ecoerrors.ErrorTypeValidation, "invalid integration type %q", req.Type))
		return
	}
	if _, err := srcconfig.Decode(typ, req.Config); err != nil {
		respondError(w, r, err)
		return
	}

	sched := models.DefaultSchedule()
	if req.Schedule != nil {
		sched = *req.Schedule
		if err := validateSchedule(sched); err != nil {
			respondError(w, r, err)
			return
		}
	}

	now := time.Now().UTC()
	ds := &models.DataSource{
		ID:          uuid.NewString(),
		OwnerID:     userFrom(r).ID,
		Name:        req.Name,
		Type:        typ,
		Description: req.Description,
		Config:      req.Config,
		Schedule:    sched,
		Status:      models.StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	schedule.Apply(ds, now)

	if err := s.store.DataSources().Insert(r.Context(), ds); err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, ds)
}

func (s *Server) handleGetIntegration(w http.ResponseWriter, r *http.Request) {
	ds, err := s.store.DataSources().Get(r.Context(), userFrom(r).ID, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	ds.Config = srcconfig.Redact(ds.Config)
	respondData(w, http.StatusOK, ds)
}

func (s *Server) handleUpdateIntegration(w http.ResponseWriter, r *http.Request) {
	var req updateIntegrationRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	ds, err := s.store.DataSources().Get(r.Context(), userFrom(r).ID, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	if req.Name != nil {
		ds.Name = *req.Name
	}
	if req.Description != nil {
		ds.Description = *req.Description
	}
	if req.Config != nil {
		// Merge keys, so a caller can change the query without re-sending
		// credentials.
		if ds.Config == nil {
			ds.Config = make(map[string]any, len(req.Config))
		}
		for k, v := range req.Config {
			ds.Config[k] = v
		}
		if _, err := srcconfig.Decode(ds.Type, ds.Config); err != nil {
			respondError(w, r, err)
			return
		}
	}
	if req.Status != nil {
		status := models.SourceStatus(*req.Status)
		// Only the orchestrator may put a source into syncing.
		if status != models.StatusActive && status != models.StatusError {
			respondError(w, r, ecoerrors.Newf(ecoerrors.ErrorTypeValidation, "invalid status %q", *req.Status))
			return
		}
		ds.Status = status
	}

	now := time.Now().UTC()
	if req.Schedule != nil {
		if err := validateSchedule(*req.Schedule); err != nil {
			respondError(w, r, err)
			return
		}
		ds.Schedule = *req.Schedule
		schedule.Apply(ds, now)
	}
	ds.UpdatedAt = now

	if err := s.store.DataSources().Update(r.Context(), ds); err != nil {
		respondError(w, r, err)
		return
	}
	ds.Config = srcconfig.Redact(ds.Config)
	respondData(w, http.StatusOK, ds)
}

func (s *Server) handleDeleteIntegration(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DataSources().Delete(r.Context(), userFrom(r).ID, chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, "Integration deleted successfully")
}

func (s *Server) handleTestIntegration(w http.ResponseWriter, r *http.Request) {
	res, err := s.syncer.TestConnection(r.Context(), userFrom(r).ID, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, res)
}

func (s *Server) handleSyncIntegration(w http.ResponseWriter, r *http.Request) {
	ds, res, err := s.syncer.Sync(r.Context(), userFrom(r).ID, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, map[string]any{
		"syncResult": res,
		"dataSource": map[string]any{
			"id":       ds.ID,
			"status":   ds.Status,
			"lastSync": ds.LastSync,
			"nextSync": ds.NextSync,
		},
	})
}

// validateSchedule checks frequency and time only when the schedule is
// enabled; a disabled schedule never fires, so its fields may be empty.
func validateSchedule(sched models.Schedule) error {
	if !sched.Enabled {
		return nil
	}
	switch sched.Frequency {
	case models.FrequencyDaily, models.FrequencyWeekly, models.FrequencyMonthly:
	default:
		return ecoerrors.Newf(ecoerrors.ErrorTypeValidation, "invalid schedule frequency %q", sched.Frequency)
	}
	return schedule.ValidateTimeOfDay(sched.Time)
}
