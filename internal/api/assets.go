package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ecochain/ecochain/pkg/ecoerrors"
	"github.com/ecochain/ecochain/pkg/models"
)

type assetRequest struct {
	Name      *string  `json:"name"`
	Type      *string  `json:"type"`
	Quantity  *float64 `json:"quantity"`
	Price     *float64 `json:"price"`
	ProjectID *string  `json:"projectId"`
}

func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := s.store.Assets().List(r.Context(), userFrom(r).ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, assets)
}

func (s *Server) handleCreateAsset(w http.ResponseWriter, r *http.Request) {
	var req assetRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if req.Name == nil || *req.Name == "" {
		respondError(w, r, ecoerrors.New(ecoerrors.ErrorTypeValidation, "name is required"))
		return
	}

	now := time.Now().UTC()
	asset := &models.CarbonAsset{
		ID:        uuid.NewString(),
		OwnerID:   userFrom(r).ID,
		Name:      *req.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Type != nil {
		asset.Type = *req.Type
	}
	if req.Quantity != nil {
		asset.Quantity = *req.Quantity
	}
	if req.Price != nil {
		asset.Price = *req.Price
	}
	if req.ProjectID != nil {
		asset.ProjectID = *req.ProjectID
	}

	if err := s.store.Assets().Insert(r.Context(), asset); err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, asset)
}

func (s *Server) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	asset, err := s.store.Assets().Get(r.Context(), userFrom(r).ID, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, asset)
}

func (s *Server) handleUpdateAsset(w http.ResponseWriter, r *http.Request) {
	var req assetRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	asset, err := s.store.Assets().Get(r.Context(), userFrom(r).ID, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	if req.Name != nil {
		asset.Name = *req.Name
	}
	if req.Type != nil {
		asset.Type = *req.Type
	}
	if req.Quantity != nil {
		asset.Quantity = *req.Quantity
	}
	if req.Price != nil {
		asset.Price = *req.Price
	}
	if req.ProjectID != nil {
		asset.ProjectID = *req.ProjectID
	}
	asset.UpdatedAt = time.Now().UTC()

	if err := s.store.Assets().Update(r.Context(), asset); err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, asset)
}

func (s *Server) handleDeleteAsset(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Assets().Delete(r.Context(), userFrom(r).ID, chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, "Asset deleted successfully")
}
