package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ecochain/ecochain/pkg/ecoerrors"
	"github.com/ecochain/ecochain/pkg/models"
)

type nodeRequest struct {
	Name            *string   `json:"name"`
	Type            *string   `json:"type"`
	Connections     *[]string `json:"connections"`
	CarbonIntensity *float64  `json:"carbonIntensity"`
}

func (s *Server) handleListNodes(w http.ResponseWriter, r *http.Request) {
	nodes, err := s.store.Nodes().List(r.Context(), userFrom(r).ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, nodes)
}

func (s *Server) handleCreateNode(w http.ResponseWriter, r *http.Request) {
	var req nodeRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if req.Name == nil || *req.Name == "" {
		respondError(w, r, ecoerrors.New(ecoerrors.ErrorTypeValidation, "name is required"))
		return
	}

	now := time.Now().UTC()
	node := &models.EcoNode{
		ID:        uuid.NewString(),
		OwnerID:   userFrom(r).ID,
		Name:      *req.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Type != nil {
		node.Type = *req.Type
	}
	if req.Connections != nil {
		node.Connections = *req.Connections
	}
	if req.CarbonIntensity != nil {
		node.CarbonIntensity = *req.CarbonIntensity
	}

	if err := s.store.Nodes().Insert(r.Context(), node); err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, node)
}

func (s *Server) handleGetNode(w http.ResponseWriter, r *http.Request) {
	node, err := s.store.Nodes().Get(r.Context(), userFrom(r).ID, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, node)
}

func (s *Server) handleUpdateNode(w http.ResponseWriter, r *http.Request) {
	var req nodeRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	node, err := s.store.Nodes().Get(r.Context(), userFrom(r).ID, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	if req.Name != nil {
		node.Name = *req.Name
	}
	if req.Type != nil {
		node.Type = *req.Type
	}
	if req.Connections != nil {
		node.Connections = *req.Connections
	}
	if req.CarbonIntensity != nil {
		node.CarbonIntensity = *req.CarbonIntensity
	}
	node.UpdatedAt = time.Now().UTC()

	if err := s.store.Nodes().Update(r.Context(), node); err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, node)
}

func (s *Server) handleDeleteNode(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Nodes().Delete(r.Context(), userFrom(r).ID, chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, "Node deleted successfully")
}
