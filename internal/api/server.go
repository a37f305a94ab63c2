// Package api exposes the EcoChain backend over HTTP: data source
// integrations, emission records, bulk imports and the supporting dashboard
// resources, behind bearer-token authentication.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ecochain/ecochain/internal/syncer"
	"github.com/ecochain/ecochain/pkg/importer"
	"github.com/ecochain/ecochain/pkg/logger"
	"github.com/ecochain/ecochain/pkg/store"
)

// Server routes HTTP traffic to the store and the sync orchestrator.
type Server struct {
	store    store.Store
	syncer   *syncer.Syncer
	importer *importer.Importer
	logger   *zap.Logger
	router   chi.Router
}

// NewServer wires the full route tree.
func NewServer(st store.Store, sy *syncer.Syncer) *Server {
	s := &Server{
		store:    st,
		syncer:   sy,
		importer: importer.New(st.Records()),
		logger:   logger.With(zap.String("component", "api")),
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/api/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(authenticate(st.Users()))

		r.Route("/integrations", func(r chi.Router) {
			r.Get("/", s.handleListIntegrations)
			r.Post("/", s.handleCreateIntegration)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetIntegration)
				r.Put("/", s.handleUpdateIntegration)
				r.Delete("/", s.handleDeleteIntegration)
				r.Post("/test", s.handleTestIntegration)
				r.Post("/sync", s.handleSyncIntegration)
			})
		})

		r.Route("/records", func(r chi.Router) {
			r.Get("/", s.handleListRecords)
			r.Post("/", s.handleCreateRecord)
			r.Get("/summary", s.handleRecordSummary)
			r.Delete("/{id}", s.handleDeleteRecord)
		})

		r.Route("/import", func(r chi.Router) {
			r.Get("/", s.handleListImports)
			r.Post("/", s.handleCreateImport)
			r.Get("/templates/{type}", s.handleImportTemplate)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetImport)
				r.Post("/upload", s.handleUploadImport)
			})
		})

		r.Route("/nodes", func(r chi.Router) {
			r.Get("/", s.handleListNodes)
			r.Post("/", s.handleCreateNode)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetNode)
				r.Put("/", s.handleUpdateNode)
				r.Delete("/", s.handleDeleteNode)
			})
		})

		r.Route("/assets", func(r chi.Router) {
			r.Get("/", s.handleListAssets)
			r.Post("/", s.handleCreateAsset)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetAsset)
				r.Put("/", s.handleUpdateAsset)
				r.Delete("/", s.handleDeleteAsset)
			})
		})
	})

	s.router = r
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondData(w, http.StatusOK, map[string]string{"status": "ok"})
}
