package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ecochain/ecochain/pkg/ecoerrors"
	"github.com/ecochain/ecochain/pkg/models"
)

// Memory is the process-lifetime in-memory Store. Mutations are atomic per
// logical step; there is no durability and no cross-step transactionality.
type Memory struct {
	mu      sync.RWMutex
	sources map[string]*models.DataSource
	records map[string]*models.EmissionRecord
	jobs    map[string]*models.ImportJob
	nodes   map[string]*models.EcoNode
	assets  map[string]*models.CarbonAsset
	users   map[string]*models.User // keyed by bearer token
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		sources: make(map[string]*models.DataSource),
		records: make(map[string]*models.EmissionRecord),
		jobs:    make(map[string]*models.ImportJob),
		nodes:   make(map[string]*models.EcoNode),
		assets:  make(map[string]*models.CarbonAsset),
		users:   make(map[string]*models.User),
	}
}

// SeedDemo adds the two demo users with well-known dev tokens.
func (m *Memory) SeedDemo(ctx context.Context) error {
	now := time.Now()
	admin := &models.User{ID: uuid.NewString(), Email: "admin@example.com", Name: "Admin User", Company: "EcoChain Inc", Role: "admin", CreatedAt: now}
	user := &models.User{ID: uuid.NewString(), Email: "user@example.com", Name: "Regular User", Company: "GreenTech Corp", Role: "user", CreatedAt: now}
	if err := m.Users().Insert(ctx, admin, "dev-admin-token"); err != nil {
		return err
	}
	return m.Users().Insert(ctx, user, "dev-user-token")
}

// DataSources implements Store.
func (m *Memory) DataSources() DataSourceStore { return (*memSources)(m) }

// Records implements Store.
func (m *Memory) Records() RecordStore { return (*memRecords)(m) }

// ImportJobs implements Store.
func (m *Memory) ImportJobs() ImportJobStore { return (*memJobs)(m) }

// Nodes implements Store.
func (m *Memory) Nodes() NodeStore { return (*memNodes)(m) }

// Assets implements Store.
func (m *Memory) Assets() AssetStore { return (*memAssets)(m) }

// Users implements Store.
func (m *Memory) Users() UserStore { return (*memUsers)(m) }

type memSources Memory

func (s *memSources) Insert(_ context.Context, ds *models.DataSource) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sources[ds.ID]; exists {
		return ecoerrors.Newf(ecoerrors.ErrorTypeConflict, "data source %s already exists", ds.ID)
	}
	s.sources[ds.ID] = ds.Clone()
	return nil
}

func (s *memSources) List(_ context.Context, ownerID string) ([]*models.DataSource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.DataSource, 0)
	for _, ds := range s.sources {
		if ds.OwnerID == ownerID {
			out = append(out, ds.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *memSources) ListDue(_ context.Context, now time.Time) ([]*models.DataSource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.DataSource, 0)
	for _, ds := range s.sources {
		if !ds.Schedule.Enabled || ds.NextSync == nil {
			continue
		}
		if ds.NextSync.After(now) {
			continue
		}
		out = append(out, ds.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NextSync.Before(*out[j].NextSync) })
	return out, nil
}

func (s *memSources) Get(_ context.Context, ownerID, id string) (*models.DataSource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ds, ok := s.sources[id]
	if !ok || ds.OwnerID != ownerID {
		return nil, ecoerrors.New(ecoerrors.ErrorTypeNotFound, "data source not found")
	}
	return ds.Clone(), nil
}

func (s *memSources) Update(_ context.Context, ds *models.DataSource) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.sources[ds.ID]
	if !ok || existing.OwnerID != ds.OwnerID {
		return ecoerrors.New(ecoerrors.ErrorTypeNotFound, "data source not found")
	}
	s.sources[ds.ID] = ds.Clone()
	return nil
}

func (s *memSources) Delete(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ds, ok := s.sources[id]
	if !ok || ds.OwnerID != ownerID {
		return ecoerrors.New(ecoerrors.ErrorTypeNotFound, "data source not found")
	}
	delete(s.sources, id)
	return nil
}

type memRecords Memory

func (s *memRecords) Insert(_ context.Context, rec *models.EmissionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[rec.ID]; exists {
		return ecoerrors.Newf(ecoerrors.ErrorTypeConflict, "record %s already exists", rec.ID)
	}
	s.records[rec.ID] = rec.Clone()
	return nil
}

func (s *memRecords) List(_ context.Context, ownerID string, filter RecordFilter) ([]*models.EmissionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.EmissionRecord, 0)
	for _, rec := range s.records {
		if rec.OwnerID != ownerID {
			continue
		}
		if filter.From != nil && rec.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && rec.Date.After(*filter.To) {
			continue
		}
		if filter.Scope != 0 && rec.Scope != filter.Scope {
			continue
		}
		if filter.Source != "" && rec.Source != filter.Source {
			continue
		}
		out = append(out, rec.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *memRecords) Get(_ context.Context, ownerID, id string) (*models.EmissionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok || rec.OwnerID != ownerID {
		return nil, ecoerrors.New(ecoerrors.ErrorTypeNotFound, "record not found")
	}
	return rec.Clone(), nil
}

func (s *memRecords) Delete(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok || rec.OwnerID != ownerID {
		return ecoerrors.New(ecoerrors.ErrorTypeNotFound, "record not found")
	}
	delete(s.records, id)
	return nil
}

type memJobs Memory

func (s *memJobs) Insert(_ context.Context, job *models.ImportJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[job.ID]; exists {
		return ecoerrors.Newf(ecoerrors.ErrorTypeConflict, "import job %s already exists", job.ID)
	}
	s.jobs[job.ID] = job.Clone()
	return nil
}

func (s *memJobs) List(_ context.Context, ownerID string) ([]*models.ImportJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.ImportJob, 0)
	for _, job := range s.jobs {
		if job.OwnerID == ownerID {
			out = append(out, job.Clone())
		}
	}
	// Newest first, matching the UI's job history view.
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memJobs) Get(_ context.Context, ownerID, id string) (*models.ImportJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok || job.OwnerID != ownerID {
		return nil, ecoerrors.New(ecoerrors.ErrorTypeNotFound, "import job not found")
	}
	return job.Clone(), nil
}

func (s *memJobs) Update(_ context.Context, job *models.ImportJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.jobs[job.ID]
	if !ok || existing.OwnerID != job.OwnerID {
		return ecoerrors.New(ecoerrors.ErrorTypeNotFound, "import job not found")
	}
	s.jobs[job.ID] = job.Clone()
	return nil
}

type memNodes Memory

func (s *memNodes) Insert(_ context.Context, node *models.EcoNode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.nodes[node.ID]; exists {
		return ecoerrors.Newf(ecoerrors.ErrorTypeConflict, "node %s already exists", node.ID)
	}
	s.nodes[node.ID] = node.Clone()
	return nil
}

func (s *memNodes) List(_ context.Context, ownerID string) ([]*models.EcoNode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.EcoNode, 0)
	for _, node := range s.nodes {
		if node.OwnerID == ownerID {
			out = append(out, node.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *memNodes) Get(_ context.Context, ownerID, id string) (*models.EcoNode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	node, ok := s.nodes[id]
	if !ok || node.OwnerID != ownerID {
		return nil, ecoerrors.New(ecoerrors.ErrorTypeNotFound, "node not found")
	}
	return node.Clone(), nil
}

func (s *memNodes) Update(_ context.Context, node *models.EcoNode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.nodes[node.ID]
	if !ok || existing.OwnerID != node.OwnerID {
		return ecoerrors.New(ecoerrors.ErrorTypeNotFound, "node not found")
	}
	s.nodes[node.ID] = node.Clone()
	return nil
}

func (s *memNodes) Delete(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	node, ok := s.nodes[id]
	if !ok || node.OwnerID != ownerID {
		return ecoerrors.New(ecoerrors.ErrorTypeNotFound, "node not found")
	}
	delete(s.nodes, id)
	return nil
}

type memAssets Memory

func (s *memAssets) Insert(_ context.Context, asset *models.CarbonAsset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.assets[asset.ID]; exists {
		return ecoerrors.Newf(ecoerrors.ErrorTypeConflict, "asset %s already exists", asset.ID)
	}
	s.assets[asset.ID] = asset.Clone()
	return nil
}

func (s *memAssets) List(_ context.Context, ownerID string) ([]*models.CarbonAsset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.CarbonAsset, 0)
	for _, asset := range s.assets {
		if asset.OwnerID == ownerID {
			out = append(out, asset.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *memAssets) Get(_ context.Context, ownerID, id string) (*models.CarbonAsset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	asset, ok := s.assets[id]
	if !ok || asset.OwnerID != ownerID {
		return nil, ecoerrors.New(ecoerrors.ErrorTypeNotFound, "asset not found")
	}
	return asset.Clone(), nil
}

func (s *memAssets) Update(_ context.Context, asset *models.CarbonAsset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.assets[asset.ID]
	if !ok || existing.OwnerID != asset.OwnerID {
		return ecoerrors.New(ecoerrors.ErrorTypeNotFound, "asset not found")
	}
	s.assets[asset.ID] = asset.Clone()
	return nil
}

func (s *memAssets) Delete(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	asset, ok := s.assets[id]
	if !ok || asset.OwnerID != ownerID {
		return ecoerrors.New(ecoerrors.ErrorTypeNotFound, "asset not found")
	}
	delete(s.assets, id)
	return nil
}

type memUsers Memory

func (s *memUsers) GetByToken(_ context.Context, token string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[token]
	if !ok {
		return nil, ecoerrors.New(ecoerrors.ErrorTypeAuthentication, "unknown token")
	}
	clone := *user
	return &clone, nil
}

func (s *memUsers) Insert(_ context.Context, user *models.User, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[token]; exists {
		return ecoerrors.New(ecoerrors.ErrorTypeConflict, "token already registered")
	}
	clone := *user
	s.users[token] = &clone
	return nil
}
