// Package syncer orchestrates data source synchronization: connectivity
// tests, on-demand syncs and the background schedule loop.
package syncer

import (
	"context"
	"time"

	"go.uber.org/zap"

	srcconfig "github.com/ecochain/ecochain/pkg/connector/config"
	"github.com/ecochain/ecochain/pkg/connector/registry"
	"github.com/ecochain/ecochain/pkg/ecoerrors"
	"github.com/ecochain/ecochain/pkg/importer"
	"github.com/ecochain/ecochain/pkg/logger"
	"github.com/ecochain/ecochain/pkg/mapping"
	"github.com/ecochain/ecochain/pkg/metrics"
	"github.com/ecochain/ecochain/pkg/models"
	"github.com/ecochain/ecochain/pkg/schedule"
	"github.com/ecochain/ecochain/pkg/store"
)

// Options bound the syncer's interactions with remote systems.
type Options struct {
	// TestTimeout bounds one connectivity test.
	TestTimeout time.Duration
	// SyncTimeout bounds the fetch phase of one sync.
	SyncTimeout time.Duration
	// SyncLease is how long a source may sit in the syncing state before it
	// is considered abandoned and a new sync may start.
	SyncLease time.Duration
}

func (o *Options) applyDefaults() {
	if o.TestTimeout <= 0 {
		o.TestTimeout = 5 * time.Second
	}
	if o.SyncTimeout <= 0 {
		o.SyncTimeout = 30 * time.Second
	}
	if o.SyncLease <= 0 {
		o.SyncLease = 10 * time.Minute
	}
}

// TestResult is the outcome of a connectivity test. A failed test is a
// normal result, not a server fault.
type TestResult struct {
	Connected bool   `json:"connected"`
	Message   string `json:"message"`
}

// Syncer runs syncs and connectivity tests for stored data sources.
type Syncer struct {
	store    store.Store
	registry *registry.Registry
	importer *importer.Importer
	opts     Options
	logger   *zap.Logger

	// now is swappable for tests.
	now func() time.Time
}

// New creates a syncer dispatching through the given connector registry.
func New(st store.Store, reg *registry.Registry, opts Options) *Syncer {
	opts.applyDefaults()
	return &Syncer{
		store:    st,
		registry: reg,
		importer: importer.New(st.Records()),
		opts:     opts,
		logger:   logger.With(zap.String("component", "syncer")),
		now:      time.Now,
	}
}

// TestConnection verifies that the source's remote system is reachable with
// the stored configuration. Connectivity failures come back inside the
// result; an error return means the source itself is missing or invalid.
func (s *Syncer) TestConnection(ctx context.Context, ownerID, sourceID string) (TestResult, error) {
	ds, err := s.store.DataSources().Get(ctx, ownerID, sourceID)
	if err != nil {
		return TestResult{}, err
	}

	cfg, err := srcconfig.Decode(ds.Type, ds.Config)
	if err != nil {
		return TestResult{}, err
	}
	conn, err := s.registry.Get(ds.Type)
	if err != nil {
		return TestResult{}, err
	}

	testCtx, cancel := context.WithTimeout(ctx, s.opts.TestTimeout)
	defer cancel()

	if err := conn.TestConnection(testCtx, cfg); err != nil {
		metrics.ConnectionTests.WithLabelValues(string(ds.Type), "failure").Inc()
		s.logger.Info("connection test failed",
			zap.String("sourceId", ds.ID),
			zap.String("type", string(ds.Type)),
			zap.Error(err))
		return TestResult{Connected: false, Message: err.Error()}, nil
	}

	metrics.ConnectionTests.WithLabelValues(string(ds.Type), "success").Inc()
	return TestResult{Connected: true, Message: "Connection successful"}, nil
}

// Sync fetches the source's current data, maps and imports it, and updates
// the source's status and schedule. At most one sync runs per source: a
// second request while the source is syncing is rejected with a conflict,
// unless the syncing state has outlived the lease (a crash leftover).
func (s *Syncer) Sync(ctx context.Context, ownerID, sourceID string) (*models.DataSource, models.SyncResult, error) {
	ds, err := s.store.DataSources().Get(ctx, ownerID, sourceID)
	if err != nil {
		return nil, models.SyncResult{}, err
	}

	now := s.now()
	if ds.Status == models.StatusSyncing && now.Sub(ds.UpdatedAt) < s.opts.SyncLease {
		metrics.Syncs.WithLabelValues(string(ds.Type), "rejected").Inc()
		return nil, models.SyncResult{}, ecoerrors.New(ecoerrors.ErrorTypeConflict, "sync already in progress")
	}

	cfg, err := srcconfig.Decode(ds.Type, ds.Config)
	if err != nil {
		return nil, models.SyncResult{}, err
	}
	conn, err := s.registry.Get(ds.Type)
	if err != nil {
		return nil, models.SyncResult{}, err
	}

	ds.Status = models.StatusSyncing
	ds.UpdatedAt = now
	if err := s.store.DataSources().Update(ctx, ds); err != nil {
		return nil, models.SyncResult{}, err
	}

	log := s.logger.With(
		zap.String("sourceId", ds.ID),
		zap.String("type", string(ds.Type)),
		zap.String("ownerId", ds.OwnerID))
	log.Info("sync started")
	started := now

	fetchCtx, cancel := context.WithTimeout(ctx, s.opts.SyncTimeout)
	defer cancel()

	raw, err := conn.Fetch(fetchCtx, cfg)
	if err != nil {
		return nil, models.SyncResult{}, s.fail(ctx, ds, log, err)
	}

	mapped := make([]map[string]any, len(raw))
	for i, rec := range raw {
		mapped[i] = mapping.Apply(rec, cfg.Mapping)
	}

	res, err := s.importer.ImportBatch(ctx, ownerID, importer.Provenance{
		From:     string(ds.Type),
		ImportID: ds.ID,
	}, mapped)
	if err != nil {
		return nil, models.SyncResult{}, s.fail(ctx, ds, log, err)
	}

	finished := s.now()
	ds.Status = models.StatusActive
	ds.LastSync = &finished
	ds.UpdatedAt = finished
	schedule.Apply(ds, finished)
	if err := s.store.DataSources().Update(ctx, ds); err != nil {
		return nil, models.SyncResult{}, err
	}

	metrics.Syncs.WithLabelValues(string(ds.Type), "success").Inc()
	metrics.SyncDuration.WithLabelValues(string(ds.Type)).Observe(finished.Sub(started).Seconds())
	log.Info("sync completed",
		zap.Int("totalRecords", res.Total),
		zap.Int("importedRecords", res.Imported),
		zap.Int("failedRecords", res.Failed),
		zap.Duration("duration", finished.Sub(started)))

	return ds, models.SyncResult{
		TotalRecords:    res.Total,
		ImportedRecords: res.Imported,
		FailedRecords:   res.Failed,
	}, nil
}

// fail moves the source to the error state and returns the original error.
// NextSync is recomputed here too, so a scheduled source that fails waits for
// its next slot instead of being retried every scheduler tick.
func (s *Syncer) fail(ctx context.Context, ds *models.DataSource, log *zap.Logger, cause error) error {
	metrics.Syncs.WithLabelValues(string(ds.Type), "failure").Inc()
	log.Error("sync failed", zap.Error(cause))

	now := s.now()
	ds.Status = models.StatusError
	ds.UpdatedAt = now
	schedule.Apply(ds, now)
	if err := s.store.DataSources().Update(ctx, ds); err != nil {
		log.Error("failed to record sync failure", zap.Error(err))
	}
	return cause
}
