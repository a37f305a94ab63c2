// Package store defines the persistence capability used by the EcoChain
// backend and provides a process-lifetime in-memory implementation.
//
// Every read and write is scoped by owner id: a caller can never observe
// another owner's entities. Implementations return ecoerrors categories so
// callers can distinguish not-found from infrastructure failures.
package store

import (
	"context"
	"time"

	"github.com/ecochain/ecochain/pkg/models"
)

// RecordFilter narrows a record listing. Zero values mean "no constraint".
type RecordFilter struct {
	From   *time.Time
	To     *time.Time
	Scope  int
	Source string
}

// DataSourceStore persists data source configurations.
//
// ListDue is the one cross-owner read: the background scheduler uses it to
// find sources whose NextSync has arrived, regardless of who owns them.
type DataSourceStore interface {
	Insert(ctx context.Context, ds *models.DataSource) error
	List(ctx context.Context, ownerID string) ([]*models.DataSource, error)
	ListDue(ctx context.Context, now time.Time) ([]*models.DataSource, error)
	Get(ctx context.Context, ownerID, id string) (*models.DataSource, error)
	Update(ctx context.Context, ds *models.DataSource) error
	Delete(ctx context.Context, ownerID, id string) error
}

// RecordStore persists canonical emission records.
type RecordStore interface {
	Insert(ctx context.Context, rec *models.EmissionRecord) error
	List(ctx context.Context, ownerID string, filter RecordFilter) ([]*models.EmissionRecord, error)
	Get(ctx context.Context, ownerID, id string) (*models.EmissionRecord, error)
	Delete(ctx context.Context, ownerID, id string) error
}

// ImportJobStore persists bulk import jobs.
type ImportJobStore interface {
	Insert(ctx context.Context, job *models.ImportJob) error
	List(ctx context.Context, ownerID string) ([]*models.ImportJob, error)
	Get(ctx context.Context, ownerID, id string) (*models.ImportJob, error)
	Update(ctx context.Context, job *models.ImportJob) error
}

// NodeStore persists eco-chain nodes.
type NodeStore interface {
	Insert(ctx context.Context, node *models.EcoNode) error
	List(ctx context.Context, ownerID string) ([]*models.EcoNode, error)
	Get(ctx context.Context, ownerID, id string) (*models.EcoNode, error)
	Update(ctx context.Context, node *models.EcoNode) error
	Delete(ctx context.Context, ownerID, id string) error
}

// AssetStore persists mock carbon assets.
type AssetStore interface {
	Insert(ctx context.Context, asset *models.CarbonAsset) error
	List(ctx context.Context, ownerID string) ([]*models.CarbonAsset, error)
	Get(ctx context.Context, ownerID, id string) (*models.CarbonAsset, error)
	Update(ctx context.Context, asset *models.CarbonAsset) error
	Delete(ctx context.Context, ownerID, id string) error
}

// UserStore resolves bearer tokens to users. Token issuance happens outside
// this service.
type UserStore interface {
	GetByToken(ctx context.Context, token string) (*models.User, error)
	Insert(ctx context.Context, user *models.User, token string) error
}

// Store aggregates every repository the backend needs.
type Store interface {
	DataSources() DataSourceStore
	Records() RecordStore
	ImportJobs() ImportJobStore
	Nodes() NodeStore
	Assets() AssetStore
	Users() UserStore
}
