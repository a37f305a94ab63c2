// Package snowflake implements the Snowflake connector on database/sql with
// the gosnowflake driver.
package snowflake

import (
	"context"
	"database/sql"
	"time"

	sf "github.com/snowflakedb/gosnowflake"
	"go.uber.org/zap"

	srcconfig "github.com/ecochain/ecochain/pkg/connector/config"
	"github.com/ecochain/ecochain/pkg/connector/core"
	"github.com/ecochain/ecochain/pkg/connector/shared"
	"github.com/ecochain/ecochain/pkg/ecoerrors"
	"github.com/ecochain/ecochain/pkg/logger"
	"github.com/ecochain/ecochain/pkg/models"
)

// Source fetches emission records from a Snowflake warehouse.
type Source struct {
	logger *zap.Logger
}

// New creates a Snowflake connector.
func New() *Source {
	return &Source{logger: logger.With(zap.String("connector", "snowflake"))}
}

// Type implements core.Connector.
func (s *Source) Type() models.SourceType { return models.SourceTypeSnowflake }

// TestConnection dials the warehouse and round-trips a ping.
func (s *Source) TestConnection(ctx context.Context, cfg *srcconfig.SourceConfig) error {
	db, err := s.open(ctx, cfg.Snowflake)
	if err != nil {
		s.logger.Warn("snowflake connection test failed", zap.Error(err))
		return core.FetchError(s.Type(), err, "failed to open connection")
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		s.logger.Warn("snowflake ping failed", zap.Error(err))
		return core.FetchError(s.Type(), err, "ping failed")
	}
	return nil
}

// Fetch runs the configured query verbatim and returns the full row set.
func (s *Source) Fetch(ctx context.Context, cfg *srcconfig.SourceConfig) ([]core.RawRecord, error) {
	if cfg.Snowflake.Query == "" {
		return nil, ecoerrors.New(ecoerrors.ErrorTypeConfig, "query is required for snowflake sync")
	}

	db, err := s.open(ctx, cfg.Snowflake)
	if err != nil {
		return nil, core.FetchError(s.Type(), err, "failed to open connection")
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, cfg.Snowflake.Query)
	if err != nil {
		return nil, core.QueryError(s.Type(), err, "query failed")
	}
	defer rows.Close()

	records, err := shared.RowsToRecords(rows)
	if err != nil {
		return nil, core.QueryError(s.Type(), err, "failed to read rows")
	}
	return records, nil
}

func (s *Source) open(ctx context.Context, cfg *srcconfig.SnowflakeConfig) (*sql.DB, error) {
	timeout := core.ConnectTimeout(ctx, 60*time.Second)

	dsn, err := sf.DSN(&sf.Config{
		Account:      cfg.Account,
		User:         cfg.Username,
		Password:     cfg.Password,
		Database:     cfg.Database,
		Schema:       cfg.Schema,
		Warehouse:    cfg.Warehouse,
		LoginTimeout: timeout,
	})
	if err != nil {
		return nil, ecoerrors.Wrap(err, ecoerrors.ErrorTypeConfig, "invalid snowflake configuration")
	}

	return sql.Open("snowflake", dsn)
}
