// Package mssql implements the SQL Server connector on database/sql with the
// go-mssqldb driver.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "github.com/microsoft/go-mssqldb" // registers the sqlserver driver
	"go.uber.org/zap"

	srcconfig "github.com/ecochain/ecochain/pkg/connector/config"
	"github.com/ecochain/ecochain/pkg/connector/core"
	"github.com/ecochain/ecochain/pkg/connector/shared"
	"github.com/ecochain/ecochain/pkg/ecoerrors"
	"github.com/ecochain/ecochain/pkg/logger"
	"github.com/ecochain/ecochain/pkg/models"
)

// Source fetches emission records from a SQL Server database.
type Source struct {
	logger *zap.Logger
}

// New creates a SQL Server connector.
func New() *Source {
	return &Source{logger: logger.With(zap.String("connector", "mssql"))}
}

// Type implements core.Connector.
func (s *Source) Type() models.SourceType { return models.SourceTypeMSSQL }

// TestConnection dials the database and round-trips a ping.
func (s *Source) TestConnection(ctx context.Context, cfg *srcconfig.SourceConfig) error {
	db, err := s.open(ctx, cfg.SQL)
	if err != nil {
		s.logger.Warn("mssql connection test failed", zap.Error(err))
		return core.FetchError(s.Type(), err, "failed to open connection")
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		s.logger.Warn("mssql ping failed", zap.Error(err))
		return core.FetchError(s.Type(), err, "ping failed")
	}
	return nil
}

// Fetch runs the configured query verbatim and returns the full row set.
func (s *Source) Fetch(ctx context.Context, cfg *srcconfig.SourceConfig) ([]core.RawRecord, error) {
	if cfg.SQL.Query == "" {
		return nil, ecoerrors.New(ecoerrors.ErrorTypeConfig, "query is required for mssql sync")
	}

	db, err := s.open(ctx, cfg.SQL)
	if err != nil {
		return nil, core.FetchError(s.Type(), err, "failed to open connection")
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, cfg.SQL.Query)
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

func (s *Source) open(ctx context.Context, cfg *srcconfig.SQLConfig) (*sql.DB, error) {
	timeout := core.ConnectTimeout(ctx, 30*time.Second)

	q := url.Values{}
	q.Set("database", cfg.Database)
	q.Set("dial timeout", fmt.Sprintf("%d", int(timeout.Seconds())+1))
	dsn := url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(cfg.Username, cfg.Password),
		Host:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		RawQuery: q.Encode(),
	}

	return sql.Open("sqlserver", dsn.String())
}
