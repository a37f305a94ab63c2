// Package mysql implements the MySQL connector on database/sql with the
// go-sql-driver driver.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	srcconfig "github.com/ecochain/ecochain/pkg/connector/config"
	"github.com/ecochain/ecochain/pkg/connector/core"
	"github.com/ecochain/ecochain/pkg/connector/shared"
	"github.com/ecochain/ecochain/pkg/ecoerrors"
	"github.com/ecochain/ecochain/pkg/logger"
	"github.com/ecochain/ecochain/pkg/models"
)

// Source fetches emission records from a MySQL database.
type Source struct {
	logger *zap.Logger
}

// New creates a MySQL connector.
func New() *Source {
	return &Source{logger: logger.With(zap.String("connector", "mysql"))}
}

// Type implements core.Connector.
func (s *Source) Type() models.SourceType { return models.SourceTypeMySQL }

// TestConnection dials the database and round-trips a ping.
func (s *Source) TestConnection(ctx context.Context, cfg *srcconfig.SourceConfig) error {
	db, err := s.open(ctx, cfg.SQL)
	if err != nil {
		s.logger.Warn("mysql connection test failed", zap.Error(err))
		return core.FetchError(s.Type(), err, "failed to open connection")
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		s.logger.Warn("mysql ping failed", zap.Error(err))
		return core.FetchError(s.Type(), err, "ping failed")
	}
	return nil
}

// Fetch runs the configured query verbatim and returns the full row set.
func (s *Source) Fetch(ctx context.Context, cfg *srcconfig.SourceConfig) ([]core.RawRecord, error) {
	if cfg.SQL.Query == "" {
		return nil, ecoerrors.New(ecoerrors.ErrorTypeConfig, "query is required for mysql sync")
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

	mcfg := gomysql.NewConfig()
	mcfg.User = cfg.Username
	mcfg.Passwd = cfg.Password
	mcfg.Net = "tcp"
	mcfg.Addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	mcfg.DBName = cfg.Database
	mcfg.Timeout = timeout
	mcfg.ReadTimeout = timeout
	mcfg.ParseTime = true

	return sql.Open("mysql", mcfg.FormatDSN())
}
