// Package postgres implements the PostgreSQL connector on pgx.
package postgres

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	srcconfig "github.com/ecochain/ecochain/pkg/connector/config"
	"github.com/ecochain/ecochain/pkg/connector/core"
	"github.com/ecochain/ecochain/pkg/ecoerrors"
	"github.com/ecochain/ecochain/pkg/logger"
	"github.com/ecochain/ecochain/pkg/models"
)

// Source fetches emission records from a PostgreSQL database. Each call
// opens its own connection; syncs are infrequent enough that pooling across
// them buys nothing.
type Source struct {
	logger *zap.Logger
}

// New creates a PostgreSQL connector.
func New() *Source {
	return &Source{logger: logger.With(zap.String("connector", "postgres"))}
}

// Type implements core.Connector.
func (s *Source) Type() models.SourceType { return models.SourceTypePostgres }

// TestConnection dials the database and round-trips a ping.
func (s *Source) TestConnection(ctx context.Context, cfg *srcconfig.SourceConfig) error {
	conn, err := s.connect(ctx, cfg.SQL)
	if err != nil {
		s.logger.Warn("postgres connection test failed", zap.Error(err))
		return core.FetchError(s.Type(), err, "failed to connect")
	}
	defer conn.Close(ctx)

	if err := conn.Ping(ctx); err != nil {
		s.logger.Warn("postgres ping failed", zap.Error(err))
		return core.FetchError(s.Type(), err, "ping failed")
	}
	return nil
}

// Fetch runs the configured query verbatim and returns the full row set.
func (s *Source) Fetch(ctx context.Context, cfg *srcconfig.SourceConfig) ([]core.RawRecord, error) {
	if cfg.SQL.Query == "" {
		return nil, ecoerrors.New(ecoerrors.ErrorTypeConfig, "query is required for postgres sync")
	}

	conn, err := s.connect(ctx, cfg.SQL)
	if err != nil {
		return nil, core.FetchError(s.Type(), err, "failed to connect")
	}
	defer conn.Close(ctx)

	rows, err := conn.Query(ctx, cfg.SQL.Query)
	if err != nil {
		return nil, core.QueryError(s.Type(), err, "query failed")
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	records := make([]core.RawRecord, 0)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, core.QueryError(s.Type(), err, "failed to read row")
		}
		record := make(core.RawRecord, len(fields))
		for i, fd := range fields {
			record[fd.Name] = values[i]
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, core.QueryError(s.Type(), err, "row iteration failed")
	}
	return records, nil
}

func (s *Source) connect(ctx context.Context, cfg *srcconfig.SQLConfig) (*pgx.Conn, error) {
	timeout := core.ConnectTimeout(ctx, 30*time.Second)

	q := url.Values{}
	q.Set("connect_timeout", fmt.Sprintf("%d", int(timeout.Seconds())+1))
	if cfg.SSLMode != "" {
		q.Set("sslmode", cfg.SSLMode)
	}
	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.Username, cfg.Password),
		Host:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Path:     "/" + cfg.Database,
		RawQuery: q.Encode(),
	}

	return pgx.Connect(ctx, dsn.String())
}
