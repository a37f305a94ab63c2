// Package mongodb implements the MongoDB connector on the official driver.
package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	srcconfig "github.com/ecochain/ecochain/pkg/connector/config"
	"github.com/ecochain/ecochain/pkg/connector/core"
	"github.com/ecochain/ecochain/pkg/ecoerrors"
	"github.com/ecochain/ecochain/pkg/logger"
	"github.com/ecochain/ecochain/pkg/models"
)

// Source fetches emission records from a MongoDB collection.
type Source struct {
	logger *zap.Logger
}

// New creates a MongoDB connector.
func New() *Source {
	return &Source{logger: logger.With(zap.String("connector", "mongodb"))}
}

// Type implements core.Connector.
func (s *Source) Type() models.SourceType { return models.SourceTypeMongoDB }

// TestConnection connects and pings the deployment.
func (s *Source) TestConnection(ctx context.Context, cfg *srcconfig.SourceConfig) error {
	client, err := s.connect(ctx, cfg.Mongo)
	if err != nil {
		s.logger.Warn("mongodb connection test failed", zap.Error(err))
		return core.FetchError(s.Type(), err, "failed to connect")
	}
	defer func() { _ = client.Disconnect(context.WithoutCancel(ctx)) }()

	if err := client.Ping(ctx, nil); err != nil {
		s.logger.Warn("mongodb ping failed", zap.Error(err))
		return core.FetchError(s.Type(), err, "ping failed")
	}
	return nil
}

// Fetch runs the configured filter against the configured collection and
// returns every matching document.
func (s *Source) Fetch(ctx context.Context, cfg *srcconfig.SourceConfig) ([]core.RawRecord, error) {
	if cfg.Mongo.Collection == "" {
		return nil, ecoerrors.New(ecoerrors.ErrorTypeConfig, "collection is required for mongodb sync")
	}

	client, err := s.connect(ctx, cfg.Mongo)
	if err != nil {
		return nil, core.FetchError(s.Type(), err, "failed to connect")
	}
	defer func() { _ = client.Disconnect(context.WithoutCancel(ctx)) }()

	filter := bson.M{}
	for k, v := range cfg.Mongo.Filter {
		filter[k] = v
	}

	coll := client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection)
	cursor, err := coll.Find(ctx, filter)
	if err != nil {
		return nil, core.QueryError(s.Type(), err, "find failed")
	}

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, core.QueryError(s.Type(), err, "failed to read cursor")
	}

	records := make([]core.RawRecord, 0, len(docs))
	for _, doc := range docs {
		records = append(records, normalizeDocument(doc))
	}
	return records, nil
}

func (s *Source) connect(ctx context.Context, cfg *srcconfig.MongoConfig) (*mongo.Client, error) {
	timeout := core.ConnectTimeout(ctx, 30*time.Second)
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(timeout).
		SetConnectTimeout(timeout)
	return mongo.Connect(ctx, opts)
}

// normalizeDocument rewrites BSON container and scalar types into the plain
// JSON-ish shapes the field mapper and importer understand.
func normalizeDocument(doc bson.M) core.RawRecord {
	out := make(core.RawRecord, len(doc))
	for k, v := range doc {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case bson.M:
		return map[string]any(normalizeDocument(val))
	case bson.D:
		m := make(map[string]any, len(val))
		for _, e := range val {
			m[e.Key] = normalizeValue(e.Value)
		}
		return m
	case bson.A:
		arr := make([]any, len(val))
		for i, item := range val {
			arr[i] = normalizeValue(item)
		}
		return arr
	case primitive.ObjectID:
		return val.Hex()
	case primitive.DateTime:
		return val.Time()
	case primitive.Decimal128:
		return val.String()
	default:
		return v
	}
}
