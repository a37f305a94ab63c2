// Package config defines the typed per-source configuration for connectors.
//
// Data sources carry their parameters as a raw JSON object on the wire; this
// package is the boundary where that bag is deserialized into a closed set of
// typed variants, selected by the source type discriminant, and validated.
package config

import (
	gojson "github.com/goccy/go-json"

	"github.com/ecochain/ecochain/pkg/ecoerrors"
	"github.com/ecochain/ecochain/pkg/mapping"
	"github.com/ecochain/ecochain/pkg/models"
)

// APIConfig configures the HTTP API connector. Either APIKey (bearer) or
// Username/Password (basic) may be set for authentication.
type APIConfig struct {
	URL      string            `json:"url"`
	Method   string            `json:"method"`
	Headers  map[string]string `json:"headers"`
	Query    map[string]string `json:"query"`
	Body     any               `json:"body"`
	APIKey   string            `json:"apiKey"`
	Username string            `json:"username"`
	Password string            `json:"password"`
}

// SQLConfig configures the postgres, mysql and mssql connectors.
// Query is executed verbatim; the operator is trusted with it.
type SQLConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
	Username string `json:"username"`
	Password string `json:"password"`
	SSLMode  string `json:"sslmode"`
	Query    string `json:"query"`
}

// MongoConfig configures the mongodb connector. Filter is a MongoDB filter
// document; empty means "match everything".
type MongoConfig struct {
	URI        string         `json:"uri"`
	Database   string         `json:"database"`
	Collection string         `json:"collection"`
	Filter     map[string]any `json:"query"`
}

// SnowflakeConfig configures the snowflake connector.
type SnowflakeConfig struct {
	Account   string `json:"account"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	Warehouse string `json:"warehouse"`
	Database  string `json:"database"`
	Schema    string `json:"schema"`
	Query     string `json:"query"`
}

// SourceConfig is the tagged union over all connector configurations.
// Exactly one variant matching Type is non-nil after Decode.
type SourceConfig struct {
	Type    models.SourceType
	Mapping mapping.FieldMapping

	API       *APIConfig
	SQL       *SQLConfig
	Mongo     *MongoConfig
	Snowflake *SnowflakeConfig
}

// Decode deserializes and validates a raw configuration bag for the given
// source type. The raw map is left untouched.
func Decode(typ models.SourceType, raw map[string]any) (*SourceConfig, error) {
	if raw == nil {
		return nil, ecoerrors.New(ecoerrors.ErrorTypeConfig, "configuration is required")
	}

	data, err := gojson.Marshal(raw)
	if err != nil {
		return nil, ecoerrors.Wrap(err, ecoerrors.ErrorTypeConfig, "configuration is not a valid JSON object")
	}

	// The field mapping is a shared key across all variants.
	var common struct {
		Mapping mapping.FieldMapping `json:"mapping"`
	}
	if err := gojson.Unmarshal(data, &common); err != nil {
		return nil, ecoerrors.Wrap(err, ecoerrors.ErrorTypeConfig, "invalid field mapping")
	}

	cfg := &SourceConfig{Type: typ, Mapping: common.Mapping}

	switch typ {
	case models.SourceTypeAPI:
		var api APIConfig
		if err := gojson.Unmarshal(data, &api); err != nil {
			return nil, ecoerrors.Wrap(err, ecoerrors.ErrorTypeConfig, "invalid api configuration")
		}
		if api.URL == "" {
			return nil, ecoerrors.New(ecoerrors.ErrorTypeConfig, "api url is required")
		}
		if api.Method == "" {
			api.Method = "GET"
		}
		cfg.API = &api

	case models.SourceTypePostgres, models.SourceTypeMySQL, models.SourceTypeMSSQL:
		var sql SQLConfig
		if err := gojson.Unmarshal(data, &sql); err != nil {
			return nil, ecoerrors.Wrap(err, ecoerrors.ErrorTypeConfig, "invalid database configuration")
		}
		if sql.Host == "" {
			return nil, ecoerrors.New(ecoerrors.ErrorTypeConfig, "database host is required")
		}
		if sql.Database == "" {
			return nil, ecoerrors.New(ecoerrors.ErrorTypeConfig, "database name is required")
		}
		if sql.Port == 0 {
			sql.Port = defaultPort(typ)
		}
		cfg.SQL = &sql

	case models.SourceTypeMongoDB:
		var mongo MongoConfig
		if err := gojson.Unmarshal(data, &mongo); err != nil {
			return nil, ecoerrors.Wrap(err, ecoerrors.ErrorTypeConfig, "invalid mongodb configuration")
		}
		if mongo.URI == "" {
			return nil, ecoerrors.New(ecoerrors.ErrorTypeConfig, "mongodb uri is required")
		}
		cfg.Mongo = &mongo

	case models.SourceTypeSnowflake:
		var sf SnowflakeConfig
		if err := gojson.Unmarshal(data, &sf); err != nil {
			return nil, ecoerrors.Wrap(err, ecoerrors.ErrorTypeConfig, "invalid snowflake configuration")
		}
		if sf.Account == "" {
			return nil, ecoerrors.New(ecoerrors.ErrorTypeConfig, "snowflake account is required")
		}
		if sf.Username == "" {
			return nil, ecoerrors.New(ecoerrors.ErrorTypeConfig, "snowflake username is required")
		}
		cfg.Snowflake = &sf

	default:
		return nil, ecoerrors.Newf(ecoerrors.ErrorTypeConfig, "unsupported data source type %q", typ)
	}

	return cfg, nil
}

func defaultPort(typ models.SourceType) int {
	switch typ {
	case models.SourceTypePostgres:
		return 5432
	case models.SourceTypeMySQL:
		return 3306
	case models.SourceTypeMSSQL:
		return 1433
	}
	return 0
}

// secretKeys are configuration fields that must never leave the server.
var secretKeys = []string{"password", "apiKey", "token"}

// Redact returns a copy of a raw configuration bag with secret-bearing
// fields masked. Used by every single-source read path.
func Redact(raw map[string]any) map[string]any {
	if raw == nil {
		return nil
	}
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		out[k] = v
	}
	for _, key := range secretKeys {
		if _, ok := out[key]; ok {
			out[key] = "******"
		}
	}
	return out
}
