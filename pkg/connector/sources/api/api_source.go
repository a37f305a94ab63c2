// Package api implements the HTTP API connector.
package api

import (
	"bytes"
	"context"
	"io"
	"net/http"

	gojson "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/ecochain/ecochain/pkg/clients"
	srcconfig "github.com/ecochain/ecochain/pkg/connector/config"
	"github.com/ecochain/ecochain/pkg/connector/core"
	"github.com/ecochain/ecochain/pkg/ecoerrors"
	"github.com/ecochain/ecochain/pkg/logger"
	"github.com/ecochain/ecochain/pkg/models"
)

// Source fetches emission records from a configured HTTP endpoint.
type Source struct {
	client *clients.HTTPClient
	logger *zap.Logger
}

// New creates an API connector using the shared HTTP client defaults.
func New() *Source {
	return &Source{
		client: clients.NewHTTPClient(nil),
		logger: logger.With(zap.String("connector", "api")),
	}
}

// Type implements core.Connector.
func (s *Source) Type() models.SourceType { return models.SourceTypeAPI }

// TestConnection issues the configured request and treats any 2xx status as
// reachable. The response body is discarded.
func (s *Source) TestConnection(ctx context.Context, cfg *srcconfig.SourceConfig) error {
	req, err := s.buildRequest(ctx, cfg.API)
	if err != nil {
		return err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("api connection test failed", zap.Error(err))
		return core.FetchError(s.Type(), err, "request failed")
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ecoerrors.Newf(ecoerrors.ErrorTypeConnection, "unexpected status %d", resp.StatusCode).
			WithDetail("connector", string(s.Type()))
	}
	return nil
}

// Fetch executes the configured request and coerces the response body to a
// list of raw records. A single JSON object is wrapped in a one-element list.
func (s *Source) Fetch(ctx context.Context, cfg *srcconfig.SourceConfig) ([]core.RawRecord, error) {
	req, err := s.buildRequest(ctx, cfg.API)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, core.FetchError(s.Type(), err, "request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.FetchError(s.Type(), err, "failed to read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, ecoerrors.Newf(ecoerrors.ErrorTypeConnection, "unexpected status %d", resp.StatusCode).
			WithDetail("connector", string(s.Type()))
	}

	var payload any
	if err := gojson.Unmarshal(body, &payload); err != nil {
		return nil, ecoerrors.Wrap(err, ecoerrors.ErrorTypeData, "response body is not valid JSON").
			WithDetail("connector", string(s.Type()))
	}

	return coerceToRecords(payload), nil
}

// coerceToRecords turns a decoded JSON payload into a record list. Non-object
// list elements become empty records; the importer counts them as failed.
func coerceToRecords(payload any) []core.RawRecord {
	switch v := payload.(type) {
	case []any:
		records := make([]core.RawRecord, 0, len(v))
		for _, item := range v {
			if obj, ok := item.(map[string]any); ok {
				records = append(records, obj)
			} else {
				records = append(records, core.RawRecord{})
			}
		}
		return records
	case map[string]any:
		return []core.RawRecord{v}
	default:
		return []core.RawRecord{{}}
	}
}

func (s *Source) buildRequest(ctx context.Context, cfg *srcconfig.APIConfig) (*http.Request, error) {
	var body io.Reader
	if cfg.Body != nil {
		data, err := gojson.Marshal(cfg.Body)
		if err != nil {
			return nil, ecoerrors.Wrap(err, ecoerrors.ErrorTypeConfig, "request body is not serializable")
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, cfg.Method, cfg.URL, body)
	if err != nil {
		return nil, ecoerrors.Wrap(err, ecoerrors.ErrorTypeConfig, "invalid api request")
	}

	if len(cfg.Query) > 0 {
		q := req.URL.Query()
		for key, value := range cfg.Query {
			q.Set(key, value)
		}
		req.URL.RawQuery = q.Encode()
	}

	for key, value := range cfg.Headers {
		req.Header.Set(key, value)
	}
	if cfg.Body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	// Bearer token wins over basic auth when both are configured.
	if cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	} else if cfg.Username != "" && cfg.Password != "" {
		req.SetBasicAuth(cfg.Username, cfg.Password)
	}

	return req, nil
}
