// Package core defines the contract every source connector implements.
package core

import (
	"context"
	"errors"
	"time"

	srcconfig "github.com/ecochain/ecochain/pkg/connector/config"
	"github.com/ecochain/ecochain/pkg/ecoerrors"
	"github.com/ecochain/ecochain/pkg/models"
)

// RawRecord is one source-native record: a loosely typed key/value structure
// as returned by the external system, before field mapping.
type RawRecord = map[string]any

// Connector knows how to verify reachability of one kind of external system
// and how to execute its configured fetch.
//
// TestConnection returns a descriptive error for ordinary connectivity
// failures; callers surface it as {connected:false, message}, never as a
// server fault. Fetch returns the full result set of the configured query or
// request; failures carry an ecoerrors category and the connector type.
//
// Both calls respect the deadline on ctx; connectors must never block past
// it on a hung remote.
type Connector interface {
	Type() models.SourceType
	TestConnection(ctx context.Context, cfg *srcconfig.SourceConfig) error
	Fetch(ctx context.Context, cfg *srcconfig.SourceConfig) ([]RawRecord, error)
}

// ConnectTimeout derives a dial timeout from the context deadline, falling
// back when none is set. Drivers that take an explicit timeout (rather than
// honoring ctx) use this so a hung remote never outlives the caller's bound.
func ConnectTimeout(ctx context.Context, fallback time.Duration) time.Duration {
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining > 0 {
			return remaining
		}
	}
	return fallback
}

// FetchError categorizes a connector failure, distinguishing timeouts from
// plain connectivity errors, and stamps the connector type on it.
func FetchError(typ models.SourceType, err error, message string) error {
	errType := ecoerrors.ErrorTypeConnection
	if errors.Is(err, context.DeadlineExceeded) {
		errType = ecoerrors.ErrorTypeTimeout
	}
	return ecoerrors.Wrap(err, errType, message).WithDetail("connector", string(typ))
}

// QueryError stamps a query execution failure with the connector type.
func QueryError(typ models.SourceType, err error, message string) error {
	return ecoerrors.Wrap(err, ecoerrors.ErrorTypeQuery, message).WithDetail("connector", string(typ))
}
