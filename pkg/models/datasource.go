// Package models defines the domain entities shared across the EcoChain
// backend: configured data sources, canonical emission records, import jobs
// and the supporting dashboard entities.
package models

import "time"

// SourceType identifies the kind of external system a data source points at.
type SourceType string

const (
	SourceTypeAPI       SourceType = "api"
	SourceTypePostgres  SourceType = "postgres"
	SourceTypeMySQL     SourceType = "mysql"
	SourceTypeMongoDB   SourceType = "mongodb"
	SourceTypeMSSQL     SourceType = "mssql"
	SourceTypeSnowflake SourceType = "snowflake"
)

// SourceTypes lists every supported source type, in the order they are
// reported by the connectors command and in validation messages.
var SourceTypes = []SourceType{
	SourceTypeAPI,
	SourceTypePostgres,
	SourceTypeMySQL,
	SourceTypeMongoDB,
	SourceTypeMSSQL,
	SourceTypeSnowflake,
}

// ValidSourceType reports whether t is one of the supported source types.
func ValidSourceType(t SourceType) bool {
	for _, v := range SourceTypes {
		if t == v {
			return true
		}
	}
	return false
}

// SourceStatus is the lifecycle state of a data source. Only the sync
// orchestrator moves a source in and out of StatusSyncing.
type SourceStatus string

const (
	StatusActive  SourceStatus = "active"
	StatusSyncing SourceStatus = "syncing"
	StatusError   SourceStatus = "error"
)

// SyncFrequency is how often a scheduled sync fires.
type SyncFrequency string

const (
	FrequencyDaily   SyncFrequency = "daily"
	FrequencyWeekly  SyncFrequency = "weekly"
	FrequencyMonthly SyncFrequency = "monthly"
)

// Schedule configures automatic syncs for a data source. Time is a local
// "HH:MM" time of day.
type Schedule struct {
	Enabled   bool          `json:"enabled"`
	Frequency SyncFrequency `json:"frequency"`
	Time      string        `json:"time"`
}

// DefaultSchedule returns the schedule applied when a data source is created
// without one: disabled, daily at midnight.
func DefaultSchedule() Schedule {
	return Schedule{Enabled: false, Frequency: FrequencyDaily, Time: "00:00"}
}

// DataSource is a named, typed configuration for an external system that
// emission records can be pulled from.
//
// Config is the raw, type-specific parameter bag as supplied by the caller.
// It is decoded into a typed connector configuration at the boundary
// (create/update validation, test, sync) rather than stored pre-parsed, so
// partial updates can merge keys the way the API contract requires.
//
// Invariant: NextSync is non-nil iff Schedule.Enabled is true. It is
// recomputed on every schedule change and every successful sync.
type DataSource struct {
	ID          string         `json:"id"`
	OwnerID     string         `json:"userId"`
	Name        string         `json:"name"`
	Type        SourceType     `json:"type"`
	Description string         `json:"description"`
	Config      map[string]any `json:"config,omitempty"`
	Schedule    Schedule       `json:"schedule"`
	Status      SourceStatus   `json:"status"`
	LastSync    *time.Time     `json:"lastSync"`
	NextSync    *time.Time     `json:"nextSync"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// Clone returns a deep copy so store readers never alias stored state.
func (ds *DataSource) Clone() *DataSource {
	out := *ds
	if ds.Config != nil {
		out.Config = make(map[string]any, len(ds.Config))
		for k, v := range ds.Config {
			out.Config[k] = v
		}
	}
	if ds.LastSync != nil {
		t := *ds.LastSync
		out.LastSync = &t
	}
	if ds.NextSync != nil {
		t := *ds.NextSync
		out.NextSync = &t
	}
	return &out
}

// SyncResult summarizes one sync invocation. It is returned to the caller
// and never persisted.
type SyncResult struct {
	TotalRecords    int `json:"totalRecords"`
	ImportedRecords int `json:"importedRecords"`
	FailedRecords   int `json:"failedRecords"`
}
