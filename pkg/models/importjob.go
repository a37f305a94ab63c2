package models

import "time"

// ImportType is the file format of a bulk import.
type ImportType string

const (
	ImportTypeCSV  ImportType = "csv"
	ImportTypeJSON ImportType = "json"
)

// ValidImportType reports whether t is a supported import format.
func ValidImportType(t ImportType) bool {
	return t == ImportTypeCSV || t == ImportTypeJSON
}

// ImportStatus is the lifecycle state of an import job.
type ImportStatus string

const (
	ImportPending    ImportStatus = "pending"
	ImportProcessing ImportStatus = "processing"
	ImportCompleted  ImportStatus = "completed"
	ImportFailed     ImportStatus = "failed"
)

// ImportJob tracks one bulk file import of emission records.
type ImportJob struct {
	ID              string       `json:"id"`
	OwnerID         string       `json:"userId"`
	Type            ImportType   `json:"type"`
	Filename        string       `json:"filename"`
	Status          ImportStatus `json:"status"`
	Progress        int          `json:"progress"`
	TotalRecords    int          `json:"totalRecords"`
	ImportedRecords int          `json:"importedRecords"`
	FailedRecords   int          `json:"failedRecords"`
	ErrorLog        string       `json:"errorLog"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}

// Clone returns a copy safe to hand out of the store.
func (j *ImportJob) Clone() *ImportJob {
	out := *j
	return &out
}
