package models

import "time"

// EmissionRecord is the canonical, normalized emission entry. Every import
// path (manual entry, file import, data-source sync) converges to this shape.
//
// TotalCO2e is always derived as Value * EmissionFactor by the importer;
// caller-supplied totals are ignored.
type EmissionRecord struct {
	ID             string    `json:"id"`
	OwnerID        string    `json:"userId"`
	Date           time.Time `json:"date"`
	Source         string    `json:"source"`
	Value          float64   `json:"value"`
	Unit           string    `json:"unit"`
	Scope          int       `json:"scope"`
	EmissionFactor float64   `json:"emissionFactor"`
	TotalCO2e      float64   `json:"totalCo2e"`
	Notes          string    `json:"notes"`
	Tags           []string  `json:"tags"`

	// Provenance: which path produced this record and the id of the
	// originating data source or import job.
	ImportedFrom string `json:"importedFrom,omitempty"`
	ImportID     string `json:"importId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a copy safe to hand out of the store.
func (r *EmissionRecord) Clone() *EmissionRecord {
	out := *r
	if r.Tags != nil {
		out.Tags = append([]string(nil), r.Tags...)
	}
	return &out
}
