package models

import "time"

// User is the authenticated owner of records, data sources and jobs.
// Credential issuance lives outside this service; the API layer only
// resolves an already-issued bearer token to a user.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Company   string    `json:"company"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// EcoNode is one node in the eco-chain supply graph.
type EcoNode struct {
	ID              string    `json:"id"`
	OwnerID         string    `json:"userId"`
	Name            string    `json:"name"`
	Type            string    `json:"type"`
	Connections     []string  `json:"connections"`
	CarbonIntensity float64   `json:"carbonIntensity"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Clone returns a copy safe to hand out of the store.
func (n *EcoNode) Clone() *EcoNode {
	out := *n
	if n.Connections != nil {
		out.Connections = append([]string(nil), n.Connections...)
	}
	return &out
}

// CarbonAsset is a mock tradeable carbon asset tied to a project.
type CarbonAsset struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"userId"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Quantity  float64   `json:"quantity"`
	Price     float64   `json:"price"`
	ProjectID string    `json:"projectId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a copy safe to hand out of the store.
func (a *CarbonAsset) Clone() *CarbonAsset {
	out := *a
	return &out
}
