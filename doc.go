// Package ecochain is a carbon-accounting backend.
//
// Users log emissions activity as canonical emission records, bulk-import
// them from CSV/JSON files, and configure external data-source integrations
// (HTTP APIs and databases) that are synced on demand or on a schedule. Every
// import path converges on the same normalization rules, so a record looks
// the same whether it was typed in, uploaded, or pulled from a warehouse.
//
// The layout follows the usual split:
//
//   - cmd/ecochain: the server binary (cobra).
//   - internal/api: the HTTP surface (chi) and its middleware.
//   - internal/syncer: the sync orchestrator and the background scheduler.
//   - pkg/connector: one connector per external system type, self-registered
//     in a lookup registry.
//   - pkg/importer, pkg/mapping, pkg/schedule: record normalization, field
//     mapping and sync scheduling.
//   - pkg/store: the owner-scoped persistence capability.
package ecochain
