// Package connector holds the data-source connector framework.
//
// Sub-packages:
//
//   - core: the Connector interface every source type implements
//     (TestConnection + Fetch) and the shared error helpers.
//
//   - config: the typed per-source configuration variants, decoded and
//     validated from the raw parameter bag a data source stores.
//
//   - registry: the factory table keyed by source type. Connector packages
//     self-register from init(); the sync orchestrator dispatches through
//     the registry instead of switching on type strings.
//
//   - sources: one package per supported system — api (HTTP), postgres,
//     mysql, mongodb, mssql and snowflake. Each connector opens its own
//     connection per call and honors the caller's context deadline.
//
//   - shared: helpers common to the database/sql-backed connectors.
//
// Adding a source type means adding a sources sub-package with an init()
// registration, a config variant, and a blank import in cmd/ecochain.
package connector
