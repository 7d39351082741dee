// Package internal holds the event manager server internals.
//
// The internal tree is organized by responsibility:
// - api: HTTP handlers, middleware, pagination, and routing
// - domain: business logic and domain models
// - storage: database access and repositories (pgx + Postgres)
// - auth, config, metrics: shared infrastructure
//
// Code in internal/ is not meant for external import.
package internal
