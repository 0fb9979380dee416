// Package authorization implements role-based access control for the
// dossier workflow.
//
// Layering:
// - domain: closed role set, permission table, errors
// - application: commands/queries using explicit ports
// - ports: stable boundaries for persistence and cache
// - adapters: concrete HTTP, memory, and postgres implementations
// - transport: module-private DTOs for HTTP contracts
//
// Every workflow route is gated through CheckPermission with the identity
// carried by the X-User-Id request header; denial is the default on any
// lookup failure.
package authorization
