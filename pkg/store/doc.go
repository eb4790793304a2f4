// Package store persists job records.
//
// It provides the Storage contract, a gorm-backed LocalStore used as the
// on-device mirror, a RemoteStore speaking CRUD-over-HTTP to the hosted
// jobs table, and a Client that probes remote reachability once at startup
// and degrades to the mirror when the remote is unavailable.
package store
