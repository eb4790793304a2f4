// Package calsync mirrors job creates and deletes into an external
// calendar.
//
// Sync is modelled as persisted tasks executed by a background worker,
// decoupled from the primary store mutation. Every sync call is
// best-effort: a failure is logged and the task marked failed; it is never
// retried and never blocks or rolls back the job write that produced it.
package calsync
