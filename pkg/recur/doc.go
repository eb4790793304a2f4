// Package recur expands a recurrence request into dated job occurrences.
//
// Expansion is a pure generator: it produces the occurrence records and a
// shared series identifier but performs no persistence. Callers hand the
// result to the store.
package recur
