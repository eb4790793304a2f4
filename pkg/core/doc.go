// Package core provides the fundamental types for the lawn tracker.
//
// This package contains:
//   - The canonical Job model with GORM annotations
//   - Status, job type and frequency enums with transition rules
//   - Event types for service monitoring
//   - Error types shared across the module
//
// Most users should import the root package
// github.com/koolBEANS829/jls-lawn-tracker instead of this package directly.
package core
