// Package core defines the shared language of the ClickHouse dialect adapter.
//
// This package contains:
//   - Service interfaces (Adapter)
//   - Connection and target configuration (AdapterConfig, TargetConfig)
//   - Static dialect configuration (DialectConfig)
//   - Connection error kinds shared by every adapter
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
