// Package core defines the shared types of MetaStore.
//
// This package contains:
//   - Domain entities (Model, Step, Settings)
//   - The ordered Mapping used for tags and schemas
//   - The Store interface implemented by internal/store
//
// core imports only the standard library and yaml.v3.
// All other packages depend on core, not the reverse.
package core
