// Package ir provides the shared value types of the Salin knowledge base.
//
// This package contains type definitions only. The stores, the matcher, the
// resource compiler and the SQLite layer all import ir; ir imports nothing
// internal except tag. This keeps ir the foundational layer with no circular
// dependencies.
//
// Key design constraints:
//   - Indices are always carried in string form (Key), whatever the caller
//     passed in, so they can be used directly as map keys
//   - Slices keep store enumeration order; nothing here is sorted implicitly
//   - All JSON tags use snake_case
package ir
