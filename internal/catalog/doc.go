// Package catalog provides the value types shared by every shelf component.
//
// This package contains type definitions only. All other internal packages
// import catalog; catalog imports nothing internal.
//
// Key design constraints:
//   - Money is decimal.Decimal, never float64
//   - Products are read-only once decoded from the remote catalog
//   - All JSON tags match the remote catalog's field names
package catalog
