// Package testutil provides test utilities for salesdash, including:
//   - Miniredis helpers for cache and queue tests (miniredis.go)
//   - In-memory Superstore CSV fixtures and loaded tables (fixtures.go)
//
// None of the helpers require Docker or network access.
package testutil
