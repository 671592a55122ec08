// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g. postgres). Lookups that match no row
// return sql.ErrNoRows so callers can map it without importing a driver.
package repository

import "errors"

// ErrDuplicate is returned when an insert violates a unique constraint.
var ErrDuplicate = errors.New("duplicate key")
