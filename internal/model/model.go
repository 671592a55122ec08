// Package model contains domain models shared across layers.
// Models carry no persistence tags and no business logic.
package model

import "time"

// User is an identity able to own documents.
// PasswordHash never leaves the service layer.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
