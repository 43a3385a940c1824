// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an account row. Credential issuance, OAuth exchange and
// password resets are handled by the identity service; this application only
// reads user rows for author joins and token-subject lookups.
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"unique;not null" json:"username"`
	Email        string         `gorm:"unique;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Avatar       string         `json:"avatar"`
	Bio          string         `json:"bio"`
	Website      string         `json:"website"`
	Private      bool           `json:"private"`
	Confirmed    bool           `json:"confirmed"`
	GithubID     string         `json:"-"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// RedactedUser is the author projection safe to embed in any client-facing
// document. Every code path that returns an author sub-document must go
// through Redact; credential, contact and private fields never leave the
// server.
type RedactedUser struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// Redact projects the user down to its public author fields.
func (u User) Redact() RedactedUser {
	return RedactedUser{
		ID:       u.ID,
		Username: u.Username,
		Avatar:   u.Avatar,
	}
}
