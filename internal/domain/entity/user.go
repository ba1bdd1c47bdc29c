package entity

import "time"

// User is an authenticated account. Company context is carried per session
// (JWT claim), not stored on the user: memberships live in company_users.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, never plaintext after persisting
	Status       string // active, inactive, suspended
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile holds the display data of a user, keyed by the user ID.
// Created lazily by the onboarding bootstrap when missing.
type Profile struct {
	UserID    string
	FirstName string
	LastName  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FullName returns "First Last" with whatever parts are present.
func (p Profile) FullName() string {
	switch {
	case p.FirstName != "" && p.LastName != "":
		return p.FirstName + " " + p.LastName
	case p.FirstName != "":
		return p.FirstName
	default:
		return p.LastName
	}
}
