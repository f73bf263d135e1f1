// Package model defines the data structures used throughout the application.
package model

import "time"

// User is a registered account. Users are created once at registration and
// never edited or deleted.
//
// PasswordHash is the full bcrypt string (salt and cost embedded). The `json:"-"`
// tag keeps it out of every API response.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UserSummary is the public view of a user returned next to a token.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Summary returns the public fields of u.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}
