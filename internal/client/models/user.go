// Package models holds the client-side view of API payloads.
package models

import "time"

// User is the identity record returned by the API. The client never mutates
// it; a new value replaces the old one on login, register or restore.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Identified reports whether u carries the fields every API user has. A
// decoded `null` or `{}` body does not.
func (u *User) Identified() bool {
	return u != nil && u.ID != 0 && u.Email != ""
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// AuthResponse is the body of a successful login or register call.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
