package models

import "time"

// User is the password-free identity of an account
type User struct {
	ID       string    `json:"id" validate:"required"`
	Name     string    `json:"name" validate:"required"`
	Email    string    `json:"email" validate:"required,email"`
	Avatar   string    `json:"avatar,omitempty"`
	JoinedAt time.Time `json:"joinedAt" validate:"required"`
}

// Credential is a row of the stored credential table
type Credential struct {
	ID       string    `json:"id" validate:"required"`
	Name     string    `json:"name" validate:"required"`
	Email    string    `json:"email" validate:"required,email"`
	Password string    `json:"password" validate:"required"`
	Avatar   string    `json:"avatar"`
	JoinedAt time.Time `json:"joinedAt" validate:"required"`
}

// User strips the password from the credential
func (c Credential) User() User {
	return User{
		ID:       c.ID,
		Name:     c.Name,
		Email:    c.Email,
		Avatar:   c.Avatar,
		JoinedAt: c.JoinedAt,
	}
}
