package domain

import (
	"context"
	"strings"
)

// User is a directory entry. The JSON shape matches the remote user source
// and is also the shape persisted for locally added users.
type User struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   string  `json:"phone"`
	Website string  `json:"website"`
	Company Company `json:"company"`
}

// Company is the employer block nested in a User.
type Company struct {
	Name        string `json:"name"`
	CatchPhrase string `json:"catchPhrase"`
	BS          string `json:"bs"`
}

// UserForm holds the fields a visitor submits when adding a user.
type UserForm struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Website string `json:"website"`
	Company string `json:"company"`
}

// Blank reports whether a required field of the form is missing.
func (f UserForm) Blank() bool {
	return strings.TrimSpace(f.Name) == "" || strings.TrimSpace(f.Email) == ""
}

// UserSource is the remote collection of canonical users.
type UserSource interface {
	ListUsers(ctx context.Context) ([]User, error)
	// GetUser returns ErrNotFound when the source has no such user.
	GetUser(ctx context.Context, id int64) (*User, error)
}
