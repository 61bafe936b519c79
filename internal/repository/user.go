package repository

import (
	"context"

	"signsync/internal/model"
)

// UserRepository reads the portal's user store. The store is owned by the
// registration flows; this pipeline never writes it.
type UserRepository interface {
	// FindByEmail returns the user with the exact given email string.
	// When several users share an email, the earliest-created row wins so
	// that resolution is deterministic. Returns sql.ErrNoRows when no user
	// matches.
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}
