package user

import (
	"context"

	"github.com/Abraxas-365/cvscreen/pkg/kernel"
)

type Repository interface {
	// Create creates a new user
	Create(ctx context.Context, u *User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id kernel.UserID) (*User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email kernel.Email) (*User, error)

	// ExistsByEmail checks if a user with the email exists
	ExistsByEmail(ctx context.Context, email kernel.Email) (bool, error)
}
