package user

import (
	"time"

	"github.com/Abraxas-365/cvscreen/pkg/kernel"
)

type User struct {
	ID           kernel.UserID `db:"id" json:"id"`
	Email        kernel.Email  `db:"email" json:"email"`
	PasswordHash string        `db:"password_hash" json:"-"`
	FullName     string        `db:"full_name" json:"full_name"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at" json:"updated_at"`
}
