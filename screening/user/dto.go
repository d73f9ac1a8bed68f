package user

import (
	"time"

	"github.com/Abraxas-365/cvscreen/pkg/kernel"
)

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Session struct {
	UserID    kernel.UserID `json:"user_id"`
	Email     kernel.Email  `json:"email"`
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
}

type Response struct {
	ID        kernel.UserID `json:"id"`
	Email     kernel.Email  `json:"email"`
	FullName  string        `json:"full_name"`
	CreatedAt time.Time     `json:"created_at"`
}

func ToResponse(u *User) Response {
	return Response{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		CreatedAt: u.CreatedAt,
	}
}
