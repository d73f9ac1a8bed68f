package userauth

import (
	"context"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Abraxas-365/cvscreen/pkg/errx"
	"github.com/Abraxas-365/cvscreen/pkg/kernel"
	"github.com/Abraxas-365/cvscreen/screening/user"
)

const minPasswordLength = 8

type AuthService struct {
	userRepo     user.Repository
	tokenService *TokenService
}

func NewAuthService(userRepo user.Repository, tokenService *TokenService) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		tokenService: tokenService,
	}
}

// Register creates a new account and returns a session for it.
func (s *AuthService) Register(ctx context.Context, req user.RegisterRequest) (*user.Session, error) {
	email := kernel.Email(strings.ToLower(strings.TrimSpace(req.Email)))
	if !email.IsValid() {
		return nil, user.ErrInvalidEmail()
	}
	if len(req.Password) < minPasswordLength {
		return nil, user.ErrWeakPassword()
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, errx.Wrap(err, "failed to check email", errx.TypeInternal)
	}
	if exists {
		return nil, user.ErrEmailAlreadyExists()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errx.Wrap(err, "failed to hash password", errx.TypeInternal)
	}

	now := time.Now()
	newUser := &user.User{
		ID:           kernel.NewUserID(kernel.GenerateID()),
		Email:        email,
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(req.FullName),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, newUser); err != nil {
		return nil, errx.Wrap(err, "failed to create user", errx.TypeInternal)
	}

	return s.createSession(newUser)
}

// Login verifies credentials and returns a session.
func (s *AuthService) Login(ctx context.Context, req user.LoginRequest) (*user.Session, error) {
	email := kernel.Email(strings.ToLower(strings.TrimSpace(req.Email)))

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		// Same response for unknown email and bad password.
		return nil, user.ErrInvalidCredentials()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(existing.PasswordHash), []byte(req.Password)); err != nil {
		return nil, user.ErrInvalidCredentials()
	}

	return s.createSession(existing)
}

// GetProfile returns the account for an authenticated user.
func (s *AuthService) GetProfile(ctx context.Context, userID kernel.UserID) (*user.User, error) {
	existing, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, user.ErrUserNotFound().WithDetail("user_id", userID.String())
	}
	return existing, nil
}

func (s *AuthService) createSession(u *user.User) (*user.Session, error) {
	token, expiresAt, err := s.tokenService.GenerateAccessToken(u)
	if err != nil {
		return nil, errx.Wrap(err, "failed to generate session token", errx.TypeInternal)
	}

	return &user.Session{
		UserID:    u.ID,
		Email:     u.Email,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}
