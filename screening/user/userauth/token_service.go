package userauth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Abraxas-365/cvscreen/pkg/kernel"
	"github.com/Abraxas-365/cvscreen/screening/user"
)

// TokenService issues and validates HS256 access tokens.
type TokenService struct {
	secret   []byte
	issuer   string
	duration time.Duration
}

func NewTokenService(secret string, duration time.Duration) *TokenService {
	return &TokenService{
		secret:   []byte(secret),
		issuer:   "cvscreen",
		duration: duration,
	}
}

// Claims are the validated contents of an access token.
type Claims struct {
	UserID    kernel.UserID
	Email     kernel.Email
	ExpiresAt time.Time
}

// GenerateAccessToken creates a signed token for the user.
func (s *TokenService) GenerateAccessToken(u *user.User) (string, time.Time, error) {
	expiresAt := time.Now().Add(s.duration)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   u.ID.String(),
		"email": string(u.Email),
		"iss":   s.issuer,
		"iat":   time.Now().Unix(),
		"exp":   expiresAt.Unix(),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// ValidateAccessToken parses and verifies a token string.
func (s *TokenService) ValidateAccessToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}

	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, jwt.ErrTokenInvalidClaims
	}

	return &Claims{
		UserID:    kernel.NewUserID(sub),
		Email:     kernel.Email(email),
		ExpiresAt: exp.Time,
	}, nil
}
