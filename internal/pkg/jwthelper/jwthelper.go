package jwthelper

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yizeng/gab/gin/graphql/eventhub/internal/domain"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Viewer maps the claims to a viewer. Tokens without a role act as USER.
func (c *Claims) Viewer() domain.Viewer {
	role := domain.Role(c.Role)
	if role == "" {
		role = domain.RoleUser
	}

	return domain.Viewer{
		UserID: c.UserID,
		Email:  c.Email,
		Role:   role,
	}
}

func GenerateToken(key []byte, user domain.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("token.SignedString -> %w", err)
	}

	return signed, nil
}

func ParseToken(key []byte, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		return key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}

		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// Issuer signs and verifies tokens with a fixed key and lifetime.
type Issuer struct {
	key []byte
	ttl time.Duration
}

func NewIssuer(key string, ttl time.Duration) *Issuer {
	return &Issuer{
		key: []byte(key),
		ttl: ttl,
	}
}

func (i *Issuer) Issue(user domain.User) (string, error) {
	return GenerateToken(i.key, user, i.ttl)
}

func (i *Issuer) Parse(tokenString string) (*Claims, error) {
	return ParseToken(i.key, tokenString)
}
