package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	autherrors "github.com/marcomartinez12/playzone/internal/errors"
)

// TokenService issues and verifies short-lived HS256 access tokens.
// Tokens are stateless; compromise is bounded by the TTL.
type TokenService struct {
	secret       []byte
	accessExpiry time.Duration
}

type JWTCustomClaims struct {
	jwt.RegisteredClaims
	UserID int `json:"id_usuario"`
}

func NewTokenService(secret string, accessMinutes int) *TokenService {
	return &TokenService{
		secret:       []byte(secret),
		accessExpiry: time.Duration(accessMinutes) * time.Minute,
	}
}

func (ts *TokenService) AccessExpiry() time.Duration {
	return ts.accessExpiry
}

// Generate signs an access token carrying the username as subject plus the
// numeric user id.
func (ts *TokenService) Generate(userID int, username string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ts.accessExpiry)

	claims := JWTCustomClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ts.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return token, expiresAt, nil
}

// Verify parses and validates an access token. Expired tokens and malformed
// or badly signed tokens fail with distinct sentinels; most callers treat
// both as unauthenticated.
func (ts *TokenService) Verify(tokenString string) (*JWTCustomClaims, error) {
	claims := &JWTCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return ts.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, autherrors.ErrTokenExpired
		}
		return nil, autherrors.ErrTokenInvalid
	}

	if !token.Valid {
		return nil, autherrors.ErrTokenInvalid
	}

	return claims, nil
}
