package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/msomdec/user-directory/internal/domain"
)

// VisitorService issues and validates the anonymous visitor tokens that key
// a browser's persisted slots.
type VisitorService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewVisitorService creates a new VisitorService.
func NewVisitorService(secret string, ttl time.Duration) *VisitorService {
	return &VisitorService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL is how long an issued token stays valid.
func (s *VisitorService) TTL() time.Duration {
	return s.ttl
}

// Issue creates a new visitor ID and a signed token carrying it.
func (s *VisitorService) Issue() (visitorID, token string, err error) {
	visitorID = uuid.NewString()
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   visitorID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", "", fmt.Errorf("sign visitor token: %w", err)
	}
	return visitorID, token, nil
}

// Validate parses a token and returns the visitor ID from its sub claim.
func (s *VisitorService) Validate(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return "", domain.ErrUnauthorized
	}

	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", domain.ErrUnauthorized
	}
	return claims.Subject, nil
}
