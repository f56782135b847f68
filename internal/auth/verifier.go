// Package auth resolves the caller identity from first-party session tokens.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const defaultLeeway = 30 * time.Second

// Verifier validates HS256 session tokens signed with a shared secret.
// The token's sub claim carries the owner id.
type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewVerifier builds a verifier for the given signing secret.
func NewVerifier(secret string) (*Verifier, error) {
	if secret == "" {
		return nil, errors.New("auth secret must be set")
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(defaultLeeway),
		jwt.WithExpirationRequired(),
	)

	return &Verifier{
		secret: []byte(secret),
		parser: parser,
	}, nil
}

// Verify parses the token and returns the owner id from its subject.
func (v *Verifier) Verify(token string) (uuid.UUID, error) {
	parsed, err := v.parser.Parse(token, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse token: %w", err)
	}

	subject, err := parsed.Claims.GetSubject()
	if err != nil || subject == "" {
		return uuid.Nil, errors.New("token has no subject")
	}

	owner, err := uuid.Parse(subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("subject is not a valid owner id: %w", err)
	}

	return owner, nil
}
