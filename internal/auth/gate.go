package auth

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/KiWA001/kiwa-labs/internal/util"
)

// ErrBadPassword is returned for a wrong admin password.
var ErrBadPassword = errors.New("invalid password")

// Gate verifies the shared admin password and issues session tokens. The
// password is bcrypt-hashed once at startup so the plaintext never sits in
// memory longer than boot.
type Gate struct {
	passwordHash []byte
	tokenSecret  []byte
	tokenTTL     time.Duration
}

func NewGate(password, tokenSecret string, tokenTTL time.Duration) (*Gate, error) {
	if password == "" {
		return nil, errors.New("admin password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	if tokenTTL <= 0 {
		tokenTTL = 12 * time.Hour
	}
	return &Gate{
		passwordHash: hash,
		tokenSecret:  []byte(tokenSecret),
		tokenTTL:     tokenTTL,
	}, nil
}

// Login checks the password and returns a fresh bearer token.
func (g *Gate) Login(password string) (string, error) {
	if err := bcrypt.CompareHashAndPassword(g.passwordHash, []byte(password)); err != nil {
		return "", ErrBadPassword
	}
	return IssueToken(g.tokenSecret, Claims{
		Sub:  "admin",
		Role: "admin",
		JTI:  util.NewID(""),
		Exp:  time.Now().Add(g.tokenTTL).Unix(),
	})
}

// Verify checks a bearer token presented by the admin console.
func (g *Gate) Verify(token string) (Claims, error) {
	return ParseToken(g.tokenSecret, token)
}
