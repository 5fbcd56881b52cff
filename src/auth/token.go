package auth

import (
	"context"
	"errors"
	"strings"

	logger "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"tradejournal/src/model"
)

var ErrInvalidToken = errors.New("invalid API token")

type userFinder interface {
	FindByAPIKeyID(ctx context.Context, keyID string) (*model.User, error)
}

// TokenAuthenticator verifies bearer tokens of the form "keyID.secret".
// The key id locates the user row; the secret is compared against the
// stored bcrypt hash.
type TokenAuthenticator struct {
	users userFinder
}

func NewTokenAuthenticator(users userFinder) *TokenAuthenticator {
	return &TokenAuthenticator{users: users}
}

func (a *TokenAuthenticator) Authenticate(ctx context.Context, token string) (*model.User, error) {
	keyID, secret, ok := strings.Cut(token, ".")
	if !ok || keyID == "" || secret == "" {
		return nil, ErrInvalidToken
	}

	user, err := a.users.FindByAPIKeyID(ctx, keyID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidToken
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.APIKeyHash), []byte(secret)); err != nil {
		logger.WithField("key_id", keyID).Warn("API token secret mismatch")
		return nil, ErrInvalidToken
	}

	return user, nil
}

// HashSecret hashes an API key secret for storage. Used when seeding users.
func HashSecret(secret string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
