package auth

import (
	"errors"
	"fmt"

	"go-payroll/internal/config"

	"golang.org/x/crypto/bcrypt"
)

// CredentialVerifier compares a supplied secret with the stored one.
type CredentialVerifier interface {
	Verify(stored, supplied string) bool
}

// PasswordHasher prepares a secret for storage.
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// PlaintextVerifier keeps secrets as-is and compares them byte for byte.
// Only for databases seeded by the legacy services.
type PlaintextVerifier struct{}

func (PlaintextVerifier) Verify(stored, supplied string) bool {
	return stored == supplied
}

func (PlaintextVerifier) Hash(plain string) (string, error) {
	return plain, nil
}

type BcryptVerifier struct {
	Cost int
}

func (b BcryptVerifier) Verify(stored, supplied string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied)) == nil
}

func (b BcryptVerifier) Hash(plain string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

var errUnknownHasher = errors.New("unknown password hasher")

// NewCredentialScheme returns the verifier/hasher pair named by
// PASSWORD_HASHER.
func NewCredentialScheme(name string) (CredentialVerifier, PasswordHasher, error) {
	switch name {
	case config.HasherPlaintext, "":
		return PlaintextVerifier{}, PlaintextVerifier{}, nil
	case config.HasherBcrypt:
		b := BcryptVerifier{}
		return b, b, nil
	default:
		return nil, nil, fmt.Errorf("%w: %s", errUnknownHasher, name)
	}
}
