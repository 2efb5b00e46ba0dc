package password

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/fleetworks/fleetworks/internal/domain"
)

// BcryptService hashes and verifies inspector access codes
type BcryptService struct {
	cost int
}

// NewBcryptService creates a bcrypt service with the given cost, or the
// library default when cost is zero
func NewBcryptService(cost int) *BcryptService {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptService{cost: cost}
}

// Hash returns the bcrypt hash of an access code
func (s *BcryptService) Hash(accessCode string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(accessCode), s.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify checks an access code against its stored hash
func (s *BcryptService) Verify(hash, accessCode string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(accessCode)); err != nil {
		return domain.ErrInvalidAccessCode
	}
	return nil
}
