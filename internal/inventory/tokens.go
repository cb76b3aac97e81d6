package inventory

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"time"
)

// ReferencePattern matches booking references.
var ReferencePattern = regexp.MustCompile(`^BK\d+$`)

// TransactionPattern matches payment transaction ids.
var TransactionPattern = regexp.MustCompile(`^TXN\d+$`)

// TokenSource produces booking references and payment transaction ids.
// Uniqueness is enforced by the store; a source only has to make
// collisions unlikely.
type TokenSource interface {
	BookingReference(now time.Time) (string, error)
	TransactionID(now time.Time) (string, error)
}

// RandomTokens builds tokens from the millisecond timestamp plus a random
// decimal suffix: BK<ms><3 digits> and TXN<ms><4 digits>.
type RandomTokens struct{}

func (RandomTokens) BookingReference(now time.Time) (string, error) {
	n, err := randomDigits(1000)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("BK%d%03d", now.UnixMilli(), n), nil
}

func (RandomTokens) TransactionID(now time.Time) (string, error) {
	n, err := randomDigits(10000)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("TXN%d%04d", now.UnixMilli(), n), nil
}

func randomDigits(max int64) (int64, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(max))
	if err != nil {
		return 0, err
	}
	return n.Int64(), nil
}
