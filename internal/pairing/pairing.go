// Package pairing issues and checks the short codes one profile hands to
// another to link them as partners.
package pairing

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"strings"
)

// Alphabet is the set of symbols a code is drawn from.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Length is the number of symbols in a code.
const Length = 6

var alphabetSize = big.NewInt(int64(len(Alphabet)))

// Generate returns a uniformly random code from crypto/rand.
func Generate() (string, error) {
	return generate(rand.Reader)
}

func generate(r io.Reader) (string, error) {
	var b strings.Builder
	b.Grow(Length)
	for i := 0; i < Length; i++ {
		n, err := rand.Int(r, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("generate pair code: %w", err)
		}
		b.WriteByte(Alphabet[n.Int64()])
	}
	return b.String(), nil
}

// Normalize trims s and upper-cases it so user input can be compared with
// issued codes.
func Normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Valid reports whether s, once normalized, is a well-formed code.
func Valid(s string) bool {
	s = Normalize(s)
	if len(s) != Length {
		return false
	}
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(Alphabet, s[i]) < 0 {
			return false
		}
	}
	return true
}
