// Package otp generates the short redemption codes handed to users
// after an upload. A code is the sole capability needed to retrieve,
// download, and complete a print job.
package otp

import (
	"crypto/rand"
	"fmt"
	"regexp"
	"strings"
)

const (
	// Alphabet is the 36-symbol code alphabet: uppercase letters and digits.
	Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// Length is the fixed code length. 36^6 codes keeps the collision
	// risk negligible against the number of jobs live at once.
	Length = 6

	maxAttempts = 20
)

var codePattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

// Generate returns a new random code with no uniqueness guarantee.
func Generate() (string, error) {
	b := make([]byte, Length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	out := make([]byte, Length)
	for i := 0; i < Length; i++ {
		out[i] = Alphabet[int(b[i])%len(Alphabet)]
	}
	return string(out), nil
}

// GenerateUnique returns a new code, retrying on collisions using the
// provided exists function. A nil exists skips the check entirely.
func GenerateUnique(exists func(string) (bool, error)) (string, error) {
	for i := 0; i < maxAttempts; i++ {
		code, err := Generate()
		if err != nil {
			return "", err
		}
		if exists == nil {
			return code, nil
		}
		ok, err := exists(code)
		if err != nil {
			return "", err
		}
		if !ok {
			return code, nil
		}
	}
	return "", fmt.Errorf("unable to generate unique code")
}

// Normalize returns the canonical uppercase form of a submitted code.
// Users type codes off paper; case must never matter.
func Normalize(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// Valid reports whether code is a well-formed canonical OTP.
func Valid(code string) bool {
	return codePattern.MatchString(code)
}
