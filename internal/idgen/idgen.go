// Package idgen generates capsule invite codes backed by nanoid.
package idgen

import (
	"fmt"
	"strings"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// Alphabet omits characters that are easy to misread when a code is typed
// by hand (0/O, 1/I/L).
const Alphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const DefaultLength = 8

// InviteCode returns a new random invite code of the given length.
func InviteCode(length int) (string, error) {
	if length <= 0 {
		length = DefaultLength
	}
	code, err := nanoid.Generate(Alphabet, length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return code, nil
}

// NormalizeCode folds a user-supplied code into its canonical stored form.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
