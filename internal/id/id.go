// Package id generates prefixed unique identifiers and share codes.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/binderapp/binder-server/internal/domain"
)

// shareAlphabet omits lookalike characters (0/O, 1/l/I) so codes survive
// being read aloud or hand-copied.
const shareAlphabet = "23456789abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ"

// Generate creates a prefixed unique ID using NanoID.
// Format: prefix-nanoid (e.g., "bnd-V1StGXR8_Z5jdHi6B-myT").
//
// NanoIDs are URL-friendly, compact (21 characters vs UUID's 36),
// and use a larger alphabet for better entropy per character.
//
// Returns an error if the system has insufficient entropy for secure
// random generation.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
// Use this only when failure should crash the program (e.g., during
// initialization).
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// ShareCode generates the random 12-character public identifier used in
// share URLs.
func ShareCode() (string, error) {
	code, err := gonanoid.Generate(shareAlphabet, domain.ShareCodeLength)
	if err != nil {
		return "", fmt.Errorf("generate share code: %w", err)
	}
	return code, nil
}
