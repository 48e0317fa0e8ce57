// Package flag canonicalizes submitted flags and compares them against peppered hashes.
//
// Normalization policy: surrounding whitespace is trimmed and the text is put in
// Unicode NFKC form, then lower-cased for case-insensitive challenges. Two strings
// that differ only in compatibility characters (full-width letters, ligatures,
// superscripts) therefore count as the same flag.
package flag

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/text/unicode/norm"
)

const keyInfo = "flag-hash/v1"

var ErrEmptyPepper = errors.New("flag pepper must not be empty")

func Normalize(raw string, caseSensitive bool) string {
	s := norm.NFKC.String(strings.TrimSpace(raw))
	// NFKC can surface new leading/trailing spaces (e.g. ideographic space).
	s = strings.TrimSpace(s)
	if !caseSensitive {
		s = strings.ToLower(s)
	}
	return s
}

type Hasher struct {
	key []byte
}

// NewHasher derives the MAC key from the server pepper.
func NewHasher(pepper []byte) (*Hasher, error) {
	if len(pepper) == 0 {
		return nil, ErrEmptyPepper
	}

	key := make([]byte, sha256.Size)
	if _, err := io.ReadFull(hkdf.New(sha256.New, pepper, nil, []byte(keyInfo)), key); err != nil {
		return nil, fmt.Errorf("hkdf.New -> %w", err)
	}

	return &Hasher{key: key}, nil
}

func (h *Hasher) Hash(normalized string) string {
	return hex.EncodeToString(h.sum(normalized))
}

// HashFlag normalizes raw and returns its hex digest.
func (h *Hasher) HashFlag(raw string, caseSensitive bool) string {
	return h.Hash(Normalize(raw, caseSensitive))
}

// Matches compares the digest of raw with stored in constant time.
func (h *Hasher) Matches(raw string, caseSensitive bool, stored string) bool {
	want, err := hex.DecodeString(stored)
	if err != nil {
		return false
	}
	return hmac.Equal(h.sum(Normalize(raw, caseSensitive)), want)
}

func (h *Hasher) sum(s string) []byte {
	mac := hmac.New(sha256.New, h.key)
	mac.Write([]byte(s))
	return mac.Sum(nil)
}
