package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/go-crypt/x/blake2b"
	"github.com/poiesic/stratum/core"
)

// ErrUnknownAlgorithm indicates an unrecognized fingerprint algorithm name.
var ErrUnknownAlgorithm = errors.New("unknown fingerprint algorithm")

// Algorithm selects the digest used for row fingerprints.
// Both algorithms produce 256-bit digests.
type Algorithm string

const (
	// SHA256 is the default fingerprint algorithm.
	SHA256 Algorithm = "sha256"
	// BLAKE2b is BLAKE2b-256.
	BLAKE2b Algorithm = "blake2b"
)

// ParseAlgorithm returns the Algorithm for a case-insensitive name.
// An empty name selects SHA256.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch a := Algorithm(strings.ToLower(strings.TrimSpace(name))); a {
	case "":
		return SHA256, nil
	case SHA256, BLAKE2b:
		return a, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
}

func (a Algorithm) newHash() (hash.Hash, error) {
	switch a {
	case SHA256, "":
		return sha256.New(), nil
	case BLAKE2b:
		return blake2b.New(32, nil)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, string(a))
	}
}

// Fingerprint returns the hex digest of the payload's canonical form.
func Fingerprint(payload core.Payload, algo Algorithm) (string, error) {
	canonical, err := payload.Canonical()
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize payload: %w", err)
	}
	h, err := algo.newHash()
	if err != nil {
		return "", err
	}
	h.Write(canonical)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// FileChecksum returns the xxhash64 of the file at path as 16 hex characters.
func FileChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return ReaderChecksum(f)
}

// ReaderChecksum returns the xxhash64 of everything read from r.
func ReaderChecksum(r io.Reader) (string, error) {
	h := xxhash.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("failed to hash contents: %w", err)
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}
