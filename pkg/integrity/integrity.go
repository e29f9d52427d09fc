package integrity

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"hash"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Algorithm names a supported 256-bit hash function.
type Algorithm string

const (
	SHA256     Algorithm = "sha256"
	BLAKE2b256 Algorithm = "blake2b-256"
)

func (a Algorithm) newHash() (hash.Hash, error) {
	switch a {
	case SHA256, "":
		return sha256.New(), nil
	case BLAKE2b256:
		return blake2b.New256(nil)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, string(a))
	}
}

// Verifier checks digests against a fixed configuration.
// Zero value verifies nothing and accepts everything without a digest.
type Verifier struct {
	required  bool
	secret    []byte
	algorithm Algorithm
}

// New returns a Verifier for cfg.
func New(cfg Config) (*Verifier, error) {
	if _, err := cfg.Algorithm.newHash(); err != nil {
		return nil, err
	}
	alg := cfg.Algorithm
	if alg == "" {
		alg = SHA256
	}
	return &Verifier{
		required:  cfg.Required,
		secret:    []byte(cfg.SharedSecret),
		algorithm: alg,
	}, nil
}

// Required reports whether submissions must carry a digest.
func (v *Verifier) Required() bool {
	return v != nil && v.required
}

// Verify checks provided against the digest of contents.
func (v *Verifier) Verify(contents []byte, provided string) error {
	if v == nil {
		return verify(SHA256, contents, provided, nil, false)
	}
	return verify(v.algorithm, contents, provided, v.secret, v.required)
}

// Digest returns the hex digest the verifier expects for contents.
func (v *Verifier) Digest(contents []byte) string {
	if v == nil {
		d, _ := digest(SHA256, contents, nil)
		return d
	}
	d, _ := digest(v.algorithm, contents, v.secret)
	return d
}

// Verify checks a SHA-256 digest of contents ++ secret.
// An absent digest passes unless required is set.
func Verify(contents []byte, provided, secret string, required bool) error {
	return verify(SHA256, contents, provided, []byte(secret), required)
}

// Digest returns hex(SHA-256(contents ++ secret)).
func Digest(contents []byte, secret string) string {
	d, _ := digest(SHA256, contents, []byte(secret))
	return d
}

func verify(alg Algorithm, contents []byte, provided string, secret []byte, required bool) error {
	provided = strings.TrimSpace(provided)
	if provided == "" {
		if required {
			return ErrIntegrityMissing
		}
		return nil
	}

	expected, err := digest(alg, contents, secret)
	if err != nil {
		return err
	}

	// Hex is case-insensitive; normalise before the constant-time compare.
	if subtle.ConstantTimeCompare([]byte(expected), []byte(strings.ToLower(provided))) != 1 {
		return ErrIntegrityMismatch
	}
	return nil
}

func digest(alg Algorithm, contents, secret []byte) (string, error) {
	h, err := alg.newHash()
	if err != nil {
		return "", err
	}
	h.Write(contents)
	h.Write(secret)
	return hex.EncodeToString(h.Sum(nil)), nil
}
