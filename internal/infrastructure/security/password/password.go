// Package password hashes and verifies user passwords.
//
// PBKDF2 hashes are encoded as
//
//	pbkdf2:sha256:<iterations>$<salt>$<hex digest>
//
// so the algorithm and its cost travel with the hash. bcrypt hashes use their
// standard modular crypt format and are accepted for verification whatever
// algorithm is configured.
package password

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
)

const (
	AlgorithmPBKDF2 = "pbkdf2-sha256"
	AlgorithmBcrypt = "bcrypt"

	MinIterations     = 150_000
	DefaultIterations = 600_000

	saltBytes = 16
	keyLen    = sha256.Size
)

var ErrUnknownAlgorithm = errors.New("password: unknown algorithm")

type Config struct {
	Algorithm  string
	Iterations int
	BcryptCost int
}

// Hasher implements ports.PasswordHasher.
type Hasher struct {
	algorithm  string
	iterations int
	cost       int
}

func New(cfg Config) (*Hasher, error) {
	h := &Hasher{
		algorithm:  cfg.Algorithm,
		iterations: cfg.Iterations,
		cost:       cfg.BcryptCost,
	}
	if h.algorithm == "" {
		h.algorithm = AlgorithmPBKDF2
	}
	if h.algorithm != AlgorithmPBKDF2 && h.algorithm != AlgorithmBcrypt {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, h.algorithm)
	}
	if h.iterations == 0 {
		h.iterations = DefaultIterations
	}
	if h.iterations < MinIterations {
		return nil, fmt.Errorf("password: iterations %d below minimum %d", h.iterations, MinIterations)
	}
	if h.cost == 0 {
		h.cost = bcrypt.DefaultCost
	}
	if h.cost < bcrypt.MinCost || h.cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("password: bcrypt cost %d out of range", h.cost)
	}
	return h, nil
}

// Hash returns a freshly salted encoding of password.
func (h *Hasher) Hash(password string) (string, error) {
	if h.algorithm == AlgorithmBcrypt {
		b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
		if err != nil {
			return "", fmt.Errorf("bcrypt hash: %w", err)
		}
		return string(b), nil
	}

	raw := make([]byte, saltBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("read salt: %w", err)
	}
	salt := hex.EncodeToString(raw)
	digest := pbkdf2.Key([]byte(password), []byte(salt), h.iterations, keyLen, sha256.New)

	return fmt.Sprintf("pbkdf2:sha256:%d$%s$%s", h.iterations, salt, hex.EncodeToString(digest)), nil
}

// Verify reports whether password matches encoded. Unparseable encodings never match.
func (h *Hasher) Verify(password, encoded string) bool {
	if isBcrypt(encoded) {
		return bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password)) == nil
	}

	p, err := parsePBKDF2(encoded)
	if err != nil {
		return false
	}
	got := pbkdf2.Key([]byte(password), []byte(p.salt), p.iterations, len(p.digest), sha256.New)
	return subtle.ConstantTimeCompare(got, p.digest) == 1
}

func (h *Hasher) NeedsRehash(encoded string) bool {
	if isBcrypt(encoded) {
		if h.algorithm != AlgorithmBcrypt {
			return true
		}
		cost, err := bcrypt.Cost([]byte(encoded))
		return err != nil || cost < h.cost
	}

	p, err := parsePBKDF2(encoded)
	if err != nil {
		return true
	}
	if h.algorithm != AlgorithmPBKDF2 {
		return true
	}
	return p.iterations < h.iterations
}

type pbkdf2Hash struct {
	iterations int
	salt       string
	digest     []byte
}

func parsePBKDF2(encoded string) (pbkdf2Hash, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 3 {
		return pbkdf2Hash{}, errors.New("password: malformed hash")
	}

	method := strings.Split(parts[0], ":")
	if len(method) != 3 || method[0] != "pbkdf2" || method[1] != "sha256" {
		return pbkdf2Hash{}, errors.New("password: unsupported method")
	}
	iterations, err := strconv.Atoi(method[2])
	if err != nil || iterations <= 0 {
		return pbkdf2Hash{}, errors.New("password: bad iteration count")
	}

	digest, err := hex.DecodeString(parts[2])
	if err != nil || len(digest) == 0 || parts[1] == "" {
		return pbkdf2Hash{}, errors.New("password: bad salt or digest")
	}

	return pbkdf2Hash{iterations: iterations, salt: parts[1], digest: digest}, nil
}

func isBcrypt(encoded string) bool {
	return strings.HasPrefix(encoded, "$2a$") ||
		strings.HasPrefix(encoded, "$2b$") ||
		strings.HasPrefix(encoded, "$2y$")
}
