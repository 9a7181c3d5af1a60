package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

const (
	minMemoryKB    uint32 = 8 * 1024
	minTimeCost    uint32 = 1
	minParallelism uint8  = 1
	minSaltLength  uint32 = 16
	minKeyLength   uint32 = 16
	algorithmID           = "argon2id"
)

// ErrCorruptHash is returned when a stored hash string cannot be parsed
// under any supported scheme.
var ErrCorruptHash = errors.New("corrupt credential hash")

// Config defines a public type used by authcore APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// Hasher defines a public type used by authcore APIs.
//
// Hasher instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Hasher struct {
	config Config
}

// Verification is the outcome of a Verify call. NeedsRehash is true when
// the password matched but the stored hash was produced under deprecated
// cost parameters or the legacy bcrypt scheme; callers should rehash and
// persist the upgrade.
type Verification struct {
	Match       bool
	NeedsRehash bool
}

type parsedHash struct {
	memory      uint32
	time        uint32
	parallelism uint8
	salt        []byte
	hash        []byte
}

// NewHasher describes the newhasher operation and its observable behavior.
//
// NewHasher may return an error when input validation, dependency calls, or security checks fail.
// NewHasher does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewHasher(cfg Config) (*Hasher, error) {
	if cfg.Memory < minMemoryKB {
		return nil, errors.New("password memory must be >= 8192 KB")
	}
	if cfg.Time < minTimeCost {
		return nil, errors.New("password time must be >= 1")
	}
	if cfg.Parallelism < minParallelism {
		return nil, errors.New("password parallelism must be >= 1")
	}
	if cfg.SaltLength < minSaltLength {
		return nil, errors.New("password salt length must be >= 16")
	}
	if cfg.KeyLength < minKeyLength {
		return nil, errors.New("password key length must be >= 16")
	}

	return &Hasher{config: cfg}, nil
}

// Hash describes the hash operation and its observable behavior.
//
// Hash may return an error when input validation, dependency calls, or security checks fail.
// Hash does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (h *Hasher) Hash(plaintext string) (string, error) {
	salt := make([]byte, h.config.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}

	key := argon2.IDKey(
		[]byte(plaintext),
		salt,
		h.config.Time,
		h.config.Memory,
		h.config.Parallelism,
		h.config.KeyLength,
	)

	return fmt.Sprintf(
		"$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		algorithmID,
		argon2.Version,
		h.config.Memory,
		h.config.Time,
		h.config.Parallelism,
		base64.StdEncoding.EncodeToString(salt),
		base64.StdEncoding.EncodeToString(key),
	), nil
}

// Verify describes the verify operation and its observable behavior.
//
// Verify may return an error when input validation, dependency calls, or security checks fail.
// Verify does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (h *Hasher) Verify(plaintext string, encodedHash string) (Verification, error) {
	if isBcrypt(encodedHash) {
		return h.verifyBcrypt(plaintext, encodedHash)
	}

	parsed, err := parsePHC(encodedHash)
	if err != nil {
		return Verification{}, fmt.Errorf("%w: %v", ErrCorruptHash, err)
	}

	computed := argon2.IDKey(
		[]byte(plaintext),
		parsed.salt,
		parsed.time,
		parsed.memory,
		parsed.parallelism,
		uint32(len(parsed.hash)),
	)

	if subtle.ConstantTimeCompare(computed, parsed.hash) != 1 {
		return Verification{}, nil
	}

	return Verification{
		Match:       true,
		NeedsRehash: h.parametersOutdated(parsed),
	}, nil
}

func (h *Hasher) verifyBcrypt(plaintext, encodedHash string) (Verification, error) {
	err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(plaintext))
	switch {
	case err == nil:
		// Legacy scheme always upgrades on successful verification.
		return Verification{Match: true, NeedsRehash: true}, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return Verification{}, nil
	default:
		return Verification{}, fmt.Errorf("%w: %v", ErrCorruptHash, err)
	}
}

func (h *Hasher) parametersOutdated(parsed *parsedHash) bool {
	if h.config.Memory > parsed.memory {
		return true
	}
	if h.config.Time > parsed.time {
		return true
	}
	if h.config.Parallelism > parsed.parallelism {
		return true
	}
	if h.config.KeyLength != uint32(len(parsed.hash)) {
		return true
	}
	return false
}

func isBcrypt(encodedHash string) bool {
	for _, prefix := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(encodedHash, prefix) {
			return true
		}
	}
	return false
}

func parsePHC(encodedHash string) (*parsedHash, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[0] != "" {
		return nil, errors.New("invalid PHC format")
	}
	if parts[1] != algorithmID {
		return nil, errors.New("unsupported algorithm")
	}

	version, err := strconv.Atoi(strings.TrimPrefix(parts[2], "v="))
	if !strings.HasPrefix(parts[2], "v=") || err != nil {
		return nil, errors.New("invalid argon2 version")
	}
	if version != argon2.Version {
		return nil, errors.New("unsupported argon2 version")
	}

	parsed := &parsedHash{}
	if err := parseCostParams(parts[3], parsed); err != nil {
		return nil, err
	}

	parsed.salt, err = base64.StdEncoding.DecodeString(parts[4])
	if err != nil || len(parsed.salt) < int(minSaltLength) {
		return nil, errors.New("invalid salt")
	}

	parsed.hash, err = base64.StdEncoding.DecodeString(parts[5])
	if err != nil || len(parsed.hash) == 0 {
		return nil, errors.New("invalid hash")
	}

	return parsed, nil
}

func parseCostParams(part string, out *parsedHash) error {
	pairs := strings.Split(part, ",")
	if len(pairs) != 3 {
		return errors.New("invalid parameter format")
	}

	seen := map[string]bool{}
	for _, pair := range pairs {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 || seen[kv[0]] {
			return errors.New("invalid parameter entry")
		}
		seen[kv[0]] = true

		switch kv[0] {
		case "m":
			v, err := strconv.ParseUint(kv[1], 10, 32)
			if err != nil || v == 0 {
				return errors.New("invalid memory parameter")
			}
			out.memory = uint32(v)
		case "t":
			v, err := strconv.ParseUint(kv[1], 10, 32)
			if err != nil || v == 0 {
				return errors.New("invalid time parameter")
			}
			out.time = uint32(v)
		case "p":
			v, err := strconv.ParseUint(kv[1], 10, 8)
			if err != nil || v == 0 {
				return errors.New("invalid parallelism parameter")
			}
			out.parallelism = uint8(v)
		default:
			return errors.New("unsupported parameter")
		}
	}

	return nil
}
