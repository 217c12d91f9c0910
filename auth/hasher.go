package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/argon2"

	apperrors "github.com/nicodev/portfolio-server/internal/errors"
)

// OWASP-recommended argon2id parameters.
const (
	argon2Time    = 1         // iterations
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4         // parallelism
	argon2SaltLen = 16        // salt length in bytes
	argon2KeyLen  = 32        // output length in bytes

	// argon2MaxMemory caps the memory parameter accepted from a stored
	// hash (KiB). Without it a crafted hash could demand a multi-GB
	// allocation per verification.
	argon2MaxMemory = 1 << 20 // 1 GiB
)

// PasswordHasher produces and verifies salted password hashes. The encoded
// output is self-describing (algorithm, parameters, salt and digest in one
// string), so verification needs no state beyond the stored hash.
type PasswordHasher interface {
	Hash(password string) (string, error)

	// Verify returns (true, nil) on match and (false, nil) on mismatch.
	// A mismatch is not an error: collapsing the two avoids leaking
	// information through error-vs-boolean branching.
	Verify(password, encodedHash string) (bool, error)
}

// Argon2idHasher implements PasswordHasher using argon2id.
type Argon2idHasher struct{}

// NewArgon2idHasher creates a new Argon2idHasher.
func NewArgon2idHasher() *Argon2idHasher {
	return &Argon2idHasher{}
}

// Hash produces an argon2id hash of the password with a fresh random salt.
// A fixed or configured salt is never acceptable here: identical passwords
// must never produce identical hashes.
func (h *Argon2idHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", errors.Wrap(apperrors.ErrInvalidInput, "[Hash] password cannot be empty")
	}

	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", errors.Wrap(err, "[Hash] generate salt")
	}

	digest := argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	// PHC string format:
	// $argon2id$v=19$m=65536,t=1,p=4$<salt>$<digest>
	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argon2Memory,
		argon2Time,
		argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(digest),
	)

	return encoded, nil
}

// Verify checks the password against a PHC-encoded argon2id hash.
func (h *Argon2idHasher) Verify(password, encodedHash string) (bool, error) {
	if password == "" {
		return false, errors.Wrap(apperrors.ErrInvalidInput, "[Verify] password cannot be empty")
	}
	if encodedHash == "" {
		return false, errors.Wrap(apperrors.ErrInvalidInput, "[Verify] stored hash cannot be empty")
	}

	salt, expected, time, memory, threads, err := decodeHash(encodedHash)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey([]byte(password), salt, time, memory, threads, uint32(len(expected)))

	return subtle.ConstantTimeCompare(computed, expected) == 1, nil
}

// decodeHash parses a PHC argon2id string into its parameters, salt and
// digest.
func decodeHash(encodedHash string) (salt, digest []byte, time, memory uint32, threads uint8, err error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return nil, nil, 0, 0, 0, errors.Wrap(apperrors.ErrInvalidInput, "[Verify] malformed encoded hash")
	}
	if parts[1] != "argon2id" {
		return nil, nil, 0, 0, 0, errors.Wrapf(apperrors.ErrInvalidInput, "[Verify] unsupported hash algorithm %q", parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, nil, 0, 0, 0, errors.Wrap(apperrors.ErrInvalidInput, "[Verify] malformed hash version")
	}
	if version != argon2.Version {
		return nil, nil, 0, 0, 0, errors.Wrapf(apperrors.ErrInvalidInput, "[Verify] incompatible argon2 version %d", version)
	}

	var parallelism uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &parallelism); err != nil {
		return nil, nil, 0, 0, 0, errors.Wrap(apperrors.ErrInvalidInput, "[Verify] malformed hash parameters")
	}
	if parallelism == 0 || parallelism > 255 {
		return nil, nil, 0, 0, 0, errors.Wrapf(apperrors.ErrInvalidInput, "[Verify] parallelism %d out of range", parallelism)
	}
	// argon2.IDKey panics on zero iterations, so this must be a parse error.
	if time == 0 {
		return nil, nil, 0, 0, 0, errors.Wrap(apperrors.ErrInvalidInput, "[Verify] iterations out of range")
	}
	if memory > argon2MaxMemory {
		return nil, nil, 0, 0, 0, errors.Wrapf(apperrors.ErrInvalidInput, "[Verify] memory %d out of range", memory)
	}

	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, 0, 0, 0, errors.Wrap(apperrors.ErrInvalidInput, "[Verify] malformed salt encoding")
	}
	digest, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, nil, 0, 0, 0, errors.Wrap(apperrors.ErrInvalidInput, "[Verify] malformed digest encoding")
	}
	if len(digest) == 0 {
		return nil, nil, 0, 0, 0, errors.Wrap(apperrors.ErrInvalidInput, "[Verify] empty digest")
	}

	return salt, digest, time, memory, uint8(parallelism), nil
}
