// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MindSentry Contributors

package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"
)

// OWASP-recommended argon2id parameters.
const (
	argon2Time    = 1         // iterations
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4         // parallelism
	argon2SaltLen = 16        // salt length in bytes
	argon2KeyLen  = 32        // output length in bytes

	// maxArgon2Memory bounds the m= parameter accepted from a stored
	// hash: 2 GiB in KiB units.
	maxArgon2Memory = 1 << 21
)

// ErrEmptyPassword is returned when attempting to hash an empty password.
var ErrEmptyPassword = oops.Code("AUTH_EMPTY_PASSWORD").Errorf("password cannot be empty")

// PasswordHasher provides one-way password hashing and verification.
type PasswordHasher interface {
	// Hash produces a salted, self-describing hash of the password. The
	// salt and cost parameters are embedded in the output. Fails only on
	// entropy-source failure.
	Hash(password string) (string, error)

	// Verify reports whether the password matches the encoded hash.
	// It returns false for any mismatch or malformed hash; it never
	// errors, so callers cannot distinguish "wrong password" from
	// "unparseable hash" through behavior.
	Verify(password, encodedHash string) bool
}

// Argon2idHasher implements PasswordHasher using argon2id in PHC string
// format: $argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>.
type Argon2idHasher struct{}

// NewArgon2idHasher creates a new Argon2idHasher.
func NewArgon2idHasher() *Argon2idHasher {
	return &Argon2idHasher{}
}

// Hash produces an argon2id hash of the password.
func (h *Argon2idHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", oops.Code("AUTH_SALT_FAILED").Wrap(err)
	}

	hash := argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argon2Memory,
		argon2Time,
		argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	)

	return encoded, nil
}

// Verify reports whether the password matches the encoded hash. Malformed
// hashes verify as false.
func (h *Argon2idHasher) Verify(password, encodedHash string) bool {
	params, salt, expected, ok := decodeHash(encodedHash)
	if !ok {
		return false
	}

	computed := argon2.IDKey([]byte(password), salt, params.time, params.memory, params.threads, uint32(len(expected)))

	return subtle.ConstantTimeCompare(computed, expected) == 1
}

type argon2Params struct {
	memory  uint32
	time    uint32
	threads uint8
}

// decodeHash parses a PHC-format argon2id string. The boolean result is
// false for any structural problem: wrong field count, wrong algorithm,
// unparseable parameters, bad base64, or out-of-range values.
func decodeHash(encodedHash string) (argon2Params, []byte, []byte, bool) {
	var zero argon2Params

	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return zero, nil, nil, false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return zero, nil, nil, false
	}

	var memory, time, threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return zero, nil, nil, false
	}
	// threads must fit in uint8; argon2.IDKey takes it as uint8
	if threads == 0 || threads > 255 || time == 0 {
		return zero, nil, nil, false
	}
	// Cap memory at 2 GiB (KiB units) so a corrupt hash cannot drive
	// argon2.IDKey into an enormous allocation.
	if memory == 0 || memory > maxArgon2Memory {
		return zero, nil, nil, false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return zero, nil, nil, false
	}
	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return zero, nil, nil, false
	}
	if len(hash) == 0 || len(hash) > 1<<10 {
		return zero, nil, nil, false
	}

	return argon2Params{memory: memory, time: time, threads: uint8(threads)}, salt, hash, true
}

// Compile-time interface check.
var _ PasswordHasher = (*Argon2idHasher)(nil)
