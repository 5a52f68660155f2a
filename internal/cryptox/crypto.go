// Package cryptox implements the symmetric crypto primitives used for bucket
// content: AES-256-GCM buffer encryption with a self-contained nonce
// envelope, random key generation, and argon2id master-key derivation.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/chainsafe/files-client/internal/common"
	"golang.org/x/crypto/argon2"
)

// KeySize is the symmetric key length in bytes (AES-256).
const KeySize = 32

const nonceSize = 12

// ErrDecryptionFailed is returned when a ciphertext cannot be opened: wrong
// key, truncated envelope, or tampered data. Matched with errors.Is.
var ErrDecryptionFailed = errors.New("decryption failed")

// GenerateKey returns a fresh random 32-byte bucket key.
func GenerateKey() []byte {
	return common.GenerateRandByteArray(KeySize)
}

// EncryptBuffer encrypts plaintext with AES-256-GCM under key. The returned
// ciphertext carries a random 12-byte nonce prefix followed by the sealed
// data, so it can be decrypted with DecryptBuffer and nothing else.
//
// The size overhead is constant: nonce (12 bytes) plus the GCM tag (16 bytes).
func EncryptBuffer(plaintext, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("new gcm: %w", err)
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}

	return aesgcm.Seal(nonce, nonce, plaintext, nil), nil
}

// DecryptBuffer opens a ciphertext produced by EncryptBuffer. It returns
// ErrDecryptionFailed when the key is wrong or the envelope is malformed or
// truncated.
func DecryptBuffer(ciphertext, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("new gcm: %w", err)
	}

	if len(ciphertext) < nonceSize {
		return nil, fmt.Errorf("%w: envelope too short", ErrDecryptionFailed)
	}
	nonce, sealed := ciphertext[:nonceSize], ciphertext[nonceSize:]

	plaintext, err := aesgcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

// DeriveMasterKey stretches a master password into a 32-byte key with
// argon2id.
func DeriveMasterKey(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, KeySize)
}

// MakeVerifier returns a hash of the master key suitable for password
// validation without storing the key itself.
func MakeVerifier(masterKey []byte) []byte {
	hash := sha256.Sum256(masterKey)
	return hash[:]
}
