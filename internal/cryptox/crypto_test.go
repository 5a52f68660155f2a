package cryptox

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptBuffer_RoundTrip(t *testing.T) {
	key := GenerateKey()

	tests := []struct {
		name      string
		plaintext []byte
	}{
		{"empty", []byte{}},
		{"small", []byte("hello world")},
		{"binary", bytes.Repeat([]byte{0x00, 0xff, 0x7f}, 1000)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ct, err := EncryptBuffer(tt.plaintext, key)
			require.NoError(t, err)
			// nonce + tag overhead is constant
			assert.Equal(t, len(tt.plaintext)+28, len(ct))

			pt, err := DecryptBuffer(ct, key)
			require.NoError(t, err)
			assert.Equal(t, tt.plaintext, pt)
		})
	}
}

func TestDecryptBuffer_WrongKey(t *testing.T) {
	ct, err := EncryptBuffer([]byte("secret"), GenerateKey())
	require.NoError(t, err)

	_, err = DecryptBuffer(ct, GenerateKey())
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestDecryptBuffer_Truncated(t *testing.T) {
	key := GenerateKey()
	ct, err := EncryptBuffer([]byte("secret"), key)
	require.NoError(t, err)

	_, err = DecryptBuffer(ct[:8], key)
	assert.ErrorIs(t, err, ErrDecryptionFailed)

	_, err = DecryptBuffer(ct[:len(ct)-1], key)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestDecryptBuffer_Tampered(t *testing.T) {
	key := GenerateKey()
	ct, err := EncryptBuffer([]byte("secret"), key)
	require.NoError(t, err)

	ct[len(ct)-1] ^= 0x01
	_, err = DecryptBuffer(ct, key)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestDeriveMasterKey_Deterministic(t *testing.T) {
	salt := []byte("0123456789abcdef")
	a := DeriveMasterKey([]byte("password"), salt)
	b := DeriveMasterKey([]byte("password"), salt)
	c := DeriveMasterKey([]byte("other"), salt)

	require.Len(t, a, KeySize)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
