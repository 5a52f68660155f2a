// Package keychain abstracts the asymmetric key-wrapping oracle. The
// production system delegates to a threshold-key service; this package
// defines the contract and ships a local NaCl-box implementation so the CLI
// and tests can run without it.
package keychain

import (
	"context"
	"errors"
)

// ErrKeyExchange wraps every oracle failure: service unavailable, malformed
// principal key, undecryptable blob. Matched with errors.Is.
var ErrKeyExchange = errors.New("key exchange failed")

// Oracle performs asymmetric wrap/unwrap of symmetric bucket keys. Wrapped
// blobs are opaque base64 strings; only the oracle that owns the matching
// private key can open them.
type Oracle interface {
	// PublicKey returns the account public key other principals wrap for.
	PublicKey() string

	// EncryptForPublicKey wraps plaintext for one principal's public key.
	EncryptForPublicKey(ctx context.Context, publicKey string, plaintext []byte) (string, error)

	// DecryptWithThresholdKey opens a blob wrapped for this account.
	DecryptWithThresholdKey(ctx context.Context, wrapped string) ([]byte, error)
}
