package keychain

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/nacl/box"
)

// LocalOracle is an Oracle backed by an in-process curve25519 keypair,
// typically derived from the argon2 master key. Wrapping uses anonymous
// (sealed) NaCl boxes, so a wrapped blob carries everything needed to open
// it with the private key alone.
type LocalOracle struct {
	pub  [32]byte
	priv [32]byte
}

// NewLocalOracle builds an oracle from 32 bytes of private key material.
func NewLocalOracle(privateKey []byte) (*LocalOracle, error) {
	if len(privateKey) != 32 {
		return nil, fmt.Errorf("%w: private key must be 32 bytes", ErrKeyExchange)
	}

	o := &LocalOracle{}
	copy(o.priv[:], privateKey)

	pub, err := curve25519.X25519(o.priv[:], curve25519.Basepoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyExchange, err)
	}
	copy(o.pub[:], pub)
	return o, nil
}

func (o *LocalOracle) PublicKey() string {
	return base64.StdEncoding.EncodeToString(o.pub[:])
}

func (o *LocalOracle) EncryptForPublicKey(_ context.Context, publicKey string, plaintext []byte) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(publicKey)
	if err != nil || len(raw) != 32 {
		return "", fmt.Errorf("%w: invalid principal public key", ErrKeyExchange)
	}

	var peer [32]byte
	copy(peer[:], raw)

	sealed, err := box.SealAnonymous(nil, plaintext, &peer, rand.Reader)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrKeyExchange, err)
	}
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (o *LocalOracle) DecryptWithThresholdKey(_ context.Context, wrapped string) ([]byte, error) {
	sealed, err := base64.StdEncoding.DecodeString(wrapped)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed wrapped key", ErrKeyExchange)
	}

	plaintext, ok := box.OpenAnonymous(nil, sealed, &o.pub, &o.priv)
	if !ok {
		return nil, fmt.Errorf("%w: cannot open wrapped key", ErrKeyExchange)
	}
	return plaintext, nil
}
