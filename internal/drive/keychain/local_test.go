package keychain

import (
	"context"
	"testing"

	"github.com/chainsafe/files-client/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalOracle_WrapUnwrapRoundTrip(t *testing.T) {
	ctx := context.Background()
	oracle, err := NewLocalOracle(common.GenerateRandByteArray(32))
	require.NoError(t, err)

	secret := []byte("bucket key material")
	wrapped, err := oracle.EncryptForPublicKey(ctx, oracle.PublicKey(), secret)
	require.NoError(t, err)
	require.NotEmpty(t, wrapped)

	got, err := oracle.DecryptWithThresholdKey(ctx, wrapped)
	require.NoError(t, err)
	assert.Equal(t, secret, got)
}

func TestLocalOracle_WrongRecipient(t *testing.T) {
	ctx := context.Background()
	alice, err := NewLocalOracle(common.GenerateRandByteArray(32))
	require.NoError(t, err)
	bob, err := NewLocalOracle(common.GenerateRandByteArray(32))
	require.NoError(t, err)

	wrapped, err := alice.EncryptForPublicKey(ctx, bob.PublicKey(), []byte("for bob"))
	require.NoError(t, err)

	_, err = alice.DecryptWithThresholdKey(ctx, wrapped)
	assert.ErrorIs(t, err, ErrKeyExchange)
}

func TestLocalOracle_BadInputs(t *testing.T) {
	ctx := context.Background()
	oracle, err := NewLocalOracle(common.GenerateRandByteArray(32))
	require.NoError(t, err)

	_, err = NewLocalOracle([]byte("short"))
	assert.ErrorIs(t, err, ErrKeyExchange)

	_, err = oracle.EncryptForPublicKey(ctx, "not base64!!!", []byte("x"))
	assert.ErrorIs(t, err, ErrKeyExchange)

	_, err = oracle.DecryptWithThresholdKey(ctx, "also not base64!!!")
	assert.ErrorIs(t, err, ErrKeyExchange)
}
