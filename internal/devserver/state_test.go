package devserver

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewObjectRecord_BlobKeyIsRandomHex(t *testing.T) {
	a := newObjectRecord("/a.txt", "text/plain", 3)
	b := newObjectRecord("/b.txt", "text/plain", 3)

	_, err := hex.DecodeString(a.blobKey)
	require.NoError(t, err)
	assert.Len(t, a.blobKey, 32)

	assert.NotEqual(t, a.blobKey, b.blobKey)
	assert.NotEqual(t, a.blobKey, a.cid)
}
