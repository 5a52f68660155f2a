package cli

import (
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/chainsafe/files-client/internal/cryptox"
)

const verifierFileName = ".files-verifier"

var errVerifierMismatch = errors.New("master password does not match the one used in earlier sessions")

// checkVerifier validates the master key against the verifier recorded by
// earlier sessions; the first session writes it. A mistyped master password
// is caught here, before anything gets encrypted under the wrong key. Only a
// hash of the key touches disk.
func checkVerifier(path string, masterKey []byte) error {
	want := cryptox.MakeVerifier(masterKey)

	stored, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return os.WriteFile(path, []byte(hex.EncodeToString(want)), 0o600)
	}
	if err != nil {
		return fmt.Errorf("reading password verifier: %w", err)
	}

	got, err := hex.DecodeString(strings.TrimSpace(string(stored)))
	if err != nil || subtle.ConstantTimeCompare(got, want) != 1 {
		return errVerifierMismatch
	}
	return nil
}
