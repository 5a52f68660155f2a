package drive

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingKey means no symmetric key could be resolved for the
	// bucket. Fatal for the attempted operation, never retried.
	ErrMissingKey = errors.New("no encryption key available for this bucket")

	// ErrNameConflict maps the server's name-conflict response. Recoverable
	// by renaming.
	ErrNameConflict = errors.New("a file with the same name already exists")

	// ErrEmptyManifest is returned by bulk downloads that resolve to zero
	// files.
	ErrEmptyManifest = errors.New("no file to download")

	// ErrOversizedFile marks files skipped from an upload batch for
	// exceeding the maximum size. Warning-grade: the batch proceeds.
	ErrOversizedFile = errors.New("file exceeds the maximum upload size")
)

// TransportError wraps a network or server failure crossing the engine
// boundary. Raw transport errors never reach ledger state; they are wrapped
// here first.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ClassifyUploadError translates a server-side upload failure into the
// user-facing taxonomy: conflict responses become ErrNameConflict, anything
// else a TransportError.
func ClassifyUploadError(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(strings.ToLower(err.Error()), "conflict") {
		return ErrNameConflict
	}
	return &TransportError{Op: "upload", Err: err}
}
