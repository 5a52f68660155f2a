package drive

import (
	"context"

	"github.com/chainsafe/files-client/internal/logging"
)

// Toaster is the user-notification surface operations report through. The
// real UI is an external collaborator; the core only needs these two levels.
type Toaster interface {
	Success(ctx context.Context, message string)
	Error(ctx context.Context, message string)
}

// LogToaster routes toasts to the structured log. Default for headless use.
type LogToaster struct {
	Log logging.Logger
}

func (t *LogToaster) Success(ctx context.Context, message string) {
	t.Log.Info(ctx, message)
}

func (t *LogToaster) Error(ctx context.Context, message string) {
	t.Log.Warn(ctx, message)
}
