package cli

import (
	"context"
	"fmt"
	"io"
)

// consoleToaster prints operation toasts to the CLI output stream.
type consoleToaster struct {
	out io.Writer
}

func (t *consoleToaster) Success(_ context.Context, message string) {
	fmt.Fprintln(t.out, message)
}

func (t *consoleToaster) Error(_ context.Context, message string) {
	fmt.Fprintln(t.out, "error:", message)
}
