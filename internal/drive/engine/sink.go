package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DiskSink writes downloaded payloads into a directory, creating it on first
// use. Path traversal in archive member names is rejected.
type DiskSink struct {
	Dir string
}

func (s *DiskSink) Save(_ context.Context, name, _ string, data []byte) error {
	target := filepath.Join(s.Dir, filepath.FromSlash(name))

	rel, err := filepath.Rel(s.Dir, target)
	if err != nil || rel == ".." || len(rel) > 2 && rel[:3] == ".."+string(filepath.Separator) {
		return fmt.Errorf("refusing to write outside %s: %s", s.Dir, name)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("creating download directory: %w", err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// DiscardSink drops payloads. Default when no sink is configured, and handy
// in tests that only assert on ledger state.
type DiscardSink struct{}

func (*DiscardSink) Save(context.Context, string, string, []byte) error { return nil }
