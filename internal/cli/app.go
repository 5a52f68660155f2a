// Package cli wires the transfer core into a command-line client: viper
// configuration, master-password unlock, command dispatch, and the
// operation-in-progress warning on exit.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/chainsafe/files-client/internal/common"
	"github.com/chainsafe/files-client/internal/cryptox"
	"github.com/chainsafe/files-client/internal/drive/api/rest"
	"github.com/chainsafe/files-client/internal/drive/engine"
	"github.com/chainsafe/files-client/internal/drive/keychain"
	"github.com/chainsafe/files-client/internal/drive/keystore"
	"github.com/chainsafe/files-client/internal/filex"
	"github.com/chainsafe/files-client/internal/logging"
)

type App struct {
	cfg    *Config
	log    logging.Logger
	out    io.Writer
	client *rest.Client

	registry *keystore.Registry
	engine   *engine.Engine
}

func NewApp(cfg *Config, log logging.Logger) *App {
	return &App{
		cfg:    cfg,
		log:    log,
		out:    os.Stdout,
		client: rest.NewClient(cfg.ServerURL, rest.WithLogger(log)),
	}
}

// Run logs in, executes one command, and prints the in-progress warning if
// anything is still running at exit.
func (a *App) Run(ctx context.Context, args []string) error {
	password, err := GetPassword(a.out)
	if err != nil {
		return fmt.Errorf("reading master password: %w", err)
	}
	defer common.WipeByteArray(password)

	if err := a.Login(ctx, password); err != nil {
		return err
	}
	defer a.Logout()

	if err := a.Dispatch(ctx, args); err != nil {
		return err
	}

	if warning := a.engine.NavigationWarning(); warning != "" {
		fmt.Fprintln(a.out, warning)
	}
	return nil
}

// Login authenticates against the server, derives the session keys from the
// master password and builds the registry and engine around them. The derived
// master key is checked against the verifier recorded by earlier sessions, so
// a mistyped password fails here instead of silently producing unreadable
// content. The oracle keypair uses its own derivation so the personal key and
// the private key never coincide.
func (a *App) Login(ctx context.Context, password []byte) error {
	if err := a.client.Login(ctx, a.cfg.Username, string(password)); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	downloadDir, err := filex.EnsureDir(a.cfg.DownloadDir)
	if err != nil {
		return fmt.Errorf("preparing download directory: %w", err)
	}

	salt := []byte(a.cfg.Salt)
	masterKey := cryptox.DeriveMasterKey(password, salt)
	defer common.WipeByteArray(masterKey)
	if err := checkVerifier(filepath.Join(downloadDir, verifierFileName), masterKey); err != nil {
		return err
	}

	oracleSeed := cryptox.DeriveMasterKey(password, append(salt, []byte(".oracle")...))
	defer common.WipeByteArray(oracleSeed)

	oracle, err := keychain.NewLocalOracle(oracleSeed)
	if err != nil {
		return fmt.Errorf("initializing key oracle: %w", err)
	}

	a.registry = keystore.NewRegistry(a.client, oracle, a.cfg.Username, a.log)
	a.registry.SecureWithMasterPassword(password, salt)

	a.engine = engine.New(a.client, a.registry,
		engine.WithToaster(&consoleToaster{out: a.out}),
		engine.WithSink(&engine.DiskSink{Dir: downloadDir}),
		engine.WithLogger(a.log))

	if err := a.registry.Refresh(ctx); err != nil {
		return fmt.Errorf("loading buckets: %w", err)
	}
	return nil
}

// Logout evicts all key material.
func (a *App) Logout() {
	if a.registry != nil {
		a.registry.Clear()
	}
}
