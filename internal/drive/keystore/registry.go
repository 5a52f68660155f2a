// Package keystore resolves and caches per-bucket encryption keys. It owns
// the session's personal key, unwraps shared-bucket keys through the
// threshold-key oracle, and enriches raw bucket listings with keys and the
// caller's permission. Resolution fails closed: a bucket without a
// resolvable key is cached with a nil key and file operations against it
// must refuse to run.
package keystore

import (
	"context"
	"fmt"
	"sync"

	"github.com/chainsafe/files-client/internal/common"
	"github.com/chainsafe/files-client/internal/cryptox"
	"github.com/chainsafe/files-client/internal/drive"
	"github.com/chainsafe/files-client/internal/drive/api"
	"github.com/chainsafe/files-client/internal/drive/keychain"
	"github.com/chainsafe/files-client/internal/logging"
)

// Registry is the in-memory bucket/key cache for one session. All state is
// evicted by Clear on logout; nothing here is ever persisted.
type Registry struct {
	client api.Client
	oracle keychain.Oracle
	userID string
	log    logging.Logger

	mu          sync.RWMutex
	personalKey []byte
	buckets     []drive.Bucket
	summary     api.BucketSummary
	hasSummary  bool
}

func NewRegistry(client api.Client, oracle keychain.Oracle, userID string, log logging.Logger) *Registry {
	return &Registry{client: client, oracle: oracle, userID: userID, log: log}
}

// SecureAccount establishes a fresh random personal key for an account that
// has none yet. The key is wrapped for the account's own public key and
// handed to persist for server-side storage; the clear key stays in memory.
func (r *Registry) SecureAccount(ctx context.Context, persist func(ctx context.Context, wrappedKey string) error) error {
	key := cryptox.GenerateKey()

	wrapped, err := r.oracle.EncryptForPublicKey(ctx, r.oracle.PublicKey(), key)
	if err != nil {
		return fmt.Errorf("wrapping personal key: %w", err)
	}
	if err := persist(ctx, wrapped); err != nil {
		return fmt.Errorf("storing wrapped personal key: %w", err)
	}

	r.mu.Lock()
	r.personalKey = key
	r.mu.Unlock()
	return nil
}

// SecureWithMasterPassword derives the personal key from a master password
// with argon2id instead of generating a random one.
func (r *Registry) SecureWithMasterPassword(password, salt []byte) {
	key := cryptox.DeriveMasterKey(password, salt)
	r.mu.Lock()
	r.personalKey = key
	r.mu.Unlock()
}

// Unlock recovers the personal key from its stored wrapped form, once per
// session.
func (r *Registry) Unlock(ctx context.Context, wrappedKey string) error {
	key, err := r.oracle.DecryptWithThresholdKey(ctx, wrappedKey)
	if err != nil {
		return fmt.Errorf("unwrapping personal key: %w", err)
	}
	r.mu.Lock()
	r.personalKey = key
	r.mu.Unlock()
	return nil
}

// HasPersonalKey reports whether the session key is established.
func (r *Registry) HasPersonalKey() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.personalKey) > 0
}

// Clear evicts every key, bucket and summary. Called on logout.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	// resolved keys are wiped, not just dropped
	for i := range r.buckets {
		common.WipeByteArray(r.buckets[i].EncryptionKey)
	}
	common.WipeByteArray(r.personalKey)
	r.personalKey = nil
	r.buckets = nil
	r.hasSummary = false
}

// Refresh re-lists all buckets, re-resolving each bucket's key and the
// caller's permission, and refreshes the storage summary. It is a no-op
// before the personal key is established. A failing user-list fetch for one
// bucket degrades that bucket to empty principal lists instead of failing
// the whole refresh.
func (r *Registry) Refresh(ctx context.Context) error {
	if !r.HasPersonalKey() {
		return nil
	}

	raw, err := r.client.ListBuckets(ctx)
	if err != nil {
		return &drive.TransportError{Op: "list buckets", Err: err}
	}

	enriched := make([]drive.Bucket, 0, len(raw))
	for _, b := range raw {
		users, err := r.client.GetBucketUsers(ctx, b.ID)
		if err != nil {
			r.log.Warn(ctx, "bucket user list unavailable, degrading to empty lists", "bucket", b.ID, "err", err)
			users = api.BucketUsers{Owners: b.Owners, Writers: nil, Readers: nil}
		}
		enriched = append(enriched, r.enrich(ctx, b, users))
	}

	summary, summaryErr := r.client.BucketsSummary(ctx)

	r.mu.Lock()
	r.buckets = enriched
	if summaryErr == nil {
		r.summary = summary
		r.hasSummary = true
	}
	r.mu.Unlock()

	if summaryErr != nil {
		r.log.Warn(ctx, "storage summary unavailable", "err", summaryErr)
	}
	return nil
}

func (r *Registry) enrich(ctx context.Context, b api.Bucket, users api.BucketUsers) drive.Bucket {
	return drive.Bucket{
		ID:             b.ID,
		Name:           b.Name,
		Type:           drive.BucketType(b.Type),
		FileSystemType: b.FileSystemType,
		EncryptionKey:  r.resolveKey(ctx, b, users),
		Permission:     r.permissionFor(users),
		Owners:         users.Owners,
		Writers:        users.Writers,
		Readers:        users.Readers,
	}
}

// resolveKey is the single place bucket type is switched on for key
// dispatch. Personal and trash buckets use the session personal key; shared
// buckets unwrap the blob addressed to the current principal. A nil return
// means fail-closed.
func (r *Registry) resolveKey(ctx context.Context, b api.Bucket, users api.BucketUsers) []byte {
	r.mu.RLock()
	personal := r.personalKey
	r.mu.RUnlock()

	switch drive.BucketType(b.Type) {
	case drive.BucketPersonal, drive.BucketTrash:
		return personal
	case drive.BucketShared:
		return r.sharedBucketKey(ctx, b.ID, users)
	default:
		r.log.Warn(ctx, "unknown bucket type, no key resolved", "bucket", b.ID, "type", b.Type)
		return nil
	}
}

func (r *Registry) sharedBucketKey(ctx context.Context, bucketID string, users api.BucketUsers) []byte {
	all := make([]api.LookupUser, 0, len(users.Readers)+len(users.Writers)+len(users.Owners))
	all = append(all, users.Readers...)
	all = append(all, users.Writers...)
	all = append(all, users.Owners...)

	for _, u := range all {
		if u.UUID != r.userID || u.EncryptionKey == "" {
			continue
		}
		key, err := r.oracle.DecryptWithThresholdKey(ctx, u.EncryptionKey)
		if err != nil {
			r.log.Error(ctx, "unable to unwrap shared bucket key", "bucket", bucketID, "err", err)
			return nil
		}
		return key
	}

	r.log.Error(ctx, "no wrapped key addressed to current principal", "bucket", bucketID)
	return nil
}

func (r *Registry) permissionFor(users api.BucketUsers) drive.Permission {
	for _, u := range users.Owners {
		if u.UUID == r.userID {
			return drive.PermissionOwner
		}
	}
	for _, u := range users.Writers {
		if u.UUID == r.userID {
			return drive.PermissionWriter
		}
	}
	for _, u := range users.Readers {
		if u.UUID == r.userID {
			return drive.PermissionReader
		}
	}
	return ""
}

// Buckets returns a snapshot of the enriched bucket list.
func (r *Registry) Buckets() []drive.Bucket {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]drive.Bucket, len(r.buckets))
	copy(out, r.buckets)
	return out
}

// Bucket looks one bucket up by id.
func (r *Registry) Bucket(id string) (drive.Bucket, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.buckets {
		if b.ID == id {
			return b, true
		}
	}
	return drive.Bucket{}, false
}

// BucketOfType returns the first bucket of the given type; used for the
// personal root and the trash bucket.
func (r *Registry) BucketOfType(t drive.BucketType) (drive.Bucket, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.buckets {
		if b.Type == t {
			return b, true
		}
	}
	return drive.Bucket{}, false
}

// Summary returns the cached storage usage, if fetched.
func (r *Registry) Summary() (api.BucketSummary, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.summary, r.hasSummary
}
