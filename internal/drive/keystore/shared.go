package keystore

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/chainsafe/files-client/internal/cryptox"
	"github.com/chainsafe/files-client/internal/drive"
	"github.com/chainsafe/files-client/internal/drive/api"
)

// CreateSharedFolder generates a fresh random bucket key, wraps it for the
// owner and every listed principal (independently, in parallel), and submits
// the bucket-create call. The returned bucket is already enriched with the
// clear key and owner permission.
func (r *Registry) CreateSharedFolder(ctx context.Context, name string, writers, readers []drive.SharedFolderUser) (*drive.Bucket, error) {
	key := cryptox.GenerateKey()

	ownerWrapped, err := r.oracle.EncryptForPublicKey(ctx, r.oracle.PublicKey(), key)
	if err != nil {
		return nil, fmt.Errorf("wrapping key for owner: %w", err)
	}

	wrappedWriters, err := r.wrapForPrincipals(ctx, key, writers)
	if err != nil {
		return nil, err
	}
	wrappedReaders, err := r.wrapForPrincipals(ctx, key, readers)
	if err != nil {
		return nil, err
	}

	created, err := r.client.CreateBucket(ctx, api.CreateBucketRequest{
		Name:          name,
		Type:          string(drive.BucketShared),
		EncryptionKey: ownerWrapped,
		Writers:       wrappedWriters,
		Readers:       wrappedReaders,
	})
	if err != nil {
		return nil, &drive.TransportError{Op: "create bucket", Err: err}
	}

	if err := r.Refresh(ctx); err != nil {
		r.log.Warn(ctx, "bucket refresh after create failed", "err", err)
	}

	bucket := drive.Bucket{
		ID:            created.ID,
		Name:          created.Name,
		Type:          drive.BucketShared,
		EncryptionKey: key,
		Permission:    drive.PermissionOwner,
		Owners:        created.Owners,
		Writers:       created.Writers,
		Readers:       created.Readers,
	}
	return &bucket, nil
}

// EditSharedFolder updates a shared bucket's principal lists. Principals
// whose public key changed get the existing bucket key re-wrapped; everyone
// else has their stored wrapped blob resent unchanged. The bucket key itself
// is never rotated here and never leaves the client in clear form.
func (r *Registry) EditSharedFolder(ctx context.Context, bucket drive.Bucket, writers, readers []drive.UpdateSharedFolderUser) error {
	if !bucket.HasKey() {
		return drive.ErrMissingKey
	}

	updatedWriters, err := r.rewrapForPrincipals(ctx, bucket.EncryptionKey, writers)
	if err != nil {
		return err
	}
	updatedReaders, err := r.rewrapForPrincipals(ctx, bucket.EncryptionKey, readers)
	if err != nil {
		return err
	}

	if err := r.client.UpdateBucket(ctx, bucket.ID, api.UpdateBucketRequest{
		Name:    bucket.Name,
		Writers: updatedWriters,
		Readers: updatedReaders,
	}); err != nil {
		return &drive.TransportError{Op: "update bucket", Err: err}
	}

	if err := r.Refresh(ctx); err != nil {
		r.log.Warn(ctx, "bucket refresh after edit failed", "err", err)
	}
	return nil
}

func (r *Registry) wrapForPrincipals(ctx context.Context, key []byte, principals []drive.SharedFolderUser) ([]api.LookupUser, error) {
	out := make([]api.LookupUser, len(principals))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range principals {
		i, p := i, p
		g.Go(func() error {
			wrapped, err := r.oracle.EncryptForPublicKey(gctx, p.PubKey, key)
			if err != nil {
				return fmt.Errorf("wrapping key for %s: %w", p.UUID, err)
			}
			out[i] = api.LookupUser{UUID: p.UUID, EncryptionKey: wrapped}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Registry) rewrapForPrincipals(ctx context.Context, key []byte, principals []drive.UpdateSharedFolderUser) ([]api.LookupUser, error) {
	out := make([]api.LookupUser, len(principals))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range principals {
		i, p := i, p
		g.Go(func() error {
			if p.PubKey == "" {
				out[i] = api.LookupUser{UUID: p.UUID, EncryptionKey: p.EncryptionKey}
				return nil
			}
			wrapped, err := r.oracle.EncryptForPublicKey(gctx, p.PubKey, key)
			if err != nil {
				return fmt.Errorf("re-wrapping key for %s: %w", p.UUID, err)
			}
			out[i] = api.LookupUser{UUID: p.UUID, EncryptionKey: wrapped}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
