package engine

import (
	"context"

	"github.com/chainsafe/files-client/internal/drive"
	"github.com/chainsafe/files-client/internal/drive/api"
	"github.com/chainsafe/files-client/internal/pathx"
)

// MoveObjects is the single primitive behind rename, move, trash and
// recover. A move stays within bucketID unless destinationBucketID is set,
// in which case the server rebinds the objects to the destination bucket.
// Content bytes never move; both buckets in a cross-bucket move share the
// trash/personal key domain.
func (e *Engine) MoveObjects(ctx context.Context, bucketID string, fromPaths []string, newPath, destinationBucketID string) error {
	req := api.MoveObjectsRequest{
		Paths:       fromPaths,
		NewPath:     newPath,
		Destination: destinationBucketID,
	}
	if err := e.client.MoveObjects(ctx, bucketID, req); err != nil {
		return &drive.TransportError{Op: "move objects", Err: err}
	}
	return nil
}

// RenameItem moves an item to a new name under the same path.
func (e *Engine) RenameItem(ctx context.Context, bucketID string, item drive.FileSystemItem, currentPath, newName string) error {
	err := e.MoveObjects(ctx, bucketID,
		[]string{pathx.Join(currentPath, item.Name)},
		pathx.Join(currentPath, newName), "")
	e.refreshAfterMove(ctx)
	if err != nil {
		e.toasts.Error(ctx, "There was an error renaming this "+itemKind(item))
		return err
	}
	return nil
}

// MoveItems relocates items to another path in the same bucket.
func (e *Engine) MoveItems(ctx context.Context, bucketID string, items []drive.FileSystemItem, currentPath, newPath string) error {
	var firstErr error
	for _, item := range items {
		err := e.MoveObjects(ctx, bucketID,
			[]string{pathx.Join(currentPath, item.Name)},
			pathx.Join(newPath, item.Name), "")
		if err != nil {
			e.toasts.Error(ctx, "There was an error moving this "+itemKind(item))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		e.toasts.Success(ctx, kindLabel(item)+" moved successfully")
	}
	e.refreshAfterMove(ctx)
	return firstErr
}

// MoveToBin moves items into the trash bucket, under the trash root. The
// objects stay encrypted with the personal key, so no re-encryption happens.
func (e *Engine) MoveToBin(ctx context.Context, bucketID string, items []drive.FileSystemItem, currentPath string) error {
	trash, ok := e.registry.BucketOfType(drive.BucketTrash)
	if !ok {
		return drive.ErrMissingKey
	}

	var firstErr error
	for _, item := range items {
		err := e.MoveObjects(ctx, bucketID,
			[]string{pathx.Join(currentPath, item.Name)},
			pathx.Join("/", item.Name), trash.ID)
		if err != nil {
			e.toasts.Error(ctx, "There was an error deleting this "+itemKind(item))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		e.toasts.Success(ctx, kindLabel(item)+" deleted successfully")
	}
	e.refreshAfterMove(ctx)
	return firstErr
}

// RecoverItems moves items out of the trash bucket back into a destination
// bucket and path.
func (e *Engine) RecoverItems(ctx context.Context, items []drive.FileSystemItem, currentPath string, destination drive.Bucket, destinationPath string) error {
	trash, ok := e.registry.BucketOfType(drive.BucketTrash)
	if !ok {
		return drive.ErrMissingKey
	}

	var firstErr error
	for _, item := range items {
		err := e.MoveObjects(ctx, trash.ID,
			[]string{pathx.Join(currentPath, item.Name)},
			pathx.Join(destinationPath, item.Name), destination.ID)
		if err != nil {
			e.toasts.Error(ctx, "There was an error recovering this "+itemKind(item))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		e.toasts.Success(ctx, kindLabel(item)+" recovered successfully")
	}
	e.refreshAfterMove(ctx)
	return firstErr
}

// DeleteItems removes items permanently. Meant for the trash bucket; there
// is no recovery after this.
func (e *Engine) DeleteItems(ctx context.Context, bucketID string, items []drive.FileSystemItem, currentPath string) error {
	paths := make([]string, len(items))
	for i, item := range items {
		paths[i] = pathx.Join(currentPath, item.Name)
	}

	err := e.client.RemoveObjects(ctx, bucketID, paths)
	e.refreshAfterMove(ctx)
	if err != nil {
		e.toasts.Error(ctx, "There was an error deleting your data")
		return &drive.TransportError{Op: "remove objects", Err: err}
	}
	e.toasts.Success(ctx, "Data deleted successfully")
	return nil
}

// refreshAfterMove refreshes the bucket cache regardless of outcome, so a
// partially applied batch is reflected rather than hidden.
func (e *Engine) refreshAfterMove(ctx context.Context) {
	if err := e.registry.Refresh(ctx); err != nil {
		e.log.Warn(ctx, "bucket refresh after move failed", "err", err)
	}
}

func itemKind(item drive.FileSystemItem) string {
	if item.IsFolder {
		return "folder"
	}
	return "file"
}

func kindLabel(item drive.FileSystemItem) string {
	if item.IsFolder {
		return "Folder"
	}
	return "File"
}
