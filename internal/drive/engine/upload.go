package engine

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/chainsafe/files-client/internal/cryptox"
	"github.com/chainsafe/files-client/internal/drive"
	"github.com/chainsafe/files-client/internal/drive/api"
	"github.com/chainsafe/files-client/internal/drive/ledger"
)

const (
	oversizedUploadMessage = "We can't encrypt files larger than 2GB. Some items will not be uploaded"
	conflictUploadMessage  = "A file with the same name already exists"
	genericUploadMessage   = "Something went wrong. We couldn't upload your file"
)

// UploadFiles encrypts the given files with the bucket key and uploads them
// as one batch under path. Oversized files are dropped from the batch with a
// warning toast; the remaining files still go up. The whole batch shares one
// upload ledger entry and one progress stream.
//
// A bucket without a resolved key refuses the upload before any ledger entry
// exists.
func (e *Engine) UploadFiles(ctx context.Context, bucketID string, files []drive.IncomingFile, path string) error {
	bucket, ok := e.registry.Bucket(bucketID)
	if !ok || !bucket.HasKey() {
		return drive.ErrMissingKey
	}
	if len(files) == 0 {
		return nil
	}

	accepted := files[:0:0]
	for _, f := range files {
		if f.Size > e.maxFileSize {
			continue
		}
		accepted = append(accepted, f)
	}
	if len(accepted) < len(files) {
		e.toasts.Error(ctx, oversizedUploadMessage)
	}
	if len(accepted) == 0 {
		return drive.ErrOversizedFile
	}

	id := uuid.NewString()
	e.uploads.Add(ledger.UploadProgress{
		ID:        id,
		FileName:  accepted[0].Name,
		NoOfFiles: len(accepted),
		Path:      path,
	})

	objects := make([]api.UploadObject, len(accepted))
	var g errgroup.Group
	for i, f := range accepted {
		i, f := i, f
		g.Go(func() error {
			encrypted, err := cryptox.EncryptBuffer(f.Content, bucket.EncryptionKey)
			if err != nil {
				return err
			}
			objects[i] = api.UploadObject{
				FileName:    f.Name,
				ContentType: f.ContentType,
				Data:        encrypted,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		e.failUpload(ctx, id, genericUploadMessage)
		return err
	}

	err := e.client.UploadObjects(ctx, bucketID, objects, path, func(loaded, total int64) {
		e.uploads.SetProgress(id, percent(loaded, total, 100))
	})
	if err != nil {
		classified := drive.ClassifyUploadError(err)
		message := genericUploadMessage
		if classified == drive.ErrNameConflict {
			message = conflictUploadMessage
		}
		e.failUpload(ctx, id, message)
		return classified
	}

	for _, o := range objects {
		e.addBytes("upload", int64(len(o.Data)))
	}
	if err := e.registry.Refresh(ctx); err != nil {
		e.log.Warn(ctx, "bucket refresh after upload failed", "err", err)
	}

	e.uploads.MarkComplete(id)
	e.uploads.ScheduleRemove(id, e.removeDelay)
	e.observe("upload", "success")
	return nil
}

func (e *Engine) failUpload(ctx context.Context, id, message string) {
	e.uploads.MarkError(id, message)
	e.uploads.ScheduleRemove(id, e.removeDelay)
	e.observe("upload", "error")
	e.log.Error(ctx, "upload failed", "id", id, "message", message)
}
