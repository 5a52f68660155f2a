package engine

import (
	"context"

	"github.com/google/uuid"

	"github.com/chainsafe/files-client/internal/cryptox"
	"github.com/chainsafe/files-client/internal/drive"
	"github.com/chainsafe/files-client/internal/drive/api"
	"github.com/chainsafe/files-client/internal/drive/ledger"
	"github.com/chainsafe/files-client/internal/pathx"
)

const (
	transferDownloadFailed = "An error occurred while downloading the file"
	transferUploadFailed   = "An error occurred while uploading the file"
)

// TransferFileBetweenBuckets re-encrypts one file from a source bucket into a
// destination bucket: download and decrypt with the source key, encrypt with
// the destination key, upload to the destination root. With keepOriginal
// false the source object is deleted, but only after the upload is confirmed.
//
// One transfer ledger entry spans both phases: download maps onto 0-50%,
// encrypt+upload onto 50-100%. The bucket cache is refreshed on every
// outcome so both buckets' listings reflect whatever did happen.
func (e *Engine) TransferFileBetweenBuckets(ctx context.Context, sourceBucketID string, item drive.FileSystemItem, path string, destination drive.Bucket, keepOriginal bool) error {
	id := uuid.NewString()
	e.transfers.Add(ledger.TransferProgress{ID: id, Operation: ledger.TransferDownload})

	defer func() {
		if err := e.registry.Refresh(ctx); err != nil {
			e.log.Warn(ctx, "bucket refresh after transfer failed", "err", err)
		}
		e.transfers.ScheduleRemove(id, e.removeDelay)
	}()

	fullPath := pathx.Join(path, item.Name)
	content, err := e.fetchObject(ctx, sourceBucketID, item, fullPath, func(loaded, _ int64) {
		e.transfers.SetProgress(id, percent(loaded, item.Size, 50))
	})
	if err != nil {
		e.failTransfer(ctx, id, transferDownloadFailed)
		return err
	}

	e.transfers.SetOperation(id, ledger.TransferEncryptUpload)

	if !destination.HasKey() {
		e.failTransfer(ctx, id, transferUploadFailed)
		return drive.ErrMissingKey
	}
	encrypted, err := cryptox.EncryptBuffer(content, destination.EncryptionKey)
	if err != nil {
		e.failTransfer(ctx, id, transferUploadFailed)
		return err
	}

	objects := []api.UploadObject{{
		FileName:    item.Name,
		ContentType: item.ContentType,
		Data:        encrypted,
	}}
	err = e.client.UploadObjects(ctx, destination.ID, objects, "/", func(loaded, total int64) {
		e.transfers.SetProgress(id, 50+percent(loaded, total, 50))
	})
	if err != nil {
		e.failTransfer(ctx, id, transferUploadFailed)
		return drive.ClassifyUploadError(err)
	}
	e.addBytes("upload", int64(len(encrypted)))

	if !keepOriginal {
		if err := e.client.RemoveObjects(ctx, sourceBucketID, []string{fullPath}); err != nil {
			e.failTransfer(ctx, id, transferUploadFailed)
			return &drive.TransportError{Op: "remove source object", Err: err}
		}
	}

	e.transfers.MarkComplete(id)
	e.observe("transfer", "success")
	return nil
}

func (e *Engine) failTransfer(ctx context.Context, id, message string) {
	e.transfers.MarkError(id, message)
	e.observe("transfer", "error")
	e.log.Error(ctx, "transfer failed", "id", id, "message", message)
}
