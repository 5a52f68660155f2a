package engine

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/chainsafe/files-client/internal/cryptox"
	"github.com/chainsafe/files-client/internal/drive"
	"github.com/chainsafe/files-client/internal/drive/ledger"
	"github.com/chainsafe/files-client/internal/pathx"
)

const (
	genericDownloadMessage = "Something went wrong. We couldn't download your file"
	decryptFailureMessage  = "Unable to decrypt this file"
)

// DownloadFile fetches one object, decrypts it and hands it to the sink.
// Repeating the call for the same bucket and path cancels the previous
// in-flight request before the new one starts; only one download per object
// runs at a time.
func (e *Engine) DownloadFile(ctx context.Context, bucketID string, item drive.FileSystemItem, path string) error {
	fullPath := pathx.Join(path, item.Name)
	slotCtx, release := e.slotContext(ctx, bucketID+":"+fullPath)
	defer release()

	id := uuid.NewString()
	e.downloads.Add(ledger.DownloadProgress{
		ID:                id,
		FileName:          item.Name,
		CurrentFileNumber: 1,
		TotalFileNumber:   1,
	})

	content, err := e.fetchObject(slotCtx, bucketID, item, fullPath, func(loaded, _ int64) {
		e.downloads.SetProgress(id, percent(loaded, item.Size, 100), item.Name, 1)
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// superseded by a newer request for the same object; the newer
			// ledger entry carries the operation from here
			e.downloads.Remove(id)
			return err
		}
		message := genericDownloadMessage
		if errors.Is(err, cryptox.ErrDecryptionFailed) {
			message = decryptFailureMessage
		}
		e.failDownload(ctx, id, message)
		return err
	}

	if err := e.sink.Save(ctx, item.Name, item.ContentType, content); err != nil {
		e.failDownload(ctx, id, genericDownloadMessage)
		return err
	}

	e.downloads.MarkComplete(id)
	e.downloads.ScheduleRemove(id, e.removeDelay)
	e.observe("download", "success")
	return nil
}

func (e *Engine) failDownload(ctx context.Context, id, message string) {
	e.downloads.MarkError(id, message)
	e.downloads.ScheduleRemove(id, e.removeDelay)
	e.observe("download", "error")
	e.log.Error(ctx, "download failed", "id", id, "message", message)
}
