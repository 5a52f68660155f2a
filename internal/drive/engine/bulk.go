package engine

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/chainsafe/files-client/internal/cryptox"
	"github.com/chainsafe/files-client/internal/drive"
	"github.com/chainsafe/files-client/internal/drive/ledger"
	"github.com/chainsafe/files-client/internal/pathx"
)

const skippedEntriesMessage = "Some files could not be decrypted and were left out of the archive"

// manifestEntry is one file selected for a bulk download, remembered together
// with the directory it was found in so the archive keeps relative paths.
type manifestEntry struct {
	item drive.FileSystemItem
	dir  string
}

// DownloadMultipleFiles resolves the selection into a flat file manifest
// (folders are expanded depth-first), downloads and decrypts each file
// sequentially, and delivers the result as a single uncompressed zip archive.
// One download ledger entry tracks the whole batch; progress runs over the
// summed byte size of the manifest.
//
// A file that fails to decrypt is skipped and reported; a transport failure
// aborts the batch.
func (e *Engine) DownloadMultipleFiles(ctx context.Context, bucketID string, items []drive.FileSystemItem, currentPath string) error {
	manifest, totalSize, err := e.buildManifest(ctx, bucketID, items, currentPath)
	if err != nil {
		e.log.Error(ctx, "unable to resolve download manifest", "bucket", bucketID, "err", err)
		return err
	}

	id := uuid.NewString()
	entry := ledger.DownloadProgress{ID: id, TotalFileNumber: len(manifest)}
	if len(manifest) > 0 {
		entry.FileName = manifest[0].item.Name
		entry.CurrentFileNumber = 1
	}
	e.downloads.Add(entry)

	if len(manifest) == 0 {
		e.failDownload(ctx, id, drive.ErrEmptyManifest.Error())
		return drive.ErrEmptyManifest
	}

	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)

	var downloaded int64
	var skipped int
	for i, m := range manifest {
		fullPath := pathx.Join(m.dir, m.item.Name)
		fileNumber := i + 1

		content, err := e.fetchObject(ctx, bucketID, m.item, fullPath, func(loaded, _ int64) {
			e.downloads.SetProgress(id, percent(downloaded+loaded, totalSize, 100), m.item.Name, fileNumber)
		})
		if err != nil {
			if errors.Is(err, cryptox.ErrDecryptionFailed) {
				skipped++
				downloaded += m.item.Size
				e.log.Warn(ctx, "skipping undecryptable file", "path", fullPath)
				continue
			}
			e.failDownload(ctx, id, genericDownloadMessage)
			return err
		}
		downloaded += m.item.Size

		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:   pathx.Relative(fullPath, currentPath),
			Method: zip.Store,
		})
		if err != nil {
			e.failDownload(ctx, id, genericDownloadMessage)
			return fmt.Errorf("adding archive entry: %w", err)
		}
		if _, err := w.Write(content); err != nil {
			e.failDownload(ctx, id, genericDownloadMessage)
			return fmt.Errorf("writing archive entry: %w", err)
		}
	}

	if err := zw.Close(); err != nil {
		e.failDownload(ctx, id, genericDownloadMessage)
		return fmt.Errorf("finalizing archive: %w", err)
	}

	if err := e.sink.Save(ctx, ArchiveName, "application/zip", buf.Bytes()); err != nil {
		e.failDownload(ctx, id, genericDownloadMessage)
		return err
	}

	if skipped > 0 {
		e.toasts.Error(ctx, skippedEntriesMessage)
	}

	e.downloads.MarkComplete(id)
	e.downloads.ScheduleRemove(id, e.removeDelay)
	e.observe("bulk_download", "success")
	return nil
}

// buildManifest flattens the selection. Folders are listed through the API
// and recursed into; files are collected with their containing directory. The
// walk is sequential and depth-first so archive ordering is stable.
func (e *Engine) buildManifest(ctx context.Context, bucketID string, items []drive.FileSystemItem, dir string) ([]manifestEntry, int64, error) {
	var manifest []manifestEntry
	var total int64

	for _, item := range items {
		if !item.IsFolder {
			manifest = append(manifest, manifestEntry{item: item, dir: dir})
			total += item.Size
			continue
		}

		folderPath := pathx.Join(dir, item.Name)
		children, err := e.client.ListObjects(ctx, bucketID, folderPath)
		if err != nil {
			return nil, 0, &drive.TransportError{Op: "list folder", Err: err}
		}

		childItems := make([]drive.FileSystemItem, 0, len(children))
		for _, c := range children {
			childItems = append(childItems, drive.ParseFileContentResponse(c))
		}

		nested, nestedSize, err := e.buildManifest(ctx, bucketID, childItems, folderPath)
		if err != nil {
			return nil, 0, err
		}
		manifest = append(manifest, nested...)
		total += nestedSize
	}

	return manifest, total, nil
}
