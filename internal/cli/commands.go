package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/chainsafe/files-client/internal/drive"
)

const usage = `usage: files-cli [-c config] <command> [args]

commands:
  buckets                                        list buckets
  summary                                        storage usage
  ls <bucket> [path]                             list a folder
  upload <bucket> <path> <file>...               encrypt and upload local files
  download <bucket> <path> <name>                download and decrypt one file
  zip <bucket> <path> <name>...                  download a selection as archive.zip
  mv <bucket> <from-path> <to-path> <name>...    move within a bucket
  rename <bucket> <path> <old-name> <new-name>   rename in place
  rm <bucket> <path> <name>...                   move to the bin
  purge <path> <name>...                         delete from the bin permanently
  recover <from-path> <bucket> <to-path> <name>...  restore from the bin
  transfer <bucket> <path> <name> <dest-bucket> [keep]  re-encrypt into another bucket
  mkshare <name> [writer:<uuid>:<pubkey>]... [reader:<uuid>:<pubkey>]...
`

// Dispatch routes one parsed command line to the engine.
func (a *App) Dispatch(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return nil
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "buckets":
		return a.cmdBuckets()
	case "summary":
		return a.cmdSummary()
	case "ls":
		return a.cmdList(ctx, rest)
	case "upload":
		return a.cmdUpload(ctx, rest)
	case "download":
		return a.cmdDownload(ctx, rest)
	case "zip":
		return a.cmdZip(ctx, rest)
	case "mv":
		return a.cmdMove(ctx, rest)
	case "rename":
		return a.cmdRename(ctx, rest)
	case "rm":
		return a.cmdRemove(ctx, rest)
	case "purge":
		return a.cmdPurge(ctx, rest)
	case "recover":
		return a.cmdRecover(ctx, rest)
	case "transfer":
		return a.cmdTransfer(ctx, rest)
	case "mkshare":
		return a.cmdMakeShare(ctx, rest)
	default:
		fmt.Fprint(a.out, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// resolveBucket accepts a bucket id, a bucket type or a bucket name.
func (a *App) resolveBucket(ref string) (drive.Bucket, error) {
	if b, ok := a.registry.Bucket(ref); ok {
		return b, nil
	}
	switch ref {
	case "personal", "trash", "shared":
		if b, ok := a.registry.BucketOfType(drive.BucketType(ref)); ok {
			return b, nil
		}
	}
	for _, b := range a.registry.Buckets() {
		if b.Name == ref {
			return b, nil
		}
	}
	return drive.Bucket{}, fmt.Errorf("no bucket matching %q", ref)
}

func (a *App) findItem(ctx context.Context, bucketID, dir, name string) (drive.FileSystemItem, error) {
	listing, err := a.client.ListObjects(ctx, bucketID, dir)
	if err != nil {
		return drive.FileSystemItem{}, fmt.Errorf("listing %s: %w", dir, err)
	}
	for _, fcr := range listing {
		if fcr.Name == name {
			return drive.ParseFileContentResponse(fcr), nil
		}
	}
	return drive.FileSystemItem{}, fmt.Errorf("%s not found in %s", name, dir)
}

func (a *App) findItems(ctx context.Context, bucketID, dir string, names []string) ([]drive.FileSystemItem, error) {
	items := make([]drive.FileSystemItem, 0, len(names))
	for _, name := range names {
		item, err := a.findItem(ctx, bucketID, dir, name)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (a *App) cmdBuckets() error {
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tNAME\tPERMISSION\tKEY")
	for _, b := range a.registry.Buckets() {
		key := "resolved"
		if !b.HasKey() {
			key = "missing"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", b.ID, b.Type, b.Name, b.Permission, key)
	}
	return w.Flush()
}

func (a *App) cmdSummary() error {
	summary, ok := a.registry.Summary()
	if !ok {
		return fmt.Errorf("storage summary unavailable")
	}
	fmt.Fprintf(a.out, "used %d of %d bytes\n", summary.UsedStorage, summary.TotalStorage)
	return nil
}

func (a *App) cmdList(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("ls: bucket required")
	}
	bucket, err := a.resolveBucket(args[0])
	if err != nil {
		return err
	}
	dir := "/"
	if len(args) > 1 {
		dir = args[1]
	}

	listing, err := a.client.ListObjects(ctx, bucket.ID, dir)
	if err != nil {
		return fmt.Errorf("listing %s: %w", dir, err)
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSIZE\tTYPE")
	for _, fcr := range listing {
		item := drive.ParseFileContentResponse(fcr)
		kind := item.ContentType
		if item.IsFolder {
			kind = "folder"
		}
		fmt.Fprintf(w, "%s\t%d\t%s\n", item.Name, item.Size, kind)
	}
	return w.Flush()
}

func (a *App) cmdUpload(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("upload: bucket, path and at least one file required")
	}
	bucket, err := a.resolveBucket(args[0])
	if err != nil {
		return err
	}
	dir := args[1]

	files := make([]drive.IncomingFile, 0, len(args)-2)
	for _, local := range args[2:] {
		content, err := os.ReadFile(local)
		if err != nil {
			return fmt.Errorf("reading %s: %w", local, err)
		}
		files = append(files, drive.IncomingFile{
			Name:        filepath.Base(local),
			ContentType: http.DetectContentType(content),
			Size:        int64(len(content)),
			Content:     content,
		})
	}

	if err := a.engine.UploadFiles(ctx, bucket.ID, files, dir); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "uploaded %d file(s) to %s\n", len(files), dir)
	return nil
}

func (a *App) cmdDownload(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("download: bucket, path and name required")
	}
	bucket, err := a.resolveBucket(args[0])
	if err != nil {
		return err
	}
	item, err := a.findItem(ctx, bucket.ID, args[1], args[2])
	if err != nil {
		return err
	}

	if err := a.engine.DownloadFile(ctx, bucket.ID, item, args[1]); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "downloaded %s\n", item.Name)
	return nil
}

func (a *App) cmdZip(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("zip: bucket, path and at least one name required")
	}
	bucket, err := a.resolveBucket(args[0])
	if err != nil {
		return err
	}
	items, err := a.findItems(ctx, bucket.ID, args[1], args[2:])
	if err != nil {
		return err
	}

	if err := a.engine.DownloadMultipleFiles(ctx, bucket.ID, items, args[1]); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "archive written\n")
	return nil
}

func (a *App) cmdMove(ctx context.Context, args []string) error {
	if len(args) < 4 {
		return fmt.Errorf("mv: bucket, from-path, to-path and at least one name required")
	}
	bucket, err := a.resolveBucket(args[0])
	if err != nil {
		return err
	}
	items, err := a.findItems(ctx, bucket.ID, args[1], args[3:])
	if err != nil {
		return err
	}
	return a.engine.MoveItems(ctx, bucket.ID, items, args[1], args[2])
}

func (a *App) cmdRename(ctx context.Context, args []string) error {
	if len(args) != 4 {
		return fmt.Errorf("rename: bucket, path, old name and new name required")
	}
	bucket, err := a.resolveBucket(args[0])
	if err != nil {
		return err
	}
	item, err := a.findItem(ctx, bucket.ID, args[1], args[2])
	if err != nil {
		return err
	}
	if err := a.engine.RenameItem(ctx, bucket.ID, item, args[1], args[3]); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "renamed %s to %s\n", args[2], args[3])
	return nil
}

func (a *App) cmdRemove(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("rm: bucket, path and at least one name required")
	}
	bucket, err := a.resolveBucket(args[0])
	if err != nil {
		return err
	}
	items, err := a.findItems(ctx, bucket.ID, args[1], args[2:])
	if err != nil {
		return err
	}
	return a.engine.MoveToBin(ctx, bucket.ID, items, args[1])
}

func (a *App) cmdPurge(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("purge: path and at least one name required")
	}
	trash, ok := a.registry.BucketOfType(drive.BucketTrash)
	if !ok {
		return fmt.Errorf("no trash bucket")
	}
	items, err := a.findItems(ctx, trash.ID, args[0], args[1:])
	if err != nil {
		return err
	}
	return a.engine.DeleteItems(ctx, trash.ID, items, args[0])
}

func (a *App) cmdRecover(ctx context.Context, args []string) error {
	if len(args) < 4 {
		return fmt.Errorf("recover: from-path, destination bucket, to-path and at least one name required")
	}
	trash, ok := a.registry.BucketOfType(drive.BucketTrash)
	if !ok {
		return fmt.Errorf("no trash bucket")
	}
	destination, err := a.resolveBucket(args[1])
	if err != nil {
		return err
	}
	items, err := a.findItems(ctx, trash.ID, args[0], args[3:])
	if err != nil {
		return err
	}
	return a.engine.RecoverItems(ctx, items, args[0], destination, args[2])
}

func (a *App) cmdTransfer(ctx context.Context, args []string) error {
	if len(args) < 4 {
		return fmt.Errorf("transfer: bucket, path, name and destination bucket required")
	}
	source, err := a.resolveBucket(args[0])
	if err != nil {
		return err
	}
	destination, err := a.resolveBucket(args[3])
	if err != nil {
		return err
	}
	item, err := a.findItem(ctx, source.ID, args[1], args[2])
	if err != nil {
		return err
	}
	keepOriginal := len(args) > 4 && args[4] == "keep"

	if err := a.engine.TransferFileBetweenBuckets(ctx, source.ID, item, args[1], destination, keepOriginal); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "transferred %s to %s\n", item.Name, destination.Name)
	return nil
}

func (a *App) cmdMakeShare(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("mkshare: name required")
	}

	var writers, readers []drive.SharedFolderUser
	for _, arg := range args[1:] {
		parts := strings.SplitN(arg, ":", 3)
		if len(parts) != 3 {
			return fmt.Errorf("mkshare: principals look like writer:<uuid>:<pubkey>")
		}
		principal := drive.SharedFolderUser{UUID: parts[1], PubKey: parts[2]}
		switch parts[0] {
		case "writer":
			writers = append(writers, principal)
		case "reader":
			readers = append(readers, principal)
		default:
			return fmt.Errorf("mkshare: unknown principal role %q", parts[0])
		}
	}

	bucket, err := a.registry.CreateSharedFolder(ctx, args[0], writers, readers)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "created shared folder %s (%s)\n", bucket.Name, bucket.ID)
	return nil
}
