// Package drive holds the domain model of the encrypted file store: buckets
// with resolved keys and permissions, file system items, the shared error
// taxonomy, and the toast surface operations report through.
package drive

import (
	"time"

	"github.com/chainsafe/files-client/internal/drive/api"
)

// BucketType is the closed set of bucket kinds. Key resolution dispatches on
// it exactly once, at the registry boundary.
type BucketType string

const (
	BucketPersonal BucketType = "personal"
	BucketTrash    BucketType = "trash"
	BucketShared   BucketType = "shared"
)

// Permission is the caller's access level on a bucket.
type Permission string

const (
	PermissionOwner  Permission = "owner"
	PermissionWriter Permission = "writer"
	PermissionReader Permission = "reader"
)

// ContentTypeDirectory marks folder entries in object listings.
const ContentTypeDirectory = "application/chainsafe-files-directory"

// Bucket is a registry-enriched bucket: the wire fields plus the resolved
// symmetric key and the caller's permission. EncryptionKey lives in memory
// only; it is nil when resolution failed and every file operation against
// the bucket must then fail closed.
type Bucket struct {
	ID             string
	Name           string
	Type           BucketType
	FileSystemType string
	EncryptionKey  []byte
	Permission     Permission
	Owners         []api.LookupUser
	Writers        []api.LookupUser
	Readers        []api.LookupUser
}

// HasKey reports whether a symmetric key was resolved for this bucket.
func (b *Bucket) HasKey() bool { return len(b.EncryptionKey) > 0 }

// FileSystemItem is a file or folder addressed relative to a path within a
// bucket. Version 0 marks legacy unencrypted content.
type FileSystemItem struct {
	CID         string
	Name        string
	IsFolder    bool
	Size        int64
	ContentType string
	CreatedAt   time.Time
	Version     int
}

// ParseFileContentResponse converts a listing entry into a FileSystemItem.
func ParseFileContentResponse(fcr api.FileContentResponse) FileSystemItem {
	return FileSystemItem{
		CID:         fcr.CID,
		Name:        fcr.Name,
		IsFolder:    fcr.ContentType == ContentTypeDirectory,
		Size:        fcr.Size,
		ContentType: fcr.ContentType,
		CreatedAt:   time.Unix(fcr.CreatedAt, 0),
		Version:     fcr.Version,
	}
}

// SharedFolderUser identifies a principal to grant access to when creating a
// shared folder.
type SharedFolderUser struct {
	UUID   string
	PubKey string
}

// UpdateSharedFolderUser carries a principal during a shared-folder edit.
// When PubKey is set the bucket key is re-wrapped for it; otherwise the
// existing wrapped blob is resent unchanged.
type UpdateSharedFolderUser struct {
	UUID          string
	PubKey        string
	EncryptionKey string
}

// IncomingFile is one local file queued for upload, fully read into memory.
type IncomingFile struct {
	Name        string
	ContentType string
	Size        int64
	Content     []byte
}
