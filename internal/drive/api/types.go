package api

// LookupUser is one principal on a bucket. EncryptionKey, when present, is
// the bucket key wrapped for this principal's public key; the clear key never
// appears on the wire.
type LookupUser struct {
	UUID          string `json:"uuid"`
	PublicKey     string `json:"public_key,omitempty"`
	EncryptionKey string `json:"encryption_key,omitempty"`
}

// Bucket is the wire representation of a bucket.
type Bucket struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Type           string       `json:"type"`
	FileSystemType string       `json:"file_system_type,omitempty"`
	Owners         []LookupUser `json:"owners"`
	Writers        []LookupUser `json:"writers"`
	Readers        []LookupUser `json:"readers"`
}

// BucketUsers is the response of the per-bucket user listing.
type BucketUsers struct {
	Owners  []LookupUser `json:"owners"`
	Writers []LookupUser `json:"writers"`
	Readers []LookupUser `json:"readers"`
}

type CreateBucketRequest struct {
	Name          string       `json:"name"`
	Type          string       `json:"type"`
	EncryptionKey string       `json:"encryption_key,omitempty"`
	Readers       []LookupUser `json:"readers"`
	Writers       []LookupUser `json:"writers"`
}

type UpdateBucketRequest struct {
	Name    string       `json:"name"`
	Readers []LookupUser `json:"readers"`
	Writers []LookupUser `json:"writers"`
}

// FileContentResponse is one listed object. Version 0 marks legacy content
// stored in clear; anything newer is encrypted with the bucket key.
type FileContentResponse struct {
	CID         string `json:"cid"`
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
	CreatedAt   int64  `json:"created_at"`
	Version     int    `json:"version"`
}

// UploadObject is one already-encrypted payload in an upload batch.
type UploadObject struct {
	FileName    string
	ContentType string
	Data        []byte
}

// MoveObjectsRequest moves or renames objects. When Destination names
// another bucket the objects change buckets (trash and recover are built on
// this).
type MoveObjectsRequest struct {
	Paths       []string `json:"paths"`
	NewPath     string   `json:"new_path"`
	Destination string   `json:"destination,omitempty"`
}

type BucketSummary struct {
	UsedStorage  int64 `json:"used_storage"`
	TotalStorage int64 `json:"total_storage"`
}
