package devserver

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chainsafe/files-client/internal/common"
	"github.com/chainsafe/files-client/internal/drive/api"
)

// objectRecord is one stored object's metadata. Content bytes live in the
// blob store under blobKey; the server never sees them in clear.
type objectRecord struct {
	cid         string
	path        string
	size        int64
	contentType string
	createdAt   int64
	version     int
	blobKey     string
}

type bucketRecord struct {
	id      string
	name    string
	typ     string
	owners  []api.LookupUser
	writers []api.LookupUser
	readers []api.LookupUser
	objects map[string]*objectRecord
}

func (b *bucketRecord) toAPI() api.Bucket {
	return api.Bucket{
		ID:      b.id,
		Name:    b.name,
		Type:    b.typ,
		Owners:  b.owners,
		Writers: b.writers,
		Readers: b.readers,
	}
}

// state is the whole in-memory metadata tree, guarded by one mutex. The
// devserver trades granularity for simplicity; it backs tests and local
// development, not production traffic.
type state struct {
	mu      sync.Mutex
	buckets map[string]*bucketRecord
	order   []string
}

func newState() *state {
	return &state{buckets: make(map[string]*bucketRecord)}
}

func (s *state) addBucket(b *bucketRecord) {
	s.buckets[b.id] = b
	s.order = append(s.order, b.id)
}

func (s *state) newBucket(name, typ string, owners, writers, readers []api.LookupUser) *bucketRecord {
	b := &bucketRecord{
		id:      uuid.NewString(),
		name:    name,
		typ:     typ,
		owners:  owners,
		writers: writers,
		readers: readers,
		objects: make(map[string]*objectRecord),
	}
	s.addBucket(b)
	return b
}

func (s *state) list() []api.Bucket {
	out := make([]api.Bucket, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.buckets[id].toAPI())
	}
	return out
}

func newObjectRecord(path, contentType string, size int64) *objectRecord {
	// the blob key is independent of the cid so content can be rewritten
	// under a new key without changing object identity
	blobKey, err := common.MakeRandHexString(16)
	if err != nil {
		blobKey = uuid.NewString()
	}
	return &objectRecord{
		cid:         uuid.NewString(),
		path:        path,
		size:        size,
		contentType: contentType,
		createdAt:   time.Now().Unix(),
		version:     1,
		blobKey:     blobKey,
	}
}

// children lists the direct children of dir: file records at depth one, and
// one synthetic folder entry per deeper subtree.
func (b *bucketRecord) children(dir string, folderContentType string) []api.FileContentResponse {
	base := strings.TrimRight(dir, "/")

	var files []api.FileContentResponse
	folders := make(map[string]bool)
	for p, rec := range b.objects {
		if !strings.HasPrefix(p, base+"/") {
			continue
		}
		rel := strings.TrimPrefix(p, base+"/")
		if idx := strings.IndexByte(rel, '/'); idx >= 0 {
			folders[rel[:idx]] = true
			continue
		}
		files = append(files, api.FileContentResponse{
			CID:         rec.cid,
			Name:        rel,
			Size:        rec.size,
			ContentType: rec.contentType,
			CreatedAt:   rec.createdAt,
			Version:     rec.version,
		})
	}

	out := make([]api.FileContentResponse, 0, len(files)+len(folders))
	for name := range folders {
		out = append(out, api.FileContentResponse{
			Name:        name,
			ContentType: folderContentType,
			CreatedAt:   time.Now().Unix(),
		})
	}
	return append(out, files...)
}

// subtree returns the records under path: the exact object if one exists,
// otherwise everything below path treated as a folder.
func (b *bucketRecord) subtree(path string) []*objectRecord {
	if rec, ok := b.objects[path]; ok {
		return []*objectRecord{rec}
	}
	base := strings.TrimRight(path, "/")
	var out []*objectRecord
	for p, rec := range b.objects {
		if strings.HasPrefix(p, base+"/") {
			out = append(out, rec)
		}
	}
	return out
}

func (s *state) usedStorage() int64 {
	var used int64
	for _, b := range s.buckets {
		for _, rec := range b.objects {
			used += rec.size
		}
	}
	return used
}
