package devserver

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/chainsafe/files-client/internal/drive"
	"github.com/chainsafe/files-client/internal/drive/api"
	"github.com/chainsafe/files-client/internal/pathx"
)

const conflictMessage = "file name conflict"

func (s *Server) handleListBuckets(c *gin.Context) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	c.JSON(http.StatusOK, s.state.list())
}

func (s *Server) handleCreateBucket(c *gin.Context) {
	var req api.CreateBucketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "malformed request"})
		return
	}

	owner := api.LookupUser{
		UUID:          c.GetString(ctxUserKey),
		EncryptionKey: req.EncryptionKey,
	}

	s.state.mu.Lock()
	b := s.state.newBucket(req.Name, req.Type, []api.LookupUser{owner}, req.Writers, req.Readers)
	s.state.mu.Unlock()

	c.JSON(http.StatusOK, b.toAPI())
}

func (s *Server) handleUpdateBucket(c *gin.Context) {
	var req api.UpdateBucketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "malformed request"})
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	b, ok := s.state.buckets[c.Param("id")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "bucket not found"})
		return
	}
	if req.Name != "" {
		b.name = req.Name
	}
	b.writers = req.Writers
	b.readers = req.Readers
	c.Status(http.StatusOK)
}

func (s *Server) handleBucketUsers(c *gin.Context) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	b, ok := s.state.buckets[c.Param("id")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "bucket not found"})
		return
	}
	c.JSON(http.StatusOK, api.BucketUsers{Owners: b.owners, Writers: b.writers, Readers: b.readers})
}

func (s *Server) handleSummary(c *gin.Context) {
	s.state.mu.Lock()
	used := s.state.usedStorage()
	s.state.mu.Unlock()
	c.JSON(http.StatusOK, api.BucketSummary{UsedStorage: used, TotalStorage: s.totalStorage})
}

func (s *Server) handleListObjects(c *gin.Context) {
	var body struct {
		Path string `json:"path"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "malformed request"})
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	b, ok := s.state.buckets[c.Param("id")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "bucket not found"})
		return
	}
	c.JSON(http.StatusOK, b.children(body.Path, drive.ContentTypeDirectory))
}

func (s *Server) handleDownload(c *gin.Context) {
	var body struct {
		Path string `json:"path"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "malformed request"})
		return
	}

	s.state.mu.Lock()
	b, ok := s.state.buckets[c.Param("id")]
	var rec *objectRecord
	if ok {
		rec = b.objects[body.Path]
	}
	s.state.mu.Unlock()

	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "object not found"})
		return
	}

	content, err := s.blobs.Get(c.Request.Context(), rec.blobKey)
	if err != nil {
		s.log.Error(c.Request.Context(), "blob fetch failed", "key", rec.blobKey, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "content unavailable"})
		return
	}
	c.Data(http.StatusOK, "application/octet-stream", content)
}

func (s *Server) handleUpload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "malformed multipart request"})
		return
	}
	dir := "/"
	if v, ok := form.Value["path"]; ok && len(v) > 0 {
		dir = v[0]
	}

	bucketID := c.Param("id")

	s.state.mu.Lock()
	b, ok := s.state.buckets[bucketID]
	if !ok {
		s.state.mu.Unlock()
		c.JSON(http.StatusNotFound, gin.H{"message": "bucket not found"})
		return
	}
	for _, fh := range form.File["file"] {
		if _, exists := b.objects[pathx.Join(dir, fh.Filename)]; exists {
			s.state.mu.Unlock()
			c.JSON(http.StatusConflict, gin.H{"message": conflictMessage})
			return
		}
	}
	s.state.mu.Unlock()

	for _, fh := range form.File["file"] {
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "unreadable file part"})
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "unreadable file part"})
			return
		}

		target := pathx.Join(dir, fh.Filename)
		rec := newObjectRecord(target, fh.Header.Get("Content-Type"), int64(len(data)))
		if err := s.blobs.Put(c.Request.Context(), rec.blobKey, data); err != nil {
			s.log.Error(c.Request.Context(), "blob store failed", "key", rec.blobKey, "err", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "content store unavailable"})
			return
		}

		s.state.mu.Lock()
		b.objects[target] = rec
		s.state.mu.Unlock()
	}

	c.Status(http.StatusOK)
}

func (s *Server) handleMove(c *gin.Context) {
	var req api.MoveObjectsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "malformed request"})
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	source, ok := s.state.buckets[c.Param("id")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "bucket not found"})
		return
	}
	target := source
	if req.Destination != "" {
		target, ok = s.state.buckets[req.Destination]
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"message": "destination bucket not found"})
			return
		}
	}

	for _, from := range req.Paths {
		for _, rec := range source.subtree(from) {
			newPath := req.NewPath
			if rec.path != from {
				// folder move keeps the layout below the moved root
				newPath = req.NewPath + strings.TrimPrefix(rec.path, strings.TrimRight(from, "/"))
			}
			if _, exists := target.objects[newPath]; exists {
				c.JSON(http.StatusConflict, gin.H{"message": conflictMessage})
				return
			}
			delete(source.objects, rec.path)
			rec.path = newPath
			target.objects[newPath] = rec
		}
	}

	c.Status(http.StatusOK)
}

func (s *Server) handleRemove(c *gin.Context) {
	var body struct {
		Paths []string `json:"paths"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "malformed request"})
		return
	}

	s.state.mu.Lock()
	b, ok := s.state.buckets[c.Param("id")]
	if !ok {
		s.state.mu.Unlock()
		c.JSON(http.StatusNotFound, gin.H{"message": "bucket not found"})
		return
	}

	var blobKeys []string
	for _, p := range body.Paths {
		for _, rec := range b.subtree(p) {
			delete(b.objects, rec.path)
			blobKeys = append(blobKeys, rec.blobKey)
		}
	}
	s.state.mu.Unlock()

	for _, key := range blobKeys {
		if err := s.blobs.Delete(c.Request.Context(), key); err != nil {
			s.log.Warn(c.Request.Context(), "blob delete failed", "key", key, "err", err)
		}
	}

	c.Status(http.StatusOK)
}
