// Package devserver is a gin-based implementation of the Files API the
// client consumes: JWT login, bucket CRUD, encrypted object storage with
// move/trash semantics. It exists so the CLI and the integration tests have
// a live backend; object content is opaque to it and wrapped key blobs are
// stored verbatim, never unwrapped.
package devserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chainsafe/files-client/internal/devserver/blob"
	"github.com/chainsafe/files-client/internal/drive/api"
	"github.com/chainsafe/files-client/internal/logging"
)

// DefaultTotalStorage is the advertised storage quota (20 GiB).
const DefaultTotalStorage = int64(20 * 1024 * 1024 * 1024)

type Config struct {
	JWTSecret    string
	Users        map[string]string
	TotalStorage int64
}

type Server struct {
	jwtSecret    []byte
	users        map[string]string
	totalStorage int64
	blobs        blob.Store
	state        *state
	log          logging.Logger
	router       *gin.Engine
}

func New(cfg Config, blobs blob.Store, log logging.Logger) *Server {
	if cfg.TotalStorage == 0 {
		cfg.TotalStorage = DefaultTotalStorage
	}

	s := &Server{
		jwtSecret:    []byte(cfg.JWTSecret),
		users:        cfg.Users,
		totalStorage: cfg.TotalStorage,
		blobs:        blobs,
		state:        newState(),
		log:          log,
	}

	// every account starts with a personal bucket and a bin
	for username := range cfg.Users {
		owner := []api.LookupUser{{UUID: username}}
		s.state.newBucket("My Files", "personal", owner, nil, nil)
		s.state.newBucket("Bin", "trash", owner, nil, nil)
	}

	s.router = s.buildRouter()
	return s
}

// Router exposes the gin handler, for tests and for embedding.
func (s *Server) Router() http.Handler { return s.router }

// Run serves until the listener fails.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

func (s *Server) buildRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	v1.POST("/login", s.handleLogin)
	v1.POST("/refresh", s.handleRefresh)

	authed := v1.Group("", s.authMiddleware())
	authed.GET("/buckets", s.handleListBuckets)
	authed.POST("/buckets", s.handleCreateBucket)
	authed.GET("/buckets/summary", s.handleSummary)
	authed.PUT("/buckets/:id", s.handleUpdateBucket)
	authed.GET("/buckets/:id/users", s.handleBucketUsers)
	authed.POST("/buckets/:id/ls", s.handleListObjects)
	authed.POST("/buckets/:id/download", s.handleDownload)
	authed.POST("/buckets/:id/upload", s.handleUpload)
	authed.POST("/buckets/:id/mv", s.handleMove)
	authed.POST("/buckets/:id/rm", s.handleRemove)

	return r
}

func (s *Server) handleLogin(c *gin.Context) {
	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "malformed credentials"})
		return
	}

	password, ok := s.users[creds.Username]
	if !ok || password != creds.Password {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid credentials"})
		return
	}

	pair, err := s.issueTokenPair(creds.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, pair)
}

func (s *Server) handleRefresh(c *gin.Context) {
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "malformed request"})
		return
	}

	userID, err := s.parseToken(body.RefreshToken, "refresh")
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid refresh token"})
		return
	}

	pair, err := s.issueTokenPair(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, pair)
}
