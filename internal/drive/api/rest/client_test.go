package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainsafe/files-client/internal/drive/api"
)

// handleFunc registers a "METHOD /path" pattern; the local toolchain's
// net/http ServeMux predates Go 1.22 method patterns, so the method guard is
// applied inside the handler instead.
func handleFunc(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	method, path, ok := strings.Cut(pattern, " ")
	if !ok {
		mux.HandleFunc(pattern, h)
		return
	}
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	})
}

func signedToken(t *testing.T, expiresIn time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(expiresIn).Unix(),
	})
	s, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestLogin_StoresTokensAndSendsBearer(t *testing.T) {
	access := signedToken(t, time.Hour)

	var gotAuth string
	mux := http.NewServeMux()
	handleFunc(mux, "POST /api/v1/login", func(w http.ResponseWriter, r *http.Request) {
		var creds map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "alice", creds["username"])
		json.NewEncoder(w).Encode(tokenPair{AccessToken: access, RefreshToken: "r1"})
	})
	handleFunc(mux, "GET /api/v1/buckets", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]api.Bucket{{ID: "b1", Type: "personal"}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(srv.URL)
	require.NoError(t, c.Login(context.Background(), "alice", "pw"))

	buckets, err := c.ListBuckets(context.Background())
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	assert.Equal(t, "Bearer "+access, gotAuth)
}

func TestBearerToken_RefreshesExpiredAccessToken(t *testing.T) {
	expired := signedToken(t, -time.Minute)
	fresh := signedToken(t, time.Hour)

	var refreshed bool
	mux := http.NewServeMux()
	handleFunc(mux, "POST /api/v1/refresh", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "r1", body["refresh_token"])
		refreshed = true
		json.NewEncoder(w).Encode(tokenPair{AccessToken: fresh, RefreshToken: "r2"})
	})
	handleFunc(mux, "GET /api/v1/buckets", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer "+fresh, r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode([]api.Bucket{})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(srv.URL)
	c.SetTokens(expired, "r1")

	_, err := c.ListBuckets(context.Background())
	require.NoError(t, err)
	assert.True(t, refreshed)
}

func TestUploadObjects_MultipartWithProgress(t *testing.T) {
	mux := http.NewServeMux()
	handleFunc(mux, "POST /api/v1/buckets/b1/upload", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "/docs", r.FormValue("path"))
		require.Len(t, r.MultipartForm.File["file"], 2)
		assert.Equal(t, "a.txt", r.MultipartForm.File["file"][0].Filename)
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(srv.URL)
	c.SetTokens(signedToken(t, time.Hour), "")

	var lastLoaded, lastTotal int64
	objects := []api.UploadObject{
		{FileName: "a.txt", ContentType: "text/plain", Data: []byte("aaaa")},
		{FileName: "b.txt", ContentType: "text/plain", Data: []byte("bbbb")},
	}
	err := c.UploadObjects(context.Background(), "b1", objects, "/docs", func(loaded, total int64) {
		assert.GreaterOrEqual(t, loaded, lastLoaded, "progress is monotonic")
		lastLoaded, lastTotal = loaded, total
	})
	require.NoError(t, err)
	assert.Equal(t, lastTotal, lastLoaded, "final progress reaches the total")
	assert.Positive(t, lastTotal)
}

func TestGetObjectContent_ReportsProgress(t *testing.T) {
	payload := []byte("some encrypted bytes")

	mux := http.NewServeMux()
	handleFunc(mux, "POST /api/v1/buckets/b1/download", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "/doc.txt", body["path"])
		w.Write(payload)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(srv.URL)
	c.SetTokens(signedToken(t, time.Hour), "")

	var lastLoaded, lastTotal int64
	got, err := c.GetObjectContent(context.Background(), "b1", "/doc.txt", func(loaded, total int64) {
		lastLoaded, lastTotal = loaded, total
	})
	require.NoError(t, err)
	assert.Equal(t, payload, got)
	assert.Equal(t, int64(len(payload)), lastLoaded)
	assert.Equal(t, int64(len(payload)), lastTotal)
}

func TestResponseError_CarriesServerMessage(t *testing.T) {
	mux := http.NewServeMux()
	handleFunc(mux, "POST /api/v1/buckets/b1/upload", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"message": "file name conflict"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(srv.URL)
	c.SetTokens(signedToken(t, time.Hour), "")

	err := c.UploadObjects(context.Background(), "b1",
		[]api.UploadObject{{FileName: "a.txt"}}, "/", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conflict", "conflict responses must stay classifiable")
}

func TestUnauthenticatedRequestFailsFast(t *testing.T) {
	c := NewClient("http://localhost:0")
	_, err := c.ListBuckets(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not authenticated")
}
