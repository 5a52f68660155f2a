// Package rest is the net/http implementation of the Files API client:
// bearer-token auth with expiry-aware refresh, JSON endpoints, multipart
// uploads and progress-counting transfers.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/chainsafe/files-client/internal/common"
	"github.com/chainsafe/files-client/internal/drive/api"
	"github.com/chainsafe/files-client/internal/logging"
)

// Client talks to a Files API server over HTTP. Safe for concurrent use.
type Client struct {
	baseURL string
	httpc   *http.Client
	log     logging.Logger
	tokens  *tokenStore
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option { return func(cl *Client) { cl.httpc = c } }
func WithLogger(l logging.Logger) Option   { return func(cl *Client) { cl.log = l } }

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 5 * time.Minute},
		log:     logging.NewNopLogger(),
		tokens:  &tokenStore{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login authenticates and stores the returned token pair for subsequent
// calls.
func (c *Client) Login(ctx context.Context, username, password string) error {
	var pair tokenPair
	err := c.doJSON(ctx, http.MethodPost, "/api/v1/login",
		map[string]string{"username": username, "password": password}, &pair, false)
	if err != nil {
		return err
	}
	c.tokens.set(pair)
	return nil
}

// SetTokens installs an externally obtained token pair.
func (c *Client) SetTokens(accessToken, refreshToken string) {
	c.tokens.set(tokenPair{AccessToken: accessToken, RefreshToken: refreshToken})
}

func (c *Client) ListBuckets(ctx context.Context) ([]api.Bucket, error) {
	var out []api.Bucket
	err := c.doJSON(ctx, http.MethodGet, "/api/v1/buckets", nil, &out, true)
	return out, err
}

func (c *Client) GetBucketUsers(ctx context.Context, bucketID string) (api.BucketUsers, error) {
	var out api.BucketUsers
	err := c.doJSON(ctx, http.MethodGet, "/api/v1/buckets/"+bucketID+"/users", nil, &out, true)
	return out, err
}

func (c *Client) CreateBucket(ctx context.Context, req api.CreateBucketRequest) (api.Bucket, error) {
	var out api.Bucket
	err := c.doJSON(ctx, http.MethodPost, "/api/v1/buckets", req, &out, true)
	return out, err
}

func (c *Client) UpdateBucket(ctx context.Context, bucketID string, req api.UpdateBucketRequest) error {
	return c.doJSON(ctx, http.MethodPut, "/api/v1/buckets/"+bucketID, req, nil, true)
}

func (c *Client) ListObjects(ctx context.Context, bucketID, path string) ([]api.FileContentResponse, error) {
	var out []api.FileContentResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/v1/buckets/"+bucketID+"/ls",
		map[string]string{"path": path}, &out, true)
	return out, err
}

func (c *Client) GetObjectContent(ctx context.Context, bucketID, path string, onProgress api.ProgressFunc) ([]byte, error) {
	body, err := json.Marshal(map[string]string{"path": path})
	if err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/v1/buckets/"+bucketID+"/download", bytes.NewReader(body), true)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, responseError(resp)
	}

	reader := io.Reader(resp.Body)
	if onProgress != nil {
		reader = &countingReader{r: resp.Body, total: resp.ContentLength, onProgress: onProgress}
	}
	return io.ReadAll(reader)
}

func (c *Client) UploadObjects(ctx context.Context, bucketID string, objects []api.UploadObject, path string, onProgress api.ProgressFunc) error {
	buf := new(bytes.Buffer)
	mw := multipart.NewWriter(buf)

	if err := mw.WriteField("path", path); err != nil {
		return err
	}
	for _, o := range objects {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(o.FileName)))
		contentType := o.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header.Set("Content-Type", contentType)

		part, err := mw.CreatePart(header)
		if err != nil {
			return err
		}
		if _, err := part.Write(o.Data); err != nil {
			return err
		}
	}
	if err := mw.Close(); err != nil {
		return err
	}

	var body io.Reader = buf
	if onProgress != nil {
		body = &countingReader{r: buf, total: int64(buf.Len()), onProgress: onProgress}
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/v1/buckets/"+bucketID+"/upload", body, true)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return responseError(resp)
	}
	return nil
}

func (c *Client) MoveObjects(ctx context.Context, bucketID string, req api.MoveObjectsRequest) error {
	return c.doJSON(ctx, http.MethodPost, "/api/v1/buckets/"+bucketID+"/mv", req, nil, true)
}

func (c *Client) RemoveObjects(ctx context.Context, bucketID string, paths []string) error {
	return c.doJSON(ctx, http.MethodPost, "/api/v1/buckets/"+bucketID+"/rm",
		map[string][]string{"paths": paths}, nil, true)
}

func (c *Client) BucketsSummary(ctx context.Context) (api.BucketSummary, error) {
	var out api.BucketSummary
	err := c.doJSON(ctx, http.MethodGet, "/api/v1/buckets/summary", nil, &out, true)
	return out, err
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any, authed bool) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, body, authed)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return responseError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, authed bool) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if authed {
		token, err := c.bearerToken(ctx)
		if err != nil {
			return nil, err
		}
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+token)
	}
	return req, nil
}

// bearerToken returns a usable access token, refreshing it through the
// refresh endpoint when the stored one is expired or about to expire.
func (c *Client) bearerToken(ctx context.Context) (string, error) {
	pair, ok := c.tokens.get()
	if !ok {
		return "", fmt.Errorf("not authenticated")
	}
	if !tokenExpired(pair.AccessToken) {
		return pair.AccessToken, nil
	}
	if pair.RefreshToken == "" {
		return "", fmt.Errorf("access token expired and no refresh token available")
	}

	c.log.Debug(ctx, "access token expired, refreshing")
	var refreshed tokenPair
	err := c.doJSON(ctx, http.MethodPost, "/api/v1/refresh",
		map[string]string{"refresh_token": pair.RefreshToken}, &refreshed, false)
	if err != nil {
		return "", fmt.Errorf("refreshing access token: %w", err)
	}
	c.tokens.set(refreshed)
	return refreshed.AccessToken, nil
}

// responseError surfaces the server's message so callers can classify it.
func responseError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err == nil && payload.Message != "" {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, payload.Message)
	}
	return fmt.Errorf("server returned %d", resp.StatusCode)
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func escapeQuotes(s string) string { return quoteEscaper.Replace(s) }

// countingReader reports cumulative bytes read through onProgress.
type countingReader struct {
	r          io.Reader
	loaded     int64
	total      int64
	onProgress api.ProgressFunc
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 {
		cr.loaded += int64(n)
		cr.onProgress(cr.loaded, cr.total)
	}
	return n, err
}
