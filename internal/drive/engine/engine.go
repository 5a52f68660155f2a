// Package engine orchestrates encrypted file movement: encrypt+upload,
// download+decrypt, bucket-to-bucket transfer, bulk zip downloads, and the
// move primitive behind rename/move/trash/recover. Every operation streams
// its progress into the ledgers and translates transport/crypto failures
// into the drive error taxonomy before they reach ledger state.
package engine

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/chainsafe/files-client/internal/cryptox"
	"github.com/chainsafe/files-client/internal/drive"
	"github.com/chainsafe/files-client/internal/drive/api"
	"github.com/chainsafe/files-client/internal/drive/keystore"
	"github.com/chainsafe/files-client/internal/drive/ledger"
	"github.com/chainsafe/files-client/internal/logging"
)

const (
	// RemoveDelay is the grace period a finished or failed ledger entry
	// stays visible before its scheduled removal.
	RemoveDelay = 5 * time.Second

	// MaxFileSize is the largest single file accepted for encrypted upload
	// (2 GiB). Files of exactly this size are accepted; one byte over is
	// dropped from the batch.
	MaxFileSize = int64(2 * 1024 * 1024 * 1024)

	// ArchiveName is the file name bulk downloads are delivered under.
	ArchiveName = "archive.zip"
)

// Sink receives finished download payloads. The browser equivalent is an
// object-URL "save as"; headless callers write to disk.
type Sink interface {
	Save(ctx context.Context, name, contentType string, data []byte) error
}

// MetricsRecorder receives transfer telemetry. A nil recorder disables it.
type MetricsRecorder interface {
	ObserveOperation(kind, status string)
	AddBytes(direction string, n int64)
}

// Engine coordinates the registry, the API client and the three ledgers.
type Engine struct {
	client   api.Client
	registry *keystore.Registry

	uploads   *ledger.Uploads
	downloads *ledger.Downloads
	transfers *ledger.Transfers

	toasts  drive.Toaster
	sink    Sink
	log     logging.Logger
	metrics MetricsRecorder

	removeDelay time.Duration
	maxFileSize int64

	mu       sync.Mutex
	inflight map[string]*inflightSlot
}

// inflightSlot identifies one occupant of a logical request slot. The
// pointer doubles as the occupant's identity so a finished request only
// clears the slot if it still owns it.
type inflightSlot struct {
	cancel context.CancelFunc
}

type Option func(*Engine)

func WithToaster(t drive.Toaster) Option     { return func(e *Engine) { e.toasts = t } }
func WithSink(s Sink) Option                 { return func(e *Engine) { e.sink = s } }
func WithLogger(l logging.Logger) Option     { return func(e *Engine) { e.log = l } }
func WithMetrics(m MetricsRecorder) Option   { return func(e *Engine) { e.metrics = m } }
func WithRemoveDelay(d time.Duration) Option { return func(e *Engine) { e.removeDelay = d } }
func WithMaxFileSize(n int64) Option         { return func(e *Engine) { e.maxFileSize = n } }

func New(client api.Client, registry *keystore.Registry, opts ...Option) *Engine {
	e := &Engine{
		client:      client,
		registry:    registry,
		uploads:     ledger.NewUploads(),
		downloads:   ledger.NewDownloads(),
		transfers:   ledger.NewTransfers(),
		log:         logging.NewNopLogger(),
		removeDelay: RemoveDelay,
		maxFileSize: MaxFileSize,
		inflight:    make(map[string]*inflightSlot),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.toasts == nil {
		e.toasts = &drive.LogToaster{Log: e.log}
	}
	if e.sink == nil {
		e.sink = &DiscardSink{}
	}
	return e
}

func (e *Engine) Uploads() *ledger.Uploads     { return e.uploads }
func (e *Engine) Downloads() *ledger.Downloads { return e.downloads }
func (e *Engine) Transfers() *ledger.Transfers { return e.transfers }

// NavigationWarning derives the operation-in-progress message for an unload
// interceptor.
func (e *Engine) NavigationWarning() string {
	return ledger.NavigationWarning(e.uploads, e.downloads, e.transfers)
}

// fetchObject downloads one object and, unless it is legacy version-0
// content, decrypts it with the bucket key. The bucket key must already be
// resolved; this fails closed otherwise.
func (e *Engine) fetchObject(ctx context.Context, bucketID string, item drive.FileSystemItem, fullPath string, onProgress api.ProgressFunc) ([]byte, error) {
	bucket, ok := e.registry.Bucket(bucketID)
	if !ok || !bucket.HasKey() {
		return nil, drive.ErrMissingKey
	}

	data, err := e.client.GetObjectContent(ctx, bucketID, fullPath, onProgress)
	if err != nil {
		return nil, &drive.TransportError{Op: "download", Err: err}
	}
	e.addBytes("download", int64(len(data)))

	if item.Version == 0 {
		// legacy content was stored in clear
		return data, nil
	}
	return cryptox.DecryptBuffer(data, bucket.EncryptionKey)
}

// slotContext cancels any in-flight request occupying the same logical slot
// before handing out a context for the new one. Release must be called when
// the request finishes.
func (e *Engine) slotContext(ctx context.Context, slot string) (context.Context, func()) {
	e.mu.Lock()
	if occupant, ok := e.inflight[slot]; ok {
		occupant.cancel()
	}
	slotCtx, cancel := context.WithCancel(ctx)
	occupant := &inflightSlot{cancel: cancel}
	e.inflight[slot] = occupant
	e.mu.Unlock()

	release := func() {
		e.mu.Lock()
		if e.inflight[slot] == occupant {
			delete(e.inflight, slot)
		}
		e.mu.Unlock()
		cancel()
	}
	return slotCtx, release
}

func (e *Engine) observe(kind, status string) {
	if e.metrics != nil {
		e.metrics.ObserveOperation(kind, status)
	}
}

func (e *Engine) addBytes(direction string, n int64) {
	if e.metrics != nil {
		e.metrics.AddBytes(direction, n)
	}
}

// percent computes ceil(loaded/total*scale), clamped to scale. Zero totals
// report zero rather than dividing.
func percent(loaded, total int64, scale int) int {
	if total <= 0 {
		return 0
	}
	p := int(math.Ceil(float64(loaded) / float64(total) * float64(scale)))
	if p > scale {
		p = scale
	}
	return p
}
