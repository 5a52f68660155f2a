package keystore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainsafe/files-client/internal/common"
	"github.com/chainsafe/files-client/internal/drive"
	"github.com/chainsafe/files-client/internal/drive/api"
	"github.com/chainsafe/files-client/internal/drive/keychain"
	"github.com/chainsafe/files-client/internal/logging"
)

// fakeClient is an in-memory api.Client with per-call error injection.
type fakeClient struct {
	buckets      []api.Bucket
	users        map[string]api.BucketUsers
	usersErr     map[string]error
	summary      api.BucketSummary
	summaryErr   error
	listErr      error
	created      []api.CreateBucketRequest
	updated      map[string]api.UpdateBucketRequest
	nextBucketID string
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		users:    make(map[string]api.BucketUsers),
		usersErr: make(map[string]error),
		updated:  make(map[string]api.UpdateBucketRequest),
	}
}

func (f *fakeClient) ListBuckets(ctx context.Context) ([]api.Bucket, error) {
	return f.buckets, f.listErr
}

func (f *fakeClient) GetBucketUsers(ctx context.Context, bucketID string) (api.BucketUsers, error) {
	if err := f.usersErr[bucketID]; err != nil {
		return api.BucketUsers{}, err
	}
	return f.users[bucketID], nil
}

func (f *fakeClient) CreateBucket(ctx context.Context, req api.CreateBucketRequest) (api.Bucket, error) {
	f.created = append(f.created, req)
	return api.Bucket{ID: f.nextBucketID, Name: req.Name, Type: req.Type}, nil
}

func (f *fakeClient) UpdateBucket(ctx context.Context, bucketID string, req api.UpdateBucketRequest) error {
	f.updated[bucketID] = req
	return nil
}

func (f *fakeClient) ListObjects(ctx context.Context, bucketID, path string) ([]api.FileContentResponse, error) {
	return nil, nil
}

func (f *fakeClient) GetObjectContent(ctx context.Context, bucketID, path string, onProgress api.ProgressFunc) ([]byte, error) {
	return nil, nil
}

func (f *fakeClient) UploadObjects(ctx context.Context, bucketID string, objects []api.UploadObject, path string, onProgress api.ProgressFunc) error {
	return nil
}

func (f *fakeClient) MoveObjects(ctx context.Context, bucketID string, req api.MoveObjectsRequest) error {
	return nil
}

func (f *fakeClient) RemoveObjects(ctx context.Context, bucketID string, paths []string) error {
	return nil
}

func (f *fakeClient) BucketsSummary(ctx context.Context) (api.BucketSummary, error) {
	return f.summary, f.summaryErr
}

const testUserID = "user-1"

func newTestRegistry(t *testing.T, client api.Client) (*Registry, *keychain.LocalOracle) {
	t.Helper()
	oracle, err := keychain.NewLocalOracle(common.GenerateRandByteArray(32))
	require.NoError(t, err)
	return NewRegistry(client, oracle, testUserID, logging.NewNopLogger()), oracle
}

func TestRefresh_NoOpWithoutPersonalKey(t *testing.T) {
	client := newFakeClient()
	client.listErr = errors.New("should not be called")
	r, _ := newTestRegistry(t, client)

	require.NoError(t, r.Refresh(context.Background()))
	assert.Empty(t, r.Buckets())
}

func TestRefresh_ResolvesPersonalAndTrashKeys(t *testing.T) {
	client := newFakeClient()
	client.buckets = []api.Bucket{
		{ID: "b1", Name: "My Files", Type: "personal"},
		{ID: "b2", Name: "Bin", Type: "trash"},
	}
	client.users["b1"] = api.BucketUsers{Owners: []api.LookupUser{{UUID: testUserID}}}
	client.users["b2"] = api.BucketUsers{Owners: []api.LookupUser{{UUID: testUserID}}}
	client.summary = api.BucketSummary{UsedStorage: 42, TotalStorage: 1000}

	r, _ := newTestRegistry(t, client)
	r.SecureWithMasterPassword([]byte("hunter2"), []byte("0123456789abcdef"))

	require.NoError(t, r.Refresh(context.Background()))

	buckets := r.Buckets()
	require.Len(t, buckets, 2)
	for _, b := range buckets {
		assert.True(t, b.HasKey(), "bucket %s should resolve the personal key", b.ID)
		assert.Equal(t, drive.PermissionOwner, b.Permission)
	}

	summary, ok := r.Summary()
	require.True(t, ok)
	assert.Equal(t, int64(42), summary.UsedStorage)
}

func TestRefresh_SharedBucketKeyUnwrap(t *testing.T) {
	client := newFakeClient()
	r, oracle := newTestRegistry(t, client)
	r.SecureWithMasterPassword([]byte("hunter2"), []byte("0123456789abcdef"))

	bucketKey := common.GenerateRandByteArray(32)
	wrapped, err := oracle.EncryptForPublicKey(context.Background(), oracle.PublicKey(), bucketKey)
	require.NoError(t, err)

	client.buckets = []api.Bucket{{ID: "s1", Name: "Shared", Type: "shared"}}
	client.users["s1"] = api.BucketUsers{
		Owners:  []api.LookupUser{{UUID: "someone-else"}},
		Writers: []api.LookupUser{{UUID: testUserID, EncryptionKey: wrapped}},
	}

	require.NoError(t, r.Refresh(context.Background()))

	b, ok := r.Bucket("s1")
	require.True(t, ok)
	assert.Equal(t, bucketKey, b.EncryptionKey)
	assert.Equal(t, drive.PermissionWriter, b.Permission)
}

func TestRefresh_SharedBucketWithoutEntryFailsClosed(t *testing.T) {
	client := newFakeClient()
	client.buckets = []api.Bucket{{ID: "s1", Name: "Shared", Type: "shared"}}
	client.users["s1"] = api.BucketUsers{Owners: []api.LookupUser{{UUID: "someone-else", EncryptionKey: "blob"}}}

	r, _ := newTestRegistry(t, client)
	r.SecureWithMasterPassword([]byte("hunter2"), []byte("0123456789abcdef"))

	require.NoError(t, r.Refresh(context.Background()))

	b, ok := r.Bucket("s1")
	require.True(t, ok)
	assert.False(t, b.HasKey(), "no wrapped entry for the principal must leave the key unresolved")
}

func TestRefresh_UserListFailureDegradesSingleBucket(t *testing.T) {
	client := newFakeClient()
	client.buckets = []api.Bucket{
		{ID: "b1", Type: "personal", Owners: []api.LookupUser{{UUID: testUserID}}},
		{ID: "b2", Type: "personal", Owners: []api.LookupUser{{UUID: testUserID}}},
	}
	client.users["b1"] = api.BucketUsers{Owners: []api.LookupUser{{UUID: testUserID}}}
	client.usersErr["b2"] = errors.New("backend hiccup")

	r, _ := newTestRegistry(t, client)
	r.SecureWithMasterPassword([]byte("hunter2"), []byte("0123456789abcdef"))

	require.NoError(t, r.Refresh(context.Background()))

	buckets := r.Buckets()
	require.Len(t, buckets, 2)

	degraded, ok := r.Bucket("b2")
	require.True(t, ok)
	assert.Empty(t, degraded.Writers)
	assert.Empty(t, degraded.Readers)
	assert.True(t, degraded.HasKey(), "key resolution does not depend on the user list for personal buckets")
}

func TestSecureAccount_WrapsAndPersists(t *testing.T) {
	client := newFakeClient()
	r, oracle := newTestRegistry(t, client)

	var persisted string
	err := r.SecureAccount(context.Background(), func(ctx context.Context, wrappedKey string) error {
		persisted = wrappedKey
		return nil
	})
	require.NoError(t, err)
	require.NotEmpty(t, persisted)
	assert.True(t, r.HasPersonalKey())

	// the persisted blob unwraps back to a 32-byte key
	key, err := oracle.DecryptWithThresholdKey(context.Background(), persisted)
	require.NoError(t, err)
	assert.Len(t, key, 32)
}

func TestCreateSharedFolder_WrapsForEveryPrincipal(t *testing.T) {
	client := newFakeClient()
	client.nextBucketID = "new-bucket"
	r, _ := newTestRegistry(t, client)
	r.SecureWithMasterPassword([]byte("hunter2"), []byte("0123456789abcdef"))

	reader, err := keychain.NewLocalOracle(common.GenerateRandByteArray(32))
	require.NoError(t, err)
	writer, err := keychain.NewLocalOracle(common.GenerateRandByteArray(32))
	require.NoError(t, err)

	bucket, err := r.CreateSharedFolder(context.Background(), "team",
		[]drive.SharedFolderUser{{UUID: "w1", PubKey: writer.PublicKey()}},
		[]drive.SharedFolderUser{{UUID: "r1", PubKey: reader.PublicKey()}})
	require.NoError(t, err)
	require.NotNil(t, bucket)
	assert.Equal(t, "new-bucket", bucket.ID)
	assert.Equal(t, drive.PermissionOwner, bucket.Permission)
	assert.Len(t, bucket.EncryptionKey, 32)

	require.Len(t, client.created, 1)
	req := client.created[0]
	assert.NotEmpty(t, req.EncryptionKey, "owner-wrapped key must be carried")
	require.Len(t, req.Writers, 1)
	require.Len(t, req.Readers, 1)

	// each principal can unwrap their own blob to the same bucket key
	wKey, err := writer.DecryptWithThresholdKey(context.Background(), req.Writers[0].EncryptionKey)
	require.NoError(t, err)
	rKey, err := reader.DecryptWithThresholdKey(context.Background(), req.Readers[0].EncryptionKey)
	require.NoError(t, err)
	assert.Equal(t, bucket.EncryptionKey, wKey)
	assert.Equal(t, bucket.EncryptionKey, rKey)
}

func TestEditSharedFolder_RewrapsOnlyChangedKeys(t *testing.T) {
	client := newFakeClient()
	r, _ := newTestRegistry(t, client)
	r.SecureWithMasterPassword([]byte("hunter2"), []byte("0123456789abcdef"))

	newcomer, err := keychain.NewLocalOracle(common.GenerateRandByteArray(32))
	require.NoError(t, err)

	bucket := drive.Bucket{ID: "s1", Name: "team", Type: drive.BucketShared, EncryptionKey: common.GenerateRandByteArray(32)}

	err = r.EditSharedFolder(context.Background(), bucket,
		[]drive.UpdateSharedFolderUser{{UUID: "w1", EncryptionKey: "existing-blob"}},
		[]drive.UpdateSharedFolderUser{{UUID: "r1", PubKey: newcomer.PublicKey()}})
	require.NoError(t, err)

	req, ok := client.updated["s1"]
	require.True(t, ok)
	require.Len(t, req.Writers, 1)
	assert.Equal(t, "existing-blob", req.Writers[0].EncryptionKey, "unchanged principal blob is resent verbatim")

	require.Len(t, req.Readers, 1)
	got, err := newcomer.DecryptWithThresholdKey(context.Background(), req.Readers[0].EncryptionKey)
	require.NoError(t, err)
	assert.Equal(t, bucket.EncryptionKey, got)
}

func TestEditSharedFolder_MissingKeyFailsClosed(t *testing.T) {
	client := newFakeClient()
	r, _ := newTestRegistry(t, client)

	err := r.EditSharedFolder(context.Background(), drive.Bucket{ID: "s1", Type: drive.BucketShared}, nil, nil)
	assert.ErrorIs(t, err, drive.ErrMissingKey)
}

func TestClear_WipesState(t *testing.T) {
	client := newFakeClient()
	client.buckets = []api.Bucket{{ID: "b1", Type: "personal"}}
	client.users["b1"] = api.BucketUsers{Owners: []api.LookupUser{{UUID: testUserID}}}

	r, _ := newTestRegistry(t, client)
	r.SecureWithMasterPassword([]byte("hunter2"), []byte("0123456789abcdef"))
	require.NoError(t, r.Refresh(context.Background()))
	require.NotEmpty(t, r.Buckets())

	r.Clear()

	assert.False(t, r.HasPersonalKey())
	assert.Empty(t, r.Buckets())
	_, ok := r.Summary()
	assert.False(t, ok)
}
