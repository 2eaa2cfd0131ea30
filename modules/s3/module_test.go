package s3

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/mediagrid/internal/artifact"
	"github.com/vk/mediagrid/internal/registry"
)

type putCall struct {
	Bucket, Key, ContentType string
	Body                     []byte
}

// fakeStore records calls in memory.
type fakeStore struct {
	mu        sync.Mutex
	existing  map[string]bool
	made      []string
	puts      []putCall
	existsErr error
	putErr    error
	existsN   int
}

func (f *fakeStore) BucketExists(ctx context.Context, bucket string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.existsN++
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return f.existing[bucket], f.existsErr
}

func (f *fakeStore) MakeBucket(_ context.Context, bucket string, _ minio.MakeBucketOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.made = append(f.made, bucket)
	return nil
}

func (f *fakeStore) PutObject(_ context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return minio.UploadInfo{}, f.putErr
	}
	f.puts = append(f.puts, putCall{Bucket: bucket, Key: key, ContentType: opts.ContentType, Body: body})
	return minio.UploadInfo{Bucket: bucket, Key: key, Size: size, ETag: "etag"}, nil
}

func newTestModule(cfg Config, store *fakeStore) *Module {
	return &Module{
		Config:   cfg,
		newStore: func() (objectStore, error) { return store, nil },
	}
}

var png = &artifact.Artifact{Data: []byte("png-bytes"), Format: "png", Width: 1, Height: 1}

func TestSave_SchemeDestination(t *testing.T) {
	// --- Arrange ---
	store := &fakeStore{existing: map[string]bool{"media": true}}
	m := newTestModule(Config{}, store)

	// --- Act ---
	res, err := m.Save(context.Background(), png, "s3://media/out/logo.png")

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, &artifact.SaveResult{Location: "s3://media/out/logo.png", Provider: "s3", Size: 9}, res)
	require.Len(t, store.puts, 1)
	assert.Equal(t, putCall{Bucket: "media", Key: "out/logo.png", ContentType: "image/png", Body: []byte("png-bytes")}, store.puts[0])
	assert.Empty(t, store.made)
}

func TestSave_PlainKeyUsesDefaultBucketAndPublicURL(t *testing.T) {
	store := &fakeStore{}
	m := newTestModule(Config{Bucket: "assets", PublicBaseURL: "https://cdn.example.com/"}, store)

	res, err := m.Save(context.Background(), png, "/banners/a.png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/assets/banners/a.png", res.Location)
	assert.Equal(t, []string{"assets"}, store.made, "missing bucket is created")
}

func TestSave_EnsuresEachBucketOnce(t *testing.T) {
	store := &fakeStore{}
	m := newTestModule(Config{Bucket: "assets"}, store)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Save(context.Background(), png, "k.png")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	_, err := m.Save(context.Background(), png, "s3://other/k.png")
	require.NoError(t, err)

	assert.Equal(t, 2, store.existsN)
	assert.ElementsMatch(t, []string{"assets", "other"}, store.made)
	assert.Len(t, store.puts, 9)
}

func TestSave_RetriesFailedBucketCheck(t *testing.T) {
	// --- Arrange ---
	store := &fakeStore{existing: map[string]bool{"b": true}}
	m := newTestModule(Config{}, store)
	expired, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()

	// --- Act ---
	_, firstErr := m.Save(expired, png, "s3://b/k.png")
	res, secondErr := m.Save(context.Background(), png, "s3://b/k.png")
	_, thirdErr := m.Save(context.Background(), png, "s3://b/k2.png")

	// --- Assert ---
	require.ErrorIs(t, firstErr, context.DeadlineExceeded)
	assert.ErrorContains(t, firstErr, "ensure bucket b")
	require.NoError(t, secondErr, "a failed bucket check must not be remembered")
	assert.Equal(t, "s3://b/k.png", res.Location)
	require.NoError(t, thirdErr)
	assert.Equal(t, 2, store.existsN, "a successful check is remembered")
	assert.Len(t, store.puts, 2)
}

func TestSave_Errors(t *testing.T) {
	testCases := []struct {
		name        string
		cfg         Config
		store       *fakeStore
		in          *artifact.Artifact
		destination string
		wantErr     string
	}{
		{name: "no default bucket", store: &fakeStore{}, in: png, destination: "k.png", wantErr: "no default bucket"},
		{name: "empty key", store: &fakeStore{}, in: png, destination: "s3://bucket/", wantErr: "empty object key"},
		{name: "empty artifact", store: &fakeStore{}, in: &artifact.Artifact{}, destination: "s3://b/k", wantErr: "artifact is empty"},
		{name: "bucket check fails", store: &fakeStore{existsErr: errors.New("denied")}, in: png, destination: "s3://b/k", wantErr: "ensure bucket b: denied"},
		{name: "upload fails", store: &fakeStore{existing: map[string]bool{"b": true}, putErr: errors.New("boom")}, in: png, destination: "s3://b/k", wantErr: "put object: boom"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := newTestModule(tc.cfg, tc.store)
			_, err := m.Save(context.Background(), tc.in, tc.destination)
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestSave_NotConfigured(t *testing.T) {
	m := &Module{Config: Config{Bucket: "b"}}
	_, err := m.Save(context.Background(), png, "k.png")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestRegister_RoutesScheme(t *testing.T) {
	r := registry.New()
	(&Module{}).Register(r)

	name, err := r.ResolveProvider("S3://bucket/key", "")
	require.NoError(t, err)
	assert.Equal(t, "s3", name)
}
