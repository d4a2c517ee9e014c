package upload

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/useradmin/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStub_Upload(t *testing.T) {
	pu := &PendingUpload{FileName: "my photo.png"}

	got, err := Stub{}.Upload(context.Background(), pu)
	require.NoError(t, err)
	assert.Equal(t, models.ProfilePhoto{
		Name: "my photo.png",
		URL:  "https://example.com/fake-upload/my%20photo.png",
	}, got)

	got, err = Stub{BaseURL: "http://cdn.local/u/"}.Upload(context.Background(), pu)
	require.NoError(t, err)
	assert.Equal(t, "http://cdn.local/u/my%20photo.png", got.URL)
}

func TestStub_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Stub{}.Upload(ctx, &PendingUpload{FileName: "a.png"})
	require.ErrorIs(t, err, context.Canceled)
}

type objectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	status  int
}

func (o *objectStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if r.URL.Query().Get("X-Amz-Signature") == "" {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	if o.status != 0 {
		w.WriteHeader(o.status)
		_, _ = io.WriteString(w, "<Error>denied</Error>")
		return
	}
	b, _ := io.ReadAll(r.Body)
	o.mu.Lock()
	o.objects[r.URL.Path] = b
	o.types[r.URL.Path] = r.Header.Get("Content-Type")
	o.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

func newObjectStore(t *testing.T) (*objectStore, *httptest.Server) {
	t.Helper()
	store := &objectStore{objects: map[string][]byte{}, types: map[string]string{}}
	srv := httptest.NewServer(store)
	t.Cleanup(srv.Close)
	return store, srv
}

func TestS3_Upload(t *testing.T) {
	store, srv := newObjectStore(t)
	ctx := context.Background()

	up, err := NewS3(ctx, S3Config{
		Bucket:    "photos",
		Region:    "us-east-1",
		Endpoint:  srv.URL,
		AccessKey: "AKIDEXAMPLE",
		SecretKey: "secret",
		Prefix:    "/avatars/",
	}, srv.Client())
	require.NoError(t, err)
	up.now = func() time.Time { return time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC) }

	pu, err := Open(writeFile(t, "me & you.png", pngHeader))
	require.NoError(t, err)
	t.Cleanup(func() { _ = pu.Release() })

	photo, err := up.Upload(ctx, pu)
	require.NoError(t, err)
	assert.Equal(t, "me & you.png", photo.Name)

	prefix := srv.URL + "/photos/avatars/2026/03/07/"
	require.True(t, strings.HasPrefix(photo.URL, prefix), photo.URL)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f-]{36}-me_you\.png$`), strings.TrimPrefix(photo.URL, prefix))

	key := strings.TrimPrefix(photo.URL, srv.URL)
	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Equal(t, pngHeader, store.objects[key])
	assert.Equal(t, "image/png", store.types[key])
}

func TestS3_UploadRejected(t *testing.T) {
	store, srv := newObjectStore(t)
	store.status = http.StatusForbidden

	up, err := NewS3(context.Background(), S3Config{
		Bucket: "photos", Region: "us-east-1", Endpoint: srv.URL,
		AccessKey: "a", SecretKey: "b",
	}, srv.Client())
	require.NoError(t, err)

	pu, err := Open(writeFile(t, "a.png", pngHeader))
	require.NoError(t, err)
	t.Cleanup(func() { _ = pu.Release() })

	_, err = up.Upload(context.Background(), pu)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestS3_UploadAfterRelease(t *testing.T) {
	_, srv := newObjectStore(t)
	up, err := NewS3(context.Background(), S3Config{
		Bucket: "photos", Region: "us-east-1", Endpoint: srv.URL,
		AccessKey: "a", SecretKey: "b",
	}, srv.Client())
	require.NoError(t, err)

	pu, err := Open(writeFile(t, "a.png", pngHeader))
	require.NoError(t, err)
	require.NoError(t, pu.Release())

	_, err = up.Upload(context.Background(), pu)
	require.ErrorIs(t, err, ErrReleased)
}

func TestNewS3_RequiresBucketAndRegion(t *testing.T) {
	_, err := NewS3(context.Background(), S3Config{Region: "us-east-1"}, nil)
	require.ErrorIs(t, err, ErrS3Config)

	_, err = NewS3(context.Background(), S3Config{Bucket: "b"}, nil)
	require.ErrorIs(t, err, ErrS3Config)
}

func TestS3_PublicBase(t *testing.T) {
	cases := []struct {
		cfg  S3Config
		want string
	}{
		{S3Config{Bucket: "b", Region: "eu-west-1", PublicURL: "https://cdn.example.com/"}, "https://cdn.example.com"},
		{S3Config{Bucket: "b", Region: "eu-west-1", Endpoint: "http://minio:9000/"}, "http://minio:9000/b"},
		{S3Config{Bucket: "b", Region: "eu-west-1"}, "https://b.s3.eu-west-1.amazonaws.com"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, (&S3{cfg: c.cfg}).publicBase())
	}
}

func TestS3_ObjectKeyFallbackName(t *testing.T) {
	u := &S3{now: time.Now}
	key := u.objectKey("???")
	assert.True(t, strings.HasSuffix(key, "-photo"), key)
}
