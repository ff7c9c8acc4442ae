package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/boutique/backoffice/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func validConfig(endpoint string) *config.StorageConfig {
	return &config.StorageConfig{
		Enabled:      true,
		Endpoint:     endpoint,
		Region:       "eu-west-1",
		Bucket:       "exports",
		AccessKey:    "test-key",
		SecretKey:    "test-secret",
		UsePathStyle: true,
		KeyPrefix:    "/backoffice/",
	}
}

func TestNewS3ObjectStorage_Validation(t *testing.T) {
	ctx := context.Background()

	_, err := NewS3ObjectStorage(ctx, nil)
	assert.ErrorContains(t, err, "configuration is required")

	tests := []struct {
		name   string
		mutate func(*config.StorageConfig)
		want   string
	}{
		{"missing bucket", func(c *config.StorageConfig) { c.Bucket = "" }, "bucket is required"},
		{"missing access key", func(c *config.StorageConfig) { c.AccessKey = "" }, "access key is required"},
		{"missing secret key", func(c *config.StorageConfig) { c.SecretKey = "" }, "secret key is required"},
		{"bad endpoint", func(c *config.StorageConfig) { c.Endpoint = "http://" }, "invalid storage endpoint"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig("http://localhost:9000")
			tt.mutate(cfg)
			_, err := NewS3ObjectStorage(ctx, cfg)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestNewS3ObjectStorage_Defaults(t *testing.T) {
	s, err := NewS3ObjectStorage(context.Background(), validConfig("localhost:9000"), WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	assert.Equal(t, "exports", s.Bucket())
	assert.Equal(t, 15*time.Minute, s.presignExpiration)
	assert.Equal(t, "backoffice/ledger/a.csv", s.ObjectKey("ledger/a.csv"))

	s, err = NewS3ObjectStorage(context.Background(), validConfig("localhost:9000"), WithPresignExpiration(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, time.Hour, s.presignExpiration)
}

func TestNormalizeEndpoint(t *testing.T) {
	got, err := normalizeEndpoint("minio:9000", true)
	require.NoError(t, err)
	assert.Equal(t, "https://minio:9000", got)

	got, err = normalizeEndpoint("", false)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000", got)
}

func TestS3ObjectStorage_GenerateDownloadURL(t *testing.T) {
	s, err := NewS3ObjectStorage(context.Background(), validConfig("http://localhost:9000"))
	require.NoError(t, err)

	_, _, err = s.GenerateDownloadURL(context.Background(), "", 0)
	assert.Error(t, err)

	raw, expiresAt, err := s.GenerateDownloadURL(context.Background(), "backoffice/ledger/march.csv", 10*time.Minute)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.Equal(t, "/exports/backoffice/ledger/march.csv", u.Path)
	assert.Equal(t, "600", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), expiresAt, 5*time.Second)
}

// fakeS3 records requests and answers like a minimal path-style S3
type fakeS3 struct {
	mu       sync.Mutex
	requests []string
	bodies   map[string]string
	types    map[string]string
	buckets  map[string]bool
}

func newFakeS3(t *testing.T) (*fakeS3, *httptest.Server) {
	f := &fakeS3{bodies: map[string]string{}, types: map[string]string{}, buckets: map[string]bool{}}
	srv := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeS3) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)

	switch {
	case r.Method == http.MethodHead && r.URL.Path == "/exports":
		if !f.buckets["exports"] {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodPut && r.URL.Path == "/exports":
		f.buckets["exports"] = true
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.bodies[r.URL.Path] = string(body)
		f.types[r.URL.Path] = r.Header.Get("Content-Type")
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusBadRequest)
	}
}

func TestS3ObjectStorage_EnsureBucketAndUpload(t *testing.T) {
	ctx := context.Background()
	fake, srv := newFakeS3(t)

	s, err := NewS3ObjectStorage(ctx, validConfig(srv.URL))
	require.NoError(t, err)

	require.NoError(t, s.EnsureBucket(ctx))
	require.NoError(t, s.EnsureBucket(ctx))

	key, err := s.Upload(ctx, "ledger/march.csv", []byte("date,type,amount\n2026-03-01,sell,200.00\n"), "text/csv")
	require.NoError(t, err)
	assert.Equal(t, "backoffice/ledger/march.csv", key)

	_, err = s.Upload(ctx, "", nil, "text/csv")
	assert.Error(t, err)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Equal(t, []string{
		"HEAD /exports",
		"PUT /exports",
		"HEAD /exports",
		"PUT /exports/backoffice/ledger/march.csv",
	}, fake.requests)
	assert.Contains(t, fake.bodies["/exports/backoffice/ledger/march.csv"], "2026-03-01,sell,200.00")
	assert.Equal(t, "text/csv", fake.types["/exports/backoffice/ledger/march.csv"])
}

func TestS3ObjectStorage_UploadFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	s, err := NewS3ObjectStorage(context.Background(), validConfig(srv.URL))
	require.NoError(t, err)

	_, err = s.Upload(context.Background(), "ledger/march.csv", []byte("x"), "text/csv")
	assert.ErrorContains(t, err, "failed to upload object backoffice/ledger/march.csv")
}
