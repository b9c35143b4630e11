package artifactstore

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/quizreport/internal/domain/model"
	"github.com/target/quizreport/internal/testutil"
)

// fakeS3 accepts HEAD bucket and PUT object requests and records uploaded bodies.
type fakeS3 struct {
	mu      sync.Mutex
	bucket  bool
	objects map[string][]byte
	types   map[string]string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch r.Method {
	case http.MethodHead:
		if !f.bucket {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		if r.URL.Path == "/reports-bucket" || r.URL.Path == "/reports-bucket/" {
			f.bucket = true
			w.WriteHeader(http.StatusOK)
			return
		}
		f.objects[r.URL.Path] = body
		f.types[r.URL.Path] = r.Header.Get("Content-Type")
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newFakeStore(t *testing.T, bucketExists, create bool) (*Store, *fakeS3, error) {
	t.Helper()
	fake := &fakeS3{bucket: bucketExists, objects: map[string][]byte{}, types: map[string]string{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)

	store, err := New(context.Background(), Config{
		Endpoint:     u.Host,
		AccessKey:    "minio",
		SecretKey:    "minio123",
		Bucket:       "reports-bucket",
		Region:       "us-east-1",
		Prefix:       "/reports/",
		CreateBucket: create,
	})
	return store, fake, err
}

func TestObjectKey(t *testing.T) {
	a := &model.ReportArtifact{TenantID: "tenant-a", PurchaseID: "pur/1"}
	assert.Equal(t, "reports/tenant-a/pur%2F1.json", ObjectKey("/reports/", a))
	assert.Equal(t, "tenant-a/pur%2F1.json", ObjectKey("", a))
}

func TestNew_Validation(t *testing.T) {
	_, err := New(context.Background(), Config{Bucket: "b"})
	require.Error(t, err)
	_, err = New(context.Background(), Config{Endpoint: "localhost:9000"})
	require.Error(t, err)
}

func TestNew_MissingBucket(t *testing.T) {
	_, _, err := newFakeStore(t, false, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")

	store, fake, err := newFakeStore(t, false, true)
	require.NoError(t, err)
	require.NotNil(t, store)
	assert.True(t, fake.bucket)
}

func TestStore_Mirror(t *testing.T) {
	store, fake, err := newFakeStore(t, true, false)
	require.NoError(t, err)

	artifact := testutil.NewReportArtifact("P1")
	require.NoError(t, store.Mirror(context.Background(), artifact))

	fake.mu.Lock()
	defer fake.mu.Unlock()
	body, ok := fake.objects["/reports-bucket/reports/tenant-a/P1.json"]
	require.True(t, ok, "object not uploaded: %v", fake.objects)
	assert.Equal(t, "application/json", fake.types["/reports-bucket/reports/tenant-a/P1.json"])

	var got model.ReportArtifact
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "P1", got.PurchaseID)
	assert.JSONEq(t, testutil.ReportDocumentJSON, string(got.ReportJSON))

	require.Error(t, store.Mirror(context.Background(), nil))
}
