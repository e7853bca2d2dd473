package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	s3manager "github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type mockObjectDownloader struct {
	content []byte
	input   *s3.GetObjectInput
	cfg     aws.Config
}

func (m *mockObjectDownloader) Download(ctx context.Context, w io.WriterAt, input *s3.GetObjectInput, _ ...func(*s3manager.Downloader)) (int64, error) {
	copied := *input
	m.input = &copied
	if len(m.content) == 0 {
		return 0, fmt.Errorf("no content configured")
	}
	if _, err := w.WriteAt(m.content, 0); err != nil {
		return 0, err
	}
	return int64(len(m.content)), nil
}

func TestS3DownloadURL(t *testing.T) {
	ctx := context.Background()
	expiration := time.Now().Add(30 * time.Minute).UTC().Format(time.RFC3339)
	var credentialRequests int
	credServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		credentialRequests++
		if user, _, ok := r.BasicAuth(); !ok || user != "user" {
			t.Fatalf("expected basic auth on credential request")
		}
		fmt.Fprintf(w, `{"accessKeyId":"AKIA","secretAccessKey":"SECRET","sessionToken":"TOKEN","expiration":"%s"}`, expiration)
	}))
	defer credServer.Close()

	dl := NewS3Downloader(S3Config{
		CredentialsURL: credServer.URL,
		BasicAuth:      &BasicAuth{Username: "user", Password: "pass"},
	})
	impl, ok := dl.(*s3downloader)
	if !ok {
		t.Fatalf("expected *s3downloader, got %T", dl)
	}

	mock := &mockObjectDownloader{content: []byte("s3data")}
	impl.newDownloader = func(cfg aws.Config) objectDownloader {
		mock.cfg = cfg
		return mock
	}

	dest := filepath.Join(t.TempDir(), "file.dat")
	if err := dl.DownloadURL(ctx, "s3://sentinel-bucket/path/file.dat", dest); err != nil {
		t.Fatalf("DownloadURL returned error: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "s3data" {
		t.Fatalf("unexpected contents: %q", data)
	}
	if credentialRequests != 1 {
		t.Fatalf("expected single credential request, got %d", credentialRequests)
	}
	if got := aws.ToString(mock.input.Bucket); got != "sentinel-bucket" {
		t.Fatalf("unexpected bucket: %s", got)
	}
	if got := aws.ToString(mock.input.Key); got != "path/file.dat" {
		t.Fatalf("unexpected key: %s", got)
	}
	if mock.cfg.Region != defaultS3Region {
		t.Fatalf("expected region %s, got %s", defaultS3Region, mock.cfg.Region)
	}

	// A second download inside the credential lifetime reuses the cache.
	mock.content = []byte("s3data2")
	dest2 := filepath.Join(t.TempDir(), "file2.dat")
	if err := dl.DownloadURL(ctx, "s3://sentinel-bucket/path/file2.dat", dest2); err != nil {
		t.Fatalf("second DownloadURL returned error: %v", err)
	}
	if credentialRequests != 1 {
		t.Fatalf("expected credentials reused, got %d requests", credentialRequests)
	}
}

func TestS3CredentialsRefreshOnExpiry(t *testing.T) {
	ctx := context.Background()
	var credentialRequests int
	credServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		credentialRequests++
		// Already inside the renewal slack, so every download refreshes.
		expiration := time.Now().Add(30 * time.Second).UTC().Format(time.RFC3339)
		fmt.Fprintf(w, `{"accessKeyId":"AKIA","secretAccessKey":"SECRET","sessionToken":"TOKEN","expiration":"%s"}`, expiration)
	}))
	defer credServer.Close()

	dl := NewS3Downloader(S3Config{CredentialsURL: credServer.URL})
	impl := dl.(*s3downloader)
	mock := &mockObjectDownloader{content: []byte("data")}
	impl.newDownloader = func(aws.Config) objectDownloader { return mock }

	for i := 0; i < 2; i++ {
		dest := filepath.Join(t.TempDir(), "file.dat")
		if err := dl.DownloadURL(ctx, "s3://bucket/key", dest); err != nil {
			t.Fatalf("DownloadURL returned error: %v", err)
		}
	}
	if credentialRequests != 2 {
		t.Fatalf("expected refresh on near-expired credentials, got %d requests", credentialRequests)
	}
}

func TestSplitS3URL(t *testing.T) {
	bucket, key, err := splitS3URL("s3://my-bucket/some/deep/key.tif")
	if err != nil {
		t.Fatalf("splitS3URL returned error: %v", err)
	}
	if bucket != "my-bucket" || key != "some/deep/key.tif" {
		t.Fatalf("unexpected split: %s %s", bucket, key)
	}

	for _, bad := range []string{"https://example.com/x", "s3://bucket", "s3://"} {
		if _, _, err := splitS3URL(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestS3IncompleteCredentials(t *testing.T) {
	credServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"accessKeyId":""}`)
	}))
	defer credServer.Close()

	dl := NewS3Downloader(S3Config{CredentialsURL: credServer.URL})
	err := dl.DownloadURL(context.Background(), "s3://bucket/key", filepath.Join(t.TempDir(), "f"))
	if err == nil || !strings.Contains(err.Error(), "incomplete response") {
		t.Fatalf("expected incomplete credentials error, got %v", err)
	}
}
