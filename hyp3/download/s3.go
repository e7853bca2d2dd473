package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	s3manager "github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	internalhttp "github.com/example/go-hyp3/hyp3/internal/http"
)

const (
	defaultS3Region         = "us-west-2"
	defaultS3CredentialsURL = "https://sentinel1.asf.alaska.edu/s3credentials"

	// credentialSlack is subtracted from the advertised expiry so a
	// download never starts with credentials about to lapse.
	credentialSlack = time.Minute
)

// S3Downloader retrieves objects referenced by s3:// URLs.
type S3Downloader interface {
	DownloadURL(ctx context.Context, rawURL, destPath string) error
}

// objectDownloader matches the subset of manager.Downloader used here.
type objectDownloader interface {
	Download(ctx context.Context, w io.WriterAt, input *s3.GetObjectInput, opts ...func(*s3manager.Downloader)) (int64, error)
}

// S3Config configures direct-to-S3 downloads using the archive's temporary
// credential service.
type S3Config struct {
	// CredentialsURL is the endpoint serving temporary S3 credentials.
	// Requests to it must already be authenticated (URS cookies or basic
	// auth on the supplied client).
	CredentialsURL string
	Region         string
	HTTPClient     *http.Client
	BasicAuth      *BasicAuth
}

type temporaryCredentials struct {
	AccessKeyID     string `json:"accessKeyId"`
	SecretAccessKey string `json:"secretAccessKey"`
	SessionToken    string `json:"sessionToken"`
	Expiration      string `json:"expiration"`
}

type s3downloader struct {
	cfg S3Config

	mu         sync.Mutex
	creds      aws.Credentials
	expiry     time.Time
	downloader objectDownloader

	// newDownloader builds the transfer manager; tests swap it out.
	newDownloader func(aws.Config) objectDownloader
}

// NewS3Downloader constructs an S3Downloader backed by the AWS SDK transfer
// manager, fetching and caching temporary credentials on demand.
func NewS3Downloader(cfg S3Config) S3Downloader {
	if cfg.CredentialsURL == "" {
		cfg.CredentialsURL = defaultS3CredentialsURL
	}
	if cfg.Region == "" {
		cfg.Region = defaultS3Region
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	d := &s3downloader{cfg: cfg}
	d.newDownloader = func(awsCfg aws.Config) objectDownloader {
		return s3manager.NewDownloader(s3.NewFromConfig(awsCfg))
	}
	return d
}

// DownloadURL fetches an s3://bucket/key object to destPath.
func (d *s3downloader) DownloadURL(ctx context.Context, rawURL, destPath string) error {
	bucket, key, err := splitS3URL(rawURL)
	if err != nil {
		return err
	}

	dl, err := d.ensureDownloader(ctx)
	if err != nil {
		return err
	}

	tmpPath := destPath + ".part"
	out, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	success := false
	defer func() {
		out.Close()
		if !success {
			os.Remove(tmpPath)
		}
	}()

	input := &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}
	if _, err := dl.Download(ctx, out, input); err != nil {
		return fmt.Errorf("s3 download %s: %w", rawURL, err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	success = true
	return nil
}

func (d *s3downloader) ensureDownloader(ctx context.Context) (objectDownloader, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.downloader != nil && time.Now().Before(d.expiry.Add(-credentialSlack)) {
		return d.downloader, nil
	}

	creds, expiry, err := d.fetchCredentials(ctx)
	if err != nil {
		return nil, err
	}
	d.creds = creds
	d.expiry = expiry

	awsCfg := aws.Config{
		Region:      d.cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(creds.AccessKeyID, creds.SecretAccessKey, creds.SessionToken),
	}
	d.downloader = d.newDownloader(awsCfg)
	return d.downloader, nil
}

func (d *s3downloader) fetchCredentials(ctx context.Context) (aws.Credentials, time.Time, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.cfg.CredentialsURL, nil)
	if err != nil {
		return aws.Credentials{}, time.Time{}, fmt.Errorf("create credentials request: %w", err)
	}
	if d.cfg.BasicAuth != nil && d.cfg.BasicAuth.Username != "" {
		req.SetBasicAuth(d.cfg.BasicAuth.Username, d.cfg.BasicAuth.Password)
	}

	resp, err := internalhttp.Do(ctx, d.cfg.HTTPClient, req, nil)
	if err != nil {
		return aws.Credentials{}, time.Time{}, fmt.Errorf("fetch s3 credentials: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return aws.Credentials{}, time.Time{}, fmt.Errorf("fetch s3 credentials: %w", internalhttp.HTTPError(resp))
	}

	var payload temporaryCredentials
	if err := internalhttp.DecodeJSON(resp.Body, &payload); err != nil {
		return aws.Credentials{}, time.Time{}, fmt.Errorf("fetch s3 credentials: %w", err)
	}
	if payload.AccessKeyID == "" || payload.SecretAccessKey == "" {
		return aws.Credentials{}, time.Time{}, fmt.Errorf("fetch s3 credentials: incomplete response")
	}

	expiry := time.Now().Add(time.Hour)
	if payload.Expiration != "" {
		if t, err := time.Parse(time.RFC3339, payload.Expiration); err == nil {
			expiry = t
		}
	}

	return aws.Credentials{
		AccessKeyID:     payload.AccessKeyID,
		SecretAccessKey: payload.SecretAccessKey,
		SessionToken:    payload.SessionToken,
	}, expiry, nil
}

func splitS3URL(rawURL string) (bucket, key string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", fmt.Errorf("parse s3 URL %s: %w", rawURL, err)
	}
	if u.Scheme != "s3" || u.Host == "" {
		return "", "", fmt.Errorf("not an s3 URL: %s", rawURL)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", "", fmt.Errorf("s3 URL missing object key: %s", rawURL)
	}
	return u.Host, key, nil
}
