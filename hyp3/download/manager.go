// Package download fetches HyP3 product archives, handling Earthdata URS
// authentication, resumable-safe writes, and post-download extraction.
package download

import (
	"context"
	"crypto/md5"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	internalhttp "github.com/example/go-hyp3/hyp3/internal/http"
	"github.com/example/go-hyp3/hyp3/model"
	"golang.org/x/sync/errgroup"
)

const (
	edlClientID  = "BO_n7nTIlMljdvU6kRRB3g"
	ursHost      = "urs.earthdata.nasa.gov"
	asfAuthHost  = "auth.asf.alaska.edu"
	authRedirect = "https://auth.asf.alaska.edu/login"
	maxRedirects = 10
)

var (
	authDomains     = []string{"asf.alaska.edu", "earthdata.nasa.gov"}
	authCookieNames = map[string]struct{}{
		"urs_user_already_logged":     {},
		"uat_urs_user_already_logged": {},
		"asf-urs":                     {},
		"urs-access-token":            {},
	}
)

// BasicAuth holds credentials for HTTP basic authentication.
type BasicAuth struct {
	Username string
	Password string
}

// ProgressFunc is invoked as bytes are written for an individual file.
type ProgressFunc func(FileProgress)

// FileProgress reports download progress for a single file.
type FileProgress struct {
	Product    string
	FileName   string
	URL        string
	Downloaded int64
	Total      int64
}

// Config controls how downloads are executed.
type Config struct {
	Concurrency int
	Verify      bool
	Extract     bool
	Progress    ProgressFunc
	BasicAuth   *BasicAuth
	S3          S3Downloader
	Logger      *slog.Logger
}

// Manager is responsible for downloading product files.
type Manager interface {
	Fetch(ctx context.Context, client *http.Client, userAgent string, product model.Product, destDir string) error
}

type manager struct {
	cfg Config
}

// NewManager constructs a download manager with the provided configuration.
func NewManager(cfg Config) Manager {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &manager{cfg: cfg}
}

// Fetch downloads every file of the product into destDir, skipping files
// whose extracted contents or completed archives are already present. With
// Extract set, zip archives are unpacked into destDir and removed.
func (m *manager) Fetch(ctx context.Context, client *http.Client, userAgent string, product model.Product, destDir string) error {
	if client == nil {
		return errors.New("http client is required")
	}
	if destDir == "" {
		return errors.New("destination directory is required")
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create destination directory: %w", err)
	}
	if len(product.Files) == 0 {
		return errors.New("product contains no downloadable files")
	}

	if err := ensureCookieJar(client); err != nil {
		return err
	}

	dlClient := m.clientForDownload(client, userAgent)

	if err := m.ensureAuth(ctx, dlClient, userAgent); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(m.cfg.Concurrency)

	for _, file := range product.Files {
		f := file
		g.Go(func() error {
			return m.fetchFile(ctx, dlClient, userAgent, product.Name, destDir, f)
		})
	}

	return g.Wait()
}

func (m *manager) fetchFile(ctx context.Context, client *http.Client, userAgent, productName, destDir string, file model.File) error {
	name := fileName(file)
	if name == "" {
		return errors.New("could not determine filename")
	}

	// Products already extracted on a previous run are left alone.
	if m.cfg.Extract {
		extractedDir := filepath.Join(destDir, strings.TrimSuffix(name, ".zip"))
		if name != strings.TrimSuffix(name, ".zip") {
			if info, err := os.Stat(extractedDir); err == nil && info.IsDir() {
				m.cfg.Logger.Info("already extracted, skipping", "product", extractedDir)
				return nil
			}
		}
	}

	finalPath := filepath.Join(destDir, name)
	if info, err := os.Stat(finalPath); err == nil && file.Size > 0 && info.Size() == file.Size {
		m.cfg.Logger.Info("already downloaded, skipping", "file", finalPath)
		return nil
	}

	if err := m.downloadFile(ctx, client, userAgent, productName, destDir, name, file); err != nil {
		return err
	}

	if m.cfg.Extract && strings.HasSuffix(name, ".zip") {
		if err := Unzip(destDir, finalPath); err != nil {
			return fmt.Errorf("extract %s: %w", name, err)
		}
		if err := os.Remove(finalPath); err != nil {
			return fmt.Errorf("remove archive %s: %w", name, err)
		}
		m.cfg.Logger.Info("extracted product", "archive", name)
	}
	return nil
}

func (m *manager) downloadFile(ctx context.Context, client *http.Client, userAgent, productName, destDir, name string, file model.File) (err error) {
	if file.URL == "" {
		return errors.New("file missing URL")
	}

	if strings.HasPrefix(file.URL, "s3://") {
		if m.cfg.S3 == nil {
			return fmt.Errorf("s3 URL %s requires an S3 downloader", file.URL)
		}
		return m.cfg.S3.DownloadURL(ctx, file.URL, filepath.Join(destDir, name))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.URL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	if m.cfg.BasicAuth != nil && m.cfg.BasicAuth.Username != "" && hostRequiresAuth(req.URL.Hostname()) {
		req.SetBasicAuth(m.cfg.BasicAuth.Username, m.cfg.BasicAuth.Password)
	}

	resp, err := internalhttp.Do(ctx, client, req, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return internalhttp.HTTPError(resp)
	}

	// An HTML body here is a login page, not product data.
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		lower := strings.ToLower(ct)
		if strings.Contains(lower, "text/html") || strings.Contains(lower, "application/xhtml") {
			preview, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			return fmt.Errorf("unexpected HTML response while downloading %s: %s", file.URL, strings.TrimSpace(string(preview)))
		}
	}

	finalPath := filepath.Join(destDir, name)
	tmpPath := finalPath + ".part"

	out, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		out.Close()
		if err != nil {
			os.Remove(tmpPath)
		}
	}()

	total := resp.ContentLength
	if total < 0 {
		total = file.Size
	}

	writer := newProgressWriter(out, m.cfg.Progress, FileProgress{
		Product:  productName,
		FileName: name,
		URL:      file.URL,
		Total:    total,
	})

	var hash hash.Hash
	if m.cfg.Verify && file.Checksum != "" {
		switch strings.ToLower(file.ChecksumType) {
		case "", "md5":
			hash = md5.New()
		case "sha1":
			hash = sha1.New()
		}
	}

	if hash != nil {
		writer.SetHasher(hash)
	}

	if _, err = io.Copy(writer, resp.Body); err != nil {
		return fmt.Errorf("copy data: %w", err)
	}

	if hash != nil {
		sum := hex.EncodeToString(hash.Sum(nil))
		if !strings.EqualFold(sum, file.Checksum) {
			return fmt.Errorf("checksum mismatch for %s: expected %s got %s", name, file.Checksum, sum)
		}
	}

	if err = out.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = out.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err = os.Rename(tmpPath, finalPath); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}

func fileName(file model.File) string {
	if file.Name != "" {
		return file.Name
	}
	if u, err := url.Parse(file.URL); err == nil {
		base := filepath.Base(u.Path)
		if base != "" && base != "." && base != "/" {
			return base
		}
	}
	return ""
}

func (m *manager) ensureAuth(ctx context.Context, client *http.Client, userAgent string) error {
	if m.cfg.BasicAuth == nil || m.cfg.BasicAuth.Username == "" {
		return nil
	}
	if client.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return fmt.Errorf("create cookie jar: %w", err)
		}
		client.Jar = jar
	}
	if hasAuthCookies(client.Jar) {
		return nil
	}

	loginURL := fmt.Sprintf("https://%s/oauth/authorize?client_id=%s&response_type=code&redirect_uri=%s", ursHost, edlClientID, url.QueryEscape(authRedirect))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loginURL, nil)
	if err != nil {
		return fmt.Errorf("prepare login request: %w", err)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	if hostRequiresAuth(req.URL.Hostname()) {
		req.SetBasicAuth(m.cfg.BasicAuth.Username, m.cfg.BasicAuth.Password)
	}

	resp, err := internalhttp.Do(ctx, client, req, nil)
	if err != nil {
		return fmt.Errorf("authenticate with earthdata: %w", err)
	}
	resp.Body.Close()

	if !hasAuthCookies(client.Jar) {
		return errors.New("earthdata authentication failed: login cookies not set")
	}
	return nil
}

func (m *manager) clientForDownload(base *http.Client, userAgent string) *http.Client {
	if m.cfg.BasicAuth == nil || m.cfg.BasicAuth.Username == "" {
		return base
	}

	clone := *base
	clone.Jar = base.Jar
	clone.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return fmt.Errorf("stopped after %d redirects", maxRedirects)
		}
		if len(via) > 0 {
			req.Header = via[len(via)-1].Header.Clone()
		}
		if userAgent != "" {
			req.Header.Set("User-Agent", userAgent)
		}
		if hostRequiresAuth(req.URL.Hostname()) {
			req.SetBasicAuth(m.cfg.BasicAuth.Username, m.cfg.BasicAuth.Password)
		} else {
			req.Header.Del("Authorization")
		}
		return nil
	}
	return &clone
}

func hostRequiresAuth(host string) bool {
	lower := strings.ToLower(host)
	for _, domain := range authDomains {
		if lower == domain || strings.HasSuffix(lower, "."+domain) {
			return true
		}
	}
	return false
}

func hasAuthCookies(jar http.CookieJar) bool {
	if jar == nil {
		return false
	}
	hosts := []string{
		fmt.Sprintf("https://%s/", ursHost),
		fmt.Sprintf("https://%s/", asfAuthHost),
	}
	for _, raw := range hosts {
		u, err := url.Parse(raw)
		if err != nil {
			continue
		}
		for _, c := range jar.Cookies(u) {
			if _, ok := authCookieNames[c.Name]; ok {
				return true
			}
		}
	}
	return false
}

func ensureCookieJar(client *http.Client) error {
	if client == nil {
		return errors.New("http client is required")
	}
	if client.Jar != nil {
		return nil
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return fmt.Errorf("create cookie jar: %w", err)
	}
	client.Jar = jar
	return nil
}

type progressWriter struct {
	dst      io.Writer
	progress ProgressFunc
	meta     FileProgress
	hasher   hash.Hash
}

func newProgressWriter(dst io.Writer, fn ProgressFunc, meta FileProgress) *progressWriter {
	return &progressWriter{dst: dst, progress: fn, meta: meta}
}

func (w *progressWriter) SetHasher(h hash.Hash) {
	w.hasher = h
}

func (w *progressWriter) Write(p []byte) (int, error) {
	if w.hasher != nil {
		if _, err := w.hasher.Write(p); err != nil {
			return 0, err
		}
	}

	n, err := w.dst.Write(p)
	if n > 0 {
		w.meta.Downloaded += int64(n)
		if w.progress != nil {
			w.progress(w.meta)
		}
	}
	return n, err
}

// BatchError aggregates multiple download errors.
type BatchError struct {
	Errors []error
}

// Error implements the error interface.
func (e BatchError) Error() string {
	if len(e.Errors) == 0 {
		return ""
	}
	messages := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		if err != nil {
			messages = append(messages, err.Error())
		}
	}
	return strings.Join(messages, "; ")
}

// FetchAll downloads every product through the manager, collecting per-product
// failures into a BatchError so one bad product does not abort the batch.
func FetchAll(ctx context.Context, m Manager, client *http.Client, userAgent string, products []model.Product, destDir string) error {
	var errs []error
	for _, product := range products {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := m.Fetch(ctx, client, userAgent, product, destDir); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", product.Name, err))
		}
	}
	if len(errs) > 0 {
		return BatchError{Errors: errs}
	}
	return nil
}
