// Package assets resolves image URIs to embeddable bytes.
//
// Every failure is soft: a URI that cannot be fetched or does not decode
// as an image yields (nil, false) and a WARN log line, never an error.
package assets

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fumiama/imgsz"
)

const (
	DefaultTimeout  = 10 * time.Second
	DefaultMaxBytes = 10 << 20
)

var (
	ErrUnsupportedScheme = errors.New("unsupported uri scheme")
	ErrTooLarge          = errors.New("asset exceeds size limit")
	ErrOutsideBase       = errors.New("file outside asset directory")
)

// Asset is a decoded image ready for embedding.
type Asset struct {
	URI    string
	Data   []byte
	Format string // png, jpeg, gif, webp
	Width  int    // pixels
	Height int    // pixels
}

// Fetcher resolves one URI.
type Fetcher interface {
	Fetch(ctx context.Context, uri string) (*Asset, bool)
}

// Options configures a Resolver.
type Options struct {
	Timeout  time.Duration
	MaxBytes int64
	// BaseDir is the only directory file:// URIs may read from. Empty
	// disables file:// URIs.
	BaseDir string
	Client  *http.Client
}

// Resolver fetches http(s), data: and file:// URIs.
type Resolver struct {
	client   *http.Client
	timeout  time.Duration
	maxBytes int64
	baseDir  string
	logger   *slog.Logger
}

func NewResolver(opts Options, logger *slog.Logger) *Resolver {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	if opts.Client == nil {
		opts.Client = &http.Client{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	base := opts.BaseDir
	if base != "" {
		if abs, err := filepath.Abs(base); err == nil {
			base = abs
		}
	}
	return &Resolver{
		client:   opts.Client,
		timeout:  opts.Timeout,
		maxBytes: opts.MaxBytes,
		baseDir:  base,
		logger:   logger,
	}
}

// Fetch resolves uri. It never returns an error; failures are logged.
func (r *Resolver) Fetch(ctx context.Context, uri string) (*Asset, bool) {
	data, err := r.load(ctx, strings.TrimSpace(uri))
	if err != nil {
		r.logger.Warn("asset fetch failed", "uri", redact(uri), "error", err)
		return nil, false
	}
	a, err := Decode(uri, data)
	if err != nil {
		r.logger.Warn("asset is not an image", "uri", redact(uri), "error", err)
		return nil, false
	}
	return a, true
}

func (r *Resolver) load(ctx context.Context, uri string) ([]byte, error) {
	switch {
	case strings.HasPrefix(uri, "data:"):
		return parseDataURI(uri)
	case strings.HasPrefix(uri, "http://"), strings.HasPrefix(uri, "https://"):
		return r.get(ctx, uri)
	case strings.HasPrefix(uri, "file://"):
		return r.readFile(uri)
	default:
		return nil, ErrUnsupportedScheme
	}
}

func (r *Resolver) get(ctx context.Context, uri string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get asset: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get asset: status %d", resp.StatusCode)
	}
	return readCapped(resp.Body, r.maxBytes)
}

func (r *Resolver) readFile(uri string) ([]byte, error) {
	if r.baseDir == "" {
		return nil, fmt.Errorf("%w: no asset directory configured", ErrOutsideBase)
	}
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("parse file uri: %w", err)
	}
	raw := u.Path
	if u.Host != "" && u.Host != "localhost" {
		// file://logo.png is read relative to the base directory.
		raw = u.Host + u.Path
	}
	p := filepath.Clean(filepath.FromSlash(raw))
	if !filepath.IsAbs(p) {
		p = filepath.Join(r.baseDir, p)
	}
	rel, err := filepath.Rel(r.baseDir, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, ErrOutsideBase
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("open asset: %w", err)
	}
	defer f.Close()
	return readCapped(f, r.maxBytes)
}

func readCapped(rd io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(rd, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read asset: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, ErrTooLarge
	}
	return data, nil
}

// parseDataURI decodes data:<mime>;base64,<payload>.
func parseDataURI(uri string) ([]byte, error) {
	rest := strings.TrimPrefix(uri, "data:")
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || payload == "" {
		return nil, errors.New("invalid data uri")
	}
	if !strings.HasSuffix(meta, ";base64") {
		return nil, errors.New("data uri is not base64")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 data: %w", err)
	}
	return data, nil
}

// Decode validates that data is an image and records its format and size.
func Decode(uri string, data []byte) (*Asset, error) {
	sz, format, err := imgsz.DecodeSize(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if sz.Width <= 0 || sz.Height <= 0 {
		return nil, fmt.Errorf("image has no area: %dx%d", sz.Width, sz.Height)
	}
	return &Asset{URI: uri, Data: data, Format: format, Width: sz.Width, Height: sz.Height}, nil
}

// redact keeps data: payloads out of log lines.
func redact(uri string) string {
	if strings.HasPrefix(uri, "data:") && len(uri) > 40 {
		return uri[:40] + "..."
	}
	return uri
}
