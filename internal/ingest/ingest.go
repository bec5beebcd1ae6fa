// Package ingest downloads remote images and registers them as attachments.
package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ALT-F4-LLC/nggmigrate/internal/model"
)

var (
	// ErrStatus is returned for non-2xx responses.
	ErrStatus = errors.New("unexpected response status")
	// ErrNotImage is returned when the body is not an image.
	ErrNotImage = errors.New("response is not an image")
	// ErrTooLarge is returned when the body exceeds the configured limit.
	ErrTooLarge = errors.New("response body too large")
)

// AttachmentWriter creates the attachment row for an ingested file.
type AttachmentWriter interface {
	InsertAttachment(ctx context.Context, a *model.Asset) (int64, error)
}

// Options tunes an HTTPIngester. Zero values get defaults.
type Options struct {
	Timeout       time.Duration
	RatePerSecond float64
	MaxBytes      int64
	UserAgent     string
	Client        *http.Client
	Now           func() time.Time
	Logger        *slog.Logger
}

const (
	defaultTimeout   = 30 * time.Second
	defaultMaxBytes  = 32 << 20
	defaultUserAgent = "nggmigrate"
)

// HTTPIngester fetches a URL, stores the bytes and inserts an attachment
// owned by the requesting record, tagged with the caller's token.
type HTTPIngester struct {
	client      *http.Client
	limiter     *rate.Limiter
	blobs       BlobStore
	attachments AttachmentWriter
	maxBytes    int64
	userAgent   string
	now         func() time.Time
	logger      *slog.Logger
}

// New returns an HTTPIngester.
func New(blobs BlobStore, attachments AttachmentWriter, opts Options) *HTTPIngester {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	limit := rate.Inf
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
	}

	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &HTTPIngester{
		client:      client,
		limiter:     rate.NewLimiter(limit, 1),
		blobs:       blobs,
		attachments: attachments,
		maxBytes:    maxBytes,
		userAgent:   userAgent,
		now:         now,
		logger:      logger,
	}
}

// Fetch downloads src and creates an attachment owned by ownerID. The
// attachment ID is not returned; callers find it again through token.
func (i *HTTPIngester) Fetch(ctx context.Context, src string, ownerID int64, token model.CorrelationToken) error {
	if err := i.limiter.Wait(ctx); err != nil {
		return err
	}

	data, contentType, err := i.download(ctx, src)
	if err != nil {
		return err
	}

	filename := Filename(src)
	key := fmt.Sprintf("%s/%s-%s", i.now().UTC().Format("2006/01"), token.Short(), filename)

	publicURL, err := i.blobs.Put(ctx, key, data, contentType)
	if err != nil {
		return fmt.Errorf("storing %s: %w", filename, err)
	}

	full := model.ImageSize{URL: publicURL}
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		full.Width, full.Height = cfg.Width, cfg.Height
	}

	asset := &model.Asset{
		ParentID: ownerID,
		Title:    strings.TrimSuffix(filename, path.Ext(filename)),
		URL:      publicURL,
		MimeType: contentType,
		Token:    token.String(),
		Sizes:    map[string]model.ImageSize{model.SizeFull: full},
	}
	id, err := i.attachments.InsertAttachment(ctx, asset)
	if err != nil {
		return fmt.Errorf("inserting attachment for %s: %w", filename, err)
	}

	i.logger.Debug("ingested image",
		"url", src,
		"owner", ownerID,
		"attachment", id,
		"bytes", len(data),
		"width", full.Width,
		"height", full.Height,
	)
	return nil
}

func (i *HTTPIngester) download(ctx context.Context, src string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", i.userAgent)

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetching %s: %w", src, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("%w: %s", ErrStatus, resp.Status)
	}
	if resp.ContentLength > i.maxBytes {
		return nil, "", fmt.Errorf("%w: %d bytes", ErrTooLarge, resp.ContentLength)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, i.maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", src, err)
	}
	if int64(len(data)) > i.maxBytes {
		return nil, "", fmt.Errorf("%w: more than %d bytes", ErrTooLarge, i.maxBytes)
	}

	contentType := mediaType(resp.Header.Get("Content-Type"))
	if !strings.HasPrefix(contentType, "image/") {
		contentType = mediaType(http.DetectContentType(data))
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, "", fmt.Errorf("%w: %s", ErrNotImage, contentType)
	}

	return data, contentType, nil
}

func mediaType(header string) string {
	mt, _, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return mt
}

// Filename returns the last path segment of a URL, falling back to
// "image" when the URL has none.
func Filename(raw string) string {
	name := ""
	if u, err := url.Parse(raw); err == nil {
		name = path.Base(u.Path)
	}
	if name == "" || name == "." || name == "/" {
		return "image"
	}
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	return strings.ReplaceAll(name, "/", "-")
}
