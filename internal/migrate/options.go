// Package migrate converts legacy gallery directives in content records
// into native galleries and attachments.
package migrate

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ALT-F4-LLC/nggmigrate/internal/db"
	"github.com/ALT-F4-LLC/nggmigrate/internal/directive"
	"github.com/ALT-F4-LLC/nggmigrate/internal/model"
)

var (
	// ErrFetch is returned when a picture could not be ingested, or the
	// ingested attachment could not be found again by its token.
	ErrFetch = errors.New("fetch failed")

	// ErrParseMismatch is returned when a directive matched but its
	// required parameters could not be extracted.
	ErrParseMismatch = errors.New("directive parameters not recognized")

	// ErrStoreWrite is returned when a record body or asset could not be
	// persisted. It fails the record.
	ErrStoreWrite = errors.New("store write failed")
)

// DefaultTimeBudget caps a run when Options.TimeBudget is zero.
const DefaultTimeBudget = 10 * time.Minute

// ContentStore finds, loads and saves content records.
type ContentStore interface {
	FindRecords(ctx context.Context, opts db.FindOptions) ([]int64, error)
	Load(ctx context.Context, id int64) (*model.ContentRecord, error)
	Save(ctx context.Context, rec *model.ContentRecord, previous string) error
}

// AssetStore reads and updates attachments.
type AssetStore interface {
	OwnedImages(ctx context.Context, ownerID int64) ([]model.Asset, error)
	FindByToken(ctx context.Context, ownerID int64, token string) ([]model.Asset, error)
	UpdateAsset(ctx context.Context, a *model.Asset) error
}

// LegacyReader resolves legacy galleries and pictures.
type LegacyReader interface {
	ResolveGallery(ctx context.Context, galleryID int64) (*model.Gallery, error)
	ResolvePictures(ctx context.Context, galleryID int64) ([]model.Picture, error)
	ResolvePicture(ctx context.Context, pictureID int64) (*model.Picture, error)
	ResolveContainer(ctx context.Context, containerID int64) (int64, error)
}

// Ingester downloads a URL as an attachment owned by ownerID and tags it
// with token. It does not report the new attachment's ID.
type Ingester interface {
	Fetch(ctx context.Context, url string, ownerID int64, token model.CorrelationToken) error
}

// Deps are the collaborators a Migrator works against.
type Deps struct {
	Content  ContentStore
	Assets   AssetStore
	Legacy   LegacyReader
	Ingester Ingester
}

// URLFilter may rewrite the source URL of a picture before it is fetched.
type URLFilter func(url, basePath, filename string) string

// FilterInput is passed to a ContentFilter after every replacement.
type FilterInput struct {
	Body        string // body with the replacement spliced in
	Original    string // body as loaded, before any replacement
	Attrs       directive.Attrs
	Record      *model.ContentRecord
	Replacement string
}

// ContentFilter may adjust the body after a replacement. It returns the
// body to continue with.
type ContentFilter func(in FilterInput) string

// QueryFilter may adjust the search used to enumerate candidate records.
type QueryFilter func(opts *db.FindOptions)

// Options configures a Migrator.
type Options struct {
	SiteURL     string
	GalleryMode model.GalleryMode
	TimeBudget  time.Duration // zero means DefaultTimeBudget, negative means none
	Workers     int           // concurrent fetches per gallery, minimum 1
	DryRun      bool

	URLFilter     URLFilter
	ContentFilter ContentFilter
	QueryFilter   QueryFilter

	Logger *slog.Logger
	Now    func() time.Time
}
