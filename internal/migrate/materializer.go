package migrate

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ALT-F4-LLC/nggmigrate/internal/model"
)

// materializer turns legacy pictures into attachments. Its dedup cache
// lives for one run.
type materializer struct {
	assets    AssetStore
	ingester  Ingester
	siteURL   string
	urlFilter URLFilter
	dryRun    bool
	now       func() time.Time

	mu          sync.Mutex
	cache       map[int64]model.Asset
	placeholder int64
}

func newMaterializer(deps Deps, opts Options) *materializer {
	return &materializer{
		assets:    deps.Assets,
		ingester:  deps.Ingester,
		siteURL:   strings.TrimRight(opts.SiteURL, "/"),
		urlFilter: opts.URLFilter,
		dryRun:    opts.DryRun,
		now:       opts.Now,
		cache:     make(map[int64]model.Asset),
	}
}

// SourceURL returns the public URL of a legacy picture file.
func SourceURL(siteURL, basePath, filename string) string {
	base := strings.TrimRight(siteURL, "/")
	if p := strings.Trim(strings.TrimSpace(basePath), "/"); p != "" {
		base += "/" + p
	}
	return base + "/" + filename
}

// Materialize imports pic as an attachment owned by ownerID. Unless
// forceNew is set, a picture already imported during this run is returned
// from the cache and reused reports true.
func (m *materializer) Materialize(ctx context.Context, ownerID int64, basePath string, pic model.Picture, forceNew bool) (asset model.Asset, reused bool, err error) {
	if !forceNew {
		m.mu.Lock()
		cached, ok := m.cache[pic.ID]
		m.mu.Unlock()
		if ok {
			return cached, true, nil
		}
	}

	src := SourceURL(m.siteURL, basePath, pic.Filename)
	if m.urlFilter != nil {
		src = m.urlFilter(src, basePath, pic.Filename)
	}
	title := pic.Title()

	if m.dryRun {
		asset = model.Asset{
			ID:        m.nextPlaceholder(),
			ParentID:  ownerID,
			Title:     title,
			Content:   pic.Description,
			AltText:   title,
			URL:       src,
			MimeType:  "image/*",
			MenuOrder: pic.SortOrder,
		}
		m.remember(pic.ID, asset)
		return asset, false, nil
	}

	token, err := model.NewCorrelationToken(src, pic.Description, m.now())
	if err != nil {
		return model.Asset{}, false, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	if err := m.ingester.Fetch(ctx, src, ownerID, token); err != nil {
		return model.Asset{}, false, fmt.Errorf("%w: loading %s: %w", ErrFetch, src, err)
	}

	found, err := m.assets.FindByToken(ctx, ownerID, token.String())
	if err != nil {
		return model.Asset{}, false, fmt.Errorf("%w: looking up %s: %w", ErrFetch, src, err)
	}
	if len(found) != 1 {
		return model.Asset{}, false, fmt.Errorf("%w: expected 1 attachment for %s, found %d", ErrFetch, src, len(found))
	}

	asset = found[0]
	asset.Title = title
	asset.Content = pic.Description
	asset.AltText = title
	asset.MenuOrder = pic.SortOrder
	if err := m.assets.UpdateAsset(ctx, &asset); err != nil {
		return model.Asset{}, false, fmt.Errorf("%w: attachment %d: %w", ErrStoreWrite, asset.ID, err)
	}

	m.remember(pic.ID, asset)
	return asset, false, nil
}

func (m *materializer) remember(pictureID int64, a model.Asset) {
	m.mu.Lock()
	m.cache[pictureID] = a
	m.mu.Unlock()
}

// nextPlaceholder hands out negative IDs for dry-run assets.
func (m *materializer) nextPlaceholder() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.placeholder--
	return m.placeholder
}
