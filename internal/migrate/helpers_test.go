package migrate

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ALT-F4-LLC/nggmigrate/internal/db"
	"github.com/ALT-F4-LLC/nggmigrate/internal/legacy"
	"github.com/ALT-F4-LLC/nggmigrate/internal/model"
)

const testSiteURL = "https://example.com"

// fakeIngester inserts an attachment for every fetch unless the URL ends in
// one of the failing filenames. rows overrides how many tokened
// attachments a filename produces.
type fakeIngester struct {
	store *db.Store

	mu    sync.Mutex
	fail  map[string]bool
	rows  map[string]int
	calls []string
	hook  func(ctx context.Context) error
}

func (f *fakeIngester) Fetch(ctx context.Context, url string, ownerID int64, token model.CorrelationToken) error {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	hook := f.hook
	failing := false
	for name := range f.fail {
		if strings.HasSuffix(url, "/"+name) {
			failing = true
		}
	}
	rows := 1
	for name, n := range f.rows {
		if strings.HasSuffix(url, "/"+name) {
			rows = n
		}
	}
	f.mu.Unlock()

	if hook != nil {
		if err := hook(ctx); err != nil {
			return err
		}
	}
	if failing {
		return errors.New("connection reset by peer")
	}

	for range rows {
		_, err := f.store.InsertAttachment(ctx, &model.Asset{
			ParentID: ownerID,
			URL:      url,
			MimeType: "image/jpeg",
			Token:    token.String(),
			Sizes: map[string]model.ImageSize{
				model.SizeFull:   {URL: url},
				model.SizeMedium: {URL: strings.TrimSuffix(url, ".jpg") + "-300x200.jpg"},
			},
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeIngester) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type world struct {
	t        *testing.T
	conn     *sql.DB
	store    *db.Store
	ingester *fakeIngester
}

func newWorld(t *testing.T) *world {
	t.Helper()
	conn, err := db.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.Initialize(conn))

	store := db.NewStore(conn, "test")
	return &world{
		t:        t,
		conn:     conn,
		store:    store,
		ingester: &fakeIngester{store: store, fail: map[string]bool{}},
	}
}

func (w *world) deps() Deps {
	return Deps{
		Content:  w.store,
		Assets:   w.store,
		Legacy:   legacy.NewReader(w.conn, db.DialectSQLite, ""),
		Ingester: w.ingester,
	}
}

func (w *world) migrator(opts Options) *Migrator {
	w.t.Helper()
	if opts.SiteURL == "" {
		opts.SiteURL = testSiteURL
	}
	m, err := New(w.deps(), opts)
	require.NoError(w.t, err)
	return m
}

func (w *world) post(body string) int64 {
	w.t.Helper()
	id, err := db.CreatePost(context.Background(), w.conn, &model.ContentRecord{Title: "post", Body: body})
	require.NoError(w.t, err)
	return id
}

func (w *world) body(id int64) string {
	w.t.Helper()
	rec, err := db.GetPost(context.Background(), w.conn, id)
	require.NoError(w.t, err)
	return rec.Body
}

func (w *world) gallery(id int64, path string, pics ...model.Picture) {
	w.t.Helper()
	ctx := context.Background()
	require.NoError(w.t, db.CreateGallery(ctx, w.conn, &model.Gallery{ID: id, Path: path}))
	for _, p := range pics {
		p.GalleryID = id
		require.NoError(w.t, db.CreatePicture(ctx, w.conn, &p))
	}
}

func (w *world) attach(ownerID int64, mime string) int64 {
	w.t.Helper()
	id, err := w.store.InsertAttachment(context.Background(), &model.Asset{ParentID: ownerID, MimeType: mime})
	require.NoError(w.t, err)
	return id
}

func (w *world) owned(ownerID int64) []model.Asset {
	w.t.Helper()
	assets, err := db.ListOwnedAssets(context.Background(), w.conn, ownerID, true)
	require.NoError(w.t, err)
	return assets
}

// failingSaves wraps a ContentStore and fails Save for the listed IDs.
type failingSaves struct {
	ContentStore
	ids map[int64]bool
}

func (f *failingSaves) Save(ctx context.Context, rec *model.ContentRecord, previous string) error {
	if f.ids[rec.ID] {
		return errors.New("disk full")
	}
	return f.ContentStore.Save(ctx, rec, previous)
}

// failingUpdates wraps an AssetStore and fails every UpdateAsset.
type failingUpdates struct {
	AssetStore
}

func (f *failingUpdates) UpdateAsset(context.Context, *model.Asset) error {
	return errors.New("database is locked")
}
