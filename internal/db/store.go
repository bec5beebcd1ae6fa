package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ALT-F4-LLC/nggmigrate/internal/model"
)

// Store binds the package-level queries to one connection so they can be
// handed to the migrator and the ingester as a single value.
type Store struct {
	DB        *sql.DB
	ChangedBy string
}

// NewStore returns a Store over conn. changedBy is recorded in the activity
// log for every body rewrite.
func NewStore(conn *sql.DB, changedBy string) *Store {
	return &Store{DB: conn, ChangedBy: changedBy}
}

// FindRecords returns the IDs of candidate records matching opts.
func (s *Store) FindRecords(ctx context.Context, opts FindOptions) ([]int64, error) {
	return FindPostIDs(ctx, s.DB, opts)
}

// Load returns a record by ID.
func (s *Store) Load(ctx context.Context, id int64) (*model.ContentRecord, error) {
	return GetPost(ctx, s.DB, id)
}

// Save writes rec.Body and logs previous as the pristine body.
func (s *Store) Save(ctx context.Context, rec *model.ContentRecord, previous string) error {
	if err := UpdatePostContent(ctx, s.DB, rec.ID, previous, rec.Body, s.ChangedBy); err != nil {
		return fmt.Errorf("saving post %d: %w", rec.ID, err)
	}
	return nil
}

// OwnedImages returns the image attachments owned by ownerID.
func (s *Store) OwnedImages(ctx context.Context, ownerID int64) ([]model.Asset, error) {
	return ListOwnedAssets(ctx, s.DB, ownerID, true)
}

// FindByToken returns the attachments of ownerID tagged with token.
func (s *Store) FindByToken(ctx context.Context, ownerID int64, token string) ([]model.Asset, error) {
	return FindAssetsByToken(ctx, s.DB, ownerID, token)
}

// UpdateAsset persists asset metadata.
func (s *Store) UpdateAsset(ctx context.Context, a *model.Asset) error {
	return UpdateAsset(ctx, s.DB, a)
}

// InsertAttachment creates an attachment row.
func (s *Store) InsertAttachment(ctx context.Context, a *model.Asset) (int64, error) {
	return InsertAttachment(ctx, s.DB, a)
}
