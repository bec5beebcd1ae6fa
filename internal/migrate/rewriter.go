package migrate

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ALT-F4-LLC/nggmigrate/internal/directive"
	"github.com/ALT-F4-LLC/nggmigrate/internal/model"
)

// rewrite replaces every resolvable directive in rec.Body. Directives that
// cannot be resolved are left in place and reported as warnings. It returns
// the new body; rec is not modified. A store write failure or a cancelled
// context stops the scan and is returned.
func (r *run) rewrite(ctx context.Context, rec *model.ContentRecord, preexisting []int64) (string, model.RecordResult, error) {
	res := model.RecordResult{ID: rec.ID}
	body := rec.Body
	pos := 0
	mode := r.galleryMode(rec)

	for {
		if err := ctx.Err(); err != nil {
			return body, res, err
		}

		m, ok := directive.Next(body, pos)
		if !ok {
			break
		}
		res.Directives++

		repl, created, err := r.resolve(ctx, rec, m, mode, preexisting)
		if err != nil {
			if errors.Is(err, ErrStoreWrite) || ctx.Err() != nil {
				return body, res, err
			}
			r.report.Warn("%v", err)
			pos = m.End
			continue
		}

		spliced := body[:m.Start] + repl + body[m.End:]
		filtered := spliced
		if r.opts.ContentFilter != nil {
			filtered = r.opts.ContentFilter(FilterInput{
				Body:        spliced,
				Original:    rec.Body,
				Attrs:       m.Attrs,
				Record:      rec,
				Replacement: repl,
			})
		}

		pos = m.Start + len(repl) + len(filtered) - len(spliced)
		if pos < m.Start {
			pos = m.Start
		}
		if pos > len(filtered) {
			pos = len(filtered)
		}
		body = filtered

		res.Rewritten++
		res.Assets += created
		r.report.Info("Replaced %s %s in post %d", m.Kind, m.Attrs["id"], rec.ID)
	}

	return body, res, nil
}

// galleryMode returns the mode used for rec's gallery directives. An
// exclude-mode [gallery] shows every image the record owns, so a record
// with a gallery and any other directive lists its gallery images by id.
func (r *run) galleryMode(rec *model.ContentRecord) model.GalleryMode {
	if r.opts.GalleryMode == model.GalleryModeIDs {
		return model.GalleryModeIDs
	}
	galleries, total := 0, 0
	for _, m := range directive.Scan(rec.Body) {
		if _, ok := m.ID(); !ok {
			continue
		}
		total++
		if m.Kind.IsGallery() {
			galleries++
		}
	}
	if galleries == 0 || total == 1 {
		return r.opts.GalleryMode
	}
	r.report.Info("Listing gallery images by id in post %d, which has %d directives", rec.ID, total)
	return model.GalleryModeIDs
}

// resolve builds the replacement text for one directive and reports how
// many new assets it created.
func (r *run) resolve(ctx context.Context, rec *model.ContentRecord, m directive.Match, mode model.GalleryMode, preexisting []int64) (string, int, error) {
	id, ok := m.ID()
	if !ok {
		return "", 0, warnf(ErrParseMismatch, "Could not match %s id in post %d (%q)", m.Kind, rec.ID, m.Text)
	}

	switch m.Kind {
	case directive.KindDisplayedGallery:
		galleryID, err := r.deps.Legacy.ResolveContainer(ctx, id)
		if err != nil {
			return "", 0, warnf(err, "Could not resolve displayed gallery %d in post %d", id, rec.ID)
		}
		return r.resolveGallery(ctx, rec, galleryID, mode, preexisting)
	case directive.KindGallery:
		return r.resolveGallery(ctx, rec, id, mode, preexisting)
	default:
		return r.resolveSinglePicture(ctx, rec, id, m.Attrs)
	}
}

func (r *run) resolveGallery(ctx context.Context, rec *model.ContentRecord, galleryID int64, mode model.GalleryMode, preexisting []int64) (string, int, error) {
	gallery, err := r.deps.Legacy.ResolveGallery(ctx, galleryID)
	if err != nil {
		return "", 0, warnf(err, "Could not find images for nggallery %d in post %d", galleryID, rec.ID)
	}

	pics, err := r.deps.Legacy.ResolvePictures(ctx, galleryID)
	if err != nil {
		return "", 0, warnf(err, "Could not load images for nggallery %d in post %d", galleryID, rec.ID)
	}
	if len(pics) == 0 {
		return "", 0, warnf(nil, "Could not find images for nggallery %d in post %d", galleryID, rec.ID)
	}

	type outcome struct {
		asset model.Asset
		err   error
	}
	results := make([]outcome, len(pics))

	var g errgroup.Group
	g.SetLimit(r.opts.Workers)
	for i, pic := range pics {
		g.Go(func() error {
			a, _, err := r.mat.Materialize(ctx, rec.ID, gallery.Path, pic, true)
			results[i] = outcome{asset: a, err: err}
			return nil
		})
	}
	_ = g.Wait()

	ids := make([]int64, 0, len(pics))
	for i, out := range results {
		if out.err != nil {
			if errors.Is(out.err, ErrStoreWrite) {
				return "", 0, out.err
			}
			r.report.Warn("Error loading picture %d (%s) for post %d: %v", pics[i].ID, pics[i].Filename, rec.ID, out.err)
			continue
		}
		r.assetAdded(rec.ID, pics[i], out.asset)
		ids = append(ids, out.asset.ID)
	}

	if len(ids) == 0 {
		return "", 0, warnf(nil, "Could not load images for nggallery %d in post %d", galleryID, rec.ID)
	}

	return directive.Gallery(mode, ids, preexisting), len(ids), nil
}

func (r *run) resolveSinglePicture(ctx context.Context, rec *model.ContentRecord, pictureID int64, attrs directive.Attrs) (string, int, error) {
	pic, err := r.deps.Legacy.ResolvePicture(ctx, pictureID)
	if err != nil {
		return "", 0, warnf(err, "Could not find picture %d for post %d", pictureID, rec.ID)
	}

	gallery, err := r.deps.Legacy.ResolveGallery(ctx, pic.GalleryID)
	if err != nil {
		return "", 0, warnf(err, "Could not find gallery %d of picture %d for post %d", pic.GalleryID, pictureID, rec.ID)
	}

	asset, reused, err := r.mat.Materialize(ctx, rec.ID, gallery.Path, *pic, false)
	if err != nil {
		if errors.Is(err, ErrStoreWrite) {
			return "", 0, err
		}
		return "", 0, warnf(err, "Error loading picture %d (%s) for post %d", pic.ID, pic.Filename, rec.ID)
	}

	created := 0
	if !reused {
		r.assetAdded(rec.ID, *pic, asset)
		created = 1
	}

	return directive.SinglePicture(directive.Image{
		FullURL:   asset.SizeURL(model.SizeFull),
		MediumURL: asset.SizeURL(model.SizeMedium),
		Alt:       asset.Caption(),
		Height:    attrs.Height(),
		Float:     attrs.Float(),
	}), created, nil
}

func (r *run) assetAdded(ownerID int64, pic model.Picture, a model.Asset) {
	r.report.ImagesMigrated++
	r.report.Info("Added attachment %d for post %d from %s", a.ID, ownerID, pic.Filename)
}

// warning is a directive-level failure. Its message is shown to the
// operator as is; err, when set, is the underlying cause.
type warning struct {
	msg string
	err error
}

func warnf(err error, format string, args ...any) error {
	return &warning{msg: fmt.Sprintf(format, args...), err: err}
}

func (w *warning) Error() string {
	if w.err == nil {
		return w.msg
	}
	return w.msg + ": " + w.err.Error()
}

func (w *warning) Unwrap() error { return w.err }
