package migrate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/ALT-F4-LLC/nggmigrate/internal/db"
	"github.com/ALT-F4-LLC/nggmigrate/internal/directive"
	"github.com/ALT-F4-LLC/nggmigrate/internal/model"
)

// Migrator finds content records carrying legacy directives and converts
// them. Two Migrators must not run against the same store at once.
type Migrator struct {
	deps Deps
	opts Options
}

// New validates deps and fills in option defaults.
func New(deps Deps, opts Options) (*Migrator, error) {
	if deps.Content == nil || deps.Assets == nil || deps.Legacy == nil {
		return nil, fmt.Errorf("migrator requires content, asset and legacy stores")
	}
	if deps.Ingester == nil && !opts.DryRun {
		return nil, fmt.Errorf("migrator requires an ingester unless dry-run is set")
	}

	mode, err := model.ParseGalleryMode(string(opts.GalleryMode))
	if err != nil {
		return nil, err
	}
	opts.GalleryMode = mode

	if opts.TimeBudget == 0 {
		opts.TimeBudget = DefaultTimeBudget
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Migrator{deps: deps, opts: opts}, nil
}

// Enumerate returns the IDs of candidate records in ascending order, each
// once, capped at limit when limit > 0. Candidates are posts and pages in
// any live status whose body contains a directive marker.
func (m *Migrator) Enumerate(ctx context.Context, limit int) ([]int64, error) {
	seen := make(map[int64]struct{})
	ids := make([]int64, 0)

	for _, marker := range directive.Markers {
		opts := db.FindOptions{
			Search:   marker,
			Types:    []model.PostType{model.PostTypePost, model.PostTypePage},
			Statuses: model.AnyStatus,
			Limit:    limit,
		}
		if m.opts.QueryFilter != nil {
			m.opts.QueryFilter(&opts)
		}

		found, err := m.deps.Content.FindRecords(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("finding posts containing %q: %w", marker, err)
		}
		for _, id := range found {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

// Count returns the number of candidate records.
func (m *Migrator) Count(ctx context.Context) (int, error) {
	ids, err := m.Enumerate(ctx, -1)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// Execute migrates up to limit records (all when limit <= 0) and returns
// the run report. The report is returned even when the run is cut short by
// the time budget; the error is non-nil only when ctx itself was cancelled
// or enumeration failed.
func (m *Migrator) Execute(ctx context.Context, limit int) (*model.Report, error) {
	report := model.NewReport(m.opts.Now())
	report.DryRun = m.opts.DryRun

	runCtx := ctx
	if m.opts.TimeBudget > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, m.opts.TimeBudget)
		defer cancel()
	}

	r := m.newRun(report)
	ids, err := m.Enumerate(runCtx, limit)
	if err != nil {
		report.Error("Could not enumerate posts: %v", err)
		r.finish()
		return report, err
	}

	m.opts.Logger.Info("migration started", "candidates", len(ids), "limit", limit, "dry_run", m.opts.DryRun)

	for i, id := range ids {
		if runCtx.Err() != nil {
			report.Truncated = true
			report.Warn("Stopped after %d of %d posts: %v. Run convert again to continue.", i, len(ids), runCtx.Err())
			break
		}
		r.process(runCtx, id)
	}

	r.finish()
	m.opts.Logger.Info("migration finished",
		"posts", report.PostsMigrated,
		"images", report.ImagesMigrated,
		"warnings", len(report.Warnings),
		"errors", len(report.Errors),
		"duration", report.Duration(),
	)

	if err := ctx.Err(); err != nil && errors.Is(err, context.Canceled) {
		return report, err
	}
	return report, nil
}

// Process migrates a single record, appending to report.
func (m *Migrator) Process(ctx context.Context, report *model.Report, id int64) model.RecordResult {
	return m.newRun(report).process(ctx, id)
}

// run carries the state of one Execute call: the report being built and
// the picture dedup cache.
type run struct {
	deps   Deps
	opts   Options
	report *model.Report
	mat    *materializer
}

func (m *Migrator) newRun(report *model.Report) *run {
	return &run{
		deps:   m.deps,
		opts:   m.opts,
		report: report,
		mat:    newMaterializer(m.deps, m.opts),
	}
}

func (r *run) finish() {
	r.report.Info("%s", r.report.Summary())
	r.report.FinishedAt = r.opts.Now()
}

func (r *run) process(ctx context.Context, id int64) model.RecordResult {
	res := r.processRecord(ctx, id)
	r.report.AddRecord(res)
	r.opts.Logger.Debug("processed post",
		"post", id,
		"outcome", res.Outcome,
		"directives", res.Directives,
		"rewritten", res.Rewritten,
		"assets", res.Assets,
	)
	return res
}

func (r *run) processRecord(ctx context.Context, id int64) model.RecordResult {
	failed := model.RecordResult{ID: id, Outcome: model.OutcomeFailed}

	rec, err := r.deps.Content.Load(ctx, id)
	if err != nil {
		r.report.Error("Could not load post %d: %v", id, err)
		return failed
	}

	owned, err := r.deps.Assets.OwnedImages(ctx, id)
	if err != nil {
		r.report.Error("Could not list attachments of post %d: %v", id, err)
		return failed
	}
	preexisting := model.AssetIDs(owned)

	body, res, err := r.rewrite(ctx, rec, preexisting)
	if err != nil {
		if errors.Is(err, ErrStoreWrite) {
			r.report.Error("Could not update post %d: %v", id, err)
			res.Outcome = model.OutcomeFailed
			return res
		}
		r.report.Warn("Stopped processing post %d: %v", id, err)
		res.Outcome = model.OutcomeUnchanged
		return res
	}

	if res.Directives == 0 {
		r.report.Warn("Could not match gallery id in post %d", id)
	}

	if res.Rewritten == 0 || body == rec.Body {
		res.Outcome = model.OutcomeUnchanged
		r.report.Info("Left post %d unchanged", id)
		return res
	}

	if !r.opts.DryRun {
		previous := rec.Body
		rec.Body = body
		if err := r.deps.Content.Save(ctx, rec, previous); err != nil {
			r.report.Error("Could not update post %d: %v", id, fmt.Errorf("%w: %w", ErrStoreWrite, err))
			res.Outcome = model.OutcomeFailed
			return res
		}
	}

	r.report.PostsMigrated++
	res.Outcome = model.OutcomeConverted
	r.report.Info("Updated post %d", id)
	return res
}
