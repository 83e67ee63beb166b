package build

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/blogbuilder/internal/blog"
	"git.home.luguber.info/inful/blogbuilder/internal/buildstate"
	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/events"
	"git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/gitinfo"
	"git.home.luguber.info/inful/blogbuilder/internal/linkcheck"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/metrics"
	"git.home.luguber.info/inful/blogbuilder/internal/render"
)

// DefaultBuildService is the standard implementation of BuildService.
type DefaultBuildService struct {
	recorder  metrics.Recorder
	publisher events.Publisher
	now       func() time.Time
}

// NewBuildService creates a DefaultBuildService with no metrics and no
// event publishing.
func NewBuildService() *DefaultBuildService {
	return &DefaultBuildService{
		recorder:  metrics.NoopRecorder{},
		publisher: events.NoopPublisher{},
		now:       time.Now,
	}
}

// WithRecorder sets the metrics recorder.
func (s *DefaultBuildService) WithRecorder(r metrics.Recorder) *DefaultBuildService {
	s.recorder = r
	return s
}

// WithPublisher sets the publisher that announces finished builds.
func (s *DefaultBuildService) WithPublisher(p events.Publisher) *DefaultBuildService {
	s.publisher = p
	return s
}

// WithClock sets the clock used to decide which scheduled posts are due.
func (s *DefaultBuildService) WithClock(now func() time.Time) *DefaultBuildService {
	s.now = now
	return s
}

// Run executes the complete build pipeline.
func (s *DefaultBuildService) Run(ctx context.Context, req BuildRequest) (*BuildResult, error) {
	if req.Config == nil {
		s.recorder.IncBuildOutcome(metrics.BuildOutcomeFailed)
		return &BuildResult{Status: BuildStatusFailed}, errors.ConfigError("config required").Build()
	}

	r := &buildRun{
		svc: s,
		cfg: req.Config,
		opt: req.Options,
		res: &BuildResult{
			ID:         uuid.NewString(),
			StartTime:  time.Now(),
			OutputPath: req.Config.Output.Directory,
		},
	}
	r.log = slog.With(logfields.BuildID(r.res.ID))
	r.log.Info("Starting build", logfields.Path(r.cfg.Content.PostsDir), slog.Bool("dry_run", r.opt.DryRun), slog.Bool("force", r.opt.Force))

	err := r.run(ctx)
	r.finish(ctx, err)
	return r.res, err
}

type buildRun struct {
	svc *DefaultBuildService
	cfg *config.Config
	opt BuildOptions
	log *slog.Logger
	res *BuildResult

	posts   []*blog.Post
	rc      *render.Context
	outputs []render.Output
	store   *buildstate.Store
}

func (r *buildRun) run(ctx context.Context) error {
	stages := []struct {
		name string
		fn   func(context.Context) error
	}{
		{StageLoad, r.load},
		{StageGitInfo, r.gitInfo},
		{StageIndex, r.index},
		{StageRender, r.render},
		{StageWrite, r.write},
		{StageVerify, r.verify},
	}
	for _, st := range stages {
		if err := r.stage(ctx, st.name, st.fn); err != nil {
			return err
		}
	}
	return nil
}

func (r *buildRun) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	rec := r.svc.recorder
	if err := ctx.Err(); err != nil {
		rec.IncStageResult(name, metrics.ResultCanceled)
		return err
	}
	start := time.Now()
	err := fn(ctx)
	d := time.Since(start)
	rec.ObserveStageDuration(name, d)
	rec.IncStageResult(name, metrics.ResultFor(err, ctx.Err() != nil))

	attrs := []any{logfields.Stage(name), logfields.DurationMS(float64(d.Microseconds()) / 1000)}
	if err != nil {
		r.log.Error("Stage failed", append(attrs, logfields.Error(err))...)
		return err
	}
	r.log.Debug("Stage complete", attrs...)
	return nil
}

func (r *buildRun) load(ctx context.Context) error {
	posts, err := blog.Load(ctx, r.cfg.Content.PostsDir, blog.LoadOptions{
		Drafts: r.cfg.Content.Drafts,
		Future: r.cfg.Content.Future,
		Now:    r.svc.now,
	})
	if err != nil {
		return err
	}
	r.posts = posts
	return nil
}

func (r *buildRun) gitInfo(ctx context.Context) error {
	if !r.cfg.Build.GitInfo {
		return nil
	}
	n, err := gitinfo.Apply(ctx, r.cfg.Content.PostsDir, r.posts)
	if err != nil {
		return err
	}
	r.log.Debug("Applied git modification times", slog.Int("posts", n))
	return nil
}

func (r *buildRun) index(context.Context) error {
	rc, err := render.NewContext(r.cfg, r.posts)
	if err != nil {
		return err
	}
	r.rc = rc
	r.res.Posts = len(rc.Posts.All())
	r.res.Tags = len(rc.Tags.Tags())
	return nil
}

func (r *buildRun) render(ctx context.Context) error {
	site, err := render.NewSite(r.rc, r.cfg.Content.TemplatesDir)
	if err != nil {
		return err
	}
	outputs, err := site.Render(ctx)
	if err != nil {
		return err
	}
	r.outputs = outputs
	return nil
}

func (r *buildRun) write(ctx context.Context) error {
	if r.opt.DryRun {
		return nil
	}
	outDir := r.cfg.Output.Directory
	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create output directory").WithContext("path", outDir).Build()
	}
	store, err := buildstate.Open(filepath.Join(outDir, buildstate.FileName))
	if err != nil {
		return err
	}
	r.store = store

	previous := map[string]string{}
	if !r.opt.Force {
		if previous, err = store.Fingerprints(ctx); err != nil {
			return err
		}
	}

	current := make(map[string]string, len(r.outputs))
	for _, out := range r.outputs {
		if err := ctx.Err(); err != nil {
			return err
		}
		fp := buildstate.Fingerprint(out.Path, out.Content)
		current[out.Path] = fp
		target := filepath.Join(outDir, filepath.FromSlash(out.Path))
		if previous[out.Path] == fp && fileExists(target) {
			r.res.PagesSkipped++
			continue
		}
		if err := writeFile(target, out.Content); err != nil {
			return err
		}
		r.res.PagesWritten++
	}

	stale, err := store.Replace(ctx, r.res.ID, current)
	if err != nil {
		return err
	}
	if r.cfg.Output.Clean {
		for _, p := range stale {
			target := filepath.Join(outDir, filepath.FromSlash(p))
			if err := os.Remove(target); err != nil && !stderrors.Is(err, os.ErrNotExist) {
				return errors.WrapError(err, errors.CategoryFileSystem, "failed to remove stale page").WithContext("path", target).Build()
			}
			r.res.PagesRemoved++
			r.log.Debug("Removed stale page", logfields.Path(p))
		}
	}
	r.log.Info("Wrote pages", logfields.Pages(r.res.PagesWritten), slog.Int("skipped", r.res.PagesSkipped), slog.Int("removed", r.res.PagesRemoved))
	return nil
}

func (r *buildRun) verify(ctx context.Context) error {
	if !r.cfg.Build.VerifyLinks {
		return nil
	}
	var basePath string
	if u, err := url.Parse(r.cfg.Site.BaseURL); err == nil {
		basePath = u.Path
	}
	files := make([]string, len(r.outputs))
	pages := make([]linkcheck.Page, len(r.outputs))
	for i, out := range r.outputs {
		files[i] = out.Path
		pages[i] = linkcheck.Page{Path: out.Path, Content: out.Content}
	}
	broken, err := linkcheck.New(basePath, files).CheckAll(ctx, pages)
	if err != nil {
		return err
	}
	for _, b := range broken {
		r.log.Warn("Broken internal link", logfields.Path(b.Page), logfields.URL(b.Link.URL))
	}
	r.res.BrokenLinks = broken
	return nil
}

func (r *buildRun) finish(ctx context.Context, err error) {
	res := r.res
	res.EndTime = time.Now()
	res.Duration = res.EndTime.Sub(res.StartTime)

	outcome := metrics.BuildOutcomeSuccess
	switch {
	case err == nil:
		res.Status = BuildStatusSuccess
	case ctx.Err() != nil:
		res.Status = BuildStatusCancelled
		outcome = metrics.BuildOutcomeCanceled
	default:
		res.Status = BuildStatusFailed
		outcome = metrics.BuildOutcomeFailed
	}

	rec := r.svc.recorder
	rec.IncBuildOutcome(outcome)
	rec.ObserveBuildDuration(res.Duration)
	rec.AddPages(res.PagesWritten, res.PagesSkipped)
	if err == nil {
		rec.SetPosts(res.Posts, res.Tags)
	}

	// Bookkeeping must outlive a cancelled build context.
	bg := context.WithoutCancel(ctx)
	if r.store != nil {
		if serr := r.store.RecordBuild(bg, buildstate.Build{
			ID:           res.ID,
			Started:      res.StartTime,
			Finished:     res.EndTime,
			Outcome:      string(res.Status),
			PagesWritten: res.PagesWritten,
			PagesSkipped: res.PagesSkipped,
		}); serr != nil {
			r.log.Warn("Failed to record build", logfields.Error(serr))
		}
		if cerr := r.store.Close(); cerr != nil {
			r.log.Warn("Failed to close build state", logfields.Error(cerr))
		}
	}

	ev := events.BuildCompleted{
		BuildID:      res.ID,
		Timestamp:    res.EndTime.UTC(),
		Site:         r.cfg.Site.BaseURL,
		Outcome:      string(res.Status),
		Posts:        res.Posts,
		Tags:         res.Tags,
		PagesWritten: res.PagesWritten,
		PagesSkipped: res.PagesSkipped,
		BrokenLinks:  len(res.BrokenLinks),
		DurationMS:   res.Duration.Milliseconds(),
	}
	if err != nil {
		ev.Error = err.Error()
	}
	if perr := r.svc.publisher.PublishBuildCompleted(bg, ev); perr != nil {
		r.log.Warn("Failed to publish build event", logfields.Error(perr))
	}

	attrs := []any{
		slog.String("status", string(res.Status)),
		logfields.DurationMS(float64(res.Duration.Microseconds()) / 1000),
		slog.Int("posts", res.Posts),
		slog.Int("tags", res.Tags),
	}
	if err != nil {
		r.log.Error("Build failed", append(attrs, logfields.Error(err))...)
		return
	}
	r.log.Info("Build complete", attrs...)
}

func fileExists(p string) bool {
	st, err := os.Stat(p)
	return err == nil && st.Mode().IsRegular()
}

// writeFile writes via a temporary file so a preview server never serves
// a half-written page.
func writeFile(target string, content []byte) error {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create directory").WithContext("path", dir).Build()
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create temporary file").WithContext("path", dir).Build()
	}
	_, werr := tmp.Write(content)
	cerr := tmp.Close()
	if werr == nil {
		werr = cerr
	}
	if werr == nil {
		werr = os.Chmod(tmp.Name(), 0o644) //nolint:gosec // published site content
	}
	if werr == nil {
		werr = os.Rename(tmp.Name(), target)
	}
	if werr != nil {
		_ = os.Remove(tmp.Name())
		return errors.WrapError(werr, errors.CategoryFileSystem, "failed to write page").WithContext("path", target).Build()
	}
	return nil
}
