// Package preview serves the generated blog locally and rebuilds it when
// posts or templates change.
package preview

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/blogbuilder/internal/build"
	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
)

const shutdownTimeout = 5 * time.Second

// Run builds the site, serves it on cfg.Preview.Port and rebuilds on
// changes until ctx is cancelled. A failed build does not stop the server;
// the error is shown until the next successful build.
func Run(ctx context.Context, cfg *config.Config, svc build.BuildService, reg *prom.Registry) error {
	status := &Status{}
	rebuild := func(ctx context.Context) {
		res, err := svc.Run(ctx, build.BuildRequest{Config: cfg})
		if ctx.Err() != nil {
			return
		}
		status.Record(res, err)
	}
	rebuild(ctx)

	addr := net.JoinHostPort("", strconv.Itoa(cfg.Preview.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.WrapError(err, errors.CategoryRuntime, "failed to listen").WithContext("addr", addr).Build()
	}
	srv := &http.Server{
		Handler:           NewHandler(cfg.Output.Directory, status, reg),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			slog.Error("Preview server stopped", logfields.Error(err))
		}
	}()
	slog.Info("Preview server listening", logfields.URL("http://localhost:"+strconv.Itoa(cfg.Preview.Port)))

	watcher, err := newWatcher(cfg.Content.PostsDir, cfg.Content.TemplatesDir)
	if err != nil {
		shutdown(srv, nil)
		return err
	}
	defer func() { _ = watcher.Close() }()

	deb := newDebouncer(debounceDelay)
	defer deb.Stop()
	go rebuildWorker(ctx, deb.C(), rebuild)

	var sched *Scheduler
	if cfg.Preview.RebuildInterval > 0 {
		if sched, err = NewScheduler(); err != nil {
			shutdown(srv, nil)
			return err
		}
		if _, err := sched.ScheduleRebuild(cfg.Preview.RebuildInterval, deb.fire); err != nil {
			shutdown(srv, sched)
			return err
		}
		sched.Start()
	}

	for {
		select {
		case <-ctx.Done():
			slog.Info("Shutting down preview server")
			shutdown(srv, sched)
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				shutdown(srv, sched)
				return nil
			}
			if handleFileEvent(watcher, ev, cfg.Output.Directory) {
				deb.Trigger()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				shutdown(srv, sched)
				return nil
			}
			slog.Warn("Watcher error", logfields.Error(err))
		}
	}
}

// rebuildWorker runs one build per signal. Signals arriving during a
// build coalesce into a single follow-up build.
func rebuildWorker(ctx context.Context, signals <-chan struct{}, rebuild func(context.Context)) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-signals:
			slog.Info("Change detected; rebuilding site")
			rebuild(ctx)
		}
	}
}

func shutdown(srv *http.Server, sched *Scheduler) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Warn("HTTP server shutdown error", logfields.Error(err))
	}
	if sched != nil {
		if err := sched.Stop(); err != nil {
			slog.Warn("Scheduler shutdown error", logfields.Error(err))
		}
	}
}
