package preview

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/blogbuilder/internal/build"
	"git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/metrics"
)

// Status tracks the latest build for the status endpoint and error pages.
type Status struct {
	mu           sync.RWMutex
	last         *build.BuildResult
	lastErr      error
	hasGoodBuild bool
}

// Record stores the outcome of a build.
func (s *Status) Record(res *build.BuildResult, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = res
	s.lastErr = err
	if err == nil {
		s.hasGoodBuild = true
	}
}

// Snapshot returns the latest build, its error, and whether any build has
// succeeded so far.
func (s *Status) Snapshot() (last *build.BuildResult, err error, hasGoodBuild bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last, s.lastErr, s.hasGoodBuild
}

type statusResponse struct {
	Status       string                    `json:"status"`
	BuildID      string                    `json:"build_id,omitempty"`
	Finished     *time.Time                `json:"finished,omitempty"`
	DurationMS   int64                     `json:"duration_ms,omitempty"`
	Posts        int                       `json:"posts"`
	Tags         int                       `json:"tags"`
	PagesWritten int                       `json:"pages_written"`
	PagesSkipped int                       `json:"pages_skipped"`
	BrokenLinks  int                       `json:"broken_links"`
	Error        *errors.HTTPErrorResponse `json:"error,omitempty"`
}

// NewHandler serves the generated site from outputDir plus /healthz,
// /status and, when reg is set, /metrics.
func NewHandler(outputDir string, status *Status, reg *prom.Registry) http.Handler {
	adapter := errors.NewHTTPErrorAdapter(slog.Default())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	mux.HandleFunc("GET /status", func(w http.ResponseWriter, _ *http.Request) {
		writeStatus(w, adapter, status)
	})
	if reg != nil {
		mux.Handle("GET /metrics", metrics.HTTPHandler(reg))
	}
	mux.Handle("/", siteHandler(outputDir, status, adapter))

	return chain(slog.Default(), adapter)(mux)
}

func writeStatus(w http.ResponseWriter, adapter *errors.HTTPErrorAdapter, status *Status) {
	last, err, _ := status.Snapshot()
	resp := statusResponse{Status: "pending"}
	code := http.StatusOK
	if last != nil {
		resp.Status = string(last.Status)
		resp.BuildID = last.ID
		if !last.EndTime.IsZero() {
			finished := last.EndTime.UTC()
			resp.Finished = &finished
		}
		resp.DurationMS = last.Duration.Milliseconds()
		resp.Posts = last.Posts
		resp.Tags = last.Tags
		resp.PagesWritten = last.PagesWritten
		resp.PagesSkipped = last.PagesSkipped
		resp.BrokenLinks = len(last.BrokenLinks)
	}
	if err != nil {
		e := adapter.FormatErrorResponse(err)
		resp.Error = &e
		code = adapter.StatusCodeFor(err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}

// siteHandler serves the output directory. Dot files (the build state
// database among them) are never served. Until a build succeeds, requests
// get the last build error instead.
func siteHandler(outputDir string, status *Status, adapter *errors.HTTPErrorAdapter) http.Handler {
	files := http.FileServer(http.Dir(outputDir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, seg := range strings.Split(r.URL.Path, "/") {
			if strings.HasPrefix(seg, ".") {
				http.NotFound(w, r)
				return
			}
		}
		if _, err, good := status.Snapshot(); !good && err != nil {
			adapter.WriteErrorResponse(w, r, err)
			return
		}
		w.Header().Set("Cache-Control", "no-store")
		files.ServeHTTP(w, r)
	})
}
