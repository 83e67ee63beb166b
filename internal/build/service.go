package build

import (
	"context"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/linkcheck"
)

// Stage names, in execution order.
const (
	StageLoad    = "load"
	StageGitInfo = "gitinfo"
	StageIndex   = "index"
	StageRender  = "render"
	StageWrite   = "write"
	StageVerify  = "verify"
)

// BuildService executes site builds.
type BuildService interface {
	Run(ctx context.Context, req BuildRequest) (*BuildResult, error)
}

// BuildRequest contains all inputs required to execute a build.
type BuildRequest struct {
	Config  *config.Config
	Options BuildOptions
}

// BuildOptions modifies build behavior.
type BuildOptions struct {
	// Force rewrites every page regardless of recorded fingerprints.
	Force bool

	// DryRun renders and verifies without touching the output directory.
	DryRun bool
}

// BuildResult contains the outcome of a build execution.
type BuildResult struct {
	ID           string
	Status       BuildStatus
	OutputPath   string
	Posts        int
	Tags         int
	PagesWritten int
	PagesSkipped int
	PagesRemoved int
	BrokenLinks  []linkcheck.Broken
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
}

// BuildStatus represents the outcome of a build execution.
type BuildStatus string

const (
	BuildStatusSuccess   BuildStatus = "success"
	BuildStatusFailed    BuildStatus = "failed"
	BuildStatusCancelled BuildStatus = "cancelled"
)

// IsSuccess returns true if the build completed successfully.
func (s BuildStatus) IsSuccess() bool {
	return s == BuildStatusSuccess
}
