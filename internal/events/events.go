// Package events announces finished builds to other systems.
package events

import (
	"context"
	"time"
)

// TypeBuildCompleted is the event type of a finished build.
const TypeBuildCompleted = "build.completed"

// BuildCompleted describes a finished build.
type BuildCompleted struct {
	Type         string    `json:"type"`
	BuildID      string    `json:"build_id"`
	Timestamp    time.Time `json:"timestamp"`
	Site         string    `json:"site"`
	Outcome      string    `json:"outcome"`
	Error        string    `json:"error,omitempty"`
	Posts        int       `json:"posts"`
	Tags         int       `json:"tags"`
	PagesWritten int       `json:"pages_written"`
	PagesSkipped int       `json:"pages_skipped"`
	BrokenLinks  int       `json:"broken_links"`
	DurationMS   int64     `json:"duration_ms"`
}

// Publisher delivers build events.
type Publisher interface {
	PublishBuildCompleted(ctx context.Context, ev BuildCompleted) error
	Close() error
}

// NoopPublisher drops every event (default when no broker is configured).
type NoopPublisher struct{}

func (NoopPublisher) PublishBuildCompleted(context.Context, BuildCompleted) error { return nil }
func (NoopPublisher) Close() error                                                { return nil }
