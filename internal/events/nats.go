package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/retry"
)

const publishTimeout = 5 * time.Second

// Backoff between publish attempts.
const (
	retryInitial = 250 * time.Millisecond
	retryMax     = 2 * time.Second
)

// conn is the part of *nats.Conn the publisher uses.
type conn interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Drain() error
}

// NATSPublisher publishes JSON events on a NATS subject.
type NATSPublisher struct {
	conn    conn
	subject string
	policy  retry.Policy
}

// New returns a NATSPublisher when cfg names a server, and a NoopPublisher
// otherwise.
func New(cfg config.EventsConfig) (Publisher, error) {
	if cfg.NATSURL == "" {
		return NoopPublisher{}, nil
	}
	nc, err := nats.Connect(cfg.NATSURL,
		nats.Name("blogbuilder"),
		nats.Timeout(publishTimeout),
	)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryEvents, "failed to connect to NATS").
			Retryable().
			WithContext("url", cfg.NATSURL).
			Build()
	}
	slog.Info("Publishing build events", logfields.URL(cfg.NATSURL), logfields.Subject(cfg.Subject))
	return &NATSPublisher{
		conn:    nc,
		subject: cfg.Subject,
		policy:  retry.NewPolicy(retry.BackoffExponential, retryInitial, retryMax, max(cfg.Retries, 0)),
	}, nil
}

// PublishBuildCompleted publishes ev and waits for the server to
// acknowledge the flush. Failed attempts are retried with backoff.
func (p *NATSPublisher) PublishBuildCompleted(ctx context.Context, ev BuildCompleted) error {
	ev.Type = TypeBuildCompleted
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to marshal event").Build()
	}

	attempt := 0
	err = p.policy.Do(ctx, func(ctx context.Context) error {
		attempt++
		if attempt > 1 {
			slog.Debug("Retrying build event", logfields.BuildID(ev.BuildID), slog.Int("attempt", attempt))
		}
		if err := p.conn.Publish(p.subject, data); err != nil {
			return p.publishError(err, ev)
		}
		ctx, cancel := context.WithTimeout(ctx, publishTimeout)
		defer cancel()
		if err := p.conn.FlushWithContext(ctx); err != nil {
			return p.publishError(err, ev)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Debug("Published build event", logfields.BuildID(ev.BuildID), logfields.Subject(p.subject))
	return nil
}

func (p *NATSPublisher) publishError(err error, ev BuildCompleted) error {
	return errors.WrapError(err, errors.CategoryEvents, "failed to publish event").
		Warning().
		Retryable().
		WithContext("subject", p.subject).
		WithContext("build_id", ev.BuildID).
		Build()
}

// Close drains pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Drain()
}
