package commands

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"git.home.luguber.info/inful/blogbuilder/internal/build"
	"git.home.luguber.info/inful/blogbuilder/internal/metrics"
	"git.home.luguber.info/inful/blogbuilder/internal/preview"
)

// PreviewCmd implements the 'preview' command.
type PreviewCmd struct {
	Port     int           `short:"p" help:"Port to serve on (overrides preview.port)"`
	Interval time.Duration `help:"Rebuild on this interval so scheduled posts go live (overrides preview.rebuild_interval)"`
	Drafts   bool          `help:"Include posts marked draft"`
}

func (p *PreviewCmd) Run(root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if p.Port != 0 {
		cfg.Preview.Port = p.Port
	}
	if p.Interval != 0 {
		cfg.Preview.RebuildInterval = p.Interval
	}
	cfg.Content.Drafts = cfg.Content.Drafts || p.Drafts
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	reg := prom.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	pub := newPublisher(cfg)
	defer func() { _ = pub.Close() }()

	svc := build.NewBuildService().
		WithRecorder(metrics.NewPrometheusRecorder(reg)).
		WithPublisher(pub)
	return preview.Run(ctx, cfg, svc, reg)
}
