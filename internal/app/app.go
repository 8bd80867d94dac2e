package app

import (
	"context"
	"fmt"
	"net"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/five82/vpick/internal/config"
	"github.com/five82/vpick/internal/effects"
	"github.com/five82/vpick/internal/logging"
	"github.com/five82/vpick/internal/state"
	"github.com/five82/vpick/internal/ui"
	"github.com/five82/vpick/internal/vpic"
)

// Options configure the vpick application.
type Options struct {
	ConfigPath string // empty uses default ~/.config/vpick/config.toml
	PrefsPath  string // empty uses default ~/.config/vpick/prefs.toml
}

// Run boots the vpick TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	userPrefs := config.LoadPrefs(opts.PrefsPath)

	logger, cleanup, err := logging.New(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer cleanup()

	rt, err := newRuntime(cfg, logger)
	if err != nil {
		return err
	}
	defer rt.close()

	logger.Infow("vpick starting", "base_url", cfg.BaseURL, "metrics_addr", cfg.MetricsAddr)
	err = rt.serve(ctx, func(ctx context.Context) error {
		return ui.Run(ctx, ui.Options{
			Store:     rt.store,
			Selectors: rt.selectors,
			ThemeName: userPrefs.Theme,
			PrefsPath: opts.PrefsPath,
			Logger:    logging.Component(logger, logging.ComponentUI),
		})
	})
	if err != nil {
		logger.Errorw("vpick stopped", "error", err)
		return err
	}
	logger.Infow("vpick stopped")
	return nil
}

// runtime holds the long-lived components shared by the UI and the effects
// loop.
type runtime struct {
	cfg       config.Config
	logger    *zap.SugaredLogger
	registry  *prometheus.Registry
	store     *state.Store
	selectors *state.Selectors
	effects   *effects.Orchestrator
}

func newRuntime(cfg config.Config, logger *zap.SugaredLogger) (*runtime, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	client, err := vpic.NewClient(vpic.Options{
		BaseURL:    cfg.BaseURL,
		Timeout:    cfg.Timeout,
		RateLimit:  cfg.RateLimit,
		MaxRetries: cfg.MaxRetries,
		Logger:     logging.Component(logger, logging.ComponentVPIC),
	})
	if err != nil {
		return nil, fmt.Errorf("init vpic client: %w", err)
	}

	selectors, err := state.NewSelectors(cfg.MemoSize)
	if err != nil {
		return nil, fmt.Errorf("init selectors: %w", err)
	}

	store := state.NewStore(state.Options{Logger: logging.Component(logger, logging.ComponentStore)})
	orch, err := effects.New(effects.Options{
		Store:      store,
		Source:     client,
		Logger:     logging.Component(logger, logging.ComponentEffects),
		Registerer: registry,
	})
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("init effects: %w", err)
	}

	return &runtime{
		cfg:       cfg,
		logger:    logging.Component(logger, logging.ComponentApp),
		registry:  registry,
		store:     store,
		selectors: selectors,
		effects:   orch,
	}, nil
}

func (rt *runtime) close() {
	rt.store.Close()
}

// serve runs the effects loop, the optional metrics endpoint and front.
// It requests the make list once everything is wired and returns when front
// returns or ctx is cancelled.
func (rt *runtime) serve(ctx context.Context, front func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var ln net.Listener
	if rt.cfg.MetricsAddr != "" {
		var err error
		ln, err = net.Listen("tcp", rt.cfg.MetricsAddr)
		if err != nil {
			return fmt.Errorf("listen metrics %s: %w", rt.cfg.MetricsAddr, err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return rt.effects.Run(gctx)
	})
	if ln != nil {
		g.Go(func() error {
			return serveMetrics(gctx, ln, rt.registry, logging.Component(rt.logger, logging.ComponentMetrics))
		})
	}

	if err := rt.store.Dispatch(state.LoadMakes{}); err != nil {
		cancel()
		_ = g.Wait()
		return fmt.Errorf("request makes: %w", err)
	}

	g.Go(func() error {
		defer cancel()
		return front(gctx)
	})
	return g.Wait()
}
