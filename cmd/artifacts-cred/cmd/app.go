package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/viper"

	"github.com/jonwraymond/feedcred/cache"
	"github.com/jonwraymond/feedcred/config"
	"github.com/jonwraymond/feedcred/credential"
	"github.com/jonwraymond/feedcred/helper"
	"github.com/jonwraymond/feedcred/observe"
	"github.com/jonwraymond/feedcred/probe"
)

const serviceName = "artifacts-cred"

// version is set at build time with -ldflags "-X ...cmd.version=...".
var version = "dev"

// app holds everything one command invocation needs.
type app struct {
	cfg     config.Config
	obs     observe.Observer
	mw      *observe.Middleware
	logger  observe.Logger
	locator *helper.Locator
	prober  probe.Prober
	backend *credential.Backend
}

// newApp wires the resolver stack. Every diagnostic, log line and exported
// span goes to stderr; stdout carries only the password.
func newApp(ctx context.Context, v *viper.Viper, stderr io.Writer) (*app, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}

	ocfg := cfg.Observe(serviceName, version)
	ocfg.Writer = stderr
	obs, err := observe.NewObserver(ctx, ocfg)
	if err != nil {
		return nil, fmt.Errorf("observability: %w", err)
	}
	mw, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		_ = obs.Shutdown(ctx)
		return nil, err
	}

	locator := helper.NewLocator(cfg.HelperPath)
	prober := probe.Instrument(probe.NewHTTPProber(), mw)
	invoker := helper.Instrument(locator.Invoker(stderr), mw)

	resolver := credential.NewResolver(prober, invoker, credential.Options{
		NonInteractive: cfg.NonInteractive,
		Middleware:     mw,
	})

	policy := cache.NoCachePolicy()
	if cfg.CacheTTL > 0 {
		policy = cache.DefaultPolicy(cfg.CacheTTL)
	}
	backend := credential.NewBackend(resolver, credential.BackendOptions{
		ExtraHosts: cfg.ExtraHosts,
		Policy:     policy,
		Timeout:    cfg.HelperTimeout,
		Logger:     obs.Logger(),
	})

	obs.Logger().Debug(ctx, "configuration loaded",
		observe.F("noninteractive", cfg.NonInteractive),
		observe.F("hosts", backend.Hosts()),
		observe.F("helper_timeout", cfg.HelperTimeout.String()),
		observe.F("cache_ttl", cfg.CacheTTL.String()),
	)

	return &app{
		cfg:     cfg,
		obs:     obs,
		mw:      mw,
		logger:  obs.Logger(),
		locator: locator,
		prober:  prober,
		backend: backend,
	}, nil
}

func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = a.obs.Shutdown(ctx)
}

// printPassword resolves service and writes the password as a single line.
// Nothing is written when no credential applies.
func (a *app) printPassword(ctx context.Context, out io.Writer, service string) error {
	password, ok, err := a.backend.Password(ctx, service)
	if err != nil {
		return err
	}
	if !ok {
		a.logger.Debug(ctx, "no credential for service")
		return nil
	}
	_, err = fmt.Fprintln(out, password)
	return err
}
