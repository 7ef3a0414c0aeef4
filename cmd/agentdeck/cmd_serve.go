package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/urfave/cli/v3"

	"github.com/agentdeck/agentdeck/internal/builder"
	"github.com/agentdeck/agentdeck/internal/config"
	"github.com/agentdeck/agentdeck/internal/consts"
	"github.com/agentdeck/agentdeck/internal/pkg/logs"
	"github.com/agentdeck/agentdeck/internal/provider"
	"github.com/agentdeck/agentdeck/internal/provider/anthropic"
	"github.com/agentdeck/agentdeck/internal/provider/ollama"
	"github.com/agentdeck/agentdeck/internal/provider/openai"
	"github.com/agentdeck/agentdeck/internal/server"
	"github.com/agentdeck/agentdeck/internal/trigger"
)

var serveHwd = &ServeRunner{}

type ServeRunner struct{}

func (r *ServeRunner) cmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the dashboard backend",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to the config file",
				Value: consts.DefaultConfigPath(),
			},
		},
		Action: r.run,
	}
}

func (r *ServeRunner) run(ctx context.Context, cmd *cli.Command) error {
	cfgPath := cmd.String("config")
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s", cfgPath)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config error: %w", err)
	}

	if err = r.initLogger(cfg.Logging); err != nil {
		return fmt.Errorf("init logger error: %w", err)
	}

	logs.CtxInfo(ctx, "booting agentdeck, using config file: %s...", cfgPath)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err = r.initProviders(ctx, cfg.Providers); err != nil {
		return err
	}

	b := builder.New(cfg.Builder, builder.NewCatalog(cfg.Catalog))

	store := trigger.NewStore(cfg.Scheduler.Store)
	srv := server.New(*cfg, b, store)

	var sched *trigger.Scheduler
	if cfg.Scheduler.Enabled == nil || *cfg.Scheduler.Enabled {
		sched = trigger.NewScheduler(cfg.Scheduler, store, r.fireTrigger)
		if err = sched.Start(ctx); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
	} else {
		// Server handlers still need the store loaded for the CRUD API.
		if err = store.Load(); err != nil {
			return fmt.Errorf("load trigger store: %w", err)
		}
		logs.CtxInfo(ctx, "scheduler disabled by config")
	}

	if err = srv.Start(ctx); err != nil {
		return fmt.Errorf("start server: %w", err)
	}

	logs.CtxInfo(ctx, "ALL IS WELL!!! Press Ctrl+C to stop.")

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signalCh)

	select {
	case sig := <-signalCh:
		logs.CtxInfo(ctx, "Received shutdown signal (%s). Stopping runtime...", sig.String())
	case <-ctx.Done():
		logs.CtxInfo(ctx, "Context canceled. Stopping runtime...")
	}

	if sched != nil {
		sched.Stop(context.Background())
	}
	if err = srv.Stop(context.Background()); err != nil {
		logs.CtxError(ctx, "stop server error: %v", err)
	}
	for _, p := range provider.List() {
		if err = p.Close(); err != nil {
			logs.CtxWarn(ctx, "close provider %s error: %v", p.ID(), err)
		}
	}

	logs.CtxInfo(ctx, "all stopped, good bye!")
	return nil
}

func (r *ServeRunner) initLogger(cfg config.LoggingConfig) error {
	if err := logs.Init(logs.Options{
		Level:      cfg.Level,
		Format:     cfg.Format,
		Output:     cfg.Output,
		File:       cfg.File,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
	}); err != nil {
		return err
	}
	hlog.SetLogger(logs.NewHlogLogger(logs.DefaultLogger()))
	return nil
}

func (r *ServeRunner) initProviders(ctx context.Context, providers map[string]config.ProviderConfig) error {
	for id, cfg := range providers {
		cfg.ID = id
		p, err := newProvider(ctx, cfg)
		if err != nil {
			logs.CtxError(ctx, "[%s] create provider #%s error: %v", strings.ToUpper(cfg.Type), cfg.ID, err)
			return fmt.Errorf("create provider %s: %w", cfg.ID, err)
		}

		if err = provider.Register(p); err != nil {
			return fmt.Errorf("register provider %s: %w", cfg.ID, err)
		}
		logs.CtxInfo(ctx, "[%s] register provider #%s success", strings.ToUpper(cfg.Type), cfg.ID)
	}
	return nil
}

func newProvider(ctx context.Context, cfg config.ProviderConfig) (provider.Provider, error) {
	switch provider.Type(strings.ToLower(strings.TrimSpace(cfg.Type))) {
	case provider.OpenAI:
		return openai.NewProvider(ctx, cfg.ID, cfg.Config)
	case provider.Anthropic:
		return anthropic.NewProvider(ctx, cfg.ID, cfg.Config)
	case provider.Ollama:
		return ollama.NewProvider(ctx, cfg.ID, cfg.Config)
	default:
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Type)
	}
}

// fireTrigger is the scheduler's delivery callback. Agent execution lives in
// the dashboard runtime; the backend records the occurrence.
func (r *ServeRunner) fireTrigger(ctx context.Context, tr trigger.Trigger) error {
	logs.CtxInfo(ctx, "[fire] trigger %s (%s) for agent %s", tr.Name, tr.ID, tr.AgentID)
	return nil
}
