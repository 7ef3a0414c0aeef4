package server

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	hzServer "github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/adaptor"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agentdeck/agentdeck/internal/builder"
	"github.com/agentdeck/agentdeck/internal/config"
	"github.com/agentdeck/agentdeck/internal/pkg/logs"
	pmetrics "github.com/agentdeck/agentdeck/internal/pkg/prometheus"
	"github.com/agentdeck/agentdeck/internal/trigger"
)

// Server exposes the builder conversation endpoint and the trigger CRUD API
// over hertz.
type Server struct {
	cfg        config.Config
	builder    *builder.Builder
	store      *trigger.Store
	httpServer *hzServer.Hertz
}

func New(cfg config.Config, b *builder.Builder, store *trigger.Store) *Server {
	bind := cfg.Server.Bind
	if bind == "" {
		bind = "0.0.0.0:8080"
	}

	timeout := time.Duration(cfg.Server.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	hzSvr := hzServer.Default(
		hzServer.WithHostPorts(bind),
		hzServer.WithReadTimeout(timeout),
		hzServer.WithWriteTimeout(timeout),
		hzServer.WithExitWaitTime(5*time.Second),
	)

	s := &Server{
		cfg:        cfg,
		builder:    b,
		store:      store,
		httpServer: hzSvr,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	h := s.httpServer

	h.GET("/health", func(ctx context.Context, c *app.RequestContext) {
		c.JSON(consts.StatusOK, utils.H{"status": "ok"})
	})
	h.GET("/metrics", s.handleMetrics)

	h.POST("/api/chat", s.handleChat)

	h.GET("/api/triggers", s.handleListTriggers)
	h.POST("/api/triggers", s.handleCreateTrigger)
	h.POST("/api/triggers/:id/toggle", s.handleToggleTrigger)
	h.POST("/api/triggers/:id/fire", s.handleFireTrigger)
	h.DELETE("/api/triggers/:id", s.handleDeleteTrigger)
}

func (s *Server) Start(ctx context.Context) error {
	logs.CtxInfo(ctx, "[server] listening on %s", s.cfg.Server.Bind)
	go s.httpServer.Spin()
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		logs.CtxWarn(ctx, "[server] shutdown error: %v", err)
		return err
	}
	logs.CtxInfo(ctx, "[server] stopped")
	return nil
}

// handleMetrics bridges the prometheus handler into hertz via the net/http
// compatibility adaptor.
func (s *Server) handleMetrics(ctx context.Context, c *app.RequestContext) {
	req, err := adaptor.GetCompatRequest(&c.Request)
	if err != nil {
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "metrics unavailable"})
		return
	}
	handler := promhttp.HandlerFor(pmetrics.GetRegistry(), promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})
	handler.ServeHTTP(adaptor.GetCompatResponseWriter(&c.Response), req.WithContext(ctx))
}
