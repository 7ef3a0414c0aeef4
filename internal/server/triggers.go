package server

import (
	"context"
	"errors"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/agentdeck/agentdeck/internal/pkg/logs"
	"github.com/agentdeck/agentdeck/internal/trigger"
)

type createTriggerRequest struct {
	AgentID  string `json:"agent_id,omitempty"`
	Name     string `json:"name"`
	Cron     string `json:"cron"`
	Timezone string `json:"timezone,omitempty"`
}

type toggleTriggerRequest struct {
	Enabled bool `json:"enabled"`
}

func (s *Server) handleListTriggers(ctx context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, utils.H{"triggers": s.store.List()})
}

func (s *Server) handleCreateTrigger(ctx context.Context, c *app.RequestContext) {
	var req createTriggerRequest
	if err := sonic.Unmarshal(c.GetRequest().Body(), &req); err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "invalid request body"})
		return
	}
	if req.Name == "" || req.Cron == "" {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "name and cron are required"})
		return
	}

	timezone := req.Timezone
	if timezone == "" {
		timezone = s.cfg.Scheduler.DefaultTimezone
	}

	tr, err := trigger.New(req.AgentID, req.Name, req.Cron, timezone, time.Now())
	if err != nil {
		writeCronError(c, err)
		return
	}

	if err := s.store.Add(tr); err != nil {
		c.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
		return
	}
	s.saveStore(ctx)

	logs.CtxInfo(ctx, "[server] created trigger %s (%s) %q", tr.ID, tr.Name, tr.CronExpression)
	c.JSON(consts.StatusCreated, tr)
}

func (s *Server) handleToggleTrigger(ctx context.Context, c *app.RequestContext) {
	id := c.Param("id")
	tr, ok := s.store.Get(id)
	if !ok {
		c.JSON(consts.StatusNotFound, utils.H{"error": "trigger not found: " + id})
		return
	}

	var req toggleTriggerRequest
	if err := sonic.Unmarshal(c.GetRequest().Body(), &req); err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "invalid request body"})
		return
	}

	updated, err := trigger.Toggle(tr, req.Enabled, time.Now())
	if err != nil {
		c.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
		return
	}

	s.store.Update(updated)
	s.saveStore(ctx)
	c.JSON(consts.StatusOK, updated)
}

// handleFireTrigger records a manual out-of-schedule fire. Delivery is the
// caller's business; this endpoint only advances the trigger's bookkeeping.
func (s *Server) handleFireTrigger(ctx context.Context, c *app.RequestContext) {
	id := c.Param("id")
	tr, ok := s.store.Get(id)
	if !ok {
		c.JSON(consts.StatusNotFound, utils.H{"error": "trigger not found: " + id})
		return
	}

	updated, err := trigger.RecordFire(tr, time.Now())
	if err != nil {
		if errors.Is(err, trigger.ErrDisabled) {
			c.JSON(consts.StatusConflict, utils.H{"error": err.Error()})
			return
		}
		c.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
		return
	}

	s.store.Update(updated)
	s.saveStore(ctx)
	logs.CtxInfo(ctx, "[server] manual fire recorded for %s (count=%d)", updated.ID, updated.TriggerCount)
	c.JSON(consts.StatusOK, updated)
}

func (s *Server) handleDeleteTrigger(ctx context.Context, c *app.RequestContext) {
	id := c.Param("id")
	if _, ok := s.store.Get(id); !ok {
		c.JSON(consts.StatusNotFound, utils.H{"error": "trigger not found: " + id})
		return
	}
	s.store.Remove(id)
	s.saveStore(ctx)
	c.JSON(consts.StatusOK, utils.H{"deleted": id})
}

func (s *Server) saveStore(ctx context.Context) {
	if err := s.store.Save(); err != nil {
		logs.CtxWarn(ctx, "[server] save trigger store: %v", err)
	}
}

// writeCronError surfaces field-level cron validation details when available.
func writeCronError(c *app.RequestContext, err error) {
	var cronErr *trigger.InvalidCronError
	if errors.As(err, &cronErr) {
		c.JSON(consts.StatusBadRequest, utils.H{
			"error":  cronErr.Error(),
			"field":  cronErr.Field,
			"value":  cronErr.Value,
			"reason": cronErr.Reason,
		})
		return
	}
	c.JSON(consts.StatusBadRequest, utils.H{"error": err.Error()})
}
