package handlers

import (
	"context"
	"net/http"

	"savipets/services/visit"
	"savipets/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// VisitHandler exposes the visit lifecycle engine: watch management, derived
// countdown state, and the check-in/check-out commands.
type VisitHandler struct {
	Manager *visit.Manager
	Logger  *zap.Logger
}

func NewVisitHandler(manager *visit.Manager, logger *zap.Logger) *VisitHandler {
	return &VisitHandler{Manager: manager, Logger: logger}
}

// WatchVisitHandler starts observing a visit: one subscription, one clock.
func (h *VisitHandler) WatchVisitHandler(c *gin.Context) {
	visitID := c.Param("id")
	if _, err := h.Manager.Acquire(c.Request.Context(), visitID); err != nil {
		utils.JSONError(c, http.StatusBadGateway, "failed to watch visit", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"visitId": visitID, "watching": true})
}

// UnwatchVisitHandler releases a watch; the last release tears the
// subscription and timer down together.
func (h *VisitHandler) UnwatchVisitHandler(c *gin.Context) {
	visitID := c.Param("id")
	h.Manager.Release(visitID)
	c.JSON(http.StatusOK, gin.H{"visitId": visitID, "watching": false})
}

// GetVisitStateHandler returns the latest derived countdown state for a
// watched visit.
func (h *VisitHandler) GetVisitStateHandler(c *gin.Context) {
	visitID := c.Param("id")
	rec, ok := h.Manager.Peek(visitID)
	if !ok {
		utils.JSONError(c, http.StatusNotFound, "visit is not being watched", visitID)
		return
	}
	state, ready := rec.Derived()
	if !ready {
		c.JSON(http.StatusAccepted, gin.H{"visitId": visitID, "ready": false})
		return
	}
	c.JSON(http.StatusOK, state)
}

// StartVisitHandler records a check-in.
func (h *VisitHandler) StartVisitHandler(c *gin.Context) {
	h.runCommand(c, "start", (*visit.Reconciler).StartVisit)
}

// EndVisitHandler records a check-out.
func (h *VisitHandler) EndVisitHandler(c *gin.Context) {
	h.runCommand(c, "end", (*visit.Reconciler).EndVisit)
}

// UndoStartHandler reverts an accidental check-in.
func (h *VisitHandler) UndoStartHandler(c *gin.Context) {
	h.runCommand(c, "undo-start", (*visit.Reconciler).UndoStart)
}

func (h *VisitHandler) runCommand(c *gin.Context, name string, cmd func(*visit.Reconciler, context.Context) error) {
	visitID := c.Param("id")

	rec, err := h.Manager.Acquire(c.Request.Context(), visitID)
	if err != nil {
		utils.JSONError(c, http.StatusBadGateway, "failed to reach visit", err.Error())
		return
	}
	defer h.Manager.Release(visitID)

	// One command per visit at a time; the pending-write flag is the signal the
	// UI uses to disable the action, mirror that here.
	if state, ok := rec.Derived(); ok && state.IsPendingWrite {
		utils.JSONError(c, http.StatusConflict, "a command for this visit is still pending", visitID)
		return
	}

	if err := cmd(rec, c.Request.Context()); err != nil {
		h.Logger.Error("visit command failed", zap.String("visitId", visitID), zap.String("command", name), zap.Error(err))
		utils.JSONError(c, http.StatusBadGateway, "visit command failed", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"visitId": visitID, "command": name, "pendingWrite": true})
}
