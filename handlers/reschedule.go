package handlers

import (
	"errors"
	"net/http"
	"time"

	"savipets/config"
	bookingRepo "savipets/database/repository/booking"
	"savipets/models"
	"savipets/services/command"
	"savipets/services/reschedule"
	"savipets/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RescheduleHandler validates and executes reschedule/cancellation requests
// against the policy engine.
type RescheduleHandler struct {
	Bookings  bookingRepo.BookingRepository
	Executor  *command.Executor
	Conflicts *command.SitterScheduleChecker
	Logger    *zap.Logger
}

func NewRescheduleHandler(bookings bookingRepo.BookingRepository, exec *command.Executor, conflicts *command.SitterScheduleChecker, logger *zap.Logger) *RescheduleHandler {
	return &RescheduleHandler{Bookings: bookings, Executor: exec, Conflicts: conflicts, Logger: logger}
}

type rescheduleInput struct {
	NewDate     time.Time `json:"newDate" binding:"required"`
	Reason      string    `json:"reason"`
	RequestedBy string    `json:"requestedBy" binding:"required"`
}

type cancelInput struct {
	RequestedBy string `json:"requestedBy" binding:"required"`
}

func (h *RescheduleHandler) validateReschedule(c *gin.Context) (*models.Booking, rescheduleInput, models.RescheduleResult, bool) {
	var input rescheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return nil, input, models.RescheduleResult{}, false
	}

	bookingID := c.Param("id")
	b, err := h.Bookings.GetByID(c.Request.Context(), bookingID)
	if err != nil {
		utils.JSONError(c, http.StatusNotFound, "booking not found", err.Error())
		return nil, input, models.RescheduleResult{}, false
	}

	in := reschedule.Input{
		Booking:         *b,
		Kind:            reschedule.KindReschedule,
		NewDate:         input.NewDate,
		Reason:          input.Reason,
		RequestedBy:     input.RequestedBy,
		RescheduleCount: b.RescheduleCount(),
		Now:             time.Now(),
	}
	res := reschedule.Validate(in, config.Policy, h.Conflicts.Checker(c.Request.Context(), b.ID))
	return b, input, res, true
}

// ValidateRescheduleHandler runs a dry-run validation so the client can show
// every violated rule before committing.
func (h *RescheduleHandler) ValidateRescheduleHandler(c *gin.Context) {
	_, _, res, ok := h.validateReschedule(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, res)
}

// RescheduleBookingHandler validates and, if allowed, executes a reschedule.
func (h *RescheduleHandler) RescheduleBookingHandler(c *gin.Context) {
	b, input, res, ok := h.validateReschedule(c)
	if !ok {
		return
	}
	if !res.Success {
		c.JSON(http.StatusUnprocessableEntity, res)
		return
	}

	req := models.RescheduleRequest{
		BookingID:    b.ID,
		OriginalDate: b.ScheduledDate,
		NewDate:      input.NewDate,
		Reason:       input.Reason,
		RequestedBy:  input.RequestedBy,
		RequestedAt:  time.Now(),
	}

	entry, err := h.Executor.ApplyReschedule(c.Request.Context(), b, res, req)
	if err != nil {
		h.writeCommandError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": res, "entry": entry})
}

// CancelBookingHandler validates and executes a cancellation, reporting the
// refund outcome.
func (h *RescheduleHandler) CancelBookingHandler(c *gin.Context) {
	var input cancelInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	bookingID := c.Param("id")
	b, err := h.Bookings.GetByID(c.Request.Context(), bookingID)
	if err != nil {
		utils.JSONError(c, http.StatusNotFound, "booking not found", err.Error())
		return
	}

	in := reschedule.Input{
		Booking:     *b,
		Kind:        reschedule.KindCancellation,
		RequestedBy: input.RequestedBy,
		Now:         time.Now(),
	}
	res := reschedule.Validate(in, config.Policy, nil)
	if !res.Success {
		c.JSON(http.StatusUnprocessableEntity, res)
		return
	}

	if err := h.Executor.ApplyCancellation(c.Request.Context(), b, res, input.RequestedBy); err != nil {
		h.writeCommandError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// writeCommandError maps executor failures onto responses, keeping partial
// writes distinguishable so the client can trigger compensation.
func (h *RescheduleHandler) writeCommandError(c *gin.Context, err error) {
	if errors.Is(err, command.ErrCommandInFlight) {
		utils.JSONError(c, http.StatusConflict, "another command is in flight for this booking", err.Error())
		return
	}

	var partial *utils.PartialWriteFailure
	if errors.As(err, &partial) {
		h.Logger.Error("command write failure",
			zap.String("bookingId", partial.BookingID),
			zap.Bool("bookingUpdated", partial.BookingUpdated),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"message":        "command failed",
			"bookingUpdated": partial.BookingUpdated,
			"details":        partial.Error(),
		})
		return
	}

	utils.JSONError(c, http.StatusInternalServerError, "command failed", err.Error())
}
