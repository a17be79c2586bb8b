package utils

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WriteFailure means the document store rejected a command write or transport
// failed. The engine never retries these; retry policy belongs to the caller.
type WriteFailure struct {
	Op  string
	Ref string
	Err error
}

func (e *WriteFailure) Error() string {
	return fmt.Sprintf("write failed: %s on %s: %v", e.Op, e.Ref, e.Err)
}

func (e *WriteFailure) Unwrap() error { return e.Err }

// PartialWriteFailure means a multi-document command committed on one record
// but failed on the other. BookingUpdated distinguishes "booking updated, visit
// update failed" from "nothing updated" so the caller can compensate.
type PartialWriteFailure struct {
	BookingID      string
	VisitID        string
	BookingUpdated bool
	Err            error
}

func (e *PartialWriteFailure) Error() string {
	if e.BookingUpdated {
		return fmt.Sprintf("partial write: booking %s updated but visit %s update failed: %v", e.BookingID, e.VisitID, e.Err)
	}
	return fmt.Sprintf("partial write: nothing updated for booking %s / visit %s: %v", e.BookingID, e.VisitID, e.Err)
}

func (e *PartialWriteFailure) Unwrap() error { return e.Err }

// StaleDataWarning records a subscription error while prior good data exists.
// The last-known derived state stays in place; the UI is never blanked.
type StaleDataWarning struct {
	Ref string
	Err error
}

func (e *StaleDataWarning) Error() string {
	return fmt.Sprintf("snapshot stream error for %s, serving last known state: %v", e.Ref, e.Err)
}

func (e *StaleDataWarning) Unwrap() error { return e.Err }

// ErrorResponse defines the structure of error responses
type ErrorResponse struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ErrorHandler is a middleware to catch panics and return structured errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				Logger := GetLogger()
				Logger.Error("Unhandled panic", zap.Any("error", err))

				c.JSON(http.StatusInternalServerError, ErrorResponse{
					Message: "Internal Server Error",
					Details: "An unexpected error occurred. Please try again later.",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// JSONError sends a standardized JSON error response
func JSONError(c *gin.Context, status int, message string, details string) {
	Logger := GetLogger()
	Logger.Warn(message, zap.String("details", details))
	c.JSON(status, ErrorResponse{Message: message, Details: details})
}
