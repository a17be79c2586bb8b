package routes

import (
	"net/http"
	"time"

	"savipets/handlers"
	"savipets/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterVisitRoutes registers the visit lifecycle endpoints.
func RegisterVisitRoutes(r *gin.Engine, vh *handlers.VisitHandler) {
	api := r.Group("/api/visits")
	{
		api.POST("/:id/watch", vh.WatchVisitHandler)
		api.DELETE("/:id/watch", vh.UnwatchVisitHandler)
		api.GET("/:id/state", vh.GetVisitStateHandler)
		api.POST("/:id/start", vh.StartVisitHandler)
		api.POST("/:id/end", vh.EndVisitHandler)
		api.POST("/:id/undo-start", vh.UndoStartHandler)
	}
}

// RegisterBookingRoutes registers the reschedule/cancellation endpoints.
func RegisterBookingRoutes(r *gin.Engine, rh *handlers.RescheduleHandler) {
	api := r.Group("/api/bookings")
	{
		api.POST("/:id/reschedule/validate", rh.ValidateRescheduleHandler)
		api.POST("/:id/reschedule", rh.RescheduleBookingHandler)
		api.POST("/:id/cancel", rh.CancelBookingHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "services": utils.GetHealthStatus()})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, vh *handlers.VisitHandler, rh *handlers.RescheduleHandler) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterVisitRoutes(r, vh)
	RegisterBookingRoutes(r, rh)
}
