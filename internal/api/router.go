package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"habitpact/internal/api/middleware"
	"habitpact/pkg/otel"
)

type Handlers struct {
	Auth        *AuthHandler
	Habit       *HabitHandler
	Transaction *TransactionHandler
	Partner     *PartnerHandler
	User        *UserHandler
	Admin       *AdminHandler
}

// NewRouter wires the full HTTP surface.
func NewRouter(h Handlers, jwtSecret string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.TraceMiddleware())
	r.Use(otel.GinMiddleware())
	r.Use(middleware.MetricsMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/register", h.Auth.Register)
	r.POST("/login", h.Auth.Login)

	authed := r.Group("/api", middleware.AuthMiddleware(jwtSecret))
	{
		authed.GET("/habits", h.Habit.List)
		authed.POST("/habits", h.Habit.Create)
		authed.POST("/habits/mark", h.Habit.Mark)
		authed.DELETE("/habits/:id", h.Habit.Delete)

		authed.GET("/transactions", h.Transaction.List)
		authed.POST("/transactions/confirm", h.Transaction.Confirm)

		authed.GET("/partners", h.Partner.Get)
		authed.POST("/partners", h.Partner.SendRequest)
		authed.PATCH("/partners/requests/:id", h.Partner.Respond)
		authed.DELETE("/partners", h.Partner.Unpair)

		authed.GET("/me", h.User.Me)
		authed.PATCH("/me", h.User.UpdateMe)
		authed.GET("/notifications", h.User.Notifications)
		authed.PATCH("/notifications/:id/read", h.User.MarkNotificationRead)

		authed.GET("/admin/outbox/failed", h.Admin.ListFailedEvents)
		authed.POST("/admin/outbox/replay/:id", h.Admin.ReplayEvent)
		authed.POST("/admin/outbox/replay-failed", h.Admin.ReplayFailedEvents)
	}

	return r
}
