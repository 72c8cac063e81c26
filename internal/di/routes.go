package di

import (
	"github.com/gin-gonic/gin"

	"github.com/Samuel1505/Event-Ticketing/pkg/middleware"
)

// RegisterRoutes mounts the health probes and the /api/v1 ledger routes.
// Reads are public; writes require a bearer token and honour
// X-Idempotency-Key when Redis is available.
func RegisterRoutes(router gin.IRouter, c *Container, jwtConfig *middleware.JWTConfig) {
	router.GET("/health", c.HealthHandler.Health)
	router.GET("/ready", c.HealthHandler.Ready)

	v1 := router.Group("/api/v1")
	{
		events := v1.Group("/events")
		{
			events.GET("", c.EventHandler.List)
			events.GET("/count", c.EventHandler.Count)
			events.GET("/:id", c.EventHandler.GetByID)
			events.GET("/:id/ledger", c.EventHandler.GetLedger)
			events.GET("/:id/ledger/balances/:identity", c.EventHandler.GetBalance)
			events.GET("/:id/registrations/:identity", c.EventHandler.GetRegistration)
			events.GET("/:id/tickets/:ticketId", c.TicketHandler.GetByID)
			events.GET("/:id/tickets/:ticketId/verified", c.TicketHandler.IsVerified)

			protected := events.Group("")
			protected.Use(middleware.JWTMiddleware(jwtConfig))
			if c.Redis != nil {
				protected.Use(middleware.IdempotencyMiddleware(middleware.DefaultIdempotencyConfig(c.Redis)))
			}
			{
				protected.POST("", c.EventHandler.Create)
				protected.POST("/:id/register", c.EventHandler.Register)
				protected.POST("/:id/tickets/:ticketId/verify", c.TicketHandler.Verify)
				protected.POST("/:id/tickets/:ticketId/transfer", c.TicketHandler.Transfer)
			}
		}

		v1.GET("/notifications", c.NotificationHandler.List)
	}
}
