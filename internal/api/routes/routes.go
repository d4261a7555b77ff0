// internal/api/routes/routes.go
package routes

import (
	"net/http"
	"time"

	"greencart-ops-api/internal/api/handlers"
	"greencart-ops-api/internal/api/middleware"
	"greencart-ops-api/internal/auth"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth        *handlers.AuthHandler
	Health      *handlers.HealthHandler
	Dashboard   *handlers.DashboardHandler
	Drivers     *handlers.DriverHandler
	Routes      *handlers.RouteHandler
	Orders      *handlers.OrderHandler
	Simulations *handlers.SimulationHandler
	WebSocket   *handlers.WebSocketHandler
}

type Options struct {
	FrontendURL       string
	CookieName        string
	AuthRatePerMinute int
}

// SetupRouter wires middleware and every API route onto a new gin engine.
func SetupRouter(h Handlers, sessions *auth.SessionManager, opts Options, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Metrics())
	router.Use(middleware.RequestLogger(logger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{opts.FrontendURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/metrics", middleware.MetricsHandler())

	api := router.Group("/api")
	{
		api.GET("/health", h.Health.Health)

		limiter := middleware.NewIPRateLimiter(opts.AuthRatePerMinute)
		api.POST("/register", limiter.Middleware(), h.Auth.Register)
		api.POST("/login", limiter.Middleware(), h.Auth.Login)
		api.POST("/logout", h.Auth.Logout)
		api.GET("/auth/status", h.Auth.Status)

		// The websocket handler authenticates itself so it can also accept ?token=.
		api.GET("/ws", h.WebSocket.ServeWs)

		protected := api.Group("/")
		protected.Use(middleware.Authenticate(sessions, opts.CookieName))
		{
			protected.GET("/dashboard/stats", h.Dashboard.GetStats)

			drivers := protected.Group("/drivers")
			{
				drivers.GET("", h.Drivers.GetDrivers)
				drivers.POST("", h.Drivers.CreateDriver)
				drivers.PUT("/:id", h.Drivers.UpdateDriver)
				drivers.DELETE("/:id", h.Drivers.DeleteDriver)
			}

			routes := protected.Group("/routes")
			{
				routes.GET("", h.Routes.GetRoutes)
				routes.POST("", h.Routes.CreateRoute)
				routes.PUT("/:id", h.Routes.UpdateRoute)
				routes.DELETE("/:id", h.Routes.DeleteRoute)
			}

			orders := protected.Group("/orders")
			{
				orders.GET("", h.Orders.GetOrders)
				orders.POST("", h.Orders.CreateOrder)
				orders.PUT("/:id", h.Orders.UpdateOrder)
				orders.DELETE("/:id", h.Orders.DeleteOrder)
			}

			protected.POST("/simulate", h.Simulations.RunSimulation)
			simulations := protected.Group("/simulations")
			{
				simulations.GET("", h.Simulations.GetSimulations)
				simulations.DELETE("/:id", h.Simulations.DeleteSimulation)
				simulations.POST("/:id/generate-summary", h.Simulations.GenerateSummary)
			}
		}
	}

	return router
}
