package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-entity-service/internal/adapter/gin/handler"
	"user-entity-service/internal/adapter/gin/middleware"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "user-entity-service"

// SetupRouter wires middleware and the /v1/users routes. A nil rateLimiter
// disables rate limiting.
func SetupRouter(
	userHandler *handler.UserHandler,
	rateLimiter *middleware.RateLimiter,
	corsOrigins []string,
	log *zap.Logger,
) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.CORS(corsOrigins))
	router.Use(rateLimiter.Middleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": ServiceName,
		})
	})

	v1 := router.Group("/v1")
	{
		users := v1.Group("/users")
		{
			users.POST("", userHandler.CreateUser)
			users.GET("", userHandler.ListUsers)
			users.GET("/:email", userHandler.GetUser)
			users.PUT("/:email", userHandler.UpdateUser)
			users.DELETE("/:email", userHandler.DeleteUser)
		}
	}

	return router
}
