package server

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	ginhandler "user-entity-service/internal/adapter/gin/handler"
	"user-entity-service/internal/adapter/gin/middleware"
	ginrouter "user-entity-service/internal/adapter/gin/router"
)

// SetupGinServer builds the http.Server serving the REST API.
func SetupGinServer(
	handler *ginhandler.UserHandler,
	rateLimiter *middleware.RateLimiter,
	corsOrigins []string,
	addr string,
	l *zap.Logger,
) *http.Server {
	router := ginrouter.SetupRouter(handler, rateLimiter, corsOrigins, l)

	l.Info("REST API configured", zap.String("address", addr))

	return &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
