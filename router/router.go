// router/router.go

package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dev-mohitbeniwal/tokengate/controller"
	"github.com/dev-mohitbeniwal/tokengate/middleware"
)

func SetupRouter(
	controllers *controller.Controllers,
	rateLimitRequests int,
	rateLimitDuration time.Duration,
	rateLimitEnabled bool,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	if rateLimitEnabled {
		router.Use(middleware.RateLimiter(rateLimitRequests, rateLimitDuration))
	}

	api := router.Group("/api/v1")

	controllers.Bot.RegisterRoutes(api)
	controllers.Admin.RegisterRoutes(api)

	return router
}
