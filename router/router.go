// api/router/router.go

package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/qc-suite/gatekeeper/controller"
	"github.com/qc-suite/gatekeeper/middleware"
)

func SetupRouter(
	controllers *controller.Controllers,
	rateLimitRequests int,
	rateLimitDuration time.Duration,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.RateLimiter(rateLimitRequests, rateLimitDuration))
	router.Use(middleware.Identity())

	api := router.Group("/api/v1")

	controllers.Company.RegisterRoutes(api)
	controllers.Dept.RegisterRoutes(api)
	controllers.Position.RegisterRoutes(api)
	controllers.User.RegisterRoutes(api)
	controllers.Role.RegisterRoutes(api)
	controllers.Permission.RegisterRoutes(api)
	controllers.Menu.RegisterRoutes(api)
	controllers.Param.RegisterRoutes(api)
	controllers.Access.RegisterRoutes(api)

	return router
}
