package internal

import (
	"net/http"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/softdesk-lab/softdesk/internal/handler"
	"github.com/softdesk-lab/softdesk/internal/middleware"
)

const apiPrefix = "/api"

type Backend struct {
	R *gin.Engine
}

// Register assembles the engine: health probe, middleware chain and
// the per-manager route groups.
func Register(conf *handler.RegisterConfig) *Backend {
	s := new(Backend)
	s.R = gin.Default()
	s.R.Use(middleware.RequestID())

	// Liveness probe for the deployment.
	s.R.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "ok",
		})
	})

	s.registerService(conf)

	// Swagger; the spec is generated by swag in CI.
	s.R.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return s
}

func (b *Backend) registerService(conf *handler.RegisterConfig) {
	// Enable CORS for http://localhost:XXXX in debug mode
	if gin.Mode() == gin.DebugMode {
		fe := os.Getenv("SOFTDESK_FE_PORT")
		if fe != "" {
			url := "http://localhost:" + fe
			corsConf := cors.DefaultConfig()
			corsConf.AllowOrigins = []string{url}
			b.R.Use(cors.New(corsConf))
		}
	}

	managers := registerManagers(conf)

	publicRouter := b.R.Group(apiPrefix)

	protectedRouter := b.R.Group(apiPrefix)
	protectedRouter.Use(middleware.AuthProtected())

	adminRouter := b.R.Group(apiPrefix + "/admin")
	adminRouter.Use(middleware.AuthProtected(), middleware.AuthAdmin())

	for _, mgr := range managers {
		mgr.RegisterPublic(publicRouter)
		mgr.RegisterProtected(protectedRouter)
		mgr.RegisterAdmin(adminRouter)
	}
}
