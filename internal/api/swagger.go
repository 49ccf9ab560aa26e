package api

import (
	"net/http"

	_ "roadhud-go/docs"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (s *Server) setupSwagger() {
	s.router.GET("/api/info", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"title":       "RoadHUD API",
			"version":     s.cfg.Version,
			"description": "Driver-assistance HUD overlay pipeline: state ingest, overlay composition, preview and alert clips",
			"swagger_ui":  "/docs/index.html",
			"endpoints": gin.H{
				"health":   "/health",
				"hud_info": "/",
				"hud":      "/hud",
				"clips":    "/clips",
				"system":   "/system",
			},
			"hud_id": s.cfg.HUDID,
			"port":   s.cfg.Port,
		})
	})

	s.router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	s.router.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/docs/index.html")
	})
}
