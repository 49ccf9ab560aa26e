package api

import "roadhud-go/internal/api/middleware"

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recovery())
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.RequestContext())
	s.router.Use(middleware.Logger())
	s.router.Use(middleware.CORS())
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.healthHandler.Info)
	s.router.GET("/health", s.healthHandler.HealthCheck)

	hud := s.router.Group("/hud")
	{
		hud.GET("/state", s.hudHandler.GetState)
		hud.GET("/flags", s.hudHandler.GetFlags)
		hud.PUT("/flags", s.hudHandler.UpdateFlags)
		hud.GET("/preview", s.hudHandler.StreamPreview)
	}

	clips := s.router.Group("/clips")
	{
		clips.GET("", s.clipsHandler.ListClips)
		clips.GET("/:clip_id", s.clipsHandler.StreamClip)
	}

	system := s.router.Group("/system")
	{
		system.GET("/stats", s.systemHandler.GetStats)
	}
}
