package httpserver

func (s *Server) registerRoutes() {
	s.engine.GET("/d/:id", s.limiter.Middleware(), s.handleLanding)
	s.engine.GET("/api/blob/:id", s.limiter.Middleware(), s.handleBlob)

	if s.mode == ModeReceive {
		s.engine.POST("/api/upload", s.handleUpload)
		s.engine.GET("/u", s.handleUploadPage)
	}

	s.registerAssetRoutes()
}
