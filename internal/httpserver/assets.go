package httpserver

import (
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Karmanya03/Deadrop/internal/assets"
)

// registerAssetRoutes serves every embedded static artifact named in spec
// §4.4: the landing/upload scripts, the decrypt/encrypt workers, the Go
// WebAssembly glue, and the codec artifact itself.
func (s *Server) registerAssetRoutes() {
	sub, err := fs.Sub(assets.StaticFiles, "static")
	if err != nil {
		panic(err) // embedded at build time; a failure here is a build defect
	}
	fileServer := http.FileServer(http.FS(sub))
	s.engine.GET("/static/*filepath", gin.WrapH(http.StripPrefix("/static/", fileServer)))
}
