package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Karmanya03/Deadrop/internal/assets"
	"github.com/Karmanya03/Deadrop/internal/registry"
)

// handleLanding serves GET /d/:id (spec §4.4). No key material ever
// touches this response; the decryption key lives only in the browser's
// URL fragment, which the server never receives.
func (s *Server) handleLanding(c *gin.Context) {
	id := c.Param("id")
	if !validID(id) {
		s.respondNotFound(c)
		return
	}

	desc, ok := s.registry.Describe(id)
	if !ok {
		s.respondNotFound(c)
		return
	}

	switch desc.State {
	case registry.Burned:
		c.Status(http.StatusGone)
		_ = assets.Templates.ExecuteTemplate(c.Writer, "burned.html", nil)
	case registry.Expired:
		s.respondNotFound(c)
	default:
		c.Status(http.StatusOK)
		_ = assets.Templates.ExecuteTemplate(c.Writer, "landing.html", assets.LandingData{
			ID:                id,
			Filename:          desc.Filename,
			Mime:              desc.Mime,
			PasswordProtected: desc.PasswordProtected,
		})
	}
}

// handleUploadPage serves the receive-mode upload page (GET /u). The key
// itself is appended to this URL's fragment by the operator's own process
// (cmd/ded), never rendered server-side, so it never appears in a log line
// or this handler's response body.
func (s *Server) handleUploadPage(c *gin.Context) {
	c.Status(http.StatusOK)
	_ = assets.Templates.ExecuteTemplate(c.Writer, "upload.html", nil)
}

// respondNotFound implements the constant-time 404 of spec §4.3/§4.4: the
// jitter delay runs before any bytes are written so "never existed" and
// "expired and erased" are indistinguishable on the wire.
func (s *Server) respondNotFound(c *gin.Context) {
	sleepJitter()
	c.Status(http.StatusNotFound)
	_ = assets.Templates.ExecuteTemplate(c.Writer, "notfound.html", nil)
}
