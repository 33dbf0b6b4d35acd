package httpserver

import (
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Karmanya03/Deadrop/internal/registry"
)

// handleBlob serves GET /api/blob/:id (spec §4.4): it streams ciphertext
// only. The registry keeps a send-mode drop's key solely to wipe it on
// destroy, and neither the FetchTicket nor this handler ever sees it, so
// there is nothing here that could decrypt even by accident.
func (s *Server) handleBlob(c *gin.Context) {
	id := c.Param("id")
	if !validID(id) {
		s.respondNotFound(c)
		return
	}

	ticket, err := s.registry.AuthorizeFetch(id, c.ClientIP())
	switch err {
	case nil:
		// fall through to streaming
	case registry.ErrNotFound:
		s.respondNotFound(c)
		return
	case registry.ErrBurned:
		sleepJitter()
		c.JSON(http.StatusGone, gin.H{"error": gin.H{"code": "burned", "message": "drop already destroyed"}})
		return
	case registry.ErrForbiddenWrongClient:
		// Spec §4.3: this response carries no jitter.
		c.JSON(http.StatusForbidden, gin.H{"error": gin.H{"code": "forbidden", "message": "wrong client"}})
		return
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"code": "internal", "message": "unexpected failure"}})
		return
	}

	f, err := os.Open(ticket.BlobPath)
	if err != nil {
		// The file vanished between AuthorizeFetch and Open — a racing
		// destroy. Report it the same as NotFound; no commit follows.
		s.respondNotFound(c)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"code": "internal", "message": "stat failed"}})
		return
	}

	c.Header("Content-Length", strconv.FormatInt(info.Size(), 10))
	c.Header("Content-Type", "application/octet-stream")
	c.Status(http.StatusOK)

	_, copyErr := io.Copy(c.Writer, f)
	if copyErr == nil {
		// Clean EOF: spec §4.4 "on clean EOF calls commit_fetch".
		s.registry.CommitFetch(ticket)
	}
	// On client disconnect, neither commit_fetch nor destroy runs — the
	// ticket is simply dropped and the record stays Live (spec §4.4).
}
