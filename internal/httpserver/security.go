package httpserver

import (
	"regexp"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Karmanya03/Deadrop/internal/registry"
)

// securityHeaders sets the fixed response headers required on every
// response by spec §6. No route is exempt, including error responses.
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Security-Policy", "default-src 'self'; frame-ancestors 'none'")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "no-referrer")
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}

// idPattern matches the drop-id alphabet of spec §3/§4.4's path-safety
// rule: any other character in :id must yield NotFound, not a server
// error or a filesystem traversal attempt.
var idPattern = regexp.MustCompile(`^[A-Za-z0-9]{16}$`)

func validID(id string) bool {
	return idPattern.MatchString(id)
}

// sleepJitter blocks for the uniformly sampled delay of spec §4.3, used
// before NotFound, Burned, and RateLimited responses.
func sleepJitter() {
	time.Sleep(registry.Jitter())
}
