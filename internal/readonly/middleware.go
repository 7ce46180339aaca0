// Package readonly serves a public mirror of the registries. Searches and
// statistics keep working while every import endpoint is refused.
package readonly

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Message is returned to clients whose request was blocked.
const Message = "Imports are disabled on this read-only mirror"

// Middleware blocks write operations in read-only mode.
// GET, HEAD and OPTIONS are always allowed, as are allowlisted paths.
type Middleware struct {
	enabled bool
	allowed []string
}

// NewMiddleware creates a read-only middleware. Paths ending in one of
// allowedSuffixes pass for any method.
func NewMiddleware(enabled bool, allowedSuffixes ...string) *Middleware {
	return &Middleware{enabled: enabled, allowed: allowedSuffixes}
}

func (m *Middleware) IsEnabled() bool {
	return m.enabled
}

// Handler returns a Gin middleware that blocks write operations.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.enabled {
			c.Next()
			return
		}

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		if m.isAllowedPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":     Message,
			"code":      "read_only",
			"read_only": true,
		})
	}
}

func (m *Middleware) isAllowedPath(path string) bool {
	path = strings.TrimSuffix(path, "/")
	for _, suffix := range m.allowed {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}
