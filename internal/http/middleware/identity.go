// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file resolves the acting username for a request. There is no
// authentication layer: the username comes from the :username route
// parameter or, for collection routes, the X-Username header.
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// HeaderUsername names the acting profile on routes without a :username
// path segment.
const HeaderUsername = "X-Username"

// ctxKeyUsername is the Gin context key holding the resolved username.
const ctxKeyUsername = "username"

// Identify stores the acting username in the Gin context. The path
// parameter wins over the header.
func Identify() gin.HandlerFunc {
	return func(c *gin.Context) {
		if u := resolveUsername(c); u != "" {
			c.Set(ctxKeyUsername, u)
		}
		c.Next()
	}
}

// Username returns the acting username, or "" when the request names none.
func Username(c *gin.Context) string {
	if v, ok := c.Get(ctxKeyUsername); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return resolveUsername(c)
}

func resolveUsername(c *gin.Context) string {
	if p := strings.TrimSpace(c.Param("username")); p != "" {
		return p
	}
	if c.Request != nil {
		return strings.TrimSpace(c.GetHeader(HeaderUsername))
	}
	return ""
}
