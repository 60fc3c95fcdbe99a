package main

import (
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"finance-tracker-backend/internal/store"
)

// requestLogger logs one line per request
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= 500:
			event = logger.Error()
		case status >= 400:
			event = logger.Warn()
		default:
			event = logger.Info()
		}
		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.String())
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("owner", c.GetString(ownerKey)).
			Msg("request")
	}
}

const (
	ownerHeader      = "X-Owner-ID"
	dataSourceHeader = "X-Data-Source"
	ownerKey         = "owner"
)

// ownerScope resolves the owner of the request from X-Owner-ID, falling back
// to defaultOwner.
func ownerScope(defaultOwner string) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner := strings.TrimSpace(c.GetHeader(ownerHeader))
		if owner == "" {
			owner = defaultOwner
		}
		if utf8.RuneCountInString(owner) > store.MaxOwnerLength {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": store.ErrOwnerTooLong.Error()})
			return
		}
		c.Set(ownerKey, owner)
		c.Next()
	}
}
