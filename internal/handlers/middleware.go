package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const subjectKey = "subject"

// authMiddleware verifies bearer tokens. With no secret configured every
// request passes through.
func (h *Handler) authMiddleware(c *gin.Context) {
	if h.services.Authorization == nil || !h.services.Enabled() {
		c.Next()
		return
	}

	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "missing Authorization header",
		})
		return
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid Authorization header format",
		})
		return
	}

	subject, err := h.services.ParseToken(parts[1])
	if err != nil {
		h.log.Debugw("api_token_rejected", "err", err)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid or expired token",
		})
		return
	}

	c.Set(subjectKey, subject)
	c.Next()
}
