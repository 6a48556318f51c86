package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/posprint/internal/presentation/http/middleware"
)

// GetUserName returns the authenticated cashier's display name, if any.
func GetUserName(c *gin.Context) string {
	name, ok := c.Get(middleware.ContextUserName)
	if !ok {
		return ""
	}
	s, _ := name.(string)
	return s
}
