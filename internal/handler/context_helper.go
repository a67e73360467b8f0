package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/teach-app/teach-api/internal/middleware"
	"github.com/teach-app/teach-api/internal/models"
	appErrors "github.com/teach-app/teach-api/pkg/errors"
	"github.com/teach-app/teach-api/pkg/response"
)

// currentClaims extracts the authenticated claims or writes a 401 and
// returns nil.
func currentClaims(c *gin.Context) *models.JWTClaims {
	claims := middleware.Claims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		c.Abort()
		return nil
	}
	return claims
}
