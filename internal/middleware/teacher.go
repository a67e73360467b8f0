package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/teach-app/teach-api/internal/models"
	appErrors "github.com/teach-app/teach-api/pkg/errors"
	"github.com/teach-app/teach-api/pkg/response"
)

// RequireTeacher blocks routes that only tutors may call. The claim mirrors
// the stored is_teacher flag at token issue time; services re-check the
// stored record before mutating tutor-owned state.
func RequireTeacher() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := Claims(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if !claims.IsTeacher {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "tutor account required"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// Claims returns the authenticated claims stored on the context, if any.
func Claims(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}
