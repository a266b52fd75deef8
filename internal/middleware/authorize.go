package middleware

import (
	"github.com/gin-gonic/gin"

	"boma/internal/access"
	"boma/internal/models"
)

func RequireAuth() gin.HandlerFunc {
	return guard(access.Authenticated())
}

func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	return guard(access.Roles(roles...))
}

func guard(req access.Requirement) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := access.Check(req, CurrentUser(c)); err != nil {
			abortWith(c, err)
			return
		}
		c.Next()
	}
}
