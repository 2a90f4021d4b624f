package middleware

import (
	"net/http"
	"slices"

	"agri_advisor/internal/i18n"
	"agri_advisor/internal/model"

	"github.com/gin-gonic/gin"
)

// RoleMiddleware creates a middleware to check for specific user roles
func RoleMiddleware(allowedRoles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, err := AuthRole(c)
		if err != nil || !slices.Contains(allowedRoles, userRole) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": i18n.Translate(RequestLocale(c), i18n.KeyForbidden, nil),
				"code":  i18n.KeyForbidden,
			})
			return
		}

		c.Next()
	}
}

// AdminMiddleware checks if the user is an admin
func AdminMiddleware() gin.HandlerFunc {
	return RoleMiddleware(model.RoleAdmin)
}

// OfficerMiddleware allows officers and admins
func OfficerMiddleware() gin.HandlerFunc {
	return RoleMiddleware(model.RoleOfficer, model.RoleAdmin)
}

// FarmerMiddleware checks if the user is a farmer
func FarmerMiddleware() gin.HandlerFunc {
	return RoleMiddleware(model.RoleFarmer)
}
