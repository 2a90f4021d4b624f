package middleware

import (
	"errors"
	"net/http"
	"strings"

	"agri_advisor/internal/i18n"
	"agri_advisor/internal/model"
	"agri_advisor/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	AuthUserKey = "authUser"
	AuthRoleKey = "authRole"
)

// TokenValidator parses a bearer token into its claims.
type TokenValidator interface {
	ValidateToken(tokenString string) (*utils.JWTClaims, error)
}

// JWTAuthMiddleware rejects requests without a valid bearer token and
// stores the caller's ID and role in the gin context.
func JWTAuthMiddleware(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthorized(c)
			return
		}

		claims, err := tokens.ValidateToken(tokenString)
		if err != nil {
			abortUnauthorized(c)
			return
		}

		c.Set(AuthUserKey, claims.UserID)
		c.Set(AuthRoleKey, claims.Role)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

func abortUnauthorized(c *gin.Context) {
	locale := RequestLocale(c)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": i18n.Translate(locale, i18n.KeyUnauthorized, nil),
		"code":  i18n.KeyUnauthorized,
	})
}

// RequestLocale picks the response language from ?lang= or Accept-Language.
func RequestLocale(c *gin.Context) model.Locale {
	if lang := c.Query("lang"); lang != "" {
		return i18n.ParseLocale(lang, model.DefaultLocale)
	}
	return i18n.ParseLocale(c.GetHeader("Accept-Language"), model.DefaultLocale)
}

// AuthUserID returns the caller's user ID set by JWTAuthMiddleware.
func AuthUserID(c *gin.Context) (string, error) {
	v, exists := c.Get(AuthUserKey)
	if !exists {
		return "", errors.New("user ID not found in context")
	}
	id, ok := v.(string)
	if !ok || id == "" {
		return "", errors.New("invalid user ID type in context")
	}
	return id, nil
}

// AuthRole returns the caller's role set by JWTAuthMiddleware.
func AuthRole(c *gin.Context) (model.Role, error) {
	v, exists := c.Get(AuthRoleKey)
	if !exists {
		return "", errors.New("user role not found in context")
	}
	role, ok := v.(model.Role)
	if !ok {
		return "", errors.New("invalid user role type in context")
	}
	return role, nil
}
