package middleware

import (
	"context"
	"net/http"

	"agri_advisor/internal/i18n"
	"agri_advisor/internal/model"

	"github.com/gin-gonic/gin"
)

// AuthProfileKey holds the *model.User loaded by ProfileCompleteMiddleware.
const AuthProfileKey = "authProfile"

// UserFinder loads a user by ID.
type UserFinder interface {
	FindUser(ctx context.Context, id string) (*model.User, error)
}

// ProfileCompleteMiddleware blocks users who have not finished profile setup.
// It must run after JWTAuthMiddleware.
func ProfileCompleteMiddleware(users UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := AuthUserID(c)
		if err != nil {
			abortUnauthorized(c)
			return
		}

		user, err := users.FindUser(c.Request.Context(), id)
		if err != nil {
			abortUnauthorized(c)
			return
		}
		if user.NeedsProfileSetup() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": i18n.Translate(RequestLocale(c), i18n.KeyProfileIncomplete, nil),
				"code":  i18n.KeyProfileIncomplete,
			})
			return
		}

		c.Set(AuthProfileKey, user)
		c.Next()
	}
}
