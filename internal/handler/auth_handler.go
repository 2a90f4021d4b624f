package handler

import (
	"errors"
	"net/http"
	"strings"

	"agri_advisor/internal/i18n"
	"agri_advisor/internal/middleware"
	"agri_advisor/internal/model"
	"agri_advisor/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AuthHandler handles sign-in and profile requests
type AuthHandler struct {
	service service.AuthService
	log     logrus.FieldLogger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(s service.AuthService) *AuthHandler {
	return &AuthHandler{service: s, log: logrus.WithField("component", "http")}
}

func (h *AuthHandler) IssuePasscode(c *gin.Context) {
	var req struct {
		Phone string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondKey(c, http.StatusBadRequest, i18n.KeyInvalidRequest)
		return
	}

	if err := h.service.IssuePasscode(c.Request.Context(), req.Phone); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message": i18n.Translate(middleware.RequestLocale(c), i18n.KeyPasscodeSent,
			map[string]string{"phone": strings.TrimSpace(req.Phone)}),
	})
}

func (h *AuthHandler) VerifyPasscode(c *gin.Context) {
	var req struct {
		Phone string `json:"phone" binding:"required"`
		Code  string `json:"otp" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondKey(c, http.StatusBadRequest, i18n.KeyInvalidRequest)
		return
	}

	user, token, err := h.service.VerifyPasscode(c.Request.Context(), req.Phone, req.Code)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondSignedIn(c, user, token)
}

// Login accepts either phone+otp or email+password+role credentials.
func (h *AuthHandler) Login(c *gin.Context) {
	var creds model.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		h.respondKey(c, http.StatusBadRequest, i18n.KeyInvalidRequest)
		return
	}

	var (
		user  *model.User
		token string
		err   error
	)
	switch creds.Type {
	case model.CredentialsPhone:
		if creds.Phone == "" || creds.Code == "" {
			err = service.ErrInvalidCredentials
			break
		}
		user, token, err = h.service.VerifyPasscode(c.Request.Context(), creds.Phone, creds.Code)
	case model.CredentialsEmail:
		if creds.Email == "" || !creds.Role.Valid() {
			err = service.ErrInvalidCredentials
			break
		}
		user, token, err = h.service.Login(c.Request.Context(), creds.Email, creds.Password, creds.Role)
	default:
		err = service.ErrInvalidCredentials
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondSignedIn(c, user, token)
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, err := middleware.AuthUserID(c)
	if err != nil {
		h.respondKey(c, http.StatusUnauthorized, i18n.KeyUnauthorized)
		return
	}

	user, err := h.service.FindUser(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "needsProfileSetup": user.NeedsProfileSetup()})
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, err := middleware.AuthUserID(c)
	if err != nil {
		h.respondKey(c, http.StatusUnauthorized, i18n.KeyUnauthorized)
		return
	}

	var update model.ProfileUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		h.respondKey(c, http.StatusBadRequest, i18n.KeyInvalidRequest)
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), userID, update)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": i18n.Translate(middleware.RequestLocale(c), i18n.KeyProfileUpdated, nil),
		"user":    user,
	})
}

// GetUser lets officers look up any account.
func (h *AuthHandler) GetUser(c *gin.Context) {
	user, err := h.service.FindUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// FarmerHome greets a farmer whose profile is complete.
func (h *AuthHandler) FarmerHome(c *gin.Context) {
	v, _ := c.Get(middleware.AuthProfileKey)
	user, ok := v.(*model.User)
	if !ok {
		h.respondKey(c, http.StatusUnauthorized, i18n.KeyUnauthorized)
		return
	}

	locale := middleware.RequestLocale(c)
	if c.Query("lang") == "" && c.GetHeader("Accept-Language") == "" && user.Locale.Valid() {
		locale = user.Locale
	}
	c.JSON(http.StatusOK, gin.H{
		"message": i18n.Translate(locale, i18n.KeyWelcome, map[string]string{"name": user.Name}),
		"user":    user,
	})
}

// RegisterAuthRoutes registers auth, officer and farmer routes
func (h *AuthHandler) RegisterAuthRoutes(rg *gin.RouterGroup, jwtAuthMW gin.HandlerFunc) {
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/otp", h.IssuePasscode)
		authGroup.POST("/otp/verify", h.VerifyPasscode)
		authGroup.POST("/login", h.Login)
		authGroup.GET("/me", jwtAuthMW, h.Me)
		authGroup.PATCH("/profile", jwtAuthMW, h.UpdateProfile)
	}

	officerGroup := rg.Group("/officer", jwtAuthMW, middleware.OfficerMiddleware())
	{
		officerGroup.GET("/users/:id", h.GetUser)
	}

	farmerGroup := rg.Group("/farmer", jwtAuthMW, middleware.FarmerMiddleware(), middleware.ProfileCompleteMiddleware(h.service))
	{
		farmerGroup.GET("/home", h.FarmerHome)
	}
}

func (h *AuthHandler) respondSignedIn(c *gin.Context, user *model.User, token string) {
	c.JSON(http.StatusOK, gin.H{
		"message": i18n.Translate(middleware.RequestLocale(c), i18n.KeyLoginSuccess, nil),
		"user":    user,
		"token":   token,
	})
}

func (h *AuthHandler) respondKey(c *gin.Context, status int, key i18n.Key) {
	c.JSON(status, gin.H{
		"error": i18n.Translate(middleware.RequestLocale(c), key, nil),
		"code":  key,
	})
}

func (h *AuthHandler) respondError(c *gin.Context, err error) {
	status, key := errorKey(err)
	if status == http.StatusInternalServerError {
		h.log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
	}
	h.respondKey(c, status, key)
}

// errorKey maps service errors to a status and message key.
func errorKey(err error) (int, i18n.Key) {
	switch {
	case errors.Is(err, service.ErrPasscodeNotFound):
		return http.StatusNotFound, i18n.KeyPasscodeNotFound
	case errors.Is(err, service.ErrPasscodeExpired):
		return http.StatusGone, i18n.KeyPasscodeExpired
	case errors.Is(err, service.ErrPasscodeMismatch):
		return http.StatusUnauthorized, i18n.KeyPasscodeMismatch
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, i18n.KeyInvalidCredentials
	case errors.Is(err, service.ErrPhoneRequired):
		return http.StatusBadRequest, i18n.KeyPhoneRequired
	case errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound, i18n.KeyUserNotFound
	}
	return http.StatusInternalServerError, i18n.KeyInternal
}
