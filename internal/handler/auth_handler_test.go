package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"agri_advisor/internal/i18n"
	"agri_advisor/internal/middleware"
	"agri_advisor/internal/notify"
	"agri_advisor/internal/repository"
	"agri_advisor/internal/service"
	"agri_advisor/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router *gin.Engine
	now    time.Time
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	seed, err := repository.SeedUsers(time.Now())
	require.NoError(t, err)

	ts := &testServer{now: time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)}
	jwtUtil := utils.NewJWTUtil("secret", 1)
	svc := service.NewAuthService(
		repository.NewMemoryUserRepository(seed...),
		repository.NewMemoryPasscodeRepository(),
		notify.NewLogSMSService(),
		jwtUtil,
		service.WithClock(func() time.Time { return ts.now }),
		service.WithPasscodeGenerator(func() (string, error) { return "482913", nil }),
	)

	ts.router = gin.New()
	NewAuthHandler(svc).RegisterAuthRoutes(ts.router.Group("/api/v1"), middleware.JWTAuthMiddleware(jwtUtil))
	return ts
}

type response struct {
	Code    int                    `json:"-"`
	Message string                 `json:"message"`
	Error   string                 `json:"error"`
	Key     string                 `json:"code"`
	Token   string                 `json:"token"`
	User    map[string]interface{} `json:"user"`
}

func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Language", "en")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	var resp response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	resp.Code = w.Code
	return resp
}

func TestPasscodeFlow(t *testing.T) {
	ts := newTestServer(t)
	phone := repository.SeedFarmerPhone

	resp := ts.do(t, http.MethodPost, "/api/v1/auth/otp", "", gin.H{"phone": phone})
	assert.Equal(t, http.StatusAccepted, resp.Code)
	assert.Equal(t, "A verification code has been sent to "+phone, resp.Message)

	resp = ts.do(t, http.MethodPost, "/api/v1/auth/otp/verify", "", gin.H{"phone": phone, "otp": "000000"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, string(i18n.KeyPasscodeMismatch), resp.Key)

	resp = ts.do(t, http.MethodPost, "/api/v1/auth/otp/verify", "", gin.H{"phone": phone, "otp": "482913"})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "1", resp.User["id"])
	assert.NotContains(t, resp.User, "passwordHash")

	resp = ts.do(t, http.MethodPost, "/api/v1/auth/otp/verify", "", gin.H{"phone": phone, "otp": "482913"})
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, string(i18n.KeyPasscodeNotFound), resp.Key)
}

func TestPasscodeExpired(t *testing.T) {
	ts := newTestServer(t)

	ts.do(t, http.MethodPost, "/api/v1/auth/otp", "", gin.H{"phone": repository.SeedFarmerPhone})
	ts.now = ts.now.Add(6 * time.Minute)

	resp := ts.do(t, http.MethodPost, "/api/v1/auth/otp/verify", "", gin.H{"phone": repository.SeedFarmerPhone, "otp": "482913"})
	assert.Equal(t, http.StatusGone, resp.Code)
	assert.Equal(t, "OTP expired", resp.Error)
}

func TestIssuePasscode_PhoneRequired(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPost, "/api/v1/auth/otp", "", gin.H{"phone": " "})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, string(i18n.KeyPhoneRequired), resp.Key)
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		body   gin.H
		status int
	}{
		{"officer", gin.H{"type": "email", "email": repository.SeedOfficerEmail, "password": "password123", "role": "officer"}, http.StatusOK},
		{"admin", gin.H{"type": "email", "email": repository.SeedAdminEmail, "password": "password123", "role": "admin"}, http.StatusOK},
		{"wrong role", gin.H{"type": "email", "email": repository.SeedOfficerEmail, "password": "password123", "role": "admin"}, http.StatusUnauthorized},
		{"wrong password", gin.H{"type": "email", "email": repository.SeedOfficerEmail, "password": "nope", "role": "officer"}, http.StatusUnauthorized},
		{"unknown role", gin.H{"type": "email", "email": repository.SeedOfficerEmail, "password": "password123", "role": "chief"}, http.StatusUnauthorized},
		{"phone without otp", gin.H{"type": "phone", "phone": repository.SeedFarmerPhone}, http.StatusUnauthorized},
		{"unknown type", gin.H{"type": "fingerprint"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.do(t, http.MethodPost, "/api/v1/auth/login", "", tt.body)
			assert.Equal(t, tt.status, resp.Code)
			if tt.status == http.StatusOK {
				assert.NotEmpty(t, resp.Token)
				assert.Equal(t, tt.body["role"], resp.User["role"])
			}
		})
	}
}

func TestLogin_PhoneCredentials(t *testing.T) {
	ts := newTestServer(t)

	ts.do(t, http.MethodPost, "/api/v1/auth/otp", "", gin.H{"phone": repository.SeedFarmerPhone})
	resp := ts.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"type": "phone", "phone": repository.SeedFarmerPhone, "otp": "482913"})

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "farmer", resp.User["role"])
}

func TestProfileAndRoleRoutes(t *testing.T) {
	ts := newTestServer(t)
	newPhone := "+91 9000000000"

	ts.do(t, http.MethodPost, "/api/v1/auth/otp", "", gin.H{"phone": newPhone})
	resp := ts.do(t, http.MethodPost, "/api/v1/auth/otp/verify", "", gin.H{"phone": newPhone, "otp": "482913"})
	require.Equal(t, http.StatusOK, resp.Code)
	token := resp.Token
	assert.Equal(t, false, resp.User["profileCompleted"])

	resp = ts.do(t, http.MethodGet, "/api/v1/farmer/home", token, nil)
	assert.Equal(t, http.StatusForbidden, resp.Code)
	assert.Equal(t, string(i18n.KeyProfileIncomplete), resp.Key)

	resp = ts.do(t, http.MethodGet, "/api/v1/officer/users/1", token, nil)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.do(t, http.MethodPatch, "/api/v1/auth/profile", token, gin.H{"name": "Anil", "profileCompleted": true})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "Anil", resp.User["name"])

	resp = ts.do(t, http.MethodGet, "/api/v1/farmer/home", token, nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "Welcome, Anil", resp.Message)

	resp = ts.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "Anil", resp.User["name"])

	resp = ts.do(t, http.MethodPatch, "/api/v1/auth/profile", token, gin.H{"landSize": -1})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestOfficerGetUser(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"type": "email", "email": repository.SeedOfficerEmail, "password": "password123", "role": "officer",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	got := ts.do(t, http.MethodGet, "/api/v1/officer/users/1", resp.Token, nil)
	assert.Equal(t, http.StatusOK, got.Code)
	assert.Equal(t, repository.SeedFarmerPhone, got.User["phone"])

	got = ts.do(t, http.MethodGet, "/api/v1/officer/users/999", resp.Token, nil)
	assert.Equal(t, http.StatusNotFound, got.Code)
	assert.Equal(t, "User not found", got.Error)
}

func TestMe_RequiresToken(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestErrorKey(t *testing.T) {
	tests := []struct {
		err    error
		status int
		key    i18n.Key
	}{
		{service.ErrPasscodeNotFound, http.StatusNotFound, i18n.KeyPasscodeNotFound},
		{service.ErrPasscodeExpired, http.StatusGone, i18n.KeyPasscodeExpired},
		{service.ErrPasscodeMismatch, http.StatusUnauthorized, i18n.KeyPasscodeMismatch},
		{service.ErrInvalidCredentials, http.StatusUnauthorized, i18n.KeyInvalidCredentials},
		{service.ErrUserNotFound, http.StatusNotFound, i18n.KeyUserNotFound},
		{errors.New("boom"), http.StatusInternalServerError, i18n.KeyInternal},
	}
	for _, tt := range tests {
		status, key := errorKey(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
		assert.Equal(t, tt.key, key, tt.err.Error())
	}
}
