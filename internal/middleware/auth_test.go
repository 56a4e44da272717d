package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"acqplan/internal/repository"
	"acqplan/internal/testutil"
	"acqplan/internal/workflow"
)

func sign(t *testing.T, subject string, expires time.Time, secret string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(expires),
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestAuthenticate(t *testing.T) {
	db := testutil.NewDB(t)
	dept := testutil.CreateDepartment(t, db, "IT", nil)
	user := testutil.CreateUser(t, db, "ana", workflow.RoleManager, dept.ID)
	inactive := testutil.CreateUser(t, db, "bia", workflow.RoleUser, dept.ID)
	require.NoError(t, db.Model(inactive).Update("is_active", false).Error)

	router := gin.New()
	router.Use(RequestID(), Logger(zap.NewNop()))
	authed := router.Group("", Authenticate(repository.NewUserRepository(db), testutil.JWTSecret))
	authed.GET("/me", func(c *gin.Context) {
		actor, ok := CurrentActor(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"id": actor.ID.String(), "role": string(actor.Role), "department": actor.DepartmentID.String()})
	})
	authed.GET("/admin", RequireRole(workflow.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	valid := sign(t, user.ID.String(), time.Now().Add(time.Hour), testutil.JWTSecret)

	t.Run("bearer token", func(t *testing.T) {
		w := testutil.DoRequest(router, http.MethodGet, "/me", nil, valid)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var body map[string]string
		testutil.Decode(t, w, &body)
		assert.Equal(t, user.ID.String(), body["id"])
		assert.Equal(t, "MANAGER", body["role"])
		assert.Equal(t, dept.ID.String(), body["department"])
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: valid})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	cases := map[string]string{
		"missing":      "",
		"wrong secret": sign(t, user.ID.String(), time.Now().Add(time.Hour), "other"),
		"expired":      sign(t, user.ID.String(), time.Now().Add(-time.Minute), testutil.JWTSecret),
		"inactive":     sign(t, inactive.ID.String(), time.Now().Add(time.Hour), testutil.JWTSecret),
		"bad subject":  sign(t, "nobody", time.Now().Add(time.Hour), testutil.JWTSecret),
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			w := testutil.DoRequest(router, http.MethodGet, "/me", nil, token)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			var body map[string]string
			testutil.Decode(t, w, &body)
			assert.NotEmpty(t, body["error"])
		})
	}

	t.Run("role gate", func(t *testing.T) {
		w := testutil.DoRequest(router, http.MethodGet, "/admin", nil, valid)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestTokenCookies(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)

	SetTokenCookies(c, "tok", time.Hour, true)
	cookie := w.Header().Get("Set-Cookie")
	assert.Contains(t, cookie, "access_token=tok")
	assert.Contains(t, cookie, "HttpOnly")
	assert.Contains(t, cookie, "Secure")
	assert.Contains(t, cookie, "SameSite=None")
}
