package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"acqplan/internal/access"
	"acqplan/internal/repository"
	"acqplan/internal/workflow"
	"acqplan/pkg/response"
)

const (
	AccessTokenCookie = "access_token"
	actorKey          = "actor"
)

// SetTokenCookies stores the access token as an HttpOnly cookie.
// Cross-origin deployments need secure=true, which also switches SameSite to None.
func SetTokenCookies(c *gin.Context, accessToken string, ttl time.Duration, secure bool) {
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode
	}
	c.SetSameSite(sameSite)
	c.SetCookie(AccessTokenCookie, accessToken, int(ttl.Seconds()), "/", "", secure, true)
}

// ClearTokenCookies removes the access token cookie
func ClearTokenCookies(c *gin.Context, secure bool) {
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode
	}
	c.SetSameSite(sameSite)
	c.SetCookie(AccessTokenCookie, "", -1, "/", "", secure, true)
}

func tokenFrom(c *gin.Context) (string, error) {
	// Try cookie first, fallback to Authorization header
	if token, err := c.Cookie(AccessTokenCookie); err == nil && token != "" {
		return token, nil
	}
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", errors.New("authorization is missing")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", errors.New("invalid authorization format, expected 'Bearer <token>'")
	}
	return parts[1], nil
}

// Authenticate resolves the session to a stored, active user. Role and
// department are read from the database on every request, so changes made
// by an administrator apply without a new login.
func Authenticate(users repository.UserRepository, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := tokenFrom(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(err.Error()))
			return
		}

		claims := &jwt.RegisteredClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("invalid or expired token"))
			return
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("invalid token subject"))
			return
		}

		user, err := users.GetByID(c.Request.Context(), userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("user no longer exists"))
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, response.Error("failed to resolve session"))
			return
		}
		if !user.IsActive {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("user account is inactive"))
			return
		}
		role, ok := workflow.ParseRole(user.Role)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error("user has no valid role"))
			return
		}

		c.Set(actorKey, access.Actor{ID: user.ID, Name: user.Name, Role: role, DepartmentID: user.DepartmentID})
		c.Set("user_id", user.ID.String())
		c.Next()
	}
}

// CurrentActor returns the session user stored by Authenticate.
func CurrentActor(c *gin.Context) (access.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return access.Actor{}, false
	}
	a, ok := v.(access.Actor)
	return a, ok
}

// RequireRole lets the request through only for the listed roles. It must
// run after Authenticate.
func RequireRole(allowedRoles ...workflow.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := CurrentActor(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("authentication required"))
			return
		}
		for _, role := range allowedRoles {
			if actor.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, response.Error("access denied: insufficient permissions"))
	}
}
