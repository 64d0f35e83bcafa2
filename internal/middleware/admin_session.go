package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/novocode/novocode-api/internal/models"
	"github.com/novocode/novocode-api/pkg/jwt"
)

const (
	// AdminSessionCookieName is the cookie used for back-office web sessions.
	AdminSessionCookieName = "admin_session"

	// AdminSessionContextKey stores the authenticated admin session in request context.
	AdminSessionContextKey = "admin_session"
)

var (
	ErrAdminSessionNotFound = errors.New("admin session not found in context")
	ErrInvalidAdminSession  = errors.New("invalid admin session type")
)

// AdminSessionMiddleware validates admin JWT session cookie and stores session in context.
func AdminSessionMiddleware(tokenManager *jwt.TokenManager, cookieDomain string, cookieSecure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(AdminSessionCookieName)
		if err != nil || cookie == "" {
			_ = c.Error(fmt.Errorf("missing admin session cookie")) //nolint:errcheck
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		claims, err := tokenManager.ValidateToken(cookie)
		if err != nil {
			_ = c.Error(fmt.Errorf("invalid admin session token: %w", err)) //nolint:errcheck
			ClearAdminSessionCookie(c, cookieDomain, cookieSecure)
			if errors.Is(err, jwt.ErrExpiredToken) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired"})
			} else {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			}
			c.Abort()
			return
		}

		role := models.UserRole(claims.Role)
		if !role.IsValid() {
			_ = c.Error(fmt.Errorf("admin session with unknown role %q", claims.Role)) //nolint:errcheck
			ClearAdminSessionCookie(c, cookieDomain, cookieSecure)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		session := &models.AdminSession{
			UserID:    claims.UserID,
			Email:     claims.Email,
			Name:      claims.Name,
			Role:      role,
			ExpiresAt: claims.ExpiresAt.Unix(),
			IssuedAt:  claims.IssuedAt.Unix(),
		}

		c.Set(AdminSessionContextKey, session)
		c.Next()
	}
}

// RequireRole lets the request through only when the session holds one of
// roles. It must run after AdminSessionMiddleware.
func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := GetAdminSession(c)
		if err != nil {
			_ = c.Error(err) //nolint:errcheck
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		if !slices.Contains(roles, session.Role) {
			_ = c.Error(fmt.Errorf("role %s not allowed", session.Role)) //nolint:errcheck
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			c.Abort()
			return
		}

		c.Next()
	}
}

func GetAdminSession(c *gin.Context) (*models.AdminSession, error) {
	val, exists := c.Get(AdminSessionContextKey)
	if !exists {
		return nil, ErrAdminSessionNotFound
	}

	session, ok := val.(*models.AdminSession)
	if !ok {
		return nil, ErrInvalidAdminSession
	}

	return session, nil
}

func SetAdminSessionCookie(c *gin.Context, token string, ttlSeconds int, domain string, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AdminSessionCookieName, token, ttlSeconds, "/", domain, secure, true)
}

func ClearAdminSessionCookie(c *gin.Context, domain string, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AdminSessionCookieName, "", -1, "/", domain, secure, true)
}
