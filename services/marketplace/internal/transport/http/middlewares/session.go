package middlewares

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/codewithsiham1/tree-plantnet-server-side-project/pkg/auth"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/access"
)

const (
	CookieName  = "token"
	identityKey = "email"
)

// Session accepts the token from the session cookie or, failing that, an
// Authorization: Bearer header.
func Session(issuer *auth.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, _ := c.Cookie(CookieName)
		if tok == "" {
			if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
				tok = strings.TrimPrefix(h, "Bearer ")
			}
		}
		claims, err := issuer.Verify(tok)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "unauthorized access"})
			return
		}
		c.Set(identityKey, strings.ToLower(claims.Email))
		c.Next()
	}
}

// Identity returns the caller set by Session; the zero value when absent.
func Identity(c *gin.Context) access.Identity {
	return access.Identity{Email: c.GetString(identityKey)}
}

type CookieOptions struct {
	Secure   bool
	SameSite http.SameSite
	TTL      time.Duration
}

// CookieOptionsFor picks cross-site cookies in production and strict
// same-site cookies everywhere else.
func CookieOptionsFor(production bool, ttl time.Duration) CookieOptions {
	if production {
		return CookieOptions{Secure: true, SameSite: http.SameSiteNoneMode, TTL: ttl}
	}
	return CookieOptions{SameSite: http.SameSiteStrictMode, TTL: ttl}
}

func SetSessionCookie(c *gin.Context, o CookieOptions, token string) {
	c.SetSameSite(o.SameSite)
	c.SetCookie(CookieName, token, int(o.TTL/time.Second), "/", "", o.Secure, true)
}

func ClearSessionCookie(c *gin.Context, o CookieOptions) {
	c.SetSameSite(o.SameSite)
	c.SetCookie(CookieName, "", -1, "/", "", o.Secure, true)
}
