package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/codewithsiham1/tree-plantnet-server-side-project/pkg/auth"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/transport/http/middlewares"
)

type AuthHandler struct {
	issuer *auth.Issuer
	cookie middlewares.CookieOptions
}

func NewAuthHandler(issuer *auth.Issuer, cookie middlewares.CookieOptions) *AuthHandler {
	return &AuthHandler{issuer: issuer, cookie: cookie}
}

// POST /jwt
func (h *AuthHandler) Issue(c *gin.Context) {
	var in struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	tok, err := h.issuer.Issue(strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		badRequest(c, err)
		return
	}
	middlewares.SetSessionCookie(c, h.cookie, tok)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GET /logout
func (h *AuthHandler) Logout(c *gin.Context) {
	middlewares.ClearSessionCookie(c, h.cookie)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
