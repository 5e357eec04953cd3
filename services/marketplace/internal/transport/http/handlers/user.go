package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/domain"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/service"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/transport/http/middlewares"
)

type UserHandler struct {
	svc *service.UserSvc
}

func NewUserHandler(svc *service.UserSvc) *UserHandler {
	return &UserHandler{svc: svc}
}

// POST /user/:email. The body is optional; an existing user is returned as is.
func (h *UserHandler) Save(c *gin.Context) {
	var in struct {
		Name  string `json:"name"`
		Image string `json:"image"`
	}
	if err := c.ShouldBindJSON(&in); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}
	u, err := h.svc.SaveOnSignIn(c.Request.Context(), c.Param("email"), in.Name, in.Image)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// GET /user/role/:email
func (h *UserHandler) Role(c *gin.Context) {
	role, err := h.svc.Role(c.Request.Context(), strings.ToLower(c.Param("email")))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"role": role})
}

// PATCH /user/:email asks for the seller role on behalf of the caller.
func (h *UserHandler) RequestSeller(c *gin.Context) {
	id := middlewares.Identity(c)
	if !strings.EqualFold(c.Param("email"), id.Email) {
		c.JSON(http.StatusForbidden, gin.H{"message": "forbidden access"})
		return
	}
	u, err := h.svc.RequestSeller(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// GET /all-users/:email
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.svc.List(c.Request.Context(), middlewares.Identity(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// PATCH /user/role/:email
func (h *UserHandler) UpdateRole(c *gin.Context) {
	var in struct {
		Role domain.Role `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	u, err := h.svc.UpdateRole(c.Request.Context(), middlewares.Identity(c), strings.ToLower(c.Param("email")), in.Role)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}
