package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/domain"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/service"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/transport/http/middlewares"
)

type StatsHandler struct {
	stats    *service.StatsSvc
	contacts *service.ContactSvc
}

func NewStatsHandler(stats *service.StatsSvc, contacts *service.ContactSvc) *StatsHandler {
	return &StatsHandler{stats: stats, contacts: contacts}
}

// GET /admin-stat
func (h *StatsHandler) Admin(c *gin.Context) {
	st, err := h.stats.Admin(c.Request.Context(), middlewares.Identity(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// GET /seller-stat
func (h *StatsHandler) Seller(c *gin.Context) {
	st, err := h.stats.Seller(c.Request.Context(), middlewares.Identity(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// POST /contact
func (h *StatsHandler) Contact(c *gin.Context) {
	var in domain.Contact
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	saved, err := h.contacts.Submit(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

// GET /contacts
func (h *StatsHandler) Contacts(c *gin.Context) {
	list, err := h.contacts.List(c.Request.Context(), middlewares.Identity(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
