package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/domain"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/service"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/transport/http/middlewares"
)

type OrderHandler struct {
	svc *service.OrderSvc
}

func NewOrderHandler(svc *service.OrderSvc) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// POST /order
func (h *OrderHandler) Place(c *gin.Context) {
	var in service.PlaceOrderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	in.Customer.Email = strings.ToLower(in.Customer.Email)
	in.Seller.Email = strings.ToLower(in.Seller.Email)
	o, err := h.svc.Place(c.Request.Context(), middlewares.Identity(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

// GET /customer-orders/:email
func (h *OrderHandler) ForCustomer(c *gin.Context) {
	views, err := h.svc.ListForCustomer(c.Request.Context(), middlewares.Identity(c), strings.ToLower(c.Param("email")))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// GET /seller-orders/:email
func (h *OrderHandler) ForSeller(c *gin.Context) {
	views, err := h.svc.ListForSeller(c.Request.Context(), middlewares.Identity(c), strings.ToLower(c.Param("email")))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// PATCH /orders/:id
func (h *OrderHandler) Transition(c *gin.Context) {
	var in struct {
		Status domain.OrderStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	o, err := h.svc.TransitionStatus(c.Request.Context(), middlewares.Identity(c), c.Param("id"), in.Status)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// DELETE /order/:id
func (h *OrderHandler) Cancel(c *gin.Context) {
	o, err := h.svc.Cancel(c.Request.Context(), middlewares.Identity(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// POST /reviews
func (h *OrderHandler) Review(c *gin.Context) {
	var in service.ReviewInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	r, err := h.svc.AttachReview(c.Request.Context(), middlewares.Identity(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

// GET /reviews/:plantId
func (h *OrderHandler) Reviews(c *gin.Context) {
	list, err := h.svc.Reviews(c.Request.Context(), c.Param("plantId"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
