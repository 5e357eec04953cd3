package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/domain"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/service"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/transport/http/middlewares"
)

type PlantHandler struct {
	plants *service.PlantSvc
	orders *service.OrderSvc
}

func NewPlantHandler(plants *service.PlantSvc, orders *service.OrderSvc) *PlantHandler {
	return &PlantHandler{plants: plants, orders: orders}
}

// POST /plants
func (h *PlantHandler) Create(c *gin.Context) {
	var in service.PlantInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.plants.Create(c.Request.Context(), middlewares.Identity(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// GET /plants?category=&q=&page=1&page_size=20
func (h *PlantHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "0"))
	if page < 1 {
		page = 1
	}
	plants, total, err := h.plants.List(c.Request.Context(), domain.PlantFilter{
		Category: c.Query("category"),
		Query:    c.Query("q"),
		Page:     page - 1,
		PageSize: size,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.Header("X-Total-Count", strconv.FormatInt(total, 10))
	c.JSON(http.StatusOK, plants)
}

// GET /plants/:id
func (h *PlantHandler) Get(c *gin.Context) {
	p, err := h.plants.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// GET /plants/seller
func (h *PlantHandler) Mine(c *gin.Context) {
	plants, err := h.plants.ListBySeller(c.Request.Context(), middlewares.Identity(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, plants)
}

// PUT /plants/:id
func (h *PlantHandler) Update(c *gin.Context) {
	var patch domain.PlantPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.plants.Update(c.Request.Context(), middlewares.Identity(c), c.Param("id"), patch)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// DELETE /plants/:id
func (h *PlantHandler) Delete(c *gin.Context) {
	if err := h.plants.Delete(c.Request.Context(), middlewares.Identity(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// PATCH /plants/quantity/:id
func (h *PlantHandler) AdjustQuantity(c *gin.Context) {
	var in struct {
		QuantityToUpdate int              `json:"quantityToUpdate" binding:"required"`
		Status           domain.Direction `json:"status"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.orders.AdjustQuantity(c.Request.Context(), middlewares.Identity(c), c.Param("id"), in.QuantityToUpdate, in.Status)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
