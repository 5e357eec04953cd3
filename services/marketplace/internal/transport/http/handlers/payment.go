package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/service"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/transport/http/middlewares"
)

type PaymentHandler struct {
	svc *service.PaymentSvc
}

func NewPaymentHandler(svc *service.PaymentSvc) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

// POST /create-payment-intent
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	var in struct {
		PlantID  string `json:"plantId" binding:"required"`
		Quantity int    `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	intent, err := h.svc.CreateIntent(c.Request.Context(), middlewares.Identity(c), in.PlantID, in.Quantity, c.GetHeader("Idempotency-Key"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clientSecret": intent.ClientSecret})
}

// POST /webhooks/payment
func (h *PaymentHandler) Webhook(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		badRequest(c, err)
		return
	}
	conf, err := h.svc.Confirm(c.Request.Context(), body, c.Request.Header)
	if err != nil {
		fail(c, err)
		return
	}
	if conf != nil {
		log.Printf("[payment] %s settled=%t event=%s", conf.IntentID, conf.Succeeded, conf.EventID)
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
