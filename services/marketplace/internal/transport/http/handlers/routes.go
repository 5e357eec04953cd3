package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codewithsiham1/tree-plantnet-server-side-project/pkg/auth"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/service"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/transport/http/middlewares"
)

type Deps struct {
	Issuer   *auth.Issuer
	Cookie   middlewares.CookieOptions
	Users    *service.UserSvc
	Plants   *service.PlantSvc
	Orders   *service.OrderSvc
	Payments *service.PaymentSvc
	Stats    *service.StatsSvc
	Contacts *service.ContactSvc
}

// Routes mounts the public API. Role checks happen in the services, so the
// router only separates anonymous routes from ones needing a session.
func Routes(r *gin.Engine, d Deps) {
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	a := NewAuthHandler(d.Issuer, d.Cookie)
	r.POST("/jwt", a.Issue)
	r.GET("/logout", a.Logout)

	uh := NewUserHandler(d.Users)
	ph := NewPlantHandler(d.Plants, d.Orders)
	oh := NewOrderHandler(d.Orders)
	sh := NewStatsHandler(d.Stats, d.Contacts)

	// singular paths are what the web client calls; the plural ones are aliases
	for _, base := range []string{"/user", "/users"} {
		r.POST(base+"/:email", uh.Save)
		r.GET(base+"/role/:email", uh.Role)
	}
	r.GET("/plants", ph.List)
	r.GET("/plants/:id", ph.Get)
	r.GET("/reviews/:plantId", oh.Reviews)
	r.POST("/contact", sh.Contact)

	var pay *PaymentHandler
	if d.Payments != nil {
		pay = NewPaymentHandler(d.Payments)
		r.POST("/webhooks/payment", pay.Webhook)
	}

	secured := r.Group("")
	secured.Use(middlewares.Session(d.Issuer))
	{
		secured.PATCH("/user/:email", uh.RequestSeller)
		secured.PATCH("/users/:email", uh.RequestSeller)
		secured.GET("/all-users/:email", uh.List)
		secured.PATCH("/user/role/:email", uh.UpdateRole)

		secured.POST("/plants", ph.Create)
		secured.GET("/plants/seller", ph.Mine)
		secured.PUT("/plants/:id", ph.Update)
		secured.DELETE("/plants/:id", ph.Delete)
		secured.PATCH("/plants/quantity/:id", ph.AdjustQuantity)

		secured.POST("/order", oh.Place)
		secured.GET("/customer-orders/:email", oh.ForCustomer)
		secured.GET("/seller-orders/:email", oh.ForSeller)
		secured.PATCH("/orders/:id", oh.Transition)
		secured.DELETE("/order/:id", oh.Cancel)
		secured.POST("/reviews", oh.Review)

		if pay != nil {
			secured.POST("/create-payment-intent", pay.CreateIntent)
		}

		secured.GET("/admin-stat", sh.Admin)
		secured.GET("/seller-stat", sh.Seller)
		secured.GET("/contacts", sh.Contacts)
	}
}
