package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/codewithsiham1/tree-plantnet-server-side-project/pkg/auth"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/pkg/config"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/pkg/db"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/pkg/mq"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/pkg/obs"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/access"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/events"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/payment"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/repository"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/repository/memstore"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/repository/mongostore"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/service"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/transport/http/handlers"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/transport/http/middlewares"
)

func must[T any](v T, err error) T {
	if err != nil {
		log.Fatal(err)
	}
	return v
}

func openStore(ctx context.Context, cfg config.Marketplace) (*repository.Store, error) {
	switch cfg.StoreDriver {
	case "memory":
		log.Println("[marketplace] using in-memory store; data is lost on restart")
		return memstore.New(), nil
	case "mongo":
		if cfg.MongoURI == "" {
			return nil, errors.New("MONGO_URI is required for STORE_DRIVER=mongo")
		}
		client, err := db.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		return mongostore.Open(ctx, client, cfg.MongoDB, cfg.StoreTimeout)
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}

func openProcessor(cfg config.Marketplace) (payment.Processor, error) {
	switch cfg.PaymentProvider {
	case "stripe":
		if cfg.StripeSecretKey == "" {
			log.Println("[marketplace] STRIPE_SECRET_KEY not set; payment intents will fail")
		}
		return payment.NewStripe(cfg.StripeSecretKey).WithWebhookSecret(cfg.StripeWebhookSecret), nil
	case "omise":
		return payment.NewOmise(cfg.OmisePublicKey, cfg.OmiseSecretKey, cfg.OmiseSourceType)
	default:
		return nil, fmt.Errorf("unknown PAYMENT_PROVIDER %q", cfg.PaymentProvider)
	}
}

func main() {
	config.LoadDotenv()
	cfg := must(config.LoadMarketplace())

	shutdownTracer := obs.InitTracer("marketplace", cfg.OTLPEndpoint, cfg.Env)
	defer func() { _ = shutdownTracer(context.Background()) }()

	startCtx, cancelStart := context.WithTimeout(context.Background(), 15*time.Second)
	store := must(openStore(startCtx, cfg))
	cancelStart()

	// Publisher (order.* and user.* events for the notification worker)
	var dispatcher *events.Dispatcher
	if cfg.RabbitURL != "" {
		pub := must(mq.NewPublisher(cfg.RabbitURL, cfg.EventExchange))
		defer pub.Close()
		dispatcher = events.NewDispatcher(pub, cfg.NotifyTimeout)
	} else {
		log.Println("[marketplace] RABBIT_URL not set; events are only logged")
		dispatcher = events.NewDispatcher(nil, cfg.NotifyTimeout)
	}

	var idem payment.IdempotencyStore
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		idem = payment.NewRedisIdempotency(rdb, cfg.IdempotencyTTL)
	}
	processor := must(openProcessor(cfg))

	gate := access.NewGate(store.Users)
	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)
	orders := service.NewOrderSvc(store, gate, dispatcher, service.OrderOptions{
		ReserveStock: cfg.ReserveStockOnPlace,
		StockFloor:   cfg.StockFloor,
	})

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), middlewares.CORS(cfg.CORSOrigins))
	handlers.Routes(r, handlers.Deps{
		Issuer:   issuer,
		Cookie:   middlewares.CookieOptionsFor(cfg.Production(), issuer.TTL()),
		Users:    service.NewUserSvc(store.Users, gate, dispatcher),
		Plants:   service.NewPlantSvc(store.Plants, gate),
		Orders:   orders,
		Payments: service.NewPaymentSvc(store.Plants, gate, processor, idem, dispatcher, cfg.PaymentCurrency, cfg.PaymentTimeout),
		Stats:    service.NewStatsSvc(store, gate),
		Contacts: service.NewContactSvc(store.Contacts, gate),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		log.Printf("[marketplace] HTTP listening on %s (store=%s payments=%s)", cfg.HTTPAddr, cfg.StoreDriver, processor.Name())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("[marketplace] http shutdown: %v", err)
	}
	dispatcher.Wait()
	if err := store.Close(ctx); err != nil {
		log.Printf("[marketplace] store close: %v", err)
	}
	log.Println("[marketplace] stopped")
}
