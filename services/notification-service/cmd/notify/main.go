package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/codewithsiham1/tree-plantnet-server-side-project/pkg/config"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/pkg/db"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/pkg/mq"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/pkg/obs"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/notification-service/internal/ledger"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/notification-service/internal/notifier"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/notification-service/internal/worker"
)

func must[T any](v T, err error) T {
	if err != nil {
		log.Fatal(err)
	}
	return v
}

func main() {
	config.LoadDotenv()
	cfg := must(config.LoadNotify())

	shutdownTracer := obs.InitTracer("notification-service", cfg.OTLPEndpoint, cfg.Env)
	defer func() { _ = shutdownTracer(context.Background()) }()

	var led ledger.Ledger = ledger.NewMemory()
	if cfg.LedgerDSN != "" {
		pg := ledger.NewPostgres(must(db.OpenPostgres(cfg.LedgerDSN)))
		must(0, pg.Migrate())
		led = pg
	} else {
		log.Println("[notify] PG_NOTIFY_DSN not set; duplicates are only detected in-process")
	}

	var n notifier.Notifier = notifier.NewConsole()
	if cfg.SMTPHost != "" {
		n = notifier.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom, cfg.SMTPTimeout)
	}
	w := worker.New(n, led)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		cancel()
	}()

	ccfg := mq.ConsumerConfig{
		Exchanges: cfg.Exchanges,
		Queue:     cfg.Queue,
		Bindings:  cfg.Bindings,
		Prefetch:  cfg.Prefetch,
		DLX:       cfg.DLX,
		DLQ:       cfg.DLQ,
		Tag:       "notification-service",
	}
	for ctx.Err() == nil {
		cons, err := mq.NewConsumer(cfg.RabbitURL, ccfg)
		if err != nil {
			log.Printf("[notify] connect failed: %v; retry in 2s", err)
			sleep(ctx, 2*time.Second)
			continue
		}
		msgs, err := cons.Deliveries(ctx)
		if err != nil {
			log.Printf("[notify] consume failed: %v", err)
			_ = cons.Close()
			sleep(ctx, 2*time.Second)
			continue
		}
		log.Printf("[notify] started. queue=%s exchanges=%v bindings=%v", cfg.Queue, cfg.Exchanges, cfg.Bindings)
		if err := w.Run(ctx, msgs); err != nil {
			log.Printf("[notify] %v; reconnecting", err)
		}
		_ = cons.Close()
	}
	log.Println("[notify] stopped")
}

func sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
