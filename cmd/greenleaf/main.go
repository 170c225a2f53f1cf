package main

import (
	"context"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"greenleaf/internal/broker"
	"greenleaf/internal/config"
	"greenleaf/internal/http/handlers"
	applog "greenleaf/internal/log"
	"greenleaf/internal/notify"
	"greenleaf/internal/repos"
	"greenleaf/internal/sigctx"
	"greenleaf/web"
)

const closeTimeout = 5 * time.Second

func main() {
	sigCtx, stop := sigctx.WithShutdown(context.Background())
	defer stop()

	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			defer f.Close()
			log.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	if cfg.CatalogFile != "" {
		if err := repos.LoadCatalogFile(db, cfg.CatalogFile); err != nil {
			log.Fatalf("[catalog] %v", err)
		}
		log.Printf("[catalog] loaded %s", cfg.CatalogFile)
	}

	bus := notify.NewBus()

	// Cross-instance storage signal, off unless AMQP_URL is set
	var bridge *broker.Bridge
	var mq *broker.Client
	if cfg.AMQPURL != "" {
		mq, err = broker.NewClient(broker.Config{URL: cfg.AMQPURL, Exchange: cfg.AMQPExchange})
		if err != nil {
			log.Fatalf("[broker] %v", err)
		}
		bridge = broker.NewBridge(bus, mq, cfg.InstanceID)
		bridge.Start()
		if err := mq.Consume(sigCtx, bridge.Deliver); err != nil {
			log.Fatalf("[broker] %v", err)
		}
	}

	app := fiber.New(fiber.Config{
		Views:        web.Engine(),
		ErrorHandler: handlers.ErrorHandler,
		// SSE streams stay open; bound everything else
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 2 * time.Minute,
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Next: func(c *fiber.Ctx) bool { return strings.HasPrefix(c.Path(), "/static/") },
	}))
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			p := c.Path()
			return strings.HasPrefix(p, "/static/") || p == "/api/v1/events"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return c.SendStatus(fiber.StatusTooManyRequests)
		},
	}))
	app.Use(handlers.CSRF())

	deps := handlers.NewDeps(db, cfg, bus)
	handlers.Register(app, deps, handlers.DefaultLimits)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("[http] %v", err)
			stop()
		}
	}()

	<-sigCtx.Done()
	log.Printf("[shutdown] closing: %v", context.Cause(sigCtx))
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	deps.EventsHandler.Close()
	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("[shutdown] http: %v", err)
	}
	if bridge != nil {
		bridge.Stop()
	}
	if mq != nil {
		if err := mq.Close(); err != nil {
			log.Printf("[shutdown] broker: %v", err)
		}
	}
}
