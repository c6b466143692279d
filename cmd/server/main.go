package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/supplysathi/marketplace/internal/auth"
	"github.com/supplysathi/marketplace/internal/catalog"
	"github.com/supplysathi/marketplace/internal/config"
	"github.com/supplysathi/marketplace/internal/es"
	"github.com/supplysathi/marketplace/internal/httpserver"
	"github.com/supplysathi/marketplace/internal/ledger"
	"github.com/supplysathi/marketplace/internal/logging"
	"github.com/supplysathi/marketplace/internal/mykafka"
	"github.com/supplysathi/marketplace/internal/payment"
	"github.com/supplysathi/marketplace/internal/pricing"
	"github.com/supplysathi/marketplace/internal/repo"
)

func main() {
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	db, err := config.InitDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}

	var events ledger.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		producer := mykafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer producer.Close()
		events = producer
	} else {
		logger.Warn("KAFKA_BROKERS not set, order events disabled")
	}

	var esClient *elasticsearch.Client
	if cfg.ESURL != "" {
		esClient, err = es.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			log.Fatalf("elasticsearch: %v", err)
		}
	} else {
		logger.Warn("ES_URL not set, product search disabled")
	}

	r := &repo.GormRepo{DB: db}
	policy := pricing.DefaultPolicy()

	authSvc := &auth.Service{Repo: r, JWTSecret: cfg.JWTSecret}
	catalogSvc := &catalog.Service{Repo: r, ES: esClient}
	ledgerSvc := ledger.NewService(r, policy, payment.NewSimulator(policy.CODSurcharge), events)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(httpserver.RequestLogger(logger))
	e.Use(echomw.CORS())

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler:    &httpserver.AuthHTTP{Svc: authSvc},
		ProductHandler: &httpserver.ProductHTTP{Svc: catalogSvc, ES: esClient},
		OrderHandler:   &httpserver.OrderHTTP{Svc: ledgerSvc},
		PaymentHandler: &httpserver.PaymentHTTP{Svc: ledgerSvc},
		JWTSecret:      cfg.JWTSecret,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
}
