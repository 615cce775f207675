package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/acencia/backoffice/pkg/common/config"
	"github.com/acencia/backoffice/pkg/common/database"
	"github.com/acencia/backoffice/pkg/common/kafka"
	"github.com/acencia/backoffice/pkg/common/logger"
	"github.com/acencia/backoffice/pkg/contract"
	"github.com/acencia/backoffice/pkg/customer"
	"github.com/acencia/backoffice/pkg/document"
	"github.com/acencia/backoffice/pkg/insurer"
	"github.com/gorilla/mux"
)

func main() {
	logger.Init()
	cfg := config.Load()

	db, err := database.ConnectPostgres(cfg)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to connect to postgres")
	}
	defer database.ClosePostgres(db)

	insurerRepo := insurer.NewRepository(db)
	contractRepo := contract.NewRepository(db)
	customerRepo := customer.NewRepository(db)
	documentRepo := document.NewRepository(db)

	for name, migrate := range map[string]func() error{
		"vus":       insurerRepo.AutoMigrate,
		"vertraege": contractRepo.AutoMigrate,
		"kunden":    customerRepo.AutoMigrate,
		"documents": documentRepo.AutoMigrate,
	} {
		if err := migrate(); err != nil {
			logger.Log.WithError(err).WithField("table", name).Fatal("failed to migrate tables")
		}
	}

	producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaEventTopic)
	defer producer.Close()

	cache := database.ConnectRedis(cfg)
	defer database.CloseRedis(cache)

	insurerService := insurer.NewService(insurerRepo)
	matcher := insurer.NewMatcher(insurerRepo)
	coordinator := contract.NewCoordinator(contractRepo, matcher, producer, cache, cfg.StatisticsCacheTTL)

	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	router.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready"}`))
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	insurer.NewHTTPHandler(insurerService, matcher, cfg.MaxRequestBody).Register(api)
	contract.NewHTTPHandler(contractRepo, coordinator, cfg.MaxRequestBody).Register(api)
	customer.NewHTTPHandler(customerRepo, contractRepo, cfg.MaxRequestBody).Register(api)
	document.NewHTTPHandler(documentRepo, cfg.MaxRequestBody).Register(api)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		}).Info("Back Office Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Back Office Service...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("server forced to shutdown")
	}

	logger.Log.Info("Back Office Service stopped")
}
