package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/motoexpress/pedidos_api/internal/config"
	"github.com/motoexpress/pedidos_api/internal/db"
	"github.com/motoexpress/pedidos_api/internal/es"
	"github.com/motoexpress/pedidos_api/internal/handlers"
	"github.com/motoexpress/pedidos_api/internal/logging"
	"github.com/motoexpress/pedidos_api/internal/mail"
	"github.com/motoexpress/pedidos_api/internal/middleware/loggingmw"
	"github.com/motoexpress/pedidos_api/internal/mykafka"
	"github.com/motoexpress/pedidos_api/internal/service/search"
	httpserver "github.com/motoexpress/pedidos_api/internal/transport/http"
	"github.com/motoexpress/pedidos_api/internal/validation"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	initCtx, initCancel := context.WithTimeout(context.Background(), 10*time.Second)
	database, err := db.Open(initCtx, configuration.DSN())
	initCancel()
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}

	jwtSecret := []byte(configuration.JWT_SECRET)

	var brokers []string
	if configuration.KAFKA_ADDRESS != "" {
		brokers = []string{configuration.KAFKA_ADDRESS}
	}
	prod, err := mykafka.NewProducer(brokers)
	if err != nil {
		log.Fatal(err)
	}

	esClient, err := es.NewClient(configuration)
	if err != nil {
		log.Fatal(err)
	}

	mailer := mail.NewSMTPMailer(
		configuration.SMTP_HOST,
		configuration.SMTP_PORT,
		configuration.SMTP_USER,
		configuration.SMTP_PASSWORD,
		configuration.SMTP_FROM,
	)

	validate := validation.New()

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		PedidoHandler:     &handlers.PedidoHandler{DB: database, Producer: prod, Mailer: mailer, Validate: validate},
		UsuarioHandler:    &handlers.UsuarioHandler{DB: database, Producer: prod, Mailer: mailer, JWTSecret: jwtSecret, Validate: validate},
		MercadoriaHandler: &handlers.MercadoriaHandler{DB: database, Producer: prod, ES: esClient, Validate: validate},
		SearchHandler:     handlers.NewSearchHandler(esClient, search.MerchandiseIndex),
		JWTSecret:         jwtSecret,
	}

	httpserver.Register(e, &deps)

	addr := configuration.SERVER_ADDRESS
	if addr == "" {
		addr = ":8080"
	}

	srv := &http.Server{
		Addr:         addr,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := database.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
