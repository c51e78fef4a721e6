package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/kahvecikaan/catalog-browser/internal/browser"
	"github.com/kahvecikaan/catalog-browser/internal/catalog"
	"github.com/kahvecikaan/catalog-browser/internal/config"
	"github.com/kahvecikaan/catalog-browser/internal/domain"
	"github.com/kahvecikaan/catalog-browser/internal/events"
	"github.com/kahvecikaan/catalog-browser/internal/repository"
	"github.com/kahvecikaan/catalog-browser/internal/service"
	httpTransport "github.com/kahvecikaan/catalog-browser/internal/transport/http"
	websocketTransport "github.com/kahvecikaan/catalog-browser/internal/transport/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		hclog.Default().Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	// Initialize the logger
	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "catalog-browser",
		Level: cfg.LogLevel,
	})

	// Create a standard logger for the HTTP server
	standardLogger := logger.StandardLogger(&hclog.StandardLoggerOptions{InferLevels: true})

	// Initialize the event bus - shared by the sessions and the websocket handler
	eventBus := events.NewEventBus[any]()

	validator := domain.NewValidation()

	// Set up the catalog client
	catalogClient, err := catalog.NewHTTPClient(logger.Named("catalog"), catalog.Config{
		BaseURL: cfg.CatalogURL,
		Timeout: cfg.CatalogTimeout,
		Breaker: catalog.DefaultBreakerConfig("catalog"),
	}, validator)
	if err != nil {
		logger.Error("Failed to create catalog client", "error", err)
		os.Exit(1)
	}

	// Initialize the BrowserService
	bs := service.NewBrowserService(
		repository.NewMemorySessionRepository(),
		catalogClient,
		domain.NewEnricher(domain.HashQuantity),
		eventBus,
		logger.Named("browser-service"),
		service.Config{
			Session: browser.Config{
				PageSize:     cfg.PageSize,
				Breakpoint:   cfg.NarrowBreakpoint,
				FetchTimeout: cfg.CatalogTimeout,
			},
			SessionTTL:    cfg.SessionTTL,
			SettleTimeout: cfg.CatalogTimeout,
		},
	)

	views, err := httpTransport.NewViews()
	if err != nil {
		logger.Error("Failed to parse templates", "error", err)
		os.Exit(1)
	}

	// Initialize HTTP handlers
	bh := httpTransport.NewBrowserHandler(bs, views, validator, logger.Named("http-handler"))

	mw := httpTransport.NewMiddleware(logger.Named("http"), bs, &httpTransport.CORSConfig{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "X-Requested-With"},
		MaxAge:           86400,
		AllowCredentials: true,
	})

	// Initialize the WebSocket handler with the event bus
	wh := websocketTransport.NewHandler(logger.Named("websocket-handler"), eventBus, bs)

	router := httpTransport.NewRouter(bh, mw, logger, wh)

	// Create the HTTP Server
	server := &http.Server{
		Addr:         cfg.BindAddress,
		Handler:      router,
		ErrorLog:     standardLogger,
		IdleTimeout:  120 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.CatalogTimeout + 10*time.Second,
	}

	// Start the server in a new goroutine
	go func() {
		logger.Info("Starting server", "bind_address", cfg.BindAddress, "catalog_url", cfg.CatalogURL)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Error starting server", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("Shutting down server", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error shutting down server", "error", err)
	}

	if err := bs.Close(); err != nil {
		logger.Error("Error closing browser service", "error", err)
	}
}
