// Package main is the entry point for the warm transfer API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/relayline/warm-transfer/internal/config"
	"github.com/relayline/warm-transfer/internal/events"
	"github.com/relayline/warm-transfer/internal/handler"
	"github.com/relayline/warm-transfer/internal/livekit"
	"github.com/relayline/warm-transfer/internal/llm"
	"github.com/relayline/warm-transfer/internal/middleware"
	"github.com/relayline/warm-transfer/internal/service"
	"github.com/relayline/warm-transfer/internal/store"
	"github.com/relayline/warm-transfer/internal/telephony"
	"github.com/relayline/warm-transfer/internal/ws"
	"github.com/relayline/warm-transfer/pkg/logger"
	"github.com/relayline/warm-transfer/pkg/tracing"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting warm transfer API server")

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "warm-transfer", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Connect to NATS if configured; transfer events are optional
	var natsClient *events.Client
	var publisher *events.Publisher
	if cfg.NATSURL != "" {
		client, err := events.Connect(events.Config{
			URL:   cfg.NATSURL,
			Token: cfg.NATSToken,
		}, log)
		if err != nil {
			log.Warn("failed to connect to NATS, transfer events disabled", zap.Error(err))
		} else {
			natsClient = client
			defer natsClient.Close()
			publisher = events.NewPublisher(natsClient)
			if err := publisher.EnsureStream(ctx); err != nil {
				log.Warn("failed to ensure transfer stream", zap.Error(err))
				publisher = nil
			}
		}
	}

	// Connect to Redis if configured; room snapshots are optional
	var snapshots store.SnapshotStore
	if cfg.RedisURL != "" {
		redisStore, err := store.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn("failed to connect to Redis, room snapshots disabled", zap.Error(err))
		} else {
			defer redisStore.Close()
			snapshots = redisStore
		}
	}

	// Select the room provider
	var provider livekit.Provider
	switch {
	case cfg.LiveKitMock:
		provider = livekit.NewMock()
		log.Info("using mock room provider")
	case cfg.LiveKitConfigured():
		provider = livekit.NewClient(cfg.LiveKitURL, cfg.LiveKitAPIKey, cfg.LiveKitAPISecret)
	default:
		provider = livekit.Unconfigured{}
		log.Warn("room provider not configured, room operations will be rejected")
	}

	// Select the generation client; summaries degrade to extractive mode
	// without one
	var llmClient llm.Client
	var llmErr error
	switch {
	case cfg.DefaultLLM == string(llm.ProviderAnthropic) && cfg.AnthropicAPIKey != "":
		llmClient, llmErr = llm.NewClient(llm.ProviderAnthropic, cfg.AnthropicAPIKey)
	case cfg.OpenAIAPIKey != "":
		llmClient, llmErr = llm.NewClient(llm.ProviderOpenAI, cfg.OpenAIAPIKey)
	case cfg.AnthropicAPIKey != "":
		llmClient, llmErr = llm.NewClient(llm.ProviderAnthropic, cfg.AnthropicAPIKey)
	}
	if llmErr != nil {
		log.Warn("failed to create generation client, using extractive summaries", zap.Error(llmErr))
		llmClient = nil
	}
	llmProvider := ""
	if llmClient != nil {
		llmProvider = llmClient.Name()
	}

	// Initialize services
	registry := service.NewRoomRegistry(provider, log)
	summaries := service.NewSummaryEngine(llmClient, log)
	hub := ws.NewHub(log)
	notifier := events.NewTransferNotifier(hub, publisher, log)
	coordinator := service.NewTransferCoordinator(registry, summaries, notifier, cfg.TransferRetention, log)

	// Telephony bridge, optional
	var bridge *telephony.Bridge
	if cfg.TwilioConfigured() {
		bridge = telephony.NewBridge(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber, cfg.PublicURL, log)
	}

	// Background housekeeping
	sweepTasks := []service.SweepTask{
		{Name: "transfers", Run: coordinator.CleanupCompleted},
	}
	if bridge != nil {
		sweepTasks = append(sweepTasks, service.SweepTask{Name: "calls", Run: bridge.CleanupOldCalls})
	}
	sweeper := service.NewSweeper(cfg.CleanupInterval, log, sweepTasks...)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(provider, llmProvider, bridge != nil, snapshots != nil, natsClient)
	roomHandler := handler.NewRoomHandler(registry, snapshots, log)
	transferHandler := handler.NewTransferHandler(coordinator, registry, log)
	summaryHandler := handler.NewSummaryHandler(summaries, log)
	wsHandler := handler.NewWSHandler(hub, log)
	telephonyHandler := handler.NewTelephonyHandler(bridge, summaries, registry, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"Link", "X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints
	r.Get("/", healthHandler.Root)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// WebSocket notifications per room
	r.Get("/ws/{room}", wsHandler.Serve)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Get("/health", healthHandler.Health)

		// Rooms and tokens
		r.Post("/token/generate", roomHandler.Create)
		r.Route("/rooms", func(r chi.Router) {
			r.Post("/create", roomHandler.Create)
			r.Post("/join", roomHandler.Join)

			r.Route("/{room}", func(r chi.Router) {
				r.Get("/participants", roomHandler.Participants)
				r.Delete("/participants/{identity}", roomHandler.RemoveParticipant)
				r.Get("/messages", roomHandler.Messages)
				r.Post("/messages", roomHandler.AppendMessage)
				r.Delete("/messages", roomHandler.ClearMessages)
				r.Get("/state", roomHandler.State)
				r.Post("/restore", roomHandler.Restore)
			})
		})

		// Agent availability
		r.Get("/agents/available", roomHandler.AvailableAgents)

		// Transfers
		r.Route("/transfer", func(r chi.Router) {
			r.Post("/initiate", transferHandler.Initiate)
			r.Post("/complete", transferHandler.Complete)
			r.Get("/stats", transferHandler.Stats)
			r.Get("/debug/active", transferHandler.Active)
			r.Get("/debug/{id}", transferHandler.Debug)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/summary", transferHandler.GetSummary)
				r.Post("/cancel", transferHandler.Cancel)
			})
		})

		// Summaries and speech
		r.Post("/summary/generate", summaryHandler.Generate)
		r.Post("/speech/generate", summaryHandler.Speech)

		// Telephony
		r.Route("/twilio", func(r chi.Router) {
			r.Post("/dial", telephonyHandler.Dial)
			r.Post("/twiml/{room}", telephonyHandler.TwiML)
			r.Get("/call/{sid}", telephonyHandler.CallStatus)
			r.Post("/call/{sid}/hangup", telephonyHandler.Hangup)
		})
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Host + ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
