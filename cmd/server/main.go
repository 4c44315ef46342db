package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"calassist-service/internal/domain/repository"
	"calassist-service/internal/infrastructure/config"
	"calassist-service/internal/infrastructure/oauth"
	"calassist-service/internal/infrastructure/persistence"
	gcalRepo "calassist-service/internal/interface/calendar"
	"calassist-service/internal/interface/httpapi"
	"calassist-service/internal/interface/llm"
	storeRepo "calassist-service/internal/interface/repository"
	"calassist-service/internal/usecase"
	"calassist-service/pkg/logger"
	"calassist-service/pkg/metrics"
	"calassist-service/pkg/nlp"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Create logger
	log := logger.NewLogger()
	log.Info("Starting Calendar Assistant Service")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}
	log.Info("Configuration loaded", "version", cfg.AppVersion, "extractorMode", cfg.ExtractorMode)

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up MongoDB connection for conversation transcripts
	log.Info("Connecting to MongoDB")
	mongoClient, db, err := persistence.NewMongoDatabase(ctx, cfg.MongoURI, cfg.MongoUser, cfg.MongoPassword, cfg.MongoDB)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}

	// Set up PostgreSQL connection for the booking ledger
	log.Info("Connecting to PostgreSQL")
	gormDB, err := persistence.NewPostgresDB(cfg.PostgresURI)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", "error", err)
	}

	// Set up repositories
	bookingRepo, err := storeRepo.NewGormBookingRepository(gormDB)
	if err != nil {
		log.Fatal("Failed to migrate booking ledger", "error", err)
	}
	conversationRepo := storeRepo.NewMongoConversationRepository(db)

	// Set up the calendar provider when credentials are configured; the
	// assistant runs ledger-only without it.
	var calendarRepo repository.CalendarRepository
	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" && cfg.GoogleRefreshToken != "" {
		googleOAuth := oauth.NewGoogleOAuth(
			cfg.GoogleClientID,
			cfg.GoogleClientSecret,
			cfg.GoogleRefreshToken,
			log,
		)
		calendarRepo, err = gcalRepo.NewGoogleCalendarRepository(ctx, googleOAuth, cfg.GoogleCalendarID, log)
		if err != nil {
			log.Fatal("Failed to create calendar service", "error", err)
		}
	} else {
		log.Warn("Google Calendar credentials not configured, running ledger-only")
	}

	// Set up the message pipeline
	m := metrics.NewMetrics("calassist")
	slotExtractor := nlp.NewSlotExtractor(log)
	contextExtractor := nlp.NewContextExtractor(log)
	resolver := usecase.NewBookingResolver(bookingRepo, log)

	var parser usecase.SlotParser
	switch cfg.ExtractorMode {
	case config.ExtractorLLM:
		log.Info("Using LLM slot extraction", "model", cfg.OpenAIModel)
		parser = llm.NewOpenAIExtractor(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel, slotExtractor, log)
	default:
		parser = usecase.NewRulesParser(slotExtractor)
	}

	assistant := usecase.NewAssistant(bookingRepo, calendarRepo, parser, contextExtractor, resolver, m, log)
	chatHandler := httpapi.NewChatHandler(assistant, conversationRepo, cfg.HistoryLimit, log)

	// Set up HTTP server
	mux := http.NewServeMux()
	mux.Handle("/chat", chatHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", httpapi.HealthHandler)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	cancel()

	// Disconnect from MongoDB
	if err := mongoClient.Disconnect(context.Background()); err != nil {
		log.Error("MongoDB disconnect error", "error", err)
	}

	log.Info("Calendar Assistant Service stopped")
}
