package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/stemsi/exstem-paper/internal/client"
	"github.com/stemsi/exstem-paper/internal/config"
	"github.com/stemsi/exstem-paper/internal/database"
	"github.com/stemsi/exstem-paper/internal/handler"
	"github.com/stemsi/exstem-paper/internal/logger"
	"github.com/stemsi/exstem-paper/internal/middleware"
	"github.com/stemsi/exstem-paper/internal/repository"
	"github.com/stemsi/exstem-paper/internal/router"
	"github.com/stemsi/exstem-paper/internal/service"
	"github.com/stemsi/exstem-paper/internal/validator"
)

// questionTypeTTL is how long the question type catalogue stays cached.
const questionTypeTTL = 10 * time.Minute

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("api", cfg.APIBaseURL).
		Msg("Starting ExStem Paper")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── API Client ────────────────────────────────────────────────────
	api := client.New(cfg.APIBaseURL, cfg.APITimeout, log,
		client.WithOnUnauthorized(func(context.Context) {
			log.Info().Msg("API session expired, client must log in again")
		}),
	)

	// ─── Initialize Repositories ───────────────────────────────────────
	draftRepo := repository.NewDraftRepository(rdb, cfg.DraftTTL)
	questionTypeRepo := repository.NewQuestionTypeRepository(rdb, questionTypeTTL)

	// ─── Initialize Services ──────────────────────────────────────────
	questionTypeService := service.NewQuestionTypeService(api, questionTypeRepo, log)
	renderService := service.NewRenderService(cfg.PDFFontPath)
	paperService := service.NewPaperService(api, draftRepo, questionTypeService, renderService, log)
	templateService := service.NewTemplateService(api, paperService, log)
	catalogService := service.NewCatalogService(api)

	if cfg.PDFFontPath == "" {
		log.Warn().Msg("PDF_FONT_PATH not set, PDF rendering disabled")
	}

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Paper:    handler.NewPaperHandler(paperService, log),
		Section:  handler.NewSectionHandler(paperService, log),
		Question: handler.NewQuestionHandler(paperService, questionTypeService, log),
		Template: handler.NewTemplateHandler(templateService, log),
		Catalog:  handler.NewCatalogHandler(catalogService, log),
		Preview:  handler.NewPreviewHandler(paperService, draftRepo, log, cfg.AllowedOrigins),
	}

	var renderLimit *middleware.RateLimiter
	if cfg.RenderRate > 0 {
		renderLimit = middleware.NewRateLimiter(rdb, cfg.RenderRate, time.Minute, log)
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, renderLimit, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// Preview sockets are hijacked and not tracked by Shutdown; they close
	// with the process.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
