package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"art-seeder/config"
	"art-seeder/platform"
	"art-seeder/providers/artsy"
	"art-seeder/services"
	"art-seeder/storage"
)

func apiKeyAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.APISecretKey == "" {
			c.Next()
			return
		}
		apiKey := c.GetHeader("X-API-KEY")
		if apiKey != cfg.APISecretKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid API Key"})
			return
		}
		c.Next()
	}
}

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	// Läufe überleben einzelne Requests, enden aber mit dem Prozess
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sinks, runStore, err := storage.Sinks(cfg, logging)
	if err != nil {
		logging.Fatal("Report sinks setup failed", zap.Error(err))
	}

	normalizer := services.NewFieldNormalizer(logging, services.NormalizerOptions{
		EmailDomain:    cfg.EmailDomain,
		PaymentContact: cfg.PaymentContact,
		EventWindow:    cfg.EventWindow(),
	})
	migration := services.NewMigrationService(
		artsy.NewFetcher(cfg, logging),
		platform.NewClient(cfg, logging),
		normalizer,
		services.OptionsFromConfig(cfg),
		logging,
		sinks...,
	)
	runner := services.NewRunner(migration, logging)

	// Setup Router
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(apiKeyAuthMiddleware(cfg))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	setupRunRoutes(ctx, router, runner, runStore, logging)

	// Setup Cron
	if cfg.CronSchedule != "" {
		cronScheduler := cron.New()
		_, err := cronScheduler.AddFunc(cfg.CronSchedule, func() {
			logging.Info("Running scheduled migration...")
			report, err := runner.RunNow(ctx)
			switch {
			case errors.Is(err, services.ErrRunActive):
				logging.Info("Migration läuft bereits, Cron-Lauf übersprungen")
			case err != nil:
				logging.Error("Cron job failed", zap.Error(err))
			default:
				logging.Info("Cron job completed", zap.String("run_id", report.RunID))
			}
		})
		if err != nil {
			logging.Fatal("Invalid CRON_SCHEDULE", zap.String("schedule", cfg.CronSchedule), zap.Error(err))
		}
		cronScheduler.Start()
		defer cronScheduler.Stop()
	}

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.Fatal("Failed to run server", zap.Error(err))
	}
	runner.Wait()
}

func setupRunRoutes(ctx context.Context, router *gin.Engine, runner *services.Runner, store *storage.RunStore, log *zap.Logger) {
	rg := router.Group("/runs")

	// Startet einen Lauf im Hintergrund
	rg.POST("", func(c *gin.Context) {
		id, err := runner.Start(ctx)
		if errors.Is(err, services.ErrRunActive) {
			active, _ := runner.Active()
			c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "active_run_id": active})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"run_id": id})
	})

	rg.GET("", func(c *gin.Context) {
		active, running := runner.Active()
		if store == nil {
			c.JSON(http.StatusOK, gin.H{"active_run_id": active, "running": running, "runs": runner.Recent()})
			return
		}
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
		runs, err := store.List(c.Request.Context(), limit)
		if err != nil {
			log.Error("Database query for runs failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"active_run_id": active, "running": running, "runs": runs})
	})

	rg.GET("/:id", func(c *gin.Context) {
		id := c.Param("id")
		if active, ok := runner.Active(); ok && active == id {
			c.JSON(http.StatusOK, gin.H{"run_id": id, "status": "running"})
			return
		}
		if _, err := uuid.Parse(id); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
			return
		}
		if store == nil {
			report, ok := runner.Report(id)
			if !ok {
				c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
				return
			}
			c.JSON(http.StatusOK, report)
			return
		}
		run, err := store.Get(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
				return
			}
			log.Error("Database query for run failed", zap.String("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, run)
	})
}
