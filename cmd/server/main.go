package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/mathieu-neron/NichePulse/nichepulse-go/internal/config"
	"github.com/mathieu-neron/NichePulse/nichepulse-go/internal/db"
	"github.com/mathieu-neron/NichePulse/nichepulse-go/internal/handler"
	"github.com/mathieu-neron/NichePulse/nichepulse-go/internal/middleware"
	"github.com/mathieu-neron/NichePulse/nichepulse-go/internal/repository"
	"github.com/mathieu-neron/NichePulse/nichepulse-go/internal/router"
	"github.com/mathieu-neron/NichePulse/nichepulse-go/internal/service"
)

const analysisInterval = time.Hour

func main() {
	cfg := config.Load()

	middleware.InitLogger(cfg.LogLevel, "nichepulse-api")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()

	cache := service.NewCacheService(cfg.RedisURL)
	defer cache.Close()

	// Repositories
	videoRepo := repository.NewVideoRepo(pool)
	channelRepo := repository.NewChannelRepo(pool)
	nicheRepo := repository.NewNicheRepo(pool)
	userRepo := repository.NewUserRepo(pool)

	// Core services
	metricsSvc := service.NewMetricsService()
	nicheSvc := service.NewNicheService()
	opportunitySvc := service.NewOpportunityService()
	filterSvc := service.NewFilterService()
	analysisSvc := service.NewAnalysisService(metricsSvc, nicheSvc, opportunitySvc, filterSvc, videoRepo, channelRepo, nicheRepo)

	keywordSvc := service.NewKeywordService()
	visionSvc := service.NewVisionService(cfg.VisionAPIURL, cfg.VisionAPIKey, cfg.VisionModel)
	classifierSvc := service.NewClassifierService(cache, keywordSvc, visionSvc)

	channelSvc := service.NewChannelService(channelRepo, cache)
	syncSvc := service.NewSyncService(nicheRepo)

	// Quota counters live in Redis; fall back to an in-process store so the
	// status endpoint keeps working without it.
	limits := map[string]int64{
		service.FeatureClassification: cfg.ClassifyDailyLimit,
		service.FeatureNicheAnalysis:  cfg.AnalysisDailyLimit,
	}
	var quotaSvc *service.QuotaService
	if cache.Client() != nil {
		quotaSvc = service.NewQuotaService(cache, userRepo, cfg.QuotaTZOffsetHours, limits)
	} else {
		quotaSvc = service.NewQuotaService(service.NewMemoryQuotaStore(), userRepo, cfg.QuotaTZOffsetHours, limits)
	}

	handler.InitMetrics(pool)

	// Background workers
	metricWorker := service.NewMetricWorker(pool, metricsSvc, videoRepo, channelRepo, cache)
	go metricWorker.Start(ctx)

	analysisWorker := service.NewAnalysisWorker(analysisSvc, analysisInterval)
	go analysisWorker.Start(ctx)

	app := fiber.New(fiber.Config{
		AppName:      "NichePulse API",
		ServerHeader: "NichePulse",
	})

	h := &router.Handlers{
		Analysis: handler.NewAnalysisHandler(analysisSvc, filterSvc, quotaSvc),
		Classify: handler.NewClassifyHandler(classifierSvc, quotaSvc),
		Quota:    handler.NewQuotaHandler(quotaSvc),
		Channel:  handler.NewChannelHandler(channelSvc),
		Sync:     handler.NewSyncHandler(syncSvc),
		Stats:    handler.NewStatsHandler(videoRepo),
		Health:   handler.NewHealthHandler(pool, cache.Client()),
	}
	router.Setup(app, h, cfg.CORSOrigins)

	go func() {
		<-ctx.Done()
		log.Println("shutdown signal received")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("shutdown error: %v", err)
		}
	}()

	log.Printf("NichePulse Go backend starting on :%s (env=%s)", cfg.Port, cfg.Environment)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
