package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pmp-reports/common/database"
	commonlogger "pmp-reports/common/logger"
	commonmqtt "pmp-reports/common/mqtt"
	commonredis "pmp-reports/common/redis"
	"pmp-reports/internal/config"
	"pmp-reports/internal/export"
	httpapi "pmp-reports/internal/http"
	reportsmqtt "pmp-reports/internal/mqtt"
	"pmp-reports/internal/repository"
	"pmp-reports/internal/service"
	"pmp-reports/internal/store"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger, err := commonlogger.NewLoggerWithOptions(commonlogger.Options{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		ServiceName: "pmp-reports",
		File:        cfg.Log.File,
	})
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	// Redis 可选：share cache 与 report events stream
	redisClient := commonredis.NewRedisClient(&cfg.Redis)
	opts := service.ReportServiceOptions{ShareOrigin: cfg.Reports.ShareOrigin}
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 2*time.Second)
	if err := commonredis.Ping(pingCtx, redisClient); err == nil {
		opts.ShareCache = store.NewShareCache(store.NewRedisKV(redisClient), cfg.Reports.ShareCacheTTL)
		opts.Events = service.NewStreamEventPublisher(redisClient, cfg.Reports.EventsStream, logger)
		logger.Info("Redis enabled for share cache and report events", zap.String("addr", cfg.Redis.Addr))
	} else {
		logger.Warn("Redis unavailable, share cache and events disabled", zap.Error(err))
	}
	pingCancel()

	var db *sql.DB
	if cfg.DBEnabled {
		if d, err := database.NewPostgresDB(&cfg.Database); err == nil {
			db = d
			logger.Info("DB enabled for pmp-reports")
		} else {
			logger.Warn("DB enabled but connection failed, falling back to memory repos", zap.Error(err))
		}
	}

	upstream := service.SectionClientOptions{
		BaseURL:    cfg.Projects.BaseURL,
		Token:      cfg.Projects.Token,
		Timeout:    cfg.Projects.FetchTimeout,
		RetryCount: cfg.Projects.RetryCount,
	}
	reportsRepo, projectsRepo := newRepositories(db, upstream, logger)

	sections := service.NewSectionClient(upstream, logger)
	builder := service.NewSnapshotBuilder(sections, cfg.Projects.FetchTimeout, logger)
	reportSvc := service.NewReportService(reportsRepo, projectsRepo, builder, opts, logger)

	router := httpapi.NewRouter(logger)
	router.RegisterHealthRoutes()
	reportsHandler := httpapi.NewReportsHandler(reportSvc, logger)
	if font, err := export.LoadPDFFont(cfg.Reports.PDFFontFile, cfg.Reports.PDFFontBoldFile); err != nil {
		logger.Warn("PDF font unavailable, using built-in font", zap.Error(err))
	} else {
		reportsHandler.SetPDFFont(font)
	}
	router.RegisterReportRoutes(reportsHandler)
	router.RegisterShareRoutes(httpapi.NewShareHandler(reportSvc, logger))

	var mqttClient *commonmqtt.Client
	if cfg.MQTT.Enabled {
		c, err := commonmqtt.NewClient(&cfg.MQTT.Client, logger)
		if err != nil {
			logger.Warn("MQTT enabled but connection failed, generate trigger disabled", zap.Error(err))
		} else {
			broker := reportsmqtt.NewGenerateBroker(reportSvc, 0, logger)
			if err := c.Subscribe(cfg.MQTT.Topic, cfg.MQTT.Client.QoS, broker.HandleMessage); err != nil {
				logger.Warn("MQTT subscribe failed", zap.String("topic", cfg.MQTT.Topic), zap.Error(err))
			}
			mqttClient = c
		}
	}

	srv := service.NewServer(cfg.HTTP.Addr, router, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("Shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		logger.Error("HTTP server stopped", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	if mqttClient != nil {
		_ = mqttClient.Unsubscribe(cfg.MQTT.Topic)
		mqttClient.Disconnect()
	}
	_ = commonredis.Close(redisClient)
	if db != nil {
		_ = database.Close(db)
	}
}

// newRepositories Postgres when db is set; otherwise memory reports with the
// project directory read from the panel API
func newRepositories(db *sql.DB, upstream service.SectionClientOptions, logger *zap.Logger) (repository.ReportsRepository, repository.ProjectsRepository) {
	if db != nil {
		return repository.NewPostgresReportsRepository(db), repository.NewPostgresProjectsRepository(db)
	}
	// DB 未就绪：报告存内存，重启即丢失；项目信息走面板 API
	projects := service.NewProjectDirectoryClient(upstream, logger)
	return repository.NewMemoryReportsRepo(projects), projects
}
