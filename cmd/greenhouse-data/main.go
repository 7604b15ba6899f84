package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"greenhouse-data/internal/config"
	"greenhouse-data/internal/consumer"
	httpapi "greenhouse-data/internal/http"
	"greenhouse-data/internal/realtime"
	"greenhouse-data/internal/repository"
	"greenhouse-data/internal/service"
	"greenhouse-data/pkg/database"
	"greenhouse-data/pkg/logger"
	"greenhouse-data/pkg/mqtt"
	redispkg "greenhouse-data/pkg/redis"

	"go.uber.org/zap"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化Logger
	zlog, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "greenhouse-data")
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	zlog.Info("Starting greenhouse-data service",
		zap.String("http_addr", cfg.HTTP.Addr),
		zap.String("db_host", cfg.Database.Host),
		zap.String("redis_addr", cfg.Redis.Addr),
		zap.Bool("mqtt_enabled", cfg.MQTT.Enabled),
	)

	// 数据库连接
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		zlog.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Redis（实时推送通道，连接失败时降级为仅日志）
	var publisher realtime.Publisher
	redisClient := redispkg.NewRedisClient(&cfg.Redis.Config)
	if err := redispkg.Ping(context.Background(), redisClient); err != nil {
		zlog.Warn("Redis unavailable, realtime publishing disabled", zap.Error(err))
		redisClient.Close()
		redisClient = nil
	} else {
		publisher = realtime.NewRedisPublisher(redisClient, cfg.Redis.ReadingsStream, zlog)
		defer redisClient.Close()
	}

	// Repository
	readingsRepo := repository.NewPostgresReadingsRepository(db)
	devicesRepo := repository.NewPostgresDevicesRepo(db)
	alertsRepo := repository.NewPostgresAlertSettingsRepo(db)
	profilesRepo := repository.NewPostgresProfilesRepo(db)
	zonesRepo := repository.NewPostgresZonesRepo(db)
	plantsRepo := repository.NewPostgresPlantsRepo(db)
	schedulesRepo := repository.NewPostgresSchedulesRepo(db)

	// 邮件通知（未配置 API Key 时不发邮件，只记日志）
	var notifier service.NotificationService
	if cfg.Resend.APIKey != "" {
		sender := service.NewResendClient(&cfg.Resend, zlog)
		notifier = service.NewNotificationService(sender, zlog)
	} else {
		zlog.Warn("RESEND_API_KEY not set, email notifications disabled")
	}

	// Service
	ingestService := service.NewIngestService(
		readingsRepo, devicesRepo, alertsRepo, profilesRepo,
		notifier, publisher, zlog,
	)
	deviceService := service.NewDeviceService(devicesRepo, zlog)
	alertService := service.NewAlertSettingService(alertsRepo, zlog)
	exportService := service.NewExportService(readingsRepo)

	// Handler + 路由
	router := httpapi.NewRouter(zlog)
	router.RegisterIngestRoutes(
		httpapi.NewIngestHandler(ingestService, zlog),
		httpapi.NewNotificationHandler(notifier, zlog),
	)
	router.RegisterAPIRoutes(
		httpapi.NewDeviceHandler(deviceService, zlog),
		httpapi.NewAlertSettingsHandler(alertService, zlog),
		httpapi.NewGreenhouseHandler(zonesRepo, plantsRepo, schedulesRepo, zlog),
		httpapi.NewReadingsHandler(readingsRepo, exportService, zlog),
	)
	router.RegisterHealthRoutes()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 可选的MQTT网关通道
	var mqttConsumer *consumer.MQTTConsumer
	if cfg.MQTT.Enabled {
		mqttClient, err := mqtt.NewClient(&mqtt.Config{
			Broker:   cfg.MQTT.Broker,
			ClientID: cfg.MQTT.ClientID,
			Username: cfg.MQTT.Username,
			Password: cfg.MQTT.Password,
			QoS:      cfg.MQTT.QoS,
		}, zlog)
		if err != nil {
			zlog.Fatal("Failed to connect to MQTT broker", zap.Error(err))
		}
		defer mqttClient.Disconnect()

		mqttConsumer = consumer.NewMQTTConsumer(cfg, mqttClient, ingestService, zlog)
		go func() {
			if err := mqttConsumer.Start(ctx); err != nil {
				zlog.Fatal("Failed to start MQTT consumer", zap.Error(err))
			}
		}()
	}

	// HTTP服务
	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	go func() {
		zlog.Info("HTTP server listening", zap.String("addr", cfg.HTTP.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 等待中断信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	zlog.Info("Received signal, shutting down", zap.String("signal", sig.String()))

	// 优雅关闭
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error("HTTP server shutdown failed", zap.Error(err))
	}
	if mqttConsumer != nil {
		if err := mqttConsumer.Stop(shutdownCtx); err != nil {
			zlog.Error("MQTT consumer shutdown failed", zap.Error(err))
		}
	}
	cancel()

	zlog.Info("greenhouse-data service stopped")
}
