package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/qs3c/sheetsync_server/config"
	"github.com/qs3c/sheetsync_server/internal/api"
	"github.com/qs3c/sheetsync_server/internal/api/handler"
	"github.com/qs3c/sheetsync_server/internal/database"
	"github.com/qs3c/sheetsync_server/internal/pkg/cron"
	"github.com/qs3c/sheetsync_server/internal/pkg/keycipher"
	"github.com/qs3c/sheetsync_server/internal/pkg/logger"
	"github.com/qs3c/sheetsync_server/internal/pkg/oauth"
	"github.com/qs3c/sheetsync_server/internal/pkg/pubsub"
	"github.com/qs3c/sheetsync_server/internal/pkg/ws"
	"github.com/qs3c/sheetsync_server/internal/repository"
	"github.com/qs3c/sheetsync_server/internal/service"
)

func main() {
	// .env 不存在时忽略
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Server.Mode, cfg.Log.Level)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	// 初始化数据库
	db, err := database.NewDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}
	log.Info().Str("driver", cfg.Database.Driver).Msg("database connected")

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("connect redis")
	}
	log.Info().Msg("redis connected")

	cipher, err := keycipher.New(cfg.Encryption.Secret)
	if err != nil {
		log.Fatal().Err(err).Msg("init key cipher")
	}

	// 初始化 Repository
	profileRepo := repository.NewProfileRepository(db)
	apiKeyRepo := repository.NewAPIKeyRepository(db)
	usageRepo := repository.NewUsageLogRepository(db)

	// 初始化 Service
	publisher := pubsub.NewPublisher(rdb)
	google := oauth.NewGoogleOAuth(
		cfg.OAuth.Google.ClientID,
		cfg.OAuth.Google.ClientSecret,
		cfg.OAuth.Google.RedirectURI,
		cfg.OAuth.Google.UserInfoURL,
	)

	profileService := service.NewProfileService(profileRepo, apiKeyRepo, cfg)
	quotaService := service.NewQuotaService(db, profileRepo, usageRepo, cfg)
	usageService := service.NewUsageService(usageRepo)
	apiKeyService := service.NewAPIKeyService(apiKeyRepo, profileRepo, cipher)
	connectTokenService := service.NewConnectTokenService(profileRepo)
	addonService := service.NewAddonService(profileRepo, quotaService, apiKeyService, publisher)
	authService := service.NewAuthService(profileService, oauth.NewStateStore(rdb), google, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 用量变化经 Redis 转发到本实例的 WebSocket 连接
	wsHub := ws.NewHub()
	subscriber := pubsub.NewSubscriber(rdb)
	go func() {
		err := subscriber.Subscribe(ctx, func(msg *pubsub.UsageMessage) {
			if err := wsHub.SendToUser(msg.UserID, &ws.Message{Type: msg.Type, Data: msg}); err != nil {
				log.Warn().Err(err).Str("user_id", msg.UserID).Msg("forward usage update failed")
			}
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("usage subscriber stopped")
		}
	}()

	rollover := cron.NewService(quotaService, cron.DefaultRolloverInterval)
	rollover.Start()

	// 初始化 Handler
	router := api.NewRouter(
		handler.NewAuthHandler(authService),
		handler.NewUserHandler(profileService, quotaService, usageService),
		handler.NewAPIKeyHandler(apiKeyService),
		handler.NewConnectTokenHandler(connectTokenService),
		handler.NewAddonHandler(addonService),
		handler.NewWebSocketHandler(wsHub, cfg.JWT.Secret, cfg.CORS.AllowedOrigins),
		handler.NewHealthHandler(db, rdb),
		cfg,
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// 监听退出信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Info().Msg("received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}

	rollover.Stop()
	cancel()

	if err := rdb.Close(); err != nil {
		log.Warn().Err(err).Msg("close redis")
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	log.Info().Msg("server stopped")
}
