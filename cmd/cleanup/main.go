package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/qs3c/sheetsync_server/config"
	"github.com/qs3c/sheetsync_server/internal/database"
	"github.com/qs3c/sheetsync_server/internal/pkg/cron"
	"github.com/qs3c/sheetsync_server/internal/pkg/logger"
	"github.com/qs3c/sheetsync_server/internal/repository"
	"github.com/qs3c/sheetsync_server/internal/service"
)

var dryRun = flag.Bool("dry-run", true, "Dry run mode, only count billing cycles due for reset")

// 手动补跑计费周期重置，用于服务长时间停机后
func main() {
	flag.Parse()
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

	db, err := database.NewDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	profileRepo := repository.NewProfileRepository(db)
	usageRepo := repository.NewUsageLogRepository(db)
	quotaService := service.NewQuotaService(db, profileRepo, usageRepo, cfg)

	log.Info().Bool("dry_run", *dryRun).Msg("starting billing cycle rollover")

	if *dryRun {
		n, err := quotaService.PendingRollovers(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("count expired billing cycles")
		}
		log.Info().Int64("profiles", n).Msg("dry run mode, nothing reset; run with -dry-run=false to apply")
		return
	}

	n, err := cron.NewService(quotaService, 0).RunNow(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("rollover billing cycles")
	}
	log.Info().Int64("profiles", n).Msg("billing cycles rolled over")
}
