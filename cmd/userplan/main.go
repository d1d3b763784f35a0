package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/qs3c/sheetsync_server/config"
	"github.com/qs3c/sheetsync_server/internal/database"
	"github.com/qs3c/sheetsync_server/internal/pkg/logger"
	"github.com/qs3c/sheetsync_server/internal/repository"
	"github.com/qs3c/sheetsync_server/internal/service"
)

var (
	userID = flag.String("id", "", "Profile ID")
	email  = flag.String("email", "", "Profile email, used when -id is empty")
	plan   = flag.String("plan", "", "New plan: free, pro, team or enterprise")
)

func main() {
	flag.Parse()
	if *plan == "" || (*userID == "" && *email == "") {
		fmt.Fprintln(os.Stderr, "usage: userplan (-id ID | -email EMAIL) -plan PLAN")
		flag.PrintDefaults()
		os.Exit(2)
	}
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

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	profileRepo := repository.NewProfileRepository(db)
	usageRepo := repository.NewUsageLogRepository(db)
	quotaService := service.NewQuotaService(db, profileRepo, usageRepo, cfg)

	id := *userID
	if id == "" {
		p, err := profileRepo.GetByEmail(ctx, *email)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				log.Fatal().Str("email", *email).Msg("profile not found")
			}
			log.Fatal().Err(err).Msg("get profile by email")
		}
		id = p.ID
	}

	profile, err := quotaService.SetPlan(ctx, id, *plan)
	if err != nil {
		log.Fatal().Err(err).Str("user_id", id).Msg("set plan")
	}

	log.Info().
		Str("user_id", profile.ID).
		Str("email", profile.Email).
		Str("plan", profile.Plan).
		Int("requests_limit", profile.RequestsLimit).
		Int("requests_used", profile.RequestsUsed).
		Msg("plan updated")
}
