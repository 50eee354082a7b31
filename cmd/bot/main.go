package main

import (
	"flag"

	"github.com/redis/go-redis/v9"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/lektion/internal/app"
	"github.com/shrimpsizemoose/lektion/internal/bot"
	"github.com/shrimpsizemoose/lektion/internal/catalog"
	"github.com/shrimpsizemoose/lektion/internal/ledger"
)

func main() {
	var configPath = flag.String("config", "config.toml", "Path to config file")
	flag.Parse()

	cfg, err := bot.ReadConfig(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to load config: %v", err)
	}

	scoreStore, err := app.NewStore(cfg.Database.DSN, cfg.Database.MigrationsDir)
	if err != nil {
		logger.Error.Fatalf("Failed to create store: %v", err)
	}
	defer scoreStore.Close()

	cat := catalog.New(scoreStore)
	ldgr := ledger.New(scoreStore, cat, cfg.Report.AttendanceCriterion, cfg.LessonWeekday())

	opt, err := redis.ParseURL(cfg.Auth.RedisURL)
	if err != nil {
		logger.Error.Fatalf("Failed to parse redis URL: %v", err)
	}
	tokens := app.NewTokenManager(redis.NewClient(opt))
	defer tokens.Close()

	b, err := bot.New(cfg, ldgr, tokens)
	if err != nil {
		logger.Error.Fatalf("Failed to create bot: %v", err)
	}

	logger.Info.Println("Starting lektion bot")
	if err := b.Start(); err != nil {
		logger.Error.Fatalf("Bot failed: %v", err)
	}
}
