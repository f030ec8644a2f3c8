package main

import (
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"linkvault/bot"
	"linkvault/internal/access"
	"linkvault/internal/config"
	"linkvault/internal/database"
	"linkvault/internal/http-server/api"
	"linkvault/internal/invite"
	"linkvault/lib/clock"
	"linkvault/lib/logger"
	"linkvault/lib/sl"
)

const logFileName = "linkvault.log"

func main() {
	configPath := flag.String("conf", "config.yml", "path to config file")
	logPath := flag.String("log", "/var/log/", "path to log file directory")
	flag.Parse()

	conf := config.MustLoad(*configPath)
	log := logger.SetupLogger(conf.Env, filepath.Join(*logPath, logFileName))
	log.Info("starting linkvault",
		slog.String("config", *configPath),
		slog.String("env", conf.Env),
		sl.Secret("bot_token", conf.Telegram.ApiKey),
		slog.Int64("owner_id", conf.Telegram.OwnerId),
	)

	db := database.NewMongoClient(conf)
	if db == nil {
		log.Error("mongo is disabled in config; nothing to serve")
		os.Exit(1)
	}
	if err := db.EnsureIndexes(); err != nil {
		log.Error("preparing database", sl.Err(err))
		os.Exit(1)
	}

	guard := access.NewGuard(conf.Telegram.OwnerId, conf.Telegram.AdminIds)
	clk := clock.System{}
	ttl := time.Duration(conf.Links.TTLMinutes) * time.Minute

	tgBot, err := bot.NewTgBot(conf.Telegram.ApiKey, db, db, guard, clk, log, bot.BotConfig{
		LinkTTL:  ttl,
		PageSize: conf.Telegram.PageSize,
	})
	if err != nil {
		log.Error("creating bot", sl.Err(err))
		os.Exit(1)
	}

	sweepInterval := time.Duration(conf.Links.SweepIntervalMinutes) * time.Minute
	sweeper := invite.NewSweeper(db, clk, sweepInterval, log)
	sweeper.Start()
	defer sweeper.Stop()

	go func() {
		if err := api.New(conf, log, db); err != nil {
			log.Error("api server stopped", sl.Err(err))
		}
	}()

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop
		log.Info("shutdown signal received")
		tgBot.Stop()
	}()

	if err = tgBot.Start(); err != nil {
		log.Error("bot stopped", sl.Err(err))
		os.Exit(1)
	}
	log.Info("linkvault stopped")
}
