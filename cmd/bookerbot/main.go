package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ozfortress/bookerbot/internal/bot"
	"github.com/ozfortress/bookerbot/internal/config"
	"github.com/ozfortress/bookerbot/internal/demos"
	"github.com/ozfortress/bookerbot/internal/discord"
	"github.com/ozfortress/bookerbot/internal/health"
	"github.com/ozfortress/bookerbot/internal/logger"
	"github.com/ozfortress/bookerbot/internal/members"
	"github.com/ozfortress/bookerbot/internal/ssc"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config.yaml")
	flag.Parse()

	// до загрузки конфига пишем с уровнем по умолчанию
	logger.Init("info", "text")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	api := ssc.NewFromConf(ssc.Conf{
		Endpoint: cfg.SSC.Endpoint,
		Key:      cfg.SSC.Key,
		Timeout:  cfg.SSC.Timeout,
	})

	links, err := demos.New(cfg.SSC.DemoRootPath, cfg.SSC.Client)
	if err != nil {
		logger.Fatalf("demo links: %v", err)
	}

	dc := discord.New(discord.Config{
		Token:      cfg.Discord.Token,
		Intents:    cfg.Discord.Intents,
		GatewayURL: cfg.Discord.GatewayURL,
		APIURL:     cfg.Discord.APIURL,
	})

	b := bot.New(api, dc, members.NewMatcher(dc, members.DefaultMargin), links, bot.Options{
		Channels:     cfg.Discord.Channels,
		BookingHours: cfg.Booking.Hours,
		PollInterval: cfg.Discord.PollInterval,
	})
	b.Attach(dc)

	ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals...)
	defer stop()

	if err := b.Start(ctx); err != nil {
		logger.Fatalf("start bot: %v", err)
	}

	var hs *health.Server
	if cfg.HealthAddr != "" {
		gin.SetMode(gin.ReleaseMode)
		hs = health.NewServer(cfg.HealthAddr, health.NewHandler(dc.IsConnected))
		hs.Start()
	}

	if err := dc.Connect(ctx); err != nil {
		b.Stop()
		logger.Fatalf("connect to discord: %v", err)
	}

	logger.Infof("running… press Ctrl+C to stop")

	exitCode := 0
	select {
	case <-ctx.Done():
		logger.Infof("shutting down...")
	case <-dc.Done():
		// шлюз сдался сам (невалидный токен, запрещённые intents)
		logger.Errorf("discord gateway closed, exiting")
		exitCode = 1
	}

	b.Stop()
	dc.Disconnect()

	if hs != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := hs.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("health endpoint shutdown")
		}
		cancel()
	}

	stop()
	os.Exit(exitCode)
}
