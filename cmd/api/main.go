package main

import (
	"context"
	"log"
	"time"

	"github.com/um8r/bridge-master-fyp-sub001/config"
	"github.com/um8r/bridge-master-fyp-sub001/internal/bootstrap"
	"github.com/um8r/bridge-master-fyp-sub001/internal/marketplace/agreement"
)

const serviceName = "bridgeit-marketplace"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	bootstrap.SetGinMode(cfg.App.Environment)

	redisClient, err := bootstrap.OpenRedis(context.Background(), bootstrap.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatalf("redis open: %v", err)
	}
	defer redisClient.Close()

	sessionRepo := agreement.NewSessionRepository(redisClient, time.Duration(cfg.Agreement.TTLMinutes)*time.Minute)
	sweeper := agreement.NewSweeper(sessionRepo)
	sweeper.Start()
	defer sweeper.Stop()

	r := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: serviceName,
		Cfg:         cfg,
		Redis:       redisClient,
	})

	log.Printf("%s v%s listening on :%s (upstream=%s)", serviceName, cfg.App.Version, cfg.Server.Port, cfg.Upstream.BaseURL)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
