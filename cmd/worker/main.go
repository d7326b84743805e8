package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/oraclewa/oraclewa/internal/core/antiban"
	"github.com/oraclewa/oraclewa/internal/core/gateway"
	"github.com/oraclewa/oraclewa/internal/core/queue"
	"github.com/oraclewa/oraclewa/internal/modules/recovery/models"
	"github.com/oraclewa/oraclewa/internal/modules/recovery/repositories"
	"github.com/oraclewa/oraclewa/internal/shared/config"
	"github.com/oraclewa/oraclewa/internal/shared/database"
	"github.com/oraclewa/oraclewa/internal/shared/utils"
)

func main() {
	cfg := config.LoadConfig()
	utils.InitLogger(cfg.Env)
	log.Println("🚀 Starting oraclewa-worker")

	db := database.NewDB(cfg.DatabaseURL)
	defer db.Close()

	instanceRepo := repositories.NewInstanceRepo(db.GORM)
	logRepo := repositories.NewMessageLogRepo(db.GORM)

	// Build the gateway pool from active instances
	instances, err := instanceRepo.GetActive()
	if err != nil {
		log.Fatalf("❌ Failed to load instances: %v", err)
	}
	if len(instances) == 0 {
		log.Fatal("❌ No active instances configured")
	}

	providers := make([]gateway.Provider, 0, len(instances))
	for _, inst := range instances {
		provider, err := providerFor(cfg, inst)
		if err != nil {
			log.Printf("⚠️ Skipping instance %s: %v", inst.Name, err)
			continue
		}
		providers = append(providers, provider)
		log.Printf("📱 Instance registered: %s (%s)", inst.Name, inst.Provider)
	}

	pool := gateway.NewPool(providers, true)

	// Anti-ban pacing
	delayCfg := antiban.DefaultConfig()
	delayCfg.MinDelay = time.Duration(cfg.MinDelaySeconds) * time.Second
	delays := antiban.NewDelayManager(delayCfg)

	// Queue consumer
	rmq, err := queue.NewRabbitMQ(cfg.AMQPURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to RabbitMQ: %v", err)
	}
	defer rmq.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Periodic instance health probe
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@every 1m", func() {
		probeCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		pool.CheckAll(probeCtx)
	}); err != nil {
		log.Fatalf("❌ Failed to schedule health probe: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	worker := queue.NewWorker(rmq, pool, delays, logRepo)
	if err := worker.Start(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("❌ Worker stopped: %v", err)
	}
	log.Println("👋 Worker shut down")
}

// providerFor builds one gateway provider from an instance record,
// falling back to the global Evolution credentials when the record
// carries none of its own.
func providerFor(cfg *config.Config, inst models.Instance) (gateway.Provider, error) {
	pc := &gateway.ProviderConfig{
		Type:          gateway.ProviderType(inst.Provider),
		BaseURL:       inst.BaseURL,
		APIKey:        inst.APIKey,
		InstanceName:  inst.Name,
		ZAPIBaseURL:   cfg.ZAPIBaseURL,
		InstanceID:    inst.InstanceID,
		InstanceToken: inst.InstanceToken,
	}
	if pc.BaseURL == "" {
		pc.BaseURL = cfg.EvolutionAPIURL
	}
	if pc.APIKey == "" {
		pc.APIKey = cfg.EvolutionAPIKey
	}
	return gateway.NewProvider(pc)
}
