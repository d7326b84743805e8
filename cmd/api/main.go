package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"

	"github.com/oraclewa/oraclewa/internal/core/queue"
	"github.com/oraclewa/oraclewa/internal/modules/recovery/handlers"
	"github.com/oraclewa/oraclewa/internal/modules/recovery/repositories"
	"github.com/oraclewa/oraclewa/internal/modules/recovery/services"
	"github.com/oraclewa/oraclewa/internal/shared/config"
	"github.com/oraclewa/oraclewa/internal/shared/database"
	"github.com/oraclewa/oraclewa/internal/shared/utils"
	"github.com/oraclewa/oraclewa/internal/template"
)

func main() {
	// Load config
	cfg := config.LoadConfig()
	utils.InitLogger(cfg.Env)
	log.Printf("🚀 Starting oraclewa-api on port %s", cfg.Port)

	// Init database
	db := database.NewDB(cfg.DatabaseURL)
	defer db.Close()

	// Init repositories
	clientRepo := repositories.NewClientRepo(db.GORM)
	templateRepo := repositories.NewTemplateRepo(db.GORM)
	logRepo := repositories.NewMessageLogRepo(db.GORM)
	instanceRepo := repositories.NewInstanceRepo(db.GORM)

	// Init template engine
	var provider template.VariantSetProvider
	switch cfg.TemplateSource {
	case "db":
		provider = templateRepo
	default:
		provider = template.NewFileProvider(cfg.ClientsDir)
	}

	store := template.NewStore(provider)
	if err := store.Reload(context.Background()); err != nil {
		log.Fatalf("❌ Failed to load variant sets: %v", err)
	}

	selector := template.NewSelector(nil)
	resolver, err := template.NewResolver(store, selector, nil, cfg.VariationProbability)
	if err != nil {
		log.Fatalf("❌ Failed to build resolver: %v", err)
	}
	engine := template.NewEngine(store, resolver, template.NewRenderer())

	// Init queue producer
	rmq, err := queue.NewRabbitMQ(cfg.AMQPURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to RabbitMQ: %v", err)
	}
	defer rmq.Close()
	producer := queue.NewProducer(rmq)

	// Init services and handlers
	webhookService := services.NewWebhookService(clientRepo, logRepo, engine, producer)

	webhookHandler := handlers.NewWebhookHandler(webhookService)
	templateHandler := handlers.NewTemplateHandler(store, engine)
	clientHandler := handlers.NewClientHandler(clientRepo)
	instanceHandler := handlers.NewInstanceHandler(instanceRepo)
	messageHandler := handlers.NewMessageHandler(logRepo)
	healthHandler := handlers.NewHealthHandler(db)

	// Scheduled variant set hot reload
	scheduler := cron.New(cron.WithSeconds())
	if _, err := scheduler.AddFunc(cfg.ReloadCron, func() {
		if err := engine.Reload(context.Background()); err != nil {
			log.Printf("⚠️ Scheduled template reload failed: %v", err)
		}
	}); err != nil {
		log.Fatalf("❌ Invalid reload cron expression %q: %v", cfg.ReloadCron, err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Init Fiber app
	app := fiber.New(fiber.Config{
		AppName: "OracleWA API",
	})

	// Middleware
	app.Use(cors.New())

	// Health check and metrics
	app.Get("/health", healthHandler.Check)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Webhook ingestion
	app.Post("/webhook/:client/:event", webhookHandler.HandleEvent)

	// Template management
	app.Get("/templates", templateHandler.ListSets)
	app.Post("/templates/reload", templateHandler.Reload)
	app.Post("/templates/:client/:event/preview", templateHandler.Preview)

	// Client routes
	app.Get("/clients", clientHandler.GetActiveClients)
	app.Get("/clients/:slug", clientHandler.GetClientBySlug)
	app.Post("/clients", clientHandler.CreateClient)

	// Instance routes
	app.Get("/instances", instanceHandler.List)
	app.Get("/instances/:name/qr", instanceHandler.QRCode)
	app.Get("/instances/:name/health", instanceHandler.Health)

	// Message log
	app.Get("/messages", messageHandler.Recent)

	log.Fatal(app.Listen(":" + cfg.Port))
}
