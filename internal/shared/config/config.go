package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	AMQPURL     string
	Port        string
	Env         string

	// Template engine
	TemplateSource       string  // "file" or "db"
	ClientsDir           string  // root of per-client template files
	VariationProbability float64 // chance of using a client variation over the default
	ReloadCron           string  // cron expression for variant set hot reload

	// Gateway defaults (per-instance credentials live in the instances table)
	EvolutionAPIURL string
	EvolutionAPIKey string
	ZAPIBaseURL     string

	// Anti-ban
	MinDelaySeconds int
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ .env file not found, using system environment variables")
	}

	cfg := &Config{
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		AMQPURL:              os.Getenv("AMQP_URL"),
		Port:                 os.Getenv("PORT"),
		Env:                  os.Getenv("ENV"),
		TemplateSource:       os.Getenv("TEMPLATE_SOURCE"),
		ClientsDir:           os.Getenv("CLIENTS_DIR"),
		VariationProbability: envFloat("VARIATION_PROBABILITY", 0.7),
		ReloadCron:           os.Getenv("TEMPLATE_RELOAD_CRON"),
		EvolutionAPIURL:      os.Getenv("EVOLUTION_API_URL"),
		EvolutionAPIKey:      os.Getenv("EVOLUTION_API_KEY"),
		ZAPIBaseURL:          os.Getenv("ZAPI_BASE_URL"),
		MinDelaySeconds:      envInt("ANTIBAN_MIN_DELAY_SECONDS", 90),
	}

	// Default values
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.TemplateSource == "" {
		cfg.TemplateSource = "file"
	}
	if cfg.ClientsDir == "" {
		cfg.ClientsDir = "clients"
	}
	if cfg.ReloadCron == "" {
		cfg.ReloadCron = "0 */5 * * * *" // every 5 minutes
	}
	if cfg.ZAPIBaseURL == "" {
		cfg.ZAPIBaseURL = "https://api.z-api.io"
	}

	return cfg
}

func envFloat(key string, def float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("⚠️ Invalid %s=%q, using default %.2f", key, raw, def)
		return def
	}
	return v
}

func envInt(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("⚠️ Invalid %s=%q, using default %d", key, raw, def)
		return def
	}
	return v
}
