// Package config loads process configuration from the environment,
// following the teacher's godotenv-then-os.Getenv shape: a best-effort
// .env load, sane defaults for anything non-critical, and a log warning
// (never a fatal) for anything that disables one optional feature.
package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	HTTPAddress string
	BaseURL     string

	CerebrasKey     string
	CerebrasBaseURL string
	CerebrasModelID string
	TurnTimeout     time.Duration

	PostgresDSN string
	RedisAddr   string

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string

	StripeKey string

	WorkOSKey      string
	WorkOSClientID string

	SupabaseURL            string
	SupabaseServiceRoleKey string
	SupabaseCatalogBucket  string
}

// Load reads environment variables and returns Config with sane defaults.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Error loading .env file")
	}

	addr := envOr("HTTP_ADDRESS", ":8080")
	baseURL := os.Getenv("BASE_URL")

	cerebrasKey := os.Getenv("CEREBRAS_API_KEY")
	if cerebrasKey == "" {
		log.Println("Warning: CEREBRAS_API_KEY not set - LLM will not work")
	}
	cerebrasBaseURL := envOr("CEREBRAS_BASE_URL", "https://api.cerebras.ai/v1")
	cerebrasModel := envOr("CEREBRAS_MODEL_ID", "gpt-oss-120b")

	turnTimeout := 15 * time.Second
	if raw := os.Getenv("TURN_TIMEOUT_SECONDS"); raw != "" {
		if d, err := time.ParseDuration(raw + "s"); err == nil {
			turnTimeout = d
		}
	}

	postgresDSN := os.Getenv("POSTGRES_DSN")
	if postgresDSN == "" {
		log.Println("Warning: POSTGRES_DSN not set - tenant/persistence stores will not work")
	}

	redisAddr := envOr("REDIS_ADDR", "127.0.0.1:6379")

	twilioSID := os.Getenv("TWILIO_ACCOUNT_SID")
	twilioToken := os.Getenv("TWILIO_AUTH_TOKEN")
	twilioFrom := os.Getenv("TWILIO_FROM_NUMBER")
	if twilioSID == "" || twilioToken == "" {
		log.Println("Warning: TWILIO_ACCOUNT_SID/TWILIO_AUTH_TOKEN not set - Twilio webhooks and SMS confirmations will not work")
	}

	stripeKey := os.Getenv("STRIPE_API_KEY")
	if stripeKey == "" {
		log.Println("Warning: STRIPE_API_KEY not set - payment link generation will not work")
	}

	workOSKey := os.Getenv("WORKOS_API_KEY")
	workOSClientID := os.Getenv("WORKOS_CLIENT_ID")
	if workOSKey == "" || workOSClientID == "" {
		log.Println("Warning: WORKOS_API_KEY/WORKOS_CLIENT_ID not set - OAuth bootstrap will not work")
	}

	supabaseURL := os.Getenv("SUPABASE_URL")
	supabaseKey := os.Getenv("SUPABASE_SERVICE_ROLE_KEY")
	supabaseBucket := envOr("SUPABASE_CATALOG_BUCKET", "catalog-snapshots")
	if supabaseURL == "" || supabaseKey == "" {
		log.Println("Warning: SUPABASE_URL/SUPABASE_SERVICE_ROLE_KEY not set - catalog snapshot archiving will not work")
	}

	log.Printf("config: HTTP_ADDRESS=%s", addr)
	return Config{
		HTTPAddress: addr,
		BaseURL:     baseURL,

		CerebrasKey:     cerebrasKey,
		CerebrasBaseURL: cerebrasBaseURL,
		CerebrasModelID: cerebrasModel,
		TurnTimeout:     turnTimeout,

		PostgresDSN: postgresDSN,
		RedisAddr:   redisAddr,

		TwilioAccountSID: twilioSID,
		TwilioAuthToken:  twilioToken,
		TwilioFromNumber: twilioFrom,

		StripeKey: stripeKey,

		WorkOSKey:      workOSKey,
		WorkOSClientID: workOSClientID,

		SupabaseURL:            supabaseURL,
		SupabaseServiceRoleKey: supabaseKey,
		SupabaseCatalogBucket:  supabaseBucket,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
