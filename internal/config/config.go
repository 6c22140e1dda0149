package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type App struct {
	Port string `envconfig:"PORT" default:"3333"`
	Env  string `envconfig:"ENV" default:"dev"`

	// Firebase
	FirebaseDBURL          string `envconfig:"FIREBASE_DB_URL"`
	FirebaseCredentials    string `envconfig:"FIREBASE_CREDENTIALS" default:"./serviceAccountKey.json"`
	FirebaseServiceAccount string `envconfig:"FIREBASE_SERVICE_ACCOUNT_JSON"` // base64 encoded
	StoreBackend           string `envconfig:"STORE_BACKEND" default:"firebase"`

	// Gemini
	GeminiAPIKey     string `envconfig:"GEMINI_API_KEY"`
	GeminiBaseURL    string `envconfig:"GEMINI_BASE_URL" default:"https://generativelanguage.googleapis.com/v1beta"`
	TextModel        string `envconfig:"GEMINI_TEXT_MODEL" default:"gemini-3-flash-preview"`
	ImageModel       string `envconfig:"GEMINI_IMAGE_MODEL" default:"gemini-2.5-flash-image"`
	SpeechModel      string `envconfig:"GEMINI_SPEECH_MODEL" default:"gemini-2.5-flash-preview-tts"`
	VideoModel       string `envconfig:"GEMINI_VIDEO_MODEL" default:"veo-3.1-fast-generate-preview"`
	GeminiTimeoutSec int    `envconfig:"GEMINI_TIMEOUT_SEC" default:"90"`

	// Admin & payments
	AdminEmails []string `envconfig:"ADMIN_EMAILS"`
	UPIPayee    string   `envconfig:"UPI_PAYEE" default:"brandflow@okaxis"`

	// Audit ledger, optional
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// Observability
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	MetricsUser string `envconfig:"METRICS_USER"`
	MetricsPass string `envconfig:"METRICS_PASS"`
	PprofSecret string `envconfig:"PPROF_SECRET"`

	// Rate limiting
	RateLimitRPS   float64 `envconfig:"RATE_LIMIT_RPS" default:"5"`
	RateLimitBurst int     `envconfig:"RATE_LIMIT_BURST" default:"30"`

	// Workers
	ExpirySweepEnabled bool `envconfig:"EXPIRY_SWEEP_ENABLED" default:"false"`
}

// Load reads an optional .env file and then the process environment.
func Load() (App, error) {
	_ = godotenv.Load()

	var c App
	if err := envconfig.Process("", &c); err != nil {
		return c, err
	}

	for i, e := range c.AdminEmails {
		c.AdminEmails[i] = strings.ToLower(strings.TrimSpace(e))
	}
	return c, nil
}

func (c App) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

func (c App) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}
