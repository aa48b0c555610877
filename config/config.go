package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config enthält alle Konfigurationsparameter aus Umgebungsvariablen.
type Config struct {
	// Optionale Report-Datenbank. Ohne DB_HOST werden Läufe nur geloggt.
	DBHost     string `envconfig:"DB_HOST"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME" default:"art_seeder"`

	HTTPPort     string `envconfig:"HTTP_PORT" default:"4242"`
	APISecretKey string `envconfig:"API_SECRET_KEY"`
	CronSchedule string `envconfig:"CRON_SCHEDULE"`

	// Quellkatalog (Artsy)
	ArtsyBaseURL       string  `envconfig:"ARTSY_BASE_URL" default:"https://api.artsy.net"`
	ArtsyGraphQLURL    string  `envconfig:"ARTSY_GRAPHQL_URL" default:"https://metaphysics-production.artsy.net/v2"`
	ArtsyClientID      string  `envconfig:"ARTSY_CLIENT_ID" required:"true"`
	ArtsyClientSecret  string  `envconfig:"ARTSY_CLIENT_SECRET" required:"true"`
	ArtsyRatePerSecond float64 `envconfig:"ARTSY_RATE_PER_SECOND" default:"5"`

	// Zielplattform
	PlatformBaseURL    string `envconfig:"PLATFORM_BASE_URL" required:"true"`
	PlatformUsername   string `envconfig:"PLATFORM_USERNAME" required:"true"`
	PlatformPassword   string `envconfig:"PLATFORM_PASSWORD" required:"true"`
	PlatformDryRun     bool   `envconfig:"PLATFORM_DRY_RUN" default:"false"`
	PlatformMaxRetries int    `envconfig:"PLATFORM_MAX_RETRIES" default:"3"`

	// Umfang eines Laufs (Obergrenzen, keine Garantien)
	ArtworkCount       int    `envconfig:"ARTWORK_COUNT" default:"20"`
	EventCount         int    `envconfig:"EVENT_COUNT" default:"20"`
	EventStatus        string `envconfig:"EVENT_STATUS" default:"upcoming"`
	PostCount          int    `envconfig:"POST_COUNT" default:"20"`
	UserCount          int    `envconfig:"USER_COUNT" default:"50"`
	CollabRequestCount int    `envconfig:"COLLAB_REQUEST_COUNT" default:"10"`
	BatchSize          int    `envconfig:"BATCH_SIZE" default:"500"`
	EventWindowDays    int    `envconfig:"EVENT_WINDOW_DAYS" default:"365"`
	Seed               int64  `envconfig:"SEED" default:"0"`

	EmailDomain    string `envconfig:"EMAIL_DOMAIN" default:"seed.example.com"`
	PaymentContact string `envconfig:"PAYMENT_CONTACT" default:"payments@example.com"`

	// Optionales Report-Archiv
	S3Key         string `envconfig:"S3_KEY"`
	S3Secret      string `envconfig:"S3_SECRET"`
	S3URL         string `envconfig:"S3_URL"`
	S3Region      string `envconfig:"S3_REGION" default:"eu-central-1"`
	S3Bucket      string `envconfig:"S3_BUCKET"`
	S3KeepReports int    `envconfig:"S3_KEEP_REPORTS" default:"10"`
}

// DSN gibt den Data Source Name für die PostgreSQL-Verbindung zurück.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// DatabaseEnabled meldet, ob eine Report-Datenbank konfiguriert ist.
func (c *Config) DatabaseEnabled() bool {
	return c.DBHost != ""
}

// ArchiveEnabled meldet, ob Reports nach S3 archiviert werden sollen.
func (c *Config) ArchiveEnabled() bool {
	return c.S3Bucket != "" && c.S3URL != ""
}

// EventWindow ist das erlaubte Zeitfenster um "jetzt" für Start- und Enddatum eines Events.
func (c *Config) EventWindow() time.Duration {
	return time.Duration(c.EventWindowDays) * 24 * time.Hour
}

// Validate prüft die Mengenangaben. Negative Werte sind Konfigurationsfehler.
func (c *Config) Validate() error {
	counts := []struct {
		name  string
		value int
	}{
		{"ARTWORK_COUNT", c.ArtworkCount},
		{"EVENT_COUNT", c.EventCount},
		{"POST_COUNT", c.PostCount},
		{"USER_COUNT", c.UserCount},
		{"COLLAB_REQUEST_COUNT", c.CollabRequestCount},
		{"EVENT_WINDOW_DAYS", c.EventWindowDays},
		{"S3_KEEP_REPORTS", c.S3KeepReports},
	}
	for _, cnt := range counts {
		if cnt.value < 0 {
			return fmt.Errorf("%s darf nicht negativ sein: %d", cnt.name, cnt.value)
		}
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("BATCH_SIZE muss positiv sein: %d", c.BatchSize)
	}
	return nil
}

// Load lädt die Konfiguration aus den Umgebungsvariablen.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
