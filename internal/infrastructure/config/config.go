package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig encapsulates all runtime configuration knobs.
type AppConfig struct {
	App      AppSettings
	HTTP     HTTPSettings
	Auth     AuthSettings
	Log      LogSettings
	Database DatabaseSettings
	Audit    AuditSettings
	SRI      SRISettings
}

type AppSettings struct {
	Name        string
	Version     string
	Environment string
}

type HTTPSettings struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type AuthSettings struct {
	Enabled     bool
	IssuerURI   string
	JWKSetURI   string
	ClockSkew   time.Duration
	BypassPaths []string
}

type LogSettings struct {
	Level string
}

type DatabaseSettings struct {
	Host            string
	Port            int
	Database        string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type AuditSettings struct {
	Enabled         bool
	LogRequestBody  bool
	LogResponseBody bool
	MaxBodySize     int
}

// SRISettings groups everything the SRI adapters need: endpoint base URLs
// and the retry/timeout policy for the web service calls.
type SRISettings struct {
	// CaptchaBaseURL serves captcha generation and validation.
	CaptchaBaseURL string
	// CatastroBaseURL serves taxpayer existence checks and record queries.
	CatastroBaseURL string
	// CedulaBaseURL serves national ID (cédula) lookups.
	CedulaBaseURL string
	// ReceptionURLTest / ReceptionURLProduction receive signed documents.
	ReceptionURLTest       string
	ReceptionURLProduction string
	// AuthorizationURLTest / AuthorizationURLProduction answer authorization requests.
	AuthorizationURLTest       string
	AuthorizationURLProduction string

	Service ServiceConfiguration
}

// ServiceConfiguration is the retry/timeout policy applied to SRI web
// service calls. It is validated at construction; an invalid configuration
// is rejected before any request is made.
type ServiceConfiguration struct {
	TimeoutSeconds    int `json:"timeoutSeconds"`
	MaxRetries        int `json:"maxRetries"`
	RetryDelaySeconds int `json:"retryDelaySeconds"`
}

// Validate enforces the configuration invariants: a positive timeout and
// non-negative retry settings.
func (c ServiceConfiguration) Validate() error {
	if c.TimeoutSeconds <= 0 {
		return errors.New("invalid service configuration: timeoutSeconds must be greater than 0")
	}
	if c.MaxRetries < 0 {
		return errors.New("invalid service configuration: maxRetries must not be negative")
	}
	if c.RetryDelaySeconds < 0 {
		return errors.New("invalid service configuration: retryDelaySeconds must not be negative")
	}
	return nil
}

// Timeout returns the per-request timeout as a duration.
func (c ServiceConfiguration) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RetryDelay returns the pause between retry attempts as a duration.
func (c ServiceConfiguration) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelaySeconds) * time.Second
}

// Load resolves the application configuration from environment variables.
// It first attempts to load variables from a .env file if it exists.
// Environment variables set in the system take precedence over .env values.
func Load() (AppConfig, error) {
	_ = godotenv.Load()

	cfg := AppConfig{
		App: AppSettings{
			Name:        getEnv("APP_NAME", "sri-gateway"),
			Version:     getEnv("APP_VERSION", "0.1.0"),
			Environment: getEnv("APP_ENV", "local"),
		},
		HTTP: HTTPSettings{
			Port:            getEnvAsInt("APP_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("HTTP_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("HTTP_WRITE_TIMEOUT", 120*time.Second),
			IdleTimeout:     getEnvAsDuration("HTTP_IDLE_TIMEOUT", 120*time.Second),
			ShutdownTimeout: getEnvAsDuration("HTTP_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Auth: AuthSettings{
			Enabled:     getEnvAsBool("AUTH_ENABLED", false),
			IssuerURI:   strings.TrimSpace(os.Getenv("JWT_ISSUER_URI")),
			JWKSetURI:   strings.TrimSpace(os.Getenv("JWT_JWK_SET_URI")),
			ClockSkew:   getEnvAsDuration("AUTH_CLOCK_SKEW", 2*time.Minute),
			BypassPaths: getEnvAsCSV("AUTH_BYPASS_PATHS", []string{"/health"}),
		},
		Log: LogSettings{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseSettings{
			Host:            getEnv("DB_HOST", ""),
			Port:            getEnvAsInt("DB_PORT", 5432),
			Database:        getEnv("DB_NAME", "sri_gateway"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 2),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Audit: AuditSettings{
			Enabled:         getEnvAsBool("AUDIT_ENABLED", true),
			LogRequestBody:  getEnvAsBool("AUDIT_LOG_REQUEST_BODY", false),
			LogResponseBody: getEnvAsBool("AUDIT_LOG_RESPONSE_BODY", false),
			MaxBodySize:     getEnvAsInt("AUDIT_MAX_BODY_SIZE", 102400),
		},
		SRI: SRISettings{
			CaptchaBaseURL:             getEnv("SRI_CAPTCHA_BASE_URL", "https://srienlinea.sri.gob.ec/movil-servicios/api/v1.0/captcha"),
			CatastroBaseURL:            getEnv("SRI_CATASTRO_BASE_URL", "https://srienlinea.sri.gob.ec/sri-catastro-sujeto-servicio-internet/rest"),
			CedulaBaseURL:              getEnv("SRI_CEDULA_BASE_URL", "https://srienlinea.sri.gob.ec/movil-servicios/api/v1.0/deudas"),
			ReceptionURLTest:           getEnv("SRI_RECEPTION_URL_TEST", "https://celcer.sri.gob.ec/comprobantes-electronicos-ws/RecepcionComprobantesOffline"),
			ReceptionURLProduction:     getEnv("SRI_RECEPTION_URL_PROD", "https://cel.sri.gob.ec/comprobantes-electronicos-ws/RecepcionComprobantesOffline"),
			AuthorizationURLTest:       getEnv("SRI_AUTHORIZATION_URL_TEST", "https://celcer.sri.gob.ec/comprobantes-electronicos-ws/AutorizacionComprobantesOffline"),
			AuthorizationURLProduction: getEnv("SRI_AUTHORIZATION_URL_PROD", "https://cel.sri.gob.ec/comprobantes-electronicos-ws/AutorizacionComprobantesOffline"),
			Service: ServiceConfiguration{
				TimeoutSeconds:    getEnvAsInt("SRI_TIMEOUT_SECONDS", 30),
				MaxRetries:        getEnvAsInt("SRI_MAX_RETRIES", 3),
				RetryDelaySeconds: getEnvAsInt("SRI_RETRY_DELAY_SECONDS", 2),
			},
		},
	}

	if err := cfg.SRI.Service.Validate(); err != nil {
		return cfg, err
	}

	if cfg.Auth.Enabled {
		if cfg.Auth.IssuerURI == "" {
			return cfg, errors.New("invalid config: JWT_ISSUER_URI is required when AUTH_ENABLED=true")
		}
		if cfg.Auth.JWKSetURI == "" {
			return cfg, errors.New("invalid config: JWT_JWK_SET_URI is required when AUTH_ENABLED=true")
		}
	}

	return cfg, nil
}

// Address returns the HTTP listen address in host:port form.
func (h HTTPSettings) Address() string {
	return fmt.Sprintf(":%d", h.Port)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsCSV(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			values = append(values, trimmed)
		}
	}
	if len(values) == 0 {
		return fallback
	}
	return values
}
