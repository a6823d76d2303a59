package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

var (
	errMissingJWTKey        = errors.New("api.jwt_signing_key is required")
	errMissingStripeKey     = errors.New("stripe.secret_key is required")
	errMissingWebhookSecret = errors.New("stripe.webhook_secret is required")
)

type AppConfig struct {
	API      *APIConfig      `mapstructure:"api"`
	Gin      *GinConfig      `mapstructure:"gin"`
	Postgres *PostgresConfig `mapstructure:"postgres"`
	Stripe   *StripeConfig   `mapstructure:"stripe"`
	Kafka    *KafkaConfig    `mapstructure:"kafka"`
	Otel     *OtelConfig     `mapstructure:"otel"`
}

type APIConfig struct {
	Environment        string        `mapstructure:"environment"`
	Port               string        `mapstructure:"port"`
	BaseURL            string        `mapstructure:"base_url"`
	AllowedCORSDomains []string      `mapstructure:"allowed_cors_domains"`
	JWTSigningKey      string        `mapstructure:"jwt_signing_key"`
	RequestTimeout     time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DB       string `mapstructure:"db"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (c *PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DB, c.SSLMode,
	)
}

type StripeConfig struct {
	SecretKey     string `mapstructure:"secret_key"`
	WebhookSecret string `mapstructure:"webhook_secret"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// Enabled reports whether order events should be published.
func (c *KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0 && c.Topic != ""
}

type OtelConfig struct {
	Endpoint    string `mapstructure:"endpoint"`
	AuthHeader  string `mapstructure:"auth_header"`
	ServiceName string `mapstructure:"service_name"`
	Insecure    bool   `mapstructure:"insecure"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.environment", EnvDevelopment)
	v.SetDefault("api.port", "8080")
	v.SetDefault("api.base_url", "localhost:8080")
	v.SetDefault("api.allowed_cors_domains", []string{"http://localhost:5173"})
	v.SetDefault("api.request_timeout", 10*time.Second)
	v.SetDefault("api.shutdown_timeout", 15*time.Second)
	// Every key needs a default so AutomaticEnv can override it on Unmarshal.
	v.SetDefault("api.jwt_signing_key", "")
	v.SetDefault("gin.mode", "debug")
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "postgres")
	v.SetDefault("postgres.db", "registrations")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("stripe.secret_key", "")
	v.SetDefault("stripe.webhook_secret", "")
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "order.status_changed")
	v.SetDefault("otel.endpoint", "")
	v.SetDefault("otel.auth_header", "")
	v.SetDefault("otel.service_name", "event-registration")
	v.SetDefault("otel.insecure", false)
}

// Load reads the yaml file at path (optional) and overlays environment
// variables, e.g. STRIPE_WEBHOOK_SECRET overrides stripe.webhook_secret.
func Load(path string) (*AppConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("v.ReadInConfig -> %w", err)
		}
		fileLoaded = false
	}

	conf := &AppConfig{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("v.Unmarshal -> %w", err)
	}

	if err := conf.Validate(); err != nil {
		return nil, err
	}

	if fileLoaded {
		v.OnConfigChange(func(e fsnotify.Event) {
			// Only logged: secrets and ports are bound at startup.
			zap.L().Warn("config file changed, restart to apply", zap.String("file", e.Name), zap.String("op", e.Op.String()))
		})
		v.WatchConfig()
	}

	return conf, nil
}

// Validate fails when a secret needed outside development is missing.
func (c *AppConfig) Validate() error {
	if c.API.Environment == EnvDevelopment {
		return nil
	}

	var errs []error
	if c.API.JWTSigningKey == "" {
		errs = append(errs, errMissingJWTKey)
	}
	if c.Stripe.SecretKey == "" {
		errs = append(errs, errMissingStripeKey)
	}
	if c.Stripe.WebhookSecret == "" {
		errs = append(errs, errMissingWebhookSecret)
	}

	return errors.Join(errs...)
}
