package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultDSN = "host=localhost user=postgres password=postgres dbname=pedidos port=5432 sslmode=disable"

type Config struct {
	HTTPPort string `mapstructure:"HTTP_PORT"`
	Env      string `mapstructure:"APP_ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	DatabaseDSN string `mapstructure:"DATABASE_DSN"`
	RedisURL    string `mapstructure:"REDIS_URL"`

	JWTSecret          string `mapstructure:"JWT_SECRET"`
	JWTExpirationHours int    `mapstructure:"JWT_EXPIRATION_HOURS"`
	CORSOrigins        string `mapstructure:"CORS_ALLOWED_ORIGINS"`

	// Valores semeados na primeira leitura das configurações
	DefaultAdminPassword string `mapstructure:"DEFAULT_ADMIN_PASSWORD"`
	DefaultCompanyName   string `mapstructure:"DEFAULT_COMPANY_NAME"`
	DefaultRecoveryEmail string `mapstructure:"DEFAULT_RECOVERY_EMAIL"`

	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUser     string `mapstructure:"SMTP_USER"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	SMTPFrom     string `mapstructure:"SMTP_FROM"`

	SettingsCacheTTLSeconds int    `mapstructure:"SETTINGS_CACHE_TTL_SECONDS"`
	MaxLogoBytes            int    `mapstructure:"MAX_LOGO_BYTES"`
	Timezone                string `mapstructure:"TIMEZONE"`
}

// Load lê o .env (se existir) e as variáveis de ambiente.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()

	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DATABASE_DSN", defaultDSN)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_EXPIRATION_HOURS", 12)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")
	v.SetDefault("DEFAULT_ADMIN_PASSWORD", "admin123")
	v.SetDefault("DEFAULT_COMPANY_NAME", "Brasfrut")
	v.SetDefault("DEFAULT_RECOVERY_EMAIL", "")
	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USER", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_FROM", "")
	v.SetDefault("SETTINGS_CACHE_TTL_SECONDS", 300)
	v.SetDefault("MAX_LOGO_BYTES", 512*1024)
	v.SetDefault("TIMEZONE", "America/Sao_Paulo")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET não definido")
	}
	if len(c.JWTSecret) < 32 {
		return errors.New("JWT_SECRET deve ter pelo menos 32 caracteres")
	}
	if c.JWTExpirationHours <= 0 {
		return fmt.Errorf("invalid JWT_EXPIRATION_HOURS: %d", c.JWTExpirationHours)
	}
	if c.MaxLogoBytes <= 0 {
		return fmt.Errorf("invalid MAX_LOGO_BYTES: %d", c.MaxLogoBytes)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	return nil
}

// Warnings lista configurações de desenvolvimento que não deveriam ir para produção.
func (c *Config) Warnings() []string {
	var out []string
	if c.DatabaseDSN == defaultDSN {
		out = append(out, "DATABASE_DSN usando valor padrão")
	}
	if c.CORSOrigins == "http://localhost:5173" {
		out = append(out, "CORS_ALLOWED_ORIGINS usando valor padrão")
	}
	if c.DefaultAdminPassword == "admin123" {
		out = append(out, "DEFAULT_ADMIN_PASSWORD usando valor padrão")
	}
	return out
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWTExpirationHours) * time.Hour
}

func (c *Config) SettingsCacheTTL() time.Duration {
	return time.Duration(c.SettingsCacheTTLSeconds) * time.Second
}

// AllowedOrigins normaliza a lista separada por vírgulas.
func (c *Config) AllowedOrigins() string {
	parts := strings.Split(c.CORSOrigins, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return strings.Join(parts, ",")
}
