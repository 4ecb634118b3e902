package config

import "time"

// Config holds runtime configuration for the LanXat bot.
type Config struct {
	AppEnv     string           `mapstructure:"app_env"`
	Mongo      MongoConfig      `mapstructure:"mongo"`
	Telegram   TelegramConfig   `mapstructure:"telegram"`
	Server     ServerConfig     `mapstructure:"server"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Logger     LoggerConfig     `mapstructure:"logger"`
	Sentry     SentryConfig     `mapstructure:"sentry"`
	Translator TranslatorConfig `mapstructure:"translator"`
	Cache      CacheConfig      `mapstructure:"cache"`
	RateLimit  RateLimitConfig  `mapstructure:"ratelimit"`
	I18n       I18nConfig       `mapstructure:"i18n"`
}

type MongoConfig struct {
	URL            string        `mapstructure:"url" validate:"required"`
	Database       string        `mapstructure:"database" validate:"required"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type TelegramConfig struct {
	Lanxat        LanxatConfig  `mapstructure:"lanxat"`
	Mode          string        `mapstructure:"mode" validate:"oneof=polling webhook"`
	Timeout       time.Duration `mapstructure:"timeout"`
	WebhookURL    string        `mapstructure:"webhook_url" validate:"required_if=Mode webhook"`
	WebhookListen string        `mapstructure:"webhook_listen"`
}

type LanxatConfig struct {
	Token string `mapstructure:"token" validate:"required"`
	Name  string `mapstructure:"name"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port" validate:"required"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// RedisConfig is optional: an empty Addr disables the profile cache, the
// distributed profile locks and the redis rate limiter.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	PoolTimeout  time.Duration `mapstructure:"pool_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	MaxRetries   int           `mapstructure:"max_retries"`
}

func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

type LoggerConfig struct {
	Level      string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format     string `mapstructure:"format" validate:"oneof=json text"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

type SentryConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	DSN              string  `mapstructure:"dsn" validate:"required_if=Enabled true"`
	Environment      string  `mapstructure:"environment"`
	TracesSampleRate float64 `mapstructure:"traces_sample_rate" validate:"gte=0,lte=1"`
}

type TranslatorConfig struct {
	Backend      string        `mapstructure:"backend" validate:"oneof=yandex gemini"`
	BaseURL      string        `mapstructure:"base_url" validate:"omitempty,url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	GeminiAPIKey string        `mapstructure:"gemini_api_key" validate:"required_if=Backend gemini"`
	GeminiModel  string        `mapstructure:"gemini_model"`
	// InlineTimeout bounds a whole inline query, retries included.
	InlineTimeout time.Duration `mapstructure:"inline_timeout"`
}

type CacheConfig struct {
	ProfileTTL time.Duration `mapstructure:"profile_ttl"`
}

type RateLimitConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Whitelist []int64       `mapstructure:"whitelist"`
	PerUser   RateLimitRule `mapstructure:"per_user"`
	Inline    RateLimitRule `mapstructure:"inline"`
}

type RateLimitRule struct {
	Limit  int    `mapstructure:"limit" validate:"gte=0"`
	Window string `mapstructure:"window"`
}

type I18nConfig struct {
	DefaultLang string `mapstructure:"default_lang"`
}
