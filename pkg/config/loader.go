// Package config provides configuration loading and validation utilities.
package config

import (
	stdErrors "errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultConfigDir = "./configs"

// requiredKeys have no default; they are bound explicitly so env-only setups unmarshal them.
var requiredKeys = []string{
	"mongo.url",
	"mongo.database",
	"telegram.lanxat.token",
}

var optionalKeys = []string{
	"telegram.lanxat.name",
	"telegram.webhook_url",
	"redis.addr",
	"redis.password",
	"logger.file",
	"sentry.dsn",
	"sentry.environment",
	"translator.base_url",
	"translator.gemini_api_key",
	"ratelimit.whitelist",
}

// Load reads configuration from ./configs/<APP_ENV>.yaml and environment variables.
func Load() (*Config, *viper.Viper, error) {
	return LoadFrom(defaultConfigDir)
}

// LoadFrom is Load with an explicit configuration directory. A missing YAML
// file is not an error; missing required keys are.
func LoadFrom(dir string) (*Config, *viper.Viper, error) {
	// .env files are optional
	_ = godotenv.Load(".env.local", ".env")

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	v := viper.New()
	v.SetConfigName(env)
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	for _, key := range append(append([]string{}, requiredKeys...), optionalKeys...) {
		if err := v.BindEnv(key); err != nil {
			return nil, nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !stdErrors.As(err, &notFound) {
			return nil, nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, nil, err
	}
	cfg.AppEnv = env

	return cfg, v, nil
}

// Watch re-reads the config file on change and passes every valid result to onChange.
// It is a no-op when no config file was found.
func Watch(v *viper.Viper, onChange func(*Config, error)) {
	if v == nil || onChange == nil || v.ConfigFileUsed() == "" {
		return
	}

	v.OnConfigChange(func(fsnotify.Event) {
		cfg, err := decode(v)
		onChange(cfg, err)
	})
	v.WatchConfig()
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", describeValidation(err))
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mongo.connect_timeout", 10*time.Second)

	v.SetDefault("telegram.mode", "polling")
	v.SetDefault("telegram.timeout", 10*time.Second)
	v.SetDefault("telegram.webhook_listen", ":8443")

	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.pool_timeout", 4*time.Second)
	v.SetDefault("redis.idle_timeout", 5*time.Minute)
	v.SetDefault("redis.max_retries", 3)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.max_size_mb", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age_days", 28)

	v.SetDefault("sentry.enabled", false)
	v.SetDefault("sentry.traces_sample_rate", 0.0)

	v.SetDefault("translator.backend", "yandex")
	v.SetDefault("translator.timeout", 10*time.Second)
	v.SetDefault("translator.inline_timeout", 5*time.Second)
	v.SetDefault("translator.gemini_model", "gemini-2.0-flash")

	v.SetDefault("cache.profile_ttl", 5*time.Minute)

	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.per_user.limit", 30)
	v.SetDefault("ratelimit.per_user.window", "1m")
	v.SetDefault("ratelimit.inline.limit", 60)
	v.SetDefault("ratelimit.inline.window", "1m")

	v.SetDefault("i18n.default_lang", "en")
}

// describeValidation turns validator output into "mongo.url is required" style messages.
func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !stdErrors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on %q", fieldKey(fe.Namespace()), fe.Tag()))
	}

	return stdErrors.New(strings.Join(msgs, "; "))
}

// fieldKey maps "Config.Telegram.Lanxat.Token" to "telegram.lanxat.token".
func fieldKey(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}

	for i, part := range parts {
		parts[i] = toSnake(part)
	}

	return strings.Join(parts, ".")
}

func toSnake(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if isUpper(r) {
			if i > 0 && (!isUpper(runes[i-1]) || (i+1 < len(runes) && !isUpper(runes[i+1]))) {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isUpper(r rune) bool {
	return r >= 'A' && r <= 'Z'
}
