// Command bot runs the LanXat translation bot and its HTTP endpoints.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"golang.org/x/sync/errgroup"

	"github.com/Proton-105/lanxat-bot/internal/api"
	"github.com/Proton-105/lanxat-bot/internal/bot"
	"github.com/Proton-105/lanxat-bot/internal/database"
	errors "github.com/Proton-105/lanxat-bot/internal/errors"
	"github.com/Proton-105/lanxat-bot/internal/health"
	"github.com/Proton-105/lanxat-bot/internal/i18n"
	"github.com/Proton-105/lanxat-bot/internal/lifecycle"
	"github.com/Proton-105/lanxat-bot/internal/profile"
	"github.com/Proton-105/lanxat-bot/internal/profilecache"
	"github.com/Proton-105/lanxat-bot/internal/ratelimit"
	"github.com/Proton-105/lanxat-bot/internal/repository"
	"github.com/Proton-105/lanxat-bot/internal/translate"
	"github.com/Proton-105/lanxat-bot/pkg/config"
	"github.com/Proton-105/lanxat-bot/pkg/graceful"
	"github.com/Proton-105/lanxat-bot/pkg/logger"
	"github.com/Proton-105/lanxat-bot/pkg/mongodb"
	redisclient "github.com/Proton-105/lanxat-bot/pkg/redis"
)

const (
	rateLimitCleanupInterval = time.Minute
	rateLimitMaxIdle         = 10 * time.Minute
	hookTimeout              = 10 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx)
	stop()
	os.Exit(code)
}

func run(ctx context.Context) int {
	cfg, v, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		return 1
	}

	if cfg.Sentry.Enabled {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			Environment:      cfg.Sentry.Environment,
			TracesSampleRate: cfg.Sentry.TracesSampleRate,
		}); err != nil {
			slog.Error("failed to initialize sentry", slog.Any("error", err))
			return 1
		}
		defer sentry.Flush(2 * time.Second)
	}

	appLog, err := logger.New(*cfg)
	if err != nil {
		slog.Error("failed to initialize logger", slog.Any("error", err))
		return 1
	}
	defer appLog.Close()

	log := appLog.Logger
	slog.SetDefault(log)

	config.Watch(v, func(updated *config.Config, err error) {
		if err != nil {
			log.Warn("ignoring invalid config change", slog.Any("error", err))
			return
		}
		if err := appLog.SetLevel(updated.Logger.Level); err != nil {
			log.Warn("failed to change log level", slog.Any("error", err))
			return
		}
		log.Info("log level changed", slog.String("level", updated.Logger.Level))
	})

	log.Info("starting lanxat bot",
		slog.String("env", cfg.AppEnv),
		slog.String("translator", cfg.Translator.Backend),
		slog.Bool("redis", cfg.Redis.Enabled()),
	)

	shutdown := lifecycle.NewShutdown(log)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := shutdown.Execute(shutdownCtx); err != nil {
			log.Error("shutdown finished with errors", slog.Any("error", err))
		}
	}()

	checker := health.NewChecker(log)

	mongo, err := mongodb.Connect(ctx, mongodb.Config{
		URL:            cfg.Mongo.URL,
		Database:       cfg.Mongo.Database,
		ConnectTimeout: cfg.Mongo.ConnectTimeout,
	})
	if err != nil {
		log.Error("failed to connect to mongodb", slog.Any("error", err))
		return 1
	}
	shutdown.RegisterWithTimeout("mongodb", hookTimeout, mongo.Close)
	checker.AddCheck("mongodb", mongo)

	if err := database.NewMigrator(mongo.Database(), log).Apply(ctx, database.DefaultMigrations); err != nil {
		log.Error("failed to apply index migrations", slog.Any("error", err))
		return 1
	}

	var (
		profiles repository.ProfileRepository = repository.NewMongoProfileRepository(mongo.Database(), log)
		locker   profile.Locker
		limiter  ratelimit.Limiter
	)

	memoryLimiter := ratelimit.NewMemoryLimiter()
	limiter = memoryLimiter

	if cfg.Redis.Enabled() {
		rdb, err := redisclient.New(ctx, redisclient.Config{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			PoolTimeout:  cfg.Redis.PoolTimeout,
			IdleTimeout:  cfg.Redis.IdleTimeout,
			MaxRetries:   cfg.Redis.MaxRetries,
		})
		if err != nil {
			log.Error("failed to connect to redis", slog.Any("error", err))
			return 1
		}
		shutdown.Register("redis", func(context.Context) error { return rdb.Close() })
		checker.AddCheck("redis", rdb)

		profiles = repository.NewCachedProfileRepository(profiles, profilecache.NewCache(rdb, cfg.Cache.ProfileTTL), log)
		locker = profile.NewRedisLocker(rdb, log)
		limiter = ratelimit.NewAdaptiveLimiter(ratelimit.NewRedisLimiter(rdb, log), memoryLimiter, log)
	}

	rules, err := ratelimit.NewRules(cfg.RateLimit)
	if err != nil {
		log.Error("invalid rate limit configuration", slog.Any("error", err))
		return 1
	}

	backend, err := newTranslator(ctx, cfg.Translator, log)
	if err != nil {
		log.Error("failed to initialize translator", slog.Any("error", err))
		return 1
	}

	catalog, err := i18n.Load(cfg.I18n.DefaultLang)
	if err != nil {
		log.Error("failed to load translations", slog.Any("error", err))
		return 1
	}

	tgBot, err := bot.New(*cfg, log, bot.Dependencies{
		Profiles:      profile.NewService(profiles, locker, log),
		Translations:  translate.NewService(translate.NewResilient(backend, log), repository.NewMongoSearchRepository(mongo.Database()), log),
		Catalog:       catalog,
		ErrHandler:    errors.NewHandler(log, cfg.Sentry.Enabled),
		Limiter:       limiter,
		Rules:         rules,
		InlineTimeout: cfg.Translator.InlineTimeout,
	})
	if err != nil {
		log.Error("failed to create telegram bot", slog.Any("error", err))
		return 1
	}
	checker.AddCheck("telegram", health.NewTelegramChecker(tgBot.Telebot()))

	go tgBot.Start()
	shutdown.Register("telegram", func(context.Context) error {
		tgBot.Stop()
		return nil
	})

	httpServer := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           api.NewRouter(log, lifecycle.NewProbes(checker, shutdown)),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return graceful.NewServer(log, httpServer, cfg.Server.ShutdownTimeout).ListenAndServe(gctx)
	})
	g.Go(func() error {
		ratelimit.NewCleaner(memoryLimiter, log, rateLimitCleanupInterval, rateLimitMaxIdle).Run(gctx)
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("http server failed", slog.Any("error", err))
		return 1
	}

	log.Info("lanxat bot stopped")
	return 0
}

func newTranslator(ctx context.Context, cfg config.TranslatorConfig, log *slog.Logger) (translate.Translator, error) {
	switch cfg.Backend {
	case "gemini":
		return translate.NewGeminiTranslator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, log)
	case "yandex", "":
		return translate.NewYandexTranslator(cfg.BaseURL, cfg.Timeout, log), nil
	default:
		return nil, fmt.Errorf("unknown translator backend %q", cfg.Backend)
	}
}
