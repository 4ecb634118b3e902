// Package bot wires the Telegram client to the router and its handlers.
package bot

import (
	"fmt"
	"log/slog"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/lanxat-bot/internal/bot/handlers"
	"github.com/Proton-105/lanxat-bot/internal/bot/keyboard"
	errors "github.com/Proton-105/lanxat-bot/internal/errors"
	"github.com/Proton-105/lanxat-bot/internal/i18n"
	"github.com/Proton-105/lanxat-bot/internal/ratelimit"
	"github.com/Proton-105/lanxat-bot/pkg/config"
)

// Dependencies are the services the bot's handlers run on.
type Dependencies struct {
	Profiles     handlers.ProfileService
	Translations handlers.TranslationService
	Catalog      *i18n.Manager
	ErrHandler   *errors.Handler
	// Limiter may be nil to disable rate limiting.
	Limiter ratelimit.Limiter
	Rules   *ratelimit.Rules
	// InlineTimeout caps each inline query; zero uses handlers.DefaultInlineTimeout.
	InlineTimeout time.Duration
}

// Bot wraps telebot.Bot with the LanXat router.
type Bot struct {
	telebot *telebot.Bot
	router  *Router
	log     *slog.Logger
}

// New connects to Telegram with the configured token and registers the
// handlers.
func New(cfg config.Config, log *slog.Logger, deps Dependencies) (*Bot, error) {
	if log == nil {
		log = slog.Default()
	}

	settings := telebot.Settings{
		Token: cfg.Telegram.Lanxat.Token,
		OnError: func(err error, c telebot.Context) {
			log.Error("telegram update failed", slog.Any("error", err))
		},
	}

	if cfg.Telegram.Mode == "webhook" {
		settings.Poller = &telebot.Webhook{
			Listen:   cfg.Telegram.WebhookListen,
			Endpoint: &telebot.WebhookEndpoint{PublicURL: cfg.Telegram.WebhookURL},
		}
	} else {
		settings.Poller = &telebot.LongPoller{Timeout: cfg.Telegram.Timeout}
	}

	tb, err := telebot.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("initialize telebot: %w", err)
	}

	name := cfg.Telegram.Lanxat.Name
	if name == "" && tb.Me != nil {
		name = tb.Me.Username
	}

	b := &Bot{
		telebot: tb,
		router:  NewBotRouter(deps, tb, name, log),
		log:     log,
	}

	tb.Handle(telebot.OnText, b.router.Route)
	tb.Handle(telebot.OnCallback, b.router.Route)
	tb.Handle(telebot.OnQuery, b.router.Route)

	return b, nil
}

// NewBotRouter builds the router with every LanXat middleware and handler.
func NewBotRouter(deps Dependencies, answerer QueryAnswerer, botName string, log *slog.Logger) *Router {
	router := NewRouter(log)

	errHandler := deps.ErrHandler
	if errHandler == nil {
		errHandler = errors.NewHandler(log, false)
	}

	errorTitle := func(c telebot.Context) string {
		code := ""
		if sender := c.Sender(); sender != nil {
			code = sender.LanguageCode
		}
		return deps.Catalog.Translator(code).T("inline.error_title")
	}

	router.Use(LoggingMiddleware(log))
	router.Use(ErrorHandlingMiddleware(errHandler, answerer, errorTitle))
	router.Use(RecoveryMiddleware(log))
	router.Use(MetricsMiddleware)
	router.Use(RateLimitMiddleware(deps.Limiter, deps.Rules, log))
	router.Use(ProfileMiddleware(deps.Profiles))

	d := handlers.Deps{
		Profiles:      deps.Profiles,
		Translations:  deps.Translations,
		Catalog:       deps.Catalog,
		BotName:       botName,
		InlineTimeout: deps.InlineTimeout,
	}

	router.RegisterCommand(CommandStart, handlers.NewStartHandler(d))
	router.RegisterCommand(CommandHelp, handlers.NewHelpHandler(d))
	router.RegisterCommand(CommandYandexKey, handlers.NewYandexKeyHandler(d))
	router.RegisterCommand(CommandLangs, handlers.NewLangsHandler(d))
	router.RegisterCommand(CommandSettings, handlers.NewSettingsHandler(d))
	router.RegisterCallback(keyboard.ActionSwap, handlers.NewSwapCallbackHandler(d))
	router.HandleQuery(handlers.NewInlineQueryHandler(d))
	router.HandleText(handlers.NewMessageHandler(d))
	router.HandleUnknownCommand(handlers.NewUnknownCommandHandler(d))

	return router
}

// Start publishes the command menu and runs the update loop until Stop.
func (b *Bot) Start() {
	commands := []telebot.Command{
		{Text: "start", Description: "Create your profile"},
		{Text: "help", Description: "How to translate"},
		{Text: "yandexkey", Description: "Set your Yandex API key"},
		{Text: "langs", Description: "Show or change language pairs"},
		{Text: "settings", Description: "Swap language pairs"},
	}
	if err := b.telebot.SetCommands(commands); err != nil {
		b.log.Warn("failed to publish bot commands", slog.Any("error", err))
	}

	b.log.Info("telegram bot started", slog.String("username", b.Username()))
	b.telebot.Start()
}

// Stop gracefully stops the telegram bot.
func (b *Bot) Stop() {
	b.log.Info("stopping telegram bot")
	b.telebot.Stop()
}

// Username is the bot's Telegram username.
func (b *Bot) Username() string {
	if b.telebot.Me == nil {
		return ""
	}
	return b.telebot.Me.Username
}

// Telebot exposes the underlying client for health checks.
func (b *Bot) Telebot() *telebot.Bot {
	return b.telebot
}
