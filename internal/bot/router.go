package bot

import (
	"log/slog"
	"strings"
	"sync"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/lanxat-bot/internal/bot/handlers"
	"github.com/Proton-105/lanxat-bot/internal/bot/keyboard"
)

// Router dispatches commands, callbacks, inline queries and plain text.
type Router struct {
	mu             sync.RWMutex
	commands       map[string]handlers.Handler
	callbacks      map[string]handlers.Handler
	queryHandler   handlers.Handler
	textHandler    handlers.Handler
	unknownHandler handlers.Handler
	middlewares    []handlers.Middleware
	log            *slog.Logger
}

func NewRouter(log *slog.Logger) *Router {
	if log == nil {
		log = slog.Default()
	}

	return &Router{
		commands:  make(map[string]handlers.Handler),
		callbacks: make(map[string]handlers.Handler),
		log:       log,
	}
}

// RegisterCommand registers a handler for a bot command such as "/start".
func (r *Router) RegisterCommand(cmd string, h handlers.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[strings.ToLower(cmd)] = h
}

// RegisterCallback registers a handler for a callback action.
func (r *Router) RegisterCallback(action string, h handlers.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.callbacks[action] = h
}

// HandleQuery sets the inline query handler.
func (r *Router) HandleQuery(h handlers.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queryHandler = h
}

// HandleText sets the handler for text that is not a command.
func (r *Router) HandleText(h handlers.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.textHandler = h
}

// HandleUnknownCommand sets the fallback for unregistered commands.
func (r *Router) HandleUnknownCommand(h handlers.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unknownHandler = h
}

// Use appends a middleware to the chain.
func (r *Router) Use(mw handlers.Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middlewares = append(r.middlewares, mw)
}

// Route directs the incoming update to the appropriate handler.
func (r *Router) Route(c telebot.Context) error {
	if c == nil {
		return nil
	}

	handler := r.resolve(c)
	if handler == nil {
		return nil
	}

	return r.applyMiddlewares(handler)(c)
}

func (r *Router) resolve(c telebot.Context) handlers.Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if c.Query() != nil {
		return r.queryHandler
	}

	if callback := c.Callback(); callback != nil {
		action, _, err := keyboard.DecodeCallback(callback.Data)
		if err != nil {
			r.log.Info("ignoring callback without data")
			return nil
		}
		if h, ok := r.callbacks[action]; ok {
			return h
		}
		r.log.Info("no callback handler found", slog.String("action", action))
		return nil
	}

	text := strings.TrimSpace(c.Text())
	if text == "" {
		return nil
	}

	if cmd, args, ok := ParseCommand(text); ok {
		c.Set(handlers.ArgsKey, args)
		if h, ok := r.commands[cmd]; ok {
			return h
		}
		return r.unknownHandler
	}

	return r.textHandler
}

// ParseCommand splits "/cmd@bot args" into "/cmd" and "args".
func ParseCommand(text string) (cmd, args string, ok bool) {
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}

	cmd, args, _ = strings.Cut(text, " ")
	if i := strings.IndexAny(cmd, "\n\t"); i >= 0 {
		args = cmd[i+1:] + " " + args
		cmd = cmd[:i]
	}
	cmd, _, _ = strings.Cut(cmd, "@")

	return strings.ToLower(cmd), strings.TrimSpace(args), len(cmd) > 1
}

// applyMiddlewares wraps the handler with all registered middlewares, the
// first registered being the outermost.
func (r *Router) applyMiddlewares(h handlers.Handler) handlers.Handler {
	r.mu.RLock()
	middlewares := make([]handlers.Middleware, len(r.middlewares))
	copy(middlewares, r.middlewares)
	r.mu.RUnlock()

	wrapped := h
	for i := len(middlewares) - 1; i >= 0; i-- {
		wrapped = middlewares[i](wrapped)
	}

	return wrapped
}
