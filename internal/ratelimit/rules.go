package ratelimit

import (
	"fmt"
	"time"

	"github.com/Proton-105/lanxat-bot/pkg/config"
)

// Kind selects the rule an update is counted against.
type Kind string

const (
	KindPerUser Kind = "per_user"
	KindInline  Kind = "inline"
)

// Rule is a parsed limit.
type Rule struct {
	Limit  int
	Window time.Duration
}

// Rules holds the configured limits.
type Rules struct {
	enabled   bool
	whitelist map[int64]struct{}
	rules     map[Kind]Rule
}

// NewRules parses cfg; an invalid window is a configuration error.
func NewRules(cfg config.RateLimitConfig) (*Rules, error) {
	r := &Rules{
		enabled:   cfg.Enabled,
		whitelist: make(map[int64]struct{}, len(cfg.Whitelist)),
		rules:     make(map[Kind]Rule, 2),
	}

	for _, id := range cfg.Whitelist {
		r.whitelist[id] = struct{}{}
	}

	for kind, raw := range map[Kind]config.RateLimitRule{KindPerUser: cfg.PerUser, KindInline: cfg.Inline} {
		rule, err := parseRule(raw)
		if err != nil {
			return nil, fmt.Errorf("ratelimit.%s: %w", kind, err)
		}
		r.rules[kind] = rule
	}

	return r, nil
}

func (r *Rules) Enabled() bool {
	return r != nil && r.enabled
}

// IsWhitelisted returns true if the userID bypasses rate limits.
func (r *Rules) IsWhitelisted(userID int64) bool {
	_, ok := r.whitelist[userID]
	return ok
}

// For returns the rule of kind. A rule with a zero limit disables limiting.
func (r *Rules) For(kind Kind) (Rule, bool) {
	rule, ok := r.rules[kind]
	if !ok || rule.Limit <= 0 {
		return Rule{}, false
	}
	return rule, true
}

func parseRule(rule config.RateLimitRule) (Rule, error) {
	if rule.Limit <= 0 {
		return Rule{}, nil
	}
	if rule.Window == "" {
		return Rule{}, fmt.Errorf("window duration is not set")
	}

	window, err := time.ParseDuration(rule.Window)
	if err != nil {
		return Rule{}, err
	}
	if window <= 0 {
		return Rule{}, fmt.Errorf("window must be positive, got %s", rule.Window)
	}

	return Rule{Limit: rule.Limit, Window: window}, nil
}
