package domain

import (
	"fmt"
	"regexp"
)

var langCodePattern = regexp.MustCompile(`^[a-z]{2}$`)

// LangConfig is a translation direction.
type LangConfig struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ShortDescription renders the pair as "from-to", the format the Yandex API expects.
func (c LangConfig) ShortDescription() string {
	return c.From + "-" + c.To
}

// QueryPattern renders the pair the way users prefix inline queries: "from.to".
func (c LangConfig) QueryPattern() string {
	return c.From + "." + c.To
}

// Hints returns the languages a detector should prefer.
func (c LangConfig) Hints() []string {
	hints := make([]string, 0, 2)
	for _, lang := range []string{c.From, c.To} {
		if lang != "" {
			hints = append(hints, lang)
		}
	}
	return hints
}

// Reversed swaps source and target.
func (c LangConfig) Reversed() LangConfig {
	return LangConfig{From: c.To, To: c.From}
}

func (c LangConfig) IsEmpty() bool {
	return c.From == "" && c.To == ""
}

// Validate requires two lower-case ISO 639-1 codes.
func (c LangConfig) Validate() error {
	if !langCodePattern.MatchString(c.From) {
		return fmt.Errorf("invalid source language %q", c.From)
	}
	if !langCodePattern.MatchString(c.To) {
		return fmt.Errorf("invalid target language %q", c.To)
	}
	return nil
}

// DecideLangTo picks the target language for text detected as detected:
// normally cfg.To, but cfg.From when the text is already written in cfg.To.
func DecideLangTo(detected string, cfg LangConfig) string {
	if detected == cfg.To {
		return cfg.From
	}
	return cfg.To
}
