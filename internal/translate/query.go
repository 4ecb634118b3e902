package translate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Proton-105/lanxat-bot/internal/domain"
)

// QueryTerminator marks an inline query as finished.
const QueryTerminator = " ."

var langPrefixPattern = regexp.MustCompile(`(?s)^([a-z]{2})\.([a-z]{2}) (.+)$`)

// Query is a finished inline query.
type Query struct {
	Text string
	// Lang is set when the query starts with a "from.to " prefix.
	Lang domain.LangConfig
}

// HasExplicitLang reports whether the query selected its own language pair.
func (q Query) HasExplicitLang() bool {
	return !q.Lang.IsEmpty()
}

// LangOr returns the query's own pair, or fallback when it has none.
func (q Query) LangOr(fallback domain.LangConfig) domain.LangConfig {
	if q.HasExplicitLang() {
		return q.Lang
	}
	return fallback
}

// ParseQuery strips the terminator and an optional "from.to " prefix. It
// returns false while the user is still typing.
func ParseQuery(raw string) (Query, bool) {
	if !strings.HasSuffix(raw, QueryTerminator) {
		return Query{}, false
	}

	text := strings.TrimSpace(strings.TrimSuffix(raw, QueryTerminator))
	if text == "" {
		return Query{}, false
	}

	if m := langPrefixPattern.FindStringSubmatch(text); m != nil {
		body := strings.TrimSpace(m[3])
		if body != "" {
			return Query{Text: body, Lang: domain.LangConfig{From: m[1], To: m[2]}}, true
		}
	}

	return Query{Text: text}, true
}

// PendingQueryInfo describes an unfinished query to the user.
func PendingQueryInfo(raw string) string {
	last := ""
	if r, size := utf8.DecodeLastRuneInString(raw); size > 0 {
		last = string(r)
	}

	return fmt.Sprintf("- End message with '%s' to translate.\n- Num chars: %d, last char: '%s'",
		QueryTerminator, utf8.RuneCountInString(raw), last)
}
