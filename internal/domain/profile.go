package domain

import "strings"

// Names of the language pairs a profile holds.
const (
	LangConfigInline = "inline"
	LangConfigOther  = "other"
)

// UserProfile holds a Telegram user's translation preferences.
type UserProfile struct {
	UserID        int64  `bson:"userId" json:"user_id"`
	YandexAPIKey  string `bson:"yandexApiKey" json:"yandex_api_key"`
	LangFrom      string `bson:"langFrom" json:"lang_from"`
	LangTo        string `bson:"langTo" json:"lang_to"`
	LangOtherFrom string `bson:"langOtherFrom" json:"lang_other_from"`
	LangOtherTo   string `bson:"langOtherTo" json:"lang_other_to"`
}

// NewUserProfile returns an empty, not yet configured profile for userID.
func NewUserProfile(userID int64) *UserProfile {
	return &UserProfile{UserID: userID}
}

// Equal reports structural equality.
func (p *UserProfile) Equal(other *UserProfile) bool {
	if p == nil || other == nil {
		return p == other
	}
	return *p == *other
}

// Clone returns an independent copy.
func (p *UserProfile) Clone() *UserProfile {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

// IsConfigured reports whether the API key and both language pairs are set.
func (p *UserProfile) IsConfigured() bool {
	return p != nil && len(p.MissingFields()) == 0
}

// MissingFields lists the settings that still need a value.
func (p *UserProfile) MissingFields() []string {
	if p == nil {
		return []string{"profile"}
	}

	var missing []string
	check := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}

	check("yandexApiKey", p.YandexAPIKey)
	check("langFrom", p.LangFrom)
	check("langTo", p.LangTo)
	check("langOtherFrom", p.LangOtherFrom)
	check("langOtherTo", p.LangOtherTo)

	return missing
}

// LangConfig returns the named language pair.
func (p *UserProfile) LangConfig(name string) (LangConfig, bool) {
	switch strings.ToLower(name) {
	case LangConfigInline:
		return LangConfig{From: p.LangFrom, To: p.LangTo}, true
	case LangConfigOther:
		return LangConfig{From: p.LangOtherFrom, To: p.LangOtherTo}, true
	default:
		return LangConfig{}, false
	}
}

// SetLangConfig overwrites the named language pair. It returns false for unknown names.
func (p *UserProfile) SetLangConfig(name string, cfg LangConfig) bool {
	switch strings.ToLower(name) {
	case LangConfigInline:
		p.LangFrom, p.LangTo = cfg.From, cfg.To
	case LangConfigOther:
		p.LangOtherFrom, p.LangOtherTo = cfg.From, cfg.To
	default:
		return false
	}
	return true
}
