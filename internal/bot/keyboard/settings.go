package keyboard

import (
	"fmt"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/lanxat-bot/internal/domain"
)

// ActionSwap reverses the language pair named in the payload.
const ActionSwap = "swap"

// SettingsMenu offers one swap button per language pair of profile.
func SettingsMenu(profile *domain.UserProfile) (*telebot.ReplyMarkup, error) {
	builder := NewInlineKeyboard()

	for _, name := range []string{domain.LangConfigInline, domain.LangConfigOther} {
		cfg, _ := profile.LangConfig(name)
		builder.AddRow(InlineButton{
			Text:    fmt.Sprintf("🔁 %s: %s", name, cfg.ShortDescription()),
			Action:  ActionSwap,
			Payload: name,
		})
	}

	return builder.Build()
}
