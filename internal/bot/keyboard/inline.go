package keyboard

import (
	telebot "gopkg.in/telebot.v3"
)

// InlineButton is a callback button before its data is encoded.
type InlineButton struct {
	Text    string
	Action  string
	Payload string
}

// InlineKeyboardBuilder accumulates rows of buttons.
type InlineKeyboardBuilder struct {
	rows [][]InlineButton
}

func NewInlineKeyboard() *InlineKeyboardBuilder {
	return &InlineKeyboardBuilder{}
}

// AddRow appends a row; empty rows are ignored.
func (b *InlineKeyboardBuilder) AddRow(buttons ...InlineButton) *InlineKeyboardBuilder {
	if len(buttons) == 0 {
		return b
	}

	row := make([]InlineButton, len(buttons))
	copy(row, buttons)
	b.rows = append(b.rows, row)
	return b
}

// Build encodes every button. Data is set without Unique so it reaches the
// router exactly as encoded.
func (b *InlineKeyboardBuilder) Build() (*telebot.ReplyMarkup, error) {
	keyboard := make([][]telebot.InlineButton, 0, len(b.rows))
	for _, row := range b.rows {
		buttons := make([]telebot.InlineButton, 0, len(row))
		for _, btn := range row {
			data, err := EncodeCallback(btn.Action, btn.Payload)
			if err != nil {
				return nil, err
			}
			buttons = append(buttons, telebot.InlineButton{Text: btn.Text, Data: data})
		}
		keyboard = append(keyboard, buttons)
	}

	return &telebot.ReplyMarkup{InlineKeyboard: keyboard}, nil
}
