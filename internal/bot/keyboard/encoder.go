package keyboard

import (
	"errors"
	"fmt"
	"strings"
)

const (
	CallbackDataSeparator  = ":"
	CallbackDataLimitBytes = 64
)

// EncodeCallback joins an action and its payload into button callback data.
func EncodeCallback(action, payload string) (string, error) {
	if action == "" {
		return "", errors.New("callback action is empty")
	}

	data := action
	if payload != "" {
		data = action + CallbackDataSeparator + payload
	}

	if len(data) > CallbackDataLimitBytes {
		return "", fmt.Errorf("callback data exceeds %d byte limit: got %d", CallbackDataLimitBytes, len(data))
	}

	return data, nil
}

// DecodeCallback splits callback data at the first separator.
func DecodeCallback(data string) (action, payload string, err error) {
	// telebot prefixes data of buttons created with Unique
	data = strings.TrimPrefix(data, "\f")
	if data == "" {
		return "", "", errors.New("callback data is empty")
	}

	action, payload, _ = strings.Cut(data, CallbackDataSeparator)
	return action, payload, nil
}
