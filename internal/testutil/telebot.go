package testutil

import (
	"sync"

	telebot "gopkg.in/telebot.v3"
)

// FakeContext is a telebot.Context that records what handlers send. Calling a
// method it does not override panics on the nil embedded Context.
type FakeContext struct {
	telebot.Context

	User     *telebot.User
	Msg      *telebot.Message
	Inline   *telebot.Query
	Button   *telebot.Callback
	SendErr  error
	AnswerFn func(*telebot.QueryResponse) error

	mu        sync.Mutex
	Sent      []any
	SentOpts  [][]any
	Edited    []any
	Answers   []*telebot.QueryResponse
	Responses []*telebot.CallbackResponse
	Deleted   bool
	store     map[string]any
}

// NewMessageContext fakes a private text message from user.
func NewMessageContext(user *telebot.User, text string) *FakeContext {
	return &FakeContext{
		User: user,
		Msg:  &telebot.Message{Text: text, Sender: user, Chat: &telebot.Chat{ID: user.ID, Type: telebot.ChatPrivate}},
	}
}

// NewQueryContext fakes an inline query from user.
func NewQueryContext(user *telebot.User, text string) *FakeContext {
	return &FakeContext{
		User:   user,
		Inline: &telebot.Query{ID: "q-1", Text: text, Sender: user},
	}
}

// NewCallbackContext fakes a button press by user.
func NewCallbackContext(user *telebot.User, data string) *FakeContext {
	msg := &telebot.Message{Sender: user, Chat: &telebot.Chat{ID: user.ID, Type: telebot.ChatPrivate}}
	return &FakeContext{
		User:   user,
		Msg:    msg,
		Button: &telebot.Callback{ID: "cb-1", Data: data, Sender: user, Message: msg},
	}
}

func (f *FakeContext) Sender() *telebot.User       { return f.User }
func (f *FakeContext) Message() *telebot.Message   { return f.Msg }
func (f *FakeContext) Query() *telebot.Query       { return f.Inline }
func (f *FakeContext) Callback() *telebot.Callback { return f.Button }

func (f *FakeContext) Text() string {
	if f.Msg == nil {
		return ""
	}
	return f.Msg.Text
}

func (f *FakeContext) Send(what any, opts ...any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Sent = append(f.Sent, what)
	f.SentOpts = append(f.SentOpts, opts)
	return f.SendErr
}

func (f *FakeContext) Reply(what any, opts ...any) error {
	return f.Send(what, opts...)
}

func (f *FakeContext) Edit(what any, _ ...any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Edited = append(f.Edited, what)
	return nil
}

func (f *FakeContext) Delete() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Deleted = true
	return nil
}

func (f *FakeContext) Answer(resp *telebot.QueryResponse) error {
	f.mu.Lock()
	f.Answers = append(f.Answers, resp)
	f.mu.Unlock()

	if f.AnswerFn != nil {
		return f.AnswerFn(resp)
	}
	return nil
}

func (f *FakeContext) Respond(resp ...*telebot.CallbackResponse) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Responses = append(f.Responses, resp...)
	return nil
}

func (f *FakeContext) Set(key string, val any) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.store == nil {
		f.store = make(map[string]any)
	}
	f.store[key] = val
}

func (f *FakeContext) Get(key string) any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.store[key]
}

// LastSent returns the last sent text, or "".
func (f *FakeContext) LastSent() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.Sent) == 0 {
		return ""
	}
	text, _ := f.Sent[len(f.Sent)-1].(string)
	return text
}
