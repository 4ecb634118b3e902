package errors

import (
	stdErrors "errors"
	"fmt"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/lanxat-bot/internal/domain"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

const (
	CodeValidation           = "E100"
	CodeDatabase             = "E200"
	CodeExternalAPI          = "E300"
	CodeLocked               = "E400"
	CodeRateLimit            = "E500"
	CodeDomain               = "E600"
	CodeLangConfigNotExists  = "E610"
	CodeProfileNotExists     = "E620"
	CodeProfileNotConfigured = "E621"
	CodeInlineQuery          = "E630"
	CodeTranslation          = "E640"
)

const genericUserMessage = "Something went wrong. Please try again later."

// DomainError is implemented by every recognized LanXat failure.
// Errors outside this family are bugs.
type DomainError interface {
	error
	base() *LanXatError
}

// LanXatError is the base domain error. Specific variants embed it.
type LanXatError struct {
	Code        string
	Message     string
	UserMessage string
	Severity    Severity
	Retryable   bool
	cause       error
}

func (e *LanXatError) Error() string {
	if e == nil {
		return ""
	}

	return e.Message
}

func (e *LanXatError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.cause
}

func (e *LanXatError) Cause() error {
	return e.Unwrap()
}

func (e *LanXatError) base() *LanXatError {
	return e
}

// New creates a base domain error whose message is shown to the user as is.
func New(msg string) *LanXatError {
	return &LanXatError{
		Code:        CodeDomain,
		Message:     msg,
		UserMessage: msg,
		Severity:    SeverityLow,
	}
}

// Wrap creates a base domain error with a cause.
func Wrap(msg string, cause error) *LanXatError {
	e := New(msg)
	e.cause = cause
	return e
}

// IsDomain reports whether err or any error it wraps is a DomainError.
func IsDomain(err error) bool {
	var d DomainError
	return stdErrors.As(err, &d)
}

// AsDomain returns the base of the first DomainError in err's chain.
func AsDomain(err error) (*LanXatError, bool) {
	var d DomainError
	if !stdErrors.As(err, &d) || d == nil {
		return nil, false
	}

	b := d.base()
	return b, b != nil
}

// LangConfigNotExistsError signals a reference to an undefined language pair.
type LangConfigNotExistsError struct {
	LanXatError
	Config string
}

func NewLangConfigNotExistsError(config string) *LangConfigNotExistsError {
	msg := fmt.Sprintf("Lang config %s doesn't exist", config)
	return &LangConfigNotExistsError{
		LanXatError: LanXatError{
			Code:        CodeLangConfigNotExists,
			Message:     msg,
			UserMessage: fmt.Sprintf("Lang config %q doesn't exist. Use %q or %q.", config, domain.LangConfigInline, domain.LangConfigOther),
			Severity:    SeverityLow,
		},
		Config: config,
	}
}

// ProfileNotConfiguredError signals a stored profile that lacks required settings.
type ProfileNotConfiguredError struct {
	LanXatError
	Profile *domain.UserProfile
}

func NewProfileNotConfiguredError(profile *domain.UserProfile) *ProfileNotConfiguredError {
	var userID int64
	if profile != nil {
		userID = profile.UserID
	}

	return &ProfileNotConfiguredError{
		LanXatError: LanXatError{
			Code:        CodeProfileNotConfigured,
			Message:     fmt.Sprintf("Profile not configured for userId %d", userID),
			UserMessage: fmt.Sprintf("Your profile is not configured yet. Missing: %s. Use /yandexkey and /langs.", strings.Join(profile.MissingFields(), ", ")),
			Severity:    SeverityLow,
		},
		Profile: profile,
	}
}

// ProfileNotExistsError signals that no profile is stored for UserID.
type ProfileNotExistsError struct {
	LanXatError
	UserID int64
}

func NewProfileNotExistsError(userID int64) *ProfileNotExistsError {
	return &ProfileNotExistsError{
		LanXatError: LanXatError{
			Code:        CodeProfileNotExists,
			Message:     fmt.Sprintf("Profile doesn't exist for userId %d", userID),
			UserMessage: "You don't have a profile yet. Send /start to the bot.",
			Severity:    SeverityLow,
		},
		UserID: userID,
	}
}

// InlineQueryError is a failure while servicing Query. The query is kept so
// the handler can still answer it.
type InlineQueryError struct {
	LanXatError
	Query *telebot.Query
}

func NewInlineQueryError(query *telebot.Query, msg string, cause error) *InlineQueryError {
	e := &InlineQueryError{
		LanXatError: LanXatError{
			Code:        CodeInlineQuery,
			Message:     msg,
			UserMessage: msg,
			Severity:    SeverityLow,
			cause:       cause,
		},
		Query: query,
	}

	if inner, ok := AsDomain(cause); ok {
		e.Severity = inner.Severity
		e.Retryable = inner.Retryable
	}

	return e
}

// TranslationError is a failure reported by a translation backend.
type TranslationError struct {
	LanXatError
	Backend    string
	StatusCode int
}

func NewTranslationError(backend, msg string, statusCode int, cause error) *TranslationError {
	// statusCode 0 means the request never got an answer
	retryable := (statusCode == 0 && cause != nil) || statusCode == 429 || statusCode >= 500

	return &TranslationError{
		LanXatError: LanXatError{
			Code:        CodeTranslation,
			Message:     msg,
			UserMessage: fmt.Sprintf("There was an error with %s API: %s", backend, msg),
			Severity:    SeverityMedium,
			Retryable:   retryable,
			cause:       cause,
		},
		Backend:    backend,
		StatusCode: statusCode,
	}
}

func NewValidationError(msg string) *LanXatError {
	return &LanXatError{
		Code:        CodeValidation,
		Message:     msg,
		UserMessage: fmt.Sprintf("Invalid input. %s", msg),
		Severity:    SeverityLow,
	}
}

func NewDatabaseError(cause error) *LanXatError {
	var underlyingMsg string
	if cause != nil {
		underlyingMsg = cause.Error()
	}

	return &LanXatError{
		Code:        CodeDatabase,
		Message:     fmt.Sprintf("Database error: %s", underlyingMsg),
		UserMessage: "Temporary problem, please try again later.",
		Severity:    SeverityHigh,
		Retryable:   true,
		cause:       cause,
	}
}

func NewExternalAPIError(apiName string, cause error) *LanXatError {
	return &LanXatError{
		Code:        CodeExternalAPI,
		Message:     fmt.Sprintf("External API error: %s", apiName),
		UserMessage: "The service is temporarily unavailable.",
		Severity:    SeverityMedium,
		Retryable:   true,
		cause:       cause,
	}
}

func NewLockedError(userID int64) *LanXatError {
	return &LanXatError{
		Code:        CodeLocked,
		Message:     fmt.Sprintf("profile %d is locked by a concurrent update", userID),
		UserMessage: "Another update of your profile is in progress. Try again in a moment.",
		Severity:    SeverityLow,
	}
}

func NewRateLimitError(retryAfter int) *LanXatError {
	return &LanXatError{
		Code:        CodeRateLimit,
		Message:     fmt.Sprintf("Rate limit exceeded: retry after %d seconds", retryAfter),
		UserMessage: fmt.Sprintf("Too many requests. Try again in %d seconds.", retryAfter),
		Severity:    SeverityLow,
	}
}
