package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Proton-105/lanxat-bot/internal/domain"
	errors "github.com/Proton-105/lanxat-bot/internal/errors"
)

const (
	YandexName           = "Yandex"
	DefaultYandexBaseURL = "https://translate.yandex.net/api/v1.5/"

	yandexBadResponse = "Unexpected bad response from Yandex API"
	maxResponseBytes  = 1 << 20
)

// yandexStatusMessages maps documented Yandex API status codes to user-facing text.
var yandexStatusMessages = map[int]string{
	401: "Invalid API key",
	402: "Blocked API key",
	404: "Exceeded the daily limit on the amount of translated text",
	413: "Exceeded the maximum text size",
	422: "The text cannot be translated",
	501: "The specified translation direction is not supported",
}

type yandexTranslateResponse struct {
	Code    int      `json:"code"`
	Lang    string   `json:"lang"`
	Text    []string `json:"text"`
	Message string   `json:"message"`
}

type yandexDetectResponse struct {
	Code    int    `json:"code"`
	Lang    string `json:"lang"`
	Message string `json:"message"`
}

// YandexTranslator calls the Yandex Translate v1.5 API with the user's key.
type YandexTranslator struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

var _ Translator = (*YandexTranslator)(nil)

func NewYandexTranslator(baseURL string, timeout time.Duration, log *slog.Logger) *YandexTranslator {
	if baseURL == "" {
		baseURL = DefaultYandexBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}

	return &YandexTranslator{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		log:        log.With(slog.String("component", "yandex_translator")),
	}
}

func (y *YandexTranslator) Name() string {
	return YandexName
}

func (y *YandexTranslator) Translate(ctx context.Context, req Request) (*Result, error) {
	params := url.Values{}
	params.Set("key", req.APIKey)
	params.Set("text", req.Text)
	params.Set("lang", req.Lang.ShortDescription())

	var resp yandexTranslateResponse
	if err := y.get(ctx, "tr.json/translate", params, &resp); err != nil {
		return nil, err
	}

	if len(resp.Text) == 0 {
		return nil, errors.NewTranslationError(YandexName, yandexBadResponse, resp.Code, nil)
	}

	lang := req.Lang
	if from, to, ok := strings.Cut(resp.Lang, "-"); ok {
		lang = domain.LangConfig{From: from, To: to}
	}

	return &Result{Text: strings.Join(resp.Text, "\n"), Lang: lang}, nil
}

func (y *YandexTranslator) Detect(ctx context.Context, text string, hints []string, apiKey string) (string, error) {
	params := url.Values{}
	params.Set("key", apiKey)
	params.Set("text", text)
	if len(hints) > 0 {
		params.Set("hint", strings.Join(hints, ","))
	}

	var resp yandexDetectResponse
	if err := y.get(ctx, "tr.json/detect", params, &resp); err != nil {
		return "", err
	}

	if resp.Lang == "" {
		return "", errors.NewTranslationError(YandexName, yandexBadResponse, resp.Code, nil)
	}

	return resp.Lang, nil
}

func (y *YandexTranslator) get(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := y.baseURL + path + "?" + params.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return errors.NewTranslationError(YandexName, yandexBadResponse, 0, err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := y.httpClient.Do(httpReq)
	if err != nil {
		y.log.WarnContext(ctx, "yandex request failed", slog.String("path", path), slog.Any("error", err))
		return errors.NewTranslationError(YandexName, yandexBadResponse, 0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return errors.NewTranslationError(YandexName, yandexBadResponse, 0, err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := yandexBadResponse
		if known, ok := yandexStatusMessages[resp.StatusCode]; ok {
			msg = known
		}

		y.log.WarnContext(ctx, "yandex returned an error",
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
			slog.String("body", truncate(string(body), 200)),
		)
		return errors.NewTranslationError(YandexName, msg, resp.StatusCode, nil)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return errors.NewTranslationError(YandexName, yandexBadResponse, resp.StatusCode, fmt.Errorf("decode %s: %w", path, err))
	}

	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
