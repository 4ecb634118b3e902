package translate

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"google.golang.org/genai"

	errors "github.com/Proton-105/lanxat-bot/internal/errors"
)

const (
	GeminiName         = "Gemini"
	DefaultGeminiModel = "gemini-2.0-flash"

	geminiBadResponse = "Unexpected bad response from Gemini API"

	translateInstruction = "You are a translation engine. Translate the user's text from the language with ISO 639-1 code %q " +
		"to the language with ISO 639-1 code %q. Reply with the translation only, without quotes or comments."
	detectInstruction = "Identify the language of the user's text. Reply with its ISO 639-1 two-letter code only."
)

var isoCodePattern = regexp.MustCompile(`[a-z]{2}`)

// contentGenerator is the part of *genai.Models the translator needs.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

var _ contentGenerator = (*genai.Models)(nil)

// GeminiTranslator prompts a Gemini model with the server's API key.
type GeminiTranslator struct {
	models contentGenerator
	model  string
	log    *slog.Logger
}

var _ Translator = (*GeminiTranslator)(nil)

func NewGeminiTranslator(ctx context.Context, apiKey, model string, log *slog.Logger) (*GeminiTranslator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return newGeminiTranslator(client.Models, model, log), nil
}

func newGeminiTranslator(models contentGenerator, model string, log *slog.Logger) *GeminiTranslator {
	if model == "" {
		model = DefaultGeminiModel
	}
	if log == nil {
		log = slog.Default()
	}

	return &GeminiTranslator{
		models: models,
		model:  model,
		log:    log.With(slog.String("component", "gemini_translator"), slog.String("model", model)),
	}
}

func (g *GeminiTranslator) Name() string {
	return GeminiName
}

func (g *GeminiTranslator) Translate(ctx context.Context, req Request) (*Result, error) {
	instruction := fmt.Sprintf(translateInstruction, req.Lang.From, req.Lang.To)

	text, err := g.generate(ctx, instruction, req.Text)
	if err != nil {
		return nil, err
	}

	return &Result{Text: text, Lang: req.Lang}, nil
}

func (g *GeminiTranslator) Detect(ctx context.Context, text string, hints []string, _ string) (string, error) {
	instruction := detectInstruction
	if len(hints) > 0 {
		instruction += " If unsure, prefer one of: " + strings.Join(hints, ", ") + "."
	}

	answer, err := g.generate(ctx, instruction, text)
	if err != nil {
		return "", err
	}

	code := isoCodePattern.FindString(strings.ToLower(answer))
	if code == "" {
		g.log.WarnContext(ctx, "gemini returned no language code", slog.String("answer", truncate(answer, 50)))
		return "", errors.NewTranslationError(GeminiName, geminiBadResponse, 0, nil)
	}

	return code, nil
}

func (g *GeminiTranslator) generate(ctx context.Context, instruction, text string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: instruction}}},
	}

	resp, err := g.models.GenerateContent(ctx, g.model, []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}, cfg)
	if err != nil {
		g.log.WarnContext(ctx, "gemini request failed", slog.Any("error", err))

		return "", errors.NewTranslationError(GeminiName, geminiBadResponse, apiStatusCode(err), err)
	}

	answer := strings.TrimSpace(responseText(resp))
	if answer == "" {
		return "", errors.NewTranslationError(GeminiName, geminiBadResponse, 0, nil)
	}

	return answer, nil
}

// apiStatusCode returns the HTTP status of a Gemini API error, or 0 when the
// request failed before the API answered.
func apiStatusCode(err error) int {
	for e := err; e != nil; e = stdErrors.Unwrap(e) {
		switch apiErr := e.(type) {
		case genai.APIError:
			return apiErr.Code
		case *genai.APIError:
			return apiErr.Code
		}
	}
	return 0
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}
