// Package reflection produces the short encouragement message shown on the
// organizer dashboard.
package reflection

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/okian/triagem/internal/i18n"
	"github.com/okian/triagem/pkg/logger"
	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// ErrMissingAPIKey is returned by NewGenAI without a key.
var ErrMissingAPIKey = errors.New("genai api key is required")

// Counts are the attendee numbers the message refers to.
type Counts struct {
	Musicians int
	Organists int
}

// Generator writes an encouragement message.
type Generator interface {
	Generate(ctx context.Context, c Counts) (string, error)
}

// EmptyFallback is returned when the model answers with no text.
func EmptyFallback() string { return i18n.Label("reflection.fallback.empty") }

// ErrorFallback is returned alongside the error when the model call fails.
func ErrorFallback() string { return i18n.Label("reflection.fallback.error") }

// Prompt builds the pt-BR instruction sent to the model.
func Prompt(c Counts) string {
	return fmt.Sprintf(`Você é um assistente especializado em eventos musicais sacros.
Temos atualmente %d músicos (irmãos) e %d organistas (irmãs) registrados no evento.

Por favor, gere uma breve mensagem de encorajamento (máximo 3 parágrafos) para este grupo de músicos e organistas.
Use um tom respeitoso, solene e inspirador. Mencione a importância da harmonia e do louvor.
A mensagem deve ser em Português do Brasil.`, c.Musicians, c.Organists)
}

// contentGenerator is the subset of *genai.Models used here.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GenAI asks a Gemini model for the message.
type GenAI struct {
	models contentGenerator
	model  string
	logger logger.Logger
}

// NewGenAI creates a Gemini-backed generator.
func NewGenAI(ctx context.Context, apiKey, model string) (*GenAI, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newGenAI(client.Models, model), nil
}

func newGenAI(models contentGenerator, model string) *GenAI {
	if model == "" {
		model = DefaultModel
	}
	return &GenAI{
		models: models,
		model:  model,
		logger: logger.Get().Named("reflection"),
	}
}

// Generate returns the model text. On failure it returns the error fallback
// together with the error so callers can still show a message.
func (g *GenAI) Generate(ctx context.Context, c Counts) (string, error) {
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(Prompt(c)), nil)
	if err != nil {
		g.logger.Error(ctx, "genai generate failed",
			logger.String("model", g.model),
			logger.Error(err),
		)
		return ErrorFallback(), fmt.Errorf("generate reflection: %w", err)
	}
	text := ""
	if resp != nil {
		text = strings.TrimSpace(resp.Text())
	}
	if text == "" {
		return EmptyFallback(), nil
	}
	return text, nil
}

// Static always returns the empty-answer fallback. Used when no API key is configured.
type Static struct{}

// Generate implements Generator.
func (Static) Generate(context.Context, Counts) (string, error) {
	return EmptyFallback(), nil
}

var (
	_ Generator = (*GenAI)(nil)
	_ Generator = Static{}
)
