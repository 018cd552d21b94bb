package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiAdapter implements Adapter using Google's Gemini API.
type GeminiAdapter struct {
	client *genai.Client
	model  string
}

// NewGeminiAdapter creates a Gemini-backed enrichment adapter.
func NewGeminiAdapter(ctx context.Context, apiKey, model string) (*GeminiAdapter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}

	return &GeminiAdapter{client: client, model: model}, nil
}

// analysisSchema pins the model output to the enrichment contract.
var analysisSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title":            {Type: genai.TypeString},
		"summary":          {Type: genai.TypeString},
		"themes":           {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"people_mentioned": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"period_mentioned": {Type: genai.TypeString, Nullable: genai.Ptr(true)},
	},
	Required: []string{"title", "summary", "themes", "people_mentioned"},
}

// Transcribe converts recorded audio into plain text.
func (a *GeminiAdapter) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText("Transcreva este áudio em português, palavra por palavra, sem comentários."),
			genai.NewPartFromBytes(audio, mimeType),
		}, genai.RoleUser),
	}

	result, err := a.client.Models.GenerateContent(ctx, a.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("Gemini transcription failed: %w", err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", fmt.Errorf("Gemini transcription returned no text")
	}
	return text, nil
}

// Analyze derives title, summary, themes, people and period from memory text.
func (a *GeminiAdapter) Analyze(ctx context.Context, content string, hints Context) (*Analysis, error) {
	var prompt strings.Builder
	prompt.WriteString("Você organiza memórias pessoais para um livro de vida.\n")
	prompt.WriteString("Analise o relato abaixo e devolva JSON com: title (curto, evocativo), ")
	prompt.WriteString("summary (2-3 frases), themes, people_mentioned e period_mentioned ")
	prompt.WriteString("(época ou data citada no relato, ou null).\n")
	if hints.QuestionText != "" {
		prompt.WriteString(fmt.Sprintf("Pergunta que motivou o relato: %s\n", hints.QuestionText))
	}
	if hints.CategoryName != "" {
		prompt.WriteString(fmt.Sprintf("Categoria escolhida: %s\n", hints.CategoryName))
	}
	prompt.WriteString("\nRelato:\n")
	prompt.WriteString(content)

	contents := []*genai.Content{
		genai.NewContentFromText(prompt.String(), genai.RoleUser),
	}

	result, err := a.client.Models.GenerateContent(ctx, a.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   analysisSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("Gemini analysis failed: %w", err)
	}

	var analysis Analysis
	if err := json.Unmarshal([]byte(result.Text()), &analysis); err != nil {
		return nil, fmt.Errorf("decode Gemini analysis: %w", err)
	}
	if analysis.Title == "" {
		return nil, fmt.Errorf("Gemini analysis returned no title")
	}
	return &analysis, nil
}

// ExtractText runs OCR over a photographed letter or document.
func (a *GeminiAdapter) ExtractText(ctx context.Context, image []byte, mimeType string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText("Extraia todo o texto legível desta imagem, preservando parágrafos. Responda apenas com o texto."),
			genai.NewPartFromBytes(image, mimeType),
		}, genai.RoleUser),
	}

	result, err := a.client.Models.GenerateContent(ctx, a.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("Gemini OCR failed: %w", err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", fmt.Errorf("Gemini OCR returned no text")
	}
	return text, nil
}
