// Package rewrite turns a feed item into a unique, channel-ready text via a
// text-generation service. The contract never fails: on any service or
// parse error the original title and text come back unchanged.
package rewrite

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/deusflow/newsrelay/internal/logger"
	"github.com/deusflow/newsrelay/internal/metrics"
)

type Rewriter struct {
	client   *genai.Client
	model    string
	fallback *openAIFallback // optional second provider

	generate func(ctx context.Context, prompt string) (string, string, error)
}

func NewRewriter(ctx context.Context, apiKey, model, openAIKey string) (*Rewriter, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	r := &Rewriter{client: client, model: model}
	r.generate = r.rewriteWithGemini
	if openAIKey != "" {
		r.fallback = newOpenAIFallback(openAIKey)
	}
	return r, nil
}

func (r *Rewriter) Close() {
	if r.client != nil {
		r.client.Close()
	}
}

// Rewrite returns a rewritten (title, text). It tries Gemini first, then the
// OpenAI fallback if configured, and finally gives back the originals.
func (r *Rewriter) Rewrite(ctx context.Context, title, text string) (string, string) {
	prompt := buildPrompt(title, sanitize(text))

	newTitle, newText, err := r.generate(ctx, prompt)
	if err == nil {
		return newTitle, newText
	}
	logger.Warn("gemini rewrite failed", "title", titlePrefix(title), "error", err)

	if r.fallback != nil {
		newTitle, newText, err = r.fallback.rewrite(ctx, prompt)
		if err == nil {
			logger.Info("rewrite via fallback provider", "title", titlePrefix(title))
			return newTitle, newText
		}
		logger.Warn("fallback rewrite failed", "title", titlePrefix(title), "error", err)
	}

	metrics.Global.IncrementRewriteFallbacks()
	logger.Warn("all rewrite providers failed, using original text", "title", titlePrefix(title))
	return title, text
}

func (r *Rewriter) rewriteWithGemini(ctx context.Context, prompt string) (string, string, error) {
	model := r.client.GenerativeModel(r.model)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", "", fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", "", fmt.Errorf("no response from Gemini")
	}

	response := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])
	return parseResponse(response)
}

func buildPrompt(title, text string) string {
	return fmt.Sprintf(`Перепиши следующий новостной текст, сделай его уникальным, простым к восприятию, коротким и информативным. Сначала придумай новый заголовок (короткий, цепляющий, без звездочек), затем сам текст (сжатый, читабельный, разделённый на абзацы если текст большой).

Заголовок: %s
Текст: %s

Формат ответа:
Заголовок: <новый заголовок>
Текст: <уникализированный текст>`, title, text)
}

var responsePattern = regexp.MustCompile(`(?s)Заголовок:\s*(.+?)\s*Текст:\s*(.+)`)

// parseResponse extracts the rewritten title and text from the labeled
// response format. An unparseable response is an error so the caller can
// fall back.
func parseResponse(response string) (string, string, error) {
	m := responsePattern.FindStringSubmatch(response)
	if m == nil {
		return "", "", fmt.Errorf("could not parse rewrite response: missing labels")
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), nil
}

// sanitize collapses whitespace and bounds the prompt size.
func sanitize(text string) string {
	text = strings.ReplaceAll(text, "\r", "")
	text = strings.Join(strings.Fields(text), " ")

	const maxChars = 6000
	if utf8.RuneCountInString(text) > maxChars {
		runes := []rune(text)
		trimmed := string(runes[:maxChars])
		if idx := strings.LastIndex(trimmed, ". "); idx > 1200 {
			trimmed = trimmed[:idx+1]
		}
		text = trimmed
	}
	return text
}

func titlePrefix(title string) string {
	runes := []rune(title)
	if len(runes) > 60 {
		return string(runes[:60]) + "..."
	}
	return title
}
