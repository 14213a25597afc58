package classify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"google.golang.org/genai"

	"github.com/rbarbosa/gastos-tracker/internal/model"
)

// GeminiClassifier classifies transaction descriptions with the Gemini API.
type GeminiClassifier struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	prompt  string
}

// NewGeminiClassifier creates a classifier backed by the given Gemini model.
// Credentials come from the environment (GEMINI_API_KEY or application
// default credentials).
func NewGeminiClassifier(ctx context.Context, modelName string, timeout time.Duration) (*GeminiClassifier, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("classify: create genai client: %w", err)
	}

	return &GeminiClassifier{
		client:  client,
		model:   modelName,
		timeout: timeout,
		prompt:  buildPrompt(),
	}, nil
}

func buildPrompt() string {
	return "You are a personal finance classifier for Brazilian credit card transactions.\n\n" +
		"Task:\n" +
		"- Classify the transaction description into EXACTLY ONE of these categories:\n" +
		"  " + strings.Join(model.Categories, ", ") + "\n\n" +
		"Rules:\n" +
		"- Answer with the category name ONLY, nothing else.\n" +
		"- Do NOT explain, do NOT add punctuation, do NOT use Markdown.\n" +
		"- If unsure, answer \"Outros\".\n\n" +
		"Transaction description:\n"
}

// Classify sends one description to the model and returns the raw answer.
// The caller is responsible for validating it against the vocabulary.
func (g *GeminiClassifier) Classify(ctx context.Context, description string) (string, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: g.prompt + description},
			},
		},
	}

	var answer string
	err := retry.Do(
		func() error {
			callCtx, cancel := context.WithTimeout(ctx, g.timeout)
			defer cancel()

			resp, err := g.client.Models.GenerateContent(callCtx, g.model, contents, nil)
			if err != nil {
				return fmt.Errorf("generate content: %w", err)
			}

			text := strings.TrimSpace(resp.Text())
			if text == "" {
				return fmt.Errorf("empty response from model")
			}

			answer = cleanAnswer(text)
			return nil
		},
		retry.Attempts(2),
		retry.Delay(500*time.Millisecond),
		retry.Context(ctx),
	)
	if err != nil {
		return "", fmt.Errorf("classify %q: %w", description, err)
	}

	return answer, nil
}

// cleanAnswer strips code fences and extra lines the model sometimes adds
// despite the instructions.
func cleanAnswer(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	// Keep only the first line.
	if idx := strings.Index(s, "\n"); idx != -1 {
		s = s[:idx]
	}

	return strings.TrimSpace(strings.Trim(s, ".\"'"))
}
