package insights

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Advise sends the summary to Gemini and returns a short spending analysis
// in Portuguese.
func Advise(ctx context.Context, modelName string, s Summary) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return "", fmt.Errorf("insights: create genai client: %w", err)
	}

	prompt := "Você é um consultor financeiro pessoal.\n\n" +
		"Analise o resumo de gastos de cartão de crédito abaixo e escreva uma\n" +
		"análise curta em português (no máximo 5 parágrafos):\n" +
		"- Destaque as categorias que mais pesam no orçamento.\n" +
		"- Aponte variações notáveis entre períodos.\n" +
		"- Sugira até três ações concretas para reduzir gastos.\n" +
		"- Responda em texto simples, sem Markdown.\n\n" +
		Render(s)

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
			},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, modelName, contents, nil)
	if err != nil {
		return "", fmt.Errorf("insights: generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("insights: empty response from model")
	}

	return text, nil
}
