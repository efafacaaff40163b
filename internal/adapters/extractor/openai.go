package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"brand-profiler/internal/domain"
	openai "brand-profiler/internal/infra/openai"
)

type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAI реализует domain.Extractor через OpenAI Chat Completions.
type OpenAI struct {
	client  chatClient
	model   string
	timeout time.Duration
}

var _ domain.Extractor = (*OpenAI)(nil)

// NewOpenAI создаёт сервис структурированной генерации.
func NewOpenAI(client chatClient, model string, timeout time.Duration) *OpenAI {
	if model == "" {
		model = "gpt-4.1-mini"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OpenAI{client: client, model: model, timeout: timeout}
}

// GenerateStructured выполняет промпт и возвращает валидный JSON.
// Обрамляющие code-fence маркеры снимаются до парсинга, ошибка
// парсинга возвращается как сбой сервиса.
func (e *OpenAI) GenerateStructured(ctx context.Context, prompt string, temperature float64) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:       e.model,
		Temperature: temperature,
		Messages: []openai.ChatMessage{
			{
				Role:    openai.RoleSystem,
				Content: "Ты аналитик бренд-контента. Отвечай только валидным JSON по схеме из запроса, без пояснений и без выдуманных фактов.",
			},
			{
				Role:    openai.RoleUser,
				Content: prompt,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ResponseFormatTypeJSONObject},
	}

	resp, err := e.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai completion: пустой ответ")
	}
	content := StripCodeFence(resp.Choices[0].Message.Content)
	if !json.Valid([]byte(content)) {
		return nil, fmt.Errorf("ответ LLM не является валидным JSON")
	}
	return json.RawMessage(content), nil
}

// StripCodeFence снимает обрамление ```json ... ``` вокруг ответа модели.
func StripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```")
	if idx := strings.Index(content, "\n"); idx >= 0 {
		first := strings.TrimSpace(content[:idx])
		// язык указывается на первой строке ограды
		if first == "" || first == "json" || first == "JSON" {
			content = content[idx+1:]
		}
	}
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}
