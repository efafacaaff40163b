package extractor

import (
	"context"
	"errors"
	"testing"
	"time"

	openai "brand-profiler/internal/infra/openai"
)

type stubChatClient struct {
	content string
	err     error
	lastReq openai.ChatCompletionRequest
}

func (s *stubChatClient) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.lastReq = req
	if s.err != nil {
		return openai.ChatCompletionResponse{}, s.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatMessage{Role: "assistant", Content: s.content}},
		},
	}, nil
}

func TestStripCodeFence(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"без ограды", `{"a":1}`, `{"a":1}`},
		{"json-ограда", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"безъязыковая ограда", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"пробелы вокруг", "  ```json\n{\"a\":1}\n```  ", `{"a":1}`},
		{"верхний регистр", "```JSON\n{\"a\":1}\n```", `{"a":1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StripCodeFence(tc.in); got != tc.want {
				t.Fatalf("получили %q, ожидали %q", got, tc.want)
			}
		})
	}
}

func TestGenerateStructuredStripsFence(t *testing.T) {
	client := &stubChatClient{content: "```json\n{\"tone\": \"тёплый\"}\n```"}
	svc := NewOpenAI(client, "gpt-4.1-mini", time.Minute)

	raw, err := svc.GenerateStructured(context.Background(), "опиши тон", 0.2)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if string(raw) != `{"tone": "тёплый"}` {
		t.Fatalf("ограда не снята: %q", string(raw))
	}
	if client.lastReq.ResponseFormat == nil || client.lastReq.ResponseFormat.Type != openai.ResponseFormatTypeJSONObject {
		t.Fatalf("запрос должен требовать json_object")
	}
}

func TestGenerateStructuredInvalidJSONIsError(t *testing.T) {
	client := &stubChatClient{content: "к сожалению, не могу"}
	svc := NewOpenAI(client, "", 0)

	if _, err := svc.GenerateStructured(context.Background(), "опиши тон", 0.2); err == nil {
		t.Fatalf("невалидный JSON должен быть ошибкой сервиса")
	}
}

func TestGenerateStructuredClientErrorPropagates(t *testing.T) {
	wantErr := errors.New("таймаут")
	client := &stubChatClient{err: wantErr}
	svc := NewOpenAI(client, "gpt-4.1-mini", time.Minute)

	if _, err := svc.GenerateStructured(context.Background(), "опиши тон", 0.2); !errors.Is(err, wantErr) {
		t.Fatalf("ошибка клиента должна оборачиваться: %v", err)
	}
}

func TestGenerateStructuredEmptyContentIsError(t *testing.T) {
	client := &stubChatClient{content: ""}
	svc := NewOpenAI(client, "gpt-4.1-mini", time.Minute)

	if _, err := svc.GenerateStructured(context.Background(), "опиши тон", 0.2); err == nil {
		t.Fatalf("пустой контент не является валидным JSON")
	}
}
