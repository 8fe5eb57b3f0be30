package main

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/papercheck/internal/classify"
	"github.com/hyperifyio/papercheck/internal/role"
)

func TestAnswer(t *testing.T) {
	ru := []string{"автор", "заголовок", "сведения_об_авторе", "аннотация", "ключевые_слова", "основной_текст"}
	cases := map[string]string{
		"Ключевые слова: сушка, кинетика": "ключевые_слова",
		"Иванов И.И., Петров П.П.":        "автор",
		"МЕТОДЫ АНАЛИЗА ДАННЫХ":           "заголовок",
		"В статье рассмотрены методы.":    "аннотация",
	}
	for text, want := range cases {
		if got := answer(ru, text); got != want {
			t.Fatalf("%q: got %q, want %q", text, got, want)
		}
	}
	body := "Процесс сушки протекает в три периода, каждый из которых описывается отдельным уравнением."
	if got := answer(ru, body); got != "основной_текст" {
		t.Fatalf("body paragraph: got %q", got)
	}
	if got := answer([]string{"основной_текст"}, "Ключевые слова: a, b, c"); got != "основной_текст" {
		t.Fatalf("labels outside the permitted list must not be returned, got %q", got)
	}
}

func TestParsePrompt_RoundTripsBuildPrompt(t *testing.T) {
	permitted := []role.Role{role.AuthorEN, role.BodyText}
	prompt := classify.BuildPrompt("Smith J. A., Brown K.", permitted, "")
	labels, text := parsePrompt(prompt)
	if len(labels) != 2 || labels[0] != role.AuthorEN.Label() || labels[1] != role.BodyText.Label() {
		t.Fatalf("labels %v", labels)
	}
	if text != "Smith J. A., Brown K." {
		t.Fatalf("text %q", text)
	}
}

func TestStub_ServesGoOpenAIClient(t *testing.T) {
	srv := httptest.NewServer(newMux("stub", 2))
	defer srv.Close()

	cfg := openai.DefaultConfig("")
	cfg.BaseURL = srv.URL + "/v1"
	client := openai.NewClientWithConfig(cfg)
	req := openai.ChatCompletionRequest{
		Model:    "stub",
		Messages: []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: classify.BuildPrompt("УДК 004.8", []role.Role{role.BodyText}, "")}},
	}

	resp, err := client.CreateChatCompletion(context.Background(), req)
	if err != nil {
		t.Fatalf("first completion: %v", err)
	}
	if got := resp.Choices[0].Message.Content; got != "основной_текст" {
		t.Fatalf("content %q", got)
	}
	_, err = client.CreateChatCompletion(context.Background(), req)
	var apiErr *openai.APIError
	if !errors.As(err, &apiErr) || apiErr.HTTPStatusCode != 429 {
		t.Fatalf("second completion should be rate limited, got %v", err)
	}
}
