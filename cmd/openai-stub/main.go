// Command openai-stub is a local OpenAI-compatible server that answers
// paragraph classification prompts with a role label, for manual end-to-end
// runs without a hosted model. Set RATE_LIMIT_EVERY=n to answer every n-th
// completion with 429.
package main

import (
	"encoding/json"
	"net/http"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

const (
	labelsMarker = "Ответь ТОЛЬКО одним словом из списка:\n"
	textMarker   = "Текст: \""
)

var authorLine = regexp.MustCompile(`^[А-ЯЁA-Z][а-яёa-z]+\s+[А-ЯЁA-Z]\.\s*[А-ЯЁA-Z]\.`)

// parsePrompt extracts the permitted labels and the paragraph excerpt.
func parsePrompt(prompt string) ([]string, string) {
	var labels []string
	if i := strings.Index(prompt, labelsMarker); i >= 0 {
		line := prompt[i+len(labelsMarker):]
		if j := strings.IndexByte(line, '\n'); j >= 0 {
			line = line[:j]
		}
		for _, l := range strings.Split(line, ",") {
			if l = strings.TrimSpace(l); l != "" {
				labels = append(labels, l)
			}
		}
	}
	text := ""
	if i := strings.LastIndex(prompt, textMarker); i >= 0 {
		text = prompt[i+len(textMarker):]
		if j := strings.LastIndex(text, "\"\n\nТип:"); j >= 0 {
			text = text[:j]
		}
	}
	return labels, strings.TrimSpace(text)
}

// answer picks a label by surface cues, restricted to the permitted list.
func answer(labels []string, text string) string {
	permitted := func(l string) bool {
		for _, x := range labels {
			if x == l {
				return true
			}
		}
		return false
	}
	lower := strings.ToLower(text)
	var guesses []string
	switch {
	case strings.HasPrefix(lower, "ключевые слова"):
		guesses = []string{"ключевые_слова"}
	case strings.HasPrefix(lower, "keywords"), strings.HasPrefix(lower, "key words"):
		guesses = []string{"ключевые_слова_английские"}
	case strings.HasPrefix(lower, "в статье"), strings.HasPrefix(lower, "аннотация"):
		guesses = []string{"аннотация"}
	case strings.HasPrefix(lower, "the article"), strings.HasPrefix(lower, "abstract"), strings.HasPrefix(lower, "the paper"):
		guesses = []string{"аннотация_английская"}
	case authorLine.MatchString(text):
		guesses = []string{"автор", "автор_английский"}
	case len([]rune(text)) < 150 && !strings.HasSuffix(text, "."):
		guesses = []string{"заголовок", "заголовок_английский"}
	}
	for _, g := range guesses {
		if permitted(g) {
			return g
		}
	}
	return "основной_текст"
}

func newMux(model string, rateLimitEvery int64) http.Handler {
	var completions atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   []map[string]any{{"id": model, "object": "model"}},
		})
	})
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		n := completions.Add(1)
		if rateLimitEvery > 0 && n%rateLimitEvery == 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"rate_limit","code":429}}`))
			return
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) == 0 {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		labels, text := parsePrompt(req.Messages[len(req.Messages)-1].Content)
		label := answer(labels, text)
		log.Debug().Int64("n", n).Str("label", label).Int("text_len", len(text)).Msg("completion")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "stub-" + strconv.FormatInt(n, 10),
			"object": "chat.completion",
			"model":  model,
			"choices": []map[string]any{
				{"index": 0, "message": map[string]string{"role": "assistant", "content": label}},
			},
		})
	})
	return mux
}

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	model := os.Getenv("MODEL_ID")
	if strings.TrimSpace(model) == "" {
		model = "test-model"
	}
	addr := os.Getenv("ADDR")
	if strings.TrimSpace(addr) == "" {
		addr = ":8081"
	}
	every, _ := strconv.ParseInt(os.Getenv("RATE_LIMIT_EVERY"), 10, 64)

	log.Info().Str("addr", addr).Str("model", model).Int64("rate_limit_every", every).Msg("openai-stub listening")
	if err := http.ListenAndServe(addr, newMux(model, every)); err != nil {
		log.Fatal().Err(err).Msg("serve")
	}
}
