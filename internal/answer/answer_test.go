package answer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestGenerateAgainstStubEndpoint(t *testing.T) {
	var gotModel string
	var gotPrompt string

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		gotModel = req.Model
		if len(req.Messages) == 2 {
			gotPrompt = req.Messages[1].Content
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "cmpl-1",
			"object": "chat.completion",
			"choices": [{
				"index": 0,
				"finish_reason": "stop",
				"message": {"role": "assistant", "content": "  The meeting is at three.  "}
			}]
		}`))
	}))
	defer ts.Close()

	g, err := New("test-key", "llama3.2:3b", 150, WithBaseURL(ts.URL), WithTimeout(5*time.Second))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	answer, err := g.Generate(context.Background(), "When is the meeting?", "We moved the meeting to three.")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if answer != "The meeting is at three." {
		t.Errorf("unexpected answer: %q", answer)
	}
	if gotModel != "llama3.2:3b" {
		t.Errorf("unexpected model: %q", gotModel)
	}
	if !strings.Contains(gotPrompt, "When is the meeting?") {
		t.Errorf("prompt missing question: %q", gotPrompt)
	}
	if !strings.Contains(gotPrompt, "We moved the meeting to three.") {
		t.Errorf("prompt missing context: %q", gotPrompt)
	}
}

func TestNewRejectsEmptyModel(t *testing.T) {
	if _, err := New("key", "", 150); err == nil {
		t.Fatal("expected error for empty model")
	}
}

func TestBuildPromptWithoutContext(t *testing.T) {
	prompt := buildPrompt("What is Go?", "")
	if strings.Contains(prompt, "Context:") {
		t.Errorf("context section should be absent: %q", prompt)
	}
	if !strings.Contains(prompt, "What is Go?") {
		t.Errorf("prompt missing question: %q", prompt)
	}
}
