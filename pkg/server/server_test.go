package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/imtej/meera-os-hive-mind-agents-api/pkg/model"
	"github.com/imtej/meera-os-hive-mind-agents-api/pkg/prompt"
	"github.com/imtej/meera-os-hive-mind-agents-api/pkg/repository"
	"github.com/imtej/meera-os-hive-mind-agents-api/pkg/server"
	"github.com/imtej/meera-os-hive-mind-agents-api/pkg/usecase/chat"
	"github.com/imtej/meera-os-hive-mind-agents-api/pkg/usecase/memory"
	"github.com/m-mizutani/gt"
	"google.golang.org/genai"
)

// stubGemini answers every request with canned text and a fixed embedding
type stubGemini struct {
	response   string
	extraction string
}

func (g *stubGemini) Embedding(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func (g *stubGemini) GenerateContent(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	text := g.response
	if config != nil && config.ResponseSchema != nil {
		text = g.extraction
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: text}}}},
		},
	}, nil
}

type noopIndex struct{}

func (noopIndex) UpsertMemory(ctx context.Context, node *model.MemoryNode) error {
	return nil
}

func (noopIndex) SearchMemories(ctx context.Context, embedding []float32, scope model.Scope, ownerID string, limit int) ([]*repository.VectorHit, error) {
	return nil, nil
}

func newTestHandler(gemini *stubGemini) http.Handler {
	repo := repository.New(repository.NewMemStore(), noopIndex{})
	memories := memory.New(repo, gemini)
	builder := prompt.NewBuilder(prompt.DefaultPersona())
	session := chat.New(memories, gemini, builder)
	return server.New(session).Handler()
}

func TestHealthEndpoint(t *testing.T) {
	handler := newTestHandler(&stubGemini{response: "ok"})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	gt.Equal(t, rec.Code, http.StatusOK)
	gt.S(t, rec.Body.String()).Contains("ok")
}

func TestChatEndpoint(t *testing.T) {
	handler := newTestHandler(&stubGemini{
		response:   "Hello from Meera.",
		extraction: `[{"content": "Enjoys cricket", "memory_type": "preference"}]`,
	})

	body := map[string]any{
		"user_id": "39383",
		"message": "I enjoy watching cricket",
		"conversation_history": []model.Message{
			{Role: model.RoleUser, Content: "hi"},
			{Role: model.RoleAssistant, Content: "hello"},
		},
	}
	raw, err := json.Marshal(body)
	gt.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(rec, req)

	gt.Equal(t, rec.Code, http.StatusOK)

	var resp struct {
		Response  string   `json:"response"`
		UserID    string   `json:"user_id"`
		Intent    string   `json:"intent"`
		MemoryIDs []string `json:"memory_ids"`
	}
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	gt.Equal(t, resp.Response, "Hello from Meera.")
	gt.Equal(t, resp.UserID, "39383")
	gt.Equal(t, len(resp.MemoryIDs), 1)
}

func TestChatEndpointValidation(t *testing.T) {
	handler := newTestHandler(&stubGemini{response: "unused"})

	cases := []struct {
		name string
		body string
	}{
		{"invalid json", `{not json`},
		{"missing user_id", `{"message": "hello"}`},
		{"missing message", `{"user_id": "39383"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader([]byte(tc.body)))
			handler.ServeHTTP(rec, req)
			gt.Equal(t, rec.Code, http.StatusBadRequest)
			gt.S(t, rec.Body.String()).Contains("error")
		})
	}
}
