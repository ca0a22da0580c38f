package memory_test

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/imtej/meera-os-hive-mind-agents-api/pkg/model"
	"github.com/imtej/meera-os-hive-mind-agents-api/pkg/repository"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

// mockGemini scripts provider behavior per test
type mockGemini struct {
	embedFn    func(text string) ([]float32, error)
	generateFn func(contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

func (m *mockGemini) Embedding(ctx context.Context, text string) ([]float32, error) {
	if m.embedFn == nil {
		return []float32{1, 0, 0}, nil
	}
	return m.embedFn(text)
}

func (m *mockGemini) GenerateContent(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	if m.generateFn == nil {
		return nil, goerr.New("no generate script")
	}
	return m.generateFn(contents, config)
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: text}}}},
		},
	}
}

// fakeIndex is a scriptable VectorIndex
type fakeIndex struct {
	hits      []*repository.VectorHit
	searchErr error
	upsertErr error
}

func (f *fakeIndex) UpsertMemory(ctx context.Context, node *model.MemoryNode) error {
	return f.upsertErr
}

func (f *fakeIndex) SearchMemories(ctx context.Context, embedding []float32, scope model.Scope, ownerID string, limit int) ([]*repository.VectorHit, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if len(f.hits) > limit {
		return f.hits[:limit], nil
	}
	return f.hits, nil
}

func storedNode(owner string, hive bool, createdAt time.Time, content string) *model.MemoryNode {
	return &model.MemoryNode{
		ID:         model.NewMemoryID(),
		OwnerID:    owner,
		Content:    content,
		Type:       model.MemoryTypeFactual,
		IsHiveMind: hive,
		Embedding:  firestore.Vector32{1, 0, 0},
		CreatedAt:  createdAt,
	}
}
