package repository_test

import (
	"context"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/imtej/meera-os-hive-mind-agents-api/pkg/model"
	"github.com/imtej/meera-os-hive-mind-agents-api/pkg/repository"
	"github.com/m-mizutani/gt"
)

func indexedNode(owner string, hive bool, embedding []float32) *model.MemoryNode {
	return &model.MemoryNode{
		ID:         model.NewMemoryID(),
		OwnerID:    owner,
		Content:    "indexed content",
		Type:       model.MemoryTypeFactual,
		IsHiveMind: hive,
		Embedding:  firestore.Vector32(embedding),
		CreatedAt:  time.Now(),
	}
}

func TestChromemIndexSearch(t *testing.T) {
	ctx := context.Background()
	index, err := repository.NewChromemIndex("")
	gt.NoError(t, err)

	near := indexedNode("user-1", false, []float32{1, 0, 0})
	far := indexedNode("user-1", false, []float32{0, 1, 0})
	gt.NoError(t, index.UpsertMemory(ctx, near))
	gt.NoError(t, index.UpsertMemory(ctx, far))

	hits, err := index.SearchMemories(ctx, []float32{0.9, 0.1, 0}, model.ScopePersonal, "user-1", 2)
	gt.NoError(t, err)
	gt.Equal(t, len(hits), 2)
	gt.Equal(t, hits[0].ID, near.ID)
	gt.True(t, hits[0].Similarity > hits[1].Similarity)
}

func TestChromemIndexScopeFilter(t *testing.T) {
	ctx := context.Background()
	index, err := repository.NewChromemIndex("")
	gt.NoError(t, err)

	mine := indexedNode("user-1", false, []float32{1, 0, 0})
	other := indexedNode("user-2", false, []float32{1, 0, 0})
	shared := indexedNode("user-2", true, []float32{1, 0, 0})
	gt.NoError(t, index.UpsertMemory(ctx, mine))
	gt.NoError(t, index.UpsertMemory(ctx, other))
	gt.NoError(t, index.UpsertMemory(ctx, shared))

	personal, err := index.SearchMemories(ctx, []float32{1, 0, 0}, model.ScopePersonal, "user-1", 10)
	gt.NoError(t, err)
	gt.Equal(t, len(personal), 1)
	gt.Equal(t, personal[0].ID, mine.ID)

	hive, err := index.SearchMemories(ctx, []float32{1, 0, 0}, model.ScopeHive, "", 10)
	gt.NoError(t, err)
	gt.Equal(t, len(hive), 1)
	gt.Equal(t, hive[0].ID, shared.ID)
}

func TestChromemIndexEmptyCollection(t *testing.T) {
	ctx := context.Background()
	index, err := repository.NewChromemIndex("")
	gt.NoError(t, err)

	hits, err := index.SearchMemories(ctx, []float32{1, 0, 0}, model.ScopePersonal, "user-1", 5)
	gt.NoError(t, err)
	gt.Equal(t, len(hits), 0)
}

func TestChromemIndexDimensionMismatch(t *testing.T) {
	ctx := context.Background()
	index, err := repository.NewChromemIndex("")
	gt.NoError(t, err)

	gt.NoError(t, index.UpsertMemory(ctx, indexedNode("user-1", false, []float32{1, 0, 0})))

	gt.Error(t, index.UpsertMemory(ctx, indexedNode("user-1", false, []float32{1, 0})))

	_, err = index.SearchMemories(ctx, []float32{1, 0, 0, 0}, model.ScopePersonal, "user-1", 1)
	gt.Error(t, err)
}

func TestChromemIndexPersistence(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	index, err := repository.NewChromemIndex(dir)
	gt.NoError(t, err)

	node := indexedNode("user-1", false, []float32{0, 0, 1})
	gt.NoError(t, index.UpsertMemory(ctx, node))

	reopened, err := repository.NewChromemIndex(dir)
	gt.NoError(t, err)

	hits, err := reopened.SearchMemories(ctx, []float32{0, 0, 1}, model.ScopePersonal, "user-1", 1)
	gt.NoError(t, err)
	gt.Equal(t, len(hits), 1)
	gt.Equal(t, hits[0].ID, node.ID)
}
