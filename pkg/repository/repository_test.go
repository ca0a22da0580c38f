package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/imtej/meera-os-hive-mind-agents-api/pkg/model"
	"github.com/imtej/meera-os-hive-mind-agents-api/pkg/repository"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
)

// mockIndex is an in-memory VectorIndex with injectable failures
type mockIndex struct {
	hits      []*repository.VectorHit
	upserted  []model.MemoryID
	upsertErr error
	searchErr error
}

func (m *mockIndex) UpsertMemory(ctx context.Context, node *model.MemoryNode) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upserted = append(m.upserted, node.ID)
	return nil
}

func (m *mockIndex) SearchMemories(ctx context.Context, embedding []float32, scope model.Scope, ownerID string, limit int) ([]*repository.VectorHit, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.hits, nil
}

// faultyDocStore wraps MemStore with injectable write failures
type faultyDocStore struct {
	*repository.MemStore
	putErr error
}

func (f *faultyDocStore) PutMemory(ctx context.Context, node *model.MemoryNode) error {
	if f.putErr != nil {
		return f.putErr
	}
	return f.MemStore.PutMemory(ctx, node)
}

func testNode(owner string, hive bool, createdAt time.Time) *model.MemoryNode {
	return &model.MemoryNode{
		ID:         model.NewMemoryID(),
		OwnerID:    owner,
		Content:    "enjoys long walks",
		Type:       model.MemoryTypePreference,
		IsHiveMind: hive,
		Embedding:  firestore.Vector32{0.5, 0.5, 0.5},
		CreatedAt:  createdAt,
		Source:     "conversation",
	}
}

func TestSaveMemory(t *testing.T) {
	ctx := context.Background()
	docs := repository.NewMemStore()
	index := &mockIndex{}
	repo := repository.New(docs, index)

	node := testNode("user-1", false, time.Now())
	id, err := repo.SaveMemory(ctx, node)
	gt.NoError(t, err)
	gt.Equal(t, id, node.ID)

	stored, err := docs.GetMemory(ctx, node.ID)
	gt.NoError(t, err)
	gt.Equal(t, stored.Content, node.Content)
	gt.Equal(t, len(index.upserted), 1)
}

func TestSaveMemoryRejectsInvalidNode(t *testing.T) {
	ctx := context.Background()
	docs := repository.NewMemStore()
	index := &mockIndex{}
	repo := repository.New(docs, index)

	node := testNode("user-1", false, time.Now())
	node.Embedding = nil

	_, err := repo.SaveMemory(ctx, node)
	gt.Error(t, err)
	gt.Equal(t, len(index.upserted), 0)
}

func TestSaveMemoryRollsBackOnIndexFailure(t *testing.T) {
	ctx := context.Background()
	docs := repository.NewMemStore()
	index := &mockIndex{upsertErr: goerr.New("index down")}
	repo := repository.New(docs, index)

	node := testNode("user-1", false, time.Now())
	_, err := repo.SaveMemory(ctx, node)
	gt.Error(t, err)

	// Structured write must be rolled back so retrieval never sees a
	// record with no vector entry
	_, err = docs.GetMemory(ctx, node.ID)
	gt.True(t, errors.Is(err, repository.ErrMemoryNotFound))
}

func TestSaveMemoryDocStoreFailureIsFatal(t *testing.T) {
	ctx := context.Background()
	docs := &faultyDocStore{MemStore: repository.NewMemStore(), putErr: goerr.New("store down")}
	index := &mockIndex{}
	repo := repository.New(docs, index)

	_, err := repo.SaveMemory(ctx, testNode("user-1", false, time.Now()))
	gt.Error(t, err)
	gt.Equal(t, len(index.upserted), 0)
}

func TestVectorSearchHydratesAndOrders(t *testing.T) {
	ctx := context.Background()
	docs := repository.NewMemStore()

	now := time.Now()
	a := testNode("user-1", false, now.Add(-1*time.Hour))
	b := testNode("user-1", false, now)
	gt.NoError(t, docs.PutMemory(ctx, a))
	gt.NoError(t, docs.PutMemory(ctx, b))

	index := &mockIndex{hits: []*repository.VectorHit{
		{ID: a.ID, Similarity: 0.91},
		{ID: b.ID, Similarity: 0.42},
	}}
	repo := repository.New(docs, index)

	results, err := repo.VectorSearch(ctx, []float32{1, 0, 0}, model.ScopePersonal, "user-1", 3)
	gt.NoError(t, err)
	gt.Equal(t, len(results), 2)
	gt.Equal(t, results[0].Node.ID, a.ID)
	gt.Equal(t, results[0].Similarity, 0.91)
	gt.Equal(t, results[1].Node.ID, b.ID)
}

func TestVectorSearchSkipsMissingRecords(t *testing.T) {
	ctx := context.Background()
	docs := repository.NewMemStore()

	a := testNode("user-1", false, time.Now())
	gt.NoError(t, docs.PutMemory(ctx, a))

	index := &mockIndex{hits: []*repository.VectorHit{
		{ID: a.ID, Similarity: 0.8},
		{ID: model.NewMemoryID(), Similarity: 0.9},
	}}
	repo := repository.New(docs, index)

	results, err := repo.VectorSearch(ctx, []float32{1, 0, 0}, model.ScopePersonal, "user-1", 3)
	gt.NoError(t, err)
	gt.Equal(t, len(results), 1)
	gt.Equal(t, results[0].Node.ID, a.ID)
}

func TestVectorSearchDegradesOnIndexFailure(t *testing.T) {
	ctx := context.Background()
	docs := repository.NewMemStore()
	index := &mockIndex{searchErr: goerr.New("index down")}
	repo := repository.New(docs, index)

	results, err := repo.VectorSearch(ctx, []float32{1, 0, 0}, model.ScopePersonal, "user-1", 3)
	gt.NoError(t, err)
	gt.Equal(t, len(results), 0)
}

func TestFetchRecentScopeIsolation(t *testing.T) {
	ctx := context.Background()
	docs := repository.NewMemStore()
	repo := repository.New(docs, &mockIndex{})

	now := time.Now()
	mine := testNode("user-1", false, now)
	other := testNode("user-2", false, now)
	shared := testNode("user-2", true, now)
	gt.NoError(t, docs.PutMemory(ctx, mine))
	gt.NoError(t, docs.PutMemory(ctx, other))
	gt.NoError(t, docs.PutMemory(ctx, shared))

	personal, err := repo.FetchRecent(ctx, model.ScopePersonal, "user-1", 10)
	gt.NoError(t, err)
	gt.Equal(t, len(personal), 1)
	gt.Equal(t, personal[0].ID, mine.ID)

	hive, err := repo.FetchRecent(ctx, model.ScopeHive, "", 10)
	gt.NoError(t, err)
	gt.Equal(t, len(hive), 1)
	gt.Equal(t, hive[0].ID, shared.ID)
}

func TestFetchRecentOrdering(t *testing.T) {
	ctx := context.Background()
	docs := repository.NewMemStore()
	repo := repository.New(docs, &mockIndex{})

	now := time.Now()
	oldest := testNode("user-1", false, now.Add(-2*time.Hour))
	middle := testNode("user-1", false, now.Add(-1*time.Hour))
	newest := testNode("user-1", false, now)
	gt.NoError(t, docs.PutMemory(ctx, middle))
	gt.NoError(t, docs.PutMemory(ctx, oldest))
	gt.NoError(t, docs.PutMemory(ctx, newest))

	nodes, err := repo.FetchRecent(ctx, model.ScopePersonal, "user-1", 2)
	gt.NoError(t, err)
	gt.Equal(t, len(nodes), 2)
	gt.Equal(t, nodes[0].ID, newest.ID)
	gt.Equal(t, nodes[1].ID, middle.ID)
}

func TestIdentityRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := repository.New(repository.NewMemStore(), &mockIndex{})

	_, err := repo.GetIdentity(ctx, "user-1")
	gt.True(t, errors.Is(err, repository.ErrIdentityNotFound))

	identity := model.NewUserIdentity("user-1")
	identity.AddTrait("night owl")
	gt.NoError(t, repo.SaveIdentity(ctx, identity))

	loaded, err := repo.GetIdentity(ctx, "user-1")
	gt.NoError(t, err)
	gt.Equal(t, loaded.UserID, "user-1")
	gt.Equal(t, loaded.Traits, []string{"night owl"})
}
