package repository

import (
	"context"
	"sync"
	"time"

	"github.com/imtej/meera-os-hive-mind-agents-api/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	chromem "github.com/philippgille/chromem-go"
)

const chromemCollection = "memories"

// ChromemIndex implements VectorIndex using chromem-go, an embedded pure Go
// vector database with cosine similarity. All memories live in a single
// collection; scope is expressed through metadata filters so hive mind
// records stay retrievable without an owner filter.
type ChromemIndex struct {
	col *chromem.Collection

	mu   sync.Mutex
	dims int // fixed by the first indexed embedding
}

// NewChromemIndex creates a vector index. With an empty path the index is
// in-memory only; with a path it persists to disk across restarts.
func NewChromemIndex(path string) (*ChromemIndex, error) {
	var db *chromem.DB
	if path == "" {
		db = chromem.NewDB()
	} else {
		var err error
		db, err = chromem.NewPersistentDB(path, false)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open persistent vector index", goerr.V("path", path))
		}
	}

	col, err := db.GetOrCreateCollection(chromemCollection, nil, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create vector collection")
	}

	return &ChromemIndex{col: col}, nil
}

func (x *ChromemIndex) UpsertMemory(ctx context.Context, node *model.MemoryNode) error {
	if err := x.checkDims(len(node.Embedding)); err != nil {
		return err
	}

	doc := chromem.Document{
		ID:        string(node.ID),
		Content:   node.Content,
		Embedding: node.Embedding,
		Metadata:  scopeMetadata(node),
	}

	if err := x.col.AddDocument(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to add document to vector index", goerr.V("id", node.ID))
	}
	return nil
}

func (x *ChromemIndex) SearchMemories(ctx context.Context, embedding []float32, scope model.Scope, ownerID string, limit int) ([]*VectorHit, error) {
	if err := x.checkDims(len(embedding)); err != nil {
		return nil, err
	}

	// chromem rejects nResults larger than the collection size
	n := limit
	if count := x.col.Count(); count < n {
		n = count
	}
	if n <= 0 {
		return nil, nil
	}

	where := map[string]string{"is_hive_mind": "true"}
	if scope == model.ScopePersonal {
		where = map[string]string{
			"owner_id":     ownerID,
			"is_hive_mind": "false",
		}
	}

	results, err := x.col.QueryEmbedding(ctx, embedding, n, where, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "vector query failed", goerr.V("scope", scope))
	}

	hits := make([]*VectorHit, 0, len(results))
	for _, res := range results {
		hits = append(hits, &VectorHit{
			ID:         model.MemoryID(res.ID),
			Similarity: float64(res.Similarity),
		})
	}
	return hits, nil
}

// checkDims pins embedding dimensionality to the first vector seen; the
// corpus must stay dimensionally uniform for cosine similarity to be valid.
func (x *ChromemIndex) checkDims(dims int) error {
	if dims == 0 {
		return goerr.New("empty embedding")
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if x.dims == 0 {
		x.dims = dims
		return nil
	}
	if x.dims != dims {
		return goerr.New("embedding dimensionality mismatch",
			goerr.V("expected", x.dims), goerr.V("actual", dims))
	}
	return nil
}

func scopeMetadata(node *model.MemoryNode) map[string]string {
	hive := "false"
	if node.IsHiveMind {
		hive = "true"
	}
	return map[string]string{
		"owner_id":     node.OwnerID,
		"is_hive_mind": hive,
		"memory_type":  string(node.Type),
		"created_at":   node.CreatedAt.Format(time.RFC3339),
	}
}
