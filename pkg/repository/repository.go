package repository

import (
	"context"
	"sort"

	"github.com/imtej/meera-os-hive-mind-agents-api/pkg/model"
	"github.com/imtej/meera-os-hive-mind-agents-api/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrMemoryNotFound   = goerr.New("memory not found")
	ErrIdentityNotFound = goerr.New("user identity not found")
)

// DocStore is the structured, durable store holding full memory records and
// user identities. Unavailability here is fatal: without it no memory context
// can be assembled or persisted.
type DocStore interface {
	// PutMemory writes a memory record keyed by its ID
	PutMemory(ctx context.Context, node *model.MemoryNode) error

	// GetMemory retrieves a memory record by ID
	GetMemory(ctx context.Context, id model.MemoryID) (*model.MemoryNode, error)

	// DeleteMemory removes a memory record. Only the save rollback path uses
	// this; memories are otherwise append-only.
	DeleteMemory(ctx context.Context, id model.MemoryID) error

	// ListRecentMemories returns up to limit records for the scope, ordered
	// by created_at descending
	ListRecentMemories(ctx context.Context, scope model.Scope, ownerID string, limit int) ([]*model.MemoryNode, error)

	// PutIdentity upserts a user identity keyed by user ID
	PutIdentity(ctx context.Context, identity *model.UserIdentity) error

	// GetIdentity retrieves a user identity by user ID
	GetIdentity(ctx context.Context, userID string) (*model.UserIdentity, error)
}

// VectorHit is a single nearest-neighbor result from the vector index.
type VectorHit struct {
	ID         model.MemoryID
	Similarity float64
}

// VectorIndex is the approximate-or-exact nearest-neighbor index over memory
// embeddings. Unavailability here degrades reads to recency-only and fails
// writes.
type VectorIndex interface {
	// UpsertMemory indexes a memory's embedding under its ID
	UpsertMemory(ctx context.Context, node *model.MemoryNode) error

	// SearchMemories returns up to limit hits for the scope by cosine
	// similarity, highest first
	SearchMemories(ctx context.Context, embedding []float32, scope model.Scope, ownerID string, limit int) ([]*VectorHit, error)
}

// Repository unifies the structured store and the vector index behind a
// single write path and a single read path. Every memory persists under the
// same ID in both backends; the Repository is the sole mutator of either.
type Repository struct {
	docs  DocStore
	index VectorIndex
}

// New creates a Repository over the given backends
func New(docs DocStore, index VectorIndex) *Repository {
	return &Repository{
		docs:  docs,
		index: index,
	}
}

// SaveMemory writes the node to both backends. The write is atomic from the
// caller's perspective: the structured record is written first, and if the
// vector write fails it is deleted again so retrieval never sees a record
// without a corresponding vector entry.
func (r *Repository) SaveMemory(ctx context.Context, node *model.MemoryNode) (model.MemoryID, error) {
	if err := node.Validate(); err != nil {
		return "", goerr.Wrap(err, "memory node failed validation")
	}

	if err := r.docs.PutMemory(ctx, node); err != nil {
		return "", goerr.Wrap(err, "failed to write memory to structured store", goerr.V("id", node.ID))
	}

	if err := r.index.UpsertMemory(ctx, node); err != nil {
		if delErr := r.docs.DeleteMemory(ctx, node.ID); delErr != nil {
			logging.From(ctx).Error("failed to roll back structured write after vector failure",
				"id", node.ID, "error", delErr)
		}
		return "", goerr.Wrap(err, "failed to index memory embedding", goerr.V("id", node.ID))
	}

	return node.ID, nil
}

// FetchRecent returns up to limit memories for the scope, newest first.
// Errors propagate: the recency path is the retrieval safety net and has no
// further fallback.
func (r *Repository) FetchRecent(ctx context.Context, scope model.Scope, ownerID string, limit int) ([]*model.MemoryNode, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	nodes, err := r.docs.ListRecentMemories(ctx, scope, ownerID, limit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list recent memories", goerr.V("scope", scope))
	}
	return nodes, nil
}

// VectorSearch runs a cosine top-k query restricted to the scope and hydrates
// the hits from the structured store. Index unavailability degrades to an
// empty result so the caller can fall back to recency; it never propagates.
func (r *Repository) VectorSearch(ctx context.Context, embedding []float32, scope model.Scope, ownerID string, limit int) ([]*model.ScoredMemory, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if len(embedding) == 0 || limit <= 0 {
		return nil, nil
	}

	hits, err := r.index.SearchMemories(ctx, embedding, scope, ownerID, limit)
	if err != nil {
		logging.From(ctx).Warn("vector index unavailable, degrading to empty result",
			"scope", scope, "error", err)
		return nil, nil
	}

	results := make([]*model.ScoredMemory, 0, len(hits))
	for _, hit := range hits {
		node, err := r.docs.GetMemory(ctx, hit.ID)
		if err != nil {
			// Index and store can drift only transiently; skip the hit
			logging.From(ctx).Warn("vector hit missing from structured store",
				"id", hit.ID, "error", err)
			continue
		}
		results = append(results, &model.ScoredMemory{
			Node:       node,
			Similarity: hit.Similarity,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].Node.CreatedAt.After(results[j].Node.CreatedAt)
	})

	return results, nil
}

// SaveIdentity upserts a user identity
func (r *Repository) SaveIdentity(ctx context.Context, identity *model.UserIdentity) error {
	if err := identity.Validate(); err != nil {
		return goerr.Wrap(err, "identity failed validation")
	}
	if err := r.docs.PutIdentity(ctx, identity); err != nil {
		return goerr.Wrap(err, "failed to save identity", goerr.V("user_id", identity.UserID))
	}
	return nil
}

// GetIdentity retrieves a user identity. Returns ErrIdentityNotFound for a
// user never seen before.
func (r *Repository) GetIdentity(ctx context.Context, userID string) (*model.UserIdentity, error) {
	identity, err := r.docs.GetIdentity(ctx, userID)
	if err != nil {
		return nil, err
	}
	return identity, nil
}
