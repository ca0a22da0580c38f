package memory

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/imtej/meera-os-hive-mind-agents-api/pkg/model"
	"github.com/imtej/meera-os-hive-mind-agents-api/pkg/utils/logging"
)

// RetrieveInput contains parameters for a hybrid memory query
type RetrieveInput struct {
	Query   string
	OwnerID string
	Scope   model.Scope
	Limit   int // defaults to DefaultRetrieveLimit
}

// candidate is a merged retrieval candidate. Vector hits keep their
// similarity; recency-fallback entries are unscored.
type candidate struct {
	node       *model.MemoryNode
	similarity float64
	scored     bool
	recency    float64
}

// Retrieve runs the hybrid ranking algorithm:
//
//  1. Embed the query; a provider failure skips straight to recency.
//  2. Vector search within the scope (index failures degrade to empty).
//  3. If vector hits fall short of the limit, supplement from the most
//     recently created memories. Supplements only fill the remaining slots,
//     so a hit that earned its place by similarity is never evicted by an
//     unscored one.
//  4. Merge both sets deduplicated by ID, a duplicate keeping its similarity.
//  5. Order by recency decay (newest candidate = 1.0), similarity and
//     created_at breaking ties, and truncate to the limit.
//
// Similarity biases which memories enter the candidate pool; recency governs
// the final presentation order. An empty result is a valid steady state, not
// an error: a brand-new user simply has nothing to remember yet.
func (u *UseCase) Retrieve(ctx context.Context, input RetrieveInput) ([]*model.MemoryNode, error) {
	if err := input.Scope.Validate(); err != nil {
		return nil, err
	}
	limit := input.Limit
	if limit <= 0 {
		limit = DefaultRetrieveLimit
	}

	logger := logging.From(ctx)

	var hits []*model.ScoredMemory
	if embedding, err := u.gemini.Embedding(ctx, input.Query); err != nil {
		logger.Warn("query embedding failed, falling back to recency",
			"scope", input.Scope, "error", err)
	} else {
		hits, err = u.repo.VectorSearch(ctx, embedding, input.Scope, input.OwnerID, limit)
		if err != nil {
			return nil, err
		}
	}

	merged := make([]*candidate, 0, limit*2)
	seen := make(map[model.MemoryID]struct{}, limit*2)
	for _, hit := range hits {
		merged = append(merged, &candidate{
			node:       hit.Node,
			similarity: hit.Similarity,
			scored:     true,
		})
		seen[hit.Node.ID] = struct{}{}
	}

	if len(hits) < limit {
		recent, err := u.repo.FetchRecent(ctx, input.Scope, input.OwnerID, limit)
		if err != nil {
			return nil, err
		}
		for _, node := range recent {
			if len(merged) >= limit {
				break
			}
			if _, ok := seen[node.ID]; ok {
				continue
			}
			merged = append(merged, &candidate{node: node})
			seen[node.ID] = struct{}{}
		}
	}

	if len(merged) == 0 {
		return nil, nil
	}

	rankByRecency(merged, u.recencyHalfLife)

	if len(merged) > limit {
		merged = merged[:limit]
	}

	nodes := make([]*model.MemoryNode, len(merged))
	for i, c := range merged {
		nodes[i] = c.node
	}

	logger.Debug("memories retrieved",
		"scope", input.Scope, "vector_hits", len(hits), "returned", len(nodes))

	return nodes, nil
}

// rankByRecency assigns each candidate a recency value in [0,1] on a
// half-life decay curve anchored at the newest candidate, then sorts the
// slice into final presentation order. The ordering is a total order, so
// identical inputs always produce identical output sequences.
func rankByRecency(cands []*candidate, halfLife time.Duration) {
	var newest time.Time
	for _, c := range cands {
		if c.node.CreatedAt.After(newest) {
			newest = c.node.CreatedAt
		}
	}

	for _, c := range cands {
		age := newest.Sub(c.node.CreatedAt)
		c.recency = math.Exp2(-age.Hours() / halfLife.Hours())
	}

	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.recency != b.recency {
			return a.recency > b.recency
		}
		// Equal recency means equal created_at; fall back to similarity,
		// scored candidates ahead of unscored ones
		if a.scored != b.scored {
			return a.scored
		}
		if a.similarity != b.similarity {
			return a.similarity > b.similarity
		}
		return a.node.ID < b.node.ID
	})
}
