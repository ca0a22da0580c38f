package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/imtej/meera-os-hive-mind-agents-api/pkg/model"
	"github.com/m-mizutani/goerr/v2"
)

// MemStore is an in-memory DocStore for tests and local development. It
// mirrors the Firestore ordering semantics exactly so retrieval tests behave
// the same against either backend.
type MemStore struct {
	mu         sync.RWMutex
	memories   map[model.MemoryID]*model.MemoryNode
	identities map[string]*model.UserIdentity
}

// NewMemStore creates an empty in-memory DocStore
func NewMemStore() *MemStore {
	return &MemStore{
		memories:   make(map[model.MemoryID]*model.MemoryNode),
		identities: make(map[string]*model.UserIdentity),
	}
}

func (s *MemStore) PutMemory(ctx context.Context, node *model.MemoryNode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *node
	s.memories[node.ID] = &copied
	return nil
}

func (s *MemStore) GetMemory(ctx context.Context, id model.MemoryID) (*model.MemoryNode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	node, ok := s.memories[id]
	if !ok {
		return nil, goerr.Wrap(ErrMemoryNotFound, "no such memory", goerr.V("id", id))
	}
	copied := *node
	return &copied, nil
}

func (s *MemStore) DeleteMemory(ctx context.Context, id model.MemoryID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.memories, id)
	return nil
}

func (s *MemStore) ListRecentMemories(ctx context.Context, scope model.Scope, ownerID string, limit int) ([]*model.MemoryNode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var nodes []*model.MemoryNode
	for _, node := range s.memories {
		switch scope {
		case model.ScopeHive:
			if !node.IsHiveMind {
				continue
			}
		default:
			if node.IsHiveMind || node.OwnerID != ownerID {
				continue
			}
		}
		copied := *node
		nodes = append(nodes, &copied)
	}

	sort.Slice(nodes, func(i, j int) bool {
		if !nodes[i].CreatedAt.Equal(nodes[j].CreatedAt) {
			return nodes[i].CreatedAt.After(nodes[j].CreatedAt)
		}
		return nodes[i].ID < nodes[j].ID
	})

	if limit > 0 && len(nodes) > limit {
		nodes = nodes[:limit]
	}
	return nodes, nil
}

func (s *MemStore) PutIdentity(ctx context.Context, identity *model.UserIdentity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *identity
	s.identities[identity.UserID] = &copied
	return nil
}

func (s *MemStore) GetIdentity(ctx context.Context, userID string) (*model.UserIdentity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	identity, ok := s.identities[userID]
	if !ok {
		return nil, goerr.Wrap(ErrIdentityNotFound, "no such identity", goerr.V("user_id", userID))
	}
	copied := *identity
	return &copied, nil
}
