package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/imtej/meera-os-hive-mind-agents-api/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	memoryCollection   = "memories"
	identityCollection = "identities"
)

// Firestore implements DocStore using Cloud Firestore. Memories and
// identities live in separate collections, each keyed by the record's own ID
// so the vector index can share the same key space.
type Firestore struct {
	client *firestore.Client
}

// NewFirestore creates a Firestore-backed DocStore
func NewFirestore(ctx context.Context, projectID, databaseID string) (*Firestore, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project", projectID), goerr.V("database", databaseID))
	}

	return &Firestore{client: client}, nil
}

// Close releases the underlying client
func (r *Firestore) Close() error {
	return r.client.Close()
}

func (r *Firestore) PutMemory(ctx context.Context, node *model.MemoryNode) error {
	doc := r.client.Collection(memoryCollection).Doc(string(node.ID))
	if _, err := doc.Set(ctx, node); err != nil {
		return goerr.Wrap(err, "failed to put memory", goerr.V("id", node.ID))
	}
	return nil
}

func (r *Firestore) GetMemory(ctx context.Context, id model.MemoryID) (*model.MemoryNode, error) {
	snap, err := r.client.Collection(memoryCollection).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrMemoryNotFound, "no such memory", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get memory", goerr.V("id", id))
	}

	var node model.MemoryNode
	if err := snap.DataTo(&node); err != nil {
		return nil, goerr.Wrap(err, "failed to decode memory", goerr.V("id", id))
	}
	return &node, nil
}

func (r *Firestore) DeleteMemory(ctx context.Context, id model.MemoryID) error {
	if _, err := r.client.Collection(memoryCollection).Doc(string(id)).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete memory", goerr.V("id", id))
	}
	return nil
}

func (r *Firestore) ListRecentMemories(ctx context.Context, scope model.Scope, ownerID string, limit int) ([]*model.MemoryNode, error) {
	query := r.client.Collection(memoryCollection).Query

	switch scope {
	case model.ScopeHive:
		query = query.Where("is_hive_mind", "==", true)
	default:
		query = query.
			Where("owner_id", "==", ownerID).
			Where("is_hive_mind", "==", false)
	}

	query = query.OrderBy("created_at", firestore.Desc).Limit(limit)

	iter := query.Documents(ctx)
	defer iter.Stop()

	var nodes []*model.MemoryNode
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate memories", goerr.V("scope", scope))
		}

		var node model.MemoryNode
		if err := snap.DataTo(&node); err != nil {
			return nil, goerr.Wrap(err, "failed to decode memory", goerr.V("doc", snap.Ref.ID))
		}
		nodes = append(nodes, &node)
	}

	return nodes, nil
}

func (r *Firestore) PutIdentity(ctx context.Context, identity *model.UserIdentity) error {
	doc := r.client.Collection(identityCollection).Doc(identity.UserID)
	if _, err := doc.Set(ctx, identity); err != nil {
		return goerr.Wrap(err, "failed to put identity", goerr.V("user_id", identity.UserID))
	}
	return nil
}

func (r *Firestore) GetIdentity(ctx context.Context, userID string) (*model.UserIdentity, error) {
	snap, err := r.client.Collection(identityCollection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrIdentityNotFound, "no such identity", goerr.V("user_id", userID))
		}
		return nil, goerr.Wrap(err, "failed to get identity", goerr.V("user_id", userID))
	}

	var identity model.UserIdentity
	if err := snap.DataTo(&identity); err != nil {
		return nil, goerr.Wrap(err, "failed to decode identity", goerr.V("user_id", userID))
	}
	return &identity, nil
}
