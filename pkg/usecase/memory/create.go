package memory

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/imtej/meera-os-hive-mind-agents-api/pkg/model"
	"github.com/imtej/meera-os-hive-mind-agents-api/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

const (
	SourceConversation = "conversation"
	SourceHiveMind     = "hive_mind"
)

// CreateInput contains parameters for the memory write path
type CreateInput struct {
	OwnerID    string
	Candidates []model.MemoryCandidate
	IsHiveMind bool
	Source     string // defaults to SourceConversation
	Context    string // the exchange the candidates came from, audit only
}

// CreateMemories turns validated candidates into immutable MemoryNodes and
// persists them through the dual-write repository. Each candidate is
// embedded once from its content; a candidate whose embedding or save fails
// is discarded, so no partial memory is ever persisted without an embedding.
// Returns the IDs that succeeded, which may be any subset of the input.
func (u *UseCase) CreateMemories(ctx context.Context, input CreateInput) []model.MemoryID {
	logger := logging.From(ctx)

	source := input.Source
	if source == "" {
		source = SourceConversation
	}

	ids := make([]model.MemoryID, 0, len(input.Candidates))
	for _, c := range input.Candidates {
		if err := c.Type.Validate(); err != nil {
			logger.Debug("dropping candidate with invalid memory type", "type", c.Type)
			continue
		}
		if c.Content == "" {
			continue
		}

		embedding, err := u.gemini.Embedding(ctx, c.Content)
		if err != nil {
			logger.Warn("embedding failed, discarding candidate", "error", err)
			continue
		}

		node := &model.MemoryNode{
			ID:         model.NewMemoryID(),
			OwnerID:    input.OwnerID,
			Content:    c.Content,
			Type:       c.Type,
			Tags:       c.Tags,
			IsHiveMind: input.IsHiveMind,
			Embedding:  firestore.Vector32(embedding),
			CreatedAt:  time.Now(),
			Source:     source,
			Context:    input.Context,
		}

		id, err := u.repo.SaveMemory(ctx, node)
		if err != nil {
			logger.Warn("failed to save memory, discarding candidate",
				"id", node.ID, "error", err)
			continue
		}

		logger.Info("memory created",
			"id", id, "owner_id", input.OwnerID, "type", c.Type, "hive_mind", input.IsHiveMind)
		ids = append(ids, id)
	}

	return ids
}

// CreateHiveMindMemory stores an explicitly shared memory retrievable by any
// user. The authoring user stays on the record for attribution. Unlike the
// conversational write path this is a deliberate operation, so failures
// propagate.
func (u *UseCase) CreateHiveMindMemory(ctx context.Context, ownerID, content string, memType model.MemoryType, tags []string) (model.MemoryID, error) {
	if err := memType.Validate(); err != nil {
		return "", err
	}
	if content == "" {
		return "", goerr.New("hive mind memory content is empty")
	}

	embedding, err := u.gemini.Embedding(ctx, content)
	if err != nil {
		return "", goerr.Wrap(err, "failed to embed hive mind memory")
	}

	node := &model.MemoryNode{
		ID:         model.NewMemoryID(),
		OwnerID:    ownerID,
		Content:    content,
		Type:       memType,
		Tags:       tags,
		IsHiveMind: true,
		Embedding:  firestore.Vector32(embedding),
		CreatedAt:  time.Now(),
		Source:     SourceHiveMind,
	}

	id, err := u.repo.SaveMemory(ctx, node)
	if err != nil {
		return "", goerr.Wrap(err, "failed to save hive mind memory")
	}

	logging.From(ctx).Info("hive mind memory created", "id", id, "owner_id", ownerID)
	return id, nil
}
