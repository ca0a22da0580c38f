package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/imtej/meera-os-hive-mind-agents-api/pkg/adapter"
	"github.com/imtej/meera-os-hive-mind-agents-api/pkg/model"
	"github.com/imtej/meera-os-hive-mind-agents-api/pkg/prompt"
	"github.com/imtej/meera-os-hive-mind-agents-api/pkg/usecase/memory"
	"github.com/imtej/meera-os-hive-mind-agents-api/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

// Session runs conversation turns. Within a turn the steps are strictly
// ordered: retrieval completes before the LLM call, and memory extraction
// runs only after the response is available, since it depends on the full
// exchange. Memory subsystem failures degrade personalization but never
// surface as conversational failures.
type Session struct {
	memories *memory.UseCase
	gemini   adapter.Gemini
	builder  *prompt.Builder
	archive  adapter.Storage

	retrieveLimit int
}

// Option is a functional option for Session
type Option func(*Session)

// WithArchive enables transcript archival of completed turns
func WithArchive(archive adapter.Storage) Option {
	return func(s *Session) {
		s.archive = archive
	}
}

// WithRetrieveLimit overrides how many memories each scope contributes to
// the system prompt
func WithRetrieveLimit(limit int) Option {
	return func(s *Session) {
		if limit > 0 {
			s.retrieveLimit = limit
		}
	}
}

// New creates a chat Session
func New(memories *memory.UseCase, gemini adapter.Gemini, builder *prompt.Builder, opts ...Option) *Session {
	s := &Session{
		memories:      memories,
		gemini:        gemini,
		builder:       builder,
		retrieveLimit: memory.DefaultRetrieveLimit,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// SendInput contains parameters for one conversation turn
type SendInput struct {
	UserID  string
	Message string
	History []model.Message
}

// SendOutput is the result of one conversation turn
type SendOutput struct {
	Response  string
	Intent    string
	MemoryIDs []model.MemoryID
}

// Send executes a full turn: retrieve memory context, build the dynamic
// system prompt, generate the response, then commit new memories from the
// exchange.
func (s *Session) Send(ctx context.Context, input SendInput) (*SendOutput, error) {
	if input.UserID == "" {
		return nil, goerr.New("user id is empty")
	}
	if input.Message == "" {
		return nil, goerr.New("message is empty")
	}

	logger := logging.From(ctx)

	identity, err := s.memories.GetOrCreateIdentity(ctx, input.UserID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load user identity")
	}

	personal, err := s.memories.Retrieve(ctx, memory.RetrieveInput{
		Query:   input.Message,
		OwnerID: input.UserID,
		Scope:   model.ScopePersonal,
		Limit:   s.retrieveLimit,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to retrieve personal memories")
	}

	hive, err := s.memories.Retrieve(ctx, memory.RetrieveInput{
		Query: input.Message,
		Scope: model.ScopeHive,
		Limit: s.retrieveLimit,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to retrieve hive mind memories")
	}

	intent := s.detectIntent(ctx, input.Message)

	systemPrompt, err := s.builder.BuildSystemPrompt(identity, personal, hive, input.Message)
	if err != nil {
		return nil, err
	}

	contents := make([]*genai.Content, 0, len(input.History)+1)
	for _, msg := range input.History {
		role := genai.Role(genai.RoleUser)
		if msg.Role == model.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(msg.Content, role))
	}
	contents = append(contents, genai.NewContentFromText(input.Message, genai.RoleUser))

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, ""),
	}

	resp, err := s.gemini.GenerateContent(ctx, contents, config)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate response")
	}

	responseText := responseToText(resp)
	if responseText == "" {
		return nil, goerr.New("empty response from model")
	}

	exchange := &model.Exchange{
		UserID:            input.UserID,
		UserMessage:       input.Message,
		AssistantResponse: responseText,
		Intent:            intent,
		OccurredAt:        time.Now(),
	}

	memoryIDs := s.commitMemories(ctx, identity, exchange)
	s.archiveTranscript(ctx, exchange)

	logger.Info("turn completed",
		"user_id", input.UserID,
		"intent", intent,
		"personal_memories", len(personal),
		"hive_memories", len(hive),
		"memories_created", len(memoryIDs))

	return &SendOutput{
		Response:  responseText,
		Intent:    intent,
		MemoryIDs: memoryIDs,
	}, nil
}

// commitMemories extracts candidates from the exchange and persists them,
// folding identity signals into the user profile. Best-effort: a turn that
// stores nothing is a successful turn with degraded personalization.
func (s *Session) commitMemories(ctx context.Context, identity *model.UserIdentity, exchange *model.Exchange) []model.MemoryID {
	candidates := s.memories.Extract(ctx, exchange)
	if len(candidates) == 0 {
		return nil
	}

	ids := s.memories.CreateMemories(ctx, memory.CreateInput{
		OwnerID:    exchange.UserID,
		Candidates: candidates,
		Context:    fmt.Sprintf("User: %s\nAssistant: %s", exchange.UserMessage, exchange.AssistantResponse),
	})

	if err := s.memories.ApplyIdentitySignals(ctx, identity, candidates); err != nil {
		logging.From(ctx).Warn("failed to apply identity signals",
			"user_id", exchange.UserID, "error", err)
	}

	return ids
}

// archiveTranscript writes the exchange to the transcript archive, if one is
// configured. Audit only; failures are logged and ignored.
func (s *Session) archiveTranscript(ctx context.Context, exchange *model.Exchange) {
	if s.archive == nil {
		return
	}

	key := fmt.Sprintf("transcripts/%s/%s.json",
		exchange.UserID, exchange.OccurredAt.UTC().Format(time.RFC3339Nano))

	w, err := s.archive.Put(ctx, key)
	if err != nil {
		logging.From(ctx).Warn("failed to open transcript writer", "key", key, "error", err)
		return
	}

	if err := json.NewEncoder(w).Encode(exchange); err != nil {
		logging.From(ctx).Warn("failed to write transcript", "key", key, "error", err)
		_ = w.Close()
		return
	}
	if err := w.Close(); err != nil {
		logging.From(ctx).Warn("failed to close transcript writer", "key", key, "error", err)
	}
}

func responseToText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}
