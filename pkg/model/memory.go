package model

import (
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrInvalidMemoryType = goerr.New("invalid memory type")
	ErrInvalidScope      = goerr.New("invalid retrieval scope")
)

type MemoryID string

// NewMemoryID generates a new unique MemoryID
func NewMemoryID() MemoryID {
	return MemoryID(uuid.New().String())
}

type MemoryType string

const (
	MemoryTypePersonalIdentity MemoryType = "personal_identity"
	MemoryTypePreference       MemoryType = "preference"
	MemoryTypeFactual          MemoryType = "factual"
	MemoryTypeEmotionalState   MemoryType = "emotional_state"
)

// Validate checks if the memory type is one of the closed set
func (t MemoryType) Validate() error {
	switch t {
	case MemoryTypePersonalIdentity, MemoryTypePreference, MemoryTypeFactual, MemoryTypeEmotionalState:
		return nil
	default:
		return goerr.Wrap(ErrInvalidMemoryType, "unknown memory type", goerr.V("type", t))
	}
}

// Scope selects the retrieval partition: a user's own memories or the
// shared hive mind corpus.
type Scope string

const (
	ScopePersonal Scope = "personal"
	ScopeHive     Scope = "hive"
)

// Validate checks if the scope is valid
func (s Scope) Validate() error {
	switch s {
	case ScopePersonal, ScopeHive:
		return nil
	default:
		return goerr.Wrap(ErrInvalidScope, "unknown scope", goerr.V("scope", s))
	}
}

// MemoryNode is an immutable record of a fact, preference, identity trait or
// emotional signal about a user. It is created exactly once per extraction
// event and never updated in place. A node with IsHiveMind=true keeps its
// OwnerID for attribution but is retrievable by any user.
type MemoryNode struct {
	ID         MemoryID           `firestore:"id" json:"id"`
	OwnerID    string             `firestore:"owner_id" json:"owner_id"`
	Content    string             `firestore:"content" json:"content"`
	Type       MemoryType         `firestore:"memory_type" json:"memory_type"`
	Tags       []string           `firestore:"tags" json:"tags,omitempty"`
	IsHiveMind bool               `firestore:"is_hive_mind" json:"is_hive_mind"`
	Embedding  firestore.Vector32 `firestore:"embedding" json:"-"`
	CreatedAt  time.Time          `firestore:"created_at" json:"created_at"`

	// Source is provenance only (e.g. "conversation", "hive_mind"); it never
	// participates in ranking.
	Source string `firestore:"source" json:"source,omitempty"`

	// Context is the exchange the memory was extracted from, kept for audit.
	Context string `firestore:"context" json:"-"`
}

// Validate checks the invariants required before a node may be persisted
func (n *MemoryNode) Validate() error {
	if n.ID == "" {
		return goerr.New("memory id is empty")
	}
	if n.Content == "" {
		return goerr.New("memory content is empty")
	}
	if err := n.Type.Validate(); err != nil {
		return err
	}
	if len(n.Embedding) == 0 {
		return goerr.New("memory embedding is empty", goerr.V("id", n.ID))
	}
	return nil
}

// MemoryCandidate is an unvalidated extraction result proposed by the
// classifier. Candidates whose Type fails validation are dropped before the
// write path runs.
type MemoryCandidate struct {
	Content string     `json:"content"`
	Type    MemoryType `json:"memory_type"`
	Tags    []string   `json:"tags"`
}

// ScoredMemory pairs a node with its cosine similarity from vector search.
type ScoredMemory struct {
	Node       *MemoryNode
	Similarity float64
}
