package memory

import (
	"time"

	"github.com/imtej/meera-os-hive-mind-agents-api/pkg/adapter"
	"github.com/imtej/meera-os-hive-mind-agents-api/pkg/repository"
)

const (
	// DefaultRetrieveLimit matches the "Top 3" sections of the system prompt
	DefaultRetrieveLimit = 3

	// maxCandidatesPerTurn bounds memory growth per conversation turn
	maxCandidatesPerTurn = 3

	defaultRecencyHalfLife = 24 * time.Hour
)

// UseCase provides memory subsystem operations: hybrid retrieval, candidate
// extraction, node creation and identity upkeep. It holds no mutable state;
// all writes go through the repository.
type UseCase struct {
	repo   *repository.Repository
	gemini adapter.Gemini

	recencyHalfLife time.Duration
}

// Option is a functional option for UseCase
type Option func(*UseCase)

// WithRecencyHalfLife sets the half-life of the recency decay curve used to
// order retrieval results
func WithRecencyHalfLife(d time.Duration) Option {
	return func(uc *UseCase) {
		if d > 0 {
			uc.recencyHalfLife = d
		}
	}
}

// New creates a new memory UseCase instance
func New(
	repo *repository.Repository,
	gemini adapter.Gemini,
	opts ...Option,
) *UseCase {
	uc := &UseCase{
		repo:            repo,
		gemini:          gemini,
		recencyHalfLife: defaultRecencyHalfLife,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}
