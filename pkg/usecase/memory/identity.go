package memory

import (
	"context"
	"errors"
	"time"

	"github.com/imtej/meera-os-hive-mind-agents-api/pkg/model"
	"github.com/imtej/meera-os-hive-mind-agents-api/pkg/repository"
	"github.com/imtej/meera-os-hive-mind-agents-api/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// GetOrCreateIdentity loads the user's identity, creating and persisting a
// fresh one on first contact. A structured-store failure propagates: without
// the identity record no personalized context can be assembled.
func (u *UseCase) GetOrCreateIdentity(ctx context.Context, userID string) (*model.UserIdentity, error) {
	if userID == "" {
		return nil, goerr.New("user id is empty")
	}

	identity, err := u.repo.GetIdentity(ctx, userID)
	if err == nil {
		return identity, nil
	}
	if !errors.Is(err, repository.ErrIdentityNotFound) {
		return nil, err
	}

	identity = model.NewUserIdentity(userID)
	if err := u.repo.SaveIdentity(ctx, identity); err != nil {
		return nil, err
	}

	logging.From(ctx).Info("new user identity created", "user_id", userID)
	return identity, nil
}

// ApplyIdentitySignals folds personal_identity candidates into the user's
// profile as traits. The profile mutates incrementally: traits are appended,
// never replaced wholesale. The identity is persisted only when it actually
// changed.
func (u *UseCase) ApplyIdentitySignals(ctx context.Context, identity *model.UserIdentity, candidates []model.MemoryCandidate) error {
	changed := false
	for _, c := range candidates {
		if c.Type != model.MemoryTypePersonalIdentity {
			continue
		}
		if identity.AddTrait(c.Content) {
			changed = true
		}
	}

	if !changed {
		return nil
	}

	identity.UpdatedAt = time.Now()
	if err := u.repo.SaveIdentity(ctx, identity); err != nil {
		return goerr.Wrap(err, "failed to update identity", goerr.V("user_id", identity.UserID))
	}

	logging.From(ctx).Debug("identity profile updated",
		"user_id", identity.UserID, "traits", len(identity.Traits))
	return nil
}
