package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// UserIdentity is the evolving profile of a single user. Unlike MemoryNode it
// is mutable: traits are appended or updated incrementally over time, never
// wholesale replaced. Created on first contact, never deleted.
type UserIdentity struct {
	UserID string `firestore:"user_id" json:"user_id"`

	Name    string `firestore:"name" json:"name,omitempty"`
	Origin  string `firestore:"origin" json:"origin,omitempty"`
	Role    string `firestore:"role" json:"role,omitempty"`
	Context string `firestore:"context" json:"context,omitempty"`

	// Traits holds free-text profile facts accumulated from
	// personal_identity memories.
	Traits []string `firestore:"traits" json:"traits,omitempty"`

	CreatedAt time.Time `firestore:"created_at" json:"created_at"`
	UpdatedAt time.Time `firestore:"updated_at" json:"updated_at"`
}

// NewUserIdentity creates a fresh identity for a user seen for the first time
func NewUserIdentity(userID string) *UserIdentity {
	now := time.Now()
	return &UserIdentity{
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks the identity is persistable
func (u *UserIdentity) Validate() error {
	if u.UserID == "" {
		return goerr.New("user id is empty")
	}
	return nil
}

// AddTrait appends a trait unless an identical one is already recorded.
// Returns true if the profile changed.
func (u *UserIdentity) AddTrait(trait string) bool {
	if trait == "" {
		return false
	}
	for _, t := range u.Traits {
		if t == trait {
			return false
		}
	}
	u.Traits = append(u.Traits, trait)
	return true
}
