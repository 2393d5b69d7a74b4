package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrValidationRejected = errors.New("answer does not match the expected input for this step")
	ErrNoActiveSession    = errors.New("no active dialogue for this user")
	ErrSessionActive      = errors.New("a dialogue is already in progress for this user")
	ErrUnknownWorkflow    = errors.New("unknown workflow type")
	ErrSessionNotFound    = errors.New("session not found")
)

// Instance is one in-progress dialogue.
type Instance struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	Type      Type      `json:"type"`
	State     StateName `json:"state"`
	Answers   Answers   `json:"answers"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newInstance(userID int64, t Type, initial StateName, now time.Time) *Instance {
	return &Instance{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      t,
		State:     initial,
		Answers:   Answers{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Apply moves the instance along an accepted transition.
func (i *Instance) Apply(tr *Transition, now time.Time) {
	if tr.Field != "" {
		if i.Answers == nil {
			i.Answers = Answers{}
		}
		i.Answers[tr.Field] = tr.Value
	}
	i.State = tr.To
	i.UpdatedAt = now
}

// Family groups workflows that may not run concurrently for one user.
// Every shift dialogue belongs to the same family.
const Family = "shift"

// SessionKey addresses the single active dialogue of a user within a family.
type SessionKey struct {
	UserID int64
	Family string
}

func KeyFor(userID int64) SessionKey {
	return SessionKey{UserID: userID, Family: Family}
}

func (k SessionKey) String() string {
	return fmt.Sprintf("%s:%d", k.Family, k.UserID)
}

// SessionStore persists active dialogues. Get returns ErrSessionNotFound when
// nothing is stored under the key or the entry has expired.
type SessionStore interface {
	Get(ctx context.Context, key SessionKey) (*Instance, error)
	Put(ctx context.Context, key SessionKey, inst *Instance) error
	Clear(ctx context.Context, key SessionKey) error
}
