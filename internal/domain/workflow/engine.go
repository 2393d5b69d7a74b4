package workflow

import (
	"fmt"
	"strings"
	"time"
)

// Effect tells the caller what to do after a transition has been applied.
type Effect int

const (
	// EffectContinue: persist the instance and prompt for the next state.
	EffectContinue Effect = iota
	// EffectAssemble: build the report from the answers, dispatch it, then clear the session.
	EffectAssemble
	// EffectClear: drop the session without producing a report.
	EffectClear
)

// Transition is the result of an accepted event.
type Transition struct {
	From   StateName
	To     StateName
	Field  string
	Value  Value
	Effect Effect
}

// LocationLookup validates location choices against the reference data.
type LocationLookup interface {
	HasLocation(title string) bool
}

// Engine interprets workflow definitions. It holds no per-dialogue state and
// is safe for concurrent use.
type Engine struct {
	definitions map[Type]*Definition
	locations   LocationLookup
}

// NewEngine validates and registers the given definitions.
func NewEngine(locations LocationLookup, defs ...*Definition) (*Engine, error) {
	e := &Engine{definitions: make(map[Type]*Definition, len(defs)), locations: locations}
	for _, d := range defs {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, dup := e.definitions[d.Type]; dup {
			return nil, fmt.Errorf("workflow %s registered twice", d.Type)
		}
		e.definitions[d.Type] = d
	}
	return e, nil
}

// Definition returns the table registered for t.
func (e *Engine) Definition(t Type) (*Definition, bool) {
	d, ok := e.definitions[t]
	return d, ok
}

// Begin creates a new instance positioned at the initial state of t.
func (e *Engine) Begin(userID int64, t Type, now time.Time) (*Instance, error) {
	d, ok := e.definitions[t]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownWorkflow, t)
	}
	return newInstance(userID, t, d.Initial, now), nil
}

// Advance validates ev against the current state of inst and computes the
// transition. It never modifies inst; callers apply the transition with
// Instance.Apply. A rejected event returns ErrValidationRejected.
func (e *Engine) Advance(inst *Instance, ev Event) (*Transition, error) {
	if inst == nil {
		return nil, ErrNoActiveSession
	}
	if inst.State.IsTerminal() {
		return nil, fmt.Errorf("%w: dialogue already finished in %s", ErrNoActiveSession, inst.State)
	}
	if ev.Kind == EventCancel {
		return &Transition{From: inst.State, To: StateCancelled, Effect: EffectClear}, nil
	}

	d, ok := e.definitions[inst.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownWorkflow, inst.Type)
	}
	s, ok := d.State(inst.State)
	if !ok {
		return nil, fmt.Errorf("workflow %s has no state %q", inst.Type, inst.State)
	}

	v, ok := e.accept(s, ev)
	if !ok {
		return nil, ErrValidationRejected
	}
	to := s.next(v)
	tr := &Transition{From: s.Name, To: to, Field: s.Field, Value: v, Effect: EffectContinue}
	if to.IsTerminal() {
		tr.Effect = EffectAssemble
	}
	return tr, nil
}

func (e *Engine) accept(s *State, ev Event) (Value, bool) {
	switch s.Expect {
	case ExpectText:
		t := strings.TrimSpace(ev.Text)
		if ev.Kind != EventText || t == "" {
			return Value{}, false
		}
		return Value{Kind: ValueText, Text: t}, true

	case ExpectDigits:
		t := strings.TrimSpace(ev.Text)
		if ev.Kind != EventText || !isDigits(t) {
			return Value{}, false
		}
		return Value{Kind: ValueNumber, Text: t}, true

	case ExpectChoice:
		if ev.Kind != EventChoice || !s.hasChoice(ev.Text) {
			return Value{}, false
		}
		return Value{Kind: ValueChoice, Text: ev.Text}, true

	case ExpectLocation:
		if ev.Kind != EventChoice || ev.Text == "" || e.locations == nil || !e.locations.HasLocation(ev.Text) {
			return Value{}, false
		}
		return Value{Kind: ValueText, Text: ev.Text}, true

	case ExpectPhoto:
		return acceptPhotos(ev)

	case ExpectPhotoOrSentinel:
		if ev.Kind == EventText && normalize(ev.Text) == NoPhotoSentinel {
			return Value{Kind: ValueSkipped}, true
		}
		return acceptPhotos(ev)
	}
	return Value{}, false
}

// acceptPhotos takes one submission: a single photo or every photo of one album.
func acceptPhotos(ev Event) (Value, bool) {
	if ev.Kind != EventPhoto {
		return Value{}, false
	}
	ids := make([]string, 0, len(ev.Photos))
	for _, id := range ev.Photos {
		if id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return Value{}, false
	}
	return Value{Kind: ValuePhotos, Photos: ids}, true
}
