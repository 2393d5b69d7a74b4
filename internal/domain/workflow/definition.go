package workflow

import (
	"fmt"
	"sort"
	"strings"
)

// Expect is the input shape a state accepts.
type Expect int

const (
	ExpectText Expect = iota + 1
	ExpectDigits
	ExpectChoice
	ExpectLocation
	ExpectPhoto
	ExpectPhotoOrSentinel
)

func (e Expect) String() string {
	switch e {
	case ExpectText:
		return "text"
	case ExpectDigits:
		return "digits"
	case ExpectChoice:
		return "choice"
	case ExpectLocation:
		return "location"
	case ExpectPhoto:
		return "photo"
	case ExpectPhotoOrSentinel:
		return "photo_or_sentinel"
	default:
		return "unknown"
	}
}

// State is one row of a workflow's transition table. The accepted answer is
// written under Field. The next state is Branches[choice] when present,
// otherwise Next.
type State struct {
	Name     StateName
	Expect   Expect
	Field    string
	Choices  []string
	Next     StateName
	Branches map[string]StateName
}

func (s *State) next(v Value) StateName {
	if v.Kind == ValueChoice {
		if to, ok := s.Branches[v.Text]; ok {
			return to
		}
	}
	return s.Next
}

// Targets lists every state reachable in one step from s.
func (s *State) Targets() []StateName {
	seen := map[StateName]bool{}
	var out []StateName
	add := func(n StateName) {
		if n != "" && !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	for _, c := range s.Choices {
		add(s.Branches[c])
	}
	add(s.Next)
	return out
}

func (s *State) hasChoice(c string) bool {
	for _, known := range s.Choices {
		if known == c {
			return true
		}
	}
	return false
}

// Definition is the transition table of one workflow type.
type Definition struct {
	Type    Type
	Initial StateName
	States  map[StateName]*State
}

func newDefinition(t Type, states ...*State) *Definition {
	d := &Definition{Type: t, States: make(map[StateName]*State, len(states))}
	for i, s := range states {
		if i == 0 {
			d.Initial = s.Name
		}
		if s.Field == "" {
			s.Field = string(s.Name)
		}
		d.States[s.Name] = s
	}
	return d
}

// State returns the row for name.
func (d *Definition) State(name StateName) (*State, bool) {
	s, ok := d.States[name]
	return s, ok
}

// Validate checks that every transition lands on a declared or terminal state,
// that every choice state has choices, and that every state is reachable.
func (d *Definition) Validate() error {
	var problems []string
	if _, ok := d.States[d.Initial]; !ok {
		problems = append(problems, fmt.Sprintf("initial state %q is not declared", d.Initial))
	}
	for name, s := range d.States {
		if s.Expect == ExpectChoice && len(s.Choices) == 0 {
			problems = append(problems, fmt.Sprintf("state %q expects a choice but declares none", name))
		}
		for c := range s.Branches {
			if !s.hasChoice(c) {
				problems = append(problems, fmt.Sprintf("state %q branches on undeclared choice %q", name, c))
			}
		}
		if s.Next == "" {
			for _, c := range s.Choices {
				if _, ok := s.Branches[c]; !ok {
					problems = append(problems, fmt.Sprintf("state %q has no target for choice %q", name, c))
				}
			}
			if len(s.Choices) == 0 {
				problems = append(problems, fmt.Sprintf("state %q has no next state", name))
			}
		}
		for _, to := range s.Targets() {
			if to == StateCancelled {
				problems = append(problems, fmt.Sprintf("state %q transitions to %s directly", name, StateCancelled))
				continue
			}
			if _, ok := d.States[to]; !ok && !to.IsTerminal() {
				problems = append(problems, fmt.Sprintf("state %q transitions to undeclared state %q", name, to))
			}
		}
	}
	reached := d.reachable()
	for name := range d.States {
		if !reached[name] {
			problems = append(problems, fmt.Sprintf("state %q is unreachable", name))
		}
	}
	if !reached[StateSubmitted] {
		problems = append(problems, "no path reaches "+string(StateSubmitted))
	}
	if len(problems) > 0 {
		sort.Strings(problems)
		return fmt.Errorf("workflow %s: %s", d.Type, strings.Join(problems, "; "))
	}
	return nil
}

func (d *Definition) reachable() map[StateName]bool {
	reached := map[StateName]bool{d.Initial: true}
	queue := []StateName{d.Initial}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		s, ok := d.States[cur]
		if !ok {
			continue
		}
		for _, to := range s.Targets() {
			if !reached[to] {
				reached[to] = true
				queue = append(queue, to)
			}
		}
	}
	return reached
}
