// internal/domain/workflow/shared_types.go
package workflow

import (
	"strconv"
	"strings"
)

// Type identifies one guided dialogue.
type Type string

const (
	TypeShiftOpen   Type = "SHIFT_OPEN"
	TypeShiftClose  Type = "SHIFT_CLOSE"
	TypeDailyCheck  Type = "DAILY_CHECK"
	TypeCashDeposit Type = "CASH_DEPOSIT"
)

// StateName names a single prompt within a workflow graph.
type StateName string

const (
	// StateSubmitted is reached when the dialogue is complete and the report must be sent.
	StateSubmitted StateName = "SUBMITTED"
	// StateCancelled is reached through an explicit cancel event. No report is produced.
	StateCancelled StateName = "CANCELLED"
)

// IsTerminal reports whether no further events are accepted in s.
func (s StateName) IsTerminal() bool {
	return s == StateSubmitted || s == StateCancelled
}

// Choice values shared by the inline keyboards.
const (
	ChoiceYes     = "yes"
	ChoiceNo      = "no"
	ChoiceGood    = "good"
	ChoiceBad     = "bad"
	ChoiceSend    = "send"
	ChoiceRewrite = "rewrite"
)

// NoPhotoSentinel is the text accepted instead of a photo on optional-with-placeholder fields.
const NoPhotoSentinel = "нет фото"

// EventKind is the shape of an inbound user event.
type EventKind int

const (
	EventText EventKind = iota + 1
	EventChoice
	EventPhoto
	EventCancel
)

func (k EventKind) String() string {
	switch k {
	case EventText:
		return "text"
	case EventChoice:
		return "choice"
	case EventPhoto:
		return "photo"
	case EventCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

// Event is one user interaction routed to an active dialogue.
// Photos holds every file id of a single submission (one photo or one album).
type Event struct {
	Kind   EventKind
	Text   string
	Photos []string
}

func TextEvent(text string) Event { return Event{Kind: EventText, Text: text} }
func ChoiceEvent(choice string) Event { return Event{Kind: EventChoice, Text: choice} }
func PhotoEvent(fileIDs ...string) Event { return Event{Kind: EventPhoto, Photos: fileIDs} }
func CancelEvent() Event { return Event{Kind: EventCancel} }

// ValueKind tells how an accepted answer was captured.
type ValueKind string

const (
	ValueText    ValueKind = "text"
	ValueNumber  ValueKind = "number"
	ValueChoice  ValueKind = "choice"
	ValuePhotos  ValueKind = "photos"
	ValueSkipped ValueKind = "skipped"
)

// Value is one accepted answer. Numbers keep the digits exactly as typed.
type Value struct {
	Kind   ValueKind `json:"kind"`
	Text   string    `json:"text,omitempty"`
	Photos []string  `json:"photos,omitempty"`
}

// Int parses a number value.
func (v Value) Int() (int64, error) {
	return strconv.ParseInt(v.Text, 10, 64)
}

// Answers is the accumulated answer set of one dialogue, keyed by field name.
type Answers map[string]Value

// Clone returns a deep copy so a rejected or abandoned transition never leaks into the original.
func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for k, v := range a {
		if v.Photos != nil {
			v.Photos = append([]string(nil), v.Photos...)
		}
		out[k] = v
	}
	return out
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
