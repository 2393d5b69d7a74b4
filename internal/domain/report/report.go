package report

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"shift_report_bot/internal/domain/workflow"
)

var ErrMissingAnswer = errors.New("report is missing an answer")

// AttachmentGroup is an ordered set of photos sent together. Caption belongs
// to the first item only.
type AttachmentGroup struct {
	Name    string
	Caption string
	Items   []string
}

// Report is the rendered result of one finished dialogue.
type Report struct {
	Workflow workflow.Type
	Text     string // HTML formatted
	Groups   []AttachmentGroup
}

// NonEmptyGroups returns the groups that have at least one item, in order.
func (r *Report) NonEmptyGroups() []AttachmentGroup {
	out := make([]AttachmentGroup, 0, len(r.Groups))
	for _, g := range r.Groups {
		if len(g.Items) > 0 {
			out = append(out, g)
		}
	}
	return out
}

var russianWeekDays = [...]string{
	time.Sunday:    "Воскресенье",
	time.Monday:    "Понедельник",
	time.Tuesday:   "Вторник",
	time.Wednesday: "Среда",
	time.Thursday:  "Четверг",
	time.Friday:    "Пятница",
	time.Saturday:  "Суббота",
}

// FormatDate renders at as "dd/mm/yyyy - weekday" in at's own location.
func FormatDate(at time.Time) string {
	return at.Format("02/01/2006") + " - " + russianWeekDays[at.Weekday()]
}

// Assemble renders answers into a report. It performs no arithmetic: every
// amount is printed as the user typed it.
func Assemble(t workflow.Type, answers workflow.Answers, personName string, at time.Time) (*Report, error) {
	r := &renderer{answers: answers}
	switch t {
	case workflow.TypeShiftOpen:
		renderShiftOpen(r, personName, at)
	case workflow.TypeDailyCheck:
		renderDailyCheck(r, personName, at)
	case workflow.TypeShiftClose:
		renderShiftClose(r, personName, at)
	case workflow.TypeCashDeposit:
		renderCashDeposit(r, personName, at)
	default:
		return nil, fmt.Errorf("%w: %s", workflow.ErrUnknownWorkflow, t)
	}
	if len(r.missing) > 0 {
		return nil, fmt.Errorf("%w: %s %s", ErrMissingAnswer, t, strings.Join(r.missing, ", "))
	}
	return &Report{Workflow: t, Text: strings.TrimRight(r.b.String(), "\n"), Groups: r.groups}, nil
}

const warn = "⚠️"

type renderer struct {
	answers workflow.Answers
	b       strings.Builder
	groups  []AttachmentGroup
	missing []string
}

func (r *renderer) value(field string) (workflow.Value, bool) {
	v, ok := r.answers[field]
	if !ok {
		r.missing = append(r.missing, field)
	}
	return v, ok
}

// text returns the escaped text of field.
func (r *renderer) text(field string) string {
	v, _ := r.value(field)
	return html.EscapeString(v.Text)
}

func (r *renderer) yes(field string) bool {
	v, _ := r.value(field)
	return v.Kind == workflow.ValueChoice && v.Text == workflow.ChoiceYes
}

func (r *renderer) linef(format string, args ...any) {
	fmt.Fprintf(&r.b, format, args...)
	r.b.WriteByte('\n')
}

func (r *renderer) blank() {
	r.b.WriteByte('\n')
}

func (r *renderer) header(title, personName string, at time.Time) {
	r.linef("%s", title)
	r.blank()
	r.linef("Дата: %s", FormatDate(at))
	r.linef("Точка: %s", r.text("place"))
	r.linef("Имя: %s", html.EscapeString(personName))
	r.blank()
}

// check renders a checklist line where "yes" is the expected answer.
func (r *renderer) check(label, field string) {
	if r.yes(field) {
		r.linef("%s: <em>да</em>", label)
		return
	}
	r.linef("%s: <em>нет%s</em>", label, warn)
}

// defect renders a flag line where "yes" reports a problem.
func (r *renderer) defect(label, field string) {
	if r.yes(field) {
		r.linef("%s: <em>да%s</em>", label, warn)
		return
	}
	r.linef("%s: <em>нет</em>", label)
}

// photos adds the group stored under field. Missing fields are recorded.
func (r *renderer) photos(caption, field string) {
	v, ok := r.value(field)
	if !ok {
		return
	}
	r.groups = append(r.groups, AttachmentGroup{Name: field, Caption: caption, Items: append([]string(nil), v.Photos...)})
}

// photosIf adds the group only when flag was answered "yes".
func (r *renderer) photosIf(flag, caption, field string) {
	if r.yes(flag) {
		r.photos(caption, field)
	}
}
