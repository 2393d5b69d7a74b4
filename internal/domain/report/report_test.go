package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shift_report_bot/internal/domain/workflow"
)

var msk = time.FixedZone("UTC+3", 3*60*60)

func choice(c string) workflow.Value { return workflow.Value{Kind: workflow.ValueChoice, Text: c} }
func text(t string) workflow.Value   { return workflow.Value{Kind: workflow.ValueText, Text: t} }
func number(t string) workflow.Value { return workflow.Value{Kind: workflow.ValueNumber, Text: t} }
func photos(ids ...string) workflow.Value {
	return workflow.Value{Kind: workflow.ValuePhotos, Photos: ids}
}

func TestFormatDate(t *testing.T) {
	at := time.Date(2024, time.March, 4, 9, 30, 0, 0, msk)
	assert.Equal(t, "04/03/2024 - Понедельник", FormatDate(at))
}

func TestShiftOpenMarksEveryNonCompliantLine(t *testing.T) {
	answers := workflow.Answers{
		"place":           text("Main Hall"),
		"employee_photo":  photos("e1"),
		"place_photo":     photos("p1", "p2"),
		"skates_dried":    choice(workflow.ChoiceNo),
		"skate_defects":   choice(workflow.ChoiceNo),
		"laces":           choice(workflow.ChoiceNo),
		"hats_and_socks":  choice(workflow.ChoiceNo),
		"penguin_defects": choice(workflow.ChoiceNo),
		"box_defects":     choice(workflow.ChoiceNo),
		"protection":      choice(workflow.ChoiceNo),
		"music":           choice(workflow.ChoiceNo),
		"zone_clean":      choice(workflow.ChoiceNo),
		"ice_condition":   choice(workflow.ChoiceGood),
	}

	rep, err := Assemble(workflow.TypeShiftOpen, answers, "Anna Petrova", time.Date(2024, 3, 4, 10, 0, 0, 0, msk))
	require.NoError(t, err)

	assert.Equal(t, 6, strings.Count(rep.Text, "⚠"))
	assert.Contains(t, rep.Text, "Точка: Main Hall")
	assert.Contains(t, rep.Text, "Имя: Anna Petrova")
	assert.Contains(t, rep.Text, "04/03/2024 - Понедельник")
	assert.Contains(t, rep.Text, "хорошее🟢")

	groups := rep.NonEmptyGroups()
	require.Len(t, groups, 2)
	assert.Equal(t, []string{"e1"}, groups[0].Items)
	assert.Equal(t, []string{"p1", "p2"}, groups[1].Items)
}

func TestShiftOpenDefectPhotosFollowPlacePhotos(t *testing.T) {
	answers := workflow.Answers{
		"place":                 text("Park"),
		"employee_photo":        photos("e1"),
		"place_photo":           photos("p1"),
		"skates_dried":          choice(workflow.ChoiceYes),
		"skate_defects":         choice(workflow.ChoiceYes),
		"skate_defects_photo":   photos("s1"),
		"laces":                 choice(workflow.ChoiceYes),
		"hats_and_socks":        choice(workflow.ChoiceYes),
		"penguin_defects":       choice(workflow.ChoiceNo),
		"box_defects":           choice(workflow.ChoiceYes),
		"box_defects_photo":     photos("b1", "b2"),
		"protection":            choice(workflow.ChoiceYes),
		"music":                 choice(workflow.ChoiceYes),
		"zone_clean":            choice(workflow.ChoiceYes),
		"ice_condition":         choice(workflow.ChoiceBad),
		"penguin_defects_photo": photos("stale"),
	}

	rep, err := Assemble(workflow.TypeShiftOpen, answers, "Anna", time.Now().In(msk))
	require.NoError(t, err)

	var names []string
	for _, g := range rep.NonEmptyGroups() {
		names = append(names, g.Name)
	}
	assert.Equal(t, []string{"employee_photo", "place_photo", "skate_defects_photo", "box_defects_photo"}, names)
	assert.Equal(t, 2, strings.Count(rep.Text, "⚠"))
	assert.Contains(t, rep.Text, "плохое🔴")
}

func TestShiftCloseAmountsAreVerbatim(t *testing.T) {
	answers := workflow.Answers{
		"place":              text("Park"),
		"visitors":           number("57"),
		"cash":               text("12 500,50 <approx>"),
		"card":               text("3000"),
		"qr":                 text("нет"),
		"revenue":            number("15500"),
		"receipts_photo":     photos("r1"),
		"benefits":           choice(workflow.ChoiceYes),
		"benefits_photo":     {Kind: workflow.ValueSkipped},
		"disinfection":       choice(workflow.ChoiceYes),
		"skates_on_dryer":    choice(workflow.ChoiceYes),
		"skate_defects":      choice(workflow.ChoiceNo),
		"hats_and_socks":     choice(workflow.ChoiceYes),
		"protection_defects": choice(workflow.ChoiceNo),
		"music_off":          choice(workflow.ChoiceYes),
		"receipts_count":     text("41"),
		"salaries":           text("Anna 2000\nIvan 1800"),
		"salaries_check":     choice(workflow.ChoiceSend),
		"zone_clean":         choice(workflow.ChoiceYes),
		"pavilion_closed":    choice(workflow.ChoiceYes),
	}

	rep, err := Assemble(workflow.TypeShiftClose, answers, "Ivan", time.Now().In(msk))
	require.NoError(t, err)

	assert.Contains(t, rep.Text, "12 500,50 &lt;approx&gt;")
	assert.Contains(t, rep.Text, "QR-код: <em>нет</em>")
	assert.Contains(t, rep.Text, "Anna 2000\nIvan 1800")
	assert.Contains(t, rep.Text, "фото удостоверений нет")

	groups := rep.NonEmptyGroups()
	require.Len(t, groups, 1)
	assert.Equal(t, "receipts_photo", groups[0].Name)
}

func TestCashDepositWithoutDeposit(t *testing.T) {
	rep, err := Assemble(workflow.TypeCashDeposit, workflow.Answers{
		"place":       text("Park"),
		"has_deposit": choice(workflow.ChoiceNo),
	}, "Ivan", time.Now().In(msk))
	require.NoError(t, err)
	assert.Contains(t, rep.Text, "Инкассации нет")
	assert.Empty(t, rep.NonEmptyGroups())
}

func TestAssembleReportsMissingAnswers(t *testing.T) {
	_, err := Assemble(workflow.TypeCashDeposit, workflow.Answers{
		"place":       text("Park"),
		"has_deposit": choice(workflow.ChoiceYes),
	}, "Ivan", time.Now())
	require.ErrorIs(t, err, ErrMissingAnswer)
	assert.Contains(t, err.Error(), "deposit_date")
}

func TestAssembleUnknownWorkflow(t *testing.T) {
	_, err := Assemble("NOPE", workflow.Answers{}, "", time.Now())
	require.ErrorIs(t, err, workflow.ErrUnknownWorkflow)
}

type anyLocation struct{}

func (anyLocation) HasLocation(string) bool { return true }

// candidates lists one event per distinct outcome a state can take.
func candidates(s *workflow.State) []workflow.Event {
	switch s.Expect {
	case workflow.ExpectChoice:
		evs := make([]workflow.Event, 0, len(s.Choices))
		for _, c := range s.Choices {
			evs = append(evs, workflow.ChoiceEvent(c))
		}
		return evs
	case workflow.ExpectLocation:
		return []workflow.Event{workflow.ChoiceEvent("Main <Hall>")}
	case workflow.ExpectDigits:
		return []workflow.Event{workflow.TextEvent("120")}
	case workflow.ExpectPhoto:
		return []workflow.Event{workflow.PhotoEvent("id-" + string(s.Name))}
	case workflow.ExpectPhotoOrSentinel:
		return []workflow.Event{workflow.PhotoEvent("id-" + string(s.Name)), workflow.TextEvent(workflow.NoPhotoSentinel)}
	default:
		return []workflow.Event{workflow.TextEvent("free & text")}
	}
}

func TestEveryCompletedPathAssembles(t *testing.T) {
	engine, err := workflow.NewEngine(anyLocation{}, workflow.Definitions()...)
	require.NoError(t, err)

	for _, d := range workflow.Definitions() {
		paths := 0
		var walk func(inst *workflow.Instance, seen map[workflow.StateName]bool)
		walk = func(inst *workflow.Instance, seen map[workflow.StateName]bool) {
			if inst.State == workflow.StateSubmitted {
				paths++
				rep, err := Assemble(d.Type, inst.Answers, "Tester", time.Now().In(msk))
				require.NoError(t, err, "%s answers %v", d.Type, inst.Answers)
				require.NotEmpty(t, rep.Text)
				for _, g := range rep.Groups {
					assert.NotEmpty(t, g.Items, "%s group %s", d.Type, g.Name)
				}
				return
			}
			s, ok := d.State(inst.State)
			require.True(t, ok)
			for _, ev := range candidates(s) {
				tr, err := engine.Advance(inst, ev)
				require.NoError(t, err, "%s/%s", d.Type, s.Name)
				if seen[tr.To] {
					continue
				}
				next := *inst
				next.Answers = inst.Answers.Clone()
				next.Apply(tr, time.Now())

				seen[tr.To] = true
				walk(&next, seen)
				delete(seen, tr.To)
			}
		}

		inst, err := engine.Begin(1, d.Type, time.Now())
		require.NoError(t, err)
		walk(inst, map[workflow.StateName]bool{inst.State: true})
		assert.Positive(t, paths, d.Type)
	}
}
