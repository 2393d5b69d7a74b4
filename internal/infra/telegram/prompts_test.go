package telegram

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shift_report_bot/internal/domain/workflow"
)

func TestEveryStateHasAPrompt(t *testing.T) {
	locations := []string{"Парк Горького", "ВДНХ"}
	for _, def := range workflow.Definitions() {
		for name, s := range def.States {
			p, err := PromptFor(def, name, workflow.Answers{}, locations)
			require.NoError(t, err, "%s/%s", def.Type, name)
			assert.NotEmpty(t, p.Text, "%s/%s", def.Type, name)

			switch s.Expect {
			case workflow.ExpectChoice:
				require.NotNil(t, p.Markup)
				var got []string
				for _, row := range p.Markup.InlineKeyboard {
					for _, btn := range row {
						assert.Equal(t, answerUnique, btn.Unique)
						assert.NotEmpty(t, btn.Text)
						state, choice, ok := parseAnswerData(btn.Data)
						require.True(t, ok, btn.Data)
						assert.Equal(t, name, state)
						got = append(got, choice)
					}
				}
				assert.ElementsMatch(t, s.Choices, got, "%s/%s", def.Type, name)
			case workflow.ExpectLocation:
				require.NotNil(t, p.Markup)
				require.Len(t, p.Markup.InlineKeyboard, 2)
				assert.Equal(t, "place|ВДНХ", p.Markup.InlineKeyboard[1][0].Data)
			}
		}
	}
}

func TestPromptOverridesPerWorkflow(t *testing.T) {
	shiftClose, err := PromptFor(workflow.ShiftClose(), workflow.StateCash, nil, nil)
	require.NoError(t, err)
	deposit, err := PromptFor(workflow.CashDeposit(), workflow.StateCash, nil, nil)
	require.NoError(t, err)
	assert.NotEqual(t, shiftClose.Text, deposit.Text)
}

func TestPromptWithoutLocations(t *testing.T) {
	_, err := PromptFor(workflow.ShiftOpen(), workflow.StatePlace, nil, nil)
	assert.Error(t, err)
}

func TestPromptUnknownState(t *testing.T) {
	_, err := PromptFor(workflow.CashDeposit(), workflow.StateSalaries, nil, nil)
	assert.Error(t, err)
}

func TestSalariesCheckRepeatsEscapedText(t *testing.T) {
	answers := workflow.Answers{"salaries": {Kind: workflow.ValueText, Text: "Иван <3000>"}}
	p, err := PromptFor(workflow.ShiftClose(), workflow.StateSalariesCheck, answers, nil)
	require.NoError(t, err)
	assert.Contains(t, p.Text, "Иван &lt;3000&gt;")
}

func TestBenefitsPhotoOffersNoPhotoButton(t *testing.T) {
	p, err := PromptFor(workflow.ShiftClose(), workflow.StateBenefitsPhoto, nil, nil)
	require.NoError(t, err)
	require.NotNil(t, p.Markup)
	require.NotEmpty(t, p.Markup.ReplyKeyboard)
	assert.Equal(t, btnTextNoPhoto, p.Markup.ReplyKeyboard[0][0].Text)
}

func TestReminderFor(t *testing.T) {
	text, ok := ReminderFor(workflow.StateMusic, workflow.Value{Kind: workflow.ValueChoice, Text: workflow.ChoiceNo})
	assert.True(t, ok)
	assert.Contains(t, text, "музыку")

	_, ok = ReminderFor(workflow.StateMusic, workflow.Value{Kind: workflow.ValueChoice, Text: workflow.ChoiceYes})
	assert.False(t, ok)

	_, ok = ReminderFor(workflow.StateSalaries, workflow.Value{Kind: workflow.ValueText, Text: "no"})
	assert.False(t, ok)
}

func TestMainMenuHasEveryWorkflow(t *testing.T) {
	var got []string
	for _, row := range MainMenu().ReplyKeyboard {
		for _, btn := range row {
			got = append(got, btn.Text)
		}
	}
	for _, title := range workflowTitles {
		assert.Contains(t, got, title)
	}
}

func TestParseAnswerData(t *testing.T) {
	state, choice, ok := parseAnswerData("laces|yes")
	require.True(t, ok)
	assert.Equal(t, workflow.StateLaces, state)
	assert.Equal(t, workflow.ChoiceYes, choice)

	state, choice, ok = parseAnswerData("place|Парк | Горького")
	require.True(t, ok)
	assert.Equal(t, workflow.StatePlace, state)
	assert.Equal(t, "Парк | Горького", choice)

	for _, data := range []string{"", "yes", "|yes", "laces|"} {
		_, _, ok := parseAnswerData(data)
		assert.False(t, ok, data)
	}
}

func TestAnsweredTextShowsEscapedChoice(t *testing.T) {
	text, err := AnsweredText(workflow.ShiftOpen(), workflow.StateLaces, nil, workflow.ChoiceNo)
	require.NoError(t, err)
	assert.Contains(t, text, "Все шнурки заправлены?")
	assert.Contains(t, text, "<b>Нет</b>")

	text, err = AnsweredText(workflow.ShiftOpen(), workflow.StatePlace, nil, "Каток <Север>")
	require.NoError(t, err)
	assert.Contains(t, text, "<b>ниже</b>")
	assert.Contains(t, text, "<b>Каток &lt;Север&gt;</b>")
}

func TestLongestLocationFitsCallbackData(t *testing.T) {
	title := strings.Repeat("ы", 20)
	require.Equal(t, 40, len(title))

	p, err := PromptFor(workflow.ShiftOpen(), workflow.StatePlace, nil, []string{title})
	require.NoError(t, err)
	btn := p.Markup.InlineKeyboard[0][0]
	assert.LessOrEqual(t, len("\f"+btn.Unique+"|"+btn.Data), 64)
}
