package telegram

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"gopkg.in/telebot.v3"

	"shift_report_bot/internal/domain/workflow"
)

// answerUnique identifies inline buttons that answer the current dialogue step.
const answerUnique = "wf_answer"

const (
	btnTextShiftOpen   = "Открытие смены"
	btnTextDailyCheck  = "Дневная сверка"
	btnTextShiftClose  = "Закрытие смены"
	btnTextCashDeposit = "Инкассация"
	btnTextCancel      = "Отмена"
	btnTextNoPhoto     = "Нет фото"
)

var workflowTitles = map[workflow.Type]string{
	workflow.TypeShiftOpen:   btnTextShiftOpen,
	workflow.TypeDailyCheck:  btnTextDailyCheck,
	workflow.TypeShiftClose:  btnTextShiftClose,
	workflow.TypeCashDeposit: btnTextCashDeposit,
}

var choiceLabels = map[string]string{
	workflow.ChoiceYes:     "Да",
	workflow.ChoiceNo:      "Нет",
	workflow.ChoiceGood:    "Хорошее",
	workflow.ChoiceBad:     "Плохое",
	workflow.ChoiceSend:    "Отправить",
	workflow.ChoiceRewrite: "Изменить текст",
}

// questions holds the prompt of every state that reads the same in all workflows.
var questions = map[workflow.StateName]string{
	workflow.StatePlace:                  "Пожалуйста, выберите свою рабочую точку из списка <b>ниже</b>",
	workflow.StateEmployeePhoto:          "Пожалуйста, сделайте Ваше фото на рабочем месте",
	workflow.StatePlacePhoto:             "Пришлите фото павильона проката",
	workflow.StateSkatesDried:            "Вы перенесли коньки с сушилки?",
	workflow.StateSkateDefects:           "Есть ли дефекты на коньках?",
	workflow.StateSkateDefectsPhoto:      "Пожалуйста, сфотографируйте все дефекты и пришлите фото в ответном сообщении",
	workflow.StateLaces:                  "Все шнурки заправлены?",
	workflow.StateHatsAndSocks:           "Есть ли одноразовые шапочки и носки?",
	workflow.StatePenguinDefects:         "Есть ли дефекты на пингвинах?",
	workflow.StatePenguinDefectsPhoto:    "Пожалуйста, пришлите фотографии дефектов",
	workflow.StateBoxDefects:             "Есть ли дефекты у ящиков хранения?",
	workflow.StateBoxDefectsPhoto:        "Пожалуйста, пришлите фотографии дефектов",
	workflow.StateProtection:             "Есть ли шлемы и защита?",
	workflow.StateMusic:                  "Музыка включена?",
	workflow.StateZoneClean:              "Павильон и зона проката чистые?",
	workflow.StateIceCondition:           "Каково состояние льда?",
	workflow.StatePaymentsMatch:          "Количество оплат совпадает с количеством посетителей?",
	workflow.StateComplaints:             "Были ли жалобы или предложения от посетителей?",
	workflow.StateComplaintsText:         "Опишите жалобы и предложения одним сообщением",
	workflow.StateUrgentIssues:           "Есть ли неисправности или вопросы, требующие срочного решения?",
	workflow.StateTicketsSold:            "Сколько билетов продано на текущий момент? Введите <b>числом</b>",
	workflow.StateTicketRevenue:          "Какая сумма получена за билеты? Введите <b>числом</b>",
	workflow.StateVisitors:               "Пожалуйста, введите количество посетителей <b>числом</b>",
	workflow.StateCard:                   "Введите суммарное количество безнала за сегодня",
	workflow.StateQR:                     "Введите суммарное количество денег по qr-коду за сегодня",
	workflow.StateRevenue:                "Введите общую сумму выручки за сегодня <b>числом</b>",
	workflow.StateReceiptsPhoto:          "Пожалуйста, пришлите фото всех необходимых чеков",
	workflow.StateBenefits:               "Были ли льготники сегодня?",
	workflow.StateBenefitsPhoto:          "Пожалуйста, пришлите фото льготных удостоверений.\nЕсли фото нет, нажмите «Нет фото»",
	workflow.StateDisinfection:           "Дезинфекция произведена?",
	workflow.StateSkatesOnDryer:          "Коньки поставлены на сушку?",
	workflow.StateProtectionDefects:      "Есть ли дефекты у защиты или шлемов?",
	workflow.StateProtectionDefectsPhoto: "Пожалуйста, пришлите фото дефектов",
	workflow.StateMusicOff:               "Музыка выключена?",
	workflow.StateReceiptsCount:          "Сколько чеков пробито за день?",
	workflow.StateSalaries:               "Напишите зарплаты сотрудников за смену одним сообщением",
	workflow.StateSalariesCheck:          "Проверьте текст зарплат. Всё верно?",
	workflow.StatePavilionClosed:         "Павильон закрыт?",
	workflow.StateHasDeposit:             "Была ли инкассация?",
	workflow.StateReceiptPhoto:           "Пришлите фото необходимых чеков",
	workflow.StateDepositDate:            "Укажите дату инкассации",
}

// overrides replace a shared prompt for one workflow.
var overrides = map[workflow.Type]map[workflow.StateName]string{
	workflow.TypeShiftClose: {
		workflow.StateCash: "Введите суммарное количество наличными за сегодня",
	},
	workflow.TypeCashDeposit: {
		workflow.StateCash: "Введите сумму инкассации <b>числом</b>",
	},
	workflow.TypeDailyCheck: {
		workflow.StatePlacePhoto: "Пришлите фото рабочего места",
	},
}

// reminders are sent right after an answer that needs the employee's attention.
var reminders = map[workflow.StateName]map[string]string{
	workflow.StateSkatesDried:    {workflow.ChoiceNo: "⚠️Перенесите коньки с сушилки!"},
	workflow.StateLaces:          {workflow.ChoiceNo: "⚠️Заправьте шнурки!"},
	workflow.StateHatsAndSocks:   {workflow.ChoiceNo: "⚠️Сообщите руководству, что закончились шапочки и носки!"},
	workflow.StateProtection:     {workflow.ChoiceNo: "⚠️Сообщите руководству, что не хватает шлемов или защиты!"},
	workflow.StateMusic:          {workflow.ChoiceNo: "⚠️Включите музыку!"},
	workflow.StateMusicOff:       {workflow.ChoiceNo: "⚠️Выключите музыку!"},
	workflow.StateZoneClean:      {workflow.ChoiceNo: "⚠️Наведите порядок в павильоне и зоне проката!"},
	workflow.StateDisinfection:   {workflow.ChoiceNo: "⚠️Проведите дезинфекцию!"},
	workflow.StateSkatesOnDryer:  {workflow.ChoiceNo: "⚠️Поставьте коньки на сушку!"},
	workflow.StatePavilionClosed: {workflow.ChoiceNo: "⚠️Закройте павильон!"},
	workflow.StatePaymentsMatch:  {workflow.ChoiceNo: "⚠️Проверьте оплаты и сообщите руководству о расхождении!"},
	workflow.StateUrgentIssues:   {workflow.ChoiceYes: "⚠️С Вами свяжутся в ближайшее время"},
	workflow.StateIceCondition:   {workflow.ChoiceBad: "⚠️Сообщите руководству о состоянии льда!"},
}

const (
	msgInvalidAnswer = "Ответ не подходит для этого шага, попробуйте ещё раз."
	msgFinishedOpen  = "Спасибо! Желаю Вам продуктивного рабочего дня😊"
)

// Prompt is what is sent to ask for one state.
type Prompt struct {
	Text   string
	Markup *telebot.ReplyMarkup
}

// PromptFor returns the question for state of def. Location states list
// the given titles as buttons; choice states list their choices. Button data
// names the state, so a button left over from an earlier question cannot
// answer the current one.
func PromptFor(def *workflow.Definition, state workflow.StateName, answers workflow.Answers, locations []string) (Prompt, error) {
	s, ok := def.State(state)
	if !ok {
		return Prompt{}, fmt.Errorf("workflow %s has no state %q", def.Type, state)
	}
	text, err := questionText(def, state, answers)
	if err != nil {
		return Prompt{}, err
	}

	switch s.Expect {
	case workflow.ExpectLocation:
		if len(locations) == 0 {
			return Prompt{}, fmt.Errorf("no locations configured")
		}
		return Prompt{Text: text, Markup: answerKeyboard(state, locations, func(v string) string { return v })}, nil
	case workflow.ExpectChoice:
		return Prompt{Text: text, Markup: answerKeyboard(state, s.Choices, func(v string) string { return choiceLabels[v] })}, nil
	case workflow.ExpectPhotoOrSentinel:
		return Prompt{Text: text, Markup: replyKeyboard(btnTextNoPhoto, btnTextCancel)}, nil
	default:
		return Prompt{Text: text}, nil
	}
}

// questionText is the HTML text asking for state. The salaries check repeats
// the typed salaries from answers.
func questionText(def *workflow.Definition, state workflow.StateName, answers workflow.Answers) (string, error) {
	text, ok := overrides[def.Type][state]
	if !ok {
		text, ok = questions[state]
	}
	if !ok {
		return "", fmt.Errorf("no prompt for %s/%s", def.Type, state)
	}
	if state == workflow.StateSalariesCheck {
		text = fmt.Sprintf("<em>%s</em>\n\n%s", html.EscapeString(answers["salaries"].Text), text)
	}
	return text, nil
}

// AnsweredText is the question of state followed by the chosen label. It
// replaces the inline keyboard once the question is answered.
func AnsweredText(def *workflow.Definition, state workflow.StateName, answers workflow.Answers, choice string) (string, error) {
	text, err := questionText(def, state, answers)
	if err != nil {
		return "", err
	}
	label, ok := choiceLabels[choice]
	if !ok {
		label = choice
	}
	return fmt.Sprintf("%s\n\n➢ <b>%s</b>", text, html.EscapeString(label)), nil
}

// parseAnswerData splits inline button data into the answered state and the choice.
func parseAnswerData(data string) (workflow.StateName, string, bool) {
	state, choice, ok := strings.Cut(data, "|")
	if !ok || state == "" || choice == "" {
		return "", "", false
	}
	return workflow.StateName(state), choice, true
}

// ReminderFor returns the follow-up for an accepted answer, if there is one.
func ReminderFor(state workflow.StateName, v workflow.Value) (string, bool) {
	if v.Kind != workflow.ValueChoice {
		return "", false
	}
	text, ok := reminders[state][v.Text]
	return text, ok
}

func answerKeyboard(state workflow.StateName, values []string, label func(string) string) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	btn := func(v string) telebot.Btn {
		return markup.Data(label(v), answerUnique, string(state), v)
	}
	rows := make([]telebot.Row, 0, len(values))
	if len(values) == 2 && utf8.RuneCountInString(label(values[0])+label(values[1])) <= 16 {
		rows = append(rows, markup.Row(btn(values[0]), btn(values[1])))
	} else {
		for _, v := range values {
			rows = append(rows, markup.Row(btn(v)))
		}
	}
	markup.Inline(rows...)
	return markup
}

func replyKeyboard(buttons ...string) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{ResizeKeyboard: true}
	rows := make([]telebot.Row, 0, len(buttons))
	for _, b := range buttons {
		rows = append(rows, markup.Row(markup.Text(b)))
	}
	markup.Reply(rows...)
	return markup
}

// MainMenu offers one button per workflow.
func MainMenu() *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{ResizeKeyboard: true}
	markup.Reply(
		markup.Row(markup.Text(btnTextShiftOpen), markup.Text(btnTextDailyCheck)),
		markup.Row(markup.Text(btnTextShiftClose), markup.Text(btnTextCashDeposit)),
	)
	return markup
}

// DialogueMenu replaces the main menu while a dialogue is in progress.
func DialogueMenu() *telebot.ReplyMarkup {
	return replyKeyboard(btnTextCancel)
}
