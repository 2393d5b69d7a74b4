package telegram

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"shift_report_bot/internal/app"
	"shift_report_bot/internal/domain/workflow"
)

const (
	msgNoActiveDialogue = "Активного отчёта нет. Выберите отчёт в главном меню."
	msgNotEmployee      = "Вас нет в списке сотрудников. Обратитесь к руководству."
	msgDialogueActive   = "У Вас уже есть незавершённый отчёт. Завершите его или нажмите «Отмена»."
	msgAccepted         = "Принято"
	msgStaleQuestion    = "Этот вопрос уже неактуален."
)

// LocationLister provides the titles offered on the location step.
type LocationLister interface {
	LocationTitles() []string
}

type workflowHandlers struct {
	ctx       context.Context
	conv      *app.ConversationService
	engine    *workflow.Engine
	locations LocationLister
	albums    *AlbumCollector
	lanes     *UserLanes
	logger    *logrus.Entry
}

var startCommands = []struct {
	command string
	t       workflow.Type
}{
	{"/start_shift", workflow.TypeShiftOpen},
	{"/daily_checking", workflow.TypeDailyCheck},
	{"/finish_shift", workflow.TypeShiftClose},
	{"/encashment", workflow.TypeCashDeposit},
}

// RegisterWorkflowHandlers registers the commands, menu buttons and inputs
// that drive shift dialogues. Only private chats are served. Collected
// albums are handed back to the sender's lane so they keep their place
// among the user's other updates.
func RegisterWorkflowHandlers(
	ctx context.Context,
	b *telebot.Bot,
	conv *app.ConversationService,
	engine *workflow.Engine,
	locations LocationLister,
	albums *AlbumCollector,
	lanes *UserLanes,
	baseLogger *logrus.Entry,
) {
	h := &workflowHandlers{
		ctx:       ctx,
		conv:      conv,
		engine:    engine,
		locations: locations,
		albums:    albums,
		lanes:     lanes,
		logger:    baseLogger.WithField("handler_group", "workflow"),
	}

	menu := &telebot.ReplyMarkup{}
	for _, sc := range startCommands {
		start := privateOnly(h.start(sc.t))
		b.Handle(sc.command, start)
		btn := menu.Text(workflowTitles[sc.t])
		b.Handle(&btn, start)
	}

	cancel := privateOnly(h.cancel)
	b.Handle("/cancel", cancel)
	cancelBtn := menu.Text(btnTextCancel)
	b.Handle(&cancelBtn, cancel)

	b.Handle(telebot.OnText, privateOnly(h.onText))
	b.Handle(telebot.OnPhoto, privateOnly(h.onPhoto))
	b.Handle(&telebot.InlineButton{Unique: answerUnique}, privateOnly(h.onAnswer))
}

func privateOnly(next telebot.HandlerFunc) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		if c.Chat() == nil || c.Chat().Type != telebot.ChatPrivate || c.Sender() == nil {
			return nil
		}
		return next(c)
	}
}

func (h *workflowHandlers) start(t workflow.Type) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		userID := c.Sender().ID
		logCtx := h.logger.WithFields(logrus.Fields{"user_id": userID, "workflow": t})

		_, err := h.conv.Start(h.ctx, userID, t)
		switch {
		case errors.Is(err, app.ErrNotEmployee):
			logCtx.Info("Unknown user tried to start a dialogue")
			return c.Send(msgNotEmployee)
		case errors.Is(err, workflow.ErrSessionActive):
			if err := c.Send(msgDialogueActive); err != nil {
				return err
			}
			return h.promptCurrent(c, userID)
		case err != nil:
			logCtx.WithError(err).Error("Failed to start dialogue")
			return c.Send(app.MessageReportFailed)
		}

		if err := c.Send(fmt.Sprintf("<b>%s</b>", workflowTitles[t]), &telebot.SendOptions{
			ParseMode:   telebot.ModeHTML,
			ReplyMarkup: DialogueMenu(),
		}); err != nil {
			return err
		}
		return h.promptCurrent(c, userID)
	}
}

func (h *workflowHandlers) cancel(c telebot.Context) error {
	res, err := h.conv.Cancel(h.ctx, c.Sender().ID)
	return h.respond(c, res, err)
}

func (h *workflowHandlers) onText(c telebot.Context) error {
	res, err := h.conv.Handle(h.ctx, c.Sender().ID, workflow.TextEvent(c.Text()))
	return h.respond(c, res, err)
}

func (h *workflowHandlers) onPhoto(c telebot.Context) error {
	msg := c.Message()
	if msg == nil || msg.Photo == nil {
		return nil
	}
	userID := c.Sender().ID
	h.albums.Add(msg.AlbumID, msg.Photo.FileID, func(ids []string) {
		submit := func() {
			res, err := h.conv.Handle(h.ctx, userID, workflow.PhotoEvent(ids...))
			if err := h.respond(c, res, err); err != nil {
				h.logger.WithError(err).WithField("user_id", userID).Error("Failed to reply to photo")
			}
		}
		if msg.AlbumID == "" || h.lanes == nil {
			submit()
			return
		}
		h.lanes.Submit(userID, submit)
	})
	return nil
}

func (h *workflowHandlers) onAnswer(c telebot.Context) error {
	state, choice, ok := parseAnswerData(c.Callback().Data)
	if !ok {
		return c.Respond(&telebot.CallbackResponse{Text: msgStaleQuestion})
	}
	userID := c.Sender().ID
	res, err := h.conv.HandleAt(h.ctx, userID, state, workflow.ChoiceEvent(choice))
	if err == nil && res.Outcome == app.OutcomeRejected && res.State != state {
		return c.Respond(&telebot.CallbackResponse{Text: msgStaleQuestion})
	}
	_ = c.Respond()

	if err == nil && res.Outcome != app.OutcomeRejected && c.Message() != nil {
		h.markAnswered(c, res.Workflow, state, choice)
	}
	return h.respond(c, res, err)
}

// markAnswered replaces the question's keyboard with the chosen answer.
func (h *workflowHandlers) markAnswered(c telebot.Context, t workflow.Type, state workflow.StateName, choice string) {
	def, ok := h.engine.Definition(t)
	if !ok {
		return
	}
	var answers workflow.Answers
	if inst, err := h.conv.Current(h.ctx, c.Sender().ID); err == nil {
		answers = inst.Answers
	}
	text, err := AnsweredText(def, state, answers, choice)
	if err != nil {
		h.logger.WithError(err).Debug("Failed to render answered question")
		return
	}
	if _, err := c.Bot().Edit(c.Message(), text, &telebot.SendOptions{ParseMode: telebot.ModeHTML}); err != nil {
		h.logger.WithError(err).Debug("Failed to mark answered question")
	}
}

// respond tells the user what happened to their last input.
func (h *workflowHandlers) respond(c telebot.Context, res *app.Result, err error) error {
	userID := c.Sender().ID
	if errors.Is(err, workflow.ErrNoActiveSession) {
		return c.Send(msgNoActiveDialogue, MainMenu())
	}
	if err != nil {
		h.logger.WithError(err).WithField("user_id", userID).Error("Failed to handle dialogue event")
		return c.Send(app.MessageReportFailed)
	}

	switch res.Outcome {
	case app.OutcomeRejected:
		if err := c.Send(msgInvalidAnswer); err != nil {
			return err
		}
		return h.promptCurrent(c, userID)

	case app.OutcomeAdvanced:
		if text, ok := ReminderFor(res.From, res.Value); ok {
			if err := c.Send(text); err != nil {
				return err
			}
		}
		if res.From == workflow.StateBenefitsPhoto {
			if err := c.Send(msgAccepted, DialogueMenu()); err != nil {
				return err
			}
		}
		return h.promptCurrent(c, userID)

	case app.OutcomeSubmitted:
		if text, ok := ReminderFor(res.From, res.Value); ok {
			_ = c.Send(text)
		}
		if res.Delivered && res.Workflow == workflow.TypeShiftOpen {
			_ = c.Send(msgFinishedOpen)
		}
		return c.Send(app.MessageBackToMainMenu, MainMenu())

	case app.OutcomeCancelled:
		return c.Send(app.MessageBackToMainMenu, MainMenu())
	}
	return nil
}

// promptCurrent asks the question of the state the user's dialogue is in.
func (h *workflowHandlers) promptCurrent(c telebot.Context, userID int64) error {
	inst, err := h.conv.Current(h.ctx, userID)
	if errors.Is(err, workflow.ErrNoActiveSession) {
		return c.Send(msgNoActiveDialogue, MainMenu())
	}
	if err != nil {
		return err
	}
	def, ok := h.engine.Definition(inst.Type)
	if !ok {
		return fmt.Errorf("%w: %s", workflow.ErrUnknownWorkflow, inst.Type)
	}

	p, err := PromptFor(def, inst.State, inst.Answers, h.locations.LocationTitles())
	if err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"user_id":  userID,
			"workflow": inst.Type,
			"state":    inst.State,
		}).Error("Failed to build prompt")
		return c.Send(app.MessageReportFailed)
	}
	opts := &telebot.SendOptions{ParseMode: telebot.ModeHTML}
	if p.Markup != nil {
		opts.ReplyMarkup = p.Markup
	}
	return c.Send(p.Text, opts)
}
