package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"shift_report_bot/internal/domain/report"
	domainTelegram "shift_report_bot/internal/domain/telegram"
	"shift_report_bot/internal/domain/workflow"
)

var ErrNotEmployee = fmt.Errorf("user is not a registered employee")

const (
	MessageReportSent     = "Отлично! Отчёт успешно отправлен👍🏻"
	MessageReportFailed   = "Упс... что-то пошло не так, сообщите руководству!"
	MessageBackToMainMenu = "Вы вернулись в главное меню"
)

// Outcome describes what an event did to the dialogue.
type Outcome int

const (
	OutcomeAdvanced Outcome = iota + 1
	OutcomeRejected
	OutcomeSubmitted
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAdvanced:
		return "advanced"
	case OutcomeRejected:
		return "rejected"
	case OutcomeSubmitted:
		return "submitted"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Result is returned from ConversationService.Handle.
type Result struct {
	Outcome  Outcome
	Workflow workflow.Type
	// State is the state now waiting for an answer. For a rejected event it is
	// the unchanged current state; for a finished dialogue it is terminal.
	State workflow.StateName
	// From and Value describe the accepted answer, if any.
	From      workflow.StateName
	Value     workflow.Value
	Delivered bool
}

// Directory is the read side of the reference cache used by dialogues.
type Directory interface {
	IsEmployee(userID int64) bool
	ResolveFullName(ctx context.Context, userID int64) (string, error)
	ChannelFor(title string) (int64, error)
}

// ReportDispatcher delivers reports. Implemented by *Dispatcher.
type ReportDispatcher interface {
	Dispatch(ctx context.Context, rep *report.Report, destination int64, actor Actor) error
	NotifyAdmin(ctx context.Context, actor Actor, cause error)
}

// ConversationService drives shift dialogues: it serializes events per
// session, moves them through the engine and finishes them with report delivery.
type ConversationService struct {
	engine     *workflow.Engine
	sessions   workflow.SessionStore
	directory  Directory
	dispatcher ReportDispatcher
	client     domainTelegram.Client
	summaries  report.SummaryRepository // optional
	location   *time.Location
	now        func() time.Time
	locks      *keyedMutex
	logger     *logrus.Entry
}

func NewConversationService(
	engine *workflow.Engine,
	sessions workflow.SessionStore,
	directory Directory,
	dispatcher ReportDispatcher,
	client domainTelegram.Client,
	summaries report.SummaryRepository,
	location *time.Location,
	logger *logrus.Entry,
) *ConversationService {
	if location == nil {
		location = time.UTC
	}
	return &ConversationService{
		engine:     engine,
		sessions:   sessions,
		directory:  directory,
		dispatcher: dispatcher,
		client:     client,
		summaries:  summaries,
		location:   location,
		now:        time.Now,
		locks:      newKeyedMutex(),
		logger:     logger,
	}
}

// Start begins a dialogue of type t. It fails with ErrSessionActive if the
// user already has one in progress.
func (s *ConversationService) Start(ctx context.Context, userID int64, t workflow.Type) (*workflow.Instance, error) {
	if !s.directory.IsEmployee(userID) {
		return nil, ErrNotEmployee
	}
	key := workflow.KeyFor(userID)
	unlock := s.locks.Lock(key.String())
	defer unlock()

	existing, err := s.sessions.Get(ctx, key)
	switch {
	case err == nil:
		return existing, fmt.Errorf("%w: %s", workflow.ErrSessionActive, existing.Type)
	case !errors.Is(err, workflow.ErrSessionNotFound):
		return nil, fmt.Errorf("failed to check active session: %w", err)
	}

	inst, err := s.engine.Begin(userID, t, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Put(ctx, key, inst); err != nil {
		return nil, fmt.Errorf("failed to save new session: %w", err)
	}
	s.logger.WithFields(logrus.Fields{
		"user_id":     userID,
		"workflow":    t,
		"instance_id": inst.ID,
	}).Info("Dialogue started")
	return inst, nil
}

// Current returns the user's active dialogue or ErrNoActiveSession.
func (s *ConversationService) Current(ctx context.Context, userID int64) (*workflow.Instance, error) {
	inst, err := s.sessions.Get(ctx, workflow.KeyFor(userID))
	if errors.Is(err, workflow.ErrSessionNotFound) {
		return nil, workflow.ErrNoActiveSession
	}
	return inst, err
}

// Cancel abandons the user's active dialogue.
func (s *ConversationService) Cancel(ctx context.Context, userID int64) (*Result, error) {
	return s.Handle(ctx, userID, workflow.CancelEvent())
}

// Handle feeds one user event into the active dialogue. Events of the same
// user are processed one at a time. Without an active dialogue it returns
// ErrNoActiveSession.
func (s *ConversationService) Handle(ctx context.Context, userID int64, ev workflow.Event) (*Result, error) {
	return s.handle(ctx, userID, "", ev)
}

// HandleAt is Handle for an answer given to the question of state. When the
// dialogue is no longer in that state the answer is rejected unchanged.
func (s *ConversationService) HandleAt(ctx context.Context, userID int64, state workflow.StateName, ev workflow.Event) (*Result, error) {
	return s.handle(ctx, userID, state, ev)
}

func (s *ConversationService) handle(ctx context.Context, userID int64, expected workflow.StateName, ev workflow.Event) (*Result, error) {
	key := workflow.KeyFor(userID)
	unlock := s.locks.Lock(key.String())
	defer unlock()

	inst, err := s.sessions.Get(ctx, key)
	if errors.Is(err, workflow.ErrSessionNotFound) {
		return nil, workflow.ErrNoActiveSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	log := s.logger.WithFields(logrus.Fields{
		"user_id":     userID,
		"workflow":    inst.Type,
		"state":       inst.State,
		"instance_id": inst.ID,
	})

	if expected != "" && inst.State != expected {
		log.WithField("answered_state", expected).Debug("Stale answer rejected")
		return &Result{Outcome: OutcomeRejected, Workflow: inst.Type, State: inst.State}, nil
	}

	tr, err := s.engine.Advance(inst, ev)
	if errors.Is(err, workflow.ErrValidationRejected) {
		log.WithField("event", ev.Kind).Debug("Answer rejected")
		return &Result{Outcome: OutcomeRejected, Workflow: inst.Type, State: inst.State}, nil
	}
	if err != nil {
		return nil, err
	}
	inst.Apply(tr, s.now())
	res := &Result{Workflow: inst.Type, State: tr.To, From: tr.From, Value: tr.Value}

	switch tr.Effect {
	case workflow.EffectContinue:
		if err := s.sessions.Put(ctx, key, inst); err != nil {
			return nil, fmt.Errorf("failed to save session: %w", err)
		}
		res.Outcome = OutcomeAdvanced
	case workflow.EffectClear:
		s.clear(ctx, key, log)
		log.Info("Dialogue cancelled")
		res.Outcome = OutcomeCancelled
	case workflow.EffectAssemble:
		res.Outcome = OutcomeSubmitted
		res.Delivered = s.submit(ctx, inst, log)
		s.clear(ctx, key, log)
	}
	return res, nil
}

// submit assembles and delivers the report, then acknowledges the user.
// It reports whether delivery succeeded.
func (s *ConversationService) submit(ctx context.Context, inst *workflow.Instance, log *logrus.Entry) bool {
	name, err := s.directory.ResolveFullName(ctx, inst.UserID)
	if err != nil {
		log.WithError(err).Warn("Reporting under the user id")
		name = fmt.Sprintf("id %d", inst.UserID)
	}
	actor := Actor{UserID: inst.UserID, Name: name}
	at := inst.UpdatedAt.In(s.location)

	delivered := s.deliver(ctx, inst, actor, at, log)
	ack := MessageReportSent
	if !delivered {
		ack = MessageReportFailed
	}
	if _, err := s.client.SendMessage(ctx, inst.UserID, ack, nil); err != nil {
		log.WithError(err).Error("Failed to acknowledge report to user")
	}

	if delivered && inst.Type == workflow.TypeShiftClose && s.summaries != nil {
		s.saveSummary(ctx, inst, at, log)
	}
	return delivered
}

func (s *ConversationService) deliver(ctx context.Context, inst *workflow.Instance, actor Actor, at time.Time, log *logrus.Entry) bool {
	rep, err := report.Assemble(inst.Type, inst.Answers, actor.Name, at)
	if err != nil {
		log.WithError(err).Error("Failed to assemble report")
		s.dispatcher.NotifyAdmin(ctx, actor, err)
		return false
	}
	destination, err := s.directory.ChannelFor(inst.Answers["place"].Text)
	if err != nil {
		log.WithError(err).Error("Failed to resolve report destination")
		s.dispatcher.NotifyAdmin(ctx, actor, err)
		return false
	}
	return s.dispatcher.Dispatch(ctx, rep, destination, actor) == nil
}

func (s *ConversationService) saveSummary(ctx context.Context, inst *workflow.Instance, at time.Time, log *logrus.Entry) {
	summary, err := report.SummaryFromAnswers(inst.UserID, inst.Answers, at)
	if err == nil {
		err = s.summaries.SaveShiftSummary(ctx, summary)
	}
	if err != nil {
		log.WithError(err).Warn("Failed to save shift summary")
	}
}

// clear drops the session even if ctx is already cancelled; a finished
// dialogue must never stay behind.
func (s *ConversationService) clear(ctx context.Context, key workflow.SessionKey, log *logrus.Entry) {
	if err := s.sessions.Clear(context.WithoutCancel(ctx), key); err != nil {
		log.WithError(err).Error("Failed to clear session")
	}
}
