package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"shift_report_bot/internal/domain/report"
	domainTelegram "shift_report_bot/internal/domain/telegram"
)

// Actor identifies the user whose dialogue produced a report.
type Actor struct {
	UserID int64
	Name   string
}

func (a Actor) String() string {
	if a.Name == "" {
		return fmt.Sprintf("id %d", a.UserID)
	}
	return fmt.Sprintf("%s (id %d)", a.Name, a.UserID)
}

// DispatchFailedError reports which send of a report was rejected. Every send
// before it was delivered; nothing after it was attempted.
type DispatchFailedError struct {
	Step string // "text" or the name of the attachment group
	Err  error
}

func (e *DispatchFailedError) Error() string {
	return fmt.Sprintf("dispatch failed at %s: %v", e.Step, e.Err)
}

func (e *DispatchFailedError) Unwrap() error { return e.Err }

// Dispatcher delivers assembled reports and tells the admin chat when delivery fails.
type Dispatcher struct {
	client      domainTelegram.Client
	adminChatID int64
	logger      *logrus.Entry
}

func NewDispatcher(client domainTelegram.Client, adminChatID int64, logger *logrus.Entry) *Dispatcher {
	return &Dispatcher{client: client, adminChatID: adminChatID, logger: logger}
}

// Dispatch sends the text body, then each non-empty attachment group as one
// media group, all to destination and in order. The first failure aborts the
// rest, is reported to the admin chat once, and is returned as a
// *DispatchFailedError. Nothing is retried.
func (d *Dispatcher) Dispatch(ctx context.Context, rep *report.Report, destination int64, actor Actor) error {
	log := d.logger.WithFields(logrus.Fields{
		"user_id":  actor.UserID,
		"workflow": rep.Workflow,
		"chat_id":  destination,
	})

	if _, err := d.client.SendMessage(ctx, destination, rep.Text, &telebot.SendOptions{ParseMode: telebot.ModeHTML}); err != nil {
		return d.fail(ctx, log, actor, &DispatchFailedError{Step: "text", Err: err})
	}
	for _, g := range rep.NonEmptyGroups() {
		if err := d.client.SendMediaGroup(ctx, destination, attachments(g)); err != nil {
			return d.fail(ctx, log, actor, &DispatchFailedError{Step: g.Name, Err: err})
		}
	}
	log.Info("Report delivered")
	return nil
}

func (d *Dispatcher) fail(ctx context.Context, log *logrus.Entry, actor Actor, err *DispatchFailedError) error {
	log.WithError(err.Err).WithField("step", err.Step).Error("Report delivery aborted")
	d.NotifyAdmin(ctx, actor, err)
	return err
}

// NotifyAdmin makes a single attempt to tell the admin chat about a failed
// report. Its own failure is only logged.
func (d *Dispatcher) NotifyAdmin(ctx context.Context, actor Actor, cause error) {
	if d.adminChatID == 0 {
		d.logger.Warn("Admin chat is not configured; failure notification skipped")
		return
	}
	text := fmt.Sprintf("Упс... не удалось доставить отчёт от %s.\nОшибка: %v", actor, cause)
	if _, err := d.client.SendMessage(ctx, d.adminChatID, text, nil); err != nil {
		d.logger.WithError(err).WithField("user_id", actor.UserID).Error("Failed to notify admin about delivery failure")
	}
}

func attachments(g report.AttachmentGroup) []domainTelegram.Attachment {
	items := make([]domainTelegram.Attachment, len(g.Items))
	for i, id := range g.Items {
		items[i] = domainTelegram.Attachment{FileID: id}
	}
	if len(items) > 0 {
		items[0].Caption = g.Caption
	}
	return items
}
