package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"shift_report_bot/internal/domain/reference"
	"shift_report_bot/internal/domain/report"
	domainTelegram "shift_report_bot/internal/domain/telegram"
	"shift_report_bot/internal/domain/workflow"
)

var errSend = errors.New("telegram: bad request")

type call struct {
	kind   string // send, media, delete
	chatID int64
	text   string
	items  []domainTelegram.Attachment
	ref    domainTelegram.MessageRef
}

type fakeClient struct {
	mu        sync.Mutex
	calls     []call
	nextID    int
	failChats map[int64]error
	// failMediaAt fails the n-th media group send (1-based); 0 never fails.
	failMediaAt int
	mediaSent   int
	failDelete  error
}

func newFakeClient() *fakeClient {
	return &fakeClient{failChats: map[int64]error{}}
}

func (f *fakeClient) SendMessage(_ context.Context, chatID int64, text string, _ *telebot.SendOptions) (domainTelegram.MessageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failChats[chatID]; err != nil {
		f.calls = append(f.calls, call{kind: "send-failed", chatID: chatID, text: text})
		return domainTelegram.MessageRef{}, err
	}
	f.nextID++
	ref := domainTelegram.MessageRef{ChatID: chatID, MessageID: f.nextID}
	f.calls = append(f.calls, call{kind: "send", chatID: chatID, text: text, ref: ref})
	return ref, nil
}

func (f *fakeClient) SendMediaGroup(_ context.Context, chatID int64, items []domainTelegram.Attachment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mediaSent++
	if f.failMediaAt == f.mediaSent {
		f.calls = append(f.calls, call{kind: "media-failed", chatID: chatID, items: items})
		return errSend
	}
	if err := f.failChats[chatID]; err != nil {
		return err
	}
	f.calls = append(f.calls, call{kind: "media", chatID: chatID, items: items})
	return nil
}

func (f *fakeClient) DeleteMessage(_ context.Context, ref domainTelegram.MessageRef) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{kind: "delete", chatID: ref.ChatID, ref: ref})
	return f.failDelete
}

func (f *fakeClient) kinds() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.kind
	}
	return out
}

func (f *fakeClient) sentTo(chatID int64) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.calls {
		if c.kind == "send" && c.chatID == chatID {
			out = append(out, c.text)
		}
	}
	return out
}

type fakeDirectory struct {
	names     map[int64]string
	channels  map[string]int64
	admins    map[int64]bool
	reloads   int
	reloadErr error
}

func (d *fakeDirectory) IsEmployee(userID int64) bool {
	_, ok := d.names[userID]
	return ok
}

func (d *fakeDirectory) ResolveFullName(_ context.Context, userID int64) (string, error) {
	n, ok := d.names[userID]
	if !ok {
		return "", reference.ErrPersonNotFound
	}
	return n, nil
}

func (d *fakeDirectory) ChannelFor(title string) (int64, error) {
	ch, ok := d.channels[title]
	if !ok {
		return 0, fmt.Errorf("%w: %q", reference.ErrLocationNotFound, title)
	}
	return ch, nil
}

func (d *fakeDirectory) HasLocation(title string) bool {
	_, ok := d.channels[title]
	return ok
}

func (d *fakeDirectory) IsAdmin(userID int64) bool { return d.admins[userID] }

func (d *fakeDirectory) Reload(context.Context) error {
	d.reloads++
	return d.reloadErr
}

type fakeSessions struct {
	mu     sync.Mutex
	data   map[workflow.SessionKey]*workflow.Instance
	clears map[workflow.SessionKey]int
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{
		data:   map[workflow.SessionKey]*workflow.Instance{},
		clears: map[workflow.SessionKey]int{},
	}
}

func (s *fakeSessions) Get(_ context.Context, key workflow.SessionKey) (*workflow.Instance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inst, ok := s.data[key]
	if !ok {
		return nil, workflow.ErrSessionNotFound
	}
	cp := *inst
	cp.Answers = inst.Answers.Clone()
	return &cp, nil
}

func (s *fakeSessions) Put(_ context.Context, key workflow.SessionKey, inst *workflow.Instance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *inst
	cp.Answers = inst.Answers.Clone()
	s.data[key] = &cp
	return nil
}

func (s *fakeSessions) Clear(_ context.Context, key workflow.SessionKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clears[key]++
	delete(s.data, key)
	return nil
}

func (s *fakeSessions) clearCount(key workflow.SessionKey) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clears[key]
}

type fakeSummaries struct {
	saved []*report.ShiftSummary
}

func (f *fakeSummaries) SaveShiftSummary(_ context.Context, s *report.ShiftSummary) error {
	f.saved = append(f.saved, s)
	return nil
}

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}
