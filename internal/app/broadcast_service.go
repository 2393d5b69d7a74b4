package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	domainTelegram "shift_report_bot/internal/domain/telegram"
)

// RetentionPolicy selects which sent reminders are retracted at the start of the next cycle.
type RetentionPolicy string

const (
	RetainLast RetentionPolicy = "last"
	RetainAll  RetentionPolicy = "all"
)

func ParseRetentionPolicy(s string) (RetentionPolicy, error) {
	switch p := RetentionPolicy(s); p {
	case RetainLast, RetainAll:
		return p, nil
	case "":
		return RetainLast, nil
	default:
		return "", fmt.Errorf("unknown retention policy %q", s)
	}
}

// BroadcastCycle carries what one cycle leaves for the next.
type BroadcastCycle struct {
	Retained []domainTelegram.MessageRef
	RanAt    time.Time
}

// WakeReason tells why the broadcast loop is evaluating the window.
type WakeReason string

const (
	WakeStart WakeReason = "start"
	WakeTick  WakeReason = "tick"
)

type broadcastPhase int

const (
	phaseWaiting broadcastPhase = iota
	phaseInWindow
)

// Audience lists the recipients of a reminder.
type Audience interface {
	Employees() []int64
}

type BroadcastConfig struct {
	Text     string
	Hour     int // local hour that opens the one-hour window
	Location *time.Location
	Policy   RetentionPolicy
}

// BroadcastService posts the daily reminder to every employee once per
// window and retracts the previous cycle's reminder first.
type BroadcastService struct {
	client   domainTelegram.Client
	audience Audience
	cfg      BroadcastConfig
	logger   *logrus.Entry

	mu         sync.Mutex
	phase      broadcastPhase
	lastWindow string
	cycle      BroadcastCycle
}

func NewBroadcastService(client domainTelegram.Client, audience Audience, cfg BroadcastConfig, logger *logrus.Entry) *BroadcastService {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Policy == "" {
		cfg.Policy = RetainLast
	}
	return &BroadcastService{client: client, audience: audience, cfg: cfg, logger: logger}
}

// Evaluate re-checks the window at now. Entering the window runs one cycle;
// any later evaluation within the same window does nothing.
// It reports whether a cycle ran.
func (s *BroadcastService) Evaluate(ctx context.Context, now time.Time, reason WakeReason) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	local := now.In(s.cfg.Location)
	log := s.logger.WithFields(logrus.Fields{"wake": reason, "local_time": local.Format("15:04")})

	if local.Hour() != s.cfg.Hour {
		if s.phase == phaseInWindow {
			log.Debug("Broadcast window closed")
		}
		s.phase = phaseWaiting
		return false
	}
	s.phase = phaseInWindow

	window := local.Format("2006-01-02T15")
	if window == s.lastWindow {
		log.Debug("Broadcast already ran in this window")
		return false
	}
	s.lastWindow = window
	s.cycle = s.RunCycle(ctx, s.cycle)
	return true
}

// RunCycle performs one send-and-retract cycle starting from prev and returns
// the state for the next cycle. With no audience it sends nothing, retracts
// nothing and returns prev unchanged. Send and delete failures are logged.
func (s *BroadcastService) RunCycle(ctx context.Context, prev BroadcastCycle) BroadcastCycle {
	members := s.audience.Employees()
	if len(members) == 0 {
		s.logger.Info("Broadcast audience is empty; nothing to send")
		return prev
	}

	for _, ref := range prev.Retained {
		if err := s.client.DeleteMessage(ctx, ref); err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"chat_id":    ref.ChatID,
				"message_id": ref.MessageID,
			}).Warn("Failed to retract previous reminder")
		}
	}

	sent := make([]domainTelegram.MessageRef, 0, len(members))
	for _, userID := range members {
		ref, err := s.client.SendMessage(ctx, userID, s.cfg.Text, nil)
		if err != nil {
			s.logger.WithError(err).WithField("user_id", userID).Warn("Failed to send reminder")
			continue
		}
		sent = append(sent, ref)
	}

	next := BroadcastCycle{RanAt: time.Now()}
	switch {
	case s.cfg.Policy == RetainAll:
		next.Retained = sent
	case len(sent) > 0:
		next.Retained = sent[len(sent)-1:]
	}
	s.logger.WithFields(logrus.Fields{
		"audience": len(members),
		"sent":     len(sent),
		"retained": len(next.Retained),
	}).Info("Broadcast cycle finished")
	return next
}
