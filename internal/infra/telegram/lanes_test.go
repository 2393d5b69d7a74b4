package telegram

import (
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/telebot.v3"
)

func newTestLanes() *UserLanes {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return NewUserLanes(logrus.NewEntry(l))
}

func TestLaneKeepsSubmissionOrder(t *testing.T) {
	lanes := newTestLanes()

	const n = 200
	var mu sync.Mutex
	var got []int
	for i := 0; i < n; i++ {
		i := i
		lanes.Submit(42, func() {
			if i%17 == 0 {
				time.Sleep(time.Millisecond)
			}
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		})
	}
	lanes.Wait()

	require.Len(t, got, n)
	for i, v := range got {
		require.Equal(t, i, v)
	}
	assert.Zero(t, lanes.Active())
}

func TestLanesOfDifferentUsersRunInParallel(t *testing.T) {
	lanes := newTestLanes()

	released := make(chan struct{})
	done := make(chan struct{})
	lanes.Submit(1, func() {
		select {
		case <-released:
		case <-time.After(2 * time.Second):
		}
		close(done)
	})
	lanes.Submit(2, func() { close(released) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("user 1 stayed blocked behind user 2")
	}
	lanes.Wait()
	assert.Zero(t, lanes.Active())
}

func TestLaneSurvivesPanickingJob(t *testing.T) {
	lanes := newTestLanes()

	ran := false
	lanes.Submit(7, func() { panic("boom") })
	lanes.Submit(7, func() { ran = true })
	lanes.Wait()

	assert.True(t, ran)
}

func privateUpdate(id int, userID int64, text string) telebot.Update {
	return telebot.Update{
		ID: id,
		Message: &telebot.Message{
			ID:     id,
			Text:   text,
			Sender: &telebot.User{ID: userID},
			Chat:   &telebot.Chat{ID: userID, Type: telebot.ChatPrivate},
		},
	}
}

func TestMiddlewareAppliesUpdatesInArrivalOrder(t *testing.T) {
	bot, err := telebot.NewBot(telebot.Settings{Offline: true, Synchronous: true})
	require.NoError(t, err)
	lanes := newTestLanes()

	var mu sync.Mutex
	got := map[int64][]int{}
	handler := lanes.Middleware(nil)(func(c telebot.Context) error {
		if c.Message().ID%5 == 0 {
			time.Sleep(time.Millisecond)
		}
		mu.Lock()
		got[c.Sender().ID] = append(got[c.Sender().ID], c.Message().ID)
		mu.Unlock()
		return nil
	})

	const n = 50
	for i := 1; i <= n; i++ {
		for _, user := range []int64{100, 200} {
			require.NoError(t, handler(bot.NewContext(privateUpdate(i, user, "x"))))
		}
	}
	lanes.Wait()

	for _, user := range []int64{100, 200} {
		require.Len(t, got[user], n, "user %d", user)
		for i, id := range got[user] {
			assert.Equal(t, i+1, id, "user %d", user)
		}
	}
}

func TestMiddlewareReportsHandlerErrors(t *testing.T) {
	bot, err := telebot.NewBot(telebot.Settings{Offline: true, Synchronous: true})
	require.NoError(t, err)
	lanes := newTestLanes()

	failure := errors.New("send failed")
	var reported []error
	handler := lanes.Middleware(func(err error, _ telebot.Context) {
		reported = append(reported, err)
	})(func(telebot.Context) error { return failure })

	require.NoError(t, handler(bot.NewContext(privateUpdate(1, 5, "x"))))
	lanes.Wait()

	require.Len(t, reported, 1)
	assert.ErrorIs(t, reported[0], failure)
}

func TestMiddlewareRunsInlineWithoutSender(t *testing.T) {
	bot, err := telebot.NewBot(telebot.Settings{Offline: true, Synchronous: true})
	require.NoError(t, err)
	lanes := newTestLanes()

	ran := false
	handler := lanes.Middleware(nil)(func(telebot.Context) error {
		ran = true
		return nil
	})
	require.NoError(t, handler(bot.NewContext(telebot.Update{ID: 1})))

	assert.True(t, ran)
	assert.Zero(t, lanes.Active())
}
