package telegram

import (
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// UserLanes runs jobs of one user strictly in the order they were submitted
// while jobs of different users run in parallel. Each active user gets one
// draining goroutine that exits once the user's queue is empty.
type UserLanes struct {
	logger *logrus.Entry

	mu     sync.Mutex
	queues map[int64]*lane
	active sync.WaitGroup
}

type lane struct {
	jobs []func()
}

func NewUserLanes(logger *logrus.Entry) *UserLanes {
	return &UserLanes{logger: logger, queues: make(map[int64]*lane)}
}

// Submit appends job to the lane of key. It never blocks on the job itself.
func (l *UserLanes) Submit(key int64, job func()) {
	l.mu.Lock()
	if q, ok := l.queues[key]; ok {
		q.jobs = append(q.jobs, job)
		l.mu.Unlock()
		return
	}
	q := &lane{jobs: []func(){job}}
	l.queues[key] = q
	l.active.Add(1)
	l.mu.Unlock()

	go l.drain(key, q)
}

func (l *UserLanes) drain(key int64, q *lane) {
	defer l.active.Done()
	for {
		l.mu.Lock()
		if len(q.jobs) == 0 {
			delete(l.queues, key)
			l.mu.Unlock()
			return
		}
		job := q.jobs[0]
		q.jobs[0] = nil
		q.jobs = q.jobs[1:]
		l.mu.Unlock()

		l.run(key, job)
	}
}

func (l *UserLanes) run(key int64, job func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.WithFields(logrus.Fields{"user_id": key, "panic": r}).Error("Update handler panicked")
		}
	}()
	job()
}

// Active returns the number of users with queued or running jobs.
func (l *UserLanes) Active() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queues)
}

// Wait blocks until every lane has drained.
func (l *UserLanes) Wait() {
	l.active.Wait()
}

// Middleware moves every handler call onto the sender's lane. The bot must
// process updates synchronously so that lanes receive them in arrival
// order; the handlers themselves still run off the polling goroutine.
// Handler errors are passed to onError.
func (l *UserLanes) Middleware(onError func(error, telebot.Context)) telebot.MiddlewareFunc {
	return func(next telebot.HandlerFunc) telebot.HandlerFunc {
		return func(c telebot.Context) error {
			key, ok := laneKey(c)
			if !ok {
				return next(c)
			}
			l.Submit(key, func() {
				if err := next(c); err != nil && onError != nil {
					onError(err, c)
				}
			})
			return nil
		}
	}
}

func laneKey(c telebot.Context) (int64, bool) {
	if s := c.Sender(); s != nil {
		return s.ID, true
	}
	if ch := c.Chat(); ch != nil {
		return ch.ID, true
	}
	return 0, false
}
