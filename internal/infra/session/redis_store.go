package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	rd "github.com/go-redis/redis/v9"
	"github.com/sirupsen/logrus"

	"shift_report_bot/internal/domain/workflow"
)

const sessionKey = "SESSION"

var _ workflow.SessionStore = new(RedisStore)

type RedisConfig struct {
	Addrs     []string
	Namespace string
	TTL       time.Duration
}

// RedisStore keeps active dialogues in Redis as JSON documents. Every Put
// refreshes the TTL, so an abandoned dialogue expires TTL after its last answer.
type RedisStore struct {
	client    rd.UniversalClient
	namespace string
	ttl       time.Duration
	logger    *logrus.Entry
}

func NewRedisStore(conf RedisConfig, logger *logrus.Entry) *RedisStore {
	client := rd.NewUniversalClient(&rd.UniversalOptions{
		Addrs: conf.Addrs,
	})
	return &RedisStore{
		client:    client,
		namespace: conf.Namespace,
		ttl:       conf.TTL,
		logger:    logger,
	}
}

func (s *RedisStore) getNamespaceKey(args ...string) string {
	return fmt.Sprintf("%s:%s", s.namespace, strings.Join(args, ":"))
}

func (s *RedisStore) key(k workflow.SessionKey) string {
	return s.getNamespaceKey(sessionKey, k.String())
}

// Ping checks that Redis is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Get(ctx context.Context, k workflow.SessionKey) (*workflow.Instance, error) {
	data, err := s.client.Get(ctx, s.key(k)).Bytes()
	if errors.Is(err, rd.Nil) {
		return nil, workflow.ErrSessionNotFound
	}
	if err != nil {
		s.logger.WithError(err).WithField("session_key", k.String()).Error("Failed to read session")
		return nil, fmt.Errorf("error reading session %s: %w", k, err)
	}
	inst := &workflow.Instance{}
	if err := json.Unmarshal(data, inst); err != nil {
		return nil, fmt.Errorf("error decoding session %s: %w", k, err)
	}
	return inst, nil
}

func (s *RedisStore) Put(ctx context.Context, k workflow.SessionKey, inst *workflow.Instance) error {
	data, err := json.Marshal(inst)
	if err != nil {
		return fmt.Errorf("error encoding session %s: %w", k, err)
	}
	if err := s.client.Set(ctx, s.key(k), data, s.ttl).Err(); err != nil {
		s.logger.WithError(err).WithField("session_key", k.String()).Error("Failed to save session")
		return fmt.Errorf("error saving session %s: %w", k, err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, k workflow.SessionKey) error {
	if err := s.client.Del(ctx, s.key(k)).Err(); err != nil {
		return fmt.Errorf("error clearing session %s: %w", k, err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
