// Package keyValue is a small expiring key/value store, kept in process when
// the server is self contained and in redis otherwise.
package keyValue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type entry struct {
	value   string
	expires time.Time
}

type Store struct {
	mutex   sync.Mutex
	hashmap map[string]entry

	redisClient *redis.Client
	sugar       *zap.SugaredLogger
	now         func() time.Time
}

// New uses redisClient when it isn't nil, the in process hashmap otherwise.
// The hashmap is swept for expired keys every minute until ctx is done.
func New(ctx context.Context, redisClient *redis.Client, sugar *zap.SugaredLogger) *Store {
	s := &Store{
		hashmap:     make(map[string]entry),
		redisClient: redisClient,
		sugar:       sugar,
		now:         time.Now,
	}

	if redisClient == nil {
		go s.sweepExpired(ctx, time.Minute)
	}
	return s
}

func (s *Store) backend() string {
	if s.redisClient != nil {
		return "redis"
	}
	return "hashmap"
}

func (s *Store) sweepExpired(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.deleteExpired()
		}
	}
}

func (s *Store) deleteExpired() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	now := s.now()
	for key, e := range s.hashmap {
		if e.expired(now) {
			delete(s.hashmap, key)
		}
	}
}

func (e entry) expired(now time.Time) bool {
	return !e.expires.IsZero() && !e.expires.After(now)
}

// Get returns the value of key, or an empty string when it is missing.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	s.sugar.Debugf("Getting value of key [%s] from %s", key, s.backend())

	if s.redisClient == nil {
		s.mutex.Lock()
		defer s.mutex.Unlock()

		e, ok := s.hashmap[key]
		if !ok || e.expired(s.now()) {
			return "", nil
		}
		return e.value, nil
	}

	value, err := s.redisClient.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return value, err
}

// GetDel returns the value of key and deletes it.
func (s *Store) GetDel(ctx context.Context, key string) (string, error) {
	s.sugar.Debugf("Getting and deleting value of key [%s] from %s", key, s.backend())

	if s.redisClient == nil {
		s.mutex.Lock()
		defer s.mutex.Unlock()

		e, ok := s.hashmap[key]
		delete(s.hashmap, key)
		if !ok || e.expired(s.now()) {
			return "", nil
		}
		return e.value, nil
	}

	value, err := s.redisClient.GetDel(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return value, err
}

// Set stores value under key, an expiry of zero keeps it forever.
func (s *Store) Set(ctx context.Context, key string, value string, expires time.Duration) error {
	s.sugar.Debugf("Setting value of key [%s] in %s", key, s.backend())

	if s.redisClient == nil {
		s.mutex.Lock()
		defer s.mutex.Unlock()

		e := entry{value: value}
		if expires > 0 {
			e.expires = s.now().Add(expires)
		}
		s.hashmap[key] = e
		return nil
	}

	return s.redisClient.Set(ctx, key, value, expires).Err()
}

// Append adds item to the JSON list stored under key, refreshing its expiry.
func (s *Store) Append(ctx context.Context, key string, item any, expires time.Duration) error {
	encoded, err := json.Marshal(item)
	if err != nil {
		return err
	}

	if s.redisClient != nil {
		s.sugar.Debugf("Appending to list [%s] in redis", key)
		pipe := s.redisClient.TxPipeline()
		pipe.RPush(ctx, key, encoded)
		if expires > 0 {
			pipe.Expire(ctx, key, expires)
		}
		_, err = pipe.Exec(ctx)
		return err
	}

	s.sugar.Debugf("Appending to list [%s] in hashmap", key)

	s.mutex.Lock()
	defer s.mutex.Unlock()

	var list []json.RawMessage
	if e, ok := s.hashmap[key]; ok && !e.expired(s.now()) {
		if err := json.Unmarshal([]byte(e.value), &list); err != nil {
			return err
		}
	}
	list = append(list, encoded)

	value, err := json.Marshal(list)
	if err != nil {
		return err
	}

	e := entry{value: string(value)}
	if expires > 0 {
		e.expires = s.now().Add(expires)
	}
	s.hashmap[key] = e
	return nil
}

// List decodes every item appended under key into dst, a pointer to a slice.
func (s *Store) List(ctx context.Context, key string, dst any) error {
	if s.redisClient != nil {
		items, err := s.redisClient.LRange(ctx, key, 0, -1).Result()
		if err != nil {
			return err
		}
		raw := make([]json.RawMessage, len(items))
		for i, item := range items {
			raw[i] = json.RawMessage(item)
		}
		joined, err := json.Marshal(raw)
		if err != nil {
			return err
		}
		return json.Unmarshal(joined, dst)
	}

	value, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if value == "" {
		value = "[]"
	}
	return json.Unmarshal([]byte(value), dst)
}
