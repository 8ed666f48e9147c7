/*
 * Copyright (c) 2026 Firefly Software Solutions Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package presence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Distributed lock defaults. The windows are deliberately short: a crashed
// holder must not wedge the lock for longer than one failed login attempt,
// so the TTL is a liveness/safety bet that must not be raised casually.
const (
	// DefaultLockWait is how long AcquireLock polls before giving up.
	DefaultLockWait = 10 * time.Millisecond

	// DefaultLockTTL is the lock expiry. A holder that dies mid-section
	// self-heals within this window.
	DefaultLockTTL = 10 * time.Millisecond

	// lockPollInterval is the SetNX retry cadence.
	lockPollInterval = time.Millisecond
)

// ErrLockNotAcquired reports that the bounded wait elapsed without getting
// the lock. Critical paths must abort on this, never proceed without it.
var ErrLockNotAcquired = errors.New("distributed lock not acquired")

// releaseScript deletes the lock only if the caller still holds it, so an
// expired-and-reacquired lock is never released by its previous owner.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// AcquireLock takes the named mutex with a bounded poll-and-sleep wait.
// It returns an opaque token that must be passed to ReleaseLock.
func (s *Store) AcquireLock(ctx context.Context, name string, wait, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	key := lockKey(name)
	deadline := time.Now().Add(wait)

	for {
		ok, err := s.rdb.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			return "", err
		}
		if ok {
			return token, nil
		}
		if time.Now().After(deadline) {
			return "", ErrLockNotAcquired
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(lockPollInterval):
		}
	}
}

// ReleaseLock drops the named mutex if token still owns it.
func (s *Store) ReleaseLock(ctx context.Context, name, token string) error {
	return releaseScript.Run(ctx, s.rdb, []string{lockKey(name)}, token).Err()
}

// WithUUIDLock runs fn while holding the per-uuid presence lock. This is
// the only legal way to mutate a uuid's presence record.
func (s *Store) WithUUIDLock(ctx context.Context, userUUID string, fn func(ctx context.Context) error) error {
	token, err := s.AcquireLock(ctx, uuidLockName(userUUID), DefaultLockWait, DefaultLockTTL)
	if err != nil {
		return err
	}
	defer s.ReleaseLock(ctx, uuidLockName(userUUID), token)
	return fn(ctx)
}

// WithServerLock runs fn while holding the per-server-name lock guarding
// the connection-counter read-modify-write.
func (s *Store) WithServerLock(ctx context.Context, server string, fn func(ctx context.Context) error) error {
	token, err := s.AcquireLock(ctx, serverLockName(server), DefaultLockWait, DefaultLockTTL)
	if err != nil {
		return err
	}
	defer s.ReleaseLock(ctx, serverLockName(server), token)
	return fn(ctx)
}

func uuidLockName(userUUID string) string { return "uuid_" + userUUID }

func serverLockName(server string) string { return "server_" + server }
