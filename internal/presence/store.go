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

/*
Package presence is the Redis-backed cluster source of truth for which
server and which session currently own each uuid.

KEY CONVENTIONS:
================

	uuid_<uuid>     -> owning server name
	session_<uuid>  -> owning session id
	logic_connection -> hash of server name -> live connection count
	lock:<name>     -> short-TTL mutex (see lock.go)

INVARIANT:
==========
A uuid's server/session pair is only ever mutated while holding the
per-uuid distributed lock. Deletes are conditional on the stored session id
still matching the caller's, so a delayed logout from a superseded session
can never erase a fresher login's record. The connection counter's
read-modify-write runs under a per-server-name lock.
*/
package presence

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"flychat/internal/logging"
)

// Redis key layout.
const (
	uuidKeyPrefix    = "uuid_"
	sessionKeyPrefix = "session_"
	connCountsKey    = "logic_connection"
	lockKeyPrefix    = "lock:"
)

func uuidKey(userUUID string) string    { return uuidKeyPrefix + userUUID }
func sessionKey(userUUID string) string { return sessionKeyPrefix + userUUID }
func lockKey(name string) string        { return lockKeyPrefix + name }

// clearIfOwnerScript deletes both route keys only when the stored session
// id still equals the caller's. Returns 1 when cleared.
var clearIfOwnerScript = redis.NewScript(`
if redis.call("GET", KEYS[2]) == ARGV[1] then
	redis.call("DEL", KEYS[1])
	redis.call("DEL", KEYS[2])
	return 1
end
return 0
`)

// Route is one uuid's presence binding.
type Route struct {
	Server    string
	SessionID string
}

// Store reads and writes presence records on behalf of one server process.
type Store struct {
	rdb    *redis.Client
	server string
	logger *logging.Logger
}

// NewStore creates a presence store. server is this process's cluster-wide
// name, written into every route this store binds.
func NewStore(rdb *redis.Client, server string, logger *logging.Logger) *Store {
	return &Store{rdb: rdb, server: server, logger: logger}
}

// ServerName returns the local server's cluster-wide name.
func (s *Store) ServerName() string { return s.server }

// ServerFor returns the server owning uuid, or "" when the user is offline.
func (s *Store) ServerFor(ctx context.Context, userUUID string) (string, error) {
	v, err := s.rdb.Get(ctx, uuidKey(userUUID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	return v, err
}

// SessionFor returns the session id owning uuid, or "" when offline.
func (s *Store) SessionFor(ctx context.Context, userUUID string) (string, error) {
	v, err := s.rdb.Get(ctx, sessionKey(userUUID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	return v, err
}

// RouteFor returns the full binding for uuid. A zero Route means offline.
func (s *Store) RouteFor(ctx context.Context, userUUID string) (Route, error) {
	pipe := s.rdb.Pipeline()
	srv := pipe.Get(ctx, uuidKey(userUUID))
	sess := pipe.Get(ctx, sessionKey(userUUID))
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return Route{}, err
	}
	r := Route{}
	if v, err := srv.Result(); err == nil {
		r.Server = v
	}
	if v, err := sess.Result(); err == nil {
		r.SessionID = v
	}
	return r, nil
}

// BindRoute points uuid at the local server and the given session id.
// Callers must hold the per-uuid lock.
func (s *Store) BindRoute(ctx context.Context, userUUID, sessionID string) error {
	pipe := s.rdb.Pipeline()
	pipe.Set(ctx, uuidKey(userUUID), s.server, 0)
	pipe.Set(ctx, sessionKey(userUUID), sessionID, 0)
	_, err := pipe.Exec(ctx)
	return err
}

// ClearRouteIf removes uuid's binding only if sessionID still owns it.
// Returns whether the record was cleared. This is the stale-logout guard:
// an old session's teardown never clobbers a newer login.
func (s *Store) ClearRouteIf(ctx context.Context, userUUID, sessionID string) (bool, error) {
	n, err := clearIfOwnerScript.Run(ctx, s.rdb,
		[]string{uuidKey(userUUID), sessionKey(userUUID)}, sessionID).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// IncrementConnections bumps the local server's live connection count.
// The read-modify-write runs under the per-server-name lock.
func (s *Store) IncrementConnections(ctx context.Context) error {
	return s.WithServerLock(ctx, s.server, func(ctx context.Context) error {
		cur, err := s.rdb.HGet(ctx, connCountsKey, s.server).Result()
		if err != nil && err != redis.Nil {
			return err
		}
		n, _ := strconv.ParseInt(cur, 10, 64)
		return s.rdb.HSet(ctx, connCountsKey, s.server, n+1).Err()
	})
}

// DecrementConnections lowers the local server's count, flooring at zero.
func (s *Store) DecrementConnections(ctx context.Context) error {
	return s.WithServerLock(ctx, s.server, func(ctx context.Context) error {
		cur, err := s.rdb.HGet(ctx, connCountsKey, s.server).Result()
		if err != nil && err != redis.Nil {
			return err
		}
		n, _ := strconv.ParseInt(cur, 10, 64)
		if n > 0 {
			n--
		}
		return s.rdb.HSet(ctx, connCountsKey, s.server, n).Err()
	})
}

// RegisterServer seeds the local server's counter slot so the balance
// server sees it immediately, even before the first login.
func (s *Store) RegisterServer(ctx context.Context) error {
	return s.rdb.HSetNX(ctx, connCountsKey, s.server, 0).Err()
}

// UnregisterServer drops the counter slot on shutdown.
func (s *Store) UnregisterServer(ctx context.Context) error {
	return s.rdb.HDel(ctx, connCountsKey, s.server).Err()
}

// ConnectionCounts snapshots every server's live connection count. The
// balance server's least-connections pick reads this.
func (s *Store) ConnectionCounts(ctx context.Context) (map[string]int64, error) {
	raw, err := s.rdb.HGetAll(ctx, connCountsKey).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(raw))
	for server, v := range raw {
		n, _ := strconv.ParseInt(v, 10, 64)
		out[server] = n
	}
	return out, nil
}

// HealthCheckLoop pings Redis every interval until ctx is done. A failed
// ping is logged; go-redis re-dials broken pool slots on the next command,
// so the loop's job is detection, not repair.
func (s *Store) HealthCheckLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			if err := s.rdb.Ping(pingCtx).Err(); err != nil {
				s.logger.Warn("Redis health check failed", "error", err)
			}
			cancel()
		}
	}
}
