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
Package cache is a two-tier read-through cache for user profiles.

Tier one is in-process with a short TTL; tier two is Redis, shared by
all chatting servers, with a longer TTL. A profile read falls through
local, then Redis, then the caller goes to MySQL and puts the result
back through both tiers. Invalidation clears both tiers; other servers'
local tiers age out on their own TTL.
*/
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"flychat/internal/logging"
	"flychat/internal/logic"
)

const (
	profileKeyPrefix = "user_info_"

	localTTL      = 5 * time.Minute
	localSweep    = 10 * time.Minute
	redisTTL      = time.Hour
	redisCallWait = 500 * time.Millisecond
)

// ProfileCache implements logic.ProfileCache.
type ProfileCache struct {
	local  *gocache.Cache
	rdb    *redis.Client
	logger *logging.Logger
}

// New creates the cache. rdb may be nil, leaving only the local tier.
func New(rdb *redis.Client) *ProfileCache {
	return &ProfileCache{
		local:  gocache.New(localTTL, localSweep),
		rdb:    rdb,
		logger: logging.NewLogger("cache"),
	}
}

func profileKey(uuid string) string { return profileKeyPrefix + uuid }

// Get reads through both tiers. Redis faults degrade to a miss.
func (c *ProfileCache) Get(ctx context.Context, uuid string) (logic.Profile, bool) {
	if v, ok := c.local.Get(uuid); ok {
		return v.(logic.Profile), true
	}
	if c.rdb == nil {
		return logic.Profile{}, false
	}

	ctx, cancel := context.WithTimeout(ctx, redisCallWait)
	defer cancel()
	raw, err := c.rdb.Get(ctx, profileKey(uuid)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Debug("Redis tier read failed", "uuid", uuid, "error", err)
		}
		return logic.Profile{}, false
	}

	var p logic.Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		// Poisoned entry; drop it rather than serving garbage.
		c.rdb.Del(ctx, profileKey(uuid))
		return logic.Profile{}, false
	}
	c.local.Set(uuid, p, gocache.DefaultExpiration)
	return p, true
}

// Put writes through both tiers.
func (c *ProfileCache) Put(ctx context.Context, p logic.Profile) {
	c.local.Set(p.UUID, p, gocache.DefaultExpiration)
	if c.rdb == nil {
		return
	}

	raw, err := json.Marshal(p)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, redisCallWait)
	defer cancel()
	if err := c.rdb.Set(ctx, profileKey(p.UUID), raw, redisTTL).Err(); err != nil {
		c.logger.Debug("Redis tier write failed", "uuid", p.UUID, "error", err)
	}
}

// Invalidate clears both tiers for uuid.
func (c *ProfileCache) Invalidate(ctx context.Context, uuid string) {
	c.local.Delete(uuid)
	if c.rdb == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, redisCallWait)
	defer cancel()
	if err := c.rdb.Del(ctx, profileKey(uuid)).Err(); err != nil {
		c.logger.Debug("Redis tier delete failed", "uuid", uuid, "error", err)
	}
}
