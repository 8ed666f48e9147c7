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

package session

import (
	"hash/fnv"
	"sync"

	"flychat/internal/logging"
)

// registryBuckets is the shard count of the uuid → session map. Sharding
// keeps unrelated logins from contending on one lock.
const registryBuckets = 32

type bucket struct {
	mu sync.RWMutex
	m  map[string]*Session
}

// Registry is the concurrent uuid → Session map for one server process.
//
// At most one entry exists per uuid here; cluster-wide uniqueness is the
// presence store's job, not this map's.
//
// Removal is two-phase. MoveToTerminationZone makes the session unroutable
// while its last write may still be in flight; FinalizeTermination drops it
// after the final-send callback has run. Closing a socket synchronously
// while the writer goroutine still owns it is the race this indirection
// exists to avoid.
type Registry struct {
	buckets [registryBuckets]bucket

	termMu      sync.Mutex
	terminating map[string]*Session // keyed by session id

	logger *logging.Logger
}

// NewRegistry creates an empty session registry.
func NewRegistry(logger *logging.Logger) *Registry {
	r := &Registry{
		terminating: make(map[string]*Session),
		logger:      logger,
	}
	for i := range r.buckets {
		r.buckets[i].m = make(map[string]*Session)
	}
	return r
}

func (r *Registry) bucketFor(uuid string) *bucket {
	h := fnv.New32a()
	h.Write([]byte(uuid))
	return &r.buckets[h.Sum32()%registryBuckets]
}

// GetSession returns the live session bound to uuid, if any.
func (r *Registry) GetSession(uuid string) (*Session, bool) {
	b := r.bucketFor(uuid)
	b.mu.RLock()
	defer b.mu.RUnlock()
	s, ok := b.m[uuid]
	return s, ok
}

// CreateUserSession binds uuid to s, returning the session it displaced
// (nil if none). The caller owns evicting the displaced session.
func (r *Registry) CreateUserSession(uuid string, s *Session) *Session {
	b := r.bucketFor(uuid)
	b.mu.Lock()
	prev := b.m[uuid]
	b.m[uuid] = s
	b.mu.Unlock()
	if prev == s {
		return nil
	}
	return prev
}

// MoveToTerminationZone removes uuid from the routable map and parks its
// session in the termination zone keyed by session id. Returns false if no
// session was bound.
func (r *Registry) MoveToTerminationZone(uuid string) bool {
	b := r.bucketFor(uuid)
	b.mu.Lock()
	s, ok := b.m[uuid]
	if ok {
		delete(b.m, uuid)
	}
	b.mu.Unlock()
	if !ok {
		return false
	}

	r.termMu.Lock()
	r.terminating[s.ID()] = s
	r.termMu.Unlock()
	return true
}

// FinalizeTermination drops a parked session after its final write
// completed (or was abandoned). Safe to call for unknown ids.
func (r *Registry) FinalizeTermination(sessionID string) {
	r.termMu.Lock()
	delete(r.terminating, sessionID)
	r.termMu.Unlock()
}

// RemoveSession deletes the binding for uuid. When expectedSessionID is
// non-empty the delete is guarded: a delayed logout from a superseded
// session must not remove the newer session that replaced it. Returns
// whether a binding was removed.
func (r *Registry) RemoveSession(uuid string, expectedSessionID string) bool {
	b := r.bucketFor(uuid)
	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.m[uuid]
	if !ok {
		return false
	}
	if expectedSessionID != "" && s.ID() != expectedSessionID {
		r.logger.Debug("Guarded remove skipped, session superseded",
			"uuid", uuid, "expected", expectedSessionID, "current", s.ID())
		return false
	}
	delete(b.m, uuid)
	return true
}

// Len counts routable sessions across all shards.
func (r *Registry) Len() int {
	n := 0
	for i := range r.buckets {
		b := &r.buckets[i]
		b.mu.RLock()
		n += len(b.m)
		b.mu.RUnlock()
	}
	return n
}

// Range visits every routable session until fn returns false.
func (r *Registry) Range(fn func(uuid string, s *Session) bool) {
	for i := range r.buckets {
		b := &r.buckets[i]
		b.mu.RLock()
		for uuid, s := range b.m {
			if !fn(uuid, s) {
				b.mu.RUnlock()
				return
			}
		}
		b.mu.RUnlock()
	}
}
