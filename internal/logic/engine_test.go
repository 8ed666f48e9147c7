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

package logic

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"flychat/internal/protocol"
	"flychat/internal/session"
)

func TestCommitDropsWhenQueueFull(t *testing.T) {
	h := newHarness(t)
	sess, _ := newTestSession(t)
	env := protocol.Envelope{Service: protocol.ServiceHeartbeat, Body: []byte(`{}`)}

	// Engine not started: nothing drains the queue.
	for i := 0; i < queueSize; i++ {
		if err := h.engine.Commit(sess, env); err != nil {
			t.Fatalf("Commit %d failed early: %v", i, err)
		}
	}
	if err := h.engine.Commit(sess, env); !errors.Is(err, ErrQueueBusy) {
		t.Fatalf("Commit over cap = %v, want queue busy", err)
	}
}

func TestDispatchPanicIsolation(t *testing.T) {
	h := newHarness(t)
	sess, _ := newTestSession(t)

	var handled atomic.Int32
	h.engine.handlers[protocol.ServiceHeartbeat] = func(ctx context.Context, s *session.Session, body []byte) {
		panic("poisoned request")
	}
	h.engine.handlers[protocol.ServiceSearchUsername] = func(ctx context.Context, s *session.Session, body []byte) {
		handled.Add(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.engine.Start(ctx)
	defer h.engine.Stop()

	if err := h.engine.Commit(sess, protocol.Envelope{Service: protocol.ServiceHeartbeat}); err != nil {
		t.Fatal(err)
	}
	if err := h.engine.Commit(sess, protocol.Envelope{Service: protocol.ServiceSearchUsername}); err != nil {
		t.Fatal(err)
	}

	waitFor(t, func() bool { return handled.Load() == 1 })
}

func TestDispatchUnknownServiceIgnored(t *testing.T) {
	h := newHarness(t)
	sess, tr := newTestSession(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.engine.Start(ctx)
	defer h.engine.Stop()

	if err := h.engine.Commit(sess, protocol.Envelope{Service: protocol.ServiceNotifyOffline}); err != nil {
		t.Fatal(err)
	}
	// A heartbeat after it proves the consumer survived.
	sess.BindUUID("u1")
	if err := h.engine.Commit(sess, protocol.Envelope{Service: protocol.ServiceHeartbeat, Body: []byte(`{}`)}); err != nil {
		t.Fatal(err)
	}
	lastReply[protocol.StatusResponse](t, tr, protocol.ServiceHeartbeat)
}

func TestTokenManagerRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 3600e9)
	tok, err := tm.Issue("u1")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	uuid, err := tm.Verify(tok)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if uuid != "u1" {
		t.Errorf("Verify() = %s, want u1", uuid)
	}

	other := NewTokenManager("different", 3600e9)
	if _, err := other.Verify(tok); err == nil {
		t.Error("Expected verification with the wrong secret to fail")
	}

	disabled := NewTokenManager("", 3600e9)
	if disabled.Enabled() {
		t.Error("Expected empty secret to disable tokens")
	}
	if _, err := disabled.Issue("u1"); err == nil {
		t.Error("Expected Issue to fail when disabled")
	}
}
