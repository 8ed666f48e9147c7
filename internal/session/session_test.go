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
	"errors"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"flychat/internal/logging"
	"flychat/internal/protocol"
)

// memTransport collects written envelopes in order. Reads block forever.
type memTransport struct {
	mu     sync.Mutex
	wrote  []protocol.Envelope
	closed bool
}

func (t *memTransport) ReadEnvelope() (protocol.Envelope, error) {
	select {} // tests drive only the write side
}

func (t *memTransport) WriteEnvelope(service protocol.ServiceID, body []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return errors.New("transport closed")
	}
	t.wrote = append(t.wrote, protocol.Envelope{Service: service, Body: body})
	return nil
}

func (t *memTransport) SetReadDeadline(time.Time) error { return nil }
func (t *memTransport) RemoteAddr() net.Addr            { return &net.TCPAddr{} }

func (t *memTransport) Close() error {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
	return nil
}

func (t *memTransport) written() []protocol.Envelope {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]protocol.Envelope, len(t.wrote))
	copy(out, t.wrote)
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not reached within deadline")
}

func TestSendMessageOrdering(t *testing.T) {
	tr := &memTransport{}
	s := New(tr, logging.NewLogger("test"))
	defer s.Terminate()

	const n = 100
	for i := 0; i < n; i++ {
		body := []byte(fmt.Sprintf(`{"seq":%d}`, i))
		if err := s.SendMessage(protocol.ServiceNotifyTextChatMsg, body); err != nil {
			t.Fatalf("SendMessage(%d) error: %v", i, err)
		}
	}

	waitFor(t, func() bool { return len(tr.written()) == n })

	for i, env := range tr.written() {
		want := fmt.Sprintf(`{"seq":%d}`, i)
		if string(env.Body) != want {
			t.Fatalf("message %d out of order: got %s", i, env.Body)
		}
	}
}

func TestRequestLogoutDrainsFinalMessage(t *testing.T) {
	tr := &memTransport{}
	s := New(tr, logging.NewLogger("test"))

	finalFired := make(chan struct{})
	s.SetFinalSendCallback(func() { close(finalFired) })

	if err := s.SendMessage(protocol.ServiceTextChatMsg, []byte(`{"seq":0}`)); err != nil {
		t.Fatalf("SendMessage error: %v", err)
	}
	if !s.RequestLogout(protocol.ServiceLogout, []byte(`{"error":0}`)) {
		t.Fatal("RequestLogout returned false on alive session")
	}

	select {
	case <-finalFired:
	case <-time.After(2 * time.Second):
		t.Fatal("final-send callback never fired")
	}

	wrote := tr.written()
	if len(wrote) != 2 {
		t.Fatalf("got %d writes, want 2 (pending + final)", len(wrote))
	}
	if wrote[1].Service != protocol.ServiceLogout {
		t.Errorf("final write service = %v, want logout ack", wrote[1].Service)
	}
	if s.State() != StateTerminated {
		t.Errorf("state = %v, want terminated", s.State())
	}
}

func TestSendAfterLogoutShortCircuits(t *testing.T) {
	tr := &memTransport{}
	s := New(tr, logging.NewLogger("test"))

	fired := 0
	s.SetFinalSendCallback(func() { fired++ })

	s.RequestLogout(protocol.ServiceLogout, nil)
	waitFor(t, func() bool { return s.State() == StateTerminated })

	if err := s.SendMessage(protocol.ServiceHeartbeat, nil); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("SendMessage error = %v, want ErrSessionClosed", err)
	}
	if fired != 1 {
		t.Errorf("final-send callback fired %d times, want exactly 1", fired)
	}
}

func TestKickSendsOfflineNoticeAndTerminates(t *testing.T) {
	tr := &memTransport{}
	s := New(tr, logging.NewLogger("test"))

	if !s.Kick([]byte(`{"uuid":"u1","reason":"newer login"}`)) {
		t.Fatal("Kick returned false on alive session")
	}
	if s.Kick(nil) {
		t.Fatal("second Kick must be a no-op")
	}

	waitFor(t, func() bool { return s.State() == StateTerminated })

	wrote := tr.written()
	if len(wrote) != 1 || wrote[0].Service != protocol.ServiceNotifyOffline {
		t.Fatalf("expected exactly one offline notice, got %+v", wrote)
	}
}

func TestRegistryGuardedRemove(t *testing.T) {
	r := NewRegistry(logging.NewLogger("test"))
	old := New(&memTransport{}, logging.NewLogger("test"))
	newer := New(&memTransport{}, logging.NewLogger("test"))
	defer old.Terminate()
	defer newer.Terminate()

	r.CreateUserSession("u1", old)
	if prev := r.CreateUserSession("u1", newer); prev != old {
		t.Fatal("CreateUserSession did not return the displaced session")
	}

	// A delayed remove carrying the superseded session id must not delete
	// the newer binding.
	if r.RemoveSession("u1", old.ID()) {
		t.Fatal("guarded remove deleted a newer session")
	}
	if got, ok := r.GetSession("u1"); !ok || got != newer {
		t.Fatal("newer session lost after stale remove")
	}

	if !r.RemoveSession("u1", newer.ID()) {
		t.Fatal("guarded remove refused the matching session")
	}
	if _, ok := r.GetSession("u1"); ok {
		t.Fatal("session still present after matching remove")
	}
}

func TestRegistryTerminationZone(t *testing.T) {
	r := NewRegistry(logging.NewLogger("test"))
	s := New(&memTransport{}, logging.NewLogger("test"))
	defer s.Terminate()

	r.CreateUserSession("u1", s)
	if !r.MoveToTerminationZone("u1") {
		t.Fatal("MoveToTerminationZone returned false")
	}
	if r.MoveToTerminationZone("u1") {
		t.Fatal("second move must report no routable session")
	}
	if _, ok := r.GetSession("u1"); ok {
		t.Fatal("session still routable after move")
	}

	// Finalize is idempotent.
	r.FinalizeTermination(s.ID())
	r.FinalizeTermination(s.ID())
}
