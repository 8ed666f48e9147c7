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
Package session owns one client connection per Session and the concurrent
registry mapping authenticated uuids to live sessions.

SESSION LIFECYCLE:
==================

	Alive ──RequestLogout──> LogoutPending ──drain──> Terminated
	  │
	  └────────Kick────────> Kicked ─────────drain──> Terminated

Only Alive sessions accept new outbound writes. LogoutPending and Kicked
sessions short-circuit further SendMessage calls by firing the registered
final-send callback immediately, so teardown never waits on a write that
will not happen.

OUTBOUND ORDERING:
==================
Each session runs a single writer goroutine draining a bounded queue. That
gives strict per-session ordering and at most one write in flight on the
socket. SendMessage never blocks the caller: a full queue drops the message
with an error instead of stalling a handler.

OWNERSHIP:
==========
The connection's I/O goroutine is the session's single authoritative owner.
The registry holds a non-owning reference resolved by uuid; teardown order
is explicit through the termination zone plus the final-send callback.
*/
package session

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"flychat/internal/logging"
	"flychat/internal/protocol"
)

// State is the session lifecycle state.
type State int32

const (
	// StateAlive accepts reads and writes.
	StateAlive State = iota
	// StateLogoutPending drains the final message, then closes.
	StateLogoutPending
	// StateKicked was force-terminated by a newer login; drains its offline
	// notice, then closes.
	StateKicked
	// StateTerminated has a closed socket and is unreachable.
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateAlive:
		return "alive"
	case StateLogoutPending:
		return "logout_pending"
	case StateKicked:
		return "kicked"
	case StateTerminated:
		return "terminated"
	default:
		return "invalid"
	}
}

// Session errors.
var (
	// ErrSessionClosed rejects writes to a non-Alive session.
	ErrSessionClosed = errors.New("session is not alive")

	// ErrSendQueueFull rejects writes when the outbound queue is saturated.
	ErrSendQueueFull = errors.New("session send queue full")
)

// outboundQueueSize bounds per-session pending writes. A slow reader hits
// this ceiling long before it can exhaust server memory.
const outboundQueueSize = 256

type outbound struct {
	service protocol.ServiceID
	body    []byte
	final   bool
}

// Session owns one client connection: identity, lifecycle state, and the
// ordered outbound queue.
type Session struct {
	id     string
	tr     Transport
	logger *logging.Logger

	state atomic.Int32

	mu   sync.Mutex
	uuid string

	outq chan outbound
	stop chan struct{}
	done chan struct{}

	finalOnce sync.Once
	finalMu   sync.Mutex
	onFinal   func()

	closeOnce sync.Once
}

// New creates a session over tr and starts its writer goroutine. The
// session id is unique per connection and disambiguates rapid reconnects
// of the same uuid.
func New(tr Transport, logger *logging.Logger) *Session {
	s := &Session{
		id:     uuid.NewString(),
		tr:     tr,
		logger: logger,
		outq:   make(chan outbound, outboundQueueSize),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go s.writeLoop()
	return s
}

// ID returns the per-connection session id.
func (s *Session) ID() string { return s.id }

// UUID returns the bound user identity, empty before login.
func (s *Session) UUID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uuid
}

// BindUUID records the authenticated identity after a successful login.
func (s *Session) BindUUID(uuid string) {
	s.mu.Lock()
	s.uuid = uuid
	s.mu.Unlock()
}

// State returns the current lifecycle state.
func (s *Session) State() State { return State(s.state.Load()) }

// Transport exposes the underlying transport to the read loop only.
func (s *Session) Transport() Transport { return s.tr }

// SetFinalSendCallback registers the hook fired exactly once when the last
// outbound message has drained (or will never be sent). Registry cleanup
// keys off this to close the socket without racing an in-flight write.
func (s *Session) SetFinalSendCallback(fn func()) {
	s.finalMu.Lock()
	s.onFinal = fn
	s.finalMu.Unlock()
}

func (s *Session) fireFinalSend() {
	s.finalOnce.Do(func() {
		s.finalMu.Lock()
		fn := s.onFinal
		s.finalMu.Unlock()
		if fn != nil {
			fn()
		}
	})
}

// SendMessage enqueues an envelope for ordered delivery. Non-Alive sessions
// short-circuit: the final-send callback fires and the write is refused.
// A saturated queue drops the message rather than blocking the caller.
func (s *Session) SendMessage(service protocol.ServiceID, body []byte) error {
	if s.State() != StateAlive {
		s.fireFinalSend()
		return ErrSessionClosed
	}
	select {
	case s.outq <- outbound{service: service, body: body}:
		return nil
	default:
		s.logger.Warn("Send queue full, dropping message",
			"session_id", s.id, "service", service.String())
		return ErrSendQueueFull
	}
}

// RequestLogout transitions Alive → LogoutPending and enqueues the final
// envelope. After it drains, the writer fires the final-send callback and
// closes the transport. Returns false if the session was not Alive.
func (s *Session) RequestLogout(service protocol.ServiceID, body []byte) bool {
	if !s.state.CompareAndSwap(int32(StateAlive), int32(StateLogoutPending)) {
		s.fireFinalSend()
		return false
	}
	s.enqueueFinal(outbound{service: service, body: body, final: true})
	return true
}

// Kick force-terminates the session from Alive, draining an offline notice
// first. Used when a newer login for the same uuid wins, locally or via a
// remote ForceTerminate call.
func (s *Session) Kick(body []byte) bool {
	if !s.state.CompareAndSwap(int32(StateAlive), int32(StateKicked)) {
		return false
	}
	s.enqueueFinal(outbound{service: protocol.ServiceNotifyOffline, body: body, final: true})
	return true
}

func (s *Session) enqueueFinal(ob outbound) {
	select {
	case s.outq <- ob:
	default:
		// Queue saturated: the final message loses to backpressure, but
		// teardown must still complete.
		s.logger.Warn("Send queue full, skipping final message", "session_id", s.id)
		s.shutdown()
	}
}

// Terminate closes the session immediately without draining. Used for
// protocol faults and read errors, where the stream is already dead.
func (s *Session) Terminate() {
	s.state.Store(int32(StateTerminated))
	s.shutdown()
}

// shutdown stops the writer and closes the transport exactly once.
func (s *Session) shutdown() {
	s.closeOnce.Do(func() {
		close(s.stop)
		s.tr.Close()
	})
	s.fireFinalSend()
}

// Done is closed once the writer goroutine has exited.
func (s *Session) Done() <-chan struct{} { return s.done }

func (s *Session) writeLoop() {
	defer close(s.done)
	for {
		select {
		case <-s.stop:
			s.state.Store(int32(StateTerminated))
			return
		case ob := <-s.outq:
			if err := s.tr.WriteEnvelope(ob.service, ob.body); err != nil {
				s.logger.Debug("Write failed", "session_id", s.id, "error", err)
				s.state.Store(int32(StateTerminated))
				s.shutdown()
				return
			}
			if ob.final {
				s.state.Store(int32(StateTerminated))
				s.shutdown()
				return
			}
		}
	}
}

// ReadEnvelope reads the next inbound envelope with an idle deadline.
func (s *Session) ReadEnvelope(idle time.Duration) (protocol.Envelope, error) {
	if idle > 0 {
		s.tr.SetReadDeadline(time.Now().Add(idle))
	}
	return s.tr.ReadEnvelope()
}
