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
Package server runs the client-facing front ends of a chatting server.

CONNECTION LIFECYCLE

A single accept loop hands each connection to its own goroutine. The
handler wraps the connection in a framed transport, creates a session
and pumps envelopes into the logic engine until the client disconnects,
the idle deadline fires or the session is terminated from elsewhere
(kick, logout). Teardown is unconditional and idempotent: registry
removal is guarded by session id, the Redis route is cleared only if
this session still owns it, and the connection counter is decremented
only for sessions that completed a login.

The same session loop serves the TCP listener and the WebSocket
gateway; only the transport differs.
*/
package server

import (
	"context"
	"encoding/json"
	"net"
	"sync"
	"time"

	"flychat/internal/logging"
	"flychat/internal/logic"
	"flychat/internal/metrics"
	"flychat/internal/protocol"
	"flychat/internal/session"
)

const teardownTimeout = 3 * time.Second

// Committer is the slice of the logic engine the front end needs.
type Committer interface {
	Commit(sess *session.Session, env protocol.Envelope) error
}

// Server is the chatting server's TCP front end.
type Server struct {
	addr     string
	idle     time.Duration
	registry *session.Registry
	engine   Committer
	dir      logic.Directory
	logger   *logging.Logger

	ln       net.Listener
	stopCh   chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// New creates the front end. idle bounds how long a connection may sit
// without traffic before it is dropped.
func New(addr string, idle time.Duration, registry *session.Registry, engine Committer, dir logic.Directory) *Server {
	return &Server{
		addr:     addr,
		idle:     idle,
		registry: registry,
		engine:   engine,
		dir:      dir,
		logger:   logging.NewLogger("server"),
		stopCh:   make(chan struct{}),
	}
}

// Start binds the listener and launches the accept loop.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.ln = ln
	s.logger.Info("Chat front end listening", "addr", ln.Addr().String())

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

// Addr reports the bound address, useful when addr had port 0.
func (s *Server) Addr() string {
	if s.ln == nil {
		return s.addr
	}
	return s.ln.Addr().String()
}

// Stop closes the listener and waits for connection handlers to exit.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		if s.ln != nil {
			s.ln.Close()
		}
	})
	s.wg.Wait()
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			select {
			case <-s.stopCh:
				return
			default:
				s.logger.Error("Accept error", "error", err)
				continue
			}
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(conn)
		}()
	}
}

func (s *Server) handleConn(conn net.Conn) {
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		tcpConn.SetNoDelay(true)
		tcpConn.SetKeepAlive(true)
		tcpConn.SetKeepAlivePeriod(30 * time.Second)
	}
	s.RunSession(session.NewTCPTransport(conn, protocol.MaxBodySize))
}

// RunSession drives one client session over tr until it ends. Exported
// so the WebSocket gateway can feed its upgraded connections through
// the same loop.
func (s *Server) RunSession(tr session.Transport) {
	sess := session.New(tr, s.logger)
	metrics.SessionsActive.Inc()
	metrics.SessionsTotal.Inc()
	s.logger.Info("Session opened", "session_id", sess.ID(), "remote", tr.RemoteAddr().String())

	defer s.teardown(sess)

	for {
		select {
		case <-s.stopCh:
			return
		case <-sess.Done():
			return
		default:
		}

		env, err := sess.ReadEnvelope(s.idle)
		if err != nil {
			s.logger.Debug("Session read ended", "session_id", sess.ID(), "error", err)
			return
		}

		if err := s.engine.Commit(sess, env); err != nil {
			// Queue saturated. Tell the client instead of silently
			// eating the request.
			body, _ := json.Marshal(protocol.StatusResponse{Error: protocol.CodeNetwork})
			sess.SendMessage(env.Service, body)
		}
	}
}

// teardown releases everything the session may still hold. Safe to run
// for sessions in any state, including ones already kicked.
func (s *Server) teardown(sess *session.Session) {
	ctx, cancel := context.WithTimeout(context.Background(), teardownTimeout)
	defer cancel()

	uuid := sess.UUID()
	sess.Terminate()

	if uuid != "" {
		s.registry.RemoveSession(uuid, sess.ID())
		if cleared, err := s.dir.ClearRouteIf(ctx, uuid, sess.ID()); err != nil {
			s.logger.Warn("Route clear failed", "uuid", uuid, "error", err)
		} else if cleared {
			s.logger.Debug("Route cleared", "uuid", uuid, "session_id", sess.ID())
		}
		if err := s.dir.DecrementConnections(ctx); err != nil {
			s.logger.Warn("Connection count decrement failed", "error", err)
		}
	}
	s.registry.FinalizeTermination(sess.ID())

	metrics.SessionsActive.Dec()
	s.logger.Info("Session closed", "session_id", sess.ID(), "uuid", uuid)
}
