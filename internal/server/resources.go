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

package server

import (
	"encoding/json"
	"net"
	"sync"
	"time"

	"flychat/internal/logging"
	"flychat/internal/protocol"
	"flychat/internal/session"
	"flychat/internal/transfer"
)

/*
RESOURCES FRONT END

The resources server speaks the same framed protocol as the chatting
server but with the larger chunk body ceiling, and it only understands
upload traffic. Chunks are handed to the transfer pool; acks come back
on the worker goroutine and are written through the session's ordered
send queue, so a client always sees acks in apply order.

The upload scope in each chunk is the session id issued by the chatting
server at login. It survives resource-server reconnects, which is what
lets a client resume an interrupted upload.
*/

// ResourcesServer is the file-transfer TCP front end.
type ResourcesServer struct {
	addr string
	idle time.Duration
	pool *transfer.Pool

	logger   *logging.Logger
	ln       net.Listener
	stopCh   chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewResources creates the front end over an already-started pool.
func NewResources(addr string, idle time.Duration, pool *transfer.Pool) *ResourcesServer {
	return &ResourcesServer{
		addr:   addr,
		idle:   idle,
		pool:   pool,
		logger: logging.NewLogger("resources"),
		stopCh: make(chan struct{}),
	}
}

// Start binds the listener and launches the accept loop.
func (s *ResourcesServer) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.ln = ln
	s.logger.Info("Resources front end listening", "addr", ln.Addr().String())

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

// Addr reports the bound address.
func (s *ResourcesServer) Addr() string {
	if s.ln == nil {
		return s.addr
	}
	return s.ln.Addr().String()
}

// Stop closes the listener and waits for handlers to exit.
func (s *ResourcesServer) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		if s.ln != nil {
			s.ln.Close()
		}
	})
	s.wg.Wait()
}

func (s *ResourcesServer) acceptLoop() {
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

func (s *ResourcesServer) handleConn(conn net.Conn) {
	tr := session.NewTCPTransport(conn, protocol.MaxChunkBodySize)
	sess := session.New(tr, s.logger)
	defer sess.Terminate()

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
			s.logger.Debug("Upload connection ended", "session_id", sess.ID(), "error", err)
			return
		}
		if env.Service != protocol.ServiceFileUploadChunk {
			s.logger.Warn("Unexpected service on resources path",
				"service", env.Service.String(), "remote", tr.RemoteAddr().String())
			continue
		}

		var req protocol.UploadChunkRequest
		if err := json.Unmarshal(env.Body, &req); err != nil {
			body, _ := json.Marshal(protocol.UploadChunkAck{Error: protocol.CodeJSONParse})
			sess.SendMessage(protocol.ServiceFileUploadAck, body)
			continue
		}

		s.pool.Submit(req, func(ack protocol.UploadChunkAck) {
			body, err := json.Marshal(ack)
			if err != nil {
				return
			}
			if err := sess.SendMessage(protocol.ServiceFileUploadAck, body); err != nil {
				s.logger.Debug("Ack send failed", "session_id", sess.ID(), "error", err)
			}
		})
	}
}
