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
Package ws is the WebSocket gateway for clients that cannot open a raw
TCP connection.

FRAMING

Each WebSocket binary message carries exactly one protocol frame, the
same four-byte header and JSON body used on TCP. The gateway adapts an
upgraded connection to the session Transport interface and hands it to
the same session loop the TCP front end uses; the logic layer never
sees which transport a client arrived on.
*/
package ws

import (
	"bytes"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"flychat/internal/logging"
	"flychat/internal/protocol"
	"flychat/internal/session"
)

const (
	readBufferSize  = 4096
	writeBufferSize = 4096
	writeTimeout    = 10 * time.Second
)

// SessionRunner drives one client session over a transport until it
// ends. The chat front end provides it.
type SessionRunner interface {
	RunSession(tr session.Transport)
}

// Gateway upgrades HTTP requests at /ws and feeds them to the runner.
type Gateway struct {
	runner   SessionRunner
	upgrader websocket.Upgrader
	logger   *logging.Logger

	srv *http.Server
}

// NewGateway creates a gateway. allowedOrigins of nil or containing
// "*" admits every origin.
func NewGateway(runner SessionRunner, allowedOrigins []string) *Gateway {
	return &Gateway{
		runner: runner,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  readBufferSize,
			WriteBufferSize: writeBufferSize,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: logging.NewLogger("ws"),
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		if len(allowed) == 0 {
			return true
		}
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || origin == a || strings.HasSuffix(origin, a) {
				return true
			}
		}
		return false
	}
}

// Start serves the gateway on addr.
func (g *Gateway) Start(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", g.handleUpgrade)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	g.srv = &http.Server{Handler: mux}
	g.logger.Info("WebSocket gateway listening", "addr", ln.Addr().String())

	go func() {
		if err := g.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			g.logger.Error("Gateway serve failed", "error", err)
		}
	}()
	return nil
}

// Stop closes the HTTP server. In-flight sessions end when their
// connections drop.
func (g *Gateway) Stop() {
	if g.srv != nil {
		g.srv.Close()
	}
}

func (g *Gateway) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn("Upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	go g.runner.RunSession(newTransport(conn))
}

// wsTransport adapts one upgraded connection to session.Transport.
type wsTransport struct {
	conn *websocket.Conn

	// The session's writer goroutine and control frames can both write;
	// gorilla connections allow only one concurrent writer.
	writeMu sync.Mutex
}

func newTransport(conn *websocket.Conn) *wsTransport {
	return &wsTransport{conn: conn}
}

func (t *wsTransport) ReadEnvelope() (protocol.Envelope, error) {
	for {
		msgType, data, err := t.conn.ReadMessage()
		if err != nil {
			return protocol.Envelope{}, err
		}
		if msgType != websocket.BinaryMessage {
			// Text frames are not part of the protocol; skip them.
			continue
		}
		return protocol.ReadMessage(bytes.NewReader(data), protocol.MaxBodySize)
	}
}

func (t *wsTransport) WriteEnvelope(service protocol.ServiceID, body []byte) error {
	frame, err := protocol.Encode(service, body)
	if err != nil {
		return err
	}
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	t.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return t.conn.WriteMessage(websocket.BinaryMessage, frame)
}

func (t *wsTransport) SetReadDeadline(dl time.Time) error {
	return t.conn.SetReadDeadline(dl)
}

func (t *wsTransport) RemoteAddr() net.Addr { return t.conn.RemoteAddr() }

func (t *wsTransport) Close() error { return t.conn.Close() }
