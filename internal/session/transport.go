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
	"net"
	"time"

	"flychat/internal/protocol"
)

// Transport abstracts the byte pipe under a Session so the framed TCP path
// and the WebSocket gateway share one session implementation. A Transport
// is owned by exactly one Session; ReadEnvelope is called only from the
// session's read loop and WriteEnvelope only from its writer goroutine.
type Transport interface {
	// ReadEnvelope blocks until one complete envelope arrives.
	// Framing faults are fatal: the caller tears the session down.
	ReadEnvelope() (protocol.Envelope, error)

	// WriteEnvelope frames and writes one envelope.
	WriteEnvelope(service protocol.ServiceID, body []byte) error

	// SetReadDeadline bounds the next ReadEnvelope.
	SetReadDeadline(t time.Time) error

	// RemoteAddr reports the peer address for logging.
	RemoteAddr() net.Addr

	// Close tears down the underlying connection.
	Close() error
}

// tcpTransport speaks the framed binary protocol over a net.Conn. Reads go
// through an incremental Decoder: each Read may surface a fragment, a whole
// frame, or several frames, and the decoder hands back envelopes in order.
type tcpTransport struct {
	conn    net.Conn
	dec     *protocol.Decoder
	pending []protocol.Envelope
	rbuf    []byte
}

// NewTCPTransport wraps conn with the framed codec. maxBody selects the
// chat or resources body ceiling.
func NewTCPTransport(conn net.Conn, maxBody int) Transport {
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		// Chat traffic is small and latency-sensitive.
		tcpConn.SetNoDelay(true)
		tcpConn.SetKeepAlive(true)
		tcpConn.SetKeepAlivePeriod(30 * time.Second)
	}
	return &tcpTransport{
		conn: conn,
		dec:  protocol.NewDecoder(maxBody),
		rbuf: make([]byte, 4096),
	}
}

func (t *tcpTransport) ReadEnvelope() (protocol.Envelope, error) {
	for len(t.pending) == 0 {
		n, err := t.conn.Read(t.rbuf)
		if n > 0 {
			envs, ferr := t.dec.Feed(t.rbuf[:n])
			t.pending = append(t.pending, envs...)
			if ferr != nil {
				// Frames decoded before the fault are already lost causes;
				// the stream is desynchronized and must be dropped.
				return protocol.Envelope{}, ferr
			}
		}
		if err != nil {
			return protocol.Envelope{}, err
		}
	}
	env := t.pending[0]
	t.pending = t.pending[1:]
	return env, nil
}

func (t *tcpTransport) WriteEnvelope(service protocol.ServiceID, body []byte) error {
	return protocol.WriteMessage(t.conn, service, body)
}

func (t *tcpTransport) SetReadDeadline(dl time.Time) error {
	return t.conn.SetReadDeadline(dl)
}

func (t *tcpTransport) RemoteAddr() net.Addr { return t.conn.RemoteAddr() }

func (t *tcpTransport) Close() error { return t.conn.Close() }
