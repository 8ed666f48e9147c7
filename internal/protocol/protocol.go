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
Package protocol defines the FlyChat binary wire protocol.

PROTOCOL OVERVIEW:
==================
FlyChat clients speak a length-prefixed framed protocol over TCP. Every
frame is a fixed 4-byte header followed by a JSON body:

	+----------------+----------------+-------------------------+
	| Service (u16)  | Length (u16)   | JSON body (Length bytes) |
	+----------------+----------------+-------------------------+

HEADER FIELDS:
==============
- Service (2 bytes): Service identifier, big-endian (see ServiceID constants)
- Length (2 bytes): Body length in bytes, big-endian

The framing is binary; the body is UTF-8 JSON. A service id at or above
ServiceUnknown, or a body length above the negotiated ceiling, signals a
desynchronized stream and MUST terminate the connection. These are hard
faults, never recoverable errors.

BODY CEILINGS:
==============
The chatting servers cap bodies at MaxBodySize (2048 bytes). The resources
server carries base64 file chunks and uses MaxChunkBodySize (8 KiB) instead.

DECODING:
=========
Two entry points are provided:

  - ReadMessage: blocking read of one whole frame from an io.Reader
    (header, then exactly Length body bytes).
  - Decoder: an incremental state machine fed arbitrary byte slices,
    producing zero or more complete envelopes per feed. This is what the
    connection read loop uses, since TCP reads deliver fragments.

Both apply identical validation; a Decoder error poisons the Decoder and the
connection must be torn down.
*/
package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Framing constants.
const (
	// HeaderSize is the fixed size of the frame header in bytes.
	HeaderSize = 4

	// MaxBodySize caps chat-protocol bodies. Application payloads are small
	// JSON documents; anything larger indicates a corrupt or hostile stream.
	MaxBodySize = 2048

	// MaxChunkBodySize caps resources-server bodies. File chunks arrive
	// base64-encoded, so the ceiling is wider than the chat path's.
	MaxChunkBodySize = 8 * 1024
)

// ServiceID identifies the operation a frame carries.
// Values at or above ServiceUnknown are protocol violations.
type ServiceID uint16

const (
	// ServiceLogin authenticates a uuid on this server and binds the
	// presence record cluster-wide.
	ServiceLogin ServiceID = iota + 1

	// ServiceLogout releases the session's presence binding and requests a
	// deferred close after the final acknowledgement drains.
	ServiceLogout

	// ServiceHeartbeat is a trivial liveness ack.
	ServiceHeartbeat

	// ServiceSearchUsername looks a user up by username.
	ServiceSearchUsername

	// ServiceFriendRequest sends a friend request to another uuid.
	ServiceFriendRequest

	// ServiceFriendConfirm confirms a pending friend request.
	ServiceFriendConfirm

	// ServiceTextChatMsg delivers a batch of text messages to a peer.
	ServiceTextChatMsg

	// ServicePullChatThreads pages through the caller's chat threads.
	ServicePullChatThreads

	// Server-push notifications (never sent by clients).

	// ServiceNotifyOffline tells a session it has been evicted by a newer
	// login elsewhere.
	ServiceNotifyOffline

	// ServiceNotifyFriendRequest pushes an incoming friend request.
	ServiceNotifyFriendRequest

	// ServiceNotifyFriendConfirm pushes a friend-request confirmation.
	ServiceNotifyFriendConfirm

	// ServiceNotifyTextChatMsg pushes incoming text messages.
	ServiceNotifyTextChatMsg

	// Resources-server operations.

	// ServiceFileUploadChunk carries one base64 chunk of an upload.
	ServiceFileUploadChunk

	// ServiceFileUploadAck acknowledges an applied chunk.
	ServiceFileUploadAck

	// ServiceUnknown is the sentinel upper bound. Any id at or above this
	// value rejects the connection.
	ServiceUnknown
)

// String returns a readable name for logging.
func (s ServiceID) String() string {
	switch s {
	case ServiceLogin:
		return "login"
	case ServiceLogout:
		return "logout"
	case ServiceHeartbeat:
		return "heartbeat"
	case ServiceSearchUsername:
		return "search_username"
	case ServiceFriendRequest:
		return "friend_request"
	case ServiceFriendConfirm:
		return "friend_confirm"
	case ServiceTextChatMsg:
		return "text_chat_msg"
	case ServicePullChatThreads:
		return "pull_chat_threads"
	case ServiceNotifyOffline:
		return "notify_offline"
	case ServiceNotifyFriendRequest:
		return "notify_friend_request"
	case ServiceNotifyFriendConfirm:
		return "notify_friend_confirm"
	case ServiceNotifyTextChatMsg:
		return "notify_text_chat_msg"
	case ServiceFileUploadChunk:
		return "file_upload_chunk"
	case ServiceFileUploadAck:
		return "file_upload_ack"
	default:
		return fmt.Sprintf("service(%d)", uint16(s))
	}
}

// Envelope is one complete framed message.
type Envelope struct {
	Service ServiceID
	Body    []byte
}

// Protocol errors. All of them are fatal to the connection.
var (
	// ErrUnknownService indicates a service id at or above ServiceUnknown.
	ErrUnknownService = errors.New("unknown service id")

	// ErrBodyTooLarge indicates a declared body length above the ceiling.
	ErrBodyTooLarge = errors.New("body length exceeds maximum")

	// ErrDecoderPoisoned indicates Feed was called after a framing fault.
	ErrDecoderPoisoned = errors.New("decoder poisoned by earlier framing fault")
)

// Header is the decoded 4-byte frame header.
type Header struct {
	Service ServiceID
	Length  uint16
}

func validateHeader(h Header, maxBody int) error {
	if h.Service >= ServiceUnknown {
		return fmt.Errorf("%w: %d", ErrUnknownService, uint16(h.Service))
	}
	if int(h.Length) > maxBody {
		return fmt.Errorf("%w: %d > %d", ErrBodyTooLarge, h.Length, maxBody)
	}
	return nil
}

// ReadHeader reads and validates a frame header.
// maxBody is the body ceiling for this connection's path.
func ReadHeader(r io.Reader, maxBody int) (Header, error) {
	var buf [HeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Header{}, err
	}
	h := Header{
		Service: ServiceID(binary.BigEndian.Uint16(buf[0:2])),
		Length:  binary.BigEndian.Uint16(buf[2:4]),
	}
	if err := validateHeader(h, maxBody); err != nil {
		return Header{}, err
	}
	return h, nil
}

// ReadMessage reads one complete envelope from the reader.
func ReadMessage(r io.Reader, maxBody int) (Envelope, error) {
	h, err := ReadHeader(r, maxBody)
	if err != nil {
		return Envelope{}, err
	}
	env := Envelope{Service: h.Service}
	if h.Length > 0 {
		env.Body = make([]byte, h.Length)
		if _, err := io.ReadFull(r, env.Body); err != nil {
			return Envelope{}, err
		}
	}
	return env, nil
}

// Encode serializes an envelope into a single byte slice, header first.
// The length field is always computed from the actual body.
func Encode(service ServiceID, body []byte) ([]byte, error) {
	if len(body) > int(^uint16(0)) {
		return nil, fmt.Errorf("%w: %d", ErrBodyTooLarge, len(body))
	}
	out := make([]byte, HeaderSize+len(body))
	binary.BigEndian.PutUint16(out[0:2], uint16(service))
	binary.BigEndian.PutUint16(out[2:4], uint16(len(body)))
	copy(out[HeaderSize:], body)
	return out, nil
}

// WriteMessage frames and writes one envelope. The header and body go out
// in a single Write so a concurrent writer cannot interleave between them.
func WriteMessage(w io.Writer, service ServiceID, body []byte) error {
	frame, err := Encode(service, body)
	if err != nil {
		return err
	}
	_, err = w.Write(frame)
	return err
}

// Decoder is an incremental frame decoder. It accumulates bytes across
// Feed calls and emits complete envelopes in arrival order. A Decoder is
// owned by a single connection and is not safe for concurrent use.
type Decoder struct {
	maxBody int
	buf     []byte
	failed  bool
}

// NewDecoder returns a Decoder enforcing the given body ceiling.
func NewDecoder(maxBody int) *Decoder {
	return &Decoder{maxBody: maxBody}
}

// Feed appends p to the internal buffer and returns every complete envelope
// now available. Partial headers and partial bodies are retained for the
// next call. Any framing fault poisons the Decoder: the caller must close
// the connection, and further Feed calls return ErrDecoderPoisoned.
func (d *Decoder) Feed(p []byte) ([]Envelope, error) {
	if d.failed {
		return nil, ErrDecoderPoisoned
	}
	d.buf = append(d.buf, p...)

	var out []Envelope
	for {
		if len(d.buf) < HeaderSize {
			return out, nil
		}
		h := Header{
			Service: ServiceID(binary.BigEndian.Uint16(d.buf[0:2])),
			Length:  binary.BigEndian.Uint16(d.buf[2:4]),
		}
		if err := validateHeader(h, d.maxBody); err != nil {
			d.failed = true
			return out, err
		}
		total := HeaderSize + int(h.Length)
		if len(d.buf) < total {
			return out, nil
		}
		env := Envelope{Service: h.Service}
		if h.Length > 0 {
			env.Body = make([]byte, h.Length)
			copy(env.Body, d.buf[HeaderSize:total])
		}
		d.buf = d.buf[total:]
		out = append(out, env)
	}
}

// Buffered returns the number of bytes waiting for a complete frame.
func (d *Decoder) Buffered() int { return len(d.buf) }
