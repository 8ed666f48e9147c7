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

package client

import (
	"encoding/json"
	"net"
	"testing"

	"flychat/internal/protocol"
)

// scriptedServer answers each inbound frame through handle and can
// inject pushes before the reply.
type scriptedServer struct {
	ln     net.Listener
	handle func(env protocol.Envelope, conn net.Conn)
}

func startScripted(t *testing.T, handle func(env protocol.Envelope, conn net.Conn)) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			env, err := protocol.ReadMessage(conn, protocol.MaxBodySize)
			if err != nil {
				return
			}
			handle(env, conn)
		}
	}()
	return ln.Addr().String()
}

func reply(conn net.Conn, service protocol.ServiceID, v interface{}) {
	body, _ := json.Marshal(v)
	protocol.WriteMessage(conn, service, body)
}

func dialScripted(t *testing.T, addr string) *Client {
	t.Helper()
	c, err := Dial(addr)
	if err != nil {
		t.Fatalf("Failed to dial: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestLoginStoresIdentity(t *testing.T) {
	addr := startScripted(t, func(env protocol.Envelope, conn net.Conn) {
		if env.Service != protocol.ServiceLogin {
			return
		}
		reply(conn, protocol.ServiceLogin, protocol.LoginResponse{
			Error: protocol.CodeSuccess, UUID: "u1", SessionID: "sess-1", Token: "tok",
		})
	})

	c := dialScripted(t, addr)
	resp, err := c.LoginPassword("u1", "pw")
	if err != nil {
		t.Fatalf("Expected login success, got %v", err)
	}
	if resp.SessionID != "sess-1" || c.UUID() != "u1" || c.Token() != "tok" {
		t.Errorf("Expected identity stored from response, got uuid=%q token=%q", c.UUID(), c.Token())
	}
}

func TestLoginRefusedSurfacesCode(t *testing.T) {
	addr := startScripted(t, func(env protocol.Envelope, conn net.Conn) {
		reply(conn, protocol.ServiceLogin, protocol.LoginResponse{Error: protocol.CodeInvalidCredentials})
	})

	c := dialScripted(t, addr)
	if _, err := c.LoginPassword("u1", "bad"); err == nil {
		t.Error("Expected error for refused login")
	}
	if c.UUID() != "" {
		t.Error("Expected no identity after refused login")
	}
}

func TestPushesParkedWhileWaitingForReply(t *testing.T) {
	addr := startScripted(t, func(env protocol.Envelope, conn net.Conn) {
		if env.Service != protocol.ServiceHeartbeat {
			return
		}
		// Push arrives before the reply; the call must skip past it.
		reply(conn, protocol.ServiceNotifyTextChatMsg, protocol.NotifyTextChatMsg{SrcUUID: "u9"})
		reply(conn, protocol.ServiceHeartbeat, protocol.StatusResponse{Error: protocol.CodeSuccess})
	})

	c := dialScripted(t, addr)
	if err := c.Heartbeat(); err != nil {
		t.Fatalf("Expected heartbeat success, got %v", err)
	}

	select {
	case n := <-c.Notifications():
		if n.Service != protocol.ServiceNotifyTextChatMsg {
			t.Errorf("Expected chat push, got %v", n.Service)
		}
	default:
		t.Error("Expected parked notification")
	}
}

func TestSendTextReturnsVerifiedIDs(t *testing.T) {
	addr := startScripted(t, func(env protocol.Envelope, conn net.Conn) {
		if env.Service != protocol.ServiceTextChatMsg {
			return
		}
		var req protocol.TextChatMsgRequest
		json.Unmarshal(env.Body, &req)
		verified := make([]protocol.VerifiedMsg, len(req.Msgs))
		for i, m := range req.Msgs {
			verified[i] = protocol.VerifiedMsg{MsgID: m.MsgID, VerifiedID: "v-" + m.MsgID}
		}
		reply(conn, protocol.ServiceTextChatMsg, protocol.TextChatMsgResponse{
			Error: protocol.CodeSuccess, Verified: verified,
		})
	})

	c := dialScripted(t, addr)
	resp, err := c.SendText("u2", []protocol.TextMsgUnit{{MsgID: "m1", Content: "hi"}})
	if err != nil {
		t.Fatalf("Expected send success, got %v", err)
	}
	if len(resp.Verified) != 1 || resp.Verified[0].VerifiedID != "v-m1" {
		t.Errorf("Expected verified id v-m1, got %+v", resp.Verified)
	}
}
