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
Package client is a Go client for the FlyChat framed TCP protocol.

Requests are synchronous: each call writes one frame and blocks for the
matching reply. Server pushes (incoming messages, friend events, kick
notices) can arrive interleaved with replies; the client parks them on
a buffered channel exposed through Notifications. A Client is safe for
one caller at a time; it does not multiplex concurrent requests.
*/
package client

import (
	"encoding/json"
	"fmt"
	"net"
	"time"

	"flychat/internal/protocol"
)

const (
	defaultTimeout    = 10 * time.Second
	notificationDepth = 64
)

// Notification is one server push.
type Notification struct {
	Service protocol.ServiceID
	Body    []byte
}

// Client is one connection to a chatting server.
type Client struct {
	conn    net.Conn
	timeout time.Duration
	notify  chan Notification

	uuid      string
	sessionID string
	token     string
}

// Dial connects to a chatting server at addr.
func Dial(addr string) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, defaultTimeout)
	if err != nil {
		return nil, err
	}
	return &Client{
		conn:    conn,
		timeout: defaultTimeout,
		notify:  make(chan Notification, notificationDepth),
	}, nil
}

// Notifications exposes server pushes collected while waiting for
// replies. The channel is never closed; drain it between calls.
func (c *Client) Notifications() <-chan Notification {
	return c.notify
}

// UUID reports the authenticated uuid, empty before login.
func (c *Client) UUID() string { return c.uuid }

// SessionID reports the server-issued session id, empty before login.
// It is also the upload scope for the resources server.
func (c *Client) SessionID() string { return c.sessionID }

// Token reports the refreshed token issued at login, if any.
func (c *Client) Token() string { return c.token }

// Close drops the connection.
func (c *Client) Close() error { return c.conn.Close() }

// call writes one request and blocks until the reply for service
// arrives, parking pushes seen in between.
func (c *Client) call(service protocol.ServiceID, req, resp interface{}) error {
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}
	c.conn.SetWriteDeadline(time.Now().Add(c.timeout))
	if err := protocol.WriteMessage(c.conn, service, body); err != nil {
		return err
	}

	deadline := time.Now().Add(c.timeout)
	for {
		c.conn.SetReadDeadline(deadline)
		env, err := protocol.ReadMessage(c.conn, protocol.MaxBodySize)
		if err != nil {
			return err
		}
		if env.Service == service {
			return json.Unmarshal(env.Body, resp)
		}
		select {
		case c.notify <- Notification{Service: env.Service, Body: env.Body}:
		default:
			// Notification buffer full; the oldest pushes win.
		}
	}
}

// LoginPassword authenticates with uuid and password.
func (c *Client) LoginPassword(uuid, password string) (protocol.LoginResponse, error) {
	return c.login(protocol.LoginRequest{UUID: uuid, Password: password})
}

// LoginToken authenticates with a previously issued token.
func (c *Client) LoginToken(token string) (protocol.LoginResponse, error) {
	return c.login(protocol.LoginRequest{Token: token})
}

func (c *Client) login(req protocol.LoginRequest) (protocol.LoginResponse, error) {
	var resp protocol.LoginResponse
	if err := c.call(protocol.ServiceLogin, req, &resp); err != nil {
		return resp, err
	}
	if resp.Error != protocol.CodeSuccess {
		return resp, fmt.Errorf("login refused: code %d", resp.Error)
	}
	c.uuid = resp.UUID
	c.sessionID = resp.SessionID
	c.token = resp.Token
	return resp, nil
}

// Heartbeat keeps the session alive across idle periods.
func (c *Client) Heartbeat() error {
	var resp protocol.StatusResponse
	if err := c.call(protocol.ServiceHeartbeat, protocol.HeartbeatRequest{UUID: c.uuid}, &resp); err != nil {
		return err
	}
	if resp.Error != protocol.CodeSuccess {
		return fmt.Errorf("heartbeat refused: code %d", resp.Error)
	}
	return nil
}

// Search looks a user up by exact username.
func (c *Client) Search(username string) (protocol.UserNameCard, error) {
	var resp protocol.SearchResponse
	if err := c.call(protocol.ServiceSearchUsername, protocol.SearchRequest{Username: username}, &resp); err != nil {
		return protocol.UserNameCard{}, err
	}
	if resp.Error != protocol.CodeSuccess {
		return protocol.UserNameCard{}, fmt.Errorf("search failed: code %d", resp.Error)
	}
	return resp.NameCard, nil
}

// SendText delivers a batch of messages to dstUUID and returns the
// verified server ids.
func (c *Client) SendText(dstUUID string, msgs []protocol.TextMsgUnit) (protocol.TextChatMsgResponse, error) {
	req := protocol.TextChatMsgRequest{SrcUUID: c.uuid, DstUUID: dstUUID, Msgs: msgs}
	var resp protocol.TextChatMsgResponse
	if err := c.call(protocol.ServiceTextChatMsg, req, &resp); err != nil {
		return resp, err
	}
	if resp.Error != protocol.CodeSuccess {
		return resp, fmt.Errorf("send failed: code %d", resp.Error)
	}
	return resp, nil
}

// Threads pages through the caller's conversation list.
func (c *Client) Threads(nextThreadID string, limit int) (protocol.ChatThreadsResponse, error) {
	req := protocol.ChatThreadsRequest{UUID: c.uuid, NextThreadID: nextThreadID, Limit: limit}
	var resp protocol.ChatThreadsResponse
	if err := c.call(protocol.ServicePullChatThreads, req, &resp); err != nil {
		return resp, err
	}
	if resp.Error != protocol.CodeSuccess {
		return resp, fmt.Errorf("thread pull failed: code %d", resp.Error)
	}
	return resp, nil
}

// Logout asks for a graceful session end. The connection is unusable
// afterwards.
func (c *Client) Logout() error {
	var resp protocol.StatusResponse
	err := c.call(protocol.ServiceLogout, protocol.LogoutRequest{UUID: c.uuid}, &resp)
	if err != nil {
		return err
	}
	if resp.Error != protocol.CodeSuccess {
		return fmt.Errorf("logout refused: code %d", resp.Error)
	}
	return nil
}
