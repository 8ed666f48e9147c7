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
	"encoding/json"

	chatv1 "flychat/api/proto/chat/v1"
	"flychat/internal/metrics"
	"flychat/internal/protocol"
	"flychat/internal/session"
)

// defaultThreadPageSize caps a thread listing page.
const defaultThreadPageSize = 20

// reply marshals v and queues it on the session's send queue. Send
// failures mean the session is going away; the teardown path owns the
// cleanup, so the error is only logged.
func (e *Engine) reply(sess *session.Session, service protocol.ServiceID, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		e.logger.Error("Reply marshal failed", "service", service.String(), "error", err)
		return
	}
	if err := sess.SendMessage(service, body); err != nil {
		e.logger.Debug("Reply dropped", "service", service.String(), "session", sess.ID(), "error", err)
	}
}

// requireAuth returns the uuid bound to the session, or answers the
// caller with CodeNotAuthenticated.
func (e *Engine) requireAuth(sess *session.Session, service protocol.ServiceID) (string, bool) {
	uuid := sess.UUID()
	if uuid == "" {
		e.reply(sess, service, protocol.StatusResponse{Error: protocol.CodeNotAuthenticated})
		return "", false
	}
	return uuid, true
}

// profile reads a name card through the cache.
func (e *Engine) profile(ctx context.Context, uuid string) (Profile, error) {
	if e.cache != nil {
		if p, ok := e.cache.Get(ctx, uuid); ok {
			return p, nil
		}
	}
	p, err := e.repo.ProfileByUUID(ctx, uuid)
	if err != nil {
		return Profile{}, err
	}
	if e.cache != nil {
		e.cache.Put(ctx, p)
	}
	return p, nil
}

// handleLogin authenticates the connection and takes over the user's
// single live session.
//
// The takeover runs under the user's distributed lock. When another
// server still holds the session, a failed remote kick aborts the login:
// claiming the route while the old session might still be alive would
// split the user across two servers.
func (e *Engine) handleLogin(ctx context.Context, sess *session.Session, body []byte) {
	var req protocol.LoginRequest
	if err := json.Unmarshal(body, &req); err != nil {
		e.reply(sess, protocol.ServiceLogin, protocol.LoginResponse{Error: protocol.CodeJSONParse})
		return
	}

	// A bound session repeating the login would kick itself through the
	// takeover path and double-count its own connection.
	if bound := sess.UUID(); bound != "" {
		e.reply(sess, protocol.ServiceLogin, protocol.LoginResponse{Error: protocol.CodeAlreadyLoggedIn, UUID: bound})
		return
	}

	remote := sess.Transport().RemoteAddr().String()

	uuid, prof, code := e.authenticate(ctx, req)
	if code != protocol.CodeSuccess {
		e.security.LogAuthFailure(req.UUID, code.String(), remote)
		metrics.AuthFailures.WithLabelValues(code.String()).Inc()
		e.reply(sess, protocol.ServiceLogin, protocol.LoginResponse{Error: code})
		return
	}

	landErr := e.dir.WithUUIDLock(ctx, uuid, func(ctx context.Context) error {
		cur, err := e.dir.ServerFor(ctx, uuid)
		if err != nil {
			code = protocol.CodeRedis
			return err
		}

		switch {
		case cur == "":
			// First login, nothing to displace.
		case cur == e.dir.ServerName():
			e.kickLocal(uuid, "logged in elsewhere")
		default:
			if kc := e.peers.ForceTerminate(ctx, cur, uuid); kc != protocol.CodeSuccess {
				// The old session may still be alive on its server.
				code = protocol.CodeLoginInternal
				return errRemoteKickFailed
			}
		}

		if err := e.dir.BindRoute(ctx, uuid, sess.ID()); err != nil {
			code = protocol.CodeRedis
			return err
		}
		return nil
	})
	if landErr != nil {
		e.logger.Warn("Login takeover failed", "uuid", uuid, "error", landErr)
		if code == protocol.CodeSuccess {
			code = protocol.CodeLoginInternal
		}
		e.reply(sess, protocol.ServiceLogin, protocol.LoginResponse{Error: code})
		return
	}

	if err := e.dir.IncrementConnections(ctx); err != nil {
		e.logger.Warn("Connection counter increment failed", "error", err)
	}

	sess.BindUUID(uuid)
	if prev := e.registry.CreateUserSession(uuid, sess); prev != nil && prev.ID() != sess.ID() {
		// kickLocal already queued the offline notice; this only
		// guards against a session that raced past it.
		prev.Terminate()
	}

	resp := protocol.LoginResponse{
		Error:     protocol.CodeSuccess,
		UUID:      uuid,
		SessionID: sess.ID(),
		NameCard:  prof.NameCard(),
	}
	if e.tokens != nil && e.tokens.Enabled() {
		if tok, err := e.tokens.Issue(uuid); err == nil {
			resp.Token = tok
		}
	}

	metrics.AuthSuccess.Inc()
	e.security.LogAuthSuccess(uuid, loginMethod(req), remote)
	e.sessions.LogLogin(uuid, sess.ID())
	e.reply(sess, protocol.ServiceLogin, resp)
}

// authenticate resolves the uuid and profile from a token or a password.
func (e *Engine) authenticate(ctx context.Context, req protocol.LoginRequest) (string, Profile, protocol.Code) {
	switch {
	case req.Token != "":
		if e.tokens == nil || !e.tokens.Enabled() {
			return "", Profile{}, protocol.CodeInvalidCredentials
		}
		uuid, err := e.tokens.Verify(req.Token)
		if err != nil {
			return "", Profile{}, protocol.CodeInvalidCredentials
		}
		if req.UUID != "" && req.UUID != uuid {
			return "", Profile{}, protocol.CodeInvalidCredentials
		}
		prof, err := e.profile(ctx, uuid)
		if err != nil {
			return "", Profile{}, protocol.CodeMySQL
		}
		return uuid, prof, protocol.CodeSuccess

	case req.Password != "" && req.UUID != "":
		prof, err := e.repo.Authenticate(ctx, req.UUID, req.Password)
		if err != nil {
			return "", Profile{}, protocol.CodeInvalidCredentials
		}
		if e.cache != nil {
			e.cache.Put(ctx, prof)
		}
		return req.UUID, prof, protocol.CodeSuccess

	default:
		return "", Profile{}, protocol.CodeInvalidCredentials
	}
}

func loginMethod(req protocol.LoginRequest) string {
	if req.Token != "" {
		return "token"
	}
	return "password"
}

// kickLocal evicts uuid's session on this server, if any.
func (e *Engine) kickLocal(uuid, reason string) {
	prev, ok := e.registry.GetSession(uuid)
	if !ok {
		return
	}
	if !e.registry.MoveToTerminationZone(uuid) {
		return
	}
	body, _ := json.Marshal(protocol.NotifyOffline{UUID: uuid, Reason: reason})
	if !prev.Kick(body) {
		prev.Terminate()
	}
	metrics.SessionsKicked.Inc()
	e.sessions.LogKick(uuid, prev.ID(), e.dir.ServerName())
}

// handleLogout releases the route and queues the final acknowledgement
// behind everything already in the send queue. The connection counter is
// left alone here: teardown decrements it exactly once per bound session,
// whether the connection ended in a logout or a plain drop.
func (e *Engine) handleLogout(ctx context.Context, sess *session.Session, body []byte) {
	uuid, ok := e.requireAuth(sess, protocol.ServiceLogout)
	if !ok {
		return
	}

	if _, err := e.dir.ClearRouteIf(ctx, uuid, sess.ID()); err != nil {
		e.logger.Warn("Route clear failed on logout", "uuid", uuid, "error", err)
	}
	e.registry.RemoveSession(uuid, sess.ID())

	ack, _ := json.Marshal(protocol.StatusResponse{Error: protocol.CodeSuccess})
	sess.RequestLogout(protocol.ServiceLogout, ack)
	e.sessions.LogLogout(uuid, sess.ID())
}

// handleHeartbeat answers so the client knows the session is live. The
// read loop already pushed the idle deadline forward.
func (e *Engine) handleHeartbeat(ctx context.Context, sess *session.Session, body []byte) {
	if _, ok := e.requireAuth(sess, protocol.ServiceHeartbeat); !ok {
		return
	}
	e.reply(sess, protocol.ServiceHeartbeat, protocol.StatusResponse{Error: protocol.CodeSuccess})
}

func (e *Engine) handleSearchUsername(ctx context.Context, sess *session.Session, body []byte) {
	if _, ok := e.requireAuth(sess, protocol.ServiceSearchUsername); !ok {
		return
	}

	var req protocol.SearchRequest
	if err := json.Unmarshal(body, &req); err != nil {
		e.reply(sess, protocol.ServiceSearchUsername, protocol.SearchResponse{Error: protocol.CodeJSONParse})
		return
	}

	prof, err := e.repo.SearchByUsername(ctx, req.Username)
	if err != nil {
		e.reply(sess, protocol.ServiceSearchUsername, protocol.SearchResponse{Error: protocol.CodeUserNotFound})
		return
	}
	e.reply(sess, protocol.ServiceSearchUsername, protocol.SearchResponse{
		Error:    protocol.CodeSuccess,
		NameCard: prof.NameCard(),
	})
}

// handleFriendRequest persists the request, then notifies the target
// wherever it lives. An offline target just gets the row; it will see
// the request on next login.
func (e *Engine) handleFriendRequest(ctx context.Context, sess *session.Session, body []byte) {
	uuid, ok := e.requireAuth(sess, protocol.ServiceFriendRequest)
	if !ok {
		return
	}

	var req protocol.FriendRequestBody
	if err := json.Unmarshal(body, &req); err != nil {
		e.reply(sess, protocol.ServiceFriendRequest, protocol.FriendRequestResponse{Error: protocol.CodeJSONParse})
		return
	}
	req.SrcUUID = uuid

	if req.DstUUID == req.SrcUUID {
		e.reply(sess, protocol.ServiceFriendRequest, protocol.FriendRequestResponse{
			Error: protocol.CodeFriendingYourself, SrcUUID: req.SrcUUID, DstUUID: req.DstUUID,
		})
		return
	}

	if err := e.repo.AddFriendRequest(ctx, req.SrcUUID, req.DstUUID, req.Nickname, req.Message); err != nil {
		e.logger.Warn("Friend request persist failed", "src", req.SrcUUID, "dst", req.DstUUID, "error", err)
		e.reply(sess, protocol.ServiceFriendRequest, protocol.FriendRequestResponse{
			Error: protocol.CodeMySQL, SrcUUID: req.SrcUUID, DstUUID: req.DstUUID,
		})
		return
	}

	e.reply(sess, protocol.ServiceFriendRequest, protocol.FriendRequestResponse{
		Error: protocol.CodeSuccess, SrcUUID: req.SrcUUID, DstUUID: req.DstUUID,
	})

	notice, _ := json.Marshal(req)
	e.notifyUser(ctx, req.DstUUID, protocol.ServiceNotifyFriendRequest, notice, func(server string) protocol.Code {
		return e.peers.SendFriendRequest(ctx, server, &chatv1.FriendRequest{
			SrcUuid:  req.SrcUUID,
			DstUuid:  req.DstUUID,
			Nickname: req.Nickname,
			ReqMsg:   req.Message,
		})
	})
}

// handleFriendConfirm commits the friendship and notifies the original
// requester.
func (e *Engine) handleFriendConfirm(ctx context.Context, sess *session.Session, body []byte) {
	uuid, ok := e.requireAuth(sess, protocol.ServiceFriendConfirm)
	if !ok {
		return
	}

	var req protocol.FriendConfirmBody
	if err := json.Unmarshal(body, &req); err != nil {
		e.reply(sess, protocol.ServiceFriendConfirm, protocol.FriendRequestResponse{Error: protocol.CodeJSONParse})
		return
	}
	req.SrcUUID = uuid

	if err := e.repo.ConfirmFriend(ctx, req.SrcUUID, req.DstUUID, req.Alias); err != nil {
		e.logger.Warn("Friend confirm failed", "src", req.SrcUUID, "dst", req.DstUUID, "error", err)
		e.reply(sess, protocol.ServiceFriendConfirm, protocol.FriendRequestResponse{
			Error: protocol.CodeMySQL, SrcUUID: req.SrcUUID, DstUUID: req.DstUUID,
		})
		return
	}

	e.reply(sess, protocol.ServiceFriendConfirm, protocol.FriendRequestResponse{
		Error: protocol.CodeSuccess, SrcUUID: req.SrcUUID, DstUUID: req.DstUUID,
	})

	notice, _ := json.Marshal(req)
	e.notifyUser(ctx, req.DstUUID, protocol.ServiceNotifyFriendConfirm, notice, func(server string) protocol.Code {
		return e.peers.ConfirmFriendRequest(ctx, server, &chatv1.FriendConfirmRequest{
			SrcUuid: req.SrcUUID,
			DstUuid: req.DstUUID,
			Alias:   req.Alias,
		})
	})
}

// handleTextChatMsg persists the batch, answers the sender, then
// forwards. The sender always learns its verified ids before the
// counterpart can possibly reply to them.
func (e *Engine) handleTextChatMsg(ctx context.Context, sess *session.Session, body []byte) {
	uuid, ok := e.requireAuth(sess, protocol.ServiceTextChatMsg)
	if !ok {
		return
	}

	var req protocol.TextChatMsgRequest
	if err := json.Unmarshal(body, &req); err != nil {
		e.reply(sess, protocol.ServiceTextChatMsg, protocol.TextChatMsgResponse{Error: protocol.CodeJSONParse})
		return
	}
	req.SrcUUID = uuid

	verified, err := e.repo.SaveTextMessages(ctx, req.SrcUUID, req.DstUUID, req.Msgs)
	if err != nil {
		e.logger.Warn("Message persist failed", "src", req.SrcUUID, "dst", req.DstUUID, "error", err)
		e.reply(sess, protocol.ServiceTextChatMsg, protocol.TextChatMsgResponse{
			Error: protocol.CodeMySQL, SrcUUID: req.SrcUUID, DstUUID: req.DstUUID,
		})
		return
	}

	e.reply(sess, protocol.ServiceTextChatMsg, protocol.TextChatMsgResponse{
		Error:    protocol.CodeSuccess,
		SrcUUID:  req.SrcUUID,
		DstUUID:  req.DstUUID,
		Verified: verified,
	})

	// Forwarded copies carry the verified server ids.
	units := make([]protocol.TextMsgUnit, len(req.Msgs))
	rpcMsgs := make([]*chatv1.ChattingTextMsg, len(req.Msgs))
	for i, m := range req.Msgs {
		units[i] = protocol.TextMsgUnit{MsgID: verified[i].VerifiedID, Content: m.Content}
		rpcMsgs[i] = &chatv1.ChattingTextMsg{MsgId: verified[i].VerifiedID, MsgContent: m.Content}
	}
	notice, _ := json.Marshal(protocol.NotifyTextChatMsg{
		SrcUUID: req.SrcUUID, DstUUID: req.DstUUID, Msgs: units,
	})
	e.notifyUser(ctx, req.DstUUID, protocol.ServiceNotifyTextChatMsg, notice, func(server string) protocol.Code {
		return e.peers.SendChattingTextMsg(ctx, server, &chatv1.ChattingTextMsgRequest{
			SrcUuid: req.SrcUUID,
			DstUuid: req.DstUUID,
			Lists:   rpcMsgs,
		})
	})

	if e.archive != nil {
		e.archive.ArchiveText(req.SrcUUID, req.DstUUID, verified, req.Msgs)
	}
}

func (e *Engine) handlePullChatThreads(ctx context.Context, sess *session.Session, body []byte) {
	uuid, ok := e.requireAuth(sess, protocol.ServicePullChatThreads)
	if !ok {
		return
	}

	var req protocol.ChatThreadsRequest
	if err := json.Unmarshal(body, &req); err != nil {
		e.reply(sess, protocol.ServicePullChatThreads, protocol.ChatThreadsResponse{Error: protocol.CodeJSONParse})
		return
	}

	limit := req.Limit
	if limit <= 0 || limit > defaultThreadPageSize {
		limit = defaultThreadPageSize
	}

	page, err := e.repo.ChatThreads(ctx, uuid, req.NextThreadID, limit)
	if err != nil {
		e.logger.Warn("Thread listing failed", "uuid", uuid, "error", err)
		e.reply(sess, protocol.ServicePullChatThreads, protocol.ChatThreadsResponse{Error: protocol.CodeMySQL})
		return
	}

	e.reply(sess, protocol.ServicePullChatThreads, protocol.ChatThreadsResponse{
		Error:        protocol.CodeSuccess,
		Threads:      page.Threads,
		LoadMore:     page.LoadMore,
		NextThreadID: page.NextThreadID,
	})
}

// notifyUser delivers a notification to uuid wherever its session
// lives: directly for a local session, via forward for a remote one,
// and not at all when the user is offline.
func (e *Engine) notifyUser(ctx context.Context, uuid string, service protocol.ServiceID, body []byte, forward func(server string) protocol.Code) {
	if target, ok := e.registry.GetSession(uuid); ok {
		if err := target.SendMessage(service, body); err != nil {
			e.logger.Debug("Local notify dropped", "uuid", uuid, "service", service.String(), "error", err)
		}
		metrics.MessagesForwarded.WithLabelValues("local").Inc()
		return
	}

	server, err := e.dir.ServerFor(ctx, uuid)
	if err != nil {
		e.logger.Warn("Route lookup failed", "uuid", uuid, "error", err)
		return
	}
	if server == "" || server == e.dir.ServerName() {
		// Offline, or a stale route pointing at us with no session.
		metrics.MessagesForwarded.WithLabelValues("offline").Inc()
		return
	}

	if code := forward(server); code != protocol.CodeSuccess {
		e.logger.Warn("Remote notify failed", "uuid", uuid, "server", server, "code", code.String())
		return
	}
	metrics.MessagesForwarded.WithLabelValues("remote").Inc()
}
