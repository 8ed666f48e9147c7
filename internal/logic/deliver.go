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
	"encoding/json"
	"errors"

	"flychat/internal/metrics"
	"flychat/internal/protocol"
)

// errRemoteKickFailed aborts a login takeover when the previous holder
// could not confirm the kick.
var errRemoteKickFailed = errors.New("remote session kick failed")

// The Deliver methods are the inbound half of the bridge: peers invoke
// them (through the gRPC service) to reach sessions on this server. They
// run on gRPC goroutines, not the logic consumer, and only touch the
// registry and sessions, both of which are safe for concurrent use.

// DeliverKick evicts uuid's local session on behalf of a peer that is
// logging the same user in. Success means the session is gone or was
// never here; either way the peer may claim the route.
func (e *Engine) DeliverKick(uuid string) protocol.Code {
	if _, ok := e.registry.GetSession(uuid); !ok {
		return protocol.CodeSuccess
	}
	e.kickLocal(uuid, "logged in on another server")
	return protocol.CodeSuccess
}

// DeliverFriendRequest pushes a peer-forwarded friend request to the
// local target session.
func (e *Engine) DeliverFriendRequest(src, dst, nickname, message string) protocol.Code {
	body, _ := json.Marshal(protocol.FriendRequestBody{
		SrcUUID: src, DstUUID: dst, Nickname: nickname, Message: message,
	})
	return e.deliverLocal(dst, protocol.ServiceNotifyFriendRequest, body)
}

// DeliverFriendConfirm pushes a peer-forwarded friend confirmation.
func (e *Engine) DeliverFriendConfirm(src, dst, alias string) protocol.Code {
	body, _ := json.Marshal(protocol.FriendConfirmBody{
		SrcUUID: src, DstUUID: dst, Alias: alias,
	})
	return e.deliverLocal(dst, protocol.ServiceNotifyFriendConfirm, body)
}

// DeliverTextMsgs pushes a peer-forwarded message batch. The ids are
// already verified by the origin server.
func (e *Engine) DeliverTextMsgs(src, dst string, msgs []protocol.TextMsgUnit) protocol.Code {
	body, _ := json.Marshal(protocol.NotifyTextChatMsg{
		SrcUUID: src, DstUUID: dst, Msgs: msgs,
	})
	return e.deliverLocal(dst, protocol.ServiceNotifyTextChatMsg, body)
}

func (e *Engine) deliverLocal(uuid string, service protocol.ServiceID, body []byte) protocol.Code {
	target, ok := e.registry.GetSession(uuid)
	if !ok {
		// The route went stale between the peer's lookup and the call.
		// The message is already persisted, so this is not a loss.
		e.logger.Debug("Inbound delivery found no session", "uuid", uuid, "service", service.String())
		return protocol.CodeSuccess
	}
	if err := target.SendMessage(service, body); err != nil {
		e.logger.Debug("Inbound delivery dropped", "uuid", uuid, "error", err)
		return protocol.CodeSuccess
	}
	metrics.MessagesForwarded.WithLabelValues("local").Inc()
	return protocol.CodeSuccess
}
