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

package protocol

// JSON body shapes for every service. These are the wire contract shared by
// the chatting server, the resources server, and the WebSocket gateway.
// Field names are snake_case on the wire.

// LoginRequest authenticates a uuid. Either a gateway-issued token or a
// username/password pair must be present.
type LoginRequest struct {
	UUID     string `json:"uuid"`
	Token    string `json:"token,omitempty"`
	Password string `json:"password,omitempty"`
}

// UserNameCard is the public profile snapshot returned on login and search.
type UserNameCard struct {
	UUID        string `json:"uuid"`
	Username    string `json:"username"`
	Nickname    string `json:"nickname"`
	Avatar      string `json:"avatar"`
	Description string `json:"description"`
	Sex         int    `json:"sex"`
}

// LoginResponse answers ServiceLogin.
type LoginResponse struct {
	Error     Code         `json:"error"`
	UUID      string       `json:"uuid,omitempty"`
	SessionID string       `json:"session_id,omitempty"`
	Token     string       `json:"token,omitempty"`
	NameCard  UserNameCard `json:"name_card,omitempty"`
}

// LogoutRequest asks for a graceful logout of the bound uuid.
type LogoutRequest struct {
	UUID string `json:"uuid"`
}

// StatusResponse is the minimal error-only answer shared by several services.
type StatusResponse struct {
	Error Code `json:"error"`
}

// HeartbeatRequest keeps the session and its presence TTL alive.
type HeartbeatRequest struct {
	UUID string `json:"uuid"`
}

// SearchRequest looks up a user by exact username.
type SearchRequest struct {
	Username string `json:"username"`
}

// SearchResponse answers ServiceSearchUsername.
type SearchResponse struct {
	Error    Code         `json:"error"`
	NameCard UserNameCard `json:"name_card,omitempty"`
}

// FriendRequestBody asks dst_uuid to become a friend of src_uuid.
type FriendRequestBody struct {
	SrcUUID  string `json:"src_uuid"`
	DstUUID  string `json:"dst_uuid"`
	Nickname string `json:"nickname,omitempty"`
	Message  string `json:"message,omitempty"`
}

// FriendRequestResponse answers ServiceFriendRequest.
type FriendRequestResponse struct {
	Error   Code   `json:"error"`
	SrcUUID string `json:"src_uuid"`
	DstUUID string `json:"dst_uuid"`
}

// FriendConfirmBody confirms a pending friend request. src_uuid is the
// confirming user; dst_uuid is the original requester.
type FriendConfirmBody struct {
	SrcUUID string `json:"src_uuid"`
	DstUUID string `json:"dst_uuid"`
	Alias   string `json:"alias,omitempty"`
}

// TextMsgUnit is one message inside a batched text-chat call. MsgID is the
// sender's local identifier; the server echoes it back next to the verified
// server-assigned id.
type TextMsgUnit struct {
	MsgID   string `json:"msg_id"`
	Content string `json:"content"`
}

// TextChatMsgRequest carries a batch of messages for one counterpart.
type TextChatMsgRequest struct {
	SrcUUID string        `json:"src_uuid"`
	DstUUID string        `json:"dst_uuid"`
	Msgs    []TextMsgUnit `json:"msgs"`
}

// VerifiedMsg maps a sender-local msg_id to the persisted server id.
type VerifiedMsg struct {
	MsgID      string `json:"msg_id"`
	VerifiedID string `json:"verified_id"`
}

// TextChatMsgResponse answers ServiceTextChatMsg. Every message was
// persisted before this response is produced.
type TextChatMsgResponse struct {
	Error    Code          `json:"error"`
	SrcUUID  string        `json:"src_uuid"`
	DstUUID  string        `json:"dst_uuid"`
	Verified []VerifiedMsg `json:"verified,omitempty"`
}

// NotifyTextChatMsg is pushed to the counterpart. Msgs carry the verified
// server ids in MsgID.
type NotifyTextChatMsg struct {
	SrcUUID string        `json:"src_uuid"`
	DstUUID string        `json:"dst_uuid"`
	Msgs    []TextMsgUnit `json:"msgs"`
}

// NotifyOffline tells a session it was evicted by a newer login.
type NotifyOffline struct {
	UUID   string `json:"uuid"`
	Reason string `json:"reason"`
}

// ChatThreadsRequest pages through the caller's chat threads. NextThreadID
// is the cursor watermark from the previous page; empty starts from the top.
type ChatThreadsRequest struct {
	UUID         string `json:"uuid"`
	NextThreadID string `json:"next_thread_id,omitempty"`
	Limit        int    `json:"limit,omitempty"`
}

// ChatThreadMeta describes one conversation in the thread list.
type ChatThreadMeta struct {
	ThreadID  string `json:"thread_id"`
	Kind      string `json:"kind"` // "private" or "group"
	PeerUUID  string `json:"peer_uuid,omitempty"`
	LastMsg   string `json:"last_msg,omitempty"`
	LastMsgID string `json:"last_msg_id,omitempty"`
	UpdatedAt int64  `json:"updated_at"`
}

// ChatThreadsResponse answers ServicePullChatThreads.
type ChatThreadsResponse struct {
	Error        Code             `json:"error"`
	Threads      []ChatThreadMeta `json:"threads"`
	LoadMore     bool             `json:"load_more"`
	NextThreadID string           `json:"next_thread_id,omitempty"`
}

// UploadChunkRequest carries one chunk of a file upload. Data is base64.
// CurSize is the client's view of bytes acknowledged so far; the resources
// server verifies it against its own ledger rather than trusting it.
type UploadChunkRequest struct {
	SessionID string `json:"session_id"`
	Filename  string `json:"filename"`
	Checksum  string `json:"checksum,omitempty"`
	SeqNo     uint32 `json:"seq_no"`
	CurSize   int64  `json:"cur_size"`
	TotalSize int64  `json:"total_size"`
	Data      string `json:"data"`
	EOF       bool   `json:"eof"`
}

// UploadChunkAck answers each applied chunk.
type UploadChunkAck struct {
	Error     Code   `json:"error"`
	Filename  string `json:"filename"`
	SeqNo     uint32 `json:"seq_no"`
	AckedSize int64  `json:"acked_size"`
	Done      bool   `json:"done"`
}
