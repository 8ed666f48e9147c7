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

	chatv1 "flychat/api/proto/chat/v1"
	"flychat/internal/protocol"
)

// Profile is a user's public name card plus routing identity.
type Profile struct {
	UUID     string
	Username string
	Nickname string
	Avatar   string
	Sex      int
	Desc     string
}

// NameCard converts a profile to its wire shape.
func (p Profile) NameCard() protocol.UserNameCard {
	return protocol.UserNameCard{
		UUID:        p.UUID,
		Username:    p.Username,
		Nickname:    p.Nickname,
		Avatar:      p.Avatar,
		Description: p.Desc,
		Sex:         p.Sex,
	}
}

// ThreadPage is one page of a user's chat thread listing.
type ThreadPage struct {
	Threads      []protocol.ChatThreadMeta
	LoadMore     bool
	NextThreadID string
}

// Directory is the distributed presence view the handlers consult and
// mutate. Implemented by the Redis presence store.
type Directory interface {
	ServerName() string
	ServerFor(ctx context.Context, uuid string) (string, error)
	SessionFor(ctx context.Context, uuid string) (string, error)
	BindRoute(ctx context.Context, uuid, sessionID string) error
	ClearRouteIf(ctx context.Context, uuid, sessionID string) (bool, error)
	IncrementConnections(ctx context.Context) error
	DecrementConnections(ctx context.Context) error
	WithUUIDLock(ctx context.Context, uuid string, fn func(ctx context.Context) error) error
}

// Repository is the durable relational store behind the handlers.
type Repository interface {
	// Authenticate verifies uuid/password and returns the profile.
	Authenticate(ctx context.Context, uuid, password string) (Profile, error)
	ProfileByUUID(ctx context.Context, uuid string) (Profile, error)
	SearchByUsername(ctx context.Context, username string) (Profile, error)
	AddFriendRequest(ctx context.Context, src, dst, nickname, message string) error
	ConfirmFriend(ctx context.Context, src, dst, alias string) error
	// SaveTextMessages persists a batch and returns one verified id per
	// input message, in input order.
	SaveTextMessages(ctx context.Context, src, dst string, msgs []protocol.TextMsgUnit) ([]protocol.VerifiedMsg, error)
	ChatThreads(ctx context.Context, uuid, cursor string, limit int) (ThreadPage, error)
}

// Peers dispatches calls to the chatting server named in the first
// argument. Implemented by the bridge manager.
type Peers interface {
	ForceTerminate(ctx context.Context, server, uuid string) protocol.Code
	SendFriendRequest(ctx context.Context, server string, req *chatv1.FriendRequest) protocol.Code
	ConfirmFriendRequest(ctx context.Context, server string, req *chatv1.FriendConfirmRequest) protocol.Code
	SendChattingTextMsg(ctx context.Context, server string, req *chatv1.ChattingTextMsgRequest) protocol.Code
}

// ProfileCache fronts Repository.ProfileByUUID. A nil cache is valid.
type ProfileCache interface {
	Get(ctx context.Context, uuid string) (Profile, bool)
	Put(ctx context.Context, p Profile)
	Invalidate(ctx context.Context, uuid string)
}

// Archiver records delivered messages out of band. Failures are the
// archiver's problem, never the sender's. A nil archiver is valid.
type Archiver interface {
	ArchiveText(src, dst string, msgs []protocol.VerifiedMsg, contents []protocol.TextMsgUnit)
}
