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

package rpc

import (
	"context"
	"testing"

	chatv1 "flychat/api/proto/chat/v1"
	"flychat/internal/protocol"
)

type fakeDeliverer struct {
	kicked []string
	texts  [][]protocol.TextMsgUnit
	code   protocol.Code
}

func (f *fakeDeliverer) DeliverKick(uuid string) protocol.Code {
	f.kicked = append(f.kicked, uuid)
	return f.code
}

func (f *fakeDeliverer) DeliverFriendRequest(src, dst, nickname, message string) protocol.Code {
	return f.code
}

func (f *fakeDeliverer) DeliverFriendConfirm(src, dst, alias string) protocol.Code {
	return f.code
}

func (f *fakeDeliverer) DeliverTextMsgs(src, dst string, msgs []protocol.TextMsgUnit) protocol.Code {
	f.texts = append(f.texts, msgs)
	return f.code
}

func TestForceTerminateAnswersWithCode(t *testing.T) {
	d := &fakeDeliverer{code: protocol.CodeSuccess}
	s := NewChattingServer(d)

	resp, err := s.ForceTerminateLoginedUser(context.Background(), &chatv1.TerminateRequest{KickUuid: "u1"})
	if err != nil {
		t.Fatalf("ForceTerminateLoginedUser() error = %v", err)
	}
	if resp.GetError() != 0 || resp.GetKickUuid() != "u1" {
		t.Errorf("Unexpected response %+v", resp)
	}
	if len(d.kicked) != 1 || d.kicked[0] != "u1" {
		t.Errorf("Expected one kick for u1, got %v", d.kicked)
	}
}

func TestSendChattingTextMsgConvertsUnits(t *testing.T) {
	d := &fakeDeliverer{code: protocol.CodeSuccess}
	s := NewChattingServer(d)

	resp, err := s.SendChattingTextMsg(context.Background(), &chatv1.ChattingTextMsgRequest{
		SrcUuid: "u1",
		DstUuid: "u2",
		Lists: []*chatv1.ChattingTextMsg{
			{MsgId: "v-1", MsgContent: "hello"},
			{MsgId: "v-2", MsgContent: "world"},
		},
	})
	if err != nil {
		t.Fatalf("SendChattingTextMsg() error = %v", err)
	}
	if resp.GetError() != 0 {
		t.Fatalf("Unexpected code %d", resp.GetError())
	}
	if len(d.texts) != 1 || len(d.texts[0]) != 2 {
		t.Fatalf("Expected one delivery of two units, got %v", d.texts)
	}
	if d.texts[0][1].MsgID != "v-2" || d.texts[0][1].Content != "world" {
		t.Errorf("Unexpected second unit %+v", d.texts[0][1])
	}
}
