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

// Package rpc exposes this chatting server to its peers. Every inbound
// call lands on a local session through the logic engine's delivery
// surface; failures travel as error codes inside the response body.
package rpc

import (
	"context"
	"net"

	"google.golang.org/grpc"

	chatv1 "flychat/api/proto/chat/v1"
	"flychat/internal/logging"
	"flychat/internal/protocol"
)

// Deliverer is the slice of the logic engine the RPC surface needs.
type Deliverer interface {
	DeliverKick(uuid string) protocol.Code
	DeliverFriendRequest(src, dst, nickname, message string) protocol.Code
	DeliverFriendConfirm(src, dst, alias string) protocol.Code
	DeliverTextMsgs(src, dst string, msgs []protocol.TextMsgUnit) protocol.Code
}

// ChattingServer implements DistributedChattingService.
type ChattingServer struct {
	chatv1.UnimplementedDistributedChattingServiceServer
	deliver Deliverer
	logger  *logging.Logger
}

// NewChattingServer creates the peer-facing service.
func NewChattingServer(deliver Deliverer) *ChattingServer {
	return &ChattingServer{
		deliver: deliver,
		logger:  logging.NewLogger("rpc"),
	}
}

// Serve registers the service on a fresh gRPC server and starts it on
// addr. The returned server is running; stop it with GracefulStop.
func (s *ChattingServer) Serve(addr string) (*grpc.Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	gs := grpc.NewServer()
	chatv1.RegisterDistributedChattingServiceServer(gs, s)
	s.logger.Info("Peer RPC listening", "addr", addr)
	go func() {
		if err := gs.Serve(ln); err != nil {
			s.logger.Error("Peer RPC server stopped", "error", err)
		}
	}()
	return gs, nil
}

func (s *ChattingServer) ForceTerminateLoginedUser(ctx context.Context, req *chatv1.TerminateRequest) (*chatv1.TerminateResponse, error) {
	code := s.deliver.DeliverKick(req.GetKickUuid())
	s.logger.Info("Peer kick handled", "uuid", req.GetKickUuid(), "code", code.String())
	return &chatv1.TerminateResponse{Error: int32(code), KickUuid: req.GetKickUuid()}, nil
}

func (s *ChattingServer) SendFriendRequest(ctx context.Context, req *chatv1.FriendRequest) (*chatv1.FriendResponse, error) {
	code := s.deliver.DeliverFriendRequest(req.GetSrcUuid(), req.GetDstUuid(), req.GetNickname(), req.GetReqMsg())
	return &chatv1.FriendResponse{
		Error:   int32(code),
		SrcUuid: req.GetSrcUuid(),
		DstUuid: req.GetDstUuid(),
	}, nil
}

func (s *ChattingServer) ConfirmFriendRequest(ctx context.Context, req *chatv1.FriendConfirmRequest) (*chatv1.FriendConfirmResponse, error) {
	code := s.deliver.DeliverFriendConfirm(req.GetSrcUuid(), req.GetDstUuid(), req.GetAlias())
	return &chatv1.FriendConfirmResponse{
		Error:   int32(code),
		SrcUuid: req.GetSrcUuid(),
		DstUuid: req.GetDstUuid(),
	}, nil
}

func (s *ChattingServer) SendChattingTextMsg(ctx context.Context, req *chatv1.ChattingTextMsgRequest) (*chatv1.ChattingTextMsgResponse, error) {
	msgs := make([]protocol.TextMsgUnit, len(req.GetLists()))
	for i, m := range req.GetLists() {
		msgs[i] = protocol.TextMsgUnit{MsgID: m.GetMsgId(), Content: m.GetMsgContent()}
	}
	code := s.deliver.DeliverTextMsgs(req.GetSrcUuid(), req.GetDstUuid(), msgs)
	return &chatv1.ChattingTextMsgResponse{Error: int32(code)}, nil
}
