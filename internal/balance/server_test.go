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

package balance

import (
	"context"
	"testing"

	chatv1 "flychat/api/proto/chat/v1"
	"flychat/internal/protocol"
)

type staticCounts map[string]int64

func (c staticCounts) ConnectionCounts(ctx context.Context) (map[string]int64, error) {
	return c, nil
}

func register(t *testing.T, s *Server, name, host, port string) {
	t.Helper()
	info := &chatv1.PeerInfo{Name: name, Host: host, Port: port}
	if resp, _ := s.RegisterInstance(context.Background(), &chatv1.RegisterRequest{Info: info}); resp.GetError() != 0 {
		t.Fatalf("RegisterInstance(%s) code = %d", name, resp.GetError())
	}
	if resp, _ := s.RegisterGrpc(context.Background(), &chatv1.RegisterRequest{Info: info}); resp.GetError() != 0 {
		t.Fatalf("RegisterGrpc(%s) code = %d", name, resp.GetError())
	}
}

func TestPickLeastConnections(t *testing.T) {
	s := NewServer(staticCounts{"chat-a": 5, "chat-b": 2, "chat-c": 9})
	register(t, s, "chat-a", "10.0.0.1", "8090")
	register(t, s, "chat-b", "10.0.0.2", "8090")
	register(t, s, "chat-c", "10.0.0.3", "8090")

	resp, err := s.GetChattingServer(context.Background(), &chatv1.ServerRequest{Uuid: "u1"})
	if err != nil {
		t.Fatalf("GetChattingServer() error = %v", err)
	}
	if resp.GetError() != 0 {
		t.Fatalf("GetChattingServer() code = %d", resp.GetError())
	}
	if resp.GetHost() != "10.0.0.2" {
		t.Errorf("Expected the least-loaded server 10.0.0.2, got %s", resp.GetHost())
	}
}

func TestPickWithNoInstances(t *testing.T) {
	s := NewServer(staticCounts{})
	resp, err := s.GetChattingServer(context.Background(), &chatv1.ServerRequest{})
	if err != nil {
		t.Fatalf("GetChattingServer() error = %v", err)
	}
	if resp.GetError() != int32(protocol.CodeNetwork) {
		t.Errorf("Expected network code for empty registry, got %d", resp.GetError())
	}
}

func TestPeerListExcludesCaller(t *testing.T) {
	s := NewServer(nil)
	register(t, s, "chat-a", "10.0.0.1", "8091")
	register(t, s, "chat-b", "10.0.0.2", "8091")

	resp, err := s.GetGrpcPeers(context.Background(), &chatv1.PeerRequest{CurServer: "chat-a"})
	if err != nil {
		t.Fatalf("GetGrpcPeers() error = %v", err)
	}
	if len(resp.GetLists()) != 1 || resp.GetLists()[0].GetName() != "chat-b" {
		t.Errorf("Expected only chat-b in the peer list, got %+v", resp.GetLists())
	}
}

func TestShutdownRemovesBothEndpoints(t *testing.T) {
	s := NewServer(staticCounts{})
	register(t, s, "chat-a", "10.0.0.1", "8090")

	if _, err := s.Shutdown(context.Background(), &chatv1.ShutdownRequest{CurServer: "chat-a"}); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	peers, _ := s.GetPeers(context.Background(), &chatv1.PeerRequest{})
	if len(peers.GetLists()) != 0 {
		t.Errorf("Expected empty instance list after shutdown, got %+v", peers.GetLists())
	}
	grpcPeers, _ := s.GetGrpcPeers(context.Background(), &chatv1.PeerRequest{})
	if len(grpcPeers.GetLists()) != 0 {
		t.Errorf("Expected empty grpc list after shutdown, got %+v", grpcPeers.GetLists())
	}

	// Shutting down an unknown server is a no-op, not an error.
	if resp, _ := s.Shutdown(context.Background(), &chatv1.ShutdownRequest{CurServer: "ghost"}); resp.GetError() != 0 {
		t.Errorf("Shutdown(unknown) code = %d", resp.GetError())
	}
}

func TestRegisterRejectsIncompleteInfo(t *testing.T) {
	s := NewServer(nil)
	resp, _ := s.RegisterInstance(context.Background(), &chatv1.RegisterRequest{
		Info: &chatv1.PeerInfo{Name: "chat-a"},
	})
	if resp.GetError() == 0 {
		t.Error("Expected registration without host/port to be rejected")
	}
}
