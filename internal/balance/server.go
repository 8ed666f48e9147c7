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
Package balance implements the registry server.

Every chatting server registers two endpoints here: its client-facing
TCP listener and its peer-facing gRPC listener. Clients ask for the
least-loaded chatting server; chatting servers ask for each other's gRPC
endpoints. Load comes from the shared connection-count hash maintained
by the chatting servers themselves, so the registry carries no counters
of its own.
*/
package balance

import (
	"context"
	"net"
	"sync"

	"google.golang.org/grpc"

	chatv1 "flychat/api/proto/chat/v1"
	"flychat/internal/logging"
	"flychat/internal/protocol"
)

// Counts reports live connection counts per chatting server name.
// Implemented by the presence store.
type Counts interface {
	ConnectionCounts(ctx context.Context) (map[string]int64, error)
}

// Server implements RegisterService.
type Server struct {
	chatv1.UnimplementedRegisterServiceServer

	counts Counts
	logger *logging.Logger

	mu        sync.RWMutex
	instances map[string]*chatv1.PeerInfo // name -> client-facing endpoint
	grpcPeers map[string]*chatv1.PeerInfo // name -> grpc endpoint
}

// NewServer creates a registry server backed by the given counts source.
func NewServer(counts Counts) *Server {
	return &Server{
		counts:    counts,
		logger:    logging.NewLogger("balance"),
		instances: make(map[string]*chatv1.PeerInfo),
		grpcPeers: make(map[string]*chatv1.PeerInfo),
	}
}

// Serve registers the service on a fresh gRPC server and starts it.
func (s *Server) Serve(addr string) (*grpc.Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	gs := grpc.NewServer()
	chatv1.RegisterRegisterServiceServer(gs, s)
	s.logger.Info("Registry listening", "addr", addr)
	go func() {
		if err := gs.Serve(ln); err != nil {
			s.logger.Error("Registry server stopped", "error", err)
		}
	}()
	return gs, nil
}

func (s *Server) RegisterInstance(ctx context.Context, req *chatv1.RegisterRequest) (*chatv1.StatusResponse, error) {
	info := req.GetInfo()
	if info.GetName() == "" || info.GetHost() == "" || info.GetPort() == "" {
		return &chatv1.StatusResponse{Error: int32(protocol.CodeJSONParse)}, nil
	}

	s.mu.Lock()
	s.instances[info.GetName()] = info
	s.mu.Unlock()

	s.logger.Info("Instance registered", "name", info.GetName(), "addr", info.GetHost()+":"+info.GetPort())
	return &chatv1.StatusResponse{Error: int32(protocol.CodeSuccess)}, nil
}

func (s *Server) RegisterGrpc(ctx context.Context, req *chatv1.RegisterRequest) (*chatv1.StatusResponse, error) {
	info := req.GetInfo()
	if info.GetName() == "" || info.GetHost() == "" || info.GetPort() == "" {
		return &chatv1.StatusResponse{Error: int32(protocol.CodeJSONParse)}, nil
	}

	s.mu.Lock()
	s.grpcPeers[info.GetName()] = info
	s.mu.Unlock()

	s.logger.Info("Peer endpoint registered", "name", info.GetName(), "addr", info.GetHost()+":"+info.GetPort())
	return &chatv1.StatusResponse{Error: int32(protocol.CodeSuccess)}, nil
}

// Shutdown removes both endpoints of a departing server. Idempotent.
func (s *Server) Shutdown(ctx context.Context, req *chatv1.ShutdownRequest) (*chatv1.StatusResponse, error) {
	name := req.GetCurServer()

	s.mu.Lock()
	delete(s.instances, name)
	delete(s.grpcPeers, name)
	s.mu.Unlock()

	s.logger.Info("Server deregistered", "name", name)
	return &chatv1.StatusResponse{Error: int32(protocol.CodeSuccess)}, nil
}

func (s *Server) GetPeers(ctx context.Context, req *chatv1.PeerRequest) (*chatv1.PeerResponse, error) {
	return s.listPeers(s.instancesSnapshot(), req.GetCurServer()), nil
}

func (s *Server) GetGrpcPeers(ctx context.Context, req *chatv1.PeerRequest) (*chatv1.PeerResponse, error) {
	return s.listPeers(s.grpcSnapshot(), req.GetCurServer()), nil
}

// GetChattingServer picks the registered instance with the fewest live
// connections for a connecting client.
func (s *Server) GetChattingServer(ctx context.Context, req *chatv1.ServerRequest) (*chatv1.ServerResponse, error) {
	instances := s.instancesSnapshot()
	if len(instances) == 0 {
		return &chatv1.ServerResponse{Error: int32(protocol.CodeNetwork)}, nil
	}

	counts := map[string]int64{}
	if s.counts != nil {
		c, err := s.counts.ConnectionCounts(ctx)
		if err != nil {
			s.logger.Warn("Connection counts unavailable", "error", err)
		} else {
			counts = c
		}
	}

	var best *chatv1.PeerInfo
	var bestLoad int64
	for _, info := range instances {
		load := counts[info.GetName()]
		if best == nil || load < bestLoad || (load == bestLoad && info.GetName() < best.GetName()) {
			best = info
			bestLoad = load
		}
	}

	s.logger.Debug("Server picked", "name", best.GetName(), "load", bestLoad, "uuid", req.GetUuid())
	return &chatv1.ServerResponse{
		Error: int32(protocol.CodeSuccess),
		Host:  best.GetHost(),
		Port:  best.GetPort(),
	}, nil
}

func (s *Server) listPeers(all []*chatv1.PeerInfo, exclude string) *chatv1.PeerResponse {
	lists := make([]*chatv1.PeerInfo, 0, len(all))
	for _, info := range all {
		if info.GetName() == exclude {
			continue
		}
		lists = append(lists, info)
	}
	return &chatv1.PeerResponse{Error: int32(protocol.CodeSuccess), Lists: lists}
}

func (s *Server) instancesSnapshot() []*chatv1.PeerInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*chatv1.PeerInfo, 0, len(s.instances))
	for _, info := range s.instances {
		out = append(out, info)
	}
	return out
}

func (s *Server) grpcSnapshot() []*chatv1.PeerInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*chatv1.PeerInfo, 0, len(s.grpcPeers))
	for _, info := range s.grpcPeers {
		out = append(out, info)
	}
	return out
}
