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
Package bridge routes server-to-server calls between chatting servers.

PEER RESOLUTION:
================
Peers are addressed by server name, not address. The mapping comes from
the balance server's gRPC peer list and is cached locally; a lookup miss
triggers one refresh before the call fails. Each resolved peer gets a
bounded pool of client channels that calls check out and return.

FAILURE MODEL:
==============
Transport failures surface as CodeGRPC and the failed channel is
discarded so the next call redials. Application failures travel inside
the response body as error codes and never as RPC errors.
*/
package bridge

import (
	"context"
	"fmt"
	"sync"
	"time"

	chatv1 "flychat/api/proto/chat/v1"
	"flychat/internal/logging"
	"flychat/internal/protocol"
)

var errUnknownPeer = fmt.Errorf("unknown peer server")

// callTimeout bounds every outbound peer RPC.
const callTimeout = 5 * time.Second

// Manager resolves peer chatting servers and dispatches RPCs to them.
type Manager struct {
	self     string
	balance  chatv1.RegisterServiceClient
	dial     dialFunc
	poolSize int
	logger   *logging.Logger

	mu    sync.RWMutex
	peers map[string]string    // server name -> grpc address
	pools map[string]*stubPool // grpc address -> pool
}

// NewManager creates a peer manager. balance is the registry client used
// to refresh the peer list; self is this server's name and is excluded
// from resolution.
func NewManager(self string, balance chatv1.RegisterServiceClient) *Manager {
	return &Manager{
		self:     self,
		balance:  balance,
		dial:     defaultDial,
		poolSize: defaultPoolSize,
		logger:   logging.NewLogger("bridge"),
		peers:    make(map[string]string),
		pools:    make(map[string]*stubPool),
	}
}

// Close shuts down every peer pool.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.pools {
		p.close()
	}
	m.pools = make(map[string]*stubPool)
}

// resolve maps a server name to a stub pool, refreshing the peer list
// from the balance server on a lookup miss.
func (m *Manager) resolve(ctx context.Context, server string) (*stubPool, error) {
	if server == m.self {
		return nil, fmt.Errorf("refusing to bridge to self (%s)", server)
	}

	m.mu.RLock()
	addr, ok := m.peers[server]
	m.mu.RUnlock()

	if !ok {
		if err := m.RefreshPeers(ctx); err != nil {
			return nil, err
		}
		m.mu.RLock()
		addr, ok = m.peers[server]
		m.mu.RUnlock()
		if !ok {
			return nil, fmt.Errorf("%w: %s", errUnknownPeer, server)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	pool, ok := m.pools[addr]
	if !ok {
		pool = newStubPool(addr, m.poolSize, m.dial, m.logger)
		m.pools[addr] = pool
	}
	return pool, nil
}

// RefreshPeers replaces the cached name-to-address map with the balance
// server's current gRPC peer list.
func (m *Manager) RefreshPeers(ctx context.Context) error {
	resp, err := m.balance.GetGrpcPeers(ctx, &chatv1.PeerRequest{CurServer: m.self})
	if err != nil {
		return fmt.Errorf("refresh peers: %w", err)
	}
	if resp.GetError() != 0 {
		return fmt.Errorf("refresh peers: balance answered code %d", resp.GetError())
	}

	fresh := make(map[string]string, len(resp.GetLists()))
	for _, p := range resp.GetLists() {
		if p.GetName() == m.self {
			continue
		}
		fresh[p.GetName()] = p.GetHost() + ":" + p.GetPort()
	}

	m.mu.Lock()
	m.peers = fresh
	m.mu.Unlock()

	m.logger.Debug("Peer list refreshed", "peers", len(fresh))
	return nil
}

// withStub runs fn with a checked-out stub, discarding the channel when
// fn reports a transport failure.
func (m *Manager) withStub(ctx context.Context, server string, fn func(chatv1.DistributedChattingServiceClient) error) error {
	pool, err := m.resolve(ctx, server)
	if err != nil {
		return err
	}

	pc, err := pool.get(ctx)
	if err != nil {
		return err
	}

	if err := fn(pc.stub); err != nil {
		pool.discard(pc)
		return err
	}
	pool.put(pc)
	return nil
}

// ForceTerminate tells the peer holding uuid's session to kick it.
// Callers must treat any non-success code as "the remote session may
// still be alive" and abort their own takeover.
func (m *Manager) ForceTerminate(ctx context.Context, server, uuid string) protocol.Code {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	code := protocol.CodeSuccess
	err := m.withStub(ctx, server, func(stub chatv1.DistributedChattingServiceClient) error {
		resp, err := stub.ForceTerminateLoginedUser(ctx, &chatv1.TerminateRequest{KickUuid: uuid})
		if err != nil {
			return err
		}
		code = protocol.Code(resp.GetError())
		return nil
	})
	if err != nil {
		m.logger.Warn("Force terminate failed", "server", server, "uuid", uuid, "error", err)
		return protocol.CodeGRPC
	}
	return code
}

// SendFriendRequest forwards a friend request notification to the peer
// holding the destination user's session.
func (m *Manager) SendFriendRequest(ctx context.Context, server string, req *chatv1.FriendRequest) protocol.Code {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	code := protocol.CodeSuccess
	err := m.withStub(ctx, server, func(stub chatv1.DistributedChattingServiceClient) error {
		resp, err := stub.SendFriendRequest(ctx, req)
		if err != nil {
			return err
		}
		code = protocol.Code(resp.GetError())
		return nil
	})
	if err != nil {
		m.logger.Warn("Friend request forward failed", "server", server, "error", err)
		return protocol.CodeGRPC
	}
	return code
}

// ConfirmFriendRequest forwards a friend confirmation notification.
func (m *Manager) ConfirmFriendRequest(ctx context.Context, server string, req *chatv1.FriendConfirmRequest) protocol.Code {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	code := protocol.CodeSuccess
	err := m.withStub(ctx, server, func(stub chatv1.DistributedChattingServiceClient) error {
		resp, err := stub.ConfirmFriendRequest(ctx, req)
		if err != nil {
			return err
		}
		code = protocol.Code(resp.GetError())
		return nil
	})
	if err != nil {
		m.logger.Warn("Friend confirm forward failed", "server", server, "error", err)
		return protocol.CodeGRPC
	}
	return code
}

// SendChattingTextMsg forwards a batch of chat messages to the peer
// holding the destination user's session.
func (m *Manager) SendChattingTextMsg(ctx context.Context, server string, req *chatv1.ChattingTextMsgRequest) protocol.Code {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	code := protocol.CodeSuccess
	err := m.withStub(ctx, server, func(stub chatv1.DistributedChattingServiceClient) error {
		resp, err := stub.SendChattingTextMsg(ctx, req)
		if err != nil {
			return err
		}
		code = protocol.Code(resp.GetError())
		return nil
	})
	if err != nil {
		m.logger.Warn("Text message forward failed", "server", server, "error", err)
		return protocol.CodeGRPC
	}
	return code
}
