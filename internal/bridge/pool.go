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

package bridge

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	chatv1 "flychat/api/proto/chat/v1"
	"flychat/internal/logging"
)

// Default number of pooled channels per peer.
const defaultPoolSize = 4

// dialFunc opens a client connection to a peer address. Swappable in tests.
type dialFunc func(addr string) (*grpc.ClientConn, error)

func defaultDial(addr string) (*grpc.ClientConn, error) {
	return grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
}

// pooledConn pairs a client connection with the stub built on it so a
// checkout hands back a ready-to-call client.
type pooledConn struct {
	cc   *grpc.ClientConn
	stub chatv1.DistributedChattingServiceClient
}

// stubPool manages a bounded set of client channels to one peer.
type stubPool struct {
	addr   string
	dial   dialFunc
	logger *logging.Logger

	mu      sync.Mutex
	idle    chan *pooledConn
	created int
	max     int
	closed  bool
}

func newStubPool(addr string, max int, dial dialFunc, logger *logging.Logger) *stubPool {
	if max <= 0 {
		max = defaultPoolSize
	}
	if dial == nil {
		dial = defaultDial
	}
	return &stubPool{
		addr:   addr,
		dial:   dial,
		logger: logger,
		idle:   make(chan *pooledConn, max),
		max:    max,
	}
}

// get checks out a channel, dialing a new one while the pool is below its
// cap. When the cap is reached it waits for a checkin or context expiry.
func (p *stubPool) get(ctx context.Context) (*pooledConn, error) {
	select {
	case pc := <-p.idle:
		return pc, nil
	default:
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, fmt.Errorf("pool for %s is closed", p.addr)
	}
	if p.created < p.max {
		p.created++
		p.mu.Unlock()

		cc, err := p.dial(p.addr)
		if err != nil {
			p.mu.Lock()
			p.created--
			p.mu.Unlock()
			return nil, fmt.Errorf("dial %s: %w", p.addr, err)
		}
		return &pooledConn{cc: cc, stub: chatv1.NewDistributedChattingServiceClient(cc)}, nil
	}
	p.mu.Unlock()

	select {
	case pc := <-p.idle:
		return pc, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// put returns a channel to the pool.
func (p *stubPool) put(pc *pooledConn) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		pc.cc.Close()
		return
	}

	select {
	case p.idle <- pc:
	default:
		pc.cc.Close()
		p.mu.Lock()
		p.created--
		p.mu.Unlock()
	}
}

// discard drops a channel whose last call failed so the next checkout
// redials instead of reusing a possibly broken transport.
func (p *stubPool) discard(pc *pooledConn) {
	pc.cc.Close()
	p.mu.Lock()
	p.created--
	p.mu.Unlock()
}

// close shuts down all idle channels.
func (p *stubPool) close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	for {
		select {
		case pc := <-p.idle:
			pc.cc.Close()
		default:
			return
		}
	}
}
