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
Package logic executes client requests on a single consumer goroutine.

EXECUTION MODEL:
================
Connection readers never run business logic. They commit (session,
envelope) pairs to a bounded queue and return to reading. One consumer
drains the queue and dispatches each task through a per-service handler
table. Overload sheds new work at the queue boundary: a full queue drops
the task and the client hears nothing, exactly as if the packet had been
lost on the wire.

ORDERING:
=========
The single consumer gives every session's requests a global serial
order. Replies go out through the session's own ordered send queue, so a
caller always sees its response before any notification triggered by a
later request.
*/
package logic

import (
	"context"
	"errors"
	"runtime/debug"

	"flychat/internal/logging"
	"flychat/internal/metrics"
	"flychat/internal/protocol"
	"flychat/internal/session"
)

// queueSize bounds the pending task backlog.
const queueSize = 1024

// ErrQueueBusy reports that the logic queue shed the task.
var ErrQueueBusy = errors.New("logic queue is full")

type task struct {
	sess *session.Session
	env  protocol.Envelope
}

type handlerFunc func(ctx context.Context, sess *session.Session, body []byte)

// Engine owns the task queue and the dispatch table.
type Engine struct {
	registry *session.Registry
	dir      Directory
	repo     Repository
	peers    Peers
	tokens   *TokenManager
	cache    ProfileCache
	archive  Archiver

	queue    chan task
	handlers map[protocol.ServiceID]handlerFunc
	logger   *logging.Logger
	sessions *logging.SessionLogger
	security *logging.SecurityLogger

	stop chan struct{}
	done chan struct{}
}

// Options carries the collaborators an Engine needs. Registry, Dir and
// Repo are required; Cache and Archive may be nil.
type Options struct {
	Registry *session.Registry
	Dir      Directory
	Repo     Repository
	Peers    Peers
	Tokens   *TokenManager
	Cache    ProfileCache
	Archive  Archiver
}

// NewEngine builds an engine and its dispatch table.
func NewEngine(opts Options) *Engine {
	logger := logging.NewLogger("logic")
	e := &Engine{
		registry: opts.Registry,
		dir:      opts.Dir,
		repo:     opts.Repo,
		peers:    opts.Peers,
		tokens:   opts.Tokens,
		cache:    opts.Cache,
		archive:  opts.Archive,
		queue:    make(chan task, queueSize),
		logger:   logger,
		sessions: logging.NewSessionLogger(logger),
		security: logging.NewSecurityLogger(logger),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	e.handlers = map[protocol.ServiceID]handlerFunc{
		protocol.ServiceLogin:           e.handleLogin,
		protocol.ServiceLogout:          e.handleLogout,
		protocol.ServiceHeartbeat:       e.handleHeartbeat,
		protocol.ServiceSearchUsername:  e.handleSearchUsername,
		protocol.ServiceFriendRequest:   e.handleFriendRequest,
		protocol.ServiceFriendConfirm:   e.handleFriendConfirm,
		protocol.ServiceTextChatMsg:     e.handleTextChatMsg,
		protocol.ServicePullChatThreads: e.handlePullChatThreads,
	}
	return e
}

// Start launches the consumer goroutine.
func (e *Engine) Start(ctx context.Context) {
	go e.run(ctx)
}

// Stop drains nothing: pending tasks are abandoned, matching the
// drop-on-overload contract.
func (e *Engine) Stop() {
	close(e.stop)
	<-e.done
}

// Commit hands an envelope to the logic queue without blocking the
// caller. A full queue drops the task.
func (e *Engine) Commit(sess *session.Session, env protocol.Envelope) error {
	select {
	case e.queue <- task{sess: sess, env: env}:
		metrics.TasksCommitted.Inc()
		return nil
	default:
		metrics.TasksDropped.Inc()
		e.logger.Warn("Task dropped, queue full", "service", env.Service.String(), "session", sess.ID())
		return ErrQueueBusy
	}
}

func (e *Engine) run(ctx context.Context) {
	defer close(e.done)

	for {
		select {
		case <-e.stop:
			return
		case <-ctx.Done():
			return
		case t := <-e.queue:
			e.dispatch(ctx, t)
		}
	}
}

// dispatch runs one task, isolating handler panics so one poisoned
// request cannot take the consumer down.
func (e *Engine) dispatch(ctx context.Context, t task) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Handler panic",
				"service", t.env.Service.String(),
				"session", t.sess.ID(),
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()

	h, ok := e.handlers[t.env.Service]
	if !ok {
		e.logger.Warn("No handler for service", "service", t.env.Service.String())
		return
	}
	h(ctx, t.sess, t.env.Body)
}
