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

package logging

import (
	"net"
	"time"
)

// Specialized loggers wrap a base Logger with event-shaped helpers so the
// call sites stay terse and the emitted fields stay uniform across servers.

// ConnectionLogger records connection lifecycle events.
type ConnectionLogger struct {
	logger *Logger
}

// NewConnectionLogger creates a connection lifecycle logger.
func NewConnectionLogger(logger *Logger) *ConnectionLogger {
	return &ConnectionLogger{logger: logger}
}

// LogNewConnection records an accepted client connection.
func (cl *ConnectionLogger) LogNewConnection(conn net.Conn, sessionID string) {
	cl.logger.Info("New connection",
		"remote", conn.RemoteAddr().String(),
		"session_id", sessionID,
	)
}

// LogConnectionClosed records a closed connection with its lifetime.
func (cl *ConnectionLogger) LogConnectionClosed(conn net.Conn, sessionID, reason string, duration time.Duration) {
	cl.logger.Info("Connection closed",
		"remote", conn.RemoteAddr().String(),
		"session_id", sessionID,
		"reason", reason,
		"duration_ms", duration.Milliseconds(),
	)
}

// SessionLogger records session lifecycle transitions.
type SessionLogger struct {
	logger *Logger
}

// NewSessionLogger creates a session lifecycle logger.
func NewSessionLogger(logger *Logger) *SessionLogger {
	return &SessionLogger{logger: logger}
}

// LogLogin records a uuid binding to a session.
func (sl *SessionLogger) LogLogin(uuid, sessionID string) {
	sl.logger.Info("User logged in", "uuid", uuid, "session_id", sessionID)
}

// LogLogout records a graceful logout.
func (sl *SessionLogger) LogLogout(uuid, sessionID string) {
	sl.logger.Info("User logged out", "uuid", uuid, "session_id", sessionID)
}

// LogKick records a forced eviction and where the kick originated.
func (sl *SessionLogger) LogKick(uuid, sessionID, origin string) {
	sl.logger.Warn("User kicked", "uuid", uuid, "session_id", sessionID, "origin", origin)
}

// SecurityLogger records authentication outcomes.
type SecurityLogger struct {
	logger *Logger
}

// NewSecurityLogger creates a security event logger.
func NewSecurityLogger(logger *Logger) *SecurityLogger {
	return &SecurityLogger{logger: logger}
}

// LogAuthSuccess records a successful authentication.
func (sl *SecurityLogger) LogAuthSuccess(uuid, method, remote string) {
	sl.logger.Info("Authentication successful",
		"uuid", uuid,
		"method", method,
		"remote", remote,
	)
}

// LogAuthFailure records a failed authentication attempt.
func (sl *SecurityLogger) LogAuthFailure(uuid, reason, remote string) {
	sl.logger.Warn("Authentication failed",
		"uuid", uuid,
		"reason", reason,
		"remote", remote,
	)
}
