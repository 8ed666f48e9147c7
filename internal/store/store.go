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
Package store is the MySQL persistence layer.

Message bodies, friendships and profiles live here; routing state does
not (that is the presence store's job). The two multi-row operations,
friend confirmation and message batches, run inside transactions so a
half-applied write never becomes visible.
*/
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"flychat/internal/logging"
	"flychat/internal/logic"
	"flychat/internal/protocol"
)

//go:embed schema.sql
var schemaSQL string

// ErrNotFound reports a lookup that matched no row.
var ErrNotFound = errors.New("store: not found")

// Repository implements logic.Repository on MySQL.
type Repository struct {
	db     *sql.DB
	logger *logging.Logger
}

// Open connects to MySQL and verifies the connection.
func Open(dsn string, maxOpen, maxIdle int) (*Repository, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}

	return &Repository{db: db, logger: logging.NewLogger("store")}, nil
}

// Close releases the connection pool.
func (r *Repository) Close() error { return r.db.Close() }

// InitSchema applies the embedded schema. Safe to run on every start.
func (r *Repository) InitSchema(ctx context.Context) error {
	for _, stmt := range strings.Split(schemaSQL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" || strings.HasPrefix(stmt, "--") {
			continue
		}
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// HealthCheckLoop pings the database until ctx is cancelled.
func (r *Repository) HealthCheckLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.db.PingContext(ctx); err != nil {
				r.logger.Warn("MySQL health check failed", "error", err)
			}
		}
	}
}

// HashPassword produces the stored form of a password.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

const profileColumns = "uuid, username, nickname, avatar, sex, description"

func scanProfile(row *sql.Row) (logic.Profile, error) {
	var p logic.Profile
	err := row.Scan(&p.UUID, &p.Username, &p.Nickname, &p.Avatar, &p.Sex, &p.Desc)
	if errors.Is(err, sql.ErrNoRows) {
		return logic.Profile{}, ErrNotFound
	}
	if err != nil {
		return logic.Profile{}, err
	}
	return p, nil
}

// Authenticate verifies the password and returns the profile.
func (r *Repository) Authenticate(ctx context.Context, userUUID, password string) (logic.Profile, error) {
	var p logic.Profile
	var hash string
	row := r.db.QueryRowContext(ctx,
		"SELECT "+profileColumns+", password_hash FROM users WHERE uuid = ?", userUUID)
	err := row.Scan(&p.UUID, &p.Username, &p.Nickname, &p.Avatar, &p.Sex, &p.Desc, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return logic.Profile{}, ErrNotFound
	}
	if err != nil {
		return logic.Profile{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return logic.Profile{}, fmt.Errorf("password mismatch for %s", userUUID)
	}
	return p, nil
}

func (r *Repository) ProfileByUUID(ctx context.Context, userUUID string) (logic.Profile, error) {
	return scanProfile(r.db.QueryRowContext(ctx,
		"SELECT "+profileColumns+" FROM users WHERE uuid = ?", userUUID))
}

func (r *Repository) SearchByUsername(ctx context.Context, username string) (logic.Profile, error) {
	return scanProfile(r.db.QueryRowContext(ctx,
		"SELECT "+profileColumns+" FROM users WHERE username = ?", username))
}

// CreateUser registers a new account. The uuid is server-assigned.
func (r *Repository) CreateUser(ctx context.Context, username, nickname, password string) (logic.Profile, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return logic.Profile{}, err
	}
	p := logic.Profile{UUID: uuid.NewString(), Username: username, Nickname: nickname}
	_, err = r.db.ExecContext(ctx,
		"INSERT INTO users (uuid, username, nickname, avatar, sex, description, password_hash, created_at) VALUES (?, ?, ?, '', 0, '', ?, ?)",
		p.UUID, p.Username, p.Nickname, hash, time.Now().Unix())
	if err != nil {
		return logic.Profile{}, fmt.Errorf("create user: %w", err)
	}
	return p, nil
}

// AddFriendRequest upserts a pending request; repeating a request only
// refreshes its message.
func (r *Repository) AddFriendRequest(ctx context.Context, src, dst, nickname, message string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO friend_requests (src_uuid, dst_uuid, nickname, message, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON DUPLICATE KEY UPDATE nickname = VALUES(nickname), message = VALUES(message)`,
		src, dst, nickname, message, time.Now().Unix())
	return err
}

// ConfirmFriend commits the friendship in one transaction: the pending
// request disappears, both directed friendship rows appear, and the
// shared private thread is created with both memberships.
func (r *Repository) ConfirmFriend(ctx context.Context, src, dst, alias string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().Unix()

	res, err := tx.ExecContext(ctx,
		"DELETE FROM friend_requests WHERE src_uuid = ? AND dst_uuid = ?", dst, src)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("no pending request from %s to %s", dst, src)
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO friendships (user_uuid, friend_uuid, alias, created_at) VALUES (?, ?, ?, ?), (?, ?, '', ?)",
		src, dst, alias, now, dst, src, now); err != nil {
		return err
	}

	threadID := uuid.NewString()
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO chat_threads (thread_id, kind, last_msg, last_msg_id, updated_at) VALUES (?, 'private', '', '', ?)",
		threadID, now); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO thread_members (thread_id, user_uuid, peer_uuid) VALUES (?, ?, ?), (?, ?, ?)",
		threadID, src, dst, threadID, dst, src); err != nil {
		return err
	}

	return tx.Commit()
}

// SaveTextMessages persists a batch and bumps the shared thread. The
// whole batch lands or none of it does.
func (r *Repository) SaveTextMessages(ctx context.Context, src, dst string, msgs []protocol.TextMsgUnit) ([]protocol.VerifiedMsg, error) {
	if len(msgs) == 0 {
		return nil, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	threadID, err := r.threadBetween(ctx, tx, src, dst)
	if err != nil {
		return nil, err
	}

	now := time.Now().Unix()
	verified := make([]protocol.VerifiedMsg, len(msgs))
	for i, m := range msgs {
		vid := uuid.NewString()
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO messages (verified_id, thread_id, src_uuid, dst_uuid, content, created_at) VALUES (?, ?, ?, ?, ?, ?)",
			vid, threadID, src, dst, m.Content, now); err != nil {
			return nil, err
		}
		verified[i] = protocol.VerifiedMsg{MsgID: m.MsgID, VerifiedID: vid}
	}

	last := msgs[len(msgs)-1]
	if _, err := tx.ExecContext(ctx,
		"UPDATE chat_threads SET last_msg = ?, last_msg_id = ?, updated_at = ? WHERE thread_id = ?",
		truncate(last.Content, 255), verified[len(verified)-1].VerifiedID, now, threadID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return verified, nil
}

// threadBetween finds the private thread shared by two users, creating
// it on first contact.
func (r *Repository) threadBetween(ctx context.Context, tx *sql.Tx, a, b string) (string, error) {
	var threadID string
	err := tx.QueryRowContext(ctx,
		"SELECT thread_id FROM thread_members WHERE user_uuid = ? AND peer_uuid = ?", a, b).Scan(&threadID)
	if err == nil {
		return threadID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}

	threadID = uuid.NewString()
	now := time.Now().Unix()
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO chat_threads (thread_id, kind, last_msg, last_msg_id, updated_at) VALUES (?, 'private', '', '', ?)",
		threadID, now); err != nil {
		return "", err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO thread_members (thread_id, user_uuid, peer_uuid) VALUES (?, ?, ?), (?, ?, ?)",
		threadID, a, b, threadID, b, a); err != nil {
		return "", err
	}
	return threadID, nil
}

// ChatThreads pages the caller's threads, newest first. The cursor is
// the previous page's last thread id; a non-empty cursor resumes below
// that thread's position.
func (r *Repository) ChatThreads(ctx context.Context, userUUID, cursor string, limit int) (logic.ThreadPage, error) {
	args := []any{userUUID}
	query := `SELECT t.thread_id, t.kind, m.peer_uuid, t.last_msg, t.last_msg_id, t.updated_at
		FROM chat_threads t
		JOIN thread_members m ON m.thread_id = t.thread_id
		WHERE m.user_uuid = ?`
	if cursor != "" {
		query += ` AND (t.updated_at, t.thread_id) < (
			(SELECT updated_at FROM chat_threads WHERE thread_id = ?), ?)`
		args = append(args, cursor, cursor)
	}
	query += " ORDER BY t.updated_at DESC, t.thread_id DESC LIMIT ?"
	args = append(args, limit+1) // one extra row decides load_more

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return logic.ThreadPage{}, err
	}
	defer rows.Close()

	var page logic.ThreadPage
	for rows.Next() {
		var meta protocol.ChatThreadMeta
		if err := rows.Scan(&meta.ThreadID, &meta.Kind, &meta.PeerUUID, &meta.LastMsg, &meta.LastMsgID, &meta.UpdatedAt); err != nil {
			return logic.ThreadPage{}, err
		}
		page.Threads = append(page.Threads, meta)
	}
	if err := rows.Err(); err != nil {
		return logic.ThreadPage{}, err
	}

	if len(page.Threads) > limit {
		page.Threads = page.Threads[:limit]
		page.LoadMore = true
		page.NextThreadID = page.Threads[limit-1].ThreadID
	}
	return page, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
