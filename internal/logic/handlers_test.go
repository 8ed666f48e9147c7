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
	"encoding/json"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	chatv1 "flychat/api/proto/chat/v1"
	"flychat/internal/logging"
	"flychat/internal/protocol"
	"flychat/internal/session"
)

// memTransport collects written envelopes in order. Reads block forever.
type memTransport struct {
	mu     sync.Mutex
	wrote  []protocol.Envelope
	closed bool
}

func (t *memTransport) ReadEnvelope() (protocol.Envelope, error) {
	select {} // tests drive only the write side
}

func (t *memTransport) WriteEnvelope(service protocol.ServiceID, body []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return errors.New("transport closed")
	}
	t.wrote = append(t.wrote, protocol.Envelope{Service: service, Body: body})
	return nil
}

func (t *memTransport) SetReadDeadline(time.Time) error { return nil }
func (t *memTransport) RemoteAddr() net.Addr            { return &net.TCPAddr{} }

func (t *memTransport) Close() error {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
	return nil
}

func (t *memTransport) written() []protocol.Envelope {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]protocol.Envelope, len(t.wrote))
	copy(out, t.wrote)
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not reached within deadline")
}

// fakeDir is an in-memory Directory. WithUUIDLock runs fn inline.
type fakeDir struct {
	mu      sync.Mutex
	name    string
	servers map[string]string // uuid -> server holding it
	routes  map[string]string // uuid -> session id
	cleared [][2]string
	incs    int
	decs    int
}

func newFakeDir(name string) *fakeDir {
	return &fakeDir{
		name:    name,
		servers: make(map[string]string),
		routes:  make(map[string]string),
	}
}

func (d *fakeDir) ServerName() string { return d.name }

func (d *fakeDir) ServerFor(ctx context.Context, uuid string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.servers[uuid], nil
}

func (d *fakeDir) SessionFor(ctx context.Context, uuid string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.routes[uuid], nil
}

func (d *fakeDir) BindRoute(ctx context.Context, uuid, sessionID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.servers[uuid] = d.name
	d.routes[uuid] = sessionID
	return nil
}

func (d *fakeDir) ClearRouteIf(ctx context.Context, uuid, sessionID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cleared = append(d.cleared, [2]string{uuid, sessionID})
	if d.routes[uuid] != sessionID {
		return false, nil
	}
	delete(d.routes, uuid)
	delete(d.servers, uuid)
	return true, nil
}

func (d *fakeDir) IncrementConnections(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.incs++
	return nil
}

func (d *fakeDir) DecrementConnections(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.decs++
	return nil
}

func (d *fakeDir) WithUUIDLock(ctx context.Context, uuid string, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fakeRepo is an in-memory Repository.
type fakeRepo struct {
	mu       sync.Mutex
	profiles map[string]Profile
	authErr  error
	saveErr  error
	friends  [][2]string
	saved    int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{profiles: make(map[string]Profile)}
}

func (r *fakeRepo) Authenticate(ctx context.Context, uuid, password string) (Profile, error) {
	if r.authErr != nil {
		return Profile{}, r.authErr
	}
	p, ok := r.profiles[uuid]
	if !ok {
		return Profile{}, errors.New("no such user")
	}
	return p, nil
}

func (r *fakeRepo) ProfileByUUID(ctx context.Context, uuid string) (Profile, error) {
	p, ok := r.profiles[uuid]
	if !ok {
		return Profile{}, errors.New("no such user")
	}
	return p, nil
}

func (r *fakeRepo) SearchByUsername(ctx context.Context, username string) (Profile, error) {
	for _, p := range r.profiles {
		if p.Username == username {
			return p, nil
		}
	}
	return Profile{}, errors.New("no such user")
}

func (r *fakeRepo) AddFriendRequest(ctx context.Context, src, dst, nickname, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.friends = append(r.friends, [2]string{src, dst})
	return nil
}

func (r *fakeRepo) ConfirmFriend(ctx context.Context, src, dst, alias string) error { return nil }

func (r *fakeRepo) SaveTextMessages(ctx context.Context, src, dst string, msgs []protocol.TextMsgUnit) ([]protocol.VerifiedMsg, error) {
	if r.saveErr != nil {
		return nil, r.saveErr
	}
	r.mu.Lock()
	r.saved++
	r.mu.Unlock()
	out := make([]protocol.VerifiedMsg, len(msgs))
	for i, m := range msgs {
		out[i] = protocol.VerifiedMsg{MsgID: m.MsgID, VerifiedID: "v-" + m.MsgID}
	}
	return out, nil
}

func (r *fakeRepo) ChatThreads(ctx context.Context, uuid, cursor string, limit int) (ThreadPage, error) {
	return ThreadPage{
		Threads:      []protocol.ChatThreadMeta{{ThreadID: "t1", Kind: "private", PeerUUID: "u2"}},
		LoadMore:     true,
		NextThreadID: "t1",
	}, nil
}

// fakePeers records outbound bridge calls.
type fakePeers struct {
	mu        sync.Mutex
	kickCode  protocol.Code
	kicks     []string
	textCalls []*chatv1.ChattingTextMsgRequest
	friendly  []*chatv1.FriendRequest
	confirms  []*chatv1.FriendConfirmRequest
}

func (p *fakePeers) ForceTerminate(ctx context.Context, server, uuid string) protocol.Code {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.kicks = append(p.kicks, server+"/"+uuid)
	return p.kickCode
}

func (p *fakePeers) SendFriendRequest(ctx context.Context, server string, req *chatv1.FriendRequest) protocol.Code {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.friendly = append(p.friendly, req)
	return protocol.CodeSuccess
}

func (p *fakePeers) ConfirmFriendRequest(ctx context.Context, server string, req *chatv1.FriendConfirmRequest) protocol.Code {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.confirms = append(p.confirms, req)
	return protocol.CodeSuccess
}

func (p *fakePeers) SendChattingTextMsg(ctx context.Context, server string, req *chatv1.ChattingTextMsgRequest) protocol.Code {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.textCalls = append(p.textCalls, req)
	return protocol.CodeSuccess
}

type harness struct {
	engine *Engine
	dir    *fakeDir
	repo   *fakeRepo
	peers  *fakePeers
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := newFakeDir("chat-a")
	repo := newFakeRepo()
	repo.profiles["u1"] = Profile{UUID: "u1", Username: "alice", Nickname: "Alice"}
	repo.profiles["u2"] = Profile{UUID: "u2", Username: "bob", Nickname: "Bob"}
	peers := &fakePeers{kickCode: protocol.CodeSuccess}
	eng := NewEngine(Options{
		Registry: session.NewRegistry(logging.NewLogger("test")),
		Dir:      dir,
		Repo:     repo,
		Peers:    peers,
		Tokens:   NewTokenManager("test-secret", time.Hour),
	})
	return &harness{engine: eng, dir: dir, repo: repo, peers: peers}
}

func newTestSession(t *testing.T) (*session.Session, *memTransport) {
	t.Helper()
	tr := &memTransport{}
	s := session.New(tr, logging.NewLogger("test"))
	t.Cleanup(s.Terminate)
	return s, tr
}

func loginBody(t *testing.T, uuid, password string) []byte {
	t.Helper()
	b, err := json.Marshal(protocol.LoginRequest{UUID: uuid, Password: password})
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func lastReply[T any](t *testing.T, tr *memTransport, service protocol.ServiceID) T {
	t.Helper()
	var out T
	waitFor(t, func() bool {
		for _, env := range tr.written() {
			if env.Service == service {
				if err := json.Unmarshal(env.Body, &out); err != nil {
					t.Fatalf("unmarshal reply: %v", err)
				}
				return true
			}
		}
		return false
	})
	return out
}

func TestLoginPasswordSuccess(t *testing.T) {
	h := newHarness(t)
	sess, tr := newTestSession(t)

	h.engine.handleLogin(context.Background(), sess, loginBody(t, "u1", "pw"))

	resp := lastReply[protocol.LoginResponse](t, tr, protocol.ServiceLogin)
	if resp.Error != protocol.CodeSuccess {
		t.Fatalf("login error = %v", resp.Error)
	}
	if resp.SessionID != sess.ID() {
		t.Errorf("Expected session id %s, got %s", sess.ID(), resp.SessionID)
	}
	if resp.Token == "" {
		t.Error("Expected an issued token")
	}
	if resp.NameCard.Username != "alice" {
		t.Errorf("Expected alice's name card, got %+v", resp.NameCard)
	}

	if sess.UUID() != "u1" {
		t.Errorf("Expected session bound to u1, got %q", sess.UUID())
	}
	if got, ok := h.engine.registry.GetSession("u1"); !ok || got != sess {
		t.Error("Expected registry to hold the new session")
	}
	if h.dir.routes["u1"] != sess.ID() {
		t.Error("Expected route bound to the new session id")
	}
	if h.dir.incs != 1 {
		t.Errorf("Expected one counter increment, got %d", h.dir.incs)
	}
}

func TestLoginTokenRoundTrip(t *testing.T) {
	h := newHarness(t)
	sess, tr := newTestSession(t)

	h.engine.handleLogin(context.Background(), sess, loginBody(t, "u1", "pw"))
	first := lastReply[protocol.LoginResponse](t, tr, protocol.ServiceLogin)

	sess2, tr2 := newTestSession(t)
	body, _ := json.Marshal(protocol.LoginRequest{Token: first.Token})
	h.engine.handleLogin(context.Background(), sess2, body)

	resp := lastReply[protocol.LoginResponse](t, tr2, protocol.ServiceLogin)
	if resp.Error != protocol.CodeSuccess {
		t.Fatalf("token login error = %v", resp.Error)
	}
	if resp.UUID != "u1" {
		t.Errorf("Expected token to resolve u1, got %s", resp.UUID)
	}
}

func TestLoginBadCredentials(t *testing.T) {
	h := newHarness(t)
	sess, tr := newTestSession(t)

	h.engine.handleLogin(context.Background(), sess, loginBody(t, "nobody", "pw"))

	resp := lastReply[protocol.LoginResponse](t, tr, protocol.ServiceLogin)
	if resp.Error != protocol.CodeInvalidCredentials {
		t.Fatalf("login error = %v, want invalid credentials", resp.Error)
	}
	if sess.UUID() != "" {
		t.Error("Expected session to stay unbound")
	}
}

func TestLoginRemoteKickFailureAborts(t *testing.T) {
	h := newHarness(t)
	h.dir.servers["u1"] = "chat-b"
	h.peers.kickCode = protocol.CodeGRPC
	sess, tr := newTestSession(t)

	h.engine.handleLogin(context.Background(), sess, loginBody(t, "u1", "pw"))

	resp := lastReply[protocol.LoginResponse](t, tr, protocol.ServiceLogin)
	if resp.Error != protocol.CodeLoginInternal {
		t.Fatalf("login error = %v, want login internal", resp.Error)
	}
	if h.dir.routes["u1"] != "" {
		t.Error("Expected no route claim after a failed remote kick")
	}
	if len(h.peers.kicks) != 1 || h.peers.kicks[0] != "chat-b/u1" {
		t.Errorf("Expected one kick attempt at chat-b, got %v", h.peers.kicks)
	}
}

func TestLoginDisplacesLocalSession(t *testing.T) {
	h := newHarness(t)
	old, oldTr := newTestSession(t)
	old.BindUUID("u1")
	h.engine.registry.CreateUserSession("u1", old)
	h.dir.servers["u1"] = "chat-a"
	h.dir.routes["u1"] = old.ID()

	fresh, freshTr := newTestSession(t)
	h.engine.handleLogin(context.Background(), fresh, loginBody(t, "u1", "pw"))

	resp := lastReply[protocol.LoginResponse](t, freshTr, protocol.ServiceLogin)
	if resp.Error != protocol.CodeSuccess {
		t.Fatalf("login error = %v", resp.Error)
	}

	// Old session got the offline notice and died.
	notice := lastReply[protocol.NotifyOffline](t, oldTr, protocol.ServiceNotifyOffline)
	if notice.UUID != "u1" {
		t.Errorf("Expected offline notice for u1, got %+v", notice)
	}
	waitFor(t, func() bool { return old.State() == session.StateTerminated })

	if got, ok := h.engine.registry.GetSession("u1"); !ok || got != fresh {
		t.Error("Expected registry to hold the fresh session")
	}
	if h.dir.routes["u1"] != fresh.ID() {
		t.Error("Expected route rebound to the fresh session")
	}
}

func TestReLoginOnBoundSessionRejected(t *testing.T) {
	h := newHarness(t)
	sess, tr := newTestSession(t)

	h.engine.handleLogin(context.Background(), sess, loginBody(t, "u1", "pw"))
	lastReply[protocol.LoginResponse](t, tr, protocol.ServiceLogin)

	h.engine.handleLogin(context.Background(), sess, loginBody(t, "u1", "pw"))

	var second protocol.LoginResponse
	waitFor(t, func() bool {
		var replies []protocol.Envelope
		for _, env := range tr.written() {
			if env.Service == protocol.ServiceLogin {
				replies = append(replies, env)
			}
		}
		if len(replies) < 2 {
			return false
		}
		if err := json.Unmarshal(replies[1].Body, &second); err != nil {
			t.Fatalf("unmarshal second login reply: %v", err)
		}
		return true
	})
	if second.Error != protocol.CodeAlreadyLoggedIn {
		t.Fatalf("second login error = %v, want already logged in", second.Error)
	}

	// The live session survives the refused attempt untouched.
	if sess.State() != session.StateAlive {
		t.Errorf("Expected session still alive, got state %v", sess.State())
	}
	if got, ok := h.engine.registry.GetSession("u1"); !ok || got != sess {
		t.Error("Expected registry still holding the session")
	}
	if h.dir.routes["u1"] != sess.ID() {
		t.Error("Expected route still bound to the session")
	}
	if h.dir.incs != 1 {
		t.Errorf("Expected the counter untouched by the refused login, got %d increments", h.dir.incs)
	}
}

func TestHeartbeatRequiresAuth(t *testing.T) {
	h := newHarness(t)
	sess, tr := newTestSession(t)

	h.engine.handleHeartbeat(context.Background(), sess, []byte(`{}`))

	resp := lastReply[protocol.StatusResponse](t, tr, protocol.ServiceHeartbeat)
	if resp.Error != protocol.CodeNotAuthenticated {
		t.Fatalf("heartbeat error = %v, want not authenticated", resp.Error)
	}
}

func TestLogoutClearsRouteAndAcks(t *testing.T) {
	h := newHarness(t)
	sess, tr := newTestSession(t)
	h.engine.handleLogin(context.Background(), sess, loginBody(t, "u1", "pw"))
	lastReply[protocol.LoginResponse](t, tr, protocol.ServiceLogin)

	h.engine.handleLogout(context.Background(), sess, []byte(`{"uuid":"u1"}`))

	ack := lastReply[protocol.StatusResponse](t, tr, protocol.ServiceLogout)
	if ack.Error != protocol.CodeSuccess {
		t.Fatalf("logout ack error = %v", ack.Error)
	}
	waitFor(t, func() bool { return sess.State() == session.StateTerminated })

	if _, ok := h.engine.registry.GetSession("u1"); ok {
		t.Error("Expected registry entry removed on logout")
	}
	if len(h.dir.cleared) == 0 || h.dir.cleared[0] != [2]string{"u1", sess.ID()} {
		t.Errorf("Expected guarded route clear for u1, got %v", h.dir.cleared)
	}
	// The counter belongs to connection teardown. A handler-side decrement
	// would be doubled when the socket closes moments later.
	if h.dir.decs != 0 {
		t.Errorf("Expected the logout handler to leave the counter alone, got %d decrements", h.dir.decs)
	}
}

func TestFriendRequestToSelfRejected(t *testing.T) {
	h := newHarness(t)
	sess, tr := newTestSession(t)
	sess.BindUUID("u1")

	body, _ := json.Marshal(protocol.FriendRequestBody{DstUUID: "u1"})
	h.engine.handleFriendRequest(context.Background(), sess, body)

	resp := lastReply[protocol.FriendRequestResponse](t, tr, protocol.ServiceFriendRequest)
	if resp.Error != protocol.CodeFriendingYourself {
		t.Fatalf("friend request error = %v, want friending yourself", resp.Error)
	}
	if len(h.repo.friends) != 0 {
		t.Error("Expected no persisted request for a self-friend")
	}
}

func TestFriendRequestNotifiesLocalTarget(t *testing.T) {
	h := newHarness(t)
	src, srcTr := newTestSession(t)
	src.BindUUID("u1")
	dst, dstTr := newTestSession(t)
	dst.BindUUID("u2")
	h.engine.registry.CreateUserSession("u2", dst)

	body, _ := json.Marshal(protocol.FriendRequestBody{DstUUID: "u2", Message: "hi"})
	h.engine.handleFriendRequest(context.Background(), src, body)

	resp := lastReply[protocol.FriendRequestResponse](t, srcTr, protocol.ServiceFriendRequest)
	if resp.Error != protocol.CodeSuccess {
		t.Fatalf("friend request error = %v", resp.Error)
	}
	notice := lastReply[protocol.FriendRequestBody](t, dstTr, protocol.ServiceNotifyFriendRequest)
	if notice.SrcUUID != "u1" || notice.Message != "hi" {
		t.Errorf("Unexpected notification %+v", notice)
	}
	if len(h.repo.friends) != 1 {
		t.Errorf("Expected one persisted request, got %d", len(h.repo.friends))
	}
}

func TestTextChatAnswersSenderThenForwardsRemote(t *testing.T) {
	h := newHarness(t)
	sess, tr := newTestSession(t)
	sess.BindUUID("u1")
	h.dir.servers["u2"] = "chat-b"

	body, _ := json.Marshal(protocol.TextChatMsgRequest{
		DstUUID: "u2",
		Msgs: []protocol.TextMsgUnit{
			{MsgID: "m1", Content: "hello"},
			{MsgID: "m2", Content: "world"},
		},
	})
	h.engine.handleTextChatMsg(context.Background(), sess, body)

	resp := lastReply[protocol.TextChatMsgResponse](t, tr, protocol.ServiceTextChatMsg)
	if resp.Error != protocol.CodeSuccess {
		t.Fatalf("text chat error = %v", resp.Error)
	}
	if len(resp.Verified) != 2 || resp.Verified[0].VerifiedID != "v-m1" {
		t.Errorf("Unexpected verified ids %+v", resp.Verified)
	}

	// Exactly one forward, carrying the verified ids.
	if len(h.peers.textCalls) != 1 {
		t.Fatalf("Expected one remote forward, got %d", len(h.peers.textCalls))
	}
	fwd := h.peers.textCalls[0]
	if fwd.GetSrcUuid() != "u1" || fwd.GetDstUuid() != "u2" {
		t.Errorf("Unexpected forward endpoints %s -> %s", fwd.GetSrcUuid(), fwd.GetDstUuid())
	}
	if len(fwd.GetLists()) != 2 || fwd.GetLists()[1].GetMsgId() != "v-m2" {
		t.Errorf("Expected verified ids in forward, got %+v", fwd.GetLists())
	}
}

func TestTextChatLocalDeliveryCarriesVerifiedIDs(t *testing.T) {
	h := newHarness(t)
	src, _ := newTestSession(t)
	src.BindUUID("u1")
	dst, dstTr := newTestSession(t)
	dst.BindUUID("u2")
	h.engine.registry.CreateUserSession("u2", dst)

	body, _ := json.Marshal(protocol.TextChatMsgRequest{
		DstUUID: "u2",
		Msgs:    []protocol.TextMsgUnit{{MsgID: "m1", Content: "hello"}},
	})
	h.engine.handleTextChatMsg(context.Background(), src, body)

	notice := lastReply[protocol.NotifyTextChatMsg](t, dstTr, protocol.ServiceNotifyTextChatMsg)
	if len(notice.Msgs) != 1 || notice.Msgs[0].MsgID != "v-m1" {
		t.Errorf("Expected verified id in local delivery, got %+v", notice.Msgs)
	}
	if len(h.peers.textCalls) != 0 {
		t.Error("Expected no remote forward for a local target")
	}
}

func TestPullChatThreads(t *testing.T) {
	h := newHarness(t)
	sess, tr := newTestSession(t)
	sess.BindUUID("u1")

	h.engine.handlePullChatThreads(context.Background(), sess, []byte(`{"limit":10}`))

	resp := lastReply[protocol.ChatThreadsResponse](t, tr, protocol.ServicePullChatThreads)
	if resp.Error != protocol.CodeSuccess {
		t.Fatalf("threads error = %v", resp.Error)
	}
	if !resp.LoadMore || resp.NextThreadID != "t1" {
		t.Errorf("Expected cursor continuation, got %+v", resp)
	}
}

func TestDeliverKickEvictsLocalSession(t *testing.T) {
	h := newHarness(t)
	sess, tr := newTestSession(t)
	sess.BindUUID("u1")
	h.engine.registry.CreateUserSession("u1", sess)

	if code := h.engine.DeliverKick("u1"); code != protocol.CodeSuccess {
		t.Fatalf("DeliverKick() = %v", code)
	}

	lastReply[protocol.NotifyOffline](t, tr, protocol.ServiceNotifyOffline)
	waitFor(t, func() bool { return sess.State() == session.StateTerminated })

	// A kick for an absent user succeeds: there is nothing to evict.
	if code := h.engine.DeliverKick("ghost"); code != protocol.CodeSuccess {
		t.Errorf("DeliverKick(absent) = %v", code)
	}
}
