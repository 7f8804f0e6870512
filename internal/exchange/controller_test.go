// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package exchange

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"testing"

	"github.com/jeranaias/regchat-tui/internal/api"
	"github.com/jeranaias/regchat-tui/internal/model"
)

// =============================================================================
// FAKES
// =============================================================================

// fakeStore is an in-memory Store.
type fakeStore struct {
	registry []model.ChatSession
	logs     map[string][]model.Message
}

func newFakeStore() *fakeStore {
	return &fakeStore{logs: make(map[string][]model.Message)}
}

func (f *fakeStore) Register(sess model.ChatSession) error {
	f.registry = append([]model.ChatSession{sess}, f.registry...)
	return nil
}

func (f *fakeStore) Find(id string) (model.ChatSession, bool) {
	for _, s := range f.registry {
		if s.ID == id {
			return s, true
		}
	}
	return model.ChatSession{}, false
}

func (f *fakeStore) Messages(sessionID string) []model.Message {
	return model.CloneMessages(f.logs[sessionID])
}

func (f *fakeStore) SaveMessages(sessionID string, msgs []model.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	f.logs[sessionID] = model.CloneMessages(msgs)
	return nil
}

func (f *fakeStore) DeleteMessages(sessionID string) error {
	delete(f.logs, sessionID)
	return nil
}

// fakeAsker returns a canned response or error.
type fakeAsker struct {
	resp    *api.AskResponse
	err     error
	lastReq api.AskRequest
	calls   int
}

func (f *fakeAsker) Ask(_ context.Context, req api.AskRequest) (*api.AskResponse, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func newController(asker *fakeAsker) (*Controller, *fakeStore) {
	store := newFakeStore()
	c := NewController(store, asker)
	c.NewConversation()
	return c, store
}

// runExchange drives a full submit/resolve cycle the way the UI does.
func runExchange(t *testing.T, c *Controller, input string) Outcome {
	t.Helper()
	p := c.Begin(input)
	if p == nil {
		t.Fatal("Begin refused the submission")
	}
	resp, err := c.Ask(context.Background(), p)
	if err != nil {
		return c.Fail(p, err)
	}
	return c.Complete(p, resp)
}

// =============================================================================
// SUBMISSION GATING
// =============================================================================

func TestBeginRejectsBlankInput(t *testing.T) {
	c, store := newController(&fakeAsker{})

	for _, input := range []string{"", "   ", "\n\t  "} {
		if p := c.Begin(input); p != nil {
			t.Errorf("Begin(%q) should be refused", input)
		}
	}
	if len(c.Messages()) != 0 {
		t.Error("refused submissions must not change the conversation")
	}
	if len(store.logs) != 0 {
		t.Error("refused submissions must not persist anything")
	}
}

func TestBeginRejectsWhileSubmitting(t *testing.T) {
	c, _ := newController(&fakeAsker{resp: &api.AskResponse{Answer: "a"}})

	p := c.Begin("first question")
	if p == nil {
		t.Fatal("first Begin refused")
	}
	if c.Status() != Submitting {
		t.Error("controller should be Submitting")
	}
	if second := c.Begin("second question"); second != nil {
		t.Error("Begin during an in-flight exchange should be refused")
	}
	if got := len(c.Messages()); got != 1 {
		t.Errorf("conversation has %d messages, want 1", got)
	}
}

func TestBeginTrimsQuestion(t *testing.T) {
	c, _ := newController(&fakeAsker{resp: &api.AskResponse{Answer: "a"}})

	p := c.Begin("  what is required?  \n")
	if p == nil {
		t.Fatal("Begin refused")
	}
	if p.Question != "what is required?" {
		t.Errorf("question = %q", p.Question)
	}
	if c.Messages()[0].Content != "what is required?" {
		t.Errorf("optimistic message content = %q", c.Messages()[0].Content)
	}
}

// Optimistic insert: exactly one user message appears before the call
// resolves.
func TestOptimisticInsert(t *testing.T) {
	c, store := newController(&fakeAsker{})

	p := c.Begin("what is required?")
	if p == nil {
		t.Fatal("Begin refused")
	}

	msgs := c.Messages()
	if len(msgs) != 1 {
		t.Fatalf("got %d messages before resolution, want 1", len(msgs))
	}
	if msgs[0].Role != model.RoleUser {
		t.Errorf("role = %s, want user", msgs[0].Role)
	}
	// Write-through: the optimistic state is already persisted.
	if got := store.logs[c.SessionID()]; len(got) != 1 {
		t.Errorf("persisted log has %d messages, want 1", len(got))
	}
}

func TestBeginMintsSessionIDLazily(t *testing.T) {
	c, _ := newController(&fakeAsker{})

	if c.SessionID() != "" {
		t.Fatal("new conversation should have no session id")
	}
	p := c.Begin("q")
	if p == nil {
		t.Fatal("Begin refused")
	}
	if !model.IsSessionID(c.SessionID()) {
		t.Errorf("minted id %q is not a session id", c.SessionID())
	}
	if p.SessionID != c.SessionID() {
		t.Error("pending exchange should carry the minted id")
	}
}

// =============================================================================
// REQUEST SHAPE
// =============================================================================

func TestHistoryIncludesQuestionAsFinalEntry(t *testing.T) {
	asker := &fakeAsker{resp: &api.AskResponse{Answer: "first answer"}}
	c, _ := newController(asker)

	runExchange(t, c, "first question")
	runExchange(t, c, "second question")

	req := asker.lastReq
	if req.Question != "second question" {
		t.Errorf("question = %q", req.Question)
	}
	// Full conversation so far: user, assistant, then the new question.
	if len(req.History) != 3 {
		t.Fatalf("history has %d entries, want 3", len(req.History))
	}
	last := req.History[len(req.History)-1]
	if last.Role != "user" || last.Content != "second question" {
		t.Errorf("final history entry = %+v, want the new question", last)
	}
	if req.History[1].Role != "assistant" || req.History[1].Content != "first answer" {
		t.Errorf("history[1] = %+v", req.History[1])
	}
}

// =============================================================================
// SUCCESS
// =============================================================================

// Success: pre-submission list plus exactly one user and one assistant
// message, in order, no duplicates.
func TestCompleteAppendsPair(t *testing.T) {
	asker := &fakeAsker{resp: &api.AskResponse{Answer: "answer one"}}
	c, store := newController(asker)

	before := model.CloneMessages(c.Messages())
	runExchange(t, c, "question one")

	msgs := c.Messages()
	if len(msgs) != len(before)+2 {
		t.Fatalf("got %d messages, want %d", len(msgs), len(before)+2)
	}
	u, a := msgs[len(msgs)-2], msgs[len(msgs)-1]
	if u.Role != model.RoleUser || u.Content != "question one" {
		t.Errorf("user message = %+v", u)
	}
	if a.Role != model.RoleAssistant || a.Content != "answer one" {
		t.Errorf("assistant message = %+v", a)
	}

	seen := make(map[string]int)
	for _, m := range msgs {
		seen[m.ID]++
	}
	for id, n := range seen {
		if n > 1 {
			t.Errorf("message id %s appears %d times", id, n)
		}
	}

	if got := store.logs[c.SessionID()]; len(got) != len(msgs) {
		t.Errorf("persisted log has %d messages, want %d", len(got), len(msgs))
	}
	if c.Status() != Idle {
		t.Error("controller should return to Idle")
	}
}

func TestFirstSuccessRegistersSession(t *testing.T) {
	asker := &fakeAsker{resp: &api.AskResponse{Answer: "a"}}
	c, store := newController(asker)

	out := runExchange(t, c, "question")

	if !out.Registered {
		t.Fatal("first success should register the session")
	}
	if len(store.registry) != 1 || store.registry[0].ID != c.SessionID() {
		t.Errorf("registry = %+v", store.registry)
	}
	if out.Navigate != "/chat/"+c.SessionID() {
		t.Errorf("navigate = %q", out.Navigate)
	}
	if !c.Registered() {
		t.Error("controller should know it is registered")
	}

	// The second success must not register again.
	out = runExchange(t, c, "followup")
	if out.Registered || len(store.registry) != 1 {
		t.Error("only the first success registers")
	}
}

// =============================================================================
// FAILURE
// =============================================================================

// Rollback: the list after failure is deep-equal to the list before submit.
func TestFailRestoresSnapshot(t *testing.T) {
	asker := &fakeAsker{resp: &api.AskResponse{Answer: "a"}}
	c, _ := newController(asker)
	runExchange(t, c, "established question")

	before := model.CloneMessages(c.Messages())
	asker.resp = nil
	asker.err = &api.APIError{Status: http.StatusInternalServerError, Message: "boom"}

	out := runExchange(t, c, "doomed question")

	if !reflect.DeepEqual(c.Messages(), before) {
		t.Errorf("rollback mismatch:\n got %+v\nwant %+v", c.Messages(), before)
	}
	if out.Notification == "" {
		t.Error("failure should surface a notification")
	}
	if c.Status() != Idle {
		t.Error("controller should return to Idle after failure")
	}
}

// Registration iff first exchange succeeds.
func TestFailedFirstExchangeLeavesNoTrace(t *testing.T) {
	asker := &fakeAsker{err: errors.New("connection refused")}
	c, store := newController(asker)

	out := runExchange(t, c, "question")

	if len(store.registry) != 0 {
		t.Errorf("registry should stay empty, got %+v", store.registry)
	}
	if len(c.Messages()) != 0 {
		t.Errorf("conversation should be empty, got %d messages", len(c.Messages()))
	}
	if _, ok := store.logs[c.SessionID()]; ok {
		t.Error("rolled-back log should be removed from the store")
	}
	if out.Registered || out.Navigate != "" {
		t.Errorf("outcome = %+v, want no registration or navigation", out)
	}
}

func TestNotificationPrefersServerMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "server message",
			err:  &api.APIError{Status: 500, Message: "upstream timeout"},
			want: "upstream timeout",
		},
		{
			name: "no message",
			err:  &api.APIError{Status: 502},
			want: api.GenericFailureMessage,
		},
		{
			name: "transport error",
			err:  errors.New("dial tcp: connection refused"),
			want: api.GenericFailureMessage,
		},
		{
			name: "timeout",
			err:  context.DeadlineExceeded,
			want: "timed out",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newController(&fakeAsker{err: tt.err})
			out := runExchange(t, c, "q")
			if !strings.Contains(out.Notification, tt.want) {
				t.Errorf("notification = %q, want it to contain %q", out.Notification, tt.want)
			}
		})
	}
}

// =============================================================================
// CONCRETE SCENARIOS
// =============================================================================

const samaQuestion = "What are the key cybersecurity requirements for financial institutions regulated by SAMA?"

func TestScenarioFirstQuestionSucceeds(t *testing.T) {
	asker := &fakeAsker{resp: &api.AskResponse{
		Answer: "SAMA's Cyber Security Framework requires...",
		HighlightedContexts: []model.Citation{
			{Source: "SAMA CSF", Page: 12},
		},
	}}
	c, store := newController(asker)

	runExchange(t, c, samaQuestion)

	if len(store.registry) != 1 {
		t.Fatalf("registry has %d entries, want 1", len(store.registry))
	}
	wantName := string([]rune(samaQuestion)[:35]) + "..."
	if store.registry[0].Name != wantName {
		t.Errorf("session name = %q, want %q", store.registry[0].Name, wantName)
	}

	msgs := store.logs[c.SessionID()]
	if len(msgs) != 2 {
		t.Fatalf("log has %d messages, want 2", len(msgs))
	}
	if msgs[0].Role != model.RoleUser || msgs[1].Role != model.RoleAssistant {
		t.Errorf("log roles = %s, %s", msgs[0].Role, msgs[1].Role)
	}
	if len(msgs[1].Citations) != 1 || msgs[1].Citations[0].Source != "SAMA CSF" {
		t.Errorf("assistant citations = %+v", msgs[1].Citations)
	}
}

func TestScenarioFirstQuestionFails(t *testing.T) {
	asker := &fakeAsker{err: &api.APIError{
		Status:  http.StatusInternalServerError,
		Message: "upstream timeout",
	}}
	c, store := newController(asker)

	out := runExchange(t, c, samaQuestion)

	if len(store.registry) != 0 {
		t.Errorf("registry should be empty, got %+v", store.registry)
	}
	if got := store.logs[c.SessionID()]; len(got) != 0 {
		t.Errorf("message log should be empty, got %d entries", len(got))
	}
	if !strings.Contains(out.Notification, "upstream timeout") {
		t.Errorf("notification = %q, want it to contain the server message", out.Notification)
	}
}

// =============================================================================
// SESSION LOADING
// =============================================================================

func TestLoadSessionReadsLog(t *testing.T) {
	store := newFakeStore()
	sess := model.NewChatSession("session_1_aaaaaaa", "old question")
	store.Register(sess)
	store.logs[sess.ID] = []model.Message{
		model.NewUserMessage("old question"),
		model.NewAssistantMessage("old answer", nil),
	}

	c := NewController(store, &fakeAsker{})
	c.LoadSession(sess.ID)

	if len(c.Messages()) != 2 {
		t.Errorf("got %d messages, want 2", len(c.Messages()))
	}
	if !c.Registered() {
		t.Error("loaded session should be registered")
	}
}

func TestLoadSessionUnknownIDYieldsEmpty(t *testing.T) {
	c := NewController(newFakeStore(), &fakeAsker{})
	c.LoadSession("session_9_zzzzzzz")

	if len(c.Messages()) != 0 {
		t.Error("unknown session should load as empty")
	}
	if c.Registered() {
		t.Error("unknown session is not registered")
	}
	if c.SessionID() != "session_9_zzzzzzz" {
		t.Errorf("session id = %q", c.SessionID())
	}
}

// =============================================================================
// RESOLUTION AFTER NAVIGATION
// =============================================================================

// A response that lands after the user started a fresh chat must commit
// under the session that asked, not pollute the blank conversation.
func TestLateCompleteAfterNewConversation(t *testing.T) {
	asker := &fakeAsker{resp: &api.AskResponse{Answer: "late answer"}}
	c, store := newController(asker)

	p := c.Begin("first question")
	if p == nil {
		t.Fatal("Begin refused the submission")
	}
	asked := p.SessionID

	c.NewConversation()

	resp, err := c.Ask(context.Background(), p)
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	out := c.Complete(p, resp)

	if len(c.Messages()) != 0 {
		t.Errorf("blank conversation picked up %d messages", len(c.Messages()))
	}
	if c.SessionID() != "" {
		t.Errorf("blank conversation got session id %q", c.SessionID())
	}
	if out.Navigate != "" {
		t.Errorf("late completion must not navigate, got %q", out.Navigate)
	}

	if !model.IsSessionID(asked) {
		t.Fatalf("pending session id = %q", asked)
	}
	if len(store.registry) != 1 || store.registry[0].ID != asked {
		t.Fatalf("registry = %+v, want the asking session", store.registry)
	}
	if store.registry[0].Path != "/chat/"+asked {
		t.Errorf("registry path = %q", store.registry[0].Path)
	}
	if got := store.logs[asked]; len(got) != 2 {
		t.Errorf("asking session's log has %d messages, want 2", len(got))
	}
	if _, ok := store.logs[""]; ok {
		t.Error("a log was persisted under an empty session id")
	}
}

// A response that lands after switching to another session must not leak
// into that session's conversation.
func TestLateCompleteAfterSwitchingSession(t *testing.T) {
	asker := &fakeAsker{resp: &api.AskResponse{Answer: "late answer"}}
	c, store := newController(asker)

	other := model.NewChatSession("session_1_aaaaaaa", "old question")
	store.Register(other)
	store.logs[other.ID] = []model.Message{
		model.NewUserMessage("old question"),
		model.NewAssistantMessage("old answer", nil),
	}

	p := c.Begin("new question")
	if p == nil {
		t.Fatal("Begin refused the submission")
	}
	asked := p.SessionID

	c.LoadSession(other.ID)
	before := model.CloneMessages(c.Messages())

	resp, err := c.Ask(context.Background(), p)
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	c.Complete(p, resp)

	if !reflect.DeepEqual(c.Messages(), before) {
		t.Errorf("displayed conversation changed:\n got %+v\nwant %+v", c.Messages(), before)
	}
	if !reflect.DeepEqual(store.logs[other.ID], before) {
		t.Errorf("other session's log changed: %+v", store.logs[other.ID])
	}
	if got := store.logs[asked]; len(got) != 2 {
		t.Errorf("asking session's log has %d messages, want 2", len(got))
	}
	if _, ok := store.Find(asked); !ok {
		t.Error("asking session should be registered")
	}
}

// A failure that lands after navigation rolls back the session that asked
// and leaves the one on screen alone.
func TestLateFailLeavesCurrentConversationAlone(t *testing.T) {
	asker := &fakeAsker{err: errors.New("connection refused")}
	c, store := newController(asker)

	other := model.NewChatSession("session_1_aaaaaaa", "old question")
	store.Register(other)
	store.logs[other.ID] = []model.Message{
		model.NewUserMessage("old question"),
		model.NewAssistantMessage("old answer", nil),
	}

	p := c.Begin("doomed question")
	if p == nil {
		t.Fatal("Begin refused the submission")
	}
	asked := p.SessionID

	c.LoadSession(other.ID)
	before := model.CloneMessages(c.Messages())

	_, err := c.Ask(context.Background(), p)
	out := c.Fail(p, err)

	if !reflect.DeepEqual(c.Messages(), before) {
		t.Errorf("displayed conversation changed:\n got %+v\nwant %+v", c.Messages(), before)
	}
	if _, ok := store.logs[asked]; ok {
		t.Error("rolled-back log should be removed from the store")
	}
	if _, ok := store.Find(asked); ok {
		t.Error("failed first exchange must not register the session")
	}
	if out.Notification == "" {
		t.Error("failure should surface a notification")
	}
}

// Navigating away and back before the answer lands: the completion applies
// to the on-screen conversation without duplicating the user's message.
func TestCompleteAfterReturningToPendingSession(t *testing.T) {
	asker := &fakeAsker{resp: &api.AskResponse{Answer: "answer"}}
	c, store := newController(asker)

	p := c.Begin("question")
	if p == nil {
		t.Fatal("Begin refused the submission")
	}
	asked := p.SessionID

	c.NewConversation()
	c.LoadSession(asked)

	resp, err := c.Ask(context.Background(), p)
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	out := c.Complete(p, resp)

	msgs := c.Messages()
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want user+assistant", len(msgs))
	}
	if msgs[0].Role != model.RoleUser || msgs[1].Role != model.RoleAssistant {
		t.Errorf("roles = %s, %s", msgs[0].Role, msgs[1].Role)
	}
	if out.Navigate != "/chat/"+asked {
		t.Errorf("navigate = %q", out.Navigate)
	}
	if len(store.logs[asked]) != 2 {
		t.Errorf("persisted log has %d messages", len(store.logs[asked]))
	}
}
