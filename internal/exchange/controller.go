// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package exchange drives the question/answer cycle of a conversation.
//
// The controller applies the user's message optimistically, calls the
// answering service, and reconciles the conversation on the outcome: commit
// the answer on success, roll back to the pre-submit state on failure. It
// holds no UI state; the TUI layer wraps its transitions in commands.
package exchange

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/jeranaias/regchat-tui/internal/api"
	"github.com/jeranaias/regchat-tui/internal/model"
	"github.com/jeranaias/regchat-tui/internal/nav"
)

// =============================================================================
// DEPENDENCIES
// =============================================================================

// Store is the persistence surface the controller needs.
type Store interface {
	Register(sess model.ChatSession) error
	Find(id string) (model.ChatSession, bool)
	Messages(sessionID string) []model.Message
	SaveMessages(sessionID string, msgs []model.Message) error
	DeleteMessages(sessionID string) error
}

// =============================================================================
// STATUS
// =============================================================================

// Status is the controller's submission state.
type Status int

const (
	// Idle means no exchange is in flight; submissions are accepted.
	Idle Status = iota
	// Submitting means an exchange is in flight; submissions are refused.
	Submitting
)

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller manages one conversation's state and its exchanges with the
// answering service. It is not safe for concurrent use; all transitions run
// on the UI's update loop.
type Controller struct {
	store Store
	asker api.Asker

	sessionID  string
	registered bool
	messages   []model.Message
	status     Status
}

// NewController creates a controller with no conversation loaded.
func NewController(store Store, asker api.Asker) *Controller {
	return &Controller{store: store, asker: asker}
}

// LoadSession points the controller at an existing session, reading its
// message log from the store. An unknown id yields an empty conversation
// under that id.
func (c *Controller) LoadSession(id string) {
	c.sessionID = id
	c.messages = c.store.Messages(id)
	_, c.registered = c.store.Find(id)
	c.status = Idle
}

// NewConversation resets the controller to a blank, unregistered chat. A
// session id is minted lazily on the first submission.
func (c *Controller) NewConversation() {
	c.sessionID = ""
	c.registered = false
	c.messages = nil
	c.status = Idle
}

// SessionID returns the current session id, empty before the first
// submission of a new conversation.
func (c *Controller) SessionID() string {
	return c.sessionID
}

// Registered reports whether the session appears in the registry.
func (c *Controller) Registered() bool {
	return c.registered
}

// Status returns the submission state.
func (c *Controller) Status() Status {
	return c.status
}

// Messages returns the conversation as currently displayed.
func (c *Controller) Messages() []model.Message {
	return c.messages
}

// =============================================================================
// SUBMISSION
// =============================================================================

// Pending is an in-flight exchange. Begin creates it on the update loop;
// Ask runs off-loop; Complete or Fail resolves it back on the loop.
type Pending struct {
	SessionID string
	Question  string

	userMsg  model.Message
	snapshot []model.Message
	request  api.AskRequest
}

// Begin validates and applies a submission optimistically. Returns nil when
// the submission is refused: blank input after trimming, or an exchange
// already in flight. Refusals are silent; nothing changes.
//
// On acceptance the user's message is appended and persisted, a session id
// is minted if the conversation has none, and the controller enters
// Submitting until the pending exchange resolves.
func (c *Controller) Begin(input string) *Pending {
	if c.status != Idle {
		return nil
	}
	question := strings.TrimSpace(input)
	if question == "" {
		return nil
	}

	if c.sessionID == "" {
		c.sessionID = model.NewSessionID()
	}

	snapshot := model.CloneMessages(c.messages)
	userMsg := model.NewUserMessage(question)
	c.messages = append(c.messages, userMsg)
	c.persist()
	c.status = Submitting

	// History carries the whole conversation, the new question as its
	// final entry; the service expects that shape.
	history := make([]api.HistoryEntry, len(c.messages))
	for i, m := range c.messages {
		history[i] = api.HistoryEntry{Role: string(m.Role), Content: m.Content}
	}

	return &Pending{
		SessionID: c.sessionID,
		Question:  question,
		userMsg:   userMsg,
		snapshot:  snapshot,
		request: api.AskRequest{
			SessionID: c.sessionID,
			Question:  question,
			History:   history,
		},
	}
}

// Ask performs the service call. Safe to run off the update loop; it
// touches no controller state.
func (c *Controller) Ask(ctx context.Context, p *Pending) (*api.AskResponse, error) {
	return c.asker.Ask(ctx, p.request)
}

// =============================================================================
// RESOLUTION
// =============================================================================

// Outcome describes the state changes a resolution produced, for the UI to
// act on.
type Outcome struct {
	// Registered is true when this resolution added the session to the
	// registry, i.e. the conversation's first successful exchange.
	Registered bool
	// Session is the registry entry, set when Registered.
	Session model.ChatSession
	// Navigate is the path the UI should move to, empty for none.
	Navigate string
	// Notification is an error message to surface, empty on success.
	Notification string
}

// Complete commits a successful exchange: the answer is appended after the
// user's message and persisted under the session that asked, and a
// conversation's first success registers the session under a name derived
// from its first question.
//
// The user may have navigated away while the answer was in flight. A late
// resolution still commits to the store under the pending session id, but
// leaves the displayed conversation untouched and triggers no navigation.
func (c *Controller) Complete(p *Pending, resp *api.AskResponse) Outcome {
	live := p.SessionID == c.sessionID
	var msgs []model.Message
	if live {
		c.status = Idle
		msgs = c.messages
	} else {
		msgs = c.store.Messages(p.SessionID)
	}

	// The optimistic insert normally still holds the user's message, but
	// reconcile by id rather than assume: drop any copy, then re-append
	// in order ahead of the answer.
	base := msgs[:0:0]
	for _, m := range msgs {
		if m.ID != p.userMsg.ID {
			base = append(base, m)
		}
	}
	assistant := model.NewAssistantMessage(resp.Answer, resp.HighlightedContexts)
	msgs = append(base, p.userMsg, assistant)
	if err := c.store.SaveMessages(p.SessionID, msgs); err != nil {
		log.Error().Err(err).Str("session", p.SessionID).Msg("failed to persist messages")
	}
	if live {
		c.messages = msgs
	}

	var out Outcome
	if _, exists := c.store.Find(p.SessionID); !exists {
		sess := model.NewChatSession(p.SessionID, p.Question)
		if err := c.store.Register(sess); err != nil {
			log.Error().Err(err).Str("session", p.SessionID).Msg("failed to register session")
		} else {
			out.Registered = true
			out.Session = sess
			if live {
				c.registered = true
				out.Navigate = nav.ChatPath(p.SessionID)
			}
		}
	}
	return out
}

// Fail rolls a failed exchange back: the conversation is restored to its
// pre-submit snapshot and the failure is surfaced as a notification. An
// unregistered conversation stays unregistered, so a first question that
// fails leaves no trace in the sidebar.
func (c *Controller) Fail(p *Pending, err error) Outcome {
	// A late failure rolls back the session that asked; a conversation the
	// user has since navigated to is left alone.
	if p.SessionID == c.sessionID {
		c.status = Idle
		c.messages = p.snapshot
	}
	if len(p.snapshot) == 0 {
		// The optimistic write created a log for a conversation that no
		// longer has messages; remove it so no orphan file lingers.
		if derr := c.store.DeleteMessages(p.SessionID); derr != nil {
			log.Error().Err(derr).Str("session", p.SessionID).Msg("failed to remove rolled-back message log")
		}
	} else if serr := c.store.SaveMessages(p.SessionID, p.snapshot); serr != nil {
		log.Error().Err(serr).Str("session", p.SessionID).Msg("failed to persist messages")
	}

	log.Warn().Err(err).Str("session", p.SessionID).Msg("exchange failed, rolled back")

	return Outcome{Notification: notificationFor(err)}
}

// notificationFor maps an exchange error to user-facing text.
func notificationFor(err error) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return apiErr.UserMessage()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "The request timed out. Please try again."
	}
	return api.GenericFailureMessage
}

// persist writes the message log through to the store. Empty logs are not
// written.
func (c *Controller) persist() {
	if len(c.messages) == 0 {
		return
	}
	if err := c.store.SaveMessages(c.sessionID, c.messages); err != nil {
		log.Error().Err(err).Str("session", c.sessionID).Msg("failed to persist messages")
	}
}
