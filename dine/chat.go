package dine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tabletalk/tabletalk-go/dine/conversation"
	"github.com/tabletalk/tabletalk-go/dine/provider"
	"github.com/tabletalk/tabletalk-go/internal/shardqueue"
)

// ErrConversationClosed is returned when a Send outcome arrives after the
// conversation was closed (screen unmounted, entity switched). The late
// result is discarded, never applied.
var ErrConversationClosed = errors.New("conversation closed")

// ErrSendInFlight is returned when Send is called while a previous Send for
// the same conversation has not finished. The UI disables the composer
// during a send; this is the engine-side backstop.
var ErrSendInFlight = errors.New("send already in flight")

const chatFailureText = "Sorry - I couldn't reach my sources just now. Try again in a moment."

func welcomeText(rest RestaurantSnapshot) string {
	name := rest.Name
	if name == "" {
		name = "this spot"
	}
	return "Hi! Ask me anything about " + name + " - hours, menu, or whether it fits your crew."
}

// Conversation is one open chat session with a restaurant. It holds the
// working copy of the persisted record; the Engine writes it back after each
// answered turn.
type Conversation struct {
	engine *Engine
	rest   RestaurantSnapshot
	loc    *GeoPoint

	mu      sync.Mutex
	rec     *conversation.Record
	sending bool

	closed atomic.Bool
	seeded bool
}

// OpenConversation hydrates the persisted conversation for rest, or seeds a
// fresh one with a synthetic welcome message. The welcome message lives only
// in the UI transcript, never in the provider-facing history, and nothing is
// persisted until the first Send.
func (e *Engine) OpenConversation(ctx context.Context, rest RestaurantSnapshot, loc *GeoPoint) (*Conversation, error) {
	rec, err := e.conv.Load(ctx, rest.ID)
	if err != nil {
		return nil, err
	}
	c := &Conversation{engine: e, rest: rest, loc: loc}
	if rec == nil {
		c.seeded = true
		c.rec = &conversation.Record{
			Messages: []conversation.Message{newMessage(conversation.RoleAssistant, welcomeText(rest))},
		}
	} else {
		c.rec = rec
	}
	return c, nil
}

// Messages returns a copy of the UI transcript.
func (c *Conversation) Messages() []conversation.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]conversation.Message(nil), c.rec.Messages...)
}

// History returns a copy of the provider-facing turn history.
func (c *Conversation) History() []conversation.Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]conversation.Turn(nil), c.rec.History...)
}

// Seeded reports whether this session started without a persisted record.
func (c *Conversation) Seeded() bool { return c.seeded }

// Close marks the conversation stale. In-flight provider calls finish but
// their results are discarded rather than applied.
func (c *Conversation) Close() { c.closed.Store(true) }

// Send runs one chat turn: the user turn is appended before any network
// call, the chat provider is always consulted first, a factual question
// lets a successful facts answer supersede the chat answer, and only total
// failure of both providers surfaces the static error message. The updated
// record is persisted fire-and-forget after every produced answer.
func (c *Conversation) Send(ctx context.Context, question string) (conversation.Message, error) {
	if c.closed.Load() {
		return conversation.Message{}, ErrConversationClosed
	}

	c.mu.Lock()
	if c.sending {
		c.mu.Unlock()
		return conversation.Message{}, ErrSendInFlight
	}
	c.sending = true
	priorTurns := append([]conversation.Turn(nil), c.rec.History...)
	c.rec.History = append(c.rec.History, conversation.Turn{Role: conversation.RoleUser, Content: question})
	c.rec.Messages = append(c.rec.Messages, newMessage(conversation.RoleUser, question))
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.sending = false
		c.mu.Unlock()
	}()

	intent := Classify(question)

	text, err := c.engine.chat.Complete(ctx, provider.ChatRequest{
		SystemPrompt: systemPromptFor(c.rest),
		History:      toProviderTurns(priorTurns),
		Question:     question,
	})
	observeProviderCall("chat", err)

	var final string
	switch {
	case err != nil:
		// Chat is down; facts is the last resort.
		log.Warn().Err(err).Str("entity_id", c.rest.ID).Msg("chat provider failed, trying facts as last resort")
		fr, ferr := c.queryFacts(ctx, question)
		if ferr != nil {
			log.Warn().Err(ferr).Str("entity_id", c.rest.ID).Msg("facts provider failed, surfacing transcript error")
			return c.failTurn()
		}
		final = fr.Text
	default:
		final = text
		if intent == IntentFactual {
			// A factual question prefers the authoritative source, but a
			// facts failure never discards the answer already in hand.
			fr, ferr := c.queryFacts(ctx, question)
			if ferr != nil {
				log.Debug().Err(ferr).Str("entity_id", c.rest.ID).Msg("facts supersession failed, keeping chat answer")
			} else {
				final = fr.Text
			}
		}
	}

	if c.closed.Load() {
		return conversation.Message{}, ErrConversationClosed
	}

	msg := newMessage(conversation.RoleAssistant, final)
	c.mu.Lock()
	c.rec.History = append(c.rec.History, conversation.Turn{Role: conversation.RoleAssistant, Content: final})
	c.rec.Messages = append(c.rec.Messages, msg)
	snapshot := c.rec.Clone()
	c.mu.Unlock()

	c.persist(snapshot)
	return msg, nil
}

// failTurn appends the static error message to the transcript only; the
// persisted history ends with the user's own turn.
func (c *Conversation) failTurn() (conversation.Message, error) {
	if c.closed.Load() {
		return conversation.Message{}, ErrConversationClosed
	}
	msg := newMessage(conversation.RoleAssistant, chatFailureText)
	c.mu.Lock()
	c.rec.Messages = append(c.rec.Messages, msg)
	snapshot := c.rec.Clone()
	c.mu.Unlock()

	c.persist(snapshot)
	return msg, nil
}

func (c *Conversation) queryFacts(ctx context.Context, question string) (*provider.FactsResponse, error) {
	req := provider.FactsRequest{
		Query:   factsQueryFor(c.rest, question),
		Context: provider.FactsContext{Locale: c.engine.locale},
	}
	if c.loc != nil {
		req.Context.Latitude = &c.loc.Latitude
		req.Context.Longitude = &c.loc.Longitude
	}
	fr, err := c.engine.facts.Query(ctx, req)
	observeProviderCall("facts", err)
	return fr, err
}

func (c *Conversation) persist(snapshot *conversation.Record) {
	entityID := c.rest.ID
	c.engine.persistAsync(entityID, shardqueue.JobFunc(func(jobCtx context.Context) error {
		return c.engine.conv.Save(jobCtx, entityID, snapshot)
	}))
}

func toProviderTurns(turns []conversation.Turn) []provider.Turn {
	out := make([]provider.Turn, 0, len(turns))
	for _, t := range turns {
		out = append(out, provider.Turn{Role: string(t.Role), Content: t.Content})
	}
	return out
}

func newMessage(role conversation.Role, text string) conversation.Message {
	return conversation.Message{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		Timestamp: time.Now(),
	}
}
