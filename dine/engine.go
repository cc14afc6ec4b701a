// Package dine is the AI response resolution and caching layer of the
// TableTalk client. It decides which upstream knowledge source answers a
// question about a restaurant, caches feature copy with a 24h TTL, degrades
// through cache -> chat provider -> facts provider -> deterministic template,
// and keeps the per-restaurant conversation durable across sessions.
package dine

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/tabletalk/tabletalk-go/dine/cache"
	"github.com/tabletalk/tabletalk-go/dine/conversation"
	"github.com/tabletalk/tabletalk-go/dine/provider"
	"github.com/tabletalk/tabletalk-go/internal/shardqueue"
	"github.com/tabletalk/tabletalk-go/kv"
)

// ChatProvider is the primary (conversational LLM) upstream.
type ChatProvider interface {
	Complete(ctx context.Context, req provider.ChatRequest) (string, error)
}

// FactsProvider is the secondary (restaurant-facts) upstream.
type FactsProvider interface {
	Query(ctx context.Context, req provider.FactsRequest) (*provider.FactsResponse, error)
}

// executor abstracts shardqueue.ShardExecutor for tests.
type executor interface {
	Submit(ctx context.Context, key string, job shardqueue.Job) error
	Stop()
}

// syncExecutor runs jobs inline. Used by WithSyncPersistence.
type syncExecutor struct{}

func (syncExecutor) Submit(ctx context.Context, _ string, job shardqueue.Job) error {
	if err := job.Run(ctx); err != nil {
		log.Warn().Err(err).Msg("persistence job failed")
	}
	return nil
}
func (syncExecutor) Stop() {}

// Engine orchestrates cache, classifier, providers, and conversation state.
// One Engine serves the whole app; it is safe for concurrent use across
// entities, and persistence for the same entity stays FIFO via the shard
// executor.
type Engine struct {
	chat  ChatProvider
	facts FactsProvider
	cache *cache.ResponseCache
	conv  *conversation.Store
	exec  executor

	locale string

	closedOnce uint32
}

// New constructs an Engine over the given providers and device store.
func New(chat ChatProvider, facts FactsProvider, store kv.Store, opts ...Option) *Engine {
	e := &Engine{
		chat:   chat,
		facts:  facts,
		cache:  cache.New(store),
		conv:   conversation.NewStore(store),
		locale: "en-US",
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			panic(err)
		}
	}
	if e.exec == nil {
		cfg, err := shardqueue.LoadConfig()
		if err != nil {
			cfg = shardqueue.Config{}
		}
		e.exec = shardqueue.NewShardExecutor(cfg)
	}
	return e
}

// Close stops the background persistence executor. Idempotent.
func (e *Engine) Close() error {
	if !atomic.CompareAndSwapUint32(&e.closedOnce, 0, 1) {
		return nil
	}
	e.exec.Stop()
	return nil
}

// WhyThisTable explains why a queued restaurant fits the diner. Soft
// feature: always returns usable copy, never an error.
func (e *Engine) WhyThisTable(ctx context.Context, rest RestaurantSnapshot, taste *TasteProfile) string {
	return e.resolve(ctx, rest.ID, KindWhyThisTable,
		func(ctx context.Context) (string, error) {
			text, err := e.chat.Complete(ctx, provider.ChatRequest{
				SystemPrompt: systemPromptFor(rest),
				Question:     whyThisTablePrompt(taste),
			})
			observeProviderCall("chat", err)
			return text, err
		},
		func() string { return fallbackWhyThisTable(rest, taste) },
	)
}

// StarterInvite produces the one-line invite shown on a table card.
func (e *Engine) StarterInvite(ctx context.Context, rest RestaurantSnapshot) string {
	return e.resolve(ctx, rest.ID, KindStarterInvite,
		func(ctx context.Context) (string, error) {
			text, err := e.chat.Complete(ctx, provider.ChatRequest{
				SystemPrompt: systemPromptFor(rest),
				Question:     starterInvitePrompt,
			})
			observeProviderCall("chat", err)
			return text, err
		},
		func() string { return fallbackStarterInvite(rest) },
	)
}

// PlanCopilot runs one plan-copilot action against the current draft.
func (e *Engine) PlanCopilot(ctx context.Context, rest RestaurantSnapshot, action PlanAction, draft PlanDraft) string {
	return e.resolve(ctx, rest.ID, action.kind(),
		func(ctx context.Context) (string, error) {
			text, err := e.chat.Complete(ctx, provider.ChatRequest{
				SystemPrompt: systemPromptFor(rest),
				Question:     planCopilotPrompt(action, draft),
			})
			observeProviderCall("chat", err)
			return text, err
		},
		func() string { return fallbackPlanCopilot(rest, action, draft) },
	)
}

// resolve is the shared path for every cache-backed feature: cache hit wins,
// otherwise compute via provider, cache asynchronously on success, degrade to
// the deterministic template on any failure. Provider errors never escape.
func (e *Engine) resolve(ctx context.Context, entityID string, kind QueryKind, compute func(context.Context) (string, error), fallback func() string) string {
	if v, ok := e.cache.Get(ctx, entityID, string(kind)); ok {
		cacheHitsTotal.WithLabelValues(string(kind)).Inc()
		return v
	}
	cacheMissesTotal.WithLabelValues(string(kind)).Inc()

	v, err := compute(ctx)
	if err != nil {
		log.Warn().Err(err).
			Str("entity_id", entityID).
			Str("kind", string(kind)).
			Msg("provider resolution failed, using template fallback")
		fallbacksTotal.WithLabelValues(string(kind)).Inc()
		return fallback()
	}

	e.persistAsync(entityID, shardqueue.JobFunc(func(jobCtx context.Context) error {
		return e.cache.Put(jobCtx, entityID, string(kind), v)
	}))
	return v
}

// persistAsync enqueues a fire-and-forget write keyed by entity, keeping
// same-entity writes ordered. Back-pressure is logged, never raised.
func (e *Engine) persistAsync(entityID string, job shardqueue.Job) {
	if err := e.exec.Submit(context.Background(), entityID, job); err != nil {
		log.Warn().Err(err).Str("entity_id", entityID).Msg("persistence enqueue failed")
	}
}

// ClearCache drops every cached feature response.
func (e *Engine) ClearCache(ctx context.Context) error {
	return e.cache.ClearAll(ctx)
}

// ClearEntityCache drops the cached responses for one restaurant.
func (e *Engine) ClearEntityCache(ctx context.Context, entityID string) error {
	return e.cache.ClearEntity(ctx, entityID)
}

// ClearConversation deletes the persisted conversation for one restaurant.
func (e *Engine) ClearConversation(ctx context.Context, entityID string) error {
	return e.conv.Clear(ctx, entityID)
}
