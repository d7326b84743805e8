package template

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/oraclewa/oraclewa/internal/shared/utils"
	"github.com/oraclewa/oraclewa/pkg/metrics"
)

// RenderedMessage is the façade output handed to the dispatch pipeline.
type RenderedMessage struct {
	Text      string `json:"text"`
	Source    Source `json:"source"`
	VariantID string `json:"variant_id,omitempty"`
}

// ChannelCapabilities describes what the target gateway instance can do,
// produced by the gateway adapter per provider.
type ChannelCapabilities struct {
	SupportsInteractiveAffordances bool
}

// ChannelMessage is a RenderedMessage plus the interactive extras for
// channels that support them. SupportsButtons false means text only.
type ChannelMessage struct {
	RenderedMessage
	SupportsButtons bool     `json:"supports_buttons"`
	Buttons         []Button `json:"buttons,omitempty"`
}

// Engine is the single render entry point. It owns the compiled-template
// cache, compiled wholesale from the store snapshot plus the embedded
// defaults and replaced as one unit on reload, never mutated key-by-key
// under concurrent access.
type Engine struct {
	store    *Store
	resolver *Resolver
	renderer *Renderer
	cache    atomic.Value // map[string]*CompiledTemplate keyed by body
}

func NewEngine(store *Store, resolver *Resolver, renderer *Renderer) *Engine {
	e := &Engine{
		store:    store,
		resolver: resolver,
		renderer: renderer,
	}
	e.rebuildCache()
	return e
}

// Reload re-reads the variant provider and rebuilds the compiled cache.
// Safe to run concurrently with in-flight renders.
func (e *Engine) Reload(ctx context.Context) error {
	if err := e.store.Reload(ctx); err != nil {
		return err
	}
	e.rebuildCache()
	return nil
}

// rebuildCache compiles every known template body into a fresh map and
// swaps it in. Bodies that fail to compile are logged and left out; a
// render hitting one later gets the parse error surfaced to the caller.
func (e *Engine) rebuildCache() {
	next := make(map[string]*CompiledTemplate)

	compile := func(event EventType, body string) {
		if _, ok := next[body]; ok {
			return
		}
		tpl, err := e.renderer.Compile(body)
		if err != nil {
			metrics.RecordTemplateParseFailure(string(event))
			utils.LogError("template body failed to compile", err, map[string]interface{}{
				"event": string(event),
			})
			return
		}
		next[body] = tpl
	}

	for event, body := range inlineFallbacks {
		compile(event, body)
	}
	for event, body := range globalDefaults {
		compile(event, body)
	}
	for _, set := range e.store.Snapshot() {
		for _, v := range set.Variants {
			compile(set.Event, v.Body)
		}
	}

	e.cache.Store(next)
}

// Render resolves a template source for (clientID, event) and substitutes
// the context into it.
func (e *Engine) Render(clientID string, event EventType, rctx *RenderContext) (*RenderedMessage, error) {
	res, err := e.resolver.Resolve(clientID, event)
	if err != nil {
		return nil, err
	}

	tpl, err := e.compiled(event, res.Variant.Body)
	if err != nil {
		return nil, err
	}

	text, err := tpl.Render(rctx)
	if err != nil {
		return nil, err
	}

	metrics.RecordRender(string(event), string(res.Source))
	if res.Source == SourceClient {
		metrics.RecordVariantSelection(clientID, string(event), res.Variant.ID)
	}
	utils.LogInfo("template rendered", map[string]interface{}{
		"client_id": clientID,
		"event":     string(event),
		"source":    string(res.Source),
		"variant":   res.Variant.ID,
	})

	return &RenderedMessage{
		Text:      text,
		Source:    res.Source,
		VariantID: res.Variant.ID,
	}, nil
}

// RenderForChannel renders and, when the channel supports interactive
// affordances, attaches the per-event button options. Channels without the
// capability get text only. Presentation decision, layered on top of Render.
func (e *Engine) RenderForChannel(clientID string, event EventType, rctx *RenderContext, caps ChannelCapabilities) (*ChannelMessage, error) {
	rendered, err := e.Render(clientID, event, rctx)
	if err != nil {
		return nil, err
	}

	msg := &ChannelMessage{RenderedMessage: *rendered}
	if caps.SupportsInteractiveAffordances {
		if affordance, ok := AffordanceFor(event); ok {
			msg.SupportsButtons = true
			msg.Buttons = affordance.Buttons
		}
	}
	return msg, nil
}

// RenderVariant renders one specific variant by id, bypassing randomness.
// Backs the preview/support tooling.
func (e *Engine) RenderVariant(clientID string, event EventType, variantID string, rctx *RenderContext) (*RenderedMessage, error) {
	set, err := e.store.GetVariantSet(clientID, event)
	if err != nil {
		return nil, err
	}

	variant, ok := NewSelector(nil).SelectByID(set, variantID)
	if !ok {
		return nil, fmt.Errorf("variant %q not found in %s/%s", variantID, clientID, event)
	}

	tpl, err := e.compiled(event, variant.Body)
	if err != nil {
		return nil, err
	}
	text, err := tpl.Render(rctx)
	if err != nil {
		return nil, err
	}

	return &RenderedMessage{Text: text, Source: SourceClient, VariantID: variant.ID}, nil
}

// compiled returns the cached compiled template for a body, or compiles it
// on the spot without touching the shared cache (bodies that entered after
// the last rebuild, or that failed to compile then).
func (e *Engine) compiled(event EventType, body string) (*CompiledTemplate, error) {
	cache := e.cache.Load().(map[string]*CompiledTemplate)
	if tpl, ok := cache[body]; ok {
		return tpl, nil
	}

	tpl, err := e.renderer.Compile(body)
	if err != nil {
		metrics.RecordTemplateParseFailure(string(event))
		return nil, err
	}
	return tpl, nil
}
