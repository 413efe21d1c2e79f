// Package engine resolves course-assistant intents against the knowledge
// graph: a table of declarative path queries and custom handlers, shared
// entity resolvers and a page cursor carried through conversational context.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sort"
	"time"

	"github.com/preetimant/coursesensei/pkg/graph"
)

// Request is one fulfillment call.
type Request struct {
	Intent   string
	Params   map[string]any
	Contexts []Context
}

// Response is the fulfillment answer. Contexts is empty unless the answer is
// a page of a list.
type Response struct {
	Text     string
	Contexts []Context
	Outcome  Outcome
}

// Config configures New. A nil Intents table selects DefaultIntents.
type Config struct {
	Intents             map[string]Query
	CourseCacheSize     int
	InstructorCacheSize int
	Index               ResolutionIndex
	Logger              *slog.Logger
}

// Engine dispatches intents. It is safe for concurrent use.
type Engine struct {
	graph     *graph.Graph
	resolvers *Resolvers
	table     map[string]Query
	paths     map[string]Path
	logger    *slog.Logger
}

// New builds an engine over g. Every path in the table is compiled against the
// graph's schema, so a misspelt relation fails here rather than per request.
func New(g *graph.Graph, cfg Config) (*Engine, error) {
	if g == nil {
		return nil, fmt.Errorf("engine: nil graph")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	table := cfg.Intents
	if table == nil {
		table = DefaultIntents()
	}

	resolvers, err := NewResolvers(g, ResolverConfig{
		CourseCacheSize:     cfg.CourseCacheSize,
		InstructorCacheSize: cfg.InstructorCacheSize,
		Index:               cfg.Index,
		Logger:              cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	e := &Engine{
		graph:     g,
		resolvers: resolvers,
		table:     table,
		paths:     make(map[string]Path),
		logger:    cfg.Logger,
	}
	if err := e.compile(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) compile() error {
	add := func(intent string, root graph.NodeType, dotted string) error {
		if _, done := e.paths[dotted]; done {
			return nil
		}
		p, err := CompilePath(e.graph.Schema(), root, dotted)
		if err != nil {
			return fmt.Errorf("engine: intent %s: %w", intent, err)
		}
		e.paths[dotted] = p
		return nil
	}

	for intent, q := range e.table {
		switch q := q.(type) {
		case Standard:
			if err := add(intent, graph.NodeCourse, q.Path); err != nil {
				return err
			}
		case List:
			if err := add(intent, graph.NodeCourse, q.Path); err != nil {
				return err
			}
			if _, ok := formatters[q.Format]; !ok {
				return fmt.Errorf("engine: intent %s: unknown formatter %q", intent, q.Format)
			}
		case Custom:
			if q.Handler == HandlerNextPage || q.Handler == HandlerPreviousPage {
				continue
			}
			if _, ok := customHandlers[q.Handler]; !ok {
				return fmt.Errorf("engine: intent %s: unknown handler %q", intent, q.Handler)
			}
		default:
			return fmt.Errorf("engine: intent %s: unsupported query %T", intent, q)
		}
	}
	for root, paths := range customPaths {
		for _, p := range paths {
			if err := add("custom", root, p); err != nil {
				return err
			}
		}
	}
	return nil
}

// Intents returns the supported intent names in sorted order.
func (e *Engine) Intents() []string {
	names := make([]string, 0, len(e.table))
	for name := range e.table {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Graph returns the knowledge graph the engine reads.
func (e *Engine) Graph() *graph.Graph {
	return e.graph
}

// Resolvers returns the engine's entity resolvers.
func (e *Engine) Resolvers() *Resolvers {
	return e.resolvers
}

// Handle answers one request. It never fails: unknown intents get the
// unsupported message and faults the fixed apology.
func (e *Engine) Handle(ctx context.Context, req Request) (resp Response) {
	start := time.Now()
	label := req.Intent
	if _, ok := e.table[label]; !ok {
		label = "unknown"
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("intent handler panicked",
				"intent", req.Intent,
				"panic", r,
				"stack", string(debug.Stack()),
			)
			resp = Response{Text: MsgInternalError, Outcome: OutcomeError}
		}
		IntentTotal.WithLabelValues(label, string(resp.Outcome)).Inc()
		IntentDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
		e.logger.Debug("intent handled", "intent", req.Intent, "outcome", resp.Outcome, "duration", time.Since(start))
	}()

	q, ok := e.table[req.Intent]
	if !ok {
		return Response{Text: MsgUnsupported, Outcome: OutcomeUnsupported}
	}

	params := StringParams(req.Params)
	explicitPage, hasExplicitPage := req.Params[ParamPage]
	delete(params, ParamPage)

	if c, ok := q.(Custom); ok && (c.Handler == HandlerNextPage || c.Handler == HandlerPreviousPage) {
		return e.turnPage(ctx, req.Contexts, c.Handler == HandlerNextPage)
	}

	page := 0
	if hasExplicitPage {
		page = parsePage(explicitPage)
	} else if cur, found := findCursor(req.Contexts); found && cur.applies(req.Intent, params) {
		page = cur.page
	}
	return e.dispatch(ctx, req.Intent, q, params, page)
}

func (e *Engine) dispatch(ctx context.Context, intent string, q Query, params map[string]string, page int) Response {
	var res result
	switch q := q.(type) {
	case Standard:
		res = e.runStandard(ctx, q, params)
	case List:
		res = e.runList(ctx, q, params, page)
	case Custom:
		res = customHandlers[q.Handler](e, ctx, params)
	default:
		panic(fmt.Sprintf("unsupported query %T", q))
	}

	resp := Response{Text: res.text, Outcome: res.outcome}
	if res.page != nil {
		echo := EchoedQuery{Intent: intent, Parameters: params}
		resp.Contexts = []Context{paginationContext(echo, res.page.Index)}
	}
	return resp
}

// turnPage replays the list query echoed in the pagination context one page
// forward or back.
func (e *Engine) turnPage(ctx context.Context, contexts []Context, forward bool) Response {
	cur, found := findCursor(contexts)
	if !found || !cur.valid {
		return Response{Text: MsgUnsupported, Outcome: OutcomeUnsupported}
	}
	q, ok := e.table[cur.query.Intent]
	if _, isList := q.(List); !ok || !isList {
		return Response{Text: MsgUnsupported, Outcome: OutcomeUnsupported}
	}

	page := cur.page + 1
	if !forward {
		page = max(0, cur.page-1)
	}
	params := cur.query.Parameters
	if params == nil {
		params = map[string]string{}
	}
	return e.dispatch(ctx, cur.query.Intent, q, params, page)
}
