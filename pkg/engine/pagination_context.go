package engine

import (
	"encoding/json"
	"maps"
	"math"
	"strconv"
	"strings"
)

const (
	// PaginationContext is the short name of the context carrying the cursor.
	PaginationContext = "pagination"
	// ContextLifespan is the number of turns the pagination context survives.
	ContextLifespan = 5

	ctxKeyPage          = "page"
	ctxKeyOriginalQuery = "originalQuery"
)

// Context is a conversational context entry exchanged with the caller.
type Context struct {
	Name       string         `json:"name"`
	Lifespan   int            `json:"lifespanCount"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// EchoedQuery is the copy of a list query carried in the pagination context.
type EchoedQuery struct {
	Intent     string            `json:"intent"`
	Parameters map[string]string `json:"parameters"`
}

type cursor struct {
	page  int
	query EchoedQuery
	valid bool // query decoded
}

// findCursor returns the first context whose parameters carry a page. The
// context comes from the client and is parsed defensively.
func findCursor(contexts []Context) (cursor, bool) {
	for _, c := range contexts {
		raw, ok := c.Parameters[ctxKeyPage]
		if !ok {
			continue
		}
		cur := cursor{page: parsePage(raw)}
		if s, ok := c.Parameters[ctxKeyOriginalQuery].(string); ok {
			if err := json.Unmarshal([]byte(s), &cur.query); err == nil && cur.query.Intent != "" {
				cur.valid = true
			}
		}
		return cur, true
	}
	return cursor{}, false
}

// applies reports whether the cursor belongs to the same list query.
func (c cursor) applies(intent string, params map[string]string) bool {
	return c.valid && c.query.Intent == intent && maps.Equal(c.query.Parameters, params)
}

// parsePage converts an untrusted page value. Anything that is not a
// non-negative integer becomes 0; large values are left to Paginate to clamp.
func parsePage(v any) int {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return 0
		}
		f = n
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0
		}
		f = float64(n)
	default:
		return 0
	}
	if math.IsNaN(f) || f < 0 || f != math.Trunc(f) {
		return 0
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}

func paginationContext(q EchoedQuery, page int) Context {
	echo, _ := json.Marshal(q)
	return Context{
		Name:     PaginationContext,
		Lifespan: ContextLifespan,
		Parameters: map[string]any{
			ctxKeyPage:          page,
			ctxKeyOriginalQuery: string(echo),
		},
	}
}

// StringParams flattens request parameters to strings. Numbers render
// without a trailing ".0", lists collapse to their first element and nil
// becomes "".
func StringParams(in map[string]any) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = paramString(v)
	}
	return out
}

func paramString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return t.String()
	case []any:
		if len(t) == 0 {
			return ""
		}
		return paramString(t[0])
	case []string:
		if len(t) == 0 {
			return ""
		}
		return t[0]
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
