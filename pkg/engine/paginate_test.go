package engine

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func items(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("item %d", i+1)
	}
	return out
}

func TestPaginate_PageCountAndClamping(t *testing.T) {
	for n := 1; n <= 10; n++ {
		wantCount := (n + 2) / 3
		for index := -2; index <= wantCount+2; index++ {
			p := Paginate(items(n), index)

			assert.Equal(t, wantCount, p.Count, "n=%d", n)
			assert.GreaterOrEqual(t, p.Index, 0)
			assert.Less(t, p.Index, p.Count)

			body := p.Text
			if wantCount > 1 {
				footer := fmt.Sprintf("\n\n(Page %d/%d - Say 'next page' or 'previous page')", p.Index+1, wantCount)
				assert.True(t, strings.HasSuffix(body, footer), "n=%d index=%d: %q", n, index, body)
				body = strings.TrimSuffix(body, footer)
			} else {
				assert.NotContains(t, body, "Page")
			}

			lines := strings.Split(body, "\n")
			if p.Index < p.Count-1 {
				assert.Len(t, lines, PageSize)
			} else {
				assert.Len(t, lines, n-PageSize*(p.Count-1))
			}
			assert.Equal(t, fmt.Sprintf("item %d", p.Index*PageSize+1), lines[0])
		}
	}
}

func TestPaginate_Examples(t *testing.T) {
	p := Paginate([]string{"a", "b", "c", "d", "e"}, 1)
	assert.Equal(t, "d\ne\n\n(Page 2/2 - Say 'next page' or 'previous page')", p.Text)

	p = Paginate([]string{"a", "b", "c"}, 7)
	assert.Equal(t, Page{Text: "a\nb\nc", Index: 0, Count: 1}, p)

	assert.Equal(t, Page{}, Paginate(nil, 0))
}

func TestParsePage(t *testing.T) {
	tests := []struct {
		in   any
		want int
	}{
		{float64(2), 2},
		{2, 2},
		{"3", 3},
		{" 4 ", 4},
		{"-1", 0},
		{float64(-1), 0},
		{1.5, 0},
		{"two", 0},
		{nil, 0},
		{true, 0},
		{[]any{1}, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parsePage(tt.in), "%#v", tt.in)
	}
}

func TestStringParams(t *testing.T) {
	got := StringParams(map[string]any{
		"courseName":    "Databases 101",
		"sessionNumber": float64(3),
		"percent":       50.5,
		"list":          []any{"first", "second"},
		"empty":         []any{},
		"none":          nil,
		"flag":          true,
		"nested":        map[string]any{"a": 1},
		"decoded":       json.Number("3.0"),
		"decodedFrac":   json.Number("2.50"),
	})
	assert.Equal(t, map[string]string{
		"courseName":    "Databases 101",
		"sessionNumber": "3",
		"percent":       "50.5",
		"list":          "first",
		"empty":         "",
		"none":          "",
		"flag":          "true",
		"nested":        `{"a":1}`,
		"decoded":       "3",
		"decodedFrac":   "2.5",
	}, got)
}
