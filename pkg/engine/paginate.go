package engine

import (
	"fmt"
	"strings"
)

// PageSize is the number of list items shown per page.
const PageSize = 3

// Page is one rendered page of a list answer.
type Page struct {
	Text  string
	Index int // zero-based, after clamping
	Count int
}

// Paginate splits items into pages of PageSize and renders the requested one.
// The index is clamped into range. Callers never pass an empty list.
func Paginate(items []string, index int) Page {
	count := (len(items) + PageSize - 1) / PageSize
	if count == 0 {
		return Page{}
	}
	index = max(0, min(index, count-1))

	start := index * PageSize
	end := min(start+PageSize, len(items))
	text := strings.Join(items[start:end], "\n")
	if count > 1 {
		text += fmt.Sprintf(paginationFooter, index+1, count)
	}
	return Page{Text: text, Index: index, Count: count}
}
