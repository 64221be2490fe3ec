package page

import (
	"sort"
	"sync"
)

// Viewport tracks which pages are currently visible on screen. The UI (or
// the chat REPL's /view command) updates it as the reader scrolls; the
// conversation engine reads it when classifying a turn.
//
// Viewport is safe for concurrent use.
type Viewport struct {
	mu      sync.RWMutex
	visible []int
}

// NewViewport returns an empty viewport.
func NewViewport() *Viewport {
	return &Viewport{}
}

// SetVisible replaces the visible-page set. Duplicates are dropped and the
// pages are kept in ascending order.
func (v *Viewport) SetVisible(pages []int) {
	uniq := make(map[int]struct{}, len(pages))
	for _, p := range pages {
		uniq[p] = struct{}{}
	}
	next := make([]int, 0, len(uniq))
	for p := range uniq {
		next = append(next, p)
	}
	sort.Ints(next)

	v.mu.Lock()
	v.visible = next
	v.mu.Unlock()
}

// Visible returns the visible pages in ascending order. The returned slice
// is a copy.
func (v *Viewport) Visible() []int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]int, len(v.visible))
	copy(out, v.visible)
	return out
}
