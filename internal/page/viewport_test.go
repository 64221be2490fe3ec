package page

import (
	"sync"
	"testing"
)

func TestViewport_SetVisible(t *testing.T) {
	t.Parallel()

	v := NewViewport()
	if got := v.Visible(); len(got) != 0 {
		t.Fatalf("new viewport visible = %v, want empty", got)
	}

	v.SetVisible([]int{5, 3, 5, 4})
	got := v.Visible()
	want := []int{3, 4, 5}
	if len(got) != len(want) {
		t.Fatalf("visible = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("visible = %v, want %v", got, want)
		}
	}

	// Replaced wholesale, not merged.
	v.SetVisible([]int{7})
	if got := v.Visible(); len(got) != 1 || got[0] != 7 {
		t.Fatalf("visible = %v, want [7]", got)
	}
}

func TestViewport_VisibleReturnsCopy(t *testing.T) {
	t.Parallel()

	v := NewViewport()
	v.SetVisible([]int{1, 2})
	got := v.Visible()
	got[0] = 99
	if again := v.Visible(); again[0] != 1 {
		t.Fatalf("mutating returned slice changed viewport: %v", again)
	}
}

func TestViewport_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	v := NewViewport()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			v.SetVisible([]int{n, n + 1})
		}(i)
		go func() {
			defer wg.Done()
			_ = v.Visible()
		}()
	}
	wg.Wait()
}
