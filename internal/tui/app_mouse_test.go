package tui

import (
	"testing"

	"github.com/n-WN/prompt-manager/internal/tui/components"
)

func TestTabAtXMatchesTabWidths(t *testing.T) {
	for active := 0; active < len(components.Tabs); active++ {
		a := App{activeTab: active}
		pos := 1 // leading space before the first tab

		for i := range components.Tabs {
			w := tabWidthForTest(i, active)
			x := pos + w/2 // midpoint inside this tab
			if got := a.tabAtX(x); got != i {
				t.Fatalf("active=%d x=%d -> tab=%d, want %d", active, x, got, i)
			}
			pos += w
			if i < len(components.Tabs)-1 {
				pos += 2 // separator
			}
		}
	}
}

func TestTabAtXMissesOutsideTabs(t *testing.T) {
	a := App{}
	if got := a.tabAtX(0); got != -1 {
		t.Fatalf("x=0 (leading space) -> tab=%d, want -1", got)
	}
	if got := a.tabAtX(500); got != -1 {
		t.Fatalf("x=500 -> tab=%d, want -1", got)
	}
}

func tabWidthForTest(tabIdx, activeIdx int) int {
	nameWidths := []int{
		len("Prompts"),
		len("Stats"),
	}

	w := nameWidths[tabIdx]
	if tabIdx != activeIdx {
		w += 3 // inactive tabs append "[k]"
	}
	return w
}
