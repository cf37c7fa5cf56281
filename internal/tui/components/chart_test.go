package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestSparklineScalesAndGaps(t *testing.T) {
	out := Sparkline([]float64{0, 5, 10, 0}, lipgloss.Color("#3AA99F"))

	if got := lipgloss.Width(out); got != 4 {
		t.Fatalf("width = %d, want one cell per value (4)", got)
	}
	if !strings.Contains(out, "█") {
		t.Error("peak value should render a full block")
	}
	if !strings.Contains(out, " ") {
		t.Error("zero values should render as gaps")
	}
}

func TestSparklineAllZero(t *testing.T) {
	out := Sparkline([]float64{0, 0, 0}, lipgloss.Color("#3AA99F"))
	if got := lipgloss.Width(out); got != 3 {
		t.Fatalf("width = %d, want 3", got)
	}
	if strings.ContainsAny(out, "▁▂▃▄▅▆▇█") {
		t.Errorf("all-zero sparkline %q should contain no blocks", out)
	}
}

func TestSparklineEmpty(t *testing.T) {
	if out := Sparkline(nil, lipgloss.Color("#3AA99F")); out != "" {
		t.Errorf("empty input rendered %q", out)
	}
}
