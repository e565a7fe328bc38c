package chart

import (
	"strings"
	"testing"

	"github.com/san-kum/cooldown/internal/samplelog"
)

func curve(n int) *samplelog.Log {
	l := samplelog.New(samplelog.Sample{Elapsed: 0, Temperature: 293.15})
	for i := 1; i < n; i++ {
		l.Append(float64(i)*60, 293.15-float64(i))
	}
	return l
}

func TestColumns(t *testing.T) {
	tests := []struct {
		n, width int
		expected []int
	}{
		{1, 10, []int{0}},
		{3, 10, []int{0, 1, 2}},
		{5, 3, []int{0, 2, 4}},
		{11, 6, []int{0, 2, 4, 6, 8, 10}},
	}

	for _, tt := range tests {
		got := columns(tt.n, tt.width)
		if len(got) != len(tt.expected) {
			t.Errorf("columns(%d, %d) = %v, want %v", tt.n, tt.width, got, tt.expected)
			continue
		}
		for i := range got {
			if got[i] != tt.expected[i] {
				t.Errorf("columns(%d, %d) = %v, want %v", tt.n, tt.width, got, tt.expected)
				break
			}
		}
	}
}

func TestRenderAndIndexAt(t *testing.T) {
	c := New(20, 8)
	c.Render(curve(100), 99)

	out := c.String()
	if out == "" {
		t.Fatal("expected a rendered chart")
	}
	if !strings.Contains(out, "[99]") {
		t.Errorf("caption should name the cursor sample:\n%s", out)
	}
	if c.Origin() == 0 {
		t.Error("expected y-axis labels left of the plot")
	}

	if _, ok := c.IndexAt(c.Origin()); ok {
		t.Error("the axis column is not a sample")
	}
	first, ok := c.IndexAt(c.Origin() + 1)
	if !ok || first != 0 {
		t.Errorf("first plot column should be sample 0, got %d %v", first, ok)
	}
	last, ok := c.IndexAt(c.Origin() + 20)
	if !ok || last != 99 {
		t.Errorf("last plot column should be sample 99, got %d %v", last, ok)
	}
	if _, ok := c.IndexAt(c.Origin() + 21); ok {
		t.Error("columns past the plot must not map to a sample")
	}
}

func TestColumnOfRoundTrip(t *testing.T) {
	c := New(20, 8)
	c.Render(curve(10), 0)

	for i := 0; i < 10; i++ {
		col, ok := c.ColumnOf(i)
		if !ok {
			t.Fatalf("ColumnOf(%d) failed", i)
		}
		idx, ok := c.IndexAt(c.Origin() + 1 + col)
		if !ok || idx != i {
			t.Errorf("sample %d -> column %d -> sample %d", i, col, idx)
		}
	}

	if _, ok := c.ColumnOf(10); ok {
		t.Error("ColumnOf beyond the log should fail")
	}
}

func TestRenderSingleSample(t *testing.T) {
	c := New(20, 8)
	c.Render(curve(1), 0)

	if c.String() == "" {
		t.Fatal("a fresh run should still render")
	}
	if idx, ok := c.IndexAt(c.Origin() + 1); !ok || idx != 0 {
		t.Errorf("expected sample 0, got %d %v", idx, ok)
	}
}

func TestMarkerUnderCursor(t *testing.T) {
	c := New(20, 8)
	c.Render(curve(10), 3)

	col, _ := c.ColumnOf(3)
	for _, line := range strings.Split(c.String(), "\n") {
		if strings.TrimSpace(line) == "^" {
			if got := len(line) - 1; got != c.Origin()+1+col {
				t.Errorf("marker at %d, want %d", got, c.Origin()+1+col)
			}
			return
		}
	}
	t.Error("no cursor marker found")
}
