package lang

import (
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

// countingBuilder counts how many literals it has built.
type countingBuilder struct {
	TreeBuilder

	ints *atomic.Int64
}

func (b countingBuilder) Int(v int64) (Node, error) {
	b.ints.Add(1)

	return b.TreeBuilder.Int(v)
}

func TestCache_ParsesOnce(t *testing.T) {
	var n atomic.Int64

	c := NewCache[Node](countingBuilder{ints: &n})

	var wg sync.WaitGroup

	for range 16 {
		wg.Go(func() {
			node, err := c.Parse(t.Context(), "1 + 2")
			if err != nil {
				t.Error(err)

				return
			}

			if got := node.String(); got != "(1 + 2)" {
				t.Errorf("got %s", got)
			}
		})
	}

	wg.Wait()

	if got := n.Load(); got != 2 {
		t.Errorf("builder saw %d literals, want 2", got)
	}
}

func TestCache_CachesErrors(t *testing.T) {
	c := NewCache[Node](TreeBuilder{})

	_, err1 := c.Parse(t.Context(), "1 +")
	_, err2 := c.Parse(t.Context(), "1 +")

	if err1 == nil || err1 != err2 {
		t.Fatalf("expected the same cached error, got %v and %v", err1, err2)
	}

	if !errors.Is(err1, ErrParse) {
		t.Errorf("expected parse error, got %v", err1)
	}
}

func TestCache_Clear(t *testing.T) {
	var n atomic.Int64

	c := NewCache[Node](countingBuilder{ints: &n})

	c.Parse(t.Context(), "7")
	c.Clear()
	c.Parse(t.Context(), "7")

	if got := n.Load(); got != 2 {
		t.Errorf("builder saw %d literals after Clear, want 2", got)
	}
}

func TestReadSource(t *testing.T) {
	src := strings.Repeat("a + b\n", 1<<12)

	got, err := ReadSource(t.Context(), strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}

	if got != src {
		t.Errorf("ReadSource returned %d bytes, want %d", len(got), len(src))
	}
}

func BenchmarkCache_Parse(b *testing.B) {
	c := NewCache[Node](TreeBuilder{})
	src := "if(frameTimeCounter > 3.0 && rainStrength < 0.5, vec3(1, 0, 0).x, 0.0)"

	for b.Loop() {
		if _, err := c.Parse(b.Context(), src); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParseTree(b *testing.B) {
	src := "if(frameTimeCounter > 3.0 && rainStrength < 0.5, vec3(1, 0, 0).x, 0.0)"

	for b.Loop() {
		if _, err := ParseTree(src); err != nil {
			b.Fatal(err)
		}
	}
}
