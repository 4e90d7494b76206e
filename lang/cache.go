package lang

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"

	"github.com/ardnew/shadervar/log"
)

// Cache memoizes parse results by source text. Concurrent lookups of the same
// source parse it once. Builders used with a cache must be deterministic and
// must not mutate nodes after returning them.
type Cache[N any] struct {
	b       Builder[N]
	entries sync.Map // uint64 -> *entry[N]
}

type entry[N any] struct {
	once   sync.Once
	source string
	node   N
	err    error
}

// NewCache returns an empty cache parsing with b.
func NewCache[N any](b Builder[N]) *Cache[N] {
	return &Cache[N]{b: b}
}

// Parse returns the cached tree for src, parsing it on first use.
func (c *Cache[N]) Parse(ctx context.Context, src string) (N, error) {
	key := xxh3.HashString(src)

	value, hit := c.entries.LoadOrStore(key, &entry[N]{source: src})

	e, ok := value.(*entry[N])
	if !ok || e.source != src {
		log.TraceContext(
			ctx,
			"cache bypass",
			slog.String("source_hash", strconv.FormatUint(key, 16)),
		)

		return Parse(src, c.b)
	}

	log.TraceContext(
		ctx,
		"cache lookup",
		slog.String("source_hash", strconv.FormatUint(key, 16)),
		slog.Bool("cache_hit", hit),
	)

	e.once.Do(func() { e.node, e.err = Parse(src, c.b) })

	return e.node, e.err
}

// Clear removes all cached entries.
func (c *Cache[N]) Clear() {
	c.entries.Clear()
}

// ReadSource reads all of r with asynchronous read-ahead.
func ReadSource(ctx context.Context, r io.Reader) (string, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return "", ErrReadInput.Wrap(err)
	}

	log.TraceContext(ctx, "read input", slog.Int("source_bytes", len(data)))

	return string(data), nil
}
