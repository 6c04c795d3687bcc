package svglayer

import (
	"bytes"
	"container/list"
	"encoding/binary"
	"hash/fnv"
	"math"
	"strconv"
	"sync"

	"github.com/benoitkugler/svglayer/svgicon"
	"golang.org/x/sync/singleflight"
)

// Fingerprint identifies a compilation request: the source
// document, the output size and the error mode, since a strict
// parse may fail where a lenient one succeeds.
func Fingerprint(source []byte, width, height float64, errMode svgicon.ErrorMode) uint64 {
	h := fnv.New64a()
	h.Write(source)
	var buf [17]byte
	binary.LittleEndian.PutUint64(buf[:8], math.Float64bits(width))
	binary.LittleEndian.PutUint64(buf[8:16], math.Float64bits(height))
	buf[16] = byte(errMode)
	h.Write(buf[:])
	return h.Sum64()
}

// Cost approximates the memory used by a scene graph, as
// the number of path points plus the size of the images in bytes.
func Cost(l *Layer) int {
	var (
		cost  int
		stack = []*Layer{l}
	)
	addPaint := func(p Paint) {
		if pat, ok := p.(*PatternPaint); ok {
			stack = append(stack, pat.Content)
		}
	}
	for len(stack) > 0 {
		la := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, clip := range la.ClipPaths {
			cost += clip.Path.PointCount()
		}
		if la.Mask != nil {
			stack = append(stack, la.Mask)
		}
		for _, c := range la.Contents {
			switch c := c.(type) {
			case ShapeContent:
				cost += c.Shape.Path().PointCount()
				addPaint(c.Fill.Paint)
				addPaint(c.Stroke.Paint)
			case ImageContent:
				w, h := c.Image.Size()
				cost += 4 * w * h
			case TextContent:
				cost += len(c.Text)
				addPaint(c.Fill)
			case *Layer:
				stack = append(stack, c)
			}
		}
	}
	return cost
}

type cacheEntry struct {
	key   uint64
	layer *Layer
	cost  int
}

// Cache stores compiled scene graphs, keyed by Fingerprint. The least
// recently used entries are evicted when the total cost exceeds the limit.
// A Cache is safe for concurrent use; since scene graphs are never
// modified once compiled, they may be shared between goroutines.
type Cache struct {
	maxCost int

	mu      sync.Mutex
	cost    int
	lru     *list.List // of *cacheEntry, most recent first
	entries map[uint64]*list.Element

	group singleflight.Group
}

// NewCache returns an empty cache bounded by maxCost, as measured by Cost.
func NewCache(maxCost int) *Cache {
	return &Cache{
		maxCost: maxCost,
		lru:     list.New(),
		entries: make(map[uint64]*list.Element),
	}
}

// Get returns the scene graph stored for key.
func (c *Cache) Get(key uint64) (*Layer, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.lru.MoveToFront(el)
	return el.Value.(*cacheEntry).layer, true
}

// Add stores layer for key, evicting older entries if needed.
// A layer whose cost exceeds the limit is not stored.
func (c *Cache) Add(key uint64, layer *Layer) {
	cost := Cost(layer)
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[key]; ok {
		c.removeElement(el)
	}
	if cost > c.maxCost {
		return
	}
	c.entries[key] = c.lru.PushFront(&cacheEntry{key: key, layer: layer, cost: cost})
	c.cost += cost
	for c.cost > c.maxCost {
		c.removeElement(c.lru.Back())
	}
}

func (c *Cache) removeElement(el *list.Element) {
	entry := c.lru.Remove(el).(*cacheEntry)
	delete(c.entries, entry.key)
	c.cost -= entry.cost
}

// Len returns the number of entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Cost returns the total cost of the entries.
func (c *Cache) Cost() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cost
}

// Compile parses and compiles source, or returns the cached scene graph.
// Concurrent calls for the same request share one compilation.
// The ImageResolver of opts is not part of the key.
func (c *Cache) Compile(source []byte, opts Options, errMode svgicon.ErrorMode) (*Layer, error) {
	key := Fingerprint(source, opts.Width, opts.Height, errMode)
	if l, ok := c.Get(key); ok {
		return l, nil
	}
	v, err, _ := c.group.Do(strconv.FormatUint(key, 16), func() (interface{}, error) {
		if l, ok := c.Get(key); ok {
			return l, nil
		}
		doc, err := svgicon.ReadIconStream(bytes.NewReader(source), errMode)
		if err != nil {
			return nil, err
		}
		l := Compile(doc, opts)
		c.Add(key, l)
		return l, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Layer), nil
}
