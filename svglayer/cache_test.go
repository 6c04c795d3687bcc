package svglayer

import (
	"sync"
	"testing"

	"github.com/benoitkugler/svglayer/svgicon"
	"github.com/benoitkugler/svglayer/svgpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rectLayer returns a layer with n rectangles, of cost 4n.
func rectLayer(n int) *Layer {
	l := newLayer()
	for i := 0; i < n; i++ {
		l.Contents = append(l.Contents, ShapeContent{Shape: Rectangle{Rect: svgpath.Rect{W: 1, H: 1}}})
	}
	return l
}

func TestCost(t *testing.T) {
	assert.Equal(t, 8, Cost(rectLayer(2)))

	l := rectLayer(1)
	l.Contents = append(l.Contents, rectLayer(1), ShapeContent{Shape: Ellipse{Rect: svgpath.Rect{W: 1, H: 1}}})
	l.ClipPaths = []ClipPath{{Path: svgpath.RectPath(0, 0, 1, 1)}}
	assert.Equal(t, 4+4+13+4, Cost(l))
}

func TestFingerprint(t *testing.T) {
	src := []byte("<svg/>")
	const warn = svgicon.WarnErrorMode
	assert.Equal(t, Fingerprint(src, 10, 10, warn), Fingerprint([]byte("<svg/>"), 10, 10, warn))
	assert.NotEqual(t, Fingerprint(src, 10, 10, warn), Fingerprint(src, 10, 20, warn))
	assert.NotEqual(t, Fingerprint(src, 10, 10, warn), Fingerprint([]byte("<svg />"), 10, 10, warn))
	assert.NotEqual(t, Fingerprint(src, 10, 10, warn), Fingerprint(src, 10, 10, svgicon.StrictErrorMode))
}

func TestCacheEviction(t *testing.T) {
	c := NewCache(20)
	l1, l2, l3 := rectLayer(2), rectLayer(2), rectLayer(2)
	c.Add(1, l1)
	c.Add(2, l2)
	assert.Equal(t, 16, c.Cost())

	// touch 1, so that 2 is the least recently used
	got, ok := c.Get(1)
	require.True(t, ok)
	assert.Same(t, l1, got)

	c.Add(3, l3)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 16, c.Cost())
	_, ok = c.Get(2)
	assert.False(t, ok)
	_, ok = c.Get(1)
	assert.True(t, ok)

	// too large to be stored
	c.Add(4, rectLayer(10))
	_, ok = c.Get(4)
	assert.False(t, ok)
	assert.Equal(t, 2, c.Len())

	// replacing an entry updates the cost
	c.Add(1, rectLayer(1))
	assert.Equal(t, 12, c.Cost())
}

func TestCacheCompile(t *testing.T) {
	c := NewCache(1000)
	src := []byte(`<svg width="10" height="10"><rect width="5" height="5"/></svg>`)

	var (
		wg     sync.WaitGroup
		layers [8]*Layer
	)
	for i := range layers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l, err := c.Compile(src, Options{}, svgicon.StrictErrorMode)
			assert.NoError(t, err)
			layers[i] = l
		}(i)
	}
	wg.Wait()
	for _, l := range layers {
		assert.Same(t, layers[0], l)
	}
	assert.Equal(t, 1, c.Len())

	// a different size is a different entry
	l, err := c.Compile(src, Options{Width: 20}, svgicon.StrictErrorMode)
	require.NoError(t, err)
	assert.NotSame(t, layers[0], l)
	assert.Equal(t, 2, c.Len())

	_, err = c.Compile([]byte("<rect/>"), Options{}, svgicon.StrictErrorMode)
	assert.Error(t, err)
}

func TestCacheErrorMode(t *testing.T) {
	c := NewCache(1000)
	src := []byte(`<svg width="10" height="10"><rect width="5" height="5" fill="notacolor"/></svg>`)

	l, err := c.Compile(src, Options{}, svgicon.IgnoreErrorMode)
	require.NoError(t, err)
	require.NotNil(t, l)
	assert.Equal(t, 1, c.Len())

	// the lenient result is not returned for a strict request
	_, err = c.Compile(src, Options{}, svgicon.StrictErrorMode)
	assert.ErrorIs(t, err, svgicon.ErrInvalid)
	assert.Equal(t, 1, c.Len())

	got, err := c.Compile(src, Options{}, svgicon.IgnoreErrorMode)
	require.NoError(t, err)
	assert.Same(t, l, got)
}
