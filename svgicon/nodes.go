package svgicon

import (
	"github.com/benoitkugler/svglayer/svgpath"
)

// Node is one element of the document tree. The set of node kinds is
// closed: use a type switch over the pointer types defined in this file.
type Node interface {
	// Base returns the attributes common to every node.
	Base() *NodeBase
	isNode()
}

// NodeBase stores the identification and the two independent
// presentation attribute sets of a node.
type NodeBase struct {
	Tag     string // element name
	ID      string
	Classes []string
	Attrs   Attributes // from direct attributes
	Style   Attributes // from the inline 'style' attribute
}

func (nb *NodeBase) Base() *NodeBase { return nb }

// Container stores the children of grouping elements.
type Container struct {
	Children []Node
}

func (c *Container) appendChild(n Node) { c.Children = append(c.Children, n) }

type container interface {
	appendChild(n Node)
}

type (
	Line struct {
		NodeBase
		X1, Y1, X2, Y2 svgpath.Length
	}

	Circle struct {
		NodeBase
		CX, CY, R svgpath.Length
	}

	Ellipse struct {
		NodeBase
		CX, CY, RX, RY svgpath.Length
	}

	Rect struct {
		NodeBase
		X, Y, Width, Height svgpath.Length
		RX, RY              *svgpath.Length // nil if not specified
	}

	Polyline struct {
		NodeBase
		Points []svgpath.Point
	}

	Polygon struct {
		NodeBase
		Points []svgpath.Point
	}

	// PathNode is a 'path' element. Its Data always starts with a MoveTo.
	PathNode struct {
		NodeBase
		Data svgpath.Path
	}

	// Text is a 'text' element, with the content of its
	// 'tspan' children flattened.
	Text struct {
		NodeBase
		X, Y    svgpath.Length
		Content string
	}

	Image struct {
		NodeBase
		X, Y, Width, Height svgpath.Length
		Href                string
	}

	Group struct {
		NodeBase
		Container
	}

	// Anchor is an 'a' element, rendered as a group.
	Anchor struct {
		NodeBase
		Container
		Href string
	}

	// Svg is the root element, or a nested 'svg' element.
	Svg struct {
		NodeBase
		Container
		X, Y          svgpath.Length
		Width, Height *svgpath.Length  // nil if not specified
		ViewBox       *svgpath.ViewBox // nil if not specified
	}

	// Symbol is only rendered through 'use' elements.
	Symbol struct {
		NodeBase
		Container
		ViewBox *svgpath.ViewBox
	}

	Use struct {
		NodeBase
		Href          string // referenced id, without '#'
		X, Y          svgpath.Length
		Width, Height *svgpath.Length
	}

	// Stop is a gradient stop. Its color is found in the
	// stop-color and stop-opacity presentation attributes.
	Stop struct {
		NodeBase
		Offset float64 // in [0, 1]
	}

	// LinearGradient is a 'linearGradient' element. Unspecified
	// attributes are nil, and may be inherited through Href.
	LinearGradient struct {
		NodeBase
		GradientBase
		X1, Y1, X2, Y2 *svgpath.Length
	}

	// RadialGradient is a 'radialGradient' element. Unspecified
	// attributes are nil, and may be inherited through Href.
	RadialGradient struct {
		NodeBase
		GradientBase
		CX, CY, R, FX, FY, FR *svgpath.Length
	}

	Pattern struct {
		NodeBase
		Container
		X, Y, Width, Height *svgpath.Length
		Units               *svgpath.Units // patternUnits
		ContentUnits        *svgpath.Units // patternContentUnits
		Transform           *svgpath.Matrix2D
		ViewBox             *svgpath.ViewBox
		Href                string
	}

	ClipPath struct {
		NodeBase
		Container
		Units svgpath.Units // clipPathUnits, UserSpaceOnUse by default
	}

	Mask struct {
		NodeBase
		Container
		X, Y, Width, Height svgpath.Length
		Units               svgpath.Units // maskUnits, ObjectBoundingBox by default
		ContentUnits        svgpath.Units // maskContentUnits, UserSpaceOnUse by default
	}

	Filter struct {
		NodeBase
		Primitives []FilterPrimitive
	}
)

// GradientBase gathers the attributes shared by linear and radial gradients.
type GradientBase struct {
	Stops     []*Stop // nil if the gradient has no stop child
	Units     *svgpath.Units
	Spread    *svgpath.SpreadMethod
	Transform *svgpath.Matrix2D
	Href      string // referenced gradient, without '#'
}

// FilterPrimitive is one 'fe*' child of a filter.
type FilterPrimitive struct {
	Name  string
	Attrs map[string]string
}

func (*Line) isNode()           {}
func (*Circle) isNode()         {}
func (*Ellipse) isNode()        {}
func (*Rect) isNode()           {}
func (*Polyline) isNode()       {}
func (*Polygon) isNode()        {}
func (*PathNode) isNode()       {}
func (*Text) isNode()           {}
func (*Image) isNode()          {}
func (*Group) isNode()          {}
func (*Anchor) isNode()         {}
func (*Svg) isNode()            {}
func (*Symbol) isNode()         {}
func (*Use) isNode()            {}
func (*Stop) isNode()           {}
func (*LinearGradient) isNode() {}
func (*RadialGradient) isNode() {}
func (*Pattern) isNode()        {}
func (*ClipPath) isNode()       {}
func (*Mask) isNode()           {}
func (*Filter) isNode()         {}

// Children returns the children of container nodes, or nil.
func Children(n Node) []Node {
	switch n := n.(type) {
	case *Group:
		return n.Children
	case *Anchor:
		return n.Children
	case *Svg:
		return n.Children
	case *Symbol:
		return n.Children
	case *Pattern:
		return n.Children
	case *ClipPath:
		return n.Children
	case *Mask:
		return n.Children
	}
	return nil
}

// Defs is the definitions table, mapping ids to nodes.
// It is filled once while parsing, and is read-only afterwards.
type Defs struct {
	m map[string]Node
}

// register adds n if its id is not already used: the first
// definition wins. It returns false for duplicates.
func (d *Defs) register(id string, n Node) bool {
	if d.m == nil {
		d.m = make(map[string]Node)
	}
	if _, has := d.m[id]; has {
		return false
	}
	d.m[id] = n
	return true
}

// Lookup returns the node with the given id.
func (d Defs) Lookup(id string) (Node, bool) {
	n, ok := d.m[id]
	return n, ok
}

// Len returns the number of registered ids.
func (d Defs) Len() int { return len(d.m) }
