package svgicon

import (
	"errors"
	"fmt"
	"strings"
)

// iconCursor is used while parsing SVG files
type iconCursor struct {
	doc       *Document
	errorMode ErrorMode
}

// frame is a pending element, waiting to be parsed
// and appended to its parent.
type frame struct {
	el     *Element
	parent container // nil for elements which are only registered
}

// sink collects the children of 'defs' elements,
// which are not rendered.
type sink struct{}

func (sink) appendChild(Node) {}

// elements silently skipped
var ignoredElements = map[string]bool{
	"metadata": true,
	"script":   true,
	"animate":  true,
	"set":      true,
}

// report handles a non fatal error according to the error mode:
// in strict mode it is returned, otherwise it is (optionally)
// logged and nil is returned.
func (c *iconCursor) report(err error) error {
	switch c.errorMode {
	case StrictErrorMode:
		return err
	case WarnErrorMode:
		Logger().Warn("svg: skipping invalid content", "error", err)
	}
	return nil
}

// Parse converts the element tree into a typed document. In strict mode,
// any invalid attribute or unsupported element aborts the parsing.
// Otherwise, invalid presentation attributes are ignored, and invalid
// or unsupported elements are dropped with their subtree.
func Parse(root *Element, errMode ErrorMode) (*Document, error) {
	if root == nil || root.Name != "svg" || root.isForeign() {
		return nil, errors.New("invalid svg xml icon: root element must be <svg>")
	}
	doc := &Document{}
	c := &iconCursor{doc: doc, errorMode: errMode}

	rootNode, err := c.parseElement(root)
	if err != nil {
		return nil, err
	}
	doc.Root = rootNode.(*Svg)
	c.register(doc.Root)

	// depth first walk, with an explicit stack
	stack := c.pushChildren(nil, root, doc.Root)
	for len(stack) > 0 {
		fr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		el := fr.el
		if el.isForeign() {
			continue
		}
		switch el.Name {
		case "title":
			doc.Titles = append(doc.Titles, el.Text)
			continue
		case "desc":
			doc.Descriptions = append(doc.Descriptions, el.Text)
			continue
		case "style":
			if err := c.readStyleElement(el); err != nil {
				return nil, err
			}
			continue
		case "defs":
			stack = c.pushChildren(stack, el, sink{})
			continue
		}
		if ignoredElements[el.Name] {
			continue
		}

		node, err := c.parseElement(el)
		if err != nil {
			if err := c.report(err); err != nil {
				return nil, err
			}
			continue // drop the node and its subtree
		}
		c.register(node)
		if fr.parent != nil {
			fr.parent.appendChild(node)
		}
		if cont, ok := node.(container); ok {
			stack = c.pushChildren(stack, el, cont)
		}
	}
	return doc, nil
}

// pushChildren adds the children of el to the stack, in reverse
// order so that they are processed in document order.
func (c *iconCursor) pushChildren(stack []frame, el *Element, parent container) []frame {
	for i := len(el.Children) - 1; i >= 0; i-- {
		stack = append(stack, frame{el: el.Children[i], parent: parent})
	}
	return stack
}

// register adds the node to the definitions table. The first
// node using an id wins.
func (c *iconCursor) register(n Node) {
	id := n.Base().ID
	if id == "" {
		return
	}
	if !c.doc.Defs.register(id, n) {
		Logger().Debug("svg: duplicate id, keeping the first definition", "id", id)
	}
}

func (c *iconCursor) readStyleElement(el *Element) error {
	sheet, errs, err := ParseStyleSheet(el.Text)
	if err != nil {
		return c.report(err)
	}
	for _, e := range errs {
		if err := c.report(e); err != nil {
			return err
		}
	}
	c.doc.StyleSheets = append(c.doc.StyleSheets, sheet)
	return nil
}

// readBase reads the id, classes, presentation attributes
// and inline style of an element.
func (c *iconCursor) readBase(el *Element) (NodeBase, error) {
	base := NodeBase{Tag: el.Name}
	for _, attr := range el.Attrs {
		name := attr.Name.Local
		switch {
		case name == "id":
			base.ID = strings.TrimSpace(attr.Value)
		case name == "class":
			base.Classes = strings.Fields(attr.Value)
		case name == "style":
			var errs []error
			base.Style, errs = ParseStyle(attr.Value)
			for _, e := range errs {
				if err := c.report(&ParseError{Element: el.Name, Attribute: "style", Err: e}); err != nil {
					return base, err
				}
			}
		case isPresentation(name):
			if err := base.Attrs.Set(name, attr.Value); err != nil {
				if err := c.report(&ParseError{Element: el.Name, Attribute: name, Err: err}); err != nil {
					return base, err
				}
			}
		}
	}
	return base, nil
}

type elementFunc func(c *iconCursor, el *Element, base NodeBase) (Node, error)

var elementFuncs map[string]elementFunc

func init() {
	// avoids cyclical static declaration
	elementFuncs = map[string]elementFunc{
		"svg":            svgF,
		"g":              gF,
		"a":              anchorF,
		"switch":         gF,
		"symbol":         symbolF,
		"line":           lineF,
		"rect":           rectF,
		"circle":         circleF,
		"ellipse":        ellipseF,
		"polyline":       polylineF,
		"polygon":        polygonF,
		"path":           pathF,
		"text":           textF,
		"image":          imageF,
		"use":            useF,
		"linearGradient": linearGradientF,
		"radialGradient": radialGradientF,
		"pattern":        patternF,
		"clipPath":       clipPathF,
		"mask":           maskF,
		"filter":         filterF,
	}
}

// parseElement builds the node for el, without its children.
func (c *iconCursor) parseElement(el *Element) (Node, error) {
	df, ok := elementFuncs[el.Name]
	if !ok {
		return nil, UnsupportedError{Construct: fmt.Sprintf("svg element <%s>", el.Name)}
	}
	base, err := c.readBase(el)
	if err != nil {
		return nil, err
	}
	node, err := df(c, el, base)
	if err != nil {
		var (
			pe *ParseError
			ue UnsupportedError
			me MissingAttributeError
		)
		if !errors.As(err, &pe) && !errors.As(err, &ue) && !errors.As(err, &me) {
			err = &ParseError{Element: el.Name, Err: err}
		}
		return nil, err
	}
	return node, nil
}
