package svgicon

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

// Element is a generic XML element, the input of the parser.
type Element struct {
	Name string
	// Space is the namespace URL of the element, or its prefix
	// if undeclared. Empty when no namespace applies.
	Space    string
	Attrs    []xml.Attr
	Children []*Element
	// Text is the concatenated character data directly inside the element.
	Text string
}

// Attr returns the value of the attribute with the given local name.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// SvgNamespace is the XML namespace of SVG elements.
const SvgNamespace = "http://www.w3.org/2000/svg"

// isForeign returns true for elements from another XML vocabulary,
// such as the editor data written by Inkscape.
func (e *Element) isForeign() bool {
	return e.Space != "" && e.Space != SvgNamespace
}

var errNoRoot = errors.New("invalid svg xml icon: no root element")

// ReadElementTree reads the whole XML document from stream.
// Non UTF-8 encodings declared in the prolog are supported.
func ReadElementTree(stream io.Reader) (*Element, error) {
	decoder := xml.NewDecoder(stream)
	decoder.CharsetReader = charset.NewReaderLabel
	var (
		root  *Element
		stack []*Element
		text  []*strings.Builder
	)
	for {
		t, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		// Inspect the type of the XML token
		switch se := t.(type) {
		case xml.StartElement:
			el := &Element{Name: se.Name.Local, Space: se.Name.Space, Attrs: se.Copy().Attr}
			if len(stack) == 0 {
				if root != nil {
					return nil, errors.New("invalid svg xml icon: multiple root elements")
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, el)
			}
			stack = append(stack, el)
			text = append(text, new(strings.Builder))
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, errors.New("invalid svg xml icon: unbalanced end element")
			}
			top := len(stack) - 1
			stack[top].Text = text[top].String()
			stack, text = stack[:top], text[:top]
		case xml.CharData:
			if len(stack) != 0 {
				text[len(text)-1].Write(se)
			}
		}
	}
	if root == nil {
		return nil, errNoRoot
	}
	return root, nil
}
