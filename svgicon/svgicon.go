// Package svgicon parses SVG documents into a typed document tree,
// and resolves the cascade of presentation attributes.
// The tree can then be compiled into a scene graph by the svglayer package,
// and drawn by painting backends such as svgraster or svgpdf.
package svgicon

import (
	"io"
	"os"

	"github.com/benoitkugler/svglayer/svgpath"
)

// Document is the typed result of the parsing of an SVG file.
// It is immutable once returned by Parse.
type Document struct {
	Root         *Svg
	Defs         Defs
	StyleSheets  []StyleSheet
	Titles       []string // Title elements collect here
	Descriptions []string // Description elements collect here
}

// ViewBox returns the viewBox of the root element, or nil.
func (doc *Document) ViewBox() *svgpath.ViewBox { return doc.Root.ViewBox }

// Size returns the width and height of the root element. Percentages
// are relative to the viewBox. When not specified, the dimension of the
// viewBox is used, or 0 without viewBox.
func (doc *Document) Size() (width, height float64) {
	var vbW, vbH float64
	if vb := doc.Root.ViewBox; vb != nil {
		vbW, vbH = vb.W, vb.H
	}
	width, height = vbW, vbH
	if l := doc.Root.Width; l != nil {
		width = l.Resolve(vbW, defaultFontSize)
	}
	if l := doc.Root.Height; l != nil {
		height = l.Resolve(vbH, defaultFontSize)
	}
	return width, height
}

const defaultFontSize = 16

// ReadIconStream reads the Icon from the given io.Reader
// errMode determines if the icon ignores, errors out, or logs a warning
// if it does not handle an element found in the icon file.
func ReadIconStream(stream io.Reader, errMode ErrorMode) (*Document, error) {
	root, err := ReadElementTree(stream)
	if err != nil {
		return nil, err
	}
	return Parse(root, errMode)
}

// ReadIcon reads the Icon from the named file
// errMode determines if the icon ignores, errors out, or logs a warning
// if it does not handle an element found in the icon file.
func ReadIcon(iconFile string, errMode ErrorMode) (*Document, error) {
	fin, errf := os.Open(iconFile)
	if errf != nil {
		return nil, errf
	}
	defer fin.Close()
	return ReadIconStream(fin, errMode)
}
