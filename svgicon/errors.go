package svgicon

import (
	"errors"
	"fmt"

	"github.com/benoitkugler/svglayer/svgpath"
)

// ErrorMode is the for setting how the parser reacts to unparsed elements
type ErrorMode uint8

const (
	// IgnoreErrorMode skips invalid attributes and elements silently.
	IgnoreErrorMode ErrorMode = iota
	// WarnErrorMode skips invalid attributes and elements,
	// logging a warning for each of them.
	WarnErrorMode
	// StrictErrorMode aborts the parsing on the first error.
	StrictErrorMode
)

func (m ErrorMode) String() string {
	switch m {
	case IgnoreErrorMode:
		return "ignore"
	case WarnErrorMode:
		return "warn"
	case StrictErrorMode:
		return "strict"
	default:
		return "<unknown ErrorMode>"
	}
}

// ErrInvalid is the syntax error kind; it is the same value
// as svgpath.ErrInvalid so that errors.Is works across packages.
var ErrInvalid = svgpath.ErrInvalid

var errZeroLengthID = errors.New("zero length id")

// MissingAttributeError is returned when a required attribute is absent.
type MissingAttributeError struct {
	Element, Name string
}

func (e MissingAttributeError) Error() string {
	return fmt.Sprintf("missing attribute %q on <%s>", e.Name, e.Element)
}

// UnsupportedError is returned for recognized constructs which
// can't be honored, such as unknown filter primitives.
type UnsupportedError struct {
	Construct string
}

func (e UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported construct: %s", e.Construct)
}

// ParseError locates an error in the document.
type ParseError struct {
	Element   string
	Attribute string // may be empty
	Err       error
}

func (e *ParseError) Error() string {
	if e.Attribute == "" {
		return fmt.Sprintf("<%s>: %s", e.Element, e.Err)
	}
	return fmt.Sprintf("<%s %s>: %s", e.Element, e.Attribute, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
