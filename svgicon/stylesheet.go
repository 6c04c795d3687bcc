package svgicon

import (
	"fmt"
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
)

// SelectorKind is the kind of the simple selectors supported
// in style sheets.
type SelectorKind uint8

const (
	SelectUniversal SelectorKind = iota // *
	SelectType                          // rect
	SelectClass                         // .name
	SelectID                            // #name
)

// Selector is a simple selector. Compound or combined selectors
// are not supported.
type Selector struct {
	Kind SelectorKind
	Name string
}

func (s Selector) String() string {
	switch s.Kind {
	case SelectUniversal:
		return "*"
	case SelectClass:
		return "." + s.Name
	case SelectID:
		return "#" + s.Name
	default:
		return s.Name
	}
}

func parseSelector(s string) (Selector, error) {
	s = strings.TrimSpace(s)
	if s == "*" {
		return Selector{Kind: SelectUniversal}, nil
	}
	kind, name := SelectType, s
	switch {
	case strings.HasPrefix(s, "."):
		kind, name = SelectClass, s[1:]
	case strings.HasPrefix(s, "#"):
		kind, name = SelectID, s[1:]
	}
	if name == "" || strings.ContainsAny(name, " \t\n>+~.#[]:*,()") {
		return Selector{}, UnsupportedError{Construct: fmt.Sprintf("css selector %q", s)}
	}
	return Selector{Kind: kind, Name: name}, nil
}

// Rule binds a selector to the attributes it sets.
type Rule struct {
	Selector Selector
	Attrs    Attributes
}

// StyleSheet is the ordered list of rules of a 'style' element.
// Rules are applied in the order they are written.
type StyleSheet struct {
	Rules []Rule
}

// ParseStyleSheet parses the content of a 'style' element.
// Selector lists are split into one rule per selector.
// Unsupported selectors, at-rules and invalid declarations are
// skipped and reported in errs; a syntax error in the CSS itself
// is returned as err.
func ParseStyleSheet(text string) (sheet StyleSheet, errs []error, err error) {
	parsed, err := parser.Parse(text)
	if err != nil {
		return StyleSheet{}, nil, fmt.Errorf("%w: style sheet: %s", ErrInvalid, err)
	}
	for _, r := range parsed.Rules {
		if r.Kind == css.AtRule {
			errs = append(errs, UnsupportedError{Construct: "css at-rule " + r.Name})
			continue
		}
		var attrs Attributes
		for _, decl := range r.Declarations {
			if err := attrs.Set(strings.ToLower(decl.Property), decl.Value); err != nil {
				errs = append(errs, &ParseError{Element: "style", Attribute: decl.Property, Err: err})
			}
		}
		for _, sel := range r.Selectors {
			s, err := parseSelector(sel)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			sheet.Rules = append(sheet.Rules, Rule{Selector: s, Attrs: attrs})
		}
	}
	return sheet, errs, nil
}

// applySelector merges onto res the attributes of every rule
// matching sel, in sheet order then rule order.
func applySelector(res Attributes, sheets []StyleSheet, sel Selector) Attributes {
	for _, sheet := range sheets {
		for _, r := range sheet.Rules {
			if r.Selector == sel {
				res = res.Merge(r.Attrs)
			}
		}
	}
	return res
}

// Resolve computes the effective presentation attributes of a node:
//
//	direct ← sheet(*) ← sheet(element) ← sheet(class)… ← sheet(id) ← inline style
//
// where later entries override earlier ones, per field.
func Resolve(node *NodeBase, sheets []StyleSheet) Attributes {
	var res Attributes
	if len(sheets) != 0 {
		res = applySelector(res, sheets, Selector{Kind: SelectUniversal})
		res = applySelector(res, sheets, Selector{Kind: SelectType, Name: node.Tag})
		for _, class := range node.Classes {
			res = applySelector(res, sheets, Selector{Kind: SelectClass, Name: class})
		}
		if node.ID != "" {
			res = applySelector(res, sheets, Selector{Kind: SelectID, Name: node.ID})
		}
	}
	res = res.Merge(node.Style)
	return node.Attrs.Merge(res)
}
