package svgpath

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalid is returned (possibly wrapped) by every scan or value parser
// when the input is syntactically malformed.
var ErrInvalid = errors.New("invalid syntax")

// ErrParamMismatch is returned when a function-like value (transform, color)
// receives the wrong number of arguments.
var ErrParamMismatch = fmt.Errorf("%w: param mismatch", ErrInvalid)

// Class is a set of characters skipped before a lexeme.
type Class uint8

const (
	// NoSpace skips nothing.
	NoSpace Class = iota
	// Whitespace skips space, tab, CR, LF and form feed.
	Whitespace
	// CommaWhitespace skips whitespace and at most one comma.
	CommaWhitespace
)

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f'
}

func isDigit(b byte) bool { return '0' <= b && b <= '9' }

func isHexDigit(b byte) bool {
	return isDigit(b) || ('a' <= b && b <= 'f') || ('A' <= b && b <= 'F')
}

func isIdentByte(b byte) bool {
	return ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z') || b == '-' || b == '_'
}

// Scanner is a cursor over attribute text. Every Scan method either
// succeeds and advances the cursor, or fails and leaves it untouched.
type Scanner struct {
	src string
	pos int
}

// NewScanner returns a scanner positioned at the start of s.
func NewScanner(s string) *Scanner { return &Scanner{src: s} }

// Pos returns the current byte offset.
func (s *Scanner) Pos() int { return s.pos }

// Remaining returns the unread part of the input.
func (s *Scanner) Remaining() string { return s.src[s.pos:] }

// AtEnd reports whether the whole input has been consumed.
func (s *Scanner) AtEnd() bool { return s.pos >= len(s.src) }

// Peek returns the next byte without consuming it.
func (s *Scanner) Peek() (byte, bool) {
	if s.AtEnd() {
		return 0, false
	}
	return s.src[s.pos], true
}

// Skip advances over the characters of class c.
func (s *Scanner) Skip(c Class) {
	switch c {
	case Whitespace:
		for s.pos < len(s.src) && isSpace(s.src[s.pos]) {
			s.pos++
		}
	case CommaWhitespace:
		s.Skip(Whitespace)
		if s.pos < len(s.src) && s.src[s.pos] == ',' {
			s.pos++
			s.Skip(Whitespace)
		}
	}
}

// SkipByte consumes b if it is the next byte.
func (s *Scanner) SkipByte(b byte) bool {
	if s.pos < len(s.src) && s.src[s.pos] == b {
		s.pos++
		return true
	}
	return false
}

// Expect skips the class c then requires the byte b.
func (s *Scanner) Expect(c Class, b byte) error {
	save := s.pos
	s.Skip(c)
	if !s.SkipByte(b) {
		s.pos = save
		return fmt.Errorf("%w: expected %q at offset %d", ErrInvalid, b, save)
	}
	return nil
}

// startsNumber reports whether a number may start at the cursor.
func (s *Scanner) startsNumber() bool {
	b, ok := s.Peek()
	return ok && (isDigit(b) || b == '-' || b == '+' || b == '.')
}

// ScanNumber reads a signed decimal number with optional fraction and
// exponent, after skipping the class c.
func (s *Scanner) ScanNumber(c Class) (float64, error) {
	save := s.pos
	s.Skip(c)
	start := s.pos
	src := s.src
	i := s.pos
	if i < len(src) && (src[i] == '+' || src[i] == '-') {
		i++
	}
	digits := 0
	for i < len(src) && isDigit(src[i]) {
		i++
		digits++
	}
	if i < len(src) && src[i] == '.' && i+1 < len(src) && isDigit(src[i+1]) {
		i++
		for i < len(src) && isDigit(src[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		s.pos = save
		return 0, fmt.Errorf("%w: expected number at offset %d", ErrInvalid, start)
	}
	// the exponent is only taken when digits follow
	if i < len(src) && (src[i] == 'e' || src[i] == 'E') {
		j := i + 1
		if j < len(src) && (src[j] == '+' || src[j] == '-') {
			j++
		}
		if j < len(src) && isDigit(src[j]) {
			for j < len(src) && isDigit(src[j]) {
				j++
			}
			i = j
		}
	}
	f, err := strconv.ParseFloat(src[start:i], 64)
	if err != nil {
		s.pos = save
		return 0, fmt.Errorf("%w: %s", ErrInvalid, err)
	}
	s.pos = i
	return f, nil
}

// ScanFlag reads a single '0' or '1', as used by arc flags.
func (s *Scanner) ScanFlag(c Class) (bool, error) {
	save := s.pos
	s.Skip(c)
	switch b, _ := s.Peek(); b {
	case '0':
		s.pos++
		return false, nil
	case '1':
		s.pos++
		return true, nil
	}
	s.pos = save
	return false, fmt.Errorf("%w: expected flag at offset %d", ErrInvalid, save)
}

// ScanIdent reads an identifier made of letters, '-' and '_'.
func (s *Scanner) ScanIdent(c Class) (string, error) {
	save := s.pos
	s.Skip(c)
	start := s.pos
	for s.pos < len(s.src) && isIdentByte(s.src[s.pos]) {
		s.pos++
	}
	if s.pos == start {
		s.pos = save
		return "", fmt.Errorf("%w: expected identifier at offset %d", ErrInvalid, start)
	}
	return s.src[start:s.pos], nil
}

// ScanHex reads a run of hexadecimal digits.
func (s *Scanner) ScanHex() (string, error) {
	start := s.pos
	for s.pos < len(s.src) && isHexDigit(s.src[s.pos]) {
		s.pos++
	}
	if s.pos == start {
		return "", fmt.Errorf("%w: expected hex digits at offset %d", ErrInvalid, start)
	}
	return s.src[start:s.pos], nil
}

// ExpectEnd succeeds if only whitespace remains.
func (s *Scanner) ExpectEnd() error {
	save := s.pos
	s.Skip(Whitespace)
	if !s.AtEnd() {
		s.pos = save
		return fmt.Errorf("%w: unexpected %q", ErrInvalid, s.Remaining())
	}
	return nil
}
