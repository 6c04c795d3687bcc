package svgpath

import (
	"fmt"
	"math"
)

// pathCursor is the state of the path data reader
type pathCursor struct {
	sc   *Scanner
	path Path

	cur, start Point
	// last control point, valid only right after
	// a cubic (resp. quadratic) segment
	lastCubic, lastQuad       Point
	hasLastCubic, hasLastQuad bool
}

func isCommand(b byte) bool {
	switch b {
	case 'M', 'm', 'L', 'l', 'H', 'h', 'V', 'v', 'C', 'c', 'S', 's',
		'Q', 'q', 'T', 't', 'A', 'a', 'Z', 'z':
		return true
	}
	return false
}

// ParsePathData parses the 'd' attribute of a path element into
// a normalized path. An empty input yields a single MoveTo(0, 0).
// Any malformed token aborts the whole path.
func ParsePathData(d string) (Path, error) {
	c := pathCursor{sc: NewScanner(d)}
	c.sc.Skip(Whitespace)
	if c.sc.AtEnd() {
		return Path{MoveTo{}}, nil
	}
	if b, _ := c.sc.Peek(); b != 'M' && b != 'm' {
		return nil, fmt.Errorf("%w: path data must start with a move, got %q", ErrInvalid, b)
	}

	var cmd byte
	for {
		c.sc.Skip(Whitespace)
		b, ok := c.sc.Peek()
		if !ok {
			break
		}
		if isCommand(b) {
			c.sc.SkipByte(b)
			cmd = b
			if cmd == 'Z' || cmd == 'z' {
				c.closePath()
				continue
			}
			if err := c.segment(cmd, true); err != nil {
				return nil, err
			}
			// implicit repetitions of a move are lines
			switch cmd {
			case 'M':
				cmd = 'L'
			case 'm':
				cmd = 'l'
			}
			continue
		}
		if cmd == 'Z' || cmd == 'z' || !c.sc.startsNumber() && b != ',' {
			return nil, fmt.Errorf("%w: unexpected %q in path data", ErrInvalid, b)
		}
		if err := c.segment(cmd, false); err != nil {
			return nil, err
		}
	}
	return c.path, nil
}

// args reads n numbers; the first one may be preceded by a comma
// only on implicit repetitions.
func (c *pathCursor) args(n int, first Class) ([]float64, error) {
	out := make([]float64, n)
	for i := range out {
		skip := CommaWhitespace
		if i == 0 {
			skip = first
		}
		f, err := c.sc.ScanNumber(skip)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

func (c *pathCursor) rel(relative bool, x, y float64) Point {
	if relative {
		return Point{c.cur.X + x, c.cur.Y + y}
	}
	return Point{x, y}
}

func (c *pathCursor) closePath() {
	c.path.Stop(true)
	c.cur = c.start
	c.hasLastCubic, c.hasLastQuad = false, false
}

func (c *pathCursor) lineTo(p Point) {
	c.path.Line(p)
	c.cur = p
}

func (c *pathCursor) cubicTo(cp1, cp2, p Point) {
	c.path.CubeBezier(cp1, cp2, p)
	c.cur = p
	c.lastCubic, c.hasLastCubic = cp2, true
}

// quadTo elevates the quadratic curve to a cubic one
func (c *pathCursor) quadTo(q, p Point) {
	p0 := c.cur
	cp1 := p0.Add(q.Sub(p0).Mul(2. / 3))
	cp2 := p.Add(q.Sub(p).Mul(2. / 3))
	c.path.CubeBezier(cp1, cp2, p)
	c.cur = p
	c.lastQuad, c.hasLastQuad = q, true
}

// reflect returns 2*cur - ctrl, or cur if ctrl is not valid.
func (c *pathCursor) reflect(ctrl Point, valid bool) Point {
	if !valid {
		return c.cur
	}
	return c.cur.Mul(2).Sub(ctrl)
}

// segment reads one set of arguments for cmd and
// appends the resulting operations.
func (c *pathCursor) segment(cmd byte, explicit bool) error {
	first := CommaWhitespace
	if explicit {
		first = Whitespace
	}
	relative := 'a' <= cmd && cmd <= 'z'
	wasCubic, wasQuad := c.hasLastCubic, c.hasLastQuad
	c.hasLastCubic, c.hasLastQuad = false, false

	switch cmd {
	case 'M', 'm':
		a, err := c.args(2, first)
		if err != nil {
			return err
		}
		p := c.rel(relative, a[0], a[1])
		c.path.Start(p)
		c.cur, c.start = p, p
	case 'L', 'l':
		a, err := c.args(2, first)
		if err != nil {
			return err
		}
		c.lineTo(c.rel(relative, a[0], a[1]))
	case 'H', 'h':
		a, err := c.args(1, first)
		if err != nil {
			return err
		}
		x := a[0]
		if relative {
			x += c.cur.X
		}
		c.lineTo(Point{x, c.cur.Y})
	case 'V', 'v':
		a, err := c.args(1, first)
		if err != nil {
			return err
		}
		y := a[0]
		if relative {
			y += c.cur.Y
		}
		c.lineTo(Point{c.cur.X, y})
	case 'C', 'c':
		a, err := c.args(6, first)
		if err != nil {
			return err
		}
		c.cubicTo(c.rel(relative, a[0], a[1]), c.rel(relative, a[2], a[3]), c.rel(relative, a[4], a[5]))
	case 'S', 's':
		a, err := c.args(4, first)
		if err != nil {
			return err
		}
		cp1 := c.reflect(c.lastCubic, wasCubic)
		c.cubicTo(cp1, c.rel(relative, a[0], a[1]), c.rel(relative, a[2], a[3]))
	case 'Q', 'q':
		a, err := c.args(4, first)
		if err != nil {
			return err
		}
		c.quadTo(c.rel(relative, a[0], a[1]), c.rel(relative, a[2], a[3]))
	case 'T', 't':
		a, err := c.args(2, first)
		if err != nil {
			return err
		}
		q := c.reflect(c.lastQuad, wasQuad)
		c.quadTo(q, c.rel(relative, a[0], a[1]))
	case 'A', 'a':
		return c.arc(relative, first)
	default:
		return fmt.Errorf("%w: unknown path command %q", ErrInvalid, cmd)
	}
	return nil
}

func (c *pathCursor) arc(relative bool, first Class) error {
	radii, err := c.args(3, first)
	if err != nil {
		return err
	}
	largeArc, err := c.sc.ScanFlag(CommaWhitespace)
	if err != nil {
		return err
	}
	sweep, err := c.sc.ScanFlag(CommaWhitespace)
	if err != nil {
		return err
	}
	end, err := c.args(2, CommaWhitespace)
	if err != nil {
		return err
	}
	p := c.rel(relative, end[0], end[1])
	rx, ry := math.Abs(radii[0]), math.Abs(radii[1])
	if p == c.cur {
		return nil
	}
	if rx == 0 || ry == 0 {
		c.lineTo(p)
		return nil
	}
	rotX := degToRad(radii[2])
	cx, cy := findEllipseCenter(&rx, &ry, rotX, c.cur.X, c.cur.Y, p.X, p.Y, !sweep, !largeArc)
	c.cur = c.path.addArc(arcParams{rx: rx, ry: ry, rotX: rotX, largeArc: largeArc, sweep: sweep, end: p}, cx, cy, c.cur)
	return nil
}
