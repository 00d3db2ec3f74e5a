package formats

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/almond/pkg/csg"
	"github.com/Faultbox/almond/pkg/math"
)

// MAP format errors.
var (
	ErrUnexpectedToken       = errors.New("unexpected token")
	ErrInvalidNumber         = errors.New("invalid number")
	ErrTooManyPlanes         = errors.New("too many brush planes")
	ErrUnderconstrainedBrush = errors.New("brush has too few planes")
)

// Brush plane limits.
const (
	MaxBrushPlanes = 100
	MinBrushPlanes = 4
)

// SyntaxError reports a malformed .map file with the position of the
// offending token.
type SyntaxError struct {
	Line int
	Col  int
	Msg  string
	Err  error
}

func (e *SyntaxError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("map:%d:%d: %v: %s", e.Line, e.Col, e.Err, e.Msg)
	}
	return fmt.Sprintf("map:%d:%d: %v", e.Line, e.Col, e.Err)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// MapEntity is one entity block: key/value properties plus brushes.
type MapEntity struct {
	Properties map[string]string
	Brushes    []csg.Brush
}

// ClassName returns the "classname" property.
func (e *MapEntity) ClassName() string {
	return e.Properties["classname"]
}

// Origin parses the "origin" property ("x y z").
func (e *MapEntity) Origin() (math.Vec3, bool) {
	fields := strings.Fields(e.Properties["origin"])
	if len(fields) != 3 {
		return math.Vec3{}, false
	}

	var v [3]float32
	for i, f := range fields {
		n, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return math.Vec3{}, false
		}
		v[i] = float32(n)
	}
	return math.Vec3{X: v[0], Y: v[1], Z: v[2]}, true
}

// Map is a parsed .map file.
type Map struct {
	Entities []*MapEntity
}

// BrushCount returns the number of brushes across all entities.
func (m *Map) BrushCount() int {
	n := 0
	for _, e := range m.Entities {
		n += len(e.Brushes)
	}
	return n
}

// FindByClass returns every entity with the given classname.
func (m *Map) FindByClass(class string) []*MapEntity {
	var out []*MapEntity
	for _, e := range m.Entities {
		if e.ClassName() == class {
			out = append(out, e)
		}
	}
	return out
}

// WalkMap parses data and calls fn for every entity in file order.
// Parsing stops at the first syntax error or the first error from fn,
// which is returned unchanged.
func WalkMap(data []byte, fn func(*MapEntity) error) error {
	p := &mapParser{lex: newMapLexer(data)}

	for {
		tok, err := p.next()
		if err != nil {
			return err
		}
		if tok.kind == tokEOF {
			return nil
		}
		if tok.kind != tokLBrace {
			return p.unexpected(tok, "expected entity")
		}

		entity, err := p.parseEntity()
		if err != nil {
			return err
		}
		if err := fn(entity); err != nil {
			return err
		}
	}
}

// ParseMap parses a complete .map file.
func ParseMap(data []byte) (*Map, error) {
	m := &Map{}
	err := WalkMap(data, func(e *MapEntity) error {
		m.Entities = append(m.Entities, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// LoadMap loads a .map file from disk.
func LoadMap(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading map file: %w", err)
	}
	return ParseMap(data)
}

type mapParser struct {
	lex    *mapLexer
	peeked *mapToken
}

func (p *mapParser) next() (mapToken, error) {
	if p.peeked != nil {
		tok := *p.peeked
		p.peeked = nil
		return tok, nil
	}
	return p.lex.next()
}

func (p *mapParser) peek() (mapToken, error) {
	if p.peeked == nil {
		tok, err := p.lex.next()
		if err != nil {
			return tok, err
		}
		p.peeked = &tok
	}
	return *p.peeked, nil
}

func (p *mapParser) unexpected(tok mapToken, what string) error {
	msg := fmt.Sprintf("%s, got %s", what, tok.kind)
	if tok.kind == tokWord || tok.kind == tokString {
		msg += fmt.Sprintf(" %q", tok.text)
	}
	return &SyntaxError{Line: tok.line, Col: tok.col, Msg: msg, Err: ErrUnexpectedToken}
}

func (p *mapParser) expect(kind mapTokenKind) (mapToken, error) {
	tok, err := p.next()
	if err != nil {
		return tok, err
	}
	if tok.kind != kind {
		return tok, p.unexpected(tok, "expected "+kind.String())
	}
	return tok, nil
}

func (p *mapParser) number() (float32, error) {
	tok, err := p.expect(tokWord)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseFloat(tok.text, 32)
	if err != nil {
		return 0, &SyntaxError{Line: tok.line, Col: tok.col, Msg: strconv.Quote(tok.text), Err: ErrInvalidNumber}
	}
	return float32(n), nil
}

func (p *mapParser) point() (math.Vec3, error) {
	if _, err := p.expect(tokLParen); err != nil {
		return math.Vec3{}, err
	}
	var v [3]float32
	for i := range v {
		n, err := p.number()
		if err != nil {
			return math.Vec3{}, err
		}
		v[i] = n
	}
	if _, err := p.expect(tokRParen); err != nil {
		return math.Vec3{}, err
	}
	return math.Vec3{X: v[0], Y: v[1], Z: v[2]}, nil
}

// parseEntity parses the body of an entity after its opening brace.
func (p *mapParser) parseEntity() (*MapEntity, error) {
	entity := &MapEntity{Properties: make(map[string]string)}

	for {
		tok, err := p.next()
		if err != nil {
			return nil, err
		}

		switch tok.kind {
		case tokString:
			value, err := p.expect(tokString)
			if err != nil {
				return nil, err
			}
			entity.Properties[tok.text] = value.text
		case tokLBrace:
			brush, err := p.parseBrush(tok)
			if err != nil {
				return nil, err
			}
			entity.Brushes = append(entity.Brushes, brush)
		case tokRBrace:
			return entity, nil
		default:
			return nil, p.unexpected(tok, "expected property, brush or '}'")
		}
	}
}

// parseBrush parses planes up to the closing brace. open is the brace that
// started the brush.
func (p *mapParser) parseBrush(open mapToken) (csg.Brush, error) {
	var brush csg.Brush

	for {
		tok, err := p.peek()
		if err != nil {
			return csg.Brush{}, err
		}
		if tok.kind == tokRBrace {
			p.peeked = nil
			break
		}
		if len(brush.Planes) == MaxBrushPlanes {
			return csg.Brush{}, &SyntaxError{
				Line: tok.line, Col: tok.col,
				Msg: fmt.Sprintf("limit is %d", MaxBrushPlanes),
				Err: ErrTooManyPlanes,
			}
		}

		plane, err := p.parsePlane(tok)
		if err != nil {
			return csg.Brush{}, err
		}
		brush.Planes = append(brush.Planes, plane)
	}

	if len(brush.Planes) < MinBrushPlanes {
		return csg.Brush{}, &SyntaxError{
			Line: open.line, Col: open.col,
			Msg: fmt.Sprintf("%d planes, need at least %d", len(brush.Planes), MinBrushPlanes),
			Err: ErrUnderconstrainedBrush,
		}
	}
	return brush, nil
}

// parsePlane parses "( a ) ( b ) ( c ) MATERIAL xoff yoff rot xscale yscale",
// optionally followed by numeric surface flags.
func (p *mapParser) parsePlane(start mapToken) (csg.Plane, error) {
	var pts [3]math.Vec3
	for i := range pts {
		v, err := p.point()
		if err != nil {
			return csg.Plane{}, err
		}
		pts[i] = v
	}

	plane, err := csg.NewPlane(pts[0], pts[1], pts[2])
	if err != nil {
		return csg.Plane{}, &SyntaxError{Line: start.line, Col: start.col, Err: err}
	}

	material, err := p.next()
	if err != nil {
		return csg.Plane{}, err
	}
	if material.kind != tokWord && material.kind != tokString {
		return csg.Plane{}, p.unexpected(material, "expected material")
	}
	plane.Material = material.text

	var tex [5]float32
	for i := range tex {
		n, err := p.number()
		if err != nil {
			return csg.Plane{}, err
		}
		tex[i] = n
	}
	plane.Tex = csg.TexInfo{
		Offset:   math.Vec2{X: tex[0], Y: tex[1]},
		Rotation: tex[2],
		Scale:    math.Vec2{X: tex[3], Y: tex[4]},
	}

	// Quake 2 surface flags follow the scale; they carry nothing we use.
	for {
		tok, err := p.peek()
		if err != nil {
			return csg.Plane{}, err
		}
		if tok.kind != tokWord {
			break
		}
		if _, err := strconv.ParseFloat(tok.text, 32); err != nil {
			return csg.Plane{}, p.unexpected(tok, "expected '(' or '}'")
		}
		p.peeked = nil
	}

	return plane, nil
}
