package formats

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Faultbox/almond/pkg/csg"
	"github.com/Faultbox/almond/pkg/math"
)

// boxBrushText returns a brush for the box [-64,64]x[-64,64]x[-16,16].
func boxBrushText(material string) string {
	return fmt.Sprintf(`{
( -64 -64 -16 ) ( -64 -63 -16 ) ( -64 -64 -15 ) %[1]s 0 0 0 1 1
( -64 -64 -16 ) ( -64 -64 -15 ) ( -63 -64 -16 ) %[1]s 0 0 0 1 1
( -64 -64 -16 ) ( -63 -64 -16 ) ( -64 -63 -16 ) %[1]s 16 8 45 0.5 2
( 64 64 16 ) ( 64 65 16 ) ( 65 64 16 ) %[1]s 0 0 0 1 1
( 64 64 16 ) ( 65 64 16 ) ( 64 64 17 ) %[1]s 0 0 0 1 1
( 64 64 16 ) ( 64 64 17 ) ( 64 65 16 ) %[1]s 0 0 0 1 1
}
`, material)
}

func createTestMap() []byte {
	var b strings.Builder
	b.WriteString("// Game: Quake\n// Format: Standard\n")
	b.WriteString("// entity 0\n{\n\"classname\" \"worldspawn\"\n\"message\" \"The Keep // not a comment\"\n")
	b.WriteString("// brush 0\n")
	b.WriteString(boxBrushText("base/floor"))
	b.WriteString(boxBrushText("*water1"))
	b.WriteString("}\n")
	b.WriteString("{\n\"classname\" \"info_player_start\"\n\"origin\" \"32 -16 24\"\n\"angle\" \"90\"\n}\n")
	return []byte(b.String())
}

func TestParseMap_ValidFile(t *testing.T) {
	m, err := ParseMap(createTestMap())
	if err != nil {
		t.Fatalf("ParseMap failed: %v", err)
	}

	if len(m.Entities) != 2 {
		t.Fatalf("expected 2 entities, got %d", len(m.Entities))
	}
	if m.BrushCount() != 2 {
		t.Errorf("expected 2 brushes, got %d", m.BrushCount())
	}

	world := m.Entities[0]
	if world.ClassName() != "worldspawn" {
		t.Errorf("expected classname worldspawn, got %q", world.ClassName())
	}
	if got := world.Properties["message"]; got != "The Keep // not a comment" {
		t.Errorf("unexpected message %q", got)
	}
	if _, ok := world.Origin(); ok {
		t.Error("worldspawn should have no origin")
	}

	brush := world.Brushes[0]
	if len(brush.Planes) != 6 {
		t.Fatalf("expected 6 planes, got %d", len(brush.Planes))
	}
	if brush.Planes[0].Material != "base/floor" {
		t.Errorf("expected material base/floor, got %q", brush.Planes[0].Material)
	}
	if world.Brushes[1].Planes[0].Material != "*water1" {
		t.Errorf("expected material *water1, got %q", world.Brushes[1].Planes[0].Material)
	}

	// Normals point into the solid.
	wantNormals := []math.Vec3{{X: 1}, {Y: 1}, {Z: 1}, {Z: -1}, {Y: -1}, {X: -1}}
	for i, want := range wantNormals {
		if !brush.Planes[i].Normal.ApproxEqual(want, 1e-6) {
			t.Errorf("plane %d: expected normal %v, got %v", i, want, brush.Planes[i].Normal)
		}
	}

	tex := brush.Planes[2].Tex
	if tex.Offset != (math.Vec2{X: 16, Y: 8}) || tex.Rotation != 45 || tex.Scale != (math.Vec2{X: 0.5, Y: 2}) {
		t.Errorf("unexpected tex info %+v", tex)
	}

	spawn := m.FindByClass("info_player_start")
	if len(spawn) != 1 {
		t.Fatalf("expected 1 spawn, got %d", len(spawn))
	}
	origin, ok := spawn[0].Origin()
	if !ok || origin != (math.Vec3{X: 32, Y: -16, Z: 24}) {
		t.Errorf("unexpected origin %v (ok=%v)", origin, ok)
	}
}

func TestParseMap_BrushBuildsBox(t *testing.T) {
	m, err := ParseMap(createTestMap())
	if err != nil {
		t.Fatalf("ParseMap failed: %v", err)
	}

	mesh, err := csg.BrushToMesh(m.Entities[0].Brushes[0], csg.DefaultOptions())
	if err != nil {
		t.Fatalf("BrushToMesh failed: %v", err)
	}
	if len(mesh.Vertices) != 8 || mesh.TriangleCount() != 12 {
		t.Errorf("expected 8 vertices and 12 triangles, got %d and %d", len(mesh.Vertices), mesh.TriangleCount())
	}

	lo, hi := mesh.Bounds()
	if !lo.ApproxEqual(math.Vec3{X: -64, Y: -64, Z: -16}, 1e-3) || !hi.ApproxEqual(math.Vec3{X: 64, Y: 64, Z: 16}, 1e-3) {
		t.Errorf("unexpected bounds %v %v", lo, hi)
	}
}

func TestParseMap_SurfaceFlags(t *testing.T) {
	data := strings.ReplaceAll(boxBrushText("e1u1/floor1_3"), " 1 1\n", " 1 1 0 0 0\n")
	m, err := ParseMap([]byte("{\n\"classname\" \"worldspawn\"\n" + data + "}\n"))
	if err != nil {
		t.Fatalf("ParseMap failed: %v", err)
	}
	if got := len(m.Entities[0].Brushes[0].Planes); got != 6 {
		t.Errorf("expected 6 planes, got %d", got)
	}
}

func TestParseMap_Empty(t *testing.T) {
	m, err := ParseMap([]byte("// nothing here\n\n"))
	if err != nil {
		t.Fatalf("ParseMap failed: %v", err)
	}
	if len(m.Entities) != 0 {
		t.Errorf("expected no entities, got %d", len(m.Entities))
	}
}

func TestParseMap_Errors(t *testing.T) {
	plane := "( 0 0 0 ) ( 0 1 0 ) ( 1 0 0 ) tex 0 0 0 1 1\n"

	tests := []struct {
		name string
		data string
		want error
		line int
	}{
		{"unterminated string", "{\n\"classname\" \"worldspawn\n}", ErrUnterminatedString, 2},
		{"missing value", "{\n\"classname\" }", ErrUnexpectedToken, 2},
		{"stray top-level token", "worldspawn", ErrUnexpectedToken, 1},
		{"unexpected eof", "{\n\"classname\" \"worldspawn\"\n", ErrUnexpectedToken, 3},
		{"missing paren", "{\n{\n( 0 0 0 ( 0 1 0 ) ( 1 0 0 ) tex 0 0 0 1 1\n}\n}", ErrUnexpectedToken, 3},
		{"invalid number", "{\n{\n( 0 0 zero ) ( 0 1 0 ) ( 1 0 0 ) tex 0 0 0 1 1\n}\n}", ErrInvalidNumber, 3},
		{"missing material", "{\n{\n( 0 0 0 ) ( 0 1 0 ) ( 1 0 0 ) { 0 0 0 1 1\n}\n}", ErrUnexpectedToken, 3},
		{"too few planes", "{\n{\n" + strings.Repeat(plane, 3) + "}\n}", ErrUnderconstrainedBrush, 2},
		{"too many planes", "{\n{\n" + strings.Repeat(plane, MaxBrushPlanes+1) + "}\n}", ErrTooManyPlanes, MaxBrushPlanes + 3},
		{"degenerate plane", "{\n{\n( 0 0 0 ) ( 1 1 1 ) ( 2 2 2 ) tex 0 0 0 1 1\n}\n}", csg.ErrDegeneratePlane, 3},
		{"valve 220 axes", "{\n{\n( 0 0 0 ) ( 0 1 0 ) ( 1 0 0 ) tex [ 1 0 0 0 ] [ 0 -1 0 0 ] 0 1 1\n}\n}", ErrInvalidNumber, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMap([]byte(tt.data))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}

			var syn *SyntaxError
			if !errors.As(err, &syn) {
				t.Fatalf("expected *SyntaxError, got %T", err)
			}
			if syn.Line != tt.line {
				t.Errorf("expected line %d, got %d (%v)", tt.line, syn.Line, err)
			}
		})
	}
}

func TestWalkMap_StopsOnCallbackError(t *testing.T) {
	stop := errors.New("stop")
	calls := 0

	err := WalkMap(createTestMap(), func(e *MapEntity) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) {
		t.Errorf("expected callback error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestSyntaxError_Message(t *testing.T) {
	_, err := ParseMap([]byte("{\n  }\n}"))
	if err == nil {
		t.Fatal("expected error")
	}
	want := "map:3:1: unexpected token: expected entity, got '}'"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}

func TestLoadMap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.map")
	if err := os.WriteFile(path, createTestMap(), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := LoadMap(path)
	if err != nil {
		t.Fatalf("LoadMap failed: %v", err)
	}
	if len(m.Entities) != 2 {
		t.Errorf("expected 2 entities, got %d", len(m.Entities))
	}

	if _, err := LoadMap(filepath.Join(t.TempDir(), "missing.map")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestMapEntity_Origin(t *testing.T) {
	tests := []struct {
		origin string
		ok     bool
	}{
		{"1 2 3", true},
		{" -8.5  0 1e2 ", true},
		{"1 2", false},
		{"1 two 3", false},
		{"", false},
	}
	for _, tt := range tests {
		e := &MapEntity{Properties: map[string]string{"origin": tt.origin}}
		if _, ok := e.Origin(); ok != tt.ok {
			t.Errorf("Origin(%q): expected ok=%v", tt.origin, tt.ok)
		}
	}
}
