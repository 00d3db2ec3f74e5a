package level

import (
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/almond/internal/config"
	"github.com/Faultbox/almond/internal/engine/collision"
	"github.com/Faultbox/almond/pkg/arena"
	"github.com/Faultbox/almond/pkg/csg"
	"github.com/Faultbox/almond/pkg/formats"
	"github.com/Faultbox/almond/pkg/math"
)

// Options controls level loading.
type Options struct {
	Mesh csg.Options

	// Transform maps map coordinates to world coordinates.
	Transform math.Mat4

	TransientFaces    int
	PermanentVertices int
	PermanentIndices  int
}

// DefaultOptions converts Quake units (Z-up, 40 per world unit) to the
// engine's Y-up world.
func DefaultOptions() Options {
	return Options{
		Mesh:              csg.DefaultOptions(),
		Transform:         math.ZUpToYUp(1.0 / 40),
		TransientFaces:    4096,
		PermanentVertices: 1 << 18,
		PermanentIndices:  3 << 18,
	}
}

// OptionsFromConfig builds loader options from the mesh, memory and map
// sections.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Mesh: csg.Options{
			MaxPlanes:    cfg.Mesh.MaxPlanes,
			MaxVertices:  cfg.Mesh.MaxVertices,
			MaxIndices:   cfg.Mesh.MaxIndices,
			SplitUVSeams: cfg.Mesh.SplitUVSeams,
		},
		Transform:         math.ZUpToYUp(1 / cfg.Map.UnitScale),
		TransientFaces:    cfg.Memory.TransientFaces,
		PermanentVertices: cfg.Memory.PermanentVertices,
		PermanentIndices:  cfg.Memory.PermanentIndices,
	}
}

// Loader builds levels. The transient face arena is reused across loads;
// every level gets its own output arenas. A Loader is not safe for
// concurrent use.
type Loader struct {
	opts  Options
	log   *zap.Logger
	faces *arena.Arena[csg.Polygon]
}

// NewLoader creates a loader. A nil logger discards diagnostics.
func NewLoader(opts Options, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{
		opts:  opts,
		log:   log,
		faces: arena.New[csg.Polygon](opts.TransientFaces),
	}
}

// Load reads and builds the map at path.
func (l *Loader) Load(path string) (*Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading level: %w", err)
	}
	lvl, err := l.build(data, path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return lvl, nil
}

// LoadBytes builds a map from memory.
func (l *Loader) LoadBytes(data []byte) (*Level, error) {
	return l.build(data, "")
}

func (l *Loader) build(data []byte, path string) (*Level, error) {
	start := time.Now()
	log := l.log
	if path != "" {
		log = log.With(zap.String("path", path))
	}

	mem := csg.Memory{
		Faces:    l.faces,
		Vertices: arena.New[csg.Vertex](l.opts.PermanentVertices),
		Indices:  arena.New[uint16](l.opts.PermanentIndices),
	}
	builder := csg.NewBuilder(l.opts.Mesh, mem)

	lvl := &Level{Path: path, World: collision.NewWorld()}

	err := formats.WalkMap(data, func(e *formats.MapEntity) error {
		index := len(lvl.Entities)
		info := EntityInfo{ClassName: e.ClassName(), Brushes: len(e.Brushes)}
		if origin, ok := e.Origin(); ok {
			info.Origin = l.opts.Transform.TransformVec3(origin)
			info.HasOrigin = true
		}
		lvl.Entities = append(lvl.Entities, info)

		if info.ClassName == "info_player_start" && info.HasOrigin && !lvl.HasSpawn {
			lvl.Spawn = info.Origin
			lvl.HasSpawn = true
		}

		temp := l.faces.Begin()
		defer l.faces.End(temp)

		for b, brush := range e.Brushes {
			mesh, err := builder.Build(brush)
			if errors.Is(err, arena.ErrOutOfMemory) {
				return fmt.Errorf("entity %d brush %d: %w", index, b, err)
			}
			if err != nil {
				lvl.Failures = append(lvl.Failures, Failure{Entity: index, Brush: b, Err: err})
				log.Warn("brush skipped", brushFields(index, b, info.ClassName, err)...)
				continue
			}
			lvl.Meshes = append(lvl.Meshes, l.place(lvl.World, log, index, b, mesh))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("level loaded",
		zap.Int("entities", len(lvl.Entities)),
		zap.Int("meshes", len(lvl.Meshes)),
		zap.Int("failed", lvl.Failed()),
		zap.Int("vertices", lvl.VertexCount()),
		zap.Int("triangles", lvl.TriangleCount()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return lvl, nil
}

// place transforms a built mesh to world space and registers its collider.
func (l *Loader) place(world *collision.World, log *zap.Logger, entity, brush int, data csg.MeshData) Mesh {
	for i := range data.Vertices {
		data.Vertices[i].Position = l.opts.Transform.TransformVec3(data.Vertices[i].Position)
	}

	mesh := Mesh{Entity: entity, Brush: brush, MeshData: data}

	hull, err := collision.NewConvexHull(data.Positions(), data.Indices)
	if err != nil {
		log.Debug("no collider for brush",
			zap.Int("entity", entity), zap.Int("brush", brush), zap.Error(err))
		return mesh
	}
	mesh.Body = world.AddStatic(hull, BrushRef{Entity: entity, Brush: brush})
	mesh.HasBody = true
	return mesh
}

// BrushRef is attached to every collider as its user data.
type BrushRef struct {
	Entity int
	Brush  int
}

func brushFields(entity, brush int, class string, err error) []zap.Field {
	fields := []zap.Field{
		zap.Int("entity", entity),
		zap.Int("brush", brush),
		zap.String("classname", class),
	}
	var capErr *csg.CapacityError
	if errors.As(err, &capErr) {
		fields = append(fields,
			zap.Stringer("kind", capErr.Kind),
			zap.Int("face", capErr.Face),
			zap.Int("count", capErr.Count),
			zap.Int("limit", capErr.Limit),
		)
	}
	return append(fields, zap.Error(err))
}
