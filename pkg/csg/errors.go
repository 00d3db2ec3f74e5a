package csg

import (
	"errors"
	"fmt"
)

// ErrCapacityExceeded is matched by every *CapacityError.
var ErrCapacityExceeded = errors.New("csg: capacity exceeded")

// CapacityKind names the fixed bound that was exceeded.
type CapacityKind int

// Capacity kinds.
const (
	CapacityPolygonVertices CapacityKind = iota // vertices in one face
	CapacityFaces                               // faces in a polyhedron
	CapacityVertices                            // vertices in the output mesh
	CapacityIndices                             // indices in the output mesh
	CapacityIndexRange                          // vertex index beyond uint16
)

// String returns a human-readable kind name.
func (k CapacityKind) String() string {
	switch k {
	case CapacityPolygonVertices:
		return "polygon vertices"
	case CapacityFaces:
		return "polyhedron faces"
	case CapacityVertices:
		return "mesh vertices"
	case CapacityIndices:
		return "mesh indices"
	case CapacityIndexRange:
		return "index range"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// CapacityError reports a brush that does not fit the fixed bounds.
// Face is the offending face index, or -1 when no single face is at fault.
type CapacityError struct {
	Kind  CapacityKind
	Face  int
	Count int
	Limit int
}

func (e *CapacityError) Error() string {
	if e.Face >= 0 {
		return fmt.Sprintf("csg: %s exceed limit on face %d: %d > %d", e.Kind, e.Face, e.Count, e.Limit)
	}
	return fmt.Sprintf("csg: %s exceed limit: %d > %d", e.Kind, e.Count, e.Limit)
}

// Unwrap lets errors.Is match ErrCapacityExceeded.
func (e *CapacityError) Unwrap() error {
	return ErrCapacityExceeded
}
