package csg

import (
	"fmt"
	"sort"

	"github.com/chewxy/math32"

	"github.com/Faultbox/almond/pkg/arena"
	"github.com/Faultbox/almond/pkg/math"
)

// Clip intersects the bounding cube with the inside of every plane of brush.
// Two face buffers of 6+len(brush.Planes) polygons are taken from faces and
// stay allocated; callers scope them with Begin/End.
func Clip(brush Brush, faces *arena.Arena[Polygon]) (Polyhedron, error) {
	limit := len(cubeFaces) + len(brush.Planes)

	current, err := faces.Push(limit)
	if err != nil {
		return Polyhedron{}, fmt.Errorf("csg: reserve faces: %w", err)
	}
	next, err := faces.Push(limit)
	if err != nil {
		return Polyhedron{}, fmt.Errorf("csg: reserve faces: %w", err)
	}

	n := boundingCube(current)
	for _, plane := range brush.Planes {
		n, err = clipByPlane(current[:n], next, plane)
		if err != nil {
			return Polyhedron{}, err
		}
		current, next = next, current
	}

	return Polyhedron{Faces: current[:n]}, nil
}

// clipByPlane writes the part of faces inside plane to out, closes the cut
// with a cap face and returns the number of faces written.
func clipByPlane(faces []Polygon, out []Polygon, plane Plane) (int, error) {
	var capFace Polygon
	n := 0

	for i := range faces {
		face := &faces[i]
		if face.Count < 3 {
			continue
		}
		if n == len(out) {
			return 0, &CapacityError{Kind: CapacityFaces, Face: -1, Count: n + 1, Limit: len(out)}
		}

		dst := &out[n]
		dst.Count = 0
		dst.Normal = face.Normal
		dst.Tex = face.Tex

		prev := face.Vertices[face.Count-1]
		prevDist := plane.Distance(prev)
		for _, cur := range face.Points() {
			curDist := plane.Distance(cur)
			curIn, prevIn := curDist >= 0, prevDist >= 0

			switch {
			case curIn && prevIn:
				if err := dst.add(cur, n); err != nil {
					return 0, err
				}
			case curIn:
				x := intersect(cur, prev, curDist, prevDist)
				if err := addCapPoint(&capFace, x); err != nil {
					return 0, err
				}
				if err := dst.add(x, n); err != nil {
					return 0, err
				}
				if err := dst.add(cur, n); err != nil {
					return 0, err
				}
			case prevIn:
				x := intersect(prev, cur, prevDist, curDist)
				if err := addCapPoint(&capFace, x); err != nil {
					return 0, err
				}
				if err := dst.add(x, n); err != nil {
					return 0, err
				}
			}

			prev, prevDist = cur, curDist
		}

		dst.close()
		if dst.Count >= 3 {
			n++
		}
	}

	if capFace.Count < 3 {
		return n, nil
	}
	if n == len(out) {
		return 0, &CapacityError{Kind: CapacityFaces, Face: -1, Count: n + 1, Limit: len(out)}
	}

	sortConvex(capFace.Points(), plane.Normal)
	capFace.Normal = plane.Normal
	capFace.Tex = plane.Tex
	out[n] = capFace
	return n + 1, nil
}

// addCapPoint adds p to the cap unless an equal point is already present.
// The cap has no face index until it is written, so overflow reports -1.
func addCapPoint(capFace *Polygon, p math.Vec3) error {
	for _, q := range capFace.Points() {
		if q.ApproxEqual(p, DistEpsilon) {
			return nil
		}
	}
	if capFace.Count == MaxPolygonVertices {
		return &CapacityError{Kind: CapacityPolygonVertices, Face: -1, Count: capFace.Count + 1, Limit: MaxPolygonVertices}
	}
	capFace.Vertices[capFace.Count] = p
	capFace.Count++
	return nil
}

// intersect returns the snapped point where the edge from in (inside, at
// signed distance dIn) to out (outside, at dOut) crosses the plane.
// Both faces sharing the edge pass the endpoints in the same order, so they
// get the same point.
func intersect(in, out math.Vec3, dIn, dOut float32) math.Vec3 {
	var p math.Vec3
	if denom := dIn - dOut; denom > DistEpsilon {
		p = in.Add(out.Sub(in).Scale(dIn / denom))
	} else {
		p = in.Lerp(out, 0.5)
	}
	return p.Snap(GridSize)
}

// sortConvex orders coplanar points counter-clockwise about normal by their
// angle around the centroid.
func sortConvex(points []math.Vec3, normal math.Vec3) {
	if len(points) < 3 {
		return
	}

	var center math.Vec3
	for _, p := range points {
		center = center.Add(p)
	}
	center = center.Div(float32(len(points)))

	var reference math.Vec3
	if math32.Abs(normal.X) < 0.9 {
		reference = normal.Cross(math.Vec3{X: 1})
	} else {
		reference = normal.Cross(math.Vec3{Y: 1})
	}
	reference = reference.Normalize()
	tangent := normal.Cross(reference)

	angle := func(p math.Vec3) float32 {
		d := p.Sub(center)
		return math32.Atan2(d.Dot(tangent), d.Dot(reference))
	}

	sort.Slice(points, func(i, j int) bool {
		return angle(points[i]) < angle(points[j])
	})
}
