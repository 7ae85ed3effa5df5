package geom

import (
	"fmt"
	"sort"
)

// Face is one planar polygon on the boundary of a crystal. Vertices are wound
// counter-clockwise as seen from outside along Normal.
type Face struct {
	Vertices []Vector3
	Normal   Vector3
	Miller   [3]int // originating Miller index, zero value when unknown
}

// Centroid returns the arithmetic mean of the face's vertices.
func (f Face) Centroid() Vector3 {
	var c Vector3
	if len(f.Vertices) == 0 {
		return c
	}
	for _, v := range f.Vertices {
		c = c.Add(v)
	}
	return c.Scale(1.0 / float64(len(f.Vertices)))
}

// Edge is an unordered pair of indices into a geometry's vertex list, stored
// with A < B.
type Edge struct {
	A, B int
}

// CrystalGeometry is the polyhedral mesh produced by the pipeline: a global
// deduplicated vertex list, the polygonal faces, and the unique edges.
type CrystalGeometry struct {
	Vertices []Vector3
	Faces    []Face
	Edges    []Edge
}

// keyCoord formats one coordinate to 6 decimals, folding negative zero onto
// zero so keys on either side of an axis plane coincide.
func keyCoord(f float64) string {
	s := fmt.Sprintf("%.6f", f)
	if s == "-0.000000" {
		s = "0.000000"
	}
	return s
}

// vertexKey folds coordinates to 6 decimals so that vertices produced by
// different face clips coincide.
func vertexKey(v Vector3) string {
	return keyCoord(v.X) + "," + keyCoord(v.Y) + "," + keyCoord(v.Z)
}

// BuildGeometry assembles a CrystalGeometry from a face soup: vertices are
// deduplicated by 6-decimal key in first-seen order, and every polygon edge
// is recorded once.
func BuildGeometry(faces []Face) *CrystalGeometry {
	g := &CrystalGeometry{Faces: faces}
	index := make(map[string]int)
	edges := make(map[Edge]struct{})

	lookup := func(v Vector3) int {
		key := vertexKey(v)
		if i, ok := index[key]; ok {
			return i
		}
		i := len(g.Vertices)
		index[key] = i
		g.Vertices = append(g.Vertices, v)
		return i
	}

	for _, f := range faces {
		n := len(f.Vertices)
		for i := 0; i < n; i++ {
			a := lookup(f.Vertices[i])
			b := lookup(f.Vertices[(i+1)%n])
			if a == b {
				continue
			}
			if a > b {
				a, b = b, a
			}
			edges[Edge{a, b}] = struct{}{}
		}
	}

	g.Edges = make([]Edge, 0, len(edges))
	for e := range edges {
		g.Edges = append(g.Edges, e)
	}
	sort.Slice(g.Edges, func(i, j int) bool {
		if g.Edges[i].A != g.Edges[j].A {
			return g.Edges[i].A < g.Edges[j].A
		}
		return g.Edges[i].B < g.Edges[j].B
	})
	return g
}

// Centroid returns the mean of the geometry's vertices.
func (g *CrystalGeometry) Centroid() Vector3 {
	var c Vector3
	if len(g.Vertices) == 0 {
		return c
	}
	for _, v := range g.Vertices {
		c = c.Add(v)
	}
	return c.Scale(1.0 / float64(len(g.Vertices)))
}

// Transform returns a copy of g with every vertex and face normal mapped
// through m. Normals are renormalized; windings are left alone, so m must be
// a proper rotation.
func (g *CrystalGeometry) Transform(m Matrix3) *CrystalGeometry {
	out := &CrystalGeometry{
		Vertices: make([]Vector3, len(g.Vertices)),
		Faces:    make([]Face, len(g.Faces)),
		Edges:    append([]Edge(nil), g.Edges...),
	}
	for i, v := range g.Vertices {
		out.Vertices[i] = m.Apply(v)
	}
	for i, f := range g.Faces {
		nf := Face{
			Vertices: make([]Vector3, len(f.Vertices)),
			Normal:   m.Apply(f.Normal).Norm(),
			Miller:   f.Miller,
		}
		for j, v := range f.Vertices {
			nf.Vertices[j] = m.Apply(v)
		}
		out.Faces[i] = nf
	}
	return out
}

// Mirror returns a copy of g reflected across the plane through the origin
// with unit normal n. Face windings are reversed so the reflected faces stay
// outward-wound.
func (g *CrystalGeometry) Mirror(n Vector3) *CrystalGeometry {
	u := n.Norm()
	out := &CrystalGeometry{
		Vertices: make([]Vector3, len(g.Vertices)),
		Faces:    make([]Face, len(g.Faces)),
		Edges:    append([]Edge(nil), g.Edges...),
	}
	for i, v := range g.Vertices {
		out.Vertices[i] = v.Reflect(u)
	}
	for i, f := range g.Faces {
		nf := Face{
			Vertices: make([]Vector3, len(f.Vertices)),
			Normal:   f.Normal.Reflect(u),
			Miller:   f.Miller,
		}
		for j := range f.Vertices {
			nf.Vertices[j] = f.Vertices[len(f.Vertices)-1-j].Reflect(u)
		}
		out.Faces[i] = nf
	}
	return out
}

// Merge appends other onto g, shifting other's edge indices past g's vertex
// list. Interior faces of overlapping solids are deliberately kept: the
// result is a visual union for the renderers, not a boolean one.
func (g *CrystalGeometry) Merge(other *CrystalGeometry) *CrystalGeometry {
	shift := len(g.Vertices)
	out := &CrystalGeometry{
		Vertices: append(append([]Vector3(nil), g.Vertices...), other.Vertices...),
		Faces:    append(append([]Face(nil), g.Faces...), other.Faces...),
		Edges:    append([]Edge(nil), g.Edges...),
	}
	for _, e := range other.Edges {
		out.Edges = append(out.Edges, Edge{A: e.A + shift, B: e.B + shift})
	}
	return out
}
