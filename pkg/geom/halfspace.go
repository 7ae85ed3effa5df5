package geom

import "math"

// clipEps is the inside/outside tolerance for polygon clipping.
const clipEps = 1e-8

// initialHalfSize is the half-width of the seed square laid on each plane
// before clipping. It must dominate the polytope radius; form scales are
// expected to stay below ~5.
const initialHalfSize = 10.0

// HalfspaceSet describes the convex region ⋂ {x : Normals[i]·x ≤ Distances[i]}.
// Normals are unit length after construction; Distances are signed offsets
// along them.
type HalfspaceSet struct {
	Normals   []Vector3
	Distances []float64
}

// Append adds a half-space.
func (h *HalfspaceSet) Append(n Vector3, d float64) {
	h.Normals = append(h.Normals, n)
	h.Distances = append(h.Distances, d)
}

// Clone returns an independent copy of h.
func (h *HalfspaceSet) Clone() *HalfspaceSet {
	return &HalfspaceSet{
		Normals:   append([]Vector3(nil), h.Normals...),
		Distances: append([]float64(nil), h.Distances...),
	}
}

// Rotated returns a copy of h with every normal mapped through m.
// Distances are unchanged; m must be orthogonal.
func (h *HalfspaceSet) Rotated(m Matrix3) *HalfspaceSet {
	out := &HalfspaceSet{
		Normals:   make([]Vector3, len(h.Normals)),
		Distances: append([]float64(nil), h.Distances...),
	}
	for i, n := range h.Normals {
		out.Normals[i] = m.Apply(n).Norm()
	}
	return out
}

// Len returns the number of half-spaces.
func (h *HalfspaceSet) Len() int { return len(h.Normals) }

// seedPolygon builds the large square centered on plane i, spanned by a
// tangent/bitangent pair chosen to avoid near-parallel axis picks.
func seedPolygon(n Vector3, d float64) []Vector3 {
	var ref Vector3
	if math.Abs(n.Y) < 0.9 {
		ref = Vector3{Y: 1}
	} else {
		ref = Vector3{X: 1}
	}
	t := n.Cross(ref).Norm()
	b := n.Cross(t)
	c := n.Scale(d)
	s := initialHalfSize
	return []Vector3{
		c.Add(t.Scale(s)).Add(b.Scale(s)),
		c.Add(t.Scale(-s)).Add(b.Scale(s)),
		c.Add(t.Scale(-s)).Add(b.Scale(-s)),
		c.Add(t.Scale(s)).Add(b.Scale(-s)),
	}
}

// clipPolygon cuts poly by {x : n·x ≤ d} (Sutherland–Hodgman).
func clipPolygon(poly []Vector3, n Vector3, d float64) []Vector3 {
	if len(poly) == 0 {
		return nil
	}
	var out []Vector3
	for i := range poly {
		u := poly[i]
		v := poly[(i+1)%len(poly)]
		du := n.Dot(u) - d
		dv := n.Dot(v) - d
		if du <= clipEps {
			out = append(out, u)
		}
		if (du > clipEps && dv < -clipEps) || (du < -clipEps && dv > clipEps) {
			t := du / (du - dv)
			out = append(out, u.Add(v.Sub(u).Scale(t)))
		}
	}
	return out
}

// Intersect computes the boundary mesh of the convex polytope described by h
// by clipping one seed polygon per half-space against all the others.
// Degenerate (sub-triangle) faces are dropped. millers, when non-nil, carries
// the originating Miller index per half-space and is copied onto the faces.
func Intersect(h *HalfspaceSet, millers [][3]int) *CrystalGeometry {
	var faces []Face
	for i, n := range h.Normals {
		poly := seedPolygon(n, h.Distances[i])
		for j := range h.Normals {
			if j == i {
				continue
			}
			poly = clipPolygon(poly, h.Normals[j], h.Distances[j])
			if len(poly) < 3 {
				break
			}
		}
		if len(poly) < 3 {
			continue
		}

		// Wind CCW viewed from outside: the polygon's own normal must
		// agree with the plane normal.
		own := poly[1].Sub(poly[0]).Cross(poly[2].Sub(poly[0]))
		if own.Dot(n) < 0 {
			for a, b := 0, len(poly)-1; a < b; a, b = a+1, b-1 {
				poly[a], poly[b] = poly[b], poly[a]
			}
		}

		f := Face{Vertices: poly, Normal: n}
		if millers != nil {
			f.Miller = millers[i]
		}
		faces = append(faces, f)
	}
	return BuildGeometry(faces)
}
