package geom

// ScaleMesh multiplies every vertex by the per-axis factors (sa, sb, sc) and
// recomputes each face normal from its first three (scaled) vertices. Vertex
// indices, and with them the edge list, are unchanged.
func ScaleMesh(g *CrystalGeometry, sa, sb, sc float64) *CrystalGeometry {
	scale := func(v Vector3) Vector3 {
		return Vector3{X: v.X * sa, Y: v.Y * sb, Z: v.Z * sc}
	}
	out := &CrystalGeometry{
		Vertices: make([]Vector3, len(g.Vertices)),
		Faces:    make([]Face, len(g.Faces)),
		Edges:    append([]Edge(nil), g.Edges...),
	}
	for i, v := range g.Vertices {
		out.Vertices[i] = scale(v)
	}
	for i, f := range g.Faces {
		nf := Face{
			Vertices: make([]Vector3, len(f.Vertices)),
			Normal:   f.Normal,
			Miller:   f.Miller,
		}
		for j, v := range f.Vertices {
			nf.Vertices[j] = scale(v)
		}
		if len(nf.Vertices) >= 3 {
			n := nf.Vertices[1].Sub(nf.Vertices[0]).
				Cross(nf.Vertices[2].Sub(nf.Vertices[0])).Norm()
			nf.Normal = n
		}
		out.Faces[i] = nf
	}
	return out
}

// PreScaleHalfspaces is the anisotropic input transformation: each normal is
// divided component-wise by the axis factors, the distance rescaled by the
// new length, and the normal renormalized. It is the principled alternative
// to ScaleMesh for convex inputs; the render path does not use it.
func PreScaleHalfspaces(h *HalfspaceSet, sa, sb, sc float64) *HalfspaceSet {
	out := &HalfspaceSet{
		Normals:   make([]Vector3, len(h.Normals)),
		Distances: make([]float64, len(h.Distances)),
	}
	for i, n := range h.Normals {
		np := Vector3{X: n.X / sa, Y: n.Y / sb, Z: n.Z / sc}
		l := np.Len()
		if l == 0 {
			out.Normals[i] = n
			out.Distances[i] = h.Distances[i]
			continue
		}
		out.Normals[i] = np.Scale(1 / l)
		out.Distances[i] = h.Distances[i] / l
	}
	return out
}
