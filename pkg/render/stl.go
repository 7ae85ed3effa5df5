package render

import (
	"fmt"
	"strings"

	"gocrystal/pkg/geom"
)

// EncodeSTL writes the geometry as ASCII STL, fan-triangulating each polygon
// from its first vertex. Coordinates are multiplied by scale.
func EncodeSTL(g *geom.CrystalGeometry, scale float64) string {
	var sb strings.Builder
	sb.WriteString("solid crystal\n")
	for _, f := range g.Faces {
		if len(f.Vertices) < 3 {
			continue
		}
		n := f.Normal
		for i := 1; i+1 < len(f.Vertices); i++ {
			fmt.Fprintf(&sb, "  facet normal %e %e %e\n", n.X, n.Y, n.Z)
			sb.WriteString("    outer loop\n")
			for _, v := range []geom.Vector3{f.Vertices[0], f.Vertices[i], f.Vertices[i+1]} {
				fmt.Fprintf(&sb, "      vertex %e %e %e\n", v.X*scale, v.Y*scale, v.Z*scale)
			}
			sb.WriteString("    endloop\n")
			sb.WriteString("  endfacet\n")
		}
	}
	sb.WriteString("endsolid crystal\n")
	return sb.String()
}
