package twin

import (
	"math"

	"gocrystal/pkg/geom"
)

// Compose builds the twinned geometry for law from the base half-space set.
// base is the mesh already computed from h; h itself is never mutated — each
// individual gets its own clone with the composition clip appended or its
// normals rotated.
func Compose(law *Law, h *geom.HalfspaceSet, millers [][3]int, base *geom.CrystalGeometry) *geom.CrystalGeometry {
	axis := law.Axis.Norm()
	rot := geom.RotationMatrix(axis, law.Angle*math.Pi/180)

	switch law.Render {
	case SingleCrystal:
		return base

	case DualCrystal, Unified:
		second := geom.Intersect(h.Rotated(rot), millers)
		return base.Merge(second)

	case ContactRotation:
		m1 := geom.Intersect(clipped(h, axis.Scale(-1)), appendMiller(millers))
		m2 := m1.Transform(rot)
		return m1.Merge(m2)

	case VShaped:
		m1 := geom.Intersect(clipped(h, axis.Scale(-1)), appendMiller(millers))
		if law.Angle == 180 {
			return m1.Merge(m1.Mirror(axis))
		}
		m2 := geom.Intersect(clipped(h, axis), appendMiller(millers)).Transform(rot)
		return m1.Merge(m2)

	case CyclicMode:
		k := int(math.Round(360 / law.Angle))
		if k < 1 {
			k = 1
		}
		union := &geom.HalfspaceSet{}
		var unionMillers [][3]int
		for i := 0; i < k; i++ {
			r := geom.RotationMatrix(axis, float64(i)*law.Angle*math.Pi/180)
			hi := h.Rotated(r)
			for j := range hi.Normals {
				union.Append(hi.Normals[j], hi.Distances[j])
			}
			unionMillers = append(unionMillers, millers...)
		}
		return geom.Intersect(union, unionMillers)
	}
	return base
}

// clipped clones h with the half-space {x : n·x ≤ 0} appended, keeping the
// side the composition-plane normal points away from.
func clipped(h *geom.HalfspaceSet, n geom.Vector3) *geom.HalfspaceSet {
	out := h.Clone()
	out.Append(n, 0)
	return out
}

// appendMiller pads the Miller list for the extra clip plane.
func appendMiller(millers [][3]int) [][3]int {
	if millers == nil {
		return nil
	}
	out := append([][3]int(nil), millers...)
	return append(out, [3]int{})
}
