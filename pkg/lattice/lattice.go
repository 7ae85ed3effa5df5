// Package lattice maps crystal systems to their direct and reciprocal bases
// and turns Miller indices into outward plane normals.
package lattice

import (
	"fmt"
	"math"

	"gocrystal/pkg/geom"
)

// System is one of the seven crystal systems.
type System string

const (
	Cubic        System = "cubic"
	Hexagonal    System = "hexagonal"
	Trigonal     System = "trigonal"
	Tetragonal   System = "tetragonal"
	Orthorhombic System = "orthorhombic"
	Monoclinic   System = "monoclinic"
	Triclinic    System = "triclinic"
)

// Params are the direct-basis cell parameters. Angles are degrees.
type Params struct {
	A, B, C            float64
	Alpha, Beta, Gamma float64
}

// Cells holds the reference cell parameters per system. It is a var so a
// frontend can adjust axial ratios (the hexagonal/trigonal c-ratio in
// particular) before building bases.
var Cells = map[System]Params{
	Cubic:        {1, 1, 1, 90, 90, 90},
	Tetragonal:   {1, 1, 1.2, 90, 90, 90},
	Orthorhombic: {1, 1.2, 0.8, 90, 90, 90},
	Hexagonal:    {1, 1, 1.0, 90, 90, 120},
	Trigonal:     {1, 1, 1.0, 90, 90, 120},
	Monoclinic:   {1, 1.2, 0.9, 90, 110, 90},
	Triclinic:    {1, 1.1, 0.95, 80, 85, 75},
}

// ParseSystem folds s to a known System.
func ParseSystem(s string) (System, bool) {
	sys := System(s)
	_, ok := Cells[sys]
	return sys, ok
}

// Basis is a direct lattice basis and its reciprocal.
type Basis struct {
	A, B, C             geom.Vector3 // direct
	AStar, BStar, CStar geom.Vector3 // reciprocal
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

// NewBasis builds the Cartesian direct basis for p and derives the
// reciprocal basis a* = (b×c)/V etc.
func NewBasis(p Params) (*Basis, error) {
	alpha, beta, gamma := radians(p.Alpha), radians(p.Beta), radians(p.Gamma)
	sinGamma := math.Sin(gamma)
	if sinGamma == 0 {
		return nil, fmt.Errorf("lattice: degenerate gamma angle %g", p.Gamma)
	}

	a := geom.Vector3{X: p.A}
	b := geom.Vector3{X: p.B * math.Cos(gamma), Y: p.B * sinGamma}
	cx := p.C * math.Cos(beta)
	cy := p.C * (math.Cos(alpha) - math.Cos(beta)*math.Cos(gamma)) / sinGamma
	czSq := p.C*p.C - cx*cx - cy*cy
	if czSq <= 0 {
		return nil, fmt.Errorf("lattice: cell angles leave no volume")
	}
	c := geom.Vector3{X: cx, Y: cy, Z: math.Sqrt(czSq)}

	vol := a.Dot(b.Cross(c))
	if vol == 0 {
		return nil, fmt.Errorf("lattice: zero cell volume")
	}

	return &Basis{
		A: a, B: b, C: c,
		AStar: b.Cross(c).Scale(1 / vol),
		BStar: c.Cross(a).Scale(1 / vol),
		CStar: a.Cross(b).Scale(1 / vol),
	}, nil
}

// BasisFor builds the basis for a system's reference cell.
func BasisFor(sys System) (*Basis, error) {
	p, ok := Cells[sys]
	if !ok {
		return nil, fmt.Errorf("lattice: unknown system %q", sys)
	}
	return NewBasis(p)
}

// MillerNormal returns the unit outward normal of the (h k l) plane:
// normalize(h·a* + k·b* + l·c*).
func (bs *Basis) MillerNormal(h, k, l int) geom.Vector3 {
	n := bs.AStar.Scale(float64(h)).
		Add(bs.BStar.Scale(float64(k))).
		Add(bs.CStar.Scale(float64(l)))
	return n.Norm()
}
