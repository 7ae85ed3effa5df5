// Package symmetry expands a Miller index into its point-group orbit.
//
// Cubic, tetragonal 4/mmm and orthorhombic mmm orbits are enumerated
// directly; the hexagonal and trigonal groups are generated by closing a
// small set of integer matrices acting on (h,k,l). Every other group falls
// through to the identity orbit, matching the reference behavior.
package symmetry

import (
	"sync"

	"gocrystal/pkg/geom"
	"gocrystal/pkg/lattice"
)

// matrixTol is the entry-wise tolerance for matrix identity during closure.
const matrixTol = 1e-10

// closureBound caps group closure; every defined group is far smaller.
const closureBound = 200

// Generator matrices on Miller space. Rows act on the column (h,k,l).
var (
	genE     = geom.Identity3()
	genC6z   = geom.Matrix3{{1, 1, 0}, {-1, 0, 0}, {0, 0, 1}}  // (h,k,l)→(h+k,−h,l)
	genC3z   = geom.Matrix3{{0, 1, 0}, {-1, -1, 0}, {0, 0, 1}} // (h,k,l)→(k,−h−k,l)
	genC2100 = geom.Matrix3{{1, 1, 0}, {0, -1, 0}, {0, 0, -1}} // (h,k,l)→(h+k,−k,−l)
	genC2110 = geom.Matrix3{{0, 1, 0}, {1, 0, 0}, {0, 0, -1}}  // (h,k,l)→(k,h,−l)
	genMz    = geom.Matrix3{{1, 0, 0}, {0, 1, 0}, {0, 0, -1}}
	genM100  = geom.Matrix3{{-1, -1, 0}, {0, 1, 0}, {0, 0, 1}} // (h,k,l)→(−h−k,k,l)
	genInv   = geom.Matrix3{{-1, 0, 0}, {0, -1, 0}, {0, 0, -1}}
)

// hexGenerators maps each enumerated hexagonal/trigonal group to its
// generator set.
var hexGenerators = map[string][]geom.Matrix3{
	"6/mmm": {genC6z, genC2100, genMz},
	"622":   {genC6z, genC2100},
	"6mm":   {genC6z, genM100},
	"-6m2":  {genC3z, genMz, genM100},
	"6/m":   {genC6z, genMz},
	"-6":    {genC3z, genMz},
	"6":     {genC6z},
	"-3m":   {genC3z, genC2110, genInv},
	"32":    {genC3z, genC2110},
	"3m":    {genC3z, genM100},
	"-3":    {genC3z, genInv},
	"3":     {genC3z},
}

// groupCache memoizes closed operation tables per point-group string.
// Entries are immutable once stored.
var (
	groupMu    sync.Mutex
	groupCache = map[string][]geom.Matrix3{}
)

// closeGroup runs a BFS closure over the generators: repeatedly multiply
// every known element by every generator on both sides until nothing new
// appears (or the safety bound trips).
func closeGroup(gens []geom.Matrix3) []geom.Matrix3 {
	ops := []geom.Matrix3{genE}
	contains := func(m geom.Matrix3) bool {
		for _, o := range ops {
			if o.Eq(m, matrixTol) {
				return true
			}
		}
		return false
	}
	for changed := true; changed; {
		changed = false
		for _, g := range gens {
			for i := 0; i < len(ops); i++ {
				for _, m := range []geom.Matrix3{g.Mul(ops[i]), ops[i].Mul(g)} {
					if !contains(m) {
						ops = append(ops, m)
						changed = true
						if len(ops) >= closureBound {
							return ops
						}
					}
				}
			}
		}
	}
	return ops
}

// Operations returns the closed operation table for a hexagonal/trigonal
// point group, or just the identity when the group has no generator set.
// Tables are cached process-wide.
func Operations(pointGroup string) []geom.Matrix3 {
	groupMu.Lock()
	defer groupMu.Unlock()
	if ops, ok := groupCache[pointGroup]; ok {
		return ops
	}
	gens, ok := hexGenerators[pointGroup]
	var ops []geom.Matrix3
	if !ok {
		ops = []geom.Matrix3{genE}
	} else {
		ops = closeGroup(gens)
	}
	groupCache[pointGroup] = ops
	return ops
}

// roundInt rounds a matrix-applied Miller component back onto the integers.
func roundInt(f float64) int {
	if f < 0 {
		return -int(-f + 0.5)
	}
	return int(f + 0.5)
}

func dedupTriples(in [][3]int) [][3]int {
	seen := make(map[[3]int]struct{}, len(in))
	var out [][3]int
	for _, t := range in {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// cubicOrbit enumerates the 48 m3m operations as axis permutations × sign
// flips, deduplicated.
func cubicOrbit(h, k, l int) [][3]int {
	perms := [][3]int{{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0}}
	comps := [3]int{h, k, l}
	var out [][3]int
	for _, p := range perms {
		base := [3]int{comps[p[0]], comps[p[1]], comps[p[2]]}
		for s := 0; s < 8; s++ {
			t := base
			if s&1 != 0 {
				t[0] = -t[0]
			}
			if s&2 != 0 {
				t[1] = -t[1]
			}
			if s&4 != 0 {
				t[2] = -t[2]
			}
			out = append(out, t)
		}
	}
	return dedupTriples(out)
}

// tetragonalOrbit enumerates the 16 4/mmm equivalents: sign flips plus the
// a-axis swap allowed by the fourfold c-axis.
func tetragonalOrbit(h, k, l int) [][3]int {
	var out [][3]int
	for _, hk := range [][2]int{{h, k}, {k, h}} {
		for s := 0; s < 8; s++ {
			t := [3]int{hk[0], hk[1], l}
			if s&1 != 0 {
				t[0] = -t[0]
			}
			if s&2 != 0 {
				t[1] = -t[1]
			}
			if s&4 != 0 {
				t[2] = -t[2]
			}
			out = append(out, t)
		}
	}
	return dedupTriples(out)
}

// orthorhombicOrbit enumerates the 8 mmm sign combinations.
func orthorhombicOrbit(h, k, l int) [][3]int {
	var out [][3]int
	for s := 0; s < 8; s++ {
		t := [3]int{h, k, l}
		if s&1 != 0 {
			t[0] = -t[0]
		}
		if s&2 != 0 {
			t[1] = -t[1]
		}
		if s&4 != 0 {
			t[2] = -t[2]
		}
		out = append(out, t)
	}
	return dedupTriples(out)
}

// hexOrbit applies a closed operation table to (h,k,l), rounding each image
// back to integers.
func hexOrbit(pointGroup string, h, k, l int) [][3]int {
	ops := Operations(pointGroup)
	v := geom.Vector3{X: float64(h), Y: float64(k), Z: float64(l)}
	out := make([][3]int, 0, len(ops))
	for _, op := range ops {
		img := op.Apply(v)
		out = append(out, [3]int{roundInt(img.X), roundInt(img.Y), roundInt(img.Z)})
	}
	return dedupTriples(out)
}

// EquivalentMillers returns the orbit of (h,k,l) under the named point group
// within the given crystal system. Groups outside the enumerated set get the
// identity orbit; notably the tetragonal groups other than 4/mmm and the
// orthorhombic groups other than mmm (reference behavior, see DESIGN.md).
func EquivalentMillers(sys lattice.System, pointGroup string, h, k, l int) [][3]int {
	switch sys {
	case lattice.Cubic:
		if pointGroup == "m3m" || pointGroup == "m-3m" {
			return cubicOrbit(h, k, l)
		}
	case lattice.Tetragonal:
		if pointGroup == "4/mmm" {
			return tetragonalOrbit(h, k, l)
		}
	case lattice.Orthorhombic:
		if pointGroup == "mmm" {
			return orthorhombicOrbit(h, k, l)
		}
	case lattice.Hexagonal, lattice.Trigonal:
		if _, ok := hexGenerators[pointGroup]; ok {
			return hexOrbit(pointGroup, h, k, l)
		}
	}
	return [][3]int{{h, k, l}}
}
