package symmetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocrystal/pkg/geom"
	"gocrystal/pkg/lattice"
)

// Every generated hex/trig table must be a group: closed under
// multiplication, containing the identity, with an inverse per element.
func TestHexGroupsAreGroups(t *testing.T) {
	orders := map[string]int{
		"6/mmm": 24, "622": 12, "6mm": 12, "-6m2": 12, "6/m": 12,
		"-6": 6, "6": 6,
		"-3m": 12, "32": 6, "3m": 6, "-3": 6, "3": 3,
	}

	for group, wantOrder := range orders {
		t.Run(group, func(t *testing.T) {
			ops := Operations(group)
			require.Len(t, ops, wantOrder)

			contains := func(m geom.Matrix3) bool {
				for _, o := range ops {
					if o.Eq(m, 1e-10) {
						return true
					}
				}
				return false
			}

			assert.True(t, contains(geom.Identity3()), "identity missing")
			for _, a := range ops {
				hasInverse := false
				for _, b := range ops {
					prod := a.Mul(b)
					assert.True(t, contains(prod), "product escapes the group")
					if prod.Eq(geom.Identity3(), 1e-10) {
						hasInverse = true
					}
				}
				assert.True(t, hasInverse, "element without inverse")
			}
		})
	}
}

func TestOperationsMemoized(t *testing.T) {
	a := Operations("6/mmm")
	b := Operations("6/mmm")
	require.NotEmpty(t, a)
	assert.Equal(t, len(a), len(b))
}

func TestUnknownGroupIsIdentityOnly(t *testing.T) {
	ops := Operations("nonsense")
	require.Len(t, ops, 1)
	assert.True(t, ops[0].Eq(geom.Identity3(), 1e-10))
}

func TestEquivalentMillersOrbitSizes(t *testing.T) {
	tests := []struct {
		name   string
		sys    lattice.System
		group  string
		miller [3]int
		want   int
	}{
		{"cubic m3m {100}", lattice.Cubic, "m3m", [3]int{1, 0, 0}, 6},
		{"cubic m3m {111}", lattice.Cubic, "m3m", [3]int{1, 1, 1}, 8},
		{"cubic m3m {110}", lattice.Cubic, "m3m", [3]int{1, 1, 0}, 12},
		{"cubic m3m {123}", lattice.Cubic, "m3m", [3]int{1, 2, 3}, 48},
		{"cubic m-3m alias", lattice.Cubic, "m-3m", [3]int{1, 0, 0}, 6},
		{"tetragonal 4/mmm {100}", lattice.Tetragonal, "4/mmm", [3]int{1, 0, 0}, 4},
		{"tetragonal 4/mmm {001}", lattice.Tetragonal, "4/mmm", [3]int{0, 0, 1}, 2},
		{"tetragonal 4/mmm {123}", lattice.Tetragonal, "4/mmm", [3]int{1, 2, 3}, 16},
		{"orthorhombic mmm {111}", lattice.Orthorhombic, "mmm", [3]int{1, 1, 1}, 8},
		{"hexagonal 6/mmm prism", lattice.Hexagonal, "6/mmm", [3]int{1, 0, 0}, 6},
		{"hexagonal 6/mmm basal", lattice.Hexagonal, "6/mmm", [3]int{0, 0, 1}, 2},
		{"trigonal 3 {100}", lattice.Trigonal, "3", [3]int{1, 0, 0}, 3},

		// Reference behavior: groups outside the enumerated set expand
		// to the identity orbit only.
		{"cubic 432 falls through", lattice.Cubic, "432", [3]int{1, 2, 3}, 1},
		{"tetragonal 422 falls through", lattice.Tetragonal, "422", [3]int{1, 2, 3}, 1},
		{"monoclinic 2/m falls through", lattice.Monoclinic, "2/m", [3]int{1, 2, 3}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EquivalentMillers(tt.sys, tt.group, tt.miller[0], tt.miller[1], tt.miller[2])
			assert.Len(t, got, tt.want)

			// No duplicates.
			seen := map[[3]int]bool{}
			for _, m := range got {
				assert.False(t, seen[m], "duplicate triple %v", m)
				seen[m] = true
			}
		})
	}
}

// The orbit must be invariant under further application of any generator.
func TestOrbitInvariance(t *testing.T) {
	for _, group := range []string{"6/mmm", "622", "-3m", "3m", "6"} {
		t.Run(group, func(t *testing.T) {
			orbit := EquivalentMillers(lattice.Hexagonal, group, 1, 0, 0)
			inOrbit := map[[3]int]bool{}
			for _, m := range orbit {
				inOrbit[m] = true
			}
			for _, op := range Operations(group) {
				for _, m := range orbit {
					img := op.Apply(geom.Vector3{X: float64(m[0]), Y: float64(m[1]), Z: float64(m[2])})
					trip := [3]int{roundInt(img.X), roundInt(img.Y), roundInt(img.Z)}
					assert.True(t, inOrbit[trip], "%v escapes the orbit via an operation", trip)
				}
			}
		})
	}
}

func TestClosureStaysBounded(t *testing.T) {
	for group := range map[string]bool{"6/mmm": true, "-3m": true, "-6m2": true} {
		assert.LessOrEqual(t, len(Operations(group)), 200)
	}
}
