// Package twin holds the twin-law table and composes twinned crystals from
// a base half-space set.
package twin

import (
	"regexp"
	"strings"

	"gocrystal/pkg/geom"
)

// Type classifies how the individuals of a twin share material.
type Type string

const (
	Contact     Type = "contact"
	Penetration Type = "penetration"
	Cyclic      Type = "cyclic"
)

// RenderMode selects the composition strategy in Compose.
type RenderMode string

const (
	SingleCrystal   RenderMode = "single_crystal"
	DualCrystal     RenderMode = "dual_crystal"
	VShaped         RenderMode = "v_shaped"
	ContactRotation RenderMode = "contact_rotation"
	CyclicMode      RenderMode = "cyclic"
	Unified         RenderMode = "unified"
)

// Law is one named twin law. Axis is the twin axis in crystallographic
// direction form; Angle is the rotation in degrees. The composition plane's
// normal coincides with the axis.
type Law struct {
	Name        string
	Description string
	Type        Type
	Render      RenderMode
	Axis        geom.Vector3
	Angle       float64
	Habit       string
	Examples    []string
}

// japanAngle is 84° 33′ 30″.
const japanAngle = 84 + 33.0/60 + 30.0/3600

var laws = []Law{
	{
		Name: "spinel", Description: "rotation twin on an octahedron face",
		Type: Contact, Render: ContactRotation,
		Axis: geom.Vector3{X: 1, Y: 1, Z: 1}, Angle: 180,
		Habit: "octahedral", Examples: []string{"spinel", "magnetite", "diamond"},
	},
	{
		Name: "iron_cross", Description: "interpenetrating pyritohedra",
		Type: Penetration, Render: DualCrystal,
		Axis: geom.Vector3{Z: 1}, Angle: 90,
		Habit: "pyritohedral", Examples: []string{"pyrite"},
	},
	{
		Name: "carlsbad", Description: "interpenetrating feldspar prisms",
		Type: Penetration, Render: DualCrystal,
		Axis: geom.Vector3{Z: 1}, Angle: 180,
		Habit: "prismatic", Examples: []string{"orthoclase"},
	},
	{
		Name: "albite", Description: "polysynthetic lamellar twin",
		Type: Contact, Render: ContactRotation,
		Axis: geom.Vector3{Y: 1}, Angle: 180,
		Habit: "tabular", Examples: []string{"albite", "plagioclase"},
	},
	{
		Name: "brazil", Description: "left- and right-handed quartz intergrowth",
		Type: Penetration, Render: DualCrystal,
		Axis: geom.Vector3{X: 1, Y: 1}, Angle: 180,
		Habit: "prismatic", Examples: []string{"quartz"},
	},
	{
		Name: "dauphine", Description: "electrical twin, visually a single crystal",
		Type: Penetration, Render: SingleCrystal,
		Axis: geom.Vector3{Z: 1}, Angle: 180,
		Habit: "prismatic", Examples: []string{"quartz"},
	},
	{
		Name: "japan", Description: "V-shaped pair of flattened quartz crystals",
		Type: Contact, Render: VShaped,
		Axis: geom.Vector3{X: 1, Y: 1, Z: -2}, Angle: japanAngle,
		Habit: "flattened", Examples: []string{"quartz"},
	},
	{
		Name: "trilling", Description: "cyclic threefold intergrowth",
		Type: Cyclic, Render: CyclicMode,
		Axis: geom.Vector3{Z: 1}, Angle: 120,
		Habit: "pseudo-hexagonal", Examples: []string{"chrysoberyl", "cerussite"},
	},
	{
		Name: "fluorite", Description: "interpenetrating cubes",
		Type: Penetration, Render: DualCrystal,
		Axis: geom.Vector3{X: 1, Y: 1, Z: 1}, Angle: 180,
		Habit: "cubic", Examples: []string{"fluorite"},
	},
	{
		Name: "staurolite_60", Description: "60° penetration cross",
		Type: Penetration, Render: DualCrystal,
		Axis: geom.Vector3{Z: 1}, Angle: 60,
		Habit: "prismatic", Examples: []string{"staurolite"},
	},
	{
		Name: "staurolite_90", Description: "90° penetration cross",
		Type: Penetration, Render: DualCrystal,
		Axis: geom.Vector3{Z: 1}, Angle: 90,
		Habit: "prismatic", Examples: []string{"staurolite"},
	},
	{
		Name: "manebach", Description: "contact twin on the basal pinacoid",
		Type: Contact, Render: ContactRotation,
		Axis: geom.Vector3{Z: 1}, Angle: 180,
		Habit: "prismatic", Examples: []string{"orthoclase"},
	},
	{
		Name: "baveno", Description: "contact twin on a steep prism face",
		Type: Contact, Render: ContactRotation,
		Axis: geom.Vector3{Y: 2, Z: 1}, Angle: 180,
		Habit: "prismatic", Examples: []string{"orthoclase"},
	},
	{
		Name: "gypsum_swallow", Description: "swallowtail contact twin",
		Type: Contact, Render: VShaped,
		Axis: geom.Vector3{X: 1}, Angle: 180,
		Habit: "tabular", Examples: []string{"gypsum"},
	},
}

var nonWordRe = regexp.MustCompile(`[^a-z0-9]+`)

// normalize lowercases a law name and strips non-word separators so that
// "Japan", "japan twin" and "japan_twin" all resolve alike.
func normalize(name string) string {
	return nonWordRe.ReplaceAllString(strings.ToLower(name), "")
}

var lawIndex = func() map[string]*Law {
	idx := make(map[string]*Law, len(laws))
	for i := range laws {
		idx[normalize(laws[i].Name)] = &laws[i]
	}
	return idx
}()

// Lookup resolves a twin-law name case-insensitively, ignoring non-word
// separators. ok is false for unknown laws.
func Lookup(name string) (*Law, bool) {
	law, ok := lawIndex[normalize(name)]
	return law, ok
}

// Laws returns the full law table in definition order.
func Laws() []Law {
	return append([]Law(nil), laws...)
}
