// Package crystal wires the whole pipeline together: CDL text in, polyhedral
// geometry out.
package crystal

import (
	"context"
	"fmt"
	"math"

	"gocrystal/pkg/cdl"
	"gocrystal/pkg/ctxlog"
	"gocrystal/pkg/geom"
	"gocrystal/pkg/lattice"
	"gocrystal/pkg/symmetry"
	"gocrystal/pkg/twin"
)

// normalDedupTol rejects a symmetry-expanded half-space when it is collinear
// with an accumulated one at the same distance.
const normalDedupTol = 1e-3

// maxNormalsPerForm is a sanity bound; every defined group fits well under.
const maxNormalsPerForm = 64

// Result carries the parse tree alongside the generated geometry.
type Result struct {
	Parsed   *cdl.ParseResult
	Geometry *geom.CrystalGeometry
}

// Generate runs preprocess → lex → parse → symmetry expansion → half-space
// intersection → twin composition → post-scaling. Warnings (unknown point
// group, unknown twin law) are logged, never fatal.
func Generate(ctx context.Context, src string) (*Result, error) {
	parsed, err := cdl.Parse(src)
	if err != nil {
		return nil, err
	}
	log := ctxlog.FromContext(ctx)
	for _, w := range parsed.Warnings {
		log.Warn(w)
	}

	g, err := Build(ctx, parsed)
	if err != nil {
		return nil, err
	}
	return &Result{Parsed: parsed, Geometry: g}, nil
}

// Build turns an already-validated parse tree into geometry.
func Build(ctx context.Context, parsed *cdl.ParseResult) (*geom.CrystalGeometry, error) {
	sys, ok := lattice.ParseSystem(parsed.System)
	if !ok {
		return nil, cdl.ErrUnknownSystem
	}
	basis, err := lattice.BasisFor(sys)
	if err != nil {
		return nil, err
	}

	h, millers, err := ExpandForms(sys, parsed.PointGroup, basis, parsed.FlatForms())
	if err != nil {
		return nil, err
	}

	g := geom.Intersect(h, millers)

	if parsed.Twin != nil {
		law, ok := twin.Lookup(parsed.Twin.Law)
		if !ok {
			ctxlog.FromContext(ctx).Warn("unknown twin law, rendering untwinned",
				"law", parsed.Twin.Law)
		} else {
			g = twin.Compose(law, h, millers, g)
		}
	}

	if sa, sb, sc := cdl.AxisFactors(parsed.Modifications); sa != 1 || sb != 1 || sc != 1 {
		g = geom.ScaleMesh(g, sa, sb, sc)
	}
	return g, nil
}

// ExpandForms applies the point-group orbit to every leaf form and collects
// the unique half-spaces. A normal is dropped when it is collinear with an
// accumulated one and their scales agree within tolerance.
func ExpandForms(sys lattice.System, pointGroup string, basis *lattice.Basis, forms []*cdl.CrystalForm) (*geom.HalfspaceSet, [][3]int, error) {
	if len(forms) == 0 {
		return nil, nil, fmt.Errorf("no crystal forms given")
	}

	h := &geom.HalfspaceSet{}
	var millers [][3]int

	for _, form := range forms {
		added := 0
		for _, eq := range symmetry.EquivalentMillers(sys, pointGroup, form.Miller.H, form.Miller.K, form.Miller.L) {
			if eq == [3]int{} {
				continue
			}
			n := basis.MillerNormal(eq[0], eq[1], eq[2])
			if duplicate(h, n, form.Scale) {
				continue
			}
			h.Append(n, form.Scale)
			millers = append(millers, eq)
			if added++; added >= maxNormalsPerForm {
				break
			}
		}
	}

	if h.Len() == 0 {
		return nil, nil, fmt.Errorf("no usable half-spaces after expansion")
	}
	return h, millers, nil
}

func duplicate(h *geom.HalfspaceSet, n geom.Vector3, scale float64) bool {
	for i, existing := range h.Normals {
		if math.Abs(n.Dot(existing)-1) < normalDedupTol &&
			math.Abs(scale-h.Distances[i]) < normalDedupTol {
			return true
		}
	}
	return false
}
