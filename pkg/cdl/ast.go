package cdl

import (
	"fmt"
	"strings"
)

// MillerIndex names a crystal plane. The fourth index i is redundant
// (i = −(h+k)) in hexagonal/trigonal notation; it is kept for display but
// ignored by normal computation.
type MillerIndex struct {
	H, K, L int
	I       int
	HasI    bool
}

// String renders the brace notation, digits and minus signs inline:
// {100}, {10-10}.
func (m MillerIndex) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	comps := []int{m.H, m.K, m.L}
	if m.HasI {
		comps = []int{m.H, m.K, m.I, m.L}
	}
	for _, c := range comps {
		fmt.Fprintf(&sb, "%d", c)
	}
	sb.WriteByte('}')
	return sb.String()
}

// FormNode is either a single CrystalForm or a FormGroup.
type FormNode interface {
	formNode()
	String() string
}

// CrystalForm is one crystallographic form: a Miller index, the plane offset
// from the origin along its outward normal, and optional surface features.
type CrystalForm struct {
	Miller   MillerIndex
	Scale    float64
	Features string
	Label    string
}

func (*CrystalForm) formNode() {}
func (f *CrystalForm) String() string {
	s := fmt.Sprintf("%s@%g", f.Miller, f.Scale)
	if f.Features != "" {
		s += "[" + f.Features + "]"
	}
	return s
}

// FormGroup is a parenthesized list of child nodes sharing optional features.
type FormGroup struct {
	Children []FormNode
	Features string
	Label    string
}

func (*FormGroup) formNode() {}
func (g *FormGroup) String() string {
	parts := make([]string, len(g.Children))
	for i, c := range g.Children {
		parts[i] = c.String()
	}
	s := "(" + strings.Join(parts, " + ") + ")"
	if g.Features != "" {
		s += "[" + g.Features + "]"
	}
	return s
}

// TwinSpec names a twin law extracted from the modifier tail.
type TwinSpec struct {
	Law string
}

// ModificationType distinguishes the axial scaling clauses.
type ModificationType string

const (
	ModElongate ModificationType = "elongate"
	ModFlatten  ModificationType = "flatten"
	ModScale    ModificationType = "scale"
)

// ModificationSpec is one elongate/flatten/scale clause. Factor is strictly
// positive; flatten(ax:f) is equivalent to scale(ax:1/f).
type ModificationSpec struct {
	Type   ModificationType
	Axis   byte // 'a', 'b' or 'c'
	Factor float64
}

// ParseResult is the validated parse tree of one CDL expression.
type ParseResult struct {
	System        string
	PointGroup    string
	Forms         []FormNode
	Modifier      string // raw tail after '|', empty when absent
	Phenomenon    string
	Twin          *TwinSpec
	Modifications []ModificationSpec
	Definitions   []Definition
	DocComments   []string
	Warnings      []string
}

// mergeFeatures joins a group feature string with a child's, the group's
// first.
func mergeFeatures(parent, child string) string {
	switch {
	case parent == "":
		return child
	case child == "":
		return parent
	}
	return parent + ", " + child
}

func flattenInto(node FormNode, inherited string, out *[]*CrystalForm) {
	switch n := node.(type) {
	case *CrystalForm:
		f := *n
		f.Features = mergeFeatures(inherited, n.Features)
		*out = append(*out, &f)
	case *FormGroup:
		features := mergeFeatures(inherited, n.Features)
		for _, c := range n.Children {
			flattenInto(c, features, out)
		}
	}
}

// FlatForms walks the form tree depth-first and returns the leaves with
// group features merged in ("parent, child" order).
func (r *ParseResult) FlatForms() []*CrystalForm {
	var out []*CrystalForm
	for _, n := range r.Forms {
		flattenInto(n, "", &out)
	}
	return out
}
