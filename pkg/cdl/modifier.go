package cdl

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	twinRe       = regexp.MustCompile(`(?i)twin\(\s*(\w+)\s*\)`)
	modRe        = regexp.MustCompile(`(?i)(elongate|flatten|scale)\(\s*([abc])\s*:\s*([\d.]+)\s*\)`)
	phenomenonRe = regexp.MustCompile(`phenomenon\[([^\]]*)\]`)
)

// ExtractModifiers pulls the twin, axial-modification and phenomenon clauses
// out of the raw tail text. Clauses the patterns do not match are ignored;
// a non-positive modification factor is dropped with a warning.
func ExtractModifiers(tail string) (twin *TwinSpec, mods []ModificationSpec, phenomenon string, warnings []string) {
	if m := twinRe.FindStringSubmatch(tail); m != nil {
		twin = &TwinSpec{Law: m[1]}
	}
	for _, m := range modRe.FindAllStringSubmatch(tail, -1) {
		factor, err := strconv.ParseFloat(m[3], 64)
		if err != nil || factor <= 0 {
			warnings = append(warnings, fmt.Sprintf("ignoring %s clause with factor %q", strings.ToLower(m[1]), m[3]))
			continue
		}
		mods = append(mods, ModificationSpec{
			Type:   ModificationType(strings.ToLower(m[1])),
			Axis:   strings.ToLower(m[2])[0],
			Factor: factor,
		})
	}
	if m := phenomenonRe.FindStringSubmatch(tail); m != nil {
		phenomenon = m[1]
	}
	return twin, mods, phenomenon, warnings
}

// AxisFactors collapses a modification list into per-axis multiplicative
// factors. Flatten contributes the reciprocal; elongate and scale contribute
// the factor itself.
func AxisFactors(mods []ModificationSpec) (sa, sb, sc float64) {
	sa, sb, sc = 1, 1, 1
	for _, m := range mods {
		f := m.Factor
		if m.Type == ModFlatten {
			f = 1 / f
		}
		switch m.Axis {
		case 'a':
			sa *= f
		case 'b':
			sb *= f
		case 'c':
			sc *= f
		}
	}
	return sa, sb, sc
}
