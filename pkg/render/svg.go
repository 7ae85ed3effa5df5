// Package render encodes crystal geometry as SVG, ASCII STL and glTF 2.0.
package render

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gocrystal/pkg/geom"
)

// SVGOptions control the orthographic projection.
type SVGOptions struct {
	Elev   float64 // degrees, clamped to [-90, 90]
	Azim   float64 // degrees, clamped to [-180, 180]
	Width  int
	Height int
}

// DefaultSVGOptions returns the standard camera: elev 30, azim −45, 300×300.
func DefaultSVGOptions() SVGOptions {
	return SVGOptions{Elev: 30, Azim: -45, Width: 300, Height: 300}
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

// Clamp normalizes the options into their legal ranges, substituting the
// defaults for non-positive dimensions.
func (o SVGOptions) Clamp() SVGOptions {
	o.Elev = clamp(o.Elev, -90, 90)
	o.Azim = clamp(o.Azim, -180, 180)
	if o.Width <= 0 {
		o.Width = 300
	}
	if o.Height <= 0 {
		o.Height = 300
	}
	return o
}

// viewMatrix is R_elev · R_azim: rotate about world Y by azim, then about X
// by elev.
func viewMatrix(elevDeg, azimDeg float64) geom.Matrix3 {
	elev := elevDeg * math.Pi / 180
	azim := azimDeg * math.Pi / 180
	rotY := geom.RotationMatrix(geom.Vector3{Y: 1}, azim)
	rotX := geom.RotationMatrix(geom.Vector3{X: 1}, elev)
	return rotX.Mul(rotY)
}

const (
	backfaceCull = -0.01
	ambient      = 0.3
	strokeColor  = "#0369a1"
	strokeWidth  = 1.5
)

// base face color, sky-blue.
var baseColor = [3]float64{14, 165, 233}

var lightDir = geom.Vector3{X: 0.5, Y: 0.7, Z: 0.5}.Norm()

type paintedFace struct {
	points []string
	depth  float64
	shade  float64
}

// EncodeSVG projects the geometry orthographically and paints the visible
// faces back to front with flat diffuse shading.
func EncodeSVG(g *geom.CrystalGeometry, opts SVGOptions) string {
	opts = opts.Clamp()
	view := viewMatrix(opts.Elev, opts.Azim)
	scale := math.Min(float64(opts.Width), float64(opts.Height)) * 0.35
	cx := float64(opts.Width) / 2
	cy := float64(opts.Height) / 2

	var painted []paintedFace
	for _, f := range g.Faces {
		if len(f.Vertices) < 3 {
			continue
		}
		n := view.Apply(f.Normal)
		if n.Z < backfaceCull {
			continue
		}
		shade := ambient + (1-ambient)*math.Max(0, n.Dot(lightDir))

		pts := make([]string, len(f.Vertices))
		var depth float64
		for i, v := range f.Vertices {
			p := view.Apply(v)
			depth += p.Z
			pts[i] = fmt.Sprintf("%.2f,%.2f", cx+p.X*scale, cy-p.Y*scale)
		}
		painted = append(painted, paintedFace{
			points: pts,
			depth:  depth / float64(len(f.Vertices)),
			shade:  shade,
		})
	}

	// Painter's algorithm: farthest first.
	sort.Slice(painted, func(i, j int) bool { return painted[i].depth < painted[j].depth })

	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		opts.Width, opts.Height, opts.Width, opts.Height)
	sb.WriteString(`<defs>
<linearGradient id="sheen" x1="0" y1="0" x2="0" y2="1">
<stop offset="0" stop-color="#e0f2fe" stop-opacity="0.45"/>
<stop offset="1" stop-color="#0c4a6e" stop-opacity="0.25"/>
</linearGradient>
<filter id="shadow" x="-20%" y="-20%" width="140%" height="140%">
<feDropShadow dx="0" dy="3" stdDeviation="4" flood-color="#0c4a6e" flood-opacity="0.35"/>
</filter>
</defs>
`)
	sb.WriteString(`<g filter="url(#shadow)">` + "\n")
	for _, f := range painted {
		r := int(baseColor[0] * f.shade)
		gr := int(baseColor[1] * f.shade)
		b := int(baseColor[2] * f.shade)
		fmt.Fprintf(&sb, `<polygon points="%s" fill="rgb(%d,%d,%d)" stroke="%s" stroke-width="%g" stroke-linejoin="round"/>`+"\n",
			strings.Join(f.points, " "), r, gr, b, strokeColor, strokeWidth)
		fmt.Fprintf(&sb, `<polygon points="%s" fill="url(#sheen)" stroke="none"/>`+"\n",
			strings.Join(f.points, " "))
	}
	sb.WriteString("</g>\n</svg>\n")
	return sb.String()
}
