// desktop is an interactive viewer: it generates a crystal from a CDL file
// and lets you orbit it with the arrow keys.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log"
	"math"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/colornames"

	"gocrystal/pkg/crystal"
	"gocrystal/pkg/geom"
	"gocrystal/pkg/utils"
)

const (
	screenW = 640
	screenH = 640
)

// demoCDL is shown when no input file is given.
const demoCDL = `cubic[m3m]:{100}@1 + {111}@1.2`

// whiteImage backs DrawTriangles fills.
var whiteImage = func() *ebiten.Image {
	img := ebiten.NewImage(3, 3)
	img.Fill(colornames.White)
	return img.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
}()

type Game struct {
	mesh *geom.CrystalGeometry

	elev, azim float64 // degrees
	zoom       float64
	wireframe  bool
}

func (g *Game) Update() error {
	const step = 2.0
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		g.azim -= step
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		g.azim += step
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		g.elev = math.Min(g.elev+step, 90)
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		g.elev = math.Max(g.elev-step, -90)
	}
	if ebiten.IsKeyPressed(ebiten.KeyEqual) {
		g.zoom *= 1.02
	}
	if ebiten.IsKeyPressed(ebiten.KeyMinus) {
		g.zoom /= 1.02
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyW) {
		g.wireframe = !g.wireframe
	}
	return nil
}

// view builds R_elev · R_azim for the current camera.
func (g *Game) view() geom.Matrix3 {
	rotY := geom.RotationMatrix(geom.Vector3{Y: 1}, g.azim*math.Pi/180)
	rotX := geom.RotationMatrix(geom.Vector3{X: 1}, g.elev*math.Pi/180)
	return rotX.Mul(rotY)
}

func (g *Game) project(view geom.Matrix3, v geom.Vector3) (float32, float32, float64) {
	p := view.Apply(v)
	return float32(screenW/2 + p.X*g.zoom), float32(screenH/2 - p.Y*g.zoom), p.Z
}

var lightDir = geom.Vector3{X: 0.5, Y: 0.7, Z: 0.5}.Norm()

func (g *Game) drawFaces(screen *ebiten.Image, view geom.Matrix3) {
	type shadedFace struct {
		face  geom.Face
		depth float64
		shade float32
	}
	var faces []shadedFace
	for _, f := range g.mesh.Faces {
		if len(f.Vertices) < 3 {
			continue
		}
		n := view.Apply(f.Normal)
		if n.Z < -0.01 {
			continue
		}
		depth := 0.0
		for _, v := range f.Vertices {
			depth += view.Apply(v).Z
		}
		shade := 0.3 + 0.7*math.Max(0, n.Dot(lightDir))
		faces = append(faces, shadedFace{f, depth / float64(len(f.Vertices)), float32(shade)})
	}
	// Painter's algorithm: farthest first.
	for i := 0; i < len(faces); i++ {
		for j := i + 1; j < len(faces); j++ {
			if faces[j].depth < faces[i].depth {
				faces[i], faces[j] = faces[j], faces[i]
			}
		}
	}

	for _, sf := range faces {
		verts := make([]ebiten.Vertex, len(sf.face.Vertices))
		for i, v := range sf.face.Vertices {
			x, y, _ := g.project(view, v)
			verts[i] = ebiten.Vertex{
				DstX: x, DstY: y, SrcX: 1, SrcY: 1,
				ColorR: 0.055 * sf.shade, ColorG: 0.647 * sf.shade, ColorB: 0.914 * sf.shade, ColorA: 1,
			}
		}
		var indices []uint16
		for i := 1; i+1 < len(verts); i++ {
			indices = append(indices, 0, uint16(i), uint16(i+1))
		}
		screen.DrawTriangles(verts, indices, whiteImage, &ebiten.DrawTrianglesOptions{})
	}
}

func (g *Game) drawEdges(screen *ebiten.Image, view geom.Matrix3) {
	for _, e := range g.mesh.Edges {
		x0, y0, _ := g.project(view, g.mesh.Vertices[e.A])
		x1, y1, _ := g.project(view, g.mesh.Vertices[e.B])
		vector.StrokeLine(screen, x0, y0, x1, y1, 1.5, colornames.Lightsteelblue, true)
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Midnightblue)
	view := g.view()
	if !g.wireframe {
		g.drawFaces(screen, view)
	}
	g.drawEdges(screen, view)
	ebitenutil.DebugPrint(screen, fmt.Sprintf(
		"elev %.0f  azim %.0f  zoom %.0f\narrows: orbit  +/-: zoom  w: wireframe",
		g.elev, g.azim, g.zoom))
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenW, screenH
}

func main() {
	inPath := flag.String("in", "", "CDL input file (default: built-in demo)")
	flag.Parse()

	src := demoCDL
	if *inPath != "" {
		var err error
		src, err = utils.ReadSource(*inPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	result, err := crystal.Generate(context.Background(), src)
	if err != nil {
		fmt.Fprintln(os.Stderr, "generation failed:", err)
		os.Exit(1)
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(screenW, screenH)
	ebiten.SetWindowTitle("Crystal Viewer")

	game := &Game{mesh: result.Geometry, elev: 30, azim: -45, zoom: 180}
	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
