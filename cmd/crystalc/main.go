// crystalc is the command-line frontend: validate a CDL expression or export
// it as SVG, STL or glTF.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"gocrystal/pkg/cdl"
	"gocrystal/pkg/crystal"
	"gocrystal/pkg/ctxlog"
	"gocrystal/pkg/render"
	"gocrystal/pkg/utils"
)

var (
	inPath  string
	outPath string

	elev, azim    float64
	width, height int

	exportScale float64
)

func pipelineContext() context.Context {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	return ctxlog.WithLogger(context.Background(), log)
}

func generate() (*crystal.Result, error) {
	src, err := utils.ReadSource(inPath)
	if err != nil {
		return nil, err
	}
	return crystal.Generate(pipelineContext(), src)
}

func main() {
	root := &cobra.Command{
		Use:           "crystalc",
		Short:         "Crystal Description Language compiler and exporter",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&inPath, "in", "i", "-", "CDL input file (- for stdin)")
	root.PersistentFlags().StringVarP(&outPath, "out", "o", "-", "output file (- for stdout)")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Parse a CDL expression and report its structure",
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := utils.ReadSource(inPath)
			if err != nil {
				return err
			}
			parsed, err := cdl.Parse(src)
			if err != nil {
				return fmt.Errorf("invalid CDL: %w", err)
			}
			flat := parsed.FlatForms()
			fmt.Printf("system      %s\n", parsed.System)
			fmt.Printf("point group %s\n", parsed.PointGroup)
			fmt.Printf("forms       %d\n", len(flat))
			for _, f := range flat {
				fmt.Printf("  %s @ %g", f.Miller, f.Scale)
				if f.Features != "" {
					fmt.Printf("  [%s]", f.Features)
				}
				fmt.Println()
			}
			if parsed.Twin != nil {
				fmt.Printf("twin        %s\n", parsed.Twin.Law)
			}
			for _, w := range parsed.Warnings {
				fmt.Fprintln(os.Stderr, "warning:", w)
			}
			return nil
		},
	}

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "Render a CDL expression to SVG",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := generate()
			if err != nil {
				return err
			}
			svg := render.EncodeSVG(result.Geometry, render.SVGOptions{
				Elev: elev, Azim: azim, Width: width, Height: height,
			})
			return utils.WriteArtifact(outPath, []byte(svg))
		},
	}
	renderCmd.Flags().Float64Var(&elev, "elev", 30, "camera elevation in degrees")
	renderCmd.Flags().Float64Var(&azim, "azim", -45, "camera azimuth in degrees")
	renderCmd.Flags().IntVar(&width, "width", 300, "image width")
	renderCmd.Flags().IntVar(&height, "height", 300, "image height")

	stlCmd := &cobra.Command{
		Use:   "stl",
		Short: "Export a CDL expression as ASCII STL",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := generate()
			if err != nil {
				return err
			}
			stl := render.EncodeSTL(result.Geometry, exportScale)
			return utils.WriteArtifact(outPath, []byte(stl))
		},
	}
	stlCmd.Flags().Float64Var(&exportScale, "scale", 10, "millimetres per model unit")

	gltfCmd := &cobra.Command{
		Use:   "gltf",
		Short: "Export a CDL expression as glTF 2.0 JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := generate()
			if err != nil {
				return err
			}
			doc, err := render.EncodeGLTF(result.Geometry, exportScale)
			if err != nil {
				return err
			}
			return utils.WriteArtifact(outPath, doc)
		},
	}
	gltfCmd.Flags().Float64Var(&exportScale, "scale", 1, "scene scale factor")

	root.AddCommand(validateCmd, renderCmd, stlCmd, gltfCmd)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
