package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"go.uber.org/zap"

	"github.com/Faultbox/skelmesh/internal/assets"
	"github.com/Faultbox/skelmesh/internal/config"
	"github.com/Faultbox/skelmesh/internal/export"
	"github.com/Faultbox/skelmesh/pkg/formats"
	"github.com/Faultbox/skelmesh/pkg/loader"
	"github.com/Faultbox/skelmesh/pkg/math"
	"github.com/Faultbox/skelmesh/pkg/skinned"
)

// loadModel reads path once and returns both the decoded records and the
// assembled mesh.
func (a *app) loadModel(path string) (*formats.MS3D, *loader.Result, error) {
	f, err := assets.OpenFile(path)
	if err != nil {
		return nil, nil, err
	}
	res, err := a.loader.LoadFile(f)
	if err != nil {
		return nil, nil, err
	}
	return res.Model, res, nil
}

func (a *app) cmdInfo(args []string) error {
	if len(args) != 1 {
		return a.usage("info <file.ms3d>")
	}
	model, res, err := a.loadModel(args[0])
	if err != nil {
		return err
	}
	mesh := res.Mesh

	fmt.Fprintf(a.out, "File:       %s\n", args[0])
	fmt.Fprintf(a.out, "Version:    %d\n", model.Version)
	fmt.Fprintf(a.out, "Records:    %d vertices, %d triangles, %d groups, %d materials, %d joints\n",
		len(model.Vertices), len(model.Triangles), len(model.Groups), len(model.Materials), len(model.Joints))
	fmt.Fprintf(a.out, "Animation:  %d frames at %g fps, %d keyframes\n",
		mesh.FrameCount, mesh.FramesPerSecond, model.GetKeyframeCount())
	fmt.Fprintf(a.out, "Mesh:       %d buffers, %d vertices, %d triangles, %d weights\n",
		len(mesh.Buffers), mesh.VertexCount(), mesh.TriangleCount(), len(mesh.Weights))
	box := mesh.BoundingBox
	fmt.Fprintf(a.out, "Bounds:     (%g, %g, %g) - (%g, %g, %g)\n",
		box.Min.X, box.Min.Y, box.Min.Z, box.Max.X, box.Max.Y, box.Max.Z)

	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, "Buffers:")
	for i := range mesh.Buffers {
		b := &mesh.Buffers[i]
		name := b.Material.Name
		if name == "" {
			name = "(default)"
		}
		tex := "-"
		if b.Material.Texture != nil {
			tex = b.Material.Texture.Path()
		}
		fmt.Fprintf(a.out, "  %-6s %-20s %6d verts %6d tris  texture %s\n",
			export.MaterialName(i), name, len(b.Vertices), b.TriangleCount(), tex)
	}

	if len(res.Issues) > 0 {
		fmt.Fprintln(a.out)
		fmt.Fprintf(a.out, "Issues (%d):\n", len(res.Issues))
		for _, is := range res.Issues {
			fmt.Fprintf(a.out, "  %s\n", is)
		}
	}
	return nil
}

func (a *app) cmdJoints(args []string) error {
	if len(args) != 1 {
		return a.usage("joints <file.ms3d>")
	}
	_, res, err := a.loadModel(args[0])
	if err != nil {
		return err
	}
	mesh := res.Mesh
	if len(mesh.Joints) == 0 {
		fmt.Fprintln(a.out, "(no joints)")
		return nil
	}

	var walk func(idx, depth int)
	walk = func(idx, depth int) {
		j := &mesh.Joints[idx]
		pos := j.GlobalMatrix.Translation()
		fmt.Fprintf(a.out, "%s%s  [%d rot, %d pos keys]  at (%g, %g, %g)\n",
			strings.Repeat("  ", depth), j.Name, len(j.RotationKeys), len(j.PositionKeys), pos.X, pos.Y, pos.Z)
		for _, c := range j.Children {
			walk(c, depth+1)
		}
	}
	for _, root := range mesh.RootJoints() {
		walk(root, 0)
	}
	return nil
}

func (a *app) cmdDump(args []string) error {
	fs := flag.NewFlagSet("dump", flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	depth := fs.Int("depth", 3, "Maximum nesting depth (0 = unlimited)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() != 1 {
		return a.usage("dump [-depth n] <file.ms3d>")
	}

	model, _, err := a.loadModel(fs.Arg(0))
	if err != nil {
		return err
	}

	cs := spew.ConfigState{
		Indent:                  "  ",
		MaxDepth:                *depth,
		DisablePointerAddresses: true,
		DisableCapacities:       true,
		SortKeys:                true,
	}
	cs.Fdump(a.out, model)
	return nil
}

func (a *app) cmdExport(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return a.usage("export <file.ms3d> [output]")
	}
	src := args[0]
	_, res, err := a.loadModel(src)
	if err != nil {
		return err
	}

	format := a.cfg.Export.Format
	out := ""
	if len(args) == 2 {
		out = args[1]
		if ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(out)), "."); ext == config.FormatGLB || ext == config.FormatGLTF || ext == config.FormatOBJ {
			format = ext
		}
	} else {
		base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
		out = filepath.Join(a.cfg.Export.OutputDir, base+"."+format)
	}

	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return err
	}
	if err := a.writeExport(res.Mesh, format, out, src); err != nil {
		return err
	}

	a.log.Info("exported model",
		zap.String("source", src),
		zap.String("output", out),
		zap.String("format", format))
	fmt.Fprintf(a.out, "Exported %s -> %s (%s)\n", src, out, format)
	return nil
}

func (a *app) writeExport(mesh *skinned.Mesh, format, out, src string) error {
	name := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))

	switch format {
	case config.FormatOBJ:
		var pose *skinned.Pose
		if a.cfg.Export.Frame >= 0 {
			p, err := mesh.SamplePose(a.cfg.Export.Frame)
			if err != nil {
				return err
			}
			pose = p
		}
		geom := export.Flatten(mesh, pose)

		mtlPath := strings.TrimSuffix(out, filepath.Ext(out)) + ".mtl"
		objFile, err := os.Create(out)
		if err != nil {
			return err
		}
		defer objFile.Close()
		mtlFile, err := os.Create(mtlPath)
		if err != nil {
			return err
		}
		defer mtlFile.Close()

		if err := export.WriteOBJ(objFile, mtlFile, geom, mtlPath); err != nil {
			return err
		}
		if err := mtlFile.Close(); err != nil {
			return err
		}
		return objFile.Close()

	case config.FormatGLB, config.FormatGLTF:
		doc, err := export.BuildGLTF(mesh, name)
		if err != nil {
			return err
		}
		fh, err := os.Create(out)
		if err != nil {
			return err
		}
		defer fh.Close()
		if err := export.WriteGLTF(fh, doc, format == config.FormatGLB); err != nil {
			return err
		}
		return fh.Close()

	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

func (a *app) cmdPose(args []string) error {
	if len(args) != 2 {
		return a.usage("pose <file.ms3d> <frame>")
	}
	frame, err := strconv.ParseFloat(args[1], 32)
	if err != nil {
		return fmt.Errorf("invalid frame %q: %w", args[1], err)
	}
	_, res, err := a.loadModel(args[0])
	if err != nil {
		return err
	}
	mesh := res.Mesh

	pose, err := mesh.SamplePose(float32(frame))
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Frame %g of %d\n", frame, mesh.FrameCount)
	for i := range mesh.Joints {
		p := pose.Global[i].TransformVect(math.Vec3{})
		fmt.Fprintf(a.out, "  %-24s (%.4f, %.4f, %.4f)\n", mesh.Joints[i].Name, p.X, p.Y, p.Z)
	}
	box := pose.BoundingBox()
	fmt.Fprintf(a.out, "Bounds: (%.4f, %.4f, %.4f) - (%.4f, %.4f, %.4f)\n",
		box.Min.X, box.Min.Y, box.Min.Z, box.Max.X, box.Max.Y, box.Max.Z)
	return nil
}
