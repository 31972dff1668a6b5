package export

import (
	"bufio"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/Faultbox/skelmesh/pkg/skinned"
)

// WriteOBJ writes g as Wavefront OBJ to w and its materials to wMatlib.
// matlibName is the file name the OBJ refers to with mtllib; an empty
// name or nil wMatlib skips materials. Texture coordinates are written
// with V flipped.
func WriteOBJ(w io.Writer, wMatlib io.Writer, g *Geometry, matlibName string) error {
	bw := bufio.NewWriter(w)
	p := func(format string, args ...any) {
		fmt.Fprintf(bw, format+"\n", args...)
	}

	withMaterials := wMatlib != nil && matlibName != ""
	if withMaterials {
		p("mtllib %s", filepath.Base(matlibName))
	}

	for _, v := range g.Positions {
		p("v %f %f %f", v[0], v[1], v[2])
	}
	for _, t := range g.TexCoords {
		p("vt %f %f", t[0], 1.0-t[1])
	}
	for _, n := range g.Normals {
		p("vn %f %f %f", n[0], n[1], n[2])
	}

	for i, r := range g.Ranges {
		if r.IndexCount == 0 {
			continue
		}
		p("g buffer%d", i)
		if withMaterials {
			p("usemtl %s", MaterialName(i))
		}
		tri := g.Indices[r.IndexStart : r.IndexStart+r.IndexCount]
		for k := 0; k+2 < len(tri); k += 3 {
			a, b, c := tri[k]+1, tri[k+1]+1, tri[k+2]+1
			p("f %d/%d/%d %d/%d/%d %d/%d/%d", a, a, a, b, b, b, c, c, c)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing obj: %w", err)
	}

	if withMaterials {
		if err := writeMTL(wMatlib, g.Materials); err != nil {
			return fmt.Errorf("writing mtl: %w", err)
		}
	}
	return nil
}

func writeMTL(w io.Writer, materials []skinned.Material) error {
	bw := bufio.NewWriter(w)
	for i, m := range materials {
		fmt.Fprintf(bw, "newmtl %s\n", MaterialName(i))
		fmt.Fprintf(bw, "Ka %s\n", rgb(m.AmbientColor.R, m.AmbientColor.G, m.AmbientColor.B))
		fmt.Fprintf(bw, "Kd %s\n", rgb(m.DiffuseColor.R, m.DiffuseColor.G, m.DiffuseColor.B))
		fmt.Fprintf(bw, "Ks %s\n", rgb(m.SpecularColor.R, m.SpecularColor.G, m.SpecularColor.B))
		fmt.Fprintf(bw, "Ke %s\n", rgb(m.EmissiveColor.R, m.EmissiveColor.G, m.EmissiveColor.B))
		fmt.Fprintf(bw, "Ns %f\n", m.Shininess)
		fmt.Fprintf(bw, "d %f\n", m.Transparency)
		if m.Texture != nil {
			fmt.Fprintf(bw, "map_Kd %s\n", textureFile(m.Texture))
		}
		if m.AlphaMap != nil {
			fmt.Fprintf(bw, "map_d %s\n", textureFile(m.AlphaMap))
		}
		bw.WriteString("\n")
	}
	return bw.Flush()
}

func rgb(r, g, b uint8) string {
	return fmt.Sprintf("%f %f %f", float32(r)/255, float32(g)/255, float32(b)/255)
}

// textureFile returns the base name of a texture, which exporters
// reference relative to the written file.
func textureFile(t skinned.Texture) string {
	return path.Base(strings.ReplaceAll(t.Path(), "\\", "/"))
}
