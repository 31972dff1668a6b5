package loader

import (
	"fmt"
	"image/color"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/skelmesh/pkg/formats"
	"github.com/Faultbox/skelmesh/pkg/math"
	"github.com/Faultbox/skelmesh/pkg/skinned"
)

// MS3DLoader builds skinned meshes from MilkShape 3D files.
//
// Loading is lenient: only unreadable data, a bad signature or an
// unsupported version fail. Out-of-range indices and similar quirks of
// exporting tools are repaired, reported as issues and logged at warn.
type MS3DLoader struct {
	log       *zap.Logger
	textures  TextureResolver
	maxIssues int
}

// Option configures an MS3DLoader.
type Option func(*MS3DLoader)

// WithLogger sets the sink for issue warnings.
func WithLogger(log *zap.Logger) Option {
	return func(l *MS3DLoader) { l.log = log }
}

// WithTextureResolver sets how material textures are resolved. Without
// one, materials carry no textures.
func WithTextureResolver(r TextureResolver) Option {
	return func(l *MS3DLoader) { l.textures = r }
}

// WithMaxLoggedIssues caps the number of issues logged per load. Zero
// logs all of them. Result.Issues is never truncated.
func WithMaxLoggedIssues(n int) Option {
	return func(l *MS3DLoader) { l.maxIssues = n }
}

// NewMS3DLoader creates a loader.
func NewMS3DLoader(opts ...Option) *MS3DLoader {
	l := &MS3DLoader{log: zap.NewNop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// IsLoadableFile reports whether name looks like an MS3D file.
func (l *MS3DLoader) IsLoadableFile(name string) bool {
	return formats.IsMS3DFile(name)
}

// CreateMesh reads f and builds a finalized mesh. On failure no mesh is
// returned.
func (l *MS3DLoader) CreateMesh(f File) (*skinned.Mesh, error) {
	res, err := l.LoadFile(f)
	if err != nil {
		return nil, err
	}
	return res.Mesh, nil
}

// LoadFile reads f and builds a finalized mesh along with the list of
// repaired issues.
func (l *MS3DLoader) LoadFile(f File) (*Result, error) {
	data, err := readFile(f)
	if err != nil {
		return nil, err
	}
	return l.Load(data, f.Name())
}

// Load builds a mesh from MS3D bytes. name is used to resolve texture
// paths relative to the model and for log context.
func (l *MS3DLoader) Load(data []byte, name string) (*Result, error) {
	model, err := formats.ParseMS3D(data)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", name, err)
	}

	b := &ms3dBuilder{
		loader: l,
		model:  model,
		dir:    filepath.Dir(name),
		mesh:   skinned.New(),
		issues: append([]formats.Issue(nil), model.Issues...),
	}
	b.mesh.FramesPerSecond = model.FramesPerSecond
	b.mesh.FrameCount = int(model.FrameCount)

	b.buildBuffers()
	b.buildJoints()
	b.resolveParents()
	b.buildGeometry()

	if err := b.mesh.Finalize(); err != nil {
		return nil, fmt.Errorf("loading %s: %w", name, err)
	}

	l.logIssues(name, b.issues)
	l.log.Debug("loaded MS3D model",
		zap.String("file", name),
		zap.Int32("version", model.Version),
		zap.Int("buffers", len(b.mesh.Buffers)),
		zap.Int("vertices", b.mesh.VertexCount()),
		zap.Int("triangles", b.mesh.TriangleCount()),
		zap.Int("joints", len(b.mesh.Joints)),
		zap.Int("issues", len(b.issues)))

	return &Result{Mesh: b.mesh, Issues: b.issues, Model: model}, nil
}

func (l *MS3DLoader) logIssues(name string, issues []formats.Issue) {
	for i, is := range issues {
		if l.maxIssues > 0 && i == l.maxIssues {
			l.log.Warn("further MS3D issues suppressed",
				zap.String("file", name),
				zap.Int("suppressed", len(issues)-i))
			return
		}
		l.log.Warn("repaired MS3D data",
			zap.String("file", name),
			zap.Stringer("kind", is.Kind),
			zap.Int("index", is.Index),
			zap.String("detail", is.Detail))
	}
}

// ms3dBuilder carries the state of one load.
type ms3dBuilder struct {
	loader *MS3DLoader
	model  *formats.MS3D
	dir    string
	mesh   *skinned.Mesh
	issues []formats.Issue
}

func (b *ms3dBuilder) issue(kind formats.IssueKind, index int, format string, args ...any) {
	b.issues = append(b.issues, formats.Issue{Kind: kind, Index: index, Detail: fmt.Sprintf(format, args...)})
}

// buildBuffers creates one buffer per material, or a single default
// buffer when the file has none.
func (b *ms3dBuilder) buildBuffers() {
	if len(b.model.Materials) == 0 {
		b.mesh.CreateBuffer()
		return
	}
	for i := range b.model.Materials {
		src := &b.model.Materials[i]
		idx := b.mesh.CreateBuffer()
		mat := &b.mesh.Buffer(idx).Material
		mat.Name = src.Name
		mat.AmbientColor = b.color(i, "ambient", src.Ambient)
		mat.DiffuseColor = b.color(i, "diffuse", src.Diffuse)
		mat.SpecularColor = b.color(i, "specular", src.Specular)
		mat.EmissiveColor = b.color(i, "emissive", src.Emissive)
		mat.Shininess = src.Shininess
		mat.Transparency = src.Transparency
		mat.Texture = b.texture(src.Texture)
		mat.AlphaMap = b.texture(src.AlphaMap)
	}
}

// color converts a float RGBA color to 8 bits per channel, clamping
// channels outside [0, 1].
func (b *ms3dBuilder) color(material int, which string, c [4]float32) color.NRGBA {
	var out [4]uint8
	clamped := false
	for i, v := range c {
		switch {
		case v < 0:
			v, clamped = 0, true
		case v > 1:
			v, clamped = 1, true
		case v != v:
			v, clamped = 0, true
		}
		out[i] = uint8(v * 255)
	}
	if clamped {
		b.issue(formats.IssueColorRange, material, "%s color %v clamped to [0, 1]", which, c)
	}
	return color.NRGBA{R: out[0], G: out[1], B: out[2], A: out[3]}
}

// texture resolves a stored texture path against the model directory.
// Only the file name of the stored path is kept.
func (b *ms3dBuilder) texture(stored string) skinned.Texture {
	stored = strings.TrimSpace(stored)
	if stored == "" || b.loader.textures == nil {
		return nil
	}
	base := path.Base(strings.ReplaceAll(stored, "\\", "/"))
	full := filepath.Join(b.dir, base)
	tex, err := b.loader.textures.ResolveTexture(full)
	if err != nil {
		b.loader.log.Warn("texture not resolved",
			zap.String("texture", stored),
			zap.String("path", full),
			zap.Error(err))
		return nil
	}
	return tex
}

// buildJoints creates the joints as roots with their rest transforms and
// baked keyframes. Parents are linked by resolveParents.
func (b *ms3dBuilder) buildJoints() {
	fps := b.model.FramesPerSecond
	for i := range b.model.Joints {
		src := &b.model.Joints[i]
		idx := b.mesh.CreateJoint(src.Name, -1)

		j := &b.mesh.Joints[idx]
		j.LocalMatrix.SetRotationRadians(math.Vec3FromArray(src.Rotation))
		j.LocalMatrix.SetTranslation(math.Vec3FromArray(src.Translation))
		local := j.LocalMatrix

		// Rotation keys include the rest rotation; position keys are
		// offsets added to the rest translation.
		for _, k := range src.RotationKeys {
			rot := local.Mul(math.RotationRadians(math.Vec3FromArray(k.Parameter)))
			b.mesh.CreateRotationKey(idx, skinned.RotationKey{
				Frame:    k.Time * fps,
				Rotation: math.QuatFromMat4(rot),
			})
		}
		rest := local.Translation()
		for _, k := range src.TranslationKeys {
			b.mesh.CreatePositionKey(idx, skinned.PositionKey{
				Frame:    k.Time * fps,
				Position: rest.Add(math.Vec3FromArray(k.Parameter)),
			})
		}
	}
}

// resolveParents links every joint to the first other joint carrying its
// parent name. Joints whose parent cannot be found stay roots.
func (b *ms3dBuilder) resolveParents() {
	byName := make(map[string][]int, len(b.model.Joints))
	for i := range b.model.Joints {
		name := b.model.Joints[i].Name
		byName[name] = append(byName[name], i)
	}

	for i := range b.model.Joints {
		parentName := b.model.Joints[i].ParentName
		if parentName == "" {
			continue
		}
		parent := -1
		for _, c := range byName[parentName] {
			if c != i {
				parent = c
				break
			}
		}
		if parent < 0 {
			b.issue(formats.IssueJointParent, i, "parent %q of joint %q not found, joint is a root", parentName, b.model.Joints[i].Name)
			continue
		}
		if err := b.mesh.AttachJoint(i, parent); err != nil {
			b.issue(formats.IssueJointParent, i, "%v, joint is a root", err)
		}
	}
}

// buildGeometry deduplicates triangle corners into the material buffers,
// binds first occurrences to their bone, and then emits indices group by
// group.
func (b *ms3dBuilder) buildGeometry() {
	m := b.model
	numBuffers := len(b.mesh.Buffers)
	numJoints := len(m.Joints)

	// Buffer for each group, or -1 when the group's triangles must fall
	// back to buffer 0 with a white vertex color.
	groupBuffer := make([]int, len(m.Groups))
	for gi := range m.Groups {
		g := &m.Groups[gi]
		switch {
		case !g.HasMaterial():
			groupBuffer[gi] = 0
		case int(g.MaterialIndex) >= numBuffers:
			b.issue(formats.IssueMaterialIndex, gi, "material %d of group %q out of range, using 0", g.MaterialIndex, g.Name)
			groupBuffer[gi] = -1
		default:
			groupBuffer[gi] = int(g.MaterialIndex)
		}
	}

	type corners struct {
		buffer  int
		indices [3]uint32
		ok      bool
	}
	tris := make([]corners, len(m.Triangles))

	for ti := range m.Triangles {
		tri := &m.Triangles[ti]

		bufIdx, vcolor := 0, color.NRGBA{R: 255, G: 255, B: 255, A: 255}
		if gi := int(tri.GroupIndex); gi >= len(m.Groups) {
			b.issue(formats.IssueGroupIndex, ti, "group %d out of range, using buffer 0", gi)
		} else if groupBuffer[gi] >= 0 {
			bufIdx = groupBuffer[gi]
			vcolor = b.mesh.Buffers[bufIdx].Material.DiffuseColor
		}

		valid := true
		for c := 0; c < 3; c++ {
			if int(tri.VertexIndices[c]) >= len(m.Vertices) {
				b.issue(formats.IssueVertexIndex, ti, "vertex %d out of range, triangle skipped", tri.VertexIndices[c])
				valid = false
				break
			}
		}
		if !valid {
			continue
		}

		buf := b.mesh.Buffer(bufIdx)
		tris[ti] = corners{buffer: bufIdx, ok: true}
		for c := 0; c < 3; c++ {
			src := &m.Vertices[tri.VertexIndices[c]]
			v := skinned.Vertex{
				Pos:     math.Vec3FromArray(src.Position),
				Normal:  math.Vec3FromArray(tri.Normals[c]),
				TCoords: math.Vec2{X: tri.S[c], Y: tri.T[c]},
				Color:   vcolor,
			}
			idx, added := buf.AddVertex(v)
			tris[ti].indices[c] = idx
			if !added {
				continue
			}
			switch bone := int(src.BoneID); {
			case bone >= 0 && bone < numJoints:
				b.mesh.CreateWeight(bone, bufIdx, int(idx), 1)
			case bone != -1:
				b.issue(formats.IssueBoneIndex, int(tri.VertexIndices[c]), "bone %d out of range, vertex unweighted", bone)
			}
		}
	}

	for gi := range m.Groups {
		g := &m.Groups[gi]
		for _, ti := range g.TriangleIndices {
			if int(ti) >= len(tris) {
				b.issue(formats.IssueTriangleIndex, gi, "triangle %d of group %q out of range, skipped", ti, g.Name)
				continue
			}
			t := &tris[ti]
			if !t.ok {
				continue
			}
			b.mesh.Buffer(t.buffer).AddTriangle(t.indices[0], t.indices[1], t.indices[2])
		}
	}
}
