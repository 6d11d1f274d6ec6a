package models

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"

	"github.com/taigrr/facet/pkg/math3d"
	"github.com/taigrr/facet/pkg/render"
	"github.com/taigrr/facet/pkg/scene"
)

// SceneDoc is a fully assembled scene description loaded from a TOML
// file: elements, camera, lights and the background to render over.
type SceneDoc struct {
	Scene      *scene.Scene
	Camera     *render.PerspectiveCamera
	Lights     []scene.Light
	Background scene.Color
}

type sceneFile struct {
	Background []float64    `toml:"background"`
	Camera     *cameraFile  `toml:"camera"`
	Lights     []lightFile  `toml:"lights"`
	Objects    []objectFile `toml:"objects"`
	Grid       *gridFile    `toml:"grid"`
	Axes       *axesFile    `toml:"axes"`
}

type cameraFile struct {
	Position []float64 `toml:"position"`
	LookAt   []float64 `toml:"look_at"`
	Focal    float64   `toml:"focal"`
	View     []float64 `toml:"view"`
	Scale    float64   `toml:"scale"`
}

type lightFile struct {
	Kind        string    `toml:"kind"`
	Intensity   float64   `toml:"intensity"`
	Direction   []float64 `toml:"direction"`
	Position    []float64 `toml:"position"`
	BeamAngle   float64   `toml:"beam_angle"`
	CutoffAngle float64   `toml:"cutoff_angle"`
	Shadow      bool      `toml:"shadow"`
}

type objectFile struct {
	Shape    string    `toml:"shape"`
	Model    string    `toml:"model"`
	Size     float64   `toml:"size"`
	Segments int       `toml:"segments"`
	Rings    int       `toml:"rings"`
	Position []float64 `toml:"position"`
	Rotation []float64 `toml:"rotation"`
	Scale    []float64 `toml:"scale"`
	Color    []float64 `toml:"color"`
	Material string    `toml:"material"`
	// Alpha 0 is treated as opaque, so omitting it keeps objects solid.
	Alpha          float64 `toml:"alpha"`
	CastsShadow    bool    `toml:"casts_shadow"`
	ReceivesShadow bool    `toml:"receives_shadow"`
	Tag            string  `toml:"tag"`
	ZIndex         int     `toml:"z_index"`
}

type gridFile struct {
	Size      float64   `toml:"size"`
	Step      float64   `toml:"step"`
	Color     []float64 `toml:"color"`
	Thickness float64   `toml:"thickness"`
}

type axesFile struct {
	Length    float64 `toml:"length"`
	Thickness float64 `toml:"thickness"`
}

// LoadScene reads a TOML scene description. Model paths inside the
// file resolve relative to the file itself, and untagged objects are
// assigned generated tags so shadows and paint diagnostics can name
// them.
func LoadScene(path string) (*SceneDoc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}

	var sf sceneFile
	if err := toml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}

	doc := &SceneDoc{Scene: scene.NewScene()}

	if sf.Background != nil {
		doc.Background, err = colorOf(sf.Background)
		if err != nil {
			return nil, fmt.Errorf("background: %w", err)
		}
	}

	doc.Camera, err = buildCamera(sf.Camera)
	if err != nil {
		return nil, err
	}

	for i, lf := range sf.Lights {
		light, err := buildLight(lf)
		if err != nil {
			return nil, fmt.Errorf("light %d: %w", i, err)
		}
		doc.Lights = append(doc.Lights, light)
	}

	dir := filepath.Dir(path)
	for i, of := range sf.Objects {
		els, err := buildObject(of, dir)
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
		doc.Scene.Add(els...)
	}

	if g := sf.Grid; g != nil {
		col := scene.RGB(0.85, 0.85, 0.85)
		if g.Color != nil {
			col, err = colorOf(g.Color)
			if err != nil {
				return nil, fmt.Errorf("grid: %w", err)
			}
		}
		if g.Step <= 0 {
			g.Step = 1
		}
		if g.Thickness <= 0 {
			g.Thickness = 0.02
		}
		doc.Scene.Add(Grid(g.Size, g.Step, col, g.Thickness)...)
	}
	if a := sf.Axes; a != nil {
		if a.Length <= 0 {
			a.Length = 1
		}
		if a.Thickness <= 0 {
			a.Thickness = 0.04
		}
		doc.Scene.Add(Axes(a.Length, a.Thickness)...)
	}

	return doc, nil
}

func buildCamera(cf *cameraFile) (*render.PerspectiveCamera, error) {
	if cf == nil {
		return render.NewPerspectiveCamera(
			math3d.V3(0, 3, 10),
			math3d.V3(0, -3, -10).Unit(),
			5, math3d.V2(10, 10), 1,
		), nil
	}

	pos, err := vecOf(cf.Position, "position")
	if err != nil {
		return nil, fmt.Errorf("camera: %w", err)
	}
	lookAt, err := vecOf(cf.LookAt, "look_at")
	if err != nil {
		return nil, fmt.Errorf("camera: %w", err)
	}
	if lookAt.Sub(pos).LenSq() == 0 {
		return nil, fmt.Errorf("camera: position and look_at coincide")
	}

	focal := cf.Focal
	if focal == 0 {
		focal = 5
	}
	view := math3d.V2(10, 10)
	if cf.View != nil {
		if len(cf.View) != 2 {
			return nil, fmt.Errorf("camera: view needs 2 components, got %d", len(cf.View))
		}
		view = math3d.V2(cf.View[0], cf.View[1])
	}
	scale := cf.Scale
	if scale == 0 {
		scale = 1
	}

	return render.NewPerspectiveCamera(pos, lookAt.Sub(pos).Unit(), focal, view, scale), nil
}

func buildLight(lf lightFile) (scene.Light, error) {
	switch lf.Kind {
	case "ambient":
		return scene.NewAmbientLight(lf.Intensity), nil

	case "directional":
		dir, err := vecOf(lf.Direction, "direction")
		if err != nil {
			return nil, err
		}
		l := scene.NewDirectionalLight(dir.Unit(), lf.Intensity)
		l.Shadow = lf.Shadow
		return l, nil

	case "point":
		pos, err := vecOf(lf.Position, "position")
		if err != nil {
			return nil, err
		}
		l := scene.NewPointLight(pos, lf.Intensity)
		l.Shadow = lf.Shadow
		return l, nil

	case "spot":
		pos, err := vecOf(lf.Position, "position")
		if err != nil {
			return nil, err
		}
		dir, err := vecOf(lf.Direction, "direction")
		if err != nil {
			return nil, err
		}
		l := scene.NewSpotLight(pos, dir.Unit(), lf.Intensity, lf.BeamAngle, lf.CutoffAngle)
		l.Shadow = lf.Shadow
		return l, nil

	default:
		return nil, fmt.Errorf("unknown kind %q", lf.Kind)
	}
}

func buildObject(of objectFile, dir string) ([]scene.Element, error) {
	if of.Shape != "" && of.Model != "" {
		return nil, fmt.Errorf("shape and model are mutually exclusive")
	}

	var mesh *Mesh
	switch {
	case of.Model != "":
		m, err := LoadGLB(filepath.Join(dir, of.Model))
		if err != nil {
			return nil, err
		}
		if of.Size > 0 {
			m.NormalizeSize(of.Size)
		}
		mesh = m

	case of.Shape != "":
		size := of.Size
		if size <= 0 {
			size = 1
		}
		switch of.Shape {
		case "cube":
			mesh = Cube(size)
		case "plane":
			mesh = Plane(size)
		case "tetrahedron":
			mesh = Tetrahedron(size)
		case "sphere":
			segments, rings := of.Segments, of.Rings
			if segments == 0 {
				segments = 24
			}
			if rings == 0 {
				rings = 12
			}
			mesh = Sphere(size/2, segments, rings)
		default:
			return nil, fmt.Errorf("unknown shape %q", of.Shape)
		}

	default:
		return nil, fmt.Errorf("object needs a shape or a model")
	}

	mat, err := objectTransform(of)
	if err != nil {
		return nil, err
	}
	mesh.Transform(mat)

	fill, err := objectFill(of)
	if err != nil {
		return nil, err
	}

	tag := of.Tag
	if tag == "" {
		tag = uuid.NewString()
	}

	return mesh.Elements(ElementOptions{
		Fill:           fill,
		CastsShadow:    of.CastsShadow,
		ReceivesShadow: of.ReceivesShadow,
		Tag:            tag,
		ZIndex:         of.ZIndex,
	}), nil
}

// objectTransform composes scale, XYZ Euler rotation and translation,
// applied to vertices in that order.
func objectTransform(of objectFile) (math3d.Mat4, error) {
	mat := math3d.Identity()

	if of.Scale != nil {
		s, err := vecOf(of.Scale, "scale")
		if err != nil {
			return mat, err
		}
		mat = math3d.Scale(s)
	}
	if of.Rotation != nil {
		r, err := vecOf(of.Rotation, "rotation")
		if err != nil {
			return mat, err
		}
		mat = math3d.RotateZ(r.Z).Mul(math3d.RotateY(r.Y)).Mul(math3d.RotateX(r.X)).Mul(mat)
	}
	if of.Position != nil {
		p, err := vecOf(of.Position, "position")
		if err != nil {
			return mat, err
		}
		mat = math3d.Translate(p).Mul(mat)
	}
	return mat, nil
}

func objectFill(of objectFile) ([]scene.Material, error) {
	if of.Color == nil && of.Material == "" {
		return nil, nil
	}

	col := scene.RGB(0.8, 0.8, 0.8)
	if of.Color != nil {
		c, err := colorOf(of.Color)
		if err != nil {
			return nil, err
		}
		col = c
	}
	if of.Alpha > 0 {
		col = col.WithAlpha(of.Alpha)
	}

	switch of.Material {
	case "", "phong":
		return []scene.Material{scene.NewPhongMaterial(col)}, nil
	case "color":
		return []scene.Material{scene.NewColorMaterial(col)}, nil
	default:
		return nil, fmt.Errorf("unknown material %q", of.Material)
	}
}

func vecOf(v []float64, what string) (math3d.Vec3, error) {
	if len(v) != 3 {
		return math3d.Zero3(), fmt.Errorf("%s needs 3 components, got %d", what, len(v))
	}
	return math3d.V3(v[0], v[1], v[2]), nil
}

func colorOf(v []float64) (scene.Color, error) {
	switch len(v) {
	case 3:
		return scene.RGB(v[0], v[1], v[2]), nil
	case 4:
		return scene.RGBA(v[0], v[1], v[2], v[3]), nil
	default:
		return scene.Color{}, fmt.Errorf("color needs 3 or 4 components, got %d", len(v))
	}
}
