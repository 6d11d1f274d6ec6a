package models

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/taigrr/facet/pkg/math3d"
)

func TestLoadGLBInvalidPath(t *testing.T) {
	_, err := LoadGLB("/nonexistent/path.glb")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestGLTFLoaderCreation(t *testing.T) {
	loader := NewGLTFLoader()
	if loader == nil {
		t.Error("NewGLTFLoader returned nil")
		return
	}
	if !loader.ComputeNormals {
		t.Error("ComputeNormals should default to true")
	}
}

// writeTriangleGLB assembles a minimal binary glTF by hand: one mesh,
// one primitive, three positions and three uint16 indices, no normals.
func writeTriangleGLB(t *testing.T) string {
	t.Helper()

	jsonDoc := `{"asset":{"version":"2.0"},"scene":0,"scenes":[{"nodes":[0]}],` +
		`"nodes":[{"mesh":0}],` +
		`"meshes":[{"primitives":[{"attributes":{"POSITION":0},"indices":1}]}],` +
		`"accessors":[` +
		`{"bufferView":0,"componentType":5126,"count":3,"type":"VEC3","min":[0,0,0],"max":[1,1,0]},` +
		`{"bufferView":1,"componentType":5123,"count":3,"type":"SCALAR"}],` +
		`"bufferViews":[` +
		`{"buffer":0,"byteOffset":0,"byteLength":36},` +
		`{"buffer":0,"byteOffset":36,"byteLength":6}],` +
		`"buffers":[{"byteLength":44}]}`
	for len(jsonDoc)%4 != 0 {
		jsonDoc += " "
	}

	bin := new(bytes.Buffer)
	for _, f := range []float32{0, 0, 0, 1, 0, 0, 0, 1, 0} {
		binary.Write(bin, binary.LittleEndian, f)
	}
	for _, idx := range []uint16{0, 1, 2} {
		binary.Write(bin, binary.LittleEndian, idx)
	}
	for bin.Len()%4 != 0 {
		bin.WriteByte(0)
	}

	glb := new(bytes.Buffer)
	binary.Write(glb, binary.LittleEndian, uint32(0x46546C67)) // "glTF"
	binary.Write(glb, binary.LittleEndian, uint32(2))
	binary.Write(glb, binary.LittleEndian, uint32(12+8+len(jsonDoc)+8+bin.Len()))
	binary.Write(glb, binary.LittleEndian, uint32(len(jsonDoc)))
	binary.Write(glb, binary.LittleEndian, uint32(0x4E4F534A)) // "JSON"
	glb.WriteString(jsonDoc)
	binary.Write(glb, binary.LittleEndian, uint32(bin.Len()))
	binary.Write(glb, binary.LittleEndian, uint32(0x004E4942)) // "BIN"
	glb.Write(bin.Bytes())

	path := filepath.Join(t.TempDir(), "triangle.glb")
	if err := os.WriteFile(path, glb.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadGLBTriangle(t *testing.T) {
	path := writeTriangleGLB(t)

	mesh, err := LoadGLB(path)
	if err != nil {
		t.Fatal(err)
	}

	if mesh.Name != "triangle.glb" {
		t.Errorf("name = %q", mesh.Name)
	}
	wantPos := []math3d.Vec3{
		math3d.V3(0, 0, 0),
		math3d.V3(1, 0, 0),
		math3d.V3(0, 1, 0),
	}
	if len(mesh.Positions) != len(wantPos) {
		t.Fatalf("got %d positions, want %d", len(mesh.Positions), len(wantPos))
	}
	for i, want := range wantPos {
		if mesh.Positions[i] != want {
			t.Errorf("positions[%d] = %+v, want %+v", i, mesh.Positions[i], want)
		}
	}

	// Index order must survive untouched.
	if len(mesh.Faces) != 1 || mesh.Faces[0] != [3]int{0, 1, 2} {
		t.Fatalf("faces = %+v", mesh.Faces)
	}

	// The file has no normals, so the loader derives them.
	if len(mesh.Normals) != 3 {
		t.Fatalf("got %d normals", len(mesh.Normals))
	}
	for i, n := range mesh.Normals {
		if !near3(n.Vec3(), math3d.V3(0, 0, 1), 1e-12) {
			t.Errorf("normals[%d] = %+v", i, n)
		}
	}
}

func TestLoadGLBWithoutNormalComputation(t *testing.T) {
	path := writeTriangleGLB(t)

	l := &GLTFLoader{ComputeNormals: false}
	mesh, err := l.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if mesh.Normals != nil {
		t.Errorf("normals = %+v, want none", mesh.Normals)
	}
	if mesh.TriangleCount() != 1 {
		t.Errorf("got %d faces", mesh.TriangleCount())
	}
}
