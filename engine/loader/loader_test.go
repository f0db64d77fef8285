package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

const testEpsilon = 1e-4

// testBuffer holds key times, root translations, child rotations and two inverse bind matrices.
func testBuffer() []byte {
	s := float32(math.Sqrt2 / 2)
	childIBM := mgl32.Translate3D(0, -1, 0)
	rootIBM := mgl32.Ident4()

	floats := []float32{0, 1}
	floats = append(floats, 0, 0, 0, 2, 0, 0)
	floats = append(floats, 0, 0, 0, 1, 0, 0, s, s)
	floats = append(floats, childIBM[:]...)
	floats = append(floats, rootIBM[:]...)

	var b bytes.Buffer
	for _, f := range floats {
		_ = binary.Write(&b, binary.LittleEndian, math.Float32bits(f))
	}
	return b.Bytes()
}

// testDocument describes root -> child under a non-joint armature node. Joints are listed
// child-first so the skeleton has to be re-ordered.
func testDocument(buffer string) string {
	return fmt.Sprintf(`{
  "asset": {"version": "2.0", "generator": "loader_test"},
  "nodes": [
    {"name": "root", "children": [1]},
    {"name": "child", "translation": [0, 1, 0]},
    {"name": "armature", "children": [0]},
    {"name": "prop", "translation": [5, 0, 0]}
  ],
  "skins": [{"joints": [1, 0], "inverseBindMatrices": 3}],
  "accessors": [
    {"bufferView": 0, "componentType": 5126, "count": 2, "type": "SCALAR"},
    {"bufferView": 1, "componentType": 5126, "count": 2, "type": "VEC3"},
    {"bufferView": 2, "componentType": 5126, "count": 2, "type": "VEC4"},
    {"bufferView": 3, "componentType": 5126, "count": 2, "type": "MAT4"}
  ],
  "bufferViews": [
    {"buffer": 0, "byteOffset": 0, "byteLength": 8},
    {"buffer": 0, "byteOffset": 8, "byteLength": 24},
    {"buffer": 0, "byteOffset": 32, "byteLength": 32},
    {"buffer": 0, "byteOffset": 64, "byteLength": 128}
  ],
  "buffers": [%s],
  "animations": [
    {
      "name": "walk",
      "samplers": [{"input": 0, "output": 1}, {"input": 0, "output": 2, "interpolation": "STEP"}],
      "channels": [
        {"sampler": 0, "target": {"node": 0, "path": "translation"}},
        {"sampler": 1, "target": {"node": 1, "path": "rotation"}}
      ],
      "extras": {"notifies": [{"name": "step", "time": 0.5}, {"time": 0.2}]}
    },
    {
      "name": "prop_spin",
      "samplers": [{"input": 0, "output": 2}],
      "channels": [{"sampler": 0, "target": {"node": 3, "path": "rotation"}}]
    }
  ]
}`, buffer)
}

func dataURIBuffer() string {
	return fmt.Sprintf(`{"byteLength": 192, "uri": "data:application/octet-stream;base64,%s"}`,
		base64.StdEncoding.EncodeToString(testBuffer()))
}

func buildGLB(doc string, bin []byte) []byte {
	js := []byte(doc)
	for len(js)%4 != 0 {
		js = append(js, ' ')
	}
	for len(bin)%4 != 0 {
		bin = append(bin, 0)
	}
	var b bytes.Buffer
	total := 12 + 8 + len(js) + 8 + len(bin)
	_ = binary.Write(&b, binary.LittleEndian, []uint32{gltfGLBMagic, gltfGLBVersion, uint32(total)})
	_ = binary.Write(&b, binary.LittleEndian, []uint32{uint32(len(js)), gltfGLBChunkJSON})
	b.Write(js)
	_ = binary.Write(&b, binary.LittleEndian, []uint32{uint32(len(bin)), gltfGLBChunkBIN})
	b.Write(bin)
	return b.Bytes()
}

func checkTestAsset(t *testing.T, a model.Asset) {
	t.Helper()
	skel := a.Skeleton()
	if skel.BoneCount() != 2 {
		t.Fatalf("BoneCount() = %d, want 2", skel.BoneCount())
	}
	root, child := skel.IndexOf("root"), skel.IndexOf("child")
	if root != 0 || child != 1 || skel.ParentIndex(child) != root || skel.ParentIndex(root) != -1 {
		t.Fatalf("hierarchy root=%d child=%d parent(child)=%d", root, child, skel.ParentIndex(child))
	}
	if ibm := skel.Bone(child).InverseBindMatrix; !ibm.ApproxEqualThreshold(mgl32.Translate3D(0, -1, 0), testEpsilon) {
		t.Errorf("child InverseBindMatrix = %v", ibm)
	}

	if a.AnimationCount() != 1 {
		t.Fatalf("AnimationNames() = %v, want [walk]", a.AnimationNames())
	}
	clip := a.Animation("walk")
	if clip == nil {
		t.Fatalf("Animation(walk) = nil")
	}
	if clip.Length != 1 || clip.FrameRate != 4 || clip.NumFrames() != 5 {
		t.Errorf("clip length=%f fps=%f frames=%d, want 1, 4, 5", clip.Length, clip.FrameRate, clip.NumFrames())
	}
	if len(clip.Notifies) != 1 || clip.Notifies[0].Name != "step" || clip.Notifies[0].Time != 0.5 {
		t.Errorf("Notifies = %+v, want one step at 0.5", clip.Notifies)
	}

	rootTrack := clip.TrackForBone(root)
	if rootTrack == nil || !rootTrack.PositionKeys[2].ApproxEqualThreshold(mgl32.Vec3{1, 0, 0}, testEpsilon) {
		t.Fatalf("root track = %+v, want x=1 at frame 2", rootTrack)
	}

	childTrack := clip.TrackForBone(child)
	if childTrack == nil {
		t.Fatalf("child track missing")
	}
	if !childTrack.RotationKeys[3].ApproxEqualThreshold(mgl32.QuatIdent(), testEpsilon) {
		t.Errorf("stepped rotation at frame 3 = %v, want identity", childTrack.RotationKeys[3])
	}
	want := mgl32.QuatRotate(math.Pi/2, mgl32.Vec3{0, 0, 1})
	if !childTrack.RotationKeys[4].ApproxEqualThreshold(want, testEpsilon) {
		t.Errorf("stepped rotation at frame 4 = %v, want %v", childTrack.RotationKeys[4], want)
	}

	pose := skel.BindPose()
	clip.ExtractPose(skel, 0.5, true, pose)
	if !pose[root].Translation.ApproxEqualThreshold(mgl32.Vec3{1, 0, 0}, testEpsilon) {
		t.Errorf("root translation at 0.5 = %v, want (1, 0, 0)", pose[root].Translation)
	}
	if !pose[child].Translation.ApproxEqualThreshold(mgl32.Vec3{0, 1, 0}, testEpsilon) {
		t.Errorf("unkeyed child translation = %v, want rest (0, 1, 0)", pose[child].Translation)
	}
}

func TestLoadReaderDataURI(t *testing.T) {
	l := NewLoader(BackendTypeGLTF, WithFrameRate(4))
	a, err := l.LoadReader("walk", strings.NewReader(testDocument(dataURIBuffer())), false)
	if err != nil {
		t.Fatalf("LoadReader() error = %v", err)
	}
	checkTestAsset(t, a)

	if l.Get("walk") != a {
		t.Errorf("Get(walk) did not return the cached asset")
	}
	again, _ := l.LoadReader("walk", strings.NewReader("not read"), false)
	if again != a {
		t.Errorf("second LoadReader() bypassed the cache")
	}
	if len(l.Assets()) != 1 {
		t.Errorf("Assets() = %d entries, want 1", len(l.Assets()))
	}
}

func TestLoadReaderGLB(t *testing.T) {
	l := NewLoader(BackendTypeGLTF, WithFrameRate(4))
	glb := buildGLB(testDocument(`{"byteLength": 192}`), testBuffer())
	a, err := l.LoadReader("walk.glb", bytes.NewReader(glb), true)
	if err != nil {
		t.Fatalf("LoadReader() error = %v", err)
	}
	checkTestAsset(t, a)
}

func TestLoadFileWithExternalBuffer(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "walk.gltf")
	if err := os.WriteFile(filepath.Join(dir, "walk.bin"), testBuffer(), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(testDocument(`{"byteLength": 192, "uri": "walk.bin"}`)), 0o644); err != nil {
		t.Fatal(err)
	}

	l := NewLoader(BackendTypeGLTF, WithFrameRate(4))
	a, err := l.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	checkTestAsset(t, a)
	if a.Name() != "walk" || a.Source() != path {
		t.Errorf("Name()=%q Source()=%q", a.Name(), a.Source())
	}

	cached, _ := l.Load(path)
	if cached != a {
		t.Errorf("second Load() bypassed the cache")
	}
	reloaded, err := l.Reload(path)
	if err != nil || reloaded == a || l.Get(path) != reloaded {
		t.Errorf("Reload() did not replace the cached asset (err=%v)", err)
	}

	if _, err := l.Load(filepath.Join(dir, "walk.fbx")); err == nil {
		t.Errorf("Load(.fbx) error = nil")
	}
}

func TestLoadReaderErrors(t *testing.T) {
	tests := []struct {
		name  string
		data  []byte
		isGLB bool
		want  error
	}{
		{"invalid json", []byte(`{"asset": `), false, errInvalidJSON},
		{"old version", []byte(`{"asset": {"version": "1.0"}}`), false, errInvalidGLTFVersion},
		{"bad magic", append([]byte("nope"), make([]byte, 16)...), true, errInvalidGLBMagic},
		{"missing json chunk", buildGLB("", nil)[:12], true, errMissingJSONChunk},
		{"short buffer", []byte(testDocument(`{"byteLength": 400, "uri": "data:application/octet-stream;base64,AAAA"}`)), false, errBufferSizeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLoader(BackendTypeGLTF)
			_, err := l.LoadReader(tt.name, bytes.NewReader(tt.data), tt.isGLB)
			if !errors.Is(err, tt.want) {
				t.Errorf("LoadReader() error = %v, want %v", err, tt.want)
			}
			if l.Get(tt.name) != nil {
				t.Errorf("failed load was cached")
			}
		})
	}
}

func TestLoadWithoutSkinUsesNodes(t *testing.T) {
	doc := `{
  "asset": {"version": "2.0"},
  "nodes": [{"name": "a", "children": [1]}, {"name": "b", "translation": [1, 2, 3]}]
}`
	a, err := NewLoader(BackendTypeGLTF).LoadReader("nodes", strings.NewReader(doc), false)
	if err != nil {
		t.Fatalf("LoadReader() error = %v", err)
	}
	skel := a.Skeleton()
	if skel.BoneCount() != 2 || skel.ParentIndex(skel.IndexOf("b")) != skel.IndexOf("a") {
		t.Fatalf("skeleton from nodes has wrong hierarchy")
	}
	if got := skel.Bone(skel.IndexOf("b")).LocalBindTransform.Translation; got != (mgl32.Vec3{1, 2, 3}) {
		t.Errorf("b translation = %v, want (1, 2, 3)", got)
	}
	if a.AnimationCount() != 0 {
		t.Errorf("AnimationCount() = %d, want 0", a.AnimationCount())
	}
}

func TestGLTFCurveSample(t *testing.T) {
	times := []float32{0, 1}
	tests := []struct {
		name   string
		values []float32
		interp string
		t      float32
		want   float32
	}{
		{"linear midpoint", []float32{0, 2}, gltfInterpolationLinear, 0.5, 1},
		{"step holds", []float32{0, 2}, gltfInterpolationStep, 0.99, 0},
		{"before first key", []float32{3, 5}, gltfInterpolationLinear, -1, 3},
		{"after last key", []float32{3, 5}, gltfInterpolationLinear, 4, 5},
		{"cubic flat tangents", []float32{0, 0, 0, 0, 1, 0}, gltfInterpolationCubicSpline, 0.5, 0.5},
		{"cubic uses tangents", []float32{0, 0, 1, 0, 0, 0}, gltfInterpolationCubicSpline, 0.5, 0.125},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := newGLTFCurve(times, tt.values, 1, tt.interp)
			if err != nil {
				t.Fatalf("newGLTFCurve() error = %v", err)
			}
			var got [1]float32
			c.sample(tt.t, got[:])
			if math.Abs(float64(got[0]-tt.want)) > testEpsilon {
				t.Errorf("sample(%f) = %f, want %f", tt.t, got[0], tt.want)
			}
		})
	}

	if _, err := newGLTFCurve(times, []float32{1}, 1, gltfInterpolationLinear); err == nil {
		t.Errorf("newGLTFCurve() with too few outputs error = nil")
	}
	if _, err := newGLTFCurve([]float32{1, 0}, []float32{1, 2}, 1, gltfInterpolationLinear); err == nil {
		t.Errorf("newGLTFCurve() with decreasing times error = nil")
	}
}
