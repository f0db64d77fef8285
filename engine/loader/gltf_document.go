package loader

import (
	"errors"
	"strings"

	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/tidwall/gjson"
)

var errInvalidJSON = errors.New("invalid glTF JSON")

// decodeGLTFDocument walks the JSON chunk of a glTF asset and fills the typed document.
// Unknown properties are ignored; missing optional properties keep their zero value.
func decodeGLTFDocument(data []byte) (*gltfDocument, error) {
	if !gjson.ValidBytes(data) {
		return nil, errInvalidJSON
	}
	root := gjson.ParseBytes(data)

	doc := &gltfDocument{
		Asset: gltfAsset{
			Version:   root.Get("asset.version").String(),
			Generator: root.Get("asset.generator").String(),
		},
	}
	if !strings.HasPrefix(doc.Asset.Version, "2.") {
		return nil, errInvalidGLTFVersion
	}

	root.Get("nodes").ForEach(func(_, v gjson.Result) bool {
		doc.Nodes = append(doc.Nodes, decodeNode(v))
		return true
	})

	root.Get("accessors").ForEach(func(_, v gjson.Result) bool {
		doc.Accessors = append(doc.Accessors, gltfAccessor{
			BufferView:    optionalInt(v.Get("bufferView")),
			ByteOffset:    int(v.Get("byteOffset").Int()),
			ComponentType: int(v.Get("componentType").Int()),
			Normalized:    v.Get("normalized").Bool(),
			Count:         int(v.Get("count").Int()),
			Type:          v.Get("type").String(),
			Sparse:        v.Get("sparse").Exists(),
		})
		return true
	})

	root.Get("bufferViews").ForEach(func(_, v gjson.Result) bool {
		doc.BufferViews = append(doc.BufferViews, gltfBufferView{
			Buffer:     int(v.Get("buffer").Int()),
			ByteOffset: int(v.Get("byteOffset").Int()),
			ByteLength: int(v.Get("byteLength").Int()),
			ByteStride: int(v.Get("byteStride").Int()),
		})
		return true
	})

	root.Get("buffers").ForEach(func(_, v gjson.Result) bool {
		doc.Buffers = append(doc.Buffers, gltfBuffer{
			URI:        v.Get("uri").String(),
			ByteLength: int(v.Get("byteLength").Int()),
		})
		return true
	})

	root.Get("skins").ForEach(func(_, v gjson.Result) bool {
		doc.Skins = append(doc.Skins, gltfSkin{
			Name:                v.Get("name").String(),
			InverseBindMatrices: optionalInt(v.Get("inverseBindMatrices")),
			Skeleton:            optionalInt(v.Get("skeleton")),
			Joints:              intArray(v.Get("joints")),
		})
		return true
	})

	root.Get("animations").ForEach(func(_, v gjson.Result) bool {
		doc.Animations = append(doc.Animations, decodeAnimation(v))
		return true
	})

	return doc, nil
}

func decodeNode(v gjson.Result) gltfNode {
	n := gltfNode{
		Name:     v.Get("name").String(),
		Children: intArray(v.Get("children")),
	}
	var t, s [3]float32
	var r [4]float32
	var m [16]float32
	if readFloats(v.Get("translation"), t[:]) {
		n.Translation = &t
	}
	if readFloats(v.Get("rotation"), r[:]) {
		n.Rotation = &r
	}
	if readFloats(v.Get("scale"), s[:]) {
		n.Scale = &s
	}
	if readFloats(v.Get("matrix"), m[:]) {
		n.Matrix = &m
	}
	return n
}

func decodeAnimation(v gjson.Result) gltfAnimation {
	a := gltfAnimation{Name: v.Get("name").String()}

	v.Get("samplers").ForEach(func(_, s gjson.Result) bool {
		interp := s.Get("interpolation").String()
		if interp == "" {
			interp = gltfInterpolationLinear
		}
		a.Samplers = append(a.Samplers, gltfAnimationSampler{
			Input:         int(s.Get("input").Int()),
			Output:        int(s.Get("output").Int()),
			Interpolation: interp,
		})
		return true
	})

	v.Get("channels").ForEach(func(_, c gjson.Result) bool {
		a.Channels = append(a.Channels, gltfAnimationChannel{
			Sampler: int(c.Get("sampler").Int()),
			Node:    optionalInt(c.Get("target.node")),
			Path:    c.Get("target.path").String(),
		})
		return true
	})

	v.Get("extras.notifies").ForEach(func(_, n gjson.Result) bool {
		name := n.Get("name").String()
		if name == "" {
			return true
		}
		a.Notifies = append(a.Notifies, model.Notify{Name: name, Time: float32(n.Get("time").Float())})
		return true
	})

	return a
}

func optionalInt(r gjson.Result) *int {
	if !r.Exists() {
		return nil
	}
	v := int(r.Int())
	return &v
}

func intArray(r gjson.Result) []int {
	if !r.IsArray() {
		return nil
	}
	arr := r.Array()
	out := make([]int, len(arr))
	for i, v := range arr {
		out[i] = int(v.Int())
	}
	return out
}

// readFloats fills dst from a JSON number array of exactly len(dst) elements.
func readFloats(r gjson.Result, dst []float32) bool {
	if !r.IsArray() {
		return false
	}
	arr := r.Array()
	if len(arr) != len(dst) {
		return false
	}
	for i, v := range arr {
		dst[i] = float32(v.Float())
	}
	return true
}
