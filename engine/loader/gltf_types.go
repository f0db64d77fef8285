// gltf_types.go contains the subset of the glTF 2.0 document model needed to rebuild skeletons and
// animation clips. Meshes, materials, textures and cameras are ignored by the decoder.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html
package loader

import (
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
)

// --- glTF Root Structure ---

// gltfDocument represents the root of a glTF JSON document.
type gltfDocument struct {
	// Asset contains metadata about the glTF asset.
	Asset gltfAsset

	// Nodes is an array of nodes (transform hierarchy).
	Nodes []gltfNode

	// Accessors define how to interpret buffer data.
	Accessors []gltfAccessor

	// BufferViews define portions of buffers.
	BufferViews []gltfBufferView

	// Buffers are raw binary data containers.
	Buffers []gltfBuffer

	// Skins is an array of skins (skeletal animation binding).
	Skins []gltfSkin

	// Animations is an array of animations.
	Animations []gltfAnimation
}

// gltfAsset contains metadata about the glTF asset.
type gltfAsset struct {
	// Version is the glTF version (required, must be "2.x").
	Version string

	// Generator is the tool that generated this asset.
	Generator string
}

// --- Scene Graph ---

// gltfNode is a node in the glTF scene hierarchy.
// A node carries either a matrix or any combination of translation, rotation and scale.
type gltfNode struct {
	Name        string
	Children    []int
	Translation *[3]float32
	// Rotation is stored as [x, y, z, w].
	Rotation *[4]float32
	Scale    *[3]float32
	Matrix   *[16]float32
}

// --- Binary Data ---

// gltfAccessor is a typed view into a bufferView.
type gltfAccessor struct {
	BufferView    *int
	ByteOffset    int
	ComponentType int
	Normalized    bool
	Count         int
	Type          string
	Sparse        bool
}

// gltfBufferView is a view into a buffer, generally representing a subset of it.
type gltfBufferView struct {
	Buffer     int
	ByteOffset int
	ByteLength int
	ByteStride int
}

// gltfBuffer points to binary data. Data is filled by the parser after decoding.
type gltfBuffer struct {
	URI        string
	ByteLength int
	Data       []byte
}

// --- Skinning & Animation ---

// gltfSkin defines joints and inverse bind matrices for skinning.
type gltfSkin struct {
	Name                string
	InverseBindMatrices *int
	Skeleton            *int
	Joints              []int
}

// gltfAnimation is a keyframe animation.
type gltfAnimation struct {
	Name     string
	Channels []gltfAnimationChannel
	Samplers []gltfAnimationSampler

	// Notifies are read from extras.notifies.
	Notifies []model.Notify
}

// gltfAnimationChannel targets a node property with a sampler.
type gltfAnimationChannel struct {
	Sampler int
	Node    *int
	Path    string
}

// gltfAnimationSampler combines timestamps with output values and an interpolation mode.
type gltfAnimationSampler struct {
	Input         int
	Output        int
	Interpolation string
}

// ComponentType constants
const (
	gltfComponentTypeByte          = 5120
	gltfComponentTypeUnsignedByte  = 5121
	gltfComponentTypeShort         = 5122
	gltfComponentTypeUnsignedShort = 5123
	gltfComponentTypeUnsignedInt   = 5125
	gltfComponentTypeFloat         = 5126
)

// AccessorType constants
const (
	gltfAccessorTypeScalar = "SCALAR"
	gltfAccessorTypeVec2   = "VEC2"
	gltfAccessorTypeVec3   = "VEC3"
	gltfAccessorTypeVec4   = "VEC4"
	gltfAccessorTypeMat2   = "MAT2"
	gltfAccessorTypeMat3   = "MAT3"
	gltfAccessorTypeMat4   = "MAT4"
)

// Animation interpolation constants
const (
	gltfInterpolationLinear      = "LINEAR"
	gltfInterpolationStep        = "STEP"
	gltfInterpolationCubicSpline = "CUBICSPLINE"
)

// Animation path constants
const (
	gltfAnimPathTranslation = "translation"
	gltfAnimPathRotation    = "rotation"
	gltfAnimPathScale       = "scale"
	gltfAnimPathWeights     = "weights"
)

// --- GLB Binary Format ---

// gltfGLBHeader is the header of a GLB file (12 bytes).
type gltfGLBHeader struct {
	Magic   uint32
	Version uint32
	Length  uint32
}

// gltfGLBChunkHeader is the header of a GLB chunk (8 bytes).
type gltfGLBChunkHeader struct {
	ChunkLength uint32
	ChunkType   uint32
}

// GLB magic number and chunk type constants
const (
	gltfGLBMagic     = 0x46546C67 // "glTF" in little-endian ASCII
	gltfGLBVersion   = 2
	gltfGLBChunkJSON = 0x4E4F534A // "JSON" in little-endian ASCII
	gltfGLBChunkBIN  = 0x004E4942 // "BIN\0" in little-endian ASCII
)
