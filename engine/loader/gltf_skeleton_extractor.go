package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// gltfSkeletonExtractorImpl is the implementation of the gltfSkeletonExtractor interface.
type gltfSkeletonExtractorImpl struct {
	parser gltfParser
}

// gltfSkeletonExtractor defines the interface for extracting skeleton/bone data from a parsed glTF document.
// It converts a glTF skin into a model.Skeleton; NewSkeleton takes care of topological ordering.
type gltfSkeletonExtractor interface {
	// ExtractSkeleton extracts a skeleton from a skin by index together with the mapping from
	// glTF node index to sorted bone index. A document without skins yields a skeleton made of
	// every node, so node-animated assets can still be played.
	//
	// Parameters:
	//   - skinIndex: the index of the skin to extract
	//
	// Returns:
	//   - *model.Skeleton: the extracted skeleton with topologically sorted bones
	//   - map[int]int: mapping from glTF node index to skeleton bone index
	//   - error: error if extraction fails
	ExtractSkeleton(skinIndex int) (*model.Skeleton, map[int]int, error)
}

var _ gltfSkeletonExtractor = &gltfSkeletonExtractorImpl{}

// newGLTFSkeletonExtractor creates a new skeleton extractor for a parsed document.
//
// Parameters:
//   - parser: the parser containing a loaded document
//
// Returns:
//   - gltfSkeletonExtractor: the skeleton extractor
func newGLTFSkeletonExtractor(parser gltfParser) gltfSkeletonExtractor {
	return &gltfSkeletonExtractorImpl{parser: parser}
}

func (e *gltfSkeletonExtractorImpl) ExtractSkeleton(skinIndex int) (*model.Skeleton, map[int]int, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, nil, fmt.Errorf("no document loaded")
	}

	var joints []int
	var inverseBindMatrices []mgl32.Mat4
	switch {
	case len(doc.Skins) == 0:
		joints = make([]int, len(doc.Nodes))
		for i := range joints {
			joints[i] = i
		}
	case skinIndex < 0 || skinIndex >= len(doc.Skins):
		return nil, nil, fmt.Errorf("skin index %d out of range", skinIndex)
	default:
		skin := &doc.Skins[skinIndex]
		joints = skin.Joints
		if skin.InverseBindMatrices != nil {
			var err error
			inverseBindMatrices, err = e.parser.ReadMat4Accessor(*skin.InverseBindMatrices)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to read inverse bind matrices: %w", err)
			}
		}
	}

	// parentOf maps a node to the node listing it as a child.
	parentOf := make(map[int]int, len(doc.Nodes))
	for nodeIdx, node := range doc.Nodes {
		for _, childIdx := range node.Children {
			parentOf[childIdx] = nodeIdx
		}
	}

	nodeIndexToBoneIndex := make(map[int]int, len(joints))
	for boneIdx, jointNodeIdx := range joints {
		if jointNodeIdx < 0 || jointNodeIdx >= len(doc.Nodes) {
			return nil, nil, fmt.Errorf("joint %d: invalid node index %d", boneIdx, jointNodeIdx)
		}
		nodeIndexToBoneIndex[jointNodeIdx] = boneIdx
	}

	bones := make([]model.Bone, len(joints))
	for i, jointIndex := range joints {
		node := &doc.Nodes[jointIndex]
		bone := &bones[i]

		bone.Name = node.Name
		bone.ParentIndex = -1
		bone.LocalBindTransform = gltfNodeTransform(node)
		if i < len(inverseBindMatrices) {
			bone.InverseBindMatrix = inverseBindMatrices[i]
		}

		// The nearest ancestor that is itself a joint becomes the parent.
		n := jointIndex
		for steps := 0; steps < len(doc.Nodes); steps++ {
			p, ok := parentOf[n]
			if !ok {
				break
			}
			if parentBone, isJoint := nodeIndexToBoneIndex[p]; isJoint {
				bone.ParentIndex = parentBone
				break
			}
			n = p
		}
	}

	skeleton, err := model.NewSkeleton(bones)
	if err != nil {
		return nil, nil, err
	}

	nodeToSorted := make(map[int]int, len(joints))
	for nodeIdx, boneIdx := range nodeIndexToBoneIndex {
		nodeToSorted[nodeIdx] = skeleton.SortedIndex(boneIdx)
	}

	return skeleton, nodeToSorted, nil
}

// --- Helper Functions ---

// gltfNodeTransform extracts the local TRS transform of a glTF node.
// A matrix takes precedence and is decomposed assuming no shear.
func gltfNodeTransform(node *gltfNode) model.Transform {
	if node.Matrix != nil {
		return model.TransformFromMat4(mgl32.Mat4(*node.Matrix))
	}

	transform := model.IdentityTransform()
	if node.Translation != nil {
		transform.Translation = mgl32.Vec3(*node.Translation)
	}
	if node.Rotation != nil {
		transform.Rotation = gltfQuat(node.Rotation[:]).Normalize()
	}
	if node.Scale != nil {
		transform.Scale = mgl32.Vec3(*node.Scale)
	}

	return transform
}

// gltfQuat converts a glTF [x, y, z, w] rotation into a quaternion.
func gltfQuat(v []float32) mgl32.Quat {
	return mgl32.Quat{W: v[3], V: mgl32.Vec3{v[0], v[1], v[2]}}
}
