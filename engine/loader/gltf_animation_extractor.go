package loader

import (
	"fmt"
	"math"
	"sort"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// gltfAnimationExtractorImpl is the implementation of the gltfAnimationExtractor interface.
type gltfAnimationExtractorImpl struct {
	parser    gltfParser
	frameRate float32
}

// gltfAnimationExtractor defines the interface for extracting animation data from a parsed glTF document.
// glTF channels carry their own timestamps; clips are resampled to a fixed frame rate so every track
// holds one key per frame.
//
// The nodeToBone parameter maps glTF node indices to bone indices in the sorted skeleton. It is
// produced by the skeleton extractor.
type gltfAnimationExtractor interface {
	// ExtractAnimation extracts a single animation by index.
	//
	// Parameters:
	//   - animIndex: the index of the animation in the document
	//   - skel: the skeleton whose bind pose fills channels the animation does not key
	//   - nodeToBone: maps glTF node index to skeleton bone index
	//
	// Returns:
	//   - *model.AnimationClip: the extracted animation clip
	//   - error: error if extraction fails
	ExtractAnimation(animIndex int, skel *model.Skeleton, nodeToBone map[int]int) (*model.AnimationClip, error)

	// ExtractAnimationsForSkeleton extracts all animations that target at least one bone of skel.
	//
	// Parameters:
	//   - skel: the target skeleton
	//   - nodeToBone: maps glTF node index to skeleton bone index
	//
	// Returns:
	//   - []*model.AnimationClip: animations that animate at least one bone
	//   - error: error if extraction fails
	ExtractAnimationsForSkeleton(skel *model.Skeleton, nodeToBone map[int]int) ([]*model.AnimationClip, error)
}

var _ gltfAnimationExtractor = &gltfAnimationExtractorImpl{}

// newGLTFAnimationExtractor creates a new animation extractor for a parsed document.
//
// Parameters:
//   - parser: the parser containing a loaded document
//   - frameRate: the resampling rate in keys per second
//
// Returns:
//   - gltfAnimationExtractor: the animation extractor
func newGLTFAnimationExtractor(parser gltfParser, frameRate float32) gltfAnimationExtractor {
	return &gltfAnimationExtractorImpl{parser: parser, frameRate: frameRate}
}

// gltfBoneCurves groups the sampled curves of one bone.
type gltfBoneCurves struct {
	translation, rotation, scale *gltfCurve
}

func (e *gltfAnimationExtractorImpl) ExtractAnimation(animIndex int, skel *model.Skeleton, nodeToBone map[int]int) (*model.AnimationClip, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}
	if animIndex < 0 || animIndex >= len(doc.Animations) {
		return nil, fmt.Errorf("animation index %d out of range", animIndex)
	}

	anim := &doc.Animations[animIndex]
	name := common.Coalesce(anim.Name, fmt.Sprintf("animation_%d", animIndex))

	curves := make(map[int]*gltfBoneCurves)
	var length float32

	for i := range anim.Channels {
		ch := &anim.Channels[i]

		// Channels without a target node drive morph targets or extensions.
		if ch.Node == nil {
			continue
		}
		boneIndex, ok := nodeToBone[*ch.Node]
		if !ok {
			continue
		}

		var accessorType string
		switch ch.Path {
		case gltfAnimPathTranslation, gltfAnimPathScale:
			accessorType = gltfAccessorTypeVec3
		case gltfAnimPathRotation:
			accessorType = gltfAccessorTypeVec4
		default:
			continue
		}

		if ch.Sampler < 0 || ch.Sampler >= len(anim.Samplers) {
			return nil, fmt.Errorf("animation %q channel %d: invalid sampler index %d", name, i, ch.Sampler)
		}
		sampler := &anim.Samplers[ch.Sampler]

		times, err := e.parser.ReadFloatAccessor(sampler.Input, gltfAccessorTypeScalar)
		if err != nil {
			return nil, fmt.Errorf("animation %q channel %d: failed to read timestamps: %w", name, i, err)
		}
		values, err := e.parser.ReadFloatAccessor(sampler.Output, accessorType)
		if err != nil {
			return nil, fmt.Errorf("animation %q channel %d: failed to read %s values: %w", name, i, ch.Path, err)
		}

		curve, err := newGLTFCurve(times, values, gltfAccessorTypeComponentCount(accessorType), sampler.Interpolation)
		if err != nil {
			return nil, fmt.Errorf("animation %q channel %d: %w", name, i, err)
		}
		if curve == nil {
			continue
		}
		length = max(length, times[len(times)-1])

		bc, exists := curves[boneIndex]
		if !exists {
			bc = &gltfBoneCurves{}
			curves[boneIndex] = bc
		}
		switch ch.Path {
		case gltfAnimPathTranslation:
			bc.translation = curve
		case gltfAnimPathRotation:
			bc.rotation = curve
		case gltfAnimPathScale:
			bc.scale = curve
		}
	}

	clip := &model.AnimationClip{
		Name:      name,
		Length:    length,
		FrameRate: e.frameRate,
		Notifies:  append([]model.Notify(nil), anim.Notifies...),
	}

	frames := int(math.Ceil(float64(length*e.frameRate)-1e-4)) + 1
	for boneIndex, bc := range curves {
		rest := skel.Bone(boneIndex).LocalBindTransform
		track := model.AnimationTrack{BoneIndex: boneIndex}

		if bc.translation != nil {
			track.PositionKeys = e.resampleVec3(bc.translation, frames, length)
		} else {
			track.PositionKeys = []mgl32.Vec3{rest.Translation}
		}
		if bc.rotation != nil {
			track.RotationKeys = e.resampleQuat(bc.rotation, frames, length)
		} else {
			track.RotationKeys = []mgl32.Quat{rest.Rotation}
		}
		if bc.scale != nil {
			track.ScaleKeys = e.resampleVec3(bc.scale, frames, length)
		} else {
			track.ScaleKeys = []mgl32.Vec3{rest.Scale}
		}

		clip.Tracks = append(clip.Tracks, track)
	}
	sort.Slice(clip.Tracks, func(i, j int) bool {
		return clip.Tracks[i].BoneIndex < clip.Tracks[j].BoneIndex
	})
	clip.SortNotifies()

	if err := clip.Validate(); err != nil {
		return nil, err
	}
	return clip, nil
}

func (e *gltfAnimationExtractorImpl) ExtractAnimationsForSkeleton(skel *model.Skeleton, nodeToBone map[int]int) ([]*model.AnimationClip, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}

	var clips []*model.AnimationClip

	for animIdx := range doc.Animations {
		anim := &doc.Animations[animIdx]

		relevant := false
		for _, ch := range anim.Channels {
			if ch.Node != nil {
				if _, ok := nodeToBone[*ch.Node]; ok {
					relevant = true
					break
				}
			}
		}
		if !relevant {
			continue
		}

		clip, err := e.ExtractAnimation(animIdx, skel, nodeToBone)
		if err != nil {
			return nil, fmt.Errorf("animation %d: %w", animIdx, err)
		}
		clips = append(clips, clip)
	}

	return clips, nil
}

func (e *gltfAnimationExtractorImpl) frameTime(i int, length float32) float32 {
	return min(float32(i)/e.frameRate, length)
}

func (e *gltfAnimationExtractorImpl) resampleVec3(c *gltfCurve, frames int, length float32) []mgl32.Vec3 {
	keys := make([]mgl32.Vec3, frames)
	for i := range keys {
		c.sample(e.frameTime(i, length), keys[i][:])
	}
	return keys
}

func (e *gltfAnimationExtractorImpl) resampleQuat(c *gltfCurve, frames int, length float32) []mgl32.Quat {
	keys := make([]mgl32.Quat, frames)
	var v [4]float32
	for i := range keys {
		c.sample(e.frameTime(i, length), v[:])
		keys[i] = gltfQuat(v[:]).Normalize()
	}
	return keys
}

// --- Curves ---

// gltfCurve is one sampler's keyframes with width floats per value.
// CUBICSPLINE outputs store [in-tangent, value, out-tangent] per key.
type gltfCurve struct {
	times         []float32
	values        []float32
	width         int
	interpolation string
}

// newGLTFCurve validates sampler data. An empty input yields a nil curve.
func newGLTFCurve(times, values []float32, width int, interpolation string) (*gltfCurve, error) {
	if len(times) == 0 {
		return nil, nil
	}
	perKey := width
	if interpolation == gltfInterpolationCubicSpline {
		perKey = 3 * width
	}
	if len(values) < len(times)*perKey {
		return nil, fmt.Errorf("%d keys need %d output values, got %d", len(times), len(times)*perKey, len(values))
	}
	for i := 1; i < len(times); i++ {
		if times[i] < times[i-1] {
			return nil, fmt.Errorf("input times decrease at key %d", i)
		}
	}
	return &gltfCurve{times: times, values: values, width: width, interpolation: interpolation}, nil
}

// valueAt returns the offset of key k's value lane.
func (c *gltfCurve) valueAt(k int) int {
	if c.interpolation == gltfInterpolationCubicSpline {
		return (3*k + 1) * c.width
	}
	return k * c.width
}

// sample evaluates the curve at t into dst, holding the first and last keys outside the keyed range.
// LINEAR rotations (width 4) are slerped along the shortest arc.
func (c *gltfCurve) sample(t float32, dst []float32) {
	n := len(c.times)
	w := c.width
	switch {
	case t <= c.times[0]:
		copy(dst, c.values[c.valueAt(0):c.valueAt(0)+w])
		return
	case t >= c.times[n-1]:
		copy(dst, c.values[c.valueAt(n-1):c.valueAt(n-1)+w])
		return
	}

	k := sort.Search(n, func(i int) bool { return c.times[i] > t }) - 1
	t0, t1 := c.times[k], c.times[k+1]
	dt := t1 - t0
	var u float32
	if dt > 0 {
		u = (t - t0) / dt
	}
	v0, v1 := c.valueAt(k), c.valueAt(k+1)

	switch c.interpolation {
	case gltfInterpolationStep:
		copy(dst, c.values[v0:v0+w])
	case gltfInterpolationCubicSpline:
		u2 := u * u
		u3 := u2 * u
		h00 := 2*u3 - 3*u2 + 1
		h10 := u3 - 2*u2 + u
		h01 := -2*u3 + 3*u2
		h11 := u3 - u2
		outTangent := v0 + w
		inTangent := v1 - w
		for j := 0; j < w; j++ {
			dst[j] = h00*c.values[v0+j] + h10*dt*c.values[outTangent+j] + h01*c.values[v1+j] + h11*dt*c.values[inTangent+j]
		}
	default:
		if w == 4 {
			q := common.Slerp(gltfQuat(c.values[v0:v0+4]), gltfQuat(c.values[v1:v1+4]), u)
			dst[0], dst[1], dst[2], dst[3] = q.V[0], q.V[1], q.V[2], q.W
			return
		}
		for j := 0; j < w; j++ {
			dst[j] = common.Lerp(c.values[v0+j], c.values[v1+j], u)
		}
	}
}
