package animator

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/blend"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"gonum.org/v1/gonum/spatial/r2"
)

// barycentricEpsilon is the tolerance for treating a barycentric weight as inside the triangle.
const barycentricEpsilon = 1e-5

// BlendSpaceSample is a clip placed at a point of the blend space's parameter plane.
type BlendSpaceSample struct {
	// Position is the sample's location in parameter space.
	Position r2.Vec

	// Clip is the animation played at this sample. nil contributes the bind pose.
	Clip *model.AnimationClip

	// RateScale multiplies the shared clock for this sample. Zero is treated as 1.
	RateScale float32

	// Looping is whether the sample wraps its clip or clamps at the end.
	Looping bool
}

// BlendTriangle is a triangle of three sample indices.
type BlendTriangle struct {
	// Indices are the sample indices of the triangle's corners.
	Indices [3]int
}

// BlendContributors describes the samples and weights used for the current blend position.
type BlendContributors struct {
	// Triangle is the triangle used, or -1 for the nearest-sample fallback.
	Triangle int

	// Samples are the contributing sample indices; only the first Count are valid.
	Samples [3]int

	// Weights are the normalized weights matching Samples.
	Weights [3]float32

	// Count is the number of contributors (0 when the blend space has no samples).
	Count int
}

// blendSpace2D is the implementation of the BlendSpace2D interface.
type blendSpace2D struct {
	skeleton *model.Skeleton

	samples   []BlendSpaceSample
	players   []*sequencePlayer
	triangles []BlendTriangle

	position r2.Vec
	clock    float32
	playRate float32
	looping  bool

	scratch [3]model.Pose

	logger *slog.Logger
}

// BlendSpace2D is a playback node that blends samples placed on a 2D parameter plane.
//
// All samples share a normalized clock in [0, 1) (looping) or [0, 1] that advances by dt * playRate; each sample
// plays at clock * clipLength * rateScale. The blend position picks a triangle of samples and their barycentric
// weights. Outside every triangle the closest triangle is used with clamped weights, and with fewer than three
// samples or no triangles the nearest sample plays alone.
type BlendSpace2D interface {
	PlaybackNode

	// EvaluateComponentSpace writes the blended pose in component space.
	//
	// Parameters:
	//   - out: the destination pose, of length equal to the skeleton bone count
	EvaluateComponentSpace(out model.Pose)

	// AddSample adds a sample and returns its index.
	//
	// Parameters:
	//   - s: the sample to add
	//
	// Returns:
	//   - int: the new sample's index
	AddSample(s BlendSpaceSample) int

	// RemoveSample removes sample i, drops every triangle that uses it and re-indexes the rest.
	//
	// Parameters:
	//   - i: the sample index
	//
	// Returns:
	//   - error: ErrInvalidSampleIndex if i is out of range
	RemoveSample(i int) error

	// AddTriangle adds a triangle over three existing samples and returns its index.
	//
	// Parameters:
	//   - a, b, c: the corner sample indices
	//
	// Returns:
	//   - int: the new triangle's index
	//   - error: ErrInvalidSampleIndex if any corner does not exist
	AddTriangle(a, b, c int) (int, error)

	// RemoveTriangle removes triangle i.
	//
	// Parameters:
	//   - i: the triangle index
	//
	// Returns:
	//   - error: ErrInvalidTriangleIndex if i is out of range
	RemoveTriangle(i int) error

	// Samples returns the authored samples. The slice must not be modified.
	//
	// Returns:
	//   - []BlendSpaceSample: the samples
	Samples() []BlendSpaceSample

	// Triangles returns the authored triangles. The slice must not be modified.
	//
	// Returns:
	//   - []BlendTriangle: the triangles
	Triangles() []BlendTriangle

	// SetBlendPosition sets the query point in parameter space.
	//
	// Parameters:
	//   - p: the blend position
	SetBlendPosition(p r2.Vec)

	// BlendPosition returns the query point in parameter space.
	//
	// Returns:
	//   - r2.Vec: the blend position
	BlendPosition() r2.Vec

	// NormalizedTime returns the shared clock.
	//
	// Returns:
	//   - float32: the clock in [0, 1]
	NormalizedTime() float32

	// SetNormalizedTime moves the shared clock without reporting notifies.
	//
	// Parameters:
	//   - t: the new clock value, wrapped or clamped into range
	SetNormalizedTime(t float32)

	// PlayRate returns the clock's rate in normalized units per second.
	//
	// Returns:
	//   - float32: the play rate
	PlayRate() float32

	// SetPlayRate sets the clock's rate in normalized units per second.
	//
	// Parameters:
	//   - rate: the play rate
	SetPlayRate(rate float32)

	// FindBestTriangle finds the triangle and weights for p.
	// The first triangle containing p wins. Otherwise the triangle with the smallest sum of negative weights is
	// used with its negative weights zeroed and the rest renormalized. Degenerate triangles are never used.
	//
	// Parameters:
	//   - p: the query point
	//
	// Returns:
	//   - int: the triangle index, or -1 if no usable triangle exists
	//   - [3]float32: the weights of the triangle's corners, summing to 1
	FindBestTriangle(p r2.Vec) (int, [3]float32)

	// Contributors returns the samples and weights for the current blend position.
	//
	// Returns:
	//   - BlendContributors: the contributors
	Contributors() BlendContributors
}

var _ BlendSpace2D = &blendSpace2D{}

// NewBlendSpace2D creates an empty BlendSpace2D bound to skel.
// The clock loops at rate 1 unless configured otherwise.
//
// Parameters:
//   - skel: the skeleton samples are evaluated against
//   - options: variadic list of BlendSpaceOption functions to configure the blend space
//
// Returns:
//   - BlendSpace2D: the new blend space
func NewBlendSpace2D(skel *model.Skeleton, options ...BlendSpaceOption) BlendSpace2D {
	bs := &blendSpace2D{
		skeleton: skel,
		playRate: 1,
		looping:  true,
		logger:   slog.Default(),
	}
	for _, opt := range options {
		opt(bs)
	}
	for i := range bs.scratch {
		bs.scratch[i] = make(model.Pose, skel.BoneCount())
	}
	return bs
}

func (bs *blendSpace2D) AddSample(s BlendSpaceSample) int {
	if s.RateScale == 0 {
		s.RateScale = 1
	}
	bs.samples = append(bs.samples, s)
	p := newSequencePlayer(bs.skeleton, s.Clip, WithLooping(s.Looping), WithPlayerLogger(bs.logger))
	p.SetTime(bs.sampleTime(p, s))
	bs.players = append(bs.players, p)
	return len(bs.samples) - 1
}

func (bs *blendSpace2D) RemoveSample(i int) error {
	if i < 0 || i >= len(bs.samples) {
		return fmt.Errorf("remove sample %d of %d: %w", i, len(bs.samples), ErrInvalidSampleIndex)
	}
	bs.samples = append(bs.samples[:i], bs.samples[i+1:]...)
	bs.players = append(bs.players[:i], bs.players[i+1:]...)

	kept := bs.triangles[:0]
	for _, tri := range bs.triangles {
		uses := false
		for k, idx := range tri.Indices {
			if idx == i {
				uses = true
				break
			}
			if idx > i {
				tri.Indices[k] = idx - 1
			}
		}
		if !uses {
			kept = append(kept, tri)
		}
	}
	bs.triangles = kept
	return nil
}

func (bs *blendSpace2D) AddTriangle(a, b, c int) (int, error) {
	for _, idx := range [3]int{a, b, c} {
		if idx < 0 || idx >= len(bs.samples) {
			return -1, fmt.Errorf("triangle corner %d of %d samples: %w", idx, len(bs.samples), ErrInvalidSampleIndex)
		}
	}
	bs.triangles = append(bs.triangles, BlendTriangle{Indices: [3]int{a, b, c}})
	return len(bs.triangles) - 1, nil
}

func (bs *blendSpace2D) RemoveTriangle(i int) error {
	if i < 0 || i >= len(bs.triangles) {
		return fmt.Errorf("remove triangle %d of %d: %w", i, len(bs.triangles), ErrInvalidTriangleIndex)
	}
	bs.triangles = append(bs.triangles[:i], bs.triangles[i+1:]...)
	return nil
}

func (bs *blendSpace2D) Samples() []BlendSpaceSample {
	return bs.samples
}

func (bs *blendSpace2D) Triangles() []BlendTriangle {
	return bs.triangles
}

func (bs *blendSpace2D) SetBlendPosition(p r2.Vec) {
	bs.position = p
}

func (bs *blendSpace2D) BlendPosition() r2.Vec {
	return bs.position
}

func (bs *blendSpace2D) NormalizedTime() float32 {
	return bs.clock
}

func (bs *blendSpace2D) SetNormalizedTime(t float32) {
	bs.clock = bs.wrapClock(t)
	for i, p := range bs.players {
		p.SetTime(bs.sampleTime(p, bs.samples[i]))
	}
}

func (bs *blendSpace2D) PlayRate() float32 {
	return bs.playRate
}

func (bs *blendSpace2D) SetPlayRate(rate float32) {
	bs.playRate = rate
}

func (bs *blendSpace2D) wrapClock(t float32) float32 {
	if bs.looping {
		return common.WrapTime(t, 1)
	}
	return common.Clamp01(t)
}

// sampleTime is the clip time a sample plays at for the current clock.
func (bs *blendSpace2D) sampleTime(p *sequencePlayer, s BlendSpaceSample) float32 {
	return bs.clock * p.Length() * s.RateScale
}

func (bs *blendSpace2D) Update(ctx *UpdateContext) {
	prev := bs.clock
	step := ctx.delta() * bs.playRate
	bs.clock = bs.wrapClock(prev + step)
	if !bs.looping {
		// Clamped clocks only advance as far as they actually moved.
		step = bs.clock - prev
	}

	c := bs.Contributors()
	leader := -1
	if c.Count > 0 {
		best := 0
		for k := 1; k < c.Count; k++ {
			if c.Weights[k] > c.Weights[best] {
				best = k
			}
		}
		leader = c.Samples[best]
	}

	for i, p := range bs.players {
		s := bs.samples[i]
		var sink *UpdateContext
		if i == leader {
			sink = ctx
		}
		p.advance(step*p.Length()*s.RateScale, sink)
		p.SetTime(bs.sampleTime(p, s))
	}
}

func (bs *blendSpace2D) Evaluate(out model.Pose) {
	if !compatible(bs.skeleton, out) {
		return
	}
	c := bs.Contributors()
	switch {
	case c.Count == 0:
		bs.skeleton.FillBindPose(out)
		return
	case c.Triangle < 0:
		// The nearest sample plays alone, exactly as its own player would.
		bs.players[c.Samples[0]].Evaluate(out)
		return
	}
	bs.blendComponentSpace(c, out)
	blend.ToLocalSpace(bs.skeleton, out, out)
}

func (bs *blendSpace2D) EvaluateComponentSpace(out model.Pose) {
	if !compatible(bs.skeleton, out) {
		return
	}
	c := bs.Contributors()
	switch {
	case c.Count == 0:
		bs.skeleton.FillBindPose(out)
		blend.ToComponentSpace(bs.skeleton, out, out)
	case c.Triangle < 0:
		bs.players[c.Samples[0]].EvaluateComponentSpace(out)
	default:
		bs.blendComponentSpace(c, out)
	}
}

// blendComponentSpace evaluates every contributor with non-zero weight and blends them into out.
func (bs *blendSpace2D) blendComponentSpace(c BlendContributors, out model.Pose) {
	var poses [3]model.Pose
	for k := 0; k < c.Count; k++ {
		if c.Weights[k] <= 0 {
			continue
		}
		bs.scratch[k] = model.EnsurePose(bs.scratch[k], bs.skeleton)
		bs.players[c.Samples[k]].EvaluateComponentSpace(bs.scratch[k])
		poses[k] = bs.scratch[k]
	}
	if !blend.BlendThree(poses[0], poses[1], poses[2], c.Weights[0], c.Weights[1], c.Weights[2], out) {
		bs.logger.Warn("degenerate blend weights", "node", "blend_space", "triangle", c.Triangle, "weights", c.Weights)
		bs.players[c.Samples[0]].EvaluateComponentSpace(out)
	}
}

func (bs *blendSpace2D) Contributors() BlendContributors {
	c := BlendContributors{Triangle: -1}
	if len(bs.samples) == 0 {
		return c
	}
	if len(bs.samples) >= 3 && len(bs.triangles) > 0 {
		if tri, w := bs.FindBestTriangle(bs.position); tri >= 0 {
			c.Triangle = tri
			c.Samples = bs.triangles[tri].Indices
			c.Weights = w
			c.Count = 3
			return c
		}
	}
	c.Samples[0] = bs.nearestSample(bs.position)
	c.Weights[0] = 1
	c.Count = 1
	return c
}

// nearestSample returns the sample closest to p by squared distance. Ties keep the earlier sample.
func (bs *blendSpace2D) nearestSample(p r2.Vec) int {
	best := 0
	bestDist := math.Inf(1)
	for i, s := range bs.samples {
		d := r2.Norm2(r2.Sub(p, s.Position))
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func (bs *blendSpace2D) FindBestTriangle(p r2.Vec) (int, [3]float32) {
	bestTri := -1
	bestPenalty := math.Inf(1)
	var bestRaw [3]float64

	for ti, tri := range bs.triangles {
		a := bs.samples[tri.Indices[0]].Position
		b := bs.samples[tri.Indices[1]].Position
		c := bs.samples[tri.Indices[2]].Position
		w, ok := barycentric(p, a, b, c)
		if !ok {
			continue
		}
		if w[0] >= -barycentricEpsilon && w[1] >= -barycentricEpsilon && w[2] >= -barycentricEpsilon &&
			math.Abs(w[0]+w[1]+w[2]-1) <= barycentricEpsilon {
			return ti, [3]float32{float32(w[0]), float32(w[1]), float32(w[2])}
		}
		var penalty float64
		for _, x := range w {
			if x < 0 {
				penalty -= x
			}
		}
		if penalty < bestPenalty {
			bestTri, bestPenalty, bestRaw = ti, penalty, w
		}
	}
	if bestTri < 0 {
		return -1, [3]float32{}
	}
	return bestTri, clampWeights(bestRaw)
}

// barycentric solves p = u*a + v*b + w*c. ok is false for a degenerate triangle.
func barycentric(p, a, b, c r2.Vec) (w [3]float64, ok bool) {
	v0 := r2.Sub(b, a)
	v1 := r2.Sub(c, a)
	v2 := r2.Sub(p, a)
	d00 := r2.Dot(v0, v0)
	d01 := r2.Dot(v0, v1)
	d11 := r2.Dot(v1, v1)
	d20 := r2.Dot(v2, v0)
	d21 := r2.Dot(v2, v1)
	denom := d00*d11 - d01*d01
	if math.Abs(denom) <= 1e-9*d00*d11 {
		return w, false
	}
	v := (d11*d20 - d01*d21) / denom
	ww := (d00*d21 - d01*d20) / denom
	return [3]float64{1 - v - ww, v, ww}, true
}

// clampWeights zeroes negative weights and renormalizes the rest. If nothing positive remains, the largest
// original weight takes everything.
func clampWeights(raw [3]float64) [3]float32 {
	var out [3]float32
	var sum float64
	for _, x := range raw {
		if x > 0 {
			sum += x
		}
	}
	if sum <= 0 {
		best := 0
		for i := 1; i < 3; i++ {
			if raw[i] > raw[best] {
				best = i
			}
		}
		out[best] = 1
		return out
	}
	for i, x := range raw {
		if x > 0 {
			out[i] = float32(x / sum)
		}
	}
	return out
}
