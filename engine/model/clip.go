package model

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidClip is returned by Validate when a clip's timing data cannot be sampled.
var ErrInvalidClip = errors.New("invalid animation clip")

// Validate checks that the clip has a usable length and frame rate.
// Tracks referencing bones outside the skeleton are not an error; they are skipped when sampling.
//
// Returns:
//   - error: ErrInvalidClip wrapped with the offending field, or nil
func (c *AnimationClip) Validate() error {
	if c.Length < 0 {
		return fmt.Errorf("clip %q: negative length %f: %w", c.Name, c.Length, ErrInvalidClip)
	}
	if c.FrameRate <= 0 && c.NumFrames() > 1 {
		return fmt.Errorf("clip %q: frame rate %f with %d frames: %w", c.Name, c.FrameRate, c.NumFrames(), ErrInvalidClip)
	}
	return nil
}

// NumFrames returns the largest key count across all tracks and channels.
//
// Returns:
//   - int: the number of frames stored in the clip
func (c *AnimationClip) NumFrames() int {
	n := 0
	for i := range c.Tracks {
		t := &c.Tracks[i]
		n = max(n, len(t.PositionKeys), len(t.RotationKeys), len(t.ScaleKeys))
	}
	return n
}

// TrackForBone returns the first track animating boneIndex, or nil.
//
// Parameters:
//   - boneIndex: the skeleton bone index
//
// Returns:
//   - *AnimationTrack: the track or nil if the bone is not animated
func (c *AnimationClip) TrackForBone(boneIndex int) *AnimationTrack {
	for i := range c.Tracks {
		if c.Tracks[i].BoneIndex == boneIndex {
			return &c.Tracks[i]
		}
	}
	return nil
}

// SortNotifies orders the clip's notifies by trigger time. The order among equal times is preserved.
func (c *AnimationClip) SortNotifies() {
	sort.SliceStable(c.Notifies, func(i, j int) bool {
		return c.Notifies[i].Time < c.Notifies[j].Time
	})
}

// NotifiesInRange appends to dst every notify whose time lies in the half-open interval (from, to].
// An empty or inverted interval appends nothing; callers split wrapped intervals themselves.
//
// Parameters:
//   - from: the exclusive lower bound, in seconds
//   - to: the inclusive upper bound, in seconds
//   - dst: the slice to append to
//
// Returns:
//   - []Notify: dst with the matching notifies appended
func (c *AnimationClip) NotifiesInRange(from, to float32, dst []Notify) []Notify {
	if to <= from {
		return dst
	}
	for _, n := range c.Notifies {
		if n.Time > from && n.Time <= to {
			dst = append(dst, n)
		}
	}
	return dst
}
