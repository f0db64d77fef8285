package model

// asset is the implementation of the Asset interface.
type asset struct {
	name       string
	source     string
	skeleton   *Skeleton
	animations []*AnimationClip
}

// Asset defines the interface for a loaded animation asset.
// An Asset pairs one skeleton with the clips authored against it. It is produced by the Loader
// and is read-only once built; clips may be shared by any number of players.
type Asset interface {
	// Name retrieves the asset identifier.
	//
	// Returns:
	//   - string: the asset name
	Name() string

	// Source retrieves the path or stream name the asset was read from.
	//
	// Returns:
	//   - string: the source, empty for hand-built assets
	Source() string

	// Skeleton retrieves the bone hierarchy the clips target.
	//
	// Returns:
	//   - *Skeleton: the skeleton or nil
	Skeleton() *Skeleton

	// Animations retrieves all animation clips bundled with this asset.
	//
	// Returns:
	//   - []*AnimationClip: the animation clips
	Animations() []*AnimationClip

	// AnimationCount returns the number of clips.
	//
	// Returns:
	//   - int: the clip count
	AnimationCount() int

	// AnimationNames returns the clip names in asset order.
	//
	// Returns:
	//   - []string: the names
	AnimationNames() []string

	// GetAnimationIndex finds a clip by name.
	//
	// Parameters:
	//   - name: the clip name
	//
	// Returns:
	//   - int: the clip index, or -1 if no clip has that name
	GetAnimationIndex(name string) int

	// Animation finds a clip by name.
	//
	// Parameters:
	//   - name: the clip name
	//
	// Returns:
	//   - *AnimationClip: the clip, or nil if no clip has that name
	Animation(name string) *AnimationClip
}

var _ Asset = &asset{}

// NewAsset creates a new Asset instance with the specified options applied.
//
// Parameters:
//   - options: a variadic list of AssetBuilderOption functions to configure the Asset
//
// Returns:
//   - Asset: a new instance of Asset configured with the provided options
func NewAsset(options ...AssetBuilderOption) Asset {
	a := &asset{}
	for _, opt := range options {
		opt(a)
	}
	return a
}

func (a *asset) Name() string {
	return a.name
}

func (a *asset) Source() string {
	return a.source
}

func (a *asset) Skeleton() *Skeleton {
	return a.skeleton
}

func (a *asset) Animations() []*AnimationClip {
	return a.animations
}

func (a *asset) AnimationCount() int {
	return len(a.animations)
}

func (a *asset) AnimationNames() []string {
	names := make([]string, len(a.animations))
	for i, anim := range a.animations {
		names[i] = anim.Name
	}
	return names
}

func (a *asset) GetAnimationIndex(name string) int {
	for i, anim := range a.animations {
		if anim.Name == name {
			return i
		}
	}
	return -1
}

func (a *asset) Animation(name string) *AnimationClip {
	if i := a.GetAnimationIndex(name); i >= 0 {
		return a.animations[i]
	}
	return nil
}
