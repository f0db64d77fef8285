package model

// AssetBuilderOption is a functional option for configuring an Asset via NewAsset.
type AssetBuilderOption func(*asset)

// WithName is an option builder that sets the name of the Asset.
//
// Parameters:
//   - name: the asset identifier
//
// Returns:
//   - AssetBuilderOption: a function that applies the name option to an asset
func WithName(name string) AssetBuilderOption {
	return func(a *asset) {
		a.name = name
	}
}

// WithSource is an option builder that records where the Asset was read from.
//
// Parameters:
//   - source: the file path or stream name
//
// Returns:
//   - AssetBuilderOption: a function that applies the source option to an asset
func WithSource(source string) AssetBuilderOption {
	return func(a *asset) {
		a.source = source
	}
}

// WithSkeleton is an option builder that sets the bone hierarchy of the Asset.
//
// Parameters:
//   - skeleton: the skeleton to set
//
// Returns:
//   - AssetBuilderOption: a function that applies the skeleton option to an asset
func WithSkeleton(skeleton *Skeleton) AssetBuilderOption {
	return func(a *asset) {
		a.skeleton = skeleton
	}
}

// WithAnimations is an option builder that sets the animation clips of the Asset.
//
// Parameters:
//   - animations: the animation clips to set
//
// Returns:
//   - AssetBuilderOption: a function that applies the animations option to an asset
func WithAnimations(animations []*AnimationClip) AssetBuilderOption {
	return func(a *asset) {
		a.animations = animations
	}
}
