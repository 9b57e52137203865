package light

// ShadowMapResolution is the width and height in texels of the shadow depth map
// rendered for the first shadow-casting directional light.
const ShadowMapResolution = 1024

// DefaultShadowHalfExtent is the orthographic half-extent (in world units) of the
// directional shadow frustum. Normalized models fit in a 10 unit cube, so 8 covers
// the model plus its ground contact area.
const DefaultShadowHalfExtent float32 = 8.0

// DefaultShadowNear is the near plane for the directional light's orthographic
// shadow projection.
const DefaultShadowNear float32 = 0.1

// DefaultShadowFar is the far plane for the directional light's orthographic
// shadow projection.
const DefaultShadowFar float32 = 60.0

// DefaultShadowBias is the constant depth bias applied to shadow comparisons
// to reduce shadow acne artifacts.
const DefaultShadowBias float32 = 0.02

// ShadowDarkening is the fraction of direct light removed from an occluded fragment.
const ShadowDarkening float32 = 0.6
