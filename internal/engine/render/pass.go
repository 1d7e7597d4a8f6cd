package render

// PassKind distinguishes why a pass renders: the top-level view, a light's
// shadow view, or a probe's reflection view.
type PassKind uint8

const (
	PassNormal PassKind = iota
	PassShadow
	PassReflection
)

// Pass keys every per-frame task bucket. Equality is stable within a frame:
// the same light or probe id always maps to the same bucket.
type Pass struct {
	Kind  PassKind
	Light int64 // shadow passes only
	Probe int64 // reflection passes only
}

// NormalPass is the top-level view pass.
var NormalPass = Pass{Kind: PassNormal}

// ShadowPass keys the shadow bucket for one light.
func ShadowPass(lightID int64) Pass {
	return Pass{Kind: PassShadow, Light: lightID}
}

// ReflectionPass keys the reflection bucket for one probe.
func ReflectionPass(probeID int64) Pass {
	return Pass{Kind: PassReflection, Probe: probeID}
}
