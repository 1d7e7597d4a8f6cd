package render

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/ashkeep/pyre/internal/engine/assets"
	"github.com/ashkeep/pyre/internal/engine/lights"
	"github.com/ashkeep/pyre/internal/engine/terrain"
	"github.com/ashkeep/pyre/pkg/geom"
)

// passBucketTTL is how many frames a pass bucket may go unreferenced before
// its empty shell is evicted at end-of-frame bookkeeping.
const passBucketTTL = 300

// Instance is one batched occurrence of a (geometry, material) group.
type Instance struct {
	Transform mgl32.Mat4
	Inset     mgl32.Vec4
	Tint      mgl32.Vec4
}

// GroupKey identifies an instanced batch.
type GroupKey struct {
	Geometry assets.Tag
	Material Material
}

// Group accumulates the instances of one batch for one pass.
type Group struct {
	Instances []Instance
}

// ForwardEntry is one surface in a forward-transparent pool, annotated with
// everything the back-to-front sort and the per-surface light selection need.
type ForwardEntry struct {
	Geometry assets.Tag
	Material Material
	Instance Instance
	Bounds   geom.AABB

	SortKey int32
	SubSort float32
	DistSq  float32
}

// TerrainInstance is one terrain draw: a cached mesh reference plus the
// layer textures it shades with. Two instances may share one mesh.
type TerrainInstance struct {
	Descriptor terrain.Descriptor
	Mesh       *terrain.Mesh
	Layers     [terrain.MaxLayers]assets.Tag
}

// ProbeState mirrors a RenderLightProbe message inside the normal pass's
// bucket; the baker reads it after categorization.
type ProbeState struct {
	Enabled bool
	Origin  mgl32.Vec3
	Bounds  geom.AABB
	Stale   bool
}

// Tasks is the mutable work bucket for one pass. Buckets are created lazily
// the first frame a pass is referenced, cleared (not destroyed) at frame end,
// and evicted only after passBucketTTL unreferenced frames.
type Tasks struct {
	SkyBox          *assets.Tag
	Probes          map[int64]ProbeState
	Lights          []lights.Light
	Deferred        map[GroupKey]*Group
	Terrain         []TerrainInstance
	ForwardAbsolute []ForwardEntry
	ForwardRelative []ForwardEntry

	lastUsed uint64
}

func newTasks() *Tasks {
	return &Tasks{
		Probes:   make(map[int64]ProbeState),
		Deferred: make(map[GroupKey]*Group),
	}
}

// insertDeferred appends one instance to the surface's batch group.
func (t *Tasks) insertDeferred(key GroupKey, inst Instance) {
	g, ok := t.Deferred[key]
	if !ok {
		g = &Group{}
		t.Deferred[key] = g
	}
	g.Instances = append(g.Instances, inst)
}

// ForwardCasters returns both forward pools. Shadow rendering treats
// absolute and relative surfaces identically, so every forward surface in a
// shadow bucket casts.
func (t *Tasks) ForwardCasters() [][]ForwardEntry {
	return [][]ForwardEntry{t.ForwardAbsolute, t.ForwardRelative}
}

func (t *Tasks) insertForward(e ForwardEntry, relative bool) {
	if relative {
		t.ForwardRelative = append(t.ForwardRelative, e)
	} else {
		t.ForwardAbsolute = append(t.ForwardAbsolute, e)
	}
}

// clear resets the bucket's contents while keeping allocated capacity for
// the next frame.
func (t *Tasks) clear() {
	t.SkyBox = nil
	for id := range t.Probes {
		delete(t.Probes, id)
	}
	t.Lights = t.Lights[:0]
	for key, g := range t.Deferred {
		if len(g.Instances) == 0 {
			delete(t.Deferred, key)
			continue
		}
		g.Instances = g.Instances[:0]
	}
	t.Terrain = t.Terrain[:0]
	t.ForwardAbsolute = t.ForwardAbsolute[:0]
	t.ForwardRelative = t.ForwardRelative[:0]
}
