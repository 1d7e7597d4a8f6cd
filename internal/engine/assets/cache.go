package assets

import (
	"os"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ashkeep/pyre/internal/logger"
)

type entry struct {
	path       string
	kind       Kind
	modTime    time.Time
	res        Resource
	procedural bool
}

type pack struct {
	name    string
	entries map[string]*entry

	// listed is set once the graph has been parsed for this package. A pack
	// holding only procedural entries exists in the map before that happens.
	listed bool

	// Format-level decode memos keyed by file path, so two entries backed
	// by the same file share one decode.
	cubeMemo  map[string]*CubeMap
	modelMemo map[string]*Model
}

func newPack(name string) *pack {
	return &pack{
		name:      name,
		entries:   make(map[string]*entry),
		cubeMemo:  make(map[string]*CubeMap),
		modelMemo: make(map[string]*Model),
	}
}

// Cache memoizes decoded resources per package. It is owned by a single
// renderer instance and is not safe for concurrent use; the only cross
// goroutine touch point is the reload flag, which the file watcher sets.
type Cache struct {
	graph    Graph
	packages map[string]*pack

	// Two-level opportunistic cache: last resolved resource, then last
	// touched package. Repeated lookups within a frame stay off the maps.
	lastTag Tag
	lastRes Resource
	lastPkg *pack

	// OnEvict runs for every resource dropped by staleness, unload or
	// procedural destruction. The renderer uses it to release GL objects.
	OnEvict func(Resource)

	reload  atomic.Bool
	watcher *watcher
}

// NewCache creates an empty cache over the given graph.
func NewCache(graph Graph) *Cache {
	return &Cache{
		graph:    graph,
		packages: make(map[string]*pack),
	}
}

// Resolve returns the decoded resource for tag, loading the containing
// package on first reference. A missing package, missing asset or earlier
// decode failure yields (nil, false).
func (c *Cache) Resolve(tag Tag) (Resource, bool) {
	if c.lastRes != nil && tag == c.lastTag {
		return c.lastRes, true
	}

	p := c.lastPkg
	if p == nil || p.name != tag.Package {
		var ok bool
		p, ok = c.packages[tag.Package]
		if !ok || !p.listed {
			p = c.loadPackage(tag.Package)
			if p == nil {
				return nil, false
			}
		}
		c.lastPkg = p
	}

	e, ok := p.entries[tag.Name]
	if !ok || e.res == nil {
		return nil, false
	}
	c.lastTag = tag
	c.lastRes = e.res
	return e.res, true
}

// Loaded reports whether a package has been loaded.
func (c *Cache) Loaded(pkgName string) bool {
	_, ok := c.packages[pkgName]
	return ok
}

// Load loads a package eagerly. Safe to call for an already loaded package.
// A package holding only procedural registrations still gets its graph parsed.
func (c *Cache) Load(pkgName string) {
	if p, ok := c.packages[pkgName]; ok && p.listed {
		return
	}
	c.loadPackage(pkgName)
}

// loadPackage parses the package's asset graph and decodes every asset whose
// backing file is newer than its cached entry or not cached at all. Returns
// nil when the graph cannot list the package.
func (c *Cache) loadPackage(name string) *pack {
	p, ok := c.packages[name]
	if !ok {
		p = newPack(name)
		c.packages[name] = p
	}
	p.listed = true

	list, err := c.graph.List(name)
	if err != nil {
		if len(p.entries) > 0 {
			// Procedural-only packages have no graph directory behind
			// them; their entries stay resolvable.
			return p
		}
		logger.Warn("asset package unavailable", zap.String("package", name), zap.Error(err))
		delete(c.packages, name)
		return nil
	}

	for _, item := range list {
		c.refreshEntry(p, item)
	}
	return p
}

// refreshEntry decodes item into p if its file is new or changed. Stale
// entries are freed first, including their memo-table slots.
func (c *Cache) refreshEntry(p *pack, item Entry) {
	info, err := os.Stat(item.Path)
	if err != nil {
		logger.Warn("asset source unreadable",
			zap.String("package", p.name), zap.String("asset", item.Name), zap.Error(err))
		return
	}
	mod := info.ModTime()

	if e, ok := p.entries[item.Name]; ok {
		if e.procedural {
			// File-backed entries never replace a procedural one; the
			// collision was already rejected at registration time.
			return
		}
		if !mod.After(e.modTime) {
			return
		}
		c.dropEntry(p, e)
	}

	res := c.decode(p, item)
	if res == nil {
		// Decode failures leave the asset absent; the rest of the
		// package still loads.
		delete(p.entries, item.Name)
		return
	}
	p.entries[item.Name] = &entry{path: item.Path, kind: item.Kind, modTime: mod, res: res}
}

// decode runs the graph decoder, going through the per-format memo tables
// for formats where several assets commonly share one backing file.
func (c *Cache) decode(p *pack, item Entry) Resource {
	switch item.Kind {
	case KindCubeMap:
		if memo, ok := p.cubeMemo[item.Path]; ok {
			return memo
		}
	case KindModel:
		if memo, ok := p.modelMemo[item.Path]; ok {
			return memo
		}
	}

	res, err := c.graph.Decode(item.Path, item.Kind)
	if err != nil {
		logger.Warn("asset decode failed",
			zap.String("package", p.name), zap.String("asset", item.Name),
			zap.String("path", item.Path), zap.Error(err))
		return nil
	}

	switch r := res.(type) {
	case *CubeMap:
		p.cubeMemo[item.Path] = r
	case *Model:
		p.modelMemo[item.Path] = r
	}
	return res
}

// dropEntry frees one entry, removing its memo slot so a changed file is
// decoded fresh. The slot is only cleared while it still maps to the dropped
// resource; a sibling entry's refresh may have repopulated it already.
func (c *Cache) dropEntry(p *pack, e *entry) {
	switch r := e.res.(type) {
	case *CubeMap:
		if p.cubeMemo[e.path] == r {
			delete(p.cubeMemo, e.path)
		}
	case *Model:
		if p.modelMemo[e.path] == r {
			delete(p.modelMemo, e.path)
		}
	}
	if c.lastRes == e.res {
		c.lastRes = nil
	}
	if c.OnEvict != nil && e.res != nil {
		c.OnEvict(e.res)
	}
}

// RegisterProcedural registers a runtime-built resource into a package as if
// it had been decoded from disk. Registration is rejected (logged, no-op)
// when the name collides with a file-backed asset or an existing procedural
// one.
func (c *Cache) RegisterProcedural(tag Tag, res Resource) bool {
	p, ok := c.packages[tag.Package]
	if !ok {
		p = newPack(tag.Package)
		c.packages[tag.Package] = p
	}

	if e, exists := p.entries[tag.Name]; exists {
		key := "assets:procedural-collision:" + tag.Package + "/" + tag.Name
		if e.procedural {
			logger.InfoOnce(key, "procedural asset already registered, ignoring overwrite",
				zap.String("package", tag.Package), zap.String("asset", tag.Name))
		} else {
			logger.InfoOnce(key, "procedural asset name collides with file-backed asset",
				zap.String("package", tag.Package), zap.String("asset", tag.Name))
		}
		return false
	}

	p.entries[tag.Name] = &entry{res: res, procedural: true}
	return true
}

// RegisterAnonymous registers a procedural resource under a generated name
// and returns its tag.
func (c *Cache) RegisterAnonymous(pkgName string, res Resource) Tag {
	tag := Tag{Package: pkgName, Name: "proc-" + uuid.NewString()}
	c.RegisterProcedural(tag, res)
	return tag
}

// DestroyProcedural removes a procedural asset. Removing a file-backed asset
// this way is a misuse no-op.
func (c *Cache) DestroyProcedural(tag Tag) {
	p, ok := c.packages[tag.Package]
	if !ok {
		return
	}
	e, ok := p.entries[tag.Name]
	if !ok {
		return
	}
	if !e.procedural {
		logger.InfoOnce("assets:destroy-file-backed:"+tag.Package+"/"+tag.Name,
			"refusing to destroy file-backed asset",
			zap.String("package", tag.Package), zap.String("asset", tag.Name))
		return
	}
	c.dropEntry(p, e)
	delete(p.entries, tag.Name)
	if c.lastTag == tag {
		c.lastRes = nil
	}
}

// Unload drops a whole package and frees its resources.
func (c *Cache) Unload(pkgName string) {
	p, ok := c.packages[pkgName]
	if !ok {
		return
	}
	for name, e := range p.entries {
		c.dropEntry(p, e)
		delete(p.entries, name)
	}
	delete(c.packages, pkgName)
	if c.lastPkg == p {
		c.lastPkg = nil
	}
	c.lastRes = nil
}

// RequestReload arms the deferred reload-all flag. The actual reload happens
// in EndFrame so mid-frame lookups keep seeing a consistent package.
func (c *Cache) RequestReload() {
	c.reload.Store(true)
}

// EndFrame processes the deferred reload flag, re-running the load pass for
// every currently loaded package.
func (c *Cache) EndFrame() {
	if !c.reload.Swap(false) {
		return
	}
	logger.Info("reloading asset packages", zap.Int("packages", len(c.packages)))
	c.lastRes = nil
	c.lastPkg = nil
	for name := range c.packages {
		c.loadPackage(name)
	}
}

// Close stops the watcher, if any, and frees every loaded package.
func (c *Cache) Close() {
	if c.watcher != nil {
		c.watcher.stop()
		c.watcher = nil
	}
	for name := range c.packages {
		c.Unload(name)
	}
}
