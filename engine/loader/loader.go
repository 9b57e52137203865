package loader

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-viewport/common"
	"github.com/Carmen-Shannon/oxy-viewport/engine/scene"
)

// Format is the declared format tag of an asset.
type Format int

const (
	// FormatUnknown leaves format detection to the locator suffix.
	FormatUnknown Format = iota

	// FormatA is a scene-graph format (glTF 2.0, .gltf or .glb) that yields a node hierarchy.
	FormatA

	// FormatB is a geometry-only triangle mesh (.obj, .stl) that yields a single mesh node.
	FormatB
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatA:
		return "gltf"
	case FormatB:
		return "mesh"
	default:
		return "unknown"
	}
}

// AssetDescriptor names an asset to load.
type AssetDescriptor struct {
	// ID is the stable identifier of the asset.
	ID string

	// DisplayName is the human readable name. It is also used for suffix detection when
	// the locator carries no recognizable extension.
	DisplayName string

	// SourceLocator is a local path, a file:// URL, or an http(s) URL.
	SourceLocator string

	// SizeBytes is the expected size, used for progress when the source reports none.
	SizeBytes int64

	// Format is the declared format. When set it must agree with the suffix.
	Format Format
}

// Name returns the first non-empty of DisplayName, ID and the locator's base name.
func (d AssetDescriptor) Name() string {
	return common.Coalesce(d.DisplayName, d.ID, path.Base(locatorPath(d.SourceLocator)))
}

// loader is the implementation of the Loader interface.
type loader struct {
	client  *http.Client
	tracker *common.ResourceTracker
	workers int
	pool    *common.WorkerGroup

	mu     *sync.Mutex
	closed bool
	active sync.WaitGroup

	backends map[string]loaderBackend
}

// Loader fetches assets and decodes them into detached scene nodes.
// A Loader holds no per-load state; concurrent Loads are independent.
type Loader interface {
	// Load fetches and decodes an asset.
	//
	// The backend is chosen from the lowercased suffix of the locator (or the display name):
	// .gltf/.glb decode as FormatA, .obj/.stl as FormatB. An unknown suffix fails with an
	// UnsupportedFormat LoadError before anything is fetched or reported.
	//
	// onProgress, when non-nil, receives fractions in [0, 1] as bytes arrive, but only
	// when the total size is known. It is never invoked once token is cancelled.
	//
	// When token is cancelled before Load returns, every resource the load allocated is
	// disposed and ErrCancelled is returned.
	//
	// Parameters:
	//   - ctx: bounds the fetch; cancelling it behaves like cancelling token
	//   - desc: the asset to load
	//   - onProgress: progress callback, may be nil
	//   - token: cancellation token, may be nil
	//
	// Returns:
	//   - *scene.Node: the detached root of the decoded asset
	//   - error: a *LoadError, or ErrCancelled
	Load(ctx context.Context, desc AssetDescriptor, onProgress func(float64), token *CancelToken) (*scene.Node, error)

	// Supports reports whether an asset with this locator or name would be accepted.
	//
	// Parameters:
	//   - name: a locator or file name
	//
	// Returns:
	//   - bool: true when a backend handles the suffix
	Supports(name string) bool

	// Validate runs the dispatch checks of Load without fetching anything.
	//
	// Parameters:
	//   - desc: the asset to check
	//
	// Returns:
	//   - error: an UnsupportedFormat *LoadError, or nil when Load would pick a backend
	Validate(desc AssetDescriptor) error

	// Close waits for in-flight loads and stops the decode workers. Loads started after
	// Close still succeed, decoding on the caller's goroutine. Safe to call more than once.
	Close()
}

var _ Loader = &loader{}

// NewLoader creates a new Loader with the glTF and triangle mesh backends registered.
//
// Parameters:
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new Loader
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{
		client:  http.DefaultClient,
		workers: max(runtime.NumCPU()-1, 1),
		mu:      &sync.Mutex{},
	}
	for _, option := range options {
		option(l)
	}

	l.pool = common.NewWorkerGroup(l.workers, 16)

	gltfBackend := newGLTFLoaderBackend(l.pool)
	meshBackend := newMeshLoaderBackend()
	l.backends = map[string]loaderBackend{
		".gltf": gltfBackend,
		".glb":  gltfBackend,
		".obj":  meshBackend,
		".stl":  meshBackend,
	}
	return l
}

func (l *loader) Supports(name string) bool {
	_, ok := l.backends[suffix(locatorPath(name))]
	return ok
}

func (l *loader) Validate(desc AssetDescriptor) error {
	_, _, err := l.resolveBackend(desc)
	return err
}

func (l *loader) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	l.mu.Unlock()

	l.active.Wait()
	l.pool.Stop()
	common.Logger().Debug("[Loader] closed")
}

func (l *loader) Load(ctx context.Context, desc AssetDescriptor, onProgress func(float64), token *CancelToken) (node *scene.Node, err error) {
	if ctx == nil {
		ctx = context.Background()
	}

	l.mu.Lock()
	if !l.closed {
		l.active.Add(1)
		defer l.active.Done()
	}
	l.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			common.Logger().Error("[Loader] load panicked", "name", desc.Name(), "panic", r)
			node, err = nil, parseFailure(fmt.Errorf("%v", r), "failed to load %s", desc.Name())
		}
	}()

	ext, backend, err := l.resolveBackend(desc)
	if err != nil {
		return nil, err
	}
	if err := cancelled(ctx, token); err != nil {
		return nil, err
	}

	start := time.Now()
	asset, err := l.fetch(ctx, desc.SourceLocator, desc.SizeBytes, onProgress, token)
	if err != nil {
		return nil, err
	}
	common.Logger().Debug("[Loader] fetched asset", "name", desc.Name(), "bytes", len(asset.data), "elapsed", time.Since(start))

	dc := &decodeContext{
		ctx:     ctx,
		token:   token,
		tracker: l.tracker,
		name:    desc.Name(),
		ext:     ext,
	}
	root, err := backend.Decode(dc, asset)
	if err != nil {
		if errors.Is(err, ErrCancelled) {
			return nil, err
		}
		var le *LoadError
		if errors.As(err, &le) {
			return nil, le
		}
		return nil, parseFailure(err, "failed to decode %s", desc.Name())
	}

	if err := cancelled(ctx, token); err != nil {
		disposeLogged(root)
		return nil, err
	}

	common.Logger().Info("[Loader] loaded asset", "name", desc.Name(), "meshes", len(root.Meshes()), "elapsed", time.Since(start))
	return root, nil
}

// resolveBackend picks a backend from the locator suffix, falling back to the display
// name suffix. A declared format that contradicts the suffix is rejected.
func (l *loader) resolveBackend(desc AssetDescriptor) (string, loaderBackend, error) {
	ext := suffix(locatorPath(desc.SourceLocator))
	backend, ok := l.backends[ext]
	if !ok {
		ext = suffix(desc.DisplayName)
		backend, ok = l.backends[ext]
	}
	if !ok {
		return "", nil, unsupported("unsupported model format %q for %s", suffix(locatorPath(desc.SourceLocator)), desc.Name())
	}
	if desc.Format != FormatUnknown && desc.Format != formatOf(ext) {
		return "", nil, unsupported("declared format %s does not match suffix %s", desc.Format, ext)
	}
	return ext, backend, nil
}

// IsSupported reports whether a locator or file name carries a suffix some backend of
// NewLoader decodes.
//
// Parameters:
//   - name: a locator or file name
//
// Returns:
//   - bool: true for .gltf, .glb, .obj and .stl, in any case
func IsSupported(name string) bool {
	return formatOf(suffix(locatorPath(name))) != FormatUnknown
}

func suffix(name string) string {
	return strings.ToLower(path.Ext(name))
}

func formatOf(ext string) Format {
	switch ext {
	case ".gltf", ".glb":
		return FormatA
	case ".obj", ".stl":
		return FormatB
	default:
		return FormatUnknown
	}
}

// disposeLogged disposes a partially built or discarded node, logging failures.
func disposeLogged(n *scene.Node) {
	if n == nil {
		return
	}
	if err := n.Dispose(); err != nil {
		common.Logger().Warn("[Loader] failed to dispose discarded node", "node", n.Name, "error", err)
	}
}
