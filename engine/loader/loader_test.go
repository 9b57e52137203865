package loader

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-viewport/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// progressLog collects progress fractions from any goroutine.
type progressLog struct {
	mu     sync.Mutex
	values []float64
}

func (p *progressLog) record(f float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values = append(p.values, f)
}

func (p *progressLog) snapshot() []float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]float64(nil), p.values...)
}

func assertMonotonicToOne(t *testing.T, values []float64) {
	t.Helper()
	require.NotEmpty(t, values)
	for i := 1; i < len(values); i++ {
		assert.GreaterOrEqual(t, values[i], values[i-1], "progress never decreases")
	}
	for _, v := range values {
		assert.True(t, v >= 0 && v <= 1, "progress %v out of range", v)
	}
	assert.Equal(t, 1.0, values[len(values)-1])
}

// largeOBJ pads a triangle with comments so reads span several chunks.
func largeOBJ() string {
	var sb strings.Builder
	for sb.Len() < 4*fetchChunkSize {
		sb.WriteString("# padding line to stretch the file across read chunks\n")
	}
	sb.WriteString("v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n")
	return sb.String()
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestAssetDescriptor_Name(t *testing.T) {
	assert.Equal(t, "Chair", AssetDescriptor{ID: "a1", DisplayName: "Chair", SourceLocator: "x/chair.obj"}.Name())
	assert.Equal(t, "a1", AssetDescriptor{ID: "a1", SourceLocator: "x/chair.obj"}.Name())
	assert.Equal(t, "chair.obj", AssetDescriptor{SourceLocator: "https://cdn.example.com/x/chair.obj?v=2"}.Name())
}

func TestLoader_Supports(t *testing.T) {
	l := NewLoader()
	for _, name := range []string{"a.gltf", "a.GLB", "dir/a.obj", "a.Stl", "https://h/a.glb?x=1"} {
		assert.True(t, l.Supports(name), name)
	}
	for _, name := range []string{"a.fbx", "a", "a.png"} {
		assert.False(t, l.Supports(name), name)
	}
}

func TestLoader_UnsupportedFormat(t *testing.T) {
	l := NewLoader()
	desc := AssetDescriptor{ID: "m", SourceLocator: filepath.Join(t.TempDir(), "model.fbx")}

	err := l.Validate(desc)
	assert.True(t, IsKind(err, UnsupportedFormat))

	calls := 0
	node, err := l.Load(context.Background(), desc, func(float64) { calls++ }, nil)
	assert.Nil(t, node)
	assert.True(t, IsKind(err, UnsupportedFormat))
	assert.Zero(t, calls, "unsupported assets report no progress")
}

func TestLoader_DisplayNameSuffixFallback(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "blob", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n")

	node, err := NewLoader().Load(context.Background(), AssetDescriptor{DisplayName: "tri.obj", SourceLocator: p}, nil, nil)
	require.NoError(t, err)
	assert.Len(t, node.Meshes(), 1)
}

func TestLoader_DeclaredFormatMismatch(t *testing.T) {
	err := NewLoader().Validate(AssetDescriptor{SourceLocator: "model.obj", Format: FormatA})
	assert.True(t, IsKind(err, UnsupportedFormat))

	assert.NoError(t, NewLoader().Validate(AssetDescriptor{SourceLocator: "model.stl", Format: FormatB}))
}

func TestLoader_LocalOBJ(t *testing.T) {
	tracker := common.NewResourceTracker()
	p := writeFile(t, t.TempDir(), "quad.obj", quadOBJ)

	var progress progressLog
	node, err := NewLoader(WithTracker(tracker)).Load(context.Background(), AssetDescriptor{ID: "quad", SourceLocator: "file://" + p}, progress.record, nil)
	require.NoError(t, err)

	meshes := node.Meshes()
	require.Len(t, meshes, 1)
	assert.Equal(t, "quad", meshes[0].Name)
	assert.Equal(t, 2, meshes[0].Mesh().Geometry.TriangleCount())
	_, authored := meshes[0].Mesh().Material.AuthoredColor()
	assert.False(t, authored, "OBJ geometry carries no authored color")
	assertMonotonicToOne(t, progress.snapshot())

	assert.Equal(t, 1, tracker.LiveOf(common.ResourceGeometry))
	require.NoError(t, node.Dispose())
	assert.Zero(t, tracker.Live())
}

func TestLoader_LocalSTL(t *testing.T) {
	p := writeFile(t, t.TempDir(), "tri.stl", triangleSTL)

	node, err := NewLoader().Load(context.Background(), AssetDescriptor{SourceLocator: p}, nil, nil)
	require.NoError(t, err)
	require.Len(t, node.Meshes(), 1)
	assert.Equal(t, 1, node.Meshes()[0].Mesh().Geometry.TriangleCount())
}

func TestLoader_LargeLocalFileProgress(t *testing.T) {
	p := writeFile(t, t.TempDir(), "big.obj", largeOBJ())

	var progress progressLog
	_, err := NewLoader().Load(context.Background(), AssetDescriptor{SourceLocator: p}, progress.record, nil)
	require.NoError(t, err)

	values := progress.snapshot()
	assert.Greater(t, len(values), 2, "large files report intermediate progress")
	assertMonotonicToOne(t, values)
}

func TestLoader_MissingFile(t *testing.T) {
	_, err := NewLoader().Load(context.Background(), AssetDescriptor{SourceLocator: filepath.Join(t.TempDir(), "nope.obj")}, nil, nil)
	assert.True(t, IsKind(err, NetworkFailure))

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.ErrorIs(t, err, os.ErrNotExist, "the cause is unwrapped")
	assert.Contains(t, le.Error(), "NetworkFailure")
}

func TestLoader_ParseFailure(t *testing.T) {
	p := writeFile(t, t.TempDir(), "broken.obj", "v 0 0 0\n")

	_, err := NewLoader().Load(context.Background(), AssetDescriptor{SourceLocator: p}, nil, nil)
	assert.True(t, IsKind(err, ParseFailure))
}

func TestLoader_RemoteProgress(t *testing.T) {
	body := largeOBJ()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", fmt.Sprint(len(body)))
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	var progress progressLog
	node, err := NewLoader(WithHTTPClient(srv.Client())).Load(context.Background(), AssetDescriptor{SourceLocator: srv.URL + "/models/big.obj"}, progress.record, nil)
	require.NoError(t, err)
	assert.Equal(t, "big.obj", node.Name)
	assertMonotonicToOne(t, progress.snapshot())
}

func TestLoader_RemoteWithoutLength(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, line := range strings.SplitAfter(quadOBJ, "\n") {
			_, _ = w.Write([]byte(line))
			w.(http.Flusher).Flush()
		}
	}))
	defer srv.Close()

	l := NewLoader(WithHTTPClient(srv.Client()))

	calls := 0
	_, err := l.Load(context.Background(), AssetDescriptor{SourceLocator: srv.URL + "/quad.obj"}, func(float64) { calls++ }, nil)
	require.NoError(t, err)
	assert.Zero(t, calls, "no progress without a known total")

	var progress progressLog
	_, err = l.Load(context.Background(), AssetDescriptor{SourceLocator: srv.URL + "/quad.obj", SizeBytes: int64(len(quadOBJ))}, progress.record, nil)
	require.NoError(t, err)
	assertMonotonicToOne(t, progress.snapshot())
}

func TestLoader_RemoteNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := NewLoader(WithHTTPClient(srv.Client())).Load(context.Background(), AssetDescriptor{SourceLocator: srv.URL + "/missing.glb"}, nil, nil)
	assert.True(t, IsKind(err, NetworkFailure))
}

func TestLoader_CancelledBeforeStart(t *testing.T) {
	p := writeFile(t, t.TempDir(), "quad.obj", quadOBJ)
	token := NewCancelToken()
	token.Cancel()

	calls := 0
	node, err := NewLoader().Load(context.Background(), AssetDescriptor{SourceLocator: p}, func(float64) { calls++ }, token)
	assert.Nil(t, node)
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Zero(t, calls)
}

func TestLoader_CancelDuringFetch(t *testing.T) {
	tracker := common.NewResourceTracker()
	p := writeFile(t, t.TempDir(), "big.obj", largeOBJ())
	token := NewCancelToken()

	calls := 0
	node, err := NewLoader(WithTracker(tracker)).Load(context.Background(), AssetDescriptor{SourceLocator: p}, func(float64) {
		calls++
		go token.Cancel()
		<-token.Done()
	}, token)

	assert.Nil(t, node)
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Equal(t, 1, calls, "no progress after cancellation")
	assert.Zero(t, tracker.Live())
}

func TestLoader_NoProgressAfterContextCancel(t *testing.T) {
	p := writeFile(t, t.TempDir(), "big.obj", largeOBJ())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := 0
	_, err := NewLoader().Load(ctx, AssetDescriptor{SourceLocator: p}, func(float64) {
		calls++
		cancel()
	}, nil)
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Equal(t, 1, calls)
}

func TestLoader_BogusSizeHint(t *testing.T) {
	p := writeFile(t, t.TempDir(), "empty.obj", "")

	var err error
	require.NotPanics(t, func() {
		_, err = NewLoader().Load(context.Background(), AssetDescriptor{SourceLocator: p, SizeBytes: 1 << 62}, nil, nil)
	})
	assert.True(t, IsKind(err, ParseFailure), "the empty file fails to parse instead of exhausting memory")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.(http.Flusher).Flush()
		_, _ = w.Write([]byte(quadOBJ))
	}))
	defer srv.Close()

	var progress progressLog
	require.NotPanics(t, func() {
		_, err = NewLoader(WithHTTPClient(srv.Client())).Load(context.Background(), AssetDescriptor{SourceLocator: srv.URL + "/quad.obj", SizeBytes: 1 << 62}, progress.record, nil)
	})
	require.NoError(t, err)
	assertMonotonicToOne(t, progress.snapshot())
}

func TestLoader_CloseStopsWorkers(t *testing.T) {
	doc := gltfDocument(dataURI("application/octet-stream", triangleBuffer(t)), dataURI("image/png", redPNG(t)))
	p := writeFile(t, t.TempDir(), "scene.gltf", doc)

	before := runtime.NumGoroutine()
	l := NewLoader(WithDecodeWorkers(4))
	_, err := l.Load(context.Background(), AssetDescriptor{SourceLocator: p}, nil, nil)
	require.NoError(t, err)

	l.Close()
	l.Close()
	assert.Eventually(t, func() bool { return runtime.NumGoroutine() <= before }, 2*time.Second, 10*time.Millisecond, "decode workers exit on Close")

	node, err := l.Load(context.Background(), AssetDescriptor{SourceLocator: p}, nil, nil)
	require.NoError(t, err, "a closed loader still decodes")
	assert.NotNil(t, node.Meshes()[0].Mesh().Material.Map())
}

func TestLoader_ContextCancelled(t *testing.T) {
	p := writeFile(t, t.TempDir(), "quad.obj", quadOBJ)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLoader().Load(ctx, AssetDescriptor{SourceLocator: p}, nil, nil)
	assert.ErrorIs(t, err, ErrCancelled)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCancelToken(t *testing.T) {
	var nilToken *CancelToken
	assert.False(t, nilToken.Cancelled())
	assert.NotPanics(t, nilToken.Cancel)

	token := NewCancelToken()
	select {
	case <-token.Done():
		t.Fatal("live token reported done")
	default:
	}

	token.Cancel()
	token.Cancel()
	assert.True(t, token.Cancelled())
	<-token.Done()
}

func TestCancelToken_WaitsForProgressUnderWay(t *testing.T) {
	token := NewCancelToken()
	entered := make(chan struct{})
	finished := make(chan struct{})
	var cancelReturned, late atomic.Bool

	go func() {
		defer close(finished)
		token.deliver(func() {
			close(entered)
			time.Sleep(20 * time.Millisecond)
			late.Store(cancelReturned.Load())
		})
	}()
	<-entered
	token.Cancel()
	cancelReturned.Store(true)
	<-finished
	assert.False(t, late.Load(), "Cancel returns only after the running callback")

	ran := false
	token.deliver(func() { ran = true })
	assert.False(t, ran, "nothing is delivered once cancelled")

	var nilToken *CancelToken
	nilToken.deliver(func() { ran = true })
	assert.True(t, ran)
}

func TestErrorKind_String(t *testing.T) {
	assert.Equal(t, "UnsupportedFormat", UnsupportedFormat.String())
	assert.Equal(t, "ParseFailure", ParseFailure.String())
	assert.Equal(t, "ErrorKind(9)", ErrorKind(9).String())

	wrapped := fmt.Errorf("viewport: %w", parseFailure(errors.New("eof"), "bad"))
	assert.True(t, IsKind(wrapped, ParseFailure))
	assert.False(t, IsKind(wrapped, NetworkFailure))
	assert.False(t, IsKind(errors.New("plain"), ParseFailure))
}
