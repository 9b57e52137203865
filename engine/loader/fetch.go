package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// fetchChunkSize is the read granularity between progress reports and cancel checks.
const fetchChunkSize = 32 * 1024

// maxPreallocBytes caps the buffer reserved from a source-reported length.
const maxPreallocBytes = 256 << 20

// fetchedAsset is the raw bytes of an asset plus a filesystem that resolves the
// relative URIs it may reference (external glTF buffers and images).
type fetchedAsset struct {
	name string
	data []byte
	fsys fs.FS
}

// isRemote reports whether the locator must be fetched over HTTP.
func isRemote(locator string) bool {
	l := strings.ToLower(locator)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

// locatorPath returns the path portion of a locator, without scheme, query or fragment.
func locatorPath(locator string) string {
	if isRemote(locator) {
		if u, err := url.Parse(locator); err == nil {
			return u.Path
		}
	}
	return strings.TrimPrefix(locator, "file://")
}

// fetch reads the asset bytes, reporting progress whenever the total size is known.
// The total is the response Content-Length or the file size, falling back to sizeHint.
// Progress stops the moment the token is cancelled.
func (l *loader) fetch(ctx context.Context, locator string, sizeHint int64, onProgress func(float64), token *CancelToken) (*fetchedAsset, error) {
	if isRemote(locator) {
		return l.fetchRemote(ctx, locator, sizeHint, onProgress, token)
	}
	return l.fetchLocal(ctx, locatorPath(locator), sizeHint, onProgress, token)
}

func (l *loader) fetchRemote(ctx context.Context, locator string, sizeHint int64, onProgress func(float64), token *CancelToken) (*fetchedAsset, error) {
	base, err := url.Parse(locator)
	if err != nil {
		return nil, networkFailure(err, "invalid locator %q", locator)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, networkFailure(err, "failed to build request for %s", locator)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		if cerr := cancelled(ctx, token); cerr != nil {
			return nil, cerr
		}
		return nil, networkFailure(err, "failed to fetch %s", locator)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, networkFailure(nil, "fetch %s: unexpected status %s", locator, resp.Status)
	}

	total := resp.ContentLength
	if total <= 0 {
		total = sizeHint
	}
	data, err := readWithProgress(ctx, resp.Body, total, resp.ContentLength, onProgress, token)
	if err != nil {
		if errors.Is(err, ErrCancelled) {
			return nil, err
		}
		return nil, networkFailure(err, "failed to read body of %s", locator)
	}

	return &fetchedAsset{
		name: path.Base(base.Path),
		data: data,
		fsys: &httpFS{ctx: ctx, client: l.client, base: base},
	}, nil
}

func (l *loader) fetchLocal(ctx context.Context, p string, sizeHint int64, onProgress func(float64), token *CancelToken) (*fetchedAsset, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, networkFailure(err, "failed to open %s", p)
	}
	defer f.Close()

	total, reported := sizeHint, int64(0)
	if info, err := f.Stat(); err == nil && info.Size() > 0 {
		total, reported = info.Size(), info.Size()
	}
	data, err := readWithProgress(ctx, f, total, reported, onProgress, token)
	if err != nil {
		if errors.Is(err, ErrCancelled) {
			return nil, err
		}
		return nil, networkFailure(err, "failed to read %s", p)
	}

	return &fetchedAsset{
		name: filepath.Base(p),
		data: data,
		fsys: os.DirFS(filepath.Dir(p)),
	}, nil
}

// readWithProgress drains r in chunks. onProgress receives loaded/total after each chunk
// when total > 0, and a final 1.0 once the stream ends. Fractions never decrease.
//
// Only a length reported by the source itself should be passed as reported; it sizes the
// buffer up front, capped at maxPreallocBytes. A caller-supplied hint only drives progress.
func readWithProgress(ctx context.Context, r io.Reader, total, reported int64, onProgress func(float64), token *CancelToken) ([]byte, error) {
	var buf bytes.Buffer
	if reported > 0 {
		buf.Grow(int(min(reported, maxPreallocBytes)))
	}

	report := func(f float64) {
		if onProgress == nil || total <= 0 {
			return
		}
		token.deliver(func() {
			if ctx.Err() != nil {
				return
			}
			onProgress(min(f, 1))
		})
	}

	chunk := make([]byte, fetchChunkSize)
	var loaded int64
	last := -1.0
	for {
		if err := cancelled(ctx, token); err != nil {
			return nil, err
		}
		n, err := r.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			loaded += int64(n)
			if f := float64(loaded) / float64(max(total, 1)); f > last {
				last = f
				report(f)
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if cerr := cancelled(ctx, token); cerr != nil {
				return nil, cerr
			}
			return nil, err
		}
	}
	if err := cancelled(ctx, token); err != nil {
		return nil, err
	}
	if last < 1 {
		report(1)
	}
	return buf.Bytes(), nil
}

// cancelled returns ErrCancelled (wrapping the context error when that is the cause)
// once either the token or the context has been cancelled.
func cancelled(ctx context.Context, token *CancelToken) error {
	if token.Cancelled() {
		return ErrCancelled
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrCancelled, err)
	}
	return nil
}

// httpFS resolves the relative URIs of a remote glTF document against the document URL.
type httpFS struct {
	ctx    context.Context
	client *http.Client
	base   *url.URL
}

var (
	_ fs.FS         = &httpFS{}
	_ fs.ReadFileFS = &httpFS{}
)

func (h *httpFS) ReadFile(name string) ([]byte, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fs.ErrInvalid}
	}
	ref, err := url.Parse(name)
	if err != nil {
		return nil, &fs.PathError{Op: "read", Path: name, Err: err}
	}
	target := h.base.ResolveReference(ref)

	req, err := http.NewRequestWithContext(h.ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, &fs.PathError{Op: "read", Path: name, Err: err}
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, &fs.PathError{Op: "read", Path: name, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fs.ErrNotExist}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}
	return io.ReadAll(resp.Body)
}

func (h *httpFS) Open(name string) (fs.File, error) {
	data, err := h.ReadFile(name)
	if err != nil {
		return nil, err
	}
	return &memFile{Reader: bytes.NewReader(data), name: path.Base(name), size: int64(len(data))}, nil
}

// memFile is an fs.File over bytes already fetched.
type memFile struct {
	*bytes.Reader
	name string
	size int64
}

func (f *memFile) Stat() (fs.FileInfo, error) { return f, nil }
func (f *memFile) Close() error               { return nil }
func (f *memFile) Name() string               { return f.name }
func (f *memFile) Size() int64                { return f.size }
func (f *memFile) Mode() fs.FileMode          { return 0o444 }
func (f *memFile) ModTime() time.Time         { return time.Time{} }
func (f *memFile) IsDir() bool                { return false }
func (f *memFile) Sys() any                   { return nil }
