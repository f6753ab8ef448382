package renderer

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Anti-Alias/prism-go/engine/renderer/feature"
	"github.com/Anti-Alias/prism-go/engine/renderer/pipeline"
	"github.com/Anti-Alias/prism-go/engine/renderer/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend counts compiles and releases per variant key and can be told to
// fail a number of compiles.
type fakeBackend struct {
	mu       sync.Mutex
	compiles map[string]int
	releases map[string]int
	failNext int
	failErr  error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		compiles: make(map[string]int),
		releases: make(map[string]int),
	}
}

func (b *fakeBackend) CompileRenderPipeline(v pipeline.Variant) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.compiles[v.Key()]++
	if b.failNext > 0 {
		b.failNext--
		return b.failErr
	}
	v.SetRenderPipeline(&struct{ key string }{key: v.Key()})
	return nil
}

func (b *fakeBackend) ReleaseVariant(v pipeline.Variant) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.releases[v.Key()]++
}

func (b *fakeBackend) compileCount(key string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.compiles[key]
}

func (b *fakeBackend) totalCompiles() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	total := 0
	for _, n := range b.compiles {
		total += n
	}
	return total
}

func (b *fakeBackend) releaseCount(key string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.releases[key]
}

func newTestRenderer(t *testing.T, backend RendererBackend) Renderer {
	t.Helper()
	r := NewRenderer(WithBackend(backend))
	r.RegisterTemplate(shader.NewMeshTemplate())
	return r
}

func TestGetOrBuildCompilesOnce(t *testing.T) {
	backend := newFakeBackend()
	r := newTestRenderer(t, backend)
	fs := feature.NewSet(feature.Color, feature.UV)

	first, err := r.GetOrBuild(shader.MeshTemplateID, fs)
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := r.GetOrBuild(shader.MeshTemplateID, fs)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, backend.compileCount(first.Key()))
}

func TestGetOrBuildDistinctKeys(t *testing.T) {
	backend := newFakeBackend()
	r := newTestRenderer(t, backend)

	flat, err := r.GetOrBuild(shader.MeshTemplateID, feature.NewSet(feature.Color))
	require.NoError(t, err)
	lit, err := r.GetOrBuild(shader.MeshTemplateID, feature.NewSet(feature.Color, feature.Normal))
	require.NoError(t, err)

	assert.NotEqual(t, flat.Key(), lit.Key())
	assert.Equal(t, 2, backend.totalCompiles())
}

func TestGetOrBuildKeyOrderIndependent(t *testing.T) {
	backend := newFakeBackend()
	r := newTestRenderer(t, backend)

	a, err := r.GetOrBuild(shader.MeshTemplateID, feature.NewSet(feature.Color, feature.UV))
	require.NoError(t, err)
	b, err := r.GetOrBuild(shader.MeshTemplateID, feature.NewSet(feature.UV, feature.Color))
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.Equal(t, 1, backend.totalCompiles())
}

func TestGetOrBuildUnknownTemplate(t *testing.T) {
	backend := newFakeBackend()
	r := NewRenderer(WithBackend(backend))

	_, err := r.GetOrBuild("nope", feature.NewSet())
	var uErr *UnknownTemplateError
	require.ErrorAs(t, err, &uErr)
	assert.Equal(t, "nope", uErr.TemplateID)
	assert.Equal(t, 0, backend.totalCompiles())
}

func TestGetOrBuildMalformedFeatureSet(t *testing.T) {
	backend := newFakeBackend()
	r := newTestRenderer(t, backend)

	bad := feature.NewSet(feature.BaseColorTex)
	_, err := r.GetOrBuild(shader.MeshTemplateID, bad)
	var mErr *shader.MalformedTemplateError
	require.ErrorAs(t, err, &mErr)
	assert.Equal(t, shader.MalformedMissingRequiredFlag, mErr.Kind)
	assert.Equal(t, 0, backend.totalCompiles())

	// The failed key stays absent.
	assert.Nil(t, r.Variant(shader.MeshTemplateID, bad))

	// Satisfying the requirement builds normally.
	v, err := r.GetOrBuild(shader.MeshTemplateID, bad.With(feature.UV))
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, 1, backend.compileCount(v.Key()))
}

func TestGetOrBuildFailureLeavesKeyAbsent(t *testing.T) {
	backend := newFakeBackend()
	backend.failNext = 1
	backend.failErr = errors.New("shader rejected")
	r := newTestRenderer(t, backend)
	fs := feature.NewSet(feature.Normal)

	_, err := r.GetOrBuild(shader.MeshTemplateID, fs)
	var cErr *CompileError
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, shader.MeshTemplateID, cErr.TemplateID)
	assert.NotEmpty(t, cErr.Source)
	assert.ErrorIs(t, err, backend.failErr)

	assert.Nil(t, r.Variant(shader.MeshTemplateID, fs))

	// Retry succeeds and recompiles.
	v, err := r.GetOrBuild(shader.MeshTemplateID, fs)
	require.NoError(t, err)
	assert.Equal(t, 2, backend.compileCount(v.Key()))
}

func TestGetOrBuildConcurrent(t *testing.T) {
	backend := newFakeBackend()
	r := newTestRenderer(t, backend)
	fs := feature.NewSet(feature.Color, feature.Normal, feature.UV)

	const callers = 16
	variants := make([]pipeline.Variant, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := r.GetOrBuild(shader.MeshTemplateID, fs)
			assert.NoError(t, err)
			variants[i] = v
		}()
	}
	wg.Wait()

	require.NotNil(t, variants[0])
	for _, v := range variants[1:] {
		assert.Same(t, variants[0], v)
	}
	assert.Equal(t, 1, backend.totalCompiles())
}

func TestVariantDoesNotBuild(t *testing.T) {
	backend := newFakeBackend()
	r := newTestRenderer(t, backend)
	fs := feature.NewSet(feature.Color)

	assert.Nil(t, r.Variant(shader.MeshTemplateID, fs))
	assert.Equal(t, 0, backend.totalCompiles())

	built, err := r.GetOrBuild(shader.MeshTemplateID, fs)
	require.NoError(t, err)
	assert.Same(t, built, r.Variant(shader.MeshTemplateID, fs))
}

func TestInvalidate(t *testing.T) {
	backend := newFakeBackend()
	r := newTestRenderer(t, backend)
	other, err := shader.NewTemplate("other", "fn vertex_main() {}\nfn fragment_main() {}")
	require.NoError(t, err)
	r.RegisterTemplate(other)

	meshVariant, err := r.GetOrBuild(shader.MeshTemplateID, feature.NewSet(feature.Color))
	require.NoError(t, err)
	_, err = r.GetOrBuild(shader.MeshTemplateID, feature.NewSet(feature.Normal))
	require.NoError(t, err)
	otherVariant, err := r.GetOrBuild("other", feature.NewSet())
	require.NoError(t, err)

	assert.Equal(t, 2, r.Invalidate(shader.MeshTemplateID))
	assert.Equal(t, 1, backend.releaseCount(meshVariant.Key()))

	// Other templates keep their variants.
	assert.Same(t, otherVariant, r.Variant("other", feature.NewSet()))

	// Evicted keys rebuild on next request.
	rebuilt, err := r.GetOrBuild(shader.MeshTemplateID, feature.NewSet(feature.Color))
	require.NoError(t, err)
	assert.NotSame(t, meshVariant, rebuilt)
	assert.Equal(t, 2, backend.compileCount(rebuilt.Key()))
}

// blockingBackend holds CompileRenderPipeline open until gate closes, so a
// test can evict the entry while its build is in flight.
type blockingBackend struct {
	started  chan struct{}
	gate     chan struct{}
	released chan string
}

func newBlockingBackend() *blockingBackend {
	return &blockingBackend{
		started:  make(chan struct{}),
		gate:     make(chan struct{}),
		released: make(chan string, 2),
	}
}

func (b *blockingBackend) CompileRenderPipeline(v pipeline.Variant) error {
	close(b.started)
	<-b.gate
	v.SetRenderPipeline(&struct{ key string }{key: v.Key()})
	return nil
}

func (b *blockingBackend) ReleaseVariant(v pipeline.Variant) {
	b.released <- v.Key()
}

func TestInvalidateDuringBuildReleasesPipeline(t *testing.T) {
	backend := newBlockingBackend()
	r := newTestRenderer(t, backend)
	fs := feature.NewSet(feature.Color)

	built := make(chan pipeline.Variant, 1)
	go func() {
		v, err := r.GetOrBuild(shader.MeshTemplateID, fs)
		assert.NoError(t, err)
		built <- v
	}()

	// Evict the entry while its compile is blocked in the backend.
	<-backend.started
	assert.Equal(t, 1, r.Invalidate(shader.MeshTemplateID))

	close(backend.gate)
	v := <-built
	require.NotNil(t, v)

	// The evicted entry's pipeline is still released once the build finishes.
	select {
	case key := <-backend.released:
		assert.Equal(t, v.Key(), key)
	case <-time.After(5 * time.Second):
		t.Fatal("pipeline compiled during an invalidated build was never released")
	}

	// The key was returned to the absent state by the invalidation.
	assert.Nil(t, r.Variant(shader.MeshTemplateID, fs))
}

func TestInvalidateUnknownTemplate(t *testing.T) {
	backend := newFakeBackend()
	r := newTestRenderer(t, backend)

	assert.Equal(t, 0, r.Invalidate("nope"))
}

func TestRegisterTemplateReplacementInvalidates(t *testing.T) {
	backend := newFakeBackend()
	r := newTestRenderer(t, backend)
	fs := feature.NewSet(feature.Color)

	old, err := r.GetOrBuild(shader.MeshTemplateID, fs)
	require.NoError(t, err)

	r.RegisterTemplate(shader.NewMeshTemplate())
	assert.Nil(t, r.Variant(shader.MeshTemplateID, fs))
	assert.Equal(t, 1, backend.releaseCount(old.Key()))
}

func TestTemplateLookup(t *testing.T) {
	backend := newFakeBackend()
	r := newTestRenderer(t, backend)

	tmpl := r.Template(shader.MeshTemplateID)
	require.NotNil(t, tmpl)
	assert.Equal(t, shader.MeshTemplateID, tmpl.ID())
	assert.Nil(t, r.Template("nope"))
}

func TestWarmup(t *testing.T) {
	backend := newFakeBackend()
	r := newTestRenderer(t, backend)

	err := r.Warmup(
		VariantRequest{TemplateID: shader.MeshTemplateID, Features: feature.NewSet()},
		VariantRequest{TemplateID: shader.MeshTemplateID, Features: feature.NewSet(feature.Color)},
		VariantRequest{TemplateID: shader.MeshTemplateID, Features: feature.NewSet(feature.Color, feature.Normal)},
	)
	require.NoError(t, err)
	assert.Equal(t, 3, backend.totalCompiles())

	assert.NotNil(t, r.Variant(shader.MeshTemplateID, feature.NewSet(feature.Color)))
}

func TestWarmupReportsErrors(t *testing.T) {
	backend := newFakeBackend()
	r := newTestRenderer(t, backend)

	err := r.Warmup(
		VariantRequest{TemplateID: shader.MeshTemplateID, Features: feature.NewSet()},
		VariantRequest{TemplateID: "nope", Features: feature.NewSet()},
	)
	var uErr *UnknownTemplateError
	require.ErrorAs(t, err, &uErr)

	// The valid request still completed.
	assert.NotNil(t, r.Variant(shader.MeshTemplateID, feature.NewSet()))
}

func TestRelease(t *testing.T) {
	backend := newFakeBackend()
	r := newTestRenderer(t, backend)

	a, err := r.GetOrBuild(shader.MeshTemplateID, feature.NewSet())
	require.NoError(t, err)
	b, err := r.GetOrBuild(shader.MeshTemplateID, feature.NewSet(feature.Color))
	require.NoError(t, err)

	r.Release()
	assert.Equal(t, 1, backend.releaseCount(a.Key()))
	assert.Equal(t, 1, backend.releaseCount(b.Key()))
	assert.Nil(t, r.Variant(shader.MeshTemplateID, feature.NewSet()))
}

func TestNewRendererRequiresBackend(t *testing.T) {
	assert.Panics(t, func() {
		NewRenderer()
	})
}
