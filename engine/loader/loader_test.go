package loader

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/Anti-Alias/prism-go/engine/renderer"
	"github.com/Anti-Alias/prism-go/engine/renderer/feature"
	"github.com/Anti-Alias/prism-go/engine/renderer/pipeline"
	"github.com/Anti-Alias/prism-go/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubBackend accepts every compile without touching a GPU.
type stubBackend struct{}

func (stubBackend) CompileRenderPipeline(v pipeline.Variant) error {
	v.SetRenderPipeline(&struct{ key string }{key: v.Key()})
	return nil
}

func (stubBackend) ReleaseVariant(pipeline.Variant) {}

const unlitSource = `struct VertexInput {
    #vertex_input
};

@vertex
fn vertex_main(vertex: VertexInput) -> @builtin(position) vec4<f32> {
    return vec4<f32>(vertex.position, 1.0);
}

@fragment
fn fragment_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0);
}
`

func newTestLoader(t *testing.T, fsys *fstest.MapFS, opts ...LoaderBuilderOption) (Loader, renderer.Renderer) {
	t.Helper()
	r := renderer.NewRenderer(renderer.WithBackend(stubBackend{}))
	opts = append([]LoaderBuilderOption{WithRenderer(r), WithFS(fsys)}, opts...)
	return NewLoader(opts...), r
}

func testFS() *fstest.MapFS {
	return &fstest.MapFS{
		"shaders/unlit.wgsl": &fstest.MapFile{Data: []byte(unlitSource)},
	}
}

func TestLoadRegistersTemplate(t *testing.T) {
	l, r := newTestLoader(t, testFS(),
		WithTemplateOptions("unlit", shader.WithVertexAttributes(
			shader.AttributeDecl{Name: "position", Format: wgpu.VertexFormatFloat32x3},
		)),
	)

	tmpl, err := l.Load("shaders/unlit.wgsl")
	require.NoError(t, err)
	assert.Equal(t, "unlit", tmpl.ID())

	registered := r.Template("unlit")
	require.NotNil(t, registered)
	assert.Equal(t, tmpl, registered)

	v, err := r.GetOrBuild("unlit", feature.NewSet())
	require.NoError(t, err)
	assert.Contains(t, v.Source(), "@location(0) position: vec3<f32>,")
}

func TestLoadReturnsCached(t *testing.T) {
	fsys := testFS()
	l, _ := newTestLoader(t, fsys)

	first, err := l.Load("shaders/unlit.wgsl")
	require.NoError(t, err)

	// Changing the file does not affect cached loads.
	(*fsys)["shaders/unlit.wgsl"] = &fstest.MapFile{Data: []byte("changed")}
	second, err := l.Load("shaders/unlit.wgsl")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestLoadMissingFile(t *testing.T) {
	l, _ := newTestLoader(t, testFS())

	_, err := l.Load("shaders/missing.wgsl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shaders/missing.wgsl")
	assert.Nil(t, l.Get("missing"))
}

func TestLoadMalformedTemplate(t *testing.T) {
	fsys := testFS()
	(*fsys)["shaders/broken.wgsl"] = &fstest.MapFile{Data: []byte("#ifdef COLOR\nno endif")}
	l, r := newTestLoader(t, fsys)

	_, err := l.Load("shaders/broken.wgsl")
	var mErr *shader.MalformedTemplateError
	require.ErrorAs(t, err, &mErr)
	assert.Equal(t, shader.MalformedMissingEndif, mErr.Kind)
	assert.Nil(t, l.Get("broken"))
	assert.Nil(t, r.Template("broken"))
}

func TestLoadReader(t *testing.T) {
	l, r := newTestLoader(t, testFS())

	tmpl, err := l.LoadReader("inline", strings.NewReader(unlitSource))
	require.NoError(t, err)
	assert.Equal(t, "inline", tmpl.ID())
	assert.NotNil(t, r.Template("inline"))
}

func TestReloadInvalidatesVariants(t *testing.T) {
	fsys := testFS()
	l, r := newTestLoader(t, fsys)

	_, err := l.Load("shaders/unlit.wgsl")
	require.NoError(t, err)
	old, err := r.GetOrBuild("unlit", feature.NewSet())
	require.NoError(t, err)

	edited := strings.Replace(unlitSource, "vec4<f32>(1.0)", "vec4<f32>(0.5)", 1)
	(*fsys)["shaders/unlit.wgsl"] = &fstest.MapFile{Data: []byte(edited)}

	reloaded, err := l.Reload("shaders/unlit.wgsl")
	require.NoError(t, err)
	assert.Contains(t, reloaded.Source(), "vec4<f32>(0.5)")
	assert.Equal(t, reloaded, l.Get("unlit"))

	// The old variant was evicted; the next request compiles the new source.
	assert.Nil(t, r.Variant("unlit", feature.NewSet()))
	rebuilt, err := r.GetOrBuild("unlit", feature.NewSet())
	require.NoError(t, err)
	assert.NotEqual(t, old.Source(), rebuilt.Source())
}

func TestReloadKeepsPreviousOnParseFailure(t *testing.T) {
	fsys := testFS()
	l, r := newTestLoader(t, fsys)

	good, err := l.Load("shaders/unlit.wgsl")
	require.NoError(t, err)

	(*fsys)["shaders/unlit.wgsl"] = &fstest.MapFile{Data: []byte("#endif")}
	_, err = l.Reload("shaders/unlit.wgsl")
	require.Error(t, err)

	assert.Equal(t, good, l.Get("unlit"))
	assert.Equal(t, good, r.Template("unlit"))
}

func TestTemplatesSnapshot(t *testing.T) {
	l, _ := newTestLoader(t, testFS())

	_, err := l.Load("shaders/unlit.wgsl")
	require.NoError(t, err)

	all := l.Templates()
	require.Len(t, all, 1)
	assert.Contains(t, all, "unlit")
}

func TestNewLoaderRequiresRenderer(t *testing.T) {
	assert.Panics(t, func() {
		NewLoader()
	})
}
