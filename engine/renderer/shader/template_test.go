package shader

import (
	"strings"
	"testing"

	"github.com/Anti-Alias/prism-go/engine/renderer/feature"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTemplateMalformed(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		wantKind MalformedKind
		wantLine int
	}{
		{
			name:     "missing endif",
			source:   "#ifdef COLOR\nlet a = 1.0;",
			wantKind: MalformedMissingEndif,
			wantLine: 1,
		},
		{
			name:     "missing endif reports remaining open region",
			source:   "#ifdef COLOR\n#ifdef UV\nlet a = 1.0;\n#endif",
			wantKind: MalformedMissingEndif,
			wantLine: 1,
		},
		{
			name:     "unexpected endif",
			source:   "let a = 1.0;\n#endif",
			wantKind: MalformedUnexpectedEndif,
			wantLine: 2,
		},
		{
			name:     "endif with parameter",
			source:   "#ifdef COLOR\n#endif COLOR",
			wantKind: MalformedUnexpectedParam,
			wantLine: 2,
		},
		{
			name:     "unknown flag",
			source:   "#ifdef SPARKLES\n#endif",
			wantKind: MalformedUnknownFlag,
			wantLine: 1,
		},
		{
			name:     "unknown flag in ifndef",
			source:   "#ifndef SPARKLES\n#endif",
			wantKind: MalformedUnknownFlag,
			wantLine: 1,
		},
		{
			name:     "invalid directive",
			source:   "#pragma once",
			wantKind: MalformedInvalidDirective,
			wantLine: 1,
		},
		{
			name:     "include without name",
			source:   "#include",
			wantKind: MalformedInvalidDirective,
			wantLine: 1,
		},
		{
			name:     "vertex_input with parameter",
			source:   "#vertex_input extra",
			wantKind: MalformedUnexpectedParam,
			wantLine: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTemplate("test", tt.source)
			var mErr *MalformedTemplateError
			require.ErrorAs(t, err, &mErr)
			assert.Equal(t, tt.wantKind, mErr.Kind)
			assert.Equal(t, tt.wantLine, mErr.Line)
			assert.Equal(t, "test", mErr.TemplateID)
		})
	}
}

func TestNewTemplatePartialTexturePair(t *testing.T) {
	_, err := NewTemplate("test", "",
		WithBindings(BindingDecl{
			Name:       "lone_tex",
			Kind:       BindingTexture,
			Type:       "texture_2d<f32>",
			Visibility: wgpu.ShaderStageFragment,
			Flag:       feature.BaseColorTex,
		}),
	)
	var mErr *MalformedTemplateError
	require.ErrorAs(t, err, &mErr)
	assert.Equal(t, MalformedPartialTexturePair, mErr.Kind)
	assert.Equal(t, "BASE_COLOR_TEX", mErr.Detail)
}

func TestNewTemplateUnconditionalTextureAllowed(t *testing.T) {
	// The pair check only applies to conditional entries; an always-present
	// texture without a flag-gated counterpart is the author's business.
	_, err := NewTemplate("test", "",
		WithBindings(BindingDecl{
			Name:       "tex",
			Kind:       BindingTexture,
			Type:       "texture_2d<f32>",
			Visibility: wgpu.ShaderStageFragment,
		}),
	)
	require.NoError(t, err)
}

func TestNewTemplatePanicsOnEmptyID(t *testing.T) {
	assert.Panics(t, func() {
		_, _ = NewTemplate("", "let a = 1.0;")
	})
}

func TestNewTemplatePanicsOnBadDeclarations(t *testing.T) {
	assert.Panics(t, func() {
		_, _ = NewTemplate("test", "", WithVertexAttributes(AttributeDecl{Format: wgpu.VertexFormatFloat32x3}))
	})
	assert.Panics(t, func() {
		_, _ = NewTemplate("test", "", WithBindings(BindingDecl{Name: "material"}))
	})
}

func TestTemplateAccessors(t *testing.T) {
	src := "#ifdef COLOR\nlet a = 1.0;\n#endif"
	tmpl := mustTemplate(t, "accessors", src,
		WithVertexAttributes(MeshVertexAttributes...),
		WithInstanceAttributes(MeshInstanceAttributes...),
		WithBindings(MeshBindings...),
		WithFlagRequirement(feature.BaseColorTex, feature.UV),
	)

	assert.Equal(t, "accessors", tmpl.ID())
	assert.Equal(t, src, tmpl.Source())
	assert.Equal(t, MeshVertexAttributes, tmpl.VertexAttributes())
	assert.Equal(t, MeshInstanceAttributes, tmpl.InstanceAttributes())
	assert.Equal(t, MeshBindings, tmpl.Bindings())
	require.Len(t, tmpl.FlagRequirements(), 1)
	assert.Equal(t, feature.BaseColorTex, tmpl.FlagRequirements()[0].Flag)
	assert.Equal(t, feature.UV, tmpl.FlagRequirements()[0].Requires)
}

func TestMalformedTemplateErrorMessage(t *testing.T) {
	err := &MalformedTemplateError{TemplateID: "mesh", Line: 7, Kind: MalformedUnknownFlag, Detail: "SPARKLES"}
	msg := err.Error()
	assert.Contains(t, msg, `"mesh"`)
	assert.Contains(t, msg, "line 7")
	assert.Contains(t, msg, "SPARKLES")

	err = &MalformedTemplateError{TemplateID: "mesh", Kind: MalformedMissingRequiredFlag, Detail: "BASE_COLOR_TEX requires UV"}
	assert.False(t, strings.Contains(err.Error(), "line"))
}

func TestNewMeshTemplateParses(t *testing.T) {
	tmpl := NewMeshTemplate()
	assert.Equal(t, MeshTemplateID, tmpl.ID())
	assert.NotEmpty(t, tmpl.Source())
}
