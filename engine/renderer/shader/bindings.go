// bindings.go resolves a template's binding declaration table against a
// feature set into compact binding indices and a wgpu bind group layout
// descriptor. It applies the same inclusion predicate as the preprocessor's
// generated #bindings declarations, keeping indices and source text aligned.
package shader

import (
	"github.com/Anti-Alias/prism-go/engine/renderer/feature"
	"github.com/cogentcore/webgpu/wgpu"
)

// ResolvedBinding is one included binding declaration with its assigned
// binding index for a specific feature set.
type ResolvedBinding struct {
	BindingDecl

	// Binding is the assigned binding index within group 0.
	Binding uint32
}

// ResolveBindings derives the included bindings for one template and feature
// set, assigning indices compactly in declaration order starting at 0. A
// template declaring its per-draw uniform block first and unconditionally
// therefore always sees it at binding 0.
//
// Parameters:
//   - t: the template whose binding table to resolve
//   - fs: the feature set selecting bindings
//
// Returns:
//   - []ResolvedBinding: the included bindings in index order
//   - error: a *MalformedTemplateError on flag requirement violations
func ResolveBindings(t Template, fs feature.Set) ([]ResolvedBinding, error) {
	if err := validateFeatures(t, fs); err != nil {
		return nil, err
	}
	var out []ResolvedBinding
	index := uint32(0)
	for _, d := range t.Bindings() {
		if !included(d.Flag, fs) {
			continue
		}
		out = append(out, ResolvedBinding{BindingDecl: d, Binding: index})
		index++
	}
	return out, nil
}

// ResolveBindGroupLayout derives the group-0 bind group layout descriptor for
// one template and feature set. Entry order follows resolved binding order.
//
// Parameters:
//   - t: the template whose binding table to resolve
//   - fs: the feature set selecting bindings
//
// Returns:
//   - wgpu.BindGroupLayoutDescriptor: the layout descriptor for group 0
//   - error: a *MalformedTemplateError on flag requirement violations
func ResolveBindGroupLayout(t Template, fs feature.Set) (wgpu.BindGroupLayoutDescriptor, error) {
	resolved, err := ResolveBindings(t, fs)
	if err != nil {
		return wgpu.BindGroupLayoutDescriptor{}, err
	}
	entries := make([]wgpu.BindGroupLayoutEntry, 0, len(resolved))
	for _, b := range resolved {
		entry := wgpu.BindGroupLayoutEntry{
			Binding:    b.Binding,
			Visibility: b.Visibility,
		}
		switch b.Kind {
		case BindingUniformBuffer:
			entry.Buffer.Type = wgpu.BufferBindingTypeUniform
		case BindingTexture:
			entry.Texture.SampleType = wgpu.TextureSampleTypeFloat
			entry.Texture.ViewDimension = wgpu.TextureViewDimension2D
		case BindingSampler:
			entry.Sampler.Type = wgpu.SamplerBindingTypeFiltering
		}
		entries = append(entries, entry)
	}
	return wgpu.BindGroupLayoutDescriptor{Entries: entries}, nil
}
