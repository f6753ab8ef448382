package renderer

import (
	"fmt"

	"github.com/Anti-Alias/prism-go/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// Shader entry point names every template must define. The mesh template and
// any custom template compiled through this backend use these function names.
const (
	vertexEntryPoint   = "vertex_main"
	fragmentEntryPoint = "fragment_main"
)

// wgpuRendererBackendImpl is the production RendererBackend over a WebGPU
// device. Compilation must happen on the goroutine holding the device context
// unless the underlying wgpu implementation is thread-safe.
type wgpuRendererBackendImpl struct {
	device        *wgpu.Device
	surfaceFormat wgpu.TextureFormat
	depthFormat   wgpu.TextureFormat
	sampleCount   uint32
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

// NewWGPURendererBackend creates a RendererBackend compiling pipeline variants
// on the given WebGPU device. The device is required; this panics if it is nil.
//
// Parameters:
//   - device: the WebGPU device that owns created pipelines
//   - opts: builder options configuring surface format, depth format, and MSAA
//
// Returns:
//   - RendererBackend: a new backend bound to the device
func NewWGPURendererBackend(device *wgpu.Device, opts ...WGPUBackendBuilderOption) RendererBackend {
	if device == nil {
		panic("renderer: wgpu backend requires a device")
	}
	b := &wgpuRendererBackendImpl{
		device:        device,
		surfaceFormat: wgpu.TextureFormatBGRA8Unorm,
		depthFormat:   wgpu.TextureFormatDepth24Plus,
		sampleCount:   1,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *wgpuRendererBackendImpl) CompileRenderPipeline(v pipeline.Variant) error {
	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: v.Key(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: v.Source(),
		},
	})
	if err != nil {
		return err
	}
	defer module.Release()

	bindGroupLayoutDesc := v.BindGroupLayout()
	bindGroupLayout, err := b.device.CreateBindGroupLayout(&bindGroupLayoutDesc)
	if err != nil {
		return fmt.Errorf("failed to create bind group layout: %w", err)
	}
	defer bindGroupLayout.Release()

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            v.Key(),
		BindGroupLayouts: []*wgpu.BindGroupLayout{bindGroupLayout},
	})
	if err != nil {
		return err
	}
	defer pipelineLayout.Release()

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  v.Key() + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: vertexEntryPoint,
			Buffers:    v.VertexLayouts(),
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: fragmentEntryPoint,
			Targets: []wgpu.ColorTargetState{
				func() wgpu.ColorTargetState {
					state := wgpu.ColorTargetState{
						Format:    b.surfaceFormat,
						WriteMask: v.WriteMask(),
					}
					if v.BlendEnabled() {
						state.Blend = v.BlendState()
					}
					return state
				}(),
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  v.Topology(),
			FrontFace: v.FrontFace(),
			CullMode:  v.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: b.sampleCount,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: func() *wgpu.DepthStencilState {
			depthCompare := wgpu.CompareFunctionLess
			if !v.DepthTestEnabled() {
				depthCompare = wgpu.CompareFunctionAlways
			}
			return &wgpu.DepthStencilState{
				Format:              b.depthFormat,
				DepthWriteEnabled:   v.DepthWriteEnabled(),
				DepthCompare:        depthCompare,
				DepthBias:           v.DepthBias(),
				DepthBiasSlopeScale: v.DepthBiasSlopeScale(),
				StencilFront: wgpu.StencilFaceState{
					Compare: wgpu.CompareFunctionAlways,
				},
				StencilBack: wgpu.StencilFaceState{
					Compare: wgpu.CompareFunctionAlways,
				},
			}
		}(),
	})
	if err != nil {
		return err
	}

	v.SetRenderPipeline(created)
	return nil
}

func (b *wgpuRendererBackendImpl) ReleaseVariant(v pipeline.Variant) {
	if rp, ok := v.Pipeline().(*wgpu.RenderPipeline); ok && rp != nil {
		rp.Release()
	}
}

// WGPUBackendBuilderOption is a functional option used to configure the wgpu backend during construction.
type WGPUBackendBuilderOption func(*wgpuRendererBackendImpl)

// WithSurfaceFormat sets the color target format variants are compiled
// against. Defaults to BGRA8Unorm.
//
// Parameters:
//   - format: the surface texture format
//
// Returns:
//   - WGPUBackendBuilderOption: a function that sets the surface format
func WithSurfaceFormat(format wgpu.TextureFormat) WGPUBackendBuilderOption {
	return func(b *wgpuRendererBackendImpl) {
		b.surfaceFormat = format
	}
}

// WithDepthFormat sets the depth attachment format variants are compiled
// against. Defaults to Depth24Plus.
//
// Parameters:
//   - format: the depth texture format
//
// Returns:
//   - WGPUBackendBuilderOption: a function that sets the depth format
func WithDepthFormat(format wgpu.TextureFormat) WGPUBackendBuilderOption {
	return func(b *wgpuRendererBackendImpl) {
		b.depthFormat = format
	}
}

// WithSampleCount sets the MSAA sample count variants are compiled against.
// Defaults to 1 (no MSAA).
//
// Parameters:
//   - count: the sample count
//
// Returns:
//   - WGPUBackendBuilderOption: a function that sets the sample count
func WithSampleCount(count uint32) WGPUBackendBuilderOption {
	return func(b *wgpuRendererBackendImpl) {
		if count >= 1 {
			b.sampleCount = count
		}
	}
}
