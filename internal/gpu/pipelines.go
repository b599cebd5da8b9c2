//go:build !nogpu

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"

	"github.com/gogpu/fractal"
	"github.com/gogpu/fractal/shaders"
)

const (
	colorFormat = gputypes.TextureFormatRGBA8Unorm
	depthFormat = gputypes.TextureFormatDepth32Float
)

// pipelines holds the size-independent GPU objects. They are rebuilt when
// the shader library version changes.
type pipelines struct {
	version uint64

	quadShader    *wgpu.ShaderModule
	computeShader *wgpu.ShaderModule
	presentShader *wgpu.ShaderModule

	uniformLayout *wgpu.BindGroupLayout
	computeLayout *wgpu.BindGroupLayout
	presentLayout *wgpu.BindGroupLayout

	quadPipeLayout    *wgpu.PipelineLayout
	computePipeLayout *wgpu.PipelineLayout
	presentPipeLayout *wgpu.PipelineLayout

	quadPipeline    *wgpu.RenderPipeline
	computePipeline *wgpu.ComputePipeline
	presentPipeline *wgpu.RenderPipeline

	uniforms     *wgpu.Buffer
	vertices     *wgpu.Buffer
	indices      *wgpu.Buffer
	sampler      *wgpu.Sampler
	uniformGroup *wgpu.BindGroup
}

// createPipelines validates every program with naga, then builds the quad,
// compute and present pipelines plus their shared buffers. On error the
// partially built set is released.
func createPipelines(device *wgpu.Device, queue *wgpu.Queue, lib *shaders.Library) (_ *pipelines, err error) {
	p := &pipelines{version: lib.Version()}
	defer func() {
		if err != nil {
			p.release()
		}
	}()

	if p.quadShader, err = shaderModule(device, lib, shaders.ProgramQuad); err != nil {
		return nil, err
	}
	if p.computeShader, err = shaderModule(device, lib, shaders.ProgramCompute); err != nil {
		return nil, err
	}
	if p.presentShader, err = shaderModule(device, lib, shaders.ProgramPresent); err != nil {
		return nil, err
	}

	if err := p.createLayouts(device); err != nil {
		return nil, err
	}
	if err := p.createBuffers(device, queue); err != nil {
		return nil, err
	}

	p.quadPipeline, err = device.CreateRenderPipeline(quadPipelineDesc("fractal_quad", p.quadPipeLayout, p.quadShader))
	if err != nil {
		return nil, fmt.Errorf("create quad pipeline: %w", err)
	}
	p.presentPipeline, err = device.CreateRenderPipeline(quadPipelineDesc("fractal_present", p.presentPipeLayout, p.presentShader))
	if err != nil {
		return nil, fmt.Errorf("create present pipeline: %w", err)
	}
	p.computePipeline, err = device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:      "fractal_compute",
		Layout:     p.computePipeLayout,
		Module:     p.computeShader,
		EntryPoint: shaders.ComputeEntry,
	})
	if err != nil {
		return nil, fmt.Errorf("create compute pipeline: %w", err)
	}

	p.uniformGroup, err = device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "fractal_uniforms",
		Layout: p.uniformLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: p.uniforms, Size: fractal.UniformsSize},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create uniform bind group: %w", err)
	}

	slogger().Debug("gpu: pipelines created", "shader_version", p.version)
	return p, nil
}

func shaderModule(device *wgpu.Device, lib *shaders.Library, prog shaders.Program) (*wgpu.ShaderModule, error) {
	if err := lib.Validate(prog); err != nil {
		return nil, err
	}
	src, err := lib.Source(prog)
	if err != nil {
		return nil, err
	}
	m, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: "fractal_" + string(prog),
		WGSL:  src,
	})
	if err != nil {
		return nil, fmt.Errorf("compile %s shader: %w", prog, err)
	}
	return m, nil
}

func (p *pipelines) createLayouts(device *wgpu.Device) error {
	var err error
	uniformEntry := func(vis wgpu.ShaderStages) gputypes.BindGroupLayoutEntry {
		return gputypes.BindGroupLayoutEntry{
			Binding:    0,
			Visibility: vis,
			Buffer: &gputypes.BufferBindingLayout{
				Type:           gputypes.BufferBindingTypeUniform,
				MinBindingSize: fractal.UniformsSize,
			},
		}
	}

	p.uniformLayout, err = device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   "fractal_quad_layout",
		Entries: []gputypes.BindGroupLayoutEntry{uniformEntry(wgpu.ShaderStageVertex | wgpu.ShaderStageFragment)},
	})
	if err != nil {
		return fmt.Errorf("create quad bind group layout: %w", err)
	}

	p.computeLayout, err = device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "fractal_compute_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			uniformEntry(wgpu.ShaderStageCompute),
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageCompute,
				StorageTexture: &gputypes.StorageTextureBindingLayout{
					Access:        gputypes.StorageTextureAccessWriteOnly,
					Format:        colorFormat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create compute bind group layout: %w", err)
	}

	p.presentLayout, err = device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "fractal_present_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create present bind group layout: %w", err)
	}

	layouts := []struct {
		dst    **wgpu.PipelineLayout
		label  string
		groups *wgpu.BindGroupLayout
	}{
		{&p.quadPipeLayout, "fractal_quad_pipe_layout", p.uniformLayout},
		{&p.computePipeLayout, "fractal_compute_pipe_layout", p.computeLayout},
		{&p.presentPipeLayout, "fractal_present_pipe_layout", p.presentLayout},
	}
	for _, l := range layouts {
		*l.dst, err = device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
			Label:            l.label,
			BindGroupLayouts: []*wgpu.BindGroupLayout{l.groups},
		})
		if err != nil {
			return fmt.Errorf("create %s: %w", l.label, err)
		}
	}
	return nil
}

func (p *pipelines) createBuffers(device *wgpu.Device, queue *wgpu.Queue) error {
	var err error
	p.uniforms, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "fractal_uniforms",
		Size:  fractal.UniformsSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create uniform buffer: %w", err)
	}

	vb := quadVertexBytes()
	p.vertices, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "fractal_quad_vertices",
		Size:  uint64(len(vb)),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create vertex buffer: %w", err)
	}
	if err := queue.WriteBuffer(p.vertices, 0, vb); err != nil {
		return fmt.Errorf("upload vertices: %w", err)
	}

	ib := quadIndexBytes()
	p.indices, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "fractal_quad_indices",
		Size:  uint64(len(ib)),
		Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create index buffer: %w", err)
	}
	if err := queue.WriteBuffer(p.indices, 0, ib); err != nil {
		return fmt.Errorf("upload indices: %w", err)
	}

	p.sampler, err = device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:        "fractal_present_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeNearest,
		LodMaxClamp:  32,
	})
	if err != nil {
		return fmt.Errorf("create sampler: %w", err)
	}
	return nil
}

// quadPipelineDesc describes a fullscreen-quad render pipeline. The depth
// state matches the Depth32Float attachment every pass carries; depth is
// cleared to 1.0 and the quad at z=0 always passes.
func quadPipelineDesc(label string, layout *wgpu.PipelineLayout, module *wgpu.ShaderModule) *wgpu.RenderPipelineDescriptor {
	keep := wgpu.StencilFaceState{
		Compare:     gputypes.CompareFunctionAlways,
		FailOp:      wgpu.StencilOperationKeep,
		DepthFailOp: wgpu.StencilOperationKeep,
		PassOp:      wgpu.StencilOperationKeep,
	}
	return &wgpu.RenderPipelineDescriptor{
		Label:  label,
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: shaders.VertexEntry,
			Buffers: []gputypes.VertexBufferLayout{{
				ArrayStride: 8,
				StepMode:    gputypes.VertexStepModeVertex,
				Attributes: []gputypes.VertexAttribute{
					{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
				},
			}},
		},
		Primitive: gputypes.PrimitiveState{
			Topology:  gputypes.PrimitiveTopologyTriangleList,
			FrontFace: gputypes.FrontFaceCCW,
			CullMode:  gputypes.CullModeNone,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            depthFormat,
			DepthWriteEnabled: true,
			DepthCompare:      gputypes.CompareFunctionAlways,
			StencilFront:      keep,
			StencilBack:       keep,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  math.MaxUint32,
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: shaders.FragmentEntry,
			Targets: []gputypes.ColorTargetState{
				{Format: colorFormat, WriteMask: gputypes.ColorWriteMaskAll},
			},
		},
	}
}

// release frees everything in reverse creation order. Nil fields are
// skipped so a partial set can be released.
func (p *pipelines) release() {
	if p == nil {
		return
	}
	free(p.uniformGroup)
	free(p.computePipeline)
	free(p.presentPipeline)
	free(p.quadPipeline)
	free(p.sampler)
	free(p.indices)
	free(p.vertices)
	free(p.uniforms)
	free(p.presentPipeLayout)
	free(p.computePipeLayout)
	free(p.quadPipeLayout)
	free(p.presentLayout)
	free(p.computeLayout)
	free(p.uniformLayout)
	free(p.presentShader)
	free(p.computeShader)
	free(p.quadShader)
	*p = pipelines{}
}

// free releases a wgpu object if it was created.
func free[T any, P interface {
	*T
	Release()
}](obj P) {
	if obj != nil {
		obj.Release()
	}
}
