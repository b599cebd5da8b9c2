//go:build !nogpu

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"

	"github.com/gogpu/fractal"
	"github.com/gogpu/fractal/shaders"
)

// mapTimeout bounds the wait for a readback when the caller's context has
// no deadline of its own.
const mapTimeout = 5 * time.Second

// clearColor is the color every pass clears its attachment to.
var clearColor = gputypes.Color{R: 0.1, G: 0.1, B: 0.15, A: 1}

// Stats describes the engine's activity so far.
type Stats struct {
	Frames        uint64
	LastMode      fractal.RenderMode
	Adapter       string
	ShaderVersion uint64
}

// Engine renders fractal frames on a wgpu device. It implements
// fractal.Backend and fractal.DeviceProviderAware.
//
// The device is either created by Init (standalone) or borrowed from a
// gpucontext.DeviceProvider. A borrowed device is never released.
type Engine struct {
	mu sync.Mutex

	lib      *shaders.Library
	ownedLib bool

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	external bool

	pipes   *pipelines
	targets *targets
	stats   Stats
	ready   bool
}

// NewEngine returns an engine that compiles its programs from lib. A nil
// lib uses the embedded shader sources.
func NewEngine(lib *shaders.Library) *Engine {
	return &Engine{lib: lib}
}

// Name implements fractal.Backend.
func (e *Engine) Name() string { return "wgpu" }

// SetLogger routes engine diagnostics to l.
func (e *Engine) SetLogger(l *slog.Logger) { setLogger(l) }

// Library returns the shader library the engine compiles from.
func (e *Engine) Library() *shaders.Library {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lib
}

// Init creates a standalone device. A software adapter is rejected with
// fractal.ErrFallbackToCPU since the CPU evaluator is faster than an
// emulated GPU.
func (e *Engine) Init() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ready {
		return nil
	}
	if err := e.ensureLibLocked(); err != nil {
		return err
	}

	instance, err := wgpu.CreateInstance(&wgpu.InstanceDescriptor{
		Backends: wgpu.BackendsAll,
	})
	if err != nil {
		return fmt.Errorf("create instance: %w", err)
	}
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		instance.Release()
		return fmt.Errorf("request adapter: %w", err)
	}
	info := adapter.Info()
	if info.DeviceType == gputypes.DeviceTypeCPU {
		slogger().Info("gpu: software adapter detected, using CPU", "adapter", info.Name)
		adapter.Release()
		instance.Release()
		return fractal.ErrFallbackToCPU
	}
	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{Label: "fractal"})
	if err != nil {
		adapter.Release()
		instance.Release()
		return fmt.Errorf("request device: %w", err)
	}

	e.instance = instance
	e.adapter = adapter
	e.device = device
	e.queue = device.Queue()
	e.external = false
	e.stats.Adapter = info.Name

	if err := e.buildPipelinesLocked(); err != nil {
		e.releaseLocked()
		return err
	}
	e.ready = true
	slogger().Info("gpu: engine initialized", "adapter", info.Name)
	return nil
}

// SetDeviceProvider switches the engine to a device owned by provider,
// which must be a gpucontext.DeviceProvider backed by wgpu. A software
// adapter leaves the engine uninitialized so every frame falls back to
// the CPU.
func (e *Engine) SetDeviceProvider(provider any) error {
	dp, ok := provider.(gpucontext.DeviceProvider)
	if !ok {
		return fmt.Errorf("gpu: %T is not a gpucontext.DeviceProvider", provider)
	}

	var name string
	if a, ok := dp.Adapter().(*wgpu.Adapter); ok && a != nil {
		info := a.Info()
		if info.DeviceType == gputypes.DeviceTypeCPU {
			slogger().Info("gpu: shared software adapter, GPU rendering disabled", "adapter", info.Name)
			e.mu.Lock()
			e.releaseLocked()
			e.mu.Unlock()
			return nil
		}
		name = info.Name
	}

	dev, ok := dp.Device().(*wgpu.Device)
	if !ok || dev == nil {
		return fmt.Errorf("gpu: provider device is not *wgpu.Device (got %T)", dp.Device())
	}
	queue := dev.Queue()
	if queue == nil {
		return errors.New("gpu: provider queue is nil")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ensureLibLocked(); err != nil {
		return err
	}
	e.releaseLocked()
	e.device = dev
	e.queue = queue
	e.external = true
	e.stats.Adapter = name
	if err := e.buildPipelinesLocked(); err != nil {
		e.releaseLocked()
		return err
	}
	e.ready = true
	slogger().Info("gpu: using shared device", "adapter", name)
	return nil
}

// CanRender implements fractal.Backend. Both GPU paths are available once
// the engine holds a device.
func (e *Engine) CanRender(mode fractal.RenderMode) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ready && (mode == fractal.ModeRaster || mode == fractal.ModeCompute)
}

// Stats returns a snapshot of the engine counters.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// Render implements fractal.Backend. It uploads the frame's uniforms,
// encodes either the raster or the compute+present passes into an
// offscreen color target, and reads the result back into target.
func (e *Engine) Render(ctx context.Context, target fractal.Target, frame fractal.Frame) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.ready {
		return fractal.ErrFallbackToCPU
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if e.pipes == nil || e.pipes.version != e.lib.Version() {
		if err := e.buildPipelinesLocked(); err != nil {
			return err
		}
	}
	if !e.targets.matches(frame.Width, frame.Height) {
		e.targets.release()
		e.targets = nil
		t, err := createTargets(e.device, e.pipes, frame.Width, frame.Height)
		if err != nil {
			return err
		}
		e.targets = t
	}

	if err := e.queue.WriteBuffer(e.pipes.uniforms, 0, fractal.NewUniforms(frame).Bytes()); err != nil {
		return fmt.Errorf("upload uniforms: %w", err)
	}

	cmd, err := e.encode(frame.Mode)
	if err != nil {
		return err
	}
	_, err = e.queue.Submit(cmd)
	cmd.Release()
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}

	if err := e.readback(ctx, target); err != nil {
		return err
	}
	e.stats.Frames++
	e.stats.LastMode = frame.Mode
	return nil
}

func (e *Engine) encode(mode fractal.RenderMode) (*wgpu.CommandBuffer, error) {
	p, t := e.pipes, e.targets
	encoder, err := e.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: "fractal_frame"})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}

	switch mode {
	case fractal.ModeCompute:
		pass, err := encoder.BeginComputePass(&wgpu.ComputePassDescriptor{Label: "fractal_compute"})
		if err != nil {
			return nil, fmt.Errorf("begin compute pass: %w", err)
		}
		pass.SetPipeline(p.computePipeline)
		pass.SetBindGroup(0, t.computeGroup, nil)
		pass.Dispatch(dispatchSize(t.width, shaders.WorkgroupSize), dispatchSize(t.height, shaders.WorkgroupSize), 1)
		if err := pass.End(); err != nil {
			return nil, fmt.Errorf("end compute pass: %w", err)
		}
		if err := e.drawQuad(encoder, "fractal_present", p.presentPipeline, t.presentGroup); err != nil {
			return nil, err
		}
	default:
		if err := e.drawQuad(encoder, "fractal_quad", p.quadPipeline, p.uniformGroup); err != nil {
			return nil, err
		}
	}

	encoder.CopyTextureToBuffer(t.color, t.readback, []wgpu.BufferTextureCopy{{
		BufferLayout: wgpu.ImageDataLayout{BytesPerRow: t.pitch, RowsPerImage: t.height},
		TextureBase:  wgpu.ImageCopyTexture{Texture: t.color},
		Size:         wgpu.Extent3D{Width: t.width, Height: t.height, DepthOrArrayLayers: 1},
	}})

	cmd, err := encoder.Finish()
	if err != nil {
		return nil, fmt.Errorf("finish encoder: %w", err)
	}
	return cmd, nil
}

// drawQuad records one render pass that clears color and depth and draws
// the fullscreen quad with pipeline and group.
func (e *Engine) drawQuad(encoder *wgpu.CommandEncoder, label string, pipeline *wgpu.RenderPipeline, group *wgpu.BindGroup) error {
	p, t := e.pipes, e.targets
	pass, err := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: label,
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       t.colorView,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: clearColor,
		}},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            t.depthView,
			DepthLoadOp:     gputypes.LoadOpClear,
			DepthStoreOp:    gputypes.StoreOpStore,
			DepthClearValue: 1.0,
		},
	})
	if err != nil {
		return fmt.Errorf("begin %s pass: %w", label, err)
	}
	pass.SetPipeline(pipeline)
	pass.SetBindGroup(0, group, nil)
	pass.SetVertexBuffer(0, p.vertices, 0)
	pass.SetIndexBuffer(p.indices, gputypes.IndexFormatUint16, 0)
	pass.DrawIndexed(uint32(len(quadIndices)), 1, 0, 0, 0)
	if err := pass.End(); err != nil {
		return fmt.Errorf("end %s pass: %w", label, err)
	}
	return nil
}

func (e *Engine) readback(ctx context.Context, target fractal.Target) error {
	t := e.targets
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, mapTimeout)
		defer cancel()
	}
	size := t.readbackSize()
	if err := t.readback.Map(ctx, wgpu.MapModeRead, 0, size); err != nil {
		return fmt.Errorf("map readback: %w", err)
	}
	rng, err := t.readback.MappedRange(0, size)
	if err != nil {
		_ = t.readback.Unmap()
		return fmt.Errorf("mapped range: %w", err)
	}
	unpadRows(rng.Bytes(), int(t.pitch), target)
	rng.Release()
	if err := t.readback.Unmap(); err != nil {
		return fmt.Errorf("unmap readback: %w", err)
	}
	return nil
}

// Close releases every GPU object. A shared device is left to its owner.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.releaseLocked()
	if e.ownedLib && e.lib != nil {
		e.lib.Close()
		e.lib = nil
		e.ownedLib = false
	}
}

func (e *Engine) ensureLibLocked() error {
	if e.lib != nil {
		return nil
	}
	lib, err := shaders.NewLibrary("")
	if err != nil {
		return err
	}
	e.lib = lib
	e.ownedLib = true
	return nil
}

func (e *Engine) buildPipelinesLocked() error {
	p, err := createPipelines(e.device, e.queue, e.lib)
	if err != nil {
		return err
	}
	// Size-dependent bind groups reference the old uniform buffer.
	e.targets.release()
	e.targets = nil
	e.pipes.release()
	e.pipes = p
	e.stats.ShaderVersion = p.version
	return nil
}

func (e *Engine) releaseLocked() {
	e.targets.release()
	e.targets = nil
	e.pipes.release()
	e.pipes = nil
	if !e.external {
		free(e.device)
		free(e.adapter)
		free(e.instance)
	}
	e.device = nil
	e.adapter = nil
	e.instance = nil
	e.queue = nil
	e.external = false
	e.ready = false
}
