//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"

	"github.com/gogpu/fractal"
)

// targets holds the size-dependent resources: the color attachment the
// passes draw into, its depth buffer, the compute output and the readback
// buffer. They are recreated when the frame size changes.
type targets struct {
	width, height uint32
	pitch         uint32

	color     *wgpu.Texture
	colorView *wgpu.TextureView
	depth     *wgpu.Texture
	depthView *wgpu.TextureView

	storage     *wgpu.Texture
	storageView *wgpu.TextureView

	readback *wgpu.Buffer

	computeGroup *wgpu.BindGroup
	presentGroup *wgpu.BindGroup
}

func (t *targets) matches(width, height int) bool {
	return t != nil && t.width == uint32(width) && t.height == uint32(height)
}

func (t *targets) readbackSize() uint64 {
	return uint64(t.pitch) * uint64(t.height)
}

func createTargets(device *wgpu.Device, p *pipelines, width, height int) (_ *targets, err error) {
	t := &targets{
		width:  uint32(width),
		height: uint32(height),
		pitch:  paddedRowBytes(uint32(width)),
	}
	defer func() {
		if err != nil {
			t.release()
		}
	}()

	size := wgpu.Extent3D{Width: t.width, Height: t.height, DepthOrArrayLayers: 1}
	texture := func(label string, format gputypes.TextureFormat, usage gputypes.TextureUsage) (*wgpu.Texture, *wgpu.TextureView, error) {
		tex, err := device.CreateTexture(&wgpu.TextureDescriptor{
			Label:         label,
			Size:          size,
			MipLevelCount: 1,
			SampleCount:   1,
			Dimension:     wgpu.TextureDimension2D,
			Format:        format,
			Usage:         usage,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("create %s: %w", label, err)
		}
		view, err := device.CreateTextureView(tex, nil)
		if err != nil {
			tex.Release()
			return nil, nil, fmt.Errorf("create %s view: %w", label, err)
		}
		return tex, view, nil
	}

	if t.color, t.colorView, err = texture("fractal_color", colorFormat,
		wgpu.TextureUsageRenderAttachment|wgpu.TextureUsageCopySrc); err != nil {
		return nil, err
	}
	if t.depth, t.depthView, err = texture("fractal_depth", depthFormat,
		wgpu.TextureUsageRenderAttachment); err != nil {
		return nil, err
	}
	if t.storage, t.storageView, err = texture("fractal_compute_out", colorFormat,
		wgpu.TextureUsageStorageBinding|wgpu.TextureUsageTextureBinding); err != nil {
		return nil, err
	}

	t.readback, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "fractal_readback",
		Size:  t.readbackSize(),
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create readback buffer: %w", err)
	}

	t.computeGroup, err = device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "fractal_compute_group",
		Layout: p.computeLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: p.uniforms, Size: fractal.UniformsSize},
			{Binding: 1, TextureView: t.storageView},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create compute bind group: %w", err)
	}

	t.presentGroup, err = device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "fractal_present_group",
		Layout: p.presentLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: t.storageView},
			{Binding: 1, Sampler: p.sampler},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create present bind group: %w", err)
	}

	slogger().Debug("gpu: targets created", "width", width, "height", height, "pitch", t.pitch)
	return t, nil
}

func (t *targets) release() {
	if t == nil {
		return
	}
	free(t.presentGroup)
	free(t.computeGroup)
	free(t.readback)
	free(t.storageView)
	free(t.storage)
	free(t.depthView)
	free(t.depth)
	free(t.colorView)
	free(t.color)
	*t = targets{}
}
