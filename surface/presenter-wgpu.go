//go:build !js

package surface

import (
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/oliverbestmann/webgpu/wgpu"
	lru "github.com/hashicorp/golang-lru/v2"
)

//go:embed blit.wgsl
var blitShaderCode string

func init() {
	Register("wgpu", func(desc *wgpu.SurfaceDescriptor, windowWidth, windowHeight int) (Presenter, error) {
		return newWgpuPresenter(desc, windowWidth, windowHeight)
	})
}

// uploadTexture is the GPU-side copy of a pixel buffer of one
// particular size, together with the bind group that samples it.
type uploadTexture struct {
	texture   *wgpu.Texture
	view      *wgpu.TextureView
	bindGroup *wgpu.BindGroup
}

func (u *uploadTexture) release() {
	u.bindGroup.Release()
	u.view.Release()
	u.texture.Release()
}

// wgpuPresenter blits the frame to the window through a fullscreen
// textured quad, scaled up with aspect preservation.
type wgpuPresenter struct {
	surface *wgpu.Surface
	adapter *wgpu.Adapter
	device  *wgpu.Device
	queue   *wgpu.Queue

	surfaceConfig *wgpu.SurfaceConfiguration

	pipeline     *wgpu.RenderPipeline
	sampler      *wgpu.Sampler
	bufPlacement *wgpu.Buffer

	// upload textures by frame size, so rapid resizes do not thrash
	// texture allocation
	uploads *lru.Cache[[2]int, *uploadTexture]

	frameWidth, frameHeight int
}

func newWgpuPresenter(desc *wgpu.SurfaceDescriptor, windowWidth, windowHeight int) (p *wgpuPresenter, err error) {
	defer func() {
		if err != nil && p != nil {
			p.Release()
			p = nil
		}
	}()

	p = &wgpuPresenter{}

	instance := wgpu.CreateInstance(nil)
	defer instance.Release()

	p.surface = instance.CreateSurface(desc)

	p.adapter, err = instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: p.surface,
	})
	if err != nil {
		return p, fmt.Errorf("request adapter: %w", err)
	}

	p.device, err = p.adapter.RequestDevice(nil)
	if err != nil {
		return p, fmt.Errorf("request device: %w", err)
	}

	p.queue = p.device.GetQueue()

	caps := p.surface.GetCapabilities(p.adapter)

	p.surfaceConfig = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      wgpu.TextureFormatBGRA8Unorm,
		Width:       uint32(windowWidth),
		Height:      uint32(windowHeight),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],

		// try to reduce input latency
		DesiredMaximumFrameLatency: 1,
	}

	p.surface.Configure(p.device, p.surfaceConfig)

	if err = p.createPipeline(); err != nil {
		return p, err
	}

	p.uploads, _ = lru.NewWithEvict[[2]int, *uploadTexture](4, func(_ [2]int, u *uploadTexture) {
		u.release()
	})

	return p, nil
}

func (p *wgpuPresenter) createPipeline() error {
	shader, err := p.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:      "Blit.ShaderSource",
		WGSLSource: &wgpu.ShaderSourceWGSL{Code: blitShaderCode},
	})
	if err != nil {
		return fmt.Errorf("compile blit shader: %w", err)
	}

	defer shader.Release()

	p.pipeline, err = p.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "Blit",
		Vertex: wgpu.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
		},
		Fragment: &wgpu.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    p.surfaceConfig.Format,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("build blit pipeline: %w", err)
	}

	p.sampler, err = p.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:     "Blit.Sampler",
		MagFilter: wgpu.FilterModeNearest,
		MinFilter: wgpu.FilterModeNearest,
	})
	if err != nil {
		return fmt.Errorf("create sampler: %w", err)
	}

	p.bufPlacement, err = p.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Blit.Placement",
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		Size:  16,
	})
	if err != nil {
		return fmt.Errorf("create placement uniform: %w", err)
	}

	return nil
}

func (p *wgpuPresenter) Configure(frameWidth, frameHeight int) error {
	p.frameWidth = frameWidth
	p.frameHeight = frameHeight
	return nil
}

func (p *wgpuPresenter) Resize(windowWidth, windowHeight int) error {
	slog.Debug("Resize window surface",
		slog.Int("width", windowWidth),
		slog.Int("height", windowHeight),
	)

	p.surfaceConfig.Width = uint32(windowWidth)
	p.surfaceConfig.Height = uint32(windowHeight)
	p.surface.Configure(p.device, p.surfaceConfig)

	return nil
}

func (p *wgpuPresenter) Present(pixels []byte) error {
	upload, err := p.uploadFor(p.frameWidth, p.frameHeight)
	if err != nil {
		return err
	}

	err = p.queue.WriteTexture(
		&wgpu.TexelCopyTextureInfo{
			Texture: upload.texture,
			Aspect:  wgpu.TextureAspectAll,
		},
		pixels,
		&wgpu.TexelCopyBufferLayout{
			BytesPerRow:  uint32(p.frameWidth) * 4,
			RowsPerImage: uint32(p.frameHeight),
		},
		&wgpu.Extent3D{
			Width:              uint32(p.frameWidth),
			Height:             uint32(p.frameHeight),
			DepthOrArrayLayers: 1,
		},
	)
	if err != nil {
		return fmt.Errorf("upload frame: %w", err)
	}

	scaleX, scaleY := p.placement()
	p.queue.WriteBuffer(p.bufPlacement, 0, wgpu.ToBytes([]float32{scaleX, scaleY, 0, 0}))

	screen, err := p.surface.GetCurrentTexture()
	if err != nil {
		// usually outdated after a resize, reconfigure and let the
		// loop retry next frame
		p.surface.Configure(p.device, p.surfaceConfig)
		return fmt.Errorf("get current texture: %w", err)
	}

	defer func() {
		if screen != nil {
			screen.Release()
		}
	}()

	screenView, err := screen.CreateView(nil)
	if err != nil {
		return fmt.Errorf("view of screen texture: %w", err)
	}

	defer screenView.Release()

	encoder, err := p.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{
		Label: "Blit",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}

	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "Blit",
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       screenView,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{A: 1},
			},
		},
	})

	pass.SetPipeline(p.pipeline)
	pass.SetBindGroup(0, upload.bindGroup, nil)
	pass.Draw(6, 1, 0, 0)

	if err := pass.End(); err != nil {
		pass.Release()
		return fmt.Errorf("end render pass: %w", err)
	}

	pass.Release()

	buf, err := encoder.Finish(&wgpu.CommandBufferDescriptor{Label: "Blit"})
	if err != nil {
		return fmt.Errorf("encode blit: %w", err)
	}

	defer buf.Release()

	p.queue.Submit(buf)
	p.surface.Present()

	return nil
}

// placement computes the NDC scale of the displayed frame so it fills
// as much of the window as possible while keeping its aspect ratio.
func (p *wgpuPresenter) placement() (float32, float32) {
	fw, fh := float32(p.frameWidth), float32(p.frameHeight)
	sw, sh := float32(p.surfaceConfig.Width), float32(p.surfaceConfig.Height)

	if fw == 0 || fh == 0 || sw == 0 || sh == 0 {
		return 1, 1
	}

	scale := min(sw/fw, sh/fh)

	return fw * scale / sw, fh * scale / sh
}

func (p *wgpuPresenter) uploadFor(width, height int) (*uploadTexture, error) {
	key := [2]int{width, height}

	if cached, ok := p.uploads.Get(key); ok {
		return cached, nil
	}

	slog.Debug("Allocate frame upload texture",
		slog.Int("width", width),
		slog.Int("height", height),
	)

	texture, err := p.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Blit.Frame",
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA8Unorm,
		MipLevelCount: 1,
		SampleCount:   1,
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create frame texture: %w", err)
	}

	view, err := texture.CreateView(nil)
	if err != nil {
		texture.Release()
		return nil, fmt.Errorf("view of frame texture: %w", err)
	}

	layout := p.pipeline.GetBindGroupLayout(0)
	defer layout.Release()

	bindGroup, err := p.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Blit.Frame",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{
				Binding:     0,
				TextureView: view,
			},
			{
				Binding: 1,
				Sampler: p.sampler,
			},
			{
				Binding: 2,
				Buffer:  p.bufPlacement,
				Size:    wgpu.WholeSize,
			},
		},
	})
	if err != nil {
		view.Release()
		texture.Release()
		return nil, fmt.Errorf("create frame bind group: %w", err)
	}

	upload := &uploadTexture{texture: texture, view: view, bindGroup: bindGroup}
	p.uploads.Add(key, upload)

	return upload, nil
}

func (p *wgpuPresenter) Release() {
	if p.uploads != nil {
		p.uploads.Purge()
		p.uploads = nil
	}

	if p.bufPlacement != nil {
		p.bufPlacement.Release()
		p.bufPlacement = nil
	}

	if p.sampler != nil {
		p.sampler.Release()
		p.sampler = nil
	}

	if p.pipeline != nil {
		p.pipeline.Release()
		p.pipeline = nil
	}

	if p.queue != nil {
		p.queue.Release()
		p.queue = nil
	}

	if p.device != nil {
		p.device.Release()
		p.device = nil
	}

	if p.adapter != nil {
		p.adapter.Release()
		p.adapter = nil
	}

	if p.surface != nil {
		p.surface.Release()
		p.surface = nil
	}
}
