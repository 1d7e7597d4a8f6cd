package framebuffer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// GBuffer is the geometry pass target: position, albedo, material and normal
// attachments sharing one depth buffer.
type GBuffer struct {
	fbo      uint32
	Position uint32 // RGBA16F world position
	Albedo   uint32 // RGBA8 base color
	Material uint32 // RGBA8 metallic/roughness/occlusion/flags
	Normal   uint32 // RGBA16F world normal
	depthRBO uint32
	width    int32
	height   int32
}

// NewGBuffer creates the four-attachment geometry target.
func NewGBuffer(width, height int32) (*GBuffer, error) {
	g := &GBuffer{width: width, height: height}

	gl.GenFramebuffers(1, &g.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, g.fbo)

	attach := func(slot uint32, internalFormat int32) uint32 {
		var tex uint32
		gl.GenTextures(1, &tex)
		gl.BindTexture(gl.TEXTURE_2D, tex)
		gl.TexImage2D(gl.TEXTURE_2D, 0, internalFormat, width, height, 0, gl.RGBA, gl.FLOAT, nil)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0+slot, gl.TEXTURE_2D, tex, 0)
		return tex
	}

	g.Position = attach(0, gl.RGBA16F)
	g.Albedo = attach(1, gl.RGBA8)
	g.Material = attach(2, gl.RGBA8)
	g.Normal = attach(3, gl.RGBA16F)

	gl.GenRenderbuffers(1, &g.depthRBO)
	gl.BindRenderbuffer(gl.RENDERBUFFER, g.depthRBO)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, width, height)
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, g.depthRBO)

	drawBuffers := []uint32{
		gl.COLOR_ATTACHMENT0, gl.COLOR_ATTACHMENT1,
		gl.COLOR_ATTACHMENT2, gl.COLOR_ATTACHMENT3,
	}
	gl.DrawBuffers(4, &drawBuffers[0])

	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		g.Destroy()
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		return nil, fmt.Errorf("g-buffer incomplete: 0x%x", status)
	}

	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	return g, nil
}

// Bind makes the G-buffer the current render target and clears it.
func (g *GBuffer) Bind() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, g.fbo)
	gl.Viewport(0, 0, g.width, g.height)
	gl.ClearColor(0, 0, 0, 0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Unbind restores the default framebuffer.
func (g *GBuffer) Unbind() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

// BlitDepthTo copies the G-buffer depth into another framebuffer, so forward
// passes depth-test against deferred geometry.
func (g *GBuffer) BlitDepthTo(fbo uint32, width, height int32) {
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, g.fbo)
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, fbo)
	gl.BlitFramebuffer(0, 0, g.width, g.height, 0, 0, width, height,
		gl.DEPTH_BUFFER_BIT, gl.NEAREST)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

// Size returns the buffer dimensions.
func (g *GBuffer) Size() (int32, int32) {
	return g.width, g.height
}

// FBO returns the framebuffer object ID.
func (g *GBuffer) FBO() uint32 {
	return g.fbo
}

// Destroy releases all GL objects.
func (g *GBuffer) Destroy() {
	if g.fbo != 0 {
		gl.DeleteFramebuffers(1, &g.fbo)
		g.fbo = 0
	}
	for _, tex := range []*uint32{&g.Position, &g.Albedo, &g.Material, &g.Normal} {
		if *tex != 0 {
			gl.DeleteTextures(1, tex)
			*tex = 0
		}
	}
	if g.depthRBO != 0 {
		gl.DeleteRenderbuffers(1, &g.depthRBO)
		g.depthRBO = 0
	}
}
