// Package framebuffer provides the offscreen render targets the pipeline
// wires together: plain color targets, the multi-attachment G-buffer and
// cube-map capture targets for probe baking.
package framebuffer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Target is an offscreen render target with one color attachment and an
// optional depth renderbuffer.
type Target struct {
	fbo          uint32
	colorTexture uint32
	depthRBO     uint32
	width        int32
	height       int32
}

// NewTarget creates a color target. internalFormat picks the texture storage
// (RGBA8 for color, R16F/RGBA16F for data passes); withDepth attaches a depth
// renderbuffer.
func NewTarget(width, height int32, internalFormat int32, withDepth bool) (*Target, error) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	t := &Target{width: width, height: height}

	gl.GenFramebuffers(1, &t.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)

	gl.GenTextures(1, &t.colorTexture)
	gl.BindTexture(gl.TEXTURE_2D, t.colorTexture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, internalFormat, width, height, 0, gl.RGBA, gl.FLOAT, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, t.colorTexture, 0)

	if withDepth {
		gl.GenRenderbuffers(1, &t.depthRBO)
		gl.BindRenderbuffer(gl.RENDERBUFFER, t.depthRBO)
		gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, width, height)
		gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, t.depthRBO)
	}

	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		t.Destroy()
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		return nil, fmt.Errorf("framebuffer incomplete: 0x%x", status)
	}

	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	return t, nil
}

// Bind makes this target the current render target.
func (t *Target) Bind() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	gl.Viewport(0, 0, t.width, t.height)
}

// Unbind restores the default framebuffer.
func (t *Target) Unbind() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

// Clear clears color (and depth when attached).
func (t *Target) Clear(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
	mask := uint32(gl.COLOR_BUFFER_BIT)
	if t.depthRBO != 0 {
		mask |= gl.DEPTH_BUFFER_BIT
	}
	gl.Clear(mask)
}

// ColorTexture returns the color attachment texture ID.
func (t *Target) ColorTexture() uint32 {
	return t.colorTexture
}

// FBO returns the underlying framebuffer object ID.
func (t *Target) FBO() uint32 {
	return t.fbo
}

// Size returns the target dimensions.
func (t *Target) Size() (int32, int32) {
	return t.width, t.height
}

// Destroy releases the GL objects.
func (t *Target) Destroy() {
	if t.fbo != 0 {
		gl.DeleteFramebuffers(1, &t.fbo)
		t.fbo = 0
	}
	if t.colorTexture != 0 {
		gl.DeleteTextures(1, &t.colorTexture)
		t.colorTexture = 0
	}
	if t.depthRBO != 0 {
		gl.DeleteRenderbuffers(1, &t.depthRBO)
		t.depthRBO = 0
	}
}
