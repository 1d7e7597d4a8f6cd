package framebuffer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// CubeTarget renders into the six faces of a cube-map texture, one face at a
// time, sharing a single depth renderbuffer. Used for probe reflection
// captures and the irradiance/environment-filter convolutions.
type CubeTarget struct {
	fbo      uint32
	Cube     uint32
	depthRBO uint32
	size     int32
}

// NewCubeTarget allocates a cube-map render target with square faces.
func NewCubeTarget(size int32) (*CubeTarget, error) {
	c := &CubeTarget{size: size}

	gl.GenFramebuffers(1, &c.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, c.fbo)

	gl.GenTextures(1, &c.Cube)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, c.Cube)
	for face := 0; face < 6; face++ {
		gl.TexImage2D(gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(face), 0, gl.RGBA16F,
			size, size, 0, gl.RGBA, gl.FLOAT, nil)
	}
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_R, gl.CLAMP_TO_EDGE)

	gl.GenRenderbuffers(1, &c.depthRBO)
	gl.BindRenderbuffer(gl.RENDERBUFFER, c.depthRBO)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, size, size)
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, c.depthRBO)

	// Completeness is checked against the first face.
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0,
		gl.TEXTURE_CUBE_MAP_POSITIVE_X, c.Cube, 0)
	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		c.Destroy()
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		return nil, fmt.Errorf("cube target incomplete: 0x%x", status)
	}

	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, 0)
	return c, nil
}

// BindFace targets one cube face (0..5, +X first) and clears it.
func (c *CubeTarget) BindFace(face int) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, c.fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0,
		gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(face), c.Cube, 0)
	gl.Viewport(0, 0, c.size, c.size)
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Unbind restores the default framebuffer.
func (c *CubeTarget) Unbind() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

// Size returns the face size.
func (c *CubeTarget) Size() int32 {
	return c.size
}

// FBO returns the underlying framebuffer object.
func (c *CubeTarget) FBO() uint32 {
	return c.fbo
}

// DetachCube hands ownership of the cube texture to the caller and zeroes
// the target's reference, so Destroy will not delete it.
func (c *CubeTarget) DetachCube() uint32 {
	cube := c.Cube
	c.Cube = 0
	return cube
}

// Destroy releases the GL objects still owned by the target.
func (c *CubeTarget) Destroy() {
	if c.fbo != 0 {
		gl.DeleteFramebuffers(1, &c.fbo)
		c.fbo = 0
	}
	if c.Cube != 0 {
		gl.DeleteTextures(1, &c.Cube)
		c.Cube = 0
	}
	if c.depthRBO != 0 {
		gl.DeleteRenderbuffers(1, &c.depthRBO)
		c.depthRBO = 0
	}
}
