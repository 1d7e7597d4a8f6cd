package shadow

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/ashkeep/pyre/internal/engine/shader"
)

// Map is one shadow slot's render target: a single-channel depth-distance
// color texture plus a depth renderbuffer. The color texture is what gets
// blurred and sampled.
type Map struct {
	FBO        uint32
	Texture    uint32
	depthRBO   uint32
	Resolution int32
}

func newMap(resolution int32) (*Map, error) {
	m := &Map{Resolution: resolution}

	gl.GenFramebuffers(1, &m.FBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, m.FBO)

	gl.GenTextures(1, &m.Texture)
	gl.BindTexture(gl.TEXTURE_2D, m.Texture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.R32F, resolution, resolution, 0, gl.RED, gl.FLOAT, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_BORDER)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_BORDER)
	// Border of max distance: everything outside the light frustum is lit.
	borderColor := []float32{1e9, 0, 0, 0}
	gl.TexParameterfv(gl.TEXTURE_2D, gl.TEXTURE_BORDER_COLOR, &borderColor[0])
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, m.Texture, 0)

	gl.GenRenderbuffers(1, &m.depthRBO)
	gl.BindRenderbuffer(gl.RENDERBUFFER, m.depthRBO)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, resolution, resolution)
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, m.depthRBO)

	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		m.destroy()
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		return nil, fmt.Errorf("shadow map framebuffer incomplete: 0x%x", status)
	}

	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return m, nil
}

func (m *Map) destroy() {
	if m.FBO != 0 {
		gl.DeleteFramebuffers(1, &m.FBO)
		m.FBO = 0
	}
	if m.Texture != 0 {
		gl.DeleteTextures(1, &m.Texture)
		m.Texture = 0
	}
	if m.depthRBO != 0 {
		gl.DeleteRenderbuffers(1, &m.depthRBO)
		m.depthRBO = 0
	}
}

// Maps owns the fixed set of per-slot shadow targets, one scratch target per
// resolution tier for the separable blur, and the blur program.
type Maps struct {
	slots   [MaxSlots]*Map
	scratch map[int32]*Map

	blur    *shader.Program
	quadVAO uint32
	quadVBO uint32
}

// NewMaps allocates every slot's target up front. Failure here is fatal for
// the renderer.
func NewMaps(highRes int32) (*Maps, error) {
	if highRes <= 0 {
		highRes = HighResolution
	}

	ms := &Maps{scratch: make(map[int32]*Map)}

	for slot := 0; slot < MaxSlots; slot++ {
		res := SlotResolution(slot, highRes)
		m, err := newMap(res)
		if err != nil {
			ms.Destroy()
			return nil, fmt.Errorf("allocating shadow slot %d: %w", slot, err)
		}
		ms.slots[slot] = m

		if _, ok := ms.scratch[res]; !ok {
			s, err := newMap(res)
			if err != nil {
				ms.Destroy()
				return nil, fmt.Errorf("allocating %dpx blur scratch: %w", res, err)
			}
			ms.scratch[res] = s
		}
	}

	blur, err := shader.NewProgram(blurVertexSrc, blurFragmentSrc)
	if err != nil {
		ms.Destroy()
		return nil, fmt.Errorf("compiling shadow blur program: %w", err)
	}
	ms.blur = blur

	ms.quadVAO, ms.quadVBO = shader.FullscreenQuad()
	return ms, nil
}

// Bind makes a slot the current render target and clears it to max distance.
func (ms *Maps) Bind(slot int) {
	m := ms.slots[slot]
	gl.BindFramebuffer(gl.FRAMEBUFFER, m.FBO)
	gl.Viewport(0, 0, m.Resolution, m.Resolution)
	gl.ClearColor(1e9, 0, 0, 0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	// Front-face culling reduces acne on closed casters.
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.FRONT)
}

// Unbind restores default framebuffer state after a shadow pass.
func (ms *Maps) Unbind() {
	gl.CullFace(gl.BACK)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

// Blur runs the two-pass separable filter over a slot: horizontal into the
// slot's scratch target, then vertical back into the slot.
func (ms *Maps) Blur(slot int) {
	m := ms.slots[slot]
	scratch := ms.scratch[m.Resolution]

	gl.Disable(gl.DEPTH_TEST)
	ms.blur.Use()
	gl.BindVertexArray(ms.quadVAO)

	// Horizontal: slot -> scratch.
	gl.BindFramebuffer(gl.FRAMEBUFFER, scratch.FBO)
	gl.Viewport(0, 0, m.Resolution, m.Resolution)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, m.Texture)
	ms.blur.SetInt("uSource", 0)
	ms.blur.SetVec2("uDirection", 1.0/float32(m.Resolution), 0)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)

	// Vertical: scratch -> slot.
	gl.BindFramebuffer(gl.FRAMEBUFFER, m.FBO)
	gl.BindTexture(gl.TEXTURE_2D, scratch.Texture)
	ms.blur.SetVec2("uDirection", 0, 1.0/float32(m.Resolution))
	gl.DrawArrays(gl.TRIANGLES, 0, 6)

	gl.BindVertexArray(0)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Enable(gl.DEPTH_TEST)
}

// Texture returns the (blurred) shadow texture for a slot.
func (ms *Maps) Texture(slot int) uint32 {
	return ms.slots[slot].Texture
}

// Destroy releases every GL object owned by the set.
func (ms *Maps) Destroy() {
	for i, m := range ms.slots {
		if m != nil {
			m.destroy()
			ms.slots[i] = nil
		}
	}
	for res, m := range ms.scratch {
		m.destroy()
		delete(ms.scratch, res)
	}
	if ms.blur != nil {
		ms.blur.Destroy()
		ms.blur = nil
	}
	if ms.quadVAO != 0 {
		gl.DeleteVertexArrays(1, &ms.quadVAO)
		gl.DeleteBuffers(1, &ms.quadVBO)
		ms.quadVAO = 0
	}
}

const blurVertexSrc = `
#version 410 core
layout (location = 0) in vec2 aPos;
layout (location = 1) in vec2 aUV;
out vec2 vUV;
void main() {
	vUV = aUV;
	gl_Position = vec4(aPos, 0.0, 1.0);
}
`

const blurFragmentSrc = `
#version 410 core
in vec2 vUV;
out vec4 FragColor;
uniform sampler2D uSource;
uniform vec2 uDirection;
void main() {
	float sum = 0.0;
	float weights[5] = float[](0.227027, 0.1945946, 0.1216216, 0.054054, 0.016216);
	sum += texture(uSource, vUV).r * weights[0];
	for (int i = 1; i < 5; i++) {
		sum += texture(uSource, vUV + uDirection * float(i)).r * weights[i];
		sum += texture(uSource, vUV - uDirection * float(i)).r * weights[i];
	}
	FragColor = vec4(sum, 0.0, 0.0, 1.0);
}
`
