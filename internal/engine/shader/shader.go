// Package shader provides OpenGL shader compilation and program utilities.
package shader

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// CompileProgram compiles vertex and fragment shaders and links them into a
// program. Returns the program ID or an error if compilation/linking fails.
func CompileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vertShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER, "vertex")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vertShader)

	fragShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER, "fragment")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(fragShader)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertShader)
	gl.AttachShader(program, fragShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen)
		gl.GetProgramInfoLog(program, logLen, nil, &log[0])
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("link: %s", string(log))
	}

	return program, nil
}

// compileShader compiles a single shader of the given type.
func compileShader(source string, shaderType uint32, name string) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen)
		gl.GetShaderInfoLog(shader, logLen, nil, &log[0])
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%s shader: %s", name, string(log))
	}

	return shader, nil
}

// Program wraps a linked GL program with a uniform-location cache.
type Program struct {
	ID       uint32
	uniforms map[string]int32
}

// NewProgram compiles and links a program.
func NewProgram(vertexSrc, fragmentSrc string) (*Program, error) {
	id, err := CompileProgram(vertexSrc, fragmentSrc)
	if err != nil {
		return nil, err
	}
	return &Program{ID: id, uniforms: make(map[string]int32)}, nil
}

// Use binds the program.
func (p *Program) Use() {
	gl.UseProgram(p.ID)
}

// Destroy deletes the program.
func (p *Program) Destroy() {
	if p.ID != 0 {
		gl.DeleteProgram(p.ID)
		p.ID = 0
	}
}

func (p *Program) loc(name string) int32 {
	if loc, ok := p.uniforms[name]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(p.ID, gl.Str(name+"\x00"))
	p.uniforms[name] = loc
	return loc
}

// SetInt sets an int/sampler uniform.
func (p *Program) SetInt(name string, v int32) {
	gl.Uniform1i(p.loc(name), v)
}

// SetFloat sets a float uniform.
func (p *Program) SetFloat(name string, v float32) {
	gl.Uniform1f(p.loc(name), v)
}

// SetVec2 sets a vec2 uniform.
func (p *Program) SetVec2(name string, x, y float32) {
	gl.Uniform2f(p.loc(name), x, y)
}

// SetVec3 sets a vec3 uniform.
func (p *Program) SetVec3(name string, v mgl32.Vec3) {
	gl.Uniform3f(p.loc(name), v.X(), v.Y(), v.Z())
}

// SetVec4 sets a vec4 uniform.
func (p *Program) SetVec4(name string, v mgl32.Vec4) {
	gl.Uniform4f(p.loc(name), v.X(), v.Y(), v.Z(), v.W())
}

// SetMat4 sets a mat4 uniform.
func (p *Program) SetMat4(name string, m mgl32.Mat4) {
	gl.UniformMatrix4fv(p.loc(name), 1, false, &m[0])
}

// SetFloats sets a float array uniform.
func (p *Program) SetFloats(name string, vs []float32) {
	if len(vs) == 0 {
		return
	}
	gl.Uniform1fv(p.loc(name), int32(len(vs)), &vs[0])
}

// SetVec3s sets a vec3 array uniform from a flat [x0 y0 z0 x1 ...] slice.
func (p *Program) SetVec3s(name string, flat []float32) {
	if len(flat) == 0 {
		return
	}
	gl.Uniform3fv(p.loc(name), int32(len(flat)/3), &flat[0])
}

// SetInts sets an int array uniform.
func (p *Program) SetInts(name string, vs []int32) {
	if len(vs) == 0 {
		return
	}
	gl.Uniform1iv(p.loc(name), int32(len(vs)), &vs[0])
}

// SetMat4s sets a mat4 array uniform.
func (p *Program) SetMat4s(name string, ms []mgl32.Mat4) {
	if len(ms) == 0 {
		return
	}
	gl.UniformMatrix4fv(p.loc(name), int32(len(ms)), false, &ms[0][0])
}

// FullscreenQuad creates a VAO/VBO pair holding two triangles covering clip
// space, with positions at attribute 0 and UVs at attribute 1.
func FullscreenQuad() (vao, vbo uint32) {
	vertices := []float32{
		// pos        // uv
		-1, -1, 0, 0,
		1, -1, 1, 0,
		1, 1, 1, 1,
		-1, -1, 0, 0,
		1, 1, 1, 1,
		-1, 1, 0, 1,
	}

	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)
	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)

	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, 4*4, 0)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(1, 2, gl.FLOAT, false, 4*4, 2*4)

	gl.BindVertexArray(0)
	return vao, vbo
}
