package render

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/ashkeep/pyre/internal/engine/assets"
	"github.com/ashkeep/pyre/internal/engine/terrain"
	"github.com/ashkeep/pyre/internal/engine/texture"
)

// uploader lazily creates GL objects for decoded resources and built terrain
// meshes. Resources keep their GL handles; eviction from the asset cache
// routes back through EvictResource so stale handles are released.
type uploader struct {
	cache *assets.Cache

	white uint32
	black uint32
}

func newUploader(cache *assets.Cache) *uploader {
	return &uploader{cache: cache}
}

// whiteTexture is the fallback bound when a diffuse lookup fails.
func (u *uploader) whiteTexture() uint32 {
	if u.white == 0 {
		u.white = texture.Upload(texture.White())
	}
	return u.white
}

func (u *uploader) blackTexture() uint32 {
	if u.black == 0 {
		u.black = texture.Upload(texture.Black())
	}
	return u.black
}

// texture resolves a tag to an uploaded 2D texture, falling back to white.
func (u *uploader) texture(tag assets.Tag) uint32 {
	if tag == (assets.Tag{}) {
		return u.whiteTexture()
	}
	res, ok := u.cache.Resolve(tag)
	if !ok {
		return u.whiteTexture()
	}
	tex, ok := res.(*assets.Texture)
	if !ok {
		return u.whiteTexture()
	}
	if tex.GL == 0 && tex.Image != nil {
		tex.GL = texture.Upload(tex.Image)
	}
	if tex.GL == 0 {
		return u.whiteTexture()
	}
	return tex.GL
}

// cubeMap resolves a tag to an uploaded cube map, or 0.
func (u *uploader) cubeMap(tag assets.Tag) uint32 {
	res, ok := u.cache.Resolve(tag)
	if !ok {
		return 0
	}
	cm, ok := res.(*assets.CubeMap)
	if !ok {
		return 0
	}
	if cm.GL == 0 {
		cm.GL = texture.UploadCube(cm.Faces)
	}
	return cm.GL
}

// model ensures a model's vertex arrays exist on the GPU. The interleaved
// layout is position(3) normal(3) texcoord(2).
func (u *uploader) model(m *assets.Model) {
	if m.VAO != 0 || len(m.Vertices) == 0 {
		return
	}

	flat := make([]float32, 0, len(m.Vertices)*8)
	for _, v := range m.Vertices {
		flat = append(flat,
			v.Position[0], v.Position[1], v.Position[2],
			v.Normal[0], v.Normal[1], v.Normal[2],
			v.TexCoord[0], v.TexCoord[1])
	}

	gl.GenVertexArrays(1, &m.VAO)
	gl.BindVertexArray(m.VAO)

	gl.GenBuffers(1, &m.VBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.VBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(flat)*4, gl.Ptr(flat), gl.STATIC_DRAW)

	gl.GenBuffers(1, &m.EBO)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.EBO)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*4, gl.Ptr(m.Indices), gl.STATIC_DRAW)

	stride := int32(8 * 4)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 3*4)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, stride, 6*4)
	gl.EnableVertexAttribArray(2)

	gl.BindVertexArray(0)
}

// terrainMesh ensures a built terrain mesh exists on the GPU. The interleaved
// layout is position(3) normal(3) texcoord(2) blend(4) tint(4).
func (u *uploader) terrainMesh(m *terrain.Mesh) {
	if m.VAO != 0 || len(m.Vertices) == 0 {
		return
	}

	flat := make([]float32, 0, len(m.Vertices)*16)
	for i, v := range m.Vertices {
		flat = append(flat,
			v.Position[0], v.Position[1], v.Position[2],
			m.Normals[i][0], m.Normals[i][1], m.Normals[i][2],
			v.TexCoord[0], v.TexCoord[1],
			m.Blends[i][0], m.Blends[i][1], m.Blends[i][2], m.Blends[i][3],
			m.Tints[i][0], m.Tints[i][1], m.Tints[i][2], m.Tints[i][3])
	}

	gl.GenVertexArrays(1, &m.VAO)
	gl.BindVertexArray(m.VAO)

	gl.GenBuffers(1, &m.VBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.VBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(flat)*4, gl.Ptr(flat), gl.STATIC_DRAW)

	gl.GenBuffers(1, &m.EBO)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.EBO)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*4, gl.Ptr(m.Indices), gl.STATIC_DRAW)

	stride := int32(16 * 4)
	offsets := []struct {
		size   int32
		offset uintptr
	}{
		{3, 0}, {3, 3 * 4}, {2, 6 * 4}, {4, 8 * 4}, {4, 12 * 4},
	}
	for i, a := range offsets {
		gl.VertexAttribPointerWithOffset(uint32(i), a.size, gl.FLOAT, false, stride, a.offset)
		gl.EnableVertexAttribArray(uint32(i))
	}

	gl.BindVertexArray(0)
}

// destroyMesh releases a swept terrain mesh's GPU buffers.
func (u *uploader) destroyMesh(m *terrain.Mesh) {
	if m.VAO != 0 {
		gl.DeleteVertexArrays(1, &m.VAO)
		m.VAO = 0
	}
	if m.VBO != 0 {
		gl.DeleteBuffers(1, &m.VBO)
		m.VBO = 0
	}
	if m.EBO != 0 {
		gl.DeleteBuffers(1, &m.EBO)
		m.EBO = 0
	}
}

func (u *uploader) destroy() {
	if u.white != 0 {
		texture.Delete(u.white)
		u.white = 0
	}
	if u.black != 0 {
		texture.Delete(u.black)
		u.black = 0
	}
}

// EvictResource releases the GL objects behind an evicted asset. Wired into
// the asset cache's OnEvict hook.
func EvictResource(res assets.Resource) {
	switch r := res.(type) {
	case *assets.Texture:
		if r.GL != 0 {
			texture.Delete(r.GL)
			r.GL = 0
		}
	case *assets.CubeMap:
		if r.GL != 0 {
			texture.Delete(r.GL)
			r.GL = 0
		}
	case *assets.Model:
		if r.VAO != 0 {
			gl.DeleteVertexArrays(1, &r.VAO)
			r.VAO = 0
		}
		if r.VBO != 0 {
			gl.DeleteBuffers(1, &r.VBO)
			r.VBO = 0
		}
		if r.EBO != 0 {
			gl.DeleteBuffers(1, &r.EBO)
			r.EBO = 0
		}
	}
}
