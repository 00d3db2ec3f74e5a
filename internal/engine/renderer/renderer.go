// Package renderer draws brush meshes with OpenGL 4.1 core.
package renderer

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/almond/internal/engine/renderer/shaders"
	"github.com/Faultbox/almond/internal/engine/shader"
	"github.com/Faultbox/almond/pkg/csg"
	"github.com/Faultbox/almond/pkg/math"
)

// ErrEmptyMesh is returned when uploading a mesh without triangles.
var ErrEmptyMesh = errors.New("renderer: empty mesh")

const (
	vertexStride   = int32(unsafe.Sizeof(csg.Vertex{}))
	texCoordOffset = unsafe.Offsetof(csg.Vertex{}.TexCoord)
	checkerSize    = 64
)

// Config holds renderer configuration.
type Config struct {
	Width     int
	Height    int
	Wireframe bool
}

// GPUMesh is an uploaded mesh.
type GPUMesh struct {
	vao, vbo, ebo uint32
	count         int32
}

// Renderer owns GL state for drawing brush meshes.
type Renderer struct {
	config  Config
	log     *zap.Logger
	program *shader.Program
	checker uint32
	meshes  int
}

// New creates a renderer. It must be called after the GL context exists.
func New(cfg Config, log *zap.Logger) (*Renderer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Renderer{config: cfg, log: log}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	// Brush faces mix inward and outward windings.
	gl.Disable(gl.CULL_FACE)
	gl.ClearColor(0.1, 0.1, 0.15, 1.0)

	var err error
	r.program, err = shader.New(shaders.BrushVertexShader, shaders.BrushFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("failed to create shader program: %w", err)
	}
	r.checker = uploadChecker()
	r.Resize(cfg.Width, cfg.Height)
	r.SetWireframe(cfg.Wireframe)

	return r, nil
}

// Close releases GL resources owned by the renderer. Meshes must be
// deleted by their owners.
func (r *Renderer) Close() {
	r.log.Info("closing renderer", zap.Int("live_meshes", r.meshes))
	if r.checker != 0 {
		gl.DeleteTextures(1, &r.checker)
	}
	if r.program != nil {
		r.program.Delete()
	}
}

// Resize updates the viewport.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("renderer resized", zap.Int("width", width), zap.Int("height", height))
}

// Aspect returns the viewport aspect ratio.
func (r *Renderer) Aspect() float32 {
	if r.config.Height == 0 {
		return 1
	}
	return float32(r.config.Width) / float32(r.config.Height)
}

// SetWireframe toggles line rasterization.
func (r *Renderer) SetWireframe(on bool) {
	r.config.Wireframe = on
	if on {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	} else {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}
}

// Wireframe reports whether wireframe mode is on.
func (r *Renderer) Wireframe() bool {
	return r.config.Wireframe
}

// Begin clears the frame and sets per-frame uniforms.
func (r *Renderer) Begin(viewProj math.Mat4) {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	r.program.Use()
	r.program.SetMat4("uViewProj", viewProj)
	r.program.SetVec3("uLightDir", math.Vec3{X: 0.4, Y: 1, Z: 0.25})
	r.program.SetInt("uTexture", 0)

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.checker)
}

// End finishes the frame.
func (r *Renderer) End() {
	gl.BindVertexArray(0)
}

// UploadMesh copies mesh data into GPU buffers.
func (r *Renderer) UploadMesh(m csg.MeshData) (*GPUMesh, error) {
	if len(m.Vertices) == 0 || len(m.Indices) == 0 {
		return nil, ErrEmptyMesh
	}

	g := &GPUMesh{count: int32(len(m.Indices))}

	gl.GenVertexArrays(1, &g.vao)
	gl.BindVertexArray(g.vao)

	gl.GenBuffers(1, &g.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, g.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(m.Vertices)*int(vertexStride), unsafe.Pointer(&m.Vertices[0]), gl.STATIC_DRAW)

	gl.GenBuffers(1, &g.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, g.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*2, unsafe.Pointer(&m.Indices[0]), gl.STATIC_DRAW)

	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, vertexStride, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 2, gl.FLOAT, false, vertexStride, texCoordOffset)
	gl.EnableVertexAttribArray(1)

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	r.meshes++
	return g, nil
}

// DeleteMesh releases a mesh's GPU buffers.
func (r *Renderer) DeleteMesh(g *GPUMesh) {
	if g == nil || g.vao == 0 {
		return
	}
	gl.DeleteVertexArrays(1, &g.vao)
	gl.DeleteBuffers(1, &g.vbo)
	gl.DeleteBuffers(1, &g.ebo)
	*g = GPUMesh{}
	r.meshes--
}

// DrawMesh draws g with a model matrix and tint.
func (r *Renderer) DrawMesh(g *GPUMesh, model math.Mat4, tint [3]float32) {
	if g == nil || g.count == 0 {
		return
	}
	r.program.SetMat4("uModel", model)
	r.program.SetVec3("uTint", math.Vec3{X: tint[0], Y: tint[1], Z: tint[2]})
	gl.BindVertexArray(g.vao)
	gl.DrawElements(gl.TRIANGLES, g.count, gl.UNSIGNED_SHORT, nil)
}

// ReadPixels returns the framebuffer as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	pix := make([]byte, w*h*4)
	if len(pix) == 0 {
		return nil, 0, 0
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pix))
	return pix, w, h
}

func uploadChecker() uint32 {
	pix := CheckerPixels(checkerSize, 2, 200, 140)

	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, checkerSize, checkerSize, 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pix))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	return tex
}
