// Package opengl draws meadow meshes with an OpenGL 4.1 core context.
package opengl

import (
	"fmt"
	"log/slog"
	"strings"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"meadow/core"
	"meadow/math"
	"meadow/scene"
)

// GPUMesh holds the OpenGL buffer objects for an uploaded mesh.
type GPUMesh struct {
	VAO         uint32
	VBO         uint32
	EBO         uint32
	IndexCount  int32
	InstanceVBO uint32 // per-instance model matrices (0 = not yet allocated)
	InstanceCap int    // capacity of InstanceVBO in instances
}

// Renderer is an unlit vertex-color renderer. Every draw is instanced; a
// single mesh is drawn with one instance.
type Renderer struct {
	program uint32
	logger  *slog.Logger

	viewProjLoc   int32
	cameraPosLoc  int32
	fogColorLoc   int32
	fogDensityLoc int32

	FogDensity float32

	gpuMeshes map[*scene.Mesh]*GPUMesh
	instances []float32
}

const vertSrc = `
#version 410 core

layout(location = 0) in vec3 aPosition;
layout(location = 1) in vec4 aColor;
layout(location = 2) in mat4 aModel; // locations 2-5

uniform mat4 uViewProj;

out vec4 vColor;
out vec3 vWorldPos;

void main() {
    vec4 world = aModel * vec4(aPosition, 1.0);
    vWorldPos = world.xyz;
    vColor = aColor;
    gl_Position = uViewProj * world;
}
` + "\x00"

const fragSrc = `
#version 410 core

in vec4 vColor;
in vec3 vWorldPos;

uniform vec3 uCameraPos;
uniform vec3 uFogColor;
uniform float uFogDensity;

out vec4 fragColor;

void main() {
    float d = length(vWorldPos - uCameraPos);
    float fog = 1.0 - exp(-pow(d * uFogDensity, 2.0));
    fragColor = vec4(mix(vColor.rgb, uFogColor, clamp(fog, 0.0, 1.0)), vColor.a);
}
` + "\x00"

func NewRenderer(logger *slog.Logger) (*Renderer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("initialize OpenGL: %w", err)
	}
	logger.Info("opengl ready", "version", gl.GoStr(gl.GetString(gl.VERSION)))

	prog, err := newProgram(vertSrc, fragSrc)
	if err != nil {
		return nil, fmt.Errorf("main shader compile: %w", err)
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	return &Renderer{
		program:       prog,
		logger:        logger,
		viewProjLoc:   gl.GetUniformLocation(prog, gl.Str("uViewProj\x00")),
		cameraPosLoc:  gl.GetUniformLocation(prog, gl.Str("uCameraPos\x00")),
		fogColorLoc:   gl.GetUniformLocation(prog, gl.Str("uFogColor\x00")),
		fogDensityLoc: gl.GetUniformLocation(prog, gl.Str("uFogDensity\x00")),
		FogDensity:    0.04,
		gpuMeshes:     make(map[*scene.Mesh]*GPUMesh),
	}, nil
}

// SetViewport resizes the OpenGL viewport.
func (r *Renderer) SetViewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

// BeginFrame clears to the sky color and loads the per-frame uniforms.
func (r *Renderer) BeginFrame(sky core.Color, cam *scene.Camera) {
	gl.ClearColor(sky.R, sky.G, sky.B, sky.A)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	vp := cam.GetViewProjectionMatrix()
	gl.UseProgram(r.program)
	gl.UniformMatrix4fv(r.viewProjLoc, 1, false, (*float32)(unsafe.Pointer(&vp[0][0])))
	gl.Uniform3f(r.cameraPosLoc, cam.Position.X, cam.Position.Y, cam.Position.Z)
	gl.Uniform3f(r.fogColorLoc, sky.R, sky.G, sky.B)
	gl.Uniform1f(r.fogDensityLoc, r.FogDensity)
}

// DrawMesh draws a single instance of mesh.
func (r *Renderer) DrawMesh(mesh *scene.Mesh, model math.Mat4) {
	r.DrawMeshInstanced(mesh, []math.Mat4{model})
}

// DrawMeshInstanced renders mesh len(models) times in one draw call. The
// model matrices are streamed through a per-mesh VBO bound to attrib
// locations 2-5.
func (r *Renderer) DrawMeshInstanced(mesh *scene.Mesh, models []math.Mat4) {
	if len(models) == 0 {
		return
	}
	gpu := r.ensureUploaded(mesh)
	if gpu == nil {
		return
	}

	// row-vector matrices go up in memory order; GLSL sees the transpose
	n := len(models)
	r.instances = r.instances[:0]
	for _, m := range models {
		for row := 0; row < 4; row++ {
			r.instances = append(r.instances, m[row][:]...)
		}
	}
	r.uploadInstanceVBO(gpu, r.instances, n)

	gl.UseProgram(r.program)
	gl.BindVertexArray(gpu.VAO)
	gl.DrawElementsInstanced(gl.TRIANGLES, gpu.IndexCount, gl.UNSIGNED_INT, nil, int32(n))
	gl.BindVertexArray(0)
}

// uploadInstanceVBO uploads buf to the per-mesh instance VBO, creating it
// and wiring attrib locations 2-5 into the VAO on first call.
func (r *Renderer) uploadInstanceVBO(gpu *GPUMesh, buf []float32, count int) {
	const stride = int32(16 * 4)

	if gpu.InstanceVBO == 0 {
		gl.GenBuffers(1, &gpu.InstanceVBO)
		gl.BindVertexArray(gpu.VAO)
		gl.BindBuffer(gl.ARRAY_BUFFER, gpu.InstanceVBO)
		for i := uint32(0); i < 4; i++ {
			gl.EnableVertexAttribArray(2 + i)
			gl.VertexAttribPointer(2+i, 4, gl.FLOAT, false, stride, gl.PtrOffset(int(i)*16))
			gl.VertexAttribDivisor(2+i, 1)
		}
		gl.BindVertexArray(0)
	}

	byteSize := len(buf) * 4
	gl.BindBuffer(gl.ARRAY_BUFFER, gpu.InstanceVBO)
	if count > gpu.InstanceCap {
		gl.BufferData(gl.ARRAY_BUFFER, byteSize, gl.Ptr(buf), gl.DYNAMIC_DRAW)
		gpu.InstanceCap = count
	} else {
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, byteSize, gl.Ptr(buf))
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

// ReleaseMesh frees GPU buffers for the given mesh.
func (r *Renderer) ReleaseMesh(mesh *scene.Mesh) {
	gpu, ok := r.gpuMeshes[mesh]
	if !ok {
		return
	}
	gl.DeleteVertexArrays(1, &gpu.VAO)
	gl.DeleteBuffers(1, &gpu.VBO)
	gl.DeleteBuffers(1, &gpu.EBO)
	if gpu.InstanceVBO != 0 {
		gl.DeleteBuffers(1, &gpu.InstanceVBO)
	}
	delete(r.gpuMeshes, mesh)
	mesh.GPUData = nil
}

// Uploaded is the number of meshes resident on the GPU.
func (r *Renderer) Uploaded() int {
	return len(r.gpuMeshes)
}

// Destroy releases all GPU resources.
func (r *Renderer) Destroy() {
	for mesh := range r.gpuMeshes {
		r.ReleaseMesh(mesh)
	}
	gl.DeleteProgram(r.program)
}

func (r *Renderer) ensureUploaded(mesh *scene.Mesh) *GPUMesh {
	if gpu, ok := r.gpuMeshes[mesh]; ok {
		return gpu
	}
	if len(mesh.Vertices) == 0 || len(mesh.Indices) == 0 {
		return nil
	}

	stride := int32(unsafe.Sizeof(core.Vertex{}))
	gpu := &GPUMesh{IndexCount: int32(len(mesh.Indices))}

	gl.GenVertexArrays(1, &gpu.VAO)
	gl.GenBuffers(1, &gpu.VBO)
	gl.BindVertexArray(gpu.VAO)

	gl.BindBuffer(gl.ARRAY_BUFFER, gpu.VBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(mesh.Vertices)*int(stride), gl.Ptr(mesh.Vertices), gl.STATIC_DRAW)

	var v core.Vertex
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, gl.PtrOffset(int(unsafe.Offsetof(v.Position))))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 4, gl.FLOAT, false, stride, gl.PtrOffset(int(unsafe.Offsetof(v.Color))))

	gl.GenBuffers(1, &gpu.EBO)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gpu.EBO)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(mesh.Indices)*4, gl.Ptr(mesh.Indices), gl.STATIC_DRAW)

	gl.BindVertexArray(0)

	r.gpuMeshes[mesh] = gpu
	mesh.GPUData = gpu
	r.logger.Debug("mesh uploaded", "mesh", mesh.Name, "vertices", len(mesh.Vertices), "indices", len(mesh.Indices))
	return gpu
}

func newProgram(vertSrc, fragSrc string) (uint32, error) {
	vert, err := compileShader(vertSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex: %w", err)
	}
	frag, err := compileShader(fragSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, fmt.Errorf("fragment: %w", err)
	}

	prog := gl.CreateProgram()
	gl.AttachShader(prog, vert)
	gl.AttachShader(prog, frag)
	gl.LinkProgram(prog)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(log))
		return 0, fmt.Errorf("link failed: %v", log)
	}

	gl.DeleteShader(vert)
	gl.DeleteShader(frag)
	return prog, nil
}

func compileShader(src string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(src)
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(log))
		return 0, fmt.Errorf("compile failed: %v", log)
	}
	return shader, nil
}
