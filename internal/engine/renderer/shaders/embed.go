// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// BrushVertexShader transforms brush meshes into clip space.
//
//go:embed brush.vert
var BrushVertexShader string

// BrushFragmentShader shades brush meshes with a texture and flat lighting.
//
//go:embed brush.frag
var BrushFragmentShader string
