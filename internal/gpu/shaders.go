//go:build !nogpu

package gpu

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/voronoi/render"
)

//go:embed shaders/mask.wgsl
var maskShaderSource string

//go:embed shaders/seed.wgsl
var seedShaderSource string

//go:embed shaders/flood.wgsl
var floodShaderSource string

//go:embed shaders/composite.wgsl
var compositeShaderSource string

// shaderSource returns the WGSL source of a pass kind.
func shaderSource(kind render.PipelineKind) (string, error) {
	switch kind {
	case render.PipelineMask:
		return maskShaderSource, nil
	case render.PipelineSeed:
		return seedShaderSource, nil
	case render.PipelineFlood:
		return floodShaderSource, nil
	case render.PipelineComposite:
		return compositeShaderSource, nil
	default:
		return "", fmt.Errorf("gpu: no shader for pipeline kind %v", kind)
	}
}

// compileSPIRV compiles WGSL source to SPIR-V words.
func compileSPIRV(wgsl string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgsl)
	if err != nil {
		return nil, fmt.Errorf("compile shader: %w", err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("compile shader: SPIR-V length %d is not word aligned", len(spirvBytes))
	}

	// SPIR-V is little-endian 32-bit words.
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}

func (b *Backend) createShaderModule(kind render.PipelineKind) (hal.ShaderModule, error) {
	src, err := shaderSource(kind)
	if err != nil {
		return nil, err
	}
	source := hal.ShaderSource{WGSL: src}
	if b.cfg.SPIRV {
		words, err := compileSPIRV(src)
		if err != nil {
			return nil, fmt.Errorf("%v shader: %w", kind, err)
		}
		source = hal.ShaderSource{SPIRV: words}
	}
	return b.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  kind.String(),
		Source: source,
	})
}
