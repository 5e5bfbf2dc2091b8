//go:build !nogpu

package gpu

// Uniform blocks mirror the Params structs of the WGSL shaders,
// including their padding.

type seedParams struct {
	Width, Height uint32
	_             [2]uint32
}

type floodParams struct {
	Width, Height uint32
	StepX, StepY  uint32
}

type maskParams struct {
	Width, Height          uint32
	VpX0, VpY0, VpX1, VpY1 uint32
	TriCount               uint32
	Masked                 uint32
	MaskWidth, MaskHeight  uint32
	Threshold              float32
	_                      uint32
}

// gpuTriangle is one element of the mask triangle buffer.
type gpuTriangle struct {
	A, B, C       [2]float32
	UVA, UVB, UVC [2]float32
	Owner         uint32
	_             uint32
}

type compositeParams struct {
	Width, Height           uint32
	FieldWidth, FieldHeight uint32
	VpX0, VpY0, VpX1, VpY1  uint32
	Mode                    uint32
	Quantize                uint32
	Scale                   float32
	MaxDistance             float32
	OutlineColor            [4]float32
	OutlineWidth            float32
	Opacity                 float32
	_                       [2]uint32
}
