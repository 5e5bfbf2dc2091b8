package flood

// Field is a CPU-side W×H grid of texels stored row-major as RGBA float32.
type Field struct {
	W, H int
	Pix  []float32
}

// NewField allocates a zeroed w×h field.
func NewField(w, h int) *Field {
	return &Field{W: w, H: h, Pix: make([]float32, w*h*4)}
}

// At returns the texel at (x, y). Coordinates must be in bounds.
func (f *Field) At(x, y int) Texel {
	i := (y*f.W + x) * 4
	return Texel{f.Pix[i], f.Pix[i+1], f.Pix[i+2], f.Pix[i+3]}
}

// Set stores t at (x, y).
func (f *Field) Set(x, y int, t Texel) {
	i := (y*f.W + x) * 4
	copy(f.Pix[i:i+4], t[:])
}

// Fill sets every texel to t.
func (f *Field) Fill(t Texel) {
	for i := 0; i < len(f.Pix); i += 4 {
		copy(f.Pix[i:i+4], t[:])
	}
}

// In reports whether (x, y) lies inside the field.
func (f *Field) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < f.W && y < f.H
}

// SeedRow runs the seed-init kernel over row y, reading mask and writing dst.
func SeedRow(mask, dst *Field, y int) {
	for x := 0; x < dst.W; x++ {
		dst.Set(x, y, SeedFromMask(mask.At(x, y), x, y))
	}
}

// FloodRow runs one flood pass with stride step over row y.
func FloodRow(src, dst *Field, y int, step Step) {
	for x := 0; x < dst.W; x++ {
		dst.Set(x, y, Nearest(src, x, y, step))
	}
}

// Nearest returns the nearest seed visible from (x, y) at stride step.
//
// The nine samples are visited row by row (dy outer, dx inner, both from
// -1 to 1); samples outside src or without a seed are ignored. The first
// candidate with the strictly smallest squared distance wins.
func Nearest(src *Field, x, y int, step Step) Texel {
	best := NoSeed
	bestDist := int64(-1)
	sx, sy := int(step.X), int(step.Y)
	for dy := -1; dy <= 1; dy++ {
		py := y + dy*sy
		if py < 0 || py >= src.H {
			continue
		}
		for dx := -1; dx <= 1; dx++ {
			px := x + dx*sx
			if px < 0 || px >= src.W {
				continue
			}
			t := src.At(px, py)
			if !t.Valid() {
				continue
			}
			cx, cy := t.Coord()
			d := SquaredDistance(int64(x), int64(y), int64(cx), int64(cy))
			if bestDist < 0 || d < bestDist {
				best, bestDist = t, d
			}
		}
	}
	return best
}
