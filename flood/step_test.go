package flood

import "testing"

func TestSteps(t *testing.T) {
	tests := []struct {
		name string
		w, h int
		want []Step
	}{
		{"512 square", 512, 512, []Step{
			{256, 256}, {128, 128}, {64, 64}, {32, 32}, {16, 16},
			{8, 8}, {4, 4}, {2, 2}, {1, 1}, {1, 1},
		}},
		{"wide", 8, 2, []Step{{4, 1}, {2, 1}, {1, 1}, {1, 1}}},
		{"tall", 3, 12, []Step{{1, 6}, {1, 3}, {1, 1}, {1, 1}}},
		{"single texel", 1, 1, []Step{{1, 1}}},
		{"empty", 0, 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Steps(tt.w, tt.h)
			if len(got) != len(tt.want) {
				t.Fatalf("Steps(%d, %d) = %v, want %v", tt.w, tt.h, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("step %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
			if n := PassCount(tt.w, tt.h); n != len(tt.want) {
				t.Errorf("PassCount = %d, want %d", n, len(tt.want))
			}
		})
	}
}

func TestStepsHalveAndRefine(t *testing.T) {
	for _, dim := range []int{2, 3, 7, 100, 255, 256, 257, 1000, 4096} {
		steps := Steps(dim, dim)
		if steps[len(steps)-1] != Refine {
			t.Fatalf("dim %d: last step %v, want %v", dim, steps[len(steps)-1], Refine)
		}
		loop := steps[:len(steps)-1]
		if len(loop) == 0 || loop[len(loop)-1] != Refine {
			t.Fatalf("dim %d: halving loop must end at (1,1), got %v", dim, loop)
		}
		if int(loop[0].X) != dim/2 {
			t.Errorf("dim %d: first step %v, want %d", dim, loop[0], dim/2)
		}
		for i := 1; i < len(loop); i++ {
			if loop[i].X != loop[i-1].X/2 {
				t.Errorf("dim %d: step %d = %v does not halve %v", dim, i, loop[i], loop[i-1])
			}
		}
	}
}
