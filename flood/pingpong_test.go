package flood

import "testing"

func TestPingPongFlip(t *testing.T) {
	p := NewPingPong("a", "b")
	if p.Input() != "a" || p.Output() != "b" {
		t.Fatalf("initial roles = (%s, %s), want (a, b)", p.Input(), p.Output())
	}

	p.Flip()
	if p.Input() != "b" || p.Output() != "a" {
		t.Errorf("after flip roles = (%s, %s), want (b, a)", p.Input(), p.Output())
	}

	p.Flip()
	if p.Input() != "a" || p.Output() != "b" {
		t.Errorf("flip is not an involution: (%s, %s)", p.Input(), p.Output())
	}
}

func TestPingPongRolesDiffer(t *testing.T) {
	a, b := new(int), new(int)
	p := NewPingPong(a, b)
	for i := 0; i < 5; i++ {
		if p.Input() == p.Output() {
			t.Fatalf("flip %d: input and output resolve to the same surface", i)
		}
		p.Flip()
	}
	p.Reset()
	if p.Flipped() || p.Input() != a {
		t.Error("Reset should restore A as input")
	}
}
