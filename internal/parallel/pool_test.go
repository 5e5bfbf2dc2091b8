package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
)

func TestPoolCreate(t *testing.T) {
	p := NewPool(4)
	defer p.Close()

	if p.Workers() != 4 {
		t.Errorf("Workers() = %d, want 4", p.Workers())
	}
	if !p.IsRunning() {
		t.Error("pool should be running after creation")
	}
}

func TestPoolDefaultWorkers(t *testing.T) {
	for _, n := range []int{0, -3} {
		p := NewPool(n)
		if p.Workers() != runtime.GOMAXPROCS(0) {
			t.Errorf("NewPool(%d).Workers() = %d, want GOMAXPROCS", n, p.Workers())
		}
		p.Close()
	}
}

func TestPoolRun(t *testing.T) {
	p := NewPool(4)
	defer p.Close()

	var counter atomic.Int64
	work := make([]func(), 100)
	for i := range work {
		work[i] = func() { counter.Add(1) }
	}
	p.Run(work)

	if got := counter.Load(); got != 100 {
		t.Errorf("ran %d items, want 100", got)
	}
}

func TestPoolRows(t *testing.T) {
	p := NewPool(3)
	defer p.Close()

	for _, n := range []int{1, 2, 7, 100, 513} {
		seen := make([]int32, n)
		p.Rows(n, func(start, end int) {
			for y := start; y < end; y++ {
				atomic.AddInt32(&seen[y], 1)
			}
		})
		for y, c := range seen {
			if c != 1 {
				t.Fatalf("n=%d: row %d visited %d times", n, y, c)
			}
		}
	}
}

func TestPoolAfterClose(t *testing.T) {
	p := NewPool(2)
	p.Close()
	p.Close()

	ran := false
	p.Run([]func(){func() { ran = true }})
	if !ran {
		t.Error("Run on a closed pool should run inline")
	}
}

func TestPoolConcurrentRun(t *testing.T) {
	p := NewPool(4)
	defer p.Close()

	var total atomic.Int64
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Rows(64, func(start, end int) { total.Add(int64(end - start)) })
		}()
	}
	wg.Wait()
	if got := total.Load(); got != 8*64 {
		t.Errorf("total rows = %d, want %d", got, 8*64)
	}
}
