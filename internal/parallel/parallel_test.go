package parallel

import (
	"errors"
	"sync/atomic"
	"testing"
)

func TestFor(t *testing.T) {
	cfg := DefaultConfig()

	var counter int64
	n := 1000

	err := For(n, cfg, func(_ int) error {
		atomic.AddInt64(&counter, 1)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	if counter != int64(n) {
		t.Errorf("Expected %d, got %d", n, counter)
	}
}

func TestRange_CoversEveryIndexOnce(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 3}
	n := 50
	seen := make([]int32, n)

	err := Range(n, cfg, func(start, end int) error {
		for i := start; i < end; i++ {
			atomic.AddInt32(&seen[i], 1)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	for i, c := range seen {
		if c != 1 {
			t.Errorf("index %d visited %d times", i, c)
		}
	}
}

func TestFor_Sequential(t *testing.T) {
	cfg := Sequential()

	var counter int64
	_ = For(100, cfg, func(_ int) error {
		atomic.AddInt64(&counter, 1)
		return nil
	})

	if counter != 100 {
		t.Errorf("Expected 100, got %d", counter)
	}
}

func TestFor_SmallChunk(t *testing.T) {
	// Small work units fall back to one call on the caller's goroutine.
	cfg := DefaultConfig()

	calls := 0
	n := cfg.MinChunkSize - 1

	_ = Range(n, cfg, func(start, end int) error {
		calls++
		if start != 0 || end != n {
			t.Errorf("expected [0,%d), got [%d,%d)", n, start, end)
		}
		return nil
	})

	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestFor_PropagatesError(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 1}
	boom := errors.New("boom")

	err := For(100, cfg, func(i int) error {
		if i == 42 {
			return boom
		}
		return nil
	})

	if !errors.Is(err, boom) {
		t.Errorf("Expected boom, got %v", err)
	}
}

func TestRange_Empty(t *testing.T) {
	called := false
	err := Range(0, DefaultConfig(), func(_, _ int) error {
		called = true
		return nil
	})
	if err != nil || called {
		t.Errorf("Expected no call and no error, got called=%v err=%v", called, err)
	}
}

func BenchmarkFor(b *testing.B) {
	cfg := DefaultConfig()
	n := 10000

	b.Run("parallel", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			var sum int64
			_ = For(n, cfg, func(i int) error {
				atomic.AddInt64(&sum, int64(i))
				return nil
			})
		}
	})

	b.Run("sequential", func(b *testing.B) {
		cfgSeq := cfg
		cfgSeq.Enabled = false
		for i := 0; i < b.N; i++ {
			var sum int64
			_ = For(n, cfgSeq, func(i int) error {
				atomic.AddInt64(&sum, int64(i))
				return nil
			})
		}
	})
}
