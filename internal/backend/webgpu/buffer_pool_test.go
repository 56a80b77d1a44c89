//go:build windows

package webgpu

import "testing"

func TestAlign(t *testing.T) {
	cases := map[uint64]uint64{0: 0, 1: 4, 4: 4, 5: 8, 1023: 1024}
	for in, want := range cases {
		if got := Align(in); got != want {
			t.Errorf("Align(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestBucket(t *testing.T) {
	cases := []struct {
		size uint64
		want int
	}{
		{0, minBucket},
		{256, minBucket},
		{257, 9},
		{512, 9},
		{513, 10},
		{1 << 20, 20},
	}
	for _, c := range cases {
		if got := bucket(c.size); got != c.want {
			t.Errorf("bucket(%d) = %d, want %d", c.size, got, c.want)
		}
	}
}
