package entry

import (
	"errors"
	"fmt"
	"testing"
)

// sumOfIndices makes the n-th item cost n bytes.
func sumOfIndices(items []byte) uint64 {
	var s uint64
	for i := range items {
		s += uint64(i)
	}
	return s
}

func TestNumWillFitEmpty(t *testing.T) {
	var items []uint32

	if n := NumWillFit(items, 8, func([]uint32) uint64 { return 4 }); n != 0 {
		t.Fatalf("empty input should fit 0 items, not %d", n)
	}
}

func TestNumWillFit(t *testing.T) {
	items := make([]byte, 10)
	for i := range items {
		items[i] = 1
	}

	cases := []struct {
		max      uint64
		expected int
	}{
		{0, 1},
		{8, 4},
		{1, 2},
		{45, 10},
		{44, 9},
		{46, 10},
		{1000, 10},
	}

	for _, c := range cases {
		if n := NumWillFit(items, c.max, sumOfIndices); n != c.expected {
			t.Fatalf("max %d: expected %d items, got %d", c.max, c.expected, n)
		}
	}
}

func TestNumWillFitNothingFits(t *testing.T) {
	items := []uint64{42}
	eightBytes := func(s []uint64) uint64 { return uint64(8 * len(s)) }

	if n := NumWillFit(items, 7, eightBytes); n != 0 {
		t.Fatalf("oversized item should fit 0, not %d", n)
	}
}

func TestNumWillFitSharpCutoff(t *testing.T) {
	items := make([]int, 100)

	for k := 1; k <= len(items); k++ {
		cutoff := func(s []int) uint64 {
			if len(s) > k {
				return 2
			}
			return 1
		}

		if n := NumWillFit(items, 1, cutoff); n != k {
			t.Fatalf("cutoff at %d: got %d", k, n)
		}
	}
}

func TestNumWillFitMeasurements(t *testing.T) {
	items := make([]int, 1024)
	calls := 0

	size := func(s []int) uint64 {
		calls++
		return uint64(len(s))
	}

	if n := NumWillFit(items, 300, size); n != 300 {
		t.Fatalf("expected 300, got %d", n)
	}

	if calls > 24 {
		t.Fatalf("too many size measurements: %d", calls)
	}
}

func TestSplitSerializableChunks(t *testing.T) {
	items := make([]int, 25)
	for i := range items {
		items[i] = i
	}

	size := func(s []int) uint64 { return uint64(len(s)) }
	convert := func(s []int) ([]int, error) { return append([]int(nil), s...), nil }

	chunks, err := SplitSerializableChunks(items, 10, size, convert)
	if err != nil {
		t.Fatal(err)
	}

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}

	var joined []int
	for _, c := range chunks {
		if len(c) > 10 {
			t.Fatalf("chunk of %d items exceeds limit", len(c))
		}
		joined = append(joined, c...)
	}

	if len(joined) != len(items) {
		t.Fatalf("expected %d items, got %d", len(items), len(joined))
	}
	for i := range items {
		if joined[i] != items[i] {
			t.Fatalf("item %d out of order", i)
		}
	}

	chunks, err = SplitSerializableChunks([]int{}, 10, size, convert)
	if err != nil || len(chunks) != 0 {
		t.Fatalf("empty input should produce no chunks: %v %v", chunks, err)
	}
}

func TestSplitSerializableChunksOversized(t *testing.T) {
	items := []int{1, 2, 50, 3}

	size := func(s []int) uint64 {
		var total uint64
		for _, v := range s {
			total += uint64(v)
		}
		return total
	}
	convert := func(s []int) (int, error) { return len(s), nil }

	_, err := SplitSerializableChunks(items, 10, size, convert)

	var oversized *OversizedItemError
	if !errors.As(err, &oversized) {
		t.Fatalf("expected an OversizedItemError, got %v", err)
	}
	if oversized.Index != 2 {
		t.Fatalf("oversized item should be at index 2, not %d", oversized.Index)
	}
}

func TestSplitSerializableChunksConvertError(t *testing.T) {
	boom := fmt.Errorf("boom")

	_, err := SplitSerializableChunks(
		[]int{1, 2, 3},
		2,
		func(s []int) uint64 { return uint64(len(s)) },
		func(s []int) (int, error) { return 0, boom },
	)

	if !errors.Is(err, boom) {
		t.Fatalf("convert error should be returned, got %v", err)
	}
}
