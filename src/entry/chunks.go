package entry

// NumWillFit returns the length of the longest prefix of items whose size, as
// measured by size, does not exceed maxSize. It returns 0 if items is empty or
// if not even the first item fits.
//
// The prefix is found by bisection so that size, which usually serializes its
// argument, is called O(log n) times.
func NumWillFit[T any](items []T, maxSize uint64, size func([]T) uint64) int {
	if len(items) == 0 {
		return 0
	}

	num := len(items)
	upper := len(items)
	lower := 1

	for {
		var next int
		if size(items[:num]) <= maxSize {
			next = (upper + num) / 2
			lower = num
		} else {
			if num == 1 {
				return 0
			}
			next = (lower + num) / 2
			upper = num
		}

		if next == num {
			break
		}
		num = next
	}

	return num
}

// SplitSerializableChunks partitions items into consecutive runs that each fit
// in maxSize, taking the longest fitting run every time, and converts every
// run with convert. Concatenating the runs reproduces items. It fails with an
// OversizedItemError if an item does not fit on its own.
func SplitSerializableChunks[T, R any](
	items []T,
	maxSize uint64,
	size func([]T) uint64,
	convert func([]T) (R, error),
) ([]R, error) {
	var result []R

	start := 0
	for start < len(items) {
		n := NumWillFit(items[start:], maxSize, size)
		if n == 0 {
			return nil, &OversizedItemError{Index: start, Max: maxSize}
		}

		r, err := convert(items[start : start+n])
		if err != nil {
			return nil, err
		}
		result = append(result, r)

		start += n
	}

	return result, nil
}
