package ga

import (
	"fmt"
	"slices"
)

// Crossover produces two offspring from two parents sharing the index range
// [start, end]. The first child keeps p1's segment and is filled from p2,
// the second keeps p2's segment and is filled from p1.
func Crossover(p1, p2 *Tour, start, end int) (*Tour, *Tour, error) {
	if p1.Len() != p2.Len() {
		return nil, nil, fmt.Errorf("%w: %d != %d", ErrLengthMismatch, p1.Len(), p2.Len())
	}
	if start < 0 || start >= end || end >= p1.Len() {
		return nil, nil, fmt.Errorf("%w: [%d, %d] for length %d", ErrCrossoverRange, start, end, p1.Len())
	}

	c1 := fillFromDonor(p1.nodes[start:end+1], p2.nodes, start, end)
	c2 := fillFromDonor(p2.nodes[start:end+1], p1.nodes, start, end)
	return &Tour{nodes: c1}, &Tour{nodes: c2}, nil
}

// fillFromDonor seeds a child with segment and inserts the donor's missing
// nodes, scanning the donor from end+1 around to end. The insertion cursor
// starts right after the segment and wraps modulo end, not modulo the length.
func fillFromDonor(segment, donor []Point, start, end int) []Point {
	child := make([]Point, 0, len(donor))
	child = append(child, segment...)

	present := make(map[Point]struct{}, len(donor))
	for _, p := range segment {
		present[p] = struct{}{}
	}

	position := end - start + 1
	insert := func(p Point) {
		if _, ok := present[p]; ok {
			return
		}
		present[p] = struct{}{}
		child = slices.Insert(child, position, p)
		position = (position + 1) % end
	}

	for i := end + 1; i < len(donor); i++ {
		insert(donor[i])
	}
	for i := 0; i <= end; i++ {
		insert(donor[i])
	}
	return child
}
