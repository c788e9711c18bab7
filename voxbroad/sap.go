package voxbroad

import "github.com/voxcore/voxcore/voxmath"

type sapEndpoint struct {
	index int32
	value float32
	box   voxmath.AABB
}

// SweepAndPrune generates candidate pairs by 1-D insertion sort over AABB
// minimum-X endpoints, testing Y/Z overlap only for pairs whose X ranges
// already overlap. Used by the generic proxy layer when the active set is
// small (spec §4.9).
type SweepAndPrune struct {
	entries []sapEndpoint
	pairs   []Pair
}

// NewSweepAndPrune allocates a sweep-and-prune structure sized for up to
// maxEntries proxies.
func NewSweepAndPrune(maxEntries int) *SweepAndPrune {
	return &SweepAndPrune{
		entries: make([]sapEndpoint, 0, maxEntries),
		pairs:   make([]Pair, 0, maxEntries*4),
	}
}

// Reset empties the entry list for the next build (keeps backing arrays).
func (s *SweepAndPrune) Reset() {
	s.entries = s.entries[:0]
	s.pairs = s.pairs[:0]
}

// Insert adds a proxy's index and world AABB.
func (s *SweepAndPrune) Insert(index int32, box voxmath.AABB) {
	s.entries = append(s.entries, sapEndpoint{index: index, value: box.Min.X(), box: box})
}

// Pairs sorts the entries by X-minimum (insertion sort, cheap for the
// mostly-sorted frame-to-frame case) and sweeps, emitting each overlapping
// pair exactly once with the lower index first.
func (s *SweepAndPrune) Pairs() []Pair {
	insertionSort(s.entries)
	s.pairs = s.pairs[:0]
	for i := 0; i < len(s.entries); i++ {
		a := s.entries[i]
		for j := i + 1; j < len(s.entries); j++ {
			b := s.entries[j]
			if b.value > a.box.Max.X() {
				break
			}
			if !overlapsYZ(a.box, b.box) {
				continue
			}
			s.pairs = append(s.pairs, makePair(a.index, b.index))
		}
	}
	return s.pairs
}

func overlapsYZ(a, b voxmath.AABB) bool {
	return a.Min.Y() <= b.Max.Y() && a.Max.Y() >= b.Min.Y() &&
		a.Min.Z() <= b.Max.Z() && a.Max.Z() >= b.Min.Z()
}

func insertionSort(e []sapEndpoint) {
	for i := 1; i < len(e); i++ {
		v := e[i]
		j := i - 1
		for j >= 0 && e[j].value > v.value {
			e[j+1] = e[j]
			j--
		}
		e[j+1] = v
	}
}
