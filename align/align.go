// Package align embeds the resolved residues of a structure into the full
// sequence of the same chain.
//
// The resolved sequence of a crystal structure is the full sequence with some
// residues left out (loops that weren't visible in the density, and usually
// some of the termini). Every resolved residue must appear in the full
// sequence in the same order and nothing may be substituted, so the only
// thing an alignment can do is insert gaps into the resolved sequence.
package align

import (
	"fmt"

	"github.com/TuftsBCB/seq"
)

// Error is returned when a resolved sequence is not a subsequence of its full
// sequence. Index is the first resolved residue that could not be placed.
type Error struct {
	Index   int
	Residue seq.Residue
}

func (err *Error) Error() string {
	return fmt.Sprintf("Resolved residue %d ('%c') could not be aligned "+
		"to the full sequence", err.Index, err.Residue)
}

// Mapping maps each resolved residue to the index of its full sequence
// residue. A Mapping is strictly increasing.
type Mapping []int

// Gap is a maximal run of full sequence residues [Start, End) that have no
// resolved counterpart. Index is the number of resolved residues that come
// before the gap.
type Gap struct {
	Start, End int
	Index      int
}

func (g Gap) Len() int {
	return g.End - g.Start
}

const infinity = int32(1 << 30)

// Gapped aligns resolved to full. Of all the ways resolved can be embedded in
// full, the one with the fewest gaps is chosen. When that still leaves a
// choice (repeated motifs at the edge of a loop), residues are matched as early
// as possible so that gaps end up as far right as they can.
//
// If resolved is not an ordered subsequence of full, an *Error is returned.
func Gapped(resolved, full []seq.Residue) (Mapping, error) {
	if err := feasible(resolved, full); err != nil {
		return nil, err
	}

	n, m := len(full), len(resolved)
	if m == 0 {
		return Mapping{}, nil
	}

	// The cost of a cell (i, j, g) is the fewest gaps needed to align
	// resolved[j:] with full[i:], where g is 1 when full[i-1] was left
	// unmatched. Only cells with 0 <= i-j <= n-m can be part of an alignment,
	// so the match decisions are kept for that band only, one bit per cell.
	// Costs only need the row below, so two rows are kept.
	band := n - m + 1
	matches := newBits((n + 1) * band * 2)
	decision := func(i, j, g int) int {
		return (i*band+i-j)*2 + g
	}

	next := make([]int32, (m+1)*2)
	cur := make([]int32, (m+1)*2)
	for i := n; i >= 0; i-- {
		for j := m; j >= 0; j-- {
			for g := 0; g <= 1; g++ {
				c := &cur[j*2+g]
				switch {
				case i-j < 0 || i-j >= band:
					*c = infinity
				case j == m:
					*c = 0
					if i < n && g == 0 {
						*c = 1
					}
				case i == n:
					*c = infinity
				default:
					*c = gapCost(next[j*2+1], g)
					if full[i] == resolved[j] {
						match := next[(j+1)*2]
						if match <= *c {
							matches.set(decision(i, j, g))
						}
						if match < *c {
							*c = match
						}
					}
				}
			}
		}
		next, cur = cur, next
	}

	mapping := make(Mapping, 0, m)
	for i, j, g := 0, 0, 0; j < m; i++ {
		if matches.get(decision(i, j, g)) {
			mapping = append(mapping, i)
			j, g = j+1, 0
		} else {
			g = 1
		}
	}
	return mapping, nil
}

// gapCost is the cost of leaving a full residue unmatched, given the cost
// of the cell to its right. Opening a gap costs one, extending it is free.
func gapCost(next int32, g int) int32 {
	if next >= infinity {
		return infinity
	}
	if g == 0 {
		return next + 1
	}
	return next
}

type bits []uint64

func newBits(n int) bits {
	return make(bits, (n+63)/64)
}

func (b bits) set(i int) {
	b[i/64] |= 1 << uint(i%64)
}

func (b bits) get(i int) bool {
	return b[i/64]&(1<<uint(i%64)) != 0
}

// feasible checks that resolved is a subsequence of full by matching each
// residue as early as possible. This also finds the first residue that
// cannot be placed by any alignment.
func feasible(resolved, full []seq.Residue) error {
	i := 0
	for j, r := range resolved {
		for i < len(full) && full[i] != r {
			i++
		}
		if i == len(full) {
			return &Error{Index: j, Residue: r}
		}
		i++
	}
	return nil
}

// Gaps returns every maximal run of unmatched residues in a full sequence of
// length lenFull, in order. Gaps are never empty and never adjacent.
// Leading and trailing runs are included.
func (m Mapping) Gaps(lenFull int) []Gap {
	var gaps []Gap
	prev := -1
	for j, i := range m {
		if i > prev+1 {
			gaps = append(gaps, Gap{Start: prev + 1, End: i, Index: j})
		}
		prev = i
	}
	if lenFull > prev+1 {
		gaps = append(gaps, Gap{Start: prev + 1, End: lenFull, Index: len(m)})
	}
	return gaps
}

// Terminal returns true if the gap touches either end of a full sequence
// with length lenFull.
func (g Gap) Terminal(lenFull int) bool {
	return g.Start == 0 || g.End == lenFull
}

// Render returns the resolved residues laid out against a full sequence of
// length lenFull, with '-' wherever a full residue is unmatched.
func (m Mapping) Render(resolved []seq.Residue, lenFull int) []seq.Residue {
	out := make([]seq.Residue, lenFull)
	for i := range out {
		out[i] = '-'
	}
	for j, i := range m {
		out[i] = resolved[j]
	}
	return out
}
