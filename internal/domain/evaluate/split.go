// Package evaluate splits labelled data into train and test partitions and
// scores a binary classifier on the held-out part.
package evaluate

import (
	"fmt"
	"math"
	"math/rand"
	"slices"
	"sort"
)

// DefaultTestSize is the held-out fraction used when none is configured.
const DefaultTestSize = 0.2

// Split holds row indices of the two partitions, each in ascending order.
type Split struct {
	Train []int
	Test  []int
	// Stratified reports whether class proportions were preserved.
	Stratified bool
}

// TrainTestSplit partitions len(labels) rows. The test partition gets
// ceil(testSize*n) rows (at least one, leaving at least one for training).
// When both classes are present the split is stratified; otherwise it is a
// plain seeded shuffle.
func TrainTestSplit(labels []int, testSize float64, seed int64) (Split, error) {
	n := len(labels)
	if n < 2 {
		return Split{}, fmt.Errorf("%w: %d rows", ErrInsufficientData, n)
	}
	if !(testSize > 0 && testSize < 1) {
		return Split{}, fmt.Errorf("%w: %v", ErrInvalidTestSize, testSize)
	}
	nTest := int(math.Ceil(testSize * float64(n)))
	nTest = min(max(nTest, 1), n-1)

	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // reproducible split

	var classes [2][]int
	for i, l := range labels {
		if l != 0 {
			l = 1
		}
		classes[l] = append(classes[l], i)
	}

	var s Split
	if len(classes[0]) == 0 || len(classes[1]) == 0 {
		perm := rng.Perm(n)
		s.Test = append(s.Test, perm[:nTest]...)
		s.Train = append(s.Train, perm[nTest:]...)
	} else {
		s.Stratified = true
		quota := allocate(nTest, n, len(classes[0]), len(classes[1]))
		for c, rows := range classes {
			rng.Shuffle(len(rows), func(i, j int) { rows[i], rows[j] = rows[j], rows[i] })
			s.Test = append(s.Test, rows[:quota[c]]...)
			s.Train = append(s.Train, rows[quota[c]:]...)
		}
	}
	slices.Sort(s.Train)
	slices.Sort(s.Test)
	return s, nil
}

// allocate distributes nTest slots over the two classes proportionally,
// handing leftover slots to the larger fractional remainders.
func allocate(nTest, n int, sizes ...int) []int {
	type share struct {
		class int
		rem   float64
	}
	quota := make([]int, len(sizes))
	shares := make([]share, len(sizes))
	given := 0
	for c, size := range sizes {
		exact := float64(nTest) * float64(size) / float64(n)
		quota[c] = int(math.Floor(exact))
		shares[c] = share{class: c, rem: exact - float64(quota[c])}
		given += quota[c]
	}
	sort.SliceStable(shares, func(i, j int) bool { return shares[i].rem > shares[j].rem })
	for i := 0; given < nTest; i = (i + 1) % len(shares) {
		c := shares[i].class
		if quota[c] < sizes[c] {
			quota[c]++
			given++
		}
	}
	return quota
}
