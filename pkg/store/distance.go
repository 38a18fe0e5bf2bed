package store

import (
	"fmt"
	"math"
)

// CosineDistance is 1 minus the cosine similarity of a and b. A zero vector
// is treated as unrelated to everything.
func CosineDistance(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("dimension mismatch: %d vs %d", len(a), len(b))
	}

	var dot, na2, nb2 float64
	for i := range a {
		va := float64(a[i])
		vb := float64(b[i])
		dot += va * vb
		na2 += va * va
		nb2 += vb * vb
	}
	if na2 == 0 || nb2 == 0 {
		return 1, nil
	}
	return 1 - dot/(math.Sqrt(na2)*math.Sqrt(nb2)), nil
}

func checkDim(want, got int) error {
	if want > 0 && want != got {
		return fmt.Errorf("dimension mismatch: collection has %d, got %d", want, got)
	}
	return nil
}
