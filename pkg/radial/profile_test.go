package radial

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"spectralpeaks/internal/models"
)

// bruteForceMean mirrors the ring definition literally: a range test per ring
func bruteForceMean(power mat.Matrix, r float64) float64 {
	rows, cols := power.Dims()
	cy, cx := rows/2, cols/2
	sum, n := 0.0, 0
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			dist := math.Hypot(float64(x-cx), float64(y-cy))
			if dist >= r-0.5 && dist < r+0.5 {
				sum += power.At(y, x)
				n++
			}
		}
	}
	return sum / float64(n)
}

func TestProfileLengthAndRadii(t *testing.T) {
	for _, size := range [][2]int{{4, 4}, {17, 9}, {64, 64}, {450, 420}} {
		power := mat.NewDense(size[0], size[1], nil)

		profile := Profile(power)
		require.Len(t, profile.Radii, models.ProfileLength)
		require.Len(t, profile.Means, models.ProfileLength)
		for i, r := range profile.Radii {
			require.Equal(t, float64(i+1), r)
		}
	}
}

// TestProfileMissingBins documents that unreachable rings are NaN
func TestProfileMissingBins(t *testing.T) {
	power := mat.NewDense(8, 8, nil)
	power.Apply(func(_, _ int, _ float64) float64 { return 1 }, power)

	profile := Profile(power)

	// Farthest pixel is (0,0): distance sqrt(32) ≈ 5.66, ring 6
	for i := 0; i < 6; i++ {
		require.True(t, profile.Valid(i), "ring %d", i+1)
		require.Equal(t, 1.0, profile.Means[i])
	}
	for i := 6; i < models.ProfileLength; i++ {
		require.True(t, math.IsNaN(profile.Means[i]), "ring %d", i+1)
		require.False(t, profile.Valid(i))
	}
}

func TestProfileMatchesRangeTest(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	power := mat.NewDense(41, 37, nil)
	power.Apply(func(_, _ int, _ float64) float64 { return rng.Float64() * 1e6 }, power)

	profile := Profile(power)
	for i, r := range profile.Radii {
		want := bruteForceMean(power, r)
		if math.IsNaN(want) {
			require.True(t, math.IsNaN(profile.Means[i]), "ring %v", r)
			continue
		}
		require.InDelta(t, want, profile.Means[i], want*1e-12, "ring %v", r)
	}
}

// TestProfileRingValues uses a spectrum whose value is the pixel distance
func TestProfileRingValues(t *testing.T) {
	power := mat.NewDense(11, 11, nil)
	power.Apply(func(i, j int, _ float64) float64 {
		return math.Hypot(float64(i-5), float64(j-5))
	}, power)

	profile := Profile(power)

	// Ring 1: four neighbours at distance 1 and four diagonals at sqrt(2)
	require.InDelta(t, (1+math.Sqrt2)/2, profile.Means[0], 1e-12)

	// Ring 2: four at distance 2 and eight at sqrt(5)
	require.InDelta(t, (4*2+8*math.Sqrt(5))/12, profile.Means[1], 1e-12)

	// The centre pixel never contributes
	require.Equal(t, 0.0, power.At(5, 5))
	require.False(t, math.IsNaN(profile.Means[4]))
}

func TestRingIndex(t *testing.T) {
	cases := []struct {
		radius float64
		want   int
	}{
		{0, 0},
		{0.49, 0},
		{0.5, 1},
		{1.0, 1},
		{1.4999, 1},
		{1.5, 2},
		{math.Sqrt2, 1},
		{199.5, 200},
		{200.49, 200},
		{200.5, 201},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, ringIndex(tc.radius), "radius %v", tc.radius)
	}
}

// TestProfileIdempotent checks that repeated runs give identical output,
// including the positions of NaN bins
func TestProfileIdempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	power := mat.NewDense(30, 50, nil)
	power.Apply(func(_, _ int, _ float64) float64 { return rng.Float64() }, power)

	first := Profile(power)
	second := Profile(power)
	for i := range first.Means {
		if math.IsNaN(first.Means[i]) {
			require.True(t, math.IsNaN(second.Means[i]))
			continue
		}
		require.Equal(t, first.Means[i], second.Means[i])
	}
}
