// Package radial reduces a 2D power spectrum to a 1D profile by averaging
// over concentric rings around the array centre.
package radial

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"spectralpeaks/internal/models"
)

// Profile averages power over rings of unit width centred on (rows/2, cols/2).
//
// Ring r (1 <= r <= models.ProfileLength) collects the pixels whose distance R
// from the centre satisfies r-0.5 <= R < r+0.5. Rings that no pixel reaches
// (arrays smaller than the largest radius) yield NaN; the profile always has
// models.ProfileLength entries.
func Profile(power mat.Matrix) models.RadialProfile {
	bins := make([][]float64, models.ProfileLength+1)

	rows, cols := power.Dims()
	cy, cx := rows/2, cols/2
	for y := 0; y < rows; y++ {
		dy := float64(y - cy)
		for x := 0; x < cols; x++ {
			dx := float64(x - cx)
			b := ringIndex(math.Sqrt(dx*dx + dy*dy))
			if b < 1 || b > models.ProfileLength {
				continue
			}
			bins[b] = append(bins[b], power.At(y, x))
		}
	}

	profile := models.RadialProfile{
		Radii: make([]float64, models.ProfileLength),
		Means: make([]float64, models.ProfileLength),
	}
	for r := 1; r <= models.ProfileLength; r++ {
		profile.Radii[r-1] = float64(r)
		if len(bins[r]) == 0 {
			profile.Means[r-1] = math.NaN()
			continue
		}
		profile.Means[r-1] = stat.Mean(bins[r], nil)
	}
	return profile
}

// ringIndex returns the integer r with r-0.5 <= radius < r+0.5.
// The comparisons are repeated on the bounds themselves so that values sitting
// exactly on a half-integer land in the same ring as a direct range test.
func ringIndex(radius float64) int {
	r := int(math.Floor(radius + 0.5))
	if radius < float64(r)-0.5 {
		r--
	} else if radius >= float64(r)+0.5 {
		r++
	}
	return r
}
