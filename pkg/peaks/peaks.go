// Package peaks locates local maxima in a radial profile.
package peaks

import (
	"spectralpeaks/internal/models"
)

// Find returns the peak at the smallest radius whose mean is at least threshold.
//
// A sample is a peak when it is strictly greater than both immediate neighbours,
// so the first and last samples never qualify and a flat top is not a peak.
// NaN samples follow IEEE comparison rules: they are never peaks and a NaN
// neighbour hides the sample next to it. ok is false when nothing qualifies or
// when radii and means differ in length.
func Find(radii, means []float64, threshold float64) (peak models.Peak, ok bool) {
	if len(radii) != len(means) {
		return models.Peak{}, false
	}
	for i := 1; i < len(means)-1; i++ {
		if isPeak(means, i, threshold) {
			return models.Peak{Radius: radii[i], Mean: means[i]}, true
		}
	}
	return models.Peak{}, false
}

// FindAll returns every qualifying peak in ascending radius order.
func FindAll(radii, means []float64, threshold float64) []models.Peak {
	if len(radii) != len(means) {
		return nil
	}
	var found []models.Peak
	for i := 1; i < len(means)-1; i++ {
		if isPeak(means, i, threshold) {
			found = append(found, models.Peak{Radius: radii[i], Mean: means[i]})
		}
	}
	return found
}

// FindInProfile is Find applied to a RadialProfile
func FindInProfile(profile models.RadialProfile, threshold float64) (models.Peak, bool) {
	return Find(profile.Radii, profile.Means, threshold)
}

func isPeak(means []float64, i int, threshold float64) bool {
	v := means[i]
	return v > means[i-1] && v > means[i+1] && v >= threshold
}
