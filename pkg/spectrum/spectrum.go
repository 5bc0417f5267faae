// Package spectrum computes centred 2D power spectra of image regions.
package spectrum

import (
	"errors"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// ErrEmptyInput is returned for regions with no rows or no columns.
var ErrEmptyInput = errors.New("spectrum: empty input region")

// Transform returns the 2D DFT of region with the zero-frequency term moved to
// (rows/2, cols/2). The result is row-major with the same shape as region.
func Transform(region mat.Matrix) ([]complex128, int, int, error) {
	if region == nil {
		return nil, 0, 0, ErrEmptyInput
	}
	height, width := region.Dims()
	if height == 0 || width == 0 {
		return nil, 0, 0, ErrEmptyInput
	}

	data := make([]float64, height*width)
	for i := 0; i < height; i++ {
		mat.Row(data[i*width:(i+1)*width], i, region)
	}

	return shift(fft2D(data, height, width), height, width), height, width, nil
}

// PowerSpectrum returns |F|² of the centred transform of region.
// The result has exactly the shape of region and every value is >= 0.
func PowerSpectrum(region mat.Matrix) (*mat.Dense, error) {
	coeffs, height, width, err := Transform(region)
	if err != nil {
		return nil, err
	}

	power := make([]float64, len(coeffs))
	for i, c := range coeffs {
		re, im := real(c), imag(c)
		power[i] = re*re + im*im
	}
	return mat.NewDense(height, width, power), nil
}

// LogMagnitude returns the display view 20·ln|F| of the centred transform.
// Bins with zero magnitude come out as -Inf; it carries no weight in the
// analysis and exists for rendering only.
func LogMagnitude(region mat.Matrix) (*mat.Dense, error) {
	coeffs, height, width, err := Transform(region)
	if err != nil {
		return nil, err
	}

	view := make([]float64, len(coeffs))
	for i, c := range coeffs {
		view[i] = 20 * math.Log(cmplx.Abs(c))
	}
	return mat.NewDense(height, width, view), nil
}
