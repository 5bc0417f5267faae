package spectrum

import (
	"gonum.org/v1/gonum/dsp/fourier"
)

// fft2D performs a 2D Fast Fourier Transform on the input data.
// The transform is unnormalised, matching the usual forward DFT definition
// X[k,l] = sum x[m,n] exp(-2πi(km/H + ln/W)).
//
// Parameters:
//   - data: Input samples as a 1D array (row-major order)
//   - height, width: Dimensions of the 2D array; any positive size works
//
// Returns:
//   - The 2D FFT of the input data as a 1D array of complex numbers (row-major)
func fft2D(data []float64, height, width int) []complex128 {
	result := make([]complex128, height*width)

	// Rows are real, so the half-spectrum from the real FFT is enough
	rowFFT := fourier.NewFFT(width)
	rowInput := make([]float64, width)
	rowOutput := make([]complex128, width/2+1)

	for i := 0; i < height; i++ {
		copy(rowInput, data[i*width:(i+1)*width])
		rowFFT.Coefficients(rowOutput, rowInput)

		full := result[i*width : (i+1)*width]
		copy(full, rowOutput)
		for j := len(rowOutput); j < width; j++ {
			// Conjugate symmetry: F(n-k) = F*(k)
			k := width - j
			full[j] = complex(real(rowOutput[k]), -imag(rowOutput[k]))
		}
	}

	// Columns hold complex row coefficients
	colFFT := fourier.NewCmplxFFT(height)
	colInput := make([]complex128, height)
	colOutput := make([]complex128, height)

	for j := 0; j < width; j++ {
		for i := 0; i < height; i++ {
			colInput[i] = result[i*width+j]
		}

		colFFT.Coefficients(colOutput, colInput)

		for i := 0; i < height; i++ {
			result[i*width+j] = colOutput[i]
		}
	}

	return result
}

// shift moves the zero-frequency term to the centre of the array.
// Element (i, j) ends up at ((i + height/2) mod height, (j + width/2) mod width).
func shift(coeffs []complex128, height, width int) []complex128 {
	shifted := make([]complex128, len(coeffs))
	for i := 0; i < height; i++ {
		di := (i + height/2) % height
		for j := 0; j < width; j++ {
			dj := (j + width/2) % width
			shifted[di*width+dj] = coeffs[i*width+j]
		}
	}
	return shifted
}
