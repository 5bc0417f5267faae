package spectrum

import (
	"math"
	"math/cmplx"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// naiveDFT2D is the textbook O(N²M²) transform used as a reference
func naiveDFT2D(data []float64, height, width int) []complex128 {
	out := make([]complex128, height*width)
	for k := 0; k < height; k++ {
		for l := 0; l < width; l++ {
			var sum complex128
			for m := 0; m < height; m++ {
				for n := 0; n < width; n++ {
					angle := -2 * math.Pi * (float64(k*m)/float64(height) + float64(l*n)/float64(width))
					sum += complex(data[m*width+n], 0) * cmplx.Exp(complex(0, angle))
				}
			}
			out[k*width+l] = sum
		}
	}
	return out
}

func randomMatrix(rng *rand.Rand, rows, cols int) *mat.Dense {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = rng.Float64() * 255
	}
	return mat.NewDense(rows, cols, data)
}

// TestFFT2DMatchesNaiveDFT checks even, odd and non-square sizes
func TestFFT2DMatchesNaiveDFT(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	sizes := [][2]int{{4, 4}, {5, 7}, {8, 3}, {2, 5}, {3, 3}}

	for _, size := range sizes {
		height, width := size[0], size[1]
		m := randomMatrix(rng, height, width)
		data := make([]float64, height*width)
		for i := 0; i < height; i++ {
			mat.Row(data[i*width:(i+1)*width], i, m)
		}

		got := fft2D(data, height, width)
		want := naiveDFT2D(data, height, width)
		require.Len(t, got, len(want))
		for i := range want {
			require.InDelta(t, real(want[i]), real(got[i]), 1e-6, "size %v index %d (real)", size, i)
			require.InDelta(t, imag(want[i]), imag(got[i]), 1e-6, "size %v index %d (imag)", size, i)
		}
	}
}

// TestShift verifies the wrap-around reindexing for even and odd dimensions
func TestShift(t *testing.T) {
	height, width := 3, 4
	coeffs := make([]complex128, height*width)
	for i := range coeffs {
		coeffs[i] = complex(float64(i), 0)
	}

	shifted := shift(coeffs, height, width)
	for i := 0; i < height; i++ {
		for j := 0; j < width; j++ {
			di := (i + height/2) % height
			dj := (j + width/2) % width
			require.Equal(t, coeffs[i*width+j], shifted[di*width+dj])
		}
	}

	// DC ends up at the centre
	require.Equal(t, complex(0, 0), shifted[(height/2)*width+width/2])
}

// TestPowerSpectrumShapeAndSign covers the shape and non-negativity guarantees
func TestPowerSpectrumShapeAndSign(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for _, size := range [][2]int{{16, 16}, {9, 14}, {31, 2}} {
		region := randomMatrix(rng, size[0], size[1])

		power, err := PowerSpectrum(region)
		require.NoError(t, err)

		rows, cols := power.Dims()
		require.Equal(t, size[0], rows)
		require.Equal(t, size[1], cols)
		require.GreaterOrEqual(t, floats.Min(power.RawMatrix().Data), 0.0)
	}
}

// TestPowerSpectrumDCTerm checks that the centre holds the squared pixel sum
func TestPowerSpectrumDCTerm(t *testing.T) {
	region := mat.NewDense(4, 6, nil)
	region.Apply(func(i, j int, _ float64) float64 { return float64(i + j) }, region)

	power, err := PowerSpectrum(region)
	require.NoError(t, err)

	sum := mat.Sum(region)
	require.InDelta(t, sum*sum, power.At(2, 3), 1e-6)
}

// TestPowerSpectrumSinusoid places a pure cosine and expects energy at ±f only
func TestPowerSpectrumSinusoid(t *testing.T) {
	const size, freq = 32, 5
	region := mat.NewDense(size, size, nil)
	region.Apply(func(i, j int, _ float64) float64 {
		return math.Cos(2 * math.Pi * freq * float64(j) / size)
	}, region)

	power, err := PowerSpectrum(region)
	require.NoError(t, err)

	expected := math.Pow(size*size/2.0, 2)
	require.InDelta(t, expected, power.At(size/2, size/2+freq), expected*1e-9)
	require.InDelta(t, expected, power.At(size/2, size/2-freq), expected*1e-9)
	require.InDelta(t, 0, power.At(size/2, size/2), 1e-6)
}

// TestPowerSpectrumOnView makes sure cropped views are read correctly
func TestPowerSpectrumOnView(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	full := randomMatrix(rng, 10, 10)
	view := full.Slice(2, 8, 1, 9)

	copied := mat.DenseCopyOf(view)

	fromView, err := PowerSpectrum(view)
	require.NoError(t, err)
	fromCopy, err := PowerSpectrum(copied)
	require.NoError(t, err)
	require.True(t, mat.Equal(fromView, fromCopy))
}

func TestPowerSpectrumEmpty(t *testing.T) {
	_, err := PowerSpectrum(nil)
	require.ErrorIs(t, err, ErrEmptyInput)
}

func TestLogMagnitude(t *testing.T) {
	region := mat.NewDense(2, 2, []float64{1, 1, 1, 1})

	view, err := LogMagnitude(region)
	require.NoError(t, err)

	// Only DC is non-zero: |F| = 4 at the centre
	require.InDelta(t, 20*math.Log(4), view.At(1, 1), 1e-12)
	require.True(t, math.IsInf(view.At(0, 0), -1))
}
