// Package imageio loads images as sample matrices and crops regions of interest.
package imageio

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/tiff"
	"gonum.org/v1/gonum/mat"

	"spectralpeaks/internal/models"
)

var (
	// ErrEmptyImage is returned for images with zero width or height.
	ErrEmptyImage = errors.New("image has no pixels")

	// ErrCropBounds is returned when a crop rectangle does not fit the image.
	ErrCropBounds = errors.New("crop rectangle outside image bounds")
)

// Loader reads image files from disk
type Loader struct{}

// NewLoader creates a file loader for TIFF, PNG and JPEG images.
func NewLoader() *Loader {
	return &Loader{}
}

// Load decodes the file at path and returns its samples as a matrix
// (rows = height, columns = width).
func (l *Loader) Load(path string) (*mat.Dense, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s: %w", path, err)
	}
	m, err := ToMatrix(img)
	if err != nil {
		return nil, fmt.Errorf("failed to read samples of %s: %w", path, err)
	}
	return m, nil
}

// ToMatrix converts an image to a matrix of sample intensities.
//
// Samples keep the native scale of the source: 8-bit images give 0..255 and
// 16-bit images give 0..65535. Colour images are reduced to luminance at
// their own bit depth.
func ToMatrix(img image.Image) (*mat.Dense, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, ErrEmptyImage
	}

	sample := sampler(img)
	data := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			data[y*width+x] = sample(bounds.Min.X+x, bounds.Min.Y+y)
		}
	}
	return mat.NewDense(height, width, data), nil
}

func sampler(img image.Image) func(x, y int) float64 {
	switch src := img.(type) {
	case *image.Gray:
		return func(x, y int) float64 { return float64(src.GrayAt(x, y).Y) }
	case *image.Gray16:
		return func(x, y int) float64 { return float64(src.Gray16At(x, y).Y) }
	case *image.RGBA64, *image.NRGBA64:
		return func(x, y int) float64 {
			return float64(color.Gray16Model.Convert(img.At(x, y)).(color.Gray16).Y)
		}
	default:
		return func(x, y int) float64 {
			return float64(color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y)
		}
	}
}

// Crop returns rows [Y1, Y2) and columns [X1, X2) of img as a view sharing
// img's storage. The view must be treated as read-only.
func Crop(img *mat.Dense, rect models.CropRect) (*mat.Dense, error) {
	rows, cols := img.Dims()
	if rect.X1 < 0 || rect.Y1 < 0 || rect.X2 > cols || rect.Y2 > rows ||
		rect.X1 >= rect.X2 || rect.Y1 >= rect.Y2 {
		return nil, fmt.Errorf("%w: %s on %dx%d image", ErrCropBounds, rect, cols, rows)
	}
	return img.Slice(rect.Y1, rect.Y2, rect.X1, rect.X2).(*mat.Dense), nil
}
