package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
)

// ErrSizeMismatch is returned when two frames have different bounds.
var ErrSizeMismatch = errors.New("render: frame sizes differ")

// CompareOptions configures a frame comparison.
type CompareOptions struct {
	// Tolerance is the largest per-channel difference (0-255) that still
	// counts as equal.
	Tolerance int
	// FuzzyRadius lets a pixel match any expected pixel within this many
	// pixels. Zero means exact positioning.
	FuzzyRadius int
	// MaxDifferentPercent passes the comparison when at most this share of
	// pixels differ.
	MaxDifferentPercent float64
}

// DefaultCompareOptions absorbs anti-aliasing noise only.
func DefaultCompareOptions() CompareOptions {
	return CompareOptions{Tolerance: 2}
}

// CompareResult reports how two frames differ.
type CompareResult struct {
	Match           bool
	DifferentPixels int
	TotalPixels     int
	MaxDifference   int
	// Diff shows the actual frame in gray with differing pixels in red.
	Diff *image.RGBA
}

// Compare checks actual against expected pixel by pixel.
func Compare(actual, expected image.Image, opts CompareOptions) (CompareResult, error) {
	bounds := actual.Bounds()
	if bounds != expected.Bounds() {
		return CompareResult{}, fmt.Errorf("%w: %v vs %v", ErrSizeMismatch, bounds, expected.Bounds())
	}
	res := CompareResult{
		Match:       true,
		TotalPixels: bounds.Dx() * bounds.Dy(),
		Diff:        image.NewRGBA(bounds),
	}
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			a := actual.At(x, y)
			d := channelDiff(a, expected.At(x, y))
			res.MaxDifference = max(res.MaxDifference, d)
			if d <= opts.Tolerance || (opts.FuzzyRadius > 0 && fuzzyMatch(a, expected, x, y, opts)) {
				gray := color.GrayModel.Convert(a).(color.Gray)
				res.Diff.Set(x, y, gray)
				continue
			}
			res.Match = false
			res.DifferentPixels++
			res.Diff.Set(x, y, color.RGBA{255, 0, 0, 255})
		}
	}
	if !res.Match && opts.MaxDifferentPercent > 0 && res.TotalPixels > 0 {
		pct := float64(res.DifferentPixels) / float64(res.TotalPixels) * 100
		res.Match = pct <= opts.MaxDifferentPercent
	}
	return res, nil
}

// fuzzyMatch reports whether any expected pixel near (x, y) is within
// tolerance of a.
func fuzzyMatch(a color.Color, expected image.Image, x, y int, opts CompareOptions) bool {
	b := expected.Bounds()
	r := opts.FuzzyRadius
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			p := image.Pt(x+dx, y+dy)
			if !p.In(b) {
				continue
			}
			if channelDiff(a, expected.At(p.X, p.Y)) <= opts.Tolerance {
				return true
			}
		}
	}
	return false
}

// channelDiff is the largest 8-bit channel difference between two colors.
func channelDiff(a, b color.Color) int {
	ar, ag, ab, aa := a.RGBA()
	br, bg, bb, ba := b.RGBA()
	return max(
		absDiff(ar, br),
		absDiff(ag, bg),
		absDiff(ab, bb),
		absDiff(aa, ba),
	)
}

func absDiff(a, b uint32) int {
	d := int(a>>8) - int(b>>8)
	if d < 0 {
		return -d
	}
	return d
}

// LoadPNG decodes the PNG at path.
func LoadPNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}
