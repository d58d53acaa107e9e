// Package asset loads the optional logo drawn on every ticket.
package asset

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"

	"github.com/disintegration/imaging"
)

// ErrMissing is returned when no logo is configured or the file is absent.
var ErrMissing = errors.New("logo asset missing")

// MaxLogoSize caps the longest side (px) kept in the PDF; the logo region is
// about 2 × 3.5 cm, so this stays above 300 dpi.
const MaxLogoSize = 600

// Logo is a decoded, downscaled logo ready to register with the renderer.
type Logo struct {
	Path  string
	Image image.Image
}

// Width and Height report the pixel size.
func (l *Logo) Width() int  { return l.Image.Bounds().Dx() }
func (l *Logo) Height() int { return l.Image.Bounds().Dy() }

// LoadLogo decodes the logo at path and shrinks it to MaxLogoSize keeping the
// aspect ratio. Absent files yield ErrMissing; undecodable ones a wrapped
// decode error. Both are meant to be recovered by the caller with the text
// label.
func LoadLogo(path string) (*Logo, error) {
	if path == "" {
		return nil, ErrMissing
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissing, path)
	}
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("decode logo %s: %w", path, err)
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("decode logo %s: empty image", path)
	}
	if b.Dx() > MaxLogoSize || b.Dy() > MaxLogoSize {
		img = imaging.Fit(img, MaxLogoSize, MaxLogoSize, imaging.Lanczos)
	}
	return &Logo{Path: path, Image: img}, nil
}
