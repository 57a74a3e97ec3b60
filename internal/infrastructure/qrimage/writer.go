// Package qrimage rasterizes QR payloads to PNG files.
package qrimage

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"regexp"

	"github.com/policy-letter-api/internal/pkg/id"
	qrcode "github.com/skip2/go-qrcode"
)

const (
	moduleScale = 8 // pixels per module
	quietZone   = 2 // modules of margin on each side
)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

// Writer writes QR rasters into a temp directory.
type Writer struct {
	dir string
}

func NewWriter(dir string) *Writer {
	if dir == "" {
		dir = os.TempDir()
	}
	return &Writer{dir: dir}
}

// FileName returns qr_<policyNo with non-alphanumerics as _>_<ulid>.png.
func FileName(policyNo string) string {
	return fmt.Sprintf("qr_%s_%s.png", unsafeChars.ReplaceAllString(policyNo, "_"), id.New())
}

// Write encodes payload at low error correction and returns the file path.
func (w *Writer) Write(payload, policyNo string) (string, error) {
	if payload == "" {
		return "", errors.New("empty qr payload")
	}
	img, err := Encode(payload)
	if err != nil {
		return "", err
	}

	path := filepath.Join(w.dir, FileName(policyNo))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", fmt.Errorf("create qr file: %w", err)
	}
	bw := bufio.NewWriter(f)
	if err := png.Encode(bw, img); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("encode qr png: %w", err)
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write qr png: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close qr file: %w", err)
	}
	return path, nil
}

// Encode builds the black-on-white raster with the quiet zone applied.
func Encode(payload string) (*image.Paletted, error) {
	q, err := qrcode.New(payload, qrcode.Low)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	q.DisableBorder = true
	bits := q.Bitmap()

	size := (len(bits) + 2*quietZone) * moduleScale
	img := image.NewPaletted(image.Rect(0, 0, size, size), color.Palette{color.White, color.Black})
	for y, row := range bits {
		for x, dark := range row {
			if !dark {
				continue
			}
			x0 := (x + quietZone) * moduleScale
			y0 := (y + quietZone) * moduleScale
			for dy := 0; dy < moduleScale; dy++ {
				for dx := 0; dx < moduleScale; dx++ {
					img.SetColorIndex(x0+dx, y0+dy, 1)
				}
			}
		}
	}
	return img, nil
}
