// Package screenshot encodes polled frames as PNG images.
package screenshot

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"time"

	emucore "github.com/user-none/gbbridge/api"
	xdraw "golang.org/x/image/draw"
)

// ErrFrameSize is returned when the pixel buffer is not a full frame.
var ErrFrameSize = errors.New("frame has wrong size")

// Image wraps a frame buffer as an RGBA image without copying.
func Image(frame []byte) (*image.RGBA, error) {
	if len(frame) != emucore.FrameSize {
		return nil, fmt.Errorf("%w: %d bytes, want %d", ErrFrameSize, len(frame), emucore.FrameSize)
	}
	return &image.RGBA{
		Pix:    frame,
		Stride: emucore.FrameStride,
		Rect:   image.Rect(0, 0, emucore.FrameWidth, emucore.FrameHeight),
	}, nil
}

// Scale returns src enlarged by an integer factor. Nearest neighbor keeps
// the pixel edges sharp.
func Scale(src image.Image, factor int) image.Image {
	if factor <= 1 {
		return src
	}
	bounds := src.Bounds()
	dstRect := image.Rect(0, 0, bounds.Dx()*factor, bounds.Dy()*factor)
	dst := image.NewRGBA(dstRect)
	xdraw.NearestNeighbor.Scale(dst, dstRect, src, bounds, draw.Src, nil)
	return dst
}

// Encode writes frame to w as a PNG scaled by factor.
func Encode(w io.Writer, frame []byte, factor int) error {
	img, err := Image(frame)
	if err != nil {
		return err
	}
	if err := png.Encode(w, Scale(img, factor)); err != nil {
		return fmt.Errorf("failed to encode screenshot: %w", err)
	}
	return nil
}

// WriteFile encodes frame to path, creating parent directories.
func WriteFile(path string, frame []byte, factor int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create screenshot directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create screenshot file: %w", err)
	}

	if err := Encode(f, frame, factor); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

// Save writes frame into dir named by the current Unix timestamp and
// returns the full path.
func Save(dir string, frame []byte, factor int) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("%d.png", time.Now().Unix()))
	if err := WriteFile(path, frame, factor); err != nil {
		return "", err
	}
	return path, nil
}
