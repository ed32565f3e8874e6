// Package testdata generates synthetic video frames for tests. Frames
// are built in memory rather than loaded from disk so tests control
// brightness, contrast, and texture exactly.
package testdata

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// FrameWidth and FrameHeight match the canonical webcam frame size the
// mock detector fixtures are laid out for.
const (
	FrameWidth  = 640
	FrameHeight = 480
)

// NewFrame creates a mid-gray BGR frame with a textured patch in the
// face region, so quality measurements see nonzero contrast and
// sharpness. The caller must Close it.
func NewFrame() gocv.Mat {
	mat := gocv.NewMatWithSize(FrameHeight, FrameWidth, gocv.MatTypeCV8UC3)
	mat.SetTo(gocv.NewScalar(128, 128, 128, 0))

	// Checkerboard over the face region gives the Laplacian something
	// to respond to.
	for y := 160; y < 340; y += 16 {
		for x := 240; x < 400; x += 16 {
			if ((x/16)+(y/16))%2 == 0 {
				gocv.Rectangle(&mat, image.Rect(x, y, x+16, y+16), color.RGBA{230, 230, 230, 0}, -1)
			} else {
				gocv.Rectangle(&mat, image.Rect(x, y, x+16, y+16), color.RGBA{30, 30, 30, 0}, -1)
			}
		}
	}

	return mat
}

// NewUniformFrame creates a BGR frame filled with a single gray level.
// The caller must Close it.
func NewUniformFrame(level float64) gocv.Mat {
	mat := gocv.NewMatWithSize(FrameHeight, FrameWidth, gocv.MatTypeCV8UC3)
	mat.SetTo(gocv.NewScalar(level, level, level, 0))
	return mat
}

// NewGrayFrame creates a single-channel frame, which the pipeline must
// reject as an invalid image. The caller must Close it.
func NewGrayFrame() gocv.Mat {
	return gocv.NewMatWithSize(FrameHeight, FrameWidth, gocv.MatTypeCV8UC1)
}

// EncodeJPEG encodes a frame as JPEG bytes for transport-level tests.
func EncodeJPEG(frame *gocv.Mat) ([]byte, error) {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return nil, err
	}
	defer buf.Close()

	data := make([]byte, len(buf.GetBytes()))
	copy(data, buf.GetBytes())
	return data, nil
}
