// Package overlay renders analysis results onto video frames for
// client-side display.
package overlay

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/drishti/internal/detector"
	"github.com/ayusman/drishti/internal/session"
)

var (
	boxColor      = color.RGBA{0, 255, 0, 0}
	landmarkColor = color.RGBA{0, 200, 255, 0}
	textColor     = color.RGBA{255, 255, 255, 0}
	bannerColor   = color.RGBA{0, 255, 0, 0}
)

// Draw returns a copy of the frame annotated with bounding boxes,
// landmark dots, and per-face labels, plus a face-count banner. The
// input frame is not modified; the caller owns the returned Mat and must
// Close it.
func Draw(frame *gocv.Mat, result *session.Result) gocv.Mat {
	out := frame.Clone()
	if result == nil {
		return out
	}

	for i := range result.Faces {
		face := &result.Faces[i]
		rect := image.Rect(
			int(face.Box.MinX), int(face.Box.MinY),
			int(face.Box.MaxX), int(face.Box.MaxY),
		)
		gocv.Rectangle(&out, rect, boxColor, 2)
		drawLandmarks(&out, &face.Landmarks)

		label := fmt.Sprintf("face %d: %s, blinks %d", face.ID, face.Expression, face.BlinkCount)
		origin := image.Pt(rect.Min.X, rect.Min.Y-8)
		if origin.Y < 12 {
			origin.Y = rect.Max.Y + 16
		}
		gocv.PutText(&out, label, origin, gocv.FontHersheySimplex, 0.5, textColor, 1)
	}

	banner := fmt.Sprintf("faces: %d", result.Count)
	gocv.PutText(&out, banner, image.Pt(10, 24), gocv.FontHersheySimplex, 0.7, bannerColor, 2)

	return out
}

func drawLandmarks(out *gocv.Mat, f *detector.FaceLandmarks) {
	for i := 0; i < detector.NumLandmarks; i++ {
		p := f.Points[i]
		gocv.Circle(out, image.Pt(int(p.X), int(p.Y)), 1, landmarkColor, 2)
	}
}
