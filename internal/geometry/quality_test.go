package geometry

import (
	"testing"

	"github.com/ayusman/drishti/internal/detector"
	"github.com/ayusman/drishti/testdata"
)

func TestFrameQuality(t *testing.T) {
	face := detector.NeutralFaceLandmarks()
	box := BoundingBox(&face)

	t.Run("textured region scores well", func(t *testing.T) {
		frame := testdata.NewFrame()
		defer frame.Close()

		q := FrameQuality(&frame, box)

		if q.Sharpness <= 0 {
			t.Errorf("sharpness = %v, want > 0 on textured region", q.Sharpness)
		}
		if q.Contrast <= 0 {
			t.Errorf("contrast = %v, want > 0 on textured region", q.Contrast)
		}
		if q.SizeRatio <= 0 {
			t.Errorf("size ratio = %v, want > 0", q.SizeRatio)
		}
		if q.Score <= 0 || q.Score > 1 {
			t.Errorf("score = %v, want in (0, 1]", q.Score)
		}
	})

	t.Run("uniform region has no sharpness", func(t *testing.T) {
		frame := testdata.NewUniformFrame(128)
		defer frame.Close()

		q := FrameQuality(&frame, box)

		if q.Sharpness != 0 {
			t.Errorf("sharpness = %v, want 0 on flat region", q.Sharpness)
		}
		if q.Contrast != 0 {
			t.Errorf("contrast = %v, want 0 on flat region", q.Contrast)
		}
	})

	t.Run("brightness reflects gray level", func(t *testing.T) {
		frame := testdata.NewUniformFrame(200)
		defer frame.Close()

		q := FrameQuality(&frame, box)
		if q.Brightness < 195 || q.Brightness > 205 {
			t.Errorf("brightness = %v, want about 200", q.Brightness)
		}
	})

	t.Run("nil frame yields zero quality", func(t *testing.T) {
		if q := FrameQuality(nil, box); q != (Quality{}) {
			t.Errorf("quality = %+v, want zero", q)
		}
	})

	t.Run("box outside frame yields zero quality", func(t *testing.T) {
		frame := testdata.NewFrame()
		defer frame.Close()

		outside := Box{MinX: 2000, MinY: 2000, MaxX: 2100, MaxY: 2100}
		if q := FrameQuality(&frame, outside); q != (Quality{}) {
			t.Errorf("quality = %+v, want zero", q)
		}
	})
}
