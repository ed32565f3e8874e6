package geometry

import (
	"image"
	"math"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/stat"
)

// Quality describes how analyzable a face region is. Score combines
// sharpness, exposure, contrast, and relative size into [0,1].
type Quality struct {
	Sharpness  float64 `json:"sharpness"`
	Brightness float64 `json:"brightness"`
	Contrast   float64 `json:"contrast"`
	SizeRatio  float64 `json:"size_ratio"`
	Score      float64 `json:"score"`
}

// Quality normalization constants. Sharpness is the variance of the
// Laplacian; values around 500 are a well-focused webcam face.
const (
	sharpnessFull  = 500.0
	contrastFull   = 50.0
	brightnessBest = 127.0
)

// FrameQuality measures the face region of a frame. A nil/empty frame or
// a box outside the frame yields the zero Quality, never an error: quality
// is advisory, not a gate.
func FrameQuality(frame *gocv.Mat, box Box) Quality {
	if frame == nil || frame.Empty() {
		return Quality{}
	}

	rect := clampRect(box, frame.Cols(), frame.Rows())
	if rect.Dx() < 8 || rect.Dy() < 8 {
		return Quality{}
	}

	region := frame.Region(rect)
	defer region.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	if region.Channels() > 1 {
		gocv.CvtColor(region, &gray, gocv.ColorBGRToGray)
	} else {
		region.CopyTo(&gray)
	}

	pixels := grayToFloat64(&gray)
	if len(pixels) == 0 {
		return Quality{}
	}

	q := Quality{
		Brightness: stat.Mean(pixels, nil),
		Contrast:   stat.StdDev(pixels, nil),
		Sharpness:  laplacianVariance(&gray),
	}

	frameArea := float64(frame.Cols() * frame.Rows())
	if frameArea > 0 {
		q.SizeRatio = float64(rect.Dx()*rect.Dy()) / frameArea
	}

	sharpScore := math.Min(1, q.Sharpness/sharpnessFull)
	brightScore := 1 - math.Abs(q.Brightness-brightnessBest)/brightnessBest
	if brightScore < 0 {
		brightScore = 0
	}
	contrastScore := math.Min(1, q.Contrast/contrastFull)
	sizeScore := math.Min(1, q.SizeRatio*10)

	q.Score = sharpScore*0.3 + brightScore*0.2 + contrastScore*0.2 + sizeScore*0.3
	return q
}

// laplacianVariance is the classic focus measure: variance of the
// Laplacian response over the region.
func laplacianVariance(gray *gocv.Mat) float64 {
	lap := gocv.NewMat()
	defer lap.Close()
	gocv.Laplacian(*gray, &lap, gocv.MatTypeCV64F, 3, 1, 0, gocv.BorderDefault)

	meanMat := gocv.NewMat()
	defer meanMat.Close()
	stdMat := gocv.NewMat()
	defer stdMat.Close()
	gocv.MeanStdDev(lap, &meanMat, &stdMat)

	std := stdMat.GetDoubleAt(0, 0)
	return std * std
}

// grayToFloat64 copies an 8-bit single-channel Mat into a float slice for
// the gonum statistics.
func grayToFloat64(gray *gocv.Mat) []float64 {
	data := gray.ToBytes()
	out := make([]float64, len(data))
	for i, b := range data {
		out[i] = float64(b)
	}
	return out
}

// clampRect converts a Box to an image.Rectangle clipped to the frame.
func clampRect(box Box, width, height int) image.Rectangle {
	minX := int(math.Floor(box.MinX))
	minY := int(math.Floor(box.MinY))
	maxX := int(math.Ceil(box.MaxX))
	maxY := int(math.Ceil(box.MaxY))

	if minX < 0 {
		minX = 0
	}
	if minY < 0 {
		minY = 0
	}
	if maxX > width {
		maxX = width
	}
	if maxY > height {
		maxY = height
	}
	if maxX < minX {
		maxX = minX
	}
	if maxY < minY {
		maxY = minY
	}

	return image.Rect(minX, minY, maxX, maxY)
}
