package overlay

import (
	"testing"
	"time"

	"github.com/ayusman/drishti/internal/detector"
	"github.com/ayusman/drishti/internal/geometry"
	"github.com/ayusman/drishti/internal/session"
	"github.com/ayusman/drishti/testdata"
)

func testResult() *session.Result {
	face := detector.NeutralFaceLandmarks()
	box := geometry.BoundingBox(&face)

	return &session.Result{
		Faces: []session.FaceResult{{
			ID:        0,
			Box:       box,
			Landmarks: face,
		}},
		Count:  1,
		Width:  testdata.FrameWidth,
		Height: testdata.FrameHeight,
		At:     time.Now(),
	}
}

func TestDraw(t *testing.T) {
	frame := testdata.NewUniformFrame(128)
	defer frame.Close()

	before := frame.Clone()
	defer before.Close()

	annotated := Draw(&frame, testResult())
	defer annotated.Close()

	if annotated.Empty() {
		t.Fatal("annotated frame is empty")
	}
	if annotated.Cols() != frame.Cols() || annotated.Rows() != frame.Rows() {
		t.Errorf("annotated size = %dx%d, want %dx%d",
			annotated.Cols(), annotated.Rows(), frame.Cols(), frame.Rows())
	}

	// Drawing must change pixels on the copy, not the input
	if diff := countDifferingBytes(&annotated, &frame); diff == 0 {
		t.Error("annotated frame is identical to the input")
	}
	if diff := countDifferingBytes(&before, &frame); diff != 0 {
		t.Error("input frame was modified")
	}
}

func TestDrawNilResult(t *testing.T) {
	frame := testdata.NewUniformFrame(128)
	defer frame.Close()

	annotated := Draw(&frame, nil)
	defer annotated.Close()

	if annotated.Empty() {
		t.Fatal("annotated frame is empty")
	}
	if diff := countDifferingBytes(&annotated, &frame); diff != 0 {
		t.Error("nil result should yield an untouched copy")
	}
}

func countDifferingBytes(a, b interface{ ToBytes() []byte }) int {
	ab := a.ToBytes()
	bb := b.ToBytes()
	if len(ab) != len(bb) {
		return len(ab) + len(bb)
	}

	diff := 0
	for i := range ab {
		if ab[i] != bb[i] {
			diff++
		}
	}
	return diff
}
