package flatgeobuf

import (
	"bytes"
	"errors"
	"testing"

	"github.com/paulmach/orb"

	"github.com/tingold/geobench/internal/frame"
)

func pointFrame(t testing.TB, points ...orb.Point) *frame.GeoFrame {
	t.Helper()
	f := frame.WithCapacity(len(points))
	for i, p := range points {
		f.Append(int64(i), p)
	}
	return f
}

func TestWrite_Points(t *testing.T) {
	f := pointFrame(t, orb.Point{1, 2}, orb.Point{3, 4}, orb.Point{5, 6})

	var buf bytes.Buffer
	err := Write(&buf, f, nil)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	// Check magic bytes
	data := buf.Bytes()
	if len(data) < 8 {
		t.Fatal("output too short")
	}

	expectedMagic := []byte{0x66, 0x67, 0x62, 0x03, 0x66, 0x67, 0x62, 0x00}
	for i, b := range expectedMagic {
		if data[i] != b {
			t.Errorf("magic byte %d: expected 0x%02x, got 0x%02x", i, b, data[i])
		}
	}
}

func TestWrite_Empty(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, frame.WithCapacity(0), nil)
	if !errors.Is(err, ErrEmpty) {
		t.Errorf("expected ErrEmpty, got %v", err)
	}
}

func TestWrite_UnsupportedGeometry(t *testing.T) {
	f := frame.WithCapacity(2)
	f.Append(0, orb.Point{1, 1})
	f.Append(1, orb.LineString{{0, 0}, {1, 1}})

	var buf bytes.Buffer
	err := Write(&buf, f, nil)
	if !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestWrite_NoIndex(t *testing.T) {
	f := pointFrame(t, orb.Point{1, 2}, orb.Point{3, 4})

	var withIndex, withoutIndex bytes.Buffer
	if err := Write(&withIndex, f, &Options{IncludeIndex: true}); err != nil {
		t.Fatalf("Write with index failed: %v", err)
	}
	if err := Write(&withoutIndex, f, &Options{IncludeIndex: false}); err != nil {
		t.Fatalf("Write without index failed: %v", err)
	}

	if withoutIndex.Len() >= withIndex.Len() {
		t.Errorf("expected index to add bytes: %d without, %d with", withoutIndex.Len(), withIndex.Len())
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if !opts.IncludeIndex {
		t.Error("expected IncludeIndex to be true by default")
	}
	if opts.CRS == nil || opts.CRS.Code != 4326 {
		t.Errorf("expected WGS84 CRS, got %+v", opts.CRS)
	}
}

func TestWGS84(t *testing.T) {
	crs := WGS84()
	if crs.Code != 4326 {
		t.Errorf("expected code 4326, got %d", crs.Code)
	}
	if crs.Name != "WGS 84" {
		t.Errorf("expected name 'WGS 84', got %q", crs.Name)
	}
}
