package game

import (
	"bytes"
	"image"
	"image/png"
	"math"
	"testing"
	"testing/fstest"
)

func TestMeasureMarkerRadius_Placeholder(t *testing.T) {
	rm := NewResourceManager(nil, mustCatalog(t))

	tests := []struct {
		name     string
		path     string
		expected float64
	}{
		{"小物资点", "Marker/Small", 16.0 / 2 / 32},
		{"大物资点按缩放计算", "Marker/Big", 32 * 1.5 / 2 / 32},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, ok := rm.MeasureMarkerRadius(tt.path)
			if !ok || math.Abs(r-tt.expected) > 1e-9 {
				t.Errorf("MeasureMarkerRadius(%s) = %v, %v; expected %v", tt.path, r, ok, tt.expected)
			}
		})
	}

	if _, ok := rm.MeasureMarkerRadius("Marker/Unknown"); ok {
		t.Error("unknown marker should not be measurable")
	}
}

func TestMeasureMarkerRadius_FromImage(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 40, 20))); err != nil {
		t.Fatal(err)
	}
	fsys := fstest.MapFS{"assets/markers/crate.png": {Data: buf.Bytes()}}

	catalog, err := ParseAssetCatalog([]byte(`
base_path: assets
pixels_per_unit: 20
markers:
  - path: Marker/Crate
    image: markers/crate.png
    scale: 0.5
  - path: Marker/Missing
    image: markers/missing.png
`))
	if err != nil {
		t.Fatalf("ParseAssetCatalog() error = %v", err)
	}
	rm := NewResourceManager(fsys, catalog)

	r, ok := rm.MeasureMarkerRadius("Marker/Crate")
	if !ok || math.Abs(r-0.5) > 1e-9 {
		t.Errorf("radius = %v, %v; expected 0.5", r, ok)
	}
	if w, h := rm.WorldSize("Marker/Crate"); w != 2 || h != 1 {
		t.Errorf("WorldSize = %v x %v, expected 2 x 1", w, h)
	}
	if _, ok := rm.MeasureMarkerRadius("Marker/Missing"); ok {
		t.Error("missing image should not be measurable")
	}
}
