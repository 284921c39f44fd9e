package game

import (
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"io/fs"
	"log"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// ResourceManager is responsible for centralized management of marker resources.
// It provides loading and caching of marker images and measures the avoid radius
// the resource point generator needs for spacing.
//
// Measurement reads only the image header (image.DecodeConfig), so it works in
// headless runs where no ebiten images can be created.
//
// Thread Safety Note:
// This implementation is NOT thread-safe. For the current single-threaded game loop,
// no synchronization is needed.
//
// Usage:
//
//	rm := NewResourceManager(assetsFS, catalog)
//	radius, ok := rm.MeasureMarkerRadius("Marker/Small")
type ResourceManager struct {
	fsys    fs.FS
	catalog *AssetCatalog

	imageCache map[string]*ebiten.Image // Cache for loaded images: marker path -> Image
	sizeCache  map[string]image.Point   // Cache for measured pixel sizes: marker path -> size
}

// NewResourceManager creates a ResourceManager reading marker images from fsys.
// fsys may be nil when every marker uses a placeholder size.
func NewResourceManager(fsys fs.FS, catalog *AssetCatalog) *ResourceManager {
	return &ResourceManager{
		fsys:       fsys,
		catalog:    catalog,
		imageCache: make(map[string]*ebiten.Image),
		sizeCache:  make(map[string]image.Point),
	}
}

// Catalog returns the asset catalog.
func (rm *ResourceManager) Catalog() *AssetCatalog { return rm.catalog }

// MarkerPixelSize returns the unscaled pixel size of a marker asset.
//
// Returns:
//   - The image size if the marker has an image, otherwise the configured width/height.
//   - An error if the marker is unknown or its image cannot be decoded.
func (rm *ResourceManager) MarkerPixelSize(markerPath string) (image.Point, error) {
	if size, ok := rm.sizeCache[markerPath]; ok {
		return size, nil
	}
	marker, ok := rm.catalog.Marker(markerPath)
	if !ok {
		return image.Point{}, fmt.Errorf("marker asset not found: %s", markerPath)
	}

	size := image.Pt(marker.Width, marker.Height)
	if marker.Image != "" {
		if rm.fsys == nil {
			return image.Point{}, fmt.Errorf("no file system for marker image %s", marker.Image)
		}
		path := buildFullPath(rm.catalog.BasePath, marker.Image)
		file, err := rm.fsys.Open(path)
		if err != nil {
			return image.Point{}, fmt.Errorf("failed to open image file %s: %w", path, err)
		}
		defer file.Close()
		cfg, _, err := image.DecodeConfig(file)
		if err != nil {
			return image.Point{}, fmt.Errorf("failed to decode image %s: %w", path, err)
		}
		size = image.Pt(cfg.Width, cfg.Height)
	}

	rm.sizeCache[markerPath] = size
	return size, nil
}

// MeasureMarkerRadius implements resourcepoint.RadiusMeasurer.
// The radius is the larger half extent of the scaled marker, in world units.
func (rm *ResourceManager) MeasureMarkerRadius(markerPath string) (float64, bool) {
	size, err := rm.MarkerPixelSize(markerPath)
	if err != nil {
		log.Printf("[ResourceManager] Warning: %v", err)
		return 0, false
	}
	marker, _ := rm.catalog.Marker(markerPath)
	extent := float64(max(size.X, size.Y)) * marker.Scale / 2
	if extent <= 0 {
		return 0, false
	}
	return extent / math.Max(1, rm.catalog.PixelsPerUnit), true
}

// LoadMarkerImage loads (or builds a placeholder for) a marker image and caches it.
//
// Error handling:
//   - Returns an error if the marker is unknown or its image file cannot be decoded.
//   - Does not panic - all errors are returned to the caller for handling.
func (rm *ResourceManager) LoadMarkerImage(markerPath string) (*ebiten.Image, error) {
	if cached, ok := rm.imageCache[markerPath]; ok {
		return cached, nil
	}
	marker, ok := rm.catalog.Marker(markerPath)
	if !ok {
		return nil, fmt.Errorf("marker asset not found: %s", markerPath)
	}

	var img *ebiten.Image
	if marker.Image != "" {
		if rm.fsys == nil {
			return nil, fmt.Errorf("no file system for marker image %s", marker.Image)
		}
		path := buildFullPath(rm.catalog.BasePath, marker.Image)
		file, err := rm.fsys.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open image file %s: %w", path, err)
		}
		defer file.Close()
		decoded, _, err := image.Decode(file)
		if err != nil {
			return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
		}
		img = ebiten.NewImageFromImage(decoded)
	} else {
		col, err := ParseHexColor(marker.Color)
		if err != nil {
			return nil, err
		}
		img = ebiten.NewImage(marker.Width, marker.Height)
		img.Fill(col)
	}

	rm.imageCache[markerPath] = img
	return img, nil
}

// WorldSize converts a marker's pixel size to world units.
// The per-marker scale is not applied here; it lives on the entity's ScaleComponent.
func (rm *ResourceManager) WorldSize(markerPath string) (w, h float64) {
	size, err := rm.MarkerPixelSize(markerPath)
	if err != nil {
		return 0, 0
	}
	ppu := math.Max(1, rm.catalog.PixelsPerUnit)
	return float64(size.X) / ppu, float64(size.Y) / ppu
}
