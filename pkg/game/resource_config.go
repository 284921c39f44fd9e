package game

import (
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// AssetCatalog represents the asset catalog loaded from YAML.
// It describes every chunk and marker asset the entity service can show.
//
// Structure:
//
//	version: "1.0"
//	base_path: assets
//	pixels_per_unit: 32
//	chunks:
//	  - path: Bg/Road_Forest_01
//	    length: 10
//	markers:
//	  - path: Marker/Small
//	    width: 24
//	    height: 24
type AssetCatalog struct {
	Version       string        `yaml:"version"`
	BasePath      string        `yaml:"base_path"`       // Base path for marker images (e.g., "assets")
	PixelsPerUnit float64       `yaml:"pixels_per_unit"` // Pixels per world unit, default 32
	Chunks        []ChunkAsset  `yaml:"chunks"`
	Markers       []MarkerAsset `yaml:"markers"`

	chunkIndex  map[string]int
	markerIndex map[string]int
}

// ChunkAsset describes one background chunk asset.
//
// Fields:
//   - Path: Entity asset path referenced by chunk config rows
//   - Length: Rendered height in world units (may differ from the configured length)
//   - Width: Rendered width in world units, 0 = camera width
//   - Color: Fill color "#RRGGBB"
//   - LoadFrames: Simulated load latency in frames (default 1)
//   - Fail: Show requests for this asset always fail
type ChunkAsset struct {
	Path       string  `yaml:"path"`
	Length     float64 `yaml:"length"`
	Width      float64 `yaml:"width,omitempty"`
	Color      string  `yaml:"color,omitempty"`
	LoadFrames int     `yaml:"load_frames,omitempty"`
	Fail       bool    `yaml:"fail,omitempty"`
}

// MarkerAsset describes one resource point marker asset.
// If Image is empty, a Width x Height placeholder is drawn with Color.
type MarkerAsset struct {
	Path   string  `yaml:"path"`
	Image  string  `yaml:"image,omitempty"` // Relative file path from base_path
	Width  int     `yaml:"width,omitempty"`
	Height int     `yaml:"height,omitempty"`
	Scale  float64 `yaml:"scale,omitempty"`
	Color  string  `yaml:"color,omitempty"`
}

const (
	defaultPixelsPerUnit = 32
	defaultLoadFrames    = 1
)

// LoadAssetCatalog reads and parses an asset catalog file.
func LoadAssetCatalog(path string) (*AssetCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read asset catalog %s: %w", path, err)
	}
	return ParseAssetCatalog(data)
}

// ParseAssetCatalog parses asset catalog YAML, applies defaults and validates it.
func ParseAssetCatalog(data []byte) (*AssetCatalog, error) {
	var catalog AssetCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse asset catalog: %w", err)
	}
	catalog.applyDefaults()
	if err := catalog.validate(); err != nil {
		return nil, err
	}
	catalog.buildIndex()
	return &catalog, nil
}

func (c *AssetCatalog) applyDefaults() {
	if c.PixelsPerUnit <= 0 {
		c.PixelsPerUnit = defaultPixelsPerUnit
	}
	for i := range c.Chunks {
		if c.Chunks[i].LoadFrames <= 0 {
			c.Chunks[i].LoadFrames = defaultLoadFrames
		}
	}
	for i := range c.Markers {
		if c.Markers[i].Scale <= 0 {
			c.Markers[i].Scale = 1
		}
	}
}

func (c *AssetCatalog) validate() error {
	seen := make(map[string]bool)
	for i, chunk := range c.Chunks {
		if strings.TrimSpace(chunk.Path) == "" {
			return fmt.Errorf("chunk asset %d: path is empty", i)
		}
		if seen[chunk.Path] {
			return fmt.Errorf("duplicate asset path: %s", chunk.Path)
		}
		seen[chunk.Path] = true
		if chunk.Length <= 0 && !chunk.Fail {
			return fmt.Errorf("chunk asset %s: length must be > 0", chunk.Path)
		}
		if _, err := ParseHexColor(chunk.Color); err != nil {
			return fmt.Errorf("chunk asset %s: %w", chunk.Path, err)
		}
	}
	for i, marker := range c.Markers {
		if strings.TrimSpace(marker.Path) == "" {
			return fmt.Errorf("marker asset %d: path is empty", i)
		}
		if seen[marker.Path] {
			return fmt.Errorf("duplicate asset path: %s", marker.Path)
		}
		seen[marker.Path] = true
		if marker.Image == "" && (marker.Width <= 0 || marker.Height <= 0) {
			return fmt.Errorf("marker asset %s: either image or width/height is required", marker.Path)
		}
		if _, err := ParseHexColor(marker.Color); err != nil {
			return fmt.Errorf("marker asset %s: %w", marker.Path, err)
		}
	}
	return nil
}

func (c *AssetCatalog) buildIndex() {
	c.chunkIndex = make(map[string]int, len(c.Chunks))
	for i, chunk := range c.Chunks {
		c.chunkIndex[chunk.Path] = i
	}
	c.markerIndex = make(map[string]int, len(c.Markers))
	for i, marker := range c.Markers {
		c.markerIndex[marker.Path] = i
	}
}

// Chunk looks up a chunk asset by path.
func (c *AssetCatalog) Chunk(path string) (ChunkAsset, bool) {
	if c == nil {
		return ChunkAsset{}, false
	}
	i, ok := c.chunkIndex[path]
	if !ok {
		return ChunkAsset{}, false
	}
	return c.Chunks[i], true
}

// Marker looks up a marker asset by path.
func (c *AssetCatalog) Marker(path string) (MarkerAsset, bool) {
	if c == nil {
		return MarkerAsset{}, false
	}
	i, ok := c.markerIndex[path]
	if !ok {
		return MarkerAsset{}, false
	}
	return c.Markers[i], true
}

// ParseHexColor parses "#RRGGBB" or "#RRGGBBAA". An empty string yields opaque gray.
func ParseHexColor(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if s == "" {
		return color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}, nil
	}
	if len(s) != 6 && len(s) != 8 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	if len(s) == 6 {
		v = v<<8 | 0xff
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// buildFullPath constructs the full file path for a resource.
// It combines the base path with the resource's relative path.
func buildFullPath(basePath, relativePath string) string {
	if basePath == "" {
		return relativePath
	}
	if len(relativePath) > 0 && relativePath[0] == '/' {
		return basePath + relativePath
	}
	return basePath + "/" + relativePath
}
