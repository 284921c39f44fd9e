package components

import "image/color"

// ChunkComponent 背景块实体数据
type ChunkComponent struct {
	AssetPath    string
	Group        string
	SegmentIndex int
	// Length 实际显示高度（世界单位）
	Length float64
	// Width 显示宽度，0 表示铺满相机宽度
	Width float64
	Color color.RGBA
}
