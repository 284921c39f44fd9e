package components

import "image/color"

// MarkerComponent 物资点占位实体数据
type MarkerComponent struct {
	OwnerID   int    // 所属背景块实体 Id
	Kind      string // "small" / "big"
	AssetPath string
	Radius    float64 // 避让半径（世界单位）
	Color     color.RGBA
}

// ParentComponent 挂在父实体下的子实体
// 世界坐标 = 父实体坐标 + 偏移，父实体移动时子实体随之移动
type ParentComponent struct {
	ParentID int
	OffsetX  float64
	OffsetY  float64
}
