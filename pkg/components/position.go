package components

// PositionComponent 世界坐标（Y 轴向上）
// 背景块记录的是底边中点，物资点记录的是中心
type PositionComponent struct {
	X float64
	Y float64
}
