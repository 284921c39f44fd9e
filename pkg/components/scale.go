package components

// ScaleComponent 存储实体级别的缩放因子
// 物资点占位图按 ScaleX/ScaleY 缩放后再换算到世界单位
//
// 最终像素尺寸 = 图像尺寸 * Scale
type ScaleComponent struct {
	// ScaleX X轴缩放因子（1.0 = 原始大小，0.5 = 50%，2.0 = 200%）
	ScaleX float64

	// ScaleY Y轴缩放因子（1.0 = 原始大小，0.5 = 50%，2.0 = 200%）
	ScaleY float64
}
