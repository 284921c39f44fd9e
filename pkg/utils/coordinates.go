// Package utils 提供通用工具函数
//
// coordinates.go 提供世界坐标与屏幕坐标之间的转换。
//
// # 坐标系统概述
//
//   - **世界坐标**：Y 轴向上，单位为世界单位，背景沿 Y 轴负方向滚动
//   - **屏幕坐标**：Y 轴向下，单位为像素，原点在窗口左上角
//
// # 核心转换公式
//
//	screenX = (worldX - viewLeft) * screenW / viewWidth
//	screenY = (viewTop - worldY) * screenH / viewHeight
package utils

// ViewRect 相机视野（世界坐标）
type ViewRect struct {
	Left, Right float64
	Bottom, Top float64
}

// Projection 世界坐标到屏幕像素的映射
type Projection struct {
	View    ViewRect
	ScreenW float64
	ScreenH float64
}

// NewProjection 按视野与屏幕尺寸创建映射
func NewProjection(view ViewRect, screenW, screenH int) Projection {
	return Projection{View: view, ScreenW: float64(screenW), ScreenH: float64(screenH)}
}

// PixelsPerUnitX 水平方向每世界单位像素数，视野宽度为 0 时返回 0
func (p Projection) PixelsPerUnitX() float64 {
	if w := p.View.Right - p.View.Left; w > 0 {
		return p.ScreenW / w
	}
	return 0
}

// PixelsPerUnitY 垂直方向每世界单位像素数
func (p Projection) PixelsPerUnitY() float64 {
	if h := p.View.Top - p.View.Bottom; h > 0 {
		return p.ScreenH / h
	}
	return 0
}

// WorldToScreen 世界坐标转屏幕坐标
func (p Projection) WorldToScreen(x, y float64) (sx, sy float64) {
	return (x - p.View.Left) * p.PixelsPerUnitX(), (p.View.Top - y) * p.PixelsPerUnitY()
}

// ScreenToWorld 屏幕坐标转世界坐标，用于点击拾取
func (p Projection) ScreenToWorld(sx, sy float64) (x, y float64) {
	ppuX, ppuY := p.PixelsPerUnitX(), p.PixelsPerUnitY()
	if ppuX == 0 || ppuY == 0 {
		return p.View.Left, p.View.Top
	}
	return p.View.Left + sx/ppuX, p.View.Top - sy/ppuY
}
