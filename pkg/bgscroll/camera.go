// Package bgscroll 实现纵向无尽背景滚动引擎
//
// 引擎按相机视野维护一个从下到上连续排列的背景块窗口：
// 在相机顶部之上补块，在相机底部之下回收，并通过主题序列与加权随机挑选下一块。
// 背景块的显示是异步的，实际显示结果通过 HandleShowSucceeded / HandleShowFailed 回传。
//
// # 坐标约定
//
// 世界坐标 Y 轴向上，背景整体沿 Y 轴负方向滚动。
package bgscroll

// Bounds 相机视野在世界坐标下的边界
type Bounds struct {
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
}

// Width 视野宽度
func (b Bounds) Width() float64 { return b.Right - b.Left }

// Height 视野高度
func (b Bounds) Height() float64 { return b.Top - b.Bottom }

// CenterX 视野中心 X
func (b Bounds) CenterX() float64 { return (b.Left + b.Right) / 2 }

// Viewport 提供当前相机视野
type Viewport interface {
	Bounds() Bounds
}

// OrthoCamera 正交相机
//
// OrthographicSize 为视野半高，Aspect 为宽高比，半宽 = OrthographicSize * Aspect。
type OrthoCamera struct {
	X                float64
	Y                float64
	OrthographicSize float64
	Aspect           float64
}

// Bounds 实现 Viewport
func (c *OrthoCamera) Bounds() Bounds {
	halfHeight := c.OrthographicSize
	halfWidth := c.OrthographicSize * c.Aspect
	return Bounds{
		Top:    c.Y + halfHeight,
		Bottom: c.Y - halfHeight,
		Left:   c.X - halfWidth,
		Right:  c.X + halfWidth,
	}
}
