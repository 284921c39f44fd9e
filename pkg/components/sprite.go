package components

import "github.com/hajimehoshi/ebiten/v2"

// SpriteComponent 存储实体的视觉表现(当前绘制的图像)
// 为 nil 时渲染系统退化为纯色矩形
type SpriteComponent struct {
	Image *ebiten.Image
}
