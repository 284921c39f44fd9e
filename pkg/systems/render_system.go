package systems

import (
	"image/color"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/chuyi0414/qlmt/pkg/bgscroll"
	"github.com/chuyi0414/qlmt/pkg/components"
	"github.com/chuyi0414/qlmt/pkg/ecs"
	"github.com/chuyi0414/qlmt/pkg/game"
	"github.com/chuyi0414/qlmt/pkg/utils"
)

var (
	chunkOutlineColor = color.RGBA{R: 20, G: 20, B: 20, A: 255}
	markerRadiusColor = color.RGBA{R: 255, G: 255, B: 255, A: 160}
	defaultChunkColor = color.RGBA{R: 90, G: 90, B: 90, A: 255}
)

// RenderSystem 绘制背景块与物资点占位
//
// 背景块画成纯色矩形加描边；物资点优先绘制占位图，图片缺失时画实心圆。
type RenderSystem struct {
	entityManager *ecs.EntityManager
	resources     *game.ResourceManager

	// ShowRadius 绘制物资点避让半径
	ShowRadius bool
	// ShowLabels 在背景块左下角标注资源路径与片段序号
	ShowLabels bool

	failedImages map[string]bool // 只记录一次加载失败
}

// NewRenderSystem 创建渲染系统，resources 为 nil 时物资点一律画成圆
func NewRenderSystem(em *ecs.EntityManager, resources *game.ResourceManager) *RenderSystem {
	return &RenderSystem{
		entityManager: em,
		resources:     resources,
		ShowRadius:    true,
		failedImages:  make(map[string]bool),
	}
}

// Draw 先画背景块，再画物资点
func (s *RenderSystem) Draw(screen *ebiten.Image, viewport bgscroll.Viewport) {
	b := viewport.Bounds()
	proj := utils.NewProjection(utils.ViewRect{Left: b.Left, Right: b.Right, Bottom: b.Bottom, Top: b.Top}, screen.Bounds().Dx(), screen.Bounds().Dy())

	for _, id := range ecs.GetEntitiesWith2[*components.PositionComponent, *components.ChunkComponent](s.entityManager) {
		s.drawChunk(screen, proj, id)
	}
	for _, id := range ecs.GetEntitiesWith2[*components.MarkerComponent, *components.ParentComponent](s.entityManager) {
		s.drawMarker(screen, proj, id)
	}
}

func (s *RenderSystem) drawChunk(screen *ebiten.Image, proj utils.Projection, id ecs.EntityID) {
	pos, _ := ecs.GetComponent[*components.PositionComponent](s.entityManager, id)
	chunk, _ := ecs.GetComponent[*components.ChunkComponent](s.entityManager, id)

	left, right := proj.View.Left, proj.View.Right
	if chunk.Width > 0 {
		left, right = pos.X-chunk.Width/2, pos.X+chunk.Width/2
	}
	x0, y0 := proj.WorldToScreen(left, pos.Y+chunk.Length)
	x1, y1 := proj.WorldToScreen(right, pos.Y)
	if y1 < 0 || y0 > proj.ScreenH {
		return
	}

	fill := chunk.Color
	if fill.A == 0 {
		fill = defaultChunkColor
	}
	vector.DrawFilledRect(screen, float32(x0), float32(y0), float32(x1-x0), float32(y1-y0), fill, false)
	vector.StrokeRect(screen, float32(x0), float32(y0), float32(x1-x0), float32(y1-y0), 1, chunkOutlineColor, false)

	if s.ShowLabels {
		ebitenutil.DebugPrintAt(screen, chunk.AssetPath, int(x0)+4, int(y1)-16)
	}
}

func (s *RenderSystem) drawMarker(screen *ebiten.Image, proj utils.Projection, id ecs.EntityID) {
	marker, _ := ecs.GetComponent[*components.MarkerComponent](s.entityManager, id)
	x, y, ok := game.WorldPosition(s.entityManager, id)
	if !ok {
		return
	}
	sx, sy := proj.WorldToScreen(x, y)
	radiusPx := marker.Radius * proj.PixelsPerUnitY()

	if img := s.markerImage(id, marker.AssetPath); img != nil {
		ww, wh := s.resources.WorldSize(marker.AssetPath)
		if scale, ok := ecs.GetComponent[*components.ScaleComponent](s.entityManager, id); ok {
			ww *= scale.ScaleX
			wh *= scale.ScaleY
		}
		bw, bh := img.Bounds().Dx(), img.Bounds().Dy()
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(ww*proj.PixelsPerUnitX()/float64(bw), wh*proj.PixelsPerUnitY()/float64(bh))
		op.GeoM.Translate(sx-ww*proj.PixelsPerUnitX()/2, sy-wh*proj.PixelsPerUnitY()/2)
		screen.DrawImage(img, op)
	} else {
		vector.DrawFilledCircle(screen, float32(sx), float32(sy), float32(radiusPx), marker.Color, true)
	}

	if s.ShowRadius && radiusPx > 0 {
		vector.StrokeCircle(screen, float32(sx), float32(sy), float32(radiusPx), 1, markerRadiusColor, true)
	}
}

// markerImage 首次绘制时加载占位图并挂到实体上
func (s *RenderSystem) markerImage(id ecs.EntityID, path string) *ebiten.Image {
	if sprite, ok := ecs.GetComponent[*components.SpriteComponent](s.entityManager, id); ok {
		return sprite.Image
	}
	if s.resources == nil || s.failedImages[path] {
		return nil
	}

	img, err := s.resources.LoadMarkerImage(path)
	if err != nil {
		log.Printf("[RenderSystem] Warning: marker image %s: %v", path, err)
		s.failedImages[path] = true
		return nil
	}
	ecs.AddComponent(s.entityManager, id, &components.SpriteComponent{Image: img})
	return img
}
