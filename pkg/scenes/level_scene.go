package scenes

import (
	"fmt"
	"image/color"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/chuyi0414/qlmt/pkg/bgscroll"
	"github.com/chuyi0414/qlmt/pkg/ecs"
	"github.com/chuyi0414/qlmt/pkg/game"
	"github.com/chuyi0414/qlmt/pkg/resourcepoint"
	"github.com/chuyi0414/qlmt/pkg/systems"
	"github.com/chuyi0414/qlmt/pkg/trace"
	"github.com/chuyi0414/qlmt/pkg/utils"
)

const (
	// CameraHalfHeight 相机视野半高（世界单位）
	CameraHalfHeight = 7.5
	// DefaultAspect 未指定屏幕尺寸时的宽高比
	DefaultAspect = 0.5625
)

var backgroundColor = color.RGBA{R: 16, G: 16, B: 24, A: 255}

// LevelOptions 关卡场景的可选参数
type LevelOptions struct {
	ScreenWidth  int
	ScreenHeight int
	// Random 背景块挑选的随机源，nil 使用全局随机源
	Random bgscroll.RandomSource
	// RampDuration > 0 时从静止开始，在该秒数内缓动到配置速度
	RampDuration float64
	// TracePath 非空时把滚动事件写入该 trace 文件
	TracePath    string
	Publisher    systems.SnapshotPublisher
	PublishEvery int
	ShowHUD      bool
}

// LevelScene 一次背景滚动会话
type LevelScene struct {
	levelID int
	em      *ecs.EntityManager
	ids     *ecs.IDPool
	system  *systems.BgScrollSystem
	render  *systems.RenderSystem
	markers *game.MarkerLayer
	showHUD bool
	speed   float64
	closed  bool

	screenW, screenH int
	inspected        string
}

// NewLevelScene 组装并启动指定关卡
func NewLevelScene(data *LevelData, levelID int, opts LevelOptions) (*LevelScene, error) {
	plan, err := bgscroll.BuildLevelPlan(data.Tables, levelID, data.Scroll.DefaultChunkLength)
	if err != nil {
		return nil, err
	}

	aspect := DefaultAspect
	if opts.ScreenWidth > 0 && opts.ScreenHeight > 0 {
		aspect = float64(opts.ScreenWidth) / float64(opts.ScreenHeight)
	}
	camera := &bgscroll.OrthoCamera{OrthographicSize: CameraHalfHeight, Aspect: aspect}

	em := ecs.NewEntityManager()
	entities := game.NewEntityService(em, data.Catalog)
	ids := ecs.NewIDPool(1, 0)
	resources := game.NewResourceManager(data.FS, data.Catalog)

	scroller := bgscroll.NewScroller(bgscroll.Options{
		Config:   data.Scroll,
		Plan:     plan,
		Entities: entities,
		IDs:      ids,
		Viewport: camera,
		Random:   opts.Random,
	})

	scene := &LevelScene{
		levelID: levelID,
		em:      em,
		ids:     ids,
		render:  systems.NewRenderSystem(em, resources),
		showHUD: opts.ShowHUD,
		speed:   data.Scroll.ScrollSpeed,
		screenW: opts.ScreenWidth,
		screenH: opts.ScreenHeight,
	}

	generator := scene.buildGenerator(data, camera, entities, ids, resources)
	if generator != nil {
		scroller.AddListener(generator)
	}
	scene.system = systems.NewBgScrollSystem(camera, entities, scroller, generator)

	if opts.TracePath != "" {
		w, err := trace.Create(opts.TracePath)
		if err != nil {
			return nil, fmt.Errorf("failed to create trace %s: %w", opts.TracePath, err)
		}
		scene.system.AttachTrace(w, levelID)
	}
	if opts.Publisher != nil {
		scene.system.SetPublisher(opts.Publisher, opts.PublishEvery)
	}

	if err := scroller.Initialize(); err != nil {
		_ = scene.system.Close()
		return nil, err
	}
	if err := scroller.Start(true); err != nil {
		_ = scene.system.Close()
		return nil, err
	}
	if opts.RampDuration > 0 {
		scroller.SetScrollSpeed(0)
		scene.system.RampSpeedTo(scene.speed, opts.RampDuration)
	}
	return scene, nil
}

// buildGenerator 关卡启用了噪点物资点时创建生成器，配置缺失只记录警告
func (s *LevelScene) buildGenerator(data *LevelData, camera bgscroll.Viewport, entities *game.EntityService, ids *ecs.IDPool, resources *game.ResourceManager) *resourcepoint.Generator {
	level, ok := data.Tables.Levels.Get(s.levelID)
	if !ok || !level.UseNoiseSidePoints {
		return nil
	}
	row, ok := data.Tables.RoadGenProfiles.Get(level.RoadGenProfileID)
	if !ok {
		log.Printf("[LevelScene] Warning: level %d references missing road gen profile %d", s.levelID, level.RoadGenProfileID)
		return nil
	}
	profile, err := resourcepoint.ProfileFromRow(row)
	if err != nil {
		log.Printf("[LevelScene] Warning: level %d: %v", s.levelID, err)
		return nil
	}
	s.markers = game.NewMarkerLayer(entities, ids, resources)
	return resourcepoint.NewGenerator(profile, camera, s.markers, resources)
}

// LevelID 关卡 Id
func (s *LevelScene) LevelID() int { return s.levelID }

// System 背景滚动系统
func (s *LevelScene) System() *systems.BgScrollSystem { return s.system }

// IDs 实体 Id 池
func (s *LevelScene) IDs() *ecs.IDPool { return s.ids }

// MarkerCount 活跃物资点占位数量，未启用物资点时为 0
func (s *LevelScene) MarkerCount() int {
	if s.markers == nil {
		return 0
	}
	return s.markers.Count()
}

// TogglePause 暂停或恢复滚动
func (s *LevelScene) TogglePause() {
	scroller := s.system.Scroller()
	switch scroller.State() {
	case bgscroll.StateRunning:
		scroller.Stop()
	case bgscroll.StateStopped:
		if err := scroller.Start(false); err != nil {
			log.Printf("[LevelScene] Warning: resume failed: %v", err)
		}
	}
}

// AdjustSpeed 在配置速度基础上调整滚动速度，并在 0.5 秒内缓动过去
func (s *LevelScene) AdjustSpeed(delta float64) {
	s.speed += delta
	if s.speed < 0 {
		s.speed = 0
	}
	s.system.RampSpeedTo(s.speed, 0.5)
}

// Inspect 返回屏幕坐标下的背景块描述，并显示在调试信息里
func (s *LevelScene) Inspect(sx, sy int) (bgscroll.SlotSnapshot, bool) {
	if s.screenW <= 0 || s.screenH <= 0 {
		return bgscroll.SlotSnapshot{}, false
	}
	b := s.system.Camera().Bounds()
	proj := utils.NewProjection(utils.ViewRect{Left: b.Left, Right: b.Right, Bottom: b.Bottom, Top: b.Top}, s.screenW, s.screenH)
	_, y := proj.ScreenToWorld(float64(sx), float64(sy))

	for _, slot := range s.system.Scroller().Snapshot().Slots {
		if y >= slot.BottomY && y < slot.TopY {
			s.inspected = fmt.Sprintf("#%d %s [%s] %.2f..%.2f", slot.EntityID, slot.AssetPath, slot.ThemeTag, slot.BottomY, slot.TopY)
			return slot, true
		}
	}
	s.inspected = fmt.Sprintf("y=%.2f: no chunk", y)
	return bgscroll.SlotSnapshot{}, false
}

// Update 推进一帧
func (s *LevelScene) Update(deltaTime float64) {
	if s.closed {
		return
	}
	s.system.Update(deltaTime)
}

// Draw 绘制背景块、物资点和调试信息
func (s *LevelScene) Draw(screen *ebiten.Image) {
	s.screenW, s.screenH = screen.Bounds().Dx(), screen.Bounds().Dy()
	screen.Fill(backgroundColor)
	s.render.Draw(screen, s.system.Camera())
	if !s.showHUD {
		return
	}

	snap := s.system.Scroller().Snapshot()
	hud := fmt.Sprintf("level %d  %s  theme %q #%d\nspeed %.2f  slots %d  markers %d  ids %d\n[space] pause  [up/down] speed  [r] restart  [1-9] level  [click] inspect",
		s.levelID, snap.State, snap.ThemeTag, snap.ThemeIndex,
		snap.ScrollSpeed, len(snap.Slots), s.MarkerCount(), s.ids.InUseCount())
	if s.inspected != "" {
		hud += "\n" + s.inspected
	}
	ebitenutil.DebugPrint(screen, hud)
}

// Close 释放全部实体与 trace 文件
func (s *LevelScene) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	err := s.system.Close()
	log.Printf("[LevelScene] Level %d closed, %d entities left", s.levelID, s.em.Count())
	return err
}
