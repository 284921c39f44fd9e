package systems

import (
	"log"

	"github.com/chuyi0414/qlmt/pkg/bgscroll"
	"github.com/chuyi0414/qlmt/pkg/game"
	"github.com/chuyi0414/qlmt/pkg/resourcepoint"
	"github.com/chuyi0414/qlmt/pkg/trace"
	"github.com/chuyi0414/qlmt/pkg/utils"
)

// SnapshotPublisher 接收滚动器快照（observer.Hub 实现）
type SnapshotPublisher interface {
	Publish(snap bgscroll.Snapshot)
}

// speedRamp 滚动速度缓动
type speedRamp struct {
	from     float64
	to       float64
	duration float64
	elapsed  float64
}

// BgScrollSystem 背景滚动的逐帧驱动
//
// 每帧顺序：速度缓动 -> 实体服务投递加载结果 -> 滚动器推进 -> 发布快照。
// 实体显示回调只会在 EntityService.Update 中发生，滚动器不会在自己的调用栈里收到回调。
type BgScrollSystem struct {
	camera    *bgscroll.OrthoCamera
	entities  *game.EntityService
	scroller  *bgscroll.Scroller
	generator *resourcepoint.Generator // 未启用物资点时为 nil

	publisher    SnapshotPublisher
	publishEvery int
	frame        uint64

	traceWriter *trace.Writer
	recorder    *trace.Recorder

	ramp      *speedRamp
	lastState bgscroll.State
}

// NewBgScrollSystem 创建背景滚动系统
func NewBgScrollSystem(camera *bgscroll.OrthoCamera, entities *game.EntityService, scroller *bgscroll.Scroller, generator *resourcepoint.Generator) *BgScrollSystem {
	return &BgScrollSystem{
		camera:       camera,
		entities:     entities,
		scroller:     scroller,
		generator:    generator,
		publishEvery: 1,
		lastState:    scroller.State(),
	}
}

// Camera 当前相机
func (s *BgScrollSystem) Camera() *bgscroll.OrthoCamera { return s.camera }

// Scroller 滚动器
func (s *BgScrollSystem) Scroller() *bgscroll.Scroller { return s.scroller }

// Generator 物资点生成器，可能为 nil
func (s *BgScrollSystem) Generator() *resourcepoint.Generator { return s.generator }

// Entities 实体服务
func (s *BgScrollSystem) Entities() *game.EntityService { return s.entities }

// Frame 已执行的帧数
func (s *BgScrollSystem) Frame() uint64 { return s.frame }

// SetPublisher 每 every 帧发布一次快照，every <= 0 按 1 处理
func (s *BgScrollSystem) SetPublisher(p SnapshotPublisher, every int) {
	if every <= 0 {
		every = 1
	}
	s.publisher = p
	s.publishEvery = every
}

// AttachTrace 将滚动器事件写入 trace 文件，Close 时一并关闭
func (s *BgScrollSystem) AttachTrace(w *trace.Writer, levelID int) {
	s.traceWriter = w
	s.recorder = trace.NewRecorder(w, levelID)
	s.scroller.SetRecorder(s.recorder)
}

// RampSpeedTo 在 duration 秒内把滚动速度缓动到 target，duration <= 0 时立即生效
func (s *BgScrollSystem) RampSpeedTo(target, duration float64) {
	if duration <= 0 {
		s.ramp = nil
		s.scroller.SetScrollSpeed(target)
		return
	}
	s.ramp = &speedRamp{
		from:     s.scroller.ScrollSpeed(),
		to:       target,
		duration: duration,
	}
}

// Ramping 速度缓动是否进行中
func (s *BgScrollSystem) Ramping() bool { return s.ramp != nil }

// Update 推进一帧
func (s *BgScrollSystem) Update(dt float64) {
	s.frame++
	s.updateRamp(dt)

	s.entities.Update()
	s.scroller.Update(dt)

	if state := s.scroller.State(); state != s.lastState {
		log.Printf("[BgScrollSystem] State %s -> %s (frame %d)", s.lastState, state, s.frame)
		s.lastState = state
	}

	if s.publisher != nil && s.frame%uint64(s.publishEvery) == 0 {
		s.publisher.Publish(s.scroller.Snapshot())
	}
}

func (s *BgScrollSystem) updateRamp(dt float64) {
	if s.ramp == nil {
		return
	}
	r := s.ramp
	r.elapsed += dt
	t := utils.Clamp01(r.elapsed / r.duration)
	s.scroller.SetScrollSpeed(utils.Lerp(r.from, r.to, utils.EaseInOutCubic(t)))
	if t >= 1 {
		s.ramp = nil
	}
}

// Close 停止滚动器、清理物资点并关闭 trace
func (s *BgScrollSystem) Close() error {
	s.scroller.Shutdown()
	if s.generator != nil {
		s.generator.Clear()
	}

	if s.traceWriter == nil {
		return nil
	}
	lines := s.traceWriter.Lines()
	err := s.traceWriter.Close()
	s.traceWriter = nil
	if err == nil {
		log.Printf("[BgScrollSystem] Trace closed, %d events", lines)
	}
	return err
}
