package bgscroll

import (
	"fmt"
	"log"
	"maps"
	"math"
	"slices"

	"github.com/chuyi0414/qlmt/pkg/config"
)

// State 滚动器状态
type State int

const (
	StateUninitialized State = iota
	StateInitialized
	StatePrewarmed
	StateRunning
	StateStopped
	StateCompleted
)

// String 返回状态名称
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitialized:
		return "initialized"
	case StatePrewarmed:
		return "prewarmed"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	case StateCompleted:
		return "completed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ChunkSlot 活跃背景块槽位（逻辑区间）
type ChunkSlot struct {
	EntityID       int
	SegmentIndex   int
	PlannedBottomY float64
	PlannedTopY    float64
	Definition     ChunkDefinition
	Confirmed      bool // 实体已显示成功
}

// Options 滚动器依赖与参数
type Options struct {
	Config   config.ScrollConfig
	Plan     *LevelPlan
	Entities EntityService
	IDs      IDAllocator
	Viewport Viewport
	Random   RandomSource // 为 nil 时使用全局随机源
	Recorder Recorder     // 可选
}

// Scroller 背景滚动器
//
// 所有方法都应在同一个逻辑线程（游戏主循环）中调用，实体显示结果的回调也不例外。
type Scroller struct {
	cfg      config.ScrollConfig
	plan     *LevelPlan
	entities EntityService
	ids      IDAllocator
	viewport Viewport
	rng      RandomSource
	recorder Recorder

	listeners   []ChunkListener
	unsubscribe func()

	selector  *ChunkSelector
	sequencer *ThemeSequencer

	state       State
	prewarmed   bool
	filling     bool // 防止补块重入
	spawnHalted bool // 挑选失败后停止补块
	scrollSpeed float64
	tick        uint64

	// 活跃槽位，顺序：下 -> 上
	slots    []*ChunkSlot
	slotByID map[int]*ChunkSlot
	loaded   map[int]ChunkView

	// 回收时尚未显示完成的实体，显示成功后立即隐藏
	hideAfterShow map[int]struct{}
	// Clear 时仍在途的请求，回调只做清理
	aborted map[int]struct{}

	nextSpawnBottom float64
	spawnCount      int
	previousTheme   string
	finalChunkID    int
	// 最后一块显示失败后置位，直到 Clear
	terminationAborted bool
}

// NewScroller 创建背景滚动器
func NewScroller(opts Options) *Scroller {
	return &Scroller{
		cfg:           opts.Config,
		plan:          opts.Plan,
		entities:      opts.Entities,
		ids:           opts.IDs,
		viewport:      opts.Viewport,
		rng:           opts.Random,
		recorder:      opts.Recorder,
		scrollSpeed:   math.Max(0, opts.Config.ScrollSpeed),
		slotByID:      make(map[int]*ChunkSlot),
		loaded:        make(map[int]ChunkView),
		hideAfterShow: make(map[int]struct{}),
		aborted:       make(map[int]struct{}),
		finalChunkID:  -1,
	}
}

// AddListener 注册背景块生命周期监听者
func (s *Scroller) AddListener(l ChunkListener) {
	s.listeners = append(s.listeners, l)
}

// SetRecorder 设置事件记录器，nil 表示关闭记录
func (s *Scroller) SetRecorder(r Recorder) {
	s.recorder = r
}

// Initialize 校验配置并订阅实体事件
// 重复调用是空操作
func (s *Scroller) Initialize() error {
	if s.state != StateUninitialized {
		return nil
	}
	if s.entities == nil || s.ids == nil || s.viewport == nil {
		return fmt.Errorf("%w: entity service, id allocator and viewport are required", ErrConfig)
	}
	if !s.plan.HasUsableDefinition() {
		return fmt.Errorf("%w: no usable chunk definition", ErrConfig)
	}

	s.selector = NewChunkSelector(s.plan.Definitions, s.cfg.MaxConsecutiveSameAsset, s.rng)
	s.sequencer = NewThemeSequencer(s.plan.Segments, s.plan.Loop)
	s.unsubscribe = s.entities.Subscribe(s)
	s.nextSpawnBottom = s.viewport.Bounds().Bottom
	s.state = StateInitialized

	log.Printf("[BgScroll] Initialized level %d: %d definitions, %d theme segments, loop=%v",
		s.plan.LevelID, len(s.plan.Definitions), len(s.plan.Segments), s.plan.Loop)
	return nil
}

// Prewarm 从相机底部向上铺满初始背景块
//
// 由于显示是异步的，预热在本次调用中只发出第一个请求，后续请求在每次显示成功后继续发出。
// 重复调用是空操作。
func (s *Scroller) Prewarm() error {
	switch s.state {
	case StateUninitialized:
		return ErrNotInitialized
	case StateCompleted:
		return ErrCompleted
	}
	if s.prewarmed {
		return nil
	}

	s.prewarmed = true
	if s.state == StateInitialized {
		s.state = StatePrewarmed
	}
	s.fill()
	return nil
}

// Start 开始滚动，prewarmFirst 为 true 时先执行预热
//
// 最后一块显示失败后不能恢复，需要先 Clear。
func (s *Scroller) Start(prewarmFirst bool) error {
	switch s.state {
	case StateUninitialized:
		return ErrNotInitialized
	case StateCompleted:
		return ErrCompleted
	}
	if s.terminationAborted {
		return ErrTerminationAborted
	}
	if prewarmFirst && !s.prewarmed {
		if err := s.Prewarm(); err != nil {
			return err
		}
	}
	s.state = StateRunning
	return nil
}

// Stop 暂停滚动，不清理已存在的背景块
func (s *Scroller) Stop() {
	if s.state != StateRunning {
		return
	}
	s.state = StateStopped
	s.record(Event{Kind: EventStopped})
}

// SetScrollSpeed 设置滚动速度（世界单位/秒），负值钳制为 0
func (s *Scroller) SetScrollSpeed(speed float64) {
	s.scrollSpeed = math.Max(0, speed)
}

// ScrollSpeed 当前滚动速度
func (s *Scroller) ScrollSpeed() float64 { return s.scrollSpeed }

// Update 按滚动速度推进 dt 秒
func (s *Scroller) Update(dt float64) {
	s.Tick(s.scrollSpeed * math.Max(0, dt))
}

// Tick 推进一帧
//
// 顺序：整体下移 -> 终止检查 -> 补块 -> 回收。
func (s *Scroller) Tick(scrollDelta float64) {
	if s.state != StateRunning {
		return
	}
	s.tick++

	if scrollDelta > 0 {
		s.shift(-scrollDelta)
	}
	if s.checkTermination() {
		return
	}
	s.fill()
	s.recycle()
}

// Clear 释放全部背景块与在途请求，回到 Initialized 状态
func (s *Scroller) Clear() {
	if s.state == StateUninitialized {
		return
	}

	for _, slot := range s.slots {
		if _, ok := s.loaded[slot.EntityID]; ok {
			s.notifyRecycled(slot.EntityID)
			s.releaseEntity(slot.EntityID)
			s.record(Event{Kind: EventRecycle, EntityID: slot.EntityID, SegmentIndex: slot.SegmentIndex, Message: "cleared"})
			continue
		}
		s.aborted[slot.EntityID] = struct{}{}
		s.record(Event{Kind: EventAborted, EntityID: slot.EntityID, SegmentIndex: slot.SegmentIndex})
	}
	for _, id := range slices.Sorted(maps.Keys(s.hideAfterShow)) {
		s.aborted[id] = struct{}{}
		s.record(Event{Kind: EventAborted, EntityID: id, Message: "deferred hide"})
	}

	s.slots = nil
	clear(s.slotByID)
	clear(s.loaded)
	clear(s.hideAfterShow)

	s.sequencer.Reset()
	s.selector.Repeat().Reset()
	s.previousTheme = ""
	s.spawnCount = 0
	s.finalChunkID = -1
	s.terminationAborted = false
	s.spawnHalted = false
	s.prewarmed = false
	s.nextSpawnBottom = s.viewport.Bounds().Bottom
	s.state = StateInitialized
	log.Printf("[BgScroll] Cleared, %d requests still in flight", len(s.aborted))
}

// Shutdown 清理并取消事件订阅
// 在途请求不再等待回调，直接隐藏并释放 Id
func (s *Scroller) Shutdown() {
	if s.state == StateUninitialized {
		return
	}
	s.Clear()
	for id := range s.aborted {
		s.releaseEntity(id)
	}
	clear(s.aborted)
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	s.state = StateUninitialized
}

// State 当前状态
func (s *Scroller) State() State { return s.state }

// Prewarmed 是否已预热
func (s *Scroller) Prewarmed() bool { return s.prewarmed }

// Halted 是否因挑选失败停止补块
func (s *Scroller) Halted() bool { return s.spawnHalted }

// Sequencer 主题序列推进器，未初始化时为 nil
func (s *Scroller) Sequencer() *ThemeSequencer { return s.sequencer }

// NextSpawnBottom 下一块的计划底边
func (s *Scroller) NextSpawnBottom() float64 { return s.nextSpawnBottom }

// FinalChunkID 最后一块的实体 Id，未确定时为 -1
func (s *Scroller) FinalChunkID() int { return s.finalChunkID }

// PendingHideCount 等待显示后隐藏的实体数
func (s *Scroller) PendingHideCount() int { return len(s.hideAfterShow) }

// Slots 返回活跃槽位副本（下 -> 上）
func (s *Scroller) Slots() []ChunkSlot {
	out := make([]ChunkSlot, len(s.slots))
	for i, slot := range s.slots {
		out[i] = *slot
	}
	return out
}

func (s *Scroller) record(ev Event) {
	if s.recorder == nil {
		return
	}
	ev.Tick = s.tick
	s.recorder.Record(ev)
}
