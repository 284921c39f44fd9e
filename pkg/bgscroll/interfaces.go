package bgscroll

// ChunkView 已显示背景块的视觉表现
type ChunkView interface {
	BottomY() float64
	TopY() float64
	Length() float64        // 实际渲染高度
	SnapBottomTo(y float64) // 将底边对齐到指定 Y
	MoveBy(dy float64)      // 沿 Y 轴平移
}

// ShowSucceeded 实体显示成功事件
type ShowSucceeded struct {
	EntityID  int
	AssetPath string
	Group     string
	View      ChunkView
}

// ShowFailed 实体显示失败事件
type ShowFailed struct {
	EntityID  int
	AssetPath string
	Group     string
	Err       error
}

// EntityEventHandler 接收实体显示结果
type EntityEventHandler interface {
	HandleShowSucceeded(ev ShowSucceeded)
	HandleShowFailed(ev ShowFailed)
}

// EntityService 外部实体生命周期服务
//
// Show 只发起请求，结果必须通过订阅的 EntityEventHandler 在之后的调用中异步回传。
type EntityService interface {
	Show(id int, assetPath, group string, userData any)
	Hide(id int)
	HasEntity(id int) bool
	Subscribe(handler EntityEventHandler) (unsubscribe func())
}

// IDAllocator 实体 Id 分配器
type IDAllocator interface {
	Acquire() (int, bool)
	Release(id int)
}

// SpawnUserData 随 Show 请求传递给实体服务的附加数据
type SpawnUserData struct {
	SegmentIndex   int
	PlannedBottomY float64
	PlannedLength  float64
}

// ShownChunk 确认显示的背景块
type ShownChunk struct {
	EntityID     int
	SegmentIndex int // 本次会话中的生成序号，首块为 0
	BottomY      float64
	TopY         float64
	Definition   ChunkDefinition
	View         ChunkView
}

// ChunkListener 背景块生命周期监听者
type ChunkListener interface {
	OnChunkShown(chunk ShownChunk)
	OnChunkRecycled(entityID int)
	OnChunksShifted(dy float64)
}

// Recorder 记录滚动器事件，用于调试回放
type Recorder interface {
	Record(ev Event)
}

// EventKind 事件类型
type EventKind string

const (
	EventSpawn        EventKind = "spawn"
	EventShown        EventKind = "shown"
	EventShowFailed   EventKind = "show_failed"
	EventRecycle      EventKind = "recycle"
	EventDeferredHide EventKind = "deferred_hide"
	EventAborted      EventKind = "aborted"
	EventHalted       EventKind = "halted"
	EventCompleted    EventKind = "completed"
	EventStopped      EventKind = "stopped"
)

// Event 滚动器事件
type Event struct {
	Tick         uint64    `json:"tick"`
	Kind         EventKind `json:"kind"`
	EntityID     int       `json:"entityId,omitempty"`
	SegmentIndex int       `json:"segmentIndex,omitempty"`
	AssetPath    string    `json:"assetPath,omitempty"`
	ThemeTag     string    `json:"themeTag,omitempty"`
	Tier         string    `json:"tier,omitempty"`
	BottomY      float64   `json:"bottomY,omitempty"`
	TopY         float64   `json:"topY,omitempty"`
	Message      string    `json:"message,omitempty"`
}
