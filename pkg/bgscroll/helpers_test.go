package bgscroll

import (
	"errors"
	"math"
	"testing"

	"github.com/chuyi0414/qlmt/pkg/config"
)

// ========== 测试替身 ==========

type fakeView struct {
	bottom float64
	length float64
}

func (v *fakeView) BottomY() float64       { return v.bottom }
func (v *fakeView) TopY() float64          { return v.bottom + v.length }
func (v *fakeView) Length() float64        { return v.length }
func (v *fakeView) SnapBottomTo(y float64) { v.bottom = y }
func (v *fakeView) MoveBy(dy float64)      { v.bottom += dy }

type showRequest struct {
	id       int
	asset    string
	group    string
	userData SpawnUserData
}

// fakeEntities 异步实体服务：Show 只排队，deliver 时才回调
type fakeEntities struct {
	handler EntityEventHandler
	pending []showRequest
	shown   map[int]*fakeView
	hidden  []int
	lengths map[string]float64 // 资源 -> 实际高度，未配置时使用计划高度
	failIDs map[int]bool
}

func newFakeEntities() *fakeEntities {
	return &fakeEntities{
		shown:   make(map[int]*fakeView),
		lengths: make(map[string]float64),
		failIDs: make(map[int]bool),
	}
}

func (f *fakeEntities) Show(id int, assetPath, group string, userData any) {
	data, _ := userData.(SpawnUserData)
	f.pending = append(f.pending, showRequest{id: id, asset: assetPath, group: group, userData: data})
}

func (f *fakeEntities) Hide(id int) {
	delete(f.shown, id)
	f.hidden = append(f.hidden, id)
}

func (f *fakeEntities) HasEntity(id int) bool {
	_, ok := f.shown[id]
	return ok
}

func (f *fakeEntities) Subscribe(h EntityEventHandler) func() {
	f.handler = h
	return func() { f.handler = nil }
}

// deliverNext 回传最早的一个请求结果
func (f *fakeEntities) deliverNext() bool {
	if len(f.pending) == 0 {
		return false
	}
	req := f.pending[0]
	f.pending = f.pending[1:]
	f.deliver(req)
	return true
}

// deliverID 回传指定实体的请求结果
func (f *fakeEntities) deliverID(id int) bool {
	for i, req := range f.pending {
		if req.id == id {
			f.pending = append(f.pending[:i], f.pending[i+1:]...)
			f.deliver(req)
			return true
		}
	}
	return false
}

func (f *fakeEntities) deliver(req showRequest) {
	if f.handler == nil {
		return
	}
	if f.failIDs[req.id] {
		f.handler.HandleShowFailed(ShowFailed{
			EntityID:  req.id,
			AssetPath: req.asset,
			Group:     req.group,
			Err:       errors.New("asset not found"),
		})
		return
	}
	length := req.userData.PlannedLength
	if l, ok := f.lengths[req.asset]; ok {
		length = l
	}
	view := &fakeView{bottom: 0, length: length}
	f.shown[req.id] = view
	f.handler.HandleShowSucceeded(ShowSucceeded{
		EntityID:  req.id,
		AssetPath: req.asset,
		Group:     req.group,
		View:      view,
	})
}

// settle 不断回传结果直到没有在途请求
func (f *fakeEntities) settle(t *testing.T) {
	t.Helper()
	for i := 0; f.deliverNext(); i++ {
		if i > 1000 {
			t.Fatal("entity requests did not settle")
		}
	}
}

type fakeIDs struct {
	next     int
	inUse    map[int]bool
	released []int
}

func newFakeIDs() *fakeIDs {
	return &fakeIDs{next: 1, inUse: make(map[int]bool)}
}

func (p *fakeIDs) Acquire() (int, bool) {
	id := p.next
	p.next++
	p.inUse[id] = true
	return id, true
}

func (p *fakeIDs) Release(id int) {
	delete(p.inUse, id)
	p.released = append(p.released, id)
}

type fakeListener struct {
	shown    []ShownChunk
	recycled []int
	shifted  float64
}

func (l *fakeListener) OnChunkShown(c ShownChunk)  { l.shown = append(l.shown, c) }
func (l *fakeListener) OnChunkRecycled(id int)     { l.recycled = append(l.recycled, id) }
func (l *fakeListener) OnChunksShifted(dy float64) { l.shifted += dy }

type fakeRecorder struct {
	events []Event
}

func (r *fakeRecorder) Record(ev Event) { r.events = append(r.events, ev) }

func (r *fakeRecorder) count(kind EventKind) int {
	n := 0
	for _, ev := range r.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

// fixedRandom 按顺序返回预设值
type fixedRandom struct {
	floats []float64
	ints   []int
}

func (r *fixedRandom) Float64() float64 {
	if len(r.floats) == 0 {
		return 0
	}
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

func (r *fixedRandom) Intn(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[0]
	r.ints = r.ints[1:]
	return v % n
}

// ========== 测试装配 ==========

type scrollerHarness struct {
	scroller *Scroller
	entities *fakeEntities
	ids      *fakeIDs
	camera   *OrthoCamera
	listener *fakeListener
	recorder *fakeRecorder
}

// newHarness 相机视野 Y ∈ [-5, 5]，默认滚动参数
func newHarness(t *testing.T, plan *LevelPlan) *scrollerHarness {
	t.Helper()
	h := &scrollerHarness{
		entities: newFakeEntities(),
		ids:      newFakeIDs(),
		camera:   &OrthoCamera{X: 0, Y: 0, OrthographicSize: 5, Aspect: 0.6},
		listener: &fakeListener{},
		recorder: &fakeRecorder{},
	}
	h.scroller = NewScroller(Options{
		Config:   config.DefaultScrollConfig(),
		Plan:     plan,
		Entities: h.entities,
		IDs:      h.ids,
		Viewport: h.camera,
		Recorder: h.recorder,
	})
	h.scroller.AddListener(h.listener)
	if err := h.scroller.Initialize(); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	return h
}

func universalPlan() *LevelPlan {
	return &LevelPlan{
		LevelID: 1,
		Definitions: []ChunkDefinition{
			{ID: 1, EntityPath: "Bg/Road_01", Weight: 1, Length: 10},
			{ID: 2, EntityPath: "Bg/Road_02", Weight: 1, Length: 10},
		},
		Loop: true,
	}
}

// assertContiguous 相邻槽位首尾相接
func assertContiguous(t *testing.T, slots []ChunkSlot) {
	t.Helper()
	for i := 0; i+1 < len(slots); i++ {
		if math.Abs(slots[i].PlannedTopY-slots[i+1].PlannedBottomY) > 1e-9 {
			t.Fatalf("slot %d top %.6f != slot %d bottom %.6f", i, slots[i].PlannedTopY, i+1, slots[i+1].PlannedBottomY)
		}
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
