package game

import (
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/chuyi0414/qlmt/pkg/bgscroll"
	"github.com/chuyi0414/qlmt/pkg/components"
	"github.com/chuyi0414/qlmt/pkg/ecs"
)

// ErrAssetNotFound 资源目录中不存在该背景块
var ErrAssetNotFound = errors.New("asset not found")

// ErrShowRejected 显示请求被拒绝（故障注入或实体 Id 冲突）
var ErrShowRejected = errors.New("show rejected")

// showRequest 在途的显示请求
type showRequest struct {
	id        int
	assetPath string
	group     string
	userData  bgscroll.SpawnUserData
	readyAt   uint64 // 在该帧的 Update 中回传结果
}

// EntityService 异步实体服务，实现 bgscroll.EntityService
//
// Show 只登记请求，结果在之后某一帧的 Update 中通过订阅的回调回传，绝不在 Show 内部回调。
// 背景块的实际高度来自资源目录，可以与配置高度不同。
type EntityService struct {
	em      *ecs.EntityManager
	catalog *AssetCatalog
	frame   uint64

	pending  []*showRequest
	handlers map[int]bgscroll.EntityEventHandler
	nextSub  int

	failAssets map[string]bool
	// 子实体随父实体隐藏时回调（用于归还子实体 Id）
	childHidden func(childID int)
}

// NewEntityService 创建实体服务
func NewEntityService(em *ecs.EntityManager, catalog *AssetCatalog) *EntityService {
	return &EntityService{
		em:         em,
		catalog:    catalog,
		handlers:   make(map[int]bgscroll.EntityEventHandler),
		failAssets: make(map[string]bool),
	}
}

// EntityManager 返回底层实体管理器
func (s *EntityService) EntityManager() *ecs.EntityManager { return s.em }

// SetFailure 注入/取消某个资源的显示失败
func (s *EntityService) SetFailure(assetPath string, fail bool) {
	if fail {
		s.failAssets[assetPath] = true
		return
	}
	delete(s.failAssets, assetPath)
}

// OnChildHidden 设置子实体随父实体隐藏时的回调
func (s *EntityService) OnChildHidden(fn func(childID int)) {
	s.childHidden = fn
}

// Show 登记显示请求
func (s *EntityService) Show(id int, assetPath, group string, userData any) {
	data, _ := userData.(bgscroll.SpawnUserData)
	latency := defaultLoadFrames
	if asset, ok := s.catalog.Chunk(assetPath); ok {
		latency = asset.LoadFrames
	}
	s.pending = append(s.pending, &showRequest{
		id:        id,
		assetPath: assetPath,
		group:     group,
		userData:  data,
		readyAt:   s.frame + uint64(latency),
	})
}

// Hide 隐藏实体；在途请求直接取消
func (s *EntityService) Hide(id int) {
	for i, req := range s.pending {
		if req.id == id {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			return
		}
	}

	eid := ecs.EntityID(id)
	if !s.em.EntityExists(eid) {
		log.Printf("[EntityService] Warning: hide of unknown entity %d", id)
		return
	}
	for _, child := range ecs.GetEntitiesWith1[*components.ParentComponent](s.em) {
		parent, _ := ecs.GetComponent[*components.ParentComponent](s.em, child)
		if parent.ParentID != id {
			continue
		}
		s.em.DestroyEntity(child)
		if s.childHidden != nil {
			s.childHidden(int(child))
		}
	}
	s.em.DestroyEntity(eid)
}

// HasEntity 实体已显示或正在加载
func (s *EntityService) HasEntity(id int) bool {
	if s.em.EntityExists(ecs.EntityID(id)) {
		return true
	}
	for _, req := range s.pending {
		if req.id == id {
			return true
		}
	}
	return false
}

// PendingCount 在途请求数
func (s *EntityService) PendingCount() int { return len(s.pending) }

// Subscribe 订阅显示结果，返回取消订阅函数
func (s *EntityService) Subscribe(h bgscroll.EntityEventHandler) func() {
	s.nextSub++
	key := s.nextSub
	s.handlers[key] = h
	return func() { delete(s.handlers, key) }
}

// Update 推进一帧并回传已完成的请求
func (s *EntityService) Update() {
	s.frame++

	var due []*showRequest
	remaining := s.pending[:0]
	for _, req := range s.pending {
		if req.readyAt <= s.frame {
			due = append(due, req)
		} else {
			remaining = append(remaining, req)
		}
	}
	s.pending = remaining

	// 回调中可能发出新的请求，它们在之后的帧才会完成
	for _, req := range due {
		s.complete(req)
	}
}

func (s *EntityService) complete(req *showRequest) {
	asset, ok := s.catalog.Chunk(req.assetPath)
	switch {
	case !ok:
		s.fail(req, fmt.Errorf("%w: %s", ErrAssetNotFound, req.assetPath))
		return
	case asset.Fail || s.failAssets[req.assetPath]:
		s.fail(req, fmt.Errorf("%w: %s", ErrShowRejected, req.assetPath))
		return
	}

	eid := ecs.EntityID(req.id)
	if !s.em.CreateEntityWithID(eid) {
		s.fail(req, fmt.Errorf("%w: entity id %d already exists", ErrShowRejected, req.id))
		return
	}

	col, _ := ParseHexColor(asset.Color)
	ecs.AddComponent(s.em, eid, &components.PositionComponent{X: 0, Y: req.userData.PlannedBottomY})
	ecs.AddComponent(s.em, eid, &components.ChunkComponent{
		AssetPath:    req.assetPath,
		Group:        req.group,
		SegmentIndex: req.userData.SegmentIndex,
		Length:       asset.Length,
		Width:        asset.Width,
		Color:        col,
	})

	view := &chunkView{em: s.em, id: eid}
	ev := bgscroll.ShowSucceeded{EntityID: req.id, AssetPath: req.assetPath, Group: req.group, View: view}
	for _, key := range s.handlerKeys() {
		if h, ok := s.handlers[key]; ok {
			h.HandleShowSucceeded(ev)
		}
	}
}

func (s *EntityService) fail(req *showRequest, err error) {
	log.Printf("[EntityService] Show %d (%s) failed: %v", req.id, req.assetPath, err)
	ev := bgscroll.ShowFailed{EntityID: req.id, AssetPath: req.assetPath, Group: req.group, Err: err}
	for _, key := range s.handlerKeys() {
		if h, ok := s.handlers[key]; ok {
			h.HandleShowFailed(ev)
		}
	}
}

// handlerKeys 按订阅顺序返回订阅者
func (s *EntityService) handlerKeys() []int {
	keys := make([]int, 0, len(s.handlers))
	for k := 1; k <= s.nextSub; k++ {
		if _, ok := s.handlers[k]; ok {
			keys = append(keys, k)
		}
	}
	return keys
}

// chunkView 背景块实体的 bgscroll.ChunkView 视图
type chunkView struct {
	em *ecs.EntityManager
	id ecs.EntityID
}

func (v *chunkView) position() *components.PositionComponent {
	pos, ok := ecs.GetComponent[*components.PositionComponent](v.em, v.id)
	if !ok {
		return &components.PositionComponent{}
	}
	return pos
}

func (v *chunkView) BottomY() float64 { return v.position().Y }

func (v *chunkView) TopY() float64 { return v.BottomY() + v.Length() }

func (v *chunkView) Length() float64 {
	chunk, ok := ecs.GetComponent[*components.ChunkComponent](v.em, v.id)
	if !ok {
		return 0
	}
	return math.Max(0, chunk.Length)
}

func (v *chunkView) SnapBottomTo(y float64) { v.position().Y = y }

func (v *chunkView) MoveBy(dy float64) { v.position().Y += dy }
