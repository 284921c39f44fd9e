package game

import (
	"fmt"
	"log"

	"github.com/chuyi0414/qlmt/pkg/bgscroll"
	"github.com/chuyi0414/qlmt/pkg/components"
	"github.com/chuyi0414/qlmt/pkg/ecs"
	"github.com/chuyi0414/qlmt/pkg/resourcepoint"
)

// MarkerLayer 物资点占位实体层，实现 resourcepoint.MarkerSpawner
//
// 占位实体挂在所属背景块下（ParentComponent），随背景块一起移动。
type MarkerLayer struct {
	em        *ecs.EntityManager
	ids       bgscroll.IDAllocator
	resources *ResourceManager
	markers   map[int]int // 占位实体 Id -> 所属背景块 Id
}

// NewMarkerLayer 创建占位实体层，并接管实体服务隐藏父实体时的子实体回收
// resources 为 nil 时不附加图像与颜色
func NewMarkerLayer(entities *EntityService, ids bgscroll.IDAllocator, resources *ResourceManager) *MarkerLayer {
	l := &MarkerLayer{
		em:        entities.EntityManager(),
		ids:       ids,
		resources: resources,
		markers:   make(map[int]int),
	}
	entities.OnChildHidden(l.forget)
	return l
}

// SpawnMarker 在世界坐标 (x, y) 处创建占位实体
func (l *MarkerLayer) SpawnMarker(ownerID int, kind resourcepoint.Kind, markerPath string, x, y float64) (int, error) {
	parent, ok := ecs.GetComponent[*components.PositionComponent](l.em, ecs.EntityID(ownerID))
	if !ok {
		return 0, fmt.Errorf("owner chunk %d is not shown", ownerID)
	}

	id, ok := l.ids.Acquire()
	if !ok {
		return 0, bgscroll.ErrIDExhausted
	}
	eid := ecs.EntityID(id)
	if !l.em.CreateEntityWithID(eid) {
		l.ids.Release(id)
		return 0, fmt.Errorf("marker entity id %d already exists", id)
	}

	marker := &components.MarkerComponent{OwnerID: ownerID, Kind: kind.String(), AssetPath: markerPath}
	if l.resources != nil {
		if r, ok := l.resources.MeasureMarkerRadius(markerPath); ok {
			marker.Radius = r
		}
		if asset, ok := l.resources.Catalog().Marker(markerPath); ok {
			marker.Color, _ = ParseHexColor(asset.Color)
			ecs.AddComponent(l.em, eid, &components.ScaleComponent{ScaleX: asset.Scale, ScaleY: asset.Scale})
		}
	}

	ecs.AddComponent(l.em, eid, marker)
	ecs.AddComponent(l.em, eid, &components.ParentComponent{ParentID: ownerID, OffsetX: x - parent.X, OffsetY: y - parent.Y})
	l.markers[id] = ownerID
	return id, nil
}

// DestroyMarker 销毁占位实体并归还 Id
func (l *MarkerLayer) DestroyMarker(markerID int) {
	if _, ok := l.markers[markerID]; !ok {
		log.Printf("[MarkerLayer] Warning: destroy of unknown marker %d", markerID)
		return
	}
	l.em.DestroyEntity(ecs.EntityID(markerID))
	l.forget(markerID)
}

// forget 子实体已被删除，只归还 Id
func (l *MarkerLayer) forget(markerID int) {
	if _, ok := l.markers[markerID]; !ok {
		return
	}
	delete(l.markers, markerID)
	l.ids.Release(markerID)
}

// Count 活跃占位实体数量
func (l *MarkerLayer) Count() int { return len(l.markers) }

// WorldPosition 子实体的世界坐标
func WorldPosition(em *ecs.EntityManager, id ecs.EntityID) (x, y float64, ok bool) {
	if parent, hasParent := ecs.GetComponent[*components.ParentComponent](em, id); hasParent {
		pos, found := ecs.GetComponent[*components.PositionComponent](em, ecs.EntityID(parent.ParentID))
		if !found {
			return 0, 0, false
		}
		return pos.X + parent.OffsetX, pos.Y + parent.OffsetY, true
	}
	pos, found := ecs.GetComponent[*components.PositionComponent](em, id)
	if !found {
		return 0, 0, false
	}
	return pos.X, pos.Y, true
}
