package ecs

import (
	"reflect"
	"sort"
)

// EntityID 是实体的唯一标识符，0 保留为无效 ID
type EntityID int

// EntityManager 管理所有实体和组件
//
// 实体 ID 可以由管理器自己分配（CreateEntity），也可以由外部 ID 池分配后登记（CreateEntityWithID）。
type EntityManager struct {
	nextID EntityID
	// 实体-组件映射: EntityID -> ComponentType -> Component实例
	components map[EntityID]map[reflect.Type]any
}

// NewEntityManager 创建一个新的 EntityManager 实例
func NewEntityManager() *EntityManager {
	return &EntityManager{
		nextID:     1,
		components: make(map[EntityID]map[reflect.Type]any),
	}
}

// CreateEntity 创建新实体并返回未被占用的最小递增 ID
func (em *EntityManager) CreateEntity() EntityID {
	for {
		id := em.nextID
		em.nextID++
		if _, exists := em.components[id]; !exists {
			em.components[id] = make(map[reflect.Type]any)
			return id
		}
	}
}

// CreateEntityWithID 以外部分配的 ID 创建实体
// ID 无效或已存在时返回 false
func (em *EntityManager) CreateEntityWithID(id EntityID) bool {
	if id <= 0 {
		return false
	}
	if _, exists := em.components[id]; exists {
		return false
	}
	em.components[id] = make(map[reflect.Type]any)
	return true
}

// EntityExists 实体是否存在
func (em *EntityManager) EntityExists(id EntityID) bool {
	_, exists := em.components[id]
	return exists
}

// DestroyEntity 立即删除实体及其全部组件
func (em *EntityManager) DestroyEntity(id EntityID) {
	delete(em.components, id)
}

// Count 实体数量
func (em *EntityManager) Count() int {
	return len(em.components)
}

// AddComponent 为实体添加组件，同类型组件会被覆盖
func (em *EntityManager) AddComponent(id EntityID, component any) {
	componentType := reflect.TypeOf(component)
	if compMap, exists := em.components[id]; exists {
		compMap[componentType] = component
	}
}

// RemoveComponent 从实体移除指定类型的组件
func (em *EntityManager) RemoveComponent(id EntityID, componentType reflect.Type) {
	if compMap, exists := em.components[id]; exists {
		delete(compMap, componentType)
	}
}

// GetComponent 获取实体的特定类型组件
func (em *EntityManager) GetComponent(id EntityID, componentType reflect.Type) (any, bool) {
	if compMap, exists := em.components[id]; exists {
		if comp, found := compMap[componentType]; found {
			return comp, true
		}
	}
	return nil, false
}

// HasComponent 检查实体是否拥有特定类型组件
func (em *EntityManager) HasComponent(id EntityID, componentType reflect.Type) bool {
	_, found := em.GetComponent(id, componentType)
	return found
}

// GetEntitiesWith 查询拥有指定组件类型组合的所有实体（按 ID 升序）
func (em *EntityManager) GetEntitiesWith(componentTypes ...reflect.Type) []EntityID {
	result := make([]EntityID, 0)

	for id, compMap := range em.components {
		hasAll := true
		for _, ct := range componentTypes {
			if _, found := compMap[ct]; !found {
				hasAll = false
				break
			}
		}
		if hasAll {
			result = append(result, id)
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}
