package config

import (
	"fmt"
	"sort"
)

// DataRow 数据表行
// 每一行必须提供唯一的整数主键
type DataRow interface {
	RowID() int
}

// DataTable 按主键索引的只读数据表
//
// 行按加入顺序保存，All() 返回的顺序与加入顺序一致，
// 便于保持配置表中的书写顺序（权重随机依赖该顺序）。
type DataTable[T DataRow] struct {
	name  string
	rows  []T
	index map[int]int // RowID -> rows 下标
}

// NewDataTable 创建一个空数据表
func NewDataTable[T DataRow](name string) *DataTable[T] {
	return &DataTable[T]{
		name:  name,
		rows:  make([]T, 0),
		index: make(map[int]int),
	}
}

// Name 返回数据表名称
func (t *DataTable[T]) Name() string {
	return t.name
}

// Add 添加一行，主键重复时返回错误
func (t *DataTable[T]) Add(row T) error {
	id := row.RowID()
	if _, exists := t.index[id]; exists {
		return fmt.Errorf("data table %s: duplicate row id %d", t.name, id)
	}
	t.index[id] = len(t.rows)
	t.rows = append(t.rows, row)
	return nil
}

// Get 按主键查找行
func (t *DataTable[T]) Get(id int) (T, bool) {
	idx, ok := t.index[id]
	if !ok {
		var zero T
		return zero, false
	}
	return t.rows[idx], true
}

// Has 检查主键是否存在
func (t *DataTable[T]) Has(id int) bool {
	_, ok := t.index[id]
	return ok
}

// All 返回全部行（副本，按加入顺序）
func (t *DataTable[T]) All() []T {
	out := make([]T, len(t.rows))
	copy(out, t.rows)
	return out
}

// Len 返回行数
func (t *DataTable[T]) Len() int {
	return len(t.rows)
}

// IDs 返回升序排列的全部主键
func (t *DataTable[T]) IDs() []int {
	ids := make([]int, 0, len(t.index))
	for id := range t.index {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// DataTableManager 数据表注册中心
//
// 按名称注册不同行类型的数据表，取表时通过泛型函数 GetDataTable 做类型检查。
type DataTableManager struct {
	tables map[string]any
}

// NewDataTableManager 创建数据表注册中心
func NewDataTableManager() *DataTableManager {
	return &DataTableManager{tables: make(map[string]any)}
}

// AddDataTable 注册数据表，同名表会被覆盖
func AddDataTable[T DataRow](m *DataTableManager, table *DataTable[T]) {
	m.tables[table.Name()] = table
}

// HasDataTable 检查指定名称的数据表是否存在
func (m *DataTableManager) HasDataTable(name string) bool {
	_, ok := m.tables[name]
	return ok
}

// GetDataTable 获取指定名称与行类型的数据表
// 表不存在或行类型不匹配时返回 false
func GetDataTable[T DataRow](m *DataTableManager, name string) (*DataTable[T], bool) {
	raw, ok := m.tables[name]
	if !ok {
		return nil, false
	}
	table, ok := raw.(*DataTable[T])
	return table, ok
}
