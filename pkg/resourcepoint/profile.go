// Package resourcepoint 在背景块两侧道路之外生成物资点
//
// 每个背景块显示成功后，生成器以(配置种子, 背景块序号)派生确定性的随机流，
// 与 Perlin 噪声混合后沿 Y 轴逐步采样，在左右两条侧边区域放置小/大物资点，
// 并保证与本块及其它活跃背景块上的物资点保持最小间距。
package resourcepoint

import (
	"fmt"

	"github.com/chuyi0414/qlmt/pkg/config"
)

const (
	// DefaultAvoidRadius 无法测量占位尺寸时的兜底半径
	DefaultAvoidRadius = 0.6
	// MinAvoidRadius 占位半径下限
	MinAvoidRadius = 0.05
)

// Kind 物资点类型
type Kind int

const (
	KindNone Kind = iota
	KindSmall
	KindBig
)

func (k Kind) String() string {
	switch k {
	case KindSmall:
		return "small"
	case KindBig:
		return "big"
	default:
		return "none"
	}
}

// Side 物资点位于道路哪一侧
type Side int

const (
	SideLeft Side = iota
	SideRight
)

func (s Side) String() string {
	if s == SideLeft {
		return "left"
	}
	return "right"
}

// Profile 物资点生成参数
type Profile struct {
	ID                  int
	Seed                int
	PerlinFrequency     float64
	RoadHalfWidth       float64
	EdgePaddingX        float64
	NoneWeight          float64
	SmallWeight         float64
	BigWeight           float64
	MinGapY             float64
	MaxGapY             float64
	MaxPointsPerChunk   int
	MinPointDistance    float64 // 两点占位半径之外的额外间距
	RoadCenterOffsetX   float64
	SmallMarkerPath     string
	BigMarkerPath       string
	FallbackAvoidRadius float64
}

// ProfileFromRow 从配置行构建生成参数
func ProfileFromRow(row config.RoadGenProfileRow) (Profile, error) {
	if err := config.ValidateRoadGenProfile(row); err != nil {
		return Profile{}, fmt.Errorf("invalid road gen profile: %w", err)
	}
	fallback := row.FallbackAvoidRadius
	if fallback <= 0 {
		fallback = DefaultAvoidRadius
	}
	return Profile{
		ID:                  row.ID,
		Seed:                row.Seed,
		PerlinFrequency:     row.PerlinFrequency,
		RoadHalfWidth:       row.RoadHalfWidth,
		EdgePaddingX:        row.SpawnEdgePaddingX,
		NoneWeight:          row.NoneWeight,
		SmallWeight:         row.SmallWeight,
		BigWeight:           row.BigWeight,
		MinGapY:             row.MinSpawnGapY,
		MaxGapY:             row.MaxSpawnGapY,
		MaxPointsPerChunk:   row.MaxPointsPerBg,
		MinPointDistance:    row.MinInBlockPointDistance,
		RoadCenterOffsetX:   row.RoadCenterOffsetX,
		SmallMarkerPath:     row.SmallMarkerPath,
		BigMarkerPath:       row.BigMarkerPath,
		FallbackAvoidRadius: fallback,
	}, nil
}

// MarkerPath 返回物资点类型对应的占位资源
func (p Profile) MarkerPath(kind Kind) string {
	switch kind {
	case KindSmall:
		return p.SmallMarkerPath
	case KindBig:
		return p.BigMarkerPath
	default:
		return ""
	}
}

// KindFor 按累计权重阈值把 [0,1] 采样值映射为物资点类型
//
// 阈值：[0, none) -> None，[none, none+small) -> Small，其余 -> Big。
// 权重全为 0 或大物资点权重为 0 时落入 Big 区间都视为 None。
func (p Profile) KindFor(sample float64) Kind {
	none := max(0, p.NoneWeight)
	small := max(0, p.SmallWeight)
	big := max(0, p.BigWeight)
	total := none + small + big
	if total <= 0 {
		return KindNone
	}

	noneThreshold := none / total
	smallThreshold := (none + small) / total
	switch {
	case sample < noneThreshold:
		return KindNone
	case sample < smallThreshold:
		return KindSmall
	case big > 0:
		return KindBig
	default:
		return KindNone
	}
}
