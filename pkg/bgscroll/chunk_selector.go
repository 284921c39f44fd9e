package bgscroll

import (
	"math"
	"math/rand"
	"strings"
)

// RandomSource 背景块挑选使用的随机源
// *rand.Rand 满足该接口
type RandomSource interface {
	Float64() float64
	Intn(n int) int
}

// globalRandom 使用 math/rand 的全局随机源（不固定种子）
type globalRandom struct{}

func (globalRandom) Float64() float64 { return rand.Float64() }
func (globalRandom) Intn(n int) int   { return rand.Intn(n) }

// SelectionTier 挑选时实际生效的约束层级
type SelectionTier int

const (
	TierStrict       SelectionTier = iota // 主题 + 跟随 + 防重复
	TierIgnoreRepeat                      // 主题 + 跟随
	TierIgnoreFollow                      // 仅主题
	TierGlobal                            // 不加约束
)

// String 返回层级名称
func (t SelectionTier) String() string {
	switch t {
	case TierStrict:
		return "strict"
	case TierIgnoreRepeat:
		return "ignore-repeat"
	case TierIgnoreFollow:
		return "ignore-follow"
	case TierGlobal:
		return "global"
	default:
		return "unknown"
	}
}

// RepeatTracker 记录同一资源的连续出现次数
type RepeatTracker struct {
	maxConsecutive int
	lastPath       string
	hasLast        bool
	sameCount      int
}

// NewRepeatTracker 创建连续重复计数器，maxConsecutive <= 0 表示不限制
func NewRepeatTracker(maxConsecutive int) *RepeatTracker {
	return &RepeatTracker{maxConsecutive: maxConsecutive}
}

// Blocked 检查该背景块是否因连续重复被屏蔽
func (r *RepeatTracker) Blocked(def ChunkDefinition) bool {
	if r.maxConsecutive <= 0 || !r.hasLast {
		return false
	}
	if !strings.EqualFold(r.lastPath, def.EntityPath) {
		return false
	}
	return r.sameCount >= r.maxConsecutive
}

// Record 记录一次生成请求
func (r *RepeatTracker) Record(def ChunkDefinition) {
	if r.hasLast && strings.EqualFold(r.lastPath, def.EntityPath) {
		r.sameCount++
	} else {
		r.sameCount = 1
	}
	r.lastPath = def.EntityPath
	r.hasLast = true
}

// Reset 清空记录
func (r *RepeatTracker) Reset() {
	r.lastPath = ""
	r.hasLast = false
	r.sameCount = 0
}

// SameCount 当前资源的连续次数
func (r *RepeatTracker) SameCount() int { return r.sameCount }

// ChunkSelector 背景块挑选器
//
// 按以下顺序逐级放宽约束，直到候选集非空：
//  1. 主题兼容 + 跟随规则 + 未被防重复屏蔽
//  2. 主题兼容 + 跟随规则
//  3. 主题兼容
//  4. 全部可用背景块
//
// 候选集内按权重随机。
type ChunkSelector struct {
	definitions []ChunkDefinition
	repeat      *RepeatTracker
	rng         RandomSource
	candidates  []ChunkDefinition // 复用的候选缓冲
}

// NewChunkSelector 创建挑选器，rng 为 nil 时使用全局随机源
func NewChunkSelector(definitions []ChunkDefinition, maxConsecutiveSameAsset int, rng RandomSource) *ChunkSelector {
	if rng == nil {
		rng = globalRandom{}
	}
	return &ChunkSelector{
		definitions: append([]ChunkDefinition(nil), definitions...),
		repeat:      NewRepeatTracker(maxConsecutiveSameAsset),
		rng:         rng,
		candidates:  make([]ChunkDefinition, 0, len(definitions)),
	}
}

// Repeat 返回连续重复计数器
func (s *ChunkSelector) Repeat() *RepeatTracker { return s.repeat }

// SelectNext 挑选下一个背景块
// 只有全部约束都放宽后仍无候选时才返回 ErrSelectionExhausted
func (s *ChunkSelector) SelectNext(currentTheme, previousTheme string) (ChunkDefinition, SelectionTier, error) {
	if def, ok := s.pickWeighted(currentTheme, previousTheme, true, true); ok {
		return def, TierStrict, nil
	}
	if def, ok := s.pickWeighted(currentTheme, previousTheme, true, false); ok {
		return def, TierIgnoreRepeat, nil
	}
	if def, ok := s.pickWeighted(currentTheme, previousTheme, false, false); ok {
		return def, TierIgnoreFollow, nil
	}
	if def, ok := s.pickWeighted("", "", false, false); ok {
		return def, TierGlobal, nil
	}
	return ChunkDefinition{}, TierGlobal, ErrSelectionExhausted
}

// Record 记录一次生成请求，用于防重复统计
func (s *ChunkSelector) Record(def ChunkDefinition) {
	s.repeat.Record(def)
}

func (s *ChunkSelector) pickWeighted(currentTheme, previousTheme string, enforceFollow, enforceRepeat bool) (ChunkDefinition, bool) {
	s.candidates = s.candidates[:0]
	for _, def := range s.definitions {
		if !def.Usable() {
			continue
		}
		if !def.CompatibleWith(currentTheme) {
			continue
		}
		if enforceFollow && !def.CanFollow(previousTheme) {
			continue
		}
		if enforceRepeat && s.repeat.Blocked(def) {
			continue
		}
		s.candidates = append(s.candidates, def)
	}

	if len(s.candidates) == 0 {
		return ChunkDefinition{}, false
	}

	total := 0.0
	for _, def := range s.candidates {
		total += math.Max(0, def.Weight)
	}
	if total <= 0 {
		return s.candidates[s.rng.Intn(len(s.candidates))], true
	}

	roll := s.rng.Float64() * total
	for _, def := range s.candidates {
		roll -= math.Max(0, def.Weight)
		if roll <= 0 {
			return def, true
		}
	}
	// 浮点误差兜底
	return s.candidates[len(s.candidates)-1], true
}
