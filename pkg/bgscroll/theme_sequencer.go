package bgscroll

import (
	"log"
	"math"
)

// minSegmentBudget 主题片段预算下限
const minSegmentBudget = 0.01

// ThemeSequencer 主题序列推进器
//
// 按顺序消耗每个主题片段的预算，预算耗尽后切换到下一片段。
// 非循环模式下越过最后一个片段即进入终态：停留在最后一个片段、剩余预算为 0，
// 之后的消耗都是空操作。
type ThemeSequencer struct {
	segments    []ThemeSegment
	loop        bool
	index       int
	remaining   float64
	completed   bool
	transitions int
}

// NewThemeSequencer 创建主题序列推进器
func NewThemeSequencer(segments []ThemeSegment, loop bool) *ThemeSequencer {
	s := &ThemeSequencer{
		segments: append([]ThemeSegment(nil), segments...),
		loop:     loop,
	}
	s.Reset()
	return s
}

// Reset 回到第一个片段
func (s *ThemeSequencer) Reset() {
	s.index = 0
	s.completed = false
	s.transitions = 0
	if len(s.segments) == 0 {
		s.remaining = math.Inf(1)
		return
	}
	s.remaining = segmentBudget(s.segments[0])
}

// Consume 消耗预算
//
// 一次消耗可能跨越多个片段，溢出部分会继续计入后续片段。
func (s *ThemeSequencer) Consume(amount float64) {
	if amount <= 0 || len(s.segments) == 0 || s.completed {
		return
	}

	s.remaining -= amount
	for s.remaining <= 0 && !s.completed {
		overflow := -s.remaining
		s.moveToNext()
		if s.completed {
			return
		}
		s.remaining -= overflow
	}
}

// moveToNext 切换到下一个片段
func (s *ThemeSequencer) moveToNext() {
	s.transitions++
	next := s.index + 1
	if next >= len(s.segments) {
		if !s.loop {
			s.index = len(s.segments) - 1
			s.remaining = 0
			s.completed = true
			log.Printf("[ThemeSequencer] Theme sequence completed at segment %d (%s)", s.index, s.segments[s.index].ThemeTag)
			return
		}
		next = 0
	}
	s.index = next
	s.remaining = segmentBudget(s.segments[next])
}

func segmentBudget(seg ThemeSegment) float64 {
	return math.Max(minSegmentBudget, seg.Budget)
}

// CurrentThemeTag 当前主题标签，未配置片段时返回空字符串（不限制主题）
func (s *ThemeSequencer) CurrentThemeTag() string {
	if len(s.segments) == 0 {
		return ""
	}
	return s.segments[s.index].ThemeTag
}

// CanContinue 是否允许继续生成背景块
func (s *ThemeSequencer) CanContinue() bool {
	return len(s.segments) == 0 || s.loop || !s.completed
}

// Completed 非循环序列是否已结束
func (s *ThemeSequencer) Completed() bool { return s.completed }

// CurrentIndex 当前片段下标
func (s *ThemeSequencer) CurrentIndex() int { return s.index }

// Remaining 当前片段剩余预算
func (s *ThemeSequencer) Remaining() float64 { return s.remaining }

// Transitions 自上次 Reset 以来的片段切换次数
func (s *ThemeSequencer) Transitions() int { return s.transitions }

// Loop 是否循环
func (s *ThemeSequencer) Loop() bool { return s.loop }

// SegmentCount 片段数量
func (s *ThemeSequencer) SegmentCount() int { return len(s.segments) }
