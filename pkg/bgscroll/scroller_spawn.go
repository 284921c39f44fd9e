package bgscroll

import (
	"log"
	"math"
)

// fill 补块
//
// 补块条件（满足其一即继续）：
//  1. 下一块底边低于相机顶部 + spawnAhead
//  2. 相机顶部之上的背景块数不足 minAheadChunkCount
//
// 顶部背景块尚未显示成功时暂停补块，等待显示成功回调后继续。
func (s *Scroller) fill() {
	if s.filling || s.spawnHalted {
		return
	}
	if s.state != StatePrewarmed && s.state != StateRunning {
		return
	}

	s.filling = true
	defer func() { s.filling = false }()

	cameraTop := s.viewport.Bounds().Top
	spawnLine := cameraTop + s.cfg.SpawnAhead
	minAhead := max(0, s.cfg.MinAheadChunkCount)

	for s.sequencer.CanContinue() {
		if s.nextSpawnBottom >= spawnLine && s.aheadCount(cameraTop) >= minAhead {
			return
		}
		if top := s.topSlot(); top != nil && !top.Confirmed {
			return
		}
		if err := s.requestSpawnAt(s.nextSpawnBottom); err != nil {
			return
		}
	}
}

// aheadCount 统计底边位于相机顶部之上的背景块数
func (s *Scroller) aheadCount(cameraTop float64) int {
	count := 0
	for i := len(s.slots) - 1; i >= 0; i-- {
		if s.slots[i].PlannedBottomY < cameraTop {
			break
		}
		count++
	}
	return count
}

func (s *Scroller) topSlot() *ChunkSlot {
	if len(s.slots) == 0 {
		return nil
	}
	return s.slots[len(s.slots)-1]
}

// requestSpawnAt 在指定底边处申请一个新背景块
func (s *Scroller) requestSpawnAt(bottomY float64) error {
	theme := s.sequencer.CurrentThemeTag()
	def, tier, err := s.selector.SelectNext(theme, s.previousTheme)
	if err != nil {
		log.Printf("[BgScroll] ERROR: No chunk definition available (theme=%q, previous=%q), spawning halted", theme, s.previousTheme)
		s.spawnHalted = true
		s.record(Event{Kind: EventHalted, ThemeTag: theme, Message: err.Error()})
		return err
	}

	id, ok := s.ids.Acquire()
	if !ok || id <= 0 {
		log.Printf("[BgScroll] ERROR: Failed to acquire entity id for %s", def.EntityPath)
		return ErrIDExhausted
	}

	length := math.Max(minChunkLength, def.Length)
	slot := &ChunkSlot{
		EntityID:       id,
		SegmentIndex:   s.spawnCount,
		PlannedBottomY: bottomY,
		PlannedTopY:    bottomY + length,
		Definition:     def,
	}
	s.spawnCount++
	s.slots = append(s.slots, slot)
	s.slotByID[id] = slot
	s.nextSpawnBottom = slot.PlannedTopY

	s.selector.Record(def)
	s.previousTheme = def.ThemeTag

	wasCompleted := s.sequencer.Completed()
	s.sequencer.Consume(1)
	if !wasCompleted && s.sequencer.Completed() {
		s.finalChunkID = id
		log.Printf("[BgScroll] Final chunk planned: id=%d asset=%s", id, def.EntityPath)
	}

	s.record(Event{
		Kind:         EventSpawn,
		EntityID:     id,
		SegmentIndex: slot.SegmentIndex,
		AssetPath:    def.EntityPath,
		ThemeTag:     theme,
		Tier:         tier.String(),
		BottomY:      slot.PlannedBottomY,
		TopY:         slot.PlannedTopY,
	})

	s.entities.Show(id, def.EntityPath, s.cfg.EntityGroupName, SpawnUserData{
		SegmentIndex:   slot.SegmentIndex,
		PlannedBottomY: slot.PlannedBottomY,
		PlannedLength:  length,
	})
	return nil
}

// recycle 回收完全落到相机底部回收线以下的背景块
func (s *Scroller) recycle() {
	recycleLine := s.viewport.Bounds().Bottom - s.cfg.RecycleBehind
	recycled := false
	for len(s.slots) > 0 && s.slots[0].PlannedTopY < recycleLine {
		slot := s.slots[0]
		s.slots[0] = nil
		s.slots = s.slots[1:]
		delete(s.slotByID, slot.EntityID)
		recycled = true

		if _, ok := s.loaded[slot.EntityID]; ok {
			delete(s.loaded, slot.EntityID)
			s.notifyRecycled(slot.EntityID)
			s.releaseEntity(slot.EntityID)
			s.record(Event{Kind: EventRecycle, EntityID: slot.EntityID, SegmentIndex: slot.SegmentIndex})
			continue
		}

		// 尚未显示完成，等显示成功后再隐藏
		s.hideAfterShow[slot.EntityID] = struct{}{}
		s.record(Event{Kind: EventDeferredHide, EntityID: slot.EntityID, SegmentIndex: slot.SegmentIndex})
	}
	if recycled {
		s.refreshNextSpawnBottom()
	}
}

// refreshNextSpawnBottom 以顶部槽位顶边（无槽位时为相机底部）作为下一块底边
func (s *Scroller) refreshNextSpawnBottom() {
	if top := s.topSlot(); top != nil {
		s.nextSpawnBottom = top.PlannedTopY
		return
	}
	s.nextSpawnBottom = s.viewport.Bounds().Bottom
}

// shift 平移全部槽位与已显示背景块
func (s *Scroller) shift(dy float64) {
	for _, slot := range s.slots {
		slot.PlannedBottomY += dy
		slot.PlannedTopY += dy
		if view, ok := s.loaded[slot.EntityID]; ok {
			view.MoveBy(dy)
		}
	}
	s.nextSpawnBottom += dy
	for _, l := range s.listeners {
		l.OnChunksShifted(dy)
	}
}

// releaseEntity 隐藏实体并归还 Id
func (s *Scroller) releaseEntity(id int) {
	if s.entities.HasEntity(id) {
		s.entities.Hide(id)
	}
	s.ids.Release(id)
}

func (s *Scroller) notifyRecycled(id int) {
	for _, l := range s.listeners {
		l.OnChunkRecycled(id)
	}
}
