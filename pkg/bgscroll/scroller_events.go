package bgscroll

import (
	"log"
	"math"
)

// HandleShowSucceeded 处理实体显示成功
//
// 非本实体组的事件直接忽略。
func (s *Scroller) HandleShowSucceeded(ev ShowSucceeded) {
	if ev.Group != s.cfg.EntityGroupName {
		return
	}
	id := ev.EntityID

	if _, ok := s.aborted[id]; ok {
		delete(s.aborted, id)
		s.releaseEntity(id)
		return
	}
	if _, ok := s.hideAfterShow[id]; ok {
		delete(s.hideAfterShow, id)
		s.releaseEntity(id)
		s.record(Event{Kind: EventRecycle, EntityID: id, Message: "hidden after show"})
		return
	}

	slot, ok := s.slotByID[id]
	if !ok {
		log.Printf("[BgScroll] Warning: show succeeded for unknown entity %d, hiding", id)
		if s.entities.HasEntity(id) {
			s.entities.Hide(id)
		}
		return
	}
	if ev.View == nil {
		log.Printf("[BgScroll] Warning: show succeeded without chunk view, entity %d", id)
		return
	}

	ev.View.SnapBottomTo(slot.PlannedBottomY)

	plannedLength := math.Max(minChunkLength, slot.PlannedTopY-slot.PlannedBottomY)
	actualLength := ev.View.Length()
	if math.Abs(plannedLength-actualLength) > s.cfg.LengthMismatchTolerance {
		log.Printf("[BgScroll] Warning: chunk length mismatch, entity=%d asset=%s planned=%.3f actual=%.3f",
			id, slot.Definition.EntityPath, plannedLength, actualLength)
	}
	// 以实际高度作为下一块的锚点
	if actualLength > 0 {
		slot.PlannedTopY = slot.PlannedBottomY + actualLength
	}
	slot.Confirmed = true
	s.loaded[id] = ev.View
	s.refreshNextSpawnBottom()

	shown := ShownChunk{
		EntityID:     id,
		SegmentIndex: slot.SegmentIndex,
		BottomY:      slot.PlannedBottomY,
		TopY:         slot.PlannedTopY,
		Definition:   slot.Definition,
		View:         ev.View,
	}
	for _, l := range s.listeners {
		l.OnChunkShown(shown)
	}
	s.record(Event{
		Kind:         EventShown,
		EntityID:     id,
		SegmentIndex: slot.SegmentIndex,
		AssetPath:    slot.Definition.EntityPath,
		BottomY:      slot.PlannedBottomY,
		TopY:         slot.PlannedTopY,
	})

	s.fill()
}

// HandleShowFailed 处理实体显示失败
//
// 回滚槽位、归还 Id，并从新的顶部槽位重新计算下一块底边。
// 若失败的是最后一块，终止流程并停止滚动。
func (s *Scroller) HandleShowFailed(ev ShowFailed) {
	if ev.Group != s.cfg.EntityGroupName {
		return
	}
	id := ev.EntityID

	if _, ok := s.aborted[id]; ok {
		delete(s.aborted, id)
		s.ids.Release(id)
		return
	}
	if _, ok := s.hideAfterShow[id]; ok {
		delete(s.hideAfterShow, id)
		s.ids.Release(id)
		return
	}

	slot, ok := s.slotByID[id]
	if !ok {
		log.Printf("[BgScroll] Warning: show failed for unknown entity %d", id)
		return
	}

	s.removeSlot(id)
	s.ids.Release(id)
	s.refreshNextSpawnBottom()

	log.Printf("[BgScroll] Warning: failed to show chunk, entity=%d asset=%s error=%v", id, ev.AssetPath, ev.Err)
	msg := ""
	if ev.Err != nil {
		msg = ev.Err.Error()
	}
	s.record(Event{Kind: EventShowFailed, EntityID: id, SegmentIndex: slot.SegmentIndex, AssetPath: ev.AssetPath, Message: msg})

	if id == s.finalChunkID {
		log.Printf("[BgScroll] Warning: final chunk %d failed to show, stopping scroll", id)
		s.finalChunkID = -1
		s.terminationAborted = true
		if s.state == StateRunning || s.state == StatePrewarmed {
			s.state = StateStopped
		}
		s.record(Event{Kind: EventStopped, EntityID: id, Message: "final chunk failed"})
		return
	}

	s.fill()
}

func (s *Scroller) removeSlot(id int) {
	delete(s.slotByID, id)
	delete(s.loaded, id)
	for i, slot := range s.slots {
		if slot.EntityID == id {
			s.slots = append(s.slots[:i], s.slots[i+1:]...)
			return
		}
	}
}
