package bgscroll

import "log"

// checkTermination 检查最后一块是否已到达相机顶部
//
// 到达后把全部背景块上移残差，使最后一块顶边与相机顶部精确对齐，然后进入 Completed。
func (s *Scroller) checkTermination() bool {
	if s.finalChunkID < 0 {
		return false
	}
	slot, ok := s.slotByID[s.finalChunkID]
	if !ok || !slot.Confirmed {
		return false
	}

	bounds := s.viewport.Bounds()
	if slot.PlannedTopY > bounds.Top {
		return false
	}

	if residual := bounds.Top - slot.PlannedTopY; residual > 0 {
		s.shift(residual)
	}
	s.checkBottomCoverage(bounds)

	s.state = StateCompleted
	log.Printf("[BgScroll] Scroll completed, final chunk %d aligned to camera top %.3f", slot.EntityID, bounds.Top)
	s.record(Event{Kind: EventCompleted, EntityID: slot.EntityID, TopY: slot.PlannedTopY})
	return true
}

// checkBottomCoverage 对齐后检查相机底部是否仍被背景覆盖
func (s *Scroller) checkBottomCoverage(bounds Bounds) {
	for _, slot := range s.slots {
		if !slot.Confirmed {
			continue
		}
		if gap := slot.PlannedBottomY - bounds.Bottom; gap > 0 {
			log.Printf("[BgScroll] Warning: %.3f units at the camera bottom are not covered after final alignment", gap)
		}
		return
	}
}
