package bgscroll

// SlotSnapshot 槽位快照
type SlotSnapshot struct {
	EntityID     int     `json:"entityId"`
	SegmentIndex int     `json:"segmentIndex"`
	AssetPath    string  `json:"assetPath"`
	ThemeTag     string  `json:"themeTag"`
	BottomY      float64 `json:"bottomY"`
	TopY         float64 `json:"topY"`
	Confirmed    bool    `json:"confirmed"`
}

// Snapshot 滚动器状态快照，可直接序列化为 JSON
type Snapshot struct {
	Tick              uint64         `json:"tick"`
	State             string         `json:"state"`
	ThemeTag          string         `json:"themeTag"`
	ThemeIndex        int            `json:"themeIndex"`
	SequenceCompleted bool           `json:"sequenceCompleted"`
	ScrollSpeed       float64        `json:"scrollSpeed"`
	NextSpawnBottomY  float64        `json:"nextSpawnBottomY"`
	FinalChunkID      int            `json:"finalChunkId"`
	PendingHides      int            `json:"pendingHides"`
	Camera            Bounds         `json:"camera"`
	Slots             []SlotSnapshot `json:"slots"`
}

// Snapshot 生成当前状态快照
func (s *Scroller) Snapshot() Snapshot {
	snap := Snapshot{
		Tick:             s.tick,
		State:            s.state.String(),
		ScrollSpeed:      s.scrollSpeed,
		NextSpawnBottomY: s.nextSpawnBottom,
		FinalChunkID:     s.finalChunkID,
		PendingHides:     len(s.hideAfterShow),
		Slots:            make([]SlotSnapshot, 0, len(s.slots)),
	}
	if s.viewport != nil {
		snap.Camera = s.viewport.Bounds()
	}
	if s.sequencer != nil {
		snap.ThemeTag = s.sequencer.CurrentThemeTag()
		snap.ThemeIndex = s.sequencer.CurrentIndex()
		snap.SequenceCompleted = s.sequencer.Completed()
	}
	for _, slot := range s.slots {
		snap.Slots = append(snap.Slots, SlotSnapshot{
			EntityID:     slot.EntityID,
			SegmentIndex: slot.SegmentIndex,
			AssetPath:    slot.Definition.EntityPath,
			ThemeTag:     slot.Definition.ThemeTag,
			BottomY:      slot.PlannedBottomY,
			TopY:         slot.PlannedTopY,
			Confirmed:    slot.Confirmed,
		})
	}
	return snap
}
