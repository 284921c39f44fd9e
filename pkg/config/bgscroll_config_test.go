package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validBgScrollYAML = `
scroll:
  scrollSpeed: 2.5
  spawnAhead: 6
chunks:
  - id: 1
    entityPath: Bg/Chunk_Forest_01
    themeTag: Forest
    weight: 1
    chunkLength: 10
  - id: 2
    entityPath: Bg/Chunk_Desert_01
    themeTag: Desert
    weight: 2
    canFollowThemes: ["Forest", "*"]
themeSegments:
  - id: 1
    segments:
      - { themeTag: Forest, chunkCount: 2 }
      - { themeTag: Desert, chunkCount: 1 }
levelThemes:
  - id: 1
    themeGroupIds: [1]
    loopThemeSegments: false
roadGenProfiles:
  - id: 1
    seed: 42
    perlinFrequency: 0.2
    roadHalfWidth: 1.5
    spawnEdgePaddingX: 0.3
    noneWeight: 1
    smallWeight: 2
    bigWeight: 1
    minSpawnGapY: 2
    maxSpawnGapY: 4
    maxPointsPerBg: 3
    minInBlockPointDistance: 0.2
    smallMarkerPath: Marker/Small
    bigMarkerPath: Marker/Big
levels:
  - id: 1
    useNoiseSidePoints: true
    roadGenProfileId: 1
`

func TestParseBgScrollDocument(t *testing.T) {
	doc, err := ParseBgScrollDocument([]byte(validBgScrollYAML))
	if err != nil {
		t.Fatalf("ParseBgScrollDocument() error = %v", err)
	}

	if doc.Scroll.ScrollSpeed != 2.5 {
		t.Errorf("scrollSpeed = %g, want 2.5", doc.Scroll.ScrollSpeed)
	}
	if doc.Scroll.SpawnAhead != 6 {
		t.Errorf("spawnAhead = %g, want 6", doc.Scroll.SpawnAhead)
	}
	// 未配置的字段使用默认值
	if doc.Scroll.RecycleBehind != 4 {
		t.Errorf("recycleBehind = %g, want default 4", doc.Scroll.RecycleBehind)
	}
	if doc.Scroll.MaxConsecutiveSameAsset != 2 {
		t.Errorf("maxConsecutiveSameAsset = %d, want default 2", doc.Scroll.MaxConsecutiveSameAsset)
	}
	if doc.Scroll.EntityGroupName != "Background" {
		t.Errorf("entityGroupName = %q, want Background", doc.Scroll.EntityGroupName)
	}

	if len(doc.Chunks) != 2 {
		t.Fatalf("chunks = %d, want 2", len(doc.Chunks))
	}
	if got := doc.Chunks[1].CanFollowThemes; len(got) != 2 || got[1] != FollowWildcard {
		t.Errorf("canFollowThemes = %v", got)
	}
	if len(doc.ThemeSegments[0].Segments) != 2 {
		t.Errorf("segments = %v", doc.ThemeSegments[0].Segments)
	}
	if !doc.Levels[0].UseNoiseSidePoints {
		t.Error("expected level 1 to use noise side points")
	}
}

// TestParseBgScrollDocument_ExplicitZero 显式配置为 0 的参数不被默认值覆盖
func TestParseBgScrollDocument_ExplicitZero(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value func(ScrollConfig) float64
		def   float64
	}{
		{"滚动速度", "scrollSpeed", func(c ScrollConfig) float64 { return c.ScrollSpeed }, 1},
		{"补块缓冲", "spawnAhead", func(c ScrollConfig) float64 { return c.SpawnAhead }, 4},
		{"回收缓冲", "recycleBehind", func(c ScrollConfig) float64 { return c.RecycleBehind }, 4},
		{"最少前方块数", "minAheadChunkCount", func(c ScrollConfig) float64 { return float64(c.MinAheadChunkCount) }, 1},
		{"连续重复上限", "maxConsecutiveSameAsset", func(c ScrollConfig) float64 { return float64(c.MaxConsecutiveSameAsset) }, 2},
		{"高度误差", "lengthMismatchTolerance", func(c ScrollConfig) float64 { return c.LengthMismatchTolerance }, 0.05},
	}
	const chunks = `
chunks:
  - id: 1
    entityPath: Bg/A
`
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseBgScrollDocument([]byte("scroll:\n  " + tt.key + ": 0\n" + chunks))
			if err != nil {
				t.Fatalf("ParseBgScrollDocument() error = %v", err)
			}
			if got := tt.value(doc.Scroll); got != 0 {
				t.Errorf("%s = %v, 期望显式的 0 被保留", tt.key, got)
			}

			// 未配置时使用默认值
			doc, err = ParseBgScrollDocument([]byte(chunks))
			if err != nil {
				t.Fatalf("ParseBgScrollDocument() error = %v", err)
			}
			if got := tt.value(doc.Scroll); got != tt.def {
				t.Errorf("%s = %v, 期望默认值 %v", tt.key, got, tt.def)
			}
		})
	}
}

func TestParseBgScrollDocument_Invalid(t *testing.T) {
	tests := []struct {
		name        string
		yamlContent string
		errContains string
	}{
		{
			name:        "missing chunks",
			yamlContent: "scroll:\n  scrollSpeed: 1\n",
			errContains: "schema",
		},
		{
			name:        "unknown field",
			yamlContent: "chunks:\n  - id: 1\n    entityPath: Bg/A\n    color: red\n",
			errContains: "schema",
		},
		{
			name:        "negative weight",
			yamlContent: "chunks:\n  - id: 1\n    entityPath: Bg/A\n    weight: -1\n",
			errContains: "schema",
		},
		{
			name:        "empty segments",
			yamlContent: "chunks:\n  - id: 1\n    entityPath: Bg/A\nthemeSegments:\n  - id: 1\n    segments: []\n",
			errContains: "schema",
		},
		{
			name: "max gap below min gap",
			yamlContent: `
chunks:
  - id: 1
    entityPath: Bg/A
roadGenProfiles:
  - id: 1
    perlinFrequency: 0.1
    roadHalfWidth: 1
    minSpawnGapY: 3
    maxSpawnGapY: 2
`,
			errContains: "maxSpawnGapY",
		},
		{
			name:        "malformed yaml",
			yamlContent: "chunks: [\n",
			errContains: "YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBgScrollDocument([]byte(tt.yamlContent))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.errContains)
			}
		})
	}
}

func TestLoadBgScrollDocument(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "bgscroll.yaml")
	if err := os.WriteFile(path, []byte(validBgScrollYAML), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}

	doc, err := LoadBgScrollDocument(path)
	if err != nil {
		t.Fatalf("LoadBgScrollDocument() error = %v", err)
	}
	if len(doc.Chunks) != 2 {
		t.Errorf("chunks = %d, want 2", len(doc.Chunks))
	}

	if _, err := LoadBgScrollDocument(filepath.Join(tmpDir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestBgScrollTablesRoundTripThroughManager(t *testing.T) {
	doc, err := ParseBgScrollDocument([]byte(validBgScrollYAML))
	if err != nil {
		t.Fatalf("ParseBgScrollDocument() error = %v", err)
	}
	tables, err := doc.Tables()
	if err != nil {
		t.Fatalf("Tables() error = %v", err)
	}

	m := NewDataTableManager()
	tables.Register(m)
	if !m.HasDataTable(ChunkDataTableName) {
		t.Fatalf("chunk table not registered")
	}

	got, err := TablesFromManager(m)
	if err != nil {
		t.Fatalf("TablesFromManager() error = %v", err)
	}
	if got.Chunks.Len() != 2 || got.LevelThemes.Len() != 1 || got.RoadGenProfiles.Len() != 1 {
		t.Errorf("unexpected table sizes: chunks=%d levelThemes=%d profiles=%d",
			got.Chunks.Len(), got.LevelThemes.Len(), got.RoadGenProfiles.Len())
	}
}

func TestTablesFromManager_OptionalTables(t *testing.T) {
	m := NewDataTableManager()
	AddDataTable(m, NewDataTable[ChunkConfigRow](ChunkDataTableName))
	AddDataTable(m, NewDataTable[ThemeSegmentRow](ThemeSegmentDataTableName))
	AddDataTable(m, NewDataTable[LevelThemeRow](LevelThemeDataTableName))

	tables, err := TablesFromManager(m)
	if err != nil {
		t.Fatalf("TablesFromManager() error = %v", err)
	}
	if tables.Levels == nil || tables.Levels.Len() != 0 {
		t.Error("missing level table should become an empty table")
	}

	if _, err := TablesFromManager(NewDataTableManager()); err == nil {
		t.Error("expected error when chunk table is missing")
	}
}

func TestDocumentTables_DuplicateID(t *testing.T) {
	doc := &BgScrollDocument{
		Chunks: []ChunkConfigRow{
			{ID: 1, EntityRelativePath: "Bg/A"},
			{ID: 1, EntityRelativePath: "Bg/B"},
		},
	}
	if _, err := doc.Tables(); err == nil {
		t.Error("expected duplicate id error")
	}
}
