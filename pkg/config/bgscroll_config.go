package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ScrollConfig 背景滚动参数
type ScrollConfig struct {
	EntityGroupName         string  `yaml:"entityGroupName"`         // 背景块实体组名称，默认 "Background"
	ScrollSpeed             float64 `yaml:"scrollSpeed"`             // 滚动速度（世界单位/秒），默认 1
	SpawnAhead              float64 `yaml:"spawnAhead"`              // 相机顶部之上的补块缓冲，默认 4
	RecycleBehind           float64 `yaml:"recycleBehind"`           // 相机底部之下的回收缓冲，默认 4
	MinAheadChunkCount      int     `yaml:"minAheadChunkCount"`      // 相机顶部之上至少保留的背景块数，默认 1
	MaxConsecutiveSameAsset int     `yaml:"maxConsecutiveSameAsset"` // 同一资源最大连续次数，0 表示不限制，默认 2
	LengthMismatchTolerance float64 `yaml:"lengthMismatchTolerance"` // 配置高度与实际高度允许误差，默认 0.05
	DefaultChunkLength      float64 `yaml:"defaultChunkLength"`      // 未配置高度时使用的逻辑高度，默认 10

	// 显式出现在 YAML 中的键，用于区分"未配置"与显式配置为 0
	explicit map[string]bool
}

// DefaultScrollConfig 返回默认滚动参数
func DefaultScrollConfig() ScrollConfig {
	cfg := ScrollConfig{}
	applyScrollDefaults(&cfg)
	return cfg
}

// UnmarshalYAML 记录哪些键被显式配置
func (c *ScrollConfig) UnmarshalYAML(value *yaml.Node) error {
	type plain ScrollConfig
	var raw plain
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*c = ScrollConfig(raw)
	c.explicit = make(map[string]bool, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		c.explicit[value.Content[i].Value] = true
	}
	return nil
}

// unset 键未显式配置且值为 0
func (c *ScrollConfig) unset(key string, zero bool) bool {
	return zero && !c.explicit[key]
}

// BgScrollDocument 背景滚动配置文档（单个 YAML 文件）
type BgScrollDocument struct {
	Scroll          ScrollConfig        `yaml:"scroll"`
	Chunks          []ChunkConfigRow    `yaml:"chunks"`
	ThemeSegments   []ThemeSegmentRow   `yaml:"themeSegments"`
	LevelThemes     []LevelThemeRow     `yaml:"levelThemes"`
	RoadGenProfiles []RoadGenProfileRow `yaml:"roadGenProfiles"`
	Levels          []LevelRow          `yaml:"levels"`
}

// BgScrollTables 背景系统使用的全部数据表
type BgScrollTables struct {
	Chunks          *DataTable[ChunkConfigRow]
	ThemeSegments   *DataTable[ThemeSegmentRow]
	LevelThemes     *DataTable[LevelThemeRow]
	RoadGenProfiles *DataTable[RoadGenProfileRow]
	Levels          *DataTable[LevelRow]
}

// LoadBgScrollDocument 从 YAML 文件加载背景滚动配置
// 参数：
//
//	filePath - 配置文件路径
//
// 返回：
//
//	*BgScrollDocument - 应用默认值并校验后的配置
//	error - 读取、Schema 校验、解析或字段校验失败时返回错误
func LoadBgScrollDocument(filePath string) (*BgScrollDocument, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read bg scroll config file %s: %w", filePath, err)
	}

	doc, err := ParseBgScrollDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	return doc, nil
}

// ParseBgScrollDocument 从 YAML 数据解析背景滚动配置
func ParseBgScrollDocument(data []byte) (*BgScrollDocument, error) {
	if err := ValidateBgScrollSchema(data); err != nil {
		return nil, err
	}

	var doc BgScrollDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse bg scroll config YAML: %w", err)
	}

	applyScrollDefaults(&doc.Scroll)

	if err := validateBgScrollDocument(&doc); err != nil {
		return nil, fmt.Errorf("invalid bg scroll config: %w", err)
	}
	return &doc, nil
}

// applyScrollDefaults 为未配置的滚动参数设置默认值
// 显式配置为 0 的参数保持为 0（如 scrollSpeed: 0 表示静止开局）
func applyScrollDefaults(cfg *ScrollConfig) {
	if cfg.EntityGroupName == "" {
		cfg.EntityGroupName = "Background"
	}
	if cfg.unset("scrollSpeed", cfg.ScrollSpeed == 0) {
		cfg.ScrollSpeed = 1
	}
	if cfg.unset("spawnAhead", cfg.SpawnAhead == 0) {
		cfg.SpawnAhead = 4
	}
	if cfg.unset("recycleBehind", cfg.RecycleBehind == 0) {
		cfg.RecycleBehind = 4
	}
	if cfg.unset("minAheadChunkCount", cfg.MinAheadChunkCount == 0) {
		cfg.MinAheadChunkCount = 1
	}
	if cfg.unset("maxConsecutiveSameAsset", cfg.MaxConsecutiveSameAsset == 0) {
		cfg.MaxConsecutiveSameAsset = 2
	}
	if cfg.unset("lengthMismatchTolerance", cfg.LengthMismatchTolerance == 0) {
		cfg.LengthMismatchTolerance = 0.05
	}
	if cfg.DefaultChunkLength == 0 {
		cfg.DefaultChunkLength = 10
	}
}

// validateBgScrollDocument 校验配置文档
func validateBgScrollDocument(doc *BgScrollDocument) error {
	s := doc.Scroll
	if s.ScrollSpeed < 0 {
		return fmt.Errorf("scroll.scrollSpeed must be >= 0, got %g", s.ScrollSpeed)
	}
	if s.SpawnAhead < 0 || s.RecycleBehind < 0 {
		return fmt.Errorf("scroll.spawnAhead and scroll.recycleBehind must be >= 0")
	}
	if s.MinAheadChunkCount < 0 {
		return fmt.Errorf("scroll.minAheadChunkCount must be >= 0, got %d", s.MinAheadChunkCount)
	}
	if s.MaxConsecutiveSameAsset < 0 {
		return fmt.Errorf("scroll.maxConsecutiveSameAsset must be >= 0, got %d", s.MaxConsecutiveSameAsset)
	}
	if s.DefaultChunkLength <= 0 {
		return fmt.Errorf("scroll.defaultChunkLength must be > 0, got %g", s.DefaultChunkLength)
	}

	if len(doc.Chunks) == 0 {
		return fmt.Errorf("at least one chunk is required")
	}
	for i, c := range doc.Chunks {
		if c.ID <= 0 {
			return fmt.Errorf("chunks[%d]: id must be > 0", i)
		}
		if c.Weight < 0 {
			return fmt.Errorf("chunk %d: weight must be >= 0, got %g", c.ID, c.Weight)
		}
		if c.ChunkLength < 0 {
			return fmt.Errorf("chunk %d: chunkLength must be >= 0, got %g", c.ID, c.ChunkLength)
		}
	}

	for _, g := range doc.ThemeSegments {
		if len(g.Segments) == 0 {
			return fmt.Errorf("theme group %d: segments cannot be empty", g.ID)
		}
		for j, seg := range g.Segments {
			if seg.ThemeTag == "" || seg.ChunkCount <= 0 {
				return fmt.Errorf("theme group %d: invalid segment %d", g.ID, j)
			}
		}
	}

	for _, lt := range doc.LevelThemes {
		if len(lt.ThemeGroupIDs) == 0 {
			return fmt.Errorf("level theme %d: themeGroupIds cannot be empty", lt.ID)
		}
	}

	for _, p := range doc.RoadGenProfiles {
		if err := ValidateRoadGenProfile(p); err != nil {
			return err
		}
	}
	return nil
}

// Tables 将配置文档转换为数据表
func (doc *BgScrollDocument) Tables() (*BgScrollTables, error) {
	tables := &BgScrollTables{
		Chunks:          NewDataTable[ChunkConfigRow](ChunkDataTableName),
		ThemeSegments:   NewDataTable[ThemeSegmentRow](ThemeSegmentDataTableName),
		LevelThemes:     NewDataTable[LevelThemeRow](LevelThemeDataTableName),
		RoadGenProfiles: NewDataTable[RoadGenProfileRow](RoadGenProfileDataTableName),
		Levels:          NewDataTable[LevelRow](LevelDataTableName),
	}

	for _, row := range doc.Chunks {
		if err := tables.Chunks.Add(row); err != nil {
			return nil, err
		}
	}
	for _, row := range doc.ThemeSegments {
		if err := tables.ThemeSegments.Add(row); err != nil {
			return nil, err
		}
	}
	for _, row := range doc.LevelThemes {
		if err := tables.LevelThemes.Add(row); err != nil {
			return nil, err
		}
	}
	for _, row := range doc.RoadGenProfiles {
		if err := tables.RoadGenProfiles.Add(row); err != nil {
			return nil, err
		}
	}
	for _, row := range doc.Levels {
		if err := tables.Levels.Add(row); err != nil {
			return nil, err
		}
	}
	return tables, nil
}

// Register 将全部数据表注册到数据表中心
func (t *BgScrollTables) Register(m *DataTableManager) {
	AddDataTable(m, t.Chunks)
	AddDataTable(m, t.ThemeSegments)
	AddDataTable(m, t.LevelThemes)
	AddDataTable(m, t.RoadGenProfiles)
	AddDataTable(m, t.Levels)
}

// TablesFromManager 从数据表中心取回背景系统数据表
// 关卡表与道路生成表是可选的，缺失时为空表
func TablesFromManager(m *DataTableManager) (*BgScrollTables, error) {
	chunks, ok := GetDataTable[ChunkConfigRow](m, ChunkDataTableName)
	if !ok {
		return nil, fmt.Errorf("data table %s not found", ChunkDataTableName)
	}
	segments, ok := GetDataTable[ThemeSegmentRow](m, ThemeSegmentDataTableName)
	if !ok {
		return nil, fmt.Errorf("data table %s not found", ThemeSegmentDataTableName)
	}
	levelThemes, ok := GetDataTable[LevelThemeRow](m, LevelThemeDataTableName)
	if !ok {
		return nil, fmt.Errorf("data table %s not found", LevelThemeDataTableName)
	}

	profiles, ok := GetDataTable[RoadGenProfileRow](m, RoadGenProfileDataTableName)
	if !ok {
		profiles = NewDataTable[RoadGenProfileRow](RoadGenProfileDataTableName)
	}
	levels, ok := GetDataTable[LevelRow](m, LevelDataTableName)
	if !ok {
		levels = NewDataTable[LevelRow](LevelDataTableName)
	}

	return &BgScrollTables{
		Chunks:          chunks,
		ThemeSegments:   segments,
		LevelThemes:     levelThemes,
		RoadGenProfiles: profiles,
		Levels:          levels,
	}, nil
}
