package config

import (
	"fmt"
	"strconv"
	"strings"
)

// 数据表名称（与 LoadProcedure 中注册的名称保持一致）
const (
	ChunkDataTableName          = "BgScroll/BgChunkConfig"
	ThemeSegmentDataTableName   = "BgScroll/BgThemeSegmentConfig"
	LevelThemeDataTableName     = "BgScroll/BgLevelThemeConfig"
	RoadGenProfileDataTableName = "BgScroll/BgRoadGenProfile"
	LevelDataTableName          = "Level/Level"
)

// FollowWildcard 允许跟随任意主题
const FollowWildcard = "*"

// ChunkConfigRow 背景块配置行
type ChunkConfigRow struct {
	ID                 int      `yaml:"id"`              // 配置主键
	EntityRelativePath string   `yaml:"entityPath"`      // 实体相对路径，如 "Bg/Chunk_Forest_01"
	ThemeTag           string   `yaml:"themeTag"`        // 主题标签，为空表示通用背景块
	Weight             float64  `yaml:"weight"`          // 随机权重（>=0）
	CanFollowThemes    []string `yaml:"canFollowThemes"` // 允许跟随的前一主题，为空不限制，"*" 表示任意
	ChunkLength        float64  `yaml:"chunkLength"`     // 逻辑高度（世界单位），0 表示使用默认值
}

// RowID 实现 DataRow
func (r ChunkConfigRow) RowID() int { return r.ID }

// ThemeChunkSegment 主题片段：某主题持续的背景块数量
type ThemeChunkSegment struct {
	ThemeTag   string `yaml:"themeTag"`
	ChunkCount int    `yaml:"chunkCount"`
}

// ThemeSegmentRow 主题组配置行
type ThemeSegmentRow struct {
	ID       int                 `yaml:"id"`       // 主题组 ID
	Segments []ThemeChunkSegment `yaml:"segments"` // 按顺序排列的主题片段
}

// RowID 实现 DataRow
func (r ThemeSegmentRow) RowID() int { return r.ID }

// LevelThemeRow 关卡主题映射行
type LevelThemeRow struct {
	ID                int   `yaml:"id"`                // 关卡 ID
	ThemeGroupIDs     []int `yaml:"themeGroupIds"`     // 依次展开的主题组
	LoopThemeSegments bool  `yaml:"loopThemeSegments"` // 主题序列是否循环
}

// RowID 实现 DataRow
func (r LevelThemeRow) RowID() int { return r.ID }

// RoadGenProfileRow 背景道路侧边物资点生成配置行
type RoadGenProfileRow struct {
	ID                      int     `yaml:"id"`
	Seed                    int     `yaml:"seed"`                    // 固定随机种子
	PerlinFrequency         float64 `yaml:"perlinFrequency"`         // Perlin 频率（>0）
	RoadHalfWidth           float64 `yaml:"roadHalfWidth"`           // 道路半宽（>0）
	SpawnEdgePaddingX       float64 `yaml:"spawnEdgePaddingX"`       // 生成区域左右留白
	NoneWeight              float64 `yaml:"noneWeight"`              // 不生成权重
	SmallWeight             float64 `yaml:"smallWeight"`             // 小物资点权重
	BigWeight               float64 `yaml:"bigWeight"`               // 大物资点权重
	MinSpawnGapY            float64 `yaml:"minSpawnGapY"`            // 最小纵向间距（>0）
	MaxSpawnGapY            float64 `yaml:"maxSpawnGapY"`            // 最大纵向间距（>=最小间距）
	MaxPointsPerBg          int     `yaml:"maxPointsPerBg"`          // 单个背景块最大点位数
	MinInBlockPointDistance float64 `yaml:"minInBlockPointDistance"` // 点位之间额外的最小间距
	RoadCenterOffsetX       float64 `yaml:"roadCenterOffsetX"`       // 道路中心相对相机中心的 X 偏移
	SmallMarkerPath         string  `yaml:"smallMarkerPath"`
	BigMarkerPath           string  `yaml:"bigMarkerPath"`
	FallbackAvoidRadius     float64 `yaml:"fallbackAvoidRadius"` // 占位尺寸无法测量时的兜底半径，0 表示使用默认值
}

// RowID 实现 DataRow
func (r RoadGenProfileRow) RowID() int { return r.ID }

// LevelRow 关卡配置行（仅包含背景系统关心的列）
type LevelRow struct {
	ID                 int  `yaml:"id"`
	UseNoiseSidePoints bool `yaml:"useNoiseSidePoints"` // 是否启用噪点侧边物资点
	RoadGenProfileID   int  `yaml:"roadGenProfileId"`
}

// RowID 实现 DataRow
func (r LevelRow) RowID() int { return r.ID }

// splitColumns 按制表符切分数据行并校验列数范围
func splitColumns(line string, minCols, maxCols int) ([]string, error) {
	if strings.TrimSpace(line) == "" {
		return nil, fmt.Errorf("empty data row")
	}
	columns := strings.Split(strings.TrimRight(line, "\r\n"), "\t")
	if len(columns) < minCols || len(columns) > maxCols {
		if minCols == maxCols {
			return nil, fmt.Errorf("column count mismatch: expected %d, got %d", minCols, len(columns))
		}
		return nil, fmt.Errorf("column count mismatch: expected %d-%d, got %d", minCols, maxCols, len(columns))
	}
	return columns, nil
}

func parseRowID(raw string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	if id <= 0 {
		return 0, fmt.Errorf("id must be > 0, got %d", id)
	}
	return id, nil
}

func parseFloatColumn(name, raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return v, nil
}

func parseIntColumn(name, raw string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return v, nil
}

func parseFlagColumn(name, raw string) (bool, error) {
	v, err := parseIntColumn(name, raw)
	if err != nil {
		return false, err
	}
	if v != 0 && v != 1 {
		return false, fmt.Errorf("%s only supports 0/1, got %d", name, v)
	}
	return v == 1, nil
}

// ParseFollowThemes 解析 "A|B|C" 形式的跟随主题列表
// 空白项会被忽略，全部为空时返回 nil（表示不限制）
func ParseFollowThemes(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var result []string
	for _, item := range strings.Split(raw, "|") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		result = append(result, item)
	}
	return result
}

// ParseChunkConfigRow 解析背景块配置行
//
// 列：Id, EntityRelativePath, ThemeTag, Weight, CanFollowThemes[, ChunkLength]
func ParseChunkConfigRow(line string) (ChunkConfigRow, error) {
	var row ChunkConfigRow
	columns, err := splitColumns(line, 5, 6)
	if err != nil {
		return row, err
	}

	id, err := parseRowID(columns[0])
	if err != nil {
		return row, err
	}

	path := strings.TrimSpace(columns[1])
	if path == "" {
		return row, fmt.Errorf("chunk %d: entity path is empty", id)
	}

	weight, err := parseFloatColumn("weight", columns[3])
	if err != nil {
		return row, fmt.Errorf("chunk %d: %w", id, err)
	}
	if weight < 0 {
		return row, fmt.Errorf("chunk %d: weight must be >= 0, got %g", id, weight)
	}

	row.ID = id
	row.EntityRelativePath = path
	row.ThemeTag = strings.TrimSpace(columns[2])
	row.Weight = weight
	row.CanFollowThemes = ParseFollowThemes(columns[4])

	if len(columns) == 6 && strings.TrimSpace(columns[5]) != "" {
		length, err := parseFloatColumn("chunk length", columns[5])
		if err != nil {
			return row, fmt.Errorf("chunk %d: %w", id, err)
		}
		if length <= 0 {
			return row, fmt.Errorf("chunk %d: chunk length must be > 0, got %g", id, length)
		}
		row.ChunkLength = length
	}
	return row, nil
}

// ParseThemeSegments 解析 "Tag|Count,Tag|Count" 形式的主题片段
// 支持全角逗号作为分隔符
func ParseThemeSegments(raw string) ([]ThemeChunkSegment, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("theme segments are empty")
	}

	normalized := strings.ReplaceAll(raw, "，", ",")
	parts := strings.Split(normalized, ",")
	segments := make([]ThemeChunkSegment, 0, len(parts))
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("segment %d is empty", i+1)
		}

		pair := strings.Split(part, "|")
		if len(pair) != 2 {
			return nil, fmt.Errorf("segment %d must be ThemeTag|ChunkCount, got %q", i+1, part)
		}

		tag := strings.TrimSpace(pair[0])
		if tag == "" {
			return nil, fmt.Errorf("segment %d has empty theme tag", i+1)
		}

		count, err := strconv.Atoi(strings.TrimSpace(pair[1]))
		if err != nil {
			return nil, fmt.Errorf("segment %d has invalid chunk count %q", i+1, pair[1])
		}
		if count <= 0 {
			return nil, fmt.Errorf("segment %d chunk count must be > 0, got %d", i+1, count)
		}

		segments = append(segments, ThemeChunkSegment{ThemeTag: tag, ChunkCount: count})
	}
	return segments, nil
}

// ParseThemeSegmentRow 解析主题组配置行
//
// 列：Id, Segments
func ParseThemeSegmentRow(line string) (ThemeSegmentRow, error) {
	var row ThemeSegmentRow
	columns, err := splitColumns(line, 2, 2)
	if err != nil {
		return row, err
	}

	id, err := parseRowID(columns[0])
	if err != nil {
		return row, err
	}

	segments, err := ParseThemeSegments(columns[1])
	if err != nil {
		return row, fmt.Errorf("theme group %d: %w", id, err)
	}

	row.ID = id
	row.Segments = segments
	return row, nil
}

// ParseLevelThemeRow 解析关卡主题映射行
//
// 列：Id, ThemeGroupIds("1|2"), LoopThemeSegments(0/1)
func ParseLevelThemeRow(line string) (LevelThemeRow, error) {
	var row LevelThemeRow
	columns, err := splitColumns(line, 3, 3)
	if err != nil {
		return row, err
	}

	id, err := parseRowID(columns[0])
	if err != nil {
		return row, err
	}

	if strings.TrimSpace(columns[1]) == "" {
		return row, fmt.Errorf("level theme %d: theme group ids are empty", id)
	}
	var groupIDs []int
	for _, item := range strings.Split(columns[1], "|") {
		groupID, err := parseRowID(item)
		if err != nil {
			return row, fmt.Errorf("level theme %d: theme group id: %w", id, err)
		}
		groupIDs = append(groupIDs, groupID)
	}

	loop, err := parseFlagColumn("loopThemeSegments", columns[2])
	if err != nil {
		return row, fmt.Errorf("level theme %d: %w", id, err)
	}

	row.ID = id
	row.ThemeGroupIDs = groupIDs
	row.LoopThemeSegments = loop
	return row, nil
}

// ParseRoadGenProfileRow 解析道路生成配置行
//
// 列：Id, Seed, PerlinFrequency, RoadHalfWidth, SpawnEdgePaddingX, NoneWeight, SmallWeight,
// BigWeight, MinSpawnGapY, MaxSpawnGapY, MaxPointsPerBg, MinInBlockPointDistance,
// RoadCenterOffsetX, SmallMarkerPath, BigMarkerPath[, FallbackAvoidRadius]
func ParseRoadGenProfileRow(line string) (RoadGenProfileRow, error) {
	var row RoadGenProfileRow
	columns, err := splitColumns(line, 15, 16)
	if err != nil {
		return row, err
	}

	if row.ID, err = parseRowID(columns[0]); err != nil {
		return row, err
	}
	if row.Seed, err = parseIntColumn("seed", columns[1]); err != nil {
		return row, err
	}

	floats := []struct {
		name string
		dst  *float64
		col  int
	}{
		{"perlinFrequency", &row.PerlinFrequency, 2},
		{"roadHalfWidth", &row.RoadHalfWidth, 3},
		{"spawnEdgePaddingX", &row.SpawnEdgePaddingX, 4},
		{"noneWeight", &row.NoneWeight, 5},
		{"smallWeight", &row.SmallWeight, 6},
		{"bigWeight", &row.BigWeight, 7},
		{"minSpawnGapY", &row.MinSpawnGapY, 8},
		{"maxSpawnGapY", &row.MaxSpawnGapY, 9},
		{"minInBlockPointDistance", &row.MinInBlockPointDistance, 11},
		{"roadCenterOffsetX", &row.RoadCenterOffsetX, 12},
	}
	for _, f := range floats {
		if *f.dst, err = parseFloatColumn(f.name, columns[f.col]); err != nil {
			return row, fmt.Errorf("road gen profile %d: %w", row.ID, err)
		}
	}
	if row.MaxPointsPerBg, err = parseIntColumn("maxPointsPerBg", columns[10]); err != nil {
		return row, fmt.Errorf("road gen profile %d: %w", row.ID, err)
	}
	row.SmallMarkerPath = strings.TrimSpace(columns[13])
	row.BigMarkerPath = strings.TrimSpace(columns[14])
	if len(columns) == 16 && strings.TrimSpace(columns[15]) != "" {
		if row.FallbackAvoidRadius, err = parseFloatColumn("fallbackAvoidRadius", columns[15]); err != nil {
			return row, fmt.Errorf("road gen profile %d: %w", row.ID, err)
		}
	}

	if err := ValidateRoadGenProfile(row); err != nil {
		return row, err
	}
	return row, nil
}

// ValidateRoadGenProfile 校验道路生成配置的取值范围
func ValidateRoadGenProfile(row RoadGenProfileRow) error {
	switch {
	case row.PerlinFrequency <= 0:
		return fmt.Errorf("road gen profile %d: perlinFrequency must be > 0", row.ID)
	case row.RoadHalfWidth <= 0:
		return fmt.Errorf("road gen profile %d: roadHalfWidth must be > 0", row.ID)
	case row.SpawnEdgePaddingX < 0:
		return fmt.Errorf("road gen profile %d: spawnEdgePaddingX must be >= 0", row.ID)
	case row.NoneWeight < 0 || row.SmallWeight < 0 || row.BigWeight < 0:
		return fmt.Errorf("road gen profile %d: point weights must be >= 0", row.ID)
	case row.MinSpawnGapY <= 0:
		return fmt.Errorf("road gen profile %d: minSpawnGapY must be > 0", row.ID)
	case row.MaxSpawnGapY < row.MinSpawnGapY:
		return fmt.Errorf("road gen profile %d: maxSpawnGapY must be >= minSpawnGapY", row.ID)
	case row.MaxPointsPerBg < 0:
		return fmt.Errorf("road gen profile %d: maxPointsPerBg must be >= 0", row.ID)
	case row.MinInBlockPointDistance < 0:
		return fmt.Errorf("road gen profile %d: minInBlockPointDistance must be >= 0", row.ID)
	case row.FallbackAvoidRadius < 0:
		return fmt.Errorf("road gen profile %d: fallbackAvoidRadius must be >= 0", row.ID)
	}
	return nil
}

// ParseLevelRow 解析关卡行
//
// 列：Id, UseNoiseSidePoints(0/1), RoadGenProfileId
func ParseLevelRow(line string) (LevelRow, error) {
	var row LevelRow
	columns, err := splitColumns(line, 3, 3)
	if err != nil {
		return row, err
	}

	if row.ID, err = parseRowID(columns[0]); err != nil {
		return row, err
	}
	if row.UseNoiseSidePoints, err = parseFlagColumn("useNoiseSidePoints", columns[1]); err != nil {
		return row, fmt.Errorf("level %d: %w", row.ID, err)
	}
	if row.RoadGenProfileID, err = parseIntColumn("roadGenProfileId", columns[2]); err != nil {
		return row, fmt.Errorf("level %d: %w", row.ID, err)
	}
	return row, nil
}

// LoadDataTableTSV 将制表符分隔的文本解析为数据表
//
// 空行与以 '#' 开头的注释行会被跳过；首个解析失败的行会终止加载。
func LoadDataTableTSV[T DataRow](name string, text string, parse func(string) (T, error)) (*DataTable[T], error) {
	table := NewDataTable[T](name)
	for lineNo, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		row, err := parse(line)
		if err != nil {
			return nil, fmt.Errorf("data table %s line %d: %w", name, lineNo+1, err)
		}
		if err := table.Add(row); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo+1, err)
		}
	}
	return table, nil
}
