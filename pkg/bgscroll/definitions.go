package bgscroll

import (
	"fmt"
	"math"
	"strings"

	"github.com/chuyi0414/qlmt/pkg/config"
)

// minChunkLength 背景块逻辑高度下限，避免零高度导致补块死循环
const minChunkLength = 0.01

// ChunkDefinition 背景块静态配置
type ChunkDefinition struct {
	ID              int
	EntityPath      string   // 实体资源路径
	ThemeTag        string   // 为空表示通用背景块
	Weight          float64  // 随机权重
	Length          float64  // 逻辑高度（世界单位）
	CanFollowThemes []string // 允许跟随的前一主题，为空不限制
}

// Usable 资源路径为空白的配置不参与挑选
func (d ChunkDefinition) Usable() bool {
	return strings.TrimSpace(d.EntityPath) != ""
}

// CompatibleWith 检查背景块是否可以出现在指定主题下
// 当前主题为空或背景块为通用块时总是兼容
func (d ChunkDefinition) CompatibleWith(currentTheme string) bool {
	if currentTheme == "" || d.ThemeTag == "" {
		return true
	}
	return strings.EqualFold(d.ThemeTag, currentTheme)
}

// CanFollow 检查背景块是否允许跟随在前一主题之后
func (d ChunkDefinition) CanFollow(previousTheme string) bool {
	if len(d.CanFollowThemes) == 0 {
		return true
	}
	for _, allow := range d.CanFollowThemes {
		if strings.TrimSpace(allow) == "" {
			continue
		}
		if allow == config.FollowWildcard {
			return true
		}
		if strings.EqualFold(allow, previousTheme) {
			return true
		}
	}
	return false
}

// ThemeSegment 主题片段
// Budget 为该主题持续的预算，滚动器按每生成一个背景块消耗 1 计算
type ThemeSegment struct {
	ThemeTag string
	Budget   float64
}

// LevelPlan 单个关卡的背景配置
type LevelPlan struct {
	LevelID     int
	Definitions []ChunkDefinition
	Segments    []ThemeSegment
	Loop        bool
}

// HasUsableDefinition 是否至少存在一个可用背景块
func (p *LevelPlan) HasUsableDefinition() bool {
	if p == nil {
		return false
	}
	for _, d := range p.Definitions {
		if d.Usable() {
			return true
		}
	}
	return false
}

// DefinitionFromRow 将配置行转换为背景块定义
// 未配置高度时使用 defaultLength
func DefinitionFromRow(row config.ChunkConfigRow, defaultLength float64) ChunkDefinition {
	length := row.ChunkLength
	if length <= 0 {
		length = defaultLength
	}
	follow := make([]string, 0, len(row.CanFollowThemes))
	for _, theme := range row.CanFollowThemes {
		if theme = strings.TrimSpace(theme); theme != "" {
			follow = append(follow, theme)
		}
	}
	if len(follow) == 0 {
		follow = nil
	}
	return ChunkDefinition{
		ID:              row.ID,
		EntityPath:      strings.TrimSpace(row.EntityRelativePath),
		ThemeTag:        strings.TrimSpace(row.ThemeTag),
		Weight:          row.Weight,
		Length:          math.Max(minChunkLength, length),
		CanFollowThemes: follow,
	}
}

// BuildLevelPlan 从数据表构建关卡背景配置
//
// 流程：
//  1. 读取全部背景块配置行
//  2. 查找关卡主题映射行
//  3. 按顺序展开关卡引用的主题组，校验每个片段
//
// 任何一步失败都返回包装了 ErrConfig 的错误。
func BuildLevelPlan(tables *config.BgScrollTables, levelID int, defaultLength float64) (*LevelPlan, error) {
	if levelID <= 0 {
		return nil, fmt.Errorf("%w: invalid level id %d", ErrConfig, levelID)
	}
	if tables == nil || tables.Chunks == nil || tables.ThemeSegments == nil || tables.LevelThemes == nil {
		return nil, fmt.Errorf("%w: bg scroll data tables are not loaded", ErrConfig)
	}
	if tables.Chunks.Len() == 0 {
		return nil, fmt.Errorf("%w: data table %s is empty", ErrConfig, tables.Chunks.Name())
	}
	if defaultLength <= 0 {
		defaultLength = config.DefaultScrollConfig().DefaultChunkLength
	}

	levelTheme, ok := tables.LevelThemes.Get(levelID)
	if !ok {
		return nil, fmt.Errorf("%w: level %d has no theme group sequence", ErrConfig, levelID)
	}
	if len(levelTheme.ThemeGroupIDs) == 0 {
		return nil, fmt.Errorf("%w: level %d theme group ids are empty", ErrConfig, levelID)
	}

	plan := &LevelPlan{
		LevelID: levelID,
		Loop:    levelTheme.LoopThemeSegments,
	}
	for _, row := range tables.Chunks.All() {
		plan.Definitions = append(plan.Definitions, DefinitionFromRow(row, defaultLength))
	}

	for _, groupID := range levelTheme.ThemeGroupIDs {
		group, ok := tables.ThemeSegments.Get(groupID)
		if !ok {
			return nil, fmt.Errorf("%w: level %d references missing theme group %d", ErrConfig, levelID, groupID)
		}
		if len(group.Segments) == 0 {
			return nil, fmt.Errorf("%w: level %d theme group %d has no segments", ErrConfig, levelID, groupID)
		}
		for i, seg := range group.Segments {
			if strings.TrimSpace(seg.ThemeTag) == "" || seg.ChunkCount <= 0 {
				return nil, fmt.Errorf("%w: level %d theme group %d has invalid segment %d", ErrConfig, levelID, groupID, i)
			}
			plan.Segments = append(plan.Segments, ThemeSegment{
				ThemeTag: strings.TrimSpace(seg.ThemeTag),
				Budget:   float64(seg.ChunkCount),
			})
		}
	}

	if !plan.HasUsableDefinition() {
		return nil, fmt.Errorf("%w: level %d has no usable chunk definition", ErrConfig, levelID)
	}
	return plan, nil
}
