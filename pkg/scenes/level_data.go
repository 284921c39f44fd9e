package scenes

import (
	"fmt"
	"io/fs"
	"log"

	"github.com/chuyi0414/qlmt/pkg/config"
	"github.com/chuyi0414/qlmt/pkg/game"
)

const (
	// BgScrollConfigPath 背景滚动配置（五张数据表 + 滚动参数）
	BgScrollConfigPath = "data/bgscroll/bgscroll.yaml"
	// AssetCatalogPath 背景块与物资点资源目录
	AssetCatalogPath = "data/bgscroll/assets.yaml"
)

// LevelData 所有关卡共享的只读数据
type LevelData struct {
	Scroll  config.ScrollConfig
	Tables  *config.BgScrollTables
	Catalog *game.AssetCatalog
	// FS 用于读取物资点图片，路径形如 "assets/markers/small.png"
	FS fs.FS
}

// LoadLevelData 从文件系统读取配置与资源目录
//
// 数据表会先注册到 DataTableManager 再取回，与运行时按表名查表的方式保持一致。
func LoadLevelData(fsys fs.FS) (*LevelData, error) {
	raw, err := fs.ReadFile(fsys, BgScrollConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", BgScrollConfigPath, err)
	}
	doc, err := config.ParseBgScrollDocument(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", BgScrollConfigPath, err)
	}
	tables, err := doc.Tables()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", BgScrollConfigPath, err)
	}

	manager := config.NewDataTableManager()
	tables.Register(manager)
	tables, err = config.TablesFromManager(manager)
	if err != nil {
		return nil, err
	}

	raw, err = fs.ReadFile(fsys, AssetCatalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", AssetCatalogPath, err)
	}
	catalog, err := game.ParseAssetCatalog(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", AssetCatalogPath, err)
	}

	data := &LevelData{Scroll: doc.Scroll, Tables: tables, Catalog: catalog, FS: fsys}
	data.checkAssets()
	log.Printf("[LevelData] Loaded %d chunks, %d levels, %d chunk assets",
		tables.Chunks.Len(), tables.LevelThemes.Len(), len(catalog.Chunks))
	return data, nil
}

// checkAssets 配置表引用了资源目录中不存在的资源时给出警告
// 这类背景块在运行时会显示失败
func (d *LevelData) checkAssets() {
	for _, row := range d.Tables.Chunks.All() {
		if _, ok := d.Catalog.Chunk(row.EntityRelativePath); !ok {
			log.Printf("[LevelData] Warning: chunk %d references unknown asset %s", row.ID, row.EntityRelativePath)
		}
	}
	for _, row := range d.Tables.RoadGenProfiles.All() {
		for _, path := range []string{row.SmallMarkerPath, row.BigMarkerPath} {
			if path == "" {
				continue
			}
			if _, ok := d.Catalog.Marker(path); !ok {
				log.Printf("[LevelData] Warning: road gen profile %d references unknown marker %s", row.ID, path)
			}
		}
	}
}

// LevelIDs 配置了主题序列的关卡，按 Id 升序
func (d *LevelData) LevelIDs() []int {
	return d.Tables.LevelThemes.IDs()
}
