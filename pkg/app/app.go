// Package app 提供背景滚动演示程序的 ebiten.Game 包装
//
// 该包把关卡数据加载、场景切换和调试观察服务从 main 包中提取出来。
// main.go 负责解析命令行参数并调用 NewApp()。
package app

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"io/fs"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/chuyi0414/qlmt/pkg/game"
	"github.com/chuyi0414/qlmt/pkg/observer"
	"github.com/chuyi0414/qlmt/pkg/scenes"
	"github.com/chuyi0414/qlmt/pkg/utils"
)

const (
	// ScreenWidth 逻辑屏幕宽度（竖屏）
	ScreenWidth = 540
	// ScreenHeight 逻辑屏幕高度
	ScreenHeight = 960

	speedStep = 0.5
)

// digitKeys 数字键 1-9 对应关卡 1-9
var digitKeys = []ebiten.Key{
	ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4, ebiten.Key5,
	ebiten.Key6, ebiten.Key7, ebiten.Key8, ebiten.Key9,
}

// Config 定义应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
	// Level 启动关卡，0 表示使用配置中 Id 最小的关卡
	Level int
	// TracePath 非空时把每个关卡的滚动事件写入 trace 文件
	TracePath string
	// ObserverAddr 非空时在该地址提供快照观察服务，如 "127.0.0.1:8787"
	ObserverAddr string
	// RampDuration 关卡开始时的加速时长（秒）
	RampDuration float64
	// HideHUD 隐藏左上角调试信息
	HideHUD bool
}

// App 实现 ebiten.Game 接口
type App struct {
	sceneManager *game.SceneManager
	data         *scenes.LevelData
	hub          *observer.Hub
	cancel       context.CancelFunc
	verbose      bool
}

// NewApp 加载关卡数据并进入启动关卡
//
// fsys 需要同时包含 "data/" 与 "assets/" 两个前缀，通常传入 embedded.FS()。
func NewApp(cfg Config, fsys fs.FS) (*App, error) {
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	data, err := scenes.LoadLevelData(fsys)
	if err != nil {
		return nil, fmt.Errorf("关卡数据加载失败: %w", err)
	}
	levels := data.LevelIDs()
	if len(levels) == 0 {
		return nil, fmt.Errorf("没有配置任何关卡")
	}

	a := &App{
		sceneManager: game.NewSceneManager(),
		data:         data,
		verbose:      cfg.Verbose,
	}

	if cfg.ObserverAddr != "" {
		ctx, cancel := context.WithCancel(context.Background())
		a.hub = observer.NewHub()
		a.cancel = cancel
		go func() {
			if err := observer.Serve(ctx, cfg.ObserverAddr, a.hub); err != nil {
				log.Printf("[App] ERROR: observer stopped: %v", err)
			}
		}()
	}

	a.sceneManager.SetSceneFactory(func(levelID int) (game.Scene, error) {
		opts := scenes.LevelOptions{
			ScreenWidth:  ScreenWidth,
			ScreenHeight: ScreenHeight,
			RampDuration: cfg.RampDuration,
			ShowHUD:      !cfg.HideHUD,
		}
		if cfg.TracePath != "" {
			opts.TracePath = fmt.Sprintf("%s.level%d.jsonl.zst", cfg.TracePath, levelID)
		}
		if a.hub != nil {
			opts.Publisher = a.hub
			opts.PublishEvery = 2
		}
		return scenes.NewLevelScene(data, levelID, opts)
	})

	start := cfg.Level
	if start == 0 {
		start = levels[0]
	}
	log.Printf("[App] Starting level: %d", start)
	if !a.sceneManager.LoadLevel(start) {
		a.Close()
		return nil, fmt.Errorf("关卡 %d 启动失败", start)
	}
	return a, nil
}

// Update 更新游戏逻辑
// 每个 tick 调用一次（通常每秒 60 次）
func (a *App) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		ebiten.SetFullscreen(!ebiten.IsFullscreen())
	}

	for i, key := range digitKeys {
		if inpututil.IsKeyJustPressed(key) && i+1 != a.sceneManager.CurrentLevel() {
			a.sceneManager.LoadLevel(i + 1)
		}
	}

	if scene, ok := a.sceneManager.GetCurrentScene().(*scenes.LevelScene); ok {
		tapped, x, y := utils.IsJustTouchedOrClicked()
		switch {
		case tapped:
			scene.Inspect(x, y)
		case inpututil.IsKeyJustPressed(ebiten.KeySpace):
			scene.TogglePause()
		case inpututil.IsKeyJustPressed(ebiten.KeyArrowUp):
			scene.AdjustSpeed(speedStep)
		case inpututil.IsKeyJustPressed(ebiten.KeyArrowDown):
			scene.AdjustSpeed(-speedStep)
		case inpututil.IsKeyJustPressed(ebiten.KeyR):
			a.sceneManager.LoadLevel(scene.LevelID())
		}
	}

	deltaTime := 1.0 / float64(ebiten.TPS())
	a.sceneManager.Update(deltaTime)
	return nil
}

// Draw 绘制游戏画面
func (a *App) Draw(screen *ebiten.Image) {
	a.sceneManager.Draw(screen)
}

// DrawFinalScreen 全屏时用黑边填充并线性缩放
func (a *App) DrawFinalScreen(screen ebiten.FinalScreen, offscreen *ebiten.Image, geoM ebiten.GeoM) {
	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(offscreen, op)
}

// Layout 返回游戏的逻辑屏幕尺寸
// 此尺寸独立于实际窗口大小，Ebitengine 会自动处理缩放
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ScreenWidth, ScreenHeight
}

// GetSceneManager 返回场景管理器
func (a *App) GetSceneManager() *game.SceneManager {
	return a.sceneManager
}

// IsVerbose 返回是否启用了详细日志
func (a *App) IsVerbose() bool {
	return a.verbose
}

// Close 关闭当前关卡与观察服务
func (a *App) Close() {
	a.sceneManager.SwitchTo(nil)
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
}
