package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/chuyi0414/qlmt/pkg/app"
	"github.com/chuyi0414/qlmt/pkg/embedded"
)

func main() {
	verbose := flag.Bool("verbose", false, "启用详细日志输出")
	level := flag.Int("level", 0, "启动关卡 Id，0 表示配置中的第一个关卡")
	tracePath := flag.String("trace", "", "滚动事件 trace 文件前缀，如 traces/run")
	observerAddr := flag.String("observer", "", "快照观察服务地址，如 127.0.0.1:8787")
	ramp := flag.Float64("ramp", 1.5, "关卡开始时的加速时长（秒）")
	hideHUD := flag.Bool("no-hud", false, "隐藏调试信息")
	flag.Parse()

	embedded.Init(assetsFS, dataFS)

	gameApp, err := app.NewApp(app.Config{
		Verbose:      *verbose,
		Level:        *level,
		TracePath:    *tracePath,
		ObserverAddr: *observerAddr,
		RampDuration: *ramp,
		HideHUD:      *hideHUD,
	}, embedded.FS())
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化失败: %v\n", err)
		os.Exit(1)
	}
	defer gameApp.Close()

	ebiten.SetWindowSize(app.ScreenWidth, app.ScreenHeight)
	ebiten.SetWindowTitle("无尽背景滚动")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(gameApp); err != nil {
		log.Fatal(err)
	}
}
