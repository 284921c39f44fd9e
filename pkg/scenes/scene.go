// Package scenes 组装可运行的关卡场景
//
// LevelData 负责读取配置与资源目录，LevelScene 把滚动器、实体服务、
// 物资点生成器和渲染系统连接起来，供窗口程序与无窗口校验程序共用。
package scenes

import "github.com/chuyi0414/qlmt/pkg/game"

// Scene is a type alias for game.Scene.
type Scene = game.Scene

var (
	_ Scene       = (*LevelScene)(nil)
	_ game.Closer = (*LevelScene)(nil)
)
