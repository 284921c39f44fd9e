package bgscroll

import "errors"

var (
	// ErrConfig 背景块或主题配置缺失、非法
	ErrConfig = errors.New("bgscroll: invalid configuration")
	// ErrNotInitialized 尚未成功调用 Initialize
	ErrNotInitialized = errors.New("bgscroll: scroller not initialized")
	// ErrSelectionExhausted 即使放宽全部约束也没有可用背景块
	ErrSelectionExhausted = errors.New("bgscroll: no chunk definition available")
	// ErrIDExhausted 实体 Id 分配失败
	ErrIDExhausted = errors.New("bgscroll: entity id exhausted")
	// ErrCompleted 非循环主题序列已结束
	ErrCompleted = errors.New("bgscroll: scroll completed")
	// ErrTerminationAborted 最后一块显示失败，需 Clear 后重新开始
	ErrTerminationAborted = errors.New("bgscroll: final chunk failed to show")
)
