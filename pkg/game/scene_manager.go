package game

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2"
)

// SceneFactory 场景工厂函数类型
// 用于创建指定关卡的场景，避免循环依赖
type SceneFactory func(levelID int) (Scene, error)

// SceneManager manages which scene is active.
// It ensures only one scene's Update and Draw methods are called at any given time.
type SceneManager struct {
	currentScene Scene
	currentLevel int
	sceneFactory SceneFactory
}

// NewSceneManager creates and returns a new SceneManager instance.
// The manager starts with no active scene; use LoadLevel or SwitchTo to set one.
func NewSceneManager() *SceneManager {
	return &SceneManager{}
}

// SetSceneFactory 设置场景工厂函数
func (sm *SceneManager) SetSceneFactory(factory SceneFactory) {
	sm.sceneFactory = factory
}

// SwitchTo changes the active scene, closing the previous one if it implements Closer.
func (sm *SceneManager) SwitchTo(scene Scene) {
	if closer, ok := sm.currentScene.(Closer); ok {
		if err := closer.Close(); err != nil {
			log.Printf("[SceneManager] Warning: failed to close scene: %v", err)
		}
	}
	sm.currentScene = scene
}

// GetCurrentScene 返回当前活动的场景，没有时返回 nil
func (sm *SceneManager) GetCurrentScene() Scene {
	return sm.currentScene
}

// CurrentLevel 当前关卡 ID，未加载时为 0
func (sm *SceneManager) CurrentLevel() int {
	return sm.currentLevel
}

// LoadLevel 加载指定关卡的场景
// 创建失败时保留当前场景
func (sm *SceneManager) LoadLevel(levelID int) bool {
	log.Printf("[SceneManager] 加载关卡: %d", levelID)

	if sm.sceneFactory == nil {
		log.Printf("[SceneManager] 错误: SceneFactory 未设置")
		return false
	}

	newScene, err := sm.sceneFactory(levelID)
	if err != nil {
		log.Printf("[SceneManager] 错误: 无法创建关卡场景 %d: %v", levelID, err)
		return false
	}
	sm.SwitchTo(newScene)
	sm.currentLevel = levelID
	log.Printf("[SceneManager] 成功切换到关卡: %d", levelID)
	return true
}

// Update updates the currently active scene.
func (sm *SceneManager) Update(deltaTime float64) {
	if sm.currentScene != nil {
		sm.currentScene.Update(deltaTime)
	}
}

// Draw renders the currently active scene to the provided screen.
func (sm *SceneManager) Draw(screen *ebiten.Image) {
	if sm.currentScene != nil {
		sm.currentScene.Draw(screen)
	}
}
