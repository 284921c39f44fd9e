package game

import (
	"errors"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

// mockScene 记录调用情况的测试场景
type mockScene struct {
	level        int
	updateCalled bool
	deltaTime    float64
	closed       int
	closeErr     error
}

func (m *mockScene) Update(deltaTime float64) {
	m.updateCalled = true
	m.deltaTime = deltaTime
}

func (m *mockScene) Draw(screen *ebiten.Image) {}

func (m *mockScene) Close() error {
	m.closed++
	return m.closeErr
}

// plainScene 不实现 Closer
type plainScene struct{ updates int }

func (p *plainScene) Update(float64)     { p.updates++ }
func (p *plainScene) Draw(*ebiten.Image) {}

func TestNewSceneManager(t *testing.T) {
	sm := NewSceneManager()
	if sm == nil {
		t.Fatal("NewSceneManager() returned nil")
	}
	if sm.GetCurrentScene() != nil {
		t.Error("期望初始没有活动场景")
	}
	if sm.CurrentLevel() != 0 {
		t.Errorf("期望初始关卡为 0，实际 %d", sm.CurrentLevel())
	}
}

// TestSceneManagerSwitchTo 验证切换时关闭旧场景
func TestSceneManagerSwitchTo(t *testing.T) {
	sm := NewSceneManager()
	first := &mockScene{}
	second := &mockScene{closeErr: errors.New("boom")}

	sm.SwitchTo(first)
	if sm.GetCurrentScene() != first {
		t.Fatal("SwitchTo 未设置当前场景")
	}
	if first.closed != 0 {
		t.Error("首次切换不应关闭任何场景")
	}

	sm.SwitchTo(second)
	if first.closed != 1 {
		t.Errorf("期望旧场景被关闭一次，实际 %d", first.closed)
	}

	// 关闭失败只记录警告
	sm.SwitchTo(&plainScene{})
	if second.closed != 1 {
		t.Errorf("期望第二个场景被关闭一次，实际 %d", second.closed)
	}

	// 非 Closer 场景直接替换
	sm.SwitchTo(nil)
	if sm.GetCurrentScene() != nil {
		t.Error("期望切换到 nil 后没有活动场景")
	}
}

func TestSceneManagerUpdate(t *testing.T) {
	sm := NewSceneManager()
	sm.Update(0.016) // 无场景时不应 panic

	scene := &mockScene{}
	sm.SwitchTo(scene)
	sm.Update(1.0 / 60)

	if !scene.updateCalled {
		t.Error("场景 Update 未被调用")
	}
	if scene.deltaTime != 1.0/60 {
		t.Errorf("期望 deltaTime %.4f，实际 %.4f", 1.0/60, scene.deltaTime)
	}
}

func TestSceneManagerLoadLevel(t *testing.T) {
	created := map[int]*mockScene{}
	factory := func(levelID int) (Scene, error) {
		if levelID <= 0 {
			return nil, errors.New("invalid level")
		}
		s := &mockScene{level: levelID}
		created[levelID] = s
		return s, nil
	}

	t.Run("未设置工厂", func(t *testing.T) {
		sm := NewSceneManager()
		if sm.LoadLevel(1) {
			t.Error("期望没有工厂时加载失败")
		}
		if sm.CurrentLevel() != 0 {
			t.Errorf("期望关卡保持 0，实际 %d", sm.CurrentLevel())
		}
	})

	t.Run("加载与切换关卡", func(t *testing.T) {
		sm := NewSceneManager()
		sm.SetSceneFactory(factory)

		if !sm.LoadLevel(1) {
			t.Fatal("期望关卡 1 加载成功")
		}
		if sm.CurrentLevel() != 1 || sm.GetCurrentScene() != created[1] {
			t.Fatalf("期望当前为关卡 1，实际 %d", sm.CurrentLevel())
		}

		if !sm.LoadLevel(2) {
			t.Fatal("期望关卡 2 加载成功")
		}
		if created[1].closed != 1 {
			t.Errorf("期望关卡 1 场景被关闭，实际关闭次数 %d", created[1].closed)
		}
		if sm.CurrentLevel() != 2 {
			t.Errorf("期望当前关卡 2，实际 %d", sm.CurrentLevel())
		}
	})

	t.Run("工厂失败保留当前场景", func(t *testing.T) {
		sm := NewSceneManager()
		sm.SetSceneFactory(factory)
		sm.LoadLevel(3)
		current := sm.GetCurrentScene()

		if sm.LoadLevel(-1) {
			t.Error("期望非法关卡加载失败")
		}
		if sm.GetCurrentScene() != current || sm.CurrentLevel() != 3 {
			t.Errorf("期望保留关卡 3，实际 %d", sm.CurrentLevel())
		}
		if created[3].closed != 0 {
			t.Error("加载失败时不应关闭当前场景")
		}
	})
}
