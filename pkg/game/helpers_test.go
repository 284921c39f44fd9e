package game

import (
	"testing"

	"github.com/chuyi0414/qlmt/pkg/bgscroll"
	"github.com/chuyi0414/qlmt/pkg/ecs"
)

const testCatalogYAML = `
version: "1.0"
pixels_per_unit: 32
chunks:
  - path: Bg/Road_01
    length: 10
    load_frames: 2
    color: "#2e5e3a"
  - path: Bg/Road_02
    length: 9.5
    color: "#335577"
  - path: Bg/Broken
    fail: true
markers:
  - path: Marker/Small
    width: 16
    height: 16
    color: "#f2c14e"
  - path: Marker/Big
    width: 32
    height: 24
    scale: 1.5
`

func mustCatalog(t *testing.T) *AssetCatalog {
	t.Helper()
	catalog, err := ParseAssetCatalog([]byte(testCatalogYAML))
	if err != nil {
		t.Fatalf("ParseAssetCatalog() error = %v", err)
	}
	return catalog
}

// recordingHandler 记录显示结果
type recordingHandler struct {
	succeeded []bgscroll.ShowSucceeded
	failed    []bgscroll.ShowFailed
}

func (h *recordingHandler) HandleShowSucceeded(ev bgscroll.ShowSucceeded) {
	h.succeeded = append(h.succeeded, ev)
}

func (h *recordingHandler) HandleShowFailed(ev bgscroll.ShowFailed) {
	h.failed = append(h.failed, ev)
}

func newTestService(t *testing.T) (*EntityService, *recordingHandler) {
	t.Helper()
	svc := NewEntityService(ecs.NewEntityManager(), mustCatalog(t))
	h := &recordingHandler{}
	svc.Subscribe(h)
	return svc, h
}
