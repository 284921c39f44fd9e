package resourcepoint

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/chuyi0414/qlmt/pkg/bgscroll"
	"github.com/chuyi0414/qlmt/pkg/config"
)

type fakeSpawner struct {
	next      int
	spawned   map[int]Point
	destroyed []int
	fail      bool
}

func newFakeSpawner() *fakeSpawner {
	return &fakeSpawner{next: 1000, spawned: make(map[int]Point)}
}

func (s *fakeSpawner) SpawnMarker(ownerID int, kind Kind, markerPath string, x, y float64) (int, error) {
	if s.fail {
		return 0, errors.New("marker asset missing")
	}
	s.next++
	s.spawned[s.next] = Point{OwnerID: ownerID, Kind: kind, X: x, Y: y}
	return s.next, nil
}

func (s *fakeSpawner) DestroyMarker(markerID int) {
	delete(s.spawned, markerID)
	s.destroyed = append(s.destroyed, markerID)
}

type fakeMeasurer struct {
	radius map[string]float64
	calls  int
}

func (m *fakeMeasurer) MeasureMarkerRadius(path string) (float64, bool) {
	m.calls++
	r, ok := m.radius[path]
	return r, ok
}

// testProfile 相机宽度 10，道路半宽 1.5，两侧各留白 0.5
func testProfile() Profile {
	return Profile{
		ID:                  1,
		Seed:                20240601,
		PerlinFrequency:     0.37,
		RoadHalfWidth:       1.5,
		EdgePaddingX:        0.5,
		NoneWeight:          1,
		SmallWeight:         3,
		BigWeight:           1,
		MinGapY:             1,
		MaxGapY:             2.5,
		MaxPointsPerChunk:   4,
		MinPointDistance:    0.2,
		SmallMarkerPath:     "Marker/Small",
		BigMarkerPath:       "Marker/Big",
		FallbackAvoidRadius: 0.3,
	}
}

func testCamera() *bgscroll.OrthoCamera {
	return &bgscroll.OrthoCamera{OrthographicSize: 5, Aspect: 1}
}

func TestHashSeed(t *testing.T) {
	tests := []struct {
		name     string
		values   []int
		expected int
	}{
		{"无参数", nil, 17},
		{"单值", []int{1}, 17*31 + 1},
		{"两个零", []int{0, 0}, (17 * 31) * 31},
		{"结果为零时取 1", []int{-527}, 1},
		{"int32 溢出回绕", []int{math.MaxInt32}, -2147483122},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HashSeed(tt.values...); got != tt.expected {
				t.Errorf("HashSeed(%v) = %d, 期望 %d", tt.values, got, tt.expected)
			}
		})
	}
}

func TestProfile_KindFor(t *testing.T) {
	p := Profile{NoneWeight: 1, SmallWeight: 1, BigWeight: 2}
	noBig := Profile{NoneWeight: 1, SmallWeight: 1}

	tests := []struct {
		name     string
		profile  Profile
		sample   float64
		expected Kind
	}{
		{"不生成区间", p, 0.1, KindNone},
		{"小物资点区间", p, 0.3, KindSmall},
		{"大物资点区间", p, 0.9, KindBig},
		{"大物资点权重为 0", noBig, 0.9, KindNone},
		{"权重全为 0", Profile{}, 0.5, KindNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.profile.KindFor(tt.sample); got != tt.expected {
				t.Errorf("KindFor(%v) = %v, 期望 %v", tt.sample, got, tt.expected)
			}
		})
	}
}

func TestProfileFromRow(t *testing.T) {
	row := config.RoadGenProfileRow{
		ID: 3, Seed: 7, PerlinFrequency: 0.2, RoadHalfWidth: 1,
		SmallWeight: 1, MinSpawnGapY: 1, MaxSpawnGapY: 2, MaxPointsPerBg: 3,
	}
	p, err := ProfileFromRow(row)
	if err != nil {
		t.Fatalf("ProfileFromRow() error = %v", err)
	}
	if p.FallbackAvoidRadius != DefaultAvoidRadius || p.MaxPointsPerChunk != 3 {
		t.Errorf("profile = %+v", p)
	}

	row.PerlinFrequency = 0
	if _, err := ProfileFromRow(row); err == nil {
		t.Error("ProfileFromRow() with zero perlin frequency should fail")
	}
}

func TestNoise_Range(t *testing.T) {
	n := NewNoise(42, 0.37)
	for i := 0; i < 500; i++ {
		v := n.Sample(float64(i)*0.61-100, i%200)
		if v < 0 || v > 1 {
			t.Fatalf("Sample() = %v, 期望位于 [0,1]", v)
		}
	}

	// weight 为 0 时等价于纯随机值
	a := rand.New(rand.NewSource(9))
	b := rand.New(rand.NewSource(9))
	for i := 0; i < 20; i++ {
		if got, want := n.Blend(a, float64(i), 17, 0), b.Float64(); got != want {
			t.Fatalf("Blend(weight=0) = %v, 期望 %v", got, want)
		}
	}
}

func TestGenerator_PlanSkips(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(p *Profile)
		segment int
	}{
		{"第一个背景块", func(p *Profile) {}, 0},
		{"最大点位数为 0", func(p *Profile) { p.MaxPointsPerChunk = 0 }, 3},
		{"道路占满视野", func(p *Profile) { p.RoadHalfWidth = 6 }, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testProfile()
			tt.modify(&p)
			g := NewGenerator(p, testCamera(), nil, nil)
			if points := g.Plan(1, tt.segment, 0, 10); len(points) != 0 {
				t.Errorf("Plan() = %d points, 期望 0", len(points))
			}
		})
	}
}

func TestGenerator_PlanIsDeterministic(t *testing.T) {
	a := NewGenerator(testProfile(), testCamera(), nil, nil)
	b := NewGenerator(testProfile(), testCamera(), nil, nil)

	total := 0
	for segment := 1; segment <= 20; segment++ {
		pa := a.Plan(segment, segment, 3, 13)
		pb := b.Plan(segment, segment, 3, 13)
		if len(pa) != len(pb) {
			t.Fatalf("segment %d: %d vs %d points", segment, len(pa), len(pb))
		}
		for i := range pa {
			if pa[i] != pb[i] {
				t.Fatalf("segment %d point %d: %+v vs %+v", segment, i, pa[i], pb[i])
			}
		}
		total += len(pa)
	}
	if total == 0 {
		t.Error("expected at least one planned point over 20 chunks")
	}
}

// TestGenerator_CursorKeepsMinGap 游标先前进再取点，首个点与相邻点都至少相隔 MinGapY
func TestGenerator_CursorKeepsMinGap(t *testing.T) {
	p := testProfile()
	p.NoneWeight = 0
	g := NewGenerator(p, testCamera(), nil, nil)

	const bottom, top = 0.0, 10.0
	placed := 0
	for segment := 1; segment <= 200; segment++ {
		points := g.Plan(segment, segment, bottom, top)
		prev := bottom
		for i, pt := range points {
			if pt.Y-prev < p.MinGapY-1e-9 {
				t.Fatalf("segment %d point %d: y=%.3f 与上一位置 %.3f 间距小于 %.2f", segment, i, pt.Y, prev, p.MinGapY)
			}
			if pt.Y > top {
				t.Fatalf("segment %d point %d: y=%.3f 超出背景块顶边", segment, i, pt.Y)
			}
			prev = pt.Y
		}
		placed += len(points)
	}
	if placed == 0 {
		t.Error("期望至少生成一个物资点")
	}
}

// TestGenerator_SpacingAcrossChunks 模拟滚动窗口，检查所有活跃物资点的间距与位置
func TestGenerator_SpacingAcrossChunks(t *testing.T) {
	p := testProfile()
	spawner := newFakeSpawner()
	g := NewGenerator(p, testCamera(), spawner, nil)

	type extent struct{ bottom, top float64 }
	extents := map[int]extent{}
	const window = 4

	spawned := 0
	for segment := 0; segment < 60; segment++ {
		id := segment + 1
		bottom := float64(segment) * 10
		extents[id] = extent{bottom, bottom + 10}
		g.OnChunkShown(bgscroll.ShownChunk{EntityID: id, SegmentIndex: segment, BottomY: bottom, TopY: bottom + 10})
		spawned += len(g.PointsOf(id))

		if segment >= window {
			g.OnChunkRecycled(id - window)
		}

		live := g.LivePoints()
		perOwner := map[int]int{}
		for i, a := range live {
			perOwner[a.OwnerID]++
			ext := extents[a.OwnerID]
			if a.Y < ext.bottom || a.Y > ext.top {
				t.Fatalf("point %+v outside chunk [%g, %g]", a, ext.bottom, ext.top)
			}
			inLeft := a.X >= -4.5 && a.X <= -1.5
			inRight := a.X >= 1.5 && a.X <= 4.5
			if !inLeft && !inRight {
				t.Fatalf("point %+v outside side lanes", a)
			}
			if (a.Side == SideLeft) != inLeft {
				t.Fatalf("point %+v has wrong side", a)
			}
			for _, b := range live[i+1:] {
				limit := a.Radius + b.Radius + p.MinPointDistance
				if d := math.Hypot(a.X-b.X, a.Y-b.Y); d < limit-1e-9 {
					t.Fatalf("points %+v and %+v are %.4f apart, 期望 >= %.4f", a, b, d, limit)
				}
			}
		}
		for owner, n := range perOwner {
			if n > p.MaxPointsPerChunk {
				t.Fatalf("chunk %d has %d points, 上限 %d", owner, n, p.MaxPointsPerChunk)
			}
		}
		if perOwner[1] != 0 {
			t.Fatal("first chunk must not carry resource points")
		}
	}

	if spawned == 0 {
		t.Fatal("no points spawned over 60 chunks")
	}
	if len(spawner.spawned) != len(g.LivePoints()) {
		t.Errorf("live markers = %d, tracked points = %d", len(spawner.spawned), len(g.LivePoints()))
	}

	g.Clear()
	if len(g.LivePoints()) != 0 || len(spawner.spawned) != 0 {
		t.Errorf("Clear() left %d points and %d markers", len(g.LivePoints()), len(spawner.spawned))
	}
	if len(spawner.destroyed) != spawned {
		t.Errorf("destroyed %d markers, 期望 %d", len(spawner.destroyed), spawned)
	}
}

func TestGenerator_ReshowReplacesPoints(t *testing.T) {
	spawner := newFakeSpawner()
	g := NewGenerator(testProfile(), testCamera(), spawner, nil)

	var chunk bgscroll.ShownChunk
	for segment := 1; segment < 50; segment++ {
		chunk = bgscroll.ShownChunk{EntityID: 7, SegmentIndex: segment, BottomY: 0, TopY: 10}
		g.OnChunkShown(chunk)
		if len(g.PointsOf(7)) > 0 {
			break
		}
	}
	first := g.PointsOf(7)
	if len(first) == 0 {
		t.Skip("no points generated for this profile")
	}

	g.OnChunkShown(chunk)
	if len(spawner.spawned) != len(first) {
		t.Errorf("markers after re-show = %d, 期望 %d", len(spawner.spawned), len(first))
	}
}

func TestGenerator_ShiftAndRecycle(t *testing.T) {
	spawner := newFakeSpawner()
	g := NewGenerator(testProfile(), testCamera(), spawner, nil)

	id := 0
	for segment := 1; segment < 50 && len(g.LivePoints()) == 0; segment++ {
		id = segment
		g.OnChunkShown(bgscroll.ShownChunk{EntityID: id, SegmentIndex: segment, BottomY: 0, TopY: 10})
	}
	before := g.PointsOf(id)
	if len(before) == 0 {
		t.Fatal("no points generated")
	}

	g.OnChunksShifted(-2.5)
	after := g.PointsOf(id)
	for i := range before {
		if !almostEqual(after[i].Y, before[i].Y-2.5) || after[i].X != before[i].X {
			t.Errorf("point %d = %+v, 期望下移 2.5", i, after[i])
		}
	}

	g.OnChunkRecycled(id)
	if len(g.LivePoints()) != 0 || len(spawner.spawned) != 0 {
		t.Error("recycle should destroy every marker of the chunk")
	}
	g.OnChunkRecycled(id) // 重复回收是空操作
}

func TestGenerator_SpawnFailureIsSkipped(t *testing.T) {
	spawner := newFakeSpawner()
	spawner.fail = true
	g := NewGenerator(testProfile(), testCamera(), spawner, nil)

	for segment := 1; segment < 20; segment++ {
		g.OnChunkShown(bgscroll.ShownChunk{EntityID: segment, SegmentIndex: segment, BottomY: 0, TopY: 10})
	}
	if len(g.LivePoints()) != 0 {
		t.Errorf("LivePoints() = %d, 期望 0", len(g.LivePoints()))
	}
}

func TestGenerator_RadiusMeasurement(t *testing.T) {
	measurer := &fakeMeasurer{radius: map[string]float64{"Marker/Small": 0.01}}
	g := NewGenerator(testProfile(), testCamera(), nil, measurer)

	if r := g.radiusFor(KindSmall); r != MinAvoidRadius {
		t.Errorf("small radius = %v, 期望下限 %v", r, MinAvoidRadius)
	}
	if r := g.radiusFor(KindBig); r != 0.3 {
		t.Errorf("big radius = %v, 期望兜底 0.3", r)
	}
	g.radiusFor(KindSmall)
	g.radiusFor(KindBig)
	if measurer.calls != 2 {
		t.Errorf("measure calls = %d, 期望每种类型只测量一次", measurer.calls)
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestFirstOverlap(t *testing.T) {
	tests := []struct {
		name     string
		points   []Point
		expected bool
	}{
		{"空", nil, false},
		{"间距足够", []Point{{X: 0, Y: 0, Radius: 0.5}, {X: 0, Y: 1.2, Radius: 0.5}}, false},
		{"恰好相切", []Point{{X: 0, Y: 0, Radius: 0.5}, {X: 0, Y: 1.1, Radius: 0.5}}, false},
		{"重叠", []Point{{X: 0, Y: 0, Radius: 0.5}, {X: 3, Y: 3, Radius: 0.5}, {X: 0.5, Y: 0.5, Radius: 0.5}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, got := FirstOverlap(tt.points, 0.1)
			if got != tt.expected {
				t.Errorf("FirstOverlap() = %v, 期望 %v", got, tt.expected)
			}
		})
	}
}
