package resourcepoint

import (
	"log"
	"math"
	"math/rand"
	"sort"

	"github.com/chuyi0414/qlmt/pkg/bgscroll"
	"github.com/chuyi0414/qlmt/pkg/utils"
)

// 噪声盐值
const (
	chunkSeedSalt = 991

	saltFirstOffset = 17
	saltGap         = 31
	saltKind        = 53
	saltSide        = 79
	saltLeftX       = 101
	saltRightX      = 131

	sideBlendWeight = 0.18
	xBlendWeight    = 0.12

	maxPlacementRetries = 6
	minAttemptGuard     = 64
	attemptsPerPoint    = 24
)

// Point 物资点
type Point struct {
	OwnerID  int // 所属背景块实体 Id
	MarkerID int // 占位实体 Id，规划阶段为 0
	Kind     Kind
	Side     Side
	X        float64
	Y        float64
	Radius   float64
}

// MarkerSpawner 负责在宿主中创建/销毁物资点占位实体
type MarkerSpawner interface {
	SpawnMarker(ownerID int, kind Kind, markerPath string, x, y float64) (int, error)
	DestroyMarker(markerID int)
}

// RadiusMeasurer 测量占位资源在平面上的包围半径
type RadiusMeasurer interface {
	MeasureMarkerRadius(markerPath string) (float64, bool)
}

// lanes 道路两侧可放置区间
type lanes struct {
	roadCenter         float64
	leftMin, leftMax   float64
	rightMin, rightMax float64
}

func (l lanes) leftLen() float64  { return max(0, l.leftMax-l.leftMin) }
func (l lanes) rightLen() float64 { return max(0, l.rightMax-l.rightMin) }
func (l lanes) total() float64    { return l.leftLen() + l.rightLen() }

// Generator 背景块物资点生成器
//
// 实现 bgscroll.ChunkListener：背景块显示成功时生成，回收时销毁，整体平移时同步坐标。
type Generator struct {
	profile  Profile
	viewport bgscroll.Viewport
	spawner  MarkerSpawner
	measurer RadiusMeasurer
	noise    *Noise

	radius map[Kind]float64
	// 背景块实体 Id -> 活跃物资点
	live map[int][]Point
}

// NewGenerator 创建物资点生成器
// spawner 与 measurer 可以为 nil：前者只记录点位，后者使用兜底半径
func NewGenerator(profile Profile, viewport bgscroll.Viewport, spawner MarkerSpawner, measurer RadiusMeasurer) *Generator {
	if profile.FallbackAvoidRadius <= 0 {
		profile.FallbackAvoidRadius = DefaultAvoidRadius
	}
	return &Generator{
		profile:  profile,
		viewport: viewport,
		spawner:  spawner,
		measurer: measurer,
		noise:    NewNoise(profile.Seed, profile.PerlinFrequency),
		radius:   make(map[Kind]float64),
		live:     make(map[int][]Point),
	}
}

// Profile 当前生成参数
func (g *Generator) Profile() Profile { return g.profile }

// OnChunkShown 背景块显示成功后生成物资点
func (g *Generator) OnChunkShown(chunk bgscroll.ShownChunk) {
	g.clearOwner(chunk.EntityID)

	planned := g.Plan(chunk.EntityID, chunk.SegmentIndex, chunk.BottomY, chunk.TopY)
	if len(planned) == 0 {
		return
	}

	accepted := planned[:0]
	for _, pt := range planned {
		if g.spawner != nil {
			id, err := g.spawner.SpawnMarker(chunk.EntityID, pt.Kind, g.profile.MarkerPath(pt.Kind), pt.X, pt.Y)
			if err != nil {
				log.Printf("[ResourcePoint] Warning: failed to spawn %s marker for chunk %d: %v", pt.Kind, chunk.EntityID, err)
				continue
			}
			pt.MarkerID = id
		}
		accepted = append(accepted, pt)
	}
	if len(accepted) > 0 {
		g.live[chunk.EntityID] = accepted
	}
	log.Printf("[ResourcePoint] Chunk %d (segment %d): %d points", chunk.EntityID, chunk.SegmentIndex, len(accepted))
}

// OnChunkRecycled 销毁背景块上的全部物资点
func (g *Generator) OnChunkRecycled(entityID int) {
	g.clearOwner(entityID)
}

// OnChunksShifted 同步活跃物资点坐标
func (g *Generator) OnChunksShifted(dy float64) {
	for _, points := range g.live {
		for i := range points {
			points[i].Y += dy
		}
	}
}

// Clear 销毁全部物资点
func (g *Generator) Clear() {
	for owner := range g.live {
		g.clearOwner(owner)
	}
}

// LivePoints 返回全部活跃物资点（按所属背景块、Y 排序）
func (g *Generator) LivePoints() []Point {
	var out []Point
	for _, points := range g.live {
		out = append(out, points...)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OwnerID != out[j].OwnerID {
			return out[i].OwnerID < out[j].OwnerID
		}
		return out[i].Y < out[j].Y
	})
	return out
}

// PointsOf 返回某背景块上的活跃物资点
func (g *Generator) PointsOf(ownerID int) []Point {
	return append([]Point(nil), g.live[ownerID]...)
}

func (g *Generator) clearOwner(ownerID int) {
	points, ok := g.live[ownerID]
	if !ok {
		return
	}
	if g.spawner != nil {
		for _, pt := range points {
			if pt.MarkerID > 0 {
				g.spawner.DestroyMarker(pt.MarkerID)
			}
		}
	}
	delete(g.live, ownerID)
}

// Plan 规划背景块 [bottomY, topY] 上的物资点，不创建占位实体
//
// 关卡第一个背景块（segmentIndex == 0）不生成。
// 同一(种子, 序号, 底边)总是得到相同结果。
func (g *Generator) Plan(ownerID, segmentIndex int, bottomY, topY float64) []Point {
	p := g.profile
	if segmentIndex == 0 || p.MaxPointsPerChunk <= 0 || topY <= bottomY {
		return nil
	}

	l := g.lanes()
	if l.total() <= 0 {
		return nil
	}

	rng := rand.New(rand.NewSource(int64(HashSeed(p.Seed, segmentIndex, chunkSeedSalt))))
	cursor := bottomY + g.noise.Blend(rng, bottomY, saltFirstOffset, DefaultBlendWeight)*p.MaxGapY
	guard := max(minAttemptGuard, p.MaxPointsPerChunk*attemptsPerPoint)

	planned := make([]Point, 0, p.MaxPointsPerChunk)
	for attempt := 0; attempt < guard && len(planned) < p.MaxPointsPerChunk; attempt++ {
		// 先前进再取类型，首个点离底边至少 MinGapY
		gap := utils.Lerp(p.MinGapY, p.MaxGapY, g.noise.Blend(rng, cursor, saltGap, DefaultBlendWeight))
		cursor += math.Max(gap, p.MinGapY)
		if cursor > topY {
			break
		}

		kind := p.KindFor(g.noise.Blend(rng, cursor, saltKind, DefaultBlendWeight))
		if kind == KindNone {
			continue
		}
		if pt, ok := g.place(rng, ownerID, kind, cursor, l, planned); ok {
			planned = append(planned, pt)
		}
	}
	return planned
}

// lanes 以相机视野与道路中心计算左右两侧区间
func (g *Generator) lanes() lanes {
	b := g.viewport.Bounds()
	p := g.profile
	center := b.CenterX() + p.RoadCenterOffsetX
	return lanes{
		roadCenter: center,
		leftMin:    b.Left + p.EdgePaddingX,
		leftMax:    center - p.RoadHalfWidth,
		rightMin:   center + p.RoadHalfWidth,
		rightMax:   b.Right - p.EdgePaddingX,
	}
}

// place 在 y 处挑选侧边与 X，失败时扰动盐值重试
func (g *Generator) place(rng *rand.Rand, ownerID int, kind Kind, y float64, l lanes, planned []Point) (Point, bool) {
	radius := g.radiusFor(kind)
	left, right, total := l.leftLen(), l.rightLen(), l.total()

	for retry := 0; retry < maxPlacementRetries; retry++ {
		r := float64(retry)
		sidePick := g.noise.Blend(rng, y+r*0.11, saltSide+retry, sideBlendWeight)

		var x float64
		if left > 0 && (sidePick*total < left || right <= 0) {
			x = utils.Lerp(l.leftMin, l.leftMax, g.noise.Blend(rng, y+r*0.23, saltLeftX+retry, xBlendWeight))
		} else {
			x = utils.Lerp(l.rightMin, l.rightMax, g.noise.Blend(rng, y+r*0.29, saltRightX+retry, xBlendWeight))
		}

		candidate := Point{OwnerID: ownerID, Kind: kind, X: x, Y: y, Radius: radius, Side: SideRight}
		if x < l.roadCenter {
			candidate.Side = SideLeft
		}
		if g.overlaps(candidate, planned) {
			continue
		}
		return candidate, true
	}
	return Point{}, false
}

// overlaps 检查与本块已规划点位及其它背景块活跃点位的间距
func (g *Generator) overlaps(c Point, planned []Point) bool {
	for _, pt := range planned {
		if tooClose(c, pt, g.profile.MinPointDistance) {
			return true
		}
	}
	for owner, points := range g.live {
		if owner == c.OwnerID {
			continue
		}
		for _, pt := range points {
			if tooClose(c, pt, g.profile.MinPointDistance) {
				return true
			}
		}
	}
	return false
}

func tooClose(a, b Point, minDistance float64) bool {
	dx, dy := a.X-b.X, a.Y-b.Y
	limit := a.Radius + b.Radius + minDistance
	return dx*dx+dy*dy < limit*limit
}

// radiusFor 占位半径，按类型缓存
func (g *Generator) radiusFor(kind Kind) float64 {
	if r, ok := g.radius[kind]; ok {
		return r
	}
	r := g.profile.FallbackAvoidRadius
	if g.measurer != nil {
		if measured, ok := g.measurer.MeasureMarkerRadius(g.profile.MarkerPath(kind)); ok && measured > 0 {
			r = measured
		} else {
			log.Printf("[ResourcePoint] Warning: cannot measure %s marker, using fallback radius %.2f", kind, r)
		}
	}
	r = math.Max(MinAvoidRadius, r)
	g.radius[kind] = r
	return r
}

// FirstOverlap 返回第一对间距不足的点位，用于离线校验
// 点位会随背景整体平移，比较时留出浮点误差
func FirstOverlap(points []Point, minDistance float64) (Point, Point, bool) {
	const epsilon = 1e-9
	for i := range points {
		for j := i + 1; j < len(points); j++ {
			a, b := points[i], points[j]
			dx, dy := a.X-b.X, a.Y-b.Y
			limit := a.Radius + b.Radius + minDistance - epsilon
			if limit > 0 && dx*dx+dy*dy < limit*limit {
				return a, b, true
			}
		}
	}
	return Point{}, Point{}, false
}
