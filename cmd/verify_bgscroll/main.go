// verify_bgscroll 无窗口运行背景滚动，逐帧检查背景块连续性与物资点间距
//
// 用法：
//
//	go run ./cmd/verify_bgscroll -level 0 -frames 3600 -trace traces
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sort"

	"github.com/chuyi0414/qlmt/pkg/bgscroll"
	"github.com/chuyi0414/qlmt/pkg/resourcepoint"
	"github.com/chuyi0414/qlmt/pkg/scenes"
	"github.com/chuyi0414/qlmt/pkg/trace"
)

const (
	screenWidth  = 540
	screenHeight = 960
	maxReported  = 10
	seamEpsilon  = 1e-6
)

var (
	root     = flag.String("root", ".", "包含 data/ 与 assets/ 的目录")
	level    = flag.Int("level", 0, "关卡 Id，0 表示全部关卡")
	frames   = flag.Int("frames", 3600, "每个关卡运行的帧数")
	tps      = flag.Int("tps", 60, "每秒帧数")
	speed    = flag.Float64("speed", 0, "覆盖配置中的滚动速度，0 表示使用配置")
	seed     = flag.Int64("seed", 1, "背景块挑选的随机种子")
	traceDir = flag.String("trace", "", "trace 输出目录，为空不写")
	verbose  = flag.Bool("verbose", false, "显示详细日志")
)

// levelReport 单个关卡的运行结果
type levelReport struct {
	levelID     int
	frames      int
	finalState  bgscroll.State
	transitions int
	maxSlots    int
	maxPoints   int
	pointFrames int
	violations  []string
	trace       map[bgscroll.EventKind]int
}

func (r *levelReport) fail(format string, args ...any) {
	if len(r.violations) < maxReported {
		r.violations = append(r.violations, fmt.Sprintf(format, args...))
	}
}

func main() {
	flag.Parse()
	if !*verbose {
		log.SetOutput(io.Discard)
	}

	data, err := scenes.LoadLevelData(os.DirFS(*root))
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载数据失败: %v\n", err)
		os.Exit(1)
	}
	if *speed > 0 {
		data.Scroll.ScrollSpeed = *speed
	}

	levels := data.LevelIDs()
	if *level != 0 {
		levels = []int{*level}
	}

	failed := false
	for _, id := range levels {
		report, err := runLevel(data, id)
		if err != nil {
			fmt.Printf("关卡 %d: 启动失败: %v\n", id, err)
			failed = true
			continue
		}
		printReport(report)
		failed = failed || len(report.violations) > 0
	}

	if failed {
		os.Exit(1)
	}
}

func runLevel(data *scenes.LevelData, levelID int) (*levelReport, error) {
	opts := scenes.LevelOptions{
		ScreenWidth:  screenWidth,
		ScreenHeight: screenHeight,
		Random:       rand.New(rand.NewSource(*seed)),
	}
	if *traceDir != "" {
		opts.TracePath = filepath.Join(*traceDir, fmt.Sprintf("level%d.jsonl.zst", levelID))
	}

	scene, err := scenes.NewLevelScene(data, levelID, opts)
	if err != nil {
		return nil, err
	}

	report := &levelReport{levelID: levelID}
	scroller := scene.System().Scroller()
	generator := scene.System().Generator()
	dt := 1.0 / float64(max(1, *tps))

	for frame := 1; frame <= *frames; frame++ {
		scene.Update(dt)
		report.frames = frame

		slots := scroller.Slots()
		report.maxSlots = max(report.maxSlots, len(slots))
		for i := 0; i+1 < len(slots); i++ {
			if gap := slots[i+1].PlannedBottomY - slots[i].PlannedTopY; math.Abs(gap) > seamEpsilon {
				report.fail("frame %d: seam between entity %d and %d is %.6f", frame, slots[i].EntityID, slots[i+1].EntityID, gap)
			}
		}

		if generator != nil {
			checkPoints(report, frame, generator, scene.MarkerCount())
		}

		state := scroller.State()
		if state == bgscroll.StateCompleted || state == bgscroll.StateStopped {
			break
		}
	}

	report.finalState = scroller.State()
	report.transitions = scroller.Sequencer().Transitions()

	if err := scene.Close(); err != nil {
		report.fail("close: %v", err)
	}
	if n := scene.IDs().InUseCount(); n != 0 {
		report.fail("%d entity ids still in use after close", n)
	}

	if opts.TracePath != "" {
		entries, err := trace.ReadFile(opts.TracePath)
		if err != nil {
			report.fail("read trace: %v", err)
		} else {
			report.trace = trace.Summary(entries)
		}
	}
	return report, nil
}

func checkPoints(report *levelReport, frame int, generator *resourcepoint.Generator, markers int) {
	points := generator.LivePoints()
	report.maxPoints = max(report.maxPoints, len(points))
	if len(points) > 0 {
		report.pointFrames++
	}
	if len(points) != markers {
		report.fail("frame %d: %d live points but %d markers", frame, len(points), markers)
	}
	if a, b, ok := resourcepoint.FirstOverlap(points, generator.Profile().MinPointDistance); ok {
		report.fail("frame %d: points (%.2f, %.2f) and (%.2f, %.2f) overlap", frame, a.X, a.Y, b.X, b.Y)
	}
}

func printReport(r *levelReport) {
	status := "OK"
	if len(r.violations) > 0 {
		status = "FAIL"
	}
	fmt.Printf("关卡 %d [%s]: %d 帧, 最终状态 %s, 主题切换 %d 次, 最多 %d 个背景块, 最多 %d 个物资点 (%d 帧有点位)\n",
		r.levelID, status, r.frames, r.finalState, r.transitions, r.maxSlots, r.maxPoints, r.pointFrames)
	for _, v := range r.violations {
		fmt.Printf("  - %s\n", v)
	}
	if len(r.trace) > 0 {
		kinds := make([]string, 0, len(r.trace))
		for kind := range r.trace {
			kinds = append(kinds, string(kind))
		}
		sort.Strings(kinds)
		for _, kind := range kinds {
			fmt.Printf("  trace %-14s %d\n", kind, r.trace[bgscroll.EventKind(kind)])
		}
	}
}
