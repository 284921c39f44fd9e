// Package trace 把背景滚动事件写成 zstd 压缩的 JSONL 文件，便于离线回放与统计
package trace

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/chuyi0414/qlmt/pkg/bgscroll"
)

// Writer 逐行写入 JSON 的 zstd 流
type Writer struct {
	mu    sync.Mutex
	f     *os.File // Create 打开的文件，NewWriter 时为 nil
	enc   *zstd.Encoder
	w     *bufio.Writer
	lines int
}

// Create 创建（覆盖）trace 文件
func Create(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	w, err := NewWriter(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	w.f = f
	return w, nil
}

// NewWriter 在任意 io.Writer 上创建 trace 写入器，Close 不会关闭 dst
func NewWriter(dst io.Writer) (*Writer, error) {
	enc, err := zstd.NewWriter(dst, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, err
	}
	return &Writer{enc: enc, w: bufio.NewWriterSize(enc, 128*1024)}, nil
}

// Write 写入一行 JSON
func (w *Writer) Write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.w == nil {
		return os.ErrClosed
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	w.lines++
	return nil
}

// Lines 已写入行数
func (w *Writer) Lines() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lines
}

// Close 刷新并关闭压缩流
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var err error
	if w.w != nil {
		err = w.w.Flush()
		w.w = nil
	}
	if w.enc != nil {
		if cerr := w.enc.Close(); err == nil {
			err = cerr
		}
		w.enc = nil
	}
	if w.f != nil {
		if cerr := w.f.Close(); err == nil {
			err = cerr
		}
		w.f = nil
	}
	return err
}

// Recorder 实现 bgscroll.Recorder
// 第一次写入失败后记录警告并停止写入，不影响滚动本身
type Recorder struct {
	w       *Writer
	level   int
	stopped bool
}

// entry trace 行：事件 + 关卡
type entry struct {
	Level int `json:"level"`
	bgscroll.Event
}

// NewRecorder 创建事件记录器
func NewRecorder(w *Writer, levelID int) *Recorder {
	return &Recorder{w: w, level: levelID}
}

// Record 写入一条事件
func (r *Recorder) Record(ev bgscroll.Event) {
	if r.stopped {
		return
	}
	if err := r.w.Write(entry{Level: r.level, Event: ev}); err != nil {
		log.Printf("[Trace] Warning: failed to write event, tracing disabled: %v", err)
		r.stopped = true
	}
}

// Stopped 是否因写入失败停止
func (r *Recorder) Stopped() bool { return r.stopped }

// Entry 读取到的一行
type Entry struct {
	Level int
	Event bgscroll.Event
}

// Read 解码 trace 流
func Read(src io.Reader) ([]Entry, error) {
	dec, err := zstd.NewReader(src)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var out []Entry
	scanner := bufio.NewScanner(dec)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for line := 1; scanner.Scan(); line++ {
		var e entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			return out, fmt.Errorf("trace line %d: %w", line, err)
		}
		out = append(out, Entry{Level: e.Level, Event: e.Event})
	}
	if err := scanner.Err(); err != nil {
		return out, err
	}
	return out, nil
}

// ReadFile 读取 trace 文件
func ReadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

// Summary 按事件类型计数
func Summary(entries []Entry) map[bgscroll.EventKind]int {
	counts := make(map[bgscroll.EventKind]int)
	for _, e := range entries {
		counts[e.Event.Kind]++
	}
	return counts
}
