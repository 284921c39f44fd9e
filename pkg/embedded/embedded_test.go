package embedded

import (
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"
)

func testFS() (fstest.MapFS, fstest.MapFS) {
	assets := fstest.MapFS{
		"assets/markers/small.png": {Data: []byte("png")},
	}
	data := fstest.MapFS{
		"data/bgscroll/bgscroll.yaml": {Data: []byte("chunks: []\n")},
		"data/bgscroll/assets.yaml":   {Data: []byte("chunks: []\n")},
	}
	return assets, data
}

func withFS(t *testing.T) {
	t.Helper()
	assets, data := testFS()
	Init(assets, data)
	t.Cleanup(func() {
		assetsFS, dataFS, initialized = nil, nil, false
	})
}

// TestIsInitialized 测试初始化状态检测
func TestIsInitialized(t *testing.T) {
	initialized = false
	if IsInitialized() {
		t.Error("Expected IsInitialized() to return false before Init()")
	}
	withFS(t)
	if !IsInitialized() {
		t.Error("Expected IsInitialized() to return true after Init()")
	}
}

// TestNotInitialized 未初始化时所有入口都返回错误
func TestNotInitialized(t *testing.T) {
	initialized = false

	if _, err := Open("data/bgscroll/bgscroll.yaml"); err != errNotInitialized {
		t.Errorf("Open() error = %v", err)
	}
	if _, err := ReadFile("data/bgscroll/bgscroll.yaml"); err != errNotInitialized {
		t.Errorf("ReadFile() error = %v", err)
	}
	if _, err := Glob("data/*"); err != errNotInitialized {
		t.Errorf("Glob() error = %v", err)
	}
	if Exists("data/bgscroll/bgscroll.yaml") {
		t.Error("Exists() should be false before Init()")
	}
}

// TestReadFile 按前缀分发
func TestReadFile(t *testing.T) {
	withFS(t)

	tests := []struct {
		name    string
		path    string
		want    string
		wantErr bool
	}{
		{"data 前缀", "data/bgscroll/bgscroll.yaml", "chunks: []\n", false},
		{"带 ./ 前缀", "./data/bgscroll/assets.yaml", "chunks: []\n", false},
		{"assets 前缀", "assets/markers/small.png", "png", false},
		{"未知前缀", "config/x.yaml", "", true},
		{"文件不存在", "data/missing.yaml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadFile(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ReadFile(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if string(got) != tt.want {
				t.Errorf("ReadFile(%q) = %q, 期望 %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestGlobReadDirSubStat(t *testing.T) {
	withFS(t)

	matches, err := Glob("data/bgscroll/*.yaml")
	if err != nil || len(matches) != 2 {
		t.Errorf("Glob() = %v, %v, 期望 2 个文件", matches, err)
	}

	entries, err := ReadDir("data/bgscroll")
	if err != nil || len(entries) != 2 {
		t.Errorf("ReadDir() = %d entries, err = %v", len(entries), err)
	}

	sub, err := Sub("data/bgscroll")
	if err != nil {
		t.Fatalf("Sub() error = %v", err)
	}
	if _, err := fs.ReadFile(sub, "assets.yaml"); err != nil {
		t.Errorf("sub ReadFile() error = %v", err)
	}

	info, err := Stat("assets/markers/small.png")
	if err != nil || info.Size() != 3 {
		t.Errorf("Stat() = %v, %v", info, err)
	}
	if !Exists("assets/markers/small.png") || Exists("assets/markers/none.png") {
		t.Error("Exists() 结果不正确")
	}
}

func TestFS(t *testing.T) {
	withFS(t)
	fsys := FS()

	if b, err := fs.ReadFile(fsys, "assets/markers/small.png"); err != nil || string(b) != "png" {
		t.Errorf("ReadFile(assets) = %q, %v", b, err)
	}
	if _, err := fsys.Open("../etc/passwd"); err == nil {
		t.Error("expected invalid path error")
	}
	_, err := fsys.Open("data/none.yaml")
	if err == nil || !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Open(missing) error = %v, 期望 fs.ErrNotExist", err)
	}
}
