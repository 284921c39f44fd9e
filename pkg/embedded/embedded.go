// Package embedded 提供嵌入资源的统一访问接口
//
// 由于 Go embed 指令只能嵌入当前包目录及其子目录的文件，
// embed.FS 变量必须声明在项目根目录（embed.go）。
// 本包按路径前缀 "assets/" 与 "data/" 把请求分发到对应的文件系统。
//
// 使用前必须调用 Init() 初始化。
package embedded

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

var (
	assetsFS    fs.FS
	dataFS      fs.FS
	initialized bool

	errNotInitialized = errors.New("embedded package not initialized, call Init() first")
)

// Init 初始化资源文件系统
// 必须在 main() 开始时、任何资源加载之前调用；测试中可以传入 fstest.MapFS
func Init(assets, data fs.FS) {
	assetsFS = assets
	dataFS = data
	initialized = true
}

// IsInitialized 返回 embedded 包是否已初始化
func IsInitialized() bool {
	return initialized
}

// resolve 标准化路径并选择文件系统
func resolve(path string) (fs.FS, string, error) {
	if !initialized {
		return nil, "", errNotInitialized
	}

	// embed.FS 只接受正斜杠，且不能带 "./"
	path = filepath.ToSlash(path)
	path = strings.TrimPrefix(path, "./")

	switch {
	case strings.HasPrefix(path, "assets/") && assetsFS != nil:
		return assetsFS, path, nil
	case strings.HasPrefix(path, "data/") && dataFS != nil:
		return dataFS, path, nil
	}
	return nil, "", fmt.Errorf("unknown resource path prefix: %s (must start with 'assets/' or 'data/')", path)
}

// Open 打开文件，路径必须以 "assets/" 或 "data/" 开头
func Open(path string) (fs.File, error) {
	fsys, name, err := resolve(path)
	if err != nil {
		return nil, err
	}
	return fsys.Open(name)
}

// ReadFile 读取文件内容
func ReadFile(path string) ([]byte, error) {
	fsys, name, err := resolve(path)
	if err != nil {
		return nil, err
	}
	return fs.ReadFile(fsys, name)
}

// Exists 检查文件是否存在
func Exists(path string) bool {
	file, err := Open(path)
	if err != nil {
		return false
	}
	file.Close()
	return true
}

// Glob 匹配文件
func Glob(pattern string) ([]string, error) {
	fsys, name, err := resolve(pattern)
	if err != nil {
		return nil, err
	}
	return fs.Glob(fsys, name)
}

// ReadDir 读取目录内容
func ReadDir(path string) ([]fs.DirEntry, error) {
	fsys, name, err := resolve(path)
	if err != nil {
		return nil, err
	}
	return fs.ReadDir(fsys, name)
}

// Sub 返回指定目录的子文件系统
func Sub(dir string) (fs.FS, error) {
	fsys, name, err := resolve(dir)
	if err != nil {
		return nil, err
	}
	return fs.Sub(fsys, name)
}

// Stat 获取文件信息
func Stat(path string) (fs.FileInfo, error) {
	file, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return file.Stat()
}

// FS 以单个 fs.FS 的形式暴露两个前缀，供 game.NewResourceManager 等按完整路径读取的代码使用
func FS() fs.FS {
	return prefixFS{}
}

type prefixFS struct{}

func (prefixFS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	file, err := Open(name)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	return file, err
}
