// Package embedded 让各个包读取打包进程序的关卡数据
//
// go:embed 只能嵌入声明所在目录之下的文件，所以 embed.FS 放在项目根目录，
// 入口程序启动时通过 Init 交给本包。命令行工具可以改传 os.DirFS 读取磁盘上的数据。
// 所有路径都以 "data/" 开头。
package embedded

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

// ErrNotInitialized 在 Init 之前读取时返回
var ErrNotInitialized = errors.New("embedded package not initialized, call Init() first")

var dataFS fs.FS

// Init 设置数据来源，测试可以传入 fstest.MapFS，传 nil 表示重置
func Init(data fs.FS) {
	dataFS = data
}

func IsInitialized() bool {
	return dataFS != nil
}

// clean 把 "./data\levels/x" 之类的写法统一成 fs.FS 使用的 "data/levels/x"
func clean(name string) (string, error) {
	if dataFS == nil {
		return "", ErrNotInitialized
	}
	name = path.Clean(strings.ReplaceAll(name, `\`, "/"))
	if !strings.HasPrefix(name, "data/") {
		return "", fmt.Errorf("unknown resource path prefix: %s (must start with 'data/')", name)
	}
	return name, nil
}

// ReadFile 读取整个文件
func ReadFile(name string) ([]byte, error) {
	name, err := clean(name)
	if err != nil {
		return nil, err
	}
	return fs.ReadFile(dataFS, name)
}

// Glob 按 path.Match 语法匹配文件，结果按字典序排列
func Glob(pattern string) ([]string, error) {
	pattern, err := clean(pattern)
	if err != nil {
		return nil, err
	}
	return fs.Glob(dataFS, pattern)
}
