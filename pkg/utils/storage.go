package utils

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// EnsureWritableDir 创建目录（包括父目录）并确认可以写入
func EnsureWritableDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	probe := filepath.Join(dir, ".write_test")
	if err := os.WriteFile(probe, []byte("ok"), 0644); err != nil {
		return fmt.Errorf("directory %s is not writable: %w", dir, err)
	}
	return os.Remove(probe)
}

// parseProcessName 取出 /proc/self/cmdline 中的第一个参数
// 参数之间以 NUL 分隔，Android 上它就是应用包名。
func parseProcessName(cmdline []byte) (string, error) {
	name, _, _ := bytes.Cut(cmdline, []byte{0})
	name = bytes.TrimSpace(name)
	if len(name) == 0 {
		return "", fmt.Errorf("empty process name in cmdline")
	}
	return string(name), nil
}
