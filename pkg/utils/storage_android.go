//go:build android

package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureStorageDir 在 gdata 初始化前创建 /data/data/{package}/saves
// gdata 在 Android 上使用这个目录，但不会预先创建它。
func EnsureStorageDir() error {
	data, err := os.ReadFile("/proc/self/cmdline")
	if err != nil {
		return fmt.Errorf("failed to read cmdline: %w", err)
	}
	app, err := parseProcessName(data)
	if err != nil {
		return fmt.Errorf("failed to detect Android app: %w", err)
	}
	return EnsureWritableDir(filepath.Join("/data/data", app, "saves"))
}
