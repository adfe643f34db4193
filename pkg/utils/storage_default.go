//go:build !android

package utils

// EnsureStorageDir 非 Android 平台上 gdata 会自己创建存储目录
func EnsureStorageDir() error {
	return nil
}
