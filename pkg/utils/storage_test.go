package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseProcessName(t *testing.T) {
	tests := []struct {
		name    string
		cmdline string
		want    string
		wantErr bool
	}{
		{"只有包名", "com.gonewx.platformer\x00", "com.gonewx.platformer", false},
		{"带参数", "com.gonewx.platformer\x00--flag\x00", "com.gonewx.platformer", false},
		{"末尾换行", "com.gonewx.platformer\n", "com.gonewx.platformer", false},
		{"空", "", "", true},
		{"只有分隔符", "\x00\x00", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseProcessName([]byte(tt.cmdline))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseProcessName() = %q, 期望 %q", got, tt.want)
			}
		})
	}
}

func TestEnsureWritableDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "saves")

	if err := EnsureWritableDir(dir); err != nil {
		t.Fatalf("EnsureWritableDir() failed: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("目录未创建: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, ".write_test")); !os.IsNotExist(err) {
		t.Error("探测文件应被删除")
	}

	// 已存在的目录再次调用不报错
	if err := EnsureWritableDir(dir); err != nil {
		t.Errorf("第二次调用失败: %v", err)
	}
}
