// check_levels 校验关卡 YAML 文件
//
// 用法:
//
//	go run ./cmd/check_levels                       # 检查 data/levels 下的全部关卡
//	go run ./cmd/check_levels path/to/level.yaml ...
package main

import (
	"crypto/md5"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/gonewx/platformer/pkg/config"
)

var dir = flag.String("dir", "data/levels", "关卡目录（未指定文件时使用）")

func main() {
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		matches, err := filepath.Glob(filepath.Join(*dir, "level-*.yaml"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "check_levels: %v\n", err)
			os.Exit(1)
		}
		sort.Strings(matches)
		paths = matches
	}
	if len(paths) == 0 {
		fmt.Fprintf(os.Stderr, "check_levels: no level files in %s\n", *dir)
		os.Exit(1)
	}

	if failed := check(paths, os.Stdout); failed > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d level files failed\n", failed, len(paths))
		os.Exit(1)
	}
}

// check 逐个加载关卡并打印摘要，返回失败的文件数
func check(paths []string, w io.Writer) int {
	failed := 0
	ids := make(map[string]string)

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(w, "FAIL: %s - %v\n", path, err)
			failed++
			continue
		}
		cfg, err := config.ParseLevelConfig(data, path)
		if err != nil {
			fmt.Fprintf(w, "FAIL: %s - %v\n", path, err)
			failed++
			continue
		}
		if other, dup := ids[cfg.ID]; dup {
			fmt.Fprintf(w, "FAIL: %s - duplicate level ID %q (also in %s)\n", path, cfg.ID, other)
			failed++
			continue
		}
		ids[cfg.ID] = path

		fmt.Fprintf(w, "OK: %s - ID=%s, Name=%q, Ground=%d, Traps=%d, Checkpoints=%d, Apples=%d, Enemies=%d, Tracks=%d, MD5=%x\n",
			path, cfg.ID, cfg.Name, len(cfg.Ground), len(cfg.Traps), len(cfg.Checkpoints),
			len(cfg.Apples), len(cfg.Enemies), len(cfg.Music.Tracks), md5.Sum(data))
	}
	return failed
}
