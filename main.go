package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/gonewx/platformer/pkg/app"
	"github.com/gonewx/platformer/pkg/embedded"
)

var (
	level   = flag.String("level", "", "要加载的关卡ID（如 1-1），默认使用存档中最近一次的关卡")
	verbose = flag.Bool("verbose", false, "显示详细调试信息")
	seed    = flag.Int64("seed", 0, "随机种子，0 表示使用当前时间")
)

func main() {
	flag.Parse()

	// 初始化嵌入的关卡数据（dataFS 在 embed.go 中声明）
	embedded.Init(dataFS)

	gameApp, err := app.NewApp(app.Config{
		Verbose: *verbose,
		Level:   *level,
		Seed:    *seed,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "游戏初始化失败: %v\n", err)
		os.Exit(1)
	}

	ebiten.SetWindowSize(app.ScreenWidth, app.ScreenHeight)
	ebiten.SetWindowTitle("Platformer")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	runErr := ebiten.RunGame(gameApp)
	if err := gameApp.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "保存失败: %v\n", err)
	}
	if runErr != nil && runErr != ebiten.Termination {
		fmt.Fprintf(os.Stderr, "游戏异常退出: %v\n", runErr)
		os.Exit(1)
	}
}
