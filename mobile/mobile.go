//go:build mobile

// Package mobile 是 ebitenmobile 的绑定入口
//
// 只在 -tags mobile 下编译：
//
//	ebitenmobile bind -target android -tags mobile -androidapi 23 -javapkg com.gonewx.platformer -o build/android/platformer.aar ./mobile
//	ebitenmobile bind -target ios -tags mobile -o build/ios/Platformer.xcframework ./mobile
//
// 移动端没有命令行参数：关卡取存档中最近一次的关卡，输入使用触屏按钮。
package mobile

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2/mobile"

	"github.com/gonewx/platformer/pkg/app"
	"github.com/gonewx/platformer/pkg/embedded"
)

func init() {
	embedded.Init(dataFS)

	platformer, err := app.NewApp(app.Config{})
	if err != nil {
		log.Fatalf("[Mobile] Failed to start: %v", err)
	}
	mobile.SetGame(platformer)
}

// Dummy 让 ebitenmobile 生成绑定时至少有一个导出符号
func Dummy() {}
