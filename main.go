package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/decker502/keyreel/pkg/app"
	"github.com/decker502/keyreel/pkg/config"
	"github.com/decker502/keyreel/pkg/embedded"
	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	moviePath := flag.String("movie", "", "影片文件路径（.yaml / .toml），为空时播放内置示例")
	configPath := flag.String("config", "", "播放器配置文件路径（YAML）")
	verbose := flag.Bool("verbose", false, "启用详细日志输出")
	precompute := flag.Bool("precompute", false, "加载后预计算所有帧（预计算模式）")
	flag.Parse()

	// 初始化嵌入资源（必须在任何资源加载之前）
	embedded.Init(dataFS)

	playerCfg, err := config.LoadPlayerConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "配置加载失败: %v\n", err)
		os.Exit(1)
	}

	a, err := app.NewApp(app.Config{
		Verbose:    *verbose,
		MoviePath:  *moviePath,
		Player:     playerCfg,
		Precompute: *precompute,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "启动失败: %v\n", err)
		os.Exit(1)
	}
	defer a.Shutdown()

	width, height := a.Size()
	scale := playerCfg.Player.WindowScale
	ebiten.SetWindowSize(int(float64(width)*scale), int(float64(height)*scale))
	ebiten.SetWindowTitle("keyreel")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(playerCfg.Player.ReferenceTPS)
	if a.Settings().GetSettings().Fullscreen {
		ebiten.SetFullscreen(true)
	}

	if err := ebiten.RunGame(a); err != nil {
		log.Fatal(err)
	}
}
