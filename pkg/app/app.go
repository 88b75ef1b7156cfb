// Package app 提供播放器应用的核心包装器
//
// 该包把影片加载、资源加载和 ECS 系统组装在一起，并实现 ebiten.Game 接口。
// 桌面端通过 main.go 调用 NewApp()。
package app

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"log"
	"path/filepath"

	"github.com/decker502/keyreel/internal/movie"
	"github.com/decker502/keyreel/pkg/components"
	"github.com/decker502/keyreel/pkg/config"
	"github.com/decker502/keyreel/pkg/ecs"
	"github.com/decker502/keyreel/pkg/embedded"
	"github.com/decker502/keyreel/pkg/game"
	"github.com/decker502/keyreel/pkg/systems"
	"github.com/decker502/keyreel/pkg/timeline"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/quasilyte/gdata/v2"
)

// Config 定义应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
	// MoviePath 影片文件路径，为空时播放内置示例
	MoviePath string
	// Player 播放器配置，nil 时使用默认值
	Player *config.PlayerConfig
	// Precompute 强制预计算模式（与配置文件中的 precompute 取或）
	Precompute bool
}

// App 是播放器应用的核心包装器，实现 ebiten.Game 接口
type App struct {
	movie     *timeline.Movie
	em        *ecs.EntityManager
	settings  *game.SettingsManager
	diag      *game.DiagnosticsLog

	renderSystem *systems.RenderSystem
	hudSystem    *systems.HUDSystem

	width, height int
	verbose       bool
}

// NewApp 加载影片和资源并创建应用
//
// 调用此函数前，必须先调用 embedded.Init() 初始化嵌入资源。
func NewApp(cfg Config) (*App, error) {
	// 配置日志输出
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	playerCfg := cfg.Player
	if playerCfg == nil {
		playerCfg = config.DefaultPlayerConfig()
	}

	def, err := loadDefinition(cfg.MoviePath)
	if err != nil {
		return nil, fmt.Errorf("影片加载失败: %w", err)
	}

	opts := timeline.OptionsFromDefinition(def)
	opts.ReferenceRate = float64(playerCfg.Player.ReferenceTPS)
	opts.DriftTolerance = playerCfg.Player.DriftTolerance
	m := timeline.NewMovie(def.Elements, opts)

	// 设置持久化失败时降级为仅内存设置
	var gdataManager *gdata.Manager
	if gm, err := gdata.Open(gdata.Config{AppName: "keyreel"}); err != nil {
		log.Printf("[App] Warning: settings storage unavailable: %v", err)
	} else {
		gdataManager = gm
	}
	settings, err := game.NewSettingsManager(gdataManager)
	if err != nil {
		return nil, fmt.Errorf("设置加载失败: %w", err)
	}

	assetRoot := playerCfg.Player.AssetRoot
	if assetRoot == "" && cfg.MoviePath != "" {
		assetRoot = filepath.Dir(cfg.MoviePath)
	}
	resources := game.NewResourceManager(audio.NewContext(48000), assetRoot)
	diag := game.NewDiagnosticsLog(100)
	m.SetDiagnostics(diag)

	em := ecs.NewEntityManager()
	presenter := systems.NewPresentationSystem(em)
	loader := &sceneLoader{
		movie:     m,
		em:        em,
		presenter: presenter,
		resources: resources,
		settings:  settings,
		diag:      diag,
		workers:   playerCfg.Player.PreloadWorkers,
	}
	loader.load(context.Background())
	m.SetPresenter(presenter)

	if cfg.Precompute || playerCfg.Player.Precompute {
		m.Precompute()
	}

	a := &App{
		movie:        m,
		em:           em,
		settings:     settings,
		diag:         diag,
		renderSystem: systems.NewRenderSystem(em),
		hudSystem:    systems.NewHUDSystem(m, diag),
		width:        opts.Width,
		height:       opts.Height,
		verbose:      cfg.Verbose,
	}

	// 先展示第 0 帧再开始播放
	m.Seek(0)
	m.Play()
	log.Printf("[App] Playing %s (%dx%d)", describeSource(cfg.MoviePath), a.width, a.height)

	return a, nil
}

// loadDefinition 读取影片文件；路径为空时读取内置示例
func loadDefinition(path string) (*movie.Definition, error) {
	if path != "" {
		return movie.ParseFile(path)
	}
	data, err := embedded.ReadFile(embedded.DemoMovie)
	if err != nil {
		return nil, err
	}
	return movie.Parse(data, movie.FormatFromPath(embedded.DemoMovie))
}

func describeSource(path string) string {
	if path == "" {
		return "built-in demo"
	}
	return path
}

// Command 播放控制命令
type Command int

const (
	CommandNone Command = iota
	CommandTogglePlay
	CommandSeekForward
	CommandSeekBackward
	CommandRestart
	CommandToggleMute
	CommandToggleHUD
)

// pollCommand 读取本帧的按键输入
func pollCommand() Command {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		return CommandTogglePlay
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowRight):
		return CommandSeekForward
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft):
		return CommandSeekBackward
	case inpututil.IsKeyJustPressed(ebiten.KeyHome):
		return CommandRestart
	case inpututil.IsKeyJustPressed(ebiten.KeyM):
		return CommandToggleMute
	case inpututil.IsKeyJustPressed(ebiten.KeyH):
		return CommandToggleHUD
	}
	return CommandNone
}

// HandleCommand 执行播放控制命令
// 左右方向键按一秒（fps 帧）跳转
func (a *App) HandleCommand(cmd Command) {
	step := int(a.movie.Options().FPS)
	if step < 1 {
		step = 1
	}

	switch cmd {
	case CommandTogglePlay:
		if a.movie.State() == timeline.StatePlaying {
			a.movie.Pause()
		} else {
			a.movie.Play()
		}
	case CommandSeekForward:
		a.movie.Seek(a.movie.Frame() + step)
	case CommandSeekBackward:
		a.movie.Seek(a.movie.Frame() - step)
	case CommandRestart:
		a.movie.Seek(0)
		a.movie.Play()
	case CommandToggleMute:
		muted := a.settings.ToggleMuted()
		if a.em != nil {
			for _, id := range ecs.GetEntitiesWith1[*components.AudioComponent](a.em) {
				if ac, _ := ecs.GetComponent[*components.AudioComponent](a.em, id); ac.Player != nil {
					a.settings.ApplyVolume(ac.Player)
				}
			}
		}
		log.Printf("[App] Muted: %v", muted)
		a.saveSettings()
	case CommandToggleHUD:
		a.settings.ToggleHUD()
		a.saveSettings()
	}
}

func (a *App) saveSettings() {
	if err := a.settings.Save(); err != nil {
		log.Printf("[App] Warning: %v", err)
	}
}

// Update 每个 tick 调用一次（通常每秒 60 次）
// 先处理输入，再推进影片一个参考 tick
func (a *App) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		ebiten.SetFullscreen(!ebiten.IsFullscreen())
	}

	a.HandleCommand(pollCommand())
	a.movie.Tick(1.0)
	return nil
}

// Draw 绘制当前帧
func (a *App) Draw(screen *ebiten.Image) {
	screen.Fill(color.Black)
	a.renderSystem.Draw(screen)
	if a.settings.GetSettings().ShowHUD {
		a.hudSystem.Draw(screen)
	}
}

// DrawFinalScreen 实现 FinalScreenDrawer 接口
// 用于控制全屏时的缩放和 letterbox 颜色
func (a *App) DrawFinalScreen(screen ebiten.FinalScreen, offscreen *ebiten.Image, geoM ebiten.GeoM) {
	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(offscreen, op)
}

// Layout 返回影片的逻辑尺寸
// 此尺寸独立于实际窗口大小，Ebitengine 会自动处理缩放
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return a.width, a.height
}

// Size 返回影片的逻辑尺寸
func (a *App) Size() (int, int) {
	return a.width, a.height
}

// Movie 返回正在播放的影片
func (a *App) Movie() *timeline.Movie {
	return a.movie
}

// Settings 返回设置管理器
func (a *App) Settings() *game.SettingsManager {
	return a.settings
}

// Shutdown 停止播放并保存设置
func (a *App) Shutdown() {
	a.movie.Pause()
	a.saveSettings()
}

// IsVerbose 返回是否启用了详细日志
func (a *App) IsVerbose() bool {
	return a.verbose
}
