package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/decker502/keyreel/internal/movie"
	"github.com/decker502/keyreel/pkg/timeline"
)

// 用法:
//
//	go run ./cmd/inspect_movie -step 10 -ticks 120 data/movies/demo.yaml
//
// 打印每个元素在采样帧上的惰性/预计算结果，统计两种模式的差异，
// 并用空播放器模拟若干 tick 的时钟与音频窗口。
func main() {
	step := flag.Int("step", 10, "采样帧间隔")
	ticks := flag.Int("ticks", 0, "模拟的 tick 数（0 表示不模拟）")
	dt := flag.Float64("dt", 1.0, "每个 tick 的 dt（参考 tick 单位）")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Println("用法: go run ./cmd/inspect_movie [-step N] [-ticks N] <影片文件>")
		os.Exit(1)
	}
	if *step < 1 {
		*step = 1
	}

	path := flag.Arg(0)
	def, err := movie.ParseFile(path)
	if err != nil {
		log.Fatalf("解析失败: %v", err)
	}

	opts := timeline.OptionsFromDefinition(def)
	fmt.Printf("影片: %s\n", path)
	fmt.Printf("尺寸: %dx%d  时长: %d 帧  FPS: %.1f  循环: %v\n", opts.Width, opts.Height, opts.Duration, opts.FPS, opts.Loop)
	fmt.Printf("元素数量: %d\n\n", len(def.Elements))

	mismatches := 0
	for _, el := range def.Elements {
		printElement(el, opts.Duration)
		if el.Kind() == movie.KindAudio {
			continue
		}

		table := timeline.Precompute(el.Frames, opts.Duration)
		for f := 0; f <= opts.Duration; f++ {
			lazy := timeline.Resolve(el.Frames, f)
			eager, _ := timeline.Lookup(table, f)
			if !equivalent(lazy.Props, eager.Props) {
				mismatches++
			}
			if f%*step == 0 {
				fmt.Printf("    %5d  %s\n", f, formatProps(lazy.Props))
			}
		}
		fmt.Println()
	}
	fmt.Printf("惰性/预计算差异: %d\n", mismatches)

	if *ticks > 0 {
		simulate(def, *ticks, *dt)
	}
}

func printElement(el movie.Element, duration int) {
	switch p := el.Payload.(type) {
	case movie.ImagePayload:
		fmt.Printf("[image] %s  src=%s  关键帧=%d\n", el.ID, p.Source, len(el.Frames))
	case movie.TextPayload:
		fmt.Printf("[text]  %s  %q  关键帧=%d\n", el.ID, p.Content, len(el.Frames))
	case movie.AudioPayload:
		start, end := p.Window(duration)
		fmt.Printf("[audio] %s  src=%s  窗口=[%d, %d)\n\n", el.ID, p.Source, start, end)
	}
}

func formatProps(p movie.Props) string {
	keys := p.Keys()
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v, _ := p.Get(k)
		if f, ok := v.Float(); ok {
			parts = append(parts, fmt.Sprintf("%s=%.3f", k, f))
		} else {
			parts = append(parts, fmt.Sprintf("%s=%v", k, v))
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}

// equivalent 数值属性允许 1e-9 误差
func equivalent(a, b movie.Props) bool {
	ak, bk := a.Keys(), b.Keys()
	if len(ak) != len(bk) {
		return false
	}
	for _, k := range ak {
		av, _ := a.Get(k)
		bv, ok := b.Get(k)
		if !ok {
			return false
		}
		af, aNum := av.Float()
		bf, bNum := bv.Float()
		if aNum && bNum {
			if d := af - bf; d > 1e-9 || d < -1e-9 {
				return false
			}
			continue
		}
		if av != bv {
			return false
		}
	}
	return true
}

// nullPlayer 只记录位置和播放状态
type nullPlayer struct {
	id       string
	playing  bool
	position time.Duration
}

func (p *nullPlayer) Play() {
	p.playing = true
	fmt.Printf("      ▶ %s at %v\n", p.id, p.position)
}

func (p *nullPlayer) Pause() {
	if p.playing {
		fmt.Printf("      ■ %s\n", p.id)
	}
	p.playing = false
}

func (p *nullPlayer) IsPlaying() bool         { return p.playing }
func (p *nullPlayer) Position() time.Duration { return p.position }

func (p *nullPlayer) SetPosition(offset time.Duration) error {
	p.position = offset
	return nil
}

func simulate(def *movie.Definition, ticks int, dt float64) {
	fmt.Printf("\n模拟 %d 个 tick (dt=%.2f)\n", ticks, dt)

	m := timeline.NewMovieFromDefinition(def)
	players := make(map[string]*nullPlayer)
	for _, w := range m.AudioWindows() {
		p := &nullPlayer{id: w.ElementID}
		players[w.ElementID] = p
		if err := m.AttachAudio(w.ElementID, p); err != nil {
			log.Fatalf("绑定音频失败: %v", err)
		}
	}

	// 空播放器不会自己前进，按 tick 推进位置，模拟真实播放
	tickDuration := time.Duration(float64(time.Second) / m.Options().ReferenceRate * dt)

	m.Play()
	last := -1
	for i := 0; i < ticks; i++ {
		for _, p := range players {
			if p.playing {
				p.position += tickDuration
			}
		}
		frame := m.Tick(dt)
		if frame < last {
			fmt.Printf("  tick %4d: 回绕到 %d\n", i, frame)
		}
		last = frame
		if m.State() != timeline.StatePlaying {
			fmt.Printf("  tick %4d: 到达结尾 %d，状态 %s\n", i, frame, m.State())
			break
		}
	}
	fmt.Printf("最终帧: %d  状态: %s\n", m.Frame(), m.State())
}
