package timeline

import (
	"fmt"
	"log"
	"time"

	"github.com/decker502/keyreel/internal/movie"
)

// Options 影片全局播放参数
type Options struct {
	Width    int
	Height   int
	Duration int  // 最大帧号（含），有效帧为 [0, Duration]
	Loop     bool // 到尾后是否循环
	FPS      float64

	// ReferenceRate 参考 tick 频率，Advance 的 dt=1.0 表示一个参考 tick
	ReferenceRate float64

	// DriftTolerance 音频漂移阈值
	DriftTolerance time.Duration
}

// DefaultOptions 返回默认参数：loop=true, fps=60, referenceRate=60, driftTolerance=0.5s
func DefaultOptions() Options {
	return Options{
		Width:          800,
		Height:         600,
		Loop:           true,
		FPS:            60,
		ReferenceRate:  DefaultReferenceRate,
		DriftTolerance: DefaultDriftTolerance,
	}
}

// OptionsFromDefinition 以 DefaultOptions 为基础，用影片文件中给出的字段覆盖
func OptionsFromDefinition(def *movie.Definition) Options {
	opts := DefaultOptions()
	if def == nil {
		return opts
	}
	if def.Width > 0 {
		opts.Width = def.Width
	}
	if def.Height > 0 {
		opts.Height = def.Height
	}
	opts.Duration = def.Duration
	if def.Loop != nil {
		opts.Loop = *def.Loop
	}
	if def.FPS > 0 {
		opts.FPS = def.FPS
	}
	return opts
}

// Presenter 展示适配器：把解析后的状态写入可绘制对象
// 引擎只传递元素 ID，不持有任何可绘制句柄
type Presenter interface {
	ApplyState(elementID string, kind movie.Kind, state FrameState)
}

// Movie 影片：元素集合 + 播放时钟 + 音频窗口
//
// 非并发安全。Tick / Play / Pause / Seek 必须在同一个 goroutine 中调用。
type Movie struct {
	opts     Options
	elements []movie.Element
	index    map[string]int // 元素 ID -> elements 下标（重复 ID 取第一个）

	// sorted 惰性模式下每个元素排好序的关键帧，避免每次查询都排序
	sorted [][]movie.Keyframe

	clock     *Clock
	windows   []*AudioWindow
	windowMap map[string]*AudioWindow

	presenter   Presenter
	diagnostics Diagnostics
	precomputed bool
}

// NewMovie 创建影片
//
// elements 被 Movie 持有；Precompute 会原地替换其中非音频元素的关键帧列表。
func NewMovie(elements []movie.Element, opts Options) *Movie {
	if opts.Duration < 0 {
		log.Printf("[Movie] Warning: negative duration %d, using 0", opts.Duration)
		opts.Duration = 0
	}
	if opts.ReferenceRate <= 0 {
		opts.ReferenceRate = DefaultReferenceRate
	}
	if opts.DriftTolerance <= 0 {
		opts.DriftTolerance = DefaultDriftTolerance
	}

	m := &Movie{
		opts:      opts,
		elements:  elements,
		index:     make(map[string]int, len(elements)),
		sorted:    make([][]movie.Keyframe, len(elements)),
		clock:     NewClock(opts.Duration, opts.Loop, opts.FPS, opts.ReferenceRate),
		windowMap: make(map[string]*AudioWindow),
	}

	for i, el := range elements {
		if _, dup := m.index[el.ID]; dup {
			log.Printf("[Movie] Warning: duplicate element id '%s' at #%d, lookups use the first one", el.ID, i)
			continue
		}
		m.index[el.ID] = i

		if ap, ok := el.Payload.(movie.AudioPayload); ok {
			start, end := ap.Window(opts.Duration)
			w := NewAudioWindow(el.ID, start, end, nil)
			m.windows = append(m.windows, w)
			m.windowMap[el.ID] = w
		}
	}

	log.Printf("[Movie] Created: %d elements, %d audio windows, duration=%d, fps=%.1f, loop=%v",
		len(elements), len(m.windows), opts.Duration, opts.FPS, opts.Loop)

	return m
}

// NewMovieFromDefinition 从解析后的影片文件创建影片
func NewMovieFromDefinition(def *movie.Definition) *Movie {
	return NewMovie(def.Elements, OptionsFromDefinition(def))
}

// SetPresenter 设置展示适配器（可为 nil，headless 模式）
func (m *Movie) SetPresenter(p Presenter) {
	m.presenter = p
}

// SetDiagnostics 设置诊断收集器
func (m *Movie) SetDiagnostics(d Diagnostics) {
	m.diagnostics = d
}

// AttachAudio 为音频元素绑定媒体播放器
func (m *Movie) AttachAudio(elementID string, player MediaPlayer) error {
	w, ok := m.windowMap[elementID]
	if !ok {
		return fmt.Errorf("element '%s' is not an audio element", elementID)
	}
	w.SetPlayer(player)
	return nil
}

// Options 返回影片参数
func (m *Movie) Options() Options {
	return m.opts
}

// Elements 返回元素列表（与 Movie 共享底层数据）
func (m *Movie) Elements() []movie.Element {
	return m.elements
}

// Element 按 ID 查找元素
func (m *Movie) Element(id string) (*movie.Element, bool) {
	i, ok := m.index[id]
	if !ok {
		return nil, false
	}
	return &m.elements[i], true
}

// AudioWindows 返回所有音频窗口
func (m *Movie) AudioWindows() []*AudioWindow {
	return m.windows
}

// Clock 返回播放时钟
func (m *Movie) Clock() *Clock {
	return m.clock
}

// Resolve 返回元素在 frame 帧的状态；元素不存在时返回 false
func (m *Movie) Resolve(elementID string, frame int) (FrameState, bool) {
	i, ok := m.index[elementID]
	if !ok {
		return FrameState{}, false
	}
	return m.resolveAt(i, frame), true
}

func (m *Movie) resolveAt(i, frame int) FrameState {
	frames := m.elements[i].Frames
	if len(frames) == 0 {
		return FrameState{Frame: frame}
	}

	if m.precomputed && m.elements[i].Kind() != movie.KindAudio {
		if state, ok := Lookup(frames, frame); ok {
			return state
		}
	}

	if m.sorted[i] == nil {
		m.sorted[i] = SortedKeyframes(frames)
	}
	return resolveSorted(m.sorted[i], frame)
}

// Precompute 为所有非音频元素生成 [0, Duration] 稠密表并替换其关键帧列表
// 重复调用结果不变
func (m *Movie) Precompute() {
	start := time.Now()
	for i := range m.elements {
		el := &m.elements[i]
		if el.Kind() == movie.KindAudio {
			continue
		}
		if IsDense(el.Frames, m.opts.Duration) {
			continue
		}
		el.Frames = Precompute(el.Frames, m.opts.Duration)
		m.sorted[i] = el.Frames
	}
	m.precomputed = true
	log.Printf("[Movie] Precomputed %d frames for %d elements in %v",
		m.opts.Duration+1, len(m.elements), time.Since(start))
}

// IsPrecomputed 是否已执行 Precompute
func (m *Movie) IsPrecomputed() bool {
	return m.precomputed
}

// Play 开始 / 继续播放
func (m *Movie) Play() {
	m.clock.Play()
	log.Printf("[Movie] Play at frame %d", m.clock.Frame())
}

// Pause 暂停播放并立即停止所有音频
func (m *Movie) Pause() {
	m.clock.Pause()
	m.stopAudio()
	log.Printf("[Movie] Pause at frame %d", m.clock.Frame())
}

// Stop 停止播放，回到第 0 帧并重新渲染
func (m *Movie) Stop() {
	m.clock.Stop()
	m.stopAudio()
	m.present(m.clock.Frame())
}

// Seek 跳转到 frame，保持播放状态，立即同步音频并重新渲染
func (m *Movie) Seek(frame int) {
	m.clock.Seek(float64(frame))
	f := m.clock.Frame()
	m.updateAudio(f)
	m.present(f)
	log.Printf("[Movie] Seek to frame %d (state=%s)", f, m.clock.State())
}

// Advance 只推进时钟，返回新的整数帧
func (m *Movie) Advance(dt float64) int {
	return m.clock.Advance(dt)
}

// Tick 每个调度 tick 调用一次
//
// 顺序保证：先推进时钟得到本 tick 的帧号，再更新音频窗口，最后把状态交给 Presenter，
// 同一 tick 内不会用旧的帧号读取属性。
func (m *Movie) Tick(dt float64) int {
	wasPlaying := m.clock.IsPlaying()
	frame := m.clock.Advance(dt)

	if wasPlaying && !m.clock.IsPlaying() {
		log.Printf("[Movie] Reached end at frame %d, paused", frame)
	}

	m.updateAudio(frame)
	m.present(frame)
	return frame
}

// Frame 返回当前整数帧
func (m *Movie) Frame() int {
	return m.clock.Frame()
}

// State 返回当前播放状态
func (m *Movie) State() PlaybackState {
	return m.clock.State()
}

func (m *Movie) updateAudio(frame int) {
	playing := m.clock.IsPlaying()
	for _, w := range m.windows {
		w.Update(frame, playing, m.opts.FPS, m.opts.DriftTolerance, m.diagnostics)
	}
}

func (m *Movie) stopAudio() {
	for _, w := range m.windows {
		w.Stop(m.diagnostics)
	}
}

func (m *Movie) present(frame int) {
	if m.presenter == nil {
		return
	}
	for i := range m.elements {
		el := &m.elements[i]
		if el.Kind() == movie.KindAudio {
			continue
		}
		if m.index[el.ID] != i {
			continue // 重复 ID，只渲染第一个
		}
		m.presenter.ApplyState(el.ID, el.Kind(), m.resolveAt(i, frame))
	}
}
