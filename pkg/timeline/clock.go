package timeline

import (
	"math"
)

// PlaybackState 播放状态
type PlaybackState int

const (
	// StateStopped 初始状态，位置为 0
	StateStopped PlaybackState = iota
	// StatePlaying 每个 tick 推进位置
	StatePlaying
	// StatePaused 保持当前位置不动
	StatePaused
)

// String 返回播放状态的字符串表示（用于日志）
func (s PlaybackState) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StatePlaying:
		return "Playing"
	case StatePaused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// DefaultReferenceRate 默认参考 tick 频率（与 ebiten 默认 TPS 一致）
const DefaultReferenceRate = 60.0

// Clock 播放时钟
//
// 把 tick 增量映射为影片帧位置：
//
//	position += (fps / referenceRate) * dt
//
// dt 以参考 tick 为单位（1.0 = 一个参考 tick）。
// 例如：fps=30, referenceRate=60, dt=1 → 每 tick 推进 0.5 帧。
type Clock struct {
	position      float64
	duration      int
	loop          bool
	fps           float64
	referenceRate float64
	state         PlaybackState
}

// NewClock 创建播放时钟，初始为 StateStopped、位置 0
// referenceRate <= 0 时使用 DefaultReferenceRate
func NewClock(duration int, loop bool, fps, referenceRate float64) *Clock {
	if referenceRate <= 0 {
		referenceRate = DefaultReferenceRate
	}
	if duration < 0 {
		duration = 0
	}
	return &Clock{
		duration:      duration,
		loop:          loop,
		fps:           fps,
		referenceRate: referenceRate,
	}
}

// Play stopped/paused → playing（已在播放时无操作）
func (c *Clock) Play() {
	c.state = StatePlaying
}

// Pause playing → paused（已暂停或停止时无操作）
func (c *Clock) Pause() {
	if c.state == StatePlaying {
		c.state = StatePaused
	}
}

// Stop 回到 stopped 状态并把位置归零
func (c *Clock) Stop() {
	c.state = StateStopped
	c.position = 0
}

// Seek 把位置设置为 frame（钳制到 [0, duration]），不改变播放状态
func (c *Clock) Seek(frame float64) {
	if math.IsNaN(frame) || frame < 0 {
		frame = 0
	}
	if frame > float64(c.duration) {
		frame = float64(c.duration)
	}
	c.position = frame
}

// Advance 推进一个 tick 并返回推进后的整数帧
//
// 只有 StatePlaying 时推进。越过 duration 后：
//   - loop=true：对 duration 取模（duration=0 时归零，避免除零）
//   - loop=false：钳制到 duration 并切换到 StatePaused
func (c *Clock) Advance(dt float64) int {
	if c.state != StatePlaying || dt <= 0 || math.IsNaN(dt) {
		return c.Frame()
	}

	c.position += (c.fps / c.referenceRate) * dt

	end := float64(c.duration)
	if c.position > end {
		if c.loop {
			if c.duration == 0 {
				c.position = 0
			} else {
				c.position = math.Mod(c.position, end)
			}
		} else {
			c.position = end
			c.state = StatePaused
		}
	}

	return c.Frame()
}

// Frame 返回当前整数帧 floor(position)
func (c *Clock) Frame() int {
	return int(math.Floor(c.position))
}

// Position 返回当前小数帧位置
func (c *Clock) Position() float64 {
	return c.position
}

// State 返回当前播放状态
func (c *Clock) State() PlaybackState {
	return c.state
}

// IsPlaying 是否正在播放
func (c *Clock) IsPlaying() bool {
	return c.state == StatePlaying
}

// FPS 返回影片帧率
func (c *Clock) FPS() float64 {
	return c.fps
}

// Duration 返回影片最大帧号
func (c *Clock) Duration() int {
	return c.duration
}
