package timeline

import (
	"fmt"
	"log"
	"math"
	"time"
)

// DefaultDriftTolerance 音频位置与期望位置允许的最大偏差
// 小于该值时不重新定位，避免 tick 抖动导致频繁 seek
const DefaultDriftTolerance = 500 * time.Millisecond

// MediaPlayer 音频播放器抽象
// *audio.Player（ebiten/v2/audio）直接满足该接口
type MediaPlayer interface {
	Play()
	Pause()
	IsPlaying() bool
	Position() time.Duration
	SetPosition(offset time.Duration) error
}

// Diagnostics 外部诊断收集器
// 媒体错误只上报，不影响时间线推进
type Diagnostics interface {
	MediaError(elementID string, err error)
}

// AudioWindow 单个音频元素的播放窗口 [StartFrame, EndFrame)
//
// 隐式两态：inactive / active，由当前帧和播放状态驱动
type AudioWindow struct {
	ElementID  string
	StartFrame int
	EndFrame   int

	player MediaPlayer

	// started 本窗口启动了媒体且尚未停止
	started bool
	// ended 媒体在窗口结束前播放完毕；endedAt 为发现时的期望位置
	ended   bool
	endedAt time.Duration
}

// NewAudioWindow 创建音频窗口；player 可以为 nil（资源尚未加载），此时 Update 无操作
func NewAudioWindow(elementID string, startFrame, endFrame int, player MediaPlayer) *AudioWindow {
	return &AudioWindow{
		ElementID:  elementID,
		StartFrame: startFrame,
		EndFrame:   endFrame,
		player:     player,
	}
}

// SetPlayer 绑定（或替换）媒体播放器
func (w *AudioWindow) SetPlayer(player MediaPlayer) {
	if w.player != nil && w.player != player && w.player.IsPlaying() {
		w.player.Pause()
	}
	w.player = player
	w.started, w.ended = false, false
}

// Player 返回当前绑定的播放器
func (w *AudioWindow) Player() MediaPlayer {
	return w.player
}

// Contains 判断 frame 是否在窗口内
func (w *AudioWindow) Contains(frame int) bool {
	return frame >= w.StartFrame && frame < w.EndFrame
}

// ExpectedOffset 返回 frame 对应的媒体播放位置 (frame - StartFrame) / fps
func (w *AudioWindow) ExpectedOffset(frame int, fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	seconds := float64(frame-w.StartFrame) / fps
	return time.Duration(seconds * float64(time.Second))
}

// Update 每个 tick 调用一次
//
// 窗口内且正在播放：
//   - 媒体未播放：定位到期望位置后开始播放
//   - 媒体已播放：漂移 |actual - expected| 超过 tolerance 时重新定位
//   - 媒体比窗口短、已播放完毕：保持静音，直到期望位置回到结束点之前
//
// 窗口外或未在播放：媒体正在播放则暂停并归零。
func (w *AudioWindow) Update(frame int, playing bool, fps float64, tolerance time.Duration, diag Diagnostics) {
	if w.player == nil {
		return
	}

	if !playing || !w.Contains(frame) {
		w.Stop(diag)
		return
	}

	expected := w.ExpectedOffset(frame, fps)

	if !w.player.IsPlaying() {
		if w.started {
			w.started = false
			w.ended = true
			w.endedAt = expected
			log.Printf("[AudioWindow] %s media finished at frame %d (offset %v)", w.ElementID, frame, expected)
			return
		}
		if w.ended && expected >= w.endedAt {
			return
		}
		w.ended = false

		if err := w.player.SetPosition(expected); err != nil {
			w.report(diag, fmt.Errorf("failed to seek to %v before start: %w", expected, err))
		}
		w.player.Play()
		w.started = true
		log.Printf("[AudioWindow] %s started at frame %d (offset %v)", w.ElementID, frame, expected)
		return
	}

	drift := w.player.Position() - expected
	if time.Duration(math.Abs(float64(drift))) > tolerance {
		if err := w.player.SetPosition(expected); err != nil {
			w.report(diag, fmt.Errorf("failed to resync to %v: %w", expected, err))
			return
		}
		log.Printf("[AudioWindow] %s resynced at frame %d (drift %v)", w.ElementID, frame, drift)
	}
}

// Stop 如果媒体正在播放，暂停并把位置归零
func (w *AudioWindow) Stop(diag Diagnostics) {
	w.started = false
	if w.player == nil || !w.player.IsPlaying() {
		return
	}
	w.player.Pause()
	if err := w.player.SetPosition(0); err != nil {
		w.report(diag, fmt.Errorf("failed to rewind: %w", err))
	}
}

func (w *AudioWindow) report(diag Diagnostics, err error) {
	if diag != nil {
		diag.MediaError(w.ElementID, err)
		return
	}
	log.Printf("[AudioWindow] %s: %v", w.ElementID, err)
}
